package investments

import (
	"net/http"

	"github.com/sri-akshat/wealth-manager"
	"github.com/sri-akshat/wealth-manager/api"
	"github.com/sri-akshat/wealth-manager/auth"
	"go.uber.org/zap"
)

// updateNAVs revalues the user's investments at the latest NAVs. An
// investment whose NAV cannot be obtained keeps its values. Fund NAVs are
// updated when the provider reports a new one. The new values are written in
// one transaction.
func (s *Service) updateNAVs(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()
	p, _ := auth.FromContext(ctx)
	investments, err := s.store.Investments.ByUser(ctx, p.UserID)
	if err != nil {
		s.fail(w, r, err)
		return
	}

	var revalued []wealth.Investment
	funds := make(map[int64]wealth.Quantity)
	for _, inv := range investments {
		latest, err := s.navs.Latest(ctx, inv)
		if err != nil {
			s.logger.Warn("nav unavailable, investment not revalued",
				zap.Int64("investment_id", inv.ID), zap.Error(err))
			continue
		}
		inv.UpdateCurrentValue(latest)
		revalued = append(revalued, inv)
		if inv.Fund != nil && !latest.Equal(inv.Fund.NAV) {
			funds[inv.FundID] = latest
		}
	}
	if err := s.store.Investments.Revalue(ctx, revalued, funds, s.now()); err != nil {
		s.fail(w, r, err)
		return
	}
	s.logger.Info("investments revalued",
		zap.Int64("user_id", p.UserID),
		zap.Int("updated", len(revalued)),
		zap.Int("skipped", len(investments)-len(revalued)),
		zap.Int("funds", len(funds)))
	api.WriteJSON(w, http.StatusOK, api.MessageResponse{Message: "Investment values updated successfully"})
}
