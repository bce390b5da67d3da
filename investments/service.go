// Package investments implements the investment service: mutual funds, user
// investments and portfolio analytics.
package investments

import (
	"errors"
	"net/http"
	"time"

	"github.com/sri-akshat/wealth-manager"
	"github.com/sri-akshat/wealth-manager/api"
	"github.com/sri-akshat/wealth-manager/auth"
	"github.com/sri-akshat/wealth-manager/nav"
	"github.com/sri-akshat/wealth-manager/store"
	"go.uber.org/zap"
)

const (
	Name    = "Investment Service"
	Version = "1.0.0"
)

// Service serves the investment API.
type Service struct {
	store  *store.Store
	issuer *auth.Issuer
	navs   nav.Provider
	logger *zap.Logger
	now    func() time.Time
}

// New returns an investment service. navs provides the NAVs used to revalue
// investments, nav.Static when nil.
func New(st *store.Store, issuer *auth.Issuer, navs nav.Provider, logger *zap.Logger) *Service {
	if navs == nil {
		navs = nav.Static{}
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		store:  st,
		issuer: issuer,
		navs:   navs,
		logger: logger.Named("investments"),
		now:    func() time.Time { return time.Now().UTC() },
	}
}

// Info is the body of the root endpoint.
type Info struct {
	Service string `json:"service"`
	Version string `json:"version"`
	Status  string `json:"status"`
}

// InvestmentCreate is the body of an investment purchase.
type InvestmentCreate struct {
	FundID         int64        `json:"fund_id"`
	PurchaseAmount wealth.Money `json:"purchase_amount" openapi:"gt0"`
}

// Validate returns one FieldError per invalid field.
func (in InvestmentCreate) Validate() error {
	var errs []error
	if in.FundID <= 0 {
		errs = append(errs, &wealth.FieldError{Field: "fund_id", Err: errors.New("must be a positive integer")})
	}
	if !in.PurchaseAmount.IsPositive() {
		errs = append(errs, &wealth.FieldError{Field: "purchase_amount", Err: errors.New("input should be greater than 0")})
	}
	return errors.Join(errs...)
}

// InvestmentList is the body of the detailed portfolio.
type InvestmentList struct {
	Investments []wealth.PortfolioInvestment `json:"investments"`
}

// FilterQuery documents the query parameters selecting portfolio investments.
type FilterQuery struct {
	Category  wealth.FundCategory `json:"category" doc:"fund category"`
	MinAmount float64             `json:"min_amount" doc:"minimum purchase amount, inclusive"`
	MaxAmount float64             `json:"max_amount" doc:"maximum purchase amount, inclusive"`
	StartDate string              `json:"start_date" openapi:"date-time" doc:"earliest purchase date, RFC 3339 or YYYY-MM-DD"`
	EndDate   string              `json:"end_date" openapi:"date-time" doc:"latest purchase date, RFC 3339 or YYYY-MM-DD"`
}

// ReportQuery documents the report format parameter.
type ReportQuery struct {
	Format string `json:"format" doc:"markdown (default) or html"`
}

// API declares the investment service routes.
func (s *Service) API() *api.Service {
	return &api.Service{
		Name:        "investment-service",
		Title:       Name,
		Description: "Investment service API for wealth manager platform. Manages mutual fund investments and portfolio analytics.",
		Version:     Version,
		Tags: []api.Tag{
			{Name: "portfolio", Description: "Operations related to investment portfolios"},
			{Name: "investments", Description: "Operations for managing individual investments"},
			{Name: "system", Description: "System maintenance operations"},
		},
		Routes: []api.Route{
			{Method: http.MethodGet, Path: "/", Summary: "Root", Tags: []string{"system"},
				Description: "Returns the service name, version and status.",
				Response:    Info{}, Handler: s.root},
			{Method: http.MethodGet, Path: "/health", Summary: "Health check", Tags: []string{"system"},
				Response: api.HealthResponse{}, Handler: s.health},
			{Method: http.MethodGet, Path: "/funds", Summary: "List funds", Tags: []string{"investments"},
				Response: []wealth.MutualFund{}, Handler: s.funds},
			{Method: http.MethodPost, Path: "/initialize-sample-data", Summary: "Initialize sample data", Tags: []string{"system"},
				Description: "Adds the sample mutual funds unless funds already exist.",
				Response:    api.MessageResponse{}, Handler: s.initialize},
			{Method: http.MethodPost, Path: "/investments", Summary: "Create investment", Tags: []string{"investments"}, Auth: true,
				Description: "Buys units of a fund at its current NAV for the authenticated user.",
				Request:     InvestmentCreate{}, Response: wealth.Investment{}, Errors: []int{404}, Handler: s.create},
			{Method: http.MethodPost, Path: "/investments/", Summary: "Create investment", Tags: []string{"investments"}, Auth: true,
				Request: InvestmentCreate{}, Response: wealth.Investment{}, Errors: []int{404}, Handler: s.create},
			{Method: http.MethodGet, Path: "/portfolio/summary", Summary: "Get portfolio summary", Tags: []string{"portfolio"}, Auth: true,
				Description: "Returns total investment, current value, returns, and asset allocation.",
				Response:    wealth.Summary{}, Errors: []int{500}, Handler: s.summary},
			{Method: http.MethodGet, Path: "/portfolio/investments", Summary: "Get portfolio investments", Tags: []string{"portfolio"}, Auth: true,
				Description: "Lists the investments of the portfolio with their returns.",
				Query:       FilterQuery{}, Response: InvestmentList{}, Handler: s.investments},
			{Method: http.MethodGet, Path: "/portfolio/analytics", Summary: "Get portfolio analytics", Tags: []string{"portfolio"}, Auth: true,
				Description: "Combines the portfolio summary and the detailed investments.",
				Response:    wealth.Analytics{}, Handler: s.analytics},
			{Method: http.MethodPost, Path: "/investments/update-navs", Summary: "Update investment navs", Tags: []string{"investments"}, Auth: true,
				Description: "Revalues every investment of the user at the latest NAV of its fund.",
				Response:    api.MessageResponse{}, Errors: []int{500}, Handler: s.updateNAVs},
			{Method: http.MethodGet, Path: "/portfolio/report", Summary: "Get portfolio report", Tags: []string{"portfolio"}, Auth: true,
				Description: "Renders the portfolio as markdown, or as HTML with format=html.",
				Query:       ReportQuery{}, Produces: "text/markdown", Handler: s.report},
		},
		Authenticator: s.issuer.RequireUser(api.Detail),
		Probe:         s.store.Ping,
	}
}

func (s *Service) root(w http.ResponseWriter, _ *http.Request) {
	api.WriteJSON(w, http.StatusOK, Info{Service: Name, Version: Version, Status: "healthy"})
}

func (s *Service) health(w http.ResponseWriter, _ *http.Request) {
	api.WriteJSON(w, http.StatusOK, api.HealthResponse{Status: "healthy", Service: "investment-service"})
}

func (s *Service) funds(w http.ResponseWriter, r *http.Request) {
	funds, err := s.store.Funds.List(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, funds)
}

func (s *Service) initialize(w http.ResponseWriter, r *http.Request) {
	seeded, err := s.store.Funds.SeedSamples(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	if seeded {
		s.logger.Info("sample funds installed", zap.Int("funds", len(wealth.SampleFunds())))
	}
	api.WriteJSON(w, http.StatusOK, api.MessageResponse{Message: "Sample data initialized"})
}

func (s *Service) create(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	var in InvestmentCreate
	if err := api.DecodeJSON(r, &in); err != nil {
		api.WriteError(w, err)
		return
	}
	if err := in.Validate(); err != nil {
		api.WriteError(w, api.Invalid("body", err))
		return
	}
	fund, err := s.store.Funds.ByID(r.Context(), in.FundID)
	if errors.Is(err, store.ErrNotFound) {
		api.Detail(w, http.StatusNotFound, "Fund not found")
		return
	}
	if err != nil {
		s.fail(w, r, err)
		return
	}
	inv, err := wealth.NewInvestment(p.UserID, fund, in.PurchaseAmount, s.now())
	if err != nil {
		s.fail(w, r, api.Invalid("body", err))
		return
	}
	inv, err = s.store.Investments.Create(r.Context(), inv)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.logger.Info("investment created",
		zap.Int64("investment_id", inv.ID),
		zap.Int64("user_id", inv.UserID),
		zap.String("scheme_code", fund.SchemeCode),
		zap.Stringer("amount", inv.PurchaseAmount))
	api.WriteJSON(w, http.StatusOK, inv)
}

func (s *Service) summary(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	investments, err := s.store.Investments.ByUser(r.Context(), p.UserID)
	if err != nil {
		s.fail(w, r, api.Errorf(http.StatusInternalServerError, "An error occurred while fetching portfolio summary"), zap.NamedError("cause", err))
		return
	}
	api.WriteJSON(w, http.StatusOK, wealth.Summarize(investments))
}

func (s *Service) investments(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	filter, err := parseFilter(r.URL.Query())
	if err != nil {
		api.WriteError(w, err)
		return
	}
	investments, err := s.store.Investments.ByUser(r.Context(), p.UserID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, InvestmentList{Investments: wealth.Rows(filter.Apply(investments))})
}

func (s *Service) analytics(w http.ResponseWriter, r *http.Request) {
	p, _ := auth.FromContext(r.Context())
	investments, err := s.store.Investments.ByUser(r.Context(), p.UserID)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	api.WriteJSON(w, http.StatusOK, wealth.Analyze(investments))
}

// fail answers with err, logging the errors that are not client errors.
func (s *Service) fail(w http.ResponseWriter, r *http.Request, err error, fields ...zap.Field) {
	var apiErr *api.Error
	if !errors.As(err, &apiErr) || apiErr.Status >= http.StatusInternalServerError {
		fields = append(fields,
			zap.String("path", r.URL.Path),
			zap.String("request_id", api.GetRequestID(r.Context())),
			zap.Error(err))
		s.logger.Error("request failed", fields...)
	}
	api.WriteError(w, err)
}
