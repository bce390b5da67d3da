// Package nav provides the latest net asset value of the funds investments are held in.
package nav

import (
	"context"

	"github.com/sri-akshat/wealth-manager"
)

// Provider returns the latest NAV of the fund an investment is held in.
type Provider interface {
	Latest(ctx context.Context, inv wealth.Investment) (wealth.Quantity, error)
}

// Static uses the NAV stored with the fund, or the investment current NAV
// when the fund is not loaded.
type Static struct{}

func (Static) Latest(_ context.Context, inv wealth.Investment) (wealth.Quantity, error) {
	if inv.Fund != nil && inv.Fund.NAV.IsPositive() {
		return inv.Fund.NAV, nil
	}
	return inv.CurrentNAV, nil
}
