package wealth

import (
	"fmt"
	"time"
)

// Investment is a position a user holds in a mutual fund.
type Investment struct {
	ID             int64            `json:"id"`
	UserID         int64            `json:"user_id"`
	FundID         int64            `json:"fund_id"`
	Units          Quantity         `json:"units"`
	PurchaseNAV    Quantity         `json:"purchase_nav"`
	CurrentNAV     Quantity         `json:"current_nav"`
	PurchaseAmount Money            `json:"purchase_amount"`
	CurrentValue   Money            `json:"current_value"`
	PurchaseDate   time.Time        `json:"purchase_date"`
	Status         InvestmentStatus `json:"status"`

	// Fund is the fund the investment is held in, when it has been loaded.
	Fund *MutualFund `json:"-"`
}

// NewInvestment buys amount worth of fund units at the fund's current NAV.
func NewInvestment(userID int64, fund MutualFund, amount Money, on time.Time) (Investment, error) {
	if !amount.IsPositive() {
		return Investment{}, invalid("purchase_amount", ErrInvalidAmount)
	}
	if !fund.NAV.IsPositive() {
		return Investment{}, fmt.Errorf("fund %s has no valid nav: %w", fund.SchemeCode, ErrInvalidAmount)
	}
	return Investment{
		UserID:         userID,
		FundID:         fund.ID,
		Units:          amount.DivPrice(fund.NAV),
		PurchaseNAV:    fund.NAV,
		CurrentNAV:     fund.NAV,
		PurchaseAmount: amount,
		CurrentValue:   amount,
		PurchaseDate:   on,
		Status:         Completed,
		Fund:           &fund,
	}, nil
}

// CalculateReturns returns the absolute gain and its percentage of the purchase amount.
func (inv Investment) CalculateReturns() (Money, Percent) {
	returns := inv.CurrentValue.Sub(inv.PurchaseAmount)
	return returns, returns.PercentOf(inv.PurchaseAmount)
}

// IsProfitable reports whether the investment is worth more than it cost.
func (inv Investment) IsProfitable() bool {
	return inv.CurrentValue.GreaterThan(inv.PurchaseAmount)
}

// UpdateCurrentValue revalues the held units at nav.
func (inv *Investment) UpdateCurrentValue(nav Quantity) {
	inv.CurrentNAV = nav
	inv.CurrentValue = inv.Units.MulPrice(nav)
}

// Category returns the category of the loaded fund, or "" when the fund is not loaded.
func (inv Investment) Category() FundCategory {
	if inv.Fund == nil {
		return ""
	}
	return inv.Fund.Category
}

// FundName returns the scheme name of the loaded fund.
func (inv Investment) FundName() string {
	if inv.Fund == nil {
		return ""
	}
	return inv.Fund.SchemeName
}
