package wealth

import (
	"time"

	"github.com/shopspring/decimal"
)

// Summary aggregates a user's investments.
type Summary struct {
	TotalInvestment     Money              `json:"total_investment"`
	CurrentValue        Money              `json:"current_value"`
	TotalReturns        Money              `json:"total_returns"`
	ReturnsPercentage   Percent            `json:"returns_percentage"`
	NumberOfInvestments int                `json:"number_of_investments"`
	AssetAllocation     map[string]Percent `json:"asset_allocation"`
}

// Summarize computes the totals, returns and asset allocation of investments.
//
// The allocation maps each lowercase category to its share of the current
// value, in percent. Investments without a loaded fund are not allocated.
func Summarize(investments []Investment) Summary {
	s := Summary{AssetAllocation: map[string]Percent{}}
	if len(investments) == 0 {
		return s
	}

	byCategory := map[string]decimal.Decimal{}
	var allocated decimal.Decimal
	for _, inv := range investments {
		s.TotalInvestment = s.TotalInvestment.Add(inv.PurchaseAmount)
		s.CurrentValue = s.CurrentValue.Add(inv.CurrentValue)
		if c := inv.Category(); c != "" {
			key := string(c)
			byCategory[key] = byCategory[key].Add(inv.CurrentValue.value)
			allocated = allocated.Add(inv.CurrentValue.value)
		}
	}
	s.TotalReturns = s.CurrentValue.Sub(s.TotalInvestment)
	s.ReturnsPercentage = s.TotalReturns.PercentOf(s.TotalInvestment)
	s.NumberOfInvestments = len(investments)

	for category, value := range byCategory {
		if allocated.IsZero() {
			s.AssetAllocation[category] = 0
			continue
		}
		s.AssetAllocation[category] = Percent(value.Div(allocated).Mul(hundred).InexactFloat64())
	}
	return s
}

// PortfolioInvestment is one line of the detailed portfolio.
type PortfolioInvestment struct {
	ID                int64        `json:"id"`
	FundName          string       `json:"fund_name"`
	Category          FundCategory `json:"category"`
	Units             Quantity     `json:"units"`
	PurchaseNAV       Quantity     `json:"purchase_nav"`
	CurrentNAV        Quantity     `json:"current_nav"`
	PurchaseAmount    Money        `json:"purchase_amount"`
	CurrentValue      Money        `json:"current_value"`
	Returns           Money        `json:"returns"`
	ReturnsPercentage Percent      `json:"returns_percentage"`
	PurchaseDate      time.Time    `json:"purchase_date"`
}

// Rows details every investment with its returns.
func Rows(investments []Investment) []PortfolioInvestment {
	rows := make([]PortfolioInvestment, 0, len(investments))
	for _, inv := range investments {
		returns, pct := inv.CalculateReturns()
		rows = append(rows, PortfolioInvestment{
			ID:                inv.ID,
			FundName:          inv.FundName(),
			Category:          inv.Category(),
			Units:             inv.Units,
			PurchaseNAV:       inv.PurchaseNAV,
			CurrentNAV:        inv.CurrentNAV,
			PurchaseAmount:    inv.PurchaseAmount,
			CurrentValue:      inv.CurrentValue,
			Returns:           returns,
			ReturnsPercentage: pct,
			PurchaseDate:      inv.PurchaseDate,
		})
	}
	return rows
}

// Analytics combines the summary and the detailed lines of a portfolio.
type Analytics struct {
	Summary     Summary               `json:"summary"`
	Investments []PortfolioInvestment `json:"investments"`
}

// Analyze builds the Analytics of investments.
func Analyze(investments []Investment) Analytics {
	return Analytics{
		Summary:     Summarize(investments),
		Investments: Rows(investments),
	}
}

// Filter selects investments. Zero fields do not filter.
type Filter struct {
	Category  FundCategory
	MinAmount *Money
	MaxAmount *Money
	StartDate *time.Time
	EndDate   *time.Time
}

// Validate rejects an end date before the start date.
func (f Filter) Validate() error {
	if f.Category != "" && !f.Category.Valid() {
		return invalid("category", ErrInvalidCategory)
	}
	if f.StartDate != nil && f.EndDate != nil && f.EndDate.Before(*f.StartDate) {
		return invalid("end_date", ErrInvalidDateRange)
	}
	return nil
}

// Match reports whether inv passes every set criterion. Bounds are inclusive.
func (f Filter) Match(inv Investment) bool {
	if f.Category != "" && inv.Category() != f.Category {
		return false
	}
	if f.MinAmount != nil && inv.PurchaseAmount.LessThan(*f.MinAmount) {
		return false
	}
	if f.MaxAmount != nil && inv.PurchaseAmount.GreaterThan(*f.MaxAmount) {
		return false
	}
	if f.StartDate != nil && inv.PurchaseDate.Before(*f.StartDate) {
		return false
	}
	if f.EndDate != nil && inv.PurchaseDate.After(*f.EndDate) {
		return false
	}
	return true
}

// Apply returns the investments matching f, in order.
func (f Filter) Apply(investments []Investment) []Investment {
	var out []Investment
	for _, inv := range investments {
		if f.Match(inv) {
			out = append(out, inv)
		}
	}
	return out
}
