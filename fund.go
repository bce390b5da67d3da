package wealth

import (
	"errors"
	"strings"
	"time"
)

// MutualFund is a scheme users can invest in. NAV is the net asset value of one unit.
type MutualFund struct {
	ID           int64        `json:"id"`
	SchemeCode   string       `json:"scheme_code"`
	SchemeName   string       `json:"scheme_name"`
	Category     FundCategory `json:"category"`
	NAV          Quantity     `json:"nav" openapi:"gt0"`
	AUM          Money        `json:"aum" openapi:"gt0"` // assets under management
	RiskLevel    string       `json:"risk_level"`        // HIGH, MEDIUM, LOW
	ExpenseRatio Percent      `json:"expense_ratio" openapi:"gt0"`
	LastUpdated  time.Time    `json:"last_updated"`
}

// Validate checks the fund invariants before it is stored.
func (f MutualFund) Validate() error {
	var errs []error
	if strings.TrimSpace(f.SchemeCode) == "" {
		errs = append(errs, invalid("scheme_code", errors.New("must not be empty")))
	}
	if !f.Category.Valid() {
		errs = append(errs, invalid("category", ErrInvalidCategory))
	}
	if !f.NAV.IsPositive() {
		errs = append(errs, invalid("nav", ErrInvalidAmount))
	}
	if !f.AUM.IsPositive() {
		errs = append(errs, invalid("aum", ErrInvalidAmount))
	}
	if f.ExpenseRatio <= 0 {
		errs = append(errs, invalid("expense_ratio", ErrInvalidAmount))
	}
	switch f.RiskLevel {
	case "HIGH", "MEDIUM", "LOW":
	default:
		errs = append(errs, invalid("risk_level", errors.New("must be one of HIGH, MEDIUM, LOW")))
	}
	return errors.Join(errs...)
}

// SampleFunds are the funds installed by the sample data initialization.
func SampleFunds() []MutualFund {
	return []MutualFund{
		{
			SchemeCode:   "HDFC001",
			SchemeName:   "HDFC Top 100 Fund",
			Category:     Equity,
			NAV:          Q(100.50),
			AUM:          M(1000000000),
			RiskLevel:    "HIGH",
			ExpenseRatio: 1.5,
		},
		{
			SchemeCode:   "ICICI001",
			SchemeName:   "ICICI Prudential Bluechip Fund",
			Category:     Equity,
			NAV:          Q(75.25),
			AUM:          M(800000000),
			RiskLevel:    "HIGH",
			ExpenseRatio: 1.2,
		},
		{
			SchemeCode:   "SBI001",
			SchemeName:   "SBI Debt Fund",
			Category:     Debt,
			NAV:          Q(25.75),
			AUM:          M(500000000),
			RiskLevel:    "LOW",
			ExpenseRatio: 0.8,
		},
	}
}
