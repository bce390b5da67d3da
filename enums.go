package wealth

import (
	"fmt"
	"strings"
)

// FundCategory classifies a mutual fund by asset class.
type FundCategory string

const (
	Equity FundCategory = "equity"
	Debt   FundCategory = "debt"
	Hybrid FundCategory = "hybrid"
	Liquid FundCategory = "liquid"
	Index  FundCategory = "index"
)

// FundCategories lists every known category in display order.
var FundCategories = []FundCategory{Equity, Debt, Hybrid, Liquid, Index}

// ParseFundCategory parses a category name, ignoring case.
func ParseFundCategory(s string) (FundCategory, error) {
	c := FundCategory(strings.ToLower(strings.TrimSpace(s)))
	if !c.Valid() {
		return "", fmt.Errorf("%w: %q", ErrInvalidCategory, s)
	}
	return c, nil
}

func (c FundCategory) Valid() bool {
	switch c {
	case Equity, Debt, Hybrid, Liquid, Index:
		return true
	}
	return false
}

func (c FundCategory) String() string { return string(c) }

// Enum lists the accepted values, used to document the type.
func (FundCategory) Enum() []string { return enumStrings(FundCategories) }

// InvestmentStatus is the processing state of an investment order.
type InvestmentStatus string

const (
	Pending   InvestmentStatus = "pending"
	Completed InvestmentStatus = "completed"
	Failed    InvestmentStatus = "failed"
	Cancelled InvestmentStatus = "cancelled"
)

var InvestmentStatuses = []InvestmentStatus{Pending, Completed, Failed, Cancelled}

func ParseInvestmentStatus(s string) (InvestmentStatus, error) {
	st := InvestmentStatus(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range InvestmentStatuses {
		if st == known {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidStatus, s)
}

func (InvestmentStatus) Enum() []string { return enumStrings(InvestmentStatuses) }

// Role grants a user access to parts of the platform.
type Role string

const (
	Admin       Role = "admin"
	Customer    Role = "customer"
	Distributor Role = "distributor"
)

var Roles = []Role{Admin, Customer, Distributor}

// ParseRole parses a role name, the empty string is the default Customer role.
func ParseRole(s string) (Role, error) {
	if strings.TrimSpace(s) == "" {
		return Customer, nil
	}
	r := Role(strings.ToLower(strings.TrimSpace(s)))
	for _, known := range Roles {
		if r == known {
			return r, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrInvalidRole, s)
}

func (Role) Enum() []string { return enumStrings(Roles) }

func enumStrings[T ~string](values []T) []string {
	out := make([]string, len(values))
	for i, v := range values {
		out[i] = string(v)
	}
	return out
}
