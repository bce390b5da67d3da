package wealth

import (
	"database/sql/driver"

	"github.com/Rhymond/go-money"
	"github.com/shopspring/decimal"
)

// Currency is the platform currency. Every Money value is expressed in it.
const Currency = "INR"

// Money represents a monetary value in the platform currency.
type Money struct {
	value decimal.Decimal // as major unit value
}

// M creates a Money from a number.
func M[T float32 | float64 | int | int32 | int64 | uint | uint32 | uint64 | decimal.Decimal](value T) Money {
	return Money{value: newDecimal(value)}
}

// ParseMoney parses a decimal string.
func ParseMoney(s string) (Money, error) {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return Money{}, err
	}
	return Money{value: d}, nil
}

// currency returns the platform currency definition.
func currency() money.Currency {
	// to get a never nil currency I need to call the Money constructor
	return *money.New(0, Currency).Currency()
}

// String returns the amount formatted in the platform currency, e.g. ₹1,234.50.
func (m Money) String() string {
	cur := currency()
	dec := m.value.Round(int32(cur.Fraction)).Shift(int32(cur.Fraction))
	return cur.Formatter().Format(dec.IntPart())
}

// SignedString returns the string representation of the money value with a sign.
// 0 is represented as a "-".
func (m Money) SignedString() string {
	if m.value.IsZero() {
		return "-"
	}
	if m.value.IsPositive() {
		return "+" + m.String()
	}
	return m.String()
}

func (m Money) Decimal() decimal.Decimal        { return m.value }
func (m Money) Equal(n Money) bool              { return m.value.Equal(n.value) }
func (m Money) IsZero() bool                    { return m.value.IsZero() }
func (m Money) IsPositive() bool                { return m.value.IsPositive() }
func (m Money) IsNegative() bool                { return m.value.IsNegative() }
func (m Money) LessThan(n Money) bool           { return m.value.LessThan(n.value) }
func (m Money) LessThanOrEqual(n Money) bool    { return m.value.LessThanOrEqual(n.value) }
func (m Money) GreaterThan(n Money) bool        { return m.value.GreaterThan(n.value) }
func (m Money) GreaterThanOrEqual(n Money) bool { return m.value.GreaterThanOrEqual(n.value) }
func (m Money) Neg() Money                      { return Money{value: m.value.Neg()} }
func (m Money) Add(n Money) Money               { return Money{value: m.value.Add(n.value)} }
func (m Money) Sub(n Money) Money               { return Money{value: m.value.Sub(n.value)} }
func (m Money) Mul(q Quantity) Money            { return Money{value: m.value.Mul(q.value)} }
func (m Money) Div(q Quantity) Money            { return Money{value: m.value.Div(q.value)} }

// DivPrice returns how many units of price n the amount m buys.
func (m Money) DivPrice(n Quantity) Quantity { return Quantity{value: m.value.Div(n.value)} }

// PercentOf returns m as a percentage of base, or 0 when base is not positive.
func (m Money) PercentOf(base Money) Percent {
	if !base.IsPositive() {
		return 0
	}
	return Percent(m.value.Div(base.value).Mul(hundred).InexactFloat64())
}

// AsFloat is meant for display and tests only, calculations stay exact.
func (m Money) AsFloat() float64 { return m.value.InexactFloat64() }

// SumMoney adds up amounts.
func SumMoney(amounts ...Money) Money {
	var total Money
	for _, a := range amounts {
		total = total.Add(a)
	}
	return total
}

var hundred = decimal.NewFromInt(100)

// MarshalJSON writes the amount as a bare JSON number rounded to the currency
// fraction.
func (m Money) MarshalJSON() ([]byte, error) {
	rounded := m.value.Round(int32(currency().Fraction))
	return []byte(rounded.String()), nil
}

// UnmarshalJSON accepts both numbers and numeric strings.
func (m *Money) UnmarshalJSON(data []byte) error {
	return m.value.UnmarshalJSON(data)
}

// Value implements driver.Valuer, amounts are persisted as exact decimal text.
func (m Money) Value() (driver.Value, error) { return m.value.String(), nil }

// Scan implements sql.Scanner.
func (m *Money) Scan(src any) error { return m.value.Scan(src) }
