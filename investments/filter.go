package investments

import (
	"errors"
	"net/url"
	"time"

	"github.com/sri-akshat/wealth-manager"
	"github.com/sri-akshat/wealth-manager/api"
)

// parseFilter reads the portfolio filter from query parameters. Dates are
// RFC 3339 timestamps or days, an end day includes the whole day.
func parseFilter(q url.Values) (wealth.Filter, error) {
	var f wealth.Filter
	var errs []error
	invalid := func(field, msg string) {
		errs = append(errs, &wealth.FieldError{Field: field, Err: errors.New(msg)})
	}

	if v := q.Get("category"); v != "" {
		c, err := wealth.ParseFundCategory(v)
		if err != nil {
			invalid("category", "input should be one of equity, debt, hybrid, liquid, index")
		}
		f.Category = c
	}
	amount := func(field string) *wealth.Money {
		v := q.Get(field)
		if v == "" {
			return nil
		}
		m, err := wealth.ParseMoney(v)
		if err != nil {
			invalid(field, "input should be a valid number")
			return nil
		}
		return &m
	}
	f.MinAmount = amount("min_amount")
	f.MaxAmount = amount("max_amount")

	date := func(field string, endOfDay bool) *time.Time {
		v := q.Get(field)
		if v == "" {
			return nil
		}
		if t, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return &t
		}
		t, err := time.Parse(time.DateOnly, v)
		if err != nil {
			invalid(field, "input should be a valid datetime")
			return nil
		}
		if endOfDay {
			t = t.Add(24*time.Hour - time.Nanosecond)
		}
		return &t
	}
	f.StartDate = date("start_date", false)
	f.EndDate = date("end_date", true)

	if len(errs) == 0 {
		if err := f.Validate(); err != nil {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return wealth.Filter{}, api.Invalid("query", errors.Join(errs...))
	}
	return f, nil
}
