package wealth

import "errors"

var (
	// ErrInvalidAmount is returned when an amount that must be positive is not.
	ErrInvalidAmount = errors.New("amount must be greater than 0")
	// ErrInvalidCategory is returned for an unknown fund category.
	ErrInvalidCategory = errors.New("unknown fund category")
	// ErrInvalidRole is returned for an unknown user role.
	ErrInvalidRole = errors.New("unknown role")
	// ErrInvalidStatus is returned for an unknown investment status.
	ErrInvalidStatus = errors.New("unknown investment status")
	// ErrInvalidDateRange is returned by a Filter whose end date precedes its start date.
	ErrInvalidDateRange = errors.New("end_date must be after start_date")
)

// FieldError reports an invalid field of an input value.
type FieldError struct {
	Field string
	Err   error
}

func (e *FieldError) Error() string { return e.Field + ": " + e.Err.Error() }
func (e *FieldError) Unwrap() error { return e.Err }

func invalid(field string, err error) *FieldError { return &FieldError{Field: field, Err: err} }
