package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	wealth "github.com/sri-akshat/wealth-manager"
)

// Error is an error with the HTTP status and the detail to answer with.
// Detail is either a string or a []ValidationError.
type Error struct {
	Status int
	Detail any
}

func (e *Error) Error() string { return fmt.Sprintf("%d: %v", e.Status, e.Detail) }

// Errorf returns an *Error with a formatted detail message.
func Errorf(status int, format string, args ...any) *Error {
	return &Error{Status: status, Detail: fmt.Sprintf(format, args...)}
}

// ErrorResponse is the body of every error but validation errors.
type ErrorResponse struct {
	Detail string `json:"detail"`
}

// ValidationError locates one invalid input.
type ValidationError struct {
	Loc  []string `json:"loc"`
	Msg  string   `json:"msg"`
	Type string   `json:"type"`
}

// HTTPValidationError is the body of a 422 response.
type HTTPValidationError struct {
	Detail []ValidationError `json:"detail"`
}

// Invalid converts err to a 422 error. Field errors found in err are located
// under the in prefix ("body", "query").
func Invalid(in string, err error) *Error {
	var details []ValidationError
	for _, e := range flatten(err) {
		var fe *wealth.FieldError
		if errors.As(e, &fe) {
			details = append(details, ValidationError{Loc: []string{in, fe.Field}, Msg: fe.Err.Error(), Type: "value_error"})
			continue
		}
		details = append(details, ValidationError{Loc: []string{in}, Msg: e.Error(), Type: "value_error"})
	}
	return &Error{Status: http.StatusUnprocessableEntity, Detail: details}
}

// flatten expands joined errors.
func flatten(err error) []error {
	if err == nil {
		return nil
	}
	if joined, ok := err.(interface{ Unwrap() []error }); ok {
		var out []error
		for _, e := range joined.Unwrap() {
			out = append(out, flatten(e)...)
		}
		return out
	}
	return []error{err}
}

// Detail writes an ErrorResponse.
func Detail(w http.ResponseWriter, status int, detail string) {
	WriteJSON(w, status, ErrorResponse{Detail: detail})
}

// WriteError answers with err. Errors that are not *Error are reported as a
// bare 500 so that internals do not leak.
func WriteError(w http.ResponseWriter, err error) {
	var apiErr *Error
	if !errors.As(err, &apiErr) {
		Detail(w, http.StatusInternalServerError, "Internal Server Error")
		return
	}
	WriteJSON(w, apiErr.Status, map[string]any{"detail": apiErr.Detail})
}

// WriteJSON answers with v encoded as JSON.
func WriteJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(v)
}

// DecodeJSON decodes the request body into v. Malformed bodies are a 422 error.
func DecodeJSON(r *http.Request, v any) error {
	if r.Body == nil {
		return Invalid("body", errors.New("field required"))
	}
	dec := json.NewDecoder(r.Body)
	if err := dec.Decode(v); err != nil {
		return Invalid("body", fmt.Errorf("invalid JSON body: %w", err))
	}
	return nil
}

// HealthResponse is the body of the services health checks.
type HealthResponse struct {
	Status  string `json:"status"`
	Service string `json:"service,omitempty"`
}

// MessageResponse is a body carrying a single message.
type MessageResponse struct {
	Message string `json:"message"`
}
