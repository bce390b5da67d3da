package auth

import (
	"context"
	"errors"
	"net/http"

	wealth "github.com/sri-akshat/wealth-manager"
)

type principalKey struct{}

// WithPrincipal returns a context carrying p.
func WithPrincipal(ctx context.Context, p Principal) context.Context {
	return context.WithValue(ctx, principalKey{}, p)
}

// FromContext returns the principal stored by RequireUser.
func FromContext(ctx context.Context) (Principal, bool) {
	p, ok := ctx.Value(principalKey{}).(Principal)
	return p, ok
}

// ErrorWriter writes an error response with a status and a detail message.
type ErrorWriter func(w http.ResponseWriter, status int, detail string)

// Authenticate validates the Authorization header of r.
func (i *Issuer) Authenticate(r *http.Request) (Principal, error) {
	header := r.Header.Get("Authorization")
	if header == "" {
		return Principal{}, ErrNotAuthenticated
	}
	token, err := BearerToken(header)
	if err != nil {
		return Principal{}, err
	}
	return i.Parse(token)
}

// RequireUser rejects requests without a valid bearer token with 401.
func (i *Issuer) RequireUser(writeError ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, err := i.Authenticate(r)
			if err != nil {
				w.Header().Set("WWW-Authenticate", "Bearer")
				detail := ErrInvalidToken.Error()
				if errors.Is(err, ErrNotAuthenticated) {
					detail = ErrNotAuthenticated.Error()
				}
				writeError(w, http.StatusUnauthorized, detail)
				return
			}
			next.ServeHTTP(w, r.WithContext(WithPrincipal(r.Context(), p)))
		})
	}
}

// RequireRole rejects authenticated principals without role with 403.
// It must run after RequireUser.
func RequireRole(role wealth.Role, writeError ErrorWriter) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			p, ok := FromContext(r.Context())
			if !ok {
				w.Header().Set("WWW-Authenticate", "Bearer")
				writeError(w, http.StatusUnauthorized, ErrNotAuthenticated.Error())
				return
			}
			if p.Role != role {
				writeError(w, http.StatusForbidden, "Not authorized")
				return
			}
			next.ServeHTTP(w, r)
		})
	}
}
