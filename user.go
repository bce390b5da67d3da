package wealth

import (
	"errors"
	"net/mail"
	"strings"
	"time"
)

// MinPasswordLength and MaxPasswordLength bound accepted passwords. The upper
// bound is the bcrypt input limit.
const (
	MinPasswordLength = 8
	MaxPasswordLength = 72
)

// User is a platform account.
type User struct {
	ID             int64      `json:"id"`
	Email          string     `json:"email" openapi:"email"`
	HashedPassword string     `json:"-"`
	FullName       string     `json:"full_name"`
	Role           Role       `json:"role"`
	IsActive       bool       `json:"is_active"`
	CreatedAt      time.Time  `json:"created_at"`
	LastLogin      *time.Time `json:"last_login,omitempty"`
}

// NewUser is the input of a registration.
type NewUser struct {
	Email    string `json:"email" openapi:"email"`
	Password string `json:"password" openapi:"password"`
	FullName string `json:"full_name"`
	Role     Role   `json:"role,omitempty"`
}

// Normalize trims the input, lower cases the email and the role, and applies
// the default role.
func (u NewUser) Normalize() NewUser {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))
	u.FullName = strings.TrimSpace(u.FullName)
	if r, err := ParseRole(string(u.Role)); err == nil {
		u.Role = r
	}
	return u
}

// Validate returns a joined error with one FieldError per invalid field.
func (u NewUser) Validate() error {
	var errs []error
	if _, err := mail.ParseAddress(u.Email); err != nil || strings.ContainsAny(u.Email, "<> ") {
		errs = append(errs, invalid("email", errors.New("value is not a valid email address")))
	}
	switch {
	case len(u.Password) < MinPasswordLength:
		errs = append(errs, invalid("password", errors.New("password is too short")))
	case len(u.Password) > MaxPasswordLength:
		errs = append(errs, invalid("password", errors.New("password is too long")))
	}
	if u.FullName == "" {
		errs = append(errs, invalid("full_name", errors.New("must not be empty")))
	}
	if _, err := ParseRole(string(u.Role)); err != nil {
		errs = append(errs, invalid("role", err))
	}
	return errors.Join(errs...)
}
