package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sri-akshat/wealth-manager"
)

// Users stores platform accounts.
type Users struct{ s *Store }

type userRow struct {
	ID             int64          `db:"id"`
	Email          string         `db:"email"`
	HashedPassword string         `db:"hashed_password"`
	FullName       string         `db:"full_name"`
	Role           string         `db:"role"`
	IsActive       bool           `db:"is_active"`
	CreatedAt      string         `db:"created_at"`
	LastLogin      sql.NullString `db:"last_login"`
}

func (r userRow) user() (wealth.User, error) {
	role, err := wealth.ParseRole(r.Role)
	if err != nil {
		return wealth.User{}, fmt.Errorf("user %d: %w", r.ID, err)
	}
	created, err := parseTime(r.CreatedAt)
	if err != nil {
		return wealth.User{}, err
	}
	u := wealth.User{
		ID:             r.ID,
		Email:          r.Email,
		HashedPassword: r.HashedPassword,
		FullName:       r.FullName,
		Role:           role,
		IsActive:       r.IsActive,
		CreatedAt:      created,
	}
	if r.LastLogin.Valid {
		last, err := parseTime(r.LastLogin.String)
		if err != nil {
			return wealth.User{}, err
		}
		u.LastLogin = &last
	}
	return u, nil
}

const userColumns = `id, email, hashed_password, full_name, role, is_active, created_at, last_login`

// Create inserts u and returns it with its id and creation time set.
// The email is stored lower cased; a taken email returns ErrDuplicate.
func (r *Users) Create(ctx context.Context, u wealth.User) (wealth.User, error) {
	u.Email = strings.ToLower(u.Email)
	if u.Role == "" {
		u.Role = wealth.Customer
	}
	u.CreatedAt = r.s.now()
	id, err := r.s.insert(ctx,
		`INSERT INTO users (email, hashed_password, full_name, role, is_active, created_at) VALUES (?, ?, ?, ?, ?, ?)`,
		u.Email, u.HashedPassword, u.FullName, string(u.Role), u.IsActive, formatTime(u.CreatedAt))
	if err != nil {
		return wealth.User{}, fmt.Errorf("cannot create user %q: %w", u.Email, err)
	}
	u.ID = id
	return u, nil
}

// ByEmail returns the user registered with email, or ErrNotFound.
func (r *Users) ByEmail(ctx context.Context, email string) (wealth.User, error) {
	var row userRow
	err := r.s.db.GetContext(ctx, &row, r.s.db.Rebind(`SELECT `+userColumns+` FROM users WHERE email = ?`), strings.ToLower(email))
	if errors.Is(err, sql.ErrNoRows) {
		return wealth.User{}, fmt.Errorf("user %q: %w", email, ErrNotFound)
	}
	if err != nil {
		return wealth.User{}, fmt.Errorf("cannot load user %q: %w", email, err)
	}
	return row.user()
}

// List returns at most limit users ordered by id, after skipping skip of them.
func (r *Users) List(ctx context.Context, skip, limit int) ([]wealth.User, error) {
	var rows []userRow
	err := r.s.db.SelectContext(ctx, &rows, r.s.db.Rebind(`SELECT `+userColumns+` FROM users ORDER BY id LIMIT ? OFFSET ?`), limit, skip)
	if err != nil {
		return nil, fmt.Errorf("cannot list users: %w", err)
	}
	users := make([]wealth.User, 0, len(rows))
	for _, row := range rows {
		u, err := row.user()
		if err != nil {
			return nil, err
		}
		users = append(users, u)
	}
	return users, nil
}

// Count returns the number of users.
func (r *Users) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM users`); err != nil {
		return 0, fmt.Errorf("cannot count users: %w", err)
	}
	return n, nil
}

// TouchLogin records a successful login at the given time.
func (r *Users) TouchLogin(ctx context.Context, id int64, at time.Time) error {
	res, err := r.s.db.ExecContext(ctx, r.s.db.Rebind(`UPDATE users SET last_login = ? WHERE id = ?`), formatTime(at), id)
	if err != nil {
		return fmt.Errorf("cannot record login of user %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("user %d: %w", id, ErrNotFound)
	}
	return nil
}
