package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/sri-akshat/wealth-manager"
)

// Funds stores mutual funds.
type Funds struct{ s *Store }

type fundRow struct {
	ID           int64           `db:"id"`
	SchemeCode   string          `db:"scheme_code"`
	SchemeName   string          `db:"scheme_name"`
	Category     string          `db:"category"`
	NAV          wealth.Quantity `db:"nav"`
	AUM          wealth.Money    `db:"aum"`
	RiskLevel    string          `db:"risk_level"`
	ExpenseRatio float64         `db:"expense_ratio"`
	LastUpdated  string          `db:"last_updated"`
}

func (r fundRow) fund() (wealth.MutualFund, error) {
	category, err := wealth.ParseFundCategory(r.Category)
	if err != nil {
		return wealth.MutualFund{}, fmt.Errorf("fund %s: %w", r.SchemeCode, err)
	}
	updated, err := parseTime(r.LastUpdated)
	if err != nil {
		return wealth.MutualFund{}, err
	}
	return wealth.MutualFund{
		ID:           r.ID,
		SchemeCode:   r.SchemeCode,
		SchemeName:   r.SchemeName,
		Category:     category,
		NAV:          r.NAV,
		AUM:          r.AUM,
		RiskLevel:    r.RiskLevel,
		ExpenseRatio: wealth.Percent(r.ExpenseRatio),
		LastUpdated:  updated,
	}, nil
}

const fundColumns = `id, scheme_code, scheme_name, category, nav, aum, risk_level, expense_ratio, last_updated`

// Create validates and inserts f. A taken scheme code returns ErrDuplicate.
func (r *Funds) Create(ctx context.Context, f wealth.MutualFund) (wealth.MutualFund, error) {
	if err := f.Validate(); err != nil {
		return wealth.MutualFund{}, fmt.Errorf("invalid fund %s: %w", f.SchemeCode, err)
	}
	if f.LastUpdated.IsZero() {
		f.LastUpdated = r.s.now()
	}
	id, err := r.s.insert(ctx,
		`INSERT INTO mutual_funds (scheme_code, scheme_name, category, nav, aum, risk_level, expense_ratio, last_updated) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		f.SchemeCode, f.SchemeName, string(f.Category), f.NAV, f.AUM, f.RiskLevel, float64(f.ExpenseRatio), formatTime(f.LastUpdated))
	if err != nil {
		return wealth.MutualFund{}, fmt.Errorf("cannot create fund %s: %w", f.SchemeCode, err)
	}
	f.ID = id
	return f, nil
}

// ByID returns the fund with id, or ErrNotFound.
func (r *Funds) ByID(ctx context.Context, id int64) (wealth.MutualFund, error) {
	return r.get(ctx, fmt.Sprintf("fund %d", id), `SELECT `+fundColumns+` FROM mutual_funds WHERE id = ?`, id)
}

// ByCode returns the fund with the scheme code, or ErrNotFound.
func (r *Funds) ByCode(ctx context.Context, code string) (wealth.MutualFund, error) {
	return r.get(ctx, "fund "+code, `SELECT `+fundColumns+` FROM mutual_funds WHERE scheme_code = ?`, code)
}

func (r *Funds) get(ctx context.Context, what, query string, args ...any) (wealth.MutualFund, error) {
	var row fundRow
	err := r.s.db.GetContext(ctx, &row, r.s.db.Rebind(query), args...)
	if errors.Is(err, sql.ErrNoRows) {
		return wealth.MutualFund{}, fmt.Errorf("%s: %w", what, ErrNotFound)
	}
	if err != nil {
		return wealth.MutualFund{}, fmt.Errorf("cannot load %s: %w", what, err)
	}
	return row.fund()
}

// List returns every fund ordered by id.
func (r *Funds) List(ctx context.Context) ([]wealth.MutualFund, error) {
	var rows []fundRow
	if err := r.s.db.SelectContext(ctx, &rows, `SELECT `+fundColumns+` FROM mutual_funds ORDER BY id`); err != nil {
		return nil, fmt.Errorf("cannot list funds: %w", err)
	}
	return fundsOf(rows)
}

func fundsOf(rows []fundRow) ([]wealth.MutualFund, error) {
	funds := make([]wealth.MutualFund, 0, len(rows))
	for _, row := range rows {
		f, err := row.fund()
		if err != nil {
			return nil, err
		}
		funds = append(funds, f)
	}
	return funds, nil
}

// Count returns the number of funds.
func (r *Funds) Count(ctx context.Context) (int, error) {
	var n int
	if err := r.s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM mutual_funds`); err != nil {
		return 0, fmt.Errorf("cannot count funds: %w", err)
	}
	return n, nil
}

// SeedSamples installs the sample funds unless some fund already exists.
// It reports whether funds were inserted.
func (r *Funds) SeedSamples(ctx context.Context) (bool, error) {
	n, err := r.Count(ctx)
	if err != nil {
		return false, err
	}
	if n > 0 {
		return false, nil
	}
	tx, err := r.s.db.BeginTxx(ctx, nil)
	if err != nil {
		return false, fmt.Errorf("cannot seed funds: %w", err)
	}
	defer tx.Rollback()
	now := formatTime(r.s.now())
	for _, f := range wealth.SampleFunds() {
		_, err := tx.ExecContext(ctx, tx.Rebind(
			`INSERT INTO mutual_funds (scheme_code, scheme_name, category, nav, aum, risk_level, expense_ratio, last_updated) VALUES (?, ?, ?, ?, ?, ?, ?, ?)`),
			f.SchemeCode, f.SchemeName, string(f.Category), f.NAV, f.AUM, f.RiskLevel, float64(f.ExpenseRatio), now)
		if err != nil {
			return false, fmt.Errorf("cannot seed fund %s: %w", f.SchemeCode, classify(err))
		}
	}
	if err := tx.Commit(); err != nil {
		return false, fmt.Errorf("cannot seed funds: %w", err)
	}
	return true, nil
}

// UpdateNAV sets the NAV of fund id.
func (r *Funds) UpdateNAV(ctx context.Context, id int64, nav wealth.Quantity, at time.Time) error {
	return updateNAV(ctx, r.s.db, id, nav, at)
}

func updateNAV(ctx context.Context, db execer, id int64, nav wealth.Quantity, at time.Time) error {
	if !nav.IsPositive() {
		return fmt.Errorf("fund %d: nav %s: %w", id, nav, wealth.ErrInvalidAmount)
	}
	res, err := db.ExecContext(ctx, db.Rebind(`UPDATE mutual_funds SET nav = ?, last_updated = ? WHERE id = ?`), nav, formatTime(at), id)
	if err != nil {
		return fmt.Errorf("cannot update nav of fund %d: %w", id, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("fund %d: %w", id, ErrNotFound)
	}
	return nil
}
