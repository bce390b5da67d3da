package store

import (
	"context"
	"fmt"
	"maps"
	"slices"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/sri-akshat/wealth-manager"
)

// Investments stores user positions.
type Investments struct{ s *Store }

type investmentRow struct {
	ID             int64           `db:"id"`
	UserID         int64           `db:"user_id"`
	FundID         int64           `db:"fund_id"`
	Units          wealth.Quantity `db:"units"`
	PurchaseNAV    wealth.Quantity `db:"purchase_nav"`
	CurrentNAV     wealth.Quantity `db:"current_nav"`
	PurchaseDate   string          `db:"purchase_date"`
	Status         string          `db:"status"`
	PurchaseAmount wealth.Money    `db:"purchase_amount"`
	CurrentValue   wealth.Money    `db:"current_value"`
}

func (r investmentRow) investment() (wealth.Investment, error) {
	status, err := wealth.ParseInvestmentStatus(r.Status)
	if err != nil {
		return wealth.Investment{}, fmt.Errorf("investment %d: %w", r.ID, err)
	}
	date, err := parseTime(r.PurchaseDate)
	if err != nil {
		return wealth.Investment{}, err
	}
	return wealth.Investment{
		ID:             r.ID,
		UserID:         r.UserID,
		FundID:         r.FundID,
		Units:          r.Units,
		PurchaseNAV:    r.PurchaseNAV,
		CurrentNAV:     r.CurrentNAV,
		PurchaseAmount: r.PurchaseAmount,
		CurrentValue:   r.CurrentValue,
		PurchaseDate:   date,
		Status:         status,
	}, nil
}

// Create inserts inv and returns it with its id set.
// The fund must exist; callers check it first to answer with a proper error.
func (r *Investments) Create(ctx context.Context, inv wealth.Investment) (wealth.Investment, error) {
	if inv.Status == "" {
		inv.Status = wealth.Completed
	}
	if inv.PurchaseDate.IsZero() {
		inv.PurchaseDate = r.s.now()
	}
	id, err := r.s.insert(ctx,
		`INSERT INTO investments (user_id, fund_id, units, purchase_nav, current_nav, purchase_date, status, purchase_amount, current_value) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		inv.UserID, inv.FundID, inv.Units, inv.PurchaseNAV, inv.CurrentNAV, formatTime(inv.PurchaseDate), string(inv.Status), inv.PurchaseAmount, inv.CurrentValue)
	if err != nil {
		return wealth.Investment{}, fmt.Errorf("cannot create investment of user %d: %w", inv.UserID, err)
	}
	inv.ID = id
	return inv, nil
}

// ByUser returns the investments of userID ordered by id, each with its fund loaded.
func (r *Investments) ByUser(ctx context.Context, userID int64) ([]wealth.Investment, error) {
	var rows []investmentRow
	err := r.s.db.SelectContext(ctx, &rows, r.s.db.Rebind(
		`SELECT id, user_id, fund_id, units, purchase_nav, current_nav, purchase_date, status, purchase_amount, current_value FROM investments WHERE user_id = ? ORDER BY id`),
		userID)
	if err != nil {
		return nil, fmt.Errorf("cannot list investments of user %d: %w", userID, err)
	}
	if len(rows) == 0 {
		return []wealth.Investment{}, nil
	}

	funds, err := r.funds(ctx, rows)
	if err != nil {
		return nil, err
	}
	investments := make([]wealth.Investment, 0, len(rows))
	for _, row := range rows {
		inv, err := row.investment()
		if err != nil {
			return nil, err
		}
		if f, ok := funds[inv.FundID]; ok {
			inv.Fund = &f
		}
		investments = append(investments, inv)
	}
	return investments, nil
}

// funds loads the distinct funds referenced by rows.
func (r *Investments) funds(ctx context.Context, rows []investmentRow) (map[int64]wealth.MutualFund, error) {
	seen := make(map[int64]bool)
	var ids []int64
	for _, row := range rows {
		if !seen[row.FundID] {
			seen[row.FundID] = true
			ids = append(ids, row.FundID)
		}
	}
	query, args, err := sqlx.In(`SELECT `+fundColumns+` FROM mutual_funds WHERE id IN (?)`, ids)
	if err != nil {
		return nil, fmt.Errorf("cannot load funds: %w", err)
	}
	var fundRows []fundRow
	if err := r.s.db.SelectContext(ctx, &fundRows, r.s.db.Rebind(query), args...); err != nil {
		return nil, fmt.Errorf("cannot load funds: %w", err)
	}
	list, err := fundsOf(fundRows)
	if err != nil {
		return nil, err
	}
	funds := make(map[int64]wealth.MutualFund, len(list))
	for _, f := range list {
		funds[f.ID] = f
	}
	return funds, nil
}

// Update stores the current NAV, value and status of inv.
func (r *Investments) Update(ctx context.Context, inv wealth.Investment) error {
	return updateInvestment(ctx, r.s.db, inv)
}

// Revalue stores the new values of investments and the new NAVs of funds,
// keyed by fund id, in one transaction: on error nothing is written.
func (r *Investments) Revalue(ctx context.Context, investments []wealth.Investment, navs map[int64]wealth.Quantity, at time.Time) error {
	return r.s.inTx(ctx, func(tx *sqlx.Tx) error {
		for _, inv := range investments {
			if err := updateInvestment(ctx, tx, inv); err != nil {
				return err
			}
		}
		for _, id := range slices.Sorted(maps.Keys(navs)) {
			if err := updateNAV(ctx, tx, id, navs[id], at); err != nil {
				return err
			}
		}
		return nil
	})
}

func updateInvestment(ctx context.Context, db execer, inv wealth.Investment) error {
	res, err := db.ExecContext(ctx, db.Rebind(
		`UPDATE investments SET current_nav = ?, current_value = ?, status = ? WHERE id = ?`),
		inv.CurrentNAV, inv.CurrentValue, string(inv.Status), inv.ID)
	if err != nil {
		return fmt.Errorf("cannot update investment %d: %w", inv.ID, err)
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		return fmt.Errorf("investment %d: %w", inv.ID, ErrNotFound)
	}
	return nil
}
