// Package store persists users, mutual funds and investments in SQL.
//
// SQLite (modernc, no cgo) backs tests and local runs, PostgreSQL backs
// deployments. Queries are written with ? placeholders and rebound for the
// driver in use.
package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"
	"modernc.org/sqlite"
	sqlite3 "modernc.org/sqlite/lib"
)

var (
	// ErrNotFound is returned when a looked up row does not exist.
	ErrNotFound = errors.New("not found")
	// ErrDuplicate is returned when a unique column already holds the value.
	ErrDuplicate = errors.New("already exists")
)

// Dialect selects the SQL flavor of the schema.
type Dialect string

const (
	SQLite   Dialect = "sqlite"
	Postgres Dialect = "postgres"
)

// Store gives access to the repositories sharing one database.
type Store struct {
	db      *sqlx.DB
	dialect Dialect
	now     func() time.Time

	Users       *Users
	Funds       *Funds
	Investments *Investments
}

// Open connects to dsn. postgres:// and postgresql:// URLs use PostgreSQL,
// anything else is a SQLite path (":memory:" and "sqlite:" prefixed paths included).
func Open(ctx context.Context, dsn string) (*Store, error) {
	driver, dialect, source := parseDSN(dsn)
	db, err := sqlx.Open(driver, source)
	if err != nil {
		return nil, fmt.Errorf("cannot open %s database: %w", dialect, err)
	}
	if dialect == SQLite {
		// an in memory database lives in its connection, and SQLite writers
		// serialize anyway.
		db.SetMaxOpenConns(1)
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, fmt.Errorf("cannot reach %s database: %w", dialect, err)
	}
	return New(db, dialect), nil
}

// New wraps an open database.
func New(db *sqlx.DB, dialect Dialect) *Store {
	s := &Store{db: db, dialect: dialect, now: func() time.Time { return time.Now().UTC() }}
	s.Users = &Users{s: s}
	s.Funds = &Funds{s: s}
	s.Investments = &Investments{s: s}
	return s
}

func parseDSN(dsn string) (driver string, dialect Dialect, source string) {
	switch {
	case strings.HasPrefix(dsn, "postgres://"), strings.HasPrefix(dsn, "postgresql://"):
		return "postgres", Postgres, dsn
	case strings.HasPrefix(dsn, "sqlite://"):
		source = strings.TrimPrefix(dsn, "sqlite://")
	case strings.HasPrefix(dsn, "sqlite:"):
		source = strings.TrimPrefix(dsn, "sqlite:")
	default:
		source = dsn
	}
	if source == "" {
		source = ":memory:"
	}
	if !strings.Contains(source, "_pragma") {
		sep := "?"
		if strings.Contains(source, "?") {
			sep = "&"
		}
		source += sep + "_pragma=foreign_keys(1)"
	}
	return "sqlite", SQLite, source
}

// Dialect returns the SQL flavor of the database.
func (s *Store) Dialect() Dialect { return s.dialect }

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error { return s.db.PingContext(ctx) }

// Close closes the database.
func (s *Store) Close() error { return s.db.Close() }

// SetClock replaces the clock stamping created rows.
func (s *Store) SetClock(now func() time.Time) { s.now = now }

// Migrate creates the schema when it does not exist.
func (s *Store) Migrate(ctx context.Context) error {
	statements := sqliteSchema
	if s.dialect == Postgres {
		statements = postgresSchema
	}
	for _, stmt := range statements {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("migration failed on %q: %w", firstLine(stmt), err)
		}
	}
	return nil
}

func firstLine(s string) string {
	s = strings.TrimSpace(s)
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}

// execer runs statements on the database or within a transaction.
type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	Rebind(query string) string
}

// inTx runs fn in a transaction, committed when fn succeeds and rolled back
// otherwise.
func (s *Store) inTx(ctx context.Context, fn func(tx *sqlx.Tx) error) error {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("cannot begin transaction: %w", err)
	}
	if err := fn(tx); err != nil {
		tx.Rollback()
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("cannot commit transaction: %w", err)
	}
	return nil
}

// insert runs an INSERT ... RETURNING id statement.
func (s *Store) insert(ctx context.Context, query string, args ...any) (int64, error) {
	var id int64
	err := s.db.QueryRowxContext(ctx, s.db.Rebind(query+" RETURNING id"), args...).Scan(&id)
	if err != nil {
		return 0, classify(err)
	}
	return id, nil
}

// classify maps driver errors to the package sentinel errors.
func classify(err error) error {
	var pqErr *pq.Error
	if errors.As(err, &pqErr) && pqErr.Code == "23505" {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	var liteErr *sqlite.Error
	if errors.As(err, &liteErr) && liteErr.Code() == sqlite3.SQLITE_CONSTRAINT_UNIQUE {
		return fmt.Errorf("%w: %v", ErrDuplicate, err)
	}
	return err
}

// timestamps are stored as RFC 3339 text in both dialects.
const timeLayout = time.RFC3339Nano

func formatTime(t time.Time) string { return t.UTC().Format(timeLayout) }

func parseTime(s string) (time.Time, error) {
	t, err := time.Parse(timeLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid stored timestamp %q: %w", s, err)
	}
	return t, nil
}
