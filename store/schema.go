package store

var sqliteSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	email TEXT NOT NULL UNIQUE,
	hashed_password TEXT NOT NULL,
	full_name TEXT NOT NULL,
	role TEXT NOT NULL DEFAULT 'customer',
	is_active BOOLEAN NOT NULL DEFAULT 1,
	created_at TEXT NOT NULL,
	last_login TEXT
)`,
	`CREATE TABLE IF NOT EXISTS mutual_funds (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	scheme_code TEXT NOT NULL UNIQUE,
	scheme_name TEXT NOT NULL,
	category TEXT NOT NULL,
	nav TEXT NOT NULL,
	aum TEXT NOT NULL,
	risk_level TEXT NOT NULL,
	expense_ratio REAL NOT NULL,
	last_updated TEXT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS investments (
	id INTEGER PRIMARY KEY AUTOINCREMENT,
	user_id INTEGER NOT NULL,
	fund_id INTEGER NOT NULL REFERENCES mutual_funds(id),
	units TEXT NOT NULL,
	purchase_nav TEXT NOT NULL,
	current_nav TEXT NOT NULL,
	purchase_date TEXT NOT NULL,
	status TEXT NOT NULL,
	purchase_amount TEXT NOT NULL,
	current_value TEXT NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS ix_investments_user_id ON investments(user_id)`,
}

var postgresSchema = []string{
	`CREATE TABLE IF NOT EXISTS users (
	id BIGSERIAL PRIMARY KEY,
	email TEXT NOT NULL UNIQUE,
	hashed_password TEXT NOT NULL,
	full_name TEXT NOT NULL,
	role TEXT NOT NULL DEFAULT 'customer',
	is_active BOOLEAN NOT NULL DEFAULT TRUE,
	created_at TEXT NOT NULL,
	last_login TEXT
)`,
	`CREATE TABLE IF NOT EXISTS mutual_funds (
	id BIGSERIAL PRIMARY KEY,
	scheme_code TEXT NOT NULL UNIQUE,
	scheme_name TEXT NOT NULL,
	category TEXT NOT NULL,
	nav NUMERIC NOT NULL,
	aum NUMERIC NOT NULL,
	risk_level TEXT NOT NULL,
	expense_ratio DOUBLE PRECISION NOT NULL,
	last_updated TEXT NOT NULL
)`,
	`CREATE TABLE IF NOT EXISTS investments (
	id BIGSERIAL PRIMARY KEY,
	user_id BIGINT NOT NULL,
	fund_id BIGINT NOT NULL REFERENCES mutual_funds(id),
	units NUMERIC NOT NULL,
	purchase_nav NUMERIC NOT NULL,
	current_nav NUMERIC NOT NULL,
	purchase_date TEXT NOT NULL,
	status TEXT NOT NULL,
	purchase_amount NUMERIC NOT NULL,
	current_value NUMERIC NOT NULL
)`,
	`CREATE INDEX IF NOT EXISTS ix_investments_user_id ON investments(user_id)`,
}
