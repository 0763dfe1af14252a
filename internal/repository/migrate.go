package repository

import (
	"database/sql"
	"fmt"
)

// Migrate creates the schema and tables when they do not exist yet. The
// statements are idempotent so the service can run it on every start.
func Migrate(db *sql.DB) error {
	stmts := []string{
		`CREATE SCHEMA IF NOT EXISTS budget`,
		`CREATE TABLE IF NOT EXISTS budget.settings (
			household_id TEXT PRIMARY KEY,
			debit_balance NUMERIC NOT NULL DEFAULT 0,
			credit_balance NUMERIC NOT NULL DEFAULT 0,
			cc_pay_day INTEGER,
			cc_pay_method TEXT,
			cc_pay_amount NUMERIC,
			cc_pay_amount_unit TEXT,
			cc_apr NUMERIC,
			cashflow_days INTEGER NOT NULL DEFAULT 30,
			safe_to_spend_days INTEGER NOT NULL DEFAULT 14,
			debit_floor NUMERIC NOT NULL DEFAULT 0,
			reminder_email TEXT,
			updated_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE TABLE IF NOT EXISTS budget.bills (
			id TEXT PRIMARY KEY,
			household_id TEXT NOT NULL,
			name TEXT NOT NULL,
			amount NUMERIC NOT NULL,
			frequency TEXT NOT NULL,
			day TEXT NOT NULL,
			type TEXT NOT NULL DEFAULT 'Debit',
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_bills_household ON budget.bills (household_id)`,
		`CREATE TABLE IF NOT EXISTS budget.income (
			id TEXT PRIMARY KEY,
			household_id TEXT NOT NULL,
			name TEXT NOT NULL,
			amount NUMERIC NOT NULL,
			frequency TEXT NOT NULL,
			day TEXT NOT NULL,
			type TEXT NOT NULL DEFAULT 'Credit',
			created_at TIMESTAMPTZ NOT NULL DEFAULT CURRENT_TIMESTAMP
		)`,
		`CREATE INDEX IF NOT EXISTS idx_income_household ON budget.income (household_id)`,
		`CREATE TABLE IF NOT EXISTS budget.paid_events (
			household_id TEXT NOT NULL,
			paid_key TEXT NOT NULL,
			paid BOOLEAN NOT NULL DEFAULT TRUE,
			paid_at TIMESTAMPTZ,
			PRIMARY KEY (household_id, paid_key)
		)`,
		`CREATE TABLE IF NOT EXISTS budget.transactions (
			id BIGSERIAL PRIMARY KEY,
			household_id TEXT NOT NULL,
			tx_date DATE NOT NULL,
			name TEXT NOT NULL DEFAULT '',
			amount NUMERIC NOT NULL,
			type TEXT NOT NULL,
			source TEXT NOT NULL DEFAULT 'manual'
		)`,
		`CREATE INDEX IF NOT EXISTS idx_transactions_household_date ON budget.transactions (household_id, tx_date)`,
		`CREATE TABLE IF NOT EXISTS budget.alerts (
			id BIGSERIAL PRIMARY KEY,
			household_id TEXT NOT NULL,
			type TEXT NOT NULL,
			threshold NUMERIC NOT NULL DEFAULT 0,
			enabled BOOLEAN NOT NULL DEFAULT TRUE
		)`,
		`CREATE INDEX IF NOT EXISTS idx_alerts_household ON budget.alerts (household_id)`,
	}
	for _, stmt := range stmts {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("migration failed: %w", err)
		}
	}
	return nil
}
