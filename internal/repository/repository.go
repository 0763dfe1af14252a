package repository

import (
	"database/sql"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/mbaxter/cashflow-service/internal/models"
)

// Repository provides database operations
type Repository struct {
	db *sql.DB
}

// NewRepository initializes a new repository
func NewRepository(db *sql.DB) *Repository {
	return &Repository{db: db}
}

// GetSettings retrieves a household's settings, creating the default row on
// first contact.
func (r *Repository) GetSettings(householdID string) (*models.Settings, error) {
	s := models.DefaultSettings(householdID)
	query := `
		SELECT debit_balance, credit_balance, cc_pay_day, cc_pay_method, cc_pay_amount,
		       cc_pay_amount_unit, cc_apr, cashflow_days, safe_to_spend_days, debit_floor,
		       reminder_email
		FROM budget.settings
		WHERE household_id = $1`
	err := r.db.QueryRow(query, householdID).Scan(
		&s.DebitBalance, &s.CreditBalance, &s.CCPayDay, &s.CCPayMethod, &s.CCPayAmount,
		&s.CCPayAmountUnit, &s.CCAPR, &s.CashflowDays, &s.SafeToSpendDays, &s.DebitFloor,
		&s.ReminderEmail,
	)
	if err == sql.ErrNoRows {
		if err := r.SaveSettings(&s); err != nil {
			return nil, err
		}
		return &s, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load settings: %w", err)
	}
	return &s, nil
}

// SaveSettings upserts a household's settings row.
func (r *Repository) SaveSettings(s *models.Settings) error {
	query := `
		INSERT INTO budget.settings (household_id, debit_balance, credit_balance, cc_pay_day,
			cc_pay_method, cc_pay_amount, cc_pay_amount_unit, cc_apr, cashflow_days,
			safe_to_spend_days, debit_floor, reminder_email, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12, CURRENT_TIMESTAMP)
		ON CONFLICT (household_id) DO UPDATE SET
			debit_balance = EXCLUDED.debit_balance,
			credit_balance = EXCLUDED.credit_balance,
			cc_pay_day = EXCLUDED.cc_pay_day,
			cc_pay_method = EXCLUDED.cc_pay_method,
			cc_pay_amount = EXCLUDED.cc_pay_amount,
			cc_pay_amount_unit = EXCLUDED.cc_pay_amount_unit,
			cc_apr = EXCLUDED.cc_apr,
			cashflow_days = EXCLUDED.cashflow_days,
			safe_to_spend_days = EXCLUDED.safe_to_spend_days,
			debit_floor = EXCLUDED.debit_floor,
			reminder_email = EXCLUDED.reminder_email,
			updated_at = CURRENT_TIMESTAMP`
	_, err := r.db.Exec(query, s.HouseholdID, s.DebitBalance, s.CreditBalance, s.CCPayDay,
		s.CCPayMethod, s.CCPayAmount, s.CCPayAmountUnit, s.CCAPR, s.CashflowDays,
		s.SafeToSpendDays, s.DebitFloor, s.ReminderEmail)
	if err != nil {
		return fmt.Errorf("failed to save settings: %w", err)
	}
	return nil
}

func (r *Repository) listEntries(table, householdID string) ([]models.EntryPayload, error) {
	query := fmt.Sprintf(`
		SELECT id, name, amount, frequency, day, type
		FROM budget.%s
		WHERE household_id = $1
		ORDER BY created_at, id`, table)
	rows, err := r.db.Query(query, householdID)
	if err != nil {
		return nil, fmt.Errorf("failed to list %s: %w", table, err)
	}
	defer rows.Close()

	entries := []models.EntryPayload{}
	for rows.Next() {
		var e models.EntryPayload
		var day, typ string
		if err := rows.Scan(&e.ID, &e.Name, &e.Amount, &e.Frequency, &day, &typ); err != nil {
			return nil, fmt.Errorf("failed to scan %s row: %w", table, err)
		}
		e.Day = models.DayValue(day)
		e.Type = typ
		entries = append(entries, e)
	}
	return entries, rows.Err()
}

func (r *Repository) replaceEntries(table, householdID string, entries []models.EntryPayload) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(fmt.Sprintf(`DELETE FROM budget.%s WHERE household_id = $1`, table), householdID); err != nil {
		return fmt.Errorf("failed to clear %s: %w", table, err)
	}
	insert := fmt.Sprintf(`
		INSERT INTO budget.%s (id, household_id, name, amount, frequency, day, type, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, CURRENT_TIMESTAMP)`, table)
	for _, e := range entries {
		id := e.ID
		if id == "" {
			id = uuid.NewString()
		}
		if _, err := tx.Exec(insert, id, householdID, e.Name, e.Amount, e.Frequency, e.Day.String(), e.Type); err != nil {
			return fmt.Errorf("failed to insert %s row: %w", table, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit %s: %w", table, err)
	}
	return nil
}

// ListBills returns a household's bill entries in insertion order.
func (r *Repository) ListBills(householdID string) ([]models.EntryPayload, error) {
	return r.listEntries("bills", householdID)
}

// ReplaceBills swaps the household's bill set atomically. Entries arriving
// without an id are assigned one so paid-event keys stay stable afterwards.
func (r *Repository) ReplaceBills(householdID string, bills []models.EntryPayload) error {
	return r.replaceEntries("bills", householdID, bills)
}

// ListIncome returns a household's income entries in insertion order.
func (r *Repository) ListIncome(householdID string) ([]models.EntryPayload, error) {
	return r.listEntries("income", householdID)
}

// ReplaceIncome swaps the household's income set atomically.
func (r *Repository) ReplaceIncome(householdID string, income []models.EntryPayload) error {
	return r.replaceEntries("income", householdID, income)
}

// MarkPaid records one paid-event marker; marking an already-marked key is a
// no-op update, so the operation is idempotent.
func (r *Repository) MarkPaid(householdID, key string, paid bool) error {
	query := `
		INSERT INTO budget.paid_events (household_id, paid_key, paid, paid_at)
		VALUES ($1, $2, $3, CASE WHEN $3 THEN CURRENT_TIMESTAMP ELSE NULL END)
		ON CONFLICT (household_id, paid_key) DO UPDATE SET
			paid = EXCLUDED.paid,
			paid_at = EXCLUDED.paid_at`
	if _, err := r.db.Exec(query, householdID, key, paid); err != nil {
		return fmt.Errorf("failed to mark paid event: %w", err)
	}
	return nil
}

// PaidSet returns the household's currently-marked paid keys.
func (r *Repository) PaidSet(householdID string) (map[string]bool, error) {
	rows, err := r.db.Query(
		`SELECT paid_key FROM budget.paid_events WHERE household_id = $1 AND paid`, householdID)
	if err != nil {
		return nil, fmt.Errorf("failed to load paid events: %w", err)
	}
	defer rows.Close()

	set := make(map[string]bool)
	for rows.Next() {
		var key string
		if err := rows.Scan(&key); err != nil {
			return nil, fmt.Errorf("failed to scan paid event: %w", err)
		}
		set[key] = true
	}
	return set, rows.Err()
}

// AddTransaction stores one historical transaction.
func (r *Repository) AddTransaction(householdID string, tx *models.Transaction) error {
	query := `
		INSERT INTO budget.transactions (household_id, tx_date, name, amount, type, source)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING id`
	err := r.db.QueryRow(query, householdID, tx.Date.String(), tx.Name, tx.Amount, tx.Type, tx.Source).
		Scan(&tx.ID)
	if err != nil {
		return fmt.Errorf("failed to insert transaction: %w", err)
	}
	return nil
}

// ListTransactions returns a household's transactions, optionally bounded by
// an inclusive date range.
func (r *Repository) ListTransactions(householdID string, start, end *models.Date) ([]models.Transaction, error) {
	query := `
		SELECT id, tx_date, name, amount, type, source
		FROM budget.transactions
		WHERE household_id = $1`
	args := []any{householdID}
	if start != nil {
		args = append(args, start.String())
		query += fmt.Sprintf(" AND tx_date >= $%d", len(args))
	}
	if end != nil {
		args = append(args, end.String())
		query += fmt.Sprintf(" AND tx_date <= $%d", len(args))
	}
	query += " ORDER BY tx_date, id"

	rows, err := r.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list transactions: %w", err)
	}
	defer rows.Close()

	txs := []models.Transaction{}
	for rows.Next() {
		var t models.Transaction
		var date time.Time
		if err := rows.Scan(&t.ID, &date, &t.Name, &t.Amount, &t.Type, &t.Source); err != nil {
			return nil, fmt.Errorf("failed to scan transaction: %w", err)
		}
		t.Date = models.DateOf(date)
		txs = append(txs, t)
	}
	return txs, rows.Err()
}

// ListAlerts returns a household's alert settings.
func (r *Repository) ListAlerts(householdID string) ([]models.AlertSetting, error) {
	rows, err := r.db.Query(`
		SELECT id, type, threshold, enabled
		FROM budget.alerts
		WHERE household_id = $1
		ORDER BY id`, householdID)
	if err != nil {
		return nil, fmt.Errorf("failed to list alerts: %w", err)
	}
	defer rows.Close()

	alerts := []models.AlertSetting{}
	for rows.Next() {
		var a models.AlertSetting
		if err := rows.Scan(&a.ID, &a.Type, &a.Threshold, &a.Enabled); err != nil {
			return nil, fmt.Errorf("failed to scan alert: %w", err)
		}
		alerts = append(alerts, a)
	}
	return alerts, rows.Err()
}

// ReplaceAlerts swaps the household's alert settings atomically.
func (r *Repository) ReplaceAlerts(householdID string, alerts []models.AlertSetting) error {
	tx, err := r.db.Begin()
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(`DELETE FROM budget.alerts WHERE household_id = $1`, householdID); err != nil {
		return fmt.Errorf("failed to clear alerts: %w", err)
	}
	for _, a := range alerts {
		if _, err := tx.Exec(`
			INSERT INTO budget.alerts (household_id, type, threshold, enabled)
			VALUES ($1, $2, $3, $4)`, householdID, a.Type, a.Threshold, a.Enabled); err != nil {
			return fmt.Errorf("failed to insert alert: %w", err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit alerts: %w", err)
	}
	return nil
}

// ReminderTargets lists households that configured a reminder email.
func (r *Repository) ReminderTargets() ([]string, error) {
	rows, err := r.db.Query(`
		SELECT household_id
		FROM budget.settings
		WHERE reminder_email IS NOT NULL AND reminder_email <> ''
		ORDER BY household_id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list reminder targets: %w", err)
	}
	defer rows.Close()

	ids := []string{}
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan reminder target: %w", err)
		}
		ids = append(ids, id)
	}
	return ids, rows.Err()
}
