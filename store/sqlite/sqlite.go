/*
Package sqlite provides a SQLite-backed implementation of the storage interfaces.

PURPOSE:
  Implements the payroll persistence interfaces (ProfileStore, PayslipStore)
  plus the admin-facing tables the API needs: tax policies and the activity
  log. In production, the same patterns apply to PostgreSQL - only minor SQL
  dialect differences.

INTERFACES IMPLEMENTED:
  generic.ProfileStore: Employee pay records (salary, allowances, hire date)
  generic.PayslipStore: Generated payslips

KEY TABLES:
  employees:     Identity, hire date and base monthly salary
  allowances:    Named monthly allowances, one row per (employee, name)
  tax_policies:  Policy documents in factory JSON form (versioned)
  payslips:      Saved payslip figures, one per employee and pay period
  activity_log:  Audit trail of admin actions

MONEY:
  Amounts are stored as TEXT decimal strings and read back with
  shopspring/decimal. REAL columns would round salaries.

UNIQUENESS:
  payslips(employee_id, year, month) is UNIQUE. A second insert maps to
  generic.ErrDuplicatePayslip so callers can answer 409.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

USAGE:
  store, err := sqlite.New("./data/payroll.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

  runner := &payroll.Runner{Profiles: store, Policies: payroll.NewPolicySet()}

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper
  migration tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - generic/store.go: Interface definitions
  - generic/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"
	"github.com/warp/payroll-engine/generic"
)

var (
	_ generic.ProfileStore = (*Store)(nil)
	_ generic.PayslipStore = (*Store)(nil)
)

// Store implements all storage interfaces using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

// New creates a new SQLite store with the given database path.
// Use ":memory:" for an in-memory database.
func New(dbPath string) (*Store, error) {
	db, err := sql.Open("sqlite3", dbPath+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	if dbPath == ":memory:" {
		// Each connection to :memory: is a separate database.
		db.SetMaxOpenConns(1)
	}

	store := &Store{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}

// Close closes the database connection.
func (s *Store) Close() error {
	return s.db.Close()
}

// Ping checks the database is reachable.
func (s *Store) Ping(ctx context.Context) error {
	return s.db.PingContext(ctx)
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Employees
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		designation TEXT,
		bank_name TEXT,
		hire_date TEXT,
		base_salary TEXT NOT NULL DEFAULT '0',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	-- Allowances (named monthly amounts)
	CREATE TABLE IF NOT EXISTS allowances (
		employee_id TEXT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		name TEXT NOT NULL,
		amount TEXT NOT NULL,
		PRIMARY KEY (employee_id, name)
	);

	-- Tax policies (factory JSON documents)
	CREATE TABLE IF NOT EXISTS tax_policies (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		effective_from TEXT,
		config_json TEXT NOT NULL,
		version INTEGER DEFAULT 1,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_tax_policies_effective
		ON tax_policies(effective_from);

	-- Payslips: one per employee and pay period
	CREATE TABLE IF NOT EXISTS payslips (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL REFERENCES employees(id) ON DELETE CASCADE,
		year INTEGER NOT NULL,
		month INTEGER NOT NULL,
		policy_id TEXT NOT NULL,
		gross TEXT NOT NULL,
		net TEXT NOT NULL,
		figures_json TEXT NOT NULL,
		created_at TEXT NOT NULL,
		UNIQUE(employee_id, year, month)
	);

	CREATE INDEX IF NOT EXISTS idx_payslips_employee_period
		ON payslips(employee_id, year, month);

	-- Activity log
	CREATE TABLE IF NOT EXISTS activity_log (
		id TEXT PRIMARY KEY,
		action TEXT NOT NULL,
		entity_id TEXT,
		details_json TEXT,
		created_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_activity_action
		ON activity_log(action);
	CREATE INDEX IF NOT EXISTS idx_activity_entity
		ON activity_log(entity_id);
	CREATE INDEX IF NOT EXISTS idx_activity_created_at
		ON activity_log(created_at);
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// EMPLOYEE STORE (generic.ProfileStore interface)
// =============================================================================

// SaveEmployee inserts or updates an employee and replaces their allowances.
func (s *Store) SaveEmployee(ctx context.Context, rec generic.EmployeeRecord) error {
	if rec.ID == "" {
		return fmt.Errorf("%w: employee id is required", generic.ErrValidation)
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		now := time.Now().UTC().Format(time.RFC3339)
		createdAt := now
		if !rec.CreatedAt.IsZero() {
			createdAt = rec.CreatedAt.UTC().Format(time.RFC3339)
		}

		query := `
			INSERT INTO employees (id, name, email, designation, bank_name, hire_date, base_salary, created_at, updated_at)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
			ON CONFLICT(id) DO UPDATE SET
				name = excluded.name,
				email = excluded.email,
				designation = excluded.designation,
				bank_name = excluded.bank_name,
				hire_date = excluded.hire_date,
				base_salary = excluded.base_salary,
				updated_at = excluded.updated_at
		`
		_, err := tx.ExecContext(ctx, query,
			rec.ID, rec.Name, nullString(rec.Email), nullString(rec.Designation), nullString(rec.BankName),
			formatDate(rec.HireDate),
			rec.BaseSalary.String(),
			createdAt, now,
		)
		if err != nil {
			return fmt.Errorf("failed to save employee: %w", err)
		}
		return replaceAllowances(ctx, tx, rec.ID, rec.Allowances)
	})
}

// SetSalary updates base salary and allowances of an existing employee.
func (s *Store) SetSalary(ctx context.Context, id generic.EmployeeID, base decimal.Decimal, allowances map[string]decimal.Decimal) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	return s.withTx(ctx, func(tx *sql.Tx) error {
		res, err := tx.ExecContext(ctx,
			"UPDATE employees SET base_salary = ?, updated_at = ? WHERE id = ?",
			base.String(), time.Now().UTC().Format(time.RFC3339), id,
		)
		if err != nil {
			return fmt.Errorf("failed to update salary: %w", err)
		}
		if n, _ := res.RowsAffected(); n == 0 {
			return fmt.Errorf("%w: %s", generic.ErrEmployeeNotFound, id)
		}
		return replaceAllowances(ctx, tx, id, allowances)
	})
}

func replaceAllowances(ctx context.Context, tx *sql.Tx, id generic.EmployeeID, allowances map[string]decimal.Decimal) error {
	if _, err := tx.ExecContext(ctx, "DELETE FROM allowances WHERE employee_id = ?", id); err != nil {
		return fmt.Errorf("failed to clear allowances: %w", err)
	}
	for name, amount := range allowances {
		if _, err := tx.ExecContext(ctx,
			"INSERT INTO allowances (employee_id, name, amount) VALUES (?, ?, ?)",
			id, name, amount.String(),
		); err != nil {
			return fmt.Errorf("failed to save allowance %q: %w", name, err)
		}
	}
	return nil
}

// GetProfile retrieves an employee with allowances.
func (s *Store) GetProfile(ctx context.Context, id generic.EmployeeID) (generic.EmployeeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, employeeSelect+" WHERE id = ?", id)
	if err != nil {
		return generic.EmployeeRecord{}, err
	}
	records, err := scanEmployees(rows)
	if err != nil {
		return generic.EmployeeRecord{}, err
	}
	if len(records) == 0 {
		return generic.EmployeeRecord{}, fmt.Errorf("%w: %s", generic.ErrEmployeeNotFound, id)
	}

	allowances, err := s.loadAllowances(ctx, "WHERE employee_id = ?", id)
	if err != nil {
		return generic.EmployeeRecord{}, err
	}
	rec := records[0]
	rec.Allowances = allowances[rec.ID]
	return rec, nil
}

// ListProfiles returns all employees ordered by ID.
func (s *Store) ListProfiles(ctx context.Context) ([]generic.EmployeeRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, employeeSelect+" ORDER BY id")
	if err != nil {
		return nil, err
	}
	records, err := scanEmployees(rows)
	if err != nil {
		return nil, err
	}

	allowances, err := s.loadAllowances(ctx, "")
	if err != nil {
		return nil, err
	}
	for i := range records {
		records[i].Allowances = allowances[records[i].ID]
	}
	return records, nil
}

// DeleteEmployee removes an employee together with allowances and payslips.
func (s *Store) DeleteEmployee(ctx context.Context, id generic.EmployeeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx, "DELETE FROM employees WHERE id = ?", id)
	if err != nil {
		return err
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("%w: %s", generic.ErrEmployeeNotFound, id)
	}
	return nil
}

const employeeSelect = `SELECT id, name, email, designation, bank_name, hire_date, base_salary, created_at FROM employees`

func scanEmployees(rows *sql.Rows) ([]generic.EmployeeRecord, error) {
	defer rows.Close()

	var records []generic.EmployeeRecord
	for rows.Next() {
		var rec generic.EmployeeRecord
		var email, designation, bankName, hireDate sql.NullString
		var baseSalary, createdAt string

		if err := rows.Scan(&rec.ID, &rec.Name, &email, &designation, &bankName, &hireDate, &baseSalary, &createdAt); err != nil {
			return nil, err
		}
		rec.Email = email.String
		rec.Designation = designation.String
		rec.BankName = bankName.String
		rec.HireDate = parseDate(hireDate.String)
		rec.BaseSalary = parseDecimal(baseSalary)
		rec.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		records = append(records, rec)
	}
	return records, rows.Err()
}

func (s *Store) loadAllowances(ctx context.Context, where string, args ...any) (map[generic.EmployeeID]map[string]decimal.Decimal, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT employee_id, name, amount FROM allowances "+where, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[generic.EmployeeID]map[string]decimal.Decimal)
	for rows.Next() {
		var id generic.EmployeeID
		var name, amount string
		if err := rows.Scan(&id, &name, &amount); err != nil {
			return nil, err
		}
		if out[id] == nil {
			out[id] = make(map[string]decimal.Decimal)
		}
		out[id][name] = parseDecimal(amount)
	}
	return out, rows.Err()
}

// =============================================================================
// POLICY STORE
// =============================================================================

// PolicyRecord is a stored tax policy with its factory JSON config.
type PolicyRecord struct {
	ID            string
	Name          string
	EffectiveFrom string
	ConfigJSON    string
	Version       int
	CreatedAt     time.Time
	UpdatedAt     time.Time
}

// SavePolicy saves a policy record, bumping the version on update.
func (s *Store) SavePolicy(ctx context.Context, policy PolicyRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	query := `
		INSERT INTO tax_policies (id, name, effective_from, config_json, version, created_at, updated_at)
		VALUES (?, ?, ?, ?, 1, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			effective_from = excluded.effective_from,
			config_json = excluded.config_json,
			version = tax_policies.version + 1,
			updated_at = excluded.updated_at
	`

	now := time.Now().UTC().Format(time.RFC3339)
	_, err := s.db.ExecContext(ctx, query,
		policy.ID, policy.Name, nullString(policy.EffectiveFrom), policy.ConfigJSON, now, now,
	)
	return err
}

// ListPolicies returns all policies ordered by effective date.
func (s *Store) ListPolicies(ctx context.Context) ([]PolicyRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx,
		"SELECT id, name, effective_from, config_json, version, created_at, updated_at FROM tax_policies ORDER BY effective_from, id",
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var policies []PolicyRecord
	for rows.Next() {
		var p PolicyRecord
		var effectiveFrom sql.NullString
		var createdAt, updatedAt string
		if err := rows.Scan(&p.ID, &p.Name, &effectiveFrom, &p.ConfigJSON, &p.Version, &createdAt, &updatedAt); err != nil {
			return nil, err
		}
		p.EffectiveFrom = effectiveFrom.String
		p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		p.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
		policies = append(policies, p)
	}
	return policies, rows.Err()
}

// =============================================================================
// PAYSLIP STORE (generic.PayslipStore interface)
// =============================================================================

// SavePayslip stores a payslip. IDs are generated when empty.
func (s *Store) SavePayslip(ctx context.Context, p generic.PayslipRecord) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	createdAt := time.Now().UTC()
	if !p.CreatedAt.IsZero() {
		createdAt = p.CreatedAt.UTC()
	}

	query := `
		INSERT INTO payslips (id, employee_id, year, month, policy_id, gross, net, figures_json, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
	`
	_, err := s.db.ExecContext(ctx, query,
		p.ID, p.EmployeeID, p.Period.Year, int(p.Period.Month), p.PolicyID,
		p.Gross.String(), p.Net.String(), p.FiguresJSON,
		createdAt.Format(time.RFC3339),
	)
	if err != nil {
		if isUniqueConstraintError(err) {
			return fmt.Errorf("%w: %s %s", generic.ErrDuplicatePayslip, p.EmployeeID, p.Period)
		}
		if isForeignKeyError(err) {
			return fmt.Errorf("%w: %s", generic.ErrEmployeeNotFound, p.EmployeeID)
		}
		return fmt.Errorf("failed to save payslip: %w", err)
	}
	return nil
}

// ListPayslips returns an employee's payslips ordered by period.
func (s *Store) ListPayslips(ctx context.Context, employeeID generic.EmployeeID) ([]generic.PayslipRecord, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, employee_id, year, month, policy_id, gross, net, figures_json, created_at
		FROM payslips WHERE employee_id = ? ORDER BY year, month`,
		employeeID,
	)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []generic.PayslipRecord
	for rows.Next() {
		var p generic.PayslipRecord
		var month int
		var gross, net, createdAt string
		if err := rows.Scan(&p.ID, &p.EmployeeID, &p.Period.Year, &month, &p.PolicyID, &gross, &net, &p.FiguresJSON, &createdAt); err != nil {
			return nil, err
		}
		p.Period.Month = time.Month(month)
		p.Gross = parseDecimal(gross)
		p.Net = parseDecimal(net)
		p.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
		out = append(out, p)
	}
	return out, rows.Err()
}

// =============================================================================
// ACTIVITY LOG
// =============================================================================

// Activity is an audit log entry.
type Activity struct {
	ID        string
	Action    string
	EntityID  string
	Details   map[string]any
	CreatedAt time.Time
}

// activityLayout sorts lexically in time order, unlike RFC3339Nano which
// trims trailing zeros.
const activityLayout = "2006-01-02T15:04:05.000000000Z07:00"

// ActivityFilter narrows ListActivity. Zero fields match everything.
type ActivityFilter struct {
	Action   string
	EntityID string
	From     time.Time
	To       time.Time
	Limit    int
}

// LogActivity appends an activity entry.
func (s *Store) LogActivity(ctx context.Context, a Activity) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if a.ID == "" {
		a.ID = uuid.NewString()
	}
	if a.CreatedAt.IsZero() {
		a.CreatedAt = time.Now()
	}
	details, err := json.Marshal(a.Details)
	if err != nil {
		return fmt.Errorf("failed to encode activity details: %w", err)
	}

	_, err = s.db.ExecContext(ctx,
		"INSERT INTO activity_log (id, action, entity_id, details_json, created_at) VALUES (?, ?, ?, ?, ?)",
		a.ID, a.Action, nullString(a.EntityID), string(details), a.CreatedAt.UTC().Format(activityLayout),
	)
	return err
}

// ListActivity returns entries newest first.
func (s *Store) ListActivity(ctx context.Context, f ActivityFilter) ([]Activity, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	var where []string
	var args []any
	if f.Action != "" {
		where = append(where, "action = ?")
		args = append(args, f.Action)
	}
	if f.EntityID != "" {
		where = append(where, "entity_id = ?")
		args = append(args, f.EntityID)
	}
	if !f.From.IsZero() {
		where = append(where, "created_at >= ?")
		args = append(args, f.From.UTC().Format(activityLayout))
	}
	if !f.To.IsZero() {
		where = append(where, "created_at <= ?")
		args = append(args, f.To.UTC().Format(activityLayout))
	}

	query := "SELECT id, action, entity_id, details_json, created_at FROM activity_log"
	if len(where) > 0 {
		query += " WHERE " + strings.Join(where, " AND ")
	}
	query += " ORDER BY created_at DESC, rowid DESC"
	if f.Limit > 0 {
		query += " LIMIT ?"
		args = append(args, f.Limit)
	}

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []Activity
	for rows.Next() {
		var a Activity
		var entityID, details sql.NullString
		var createdAt string
		if err := rows.Scan(&a.ID, &a.Action, &entityID, &details, &createdAt); err != nil {
			return nil, err
		}
		a.EntityID = entityID.String
		if details.Valid && details.String != "" && details.String != "null" {
			if err := json.Unmarshal([]byte(details.String), &a.Details); err != nil {
				return nil, fmt.Errorf("failed to decode activity %s: %w", a.ID, err)
			}
		}
		a.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		out = append(out, a)
	}
	return out, rows.Err()
}

// =============================================================================
// UTILITIES
// =============================================================================

// Reset clears all data (for testing/demo).
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tables := []string{"payslips", "allowances", "employees", "tax_policies", "activity_log"}
	for _, table := range tables {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return err
		}
	}
	return nil
}

func (s *Store) withTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	return tx.Commit()
}

// Helper functions

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

func formatDate(tp generic.TimePoint) sql.NullString {
	if tp.IsZero() {
		return sql.NullString{}
	}
	return nullString(tp.String())
}

func parseDate(s string) generic.TimePoint {
	if s == "" {
		return generic.TimePoint{}
	}
	tp, err := generic.ParseDate(s)
	if err != nil {
		return generic.TimePoint{}
	}
	return tp
}

// parseDecimal reads a stored amount. Corrupt values read as zero.
func parseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

func isUniqueConstraintError(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintUnique ||
			sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey
	}
	return false
}

func isForeignKeyError(err error) bool {
	var sqliteErr sqlite3.Error
	if errors.As(err, &sqliteErr) {
		return sqliteErr.ExtendedCode == sqlite3.ErrConstraintForeignKey
	}
	return false
}
