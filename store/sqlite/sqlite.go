/*
Package sqlite provides the SQLite-backed store.

PURPOSE:
  Implements every engine store interface plus calendar.Store using one
  SQLite database. In production the same patterns apply to Oracle or
  PostgreSQL - only SQL dialect differences.

KEY TABLES:
  employees:     Assignment master (externally owned reference data)
  time_codes:    Time-code reference with classification letters
  noncase_time:  Non-case time records (per day, per code)
  case_time:     Case time records (per day, per case)
  cases:         Case display identities (TIN, taxpayer name)
  fiscal_months: Fiscal calendar rows, keyed by month token

FISCAL-YEAR KEYING:
  fiscal_months carries a derived fiscal_year column so that year-level
  reads and deletes are single indexed queries; the October-December
  rollover is applied once at write time.

CONCURRENCY:
  sync.RWMutex for thread-safety, WAL mode for reader/writer separation.
  Year creation and deletion run inside one transaction: either all 12
  rows exist or none do, and of two concurrent creates exactly one wins.

USAGE:
  store, err := sqlite.New("./data/timeverify.db")
  ...
  defer store.Close()

SEE ALSO:
  - engine/store.go: Interface definitions
  - store/memory: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"strings"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/shopspring/decimal"

	"github.com/verity/timeverify/calendar"
	"github.com/verity/timeverify/engine"
)

const dateLayout = "2006-01-02"

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

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Assignment master (reference data, read-only to the engine)
	CREATE TABLE IF NOT EXISTS employees (
		id INTEGER PRIMARY KEY,
		name TEXT NOT NULL,
		emp_type TEXT NOT NULL DEFAULT '',
		pos_type TEXT,
		active TEXT NOT NULL DEFAULT '',
		tour INTEGER
	);

	-- Time-code reference, composite keyed by code+type
	CREATE TABLE IF NOT EXISTS time_codes (
		code TEXT NOT NULL,
		code_type TEXT NOT NULL DEFAULT 'T',
		name TEXT NOT NULL DEFAULT '',
		active TEXT NOT NULL DEFAULT '',
		letter TEXT NOT NULL DEFAULT '',
		PRIMARY KEY (code, code_type)
	);

	-- Non-case time records
	CREATE TABLE IF NOT EXISTS noncase_time (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		employee_id INTEGER NOT NULL,
		report_date TEXT NOT NULL,
		code TEXT NOT NULL,
		hours TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_noncase_employee_date
		ON noncase_time(employee_id, report_date);
	CREATE INDEX IF NOT EXISTS idx_noncase_date
		ON noncase_time(report_date);

	-- Case time records
	CREATE TABLE IF NOT EXISTS case_time (
		id INTEGER PRIMARY KEY AUTOINCREMENT,
		employee_id INTEGER NOT NULL,
		report_date TEXT NOT NULL,
		case_id INTEGER NOT NULL,
		hours TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_case_employee_date
		ON case_time(employee_id, report_date);
	CREATE INDEX IF NOT EXISTS idx_case_date
		ON case_time(report_date);

	-- Case display identities
	CREATE TABLE IF NOT EXISTS cases (
		case_id INTEGER PRIMARY KEY,
		tin INTEGER NOT NULL DEFAULT 0,
		tin_type INTEGER NOT NULL DEFAULT 0,
		name TEXT NOT NULL DEFAULT '',
		control TEXT NOT NULL DEFAULT ''
	);

	-- Fiscal calendar, one row per month
	CREATE TABLE IF NOT EXISTS fiscal_months (
		token TEXT PRIMARY KEY,
		fiscal_year INTEGER NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT NOT NULL,
		weeks INTEGER NOT NULL,
		start_cycle INTEGER NOT NULL,
		end_cycle INTEGER NOT NULL,
		workdays INTEGER NOT NULL,
		holidays INTEGER NOT NULL DEFAULT 0
	);

	CREATE INDEX IF NOT EXISTS idx_fiscal_months_year
		ON fiscal_months(fiscal_year);
	CREATE INDEX IF NOT EXISTS idx_fiscal_months_start
		ON fiscal_months(start_date);
	`
	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// SEEDING - fixtures and data loads; the engine itself never writes these
// =============================================================================

func (s *Store) SaveEmployee(ctx context.Context, e engine.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	var tour interface{}
	if e.Tour != nil {
		tour = *e.Tour
	}
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO employees (id, name, emp_type, pos_type, active, tour)
		VALUES (?, ?, ?, ?, ?, ?)`,
		e.ID, e.Name, e.Type, e.PosType, e.Active, tour)
	return err
}

func (s *Store) SaveTimeCode(ctx context.Context, c engine.TimeCode) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO time_codes (code, code_type, name, active, letter)
		VALUES (?, ?, ?, ?, ?)`,
		c.Code, c.Type, c.Name, c.Active, c.Letter)
	return err
}

func (s *Store) SaveCaseInfo(ctx context.Context, ci engine.CaseInfo) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO cases (case_id, tin, tin_type, name, control)
		VALUES (?, ?, ?, ?, ?)`,
		ci.CaseID, ci.TIN, ci.TINType, ci.Name, ci.Control)
	return err
}

func (s *Store) AddNonCaseEntry(ctx context.Context, e engine.NonCaseEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO noncase_time (employee_id, report_date, code, hours)
		VALUES (?, ?, ?, ?)`,
		e.EmployeeID, e.Date.Format(dateLayout), e.Code, e.Hours.String())
	return err
}

func (s *Store) AddCaseEntry(ctx context.Context, e engine.CaseEntry) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO case_time (employee_id, report_date, case_id, hours)
		VALUES (?, ?, ?, ?)`,
		e.EmployeeID, e.Date.Format(dateLayout), e.CaseID, e.Hours.String())
	return err
}

// =============================================================================
// engine.EmployeeStore
// =============================================================================

// eligibleWhere is the verification filter: active, allowed type and
// position combination, assignment number in the reserved range.
const eligibleWhere = `
	active IN ('A','Y')
	AND (
		(emp_type IN ('M','R','C','P','T') AND (pos_type IS NULL OR pos_type NOT IN ('B','V')))
		OR emp_type = 'H'
	)
	AND id BETWEEN 21000000 AND 36999999`

func (s *Store) Employee(ctx context.Context, id int64) (engine.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	row := s.db.QueryRowContext(ctx, `
		SELECT id, name, emp_type, pos_type, active, tour
		FROM employees WHERE id = ?`, id)
	e, err := scanEmployee(row)
	if err == sql.ErrNoRows {
		return engine.Employee{}, engine.ErrEmployeeNotFound
	}
	return e, err
}

func (s *Store) Eligible(ctx context.Context) ([]engine.Employee, error) {
	return s.queryEmployees(ctx, `
		SELECT id, name, emp_type, pos_type, active, tour
		FROM employees WHERE `+eligibleWhere+` ORDER BY id`)
}

func (s *Store) EligibleByPrefix(ctx context.Context, prefix string) ([]engine.Employee, error) {
	return s.queryEmployees(ctx, `
		SELECT id, name, emp_type, pos_type, active, tour
		FROM employees WHERE `+eligibleWhere+`
		AND CAST(id AS TEXT) LIKE ? ORDER BY id`, prefix+"%")
}

func (s *Store) queryEmployees(ctx context.Context, query string, args ...interface{}) ([]engine.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanEmployee(r rowScanner) (engine.Employee, error) {
	var e engine.Employee
	var posType sql.NullString
	var tour sql.NullInt64
	if err := r.Scan(&e.ID, &e.Name, &e.Type, &posType, &e.Active, &tour); err != nil {
		return engine.Employee{}, err
	}
	e.PosType = posType.String
	if tour.Valid {
		t := int(tour.Int64)
		e.Tour = &t
	}
	return e, nil
}

// =============================================================================
// engine.CodeStore
// =============================================================================

func (s *Store) TimeCodes(ctx context.Context) ([]engine.TimeCode, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx, `
		SELECT code, code_type, name, active, letter
		FROM time_codes WHERE code_type = 'T' ORDER BY code`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.TimeCode
	for rows.Next() {
		var c engine.TimeCode
		if err := rows.Scan(&c.Code, &c.Type, &c.Name, &c.Active, &c.Letter); err != nil {
			return nil, err
		}
		out = append(out, c)
	}
	return out, rows.Err()
}

// =============================================================================
// engine.RecordStore
// =============================================================================

func (s *Store) NonCaseEntries(ctx context.Context, employeeID int64, from, to time.Time) ([]engine.NonCaseEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx, `
		SELECT employee_id, report_date, code, hours
		FROM noncase_time
		WHERE employee_id = ? AND report_date BETWEEN ? AND ?
		ORDER BY report_date, code`,
		employeeID, from.Format(dateLayout), to.Format(dateLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.NonCaseEntry
	for rows.Next() {
		var e engine.NonCaseEntry
		var date, hours string
		if err := rows.Scan(&e.EmployeeID, &date, &e.Code, &hours); err != nil {
			return nil, err
		}
		if e.Date, err = time.ParseInLocation(dateLayout, date, time.UTC); err != nil {
			return nil, err
		}
		if e.Hours, err = decimal.NewFromString(hours); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

func (s *Store) CaseEntries(ctx context.Context, employeeID int64, from, to time.Time) ([]engine.CaseEntry, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx, `
		SELECT employee_id, report_date, case_id, hours
		FROM case_time
		WHERE employee_id = ? AND report_date BETWEEN ? AND ?
		ORDER BY report_date, case_id`,
		employeeID, from.Format(dateLayout), to.Format(dateLayout))
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []engine.CaseEntry
	for rows.Next() {
		var e engine.CaseEntry
		var date, hours string
		if err := rows.Scan(&e.EmployeeID, &date, &e.CaseID, &hours); err != nil {
			return nil, err
		}
		if e.Date, err = time.ParseInLocation(dateLayout, date, time.UTC); err != nil {
			return nil, err
		}
		if e.Hours, err = decimal.NewFromString(hours); err != nil {
			return nil, err
		}
		out = append(out, e)
	}
	return out, rows.Err()
}

// =============================================================================
// engine.CaseStore
// =============================================================================

func (s *Store) CaseInfo(ctx context.Context, caseIDs []int64) (map[int64]engine.CaseInfo, error) {
	if len(caseIDs) == 0 {
		return map[int64]engine.CaseInfo{}, nil
	}
	s.mu.RLock()
	defer s.mu.RUnlock()

	placeholders := strings.TrimSuffix(strings.Repeat("?,", len(caseIDs)), ",")
	args := make([]interface{}, len(caseIDs))
	for i, id := range caseIDs {
		args[i] = id
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT case_id, tin, tin_type, name, control
		FROM cases WHERE case_id IN (`+placeholders+`)`, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[int64]engine.CaseInfo, len(caseIDs))
	for rows.Next() {
		var ci engine.CaseInfo
		if err := rows.Scan(&ci.CaseID, &ci.TIN, &ci.TINType, &ci.Name, &ci.Control); err != nil {
			return nil, err
		}
		out[ci.CaseID] = ci
	}
	return out, rows.Err()
}

// =============================================================================
// calendar.Store
// =============================================================================

// fiscalOrder sorts a year's rows October first, matching the fixed
// fiscal month sequence rather than the token's calendar year.
const fiscalOrder = `
	CASE substr(token, 1, 3)
		WHEN 'OCT' THEN 1 WHEN 'NOV' THEN 2 WHEN 'DEC' THEN 3
		WHEN 'JAN' THEN 4 WHEN 'FEB' THEN 5 WHEN 'MAR' THEN 6
		WHEN 'APR' THEN 7 WHEN 'MAY' THEN 8 WHEN 'JUN' THEN 9
		WHEN 'JUL' THEN 10 WHEN 'AUG' THEN 11 WHEN 'SEP' THEN 12
		ELSE 13
	END`

func (s *Store) Months(ctx context.Context, fiscalYear int) ([]calendar.Month, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	months, err := s.queryMonths(ctx, `
		SELECT token, start_date, end_date, weeks, start_cycle, end_cycle, workdays, holidays
		FROM fiscal_months WHERE fiscal_year = ? ORDER BY `+fiscalOrder, fiscalYear)
	if err != nil {
		return nil, err
	}
	if len(months) == 0 {
		return nil, calendar.ErrYearNotFound
	}
	return months, nil
}

func (s *Store) Month(ctx context.Context, token string) (calendar.Month, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	months, err := s.queryMonths(ctx, `
		SELECT token, start_date, end_date, weeks, start_cycle, end_cycle, workdays, holidays
		FROM fiscal_months WHERE token = ?`, strings.ToUpper(token))
	if err != nil {
		return calendar.Month{}, err
	}
	if len(months) == 0 {
		return calendar.Month{}, calendar.ErrMonthNotFound
	}
	return months[0], nil
}

func (s *Store) AllMonths(ctx context.Context) ([]calendar.Month, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.queryMonths(ctx, `
		SELECT token, start_date, end_date, weeks, start_cycle, end_cycle, workdays, holidays
		FROM fiscal_months ORDER BY start_date DESC`)
}

func (s *Store) FiscalYears(ctx context.Context) ([]int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	rows, err := s.db.QueryContext(ctx, `
		SELECT DISTINCT fiscal_year FROM fiscal_months ORDER BY fiscal_year DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var years []int
	for rows.Next() {
		var y int
		if err := rows.Scan(&y); err != nil {
			return nil, err
		}
		years = append(years, y)
	}
	return years, rows.Err()
}

func (s *Store) CreateYear(ctx context.Context, fiscalYear int, months []calendar.Month) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return err
	}
	defer tx.Rollback()

	// Duplicate check inside the transaction: of two concurrent creates,
	// exactly one commits.
	var count int
	if err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM fiscal_months WHERE fiscal_year = ?`, fiscalYear).Scan(&count); err != nil {
		return err
	}
	if count > 0 {
		return calendar.ErrYearExists
	}

	for _, m := range months {
		if _, err := tx.ExecContext(ctx, `
			INSERT INTO fiscal_months
				(token, fiscal_year, start_date, end_date, weeks, start_cycle, end_cycle, workdays, holidays)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
			strings.ToUpper(m.Token), fiscalYear,
			m.Start.Format(dateLayout), m.End.Format(dateLayout),
			m.Weeks, m.StartCycle, m.EndCycle, m.Workdays, m.Holidays); err != nil {
			return err
		}
	}
	return tx.Commit()
}

func (s *Store) SaveMonth(ctx context.Context, m calendar.Month) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	res, err := s.db.ExecContext(ctx, `
		UPDATE fiscal_months
		SET start_date = ?, end_date = ?, weeks = ?, start_cycle = ?, end_cycle = ?, workdays = ?, holidays = ?
		WHERE token = ?`,
		m.Start.Format(dateLayout), m.End.Format(dateLayout),
		m.Weeks, m.StartCycle, m.EndCycle, m.Workdays, m.Holidays,
		strings.ToUpper(m.Token))
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return calendar.ErrMonthNotFound
	}
	return nil
}

func (s *Store) DeleteYear(ctx context.Context, fiscalYear int) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	res, err := s.db.ExecContext(ctx,
		`DELETE FROM fiscal_months WHERE fiscal_year = ?`, fiscalYear)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return calendar.ErrYearNotFound
	}
	return nil
}

func (s *Store) HasTimeRecords(ctx context.Context, from, to time.Time) (bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var exists bool
	err := s.db.QueryRowContext(ctx, `
		SELECT EXISTS (
			SELECT 1 FROM noncase_time WHERE report_date BETWEEN ?1 AND ?2
			UNION ALL
			SELECT 1 FROM case_time WHERE report_date BETWEEN ?1 AND ?2
		)`, from.Format(dateLayout), to.Format(dateLayout)).Scan(&exists)
	return exists, err
}

func (s *Store) queryMonths(ctx context.Context, query string, args ...interface{}) ([]calendar.Month, error) {
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []calendar.Month
	for rows.Next() {
		var m calendar.Month
		var start, end string
		if err := rows.Scan(&m.Token, &start, &end, &m.Weeks, &m.StartCycle, &m.EndCycle, &m.Workdays, &m.Holidays); err != nil {
			return nil, err
		}
		if m.Start, err = time.ParseInLocation(dateLayout, start, time.UTC); err != nil {
			return nil, err
		}
		if m.End, err = time.ParseInLocation(dateLayout, end, time.UTC); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

// =============================================================================
// engine.MonthLabeler
// =============================================================================

// MonthLabel returns the token of the latest month starting on or
// before the date.
func (s *Store) MonthLabel(ctx context.Context, date time.Time) (string, bool, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	var token string
	err := s.db.QueryRowContext(ctx, `
		SELECT token FROM fiscal_months
		WHERE start_date <= ? ORDER BY start_date DESC LIMIT 1`,
		date.Format(dateLayout)).Scan(&token)
	if err == sql.ErrNoRows {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return token, true, nil
}
