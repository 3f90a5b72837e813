/*
Package sqlite provides a SQLite-backed implementation of the staffing
storage interfaces.

PURPOSE:
  Implements staffing.Store (employees, assignments, PO amendments) using
  SQLite. In production the same patterns apply to PostgreSQL - only minor
  SQL dialect differences.

KEY TABLES:
  employees:     Aggregate roots with the derived last_active_date
  assignments:   Employee <-> project links with allocation percentages
  po_amendments: Per-project ordered amendment ledgers

DATES AND DECIMALS:
  Calendar dates are stored as ISO text (YYYY-MM-DD), nullable end dates as
  NULL. Allocation percentages and rates are stored as decimal text, never
  floats, so totals compared against 100 stay exact.

CONCURRENCY:
  Uses sync.RWMutex for thread-safety. In production with PostgreSQL,
  database-level concurrency control handles this instead.

WAL MODE:
  SQLite is opened with WAL (Write-Ahead Logging) so readers don't block
  behind the single writer.

USAGE:
  store, err := sqlite.New("./data/staffing.db")
  if err != nil {
      log.Fatal(err)
  }
  defer store.Close()

MIGRATION:
  Schema is auto-migrated on New(). For production, use a proper migration
  tool (golang-migrate, goose) with versioned migrations.

SEE ALSO:
  - staffing/store.go: Interface definitions
  - staffing/store/memory.go: In-memory implementation for testing
*/
package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/warp/staffing-engine/staffing"
)

// Store implements staffing.Store using SQLite.
type Store struct {
	db *sql.DB
	mu sync.RWMutex
}

var _ staffing.Store = (*Store)(nil)

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

// Reset wipes all records. Used by the demo scenario loader.
func (s *Store) Reset(ctx context.Context) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	for _, table := range []string{"po_amendments", "assignments", "employees"} {
		if _, err := s.db.ExecContext(ctx, "DELETE FROM "+table); err != nil {
			return fmt.Errorf("failed to reset %s: %w", table, err)
		}
	}
	return nil
}

// migrate creates the database schema.
func (s *Store) migrate() error {
	schema := `
	-- Employees (aggregate roots)
	CREATE TABLE IF NOT EXISTS employees (
		id TEXT PRIMARY KEY,
		name TEXT NOT NULL,
		email TEXT,
		last_active_date TEXT,
		created_at TEXT NOT NULL
	);

	-- Assignments (employee <-> project links)
	CREATE TABLE IF NOT EXISTS assignments (
		id TEXT PRIMARY KEY,
		employee_id TEXT NOT NULL,
		project_id TEXT NOT NULL,
		project_name TEXT,
		client TEXT,
		allocation_percentage TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT,
		role_in_project TEXT,
		po_number TEXT,
		billing TEXT NOT NULL,
		rate TEXT NOT NULL DEFAULT '0',
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_assignments_employee
		ON assignments(employee_id);
	CREATE INDEX IF NOT EXISTS idx_assignments_project
		ON assignments(project_id);
	CREATE INDEX IF NOT EXISTS idx_assignments_employee_dates
		ON assignments(employee_id, start_date, end_date);

	-- PO Amendments (per-project ordered ledger)
	CREATE TABLE IF NOT EXISTS po_amendments (
		id TEXT PRIMARY KEY,
		project_id TEXT NOT NULL,
		po_number TEXT NOT NULL,
		start_date TEXT NOT NULL,
		end_date TEXT,
		is_active BOOLEAN NOT NULL DEFAULT FALSE,
		created_at TEXT NOT NULL,
		updated_at TEXT NOT NULL
	);

	CREATE INDEX IF NOT EXISTS idx_po_amendments_project
		ON po_amendments(project_id, start_date);
	CREATE INDEX IF NOT EXISTS idx_po_amendments_active
		ON po_amendments(project_id) WHERE is_active;
	`

	_, err := s.db.Exec(schema)
	return err
}

// =============================================================================
// EMPLOYEES (staffing.EmployeeStore)
// =============================================================================

func (s *Store) ListEmployees(ctx context.Context) ([]staffing.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, last_active_date, created_at
		FROM employees ORDER BY name, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to list employees: %w", err)
	}
	defer rows.Close()

	var employees []staffing.Employee
	for rows.Next() {
		e, err := scanEmployee(rows)
		if err != nil {
			return nil, err
		}
		employees = append(employees, e)
	}
	return employees, rows.Err()
}

func (s *Store) GetEmployee(ctx context.Context, id staffing.EmployeeID) (*staffing.Employee, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, name, email, last_active_date, created_at
		FROM employees WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get employee: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	e, err := scanEmployee(rows)
	if err != nil {
		return nil, err
	}
	return &e, nil
}

func (s *Store) SaveEmployee(ctx context.Context, e staffing.Employee) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if e.CreatedAt.IsZero() {
		e.CreatedAt = time.Now().UTC()
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO employees (id, name, email, last_active_date, created_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			email = excluded.email,
			last_active_date = excluded.last_active_date`,
		e.ID, e.Name, e.Email, dateOrNull(e.LastActiveDate),
		e.CreatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save employee: %w", err)
	}
	return nil
}

func (s *Store) DeleteEmployee(ctx context.Context, id staffing.EmployeeID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM employees WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete employee: %w", err)
	}
	return nil
}

// =============================================================================
// ASSIGNMENTS (staffing.AssignmentStore)
// =============================================================================

const assignmentColumns = `id, employee_id, project_id, project_name, client,
	allocation_percentage, start_date, end_date, role_in_project, po_number,
	billing, rate, created_at, updated_at`

func (s *Store) ListAssignments(ctx context.Context, employeeID staffing.EmployeeID) ([]staffing.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+assignmentColumns+`
		FROM assignments WHERE employee_id = ?
		ORDER BY start_date, id`, employeeID)
	if err != nil {
		return nil, fmt.Errorf("failed to list assignments: %w", err)
	}

	var assignments []staffing.Assignment
	for rows.Next() {
		a, err := scanAssignment(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		assignments = append(assignments, a)
	}
	if err := rows.Err(); err != nil {
		rows.Close()
		return nil, err
	}
	rows.Close()

	// Join each assignment's project ledger.
	for i := range assignments {
		amendments, err := s.listAmendmentsLocked(ctx, assignments[i].ProjectID)
		if err != nil {
			return nil, err
		}
		assignments[i].POAmendments = amendments
	}
	return assignments, nil
}

func (s *Store) GetAssignment(ctx context.Context, id staffing.AssignmentID) (*staffing.Assignment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT `+assignmentColumns+`
		FROM assignments WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get assignment: %w", err)
	}

	if !rows.Next() {
		err := rows.Err()
		rows.Close()
		return nil, err
	}
	a, err := scanAssignment(rows)
	rows.Close()
	if err != nil {
		return nil, err
	}

	amendments, err := s.listAmendmentsLocked(ctx, a.ProjectID)
	if err != nil {
		return nil, err
	}
	a.POAmendments = amendments
	return &a, nil
}

func (s *Store) SaveAssignment(ctx context.Context, a staffing.Assignment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	a.UpdatedAt = now

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO assignments
		(id, employee_id, project_id, project_name, client,
		 allocation_percentage, start_date, end_date, role_in_project,
		 po_number, billing, rate, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			employee_id = excluded.employee_id,
			project_id = excluded.project_id,
			project_name = excluded.project_name,
			client = excluded.client,
			allocation_percentage = excluded.allocation_percentage,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			role_in_project = excluded.role_in_project,
			po_number = excluded.po_number,
			billing = excluded.billing,
			rate = excluded.rate,
			updated_at = excluded.updated_at`,
		a.ID, a.EmployeeID, a.ProjectID, a.ProjectName, a.Client,
		a.AllocationPercentage.String(),
		dateOrNull(a.StartDate), dateOrNull(a.EndDate),
		a.RoleInProject, a.PONumber, string(a.Billing), a.Rate.String(),
		a.CreatedAt.Format(time.RFC3339), a.UpdatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save assignment: %w", err)
	}
	return nil
}

func (s *Store) DeleteAssignment(ctx context.Context, id staffing.AssignmentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM assignments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete assignment: %w", err)
	}
	return nil
}

// =============================================================================
// PO AMENDMENTS (staffing.AmendmentStore)
// =============================================================================

func (s *Store) ListAmendments(ctx context.Context, projectID staffing.ProjectID) ([]staffing.POAmendment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.listAmendmentsLocked(ctx, projectID)
}

func (s *Store) listAmendmentsLocked(ctx context.Context, projectID staffing.ProjectID) ([]staffing.POAmendment, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, po_number, start_date, end_date, is_active,
		       created_at, updated_at
		FROM po_amendments WHERE project_id = ?
		ORDER BY start_date, id`, projectID)
	if err != nil {
		return nil, fmt.Errorf("failed to list amendments: %w", err)
	}
	defer rows.Close()

	var amendments []staffing.POAmendment
	for rows.Next() {
		a, err := scanAmendment(rows)
		if err != nil {
			return nil, err
		}
		amendments = append(amendments, a)
	}
	return amendments, rows.Err()
}

func (s *Store) GetAmendment(ctx context.Context, id staffing.AmendmentID) (*staffing.POAmendment, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `
		SELECT id, project_id, po_number, start_date, end_date, is_active,
		       created_at, updated_at
		FROM po_amendments WHERE id = ?`, id)
	if err != nil {
		return nil, fmt.Errorf("failed to get amendment: %w", err)
	}
	defer rows.Close()

	if !rows.Next() {
		return nil, rows.Err()
	}
	a, err := scanAmendment(rows)
	if err != nil {
		return nil, err
	}
	return &a, nil
}

func (s *Store) SaveAmendment(ctx context.Context, a staffing.POAmendment) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UTC()
	if a.CreatedAt.IsZero() {
		a.CreatedAt = now
	}
	if a.UpdatedAt.IsZero() {
		a.UpdatedAt = now
	}

	_, err := s.db.ExecContext(ctx, `
		INSERT INTO po_amendments
		(id, project_id, po_number, start_date, end_date, is_active, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			project_id = excluded.project_id,
			po_number = excluded.po_number,
			start_date = excluded.start_date,
			end_date = excluded.end_date,
			is_active = excluded.is_active,
			updated_at = excluded.updated_at`,
		a.ID, a.ProjectID, a.PONumber,
		dateOrNull(a.StartDate), dateOrNull(a.EndDate), a.IsActive,
		a.CreatedAt.Format(time.RFC3339), a.UpdatedAt.Format(time.RFC3339))
	if err != nil {
		return fmt.Errorf("failed to save amendment: %w", err)
	}
	return nil
}

func (s *Store) DeleteAmendment(ctx context.Context, id staffing.AmendmentID) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.db.ExecContext(ctx, `DELETE FROM po_amendments WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("failed to delete amendment: %w", err)
	}
	return nil
}

// =============================================================================
// SCAN HELPERS
// =============================================================================

func scanEmployee(rows *sql.Rows) (staffing.Employee, error) {
	var (
		e          staffing.Employee
		email      sql.NullString
		lastActive sql.NullString
		createdAt  string
	)
	if err := rows.Scan(&e.ID, &e.Name, &email, &lastActive, &createdAt); err != nil {
		return staffing.Employee{}, fmt.Errorf("failed to scan employee: %w", err)
	}
	e.Email = email.String
	e.LastActiveDate = staffing.ParseDatePtr(lastActive.String)
	e.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	return e, nil
}

func scanAssignment(rows *sql.Rows) (staffing.Assignment, error) {
	var (
		a                                   staffing.Assignment
		projectName, client, role, poNumber sql.NullString
		allocation, billing, rate           string
		startDate                           string
		endDate                             sql.NullString
		createdAt, updatedAt                string
	)
	if err := rows.Scan(&a.ID, &a.EmployeeID, &a.ProjectID, &projectName,
		&client, &allocation, &startDate, &endDate, &role, &poNumber,
		&billing, &rate, &createdAt, &updatedAt); err != nil {
		return staffing.Assignment{}, fmt.Errorf("failed to scan assignment: %w", err)
	}
	a.ProjectName = projectName.String
	a.Client = client.String
	a.AllocationPercentage = staffing.MustParseDecimal(allocation)
	a.StartDate = staffing.ParseDatePtr(startDate)
	a.EndDate = staffing.ParseDatePtr(endDate.String)
	a.RoleInProject = role.String
	a.PONumber = poNumber.String
	a.Billing = staffing.BillingCadence(billing)
	a.Rate = staffing.MustParseDecimal(rate)
	a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	a.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return a, nil
}

func scanAmendment(rows *sql.Rows) (staffing.POAmendment, error) {
	var (
		a                    staffing.POAmendment
		startDate            string
		endDate              sql.NullString
		createdAt, updatedAt string
	)
	if err := rows.Scan(&a.ID, &a.ProjectID, &a.PONumber, &startDate,
		&endDate, &a.IsActive, &createdAt, &updatedAt); err != nil {
		return staffing.POAmendment{}, fmt.Errorf("failed to scan amendment: %w", err)
	}
	a.StartDate = staffing.ParseDatePtr(startDate)
	a.EndDate = staffing.ParseDatePtr(endDate.String)
	a.CreatedAt, _ = time.Parse(time.RFC3339, createdAt)
	a.UpdatedAt, _ = time.Parse(time.RFC3339, updatedAt)
	return a, nil
}

func dateOrNull(d *staffing.DatePoint) any {
	if d == nil || d.IsZero() {
		return nil
	}
	return d.String()
}
