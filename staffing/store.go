/*
store.go - Persistence interfaces for staffing records

PURPOSE:
  Defines the interface between the rule engine's callers and the database.
  The rule functions themselves never touch a Store; the ledger service
  (package poledger) and the API layer do, re-reading the authoritative
  current collections before every validation so totals are never stale.

KEY INTERFACES:
  EmployeeStore:   Employee CRUD
  AssignmentStore: Assignment CRUD keyed by employee, amendments joined in
  AmendmentStore:  Per-project ordered PO amendment ledger CRUD
  Store:           All of the above (what the API layer holds)

MISSING RECORDS:
  Get* methods return (nil, nil) for a missing id; callers translate that
  into a NotFoundError where absence is a failure.

IMPLEMENTATIONS:
  - store/sqlite: production SQLite
  - staffing/store: in-memory for testing
*/
package staffing

import "context"

// =============================================================================
// EMPLOYEE STORE
// =============================================================================

type EmployeeStore interface {
	ListEmployees(ctx context.Context) ([]Employee, error)

	// GetEmployee returns (nil, nil) when the id does not exist.
	GetEmployee(ctx context.Context, id EmployeeID) (*Employee, error)

	// SaveEmployee upserts by id.
	SaveEmployee(ctx context.Context, e Employee) error

	DeleteEmployee(ctx context.Context, id EmployeeID) error
}

// =============================================================================
// ASSIGNMENT STORE
// =============================================================================

type AssignmentStore interface {
	// ListAssignments returns one employee's current assignments with their
	// project amendment ledgers already joined, ordered by start date.
	ListAssignments(ctx context.Context, employeeID EmployeeID) ([]Assignment, error)

	// GetAssignment returns (nil, nil) when the id does not exist.
	GetAssignment(ctx context.Context, id AssignmentID) (*Assignment, error)

	// SaveAssignment upserts by id.
	SaveAssignment(ctx context.Context, a Assignment) error

	DeleteAssignment(ctx context.Context, id AssignmentID) error
}

// =============================================================================
// AMENDMENT STORE
// =============================================================================

type AmendmentStore interface {
	// ListAmendments returns one project's ledger ordered by start date.
	ListAmendments(ctx context.Context, projectID ProjectID) ([]POAmendment, error)

	// GetAmendment returns (nil, nil) when the id does not exist.
	GetAmendment(ctx context.Context, id AmendmentID) (*POAmendment, error)

	// SaveAmendment upserts by id.
	SaveAmendment(ctx context.Context, a POAmendment) error

	DeleteAmendment(ctx context.Context, id AmendmentID) error
}

// =============================================================================
// COMBINED STORE
// =============================================================================

// Store is the full persistence surface the API layer depends on.
type Store interface {
	EmployeeStore
	AssignmentStore
	AmendmentStore
}
