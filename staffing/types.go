/*
Package staffing provides the core staffing rules engine.

PURPOSE:
  This package contains the domain types and pure rule functions for
  employee-to-project staffing: allocation-percentage accounting, time-boxed
  purchase-order (PO) amendments, and derived billability status. Everything
  here operates on in-memory collections already fetched by the caller; the
  persistence collaborator lives behind the Store interfaces (store.go).

KEY CONCEPTS IN THIS FILE (types.go):
  - Assignment: An employee <-> project link with an allocation percentage
  - POAmendment: A time-boxed purchase order granting billing validity
  - Employee: Aggregate root owning zero-or-more assignments
  - Percent: Allocation percentages as decimal.Decimal (2-decimal precision)

DESIGN PRINCIPLES:
  1. Purity: Rule functions take "today" explicitly, never read the clock
  2. Precision: Uses decimal.Decimal to avoid floating-point drift at 100%
  3. Fail closed: Malformed dates evaluate as inactive, never panic
  4. Derived state is recomputed, never trusted across sessions

SEE ALSO:
  - daterange.go: Date-range evaluation (active-on semantics)
  - allocation.go: Allocation accounting and validation
  - amendment.go: PO amendment validation and active recomputation
  - billability.go: Billable/Bench derivation and latest-end-date
*/
package staffing

import (
	"time"

	"github.com/shopspring/decimal"
)

// =============================================================================
// IDENTIFIERS
// =============================================================================

type EmployeeID string
type ProjectID string
type AssignmentID string
type AmendmentID string

// =============================================================================
// PERCENT - Allocation percentage helpers
// =============================================================================

// Percent constructs a 2-decimal allocation percentage.
func Percent(value float64) decimal.Decimal {
	return decimal.NewFromFloat(value).Round(2)
}

// MustParseDecimal parses a decimal string, returning zero on failure.
// Used when loading persisted values that were written by this system.
func MustParseDecimal(s string) decimal.Decimal {
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero
	}
	return d
}

// FullCapacity is the allocation ceiling for a single employee.
var FullCapacity = decimal.NewFromInt(100)

// =============================================================================
// BILLING CADENCE
// =============================================================================

type BillingCadence string

const (
	BillingMonthly BillingCadence = "Monthly"
	BillingFixed   BillingCadence = "Fixed"
	BillingDaily   BillingCadence = "Daily"
	BillingHourly  BillingCadence = "Hourly"
)

// ValidBillingCadence reports whether c is one of the known cadences.
func ValidBillingCadence(c BillingCadence) bool {
	switch c {
	case BillingMonthly, BillingFixed, BillingDaily, BillingHourly:
		return true
	}
	return false
}

// =============================================================================
// PO AMENDMENT - Time-boxed purchase order for a project
// =============================================================================

// POAmendment is a time-boxed revision record granting billing validity for
// a project over a date range.
//
// INVARIANT: at most one amendment per project has IsActive=true at any
// moment. IsActive is a cache recomputed from dates by RecomputeActive;
// callers should re-run recomputation defensively on read if staleness is
// a concern (idempotent, safe to repeat).
type POAmendment struct {
	ID        AmendmentID
	ProjectID ProjectID
	PONumber  string
	StartDate *DatePoint
	EndDate   *DatePoint // nil = open-ended
	IsActive  bool
	CreatedAt time.Time
	UpdatedAt time.Time
}

// =============================================================================
// ASSIGNMENT - Employee <-> project link
// =============================================================================

// Assignment links an employee to a project with a committed slice of the
// employee's capacity.
//
// INVARIANT: for a fixed employee, the sum of AllocationPercentage over all
// assignments stays <= 100. Violating edits are rejected before persistence
// (see allocation.go).
type Assignment struct {
	ID         AssignmentID
	EmployeeID EmployeeID
	ProjectID  ProjectID

	// Denormalized display fields
	ProjectName string
	Client      string

	AllocationPercentage decimal.Decimal
	StartDate            *DatePoint
	EndDate              *DatePoint // nil = ongoing
	RoleInProject        string

	// PONumber is the legacy single-PO field, consulted only when the
	// amendment ledger is empty (billability.go).
	PONumber string

	Billing BillingCadence
	Rate    decimal.Decimal

	// POAmendments is the ordered amendment ledger for this assignment's
	// project, joined in by the persistence collaborator.
	POAmendments []POAmendment

	CreatedAt time.Time
	UpdatedAt time.Time
}

// =============================================================================
// EMPLOYEE - Aggregate root
// =============================================================================

type Employee struct {
	ID    EmployeeID
	Name  string
	Email string

	// LastActiveDate is auto-derived as the latest end date across all of
	// the employee's assignments and their PO amendments at save time. When
	// no end date exists anywhere, the manually-entered value is kept as-is.
	LastActiveDate *DatePoint

	CreatedAt time.Time
}
