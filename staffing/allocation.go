/*
allocation.go - Allocation-percentage accounting

PURPOSE:
  Enforces the 0-100% total-allocation invariant per employee across
  assignments, and computes remaining headroom. All functions are pure: the
  caller re-reads the employee's full current assignment set before each
  validation call so the sum is never computed from a stale cache.

THE ONE SUBTLETY:
  Editing an existing assignment must exclude the record being edited from
  the sum before adding the new percentage. Without the exclusion, every
  edit double-counts itself and falsely reports over-allocation.

ROUNDING:
  Percentages are accepted with up to 2 decimal places and rounded to 2
  decimals before comparison, so 33.33 + 33.33 + 33.34 lands exactly on 100
  instead of being rejected by floating-point drift.
*/
package staffing

import (
	"github.com/shopspring/decimal"
)

// =============================================================================
// ALLOCATION ACCOUNTANT
// =============================================================================

// TotalAllocation sums AllocationPercentage over the given assignments,
// rounded to 2 decimal places. Typically called with one employee's current
// assignments.
func TotalAllocation(assignments []Assignment) decimal.Decimal {
	total := decimal.Zero
	for _, a := range assignments {
		total = total.Add(a.AllocationPercentage)
	}
	return total.Round(2)
}

// RemainingAllocation returns max(0, 100 - TotalAllocation). Clamped at zero:
// an over-allocated data state is possible transiently and must be visible
// via TotalAllocation, but remaining is never reported negative.
func RemainingAllocation(assignments []Assignment) decimal.Decimal {
	remaining := FullCapacity.Sub(TotalAllocation(assignments))
	if remaining.IsNegative() {
		return decimal.Zero
	}
	return remaining
}

// ValidateNewAssignment checks that adding candidate percentage to the
// employee's existing assignments keeps the total within 100%.
func ValidateNewAssignment(candidate decimal.Decimal, existing []Assignment) error {
	return validateCandidate(candidate, TotalAllocation(existing))
}

// ValidateEditedAssignment is the edit-in-place variant: the record being
// edited is excluded from the sum before adding the new percentage.
func ValidateEditedAssignment(id AssignmentID, newPercentage decimal.Decimal, all []Assignment) error {
	others := make([]Assignment, 0, len(all))
	for _, a := range all {
		if a.ID != id {
			others = append(others, a)
		}
	}
	return validateCandidate(newPercentage, TotalAllocation(others))
}

func validateCandidate(candidate, currentTotal decimal.Decimal) error {
	candidate = candidate.Round(2)
	if !candidate.IsPositive() {
		return newValidationError("allocation_percentage", "must be > 0")
	}
	if currentTotal.Add(candidate).GreaterThan(FullCapacity) {
		return newValidationError("allocation_percentage",
			"exceeds 100%%: current total %s + requested %s",
			currentTotal.String(), candidate.String())
	}
	return nil
}
