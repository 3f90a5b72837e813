/*
amendment.go - PO amendment validation and active-record recomputation

PURPOSE:
  Pure rule functions over a project's amendment ledger. The store-backed
  ledger service (package poledger) calls these after every mutation; the
  API layer also calls RecomputeActive defensively on read.

RECOMPUTATION:
  Deactivate everything, then evaluate each amendment's date range against
  "today". If any amendment qualifies, exactly one is activated. Overlapping
  ranges are a data-entry anomaly, not a normal case; the tie-break is
  deterministic: most recent start date wins.
*/
package staffing

import (
	"sort"
	"strings"
)

// =============================================================================
// AMENDMENT VALIDATION
// =============================================================================

// ValidateAmendment checks the fields of a PO amendment before any mutation.
// PONumber must be non-empty, StartDate must be present, and when an end date
// is given it must be strictly after the start date (same-day end rejected).
func ValidateAmendment(poNumber string, start, end *DatePoint) error {
	if strings.TrimSpace(poNumber) == "" {
		return newValidationError("po_number", "must not be empty")
	}
	if start == nil || start.IsZero() {
		return newValidationError("start_date", "is required")
	}
	if end != nil && !end.IsZero() && !end.After(*start) {
		return newValidationError("end_date", "must be after start date")
	}
	return nil
}

// =============================================================================
// ACTIVE RECOMPUTATION
// =============================================================================

// RecomputeActive recomputes the IsActive flags for one project's ledger
// in place and returns the index of the activated amendment, or -1 when no
// amendment is date-eligible today.
//
// Tie-break: when multiple amendments are simultaneously eligible, the one
// with the latest start date wins. Exactly one amendment ends up active
// whenever any qualifies; never two.
//
// Idempotent: safe to repeat on every mutation or read.
func RecomputeActive(amendments []POAmendment, today DatePoint) int {
	for i := range amendments {
		amendments[i].IsActive = false
	}

	var eligible []int
	for i, a := range amendments {
		if ActiveOn(today, a.StartDate, a.EndDate) {
			eligible = append(eligible, i)
		}
	}
	if len(eligible) == 0 {
		return -1
	}

	sort.SliceStable(eligible, func(x, y int) bool {
		return amendments[eligible[x]].StartDate.After(*amendments[eligible[y]].StartDate)
	})

	winner := eligible[0]
	amendments[winner].IsActive = true
	return winner
}

// =============================================================================
// ADVISORY HELPERS
// =============================================================================

// SuggestedStartDate returns the day after the latest existing end date in
// the ledger, as advisory UI guidance to avoid accidental overlap. It is not
// a constraint the ledger enforces. Returns nil when no amendment carries an
// end date (everything open-ended, or ledger empty).
func SuggestedStartDate(amendments []POAmendment) *DatePoint {
	var latest *DatePoint
	for _, a := range amendments {
		if a.EndDate == nil || a.EndDate.IsZero() {
			continue
		}
		if latest == nil || a.EndDate.After(*latest) {
			end := *a.EndDate
			latest = &end
		}
	}
	if latest == nil {
		return nil
	}
	next := latest.AddDays(1)
	return &next
}

// ActiveAmendment returns the currently flagged active amendment, or nil.
func ActiveAmendment(amendments []POAmendment) *POAmendment {
	for i := range amendments {
		if amendments[i].IsActive {
			return &amendments[i]
		}
	}
	return nil
}
