/*
billability.go - Derived display status for assignments and employees

PURPOSE:
  Pure read-side projections, recomputed on every query and never persisted
  as separate fields that could drift from source data.

PRIORITY ORDER (first match wins):
  1. Non-empty amendment ledger: active amendment -> Billable, none -> Bench
  2. Legacy single-PO fields (PONumber + StartDate) evaluated by date range
  3. No PO at all -> Bench
*/
package staffing

// =============================================================================
// BILLABILITY DERIVER
// =============================================================================

type BillabilityStatus string

const (
	StatusBillable BillabilityStatus = "Billable"
	StatusBench    BillabilityStatus = "Bench"
)

// Billability is the derived display status of one assignment.
type Billability struct {
	Status   BillabilityStatus
	IsActive bool
}

// DeriveBillability derives an assignment's display billability from its
// amendment ledger and, failing that, its legacy single-PO fields. A
// non-empty ledger takes precedence either way: an active amendment reports
// Billable even if the assignment's own PONumber/StartDate would evaluate
// inactive, and a ledger with no active amendment reports Bench without
// consulting the legacy fields.
func DeriveBillability(a Assignment, today DatePoint) Billability {
	if len(a.POAmendments) > 0 {
		if ActiveAmendment(a.POAmendments) != nil {
			return Billability{Status: StatusBillable, IsActive: true}
		}
		return Billability{Status: StatusBench, IsActive: false}
	}

	if a.PONumber != "" && a.StartDate != nil && !a.StartDate.IsZero() {
		active := ActiveOn(today, a.StartDate, a.EndDate)
		status := StatusBench
		if active {
			status = StatusBillable
		}
		return Billability{Status: status, IsActive: active}
	}

	return Billability{Status: StatusBench, IsActive: false}
}

// =============================================================================
// LATEST-END-DATE DERIVER (employee-level)
// =============================================================================

// LatestEndDate scans every assignment's end date and every nested
// amendment's end date, returning the most future date found, or nil when
// no end dates exist anywhere (all ongoing/unset).
//
// Used to auto-populate an employee's last-active-date at save time: a found
// date overrides the manually-entered value, otherwise the manual value is
// kept as-is (see DeriveLastActiveDate).
func LatestEndDate(assignments []Assignment) *DatePoint {
	var latest *DatePoint

	consider := func(d *DatePoint) {
		if d == nil || d.IsZero() {
			return
		}
		if latest == nil || d.After(*latest) {
			copied := *d
			latest = &copied
		}
	}

	for _, a := range assignments {
		consider(a.EndDate)
		for _, am := range a.POAmendments {
			consider(am.EndDate)
		}
	}
	return latest
}

// DeriveLastActiveDate applies the latest-end-date rule to an employee
// record at save time.
func DeriveLastActiveDate(e *Employee, assignments []Assignment) {
	if latest := LatestEndDate(assignments); latest != nil {
		e.LastActiveDate = latest
	}
}
