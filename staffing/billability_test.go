package staffing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/staffing-engine/staffing"
)

// =============================================================================
// BILLABILITY DERIVER TESTS
// =============================================================================

func TestDeriveBillability_ActiveAmendmentWins(t *testing.T) {
	// GIVEN: An assignment whose own PO fields evaluate to INACTIVE (ended
	//        last year), but whose ledger carries an active amendment
	// WHEN: Deriving billability
	// THEN: Billable/active - the amendment ledger takes precedence over
	//       the legacy single-PO fields

	today := staffing.NewDate(2024, time.May, 15)
	start := staffing.NewDate(2023, time.January, 1)
	end := staffing.NewDate(2023, time.June, 30)

	a := staffing.Assignment{
		ID:        "a1",
		PONumber:  "PO-LEGACY",
		StartDate: start.Ptr(),
		EndDate:   end.Ptr(),
		POAmendments: []staffing.POAmendment{
			{ID: "am-1", PONumber: "PO-1", StartDate: staffing.NewDate(2024, time.January, 1).Ptr(), IsActive: true},
		},
	}

	got := staffing.DeriveBillability(a, today)
	assert.Equal(t, staffing.StatusBillable, got.Status)
	assert.True(t, got.IsActive)
}

func TestDeriveBillability_LedgerWithoutActiveAmendment(t *testing.T) {
	// A non-empty ledger with no active amendment short-circuits to Bench
	// even when the legacy fields would evaluate active on their own.

	today := staffing.NewDate(2024, time.May, 15)
	a := staffing.Assignment{
		ID:        "a1",
		PONumber:  "PO-LEGACY",
		StartDate: staffing.NewDate(2024, time.January, 1).Ptr(),
		POAmendments: []staffing.POAmendment{
			{ID: "am-1", PONumber: "PO-1", StartDate: staffing.NewDate(2023, time.January, 1).Ptr(), IsActive: false},
		},
	}

	got := staffing.DeriveBillability(a, today)
	assert.Equal(t, staffing.StatusBench, got.Status)
	assert.False(t, got.IsActive)
}

func TestDeriveBillability_LegacyPOFields(t *testing.T) {
	today := staffing.NewDate(2024, time.May, 15)

	within := staffing.Assignment{
		ID:        "a1",
		PONumber:  "PO-7",
		StartDate: staffing.NewDate(2024, time.January, 1).Ptr(),
		EndDate:   staffing.NewDate(2024, time.December, 31).Ptr(),
	}
	got := staffing.DeriveBillability(within, today)
	assert.Equal(t, staffing.StatusBillable, got.Status)
	assert.True(t, got.IsActive)

	expired := within
	expired.EndDate = staffing.NewDate(2024, time.February, 1).Ptr()
	got = staffing.DeriveBillability(expired, today)
	assert.Equal(t, staffing.StatusBench, got.Status)
	assert.False(t, got.IsActive)
}

func TestDeriveBillability_NoPOAtAll(t *testing.T) {
	today := staffing.NewDate(2024, time.May, 15)

	a := staffing.Assignment{
		ID:        "a1",
		StartDate: staffing.NewDate(2024, time.January, 1).Ptr(),
	}
	got := staffing.DeriveBillability(a, today)
	assert.Equal(t, staffing.StatusBench, got.Status)
	assert.False(t, got.IsActive)

	// PO number without a start date also lands on Bench
	a.PONumber = "PO-9"
	a.StartDate = nil
	got = staffing.DeriveBillability(a, today)
	assert.Equal(t, staffing.StatusBench, got.Status)
	assert.False(t, got.IsActive)
}

// =============================================================================
// LATEST-END-DATE DERIVER TESTS
// =============================================================================

func TestLatestEndDate_AmendmentWinsOverAssignment(t *testing.T) {
	// GIVEN: A1 ongoing (no end), A2 ending 2024-06-30, and A2's project
	//        carrying an amendment ending 2024-09-15
	// WHEN: Deriving the latest end date
	// THEN: 2024-09-15 - the amendment's later date wins

	a1 := staffing.Assignment{ID: "a1"}
	a2 := staffing.Assignment{
		ID:      "a2",
		EndDate: staffing.NewDate(2024, time.June, 30).Ptr(),
		POAmendments: []staffing.POAmendment{
			{ID: "am-1", EndDate: staffing.NewDate(2024, time.September, 15).Ptr()},
		},
	}

	latest := staffing.LatestEndDate([]staffing.Assignment{a1, a2})
	require.NotNil(t, latest)
	assert.Equal(t, "2024-09-15", latest.String())
}

func TestLatestEndDate_AllOngoing(t *testing.T) {
	assignments := []staffing.Assignment{
		{ID: "a1"},
		{ID: "a2", POAmendments: []staffing.POAmendment{{ID: "am-1"}}},
	}
	assert.Nil(t, staffing.LatestEndDate(assignments))
	assert.Nil(t, staffing.LatestEndDate(nil))
}

func TestDeriveLastActiveDate(t *testing.T) {
	manual := staffing.NewDate(2024, time.January, 1)

	// Derived date overrides the manual value
	emp := staffing.Employee{ID: "e1", LastActiveDate: manual.Ptr()}
	staffing.DeriveLastActiveDate(&emp, []staffing.Assignment{
		{ID: "a1", EndDate: staffing.NewDate(2024, time.August, 31).Ptr()},
	})
	require.NotNil(t, emp.LastActiveDate)
	assert.Equal(t, "2024-08-31", emp.LastActiveDate.String())

	// No end dates anywhere: the manual value is kept as-is
	emp = staffing.Employee{ID: "e1", LastActiveDate: manual.Ptr()}
	staffing.DeriveLastActiveDate(&emp, []staffing.Assignment{{ID: "a1"}})
	require.NotNil(t, emp.LastActiveDate)
	assert.Equal(t, "2024-01-01", emp.LastActiveDate.String())
}
