package staffing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/warp/staffing-engine/staffing"
)

// =============================================================================
// TEST FIXTURES
// =============================================================================

func amendment(id, po string, start staffing.DatePoint, end *staffing.DatePoint) staffing.POAmendment {
	return staffing.POAmendment{
		ID:        staffing.AmendmentID(id),
		ProjectID: "proj-1",
		PONumber:  po,
		StartDate: start.Ptr(),
		EndDate:   end,
	}
}

// =============================================================================
// VALIDATION
// =============================================================================

func TestValidateAmendment(t *testing.T) {
	start := staffing.NewDate(2024, time.March, 1)
	end := staffing.NewDate(2024, time.June, 30)

	assert.NoError(t, staffing.ValidateAmendment("PO-1", start.Ptr(), end.Ptr()))
	assert.NoError(t, staffing.ValidateAmendment("PO-1", start.Ptr(), nil), "open-ended is valid")

	cases := []struct {
		name  string
		po    string
		start *staffing.DatePoint
		end   *staffing.DatePoint
		field string
	}{
		{"empty po number", "", start.Ptr(), nil, "po_number"},
		{"whitespace po number", "   ", start.Ptr(), nil, "po_number"},
		{"missing start", "PO-1", nil, nil, "start_date"},
		{"end before start", "PO-1", start.Ptr(), start.AddDays(-1).Ptr(), "end_date"},
		{"same-day end rejected", "PO-1", start.Ptr(), start.Ptr(), "end_date"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			err := staffing.ValidateAmendment(tc.po, tc.start, tc.end)
			require.Error(t, err)
			assert.True(t, staffing.IsClientError(err))

			var verr *staffing.ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Equal(t, tc.field, verr.Field)
		})
	}
}

// =============================================================================
// RECOMPUTATION
// =============================================================================

func TestRecomputeActive_SingleEligible(t *testing.T) {
	today := staffing.NewDate(2024, time.May, 15)
	ledger := []staffing.POAmendment{
		amendment("am-1", "PO-1", staffing.NewDate(2024, time.January, 1), staffing.NewDate(2024, time.March, 31).Ptr()),
		amendment("am-2", "PO-2", staffing.NewDate(2024, time.April, 1), nil),
	}

	winner := staffing.RecomputeActive(ledger, today)

	require.Equal(t, 1, winner)
	assert.False(t, ledger[0].IsActive)
	assert.True(t, ledger[1].IsActive)
}

func TestRecomputeActive_NoneEligible(t *testing.T) {
	// GIVEN: Every amendment expired before today
	today := staffing.NewDate(2025, time.January, 1)
	ledger := []staffing.POAmendment{
		amendment("am-1", "PO-1", staffing.NewDate(2024, time.January, 1), staffing.NewDate(2024, time.June, 30).Ptr()),
	}
	ledger[0].IsActive = true // stale flag from a previous session

	winner := staffing.RecomputeActive(ledger, today)

	assert.Equal(t, -1, winner)
	assert.False(t, ledger[0].IsActive, "stale flag must be cleared")
}

func TestRecomputeActive_OverlapTieBreak(t *testing.T) {
	// GIVEN: Two amendments both date-eligible today (a data-entry anomaly)
	// WHEN: Recomputing
	// THEN: The later start date wins; exactly one ends active, never two

	today := staffing.NewDate(2024, time.May, 15)
	ledger := []staffing.POAmendment{
		amendment("am-old", "PO-1", staffing.NewDate(2024, time.January, 1), staffing.NewDate(2024, time.December, 31).Ptr()),
		amendment("am-new", "PO-2", staffing.NewDate(2024, time.May, 1), staffing.NewDate(2024, time.August, 31).Ptr()),
	}

	winner := staffing.RecomputeActive(ledger, today)

	require.Equal(t, 1, winner)
	assert.Equal(t, staffing.AmendmentID("am-new"), ledger[winner].ID)

	activeCount := 0
	for _, a := range ledger {
		if a.IsActive {
			activeCount++
		}
	}
	assert.Equal(t, 1, activeCount)
}

func TestRecomputeActive_Idempotent(t *testing.T) {
	today := staffing.NewDate(2024, time.May, 15)
	ledger := []staffing.POAmendment{
		amendment("am-1", "PO-1", staffing.NewDate(2024, time.January, 1), nil),
		amendment("am-2", "PO-2", staffing.NewDate(2024, time.April, 1), nil),
	}

	first := staffing.RecomputeActive(ledger, today)
	second := staffing.RecomputeActive(ledger, today)

	assert.Equal(t, first, second)
	assert.True(t, ledger[1].IsActive)
}

// =============================================================================
// ADVISORY START-DATE GUIDANCE
// =============================================================================

func TestSuggestedStartDate(t *testing.T) {
	// GIVEN: Amendments ending March 31 and June 30
	// WHEN: Asking for the suggested next start
	// THEN: July 1 - the day after the latest end

	ledger := []staffing.POAmendment{
		amendment("am-1", "PO-1", staffing.NewDate(2024, time.January, 1), staffing.NewDate(2024, time.March, 31).Ptr()),
		amendment("am-2", "PO-2", staffing.NewDate(2024, time.April, 1), staffing.NewDate(2024, time.June, 30).Ptr()),
	}

	suggested := staffing.SuggestedStartDate(ledger)
	require.NotNil(t, suggested)
	assert.Equal(t, "2024-07-01", suggested.String())
}

func TestSuggestedStartDate_NoEndDates(t *testing.T) {
	assert.Nil(t, staffing.SuggestedStartDate(nil))

	openEnded := []staffing.POAmendment{
		amendment("am-1", "PO-1", staffing.NewDate(2024, time.January, 1), nil),
	}
	assert.Nil(t, staffing.SuggestedStartDate(openEnded))
}
