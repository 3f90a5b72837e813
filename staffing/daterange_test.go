package staffing_test

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/warp/staffing-engine/staffing"
)

// =============================================================================
// DATE-RANGE EVALUATOR TESTS
// =============================================================================

func TestActiveOn_SingleDayWindow(t *testing.T) {
	// GIVEN: A window where start = end = today
	// WHEN: Evaluating today against it
	// THEN: Active (boundaries are inclusive)

	d := staffing.NewDate(2024, time.March, 10)
	assert.True(t, staffing.ActiveOn(d, d.Ptr(), d.Ptr()))
}

func TestActiveOn_Boundaries(t *testing.T) {
	start := staffing.NewDate(2024, time.March, 10)
	end := staffing.NewDate(2024, time.March, 20)

	cases := []struct {
		name   string
		today  staffing.DatePoint
		active bool
	}{
		{"day before start", start.AddDays(-1), false},
		{"on start", start, true},
		{"inside window", start.AddDays(5), true},
		{"on end", end, true},
		{"day after end", end.AddDays(1), false},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			assert.Equal(t, tc.active, staffing.ActiveOn(tc.today, start.Ptr(), end.Ptr()))
		})
	}
}

func TestActiveOn_OpenEnded(t *testing.T) {
	// GIVEN: No end date (ongoing)
	// WHEN: Evaluating any date at or after start
	// THEN: Active indefinitely; before start stays inactive

	start := staffing.NewDate(2024, time.January, 1)

	assert.True(t, staffing.ActiveOn(start, start.Ptr(), nil))
	assert.True(t, staffing.ActiveOn(start.AddDays(10000), start.Ptr(), nil))
	assert.False(t, staffing.ActiveOn(start.AddDays(-1), start.Ptr(), nil))
}

func TestActiveOn_MissingStartFailsClosed(t *testing.T) {
	today := staffing.NewDate(2024, time.June, 1)

	assert.False(t, staffing.ActiveOn(today, nil, nil))
	assert.False(t, staffing.ActiveOn(today, &staffing.DatePoint{}, nil), "zero start is treated as absent")
}

func TestActiveOn_TimeOfDayStripped(t *testing.T) {
	// GIVEN: A start date carrying a late time-of-day
	// WHEN: Comparing against a same-day "today"
	// THEN: Same-day boundary is inclusive regardless of clock time

	late := staffing.DatePoint{Time: time.Date(2024, time.March, 10, 23, 59, 0, 0, time.UTC)}
	today := staffing.NewDate(2024, time.March, 10)

	assert.True(t, staffing.ActiveOn(today, &late, nil))
}

// =============================================================================
// PARSING TESTS - Malformed input fails closed, never panics
// =============================================================================

func TestParseDate(t *testing.T) {
	d, ok := staffing.ParseDate("2024-06-30")
	assert.True(t, ok)
	assert.Equal(t, "2024-06-30", d.String())

	// RFC3339 timestamps are tolerated and truncated to the date
	d, ok = staffing.ParseDate("2024-06-30T15:04:05Z")
	assert.True(t, ok)
	assert.Equal(t, "2024-06-30", d.String())

	for _, bad := range []string{"", "not-a-date", "2024-13-45", "30/06/2024"} {
		_, ok := staffing.ParseDate(bad)
		assert.False(t, ok, "expected %q to fail closed", bad)
	}
}

func TestActiveOnStrings_MalformedFailsClosed(t *testing.T) {
	today := staffing.NewDate(2024, time.June, 1)

	assert.False(t, staffing.ActiveOnStrings(today, "garbage", ""))
	assert.False(t, staffing.ActiveOnStrings(today, "", "2024-12-31"))
	assert.False(t, staffing.ActiveOnStrings(today, "2024-01-01", "garbage"))
	assert.True(t, staffing.ActiveOnStrings(today, "2024-01-01", ""))
	assert.True(t, staffing.ActiveOnStrings(today, "2024-01-01", "2024-12-31"))
}
