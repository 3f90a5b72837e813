package staffing

import (
	"time"
)

// =============================================================================
// DATE POINT - Calendar-date granularity (time-of-day is always stripped)
// =============================================================================

// DatePoint is a calendar date. All comparisons normalize to midnight UTC so
// same-day boundaries are inclusive regardless of the time-of-day carried by
// the underlying time.Time.
type DatePoint struct {
	Time time.Time
}

// Constructors
func NewDate(year int, month time.Month, day int) DatePoint {
	return DatePoint{Time: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

func DateOf(t time.Time) DatePoint {
	return NewDate(t.Year(), t.Month(), t.Day())
}

func Today() DatePoint {
	return DateOf(time.Now().UTC())
}

// ParseDate parses an ISO calendar date (YYYY-MM-DD). It tolerates full
// RFC3339 timestamps by truncating to the date. The ok result is false for
// empty or malformed input; callers treat that as "no date" (fails closed).
func ParseDate(s string) (DatePoint, bool) {
	if s == "" {
		return DatePoint{}, false
	}
	if t, err := time.Parse("2006-01-02", s); err == nil {
		return DateOf(t), true
	}
	if t, err := time.Parse(time.RFC3339, s); err == nil {
		return DateOf(t), true
	}
	return DatePoint{}, false
}

// ParseDatePtr is ParseDate for nullable fields: nil for absent or malformed.
func ParseDatePtr(s string) *DatePoint {
	d, ok := ParseDate(s)
	if !ok {
		return nil
	}
	return &d
}

// Comparison
func (d DatePoint) Before(other DatePoint) bool { return d.normalize().Before(other.normalize()) }
func (d DatePoint) After(other DatePoint) bool  { return d.normalize().After(other.normalize()) }
func (d DatePoint) Equal(other DatePoint) bool  { return d.normalize().Equal(other.normalize()) }
func (d DatePoint) BeforeOrEqual(other DatePoint) bool { return !d.After(other) }
func (d DatePoint) AfterOrEqual(other DatePoint) bool  { return !d.Before(other) }

func (d DatePoint) normalize() time.Time {
	return time.Date(d.Time.Year(), d.Time.Month(), d.Time.Day(), 0, 0, 0, 0, time.UTC)
}

// Arithmetic
func (d DatePoint) AddDays(n int) DatePoint { return DatePoint{Time: d.Time.AddDate(0, 0, n)} }

func (d DatePoint) IsZero() bool { return d.Time.IsZero() }

func (d DatePoint) String() string { return d.Time.Format("2006-01-02") }

// Ptr returns a pointer copy, convenient for nullable end dates.
func (d DatePoint) Ptr() *DatePoint { return &d }

// =============================================================================
// DATE-RANGE EVALUATOR - Active-on semantics
// =============================================================================

// ActiveOn reports whether today falls within [start, end], both inclusive.
//
// Rules:
//   - start nil (absent/unparsable): false. Nothing is active without a
//     defined start.
//   - end present: active iff start <= today <= end.
//   - end nil: open-ended, active iff start <= today.
func ActiveOn(today DatePoint, start, end *DatePoint) bool {
	if start == nil || start.IsZero() {
		return false
	}
	if start.After(today) {
		return false
	}
	if end == nil || end.IsZero() {
		return true
	}
	return today.BeforeOrEqual(*end)
}

// ActiveOnStrings evaluates ISO date strings directly. Malformed or empty
// start fails closed; malformed end is treated as open-ended only when empty,
// otherwise it also fails closed.
func ActiveOnStrings(today DatePoint, start, end string) bool {
	startDate, ok := ParseDate(start)
	if !ok {
		return false
	}
	if end == "" {
		return ActiveOn(today, &startDate, nil)
	}
	endDate, ok := ParseDate(end)
	if !ok {
		return false
	}
	return ActiveOn(today, &startDate, &endDate)
}
