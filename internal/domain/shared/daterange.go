package shared

import (
	"fmt"
	"time"
)

// DateLayout is the wire format for calendar dates
const DateLayout = "2006-01-02"

// DateOnly truncates t to midnight UTC of its calendar day
func DateOnly(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD date
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse(DateLayout, s)
	if err != nil {
		return time.Time{}, NewDomainError(CodeInvalidInput, fmt.Sprintf("invalid date %q, expected YYYY-MM-DD", s))
	}
	return t, nil
}

// DateRange is a closed interval of calendar days
type DateRange struct {
	Start time.Time
	End   time.Time
}

// NewDateRange builds a range and rejects an end before the start
func NewDateRange(start, end time.Time) (DateRange, error) {
	start, end = DateOnly(start), DateOnly(end)
	if end.Before(start) {
		return DateRange{}, NewDomainError(CodeInvalidInput, "End date cannot be before start date")
	}
	return DateRange{Start: start, End: end}, nil
}

// Overlaps reports whether two closed ranges share at least one day
func (r DateRange) Overlaps(other DateRange) bool {
	return !r.End.Before(other.Start) && !other.End.Before(r.Start)
}

// Contains reports whether day falls inside the range
func (r DateRange) Contains(day time.Time) bool {
	day = DateOnly(day)
	return !day.Before(r.Start) && !day.After(r.End)
}

// Days returns the number of calendar days in the range, inclusive
func (r DateRange) Days() int {
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

// EachDay calls fn for every day in the range in order
func (r DateRange) EachDay(fn func(day time.Time)) {
	for d := r.Start; !d.After(r.End); d = d.AddDate(0, 0, 1) {
		fn(d)
	}
}

// String formats the range as start..end
func (r DateRange) String() string {
	return r.Start.Format(DateLayout) + ".." + r.End.Format(DateLayout)
}
