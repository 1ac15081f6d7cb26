// Package analytics implements the pure aggregation engine: period
// resolution, transaction folds, report building and pagination math.
// Nothing in this package performs I/O; every function is a deterministic
// fold over a caller-owned snapshot of transactions.
package analytics

import (
	"errors"
	"strings"
	"time"
)

const (
	PeriodWeek  Period = "week"
	PeriodMonth Period = "month"
	PeriodYear  Period = "year"
)

type (
	// Period is the granularity used to filter and bucket transactions.
	Period string

	// Range is a concrete, both-ends-inclusive time window.
	Range struct {
		Start time.Time
		End   time.Time
	}
)

var ErrInvalidPeriod = errors.New("invalid period")

// ParsePeriod validates a raw period string against the closed enum.
func ParsePeriod(s string) (Period, error) {
	switch Period(strings.ToLower(strings.TrimSpace(s))) {
	case PeriodWeek:
		return PeriodWeek, nil
	case PeriodMonth:
		return PeriodMonth, nil
	case PeriodYear:
		return PeriodYear, nil
	}
	return "", ErrInvalidPeriod
}

// ISOWeekday maps Go's Sunday-based weekday to ISO numbering,
// 1 (Monday) through 7 (Sunday).
func ISOWeekday(t time.Time) int {
	if wd := int(t.Weekday()); wd != 0 {
		return wd
	}
	return 7
}

// UTCDayRange returns the UTC calendar day containing t,
// [00:00:00.000, 23:59:59.999].
func UTCDayRange(t time.Time) Range {
	y, m, d := t.UTC().Date()
	start := time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
	return Range{Start: start, End: start.Add(24*time.Hour - time.Millisecond)}
}

// ResolveRange turns an optional period plus an optional anchor date into a
// concrete time range. A zero anchor means "no anchor": with a period it
// defaults to now, without one there is nothing to filter by and the second
// return value is false. Without a period the range is the anchor's UTC
// calendar day. Week (Monday-first), month and year boundaries are computed
// in the anchor's own location; comparisons against the result are inclusive
// on both ends.
func ResolveRange(period Period, anchor time.Time) (Range, bool) {
	if period == "" {
		if anchor.IsZero() {
			return Range{}, false
		}
		return UTCDayRange(anchor), true
	}

	if anchor.IsZero() {
		anchor = time.Now()
	}
	y, m, d := anchor.Date()
	loc := anchor.Location()

	switch period {
	case PeriodWeek:
		offset := (int(anchor.Weekday()) + 6) % 7 // days since Monday
		start := time.Date(y, m, d-offset, 0, 0, 0, 0, loc)
		return Range{Start: start, End: start.AddDate(0, 0, 7).Add(-time.Millisecond)}, true
	case PeriodMonth:
		start := time.Date(y, m, 1, 0, 0, 0, 0, loc)
		return Range{Start: start, End: start.AddDate(0, 1, 0).Add(-time.Millisecond)}, true
	case PeriodYear:
		start := time.Date(y, 1, 1, 0, 0, 0, 0, loc)
		return Range{Start: start, End: start.AddDate(1, 0, 0).Add(-time.Millisecond)}, true
	}

	// Unknown period with an anchor behaves like a plain day filter.
	return UTCDayRange(anchor), true
}

// Contains reports whether t falls inside the range, inclusive on both ends.
func (r Range) Contains(t time.Time) bool {
	return !t.Before(r.Start) && !t.After(r.End)
}
