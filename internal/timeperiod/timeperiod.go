// Package timeperiod does the calendar math for report periods: civil dates
// and ISO weeks interpreted in one fixed timezone, converted to UTC instant
// ranges for storage and queries. It has no store dependencies.
package timeperiod

import (
	"errors"
	"fmt"
	"time"
)

// ErrInvalidInput marks malformed dates, tokens, and out-of-range week
// numbers. Callers match it with errors.Is.
var ErrInvalidInput = errors.New("invalid temporal input")

// Calendar interprets civil dates in a fixed timezone.
type Calendar struct {
	loc *time.Location
}

// NewCalendar loads the named timezone. The zone is fixed for the life of
// the process; every user sees the same civil calendar.
func NewCalendar(tzName string) (*Calendar, error) {
	loc, err := time.LoadLocation(tzName)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown timezone %q", ErrInvalidInput, tzName)
	}
	return &Calendar{loc: loc}, nil
}

// Location returns the calendar's fixed civil timezone.
func (c *Calendar) Location() *time.Location {
	return c.loc
}

// DayWindow returns the half-open UTC range [start, end) covering the civil
// day of the given date in the calendar's timezone.
func (c *Calendar) DayWindow(date time.Time) (time.Time, time.Time) {
	start := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, c.loc)
	end := start.AddDate(0, 0, 1)
	return start.UTC(), end.UTC()
}

// Today returns the current civil date in the calendar's timezone as a
// midnight-UTC date value.
func (c *Calendar) Today() time.Time {
	now := time.Now().In(c.loc)
	return Date(now.Year(), now.Month(), now.Day())
}

// Date builds a civil date value. Civil dates are represented throughout as
// midnight UTC; only DayWindow re-anchors them to the configured timezone.
func Date(year int, month time.Month, day int) time.Time {
	return time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
}

// ParseDate parses a YYYY-MM-DD civil date.
func ParseDate(s string) (time.Time, error) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return time.Time{}, fmt.Errorf("%w: bad date %q", ErrInvalidInput, s)
	}
	return t, nil
}

// YearAndWeek returns the ISO week-numbering year and week of a civil date.
func YearAndWeek(date time.Time) (int, int) {
	return date.ISOWeek()
}

// ISOWeeksInYear returns 52 or 53. December 28 is always in the last ISO
// week of its year.
func ISOWeeksInYear(year int) int {
	_, week := Date(year, time.December, 28).ISOWeek()
	return week
}

// ISOWeekRange returns the Monday and Sunday civil dates of the given ISO
// week. The Monday of week 1 can fall in the preceding December.
func ISOWeekRange(year, week int) (time.Time, time.Time, error) {
	if week < 1 || week > ISOWeeksInYear(year) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: week %d out of range for %d", ErrInvalidInput, week, year)
	}
	start := weekStart(year, week)
	return start, start.AddDate(0, 0, 6), nil
}

// weekStart returns the Monday of ISO week (year, week). January 4 is in
// week 1 by definition.
func weekStart(year, week int) time.Time {
	jan4 := Date(year, time.January, 4)
	wd := int(jan4.Weekday())
	if wd == 0 { // Sunday
		wd = 7
	}
	week1Monday := jan4.AddDate(0, 0, 1-wd)
	return week1Monday.AddDate(0, 0, (week-1)*7)
}

// ShiftWeek returns the date n weeks away, same weekday.
func ShiftWeek(date time.Time, n int) time.Time {
	return date.AddDate(0, 0, 7*n)
}
