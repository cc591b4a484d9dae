package models

import (
	"fmt"
	"time"
)

// PeriodType discriminates the two report cadences.
type PeriodType string

const (
	PeriodDaily  PeriodType = "daily"
	PeriodWeekly PeriodType = "weekly"
)

// Period is the time key of a report. Combined with the owner it must be
// unique. Daily periods carry a civil date (stored as UTC midnight of that
// date), weekly periods carry an ISO year and week number. The zero fields
// of the unused variant stay zero so Period values compare with ==.
type Period struct {
	Type PeriodType
	Date time.Time // daily only, truncated to midnight UTC
	Year int       // weekly only, ISO week-numbering year
	Week int       // weekly only, 1..53
}

// DailyPeriod builds a daily period for the given civil date.
func DailyPeriod(date time.Time) Period {
	return Period{
		Type: PeriodDaily,
		Date: time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, time.UTC),
	}
}

// WeeklyPeriod builds a weekly period for the given ISO year and week.
func WeeklyPeriod(year, week int) Period {
	return Period{Type: PeriodWeekly, Year: year, Week: week}
}

func (p Period) IsDaily() bool  { return p.Type == PeriodDaily }
func (p Period) IsWeekly() bool { return p.Type == PeriodWeekly }

func (p Period) String() string {
	if p.Type == PeriodWeekly {
		return fmt.Sprintf("%d-W%02d", p.Year, p.Week)
	}
	return p.Date.Format("2006-01-02")
}

// Period returns the report's time key as a comparable value.
func (r *Report) Period() Period {
	if r.PeriodType == string(PeriodWeekly) {
		return WeeklyPeriod(r.Year, r.Week)
	}
	return DailyPeriod(r.ReportDate)
}

// ApplyPeriod writes the period variant onto the report columns.
func (r *Report) ApplyPeriod(p Period) {
	r.PeriodType = string(p.Type)
	r.ReportDate = p.Date
	r.Year = p.Year
	r.Week = p.Week
}
