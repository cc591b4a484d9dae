package timeperiod

import (
	"time"

	"github.com/rickar/cal/v2"
	"github.com/rickar/cal/v2/de"
	"github.com/rickar/cal/v2/fr"
	"github.com/rickar/cal/v2/gb"
	"github.com/rickar/cal/v2/jp"
	"github.com/rickar/cal/v2/us"
)

// BusinessCalendar annotates report windows with workday information for
// one country. Unknown country codes fall back to plain weekday logic.
type BusinessCalendar struct {
	cal *cal.BusinessCalendar
}

func NewBusinessCalendar(countryCode string) *BusinessCalendar {
	c := cal.NewBusinessCalendar()
	switch countryCode {
	case "JP":
		c.Name = "Japan"
		c.AddHoliday(jp.Holidays...)
	case "US":
		c.Name = "United States"
		c.AddHoliday(us.Holidays...)
	case "GB":
		c.Name = "United Kingdom"
		c.AddHoliday(gb.Holidays...)
	case "DE":
		c.Name = "Germany"
		c.AddHoliday(de.Holidays...)
	case "FR":
		c.Name = "France"
		c.AddHoliday(fr.Holidays...)
	default:
		c.Name = "Weekdays"
	}
	return &BusinessCalendar{cal: c}
}

// IsWorkday reports whether the civil date is a business day.
func (b *BusinessCalendar) IsWorkday(date time.Time) bool {
	return b.cal.IsWorkday(date)
}

// WorkdaysIn counts business days in the inclusive civil date range.
func (b *BusinessCalendar) WorkdaysIn(start, end time.Time) int {
	count := 0
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		if b.cal.IsWorkday(d) {
			count++
		}
	}
	return count
}
