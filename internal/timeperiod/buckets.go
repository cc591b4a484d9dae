package timeperiod

import "time"

// WeekWindow is one ISO week with its civil date bounds.
type WeekWindow struct {
	Year  int       `json:"year"`
	Week  int       `json:"week"`
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Token returns the week's date-pair path segment.
func (w WeekWindow) Token() string {
	return EncodeDatePair(w.Start, w.End)
}

// MonthBucket groups the weeks whose Monday falls in one calendar month.
type MonthBucket struct {
	Year  int          `json:"year"`
	Month time.Month   `json:"month"`
	Weeks []WeekWindow `json:"weeks"`
}

// MonthBuckets returns the reference year's ISO weeks bucketed by the month
// each week's Monday falls in, newest month first. The week containing
// today is the newest week emitted, so the current year's index never
// lists weeks that have not started; years after today's ISO year yield
// nothing. When week 1 starts in the previous December, that December
// shows up as the final (oldest) bucket.
func MonthBuckets(referenceYear int, today time.Time) []MonthBucket {
	lastWeek := ISOWeeksInYear(referenceYear)
	todayYear, todayWeek := today.ISOWeek()
	if referenceYear > todayYear {
		return nil
	}
	if referenceYear == todayYear && todayWeek < lastWeek {
		lastWeek = todayWeek
	}

	var buckets []MonthBucket
	for week := lastWeek; week >= 1; week-- {
		start := weekStart(referenceYear, week)
		w := WeekWindow{
			Year:  referenceYear,
			Week:  week,
			Start: start,
			End:   start.AddDate(0, 0, 6),
		}
		y, m := start.Year(), start.Month()
		if n := len(buckets); n > 0 && buckets[n-1].Year == y && buckets[n-1].Month == m {
			buckets[n-1].Weeks = append(buckets[n-1].Weeks, w)
		} else {
			buckets = append(buckets, MonthBucket{Year: y, Month: m, Weeks: []WeekWindow{w}})
		}
	}
	return buckets
}
