package timeperiod

import (
	"fmt"
	"strings"
	"time"
)

// EncodeDatePair packs two civil dates into one URL path segment by joining
// their YYYY-MM-DD forms with a hyphen, e.g. "2025-01-06-2025-01-12".
// Decoding relies on each date contributing exactly three hyphen-separated
// components, so the format is validated strictly rather than inferred.
func EncodeDatePair(start, end time.Time) string {
	return start.Format("2006-01-02") + "-" + end.Format("2006-01-02")
}

// DecodeDatePair splits a date-pair token back into its two dates. The
// token must contain exactly six hyphen-separated components that form two
// valid YYYY-MM-DD dates; anything else fails, never a silent wrong split.
func DecodeDatePair(token string) (time.Time, time.Time, error) {
	parts := strings.Split(token, "-")
	if len(parts) != 6 {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: date pair token %q has %d components, want 6", ErrInvalidInput, token, len(parts))
	}
	for i, p := range parts {
		want := 2
		if i == 0 || i == 3 {
			want = 4
		}
		if len(p) != want {
			return time.Time{}, time.Time{}, fmt.Errorf("%w: date pair token %q component %d has width %d", ErrInvalidInput, token, i+1, len(p))
		}
	}

	start, err := ParseDate(strings.Join(parts[0:3], "-"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	end, err := ParseDate(strings.Join(parts[3:6], "-"))
	if err != nil {
		return time.Time{}, time.Time{}, err
	}
	return start, end, nil
}
