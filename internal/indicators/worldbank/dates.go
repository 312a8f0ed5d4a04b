package worldbank

import (
	"fmt"
	"strconv"
	"time"
)

// parseDate converts an API period label to the first day of that period in UTC.
// Accepted labels: "2019" (year), "2019Q3" (quarter), "2019M07" (month).
// With convert disabled only plain years are accepted.
func parseDate(label string, convert bool) (time.Time, error) {
	if len(label) < 4 {
		return time.Time{}, fmt.Errorf("invalid date %q", label)
	}
	year, err := strconv.Atoi(label[:4])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", label, err)
	}
	rest := label[4:]
	if rest == "" {
		return time.Date(year, time.January, 1, 0, 0, 0, 0, time.UTC), nil
	}
	if !convert {
		return time.Time{}, fmt.Errorf("date %q is not a year", label)
	}

	n, err := strconv.Atoi(rest[1:])
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: %w", label, err)
	}
	switch rest[0] {
	case 'Q', 'q':
		if n < 1 || n > 4 {
			return time.Time{}, fmt.Errorf("invalid quarter in %q", label)
		}
		return time.Date(year, time.Month(3*(n-1)+1), 1, 0, 0, 0, 0, time.UTC), nil
	case 'M', 'm':
		if n < 1 || n > 12 {
			return time.Time{}, fmt.Errorf("invalid month in %q", label)
		}
		return time.Date(year, time.Month(n), 1, 0, 0, 0, 0, time.UTC), nil
	}
	return time.Time{}, fmt.Errorf("unsupported date %q", label)
}
