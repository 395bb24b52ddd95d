package ranking

import (
	"regexp"
	"time"
)

var monthPattern = regexp.MustCompile(`^\d{4}-\d{2}$`)

// monthBounds returns the first instant of the month (inclusive) and the first
// instant of the next month (exclusive), in UTC.
func monthBounds(month string) (time.Time, time.Time, error) {
	start, err := time.ParseInLocation("2006-01", month, time.UTC)
	if err != nil {
		return time.Time{}, time.Time{}, ErrInvalidMonth
	}
	return start, start.AddDate(0, 1, 0), nil
}

// PreviousMonth returns the YYYY-MM string for the UTC calendar month before
// now. Month attribution is UTC throughout so the scheduled computation and
// the per-redemption bumps agree on which month an instant belongs to.
func PreviousMonth(now time.Time) string {
	year, month, _ := now.UTC().Date()
	return time.Date(year, month, 1, 0, 0, 0, 0, time.UTC).AddDate(0, -1, 0).Format("2006-01")
}
