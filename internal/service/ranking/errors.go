package ranking

import "errors"

var (
	// ErrInvalidMonth means the month string is not in YYYY-MM form.
	ErrInvalidMonth = errors.New("month must be in YYYY-MM format")

	// ErrInvalidDateRange means the start/end dates are malformed or inverted.
	ErrInvalidDateRange = errors.New("invalid date range, expected YYYY-MM-DD dates with start before end")
)
