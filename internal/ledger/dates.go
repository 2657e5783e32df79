package ledger

import (
	"strings"
	"time"

	"go-pos-ledger/internal/apperr"
)

const dateOnly = "2006-01-02"

// DateRange is inclusive on both ends.
type DateRange struct {
	Start time.Time
	End   time.Time
}

// ParseDateRange accepts RFC3339 timestamps or YYYY-MM-DD dates. A date-only
// end covers the whole day.
func ParseDateRange(start, end string) (DateRange, error) {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if start == "" || end == "" {
		return DateRange{}, apperr.Validationf("Start date and end date are required query parameters")
	}
	s, _, err := parseDate(start)
	if err != nil {
		return DateRange{}, apperr.Validationf("Invalid start date %q", start)
	}
	e, dayOnly, err := parseDate(end)
	if err != nil {
		return DateRange{}, apperr.Validationf("Invalid end date %q", end)
	}
	if dayOnly {
		e = e.Add(24*time.Hour - time.Nanosecond)
	}
	if e.Before(s) {
		return DateRange{}, apperr.Validationf("End date must not be before start date")
	}
	return DateRange{Start: s.UTC(), End: e.UTC()}, nil
}

func parseDate(v string) (time.Time, bool, error) {
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t, false, nil
	}
	t, err := time.Parse(dateOnly, v)
	if err != nil {
		return time.Time{}, false, err
	}
	return t, true, nil
}
