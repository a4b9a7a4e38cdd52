package pickup

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

var (
	ErrInvalidDate = errors.New("invalid pickup date")
	ErrInvalidTime = errors.New("invalid pickup time")
)

// ParseDate reads a "YYYY-MM-DD" calendar date (or an RFC3339 timestamp) in loc.
// Unlike the storefront it never substitutes "now" for bad input.
func ParseDate(raw string, loc *time.Location) (time.Time, error) {
	if loc == nil {
		loc = time.UTC
	}
	trimmed := strings.TrimSpace(raw)
	if trimmed == "" {
		return time.Time{}, fmt.Errorf("%w: empty", ErrInvalidDate)
	}
	if t, err := time.ParseInLocation(dateLayout, trimmed, loc); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, trimmed); err == nil {
		return startOfDay(t.In(loc)), nil
	}
	return time.Time{}, fmt.Errorf("%w: %q", ErrInvalidDate, raw)
}

// FormatDate renders the calendar part of t.
func FormatDate(t time.Time) string {
	return t.Format(dateLayout)
}

func startOfDay(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, t.Location())
}

// compareDates orders a and b by their own Y-M-D, ignoring clock and zone.
func compareDates(a, b time.Time) int {
	ay, am, ad := a.Date()
	by, bm, bd := b.Date()
	switch {
	case ay != by:
		return sign(ay - by)
	case am != bm:
		return sign(int(am) - int(bm))
	}
	return sign(ad - bd)
}

func sameDate(a, b time.Time) bool {
	return compareDates(a, b) == 0
}

func sign(v int) int {
	switch {
	case v < 0:
		return -1
	case v > 0:
		return 1
	}
	return 0
}
