// Package pickup decides which in-store pickup windows a customer may choose.
//
// The shop offers one-hour windows that start on the hour between opening and
// closing. Made-to-order bouquets push the first pickup day out, and orders made
// only of ready stock need a same-day preparation buffer.
package pickup

import (
	"fmt"
	"regexp"
	"strconv"
)

const (
	OperatingStartHour = 9
	OperatingEndHour   = 20
	ReadyBufferHours   = 3
)

var clockPattern = regexp.MustCompile(`^([01][0-9]|2[0-3]):([0-5][0-9])$`)

// GenerateHourlySlots lists "HH:00" for every hour in [startHour, endHour).
func GenerateHourlySlots(startHour, endHour int) []string {
	startHour = clampHour(startHour)
	endHour = clampHour(endHour)
	if startHour >= endHour {
		return []string{}
	}
	slots := make([]string, 0, endHour-startHour)
	for h := startHour; h < endHour; h++ {
		slots = append(slots, formatHour(h))
	}
	return slots
}

// IsOperatingHour reports whether hhmm is an on-the-hour slot inside the default window.
func IsOperatingHour(hhmm string) bool {
	return isOperatingHourIn(hhmm, OperatingStartHour, OperatingEndHour)
}

func isOperatingHourIn(hhmm string, startHour, endHour int) bool {
	hour, minute, err := ParseClock(hhmm)
	if err != nil || minute != 0 {
		return false
	}
	return hour >= startHour && hour < endHour
}

// ParseClock splits a strict 24h "HH:mm" string.
func ParseClock(hhmm string) (hour, minute int, err error) {
	m := clockPattern.FindStringSubmatch(hhmm)
	if m == nil {
		return 0, 0, fmt.Errorf("%w: %q", ErrInvalidTime, hhmm)
	}
	hour, _ = strconv.Atoi(m[1])
	minute, _ = strconv.Atoi(m[2])
	return hour, minute, nil
}

func formatHour(h int) string {
	return fmt.Sprintf("%02d:00", h)
}

func clampHour(h int) int {
	if h < 0 {
		return 0
	}
	if h > 24 {
		return 24
	}
	return h
}
