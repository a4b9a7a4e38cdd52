package pickup

import (
	"encoding/json"
	"time"
)

// Reason explains why a pickup slot cannot be selected. The zero value means selectable.
type Reason string

const (
	ReasonNone                  Reason = ""
	ReasonBeforeEarliestDate    Reason = "before_earliest_date"
	ReasonOutsideOperatingHours Reason = "outside_operating_hours"
	ReasonInsufficientBuffer    Reason = "insufficient_buffer"
)

// Selectable reports whether no rule disabled the slot.
func (r Reason) Selectable() bool {
	return r == ReasonNone
}

// MarshalJSON renders a selectable slot's reason as null.
func (r Reason) MarshalJSON() ([]byte, error) {
	if r == ReasonNone {
		return []byte("null"), nil
	}
	return json.Marshal(string(r))
}

// Input is everything DisableReason looks at.
type Input struct {
	SelectedDate          time.Time
	Now                   time.Time
	EarliestAvailableDate time.Time
	StartTime             string
	ReadyOnly             bool
	// BufferHours <= 0 selects ReadyBufferHours.
	BufferHours int
}

// DisableReason applies the pickup rules in order and returns the first that fails.
func DisableReason(in Input) Reason {
	if compareDates(in.SelectedDate, in.EarliestAvailableDate) < 0 {
		return ReasonBeforeEarliestDate
	}
	if !IsOperatingHour(in.StartTime) {
		return ReasonOutsideOperatingHours
	}
	if in.ReadyOnly && sameDate(in.SelectedDate, in.Now) {
		hour, _, _ := ParseClock(in.StartTime)
		threshold := bufferThreshold(in.Now, in.BufferHours)
		if !sameDate(threshold, in.Now) || hour < threshold.Hour() {
			return ReasonInsufficientBuffer
		}
	}
	return ReasonNone
}

// SameDayBufferThreshold returns the earliest "HH:00" a ready-only order can be
// picked up today: now plus the buffer, rounded up to a whole hour.
// When the buffer runs past midnight the hour wraps; DisableReason treats that
// as no same-day slot at all.
func SameDayBufferThreshold(now time.Time, bufferHours int) string {
	return formatHour(bufferThreshold(now, bufferHours).Hour())
}

func bufferThreshold(now time.Time, bufferHours int) time.Time {
	if bufferHours <= 0 {
		bufferHours = ReadyBufferHours
	}
	t := now.Add(time.Duration(bufferHours) * time.Hour)
	y, m, d := t.Date()
	floor := time.Date(y, m, d, t.Hour(), 0, 0, 0, t.Location())
	if t.After(floor) {
		return time.Date(y, m, d, t.Hour()+1, 0, 0, 0, t.Location())
	}
	return floor
}
