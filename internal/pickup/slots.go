package pickup

import (
	"strings"
	"time"
)

// Slot is one candidate pickup window.
type Slot struct {
	Date time.Time
	Time string
}

// ParseSlot fails only on the date. The time is kept trimmed but unchecked:
// an unusable time is a disable reason, not a malformed request.
func ParseSlot(date, hhmm string, loc *time.Location) (Slot, error) {
	d, err := ParseDate(date, loc)
	if err != nil {
		return Slot{}, err
	}
	return Slot{Date: d, Time: strings.TrimSpace(hhmm)}, nil
}

// Check evaluates the slot for an order with the given readiness.
func (s Slot) Check(now time.Time, r Readiness, bufferHours int) Reason {
	return DisableReason(Input{
		SelectedDate:          s.Date,
		Now:                   now,
		EarliestAvailableDate: r.EarliestAvailableDate,
		StartTime:             s.Time,
		ReadyOnly:             r.ReadyOnly,
		BufferHours:           bufferHours,
	})
}

// SlotOption is a slot as shown in the pickup picker.
type SlotOption struct {
	Time      string `json:"time"`
	Available bool   `json:"available"`
	Reason    Reason `json:"disable_reason"`
}

// Options evaluates every operating hour on date.
func Options(date, now time.Time, r Readiness, bufferHours int) []SlotOption {
	hours := GenerateHourlySlots(OperatingStartHour, OperatingEndHour)
	out := make([]SlotOption, 0, len(hours))
	for _, hhmm := range hours {
		reason := Slot{Date: date, Time: hhmm}.Check(now, r, bufferHours)
		out = append(out, SlotOption{Time: hhmm, Available: reason.Selectable(), Reason: reason})
	}
	return out
}

// FirstAvailable returns the earliest selectable slot on or after from, looking
// ahead at most days calendar days.
func FirstAvailable(from, now time.Time, r Readiness, bufferHours, days int) (Slot, bool) {
	day := startOfDay(from)
	for i := 0; i <= days; i++ {
		date := day.AddDate(0, 0, i)
		for _, opt := range Options(date, now, r, bufferHours) {
			if opt.Available {
				return Slot{Date: date, Time: opt.Time}, true
			}
		}
	}
	return Slot{}, false
}
