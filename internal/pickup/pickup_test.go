package pickup

import (
	"encoding/json"
	"errors"
	"fmt"
	"testing"
	"time"

	"github.com/florista/bouquet-bff/pkg/enums"
)

func at(t *testing.T, value string) time.Time {
	t.Helper()
	parsed, err := time.ParseInLocation("2006-01-02 15:04", value, time.UTC)
	if err != nil {
		t.Fatalf("parse %q: %v", value, err)
	}
	return parsed
}

func TestIsOperatingHour(t *testing.T) {
	for h := OperatingStartHour; h < OperatingEndHour; h++ {
		hhmm := fmt.Sprintf("%02d:00", h)
		if !IsOperatingHour(hhmm) {
			t.Fatalf("expected %s to be an operating hour", hhmm)
		}
		for _, minute := range []string{"01", "15", "30", "59"} {
			if IsOperatingHour(fmt.Sprintf("%02d:%s", h, minute)) {
				t.Fatalf("expected %02d:%s to be rejected", h, minute)
			}
		}
	}

	for _, hhmm := range []string{"08:00", "20:00", "23:00", "00:00", "9:00", "24:00", "", "noon", "10:00:00"} {
		if IsOperatingHour(hhmm) {
			t.Fatalf("expected %q to be rejected", hhmm)
		}
	}
}

func TestGenerateHourlySlots(t *testing.T) {
	slots := GenerateHourlySlots(9, 20)
	if len(slots) != 11 {
		t.Fatalf("expected 11 slots got %d", len(slots))
	}
	if slots[0] != "09:00" || slots[10] != "19:00" {
		t.Fatalf("unexpected bounds %v", slots)
	}
	seen := map[string]bool{}
	for i, s := range slots {
		if seen[s] {
			t.Fatalf("duplicate slot %s", s)
		}
		seen[s] = true
		if i > 0 && slots[i-1] >= s {
			t.Fatalf("slots not ascending at %d: %v", i, slots)
		}
	}

	if got := GenerateHourlySlots(20, 9); len(got) != 0 {
		t.Fatalf("expected empty for inverted range, got %v", got)
	}
	if got := GenerateHourlySlots(-3, 2); len(got) != 2 || got[0] != "00:00" {
		t.Fatalf("expected clamped range, got %v", got)
	}
}

func TestSameDayBufferThreshold(t *testing.T) {
	tests := []struct {
		now    string
		buffer int
		want   string
	}{
		{"2025-01-01 14:20", 3, "18:00"},
		{"2025-01-01 14:00", 3, "17:00"},
		{"2025-01-01 14:00", 0, "17:00"},
		{"2025-01-01 09:59", 1, "11:00"},
		{"2025-01-01 22:30", 3, "02:00"},
	}
	for _, tt := range tests {
		if got := SameDayBufferThreshold(at(t, tt.now), tt.buffer); got != tt.want {
			t.Fatalf("now=%s buffer=%d expected %s got %s", tt.now, tt.buffer, tt.want, got)
		}
	}

	withSeconds := at(t, "2025-01-01 14:00").Add(time.Second)
	if got := SameDayBufferThreshold(withSeconds, 3); got != "18:00" {
		t.Fatalf("partial minute should round up, got %s", got)
	}
}

func TestDisableReason(t *testing.T) {
	now := at(t, "2025-01-01 14:00")
	today := at(t, "2025-01-01 00:00")

	tests := []struct {
		name string
		in   Input
		want Reason
	}{
		{
			name: "before earliest date wins over everything",
			in: Input{
				SelectedDate:          at(t, "2025-03-09 00:00"),
				Now:                   now,
				EarliestAvailableDate: at(t, "2025-03-10 00:00"),
				StartTime:             "03:17",
				ReadyOnly:             true,
			},
			want: ReasonBeforeEarliestDate,
		},
		{
			name: "earliest date compared by calendar day only",
			in: Input{
				SelectedDate:          at(t, "2025-03-10 00:00"),
				Now:                   now,
				EarliestAvailableDate: at(t, "2025-03-10 23:59"),
				StartTime:             "10:00",
			},
			want: ReasonNone,
		},
		{
			name: "non hourly start time",
			in:   Input{SelectedDate: today, Now: now, EarliestAvailableDate: today, StartTime: "18:30"},
			want: ReasonOutsideOperatingHours,
		},
		{
			name: "before opening",
			in:   Input{SelectedDate: today, Now: now, EarliestAvailableDate: today, StartTime: "08:00"},
			want: ReasonOutsideOperatingHours,
		},
		{
			name: "unparseable start time",
			in:   Input{SelectedDate: today, Now: now, EarliestAvailableDate: today, StartTime: "later"},
			want: ReasonOutsideOperatingHours,
		},
		{
			name: "ready only inside buffer",
			in:   Input{SelectedDate: today, Now: now, EarliestAvailableDate: today, StartTime: "16:00", ReadyOnly: true, BufferHours: 3},
			want: ReasonInsufficientBuffer,
		},
		{
			name: "ready only at threshold",
			in:   Input{SelectedDate: today, Now: now, EarliestAvailableDate: today, StartTime: "17:00", ReadyOnly: true, BufferHours: 3},
			want: ReasonNone,
		},
		{
			name: "buffer ignored for pre-order",
			in:   Input{SelectedDate: today, Now: now, EarliestAvailableDate: today, StartTime: "16:00", BufferHours: 3},
			want: ReasonNone,
		},
		{
			name: "buffer ignored on later days",
			in:   Input{SelectedDate: at(t, "2025-01-02 00:00"), Now: now, EarliestAvailableDate: today, StartTime: "09:00", ReadyOnly: true},
			want: ReasonNone,
		},
		{
			name: "buffer past midnight closes today",
			in:   Input{SelectedDate: today, Now: at(t, "2025-01-01 22:30"), EarliestAvailableDate: today, StartTime: "19:00", ReadyOnly: true},
			want: ReasonInsufficientBuffer,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			first := DisableReason(tt.in)
			if first != tt.want {
				t.Fatalf("expected %q got %q", tt.want, first)
			}
			if again := DisableReason(tt.in); again != first {
				t.Fatalf("expected identical result on repeat, got %q then %q", first, again)
			}
		})
	}
}

func TestBeforeEarliestDateIgnoresTimeAndFlag(t *testing.T) {
	selected := at(t, "2025-03-09 00:00")
	earliest := at(t, "2025-03-10 00:00")
	for _, hhmm := range append(GenerateHourlySlots(0, 24), "junk", "12:30") {
		for _, ready := range []bool{true, false} {
			got := DisableReason(Input{SelectedDate: selected, Now: selected, EarliestAvailableDate: earliest, StartTime: hhmm, ReadyOnly: ready})
			if got != ReasonBeforeEarliestDate {
				t.Fatalf("time=%s ready=%v expected before_earliest_date got %q", hhmm, ready, got)
			}
		}
	}
}

func TestParseDate(t *testing.T) {
	loc, err := time.LoadLocation("Asia/Jakarta")
	if err != nil {
		t.Skipf("timezone data unavailable: %v", err)
	}

	d, err := ParseDate("2025-03-10", loc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if d.Location() != loc || FormatDate(d) != "2025-03-10" {
		t.Fatalf("unexpected date %v", d)
	}

	d, err = ParseDate("2025-03-09T20:00:00Z", loc)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if FormatDate(d) != "2025-03-10" || d.Hour() != 0 {
		t.Fatalf("timestamp should land on the shop's calendar day, got %v", d)
	}

	for _, raw := range []string{"", "tomorrow", "2025-13-01", "10/03/2025"} {
		if _, err := ParseDate(raw, loc); !errors.Is(err, ErrInvalidDate) {
			t.Fatalf("expected ErrInvalidDate for %q, got %v", raw, err)
		}
	}
}

func TestParseSlot(t *testing.T) {
	if _, err := ParseSlot("2025-02-30", "10:00", time.UTC); !errors.Is(err, ErrInvalidDate) {
		t.Fatalf("expected ErrInvalidDate, got %v", err)
	}
	slot, err := ParseSlot("2025-03-10", " 9am ", time.UTC)
	if err != nil {
		t.Fatalf("a bad time is left for DisableReason: %v", err)
	}
	if slot.Time != "9am" {
		t.Fatalf("unexpected slot %+v", slot)
	}
	now := at(t, "2025-03-10 08:00")
	if reason := slot.Check(now, ComputeReadiness(now, nil), 0); reason != ReasonOutsideOperatingHours {
		t.Fatalf("expected outside_operating_hours, got %q", reason)
	}
}

func TestComputeReadiness(t *testing.T) {
	now := at(t, "2025-01-30 15:45")

	r := ComputeReadiness(now, []int{enums.AvailabilityReady.LeadDays(), enums.AvailabilityPO5Day.LeadDays(), enums.AvailabilityPO2Day.LeadDays()})
	if r.ReadyOnly || r.LeadDays != 5 {
		t.Fatalf("unexpected readiness %+v", r)
	}
	if FormatDate(r.EarliestAvailableDate) != "2025-02-04" {
		t.Fatalf("unexpected earliest date %s", FormatDate(r.EarliestAvailableDate))
	}

	r = ComputeReadiness(now, []int{0, -1})
	if !r.ReadyOnly || FormatDate(r.EarliestAvailableDate) != "2025-01-30" {
		t.Fatalf("expected ready-only today, got %+v", r)
	}
}

func TestLongLeadBlocksTodayEvenWithReadyLines(t *testing.T) {
	now := at(t, "2025-01-01 09:00")
	r := ComputeReadiness(now, []int{0, 7})
	if r.ReadyOnly || r.LeadDays != 7 {
		t.Fatalf("a seven-day line must not be ready stock: %+v", r)
	}
	if FormatDate(r.EarliestAvailableDate) != "2025-01-08" {
		t.Fatalf("unexpected earliest date %s", FormatDate(r.EarliestAvailableDate))
	}

	reason := DisableReason(Input{
		SelectedDate:          now,
		Now:                   now,
		EarliestAvailableDate: r.EarliestAvailableDate,
		StartTime:             "12:00",
		ReadyOnly:             r.ReadyOnly,
	})
	if reason != ReasonBeforeEarliestDate {
		t.Fatalf("expected before_earliest_date, got %q", reason)
	}
}

func TestOptionsAndFirstAvailable(t *testing.T) {
	now := at(t, "2025-01-01 18:30")
	r := ComputeReadiness(now, []int{enums.AvailabilityReady.LeadDays()})

	opts := Options(now, now, r, 0)
	if len(opts) != 11 {
		t.Fatalf("expected 11 options got %d", len(opts))
	}
	for _, opt := range opts {
		if opt.Available || opt.Reason != ReasonInsufficientBuffer {
			t.Fatalf("expected every slot today to need more buffer, got %+v", opt)
		}
	}

	slot, ok := FirstAvailable(now, now, r, 0, 7)
	if !ok {
		t.Fatal("expected a slot within a week")
	}
	if FormatDate(slot.Date) != "2025-01-02" || slot.Time != "09:00" {
		t.Fatalf("unexpected first slot %s %s", FormatDate(slot.Date), slot.Time)
	}

	preorder := ComputeReadiness(now, []int{enums.AvailabilityPO2Day.LeadDays()})
	slot, ok = FirstAvailable(now, now, preorder, 0, 7)
	if !ok || FormatDate(slot.Date) != "2025-01-03" || slot.Time != "09:00" {
		t.Fatalf("unexpected pre-order slot %+v ok=%v", slot, ok)
	}
}

func TestReasonJSON(t *testing.T) {
	payload, err := json.Marshal([]SlotOption{
		{Time: "09:00", Available: true},
		{Time: "10:00", Reason: ReasonInsufficientBuffer},
	})
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	want := `[{"time":"09:00","available":true,"disable_reason":null},{"time":"10:00","available":false,"disable_reason":"insufficient_buffer"}]`
	if string(payload) != want {
		t.Fatalf("unexpected json %s", payload)
	}
}
