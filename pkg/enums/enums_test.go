package enums

import "testing"

func TestAvailabilityLeadDays(t *testing.T) {
	tests := []struct {
		value Availability
		days  int
	}{
		{AvailabilityReady, 0},
		{AvailabilityPO2Day, 2},
		{AvailabilityPO5Day, 5},
		{Availability("SOMETHING"), 0},
	}
	for _, tt := range tests {
		if got := tt.value.LeadDays(); got != tt.days {
			t.Fatalf("%s expected %d lead days got %d", tt.value, tt.days, got)
		}
	}
}

func TestAvailabilityForLeadDays(t *testing.T) {
	tests := []struct {
		days int
		want Availability
		ok   bool
	}{
		{-1, AvailabilityReady, true},
		{0, AvailabilityReady, true},
		{1, AvailabilityPO2Day, true},
		{2, AvailabilityPO2Day, true},
		{3, AvailabilityPO5Day, true},
		{5, AvailabilityPO5Day, true},
		{6, "", false},
	}
	for _, tt := range tests {
		got, ok := AvailabilityForLeadDays(tt.days)
		if got != tt.want || ok != tt.ok {
			t.Fatalf("days %d expected (%s,%v) got (%s,%v)", tt.days, tt.want, tt.ok, got, ok)
		}
	}
}

func TestParseEnums(t *testing.T) {
	if _, err := ParseAvailability("PO_2_DAY"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseAvailability("po_2_day"); err == nil {
		t.Fatalf("parse should be exact")
	}
	if _, err := ParseOrderStatus(string(OrderStatusUnknown)); err == nil {
		t.Fatalf("unknown status must not be assignable")
	}
	if !OrderStatusCancelled.IsTerminal() || OrderStatusPaid.IsTerminal() {
		t.Fatalf("unexpected terminal classification")
	}
	if _, err := ParseUserRole("admin"); err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if _, err := ParseDiscountType("bogus"); err == nil {
		t.Fatalf("expected invalid discount type")
	}
	if PaymentStatusUnknown.IsValid() {
		t.Fatalf("unknown payment status should not be valid")
	}
	if got, err := ParsePaymentStatus(" PAID "); err != nil || got != PaymentStatusPaid {
		t.Fatalf("expected paid, got %q err=%v", got, err)
	}
	if _, err := ParsePaymentStatus("unknown"); err == nil {
		t.Fatalf("unknown payment status must not parse")
	}
}
