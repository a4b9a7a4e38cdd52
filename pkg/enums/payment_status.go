package enums

import (
	"fmt"
	"strings"
)

// PaymentStatus is the storefront view of a gateway transaction.
type PaymentStatus string

const (
	PaymentStatusPending  PaymentStatus = "pending"
	PaymentStatusPaid     PaymentStatus = "paid"
	PaymentStatusFailed   PaymentStatus = "failed"
	PaymentStatusExpired  PaymentStatus = "expired"
	PaymentStatusRefunded PaymentStatus = "refunded"
	// PaymentStatusUnknown marks a gateway label we could not map. It never
	// parses from input.
	PaymentStatusUnknown PaymentStatus = "unknown"
)

func (p PaymentStatus) String() string { return string(p) }

// IsValid is false for PaymentStatusUnknown and anything outside the set.
func (p PaymentStatus) IsValid() bool {
	switch p {
	case PaymentStatusPending, PaymentStatusPaid, PaymentStatusFailed,
		PaymentStatusExpired, PaymentStatusRefunded:
		return true
	}
	return false
}

// ParsePaymentStatus accepts the canonical names in any case.
func ParsePaymentStatus(value string) (PaymentStatus, error) {
	p := PaymentStatus(strings.ToLower(strings.TrimSpace(value)))
	if !p.IsValid() {
		return "", fmt.Errorf("invalid payment status %q", value)
	}
	return p, nil
}
