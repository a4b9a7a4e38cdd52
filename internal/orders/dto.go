package orders

import (
	"github.com/florista/bouquet-bff/internal/pickup"
	"github.com/florista/bouquet-bff/pkg/enums"
)

// ListQuery filters the customer's order history.
type ListQuery struct {
	Status enums.OrderStatus
	Page   int
	Limit  int
}

// CheckoutInput is the checkout form.
type CheckoutInput struct {
	PickupDate    string `json:"pickup_date" validate:"required"`
	PickupTime    string `json:"pickup_time" validate:"required"`
	RecipientName string `json:"recipient_name" validate:"required,max=120"`
	Phone         string `json:"phone" validate:"required,max=32"`
	CardMessage   string `json:"card_message,omitempty" validate:"omitempty,max=500"`
	Notes         string `json:"notes,omitempty" validate:"omitempty,max=1000"`
	PaymentMethod string `json:"payment_method" validate:"required,max=40"`
	DiscountCode  string `json:"discount_code,omitempty" validate:"omitempty,max=40"`
}

// PickupSlot is a concrete pickup date and hour.
type PickupSlot struct {
	Date string `json:"date"`
	Time string `json:"time"`
}

// PickupOptions is everything the pickup picker needs for one date.
type PickupOptions struct {
	Date                  string              `json:"date"`
	EarliestAvailableDate string              `json:"earliest_available_date"`
	ReadyOnly             bool                `json:"ready_only"`
	LeadDays              int                 `json:"lead_days"`
	SameDayThreshold      string              `json:"same_day_threshold"`
	Slots                 []pickup.SlotOption `json:"slots"`
	FirstAvailable        *PickupSlot         `json:"first_available,omitempty"`
}

// PickupValidation is the verdict for one requested slot.
type PickupValidation struct {
	Date                  string        `json:"date"`
	Time                  string        `json:"time"`
	Selectable            bool          `json:"selectable"`
	Reason                pickup.Reason `json:"disable_reason"`
	EarliestAvailableDate string        `json:"earliest_available_date"`
	SameDayThreshold      string        `json:"same_day_threshold"`
}
