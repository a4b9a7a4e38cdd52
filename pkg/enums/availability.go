package enums

import "fmt"

// Availability is the fulfilment class of a bouquet: in stock or made to order.
type Availability string

const (
	AvailabilityReady  Availability = "READY"
	AvailabilityPO2Day Availability = "PO_2_DAY"
	AvailabilityPO5Day Availability = "PO_5_DAY"
)

var validAvailabilities = []Availability{
	AvailabilityReady,
	AvailabilityPO2Day,
	AvailabilityPO5Day,
}

var leadDaysByAvailability = map[Availability]int{
	AvailabilityReady:  0,
	AvailabilityPO2Day: 2,
	AvailabilityPO5Day: 5,
}

// String implements fmt.Stringer.
func (a Availability) String() string {
	return string(a)
}

// IsValid reports whether the value is a known Availability.
func (a Availability) IsValid() bool {
	for _, candidate := range validAvailabilities {
		if candidate == a {
			return true
		}
	}
	return false
}

// LeadDays is the number of days the shop needs before the item can be picked up.
// Unknown values count as ready.
func (a Availability) LeadDays() int {
	return leadDaysByAvailability[a]
}

// AvailabilityForLeadDays buckets a raw lead time into the closest class that covers it.
func AvailabilityForLeadDays(days int) (Availability, bool) {
	switch {
	case days <= 0:
		return AvailabilityReady, true
	case days <= 2:
		return AvailabilityPO2Day, true
	case days <= 5:
		return AvailabilityPO5Day, true
	}
	return "", false
}

// ParseAvailability converts raw input into an Availability.
func ParseAvailability(value string) (Availability, error) {
	for _, candidate := range validAvailabilities {
		if string(candidate) == value {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid availability %q", value)
}
