package pickup

import "time"

// Readiness is derived from an order's line items every time it is needed.
type Readiness struct {
	EarliestAvailableDate time.Time `json:"-"`
	ReadyOnly             bool      `json:"ready_only"`
	LeadDays              int       `json:"lead_days"`
}

// ComputeReadiness derives the earliest pickup day from the longest per-line
// lead time in days. Lines with no lead (zero or negative) are ready stock.
func ComputeReadiness(now time.Time, leadDays []int) Readiness {
	maxLead := 0
	for _, lead := range leadDays {
		maxLead = max(maxLead, lead)
	}
	y, m, d := now.Date()
	return Readiness{
		EarliestAvailableDate: time.Date(y, m, d+maxLead, 0, 0, 0, 0, now.Location()),
		ReadyOnly:             maxLead == 0,
		LeadDays:              maxLead,
	}
}
