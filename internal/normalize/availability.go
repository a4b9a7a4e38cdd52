package normalize

import (
	"strconv"
	"strings"
	"unicode"

	"github.com/florista/bouquet-bff/pkg/enums"
)

var availabilityLabelPaths = []string{
	"availability", "availability_type", "availabilityType", "availability_status",
	"stock_type", "preorder_type", "po_type",
	"product.availability", "product.availability_type", "product.stock_type",
}

var leadDaysPaths = []string{
	"lead_time_days", "leadTimeDays", "preorder_days", "po_days", "lead_time",
	"product.lead_time_days", "product.preorder_days", "product.po_days",
}

var preorderFlagPaths = []string{"is_preorder", "isPreorder", "preorder", "product.is_preorder"}

// defaultPreorderLeadDays applies to a line that is flagged pre-order but
// names no lead time: the longest known class.
var defaultPreorderLeadDays = enums.AvailabilityPO5Day.LeadDays()

// availability reads a line's stock class and the days the shop needs before
// pickup. Every signal present contributes and the longest lead wins. The
// class is empty when no signal is present or the lead exceeds every known
// class; leadDays is accurate in both pre-order cases.
func availability(c *Coercer) (a enums.Availability, leadDays int) {
	signal := false
	if label := c.String(availabilityLabelPaths...); label != "" {
		if days, ok := leadDaysFromLabel(label); ok {
			leadDays, signal = days, true
		} else {
			c.report("availability", "unrecognized availability label", label)
		}
	}
	if c.Has(leadDaysPaths...) {
		signal = true
		if days := c.Int(leadDaysPaths...); days > leadDays {
			leadDays = days
		}
	}
	if preorder, ok := c.Bool(preorderFlagPaths...); ok {
		signal = true
		if preorder && leadDays == 0 {
			c.report("is_preorder", "pre-order without lead time, assuming longest class", defaultPreorderLeadDays)
			leadDays = defaultPreorderLeadDays
		}
	}
	if !signal {
		return "", 0
	}
	a, ok := enums.AvailabilityForLeadDays(leadDays)
	if !ok {
		c.report("lead_time_days", "lead time beyond known pre-order classes", leadDays)
	}
	return a, leadDays
}

// leadDaysFromLabel understands the canonical classes, in-stock synonyms and
// free-form pre-order labels. A pre-order label names its lead in the first
// number it contains; without one it gets defaultPreorderLeadDays.
func leadDaysFromLabel(label string) (int, bool) {
	key := strings.ToUpper(strings.TrimSpace(label))
	key = strings.NewReplacer("-", "_", " ", "_").Replace(key)
	if a, err := enums.ParseAvailability(key); err == nil {
		return a.LeadDays(), true
	}
	switch key {
	case "READY_STOCK", "IN_STOCK", "AVAILABLE", "STOCK", "READYSTOCK":
		return 0, true
	}
	if !strings.HasPrefix(key, "PO") && !strings.HasPrefix(key, "PRE") {
		return 0, false
	}
	digits := strings.FieldsFunc(key, func(r rune) bool { return !unicode.IsDigit(r) })
	if len(digits) > 0 {
		if days, err := strconv.Atoi(digits[0]); err == nil && days > 0 {
			return days, true
		}
	}
	return defaultPreorderLeadDays, true
}
