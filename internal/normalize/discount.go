package normalize

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"github.com/florista/bouquet-bff/pkg/enums"
)

// Discount is a promotion that applies at checkout.
type Discount struct {
	ID          string             `json:"id"`
	Code        string             `json:"code"`
	Name        string             `json:"name"`
	Type        enums.DiscountType `json:"type"`
	Value       decimal.Decimal    `json:"value"`
	MinPurchase decimal.Decimal    `json:"min_purchase"`
	MaxDiscount decimal.Decimal    `json:"max_discount"`
	StartsAt    *time.Time         `json:"starts_at,omitempty"`
	EndsAt      *time.Time         `json:"ends_at,omitempty"`
	Active      bool               `json:"active"`
}

// ActiveAt reports whether the discount is enabled and inside its date window.
func (d Discount) ActiveAt(now time.Time) bool {
	if !d.Active {
		return false
	}
	if d.StartsAt != nil && now.Before(*d.StartsAt) {
		return false
	}
	if d.EndsAt != nil && now.After(*d.EndsAt) {
		return false
	}
	return true
}

var discountFields = struct {
	id, code, name, kind, value, percent, minPurchase, maxDiscount, startsAt, endsAt, active []string
}{
	id:          []string{"id", "discount_id", "discountId"},
	code:        []string{"code", "voucher_code", "promo_code"},
	name:        []string{"name", "title", "description"},
	kind:        []string{"type", "discount_type", "discountType", "kind"},
	value:       []string{"value", "amount", "discount_value", "discountValue"},
	percent:     []string{"percentage", "percent", "discount_percent"},
	minPurchase: []string{"min_purchase", "minPurchase", "minimum_purchase", "min_order"},
	maxDiscount: []string{"max_discount", "maxDiscount", "maximum_discount"},
	startsAt:    []string{"start_date", "starts_at", "startDate", "valid_from"},
	endsAt:      []string{"end_date", "ends_at", "endDate", "valid_until", "expires_at"},
	active:      []string{"is_active", "isActive", "active", "status"},
}

// NormalizeDiscount maps one discount.
func NormalizeDiscount(raw gjson.Result) (Discount, Issues) {
	c := NewCoercer("discount", Unwrap(raw))
	d := discount(c)
	return d, c.Issues()
}

// NormalizeDiscounts maps a discount list response.
func NormalizeDiscounts(raw gjson.Result) (List[Discount], Issues) {
	return collect(raw, []string{"discounts", "promotions"}, func(elem gjson.Result) (Discount, Issues) {
		c := NewCoercer("discount", elem)
		return discount(c), c.Issues()
	})
}

func discount(c *Coercer) Discount {
	f := discountFields
	d := Discount{
		ID:          c.String(f.id...),
		Code:        c.String(f.code...),
		Name:        c.String(f.name...),
		Value:       c.Money(f.value...),
		MinPurchase: c.Money(f.minPurchase...),
		MaxDiscount: c.Money(f.maxDiscount...),
		StartsAt:    c.Time(f.startsAt...),
		EndsAt:      c.Time(f.endsAt...),
		Active:      true,
	}

	kind := strings.ToLower(c.String(f.kind...))
	switch {
	case strings.HasPrefix(kind, "percent"):
		d.Type = enums.DiscountTypePercentage
	case kind == "fixed" || kind == "nominal" || kind == "amount" || kind == "flat":
		d.Type = enums.DiscountTypeFixed
	case c.Has(f.percent...):
		d.Type = enums.DiscountTypePercentage
		d.Value = c.Money(f.percent...)
	default:
		if kind != "" {
			c.report("type", "unrecognized discount type", kind)
		}
		d.Type = enums.DiscountTypeFixed
	}
	if d.Value.IsNegative() {
		d.Value = decimal.Zero
	}
	if d.Type == enums.DiscountTypePercentage && d.Value.GreaterThan(decimal.NewFromInt(100)) {
		c.report("value", "percentage capped at 100", d.Value.String())
		d.Value = decimal.NewFromInt(100)
	}
	if active, ok := c.Bool(f.active...); ok {
		d.Active = active
	}
	return d
}
