package normalize

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"github.com/florista/bouquet-bff/pkg/enums"
)

// Payment is a payment attempt for an order.
type Payment struct {
	ID          string              `json:"id"`
	OrderID     string              `json:"order_id"`
	Status      enums.PaymentStatus `json:"status"`
	Amount      decimal.Decimal     `json:"amount"`
	Method      string              `json:"method"`
	RedirectURL string              `json:"redirect_url,omitempty"`
	Token       string              `json:"token,omitempty"`
	ExpiresAt   *time.Time          `json:"expires_at,omitempty"`
	PaidAt      *time.Time          `json:"paid_at,omitempty"`
}

var paymentFields = struct {
	id, orderID, status, amount, method, redirect, token, expiresAt, paidAt []string
}{
	id:        []string{"id", "payment_id", "paymentId", "transaction_id"},
	orderID:   []string{"order_id", "orderId", "order.id"},
	status:    []string{"status", "payment_status", "transaction_status", "transactionStatus"},
	amount:    []string{"amount", "gross_amount", "total", "total_amount"},
	method:    []string{"method", "payment_method", "paymentMethod", "payment_type"},
	redirect:  []string{"redirect_url", "redirectUrl", "payment_url", "paymentUrl", "checkout_url", "url"},
	token:     []string{"token", "snap_token", "snapToken", "payment_token"},
	expiresAt: []string{"expires_at", "expiresAt", "expiry_time", "expired_at"},
	paidAt:    []string{"paid_at", "paidAt", "settlement_time"},
}

var paymentStatusAliases = map[string]enums.PaymentStatus{
	"pending":    enums.PaymentStatusPending,
	"unpaid":     enums.PaymentStatusPending,
	"waiting":    enums.PaymentStatusPending,
	"authorize":  enums.PaymentStatusPending,
	"paid":       enums.PaymentStatusPaid,
	"success":    enums.PaymentStatusPaid,
	"succeeded":  enums.PaymentStatusPaid,
	"settlement": enums.PaymentStatusPaid,
	"capture":    enums.PaymentStatusPaid,
	"failed":     enums.PaymentStatusFailed,
	"failure":    enums.PaymentStatusFailed,
	"deny":       enums.PaymentStatusFailed,
	"denied":     enums.PaymentStatusFailed,
	"cancel":     enums.PaymentStatusFailed,
	"cancelled":  enums.PaymentStatusFailed,
	"canceled":   enums.PaymentStatusFailed,
	"expire":     enums.PaymentStatusExpired,
	"expired":    enums.PaymentStatusExpired,
	"refund":     enums.PaymentStatusRefunded,
	"refunded":   enums.PaymentStatusRefunded,
}

// PaymentStatusFromLabel maps a payment gateway status onto the storefront statuses.
func PaymentStatusFromLabel(label string) enums.PaymentStatus {
	key := strings.ToLower(strings.TrimSpace(label))
	if status, ok := paymentStatusAliases[key]; ok {
		return status
	}
	return enums.PaymentStatusUnknown
}

// NormalizePayment maps one payment.
func NormalizePayment(raw gjson.Result) (Payment, Issues) {
	c := NewCoercer("payment", Unwrap(raw))
	if nested := c.Object("payment", "transaction"); !nested.Empty() {
		c = nested
	}
	f := paymentFields
	p := Payment{
		ID:          c.String(f.id...),
		OrderID:     c.String(f.orderID...),
		Amount:      c.Money(f.amount...),
		Method:      c.String(f.method...),
		RedirectURL: c.String(f.redirect...),
		Token:       c.String(f.token...),
		ExpiresAt:   c.Time(f.expiresAt...),
		PaidAt:      c.Time(f.paidAt...),
	}
	rawStatus := c.String(f.status...)
	p.Status = PaymentStatusFromLabel(rawStatus)
	if p.Status == enums.PaymentStatusUnknown && rawStatus != "" {
		c.report("status", "unrecognized payment status", rawStatus)
	}
	if p.Amount.IsNegative() {
		p.Amount = decimal.Zero
	}
	return p, c.Issues()
}
