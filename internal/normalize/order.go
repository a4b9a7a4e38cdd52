package normalize

import (
	"strings"
	"time"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"github.com/florista/bouquet-bff/pkg/enums"
)

// Order is a placed order as shown in order history and the admin dashboard.
type Order struct {
	ID            string              `json:"id"`
	Code          string              `json:"code"`
	Status        enums.OrderStatus   `json:"status"`
	RawStatus     string              `json:"raw_status,omitempty"`
	PaymentStatus enums.PaymentStatus `json:"payment_status"`
	Items         []CartItem          `json:"items"`
	Subtotal      decimal.Decimal     `json:"subtotal"`
	Discount      decimal.Decimal     `json:"discount"`
	Total         decimal.Decimal     `json:"total"`
	PickupDate    string              `json:"pickup_date"`
	PickupTime    string              `json:"pickup_time"`
	RecipientName string              `json:"recipient_name"`
	Phone         string              `json:"phone"`
	CardMessage   string              `json:"card_message,omitempty"`
	Notes         string              `json:"notes,omitempty"`
	CustomerID    string              `json:"customer_id,omitempty"`
	CustomerName  string              `json:"customer_name,omitempty"`
	CreatedAt     *time.Time          `json:"created_at,omitempty"`
}

var orderFields = struct {
	id, code, status, paymentStatus, items, subtotal, discount, total,
	pickupDate, pickupTime, recipient, phone, cardMessage, notes, customerID, customerName, createdAt []string
}{
	id:            []string{"id", "order_id", "orderId"},
	code:          []string{"code", "order_code", "order_number", "orderNumber", "invoice", "invoice_number"},
	status:        []string{"status", "order_status", "orderStatus", "state"},
	paymentStatus: []string{"payment_status", "paymentStatus", "payment.status", "payments.0.status"},
	items:         []string{"items", "order_items", "orderItems", "details", "order_details", "products"},
	subtotal:      []string{"subtotal", "sub_total", "subTotal"},
	discount:      []string{"discount", "discount_amount", "discountAmount", "discount_total"},
	total:         []string{"total", "total_price", "totalPrice", "grand_total", "total_amount", "amount"},
	pickupDate:    []string{"pickup_date", "pickupDate", "pickup.date"},
	pickupTime:    []string{"pickup_time", "pickupTime", "pickup.time", "pickup_start_time"},
	recipient:     []string{"recipient_name", "recipientName", "recipient", "receiver_name"},
	phone:         []string{"phone", "recipient_phone", "phone_number", "user.phone"},
	cardMessage:   []string{"card_message", "cardMessage", "greeting", "message"},
	notes:         []string{"notes", "note", "remarks"},
	customerID:    []string{"user_id", "userId", "customer_id", "user.id", "customer.id"},
	customerName:  []string{"customer_name", "user.name", "customer.name"},
	createdAt:     []string{"created_at", "createdAt", "order_date", "date"},
}

var orderStatusAliases = map[string]enums.OrderStatus{
	"pending":          enums.OrderStatusPendingPayment,
	"pending_payment":  enums.OrderStatusPendingPayment,
	"unpaid":           enums.OrderStatusPendingPayment,
	"waiting_payment":  enums.OrderStatusPendingPayment,
	"awaiting_payment": enums.OrderStatusPendingPayment,
	"paid":             enums.OrderStatusPaid,
	"confirmed":        enums.OrderStatusPaid,
	"settlement":       enums.OrderStatusPaid,
	"processing":       enums.OrderStatusProcessing,
	"process":          enums.OrderStatusProcessing,
	"in_progress":      enums.OrderStatusProcessing,
	"preparing":        enums.OrderStatusProcessing,
	"ready":            enums.OrderStatusReady,
	"ready_for_pickup": enums.OrderStatusReady,
	"ready_to_pickup":  enums.OrderStatusReady,
	"completed":        enums.OrderStatusCompleted,
	"complete":         enums.OrderStatusCompleted,
	"done":             enums.OrderStatusCompleted,
	"picked_up":        enums.OrderStatusCompleted,
	"finished":         enums.OrderStatusCompleted,
	"cancelled":        enums.OrderStatusCancelled,
	"canceled":         enums.OrderStatusCancelled,
	"cancel":           enums.OrderStatusCancelled,
	"expired":          enums.OrderStatusCancelled,
	"rejected":         enums.OrderStatusCancelled,
}

// OrderStatusFromLabel maps a backend status label onto the storefront statuses.
func OrderStatusFromLabel(label string) enums.OrderStatus {
	key := strings.ToLower(strings.TrimSpace(label))
	key = strings.NewReplacer("-", "_", " ", "_").Replace(key)
	if status, ok := orderStatusAliases[key]; ok {
		return status
	}
	return enums.OrderStatusUnknown
}

// NormalizeOrder maps one order with its lines, bare or wrapped as {"order": ...}.
func NormalizeOrder(raw gjson.Result) (Order, Issues) {
	c := NewCoercer("order", Unwrap(raw))
	if nested := c.Object("order"); !nested.Empty() {
		c = nested
	}
	return order(c), c.Issues()
}

// NormalizeOrders maps an order list response.
func NormalizeOrders(raw gjson.Result) (List[Order], Issues) {
	return collect(raw, []string{"orders"}, func(elem gjson.Result) (Order, Issues) {
		c := NewCoercer("order", elem)
		return order(c), c.Issues()
	})
}

func order(c *Coercer) Order {
	f := orderFields
	o := Order{
		ID:            c.String(f.id...),
		Code:          c.String(f.code...),
		RawStatus:     c.String(f.status...),
		Discount:      c.Money(f.discount...),
		PickupDate:    c.String(f.pickupDate...),
		PickupTime:    c.String(f.pickupTime...),
		RecipientName: c.String(f.recipient...),
		Phone:         c.String(f.phone...),
		CardMessage:   c.String(f.cardMessage...),
		Notes:         c.String(f.notes...),
		CustomerID:    c.String(f.customerID...),
		CustomerName:  c.String(f.customerName...),
		CreatedAt:     c.Time(f.createdAt...),
		Subtotal:      decimal.Zero,
	}
	if len(o.PickupDate) > len("2006-01-02") {
		o.PickupDate = o.PickupDate[:len("2006-01-02")]
	}

	o.Status = OrderStatusFromLabel(o.RawStatus)
	if o.Status == enums.OrderStatusUnknown && o.RawStatus != "" {
		c.report("status", "unrecognized order status", o.RawStatus)
	}
	o.PaymentStatus = PaymentStatusFromLabel(c.String(f.paymentStatus...))

	elems := c.List(f.items...)
	o.Items = make([]CartItem, 0, len(elems))
	for _, elem := range elems {
		item := cartItem(c.child("order_item", elem))
		o.Items = append(o.Items, item)
		o.Subtotal = o.Subtotal.Add(item.LineTotal())
	}
	if c.Has(f.subtotal...) {
		o.Subtotal = c.Money(f.subtotal...)
	}

	o.Total = c.Money(f.total...)
	if !c.Has(f.total...) {
		o.Total = o.Subtotal.Sub(o.Discount)
	}
	if o.Total.IsNegative() {
		o.Total = decimal.Zero
	}
	return o
}
