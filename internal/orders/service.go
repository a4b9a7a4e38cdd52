// Package orders covers the customer order flow: pickup slot evaluation,
// checkout and order history.
package orders

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"net/url"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/florista/bouquet-bff/internal/backend"
	"github.com/florista/bouquet-bff/internal/normalize"
	"github.com/florista/bouquet-bff/internal/pickup"
	pkgerrors "github.com/florista/bouquet-bff/pkg/errors"
	"github.com/florista/bouquet-bff/pkg/logger"
)

// firstAvailableHorizon bounds the look-ahead for the next selectable slot.
const firstAvailableHorizon = 14

// Service exposes the customer order operations.
type Service interface {
	List(ctx context.Context, query ListQuery, creds backend.Credentials) (normalize.List[normalize.Order], error)
	Get(ctx context.Context, id string, creds backend.Credentials) (*normalize.Order, error)
	Cancel(ctx context.Context, id string, creds backend.Credentials) (*normalize.Order, error)
	PickupOptions(ctx context.Context, date string, creds backend.Credentials) (*PickupOptions, error)
	ValidatePickup(ctx context.Context, date, hhmm string, creds backend.Credentials) (*PickupValidation, error)
	Checkout(ctx context.Context, input CheckoutInput, creds backend.Credentials) (*normalize.Order, error)
}

type cartReader interface {
	Get(ctx context.Context, creds backend.Credentials) (*normalize.Cart, error)
}

// ServiceParams bundles the dependencies required to build an orders service.
type ServiceParams struct {
	Backend backend.Caller
	Cart    cartReader
	// Location is the shop timezone; pickup dates are compared in it.
	Location *time.Location
	Logger   *logger.Logger
	Now      func() time.Time
}

type service struct {
	backend backend.Caller
	cart    cartReader
	loc     *time.Location
	logg    *logger.Logger
	now     func() time.Time
}

// NewService constructs the orders service.
func NewService(params ServiceParams) (Service, error) {
	if params.Backend == nil {
		return nil, fmt.Errorf("backend caller is required")
	}
	if params.Cart == nil {
		return nil, fmt.Errorf("cart reader is required")
	}
	loc := params.Location
	if loc == nil {
		loc = time.UTC
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{backend: params.Backend, cart: params.Cart, loc: loc, logg: logg, now: now}, nil
}

func (s *service) List(ctx context.Context, query ListQuery, creds backend.Credentials) (normalize.List[normalize.Order], error) {
	values := url.Values{}
	if query.Status != "" {
		if !query.Status.IsValid() {
			return normalize.List[normalize.Order]{}, pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("invalid status %q", query.Status))
		}
		values.Set("status", query.Status.String())
	}
	if query.Page > 0 {
		values.Set("page", strconv.Itoa(query.Page))
	}
	if query.Limit > 0 {
		values.Set("limit", strconv.Itoa(min(query.Limit, 100)))
	}

	resp, err := s.backend.Do(ctx, backend.Request{
		Service: backend.ServiceOrder,
		Path:    "/orders",
		Query:   values,
	}.As(creds))
	if err != nil {
		return normalize.List[normalize.Order]{}, err
	}
	list, issues := normalize.NormalizeOrders(resp.Decode())
	normalize.Report(ctx, s.logg, "orders.list", issues)

	// Upstream filters on its own labels; keep only what matches ours.
	if query.Status != "" {
		filtered := list.Items[:0]
		for _, o := range list.Items {
			if o.Status == query.Status {
				filtered = append(filtered, o)
			}
		}
		if len(filtered) != len(list.Items) {
			list.Total = len(filtered)
		}
		list.Items = filtered
	}
	return list, nil
}

func (s *service) Get(ctx context.Context, id string, creds backend.Credentials) (*normalize.Order, error) {
	path, err := orderPath(id)
	if err != nil {
		return nil, err
	}
	return s.orderCall(ctx, backend.Request{Service: backend.ServiceOrder, Path: path}.As(creds), "orders.get")
}

// Cancel asks the order service to cancel. Orders already in a terminal state
// are rejected before the cancel call.
func (s *service) Cancel(ctx context.Context, id string, creds backend.Credentials) (*normalize.Order, error) {
	current, err := s.Get(ctx, id, creds)
	if err != nil {
		return nil, err
	}
	if current.Status.IsTerminal() {
		return nil, pkgerrors.New(pkgerrors.CodeConflict, fmt.Sprintf("order is already %s", current.Status))
	}
	path, _ := orderPath(id)
	return s.orderCall(ctx, backend.Request{
		Service: backend.ServiceOrder,
		Method:  http.MethodPost,
		Path:    path + "/cancel",
	}.As(creds), "orders.cancel")
}

// PickupOptions evaluates every operating hour of date for the current cart.
// An empty date selects the earliest date the cart can be picked up.
func (s *service) PickupOptions(ctx context.Context, date string, creds backend.Credentials) (*PickupOptions, error) {
	now := s.now().In(s.loc)
	readiness, err := s.readiness(ctx, now, creds)
	if err != nil {
		return nil, err
	}

	day := readiness.EarliestAvailableDate
	if strings.TrimSpace(date) != "" {
		day, err = pickup.ParseDate(date, s.loc)
		if err != nil {
			return nil, validationError(err)
		}
	}

	out := &PickupOptions{
		Date:                  pickup.FormatDate(day),
		EarliestAvailableDate: pickup.FormatDate(readiness.EarliestAvailableDate),
		ReadyOnly:             readiness.ReadyOnly,
		LeadDays:              readiness.LeadDays,
		SameDayThreshold:      pickup.SameDayBufferThreshold(now, pickup.ReadyBufferHours),
		Slots:                 pickup.Options(day, now, readiness, pickup.ReadyBufferHours),
	}
	if slot, ok := pickup.FirstAvailable(readiness.EarliestAvailableDate, now, readiness, pickup.ReadyBufferHours, firstAvailableHorizon); ok {
		out.FirstAvailable = &PickupSlot{Date: pickup.FormatDate(slot.Date), Time: slot.Time}
	}
	return out, nil
}

func (s *service) ValidatePickup(ctx context.Context, date, hhmm string, creds backend.Credentials) (*PickupValidation, error) {
	slot, err := pickup.ParseSlot(date, hhmm, s.loc)
	if err != nil {
		return nil, validationError(err)
	}
	now := s.now().In(s.loc)
	readiness, err := s.readiness(ctx, now, creds)
	if err != nil {
		return nil, err
	}
	return evaluate(slot, now, readiness), nil
}

// Checkout re-validates the pickup slot against the server clock before the
// order reaches the order service; the storefront's own check is advisory.
func (s *service) Checkout(ctx context.Context, input CheckoutInput, creds backend.Credentials) (*normalize.Order, error) {
	if creds.Anonymous() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to check out")
	}
	if err := input.validate(); err != nil {
		return nil, err
	}
	slot, err := pickup.ParseSlot(input.PickupDate, input.PickupTime, s.loc)
	if err != nil {
		return nil, validationError(err)
	}

	cart, err := s.cart.Get(ctx, creds)
	if err != nil {
		return nil, err
	}
	if cart.IsEmpty() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "cart is empty")
	}

	now := s.now().In(s.loc)
	readiness := pickup.ComputeReadiness(now, cart.LeadDays())
	verdict := evaluate(slot, now, readiness)
	if !verdict.Selectable {
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{
			"pickup_date": verdict.Date,
			"pickup_time": verdict.Time,
			"reason":      string(verdict.Reason),
		}), "checkout rejected pickup slot")
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "pickup slot is not available").WithDetails(map[string]any{
			"reason":                  string(verdict.Reason),
			"pickup_date":             verdict.Date,
			"pickup_time":             verdict.Time,
			"earliest_available_date": verdict.EarliestAvailableDate,
			"same_day_threshold":      verdict.SameDayThreshold,
		})
	}

	body := map[string]any{
		"cart_id":        cart.ID,
		"pickup_date":    verdict.Date,
		"pickup_time":    verdict.Time,
		"recipient_name": strings.TrimSpace(input.RecipientName),
		"phone":          strings.TrimSpace(input.Phone),
		"payment_method": strings.TrimSpace(input.PaymentMethod),
		"items":          orderLines(cart.Items),
	}
	if v := strings.TrimSpace(input.CardMessage); v != "" {
		body["card_message"] = v
	}
	if v := strings.TrimSpace(input.Notes); v != "" {
		body["notes"] = v
	}
	if v := strings.TrimSpace(input.DiscountCode); v != "" {
		body["discount_code"] = v
	}

	order, err := s.orderCall(ctx, backend.Request{
		Service: backend.ServiceOrder,
		Method:  http.MethodPost,
		Path:    "/orders",
		Body:    body,
	}.As(creds), "orders.checkout")
	if err != nil {
		return nil, err
	}
	if order.PickupDate == "" {
		order.PickupDate, order.PickupTime = verdict.Date, verdict.Time
	}
	return order, nil
}

func (s *service) readiness(ctx context.Context, now time.Time, creds backend.Credentials) (pickup.Readiness, error) {
	cart, err := s.cart.Get(ctx, creds)
	if err != nil {
		return pickup.Readiness{}, err
	}
	return pickup.ComputeReadiness(now, cart.LeadDays()), nil
}

func (s *service) orderCall(ctx context.Context, req backend.Request, source string) (*normalize.Order, error) {
	resp, err := s.backend.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	order, issues := normalize.NormalizeOrder(resp.Decode())
	normalize.Report(ctx, s.logg, source, issues)
	if order.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUpstreamContract, "order service returned no order id")
	}
	return &order, nil
}

func evaluate(slot pickup.Slot, now time.Time, r pickup.Readiness) *PickupValidation {
	reason := slot.Check(now, r, pickup.ReadyBufferHours)
	return &PickupValidation{
		Date:                  pickup.FormatDate(slot.Date),
		Time:                  slot.Time,
		Selectable:            reason.Selectable(),
		Reason:                reason,
		EarliestAvailableDate: pickup.FormatDate(r.EarliestAvailableDate),
		SameDayThreshold:      pickup.SameDayBufferThreshold(now, pickup.ReadyBufferHours),
	}
}

func orderLines(items []normalize.CartItem) []map[string]any {
	lines := make([]map[string]any, 0, len(items))
	for _, item := range items {
		line := map[string]any{"product_id": item.ProductID, "quantity": item.Quantity}
		if item.Size != "" {
			line["size"] = item.Size
		}
		lines = append(lines, line)
	}
	return lines
}

func (in CheckoutInput) validate() error {
	var missing []string
	for field, value := range map[string]string{
		"recipient_name": in.RecipientName,
		"phone":          in.Phone,
		"payment_method": in.PaymentMethod,
	} {
		if strings.TrimSpace(value) == "" {
			missing = append(missing, field)
		}
	}
	if len(missing) > 0 {
		slices.Sort(missing)
		return pkgerrors.New(pkgerrors.CodeValidation, "missing required fields").WithDetails(map[string]any{"fields": missing})
	}
	return nil
}

func orderPath(id string) (string, error) {
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	return "/orders/" + url.PathEscape(trimmed), nil
}

func validationError(err error) error {
	switch {
	case errors.Is(err, pickup.ErrInvalidDate):
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "pickup_date must be YYYY-MM-DD")
	case errors.Is(err, pickup.ErrInvalidTime):
		return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "pickup_time must be HH:00")
	}
	return pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid pickup slot")
}
