// Package payments starts and tracks order payments through the payment service.
package payments

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/florista/bouquet-bff/internal/backend"
	"github.com/florista/bouquet-bff/internal/normalize"
	pkgerrors "github.com/florista/bouquet-bff/pkg/errors"
	"github.com/florista/bouquet-bff/pkg/logger"
)

// CreateInput starts a payment for an order.
type CreateInput struct {
	OrderID string `json:"order_id" validate:"required"`
	Method  string `json:"payment_method" validate:"required,max=40"`
}

// Service exposes payment operations.
type Service interface {
	Create(ctx context.Context, input CreateInput, creds backend.Credentials) (*normalize.Payment, error)
	Status(ctx context.Context, orderID string, creds backend.Credentials) (*normalize.Payment, error)
}

// ServiceParams bundles the dependencies required to build a payments service.
type ServiceParams struct {
	Backend backend.Caller
	Logger  *logger.Logger
}

type service struct {
	backend backend.Caller
	logg    *logger.Logger
}

// NewService constructs the payments service.
func NewService(params ServiceParams) (Service, error) {
	if params.Backend == nil {
		return nil, fmt.Errorf("backend caller is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{backend: params.Backend, logg: logg}, nil
}

func (s *service) Create(ctx context.Context, input CreateInput, creds backend.Credentials) (*normalize.Payment, error) {
	orderID := strings.TrimSpace(input.OrderID)
	method := strings.TrimSpace(input.Method)
	if orderID == "" || method == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order_id and payment_method are required")
	}
	if creds.Anonymous() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to pay")
	}

	payment, err := s.call(ctx, backend.Request{
		Service: backend.ServicePayment,
		Method:  http.MethodPost,
		Path:    "/payments",
		Body:    map[string]string{"order_id": orderID, "payment_method": method},
	}.As(creds), orderID, "payments.create")
	if err != nil {
		return nil, err
	}
	if payment.ID == "" && payment.Token == "" && payment.RedirectURL == "" {
		return nil, pkgerrors.New(pkgerrors.CodeUpstreamContract, "payment service returned no payment reference")
	}
	if payment.Method == "" {
		payment.Method = method
	}
	return payment, nil
}

func (s *service) Status(ctx context.Context, orderID string, creds backend.Credentials) (*normalize.Payment, error) {
	id := strings.TrimSpace(orderID)
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "order id is required")
	}
	return s.call(ctx, backend.Request{
		Service: backend.ServicePayment,
		Path:    "/payments/order/" + url.PathEscape(id),
	}.As(creds), id, "payments.status")
}

func (s *service) call(ctx context.Context, req backend.Request, orderID, source string) (*normalize.Payment, error) {
	resp, err := s.backend.Do(ctx, req)
	if err != nil {
		return nil, err
	}
	payment, issues := normalize.NormalizePayment(resp.Decode())
	normalize.Report(ctx, s.logg, source, issues)
	if payment.OrderID == "" {
		payment.OrderID = orderID
	}
	return &payment, nil
}
