// Package cart proxies the signed-in user's cart held by the order service.
package cart

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

const maxItemQuantity = 99

// AddItemInput is a new cart line.
type AddItemInput struct {
	ProductID string `json:"product_id" validate:"required"`
	Quantity  int    `json:"quantity" validate:"required,min=1,max=99"`
	Size      string `json:"size,omitempty" validate:"omitempty,max=40"`
}

// UpdateItemInput changes a line's quantity.
type UpdateItemInput struct {
	Quantity int `json:"quantity" validate:"required,min=1,max=99"`
}

// Service exposes cart operations. Every call acts for the owner of creds.
type Service interface {
	Get(ctx context.Context, creds backend.Credentials) (*normalize.Cart, error)
	AddItem(ctx context.Context, input AddItemInput, creds backend.Credentials) (*normalize.Cart, error)
	UpdateItem(ctx context.Context, itemID string, input UpdateItemInput, creds backend.Credentials) (*normalize.Cart, error)
	RemoveItem(ctx context.Context, itemID string, creds backend.Credentials) (*normalize.Cart, error)
}

// ServiceParams bundles the dependencies required to build a cart service.
type ServiceParams struct {
	Backend backend.Caller
	Logger  *logger.Logger
}

type service struct {
	backend backend.Caller
	logg    *logger.Logger
}

// NewService constructs the cart service.
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

func (s *service) Get(ctx context.Context, creds backend.Credentials) (*normalize.Cart, error) {
	if creds.Anonymous() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to use the cart")
	}
	resp, err := s.backend.Do(ctx, backend.Request{
		Service: backend.ServiceOrder,
		Path:    "/cart",
	}.As(creds))
	if err != nil {
		if pkgerrors.Is(err, pkgerrors.CodeNotFound) {
			// No cart yet.
			return &normalize.Cart{Items: []normalize.CartItem{}}, nil
		}
		return nil, err
	}
	cart, issues := normalize.NormalizeCart(resp.Decode())
	normalize.Report(ctx, s.logg, "cart", issues)
	return &cart, nil
}

func (s *service) AddItem(ctx context.Context, input AddItemInput, creds backend.Credentials) (*normalize.Cart, error) {
	productID := strings.TrimSpace(input.ProductID)
	if productID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product_id is required")
	}
	if err := validateQuantity(input.Quantity); err != nil {
		return nil, err
	}
	body := map[string]any{"product_id": productID, "quantity": input.Quantity}
	if size := strings.TrimSpace(input.Size); size != "" {
		body["size"] = size
	}
	return s.mutate(ctx, http.MethodPost, "/cart/items", body, creds)
}

func (s *service) UpdateItem(ctx context.Context, itemID string, input UpdateItemInput, creds backend.Credentials) (*normalize.Cart, error) {
	path, err := itemPath(itemID)
	if err != nil {
		return nil, err
	}
	if err := validateQuantity(input.Quantity); err != nil {
		return nil, err
	}
	return s.mutate(ctx, http.MethodPut, path, map[string]any{"quantity": input.Quantity}, creds)
}

func (s *service) RemoveItem(ctx context.Context, itemID string, creds backend.Credentials) (*normalize.Cart, error) {
	path, err := itemPath(itemID)
	if err != nil {
		return nil, err
	}
	return s.mutate(ctx, http.MethodDelete, path, nil, creds)
}

// mutate applies a change and then reloads the cart, since the order service
// answers mutations with the touched line rather than the whole cart.
func (s *service) mutate(ctx context.Context, method, path string, body any, creds backend.Credentials) (*normalize.Cart, error) {
	if creds.Anonymous() {
		return nil, pkgerrors.New(pkgerrors.CodeUnauthorized, "sign in to use the cart")
	}
	if _, err := s.backend.Do(ctx, backend.Request{
		Service: backend.ServiceOrder,
		Method:  method,
		Path:    path,
		Body:    body,
	}.As(creds)); err != nil {
		return nil, err
	}
	return s.Get(ctx, creds)
}

func itemPath(itemID string) (string, error) {
	id := strings.TrimSpace(itemID)
	if id == "" {
		return "", pkgerrors.New(pkgerrors.CodeValidation, "item id is required")
	}
	return "/cart/items/" + url.PathEscape(id), nil
}

func validateQuantity(q int) error {
	if q < 1 || q > maxItemQuantity {
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("quantity must be between 1 and %d", maxItemQuantity))
	}
	return nil
}
