// Package admin backs the shop dashboard with a whitelisted proxy over the
// upstream collections.
package admin

import (
	"context"
	"fmt"
	"net/http"
	"net/url"
	"strings"

	"github.com/tidwall/gjson"

	"github.com/florista/bouquet-bff/internal/backend"
	"github.com/florista/bouquet-bff/internal/normalize"
	"github.com/florista/bouquet-bff/pkg/enums"
	pkgerrors "github.com/florista/bouquet-bff/pkg/errors"
	"github.com/florista/bouquet-bff/pkg/logger"
)

// Service exposes the dashboard operations. Every call runs with the admin's
// backend credentials.
type Service interface {
	List(ctx context.Context, name string, query url.Values, creds backend.Credentials) (normalize.List[any], error)
	Get(ctx context.Context, name, id string, creds backend.Credentials) (any, error)
	Create(ctx context.Context, name string, body map[string]any, creds backend.Credentials) (any, error)
	Update(ctx context.Context, name, id string, body map[string]any, creds backend.Credentials) (any, error)
	Delete(ctx context.Context, name, id string, creds backend.Credentials) error
	UpdateOrderStatus(ctx context.Context, id string, status string, creds backend.Credentials) (*normalize.Order, error)
}

type invalidator interface {
	Invalidate(ctx context.Context, resource string) error
}

// ServiceParams bundles the dependencies required to build an admin service.
type ServiceParams struct {
	Backend backend.Caller
	// Catalog is optional; when set, catalog mutations purge its cache.
	Catalog invalidator
	Logger  *logger.Logger
}

type service struct {
	backend backend.Caller
	catalog invalidator
	logg    *logger.Logger
}

// NewService constructs the admin service.
func NewService(params ServiceParams) (Service, error) {
	if params.Backend == nil {
		return nil, fmt.Errorf("backend caller is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	return &service{backend: params.Backend, catalog: params.Catalog, logg: logg}, nil
}

func (s *service) List(ctx context.Context, name string, query url.Values, creds backend.Credentials) (normalize.List[any], error) {
	res, err := lookup(name)
	if err != nil {
		return normalize.List[any]{}, err
	}
	raw, err := s.call(ctx, res, http.MethodGet, res.path, query, nil, creds)
	if err != nil {
		return normalize.List[any]{}, err
	}

	elems := normalize.Items(raw, name)
	out := normalize.List[any]{Items: make([]any, 0, len(elems))}
	var issues normalize.Issues
	for _, elem := range elems {
		item, itemIssues := res.apply(elem)
		out.Items = append(out.Items, item)
		issues = append(issues, itemIssues...)
	}
	out.Total = normalize.Total(raw, len(out.Items))
	normalize.Report(ctx, s.logg, "admin."+name, issues)
	return out, nil
}

func (s *service) Get(ctx context.Context, name, id string, creds backend.Credentials) (any, error) {
	res, path, err := lookupItem(name, id)
	if err != nil {
		return nil, err
	}
	raw, err := s.call(ctx, res, http.MethodGet, path, nil, nil, creds)
	if err != nil {
		return nil, err
	}
	return s.entity(ctx, name, res, raw), nil
}

func (s *service) Create(ctx context.Context, name string, body map[string]any, creds backend.Credentials) (any, error) {
	res, err := lookup(name)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request body is required")
	}
	raw, err := s.call(ctx, res, http.MethodPost, res.path, nil, body, creds)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, res)
	return s.entity(ctx, name, res, raw), nil
}

func (s *service) Update(ctx context.Context, name, id string, body map[string]any, creds backend.Credentials) (any, error) {
	res, path, err := lookupItem(name, id)
	if err != nil {
		return nil, err
	}
	if len(body) == 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "request body is required")
	}
	raw, err := s.call(ctx, res, http.MethodPut, path, nil, body, creds)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx, res)
	return s.entity(ctx, name, res, raw), nil
}

func (s *service) Delete(ctx context.Context, name, id string, creds backend.Credentials) error {
	res, path, err := lookupItem(name, id)
	if err != nil {
		return err
	}
	if _, err := s.call(ctx, res, http.MethodDelete, path, nil, nil, creds); err != nil {
		return err
	}
	s.invalidate(ctx, res)
	return nil
}

// UpdateOrderStatus accepts only the storefront status vocabulary.
func (s *service) UpdateOrderStatus(ctx context.Context, id string, status string, creds backend.Credentials) (*normalize.Order, error) {
	parsed, err := enums.ParseOrderStatus(strings.ToLower(strings.TrimSpace(status)))
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeValidation, err, "invalid order status")
	}
	res, path, err := lookupItem("orders", id)
	if err != nil {
		return nil, err
	}
	raw, err := s.call(ctx, res, http.MethodPut, path+"/status", nil, map[string]any{"status": parsed.String()}, creds)
	if err != nil {
		return nil, err
	}
	order, issues := normalize.NormalizeOrder(raw)
	normalize.Report(ctx, s.logg, "admin.orders.status", issues)
	if order.ID == "" {
		order.ID = strings.TrimSpace(id)
	}
	if order.RawStatus == "" {
		order.Status = parsed
	}
	return &order, nil
}

func (s *service) call(ctx context.Context, res resource, method, path string, query url.Values, body map[string]any, creds backend.Credentials) (gjson.Result, error) {
	if creds.Anonymous() {
		return gjson.Result{}, pkgerrors.New(pkgerrors.CodeUnauthorized, "admin credentials required")
	}
	req := backend.Request{
		Service: res.service,
		Method:  method,
		Path:    path,
		Query:   query,
	}
	if body != nil {
		req.Body = body
	}
	resp, err := s.backend.Do(ctx, req.As(creds))
	if err != nil {
		return gjson.Result{}, err
	}
	return resp.Decode(), nil
}

func (s *service) entity(ctx context.Context, name string, res resource, raw gjson.Result) any {
	v, issues := res.apply(raw)
	normalize.Report(ctx, s.logg, "admin."+name, issues)
	return v
}

// invalidate is best effort: the mutation already happened upstream and the
// cache expires on its own.
func (s *service) invalidate(ctx context.Context, res resource) {
	if s.catalog == nil || res.invalidates == "" {
		return
	}
	if err := s.catalog.Invalidate(ctx, res.invalidates); err != nil {
		s.logg.Error(s.logg.WithField(ctx, "resource", res.invalidates), "catalog cache invalidation failed", err)
	}
}

func lookup(name string) (resource, error) {
	res, ok := resources[strings.ToLower(strings.TrimSpace(name))]
	if !ok {
		return resource{}, pkgerrors.New(pkgerrors.CodeNotFound, fmt.Sprintf("unknown admin resource %q", name))
	}
	return res, nil
}

func lookupItem(name, id string) (resource, string, error) {
	res, err := lookup(name)
	if err != nil {
		return resource{}, "", err
	}
	trimmed := strings.TrimSpace(id)
	if trimmed == "" {
		return resource{}, "", pkgerrors.New(pkgerrors.CodeValidation, "id is required")
	}
	return res, res.path + "/" + url.PathEscape(trimmed), nil
}
