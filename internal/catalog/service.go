// Package catalog serves the public storefront reads: products, categories,
// popularity rankings, recommendations and active discounts.
package catalog

import (
	"context"
	"fmt"
	"net/url"
	"strconv"
	"strings"
	"time"

	"github.com/tidwall/gjson"

	"github.com/florista/bouquet-bff/internal/backend"
	"github.com/florista/bouquet-bff/internal/normalize"
	pkgerrors "github.com/florista/bouquet-bff/pkg/errors"
	"github.com/florista/bouquet-bff/pkg/logger"
)

// Cached resources; admin mutations purge them by name.
const (
	ResourceProducts   = "products"
	ResourceCategories = "categories"
	ResourceDiscounts  = "discounts"
	ResourcePopular    = "popular"
)

const (
	defaultPopularLimit = 8
	maxListLimit        = 100
)

// Service exposes catalog reads to the storefront controllers.
type Service interface {
	ListProducts(ctx context.Context, query ProductQuery, creds backend.Credentials) (normalize.List[normalize.Product], error)
	GetProduct(ctx context.Context, id string, creds backend.Credentials) (*normalize.Product, error)
	ListCategories(ctx context.Context, creds backend.Credentials) ([]normalize.Category, error)
	PopularProducts(ctx context.Context, limit int, creds backend.Credentials) ([]normalize.PopularProduct, error)
	Recommendations(ctx context.Context, query RecommendationQuery, creds backend.Credentials) ([]normalize.Recommendation, error)
	ActiveDiscounts(ctx context.Context, creds backend.Credentials) ([]normalize.Discount, error)
	Invalidate(ctx context.Context, resource string) error
}

// ServiceParams bundles the dependencies required to build a catalog service.
type ServiceParams struct {
	Backend backend.Caller
	// Cache is optional; without it every read goes upstream.
	Cache    cacheStore
	CacheTTL time.Duration
	Logger   *logger.Logger
	Now      func() time.Time
}

type service struct {
	backend backend.Caller
	cache   *readThrough
	logg    *logger.Logger
	now     func() time.Time
}

// NewService constructs the catalog service.
func NewService(params ServiceParams) (Service, error) {
	if params.Backend == nil {
		return nil, fmt.Errorf("backend caller is required")
	}
	logg := params.Logger
	if logg == nil {
		logg = logger.Nop()
	}
	now := params.Now
	if now == nil {
		now = time.Now
	}
	return &service{
		backend: params.Backend,
		cache:   newReadThrough(params.Cache, params.CacheTTL, logg),
		logg:    logg,
		now:     now,
	}, nil
}

func (s *service) ListProducts(ctx context.Context, query ProductQuery, creds backend.Credentials) (normalize.List[normalize.Product], error) {
	query = query.normalized()
	values := query.values()
	return cached(ctx, s.cache, s.cache.key(ResourceProducts, "list", values.Encode()), func(ctx context.Context) (normalize.List[normalize.Product], error) {
		raw, err := s.get(ctx, "/products", values, public(creds))
		if err != nil {
			return normalize.List[normalize.Product]{}, err
		}
		list, issues := normalize.NormalizeProducts(raw)
		normalize.Report(ctx, s.logg, "catalog.products", issues)
		return list, nil
	})
}

func (s *service) GetProduct(ctx context.Context, id string, creds backend.Credentials) (*normalize.Product, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product id is required")
	}
	product, err := cached(ctx, s.cache, s.cache.key(ResourceProducts, "item", id), func(ctx context.Context) (normalize.Product, error) {
		raw, err := s.get(ctx, "/products/"+url.PathEscape(id), nil, public(creds))
		if err != nil {
			return normalize.Product{}, err
		}
		product, issues := normalize.NormalizeProduct(raw)
		normalize.Report(ctx, s.logg, "catalog.product", issues)
		if product.ID == "" {
			return product, pkgerrors.New(pkgerrors.CodeNotFound, "product not found")
		}
		return product, nil
	})
	if err != nil {
		return nil, err
	}
	return &product, nil
}

func (s *service) ListCategories(ctx context.Context, creds backend.Credentials) ([]normalize.Category, error) {
	return cached(ctx, s.cache, s.cache.key(ResourceCategories, "all"), func(ctx context.Context) ([]normalize.Category, error) {
		raw, err := s.get(ctx, "/categories", nil, public(creds))
		if err != nil {
			return nil, err
		}
		list, issues := normalize.NormalizeCategories(raw)
		normalize.Report(ctx, s.logg, "catalog.categories", issues)
		return list.Items, nil
	})
}

// PopularProducts returns the upstream ranking; scores are computed by the
// product service and only carried through here.
func (s *service) PopularProducts(ctx context.Context, limit int, creds backend.Credentials) ([]normalize.PopularProduct, error) {
	limit = clampLimit(limit, defaultPopularLimit)
	values := url.Values{"limit": {strconv.Itoa(limit)}}
	return cached(ctx, s.cache, s.cache.key(ResourcePopular, strconv.Itoa(limit)), func(ctx context.Context) ([]normalize.PopularProduct, error) {
		raw, err := s.get(ctx, "/products/popular", values, public(creds))
		if err != nil {
			return nil, err
		}
		list, issues := normalize.NormalizePopularProducts(raw)
		normalize.Report(ctx, s.logg, "catalog.popular", issues)
		if len(list.Items) > limit {
			list.Items = list.Items[:limit]
		}
		return list.Items, nil
	})
}

// Recommendations are personal when no product anchors them, so they are
// never cached.
func (s *service) Recommendations(ctx context.Context, query RecommendationQuery, creds backend.Credentials) ([]normalize.Recommendation, error) {
	limit := clampLimit(query.Limit, defaultPopularLimit)
	values := url.Values{"limit": {strconv.Itoa(limit)}}

	path := "/recommendations"
	if productID := strings.TrimSpace(query.ProductID); productID != "" {
		path = "/recommendations/product/" + url.PathEscape(productID)
	} else if creds.Anonymous() {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "product_id is required for anonymous recommendations")
	}

	raw, err := s.get(ctx, path, values, creds)
	if err != nil {
		return nil, err
	}
	list, issues := normalize.NormalizeRecommendations(raw)
	normalize.Report(ctx, s.logg, "catalog.recommendations", issues)
	if len(list.Items) > limit {
		list.Items = list.Items[:limit]
	}
	return list.Items, nil
}

// ActiveDiscounts filters by the BFF clock since upstream flags lag schedules.
func (s *service) ActiveDiscounts(ctx context.Context, creds backend.Credentials) ([]normalize.Discount, error) {
	all, err := cached(ctx, s.cache, s.cache.key(ResourceDiscounts, "all"), func(ctx context.Context) ([]normalize.Discount, error) {
		raw, err := s.get(ctx, "/discounts", url.Values{"active": {"true"}}, public(creds))
		if err != nil {
			return nil, err
		}
		list, issues := normalize.NormalizeDiscounts(raw)
		normalize.Report(ctx, s.logg, "catalog.discounts", issues)
		return list.Items, nil
	})
	if err != nil {
		return nil, err
	}
	now := s.now()
	active := make([]normalize.Discount, 0, len(all))
	for _, d := range all {
		if d.ActiveAt(now) {
			active = append(active, d)
		}
	}
	return active, nil
}

// Invalidate purges cached entries after an admin mutation. Product changes
// also purge the popularity ranking.
func (s *service) Invalidate(ctx context.Context, resource string) error {
	resources := []string{resource}
	switch resource {
	case ResourceProducts:
		resources = append(resources, ResourcePopular)
	case ResourceCategories, ResourceDiscounts, ResourcePopular:
	default:
		return pkgerrors.New(pkgerrors.CodeValidation, fmt.Sprintf("unknown catalog resource %q", resource))
	}
	for _, r := range resources {
		n, err := s.cache.purge(ctx, r)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "purge catalog cache")
		}
		s.logg.Info(s.logg.WithFields(ctx, map[string]any{"resource": r, "deleted": n}), "catalog cache purged")
	}
	return nil
}

func (s *service) get(ctx context.Context, path string, query url.Values, creds backend.Credentials) (gjson.Result, error) {
	resp, err := s.backend.Do(ctx, backend.Request{
		Service: backend.ServiceProduct,
		Path:    path,
		Query:   query,
	}.As(creds))
	if err != nil {
		return gjson.Result{}, err
	}
	return resp.Decode(), nil
}

// public strips the user token from shared, cacheable reads.
func public(creds backend.Credentials) backend.Credentials {
	return backend.Credentials{RequestID: creds.RequestID}
}

func clampLimit(limit, fallback int) int {
	if limit <= 0 {
		return fallback
	}
	if limit > maxListLimit {
		return maxListLimit
	}
	return limit
}
