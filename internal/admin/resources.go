package admin

import (
	"encoding/json"

	"github.com/tidwall/gjson"

	"github.com/florista/bouquet-bff/internal/backend"
	"github.com/florista/bouquet-bff/internal/catalog"
	"github.com/florista/bouquet-bff/internal/normalize"
)

// resource describes one dashboard collection and where it lives upstream.
type resource struct {
	service backend.Service
	path    string
	// normalize maps one upstream entity; nil passes the object through unwrapped.
	normalize func(raw gjson.Result) (any, normalize.Issues)
	// invalidates names the catalog cache entry a mutation makes stale.
	invalidates string
}

var resources = map[string]resource{
	"products": {
		service:     backend.ServiceProduct,
		path:        "/products",
		normalize:   entity(normalize.NormalizeProduct),
		invalidates: catalog.ResourceProducts,
	},
	"categories": {
		service:     backend.ServiceProduct,
		path:        "/categories",
		normalize:   entity(normalize.NormalizeCategory),
		invalidates: catalog.ResourceCategories,
	},
	"discounts": {
		service:     backend.ServiceProduct,
		path:        "/discounts",
		normalize:   entity(normalize.NormalizeDiscount),
		invalidates: catalog.ResourceDiscounts,
	},
	"ratings": {
		service:     backend.ServiceProduct,
		path:        "/ratings",
		invalidates: catalog.ResourceProducts,
	},
	"orders": {
		service:   backend.ServiceOrder,
		path:      "/orders",
		normalize: entity(normalize.NormalizeOrder),
	},
	"messages": {
		service: backend.ServiceOrder,
		path:    "/messages",
	},
	"notifications": {
		service: backend.ServiceOrder,
		path:    "/notifications",
	},
}

// Resources lists the dashboard collections in a stable order.
func Resources() []string {
	return []string{"products", "categories", "discounts", "ratings", "orders", "messages", "notifications"}
}

func entity[T any](fn func(gjson.Result) (T, normalize.Issues)) func(gjson.Result) (any, normalize.Issues) {
	return func(raw gjson.Result) (any, normalize.Issues) {
		return fn(raw)
	}
}

// apply normalizes raw, or passes the unwrapped JSON through verbatim.
func (r resource) apply(raw gjson.Result) (any, normalize.Issues) {
	if r.normalize == nil {
		inner := normalize.Unwrap(raw)
		if !inner.Exists() {
			return nil, nil
		}
		return json.RawMessage(inner.Raw), nil
	}
	return r.normalize(raw)
}
