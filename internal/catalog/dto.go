package catalog

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/florista/bouquet-bff/pkg/enums"
)

var productSorts = map[string]bool{
	"newest":     true,
	"price_asc":  true,
	"price_desc": true,
	"popular":    true,
	"rating":     true,
	"name":       true,
}

// ProductQuery filters the storefront product listing.
type ProductQuery struct {
	Search       string
	Category     string
	Availability enums.Availability
	Sort         string
	Page         int
	Limit        int
}

// normalized returns a canonical form so equivalent queries share a cache key.
func (q ProductQuery) normalized() ProductQuery {
	q.Search = strings.TrimSpace(q.Search)
	q.Category = strings.TrimSpace(q.Category)
	q.Sort = strings.ToLower(strings.TrimSpace(q.Sort))
	if !productSorts[q.Sort] {
		q.Sort = ""
	}
	if !q.Availability.IsValid() {
		q.Availability = ""
	}
	if q.Page < 1 {
		q.Page = 1
	}
	q.Limit = clampLimit(q.Limit, 20)
	return q
}

func (q ProductQuery) values() url.Values {
	v := url.Values{}
	if q.Search != "" {
		v.Set("search", q.Search)
	}
	if q.Category != "" {
		v.Set("category", q.Category)
	}
	if q.Availability != "" {
		v.Set("availability", q.Availability.String())
	}
	if q.Sort != "" {
		v.Set("sort", q.Sort)
	}
	v.Set("page", strconv.Itoa(q.Page))
	v.Set("limit", strconv.Itoa(q.Limit))
	return v
}

// RecommendationQuery anchors recommendations on a product, or on the caller
// when ProductID is empty.
type RecommendationQuery struct {
	ProductID string
	Limit     int
}
