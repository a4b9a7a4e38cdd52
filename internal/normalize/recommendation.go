package normalize

import "github.com/tidwall/gjson"

// Recommendation is a product suggested next to another product or for a user.
type Recommendation struct {
	Product
	Score  float64 `json:"score"`
	Reason string  `json:"reason,omitempty"`
}

var recommendationFields = struct {
	product, score, reason []string
}{
	product: []string{"product", "recommended_product", "item"},
	score:   []string{"score", "similarity", "confidence", "weight"},
	reason:  []string{"reason", "source", "type"},
}

// NormalizeRecommendations maps a recommendation list.
func NormalizeRecommendations(raw gjson.Result) (List[Recommendation], Issues) {
	return collect(raw, []string{"recommendations", "products"}, func(elem gjson.Result) (Recommendation, Issues) {
		c := NewCoercer("recommendation", elem)
		return recommendation(c), c.Issues()
	})
}

func recommendation(c *Coercer) Recommendation {
	f := recommendationFields
	src := c
	if nested := c.Object(f.product...); !nested.Empty() {
		src = nested
	}
	return Recommendation{
		Product: product(src),
		Score:   c.Float(f.score...),
		Reason:  c.String(f.reason...),
	}
}
