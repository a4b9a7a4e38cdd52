package normalize

import "github.com/tidwall/gjson"

// PopularProduct is a product ranked by the backend's SAW (simple additive
// weighting) preference score.
type PopularProduct struct {
	Product
	Score     float64 `json:"score"`
	Rank      int     `json:"rank"`
	TotalSold int     `json:"total_sold"`
}

var popularFields = struct {
	product, score, rank, sold []string
}{
	product: []string{"product", "item"},
	score:   []string{"saw_score", "sawScore", "score", "preference_score", "total_score", "value"},
	rank:    []string{"rank", "ranking", "position"},
	sold:    []string{"total_sold", "totalSold", "sold", "sales_count", "order_count"},
}

// NormalizePopularProducts maps the popular-products response. Entries may be flat
// products with score fields or {product, score} pairs. Missing ranks follow list order.
func NormalizePopularProducts(raw gjson.Result) (List[PopularProduct], Issues) {
	list, issues := collect(raw, []string{"products", "popular", "rankings"}, func(elem gjson.Result) (PopularProduct, Issues) {
		c := NewCoercer("popular_product", elem)
		return popularProduct(c), c.Issues()
	})
	for i := range list.Items {
		if list.Items[i].Rank <= 0 {
			list.Items[i].Rank = i + 1
		}
	}
	return list, issues
}

func popularProduct(c *Coercer) PopularProduct {
	f := popularFields
	src := c
	if nested := c.Object(f.product...); !nested.Empty() {
		src = nested
	}
	out := PopularProduct{
		Product:   product(src),
		Score:     c.Float(f.score...),
		Rank:      c.Int(f.rank...),
		TotalSold: c.Int(f.sold...),
	}
	if out.Score < 0 {
		out.Score = 0
	}
	return out
}
