package normalize

import "github.com/tidwall/gjson"

// Category groups bouquets in the storefront navigation.
type Category struct {
	ID           string `json:"id"`
	Name         string `json:"name"`
	Slug         string `json:"slug"`
	Description  string `json:"description"`
	Image        string `json:"image"`
	ProductCount int    `json:"product_count"`
}

var categoryFields = struct {
	id, name, slug, description, image, count []string
}{
	id:          []string{"id", "category_id", "categoryId"},
	name:        []string{"name", "category_name", "title"},
	slug:        []string{"slug", "handle"},
	description: []string{"description", "desc"},
	image:       []string{"image", "image_url", "imageUrl", "icon"},
	count:       []string{"product_count", "productCount", "products_count", "_count.products"},
}

// NormalizeCategory maps one category.
func NormalizeCategory(raw gjson.Result) (Category, Issues) {
	c := NewCoercer("category", Unwrap(raw))
	return category(c), c.Issues()
}

// NormalizeCategories maps a category list response.
func NormalizeCategories(raw gjson.Result) (List[Category], Issues) {
	return collect(raw, []string{"categories"}, func(elem gjson.Result) (Category, Issues) {
		c := NewCoercer("category", elem)
		return category(c), c.Issues()
	})
}

func category(c *Coercer) Category {
	f := categoryFields
	cat := Category{
		ID:           c.String(f.id...),
		Name:         c.String(f.name...),
		Slug:         c.String(f.slug...),
		Description:  c.String(f.description...),
		Image:        c.String(f.image...),
		ProductCount: c.Int(f.count...),
	}
	if cat.ProductCount < 0 {
		cat.ProductCount = 0
	}
	return cat
}
