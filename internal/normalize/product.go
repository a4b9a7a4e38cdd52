package normalize

import (
	"time"

	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"github.com/florista/bouquet-bff/pkg/enums"
)

// Product is a bouquet as listed in the catalog.
type Product struct {
	ID           string             `json:"id"`
	Name         string             `json:"name"`
	Slug         string             `json:"slug"`
	Description  string             `json:"description"`
	Price        decimal.Decimal    `json:"price"`
	Image        string             `json:"image"`
	Images       []string           `json:"images"`
	CategoryID   string             `json:"category_id"`
	CategoryName string             `json:"category_name"`
	Stock        int                `json:"stock"`
	Sizes        []string           `json:"sizes"`
	Rating       float64            `json:"rating"`
	Availability enums.Availability `json:"availability,omitempty"`
	LeadDays     int                `json:"lead_days"`
	CreatedAt    *time.Time         `json:"created_at,omitempty"`
}

var productFields = struct {
	id, name, slug, description, price, image, images, categoryID, categoryName, stock, sizes, rating, createdAt []string
}{
	id:           []string{"id", "product_id", "productId", "_id"},
	name:         []string{"name", "product_name", "title"},
	slug:         []string{"slug", "handle"},
	description:  []string{"description", "desc", "details"},
	price:        []string{"price", "unit_price", "sale_price", "base_price", "prices.0.price", "sizes.0.price"},
	image:        []string{"image", "image_url", "imageUrl", "thumbnail", "images.0", "images.0.url", "images.0.image_url"},
	images:       []string{"images", "gallery", "photos"},
	categoryID:   []string{"category_id", "categoryId", "category.id"},
	categoryName: []string{"category_name", "categoryName", "category.name", "category"},
	stock:        []string{"stock", "stock_qty", "quantity", "inventory"},
	sizes:        []string{"sizes", "size_options", "variants"},
	rating:       []string{"rating", "average_rating", "avg_rating", "rating_avg"},
	createdAt:    []string{"created_at", "createdAt"},
}

// NormalizeProduct maps one catalog product, bare or wrapped as {"product": ...}.
func NormalizeProduct(raw gjson.Result) (Product, Issues) {
	c := NewCoercer("product", Unwrap(raw))
	if nested := c.Object("product"); !nested.Empty() {
		c = nested
	}
	p := product(c)
	return p, c.Issues()
}

// NormalizeProducts maps a product list response.
func NormalizeProducts(raw gjson.Result) (List[Product], Issues) {
	return collect(raw, []string{"products"}, func(elem gjson.Result) (Product, Issues) {
		c := NewCoercer("product", elem)
		return product(c), c.Issues()
	})
}

func product(c *Coercer) Product {
	f := productFields
	p := Product{
		ID:           c.String(f.id...),
		Name:         c.String(f.name...),
		Slug:         c.String(f.slug...),
		Description:  c.String(f.description...),
		Price:        c.Money(f.price...),
		Image:        c.String(f.image...),
		Images:       c.Strings(f.images...),
		CategoryID:   c.String(f.categoryID...),
		CategoryName: c.String(f.categoryName...),
		Stock:        c.Int(f.stock...),
		Sizes:        c.Strings(f.sizes...),
		Rating:       c.Float(f.rating...),
		CreatedAt:    c.Time(f.createdAt...),
	}
	if p.Images == nil {
		p.Images = []string{}
	}
	if p.Image == "" && len(p.Images) > 0 {
		p.Image = p.Images[0]
	}
	if p.Sizes == nil {
		p.Sizes = []string{}
	}
	if p.Price.IsNegative() {
		c.report("price", "negative price clamped to 0", p.Price.String())
		p.Price = decimal.Zero
	}
	if p.Stock < 0 {
		p.Stock = 0
	}
	p.Availability, p.LeadDays = availability(c)
	return p
}
