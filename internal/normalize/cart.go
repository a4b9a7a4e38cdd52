package normalize

import (
	"github.com/shopspring/decimal"
	"github.com/tidwall/gjson"

	"github.com/florista/bouquet-bff/pkg/enums"
)

// CartItem is one line of a cart or order.
type CartItem struct {
	ID           string             `json:"id"`
	ProductID    string             `json:"product_id"`
	Name         string             `json:"name"`
	Image        string             `json:"image"`
	Price        decimal.Decimal    `json:"price"`
	Quantity     int                `json:"quantity"`
	Size         string             `json:"size"`
	Availability enums.Availability `json:"availability,omitempty"`
	// LeadDays may exceed every availability class.
	LeadDays int `json:"lead_days"`
}

// LineTotal is price times quantity.
func (i CartItem) LineTotal() decimal.Decimal {
	return i.Price.Mul(decimal.NewFromInt(int64(i.Quantity)))
}

// Cart is the signed-in user's basket.
type Cart struct {
	ID         string          `json:"id"`
	Items      []CartItem      `json:"items"`
	TotalItems int             `json:"total_items"`
	Subtotal   decimal.Decimal `json:"subtotal"`
}

// IsEmpty reports whether the cart has no lines.
func (c Cart) IsEmpty() bool {
	return len(c.Items) == 0
}

// LeadDays lists each line's preparation time in days.
func (c Cart) LeadDays() []int {
	out := make([]int, 0, len(c.Items))
	for _, item := range c.Items {
		out = append(out, item.LeadDays)
	}
	return out
}

var cartItemFields = struct {
	id, productID, name, image, price, quantity, size []string
}{
	id:        []string{"id", "cart_item_id", "cartItemId", "item_id"},
	productID: []string{"product_id", "productId", "product.id", "product.product_id"},
	name:      []string{"name", "product_name", "productName", "product.name", "title", "product.title"},
	image: []string{
		"image", "image_url", "imageUrl", "thumbnail",
		"product.image", "product.image_url", "product.thumbnail",
		"images.0", "images.0.url", "product.images.0", "product.images.0.url",
	},
	price: []string{
		"price", "unit_price", "unitPrice", "product_price",
		"product.price", "product.unit_price", "product.sale_price",
	},
	quantity: []string{"quantity", "qty", "count"},
	size:     []string{"size", "size_name", "variant", "variant_name", "product.size", "option.size"},
}

// cartItem maps one upstream cart or order line. Quantity is at least 1 and
// price never negative.
func cartItem(c *Coercer) CartItem {
	f := cartItemFields
	item := CartItem{
		ID:        c.String(f.id...),
		ProductID: c.String(f.productID...),
		Name:      c.String(f.name...),
		Image:     c.String(f.image...),
		Price:     c.Money(f.price...),
		Quantity:  c.Int(f.quantity...),
		Size:      c.String(f.size...),
	}
	if item.ID == "" {
		item.ID = item.ProductID
	}
	if item.Quantity < 1 {
		if c.Has(f.quantity...) {
			c.report("quantity", "clamped to 1", item.Quantity)
		}
		item.Quantity = 1
	}
	if item.Price.IsNegative() {
		c.report("price", "negative price clamped to 0", item.Price.String())
		item.Price = decimal.Zero
	}
	item.Availability, item.LeadDays = availability(c)
	return item
}

var cartFields = struct {
	id, items []string
}{
	id:    []string{"id", "cart_id", "cartId"},
	items: []string{"items", "cart_items", "cartItems", "details", "lines", "products"},
}

// NormalizeCart maps a cart response, bare or wrapped as {"cart": ...}. A bare
// array is read as the item list.
// Totals are recomputed from the lines.
func NormalizeCart(raw gjson.Result) (Cart, Issues) {
	raw = Unwrap(raw)
	c := NewCoercer("cart", raw)
	if nested := c.Object("cart"); !nested.Empty() {
		c = nested
	}

	elems := c.List(cartFields.items...)
	if raw.IsArray() {
		elems = elements(raw)
	}

	cart := Cart{
		ID:       c.String(cartFields.id...),
		Items:    make([]CartItem, 0, len(elems)),
		Subtotal: decimal.Zero,
	}
	for _, elem := range elems {
		item := cartItem(c.child("cart_item", elem))
		cart.Items = append(cart.Items, item)
		cart.TotalItems += item.Quantity
		cart.Subtotal = cart.Subtotal.Add(item.LineTotal())
	}
	return cart, c.Issues()
}
