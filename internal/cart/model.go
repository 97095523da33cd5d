package cart

import "github.com/shopspring/decimal"

// MinQuantity is the smallest quantity a cart line may hold.
var MinQuantity = decimal.New(1, -2)

// Product is the product reference embedded in a cart line.
type Product struct {
	ID         string          `json:"id"`
	Name       string          `json:"name"`
	UnitPrice  decimal.Decimal `json:"unit_price"`
	Unit       string          `json:"unit,omitempty"`
	Image      string          `json:"image,omitempty"`
	FarmerName string          `json:"farmer_name,omitempty"`
	Location   string          `json:"location,omitempty"`
}

// Item is one cart line. TotalPrice is always Quantity × Product.UnitPrice.
type Item struct {
	ID         string          `json:"id"`
	CartID     string          `json:"cart_id,omitempty"`
	Product    Product         `json:"product"`
	Quantity   decimal.Decimal `json:"quantity"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// Summary is a projection over the cart items; it is never stored on its own.
type Summary struct {
	Items      []Item          `json:"items"`
	TotalItems decimal.Decimal `json:"total_items"`
	TotalPrice decimal.Decimal `json:"total_price"`
}

// IsEmpty reports whether the cart has no lines.
func (s Summary) IsEmpty() bool {
	return len(s.Items) == 0
}

// Summarize recomputes every line total and the cart totals from quantities and unit prices.
func Summarize(items []Item) Summary {
	out := Summary{
		Items:      make([]Item, 0, len(items)),
		TotalItems: decimal.Zero,
		TotalPrice: decimal.Zero,
	}
	for _, item := range items {
		item.TotalPrice = item.Quantity.Mul(item.Product.UnitPrice)
		out.TotalItems = out.TotalItems.Add(item.Quantity)
		out.TotalPrice = out.TotalPrice.Add(item.TotalPrice)
		out.Items = append(out.Items, item)
	}
	return out
}

// Empty returns the empty cart projection.
func Empty() Summary {
	return Summarize(nil)
}
