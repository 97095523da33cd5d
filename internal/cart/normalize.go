package cart

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/shopspring/decimal"

	"github.com/ersha-ecosystem/storefront/pkg/backend"
)

type wireProduct struct {
	ID         backend.ID       `json:"id"`
	Name       string           `json:"name"`
	Price      *decimal.Decimal `json:"price"`
	UnitPrice  *decimal.Decimal `json:"unit_price"`
	Unit       string           `json:"unit"`
	Image      string           `json:"image"`
	FarmerName string           `json:"farmer_name"`
	Location   string           `json:"location"`
	Farmer     *struct {
		FirstName string `json:"first_name"`
		LastName  string `json:"last_name"`
		Location  string `json:"location"`
	} `json:"farmer"`
}

type wireItem struct {
	ID             backend.ID       `json:"id"`
	Cart           backend.ID       `json:"cart"`
	Product        json.RawMessage  `json:"product"`
	ProductDetails *wireProduct     `json:"product_details"`
	Quantity       decimal.Decimal  `json:"quantity"`
	UnitPrice      *decimal.Decimal `json:"unit_price"`
}

// Normalize turns any of the backend's cart document shapes into a Summary:
// a summary object with "items", a bare array of items, or a paginated
// object with "results". Totals are recomputed locally.
func Normalize(raw json.RawMessage) (Summary, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return Empty(), nil
	}

	var wire []wireItem
	switch trimmed[0] {
	case '[':
		if err := json.Unmarshal(trimmed, &wire); err != nil {
			return Empty(), fmt.Errorf("decode cart items: %w", err)
		}
	case '{':
		var doc struct {
			Items   *[]wireItem `json:"items"`
			Results *[]wireItem `json:"results"`
		}
		if err := json.Unmarshal(trimmed, &doc); err != nil {
			return Empty(), fmt.Errorf("decode cart: %w", err)
		}
		switch {
		case doc.Items != nil:
			wire = *doc.Items
		case doc.Results != nil:
			wire = *doc.Results
		}
	default:
		return Empty(), fmt.Errorf("unexpected cart payload starting with %q", trimmed[0])
	}

	items := make([]Item, 0, len(wire))
	for i, w := range wire {
		item, err := w.toItem()
		if err != nil {
			return Empty(), fmt.Errorf("cart item %d: %w", i, err)
		}
		items = append(items, item)
	}
	return Summarize(items), nil
}

func (w wireItem) toItem() (Item, error) {
	product, err := w.product()
	if err != nil {
		return Item{}, err
	}
	if w.UnitPrice != nil {
		product.UnitPrice = *w.UnitPrice
	}
	return Item{
		ID:       w.ID.String(),
		CartID:   w.Cart.String(),
		Product:  product,
		Quantity: w.Quantity,
	}, nil
}

// product accepts "product" as either an embedded object or a bare id, with
// "product_details" carrying the object in the latter case.
func (w wireItem) product() (Product, error) {
	var wp wireProduct
	raw := bytes.TrimSpace(w.Product)
	switch {
	case len(raw) > 0 && raw[0] == '{':
		if err := json.Unmarshal(raw, &wp); err != nil {
			return Product{}, fmt.Errorf("decode product: %w", err)
		}
	case w.ProductDetails != nil:
		wp = *w.ProductDetails
		if wp.ID == "" && len(raw) > 0 {
			if err := json.Unmarshal(raw, &wp.ID); err != nil {
				return Product{}, fmt.Errorf("decode product id: %w", err)
			}
		}
	case len(raw) > 0 && !bytes.Equal(raw, []byte("null")):
		if err := json.Unmarshal(raw, &wp.ID); err != nil {
			return Product{}, fmt.Errorf("decode product id: %w", err)
		}
	}
	return wp.toProduct(), nil
}

func (wp wireProduct) toProduct() Product {
	p := Product{
		ID:         wp.ID.String(),
		Name:       wp.Name,
		UnitPrice:  decimal.Zero,
		Unit:       wp.Unit,
		Image:      wp.Image,
		FarmerName: wp.FarmerName,
		Location:   wp.Location,
	}
	switch {
	case wp.UnitPrice != nil:
		p.UnitPrice = *wp.UnitPrice
	case wp.Price != nil:
		p.UnitPrice = *wp.Price
	}
	if wp.Farmer != nil {
		if p.FarmerName == "" {
			p.FarmerName = strings.TrimSpace(wp.Farmer.FirstName + " " + wp.Farmer.LastName)
		}
		if p.Location == "" {
			p.Location = wp.Farmer.Location
		}
	}
	return p
}
