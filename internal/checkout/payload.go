package checkout

import (
	"github.com/shopspring/decimal"

	"github.com/ersha-ecosystem/storefront/internal/cart"
	"github.com/ersha-ecosystem/storefront/pkg/backend"
	"github.com/ersha-ecosystem/storefront/pkg/types"
)

const paymentMethodChapa = "chapa"

type OrderItem struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
	UnitPrice decimal.Decimal `json:"unit_price"`
}

type Customer struct {
	FirstName string `json:"first_name"`
	LastName  string `json:"last_name"`
	Email     string `json:"email"`
	Phone     string `json:"phone"`
}

// OrderPayload is the order-create request sent to the backend.
type OrderPayload struct {
	Items               []OrderItem     `json:"items"`
	DeliveryAddress     types.Address   `json:"delivery_address"`
	ShippingAddress     string          `json:"shipping_address"`
	Customer            Customer        `json:"customer"`
	LogisticsProviderID string          `json:"logistics_provider_id"`
	PaymentMethod       string          `json:"payment_method"`
	TotalAmount         decimal.Decimal `json:"total_amount"`
	Notes               string          `json:"notes,omitempty"`
}

func buildOrderPayload(summary cart.Summary, form FormData, provider backend.LogisticsProvider) OrderPayload {
	items := make([]OrderItem, 0, len(summary.Items))
	for _, item := range summary.Items {
		items = append(items, OrderItem{
			ProductID: item.Product.ID,
			Quantity:  item.Quantity,
			UnitPrice: item.Product.UnitPrice,
		})
	}
	address := form.DeliveryAddress()
	return OrderPayload{
		Items:           items,
		DeliveryAddress: address,
		ShippingAddress: address.OneLine(),
		Customer: Customer{
			FirstName: form.FirstName,
			LastName:  form.LastName,
			Email:     form.Email,
			Phone:     form.Phone,
		},
		LogisticsProviderID: provider.ID.String(),
		PaymentMethod:       paymentMethodChapa,
		TotalAmount:         summary.TotalPrice,
		Notes:               address.Instructions,
	}
}
