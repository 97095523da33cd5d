package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type tokenKey struct{}

// WithToken stores the caller's bearer token for outgoing backend requests.
func WithToken(ctx context.Context, token string) context.Context {
	if ctx == nil {
		ctx = context.Background()
	}
	return context.WithValue(ctx, tokenKey{}, token)
}

func TokenFromContext(ctx context.Context) string {
	if ctx == nil {
		return ""
	}
	if v, ok := ctx.Value(tokenKey{}).(string); ok {
		return v
	}
	return ""
}

// ID accepts both numeric and string identifiers from the backend.
type ID string

func (id *ID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*id = ""
		return nil
	}
	if data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*id = ID(s)
		return nil
	}
	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("id: %w", err)
	}
	*id = ID(n.String())
	return nil
}

func (id ID) String() string { return string(id) }

type AddCartItemRequest struct {
	ProductID string          `json:"product_id"`
	Quantity  decimal.Decimal `json:"quantity"`
}

type UpdateCartItemRequest struct {
	Quantity decimal.Decimal `json:"quantity"`
}

// CreatedOrder is the subset of the order-create response the storefront needs.
type CreatedOrder struct {
	ID          string          `json:"-"`
	OrderNumber string          `json:"order_number,omitempty"`
	Status      string          `json:"status,omitempty"`
	TotalAmount decimal.Decimal `json:"total_amount"`
}

func (o *CreatedOrder) UnmarshalJSON(data []byte) error {
	type alias CreatedOrder
	var wire struct {
		alias
		ID      ID `json:"id"`
		OrderID ID `json:"order_id"`
	}
	if err := json.Unmarshal(data, &wire); err != nil {
		return err
	}
	*o = CreatedOrder(wire.alias)
	o.ID = wire.ID.String()
	if o.ID == "" {
		o.ID = wire.OrderID.String()
	}
	return nil
}

type LogisticsProvider struct {
	ID           ID              `json:"id"`
	Name         string          `json:"name"`
	Description  string          `json:"description"`
	PricePerKM   decimal.Decimal `json:"price_per_km"`
	Rating       float64         `json:"rating"`
	ContactPhone string          `json:"contact_phone,omitempty"`
	ContactEmail string          `json:"contact_email,omitempty"`
}

type Profile struct {
	ID         ID     `json:"id"`
	Email      string `json:"email"`
	FirstName  string `json:"first_name"`
	LastName   string `json:"last_name"`
	Phone      string `json:"phone"`
	Address    string `json:"address"`
	City       string `json:"city"`
	Region     string `json:"region"`
	PostalCode string `json:"postal_code"`
	Role       string `json:"role"`
	IsVerified bool   `json:"is_verified"`
}

type AuthorizeResponse struct {
	AuthorizationURL string `json:"authorization_url"`
	State            string `json:"state,omitempty"`
}

type VerificationCallbackRequest struct {
	Code  string `json:"code"`
	State string `json:"state"`
}

type VerificationResult struct {
	Verified bool   `json:"verified"`
	Status   string `json:"status"`
	Message  string `json:"message,omitempty"`
}

type Notification struct {
	ID        ID        `json:"id"`
	Title     string    `json:"title"`
	Message   string    `json:"message"`
	Type      string    `json:"notification_type,omitempty"`
	IsRead    bool      `json:"is_read"`
	CreatedAt time.Time `json:"created_at"`
}

// DecodeList accepts a bare JSON array or an object wrapping the array in
// "results" (paginated) or "data".
func DecodeList[T any](raw json.RawMessage) ([]T, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || bytes.Equal(trimmed, []byte("null")) {
		return []T{}, nil
	}
	if trimmed[0] == '[' {
		var out []T
		if err := json.Unmarshal(trimmed, &out); err != nil {
			return nil, err
		}
		return out, nil
	}
	var wrapper struct {
		Results *[]T `json:"results"`
		Data    *[]T `json:"data"`
	}
	if err := json.Unmarshal(trimmed, &wrapper); err != nil {
		return nil, err
	}
	switch {
	case wrapper.Results != nil:
		return *wrapper.Results, nil
	case wrapper.Data != nil:
		return *wrapper.Data, nil
	}
	return nil, fmt.Errorf("unexpected list shape: %s", strings.TrimSpace(string(truncate(trimmed, 80))))
}

func truncate(b []byte, n int) []byte {
	if len(b) <= n {
		return b
	}
	return b[:n]
}
