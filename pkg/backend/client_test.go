package backend

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ersha-ecosystem/storefront/pkg/config"
	pkgerrors "github.com/ersha-ecosystem/storefront/pkg/errors"
)

func newTestClient(t *testing.T, handler http.HandlerFunc) *Client {
	t.Helper()
	srv := httptest.NewServer(handler)
	t.Cleanup(srv.Close)
	client, err := NewClient(config.BackendConfig{BaseURL: srv.URL + "/", Timeout: time.Second}, nil)
	require.NoError(t, err)
	return client
}

func TestNewClientRequiresBaseURL(t *testing.T) {
	_, err := NewClient(config.BackendConfig{BaseURL: "  "}, nil)
	require.Error(t, err)
}

func TestAddCartItemForwardsTokenAndBody(t *testing.T) {
	var gotAuth, gotContentType string
	var gotBody map[string]any
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "/api/orders/cart/add/", r.URL.Path)
		gotAuth = r.Header.Get("Authorization")
		gotContentType = r.Header.Get("Content-Type")
		_ = json.NewDecoder(r.Body).Decode(&gotBody)
		w.WriteHeader(http.StatusCreated)
		_, _ = io.WriteString(w, `{"id": 9}`)
	})

	ctx := WithToken(context.Background(), "tok-123")
	err := client.AddCartItem(ctx, AddCartItemRequest{ProductID: "42", Quantity: decimal.RequireFromString("1.5")})
	require.NoError(t, err)

	assert.Equal(t, "Bearer tok-123", gotAuth)
	assert.Equal(t, "application/json", gotContentType)
	assert.Equal(t, "42", gotBody["product_id"])
	assert.Equal(t, "1.5", gotBody["quantity"])
}

func TestRequestWithoutTokenOmitsAuthorization(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Empty(t, r.Header.Get("Authorization"))
		_, _ = io.WriteString(w, `[]`)
	})
	_, err := client.GetCart(context.Background())
	require.NoError(t, err)
}

func TestUpdateAndRemoveCartItemPaths(t *testing.T) {
	var calls []string
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		calls = append(calls, r.Method+" "+r.URL.Path)
		w.WriteHeader(http.StatusNoContent)
	})

	ctx := context.Background()
	require.NoError(t, client.UpdateCartItem(ctx, "7", UpdateCartItemRequest{Quantity: decimal.NewFromInt(3)}))
	require.NoError(t, client.RemoveCartItem(ctx, "7"))
	require.NoError(t, client.ClearCart(ctx))

	assert.Equal(t, []string{
		"PATCH /api/orders/cart/items/7/",
		"DELETE /api/orders/cart/items/7/",
		"DELETE /api/orders/cart/clear/",
	}, calls)
}

func TestStatusMapping(t *testing.T) {
	tests := []struct {
		status int
		body   string
		code   pkgerrors.Code
		msg    string
	}{
		{http.StatusUnauthorized, `{"detail":"Token expired"}`, pkgerrors.CodeUnauthorized, "Token expired"},
		{http.StatusForbidden, ``, pkgerrors.CodeForbidden, "not allowed"},
		{http.StatusNotFound, `{"detail":"Not found."}`, pkgerrors.CodeNotFound, "Not found."},
		{http.StatusBadRequest, `{"quantity":["Ensure this value is greater than 0."]}`, pkgerrors.CodeValidation, "request rejected by backend"},
		{http.StatusBadGateway, `oops`, pkgerrors.CodeDependency, "backend request failed"},
	}

	for _, tt := range tests {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(tt.status)
			_, _ = io.WriteString(w, tt.body)
		})
		_, err := client.GetCart(context.Background())
		require.Error(t, err)
		typed := pkgerrors.As(err)
		require.NotNil(t, typed, "status %d", tt.status)
		assert.Equal(t, tt.code, typed.Code(), "status %d", tt.status)
		assert.Equal(t, tt.msg, typed.Message(), "status %d", tt.status)

		dump := pkgerrors.Dump(err)
		assert.Equal(t, tt.status, dump.UpstreamStatus)
		assert.Equal(t, "/api/orders/cart/", dump.UpstreamPath)
	}
}

func TestValidationDetailsCarryBackendBody(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = io.WriteString(w, `{"email":["Enter a valid email address."]}`)
	})
	_, err := client.CreateOrder(context.Background(), map[string]any{"a": 1})
	typed := pkgerrors.As(err)
	require.NotNil(t, typed)
	details, ok := typed.Details().(map[string]any)
	require.True(t, ok)
	assert.Contains(t, details, "email")
}

func TestUnreachableBackendIsDependencyError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	base := srv.URL
	srv.Close()

	client, err := NewClient(config.BackendConfig{BaseURL: base, Timeout: time.Second}, nil)
	require.NoError(t, err)
	_, err = client.GetCart(context.Background())
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}

func TestCreateOrderAcceptsNumericAndStringIDs(t *testing.T) {
	bodies := []string{`{"id": 101, "status":"pending"}`, `{"order_id":"ord-7"}`}
	want := []string{"101", "ord-7"}

	for i, body := range bodies {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			w.WriteHeader(http.StatusCreated)
			_, _ = io.WriteString(w, body)
		})
		order, err := client.CreateOrder(context.Background(), map[string]any{})
		require.NoError(t, err)
		assert.Equal(t, want[i], order.ID)
	}
}

func TestCreateOrderWithoutIDFails(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = io.WriteString(w, `{"status":"pending"}`)
	})
	_, err := client.CreateOrder(context.Background(), map[string]any{})
	assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
}

func TestListLogisticsProvidersShapes(t *testing.T) {
	bodies := []string{
		`[{"id":1,"name":"Fast Haul","price_per_km":"12.50","rating":4.5}]`,
		`{"count":1,"next":null,"results":[{"id":1,"name":"Fast Haul","price_per_km":12.5,"rating":4.5}]}`,
	}
	for _, body := range bodies {
		client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
			_, _ = io.WriteString(w, body)
		})
		providers, err := client.ListLogisticsProviders(context.Background())
		require.NoError(t, err)
		require.Len(t, providers, 1)
		assert.Equal(t, ID("1"), providers[0].ID)
		assert.True(t, providers[0].PricePerKM.Equal(decimal.RequireFromString("12.5")))
	}
}

func TestDecodeListRejectsUnknownShape(t *testing.T) {
	_, err := DecodeList[Notification](json.RawMessage(`{"foo":[]}`))
	require.Error(t, err)

	items, err := DecodeList[Notification](json.RawMessage(`null`))
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestVerificationCallbackPostsCodeAndState(t *testing.T) {
	client := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/auth/verification/callback/", r.URL.Path)
		var body VerificationCallbackRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "abc", body.Code)
		assert.Equal(t, "xyz", body.State)
		_, _ = io.WriteString(w, `{"verified":true,"status":"verified"}`)
	})
	res, err := client.VerificationCallback(context.Background(), VerificationCallbackRequest{Code: "abc", State: "xyz"})
	require.NoError(t, err)
	assert.True(t, res.Verified)
}

func TestBreakerOpensAfterConsecutiveUpstreamFailures(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusBadGateway)
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(config.BackendConfig{
		BaseURL:         srv.URL,
		Timeout:         time.Second,
		BreakerFailures: 2,
		BreakerCooldown: time.Minute,
	}, nil)
	require.NoError(t, err)

	for i := 0; i < 3; i++ {
		_, err = client.GetCart(context.Background())
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeDependency))
	}
	assert.Equal(t, 2, hits)
	assert.Equal(t, "backend temporarily unavailable", pkgerrors.As(err).Message())
}

func TestBreakerIgnoresClientErrors(t *testing.T) {
	hits := 0
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		hits++
		w.WriteHeader(http.StatusNotFound)
	}))
	t.Cleanup(srv.Close)

	client, err := NewClient(config.BackendConfig{BaseURL: srv.URL, BreakerFailures: 1}, nil)
	require.NoError(t, err)
	for i := 0; i < 3; i++ {
		_, err = client.GetProfile(context.Background())
		assert.True(t, pkgerrors.IsCode(err, pkgerrors.CodeNotFound))
	}
	assert.Equal(t, 3, hits)
}
