package controllers

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/shopspring/decimal"

	cartsvc "github.com/ersha-ecosystem/storefront/internal/cart"
)

func decodeCart(t *testing.T, rec *httptest.ResponseRecorder) cartsvc.Summary {
	t.Helper()
	var body struct {
		Data cartsvc.Summary `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	return body.Data
}

func TestCartFetchReturnsNormalizedSummary(t *testing.T) {
	fb, client := newFakeBackend(t)
	fb.on(http.MethodGet, "/api/orders/cart/", http.StatusOK, twoLineCart)

	rec := httptest.NewRecorder()
	CartFetch(newSessions(t, client), nil).ServeHTTP(rec, sessionRequest(http.MethodGet, "/api/v1/cart", "", nil))

	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	summary := decodeCart(t, rec)
	if len(summary.Items) != 2 {
		t.Fatalf("expected 2 items, got %d", len(summary.Items))
	}
	if !summary.TotalPrice.Equal(decimal.NewFromInt(250)) {
		t.Fatalf("expected total 250, got %s", summary.TotalPrice)
	}
}

func TestCartFetchRequiresSession(t *testing.T) {
	_, client := newFakeBackend(t)
	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/api/v1/cart", nil)
	CartFetch(newSessions(t, client), nil).ServeHTTP(rec, req)
	if rec.Code != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", rec.Code)
	}
}

func TestCartAddItemWritesThenReloads(t *testing.T) {
	fb, client := newFakeBackend(t)
	fb.on(http.MethodPost, "/api/orders/cart/add/", http.StatusCreated, `{"id":3}`)
	fb.on(http.MethodGet, "/api/orders/cart/", http.StatusOK, twoLineCart)

	rec := httptest.NewRecorder()
	body := `{"product_id":"10","quantity":"1.5"}`
	CartAddItem(newSessions(t, client), nil).ServeHTTP(rec, sessionRequest(http.MethodPost, "/api/v1/cart/items", body, nil))

	if rec.Code != http.StatusCreated {
		t.Fatalf("expected 201, got %d: %s", rec.Code, rec.Body.String())
	}
	if fb.called(http.MethodPost, "/api/orders/cart/add/") != 1 || fb.called(http.MethodGet, "/api/orders/cart/") != 1 {
		t.Fatalf("expected one write and one reload, got %v", fb.calls)
	}
}

func TestCartAddItemRejectsMissingProduct(t *testing.T) {
	fb, client := newFakeBackend(t)
	rec := httptest.NewRecorder()
	CartAddItem(newSessions(t, client), nil).ServeHTTP(rec, sessionRequest(http.MethodPost, "/api/v1/cart/items", `{"quantity":"1"}`, nil))
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if len(fb.calls) != 0 {
		t.Fatalf("expected no backend calls, got %v", fb.calls)
	}
}

func TestCartUpdateItemBelowMinimumSkipsBackend(t *testing.T) {
	fb, client := newFakeBackend(t)
	rec := httptest.NewRecorder()
	req := sessionRequest(http.MethodPatch, "/api/v1/cart/items/1", `{"quantity":"0"}`, map[string]string{"itemId": "1"})
	CartUpdateItem(newSessions(t, client), nil).ServeHTTP(rec, req)
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	if len(fb.calls) != 0 {
		t.Fatalf("expected no backend calls, got %v", fb.calls)
	}
}

func TestCartUpdateItemSurfacesBackendMessage(t *testing.T) {
	fb, client := newFakeBackend(t)
	fb.on(http.MethodPatch, "/api/orders/cart/items/1/", http.StatusBadRequest, `{"detail":"Insufficient stock"}`)

	rec := httptest.NewRecorder()
	req := sessionRequest(http.MethodPatch, "/api/v1/cart/items/1", `{"quantity":"40"}`, map[string]string{"itemId": "1"})
	CartUpdateItem(newSessions(t, client), nil).ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", rec.Code)
	}
	var body struct {
		Error struct {
			Code    string `json:"code"`
			Message string `json:"message"`
		} `json:"error"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Error.Message != "could not update item quantity: Insufficient stock" {
		t.Fatalf("unexpected message %q", body.Error.Message)
	}
	if fb.called(http.MethodGet, "/api/orders/cart/") != 0 {
		t.Fatalf("failed write must not reload")
	}
}

func TestCartRemoveAndClear(t *testing.T) {
	fb, client := newFakeBackend(t)
	fb.on(http.MethodDelete, "/api/orders/cart/items/2/", http.StatusNoContent, ``)
	fb.on(http.MethodDelete, "/api/orders/cart/clear/", http.StatusNoContent, ``)
	fb.on(http.MethodGet, "/api/orders/cart/", http.StatusOK, `[]`)
	sessions := newSessions(t, client)

	rec := httptest.NewRecorder()
	CartRemoveItem(sessions, nil).ServeHTTP(rec, sessionRequest(http.MethodDelete, "/api/v1/cart/items/2", "", map[string]string{"itemId": "2"}))
	if rec.Code != http.StatusOK {
		t.Fatalf("remove: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}

	rec = httptest.NewRecorder()
	CartClear(sessions, nil).ServeHTTP(rec, sessionRequest(http.MethodDelete, "/api/v1/cart", "", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("clear: expected 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if summary := decodeCart(t, rec); !summary.IsEmpty() {
		t.Fatalf("expected empty cart after clear, got %+v", summary)
	}
	if fb.called(http.MethodGet, "/api/orders/cart/") != 1 {
		t.Fatalf("expected only the remove to reload, got %v", fb.calls)
	}
}
