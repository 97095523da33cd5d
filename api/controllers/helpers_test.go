package controllers

import (
	"context"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/go-chi/chi/v5"
	goredis "github.com/redis/go-redis/v9"

	"github.com/ersha-ecosystem/storefront/api/middleware"
	cartsvc "github.com/ersha-ecosystem/storefront/internal/cart"
	checkoutsvc "github.com/ersha-ecosystem/storefront/internal/checkout"
	"github.com/ersha-ecosystem/storefront/pkg/backend"
	"github.com/ersha-ecosystem/storefront/pkg/config"
	"github.com/ersha-ecosystem/storefront/pkg/redis"
)

const testSession = "user:7"

const twoLineCart = `{"items":[
	{"id":1,"product":{"id":10,"name":"Teff","price":"100.00"},"quantity":"2"},
	{"id":2,"product":{"id":11,"name":"Coffee","price":"50.00"},"quantity":"1"}
]}`

// fakeBackend answers backend API calls from canned bodies keyed by "METHOD path".
type fakeBackend struct {
	mu        sync.Mutex
	responses map[string]cannedResponse
	calls     []string
	// hold parks matching requests until the channel is closed.
	hold    map[string]chan struct{}
	entered chan string
}

type cannedResponse struct {
	status int
	body   string
}

func newFakeBackend(t *testing.T) (*fakeBackend, *backend.Client) {
	t.Helper()
	fb := &fakeBackend{
		responses: map[string]cannedResponse{},
		hold:      map[string]chan struct{}{},
		entered:   make(chan string, 16),
	}
	srv := httptest.NewServer(fb)
	t.Cleanup(srv.Close)
	client, err := backend.NewClient(config.BackendConfig{BaseURL: srv.URL, Timeout: time.Second}, nil)
	if err != nil {
		t.Fatalf("new backend client: %v", err)
	}
	return fb, client
}

func (f *fakeBackend) on(method, path string, status int, body string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.responses[method+" "+path] = cannedResponse{status: status, body: body}
}

func (f *fakeBackend) holdUntil(method, path string, release chan struct{}) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.hold[method+" "+path] = release
}

func (f *fakeBackend) called(method, path string) int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, c := range f.calls {
		if c == method+" "+path {
			n++
		}
	}
	return n
}

func (f *fakeBackend) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	key := r.Method + " " + r.URL.Path
	f.mu.Lock()
	f.calls = append(f.calls, key)
	res, ok := f.responses[key]
	gate := f.hold[key]
	f.mu.Unlock()
	if gate != nil {
		f.entered <- key
		<-gate
	}
	if !ok {
		w.WriteHeader(http.StatusNotFound)
		_, _ = io.WriteString(w, `{"detail":"Not found."}`)
		return
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(res.status)
	_, _ = io.WriteString(w, res.body)
}

func newSessions(t *testing.T, client *backend.Client) *cartsvc.Sessions {
	t.Helper()
	sessions, err := cartsvc.NewSessions(client, time.Hour, nil)
	if err != nil {
		t.Fatalf("new sessions: %v", err)
	}
	return sessions
}

func newPendingStore(t *testing.T) checkoutsvc.PendingStore {
	t.Helper()
	mr := miniredis.RunT(t)
	raw := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = raw.Close() })
	store, err := checkoutsvc.NewPendingStore(redis.Wrap(raw), time.Hour)
	if err != nil {
		t.Fatalf("new pending store: %v", err)
	}
	return store
}

func testPaymentConfig() config.PaymentConfig {
	return config.PaymentConfig{
		PublicKey:   "CHAPUBK_TEST-abc123",
		CheckoutURL: "https://checkout.example.com/v1/hosted/pay",
		Currency:    "ETB",
		CallbackURL: "https://api.example.com/api/payments/chapa/callback/",
		ReturnPath:  "/payment/success",
		Title:       "Ersha Order",
		Description: "Payment for agricultural products",
	}
}

func newCheckoutService(t *testing.T, client *backend.Client, payment config.PaymentConfig) (checkoutsvc.Service, checkoutsvc.PendingStore) {
	t.Helper()
	pending := newPendingStore(t)
	svc, err := checkoutsvc.NewService(checkoutsvc.ServiceParams{
		Backend:    client,
		Pending:    pending,
		Payment:    payment,
		AppBaseURL: "https://shop.example.com",
	})
	if err != nil {
		t.Fatalf("new checkout service: %v", err)
	}
	return svc, pending
}

// sessionRequest builds a request carrying the auth middleware's context values.
func sessionRequest(method, target, body string, params map[string]string) *http.Request {
	var reader io.Reader
	if body != "" {
		reader = strings.NewReader(body)
	}
	req := httptest.NewRequest(method, target, reader)
	ctx := backend.WithToken(req.Context(), "tok")
	ctx = middleware.WithSessionKey(ctx, testSession)
	if len(params) > 0 {
		rctx := chi.NewRouteContext()
		for k, v := range params {
			rctx.URLParams.Add(k, v)
		}
		ctx = context.WithValue(ctx, chi.RouteCtxKey, rctx)
	}
	return req.WithContext(ctx)
}
