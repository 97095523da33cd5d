package controllers

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/ersha-ecosystem/storefront/pkg/config"
)

type fakePinger struct {
	err error
}

func (f fakePinger) Ping(context.Context) error { return f.err }

func testConfig() *config.Config {
	return &config.Config{
		App:     config.AppConfig{Env: "dev", BaseURL: "https://shop.example.com"},
		Backend: config.BackendConfig{BaseURL: "https://api.example.com"},
		Payment: testPaymentConfig(),
		Notifications: config.NotificationsConfig{
			PollInterval: 30 * time.Second,
			WebSocketURL: "wss://api.example.com/ws/notifications/",
		},
	}
}

func TestHealthLive(t *testing.T) {
	rec := httptest.NewRecorder()
	HealthLive(testConfig()).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/live", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	if rec.Header().Get(envHeader) != "dev" {
		t.Fatalf("expected env header, got %q", rec.Header().Get(envHeader))
	}
}

func TestHealthReadyReportsRedisFailure(t *testing.T) {
	cfg := testConfig()

	rec := httptest.NewRecorder()
	HealthReady(cfg, fakePinger{}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}

	rec = httptest.NewRecorder()
	HealthReady(cfg, fakePinger{err: errors.New("connection refused")}, nil).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/health/ready", nil))
	if rec.Code != http.StatusServiceUnavailable {
		t.Fatalf("expected 503, got %d", rec.Code)
	}
}

func TestPublicConfig(t *testing.T) {
	cfg := testConfig()

	rec := httptest.NewRecorder()
	PublicConfig(cfg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/public/config", nil))
	if rec.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rec.Code)
	}
	var body struct {
		Data publicConfigResponse `json:"data"`
	}
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if !body.Data.PaymentConfigured || body.Data.WebSocketURL != "wss://api.example.com/ws/notifications/" || body.Data.PollIntervalMS != 30000 {
		t.Fatalf("unexpected public config %+v", body.Data)
	}

	cfg.Payment.PublicKey = ""
	rec = httptest.NewRecorder()
	PublicConfig(cfg).ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/api/public/config", nil))
	if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if body.Data.PaymentConfigured {
		t.Fatalf("missing key must report payment unconfigured")
	}
}
