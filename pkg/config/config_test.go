package config

import (
	"errors"
	"testing"
	"time"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}

	if cfg.Backend.BaseURL != "http://localhost:8000" {
		t.Fatalf("unexpected backend url: %q", cfg.Backend.BaseURL)
	}
	if cfg.Backend.Timeout != 15*time.Second {
		t.Fatalf("expected backend timeout 15s, got %v", cfg.Backend.Timeout)
	}
	if cfg.Payment.PublicKey != ChapaPublicKeyPlaceholder {
		t.Fatalf("expected placeholder public key, got %q", cfg.Payment.PublicKey)
	}
	if cfg.Notifications.WebSocketURL == "" {
		t.Fatal("expected websocket url fallback")
	}
	if len(cfg.CORS.AllowedOrigins) != 2 {
		t.Fatalf("expected two default origins, got %v", cfg.CORS.AllowedOrigins)
	}
}

func TestLoad_Overrides(t *testing.T) {
	t.Setenv(EnvAppEnv, "prod")
	t.Setenv(EnvBackendURL, "https://api.ersha.et")
	t.Setenv(EnvChapaPublicKey, "CHAPUBK-live-123")
	t.Setenv(EnvPendingOrderTTL, "30m")

	cfg, err := Load()
	if err != nil {
		t.Fatalf("Load() returned unexpected error: %v", err)
	}
	if !cfg.App.IsProd() {
		t.Fatalf("expected prod env, got %q", cfg.App.Env)
	}
	if cfg.Backend.BaseURL != "https://api.ersha.et" {
		t.Fatalf("unexpected backend url: %q", cfg.Backend.BaseURL)
	}
	if cfg.PendingOrders.TTL != 30*time.Minute {
		t.Fatalf("expected pending ttl 30m, got %v", cfg.PendingOrders.TTL)
	}
}

func TestLoad_InvalidURL(t *testing.T) {
	t.Setenv(EnvBackendURL, "not a url")
	t.Setenv(EnvAppBaseURL, "/relative")

	if _, err := Load(); err == nil {
		t.Fatal("expected invalid urls to return an error")
	}
}

func TestAppConfigEnvHelpers(t *testing.T) {
	devConfig := AppConfig{Env: "DEV"}
	if !devConfig.IsDev() {
		t.Fatalf("expected IsDev true for %q", devConfig.Env)
	}
	if devConfig.IsProd() {
		t.Fatalf("expected IsProd false for %q", devConfig.Env)
	}
}

func TestPaymentConfigValidate(t *testing.T) {
	tests := []struct {
		name string
		key  string
		want error
	}{
		{"missing", "  ", ErrPaymentKeyMissing},
		{"placeholder", ChapaPublicKeyPlaceholder, ErrPaymentKeyPlaceholder},
		{"wrong prefix", "PUBK_TEST-abc", ErrPaymentKeyPrefix},
		{"test key", "CHAPUBK_TEST-abc123", nil},
		{"live key", "CHAPUBK-abc123", ErrPaymentKeyPrefix},
		{"live underscore key", "CHAPUBK_live123", nil},
	}

	for _, tt := range tests {
		err := PaymentConfig{PublicKey: tt.key}.Validate()
		if !errors.Is(err, tt.want) {
			t.Fatalf("%s: expected %v got %v", tt.name, tt.want, err)
		}
	}
}

func TestPaymentReturnURL(t *testing.T) {
	p := PaymentConfig{ReturnPath: "payment/success"}
	if got := p.ReturnURL("https://ersha.et/"); got != "https://ersha.et/payment/success" {
		t.Fatalf("unexpected return url %q", got)
	}
}

func TestVerificationReturnURL(t *testing.T) {
	v := VerificationConfig{ReturnPath: "/profile"}
	if got := v.ReturnURL("https://ersha.et"); got != "https://ersha.et/profile" {
		t.Fatalf("unexpected return url %q", got)
	}
	if got := (VerificationConfig{}).ReturnURL(" https://ersha.et/ "); got != "https://ersha.et" {
		t.Fatalf("expected bare base url, got %q", got)
	}
}
