package controllers

import (
	"net/http"

	"github.com/ersha-ecosystem/storefront/api/responses"
	"github.com/ersha-ecosystem/storefront/pkg/config"
	pkgerrors "github.com/ersha-ecosystem/storefront/pkg/errors"
	"github.com/ersha-ecosystem/storefront/pkg/logger"
	"github.com/ersha-ecosystem/storefront/pkg/redis"
)

const envHeader = "X-Ersha-Env"

func HealthLive(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		responses.WriteSuccess(w, map[string]string{"status": "live"})
	}
}

// HealthReady reports ready once Redis answers; the backend is not probed.
func HealthReady(cfg *config.Config, redisClient redis.Pinger, logg *logger.Logger) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set(envHeader, cfg.App.Env)
		if redisClient != nil {
			if err := redisClient.Ping(r.Context()); err != nil {
				responses.WriteError(r.Context(), logg, w, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "redis unavailable"))
				return
			}
		}
		responses.WriteSuccess(w, map[string]string{"status": "ready"})
	}
}

type publicConfigResponse struct {
	AppBaseURL        string `json:"app_base_url"`
	BackendURL        string `json:"backend_url"`
	WebSocketURL      string `json:"websocket_url"`
	PollIntervalMS    int64  `json:"notifications_poll_interval_ms"`
	PaymentConfigured bool   `json:"payment_configured"`
	Currency          string `json:"currency"`
}

// PublicConfig exposes the client-side settings browsers need.
func PublicConfig(cfg *config.Config) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		responses.WriteSuccess(w, publicConfigResponse{
			AppBaseURL:        cfg.App.BaseURL,
			BackendURL:        cfg.Backend.BaseURL,
			WebSocketURL:      cfg.Notifications.WebSocketURL,
			PollIntervalMS:    cfg.Notifications.PollInterval.Milliseconds(),
			PaymentConfigured: cfg.Payment.Configured(),
			Currency:          cfg.Payment.Currency,
		})
	}
}
