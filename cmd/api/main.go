package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"

	"github.com/ersha-ecosystem/storefront/api/routes"
	"github.com/ersha-ecosystem/storefront/internal/cart"
	"github.com/ersha-ecosystem/storefront/internal/checkout"
	"github.com/ersha-ecosystem/storefront/internal/notifications"
	"github.com/ersha-ecosystem/storefront/internal/verification"
	"github.com/ersha-ecosystem/storefront/pkg/backend"
	"github.com/ersha-ecosystem/storefront/pkg/config"
	"github.com/ersha-ecosystem/storefront/pkg/instance"
	"github.com/ersha-ecosystem/storefront/pkg/logger"
	"github.com/ersha-ecosystem/storefront/pkg/metrics"
	"github.com/ersha-ecosystem/storefront/pkg/redis"
)

const shutdownTimeout = 15 * time.Second

func main() {
	logg := logger.New(logger.Options{ServiceName: "storefront-api"})

	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	cfg, err := config.Load()
	requireResource(logg, "config", err)

	logg = logger.New(logger.Options{
		ServiceName: "storefront-api",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})

	if err := cfg.Payment.Validate(); err != nil {
		// Checkout answers with setup instructions until the key is fixed; the rest of the API still serves.
		ctx := logg.WithFields(context.Background(), map[string]any{
			"reason":       err.Error(),
			"instructions": cfg.Payment.SetupInstructions(),
		})
		logg.Warn(ctx, "payment is not configured")
	}

	redisClient, err := redis.New(context.Background(), cfg.Redis, logg)
	requireResource(logg, "redis", err)
	defer func() {
		if err := redisClient.Close(); err != nil {
			logg.Error(context.Background(), "error closing redis", err)
		}
	}()

	backendClient, err := backend.NewClient(cfg.Backend, logg)
	requireResource(logg, "backend client", err)

	registry := prometheus.NewRegistry()
	registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	sessions, err := cart.NewSessions(backendClient, cfg.App.SessionIdleTTL, logg)
	requireResource(logg, "cart sessions", err)

	pendingStore, err := checkout.NewPendingStore(redisClient, cfg.PendingOrders.TTL)
	requireResource(logg, "pending order store", err)

	checkoutService, err := checkout.NewService(checkout.ServiceParams{
		Backend:    backendClient,
		Pending:    pendingStore,
		Payment:    cfg.Payment,
		AppBaseURL: cfg.App.BaseURL,
		Metrics:    metrics.NewCheckoutMetrics(registry),
		Logger:     logg,
	})
	requireResource(logg, "checkout service", err)

	verificationService, err := verification.NewService(backendClient, logg)
	requireResource(logg, "verification service", err)

	notificationsService, err := notifications.NewService(backendClient)
	requireResource(logg, "notifications service", err)

	addr := ":" + cfg.App.Port
	if port := os.Getenv("PORT"); port != "" {
		addr = ":" + port
	}
	ctx := logg.WithFields(context.Background(), map[string]any{
		"env":      cfg.App.Env,
		"addr":     addr,
		"instance": instance.GetID(),
		"backend":  cfg.Backend.BaseURL,
	})

	server := &http.Server{
		Addr: addr,
		Handler: routes.NewRouter(
			cfg,
			logg,
			redisClient,
			redisClient,
			registry,
			sessions,
			checkout.NewFlows(),
			backendClient,
			checkoutService,
			verificationService,
			notificationsService,
		),
		ReadHeaderTimeout: 10 * time.Second,
	}

	runCtx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	errCh := make(chan error, 1)
	go func() {
		logg.Info(ctx, "starting api server")
		errCh <- server.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if err != nil && !errors.Is(err, http.ErrServerClosed) {
			logg.Error(ctx, "api server stopped unexpectedly", err)
			os.Exit(1)
		}
	case <-runCtx.Done():
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := server.Shutdown(shutdownCtx); err != nil {
			logg.Error(ctx, "api server shutdown failed", err)
		}
		logg.Info(ctx, "api server shutting down gracefully")
	}
}

func requireResource(logg *logger.Logger, name string, err error) {
	if err == nil {
		return
	}
	logg.Error(logg.WithField(context.Background(), "resource", name), "failed to bootstrap "+name, err)
	os.Exit(1)
}
