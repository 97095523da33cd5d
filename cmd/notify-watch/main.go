package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"

	"github.com/ersha-ecosystem/storefront/internal/notifications"
	"github.com/ersha-ecosystem/storefront/pkg/backend"
	"github.com/ersha-ecosystem/storefront/pkg/config"
	"github.com/ersha-ecosystem/storefront/pkg/instance"
	"github.com/ersha-ecosystem/storefront/pkg/logger"
	"github.com/ersha-ecosystem/storefront/pkg/metrics"
)

const tokenEnv = "ERSHA_NOTIFY_TOKEN"

func main() {
	logg := logger.New(logger.Options{ServiceName: "notify-watch"})
	if err := godotenv.Load(); err != nil {
		logg.Warn(context.Background(), ".env file not found, relying on environment")
	}

	token := flag.String("token", os.Getenv(tokenEnv), "bearer token of the user to watch (defaults to $"+tokenEnv+")")
	interval := flag.Duration("interval", 0, "poll interval (defaults to "+config.EnvPollInterval+")")
	metricsAddr := flag.String("metrics-addr", "", "address to serve /metrics on, e.g. :9102 (disabled when empty)")
	flag.Parse()

	if strings.TrimSpace(*token) == "" {
		fmt.Fprintf(os.Stderr, "missing -token or %s\n", tokenEnv)
		os.Exit(2)
	}

	cfg, err := config.Load()
	if err != nil {
		logg.Error(context.Background(), "failed to load config", err)
		os.Exit(1)
	}
	logg = logger.New(logger.Options{
		ServiceName: "notify-watch",
		Level:       logger.ParseLevel(cfg.App.LogLevel),
		WarnStack:   cfg.App.LogWarnStack,
	})
	if *interval <= 0 {
		*interval = cfg.Notifications.PollInterval
	}

	client, err := backend.NewClient(cfg.Backend, logg)
	if err != nil {
		logg.Error(context.Background(), "failed to create backend client", err)
		os.Exit(1)
	}

	registry := newRegistry()
	poller, err := notifications.NewPoller(notifications.PollerParams{
		Fetcher:  client,
		Interval: *interval,
		Key:      instance.GetID(),
		Handler:  logNotifications(logg),
		Metrics:  metrics.NewPollMetrics(registry),
		Logger:   logg,
	})
	if err != nil {
		logg.Error(context.Background(), "failed to create poller", err)
		os.Exit(1)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	ctx = backend.WithToken(ctx, strings.TrimSpace(*token))
	ctx = logg.WithFields(ctx, map[string]any{
		"env":      cfg.App.Env,
		"interval": interval.String(),
	})
	logg.Info(ctx, "watching notifications")

	if addr := strings.TrimSpace(*metricsAddr); addr != "" {
		go serveMetrics(ctx, newMetricsServer(addr, registry), logg)
	}

	if err := poller.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
		logg.Error(ctx, "notification watch stopped unexpectedly", err)
		os.Exit(1)
	}
	logg.Info(ctx, "notification watch shutting down gracefully")
}

func logNotifications(logg *logger.Logger) notifications.Handler {
	return func(ctx context.Context, items []backend.Notification) {
		for _, n := range items {
			logg.Info(logg.WithFields(ctx, map[string]any{
				"notification_id": n.ID.String(),
				"title":           n.Title,
				"type":            n.Type,
				"is_read":         n.IsRead,
			}), "notification.received")
		}
	}
}
