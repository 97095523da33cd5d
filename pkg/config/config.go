package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/kelseyhightower/envconfig"
	"go.uber.org/multierr"
)

type Config struct {
	App           AppConfig
	Backend       BackendConfig
	Payment       PaymentConfig
	Redis         RedisConfig
	PendingOrders PendingOrdersConfig
	Notifications NotificationsConfig
	Verification  VerificationConfig
	CORS          CORSConfig
}

func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process(EnvPrefix, &cfg); err != nil {
		return nil, fmt.Errorf("parsing config: %w", err)
	}
	if err := cfg.validateURLs(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

type AppConfig struct {
	Env          string `envconfig:"ERSHA_APP_ENV" default:"dev"`
	Port         string `envconfig:"ERSHA_APP_PORT" default:"8080"`
	LogLevel     string `envconfig:"ERSHA_LOG_LEVEL" default:"info"`
	LogWarnStack bool   `envconfig:"ERSHA_LOG_WARN_STACK" default:"false"`
	BaseURL      string `envconfig:"ERSHA_APP_BASE_URL" default:"http://localhost:5173"`
	// SessionIdleTTL bounds how long an idle caller's cart state is kept in memory.
	SessionIdleTTL time.Duration `envconfig:"ERSHA_SESSION_IDLE_TTL" default:"30m"`
}

func (a AppConfig) IsDev() bool {
	return strings.EqualFold(a.Env, AppEnvDev)
}

func (a AppConfig) IsProd() bool {
	return strings.EqualFold(a.Env, AppEnvProd)
}

type BackendConfig struct {
	BaseURL string        `envconfig:"ERSHA_BACKEND_URL" default:"http://localhost:8000"`
	Timeout time.Duration `envconfig:"ERSHA_BACKEND_TIMEOUT" default:"15s"`
	// Consecutive upstream failures before calls fail fast; 0 disables the breaker.
	BreakerFailures uint32        `envconfig:"ERSHA_BACKEND_BREAKER_FAILURES" default:"5"`
	BreakerCooldown time.Duration `envconfig:"ERSHA_BACKEND_BREAKER_COOLDOWN" default:"30s"`
}

type PaymentConfig struct {
	PublicKey   string `envconfig:"ERSHA_CHAPA_PUBLIC_KEY" default:"CHAPUBK_TEST-your_public_key_here"`
	CheckoutURL string `envconfig:"ERSHA_CHAPA_CHECKOUT_URL" default:"https://api.chapa.co/v1/hosted/pay"`
	Currency    string `envconfig:"ERSHA_CHAPA_CURRENCY" default:"ETB"`
	CallbackURL string `envconfig:"ERSHA_CHAPA_CALLBACK_URL" default:"http://localhost:8000/api/payments/chapa/callback/"`
	ReturnPath  string `envconfig:"ERSHA_CHAPA_RETURN_PATH" default:"/payment/success"`
	Title       string `envconfig:"ERSHA_CHAPA_TITLE" default:"Ersha Order"`
	Description string `envconfig:"ERSHA_CHAPA_DESCRIPTION" default:"Payment for agricultural products"`
}

// ReturnURL joins the application base URL with the configured return path.
func (p PaymentConfig) ReturnURL(appBaseURL string) string {
	return joinBase(appBaseURL, p.ReturnPath)
}

type RedisConfig struct {
	URL          string        `envconfig:"ERSHA_REDIS_URL"`
	Address      string        `envconfig:"ERSHA_REDIS_ADDR" default:"localhost:6379"`
	Password     string        `envconfig:"ERSHA_REDIS_PASSWORD"`
	DB           int           `envconfig:"ERSHA_REDIS_DB" default:"0"`
	PoolSize     int           `envconfig:"ERSHA_REDIS_POOL_SIZE" default:"10"`
	MinIdleConns int           `envconfig:"ERSHA_REDIS_MIN_IDLE_CONNS" default:"2"`
	DialTimeout  time.Duration `envconfig:"ERSHA_REDIS_DIAL_TIMEOUT" default:"5s"`
	ReadTimeout  time.Duration `envconfig:"ERSHA_REDIS_READ_TIMEOUT" default:"5s"`
	WriteTimeout time.Duration `envconfig:"ERSHA_REDIS_WRITE_TIMEOUT" default:"5s"`
}

type PendingOrdersConfig struct {
	TTL time.Duration `envconfig:"ERSHA_PENDING_ORDER_TTL" default:"2h"`
}

type NotificationsConfig struct {
	PollInterval time.Duration `envconfig:"ERSHA_NOTIFICATIONS_POLL_INTERVAL" default:"30s"`
	WebSocketURL string        `envconfig:"ERSHA_WS_URL" default:"ws://localhost:8000/ws/notifications/"`
}

type VerificationConfig struct {
	// ReturnPath is where the browser lands after a completed verification.
	ReturnPath string `envconfig:"ERSHA_VERIFICATION_RETURN_PATH" default:"/profile"`
}

func (v VerificationConfig) ReturnURL(appBaseURL string) string {
	return joinBase(appBaseURL, v.ReturnPath)
}

func joinBase(base, path string) string {
	base = strings.TrimSuffix(strings.TrimSpace(base), "/")
	path = strings.TrimSpace(path)
	if path == "" {
		return base
	}
	if !strings.HasPrefix(path, "/") {
		path = "/" + path
	}
	return base + path
}

type CORSConfig struct {
	AllowedOrigins []string `envconfig:"ERSHA_CORS_ALLOWED_ORIGINS" default:"http://localhost:5173,http://localhost:3000"`
}

func (c *Config) validateURLs() error {
	var err error
	err = multierr.Append(err, requireAbsoluteURL(EnvBackendURL, c.Backend.BaseURL))
	err = multierr.Append(err, requireAbsoluteURL(EnvAppBaseURL, c.App.BaseURL))
	err = multierr.Append(err, requireAbsoluteURL(EnvChapaCheckoutURL, c.Payment.CheckoutURL))
	if err != nil {
		return fmt.Errorf("invalid config: %w", err)
	}
	return nil
}

func requireAbsoluteURL(name, raw string) error {
	u, err := url.Parse(strings.TrimSpace(raw))
	if err != nil {
		return fmt.Errorf("%s: %w", name, err)
	}
	if u.Scheme == "" || u.Host == "" {
		return fmt.Errorf("%s must be an absolute url, got %q", name, raw)
	}
	return nil
}
