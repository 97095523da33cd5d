package config

const (
	EnvPrefix = "ERSHA"

	AppEnvDev  = "dev"
	AppEnvProd = "prod"

	EnvAppEnv            = "ERSHA_APP_ENV"
	EnvPort              = "ERSHA_APP_PORT"
	EnvLogLevel          = "ERSHA_LOG_LEVEL"
	EnvAppBaseURL        = "ERSHA_APP_BASE_URL"
	EnvBackendURL        = "ERSHA_BACKEND_URL"
	EnvBackendTimeout    = "ERSHA_BACKEND_TIMEOUT"
	EnvBreakerFailures   = "ERSHA_BACKEND_BREAKER_FAILURES"
	EnvChapaPublicKey    = "ERSHA_CHAPA_PUBLIC_KEY"
	EnvChapaCheckoutURL  = "ERSHA_CHAPA_CHECKOUT_URL"
	EnvChapaCallbackURL  = "ERSHA_CHAPA_CALLBACK_URL"
	EnvRedisURL          = "ERSHA_REDIS_URL"
	EnvRedisAddr         = "ERSHA_REDIS_ADDR"
	EnvPendingOrderTTL   = "ERSHA_PENDING_ORDER_TTL"
	EnvPollInterval      = "ERSHA_NOTIFICATIONS_POLL_INTERVAL"
	EnvWebSocketURL      = "ERSHA_WS_URL"
	EnvCORSAllowedOrigin = "ERSHA_CORS_ALLOWED_ORIGINS"
)
