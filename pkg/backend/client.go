package backend

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/sony/gobreaker/v2"

	"github.com/ersha-ecosystem/storefront/pkg/config"
	pkgerrors "github.com/ersha-ecosystem/storefront/pkg/errors"
	"github.com/ersha-ecosystem/storefront/pkg/logger"
)

const (
	cartPath                  = "/api/orders/cart/"
	cartAddPath               = "/api/orders/cart/add/"
	cartItemPath              = "/api/orders/cart/items/%s/"
	cartClearPath             = "/api/orders/cart/clear/"
	ordersPath                = "/api/orders/orders/"
	logisticsProvidersPath    = "/api/logistics/providers/"
	profilePath               = "/api/auth/profile/"
	verificationAuthorizePath = "/api/auth/verification/authorize/"
	verificationCallbackPath  = "/api/auth/verification/callback/"
	notificationsPath         = "/api/notifications/"

	maxErrorBody = 64 << 10
)

// Client calls the Ersha backend REST API on behalf of the caller whose bearer
// token travels in the request context. It never retries. After
// BreakerFailures consecutive upstream failures it fails fast until the
// cooldown elapses.
type Client struct {
	baseURL    string
	httpClient *http.Client
	logger     *logger.Logger
	breaker    *gobreaker.CircuitBreaker[struct{}]
}

// NewClient builds a backend client from configuration.
func NewClient(cfg config.BackendConfig, logg *logger.Logger) (*Client, error) {
	base := strings.TrimSuffix(strings.TrimSpace(cfg.BaseURL), "/")
	if base == "" {
		return nil, errors.New("backend base url is required")
	}
	if _, err := url.Parse(base); err != nil {
		return nil, fmt.Errorf("parsing backend base url: %w", err)
	}
	timeout := cfg.Timeout
	if timeout <= 0 {
		timeout = 15 * time.Second
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Client{
		baseURL:    base,
		httpClient: &http.Client{Timeout: timeout},
		logger:     logg,
		breaker:    newBreaker(cfg, logg),
	}, nil
}

func newBreaker(cfg config.BackendConfig, logg *logger.Logger) *gobreaker.CircuitBreaker[struct{}] {
	if cfg.BreakerFailures == 0 {
		return nil
	}
	cooldown := cfg.BreakerCooldown
	if cooldown <= 0 {
		cooldown = 30 * time.Second
	}
	failures := cfg.BreakerFailures
	return gobreaker.NewCircuitBreaker[struct{}](gobreaker.Settings{
		Name:        "ersha-backend",
		MaxRequests: 1,
		Timeout:     cooldown,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= failures
		},
		// Only upstream unavailability trips the breaker; 4xx answers are healthy responses.
		IsSuccessful: func(err error) bool {
			return err == nil || !pkgerrors.IsCode(err, pkgerrors.CodeDependency)
		},
		OnStateChange: func(name string, from, to gobreaker.State) {
			ctx := logg.WithFields(context.Background(), map[string]any{
				"breaker": name,
				"from":    from.String(),
				"to":      to.String(),
			})
			logg.Warn(ctx, "backend.breaker_state_changed")
		},
	})
}

// WithHTTPClient swaps the underlying transport, mainly for tests.
func (c *Client) WithHTTPClient(hc *http.Client) *Client {
	if hc != nil {
		c.httpClient = hc
	}
	return c
}

// GetCart returns the raw cart document. Its shape varies, see cart.Normalize.
func (c *Client) GetCart(ctx context.Context) (json.RawMessage, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, cartPath, nil, &raw); err != nil {
		return nil, err
	}
	return raw, nil
}

func (c *Client) AddCartItem(ctx context.Context, req AddCartItemRequest) error {
	return c.do(ctx, http.MethodPost, cartAddPath, req, nil)
}

func (c *Client) UpdateCartItem(ctx context.Context, itemID string, req UpdateCartItemRequest) error {
	return c.do(ctx, http.MethodPatch, fmt.Sprintf(cartItemPath, url.PathEscape(itemID)), req, nil)
}

func (c *Client) RemoveCartItem(ctx context.Context, itemID string) error {
	return c.do(ctx, http.MethodDelete, fmt.Sprintf(cartItemPath, url.PathEscape(itemID)), nil, nil)
}

func (c *Client) ClearCart(ctx context.Context) error {
	return c.do(ctx, http.MethodDelete, cartClearPath, nil, nil)
}

// CreateOrder submits an order-creation payload and returns the created order reference.
func (c *Client) CreateOrder(ctx context.Context, payload any) (*CreatedOrder, error) {
	var out CreatedOrder
	if err := c.do(ctx, http.MethodPost, ordersPath, payload, &out); err != nil {
		return nil, err
	}
	if out.ID == "" {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "order created without an identifier")
	}
	return &out, nil
}

func (c *Client) ListLogisticsProviders(ctx context.Context) ([]LogisticsProvider, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, logisticsProvidersPath, nil, &raw); err != nil {
		return nil, err
	}
	providers, err := DecodeList[LogisticsProvider](raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode logistics providers")
	}
	return providers, nil
}

func (c *Client) GetProfile(ctx context.Context) (*Profile, error) {
	var out Profile
	if err := c.do(ctx, http.MethodGet, profilePath, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerificationAuthorize asks the backend for the identity provider's authorization URL.
func (c *Client) VerificationAuthorize(ctx context.Context) (*AuthorizeResponse, error) {
	var out AuthorizeResponse
	if err := c.do(ctx, http.MethodGet, verificationAuthorizePath, nil, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

// VerificationCallback forwards the code/state pair; the backend performs the token exchange.
func (c *Client) VerificationCallback(ctx context.Context, req VerificationCallbackRequest) (*VerificationResult, error) {
	var out VerificationResult
	if err := c.do(ctx, http.MethodPost, verificationCallbackPath, req, &out); err != nil {
		return nil, err
	}
	return &out, nil
}

func (c *Client) ListNotifications(ctx context.Context) ([]Notification, error) {
	var raw json.RawMessage
	if err := c.do(ctx, http.MethodGet, notificationsPath, nil, &raw); err != nil {
		return nil, err
	}
	items, err := DecodeList[Notification](raw)
	if err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode notifications")
	}
	return items, nil
}

func (c *Client) do(ctx context.Context, method, path string, body any, out any) error {
	if c.breaker == nil {
		return c.roundTrip(ctx, method, path, body, out)
	}
	_, err := c.breaker.Execute(func() (struct{}, error) {
		return struct{}{}, c.roundTrip(ctx, method, path, body, out)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "backend temporarily unavailable")
	}
	return err
}

func (c *Client) roundTrip(ctx context.Context, method, path string, body any, out any) error {
	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode backend request")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "build backend request")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if token := TokenFromContext(ctx); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	start := time.Now()
	resp, err := c.httpClient.Do(req)
	if err != nil {
		lctx := c.logger.WithFields(ctx, map[string]any{"method": method, "upstream_path": path})
		c.logger.Warn(lctx, "backend.request_failed")
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "backend unreachable")
	}
	defer resp.Body.Close()

	lctx := c.logger.WithFields(ctx, map[string]any{
		"method":          method,
		"upstream_path":   path,
		"upstream_status": resp.StatusCode,
		"duration_ms":     time.Since(start).Milliseconds(),
	})
	c.logger.Debug(lctx, "backend.response")

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, maxErrorBody))
		return mapStatus(&HTTPError{Status: resp.StatusCode, Method: method, URLPath: path, Body: raw})
	}

	if out == nil || resp.StatusCode == http.StatusNoContent {
		_, _ = io.Copy(io.Discard, resp.Body)
		return nil
	}

	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		if errors.Is(err, io.EOF) {
			return nil
		}
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "decode backend response")
	}
	return nil
}
