package checkout

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/ersha-ecosystem/storefront/internal/cart"
	"github.com/ersha-ecosystem/storefront/pkg/backend"
	"github.com/ersha-ecosystem/storefront/pkg/config"
	pkgerrors "github.com/ersha-ecosystem/storefront/pkg/errors"
	"github.com/ersha-ecosystem/storefront/pkg/logger"
	"github.com/ersha-ecosystem/storefront/pkg/metrics"
)

// Backend is the slice of the backend API checkout depends on.
type Backend interface {
	CreateOrder(ctx context.Context, payload any) (*backend.CreatedOrder, error)
	ListLogisticsProviders(ctx context.Context) ([]backend.LogisticsProvider, error)
	GetProfile(ctx context.Context) (*backend.Profile, error)
}

// Prepared is what the checkout page needs before the payer fills the form.
type Prepared struct {
	Form           FormData                    `json:"form"`
	Providers      []backend.LogisticsProvider `json:"logistics_providers"`
	ProvidersError string                      `json:"logistics_providers_error,omitempty"`
	Cart           cart.Summary                `json:"cart"`
	PaymentReady   bool                        `json:"payment_configured"`
}

// Service runs checkout preparation and order submission.
type Service interface {
	Prepare(ctx context.Context, summary cart.Summary) (*Prepared, error)
	Submit(ctx context.Context, flow *Flow, summary cart.Summary, form FormData) (*PaymentForm, error)
	PendingOrder(ctx context.Context, txRef string) (*PendingOrder, error)
}

// ServiceParams groups the dependencies of NewService.
type ServiceParams struct {
	Backend    Backend
	Pending    PendingStore
	Payment    config.PaymentConfig
	AppBaseURL string
	Metrics    *metrics.CheckoutMetrics
	Logger     *logger.Logger
	Clock      func() time.Time
}

type service struct {
	backend    Backend
	pending    PendingStore
	payment    config.PaymentConfig
	appBaseURL string
	metrics    *metrics.CheckoutMetrics
	logg       *logger.Logger
	now        func() time.Time
}

// NewService builds the checkout service.
func NewService(p ServiceParams) (Service, error) {
	if p.Backend == nil {
		return nil, fmt.Errorf("backend client required")
	}
	if p.Pending == nil {
		return nil, fmt.Errorf("pending order store required")
	}
	if p.AppBaseURL == "" {
		return nil, fmt.Errorf("app base url required")
	}
	if p.Logger == nil {
		p.Logger = logger.Nop()
	}
	if p.Clock == nil {
		p.Clock = time.Now
	}
	return &service{
		backend:    p.Backend,
		pending:    p.Pending,
		payment:    p.Payment,
		appBaseURL: p.AppBaseURL,
		metrics:    p.Metrics,
		logg:       p.Logger,
		now:        p.Clock,
	}, nil
}

// ErrEmptyCart is returned when checkout is attempted with nothing in the cart.
var ErrEmptyCart = pkgerrors.New(pkgerrors.CodeValidation, "Your cart is empty")

// Prepare prefills the form from the profile and fetches the providers.
// Profile and provider failures degrade to an empty form or list.
func (s *service) Prepare(ctx context.Context, summary cart.Summary) (*Prepared, error) {
	if summary.IsEmpty() {
		return nil, ErrEmptyCart
	}
	out := &Prepared{
		Providers:    []backend.LogisticsProvider{},
		Cart:         summary,
		PaymentReady: s.payment.Configured(),
	}

	profile, err := s.backend.GetProfile(ctx)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "checkout.profile_prefill_failed")
	} else {
		out.Form = PrefillFromProfile(profile)
	}

	providers, err := s.backend.ListLogisticsProviders(ctx)
	if err != nil {
		s.logg.Warn(s.logg.WithField(ctx, "error", err.Error()), "checkout.providers_failed")
		out.ProvidersError = pkgerrors.Display(err)
	} else {
		out.Providers = providers
	}
	return out, nil
}

// Submit validates, creates the backend order, records the pending order and
// returns the hosted-payment form. The pending order is persisted before the
// form is returned.
func (s *service) Submit(ctx context.Context, flow *Flow, summary cart.Summary, form FormData) (*PaymentForm, error) {
	if flow == nil {
		flow = NewFlow()
	}
	if err := flow.begin(); err != nil {
		return nil, err
	}
	start := s.now()
	form = form.Normalized()

	abort := func(stage string, err error) (*PaymentForm, error) {
		flow.fail(err)
		s.metrics.IncFailure(stage)
		s.metrics.ObserveDuration("failed", s.now().Sub(start))
		lctx := s.logg.WithFields(ctx, map[string]any{"stage": stage, "error": err.Error()})
		s.logg.Warn(lctx, "checkout.submit_aborted")
		return nil, err
	}

	if err := ValidateForm(form); err != nil {
		return abort(metrics.StageValidation, err)
	}
	if err := s.payment.Validate(); err != nil {
		return abort(metrics.StageConfig, pkgerrors.Wrap(pkgerrors.CodeConfiguration, err, "Payment is not configured").
			WithDetails(map[string]any{
				"reason":       err.Error(),
				"instructions": s.payment.SetupInstructions(),
			}))
	}
	if summary.IsEmpty() {
		return abort(metrics.StageCart, ErrEmptyCart)
	}

	providers, err := s.backend.ListLogisticsProviders(ctx)
	if err != nil {
		return abort(metrics.StageValidation, err)
	}
	provider, err := SelectProvider(providers, form.LogisticsProviderID)
	if err != nil {
		return abort(metrics.StageValidation, err)
	}

	if err := flow.advance(StateValidating, StateCreatingOrder); err != nil {
		return abort(metrics.StageOrder, err)
	}

	payload := buildOrderPayload(summary, form, provider)
	order, err := s.backend.CreateOrder(ctx, payload)
	if err != nil {
		return abort(metrics.StageOrder, err)
	}

	txRef := NewTxRef(s.now())
	ctx = s.logg.WithTxRef(s.logg.WithField(ctx, "order_id", order.ID), txRef)

	orderData, err := json.Marshal(payload)
	if err != nil {
		return abort(metrics.StagePending, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode order data"))
	}
	pending := PendingOrder{
		OrderID:   order.ID,
		OrderData: orderData,
		TxRef:     txRef,
		CreatedAt: s.now().UTC(),
	}
	if err := s.pending.Save(ctx, pending); err != nil {
		s.logg.Error(ctx, "checkout.pending_save_failed", err)
		return abort(metrics.StagePending, err)
	}

	if err := flow.advance(StateCreatingOrder, StateAwaitingPaymentRedirect); err != nil {
		return abort(metrics.StagePending, err)
	}

	amount := summary.TotalPrice
	if order.TotalAmount.IsPositive() {
		amount = order.TotalAmount
	}
	paymentForm := buildPaymentForm(s.payment, s.appBaseURL, paymentInput{
		OrderID:      order.ID,
		TxRef:        txRef,
		Amount:       amount,
		Form:         form,
		ProviderName: provider.Name,
	})

	s.metrics.IncHandoff()
	s.metrics.ObserveDuration("handoff", s.now().Sub(start))
	s.logg.Info(ctx, "checkout.payment_handoff")
	return paymentForm, nil
}

func (s *service) PendingOrder(ctx context.Context, txRef string) (*PendingOrder, error) {
	if txRef == "" {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "tx_ref required")
	}
	return s.pending.Get(ctx, txRef)
}
