package cart

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"

	"github.com/shopspring/decimal"

	"github.com/ersha-ecosystem/storefront/pkg/backend"
	pkgerrors "github.com/ersha-ecosystem/storefront/pkg/errors"
	"github.com/ersha-ecosystem/storefront/pkg/logger"
)

// API is the backend surface the store reconciles against.
type API interface {
	GetCart(ctx context.Context) (json.RawMessage, error)
	AddCartItem(ctx context.Context, req backend.AddCartItemRequest) error
	UpdateCartItem(ctx context.Context, itemID string, req backend.UpdateCartItemRequest) error
	RemoveCartItem(ctx context.Context, itemID string) error
	ClearCart(ctx context.Context) error
}

// Store is the session-scoped source of truth for cart contents. Every write
// goes to the backend and is followed by a full reload, so prices and totals
// always reflect the backend's view. Mutations on one Store are serialized.
type Store struct {
	api    API
	logger *logger.Logger

	opMu sync.Mutex

	mu      sync.RWMutex
	summary Summary
	lastErr string
}

// NewStore builds a cart store bound to one caller's backend session.
func NewStore(api API, logg *logger.Logger) (*Store, error) {
	if api == nil {
		return nil, fmt.Errorf("cart api required")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Store{api: api, logger: logg, summary: Empty()}, nil
}

// Summary returns a snapshot of the current cart state.
func (s *Store) Summary() Summary {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.summary
}

// Err returns the last human-readable failure, or "" after a successful call.
func (s *Store) Err() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastErr
}

// Load fetches the cart. On failure the local cart becomes empty and the
// error is both recorded and returned; there is no retry.
func (s *Store) Load(ctx context.Context) (Summary, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()
	return s.load(ctx)
}

// Add sends the add request and then reloads the whole cart.
func (s *Store) Add(ctx context.Context, productID string, quantity decimal.Decimal) (Summary, error) {
	productID = strings.TrimSpace(productID)
	if productID == "" {
		return s.reject(pkgerrors.New(pkgerrors.CodeValidation, "product id is required"))
	}
	if err := checkQuantity(quantity); err != nil {
		return s.reject(err)
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	err := s.api.AddCartItem(ctx, backend.AddCartItemRequest{ProductID: productID, Quantity: quantity})
	if err != nil {
		return s.fail(ctx, "cart.add_failed", wrapOp(err, "could not add item to cart"))
	}
	return s.load(ctx)
}

// UpdateQuantity rejects quantities below MinQuantity without contacting the
// backend; otherwise it writes and reloads.
func (s *Store) UpdateQuantity(ctx context.Context, itemID string, quantity decimal.Decimal) (Summary, error) {
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return s.reject(pkgerrors.New(pkgerrors.CodeValidation, "cart item id is required"))
	}
	if err := checkQuantity(quantity); err != nil {
		return s.reject(err)
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	err := s.api.UpdateCartItem(ctx, itemID, backend.UpdateCartItemRequest{Quantity: quantity})
	if err != nil {
		return s.fail(ctx, "cart.update_failed", wrapOp(err, "could not update item quantity"))
	}
	return s.load(ctx)
}

// Remove deletes one line and reloads.
func (s *Store) Remove(ctx context.Context, itemID string) (Summary, error) {
	itemID = strings.TrimSpace(itemID)
	if itemID == "" {
		return s.reject(pkgerrors.New(pkgerrors.CodeValidation, "cart item id is required"))
	}

	s.opMu.Lock()
	defer s.opMu.Unlock()

	if err := s.api.RemoveCartItem(ctx, itemID); err != nil {
		return s.fail(ctx, "cart.remove_failed", wrapOp(err, "could not remove item from cart"))
	}
	return s.load(ctx)
}

// Clear empties the cart. On success the local state is set to empty without a reload.
func (s *Store) Clear(ctx context.Context) (Summary, error) {
	s.opMu.Lock()
	defer s.opMu.Unlock()

	if err := s.api.ClearCart(ctx); err != nil {
		return s.fail(ctx, "cart.clear_failed", wrapOp(err, "could not clear cart"))
	}
	return s.set(Empty(), ""), nil
}

func (s *Store) load(ctx context.Context) (Summary, error) {
	raw, err := s.api.GetCart(ctx)
	if err != nil {
		s.set(Empty(), "")
		return s.fail(ctx, "cart.load_failed", wrapOp(err, "could not load cart"))
	}
	summary, err := Normalize(raw)
	if err != nil {
		s.set(Empty(), "")
		return s.fail(ctx, "cart.decode_failed", pkgerrors.Wrap(pkgerrors.CodeDependency, err, "could not read cart"))
	}
	return s.set(summary, ""), nil
}

func (s *Store) set(summary Summary, errMsg string) Summary {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.summary = summary
	s.lastErr = errMsg
	return summary
}

// reject records a local validation failure; state is left untouched.
func (s *Store) reject(err error) (Summary, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.lastErr = pkgerrors.Display(err)
	return s.summary, err
}

func (s *Store) fail(ctx context.Context, event string, err error) (Summary, error) {
	s.logger.Warn(s.logger.WithField(ctx, "error", err.Error()), event)
	return s.reject(err)
}

func checkQuantity(q decimal.Decimal) error {
	if q.LessThan(MinQuantity) {
		return pkgerrors.New(pkgerrors.CodeValidation, "quantity must be at least "+MinQuantity.StringFixed(2)).
			WithDetails(map[string]any{"quantity": q.String(), "min": MinQuantity.StringFixed(2)})
	}
	return nil
}

// wrapOp keeps the backend's classification and message when the error is already typed.
func wrapOp(err error, msg string) *pkgerrors.Error {
	typed := pkgerrors.As(err)
	if typed == nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, msg)
	}
	wrapped := pkgerrors.Wrap(typed.Code(), err, msg+": "+pkgerrors.Display(typed))
	if d := typed.Details(); d != nil {
		wrapped = wrapped.WithDetails(d)
	}
	return wrapped
}
