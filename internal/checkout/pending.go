package checkout

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	pkgerrors "github.com/ersha-ecosystem/storefront/pkg/errors"
	"github.com/ersha-ecosystem/storefront/pkg/redis"
)

// PendingOrder links a backend order to the payment transaction while the
// payer is away on the hosted payment page.
type PendingOrder struct {
	OrderID   string          `json:"order_id"`
	OrderData json.RawMessage `json:"order_data"`
	TxRef     string          `json:"tx_ref"`
	CreatedAt time.Time       `json:"created_at"`
}

// PendingStore persists pending orders keyed by transaction reference.
type PendingStore interface {
	Save(ctx context.Context, order PendingOrder) error
	Get(ctx context.Context, txRef string) (*PendingOrder, error)
	Delete(ctx context.Context, txRef string) error
}

type redisPendingStore struct {
	kv  redis.KV
	ttl time.Duration
}

// NewPendingStore keeps pending orders in Redis for ttl.
func NewPendingStore(kv redis.KV, ttl time.Duration) (PendingStore, error) {
	if kv == nil {
		return nil, fmt.Errorf("redis kv required")
	}
	if ttl <= 0 {
		return nil, fmt.Errorf("pending order ttl must be positive")
	}
	return &redisPendingStore{kv: kv, ttl: ttl}, nil
}

func (s *redisPendingStore) Save(ctx context.Context, order PendingOrder) error {
	if strings.TrimSpace(order.TxRef) == "" {
		return pkgerrors.New(pkgerrors.CodeValidation, "tx_ref required")
	}
	payload, err := json.Marshal(order)
	if err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeInternal, err, "encode pending order")
	}
	if err := s.kv.Set(ctx, s.kv.PendingOrderKey(order.TxRef), payload, s.ttl); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "save pending order")
	}
	return nil
}

func (s *redisPendingStore) Get(ctx context.Context, txRef string) (*PendingOrder, error) {
	raw, err := s.kv.Get(ctx, s.kv.PendingOrderKey(txRef))
	if err != nil {
		if errors.Is(err, redis.ErrNotFound) {
			return nil, pkgerrors.New(pkgerrors.CodeNotFound, "pending order not found")
		}
		return nil, pkgerrors.Wrap(pkgerrors.CodeDependency, err, "load pending order")
	}
	var order PendingOrder
	if err := json.Unmarshal([]byte(raw), &order); err != nil {
		return nil, pkgerrors.Wrap(pkgerrors.CodeInternal, err, "decode pending order")
	}
	return &order, nil
}

func (s *redisPendingStore) Delete(ctx context.Context, txRef string) error {
	if err := s.kv.Del(ctx, s.kv.PendingOrderKey(txRef)); err != nil {
		return pkgerrors.Wrap(pkgerrors.CodeDependency, err, "delete pending order")
	}
	return nil
}
