package notifications

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"golang.org/x/sync/singleflight"

	"github.com/ersha-ecosystem/storefront/pkg/backend"
	"github.com/ersha-ecosystem/storefront/pkg/logger"
	"github.com/ersha-ecosystem/storefront/pkg/metrics"
)

// Handler receives notifications not delivered before.
type Handler func(ctx context.Context, items []backend.Notification)

// PollerParams configures NewPoller.
type PollerParams struct {
	Fetcher  Fetcher
	Interval time.Duration
	Handler  Handler
	// Key identifies the session being polled; concurrent polls with the same key share one fetch.
	Key     string
	Metrics *metrics.PollMetrics
	Logger  *logger.Logger
}

// Poller fetches notifications on a fixed interval. A tick that fires while
// the previous fetch is still running is skipped, never overlapped.
type Poller struct {
	fetcher  Fetcher
	interval time.Duration
	handler  Handler
	key      string
	metrics  *metrics.PollMetrics
	logg     *logger.Logger

	group    singleflight.Group
	inFlight atomic.Bool

	mu     sync.Mutex
	seen   map[string]struct{}
	primed bool
}

func NewPoller(p PollerParams) (*Poller, error) {
	if p.Fetcher == nil {
		return nil, fmt.Errorf("notifications fetcher required")
	}
	if p.Interval <= 0 {
		return nil, fmt.Errorf("poll interval must be positive")
	}
	if p.Handler == nil {
		p.Handler = func(context.Context, []backend.Notification) {}
	}
	if p.Logger == nil {
		p.Logger = logger.Nop()
	}
	if p.Key == "" {
		p.Key = "default"
	}
	return &Poller{
		fetcher:  p.Fetcher,
		interval: p.Interval,
		handler:  p.Handler,
		key:      p.Key,
		metrics:  p.Metrics,
		logg:     p.Logger,
		seen:     map[string]struct{}{},
	}, nil
}

// Run polls immediately and then every interval until ctx is cancelled. It
// waits for an in-flight fetch before returning.
func (p *Poller) Run(ctx context.Context) error {
	var wg sync.WaitGroup
	defer wg.Wait()

	tick := func() {
		if !p.inFlight.CompareAndSwap(false, true) {
			p.metrics.IncSkipped()
			p.logg.Debug(ctx, "notifications.poll_skipped")
			return
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			defer p.inFlight.Store(false)
			if _, err := p.Poll(ctx); err != nil && ctx.Err() == nil {
				p.logg.Warn(p.logg.WithField(ctx, "error", err.Error()), "notifications.poll_failed")
			}
		}()
	}

	ticker := time.NewTicker(p.interval)
	defer ticker.Stop()

	tick()
	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			tick()
		}
	}
}

// Poll fetches once and returns the notifications that had not been seen
// before, handing them to the handler. Concurrent calls share one fetch and
// one delivery. The first fetch only delivers unread items.
func (p *Poller) Poll(ctx context.Context) ([]backend.Notification, error) {
	v, err, _ := p.group.Do(p.key, func() (any, error) {
		items, err := p.fetcher.ListNotifications(ctx)
		p.metrics.IncFetch(err == nil)
		if err != nil {
			return nil, err
		}
		fresh := p.diff(items)
		if len(fresh) > 0 {
			p.metrics.AddDelivered(len(fresh))
			p.handler(ctx, fresh)
		}
		return fresh, nil
	})
	if err != nil {
		return nil, err
	}
	return v.([]backend.Notification), nil
}

func (p *Poller) diff(items []backend.Notification) []backend.Notification {
	p.mu.Lock()
	defer p.mu.Unlock()

	fresh := make([]backend.Notification, 0)
	for _, n := range items {
		id := n.ID.String()
		if _, ok := p.seen[id]; ok {
			continue
		}
		p.seen[id] = struct{}{}
		if !p.primed && n.IsRead {
			continue
		}
		fresh = append(fresh, n)
	}
	p.primed = true
	return fresh
}
