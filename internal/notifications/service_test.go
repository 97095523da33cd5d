package notifications

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/ersha-ecosystem/storefront/pkg/backend"
	pkgerrors "github.com/ersha-ecosystem/storefront/pkg/errors"
)

type stubFetcher struct {
	mu    sync.Mutex
	items []backend.Notification
	err   error
	calls atomic.Int32
	block chan struct{}
}

func (s *stubFetcher) ListNotifications(ctx context.Context) ([]backend.Notification, error) {
	s.calls.Add(1)
	if s.block != nil {
		select {
		case <-s.block:
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return append([]backend.Notification(nil), s.items...), s.err
}

func (s *stubFetcher) set(items ...backend.Notification) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.items = items
}

func note(id string, read bool) backend.Notification {
	return backend.Notification{ID: backend.ID(id), Title: "Order " + id, IsRead: read}
}

func TestNewServiceRequiresFetcher(t *testing.T) {
	if _, err := NewService(nil); err == nil {
		t.Fatalf("expected error without fetcher")
	}
}

func TestListFiltersAndCounts(t *testing.T) {
	fetcher := &stubFetcher{items: []backend.Notification{note("1", false), note("2", true), note("3", false)}}
	svc, err := NewService(fetcher)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}

	res, err := svc.List(context.Background(), ListParams{})
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(res.Items) != 3 || res.Unread != 2 {
		t.Fatalf("expected 3 items with 2 unread, got %d/%d", len(res.Items), res.Unread)
	}

	res, err = svc.List(context.Background(), ListParams{UnreadOnly: true, Limit: 1})
	if err != nil {
		t.Fatalf("list unread: %v", err)
	}
	if len(res.Items) != 1 || res.Items[0].ID != backend.ID("1") {
		t.Fatalf("expected only notification 1, got %+v", res.Items)
	}
	if res.Unread != 2 {
		t.Fatalf("unread count must ignore the limit, got %d", res.Unread)
	}

	if _, err := svc.List(context.Background(), ListParams{Limit: -1}); !pkgerrors.IsCode(err, pkgerrors.CodeValidation) {
		t.Fatalf("expected validation error got %v", err)
	}
}

func TestListPropagatesBackendError(t *testing.T) {
	fetcher := &stubFetcher{err: pkgerrors.New(pkgerrors.CodeUnauthorized, "session expired")}
	svc, err := NewService(fetcher)
	if err != nil {
		t.Fatalf("new service: %v", err)
	}
	if _, err := svc.List(context.Background(), ListParams{}); !pkgerrors.IsCode(err, pkgerrors.CodeUnauthorized) {
		t.Fatalf("expected unauthorized got %v", err)
	}
}
