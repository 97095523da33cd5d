package notifications

import (
	"context"

	"github.com/ersha-ecosystem/storefront/pkg/backend"
	pkgerrors "github.com/ersha-ecosystem/storefront/pkg/errors"
)

// Fetcher lists the caller's notifications from the backend.
type Fetcher interface {
	ListNotifications(ctx context.Context) ([]backend.Notification, error)
}

// Service defines the one-shot notification listing.
type Service interface {
	List(ctx context.Context, params ListParams) (*ListResult, error)
}

type service struct {
	fetcher Fetcher
}

// ListParams filters the fetched notifications.
type ListParams struct {
	Limit      int
	UnreadOnly bool
}

// ListResult wraps returned notifications and the unread count.
type ListResult struct {
	Items  []backend.Notification `json:"items"`
	Unread int                    `json:"unread"`
}

// NewService wires notifications dependencies.
func NewService(fetcher Fetcher) (Service, error) {
	if fetcher == nil {
		return nil, pkgerrors.New(pkgerrors.CodeDependency, "notifications fetcher required")
	}
	return &service{fetcher: fetcher}, nil
}

func (s *service) List(ctx context.Context, params ListParams) (*ListResult, error) {
	if params.Limit < 0 {
		return nil, pkgerrors.New(pkgerrors.CodeValidation, "limit must not be negative")
	}
	rows, err := s.fetcher.ListNotifications(ctx)
	if err != nil {
		return nil, err
	}

	out := &ListResult{Items: make([]backend.Notification, 0, len(rows))}
	for _, n := range rows {
		if !n.IsRead {
			out.Unread++
		}
		if params.UnreadOnly && n.IsRead {
			continue
		}
		if params.Limit > 0 && len(out.Items) >= params.Limit {
			continue
		}
		out.Items = append(out.Items, n)
	}
	return out, nil
}
