package cart

import (
	"fmt"
	"sync"
	"time"

	"github.com/ersha-ecosystem/storefront/pkg/logger"
)

const sweepEvery = time.Minute

// Sessions keeps one Store per caller session so that a caller's mutations
// are serialized across concurrent requests. Stores idle longer than the
// configured TTL are dropped.
type Sessions struct {
	api     API
	logg    *logger.Logger
	idleTTL time.Duration
	now     func() time.Time

	mu        sync.Mutex
	entries   map[string]*sessionEntry
	lastSweep time.Time
}

type sessionEntry struct {
	store    *Store
	lastUsed time.Time
}

func NewSessions(api API, idleTTL time.Duration, logg *logger.Logger) (*Sessions, error) {
	if api == nil {
		return nil, fmt.Errorf("cart api required")
	}
	if idleTTL <= 0 {
		return nil, fmt.Errorf("session idle ttl must be positive")
	}
	if logg == nil {
		logg = logger.Nop()
	}
	return &Sessions{
		api:     api,
		logg:    logg,
		idleTTL: idleTTL,
		now:     time.Now,
		entries: map[string]*sessionEntry{},
	}, nil
}

// For returns the session's store, creating it on first use.
func (s *Sessions) For(key string) *Store {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	if now.Sub(s.lastSweep) >= sweepEvery {
		s.sweep(now)
	}
	entry, ok := s.entries[key]
	if !ok {
		entry = &sessionEntry{store: &Store{api: s.api, logger: s.logg, summary: Empty()}}
		s.entries[key] = entry
	}
	entry.lastUsed = now
	return entry.store
}

// Len reports the number of live sessions.
func (s *Sessions) Len() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.entries)
}

func (s *Sessions) sweep(now time.Time) {
	for key, entry := range s.entries {
		if now.Sub(entry.lastUsed) > s.idleTTL {
			delete(s.entries, key)
		}
	}
	s.lastSweep = now
}
