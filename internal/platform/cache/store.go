package cache

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/riskibarqy/livescore/internal/platform/resilience"
)

type entry struct {
	value     any
	fetchedAt time.Time
}

// Store is a process-local TTL cache with lazy expiry. An entry is readable
// while now-fetchedAt < ttl; expired entries are dropped on the next read.
type Store struct {
	mu      sync.RWMutex
	entries map[string]entry
	ttl     time.Duration
	now     func() time.Time
	flight  resilience.SingleFlight
}

type Option func(*Store)

// WithClock replaces time.Now, mostly for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		if now != nil {
			s.now = now
		}
	}
}

func NewStore(ttl time.Duration, opts ...Option) *Store {
	s := &Store{
		entries: make(map[string]entry),
		ttl:     ttl,
		now:     time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

func (s *Store) Get(ctx context.Context, key string) (any, bool) {
	value, _, ok := s.Lookup(ctx, key)
	return value, ok
}

// Lookup returns the cached value along with the time it was stored.
func (s *Store) Lookup(_ context.Context, key string) (any, time.Time, bool) {
	if key == "" {
		return nil, time.Time{}, false
	}

	now := s.now()
	s.mu.RLock()
	e, ok := s.entries[key]
	s.mu.RUnlock()
	if !ok {
		return nil, time.Time{}, false
	}
	if s.ttl > 0 && now.Sub(e.fetchedAt) >= s.ttl {
		s.mu.Lock()
		if current, still := s.entries[key]; still && current.fetchedAt.Equal(e.fetchedAt) {
			delete(s.entries, key)
		}
		s.mu.Unlock()
		return nil, time.Time{}, false
	}

	return e.value, e.fetchedAt, true
}

func (s *Store) Set(_ context.Context, key string, value any) {
	if key == "" {
		return
	}

	s.mu.Lock()
	s.entries[key] = entry{
		value:     value,
		fetchedAt: s.now(),
	}
	s.mu.Unlock()
}

// Clear drops every entry and returns how many were removed.
func (s *Store) Clear() int {
	s.mu.Lock()
	removed := len(s.entries)
	s.entries = make(map[string]entry)
	s.mu.Unlock()
	return removed
}

// GetOrLoadIf returns the cached value for key or runs loader, storing the
// result only when keep returns true (or keep is nil). Errors are never
// stored. Concurrent misses for one key share a single loader call, which runs
// detached from the caller's cancellation so one caller going away does not
// fail the others. The returned bool reports whether the value came from the
// cache.
func (s *Store) GetOrLoadIf(
	ctx context.Context,
	key string,
	loader func(context.Context) (any, error),
	keep func(any) bool,
) (any, bool, error) {
	if loader == nil {
		return nil, false, fmt.Errorf("loader is required")
	}
	if key == "" {
		value, err := loader(ctx)
		return value, false, err
	}

	if value, ok := s.Get(ctx, key); ok {
		return value, true, nil
	}

	type result struct {
		value  any
		cached bool
	}

	out, err, _ := s.flight.Do(key, func() (any, error) {
		loadCtx := context.WithoutCancel(ctx)
		if cached, ok := s.Get(loadCtx, key); ok {
			return result{value: cached, cached: true}, nil
		}

		loaded, loadErr := loader(loadCtx)
		if loadErr != nil {
			return nil, loadErr
		}
		if keep == nil || keep(loaded) {
			s.Set(loadCtx, key, loaded)
		}
		return result{value: loaded}, nil
	})
	if err != nil {
		return nil, false, err
	}

	res := out.(result)
	return res.value, res.cached, nil
}
