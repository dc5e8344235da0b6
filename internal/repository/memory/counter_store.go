package memory

import (
	"context"
	"sync"
	"time"

	"github.com/Juliodvp29/task-management-api/internal/domain/interfaces"
)

type counter struct {
	value     int64
	expiresAt time.Time
}

// CounterStoreMemory is the single-instance counter store. Counters are
// process-local: in a multi-process deployment each process counts
// independently, so lockout and rate-limit guarantees are best-effort per
// instance. Deployments that need shared counting inject the redis store.
type CounterStoreMemory struct {
	mu       sync.Mutex
	counters map[string]*counter
	now      func() time.Time
}

func NewCounterStoreMemory() *CounterStoreMemory {
	return &CounterStoreMemory{
		counters: make(map[string]*counter),
		now:      time.Now,
	}
}

func (s *CounterStoreMemory) Increment(_ context.Context, key string, ttl time.Duration) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.counters[key]
	if !ok || (!c.expiresAt.IsZero() && s.now().After(c.expiresAt)) {
		c = &counter{}
		if ttl > 0 {
			c.expiresAt = s.now().Add(ttl)
		}
		s.counters[key] = c
	}
	c.value++
	return c.value, nil
}

func (s *CounterStoreMemory) Get(_ context.Context, key string) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	c, ok := s.counters[key]
	if !ok || (!c.expiresAt.IsZero() && s.now().After(c.expiresAt)) {
		return 0, nil
	}
	return c.value, nil
}

func (s *CounterStoreMemory) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	delete(s.counters, key)
	return nil
}

var _ interfaces.CounterStore = (*CounterStoreMemory)(nil)
