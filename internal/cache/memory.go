package cache

import (
	"context"
	"sync"
	"time"

	"golang.org/x/sync/singleflight"
)

type entry struct {
	value     string
	expiresAt time.Time
}

// Memory is an in-process TTL cache. Expired entries are dropped
// lazily on read.
type Memory struct {
	mu      sync.RWMutex
	entries map[string]entry
	group   singleflight.Group
}

func NewMemory() *Memory {
	return &Memory{entries: make(map[string]entry)}
}

func (m *Memory) Get(_ context.Context, key string) (string, bool, error) {
	m.mu.RLock()
	e, ok := m.entries[key]
	m.mu.RUnlock()
	if !ok {
		return "", false, nil
	}
	if !e.expiresAt.IsZero() && time.Now().After(e.expiresAt) {
		m.mu.Lock()
		delete(m.entries, key)
		m.mu.Unlock()
		return "", false, nil
	}
	return e.value, true, nil
}

func (m *Memory) Set(_ context.Context, key, value string, ttl time.Duration) error {
	e := entry{value: value}
	if ttl > 0 {
		e.expiresAt = time.Now().Add(ttl)
	}
	m.mu.Lock()
	m.entries[key] = e
	m.mu.Unlock()
	return nil
}

func (m *Memory) GetOrFill(ctx context.Context, key string, ttl time.Duration, fill func(ctx context.Context) (string, error)) (string, error) {
	if value, ok, _ := m.Get(ctx, key); ok {
		return value, nil
	}
	value, err, _ := m.group.Do(key, func() (any, error) {
		// Re-check under the flight: a concurrent filler may have won.
		if value, ok, _ := m.Get(ctx, key); ok {
			return value, nil
		}
		value, err := fill(ctx)
		if err != nil {
			return "", err
		}
		if err := m.Set(ctx, key, value, ttl); err != nil {
			return "", err
		}
		return value, nil
	})
	if err != nil {
		return "", err
	}
	return value.(string), nil
}
