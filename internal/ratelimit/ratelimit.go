// Package ratelimit throttles the public authentication endpoints per client.
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// Limiter decides whether a request identified by key may proceed.
type Limiter interface {
	Allow(ctx context.Context, key string) (bool, error)
	Close() error
}

type window struct {
	count   int
	resetAt time.Time
}

// MemoryLimiter is a fixed window limiter for a single process.
type MemoryLimiter struct {
	mu      sync.Mutex
	entries map[string]*window
	rate    int
	period  time.Duration
	now     func() time.Time
	done    chan struct{}
	once    sync.Once
}

// NewMemoryLimiter allows rate requests per key in every period.
func NewMemoryLimiter(rate int, period time.Duration) *MemoryLimiter {
	m := &MemoryLimiter{
		entries: make(map[string]*window),
		rate:    rate,
		period:  period,
		now:     time.Now,
		done:    make(chan struct{}),
	}
	go m.cleanup()
	return m
}

func (m *MemoryLimiter) Allow(_ context.Context, key string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	w, ok := m.entries[key]
	if !ok || !now.Before(w.resetAt) {
		m.entries[key] = &window{count: 1, resetAt: now.Add(m.period)}
		return m.rate >= 1, nil
	}

	if w.count >= m.rate {
		return false, nil
	}
	w.count++
	return true, nil
}

// Close stops the cleanup goroutine. It is safe to call more than once.
func (m *MemoryLimiter) Close() error {
	m.once.Do(func() { close(m.done) })
	return nil
}

func (m *MemoryLimiter) cleanup() {
	ticker := time.NewTicker(m.period)
	defer ticker.Stop()

	for {
		select {
		case <-m.done:
			return
		case <-ticker.C:
			m.removeExpired()
		}
	}
}

func (m *MemoryLimiter) removeExpired() {
	m.mu.Lock()
	defer m.mu.Unlock()

	now := m.now()
	for key, w := range m.entries {
		if !now.Before(w.resetAt) {
			delete(m.entries, key)
		}
	}
}
