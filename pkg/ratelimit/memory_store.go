package ratelimit

import (
	"context"
	"sync"
	"time"
)

// MemoryStore is an in-process counter backend. Suitable for a single
// instance; use RedisStore when replicas must share limits.
type MemoryStore struct {
	mu      sync.Mutex
	windows map[string]*window

	cleanupInterval time.Duration
	stopCleanup     chan struct{}
	cleanupOnce     sync.Once
}

type window struct {
	count     int64
	expiresAt time.Time
}

// NewMemoryStore creates a memory store with a background janitor that
// drops expired windows once a minute.
func NewMemoryStore() *MemoryStore {
	s := &MemoryStore{
		windows:         make(map[string]*window),
		cleanupInterval: time.Minute,
		stopCleanup:     make(chan struct{}),
	}
	go s.cleanupLoop()
	return s
}

func (s *MemoryStore) Increment(_ context.Context, key string, ttl time.Duration) (int64, time.Duration, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now()
	w, ok := s.windows[key]
	if !ok || now.After(w.expiresAt) {
		w = &window{expiresAt: now.Add(ttl)}
		s.windows[key] = w
	}
	w.count++
	return w.count, time.Until(w.expiresAt), nil
}

func (s *MemoryStore) Reset(_ context.Context, key string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.windows, key)
	return nil
}

// Close stops the cleanup goroutine. Safe for repeated calls.
func (s *MemoryStore) Close() {
	s.cleanupOnce.Do(func() { close(s.stopCleanup) })
}

func (s *MemoryStore) cleanupLoop() {
	ticker := time.NewTicker(s.cleanupInterval)
	defer ticker.Stop()

	for {
		select {
		case <-s.stopCleanup:
			return
		case <-ticker.C:
			now := time.Now()
			s.mu.Lock()
			for key, w := range s.windows {
				if now.After(w.expiresAt) {
					delete(s.windows, key)
				}
			}
			s.mu.Unlock()
		}
	}
}
