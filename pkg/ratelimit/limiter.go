package ratelimit

import (
	"context"
	"errors"
	"time"
)

var (
	ErrInvalidLimit    = errors.New("invalid limit")
	ErrInvalidInterval = errors.New("invalid interval")
	ErrKeyRequired     = errors.New("key is required")
	ErrStoreRequired   = errors.New("store is required")
)

// Result contains the outcome of a rate limit check.
type Result struct {
	// Allowed indicates whether the request is allowed.
	Allowed bool

	// Limit is the maximum number of requests allowed in the window.
	Limit int

	// Remaining is the number of requests left in the current window.
	Remaining int

	// ResetAt is when the current window expires.
	ResetAt time.Time
}

// RetryAfter returns how long to wait before the next request may be
// allowed. Returns 0 if the current request was allowed.
func (r *Result) RetryAfter() time.Duration {
	if r.Allowed {
		return 0
	}
	return time.Until(r.ResetAt)
}

// Store is the counter backend for the fixed-window limiter.
type Store interface {
	// Increment atomically increments the counter for key, starting a new
	// window of the given length if none is active, and returns the new
	// count together with the time left in the window.
	Increment(ctx context.Context, key string, window time.Duration) (count int64, ttl time.Duration, err error)

	// Reset removes the counter for key.
	Reset(ctx context.Context, key string) error
}

// FixedWindow is a fixed-window rate limiter: up to limit requests per
// window per key. Coarser than a sliding window at the boundary, but cheap
// and good enough for throttling code-guessing attempts.
type FixedWindow struct {
	store  Store
	limit  int
	window time.Duration
}

// NewFixedWindow creates a fixed-window limiter.
func NewFixedWindow(store Store, limit int, window time.Duration) (*FixedWindow, error) {
	if store == nil {
		return nil, ErrStoreRequired
	}
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}
	if window <= 0 {
		return nil, ErrInvalidInterval
	}
	return &FixedWindow{store: store, limit: limit, window: window}, nil
}

// Allow consumes one slot for key and reports whether the request is within
// the limit.
func (fw *FixedWindow) Allow(ctx context.Context, key string) (*Result, error) {
	if key == "" {
		return nil, ErrKeyRequired
	}

	count, ttl, err := fw.store.Increment(ctx, key, fw.window)
	if err != nil {
		return nil, err
	}

	return &Result{
		Allowed:   count <= int64(fw.limit),
		Limit:     fw.limit,
		Remaining: max(0, fw.limit-int(count)),
		ResetAt:   time.Now().Add(ttl),
	}, nil
}

// Reset clears the counter for key.
func (fw *FixedWindow) Reset(ctx context.Context, key string) error {
	if key == "" {
		return ErrKeyRequired
	}
	return fw.store.Reset(ctx, key)
}
