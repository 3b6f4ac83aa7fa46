package cache

import (
	"context"
	"errors"
	"time"
)

// Cache is a string key-value store. Implementations must be safe for
// concurrent use.
type Cache interface {
	// Get returns ErrMiss when the key is absent.
	Get(ctx context.Context, key string) (string, error)
	// Set stores value with ttl; ttl <= 0 means no expiry.
	Set(ctx context.Context, key string, value string, ttl time.Duration) error
	Del(ctx context.Context, keys ...string) error
}

var ErrMiss = errors.New("cache: miss")

// Nop never stores anything. Used when Redis is not configured.
type Nop struct{}

var _ Cache = Nop{}

func (Nop) Get(context.Context, string) (string, error) { return "", ErrMiss }
func (Nop) Set(context.Context, string, string, time.Duration) error { return nil }
func (Nop) Del(context.Context, ...string) error { return nil }
