// Package cache implements the read-through article cache and its backends.
package cache

import (
	"context"
	"errors"
	"time"
)

// ErrMiss is returned by Store.Get when the key is absent or expired.
var ErrMiss = errors.New("cache miss")

// Namespace prefixes every article entry in shared backends.
const Namespace = "articles:"

// Store is a byte-oriented cache backend. Every method must be safe for
// concurrent use.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Clear removes every entry the store owns.
	Clear(ctx context.Context) error
	Ping(ctx context.Context) error
}

// NopStore never holds anything. It backs CACHE_DRIVER=none.
type NopStore struct{}

func (NopStore) Get(context.Context, string) ([]byte, error)              { return nil, ErrMiss }
func (NopStore) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (NopStore) Clear(context.Context) error                              { return nil }
func (NopStore) Ping(context.Context) error                               { return nil }
