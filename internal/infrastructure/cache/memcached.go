package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/bradfitz/gomemcache/memcache"
)

// MemcachedStore keeps entries in memcached. Memcached cannot enumerate keys,
// so Clear flushes the whole server: the instance must be dedicated to this
// service.
type MemcachedStore struct {
	client *memcache.Client
	prefix string
}

// NewMemcachedStore connects to the given addresses. No network I/O happens
// until the first command.
func NewMemcachedStore(prefix string, timeout time.Duration, addrs ...string) *MemcachedStore {
	client := memcache.New(addrs...)
	if timeout > 0 {
		client.Timeout = timeout
	}
	return &MemcachedStore{client: client, prefix: prefix}
}

func (s *MemcachedStore) Get(_ context.Context, key string) ([]byte, error) {
	item, err := s.client.Get(s.prefix + key)
	if errors.Is(err, memcache.ErrCacheMiss) {
		return nil, ErrMiss
	}
	if err != nil {
		return nil, fmt.Errorf("memcached get: %w", err)
	}
	return item.Value, nil
}

func (s *MemcachedStore) Set(_ context.Context, key string, value []byte, ttl time.Duration) error {
	item := &memcache.Item{
		Key:        s.prefix + key,
		Value:      value,
		Expiration: int32(ttl / time.Second),
	}
	if err := s.client.Set(item); err != nil {
		return fmt.Errorf("memcached set: %w", err)
	}
	return nil
}

func (s *MemcachedStore) Clear(context.Context) error {
	if err := s.client.FlushAll(); err != nil {
		return fmt.Errorf("memcached flush: %w", err)
	}
	return nil
}

func (s *MemcachedStore) Ping(context.Context) error {
	return s.client.Ping()
}
