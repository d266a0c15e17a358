package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"golang.org/x/sync/singleflight"

	"github.com/inkwell/content-api/internal/api/metrics"
)

// DefaultTTL bounds how long an entry may live if no write clears it.
const DefaultTTL = 5 * time.Minute

var tracer = otel.Tracer("content-api/cache")

// ReadThrough serves reads from a Store and populates it on miss. Values are
// JSON encoded. Backend failures are logged and bypassed so the store stays
// the source of truth.
type ReadThrough struct {
	store Store
	ttl   time.Duration
	log   zerolog.Logger

	group singleflight.Group
	// gen is bumped by every invalidation. A load that started under an older
	// generation never writes its result back.
	gen atomic.Uint64
	// mu makes the generation check plus Set atomic with respect to
	// InvalidateAll. Stores hold it shared, invalidations exclusively.
	mu sync.RWMutex
}

func NewReadThrough(store Store, ttl time.Duration, log zerolog.Logger) *ReadThrough {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	return &ReadThrough{store: store, ttl: ttl, log: log}
}

// GetOrPopulate decodes the cached value for key into dst. On a miss loader is
// called once per key across concurrent callers, its result is stored and
// decoded into dst. Loader errors are returned as is and never cached.
func (r *ReadThrough) GetOrPopulate(ctx context.Context, key string, dst any, loader func(ctx context.Context) (any, error)) error {
	ctx, span := tracer.Start(ctx, "cache.GetOrPopulate")
	defer span.End()
	span.SetAttributes(attribute.String("cache.key", key))

	raw, err := r.store.Get(ctx, key)
	switch {
	case err == nil:
		if err := json.Unmarshal(raw, dst); err == nil {
			metrics.CacheRequestsTotal.WithLabelValues("hit").Inc()
			span.SetAttributes(attribute.Bool("cache.hit", true))
			return nil
		}
		r.log.Warn().Str("key", key).Msg("discarding undecodable cache entry")
		metrics.CacheRequestsTotal.WithLabelValues("error").Inc()
	case errors.Is(err, ErrMiss):
		metrics.CacheRequestsTotal.WithLabelValues("miss").Inc()
	default:
		r.log.Warn().Err(err).Str("key", key).Msg("cache get failed, reading from store")
		metrics.CacheRequestsTotal.WithLabelValues("error").Inc()
	}
	span.SetAttributes(attribute.Bool("cache.hit", false))

	gen := r.gen.Load()
	flight := key + "@" + strconv.FormatUint(gen, 10)
	v, err, _ := r.group.Do(flight, func() (any, error) {
		val, err := loader(context.WithoutCancel(ctx))
		if err != nil {
			return nil, err
		}
		b, err := json.Marshal(val)
		if err != nil {
			return nil, fmt.Errorf("encode cache value: %w", err)
		}
		r.storeIfCurrent(ctx, gen, key, b)
		return b, nil
	})
	if err != nil {
		span.RecordError(err)
		return err
	}
	return json.Unmarshal(v.([]byte), dst)
}

func (r *ReadThrough) storeIfCurrent(ctx context.Context, gen uint64, key string, b []byte) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	if r.gen.Load() != gen {
		return
	}
	if err := r.store.Set(ctx, key, b, r.ttl); err != nil {
		r.log.Warn().Err(err).Str("key", key).Msg("cache set failed")
	}
}

// InvalidateAll drops every entry. Failures are logged: the next reads may be
// stale for at most the entry TTL.
func (r *ReadThrough) InvalidateAll(ctx context.Context) {
	ctx, span := tracer.Start(ctx, "cache.InvalidateAll")
	defer span.End()

	r.mu.Lock()
	r.gen.Add(1)
	err := r.store.Clear(ctx)
	r.mu.Unlock()
	if err != nil {
		span.RecordError(err)
		metrics.CacheInvalidationsTotal.WithLabelValues("error").Inc()
		r.log.Error().Err(err).Msg("cache invalidation failed")
		return
	}
	metrics.CacheInvalidationsTotal.WithLabelValues("ok").Inc()
}

// Ping checks the backend for readiness probes.
func (r *ReadThrough) Ping(ctx context.Context) error {
	return r.store.Ping(ctx)
}
