package catalog

import (
	"context"
	"encoding/json"
	"errors"
	"math/rand/v2"
	"strings"
	"time"

	"golang.org/x/sync/singleflight"

	pkgerrors "github.com/florista/bouquet-bff/pkg/errors"
	"github.com/florista/bouquet-bff/pkg/logger"
	redisclient "github.com/florista/bouquet-bff/pkg/redis"
)

const (
	cacheScope         = "catalog"
	sharedFetchTimeout = 15 * time.Second
)

// cacheStore is the Redis surface the read-through cache needs.
type cacheStore interface {
	Get(ctx context.Context, key string) (string, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	CacheKey(scope string, parts ...string) string
	DeletePattern(ctx context.Context, pattern string) (int, error)
}

// readThrough caches public catalog reads in Redis. Concurrent misses for the
// same key share one upstream call. A nil store disables caching.
type readThrough struct {
	store  cacheStore
	ttl    time.Duration
	jitter func(time.Duration) time.Duration
	group  singleflight.Group
	logg   *logger.Logger
}

func newReadThrough(store cacheStore, ttl time.Duration, logg *logger.Logger) *readThrough {
	if ttl <= 0 {
		store = nil
	}
	return &readThrough{store: store, ttl: ttl, jitter: tenthJitter, logg: logg}
}

// tenthJitter spreads expiries over an extra 0-10% of the ttl.
func tenthJitter(ttl time.Duration) time.Duration {
	span := int64(ttl / 10)
	if span <= 0 {
		return 0
	}
	return time.Duration(rand.Int64N(span))
}

func (c *readThrough) enabled() bool {
	return c != nil && c.store != nil
}

func (c *readThrough) key(resource string, parts ...string) string {
	if !c.enabled() {
		return resource + ":" + strings.Join(parts, ":")
	}
	return c.store.CacheKey(cacheScope, append([]string{resource}, parts...)...)
}

// purge drops every cached entry of resource.
func (c *readThrough) purge(ctx context.Context, resource string) (int, error) {
	if !c.enabled() {
		return 0, nil
	}
	return c.store.DeletePattern(ctx, c.store.CacheKey(cacheScope, resource, "*"))
}

// cached returns the value stored under key, or runs fetch once for all
// concurrent callers and stores its result. Redis failures degrade to fetch.
func cached[T any](ctx context.Context, c *readThrough, key string, fetch func(context.Context) (T, error)) (T, error) {
	if !c.enabled() {
		return fetch(ctx)
	}

	var out T
	raw, err := c.store.Get(ctx, key)
	switch {
	case err == nil:
		if jsonErr := json.Unmarshal([]byte(raw), &out); jsonErr == nil {
			return out, nil
		}
		c.logg.Warn(c.logg.WithField(ctx, "cache_key", key), "discarding undecodable catalog cache entry")
	case !errors.Is(err, redisclient.Nil):
		c.logg.Error(c.logg.WithField(ctx, "cache_key", key), "catalog cache read failed", err)
	}

	// The shared fetch outlives any single caller; each caller stops waiting
	// when its own context ends.
	flight := c.group.DoChan(key, func() (any, error) {
		fetchCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), sharedFetchTimeout)
		defer cancel()
		value, err := fetch(fetchCtx)
		if err != nil {
			return value, err
		}
		payload, err := json.Marshal(value)
		if err == nil {
			err = c.store.Set(fetchCtx, key, payload, c.ttl+c.jitter(c.ttl))
		}
		if err != nil {
			c.logg.Error(c.logg.WithField(ctx, "cache_key", key), "catalog cache write failed", err)
		}
		return value, nil
	})
	select {
	case <-ctx.Done():
		return out, pkgerrors.Wrap(pkgerrors.CodeDependency, ctx.Err(), "catalog request cancelled")
	case res := <-flight:
		if res.Err != nil {
			return out, res.Err
		}
		return res.Val.(T), nil
	}
}
