// Package cache provides a Redis cache-aside decorator for the storefront catalog.
package cache

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"

	"voyage-bff/internal/adapter"
	"voyage-bff/internal/model"
)

const (
	DefaultTTL    = 5 * time.Minute
	defaultPrefix = "catalog:"

	// loadTimeout bounds a shared load that no longer follows any caller.
	loadTimeout = 30 * time.Second
)

// Catalog wraps an adapter.Catalog and caches the slow-changing reads
// (collections, lens options, shop info) in Redis. Product reads pass
// through so inventory stays fresh.
//
// Redis failures never fail a request: the cache is skipped and the
// underlying catalog is called directly.
type Catalog struct {
	next    adapter.Catalog
	client  *redis.Client
	prefix  string
	ttl     time.Duration
	sfGroup singleflight.Group // Prevents cache stampede
	logger  *slog.Logger
}

// NewCatalog creates a caching decorator. A zero ttl selects DefaultTTL.
func NewCatalog(next adapter.Catalog, client *redis.Client, ttl time.Duration, logger *slog.Logger) *Catalog {
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	if logger == nil {
		logger = slog.Default()
	}
	return &Catalog{
		next:   next,
		client: client,
		prefix: defaultPrefix,
		ttl:    ttl,
		logger: logger,
	}
}

func (c *Catalog) ListProducts(ctx context.Context, limit int) ([]model.Product, error) {
	return c.next.ListProducts(ctx, limit)
}

func (c *Catalog) GetProduct(ctx context.Context, id string) (*model.Product, error) {
	return c.next.GetProduct(ctx, id)
}

func (c *Catalog) CollectionProducts(ctx context.Context, handle string) ([]model.Product, error) {
	return c.next.CollectionProducts(ctx, handle)
}

func (c *Catalog) SearchProducts(ctx context.Context, query string) ([]model.Product, error) {
	return c.next.SearchProducts(ctx, query)
}

func (c *Catalog) ListCollections(ctx context.Context) ([]model.Collection, error) {
	return getOrLoad(ctx, c, "collections", true, c.next.ListCollections)
}

func (c *Catalog) LensOptions(ctx context.Context) (*model.LensOptions, error) {
	return getOrLoad(ctx, c, "lens-options", false, c.next.LensOptions)
}

func (c *Catalog) ShopInfo(ctx context.Context) (*model.Shop, error) {
	return getOrLoad(ctx, c, "shop", true, c.next.ShopInfo)
}

// Invalidate drops every cached catalog entry.
func (c *Catalog) Invalidate(ctx context.Context) error {
	keys := []string{c.prefix + "collections", c.prefix + "lens-options", c.prefix + "shop"}
	return c.client.Del(ctx, keys...).Err()
}

// getOrLoad implements cache-aside for one key.
// storeEmpty controls whether empty results are cached; lens options are
// empty when the upstream fetch failed, so those are not stored.
func getOrLoad[T any](ctx context.Context, c *Catalog, name string, storeEmpty bool, load func(context.Context) (T, error)) (T, error) {
	key := c.prefix + name

	// Step 1: Check cache first
	var cached T
	data, err := c.client.Get(ctx, key).Bytes()
	switch {
	case err == nil:
		if jsonErr := json.Unmarshal(data, &cached); jsonErr == nil {
			return cached, nil
		}
		c.logger.Warn("cache entry unreadable, reloading", slog.String("key", key))
	case !errors.Is(err, redis.Nil):
		c.logger.Warn("cache read failed", slog.String("key", key), slog.String("error", err.Error()))
	}

	// Step 2: Cache miss - load once for all concurrent callers.
	// The load is detached from whichever caller started it.
	ch := c.sfGroup.DoChan(key, func() (interface{}, error) {
		loadCtx, cancel := context.WithTimeout(context.WithoutCancel(ctx), loadTimeout)
		defer cancel()

		val, err := load(loadCtx)
		if err != nil {
			return val, err
		}
		if storeEmpty || !isEmpty(val) {
			c.store(loadCtx, key, val)
		}
		return val, nil
	})

	var zero T
	select {
	case <-ctx.Done():
		return zero, model.NewTimeoutError("Catalog", ctx.Err())
	case res := <-ch:
		if res.Err != nil {
			return zero, res.Err
		}
		return res.Val.(T), nil
	}
}

func (c *Catalog) store(ctx context.Context, key string, val interface{}) {
	payload, err := json.Marshal(val)
	if err != nil {
		c.logger.Warn("cache encode failed", slog.String("key", key), slog.String("error", err.Error()))
		return
	}
	if err := c.client.Set(ctx, key, payload, c.ttl).Err(); err != nil {
		c.logger.Warn("cache write failed", slog.String("key", key), slog.String("error", err.Error()))
	}
}

func isEmpty(v interface{}) bool {
	if opts, ok := v.(*model.LensOptions); ok {
		return opts == nil || len(opts.AllLenses) == 0
	}
	return false
}

var _ adapter.Catalog = (*Catalog)(nil)
