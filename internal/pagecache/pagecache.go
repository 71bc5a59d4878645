// Package pagecache stores rendered page fragments in redis and drops them
// after writes made from the management pages.
package pagecache

import (
	"context"
	"strconv"
	"time"

	"go.uber.org/zap"

	"staffdir/internal/routes"
)

const (
	keyPrefix        = "page:"
	generationPrefix = "pagegen:"
)

// Store is the subset of cache.Client the page cache needs.
type Store interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Incr(ctx context.Context, key string, ttl time.Duration) (int64, error)
	HGet(ctx context.Context, key, field string) ([]byte, error)
	HSet(ctx context.Context, key, field string, value []byte, ttl time.Duration) error
	Delete(ctx context.Context, keys ...string) error
}

// Cache keeps one redis hash per path and generation; hash fields are
// render variants of that path such as the query string. Revalidating a
// path bumps its generation, so a render computed before the bump is
// written to a hash nobody reads any more.
type Cache struct {
	store  Store
	ttl    time.Duration
	logger *zap.Logger
}

// New builds a page cache over store.
func New(store Store, ttl time.Duration, logger *zap.Logger) *Cache {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Cache{store: store, ttl: ttl, logger: logger}
}

func (c *Cache) generation(ctx context.Context, path string) int64 {
	data, _ := c.store.Get(ctx, generationPrefix+path)
	if data == nil {
		return 0
	}
	gen, err := strconv.ParseInt(string(data), 10, 64)
	if err != nil {
		return 0
	}
	return gen
}

func pageKey(path string, gen int64) string {
	return keyPrefix + path + "#" + strconv.FormatInt(gen, 10)
}

// Get returns the cached render of path for variant. slot names the
// generation the lookup saw; pass it to Put when storing a render computed
// after a miss.
func (c *Cache) Get(ctx context.Context, path, variant string) (body []byte, slot string, ok bool) {
	slot = pageKey(path, c.generation(ctx, path))
	data, _ := c.store.HGet(ctx, slot, variant)
	if data == nil {
		return nil, slot, false
	}
	return data, slot, true
}

// Put stores a render for variant in slot.
func (c *Cache) Put(ctx context.Context, slot, variant string, body []byte) {
	_ = c.store.HSet(ctx, slot, variant, body, c.ttl)
}

// Revalidate marks the renders affected by a write made from path as stale:
// the originating page and the employee listing. Writes from paths outside
// the management pages invalidate nothing and report false.
func (c *Cache) Revalidate(ctx context.Context, path string) bool {
	if !routes.IsManagementPath(path) {
		return false
	}
	for _, p := range []string{path, routes.Dashboard} {
		c.bump(ctx, p)
	}
	c.logger.Debug("page cache revalidated", zap.String("path", path))
	return true
}

// bump moves path to a new generation and drops the renders of the old one.
// The counter outlives the renders it fences.
func (c *Cache) bump(ctx context.Context, path string) {
	old := c.generation(ctx, path)
	if _, err := c.store.Incr(ctx, generationPrefix+path, 2*c.ttl); err != nil {
		c.logger.Warn("page cache generation bump failed", zap.String("path", path), zap.Error(err))
	}
	_ = c.store.Delete(ctx, pageKey(path, old))
}
