package cache

import (
	"context"
	"encoding/json"
	"sync"
	"time"

	"salonbook/internal/domain"
	"salonbook/internal/metrics"
	"salonbook/internal/models"

	"github.com/rs/zerolog"
)

// Cache is a staleness-aware JSON store over a durable key-value substrate.
// A value past its validity window is still returned; stale-while-revalidate
// is enforced by the gateway, which checks Fresh separately. Storage errors
// are logged and degrade to always-miss behavior; no cache error reaches a
// caller.
//
// Each key carries its own last-write timestamp, persisted together under
// models.CacheKeyTimestamps.
type Cache struct {
	storage domain.CacheStorage
	window  time.Duration
	logger  *zerolog.Logger
	now     func() time.Time

	// guards the read-modify-write cycle on the timestamps key
	mu sync.Mutex
}

func New(storage domain.CacheStorage, window time.Duration, logger *zerolog.Logger) *Cache {
	return &Cache{
		storage: storage,
		window:  window,
		logger:  logger,
		now:     time.Now,
	}
}

// Put stores the value under key and records the write time.
func (c *Cache) Put(ctx context.Context, key string, value interface{}) {
	data, err := json.Marshal(value)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache encode failed")
		return
	}

	if err := c.storage.Set(ctx, key, string(data)); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache write failed")
		return
	}

	c.touch(ctx, key)
}

// Get decodes the cached value into dest and reports presence. Stale
// entries are returned as well; callers consult Fresh to decide on a
// revalidation.
func (c *Cache) Get(ctx context.Context, key string, dest interface{}) bool {
	raw, ok, err := c.storage.Get(ctx, key)
	if err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache read failed")
		metrics.IncCacheRead("miss")
		return false
	}
	if !ok {
		metrics.IncCacheRead("miss")
		return false
	}

	if err := json.Unmarshal([]byte(raw), dest); err != nil {
		c.logger.Warn().Err(err).Str("key", key).Msg("cache entry corrupted, dropping")
		_ = c.storage.Delete(ctx, key)
		metrics.IncCacheRead("miss")
		return false
	}

	if c.Fresh(ctx, key) {
		metrics.IncCacheRead("hit")
	} else {
		metrics.IncCacheRead("stale")
	}
	return true
}

// Fresh reports whether the key was written within the validity window.
func (c *Cache) Fresh(ctx context.Context, key string) bool {
	stamps := c.loadTimestamps(ctx)
	written, ok := stamps[key]
	if !ok {
		return false
	}
	return c.now().Sub(time.UnixMilli(written)) < c.window
}

// Clear removes the given keys; with no arguments it clears every entity
// key and the timestamp map.
func (c *Cache) Clear(ctx context.Context, keys ...string) {
	if len(keys) == 0 {
		keys = []string{
			models.CacheKeyBookings,
			models.CacheKeyProcedures,
			models.CacheKeyClients,
			models.CacheKeySettings,
			models.CacheKeyTimestamps,
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	stamps := c.readTimestampsLocked(ctx)
	for _, key := range keys {
		if err := c.storage.Delete(ctx, key); err != nil {
			c.logger.Warn().Err(err).Str("key", key).Msg("cache delete failed")
		}
		delete(stamps, key)
	}
	c.writeTimestampsLocked(ctx, stamps)
}

func (c *Cache) touch(ctx context.Context, key string) {
	c.mu.Lock()
	defer c.mu.Unlock()

	stamps := c.readTimestampsLocked(ctx)
	stamps[key] = c.now().UnixMilli()
	c.writeTimestampsLocked(ctx, stamps)
}

func (c *Cache) loadTimestamps(ctx context.Context) map[string]int64 {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.readTimestampsLocked(ctx)
}

func (c *Cache) readTimestampsLocked(ctx context.Context) map[string]int64 {
	stamps := make(map[string]int64)
	raw, ok, err := c.storage.Get(ctx, models.CacheKeyTimestamps)
	if err != nil || !ok {
		return stamps
	}
	if err := json.Unmarshal([]byte(raw), &stamps); err != nil {
		return make(map[string]int64)
	}
	return stamps
}

func (c *Cache) writeTimestampsLocked(ctx context.Context, stamps map[string]int64) {
	data, err := json.Marshal(stamps)
	if err != nil {
		return
	}
	if err := c.storage.Set(ctx, models.CacheKeyTimestamps, string(data)); err != nil {
		c.logger.Warn().Err(err).Msg("cache timestamp write failed")
	}
}
