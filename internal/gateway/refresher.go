package gateway

import (
	"context"
	"encoding/json"
	"sync"
	"sync/atomic"
	"time"

	"salonbook/internal/cache"
	"salonbook/internal/domain"
	"salonbook/internal/events"
	"salonbook/internal/metrics"

	"github.com/rs/zerolog"
	"golang.org/x/time/rate"
)

// Refresher performs the revalidate half of stale-while-revalidate: a
// detached fetch that rewrites the cache on success. Failures never reach
// the caller that observed the stale value; they flip a flag and a metric
// so the condition stays visible. At most one refresh per key is in flight,
// and a rate limiter caps the total refresh churn a burst of stale reads
// can cause.
type Refresher struct {
	client  *Client
	cache   *cache.Cache
	bus     domain.EventPublisher
	logger  *zerolog.Logger
	limiter *rate.Limiter
	timeout time.Duration

	mu         sync.Mutex
	inflight   map[string]struct{}
	lastFailed atomic.Bool
	wg         sync.WaitGroup
}

func NewRefresher(client *Client, c *cache.Cache, bus domain.EventPublisher, limit rate.Limit, burst int, timeout time.Duration, logger *zerolog.Logger) *Refresher {
	if burst <= 0 {
		burst = 1
	}
	return &Refresher{
		client:   client,
		cache:    c,
		bus:      bus,
		logger:   logger,
		limiter:  rate.NewLimiter(limit, burst),
		timeout:  timeout,
		inflight: make(map[string]struct{}),
	}
}

// Enqueue schedules a background refresh of one cache key. Duplicate
// requests for a key already being refreshed are dropped, as are requests
// over the rate budget; the next stale read re-enqueues.
func (r *Refresher) Enqueue(key, action string) {
	r.mu.Lock()
	if _, busy := r.inflight[key]; busy {
		r.mu.Unlock()
		return
	}
	r.inflight[key] = struct{}{}
	r.mu.Unlock()

	if !r.limiter.Allow() {
		r.release(key)
		return
	}

	r.wg.Add(1)
	go func() {
		defer r.wg.Done()
		defer r.release(key)
		r.refresh(key, action)
	}()
}

func (r *Refresher) refresh(key, action string) {
	ctx, cancel := context.WithTimeout(context.Background(), r.timeout)
	defer cancel()

	raw, err := r.client.Read(ctx, action, nil)
	if err != nil {
		r.lastFailed.Store(true)
		metrics.IncRefresh("error")
		r.logger.Warn().Err(err).Str("key", key).Msg("background refresh failed")
		return
	}

	r.cache.Put(ctx, key, json.RawMessage(raw))
	r.lastFailed.Store(false)
	metrics.IncRefresh("ok")
	_ = r.bus.PublishJSON(events.EventCacheRefreshed, events.CacheRefreshPayload{Key: key})
}

// LastRefreshFailed reports whether the most recent background refresh
// ended in an error.
func (r *Refresher) LastRefreshFailed() bool {
	return r.lastFailed.Load()
}

// Wait blocks until all in-flight refreshes finish.
func (r *Refresher) Wait() {
	r.wg.Wait()
}

func (r *Refresher) release(key string) {
	r.mu.Lock()
	delete(r.inflight, key)
	r.mu.Unlock()
}
