package cache

import (
	"context"
	"sync/atomic"
	"time"

	"salonbook/internal/domain"

	"github.com/rs/zerolog"
)

// FailoverStorage pairs a durable primary with an in-memory fallback so a
// storage outage degrades the cache instead of breaking reads.
type FailoverStorage struct {
	primary  domain.CacheStorage
	fallback domain.CacheStorage
	logger   *zerolog.Logger
	isDown   atomic.Bool
	// unix nanos of the last failed primary probe; atomic because the
	// refresher goroutine and foreground reads race on it
	lastCheck atomic.Int64
}

func NewFailoverStorage(primary, fallback domain.CacheStorage, logger *zerolog.Logger) *FailoverStorage {
	return &FailoverStorage{
		primary:  primary,
		fallback: fallback,
		logger:   logger,
	}
}

func (s *FailoverStorage) Get(ctx context.Context, key string) (string, bool, error) {
	if !s.isDown.Load() {
		val, ok, err := s.primary.Get(ctx, key)
		if err == nil {
			return val, ok, nil
		}
		s.markDown(err, key)
	}

	// Try to recover after 1 minute
	if s.isDown.Load() && time.Since(time.Unix(0, s.lastCheck.Load())) > time.Minute {
		val, ok, err := s.primary.Get(ctx, key)
		if err == nil {
			s.isDown.Store(false)
			return val, ok, nil
		}
		s.lastCheck.Store(time.Now().UnixNano())
	}

	return s.fallback.Get(ctx, key)
}

func (s *FailoverStorage) Set(ctx context.Context, key, value string) error {
	if !s.isDown.Load() {
		err := s.primary.Set(ctx, key, value)
		if err == nil {
			// Mirror to the fallback so a later outage still has data.
			_ = s.fallback.Set(ctx, key, value)
			return nil
		}
		s.markDown(err, key)
	}

	return s.fallback.Set(ctx, key, value)
}

func (s *FailoverStorage) Delete(ctx context.Context, key string) error {
	if !s.isDown.Load() {
		err := s.primary.Delete(ctx, key)
		if err == nil {
			_ = s.fallback.Delete(ctx, key)
			return nil
		}
		s.markDown(err, key)
	}

	return s.fallback.Delete(ctx, key)
}

func (s *FailoverStorage) markDown(err error, key string) {
	s.logger.Error().Err(err).Str("key", key).Msg("Primary cache storage failed, falling back to memory")
	s.isDown.Store(true)
	s.lastCheck.Store(time.Now().UnixNano())
}
