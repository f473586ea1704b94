package cache

import (
	"context"
	"sync"
)

// MemoryStorage is the in-process fallback substrate; it does not survive a
// restart.
type MemoryStorage struct {
	entries sync.Map
}

func NewMemoryStorage() *MemoryStorage {
	return &MemoryStorage{}
}

func (s *MemoryStorage) Get(ctx context.Context, key string) (string, bool, error) {
	val, ok := s.entries.Load(key)
	if !ok {
		return "", false, nil
	}
	return val.(string), true, nil
}

func (s *MemoryStorage) Set(ctx context.Context, key, value string) error {
	s.entries.Store(key, value)
	return nil
}

func (s *MemoryStorage) Delete(ctx context.Context, key string) error {
	s.entries.Delete(key)
	return nil
}
