package session

import (
	"context"
	"time"

	"github.com/dropDatabas3/hellojohn-connect/internal/cache"
)

// CacheStore implements Store on top of a cache.Client (memory or redis).
type CacheStore struct {
	c cache.Client
}

// NewCacheStore wraps c.
func NewCacheStore(c cache.Client) *CacheStore {
	return &CacheStore{c: c}
}

func (s *CacheStore) Get(ctx context.Context, sessionID, slot string) ([]byte, error) {
	v, err := s.c.Get(ctx, slotKey(sessionID, slot))
	if cache.IsNotFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(v), nil
}

func (s *CacheStore) Set(ctx context.Context, sessionID, slot string, value []byte, ttl time.Duration) error {
	return s.c.Set(ctx, slotKey(sessionID, slot), string(value), ttl)
}

func (s *CacheStore) Delete(ctx context.Context, sessionID, slot string) error {
	return s.c.Delete(ctx, slotKey(sessionID, slot))
}

func (s *CacheStore) Take(ctx context.Context, sessionID, slot string) ([]byte, error) {
	v, err := s.c.Take(ctx, slotKey(sessionID, slot))
	if cache.IsNotFound(err) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return []byte(v), nil
}
