package cache

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
)

// memoryClient implementa Client sobre go-cache.
// Útil para desarrollo, testing y despliegues de un solo nodo.
type memoryClient struct {
	prefix string
	c      *gocache.Cache
	// takeMu serializa Take para que Get+Delete sea atómico.
	takeMu sync.Mutex
}

// NewMemory crea un cliente de cache en memoria. defaultTTL aplica cuando
// Set recibe ttl < 0; 0 significa sin expiración.
func NewMemory(prefix string, defaultTTL time.Duration) *memoryClient {
	if defaultTTL <= 0 {
		defaultTTL = gocache.NoExpiration
	}
	return &memoryClient{
		prefix: prefix,
		c:      gocache.New(defaultTTL, time.Minute),
	}
}

func (c *memoryClient) key(k string) string { return prefixed(c.prefix, k) }

func (c *memoryClient) Get(ctx context.Context, key string) (string, error) {
	v, ok := c.c.Get(c.key(key))
	if !ok {
		return "", ErrNotFound
	}
	s, _ := v.(string)
	return s, nil
}

func (c *memoryClient) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	switch {
	case ttl == 0:
		ttl = gocache.NoExpiration
	case ttl < 0:
		ttl = gocache.DefaultExpiration
	}
	c.takeMu.Lock()
	defer c.takeMu.Unlock()
	c.c.Set(c.key(key), value, ttl)
	return nil
}

func (c *memoryClient) Delete(ctx context.Context, key string) error {
	c.takeMu.Lock()
	defer c.takeMu.Unlock()
	c.c.Delete(c.key(key))
	return nil
}

func (c *memoryClient) Take(ctx context.Context, key string) (string, error) {
	c.takeMu.Lock()
	defer c.takeMu.Unlock()

	k := c.key(key)
	v, ok := c.c.Get(k)
	if !ok {
		return "", ErrNotFound
	}
	c.c.Delete(k)
	s, _ := v.(string)
	return s, nil
}

func (c *memoryClient) Ping(ctx context.Context) error {
	return nil
}

func (c *memoryClient) Close() error {
	c.c.Flush()
	return nil
}
