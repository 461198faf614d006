// Package cache es el key/value con TTL sobre el que corre el session store.
//
//   - Memory: in-process sobre go-cache (desarrollo, tests, un solo nodo).
//   - Redis: compartido entre réplicas.
package cache

import (
	"context"
	"errors"
	"time"
)

// Client define las operaciones de cache.
type Client interface {
	// Get devuelve ErrNotFound si la key no existe o expiró.
	Get(ctx context.Context, key string) (string, error)
	// Set con ttl 0 no expira.
	Set(ctx context.Context, key, value string, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
	// Take lee y borra en un solo paso. Entre llamadas concurrentes sobre la
	// misma key sólo una recibe el valor; el resto ErrNotFound.
	Take(ctx context.Context, key string) (string, error)
	Ping(ctx context.Context) error
	Close() error
}

// Config para NewRedis.
type Config struct {
	Addr     string // host:port
	Password string
	DB       int
	Prefix   string // prefijo para todas las keys
}

var ErrNotFound = errors.New("cache: key not found")

// IsNotFound verifica si el error es porque la key no existe.
func IsNotFound(err error) bool {
	return errors.Is(err, ErrNotFound)
}

func prefixed(prefix, k string) string {
	if prefix == "" {
		return k
	}
	return prefix + ":" + k
}
