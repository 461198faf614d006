package rate

import (
	"context"
	"sync"
	"time"

	gocache "github.com/patrickmn/go-cache"
	xrate "golang.org/x/time/rate"
)

// MemoryLimiter es un token bucket por clave, en proceso. Sirve para un solo
// nodo o para desarrollo; con varias réplicas usar RedisLimiter.
// Los buckets inactivos se descartan después de idle.
type MemoryLimiter struct {
	mu      sync.Mutex
	buckets *gocache.Cache
	max     int
	window  time.Duration
	every   xrate.Limit
}

// NewMemoryLimiter permite max requests por window, con ráfagas de hasta max.
func NewMemoryLimiter(max int, window time.Duration) *MemoryLimiter {
	if max <= 0 {
		max = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	idle := 2 * window
	return &MemoryLimiter{
		buckets: gocache.New(idle, idle),
		max:     max,
		window:  window,
		every:   xrate.Every(window / time.Duration(max)),
	}
}

func (l *MemoryLimiter) bucket(key string) *xrate.Limiter {
	l.mu.Lock()
	defer l.mu.Unlock()
	if v, ok := l.buckets.Get(key); ok {
		l.buckets.SetDefault(key, v)
		return v.(*xrate.Limiter)
	}
	b := xrate.NewLimiter(l.every, l.max)
	l.buckets.SetDefault(key, b)
	return b
}

// Allow consume un token de la clave.
func (l *MemoryLimiter) Allow(_ context.Context, key string) (Result, error) {
	b := l.bucket(key)
	now := time.Now()
	r := b.ReserveN(now, 1)
	if !r.OK() {
		return Result{Allowed: false, RetryAfter: l.window, WindowTTL: l.window}, nil
	}
	if d := r.DelayFrom(now); d > 0 {
		r.CancelAt(now)
		return Result{
			Allowed:     false,
			Remaining:   0,
			RetryAfter:  d,
			WindowTTL:   d,
			CurrentHits: int64(l.max),
		}, nil
	}
	remaining := int64(b.TokensAt(now))
	if remaining < 0 {
		remaining = 0
	}
	return Result{
		Allowed:     true,
		Remaining:   remaining,
		CurrentHits: int64(l.max) - remaining,
		WindowTTL:   l.window,
	}, nil
}
