// Package rate limita requests por clave (IP, path). Hay dos backends:
// fixed window en Redis (compartido entre réplicas) y token bucket en memoria.
package rate

import (
	"context"
	"strings"
	"time"

	rdb "github.com/redis/go-redis/v9"
)

// Result es la respuesta de un Limiter para una clave.
type Result struct {
	Allowed     bool
	Remaining   int64
	RetryAfter  time.Duration
	WindowTTL   time.Duration
	CurrentHits int64
}

// Limiter decide si una request con la clave dada puede pasar.
type Limiter interface {
	Allow(ctx context.Context, key string) (Result, error)
}

// INCR y PEXPIRE en el mismo script: la ventana nunca queda sin TTL aunque
// el proceso muera entre los dos comandos.
var fixedWindow = rdb.NewScript(`
local hits = redis.call("INCR", KEYS[1])
if hits == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return {hits, redis.call("PTTL", KEYS[1])}
`)

// RedisLimiter: fixed window por clave.
type RedisLimiter struct {
	client rdb.Scripter
	prefix string
	max    int64
	window time.Duration
}

func NewRedisLimiter(client rdb.Scripter, prefix string, max int, window time.Duration) *RedisLimiter {
	if prefix == "" {
		prefix = "rl:"
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RedisLimiter{client: client, prefix: prefix, max: int64(max), window: window}
}

func (l *RedisLimiter) Allow(ctx context.Context, key string) (Result, error) {
	redisKey := l.prefix + strings.ReplaceAll(key, " ", "_")

	vals, err := fixedWindow.Run(ctx, l.client, []string{redisKey}, l.window.Milliseconds()).Int64Slice()
	if err != nil {
		return Result{}, err
	}
	hits, ttl := vals[0], time.Duration(vals[1])*time.Millisecond
	if ttl < 0 {
		ttl = l.window
	}

	res := Result{
		Allowed:     hits <= l.max,
		Remaining:   max(l.max-hits, 0),
		CurrentHits: hits,
		WindowTTL:   ttl,
	}
	if !res.Allowed {
		res.RetryAfter = ttl
	}
	return res, nil
}
