package service

import (
	"context"
	"strings"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

const redisLimiterTimeout = 500 * time.Millisecond

// La ventana empieza con el primer hit de la clave.
var fixedWindowScript = redis.NewScript(`
local current = redis.call("INCR", KEYS[1])
if current == 1 then
  redis.call("PEXPIRE", KEYS[1], ARGV[1])
end
return current
`)

// redisRateLimiter es un limitador de ventana fija compartido entre instancias
// de la API. Si Redis no responde deja pasar.
type redisRateLimiter struct {
	client redis.Scripter
	logger *zap.Logger
	window time.Duration
	max    int64
	prefix string
}

// NewRedisRateLimiter devuelve nil sin cliente. prefix separa los contadores de
// cada operacion (p.ej. "rl:invite:").
func NewRedisRateLimiter(client *redis.Client, logger *zap.Logger, prefix string, window time.Duration, max int) RateLimiter {
	if client == nil {
		return nil
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	if window < time.Millisecond {
		window = time.Minute
	}
	if max <= 0 {
		max = 1
	}
	if prefix == "" {
		prefix = "rl:"
	}
	return &redisRateLimiter{
		client: client,
		logger: logger,
		window: window,
		max:    int64(max),
		prefix: prefix,
	}
}

func (l *redisRateLimiter) Allow(key string) bool {
	if l == nil || l.client == nil {
		return true
	}
	key = strings.ToLower(strings.TrimSpace(key))
	if key == "" {
		return false
	}
	ctx, cancel := context.WithTimeout(context.Background(), redisLimiterTimeout)
	defer cancel()

	redisKey := l.prefix + key
	count, err := fixedWindowScript.Run(ctx, l.client, []string{redisKey}, l.window.Milliseconds()).Int64()
	if err != nil {
		l.logger.Warn("rate limiter unavailable", zap.String("key", redisKey), zap.Error(err))
		return true
	}
	return count <= l.max
}
