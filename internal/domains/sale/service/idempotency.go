package service

import (
	"context"
	"time"

	"github.com/rs/zerolog/log"

	"pos-backend/pkg/cache"
)

const idempotencyKeyPrefix = "sale:idempotency:"

// IdempotencyGuard marks a checkout key as in flight so a retried request
// arriving before the first one commits is rejected instead of racing it.
type IdempotencyGuard interface {
	Acquire(ctx context.Context, key string) (bool, error)
	Release(ctx context.Context, key string)
}

type redisIdempotencyGuard struct {
	cache cache.Cache
	ttl   time.Duration
}

func NewIdempotencyGuard(c cache.Cache, ttl time.Duration) IdempotencyGuard {
	return &redisIdempotencyGuard{cache: c, ttl: ttl}
}

func (g *redisIdempotencyGuard) Acquire(ctx context.Context, key string) (bool, error) {
	return g.cache.SetNX(ctx, idempotencyKeyPrefix+key, time.Now().Unix(), g.ttl)
}

func (g *redisIdempotencyGuard) Release(ctx context.Context, key string) {
	if err := g.cache.Delete(ctx, idempotencyKeyPrefix+key); err != nil {
		log.Warn().Err(err).Str("idempotency_key", key).Msg("failed to release idempotency guard")
	}
}
