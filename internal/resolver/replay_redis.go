package resolver

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const replayKeyPrefix = "devicegate:replay:"

// RedisReplayGuard enforces single-use tokens across instances with SET NX.
type RedisReplayGuard struct {
	client redis.Cmdable
	ttl    time.Duration
}

func NewRedisReplayGuard(client redis.Cmdable, ttl time.Duration) *RedisReplayGuard {
	if ttl <= 0 {
		ttl = 10 * time.Minute
	}
	return &RedisReplayGuard{client: client, ttl: ttl}
}

// Claim atomically marks the token consumed. SET NX returns false when the
// key already exists, i.e. the token was used before.
func (g *RedisReplayGuard) Claim(ctx context.Context, token string) (bool, error) {
	first, err := g.client.SetNX(ctx, replayKeyPrefix+token, "1", g.ttl).Result()
	if err != nil {
		return false, fmt.Errorf("claim token: %w", err)
	}
	return first, nil
}
