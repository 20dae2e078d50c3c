package blacklist

import (
	"context"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

const redisKeyPrefix = "blacklist:token"

// RedisBlacklist stores token hashes with a TTL equal to the remaining token lifetime,
// so every instance sharing the Redis server sees the same logouts.
type RedisBlacklist struct {
	redis *redis.Client
}

func NewRedisBlacklist(redisClient *redis.Client) *RedisBlacklist {
	return &RedisBlacklist{redis: redisClient}
}

func (b *RedisBlacklist) Add(ctx context.Context, token string, expiresAt time.Time) error {
	ttl := time.Until(expiresAt)
	if ttl <= 0 {
		return nil
	}

	if err := b.redis.Set(ctx, b.key(token), 1, ttl).Err(); err != nil {
		return fmt.Errorf("failed to blacklist token: %w", err)
	}

	return nil
}

func (b *RedisBlacklist) Contains(ctx context.Context, token string) (bool, error) {
	n, err := b.redis.Exists(ctx, b.key(token)).Result()
	if err != nil {
		return false, fmt.Errorf("failed to check token blacklist: %w", err)
	}

	return n > 0, nil
}

func (b *RedisBlacklist) key(token string) string {
	return fmt.Sprintf("%s:%s", redisKeyPrefix, hashToken(token))
}
