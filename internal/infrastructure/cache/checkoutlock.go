package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const checkoutLockPrefix = "mallhub:checkout:lock:"

// releaseScript deletes the key only while it still holds the caller's
// token, so an expired lock re-acquired by another process is left alone.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisCheckoutLock is a SET NX lease keyed by tenant, order and provider.
type RedisCheckoutLock struct {
	client *redis.Client
	prefix string
}

func NewRedisCheckoutLock(client *redis.Client) *RedisCheckoutLock {
	return &RedisCheckoutLock{
		client: client,
		prefix: checkoutLockPrefix,
	}
}

// Acquire returns a token that must be handed back to Release. acquired is
// false when another holder owns the key.
func (l *RedisCheckoutLock) Acquire(ctx context.Context, key string, ttl time.Duration) (string, bool, error) {
	if key == "" {
		return "", false, errors.New("lock key cannot be empty")
	}

	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, l.prefix+key, token, ttl).Result()
	if err != nil {
		return "", false, fmt.Errorf("failed to acquire checkout lock: %w", err)
	}
	if !ok {
		return "", false, nil
	}
	return token, true, nil
}

func (l *RedisCheckoutLock) Release(ctx context.Context, key, token string) error {
	if token == "" {
		return nil
	}
	if err := releaseScript.Run(ctx, l.client, []string{l.prefix + key}, token).Err(); err != nil {
		return fmt.Errorf("failed to release checkout lock: %w", err)
	}
	return nil
}
