package outbox

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

const lockKeyPrefix = "procure:outbox:lock:" // procure:outbox:lock:{entry_id}

// releaseScript deletes the lock only if this holder still owns it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0
`)

// RedisLocker serialises dispatch of a single entry across workers.
type RedisLocker struct {
	client *redis.Client
}

func NewRedisLocker(client *redis.Client) *RedisLocker {
	return &RedisLocker{client: client}
}

// Acquire returns a release func when the lock was taken, or nil when another
// worker holds it.
func (l *RedisLocker) Acquire(ctx context.Context, id string, ttl time.Duration) (func(), error) {
	key := fmt.Sprintf("%s%s", lockKeyPrefix, id)
	token := uuid.NewString()
	ok, err := l.client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("failed to acquire outbox lock: %w", err)
	}
	if !ok {
		return nil, nil
	}
	return func() {
		_ = releaseScript.Run(context.Background(), l.client, []string{key}, token).Err()
	}, nil
}
