package cache

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

// ErrLockHeld is returned when another holder owns the lock.
var ErrLockHeld = errors.New("platform/cache: lock held")

// New creates a new Redis client.
func New(ctx context.Context, addr string) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr: addr,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("platform/cache: ping: %w", err)
	}

	return client, nil
}

// releaseScript deletes the key only when the caller still owns it.
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// Lock is a best-effort mutual exclusion token stored in Redis.
type Lock struct {
	client *redis.Client
	key    string
	token  string
}

// Acquire takes the lock with SET NX and the given ttl. It returns
// ErrLockHeld when somebody else owns the key.
func Acquire(ctx context.Context, client *redis.Client, key string, ttl time.Duration) (*Lock, error) {
	if client == nil {
		return &Lock{key: key}, nil
	}
	token := uuid.NewString()
	ok, err := client.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("platform/cache: acquire %s: %w", key, err)
	}
	if !ok {
		return nil, ErrLockHeld
	}
	return &Lock{client: client, key: key, token: token}, nil
}

// Release frees the lock if it is still owned.
func (l *Lock) Release(ctx context.Context) error {
	if l == nil || l.client == nil {
		return nil
	}
	return releaseScript.Run(ctx, l.client, []string{l.key}, l.token).Err()
}
