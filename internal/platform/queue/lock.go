package queue

import (
	"context"
	"fmt"
	"log"
	"time"

	"alumni_connect/internal/common"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
)

var releaseScript = redis.NewScript(`
	if redis.call("get", KEYS[1]) == ARGV[1] then
		return redis.call("del", KEYS[1])
	else
		return 0
	end
`)

// Locker hands out short-lived exclusive locks keyed by name.
type Locker struct {
	rdb *redis.Client
	ttl time.Duration
}

func NewLocker(rdb *redis.Client, ttl time.Duration) *Locker {
	return &Locker{rdb: rdb, ttl: ttl}
}

// Acquire returns common.ErrInFlight when the key is already held. The returned
// release func only deletes the key while it still carries this holder's token.
func (l *Locker) Acquire(ctx context.Context, key string) (func(), error) {
	token := uuid.NewString()
	ok, err := l.rdb.SetNX(ctx, key, token, l.ttl).Result()
	if err != nil {
		return nil, fmt.Errorf("lock %s: %w", key, err)
	}
	if !ok {
		return nil, fmt.Errorf("lock %s held: %w", key, common.ErrInFlight)
	}

	release := func() {
		// Detached from the request so a cancelled caller still frees the key.
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		deleted, err := releaseScript.Run(ctx, l.rdb, []string{key}, token).Int64()
		if err != nil {
			log.Printf("ERROR: Failed to release lock %s: %v", key, err)
		} else if deleted == 0 {
			log.Printf("WARN: Lock %s expired before release", key)
		}
	}
	return release, nil
}
