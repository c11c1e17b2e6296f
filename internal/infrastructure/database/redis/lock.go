// internal/infrastructure/database/redis/lock.go
package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/sirupsen/logrus"
)

// releaseScript deletes the key only if it still holds our token
var releaseScript = redis.NewScript(`
if redis.call("GET", KEYS[1]) == ARGV[1] then
	return redis.call("DEL", KEYS[1])
end
return 0`)

// Locker hands out short-lived mutual exclusion keyed by name
type Locker struct {
	rdb    *redis.Client
	prefix string
	log    logrus.FieldLogger
}

// NewLocker creates a locker whose keys start with prefix
func NewLocker(c *Client, prefix string, log logrus.FieldLogger) *Locker {
	return &Locker{rdb: c.Redis, prefix: prefix, log: log}
}

// Acquire takes the lock with SETNX. ok is false when someone else holds it.
func (l *Locker) Acquire(ctx context.Context, name string, ttl time.Duration) (release func(), ok bool, err error) {
	key := l.prefix + name
	token := uuid.NewString()

	ok, err = l.rdb.SetNX(ctx, key, token, ttl).Result()
	if err != nil {
		return nil, false, fmt.Errorf("failed to acquire lock %s: %w", key, err)
	}
	if !ok {
		return nil, false, nil
	}

	release = func() {
		// Released with a fresh context so a cancelled request still unlocks
		rctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := releaseScript.Run(rctx, l.rdb, []string{key}, token).Err(); err != nil {
			// the key stays until its TTL runs out
			l.log.WithError(err).WithFields(logrus.Fields{"key": key, "ttl": ttl}).Warn("failed to release lock")
		}
	}
	return release, true, nil
}
