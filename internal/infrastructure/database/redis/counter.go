package redis

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
)

const visitPrefix = "visits:"

// VisitCounter counts storefront visits per calendar day
type VisitCounter struct {
	rdb       *redis.Client
	retention time.Duration
}

// NewVisitCounter keeps daily counters for retention
func NewVisitCounter(c *Client, retention time.Duration) *VisitCounter {
	return &VisitCounter{rdb: c.Redis, retention: retention}
}

// Incr adds one visit to day
func (v *VisitCounter) Incr(ctx context.Context, day time.Time) error {
	key := visitPrefix + day.Format("20060102")
	pipe := v.rdb.TxPipeline()
	pipe.Incr(ctx, key)
	pipe.Expire(ctx, key, v.retention)
	_, err := pipe.Exec(ctx)
	return err
}

// Count returns the visits recorded for day
func (v *VisitCounter) Count(ctx context.Context, day time.Time) (int64, error) {
	n, err := v.rdb.Get(ctx, visitPrefix+day.Format("20060102")).Int64()
	if errors.Is(err, redis.Nil) {
		return 0, nil
	}
	return n, err
}
