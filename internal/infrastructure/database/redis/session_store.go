package redis

import (
	"context"
	"errors"
	"strconv"
	"time"

	"github.com/redis/go-redis/v9"
)

const (
	refreshPrefix = "auth:refresh:"
	deniedPrefix  = "auth:denied:"
)

// SessionStore keeps refresh sessions and the access token deny-list
type SessionStore struct {
	rdb *redis.Client
}

// NewSessionStore creates a session store
func NewSessionStore(c *Client) *SessionStore {
	return &SessionStore{rdb: c.Redis}
}

func (s *SessionStore) SaveRefresh(ctx context.Context, jti string, userID uint, ttl time.Duration) error {
	return s.rdb.Set(ctx, refreshPrefix+jti, userID, ttl).Err()
}

func (s *SessionStore) RefreshOwner(ctx context.Context, jti string) (uint, bool, error) {
	val, err := s.rdb.Get(ctx, refreshPrefix+jti).Result()
	if errors.Is(err, redis.Nil) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	id, err := strconv.ParseUint(val, 10, 64)
	if err != nil {
		return 0, false, err
	}
	return uint(id), true, nil
}

func (s *SessionStore) RevokeRefresh(ctx context.Context, jti string) error {
	return s.rdb.Del(ctx, refreshPrefix+jti).Err()
}

func (s *SessionStore) DenyAccess(ctx context.Context, jti string, ttl time.Duration) error {
	return s.rdb.Set(ctx, deniedPrefix+jti, 1, ttl).Err()
}

func (s *SessionStore) AccessDenied(ctx context.Context, jti string) (bool, error) {
	n, err := s.rdb.Exists(ctx, deniedPrefix+jti).Result()
	return n > 0, err
}
