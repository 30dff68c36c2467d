package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"

	"bloommarket/internal/domain/entity"
	"bloommarket/internal/session"
	"bloommarket/pkg/logger"
)

const (
	keyPrefix = "bloom:user:"
	// DefaultSessionTTL keeps a cached session for a month of inactivity.
	DefaultSessionTTL = 30 * 24 * time.Hour
)

// RedisSessionCache stores the signed-in user as JSON under bloom:user:<id>.
type RedisSessionCache struct {
	client *redis.Client
	ttl    time.Duration
}

var _ session.SessionCache = (*RedisSessionCache)(nil)

func NewRedisSessionCache(client *redis.Client, ttl time.Duration) *RedisSessionCache {
	if ttl <= 0 {
		ttl = DefaultSessionTTL
	}
	return &RedisSessionCache{client: client, ttl: ttl}
}

// NewRedisClient connects and pings so a bad address fails at startup.
func NewRedisClient(ctx context.Context, addr, password string, db int) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis at %s: %w", addr, err)
	}
	return client, nil
}

func (c *RedisSessionCache) Load(ctx context.Context, userID string) (_ *entity.User, err error) {
	defer logger.Time(ctx, "cache.session.load")(&err)

	raw, err := c.client.Get(ctx, key(userID)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get session %s: %w", userID, err)
	}

	var user entity.User
	if err := json.Unmarshal(raw, &user); err != nil {
		return nil, fmt.Errorf("decode session %s: %w", userID, err)
	}
	return &user, nil
}

func (c *RedisSessionCache) Save(ctx context.Context, user *entity.User) (err error) {
	defer logger.Time(ctx, "cache.session.save")(&err)

	raw, err := json.Marshal(user)
	if err != nil {
		return fmt.Errorf("encode session %s: %w", user.ID, err)
	}
	if err := c.client.Set(ctx, key(user.ID), raw, c.ttl).Err(); err != nil {
		return fmt.Errorf("set session %s: %w", user.ID, err)
	}
	return nil
}

func (c *RedisSessionCache) Delete(ctx context.Context, userID string) error {
	if err := c.client.Del(ctx, key(userID)).Err(); err != nil {
		return fmt.Errorf("delete session %s: %w", userID, err)
	}
	return nil
}

func key(userID string) string {
	return keyPrefix + userID
}
