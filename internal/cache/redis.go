package cache

import (
	"context"
	"time"

	"github.com/redis/go-redis/v9"
)

type Config struct {
	Addr     string
	DB       int
	Password string
}

// Redis is a thin wrapper over go-redis exposing just the key/value
// operations the revocation store needs.
type Redis struct {
	rdb *redis.Client
}

func New(cfg Config) *Redis {
	rdb := redis.NewClient(&redis.Options{
		Addr:     cfg.Addr,
		DB:       cfg.DB,
		Password: cfg.Password,
	})
	return &Redis{rdb: rdb}
}

func (c *Redis) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *Redis) Close() error {
	return c.rdb.Close()
}

func (c *Redis) SetEx(ctx context.Context, key, val string, ttl time.Duration) error {
	return c.rdb.SetEx(ctx, key, val, ttl).Err()
}

func (c *Redis) Exists(ctx context.Context, key string) (bool, error) {
	n, err := c.rdb.Exists(ctx, key).Result()
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (c *Redis) SAdd(ctx context.Context, key, member string) error {
	return c.rdb.SAdd(ctx, key, member).Err()
}

func (c *Redis) SMembers(ctx context.Context, key string) ([]string, error) {
	return c.rdb.SMembers(ctx, key).Result()
}

func (c *Redis) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return c.rdb.Del(ctx, keys...).Err()
}

// ExpireGT raises the TTL of key to ttl, never lowering an existing longer one.
func (c *Redis) ExpireGT(ctx context.Context, key string, ttl time.Duration) error {
	return c.rdb.ExpireGT(ctx, key, ttl).Err()
}
