package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisStore maps Store one-to-one onto Redis commands.
type RedisStore struct {
	c *redis.Client
}

func OpenRedis(ctx context.Context, url string) (*RedisStore, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	s := NewRedis(redis.NewClient(opt))
	if err := s.Ping(ctx); err != nil {
		_ = s.Close()
		return nil, err
	}
	return s, nil
}

func NewRedis(c *redis.Client) *RedisStore { return &RedisStore{c: c} }

func (s *RedisStore) Get(ctx context.Context, key string) (string, error) {
	v, err := s.c.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return v, err
}

func (s *RedisStore) Set(ctx context.Context, key, value string) error {
	return s.c.Set(ctx, key, value, 0).Err()
}

func (s *RedisStore) Del(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	return s.c.Del(ctx, keys...).Err()
}

func (s *RedisStore) MGet(ctx context.Context, keys ...string) ([]string, error) {
	out := make([]string, len(keys))
	if len(keys) == 0 {
		return out, nil
	}
	vals, err := s.c.MGet(ctx, keys...).Result()
	if err != nil {
		return nil, err
	}
	for i, v := range vals {
		if str, ok := v.(string); ok {
			out[i] = str
		}
	}
	return out, nil
}

func (s *RedisStore) Incr(ctx context.Context, key string) (int64, error) {
	return s.c.Incr(ctx, key).Result()
}

func (s *RedisStore) Expire(ctx context.Context, key string, ttl time.Duration) error {
	return s.c.Expire(ctx, key, ttl).Err()
}

func (s *RedisStore) LPush(ctx context.Context, key, value string) error {
	return s.c.LPush(ctx, key, value).Err()
}

func (s *RedisStore) LRange(ctx context.Context, key string) ([]string, error) {
	return s.c.LRange(ctx, key, 0, -1).Result()
}

func (s *RedisStore) LRem(ctx context.Context, key, value string) (int64, error) {
	return s.c.LRem(ctx, key, 0, value).Result()
}

func (s *RedisStore) Ping(ctx context.Context) error { return s.c.Ping(ctx).Err() }

func (s *RedisStore) Close() error { return s.c.Close() }
