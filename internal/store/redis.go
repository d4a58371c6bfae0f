package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/redis/go-redis/v9"
)

// Redis is a Backend on a redis server.
type Redis struct {
	client *redis.Client
}

// NewRedis connects to the server at url (redis://host:port/db) and pings it.
func NewRedis(ctx context.Context, url string) (*Redis, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	c := redis.NewClient(opt)
	if err := c.Ping(ctx).Err(); err != nil {
		_ = c.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}
	return &Redis{client: c}, nil
}

func (r *Redis) Get(ctx context.Context, key string) (string, error) {
	v, err := r.client.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", ErrNotFound
	}
	return v, err
}

func (r *Redis) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.client.Set(ctx, key, value, ttl).Err()
}

// Consume uses INCR so concurrent callers never undercount. The first hit of a
// window sets the expiry.
func (r *Redis) Consume(ctx context.Context, key string, limit int, window time.Duration) (time.Duration, error) {
	n, err := r.client.Incr(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if n == 1 {
		if err := r.client.Expire(ctx, key, window).Err(); err != nil {
			return 0, err
		}
	}
	if n <= int64(limit) {
		return 0, nil
	}
	ttl, err := r.client.TTL(ctx, key).Result()
	if err != nil {
		return 0, err
	}
	if ttl < 0 {
		// Counter lost its expiry; restart the window rather than block forever.
		if err := r.client.Expire(ctx, key, window).Err(); err != nil {
			return 0, err
		}
		return window, nil
	}
	return ttl, nil
}

func (r *Redis) Close() error { return r.client.Close() }
