package cache

import (
	"context"
	"errors"
	"time"

	"github.com/redis/go-redis/v9"
	"golang.org/x/sync/singleflight"
)

// Redis backs the token cache with a shared store, so several fetcher
// processes reuse one scraped value. The single-flight guarantee is
// per process only.
type Redis struct {
	rdb   *redis.Client
	group singleflight.Group
}

func NewRedis(addr, password string, db int) (*Redis, error) {
	rdb := redis.NewClient(&redis.Options{
		Addr:     addr,
		Password: password,
		DB:       db,
	})
	if err := rdb.Ping(context.Background()).Err(); err != nil {
		return nil, err
	}
	return &Redis{rdb: rdb}, nil
}

func (r *Redis) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := r.rdb.Get(ctx, key).Result()
	if errors.Is(err, redis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, err
	}
	return value, true, nil
}

func (r *Redis) Set(ctx context.Context, key, value string, ttl time.Duration) error {
	return r.rdb.Set(ctx, key, value, ttl).Err()
}

func (r *Redis) GetOrFill(ctx context.Context, key string, ttl time.Duration, fill func(ctx context.Context) (string, error)) (string, error) {
	if value, ok, err := r.Get(ctx, key); err != nil {
		return "", err
	} else if ok {
		return value, nil
	}
	value, err, _ := r.group.Do(key, func() (any, error) {
		if value, ok, err := r.Get(ctx, key); err != nil {
			return "", err
		} else if ok {
			return value, nil
		}
		value, err := fill(ctx)
		if err != nil {
			return "", err
		}
		if err := r.Set(ctx, key, value, ttl); err != nil {
			return "", err
		}
		return value, nil
	})
	if err != nil {
		return "", err
	}
	return value.(string), nil
}
