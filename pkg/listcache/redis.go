package listcache

import (
	"context"
	"errors"
	"strings"
	"time"

	redis "github.com/redis/go-redis/v9"
)

const redisPrefix = "pitboss:list:"

// Redis backs the list cache with a shared redis instance, for dashboards
// that run more than one process against the same backend.
type Redis struct {
	cli *redis.Client
	ttl time.Duration
}

// NewRedis parses a redis URL (redis://host:port/db) and returns a store
// with the given default TTL.
func NewRedis(url string, defaultTTL time.Duration) (*Redis, error) {
	opt, err := redis.ParseURL(url)
	if err != nil {
		return nil, err
	}
	return &Redis{cli: redis.NewClient(opt), ttl: defaultTTL}, nil
}

func (r *Redis) Close() error { return r.cli.Close() }

func (r *Redis) Get(ctx context.Context, key string) ([]byte, bool, error) {
	b, err := r.cli.Get(ctx, redisPrefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return b, true, nil
}

func (r *Redis) Set(ctx context.Context, key string, val []byte, ttl time.Duration) error {
	if ttl <= 0 {
		ttl = r.ttl
	}
	return r.cli.Set(ctx, redisPrefix+key, val, ttl).Err()
}

func (r *Redis) Invalidate(ctx context.Context, keys ...string) error {
	if len(keys) == 0 {
		return nil
	}
	full := make([]string, 0, len(keys))
	for _, k := range keys {
		full = append(full, redisPrefix+k)
	}
	return r.cli.Del(ctx, full...).Err()
}

func (r *Redis) InvalidateView(ctx context.Context, view string) error {
	view = strings.TrimSpace(view)
	if view == "" {
		return nil
	}
	var cursor uint64
	pattern := redisPrefix + view + "|*"
	for {
		keys, next, err := r.cli.Scan(ctx, cursor, pattern, 256).Result()
		if err != nil {
			return err
		}
		if len(keys) > 0 {
			if err := r.cli.Del(ctx, keys...).Err(); err != nil {
				return err
			}
		}
		if next == 0 {
			return nil
		}
		cursor = next
	}
}
