package redis

import (
	"context"
	"errors"
	"fmt"
	"time"

	goredis "github.com/redis/go-redis/v9"

	"github.com/wadjakorntonsri/tinylink/pkg/ports"
)

// DefaultPrefix namespaces the keys this application writes
const DefaultPrefix = "tinylink:"

// RedisRepository is a ports.KeyValueStore on plain Redis strings
type RedisRepository struct {
	rc     *goredis.Client
	prefix string
}

var _ ports.KeyValueStore = (*RedisRepository)(nil)

// NewRedisRepository connects to redisURL and verifies connectivity
func NewRedisRepository(ctx context.Context, redisURL, prefix string) (*RedisRepository, error) {
	opt, err := goredis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("invalid redis url: %w", err)
	}

	rc := goredis.NewClient(opt)
	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := rc.Ping(pingCtx).Err(); err != nil {
		_ = rc.Close()
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}

	return NewFromClient(rc, prefix), nil
}

// NewFromClient wraps an existing client
func NewFromClient(rc *goredis.Client, prefix string) *RedisRepository {
	if prefix == "" {
		prefix = DefaultPrefix
	}
	return &RedisRepository{rc: rc, prefix: prefix}
}

func (r *RedisRepository) Get(ctx context.Context, key string) (string, bool, error) {
	value, err := r.rc.Get(ctx, r.prefix+key).Result()
	if errors.Is(err, goredis.Nil) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("get %s: %w", key, err)
	}
	return value, true, nil
}

func (r *RedisRepository) Set(ctx context.Context, key, value string) error {
	if err := r.rc.Set(ctx, r.prefix+key, value, 0).Err(); err != nil {
		return fmt.Errorf("set %s: %w", key, err)
	}
	return nil
}

func (r *RedisRepository) Close() error {
	return r.rc.Close()
}
