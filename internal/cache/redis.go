package cache

import (
	"context"
	"fmt"
	"log"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisCache backs the authorization cache with a shared redis instance so
// verdicts survive process restarts and are shared across replicas.
type RedisCache struct {
	client *redis.Client
	log    *log.Logger
}

// NewRedisCache parses redisURL (e.g. "redis://localhost:6379/0"), connects
// and pings the server to verify connectivity.
func NewRedisCache(redisURL string, logger *log.Logger) (*RedisCache, error) {
	if redisURL == "" {
		return nil, fmt.Errorf("redis URL cannot be empty")
	}

	opts, err := redis.ParseURL(redisURL)
	if err != nil {
		return nil, fmt.Errorf("parse redis URL: %w", err)
	}

	client := redis.NewClient(opts)

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if err := client.Ping(ctx).Err(); err != nil {
		client.Close()
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return &RedisCache{client: client, log: logger}, nil
}

func (rc *RedisCache) Get(ctx context.Context, key string) (string, bool) {
	value, err := rc.client.Get(ctx, key).Result()
	if err != nil {
		if err != redis.Nil {
			rc.log.Println("redis get:", err)
		}
		return "", false
	}

	return value, true
}

func (rc *RedisCache) Set(ctx context.Context, key, value string, ttl time.Duration) {
	if err := rc.client.Set(ctx, key, value, ttl).Err(); err != nil {
		rc.log.Println("redis set:", err)
	}
}

func (rc *RedisCache) Close() error {
	return rc.client.Close()
}
