package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"

	"github.com/grindgrid/grindgrid-backend/internal/platform/logger"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

type RedisPageCache struct {
	client *redis.Client
	ttl    time.Duration
	log    *logger.Logger
}

func NewRedisPageCache(ctx context.Context, cfg RedisConfig, log *logger.Logger) (*RedisPageCache, error) {
	cacheLog := log.With("cache", "RedisPageCache")
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
		PoolSize:     10,
	})
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		cacheLog.Error("Redis connection failed", "addr", cfg.Addr, "error", err)
		return nil, fmt.Errorf("redis ping: %w", err)
	}
	ttl := cfg.TTL
	if ttl <= 0 {
		ttl = DefaultTTL
	}
	cacheLog.Info("Redis connected", "addr", cfg.Addr, "ttl", ttl.String())
	return &RedisPageCache{client: client, ttl: ttl, log: cacheLog}, nil
}

func (r *RedisPageCache) Get(ctx context.Context, userID uuid.UUID, path string) (*Page, bool, error) {
	raw, err := r.client.Get(ctx, Key(userID, path)).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, fmt.Errorf("cache get failed: %w", err)
	}
	var p Page
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, false, fmt.Errorf("cache unmarshal failed: %w", err)
	}
	return &p, true, nil
}

func (r *RedisPageCache) Set(ctx context.Context, userID uuid.UUID, path string, page *Page) error {
	data, err := json.Marshal(page)
	if err != nil {
		return fmt.Errorf("cache marshal failed: %w", err)
	}
	return r.client.Set(ctx, Key(userID, path), data, r.ttl).Err()
}

func (r *RedisPageCache) Invalidate(ctx context.Context, userID uuid.UUID, paths ...string) error {
	if len(paths) == 0 {
		return nil
	}
	keys := make([]string, 0, len(paths))
	for _, p := range paths {
		keys = append(keys, Key(userID, p))
	}
	if err := r.client.Del(ctx, keys...).Err(); err != nil {
		return fmt.Errorf("cache delete failed: %w", err)
	}
	r.log.Debug("Invalidated pages", "user_id", userID, "paths", paths)
	return nil
}

func (r *RedisPageCache) InvalidateUser(ctx context.Context, userID uuid.UUID) error {
	pattern := fmt.Sprintf("page:%s:*", userID.String())
	var cursor uint64
	for {
		keys, next, err := r.client.Scan(ctx, cursor, pattern, 100).Result()
		if err != nil {
			return fmt.Errorf("scan failed: %w", err)
		}
		if len(keys) > 0 {
			if err := r.client.Del(ctx, keys...).Err(); err != nil {
				return fmt.Errorf("delete keys failed: %w", err)
			}
		}
		cursor = next
		if cursor == 0 {
			return nil
		}
	}
}

func (r *RedisPageCache) Close() error {
	return r.client.Close()
}
