package cache

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/go-redis/redis/v8"
	"go.uber.org/zap"
)

// KeyPrefix namespaces every cached response
const KeyPrefix = "cache:"

// ErrMiss is returned by Get when the key is absent
var ErrMiss = errors.New("cache miss")

// Cache stores rendered public responses
type Cache interface {
	Get(ctx context.Context, key string) ([]byte, error)
	Set(ctx context.Context, key string, value []byte, ttl time.Duration) error
	// Invalidate removes every key for path and its query variants. "*" clears everything.
	Invalidate(ctx context.Context, path string) (int64, error)
}

// Key returns the cache key for a request path and raw query
func Key(path, rawQuery string) string {
	if rawQuery == "" {
		return KeyPrefix + path
	}
	return KeyPrefix + path + "?" + rawQuery
}

// RedisCache is a Cache backed by Redis
type RedisCache struct {
	client *redis.Client
}

// NewRedisCache connects to the Redis instance at url and pings it
func NewRedisCache(ctx context.Context, url string) (*RedisCache, error) {
	opts, err := redis.ParseURL(url)
	if err != nil {
		return nil, fmt.Errorf("invalid REDIS_URL: %w", err)
	}
	client := redis.NewClient(opts)
	if err := client.Ping(ctx).Err(); err != nil {
		return nil, fmt.Errorf("failed to connect to redis: %w", err)
	}
	return &RedisCache{client: client}, nil
}

func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, error) {
	val, err := c.client.Get(ctx, key).Bytes()
	if errors.Is(err, redis.Nil) {
		return nil, ErrMiss
	}
	return val, err
}

func (c *RedisCache) Set(ctx context.Context, key string, value []byte, ttl time.Duration) error {
	return c.client.Set(ctx, key, value, ttl).Err()
}

func (c *RedisCache) Invalidate(ctx context.Context, path string) (int64, error) {
	patterns := []string{KeyPrefix + "*"}
	if path != "*" {
		patterns = []string{KeyPrefix + path, KeyPrefix + path + "?*"}
	}

	var deleted int64
	for _, pattern := range patterns {
		iter := c.client.Scan(ctx, 0, pattern, 100).Iterator()
		for iter.Next(ctx) {
			n, err := c.client.Del(ctx, iter.Val()).Result()
			if err != nil {
				return deleted, err
			}
			deleted += n
		}
		if err := iter.Err(); err != nil {
			return deleted, err
		}
	}
	return deleted, nil
}

func (c *RedisCache) Close() error {
	return c.client.Close()
}

// Noop is used when no Redis is configured; every read misses
type Noop struct{}

func (Noop) Get(context.Context, string) ([]byte, error)              { return nil, ErrMiss }
func (Noop) Set(context.Context, string, []byte, time.Duration) error { return nil }
func (Noop) Invalidate(context.Context, string) (int64, error)        { return 0, nil }

type bodyRecorder struct {
	gin.ResponseWriter
	body bytes.Buffer
}

func (w *bodyRecorder) Write(b []byte) (int, error) {
	w.body.Write(b)
	return w.ResponseWriter.Write(b)
}

// Middleware serves cached JSON for GET requests and stores successful responses
func Middleware(c Cache, ttl time.Duration, logger *zap.Logger) gin.HandlerFunc {
	return func(ctx *gin.Context) {
		if ctx.Request.Method != http.MethodGet {
			ctx.Next()
			return
		}

		key := Key(strings.TrimSuffix(ctx.Request.URL.Path, "/"), ctx.Request.URL.RawQuery)
		if cached, err := c.Get(ctx.Request.Context(), key); err == nil {
			ctx.Header("X-Cache", "HIT")
			ctx.Data(http.StatusOK, "application/json; charset=utf-8", cached)
			ctx.Abort()
			return
		} else if !errors.Is(err, ErrMiss) {
			logger.Warn("cache read failed", zap.String("key", key), zap.Error(err))
		}

		rec := &bodyRecorder{ResponseWriter: ctx.Writer}
		ctx.Writer = rec
		ctx.Header("X-Cache", "MISS")
		ctx.Next()

		if rec.Status() == http.StatusOK && rec.body.Len() > 0 {
			if err := c.Set(ctx.Request.Context(), key, rec.body.Bytes(), ttl); err != nil {
				logger.Warn("cache write failed", zap.String("key", key), zap.Error(err))
			}
		}
	}
}
