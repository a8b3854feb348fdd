package cache

import (
	"context"
	"log/slog"
	"time"

	"github.com/redis/go-redis/v9"
)

type RedisConfig struct {
	Addr     string
	Password string
	DB       int
	TTL      time.Duration
}

// Redis backs the read cache with a shared store so every API instance sees
// the same invalidations. Any Redis failure degrades to a cache miss.
type Redis struct {
	rdb *redis.Client
	ttl time.Duration
	log *slog.Logger
}

func NewRedis(cfg RedisConfig, log *slog.Logger) *Redis {
	rdb := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr,
		Password:     cfg.Password,
		DB:           cfg.DB,
		DialTimeout:  2 * time.Second,
		ReadTimeout:  2 * time.Second,
		WriteTimeout: 2 * time.Second,
	})

	ttl := cfg.TTL

	if ttl <= 0 {
		ttl = 5 * time.Second
	}

	return &Redis{rdb: rdb, ttl: ttl, log: log}
}

// Ping checks connectivity at boot.
func (c *Redis) Ping(ctx context.Context) error {
	return c.rdb.Ping(ctx).Err()
}

func (c *Redis) Close() error {
	return c.rdb.Close()
}

func (c *Redis) Get(ctx context.Context, key string) ([]byte, bool) {
	val, err := c.rdb.Get(ctx, key).Bytes()

	if err != nil {
		if err != redis.Nil {
			c.log.Debug("redis get failed", "key", key, "err", err)
		}
		return nil, false
	}

	return val, true
}

func (c *Redis) Set(ctx context.Context, key string, val []byte) {
	err := c.rdb.Set(ctx, key, val, c.ttl).Err()

	if err != nil {
		c.log.Debug("redis set failed", "key", key, "err", err)
	}
}

func (c *Redis) Delete(ctx context.Context, key string) {
	err := c.rdb.Del(ctx, key).Err()

	if err != nil {
		c.log.Debug("redis del failed", "key", key, "err", err)
	}
}
