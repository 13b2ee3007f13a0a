package cache

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/redis/go-redis/v9"
)

// RedisConfig configures a [RedisCache].
type RedisConfig struct {
	// URL is a redis:// or rediss:// URL.
	URL string
	// Prefix is prepended to every key.
	Prefix string
	// Timeout bounds each command. Zero uses three seconds.
	Timeout time.Duration
}

// RedisCache stores entries in redis so several servers share built graphs.
type RedisCache struct {
	client  *redis.Client
	prefix  string
	timeout time.Duration
}

// NewRedisCache connects to the server in cfg and pings it.
func NewRedisCache(ctx context.Context, cfg RedisConfig) (*RedisCache, error) {
	opt, err := redis.ParseURL(cfg.URL)
	if err != nil {
		return nil, fmt.Errorf("parse redis url: %w", err)
	}
	c := &RedisCache{
		client:  redis.NewClient(opt),
		prefix:  cfg.Prefix,
		timeout: cfg.Timeout,
	}
	if c.timeout == 0 {
		c.timeout = 3 * time.Second
	}

	err = RetryWithBackoff(ctx, func() error {
		cctx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		return classify(c.client.Ping(cctx).Err())
	})
	if err != nil {
		c.client.Close()
		return nil, fmt.Errorf("connect redis: %w", err)
	}
	return c, nil
}

// Get implements [Cache].
func (c *RedisCache) Get(ctx context.Context, key string) ([]byte, bool, error) {
	var data []byte
	err := RetryWithBackoff(ctx, func() error {
		cctx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		var err error
		data, err = c.client.Get(cctx, c.prefix+key).Bytes()
		return classify(err)
	})
	if errors.Is(err, redis.Nil) {
		return nil, false, nil
	}
	if err != nil {
		return nil, false, err
	}
	return data, true, nil
}

// Set implements [Cache].
func (c *RedisCache) Set(ctx context.Context, key string, data []byte, ttl time.Duration) error {
	return RetryWithBackoff(ctx, func() error {
		cctx, cancel := context.WithTimeout(ctx, c.timeout)
		defer cancel()
		return classify(c.client.Set(cctx, c.prefix+key, data, ttl).Err())
	})
}

// Delete implements [Cache].
func (c *RedisCache) Delete(ctx context.Context, key string) error {
	cctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()
	return c.client.Del(cctx, c.prefix+key).Err()
}

// Close implements [Cache].
func (c *RedisCache) Close() error {
	return c.client.Close()
}

// classify marks transport failures as retryable.
func classify(err error) error {
	if err == nil || errors.Is(err, redis.Nil) {
		return err
	}
	var netErr net.Error
	if errors.As(err, &netErr) || errors.Is(err, context.DeadlineExceeded) {
		return Retryable(fmt.Errorf("%w: %w", ErrUnavailable, err))
	}
	return err
}

var _ Cache = (*RedisCache)(nil)
