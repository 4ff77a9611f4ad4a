package cache

import (
	"context"
	"time"

	redisv9 "github.com/redis/go-redis/v9"
)

// Cache stores raw OpenWeatherMap payloads in Redis, keyed by pincode.
// A nil *Cache is valid and behaves as an always-miss cache, so callers
// don't branch on whether Redis is configured.
type Cache struct {
	client *redisv9.Client
	ttl    time.Duration
}

func New(addr string, ttl time.Duration) *Cache {
	if addr == "" {
		return nil
	}
	return &Cache{
		client: redisv9.NewClient(&redisv9.Options{
			Addr: addr,
		}),
		ttl: ttl,
	}
}

func key(pincode string) string {
	return "weather:" + pincode
}

// Get returns the cached raw payload for a pincode, or (nil, false) on any
// miss or cache error.
func (c *Cache) Get(ctx context.Context, pincode string) ([]byte, bool) {
	if c == nil {
		return nil, false
	}
	raw, err := c.client.Get(ctx, key(pincode)).Bytes()
	if err != nil {
		return nil, false
	}
	return raw, true
}

// Put stores the raw payload for a pincode with the configured TTL.
// Best-effort: a cache write failure is not reported.
func (c *Cache) Put(ctx context.Context, pincode string, raw []byte) {
	if c == nil {
		return
	}
	_ = c.client.Set(ctx, key(pincode), raw, c.ttl).Err()
}

func (c *Cache) Close() error {
	if c == nil {
		return nil
	}
	return c.client.Close()
}
