package cache

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// ValueCache stores JSON-encodable values with a TTL. The billing service
// caches Stripe subscription checks through it.
type ValueCache interface {
	// Get decodes the value into dest and reports whether it was found
	Get(ctx context.Context, key string, dest any) (bool, error)
	Set(ctx context.Context, key string, value any, ttl time.Duration) error
	Delete(ctx context.Context, key string) error
}

const defaultCleanupInterval = 30 * time.Second

type cacheEntry struct {
	payload   []byte
	expiresAt time.Time
}

func (e *cacheEntry) isExpired() bool {
	return time.Now().After(e.expiresAt)
}

// InMemoryValueCache implements ValueCache in process
type InMemoryValueCache struct {
	entries sync.Map // key -> *cacheEntry
	logger  *zap.Logger
	stopCh  chan struct{}
	stopped int32

	hits   int64
	misses int64
}

// InMemoryValueCacheOption is a functional option for configuring the cache
type InMemoryValueCacheOption func(*InMemoryValueCache)

// WithInMemoryLogger sets the logger for the cache
func WithInMemoryLogger(logger *zap.Logger) InMemoryValueCacheOption {
	return func(c *InMemoryValueCache) {
		c.logger = logger
	}
}

// NewInMemoryValueCache creates the cache and starts its cleanup loop
func NewInMemoryValueCache(opts ...InMemoryValueCacheOption) *InMemoryValueCache {
	c := &InMemoryValueCache{
		logger: zap.NewNop(),
		stopCh: make(chan struct{}),
	}
	for _, opt := range opts {
		opt(c)
	}
	go c.cleanupExpired()
	return c
}

// Get decodes a live entry into dest
func (c *InMemoryValueCache) Get(_ context.Context, key string, dest any) (bool, error) {
	if value, ok := c.entries.Load(key); ok {
		entry := value.(*cacheEntry)
		if !entry.isExpired() {
			atomic.AddInt64(&c.hits, 1)
			return true, json.Unmarshal(entry.payload, dest)
		}
		c.entries.Delete(key)
	}
	atomic.AddInt64(&c.misses, 1)
	return false, nil
}

// Set stores the encoded value
func (c *InMemoryValueCache) Set(_ context.Context, key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache value: %w", err)
	}
	c.entries.Store(key, &cacheEntry{payload: payload, expiresAt: time.Now().Add(ttl)})
	return nil
}

// Delete removes the entry
func (c *InMemoryValueCache) Delete(_ context.Context, key string) error {
	c.entries.Delete(key)
	return nil
}

// Stats returns hit and miss counters
func (c *InMemoryValueCache) Stats() (hits, misses int64) {
	return atomic.LoadInt64(&c.hits), atomic.LoadInt64(&c.misses)
}

// Close stops the cleanup loop
func (c *InMemoryValueCache) Close() error {
	if atomic.CompareAndSwapInt32(&c.stopped, 0, 1) {
		close(c.stopCh)
	}
	return nil
}

func (c *InMemoryValueCache) cleanupExpired() {
	ticker := time.NewTicker(defaultCleanupInterval)
	defer ticker.Stop()
	for {
		select {
		case <-c.stopCh:
			return
		case <-ticker.C:
			c.doCleanup()
		}
	}
}

func (c *InMemoryValueCache) doCleanup() int {
	removed := 0
	c.entries.Range(func(key, value any) bool {
		if value.(*cacheEntry).isExpired() {
			c.entries.Delete(key)
			removed++
		}
		return true
	})
	if removed > 0 {
		c.logger.Debug("Cleaned up expired cache entries", zap.Int("removed", removed))
	}
	return removed
}

// RedisValueCache implements ValueCache on Redis strings
type RedisValueCache struct {
	client *redis.Client
	prefix string
}

// NewRedisValueCache creates a cache whose keys live under prefix
func NewRedisValueCache(client *redis.Client, prefix string) *RedisValueCache {
	return &RedisValueCache{client: client, prefix: prefix}
}

// Get decodes the stored value into dest
func (c *RedisValueCache) Get(ctx context.Context, key string, dest any) (bool, error) {
	payload, err := c.client.Get(ctx, c.prefix+key).Bytes()
	if errors.Is(err, redis.Nil) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("cache get %s: %w", key, err)
	}
	return true, json.Unmarshal(payload, dest)
}

// Set stores the encoded value with a TTL
func (c *RedisValueCache) Set(ctx context.Context, key string, value any, ttl time.Duration) error {
	payload, err := json.Marshal(value)
	if err != nil {
		return fmt.Errorf("encode cache value: %w", err)
	}
	if err := c.client.Set(ctx, c.prefix+key, payload, ttl).Err(); err != nil {
		return fmt.Errorf("cache set %s: %w", key, err)
	}
	return nil
}

// Delete removes the key
func (c *RedisValueCache) Delete(ctx context.Context, key string) error {
	return c.client.Del(ctx, c.prefix+key).Err()
}

var (
	_ ValueCache = (*InMemoryValueCache)(nil)
	_ ValueCache = (*RedisValueCache)(nil)
)
