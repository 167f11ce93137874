package cache

import (
	"context"
	"fmt"
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/auth"
	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/config"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
)

// Factory connects to Redis once and hands out the stores built on it.
// Without Redis it falls back to in-process stores when allowed.
type Factory struct {
	cfg                   config.RedisConfig
	logger                *zap.Logger
	allowInMemoryFallback bool
	client                *redis.Client
}

// FactoryOption is a functional option for configuring the factory
type FactoryOption func(*Factory)

// WithLogger sets the logger for the factory
func WithLogger(logger *zap.Logger) FactoryOption {
	return func(f *Factory) {
		f.logger = logger
	}
}

// WithInMemoryFallback controls whether a missing Redis is tolerated.
// Default is true.
func WithInMemoryFallback(allow bool) FactoryOption {
	return func(f *Factory) {
		f.allowInMemoryFallback = allow
	}
}

// NewFactory creates a factory. Call Connect before using the stores.
func NewFactory(cfg config.RedisConfig, opts ...FactoryOption) *Factory {
	f := &Factory{
		cfg:                   cfg,
		logger:                zap.NewNop(),
		allowInMemoryFallback: true,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// NewRedisClient opens a pooled client and pings it
func NewRedisClient(ctx context.Context, cfg config.RedisConfig) (*redis.Client, error) {
	client := redis.NewClient(&redis.Options{
		Addr:         cfg.Addr(),
		Password:     cfg.Password,
		DB:           cfg.DB,
		PoolSize:     10,
		MinIdleConns: 3,
		MaxRetries:   3,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(ctx).Err(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("failed to connect to Redis at %s: %w", cfg.Addr(), err)
	}
	return client, nil
}

// Connect dials Redis. With fallback allowed a failure is logged and the
// factory serves in-memory stores.
func (f *Factory) Connect(ctx context.Context) error {
	client, err := NewRedisClient(ctx, f.cfg)
	if err == nil {
		f.client = client
		f.logger.Info("Connected to Redis", zap.String("addr", f.cfg.Addr()))
		return nil
	}
	if !f.allowInMemoryFallback {
		return fmt.Errorf("redis required but unavailable: %w", err)
	}
	f.logger.Warn("Redis unavailable, falling back to in-memory stores. "+
		"Token revocations and chat fan-out will not be shared between instances.",
		zap.Error(err))
	return nil
}

// Client returns the Redis client, or nil when running in fallback mode
func (f *Factory) Client() *redis.Client {
	return f.client
}

// TokenBlacklist returns the revocation store
func (f *Factory) TokenBlacklist() auth.TokenBlacklist {
	if f.client == nil {
		return auth.NewInMemoryTokenBlacklist()
	}
	return auth.NewRedisTokenBlacklist(f.client)
}

// ValueCache returns a JSON value cache under the key prefix
func (f *Factory) ValueCache(prefix string) ValueCache {
	if f.client == nil {
		return NewInMemoryValueCache(WithInMemoryLogger(f.logger))
	}
	return NewRedisValueCache(f.client, prefix)
}

// Ping checks Redis when connected
func (f *Factory) Ping(ctx context.Context) error {
	if f.client == nil {
		return nil
	}
	return f.client.Ping(ctx).Err()
}

// Close releases the client
func (f *Factory) Close() error {
	if f.client == nil {
		return nil
	}
	return f.client.Close()
}
