package middleware

import (
	"context"
	"fmt"
	"math"
	"strconv"
	"sync"
	"time"

	"github.com/We2399/idea-launcher-pro-sub001/internal/infrastructure/logger"
	"github.com/We2399/idea-launcher-pro-sub001/internal/interfaces/http/dto"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
)

// Decision is the outcome of one rate limit check
type Decision struct {
	Allowed    bool
	Limit      int
	Remaining  int
	RetryAfter time.Duration
}

// Limiter admits or rejects requests per key
type Limiter interface {
	Allow(ctx context.Context, key string) (Decision, error)
}

// LocalLimiter keeps one token bucket per key in process memory
type LocalLimiter struct {
	mu        sync.Mutex
	limiters  map[string]*localEntry
	limit     rate.Limit
	burst     int
	idleTTL   time.Duration
	lastSweep time.Time
	now       func() time.Time
}

type localEntry struct {
	limiter  *rate.Limiter
	lastSeen time.Time
}

// NewLocalLimiter allows requests per window per key, refilled evenly
func NewLocalLimiter(requests int, window time.Duration) *LocalLimiter {
	if requests < 1 {
		requests = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &LocalLimiter{
		limiters: make(map[string]*localEntry),
		limit:    rate.Limit(float64(requests) / window.Seconds()),
		burst:    requests,
		idleTTL:  2 * window,
		now:      time.Now,
	}
}

// Allow implements Limiter
func (l *LocalLimiter) Allow(_ context.Context, key string) (Decision, error) {
	now := l.now()

	l.mu.Lock()
	if now.Sub(l.lastSweep) > l.idleTTL {
		for k, e := range l.limiters {
			if now.Sub(e.lastSeen) > l.idleTTL {
				delete(l.limiters, k)
			}
		}
		l.lastSweep = now
	}
	e, ok := l.limiters[key]
	if !ok {
		e = &localEntry{limiter: rate.NewLimiter(l.limit, l.burst)}
		l.limiters[key] = e
	}
	e.lastSeen = now
	l.mu.Unlock()

	d := Decision{Limit: l.burst}
	if e.limiter.AllowN(now, 1) {
		d.Allowed = true
		d.Remaining = int(math.Max(0, math.Floor(e.limiter.TokensAt(now))))
		return d, nil
	}
	d.RetryAfter = time.Duration(float64(time.Second) / float64(l.limit))
	return d, nil
}

// RedisLimiter counts requests per key in fixed windows shared by every
// instance. It backs the login limiter so attempts spread over instances
// still add up.
type RedisLimiter struct {
	client   *redis.Client
	prefix   string
	requests int
	window   time.Duration
}

// NewRedisLimiter creates a fixed window limiter
func NewRedisLimiter(client *redis.Client, prefix string, requests int, window time.Duration) *RedisLimiter {
	if requests < 1 {
		requests = 1
	}
	if window <= 0 {
		window = time.Minute
	}
	return &RedisLimiter{client: client, prefix: prefix, requests: requests, window: window}
}

// Allow implements Limiter
func (l *RedisLimiter) Allow(ctx context.Context, key string) (Decision, error) {
	bucket := time.Now().UnixNano() / int64(l.window)
	redisKey := fmt.Sprintf("%s:%s:%d", l.prefix, key, bucket)

	var incr *redis.IntCmd
	var ttl *redis.DurationCmd
	_, err := l.client.TxPipelined(ctx, func(pipe redis.Pipeliner) error {
		incr = pipe.Incr(ctx, redisKey)
		pipe.PExpire(ctx, redisKey, l.window)
		ttl = pipe.PTTL(ctx, redisKey)
		return nil
	})
	if err != nil {
		return Decision{}, fmt.Errorf("rate limit: %w", err)
	}

	count := int(incr.Val())
	d := Decision{Limit: l.requests, Remaining: l.requests - count}
	if d.Remaining < 0 {
		d.Remaining = 0
	}
	d.Allowed = count <= l.requests
	if !d.Allowed {
		d.RetryAfter = ttl.Val()
	}
	return d, nil
}

// KeyFunc derives the rate limit key of a request
type KeyFunc func(c *gin.Context) string

// KeyByIP limits per client address
func KeyByIP(c *gin.Context) string {
	return "ip:" + c.ClientIP()
}

// KeyByUser limits per signed in user, falling back to the client address
func KeyByUser(c *gin.Context) string {
	if p, ok := GetPrincipal(c); ok {
		return "user:" + p.UserID.String()
	}
	return KeyByIP(c)
}

// RateLimit rejects requests over the limiter's budget with 429. When the
// limiter itself fails the request is let through and the failure logged.
func RateLimit(limiter Limiter, key KeyFunc) gin.HandlerFunc {
	if key == nil {
		key = KeyByIP
	}
	return func(c *gin.Context) {
		d, err := limiter.Allow(c.Request.Context(), key(c))
		if err != nil {
			logger.L(c.Request.Context()).Warn("Rate limiter unavailable", zap.Error(err))
			c.Next()
			return
		}
		c.Header("X-RateLimit-Limit", strconv.Itoa(d.Limit))
		c.Header("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		if !d.Allowed {
			seconds := int(math.Ceil(d.RetryAfter.Seconds()))
			if seconds < 1 {
				seconds = 1
			}
			c.Header("Retry-After", strconv.Itoa(seconds))
			abortWithError(c, dto.ErrCodeRateLimited, "Too many requests, please try again later")
			return
		}
		c.Next()
	}
}
