// AngelaMos | 2026
// ratelimit.go

package middleware

import (
	"context"
	"fmt"
	"log/slog"
	"net"
	"net/http"
	"strconv"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	redis_rate "github.com/go-redis/redis_rate/v10"
	"github.com/redis/go-redis/v9"
	"golang.org/x/time/rate"

	"github.com/carterperez-dev/templates/admin-console/internal/core"
)

// RateLimitConfig configures a limiter. A nil KeyFunc keys by client IP and
// an empty Name logs as "global".
type RateLimitConfig struct {
	Name     string
	Limit    redis_rate.Limit
	KeyFunc  func(*http.Request) string
	FailOpen bool
}

// RateLimiter counts requests in Redis and switches to per-process token
// buckets while Redis is unreachable.
type RateLimiter struct {
	limiter  *redis_rate.Limiter
	fallback *localLimiter
	config   RateLimitConfig
	degraded atomic.Bool
}

func NewRateLimiter(rdb *redis.Client, cfg RateLimitConfig) *RateLimiter {
	if cfg.KeyFunc == nil {
		cfg.KeyFunc = KeyByIP
	}
	if cfg.Name == "" {
		cfg.Name = "global"
	}

	return &RateLimiter{
		limiter:  redis_rate.NewLimiter(rdb),
		fallback: newLocalLimiter(),
		config:   cfg,
	}
}

// Close stops the fallback bucket sweeper. It is safe to call more than once.
func (rl *RateLimiter) Close() {
	rl.fallback.stop()
}

func (rl *RateLimiter) Handler(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		key := rl.config.KeyFunc(r)

		res, err := rl.allow(r.Context(), key)
		if err != nil {
			if rl.config.FailOpen {
				slog.WarnContext(r.Context(), "rate limiter failing open",
					"limiter", rl.config.Name,
					"error", err,
				)
				next.ServeHTTP(w, r)
				return
			}
			core.JSONError(w, core.NewAppError(
				err,
				"Service temporarily unavailable",
				http.StatusServiceUnavailable,
				"RATE_LIMITER_UNAVAILABLE",
			))
			return
		}

		setRateLimitHeaders(w, res, rl.config.Limit)

		if res.Allowed == 0 {
			slog.InfoContext(r.Context(), "request rate limited",
				"limiter", rl.config.Name,
				"key", key,
				"path", r.URL.Path,
			)
			writeRateLimitExceeded(w, res)
			return
		}

		next.ServeHTTP(w, r)
	})
}

func (rl *RateLimiter) allow(
	ctx context.Context,
	key string,
) (*redis_rate.Result, error) {
	res, err := rl.limiter.Allow(ctx, key, rl.config.Limit)
	if err == nil {
		if rl.degraded.Swap(false) {
			slog.InfoContext(ctx, "rate limiter back on redis", "limiter", rl.config.Name)
		}
		return res, nil
	}

	if !rl.degraded.Swap(true) {
		slog.WarnContext(ctx, "redis unavailable, rate limiting per process",
			"limiter", rl.config.Name,
			"error", err,
		)
	}
	return rl.fallback.allow(key, rl.config.Limit), nil
}

func KeyByIP(r *http.Request) string {
	return "ratelimit:ip:" + clientIP(r)
}

// KeyByLoginIP keys the login limiter apart from the global one.
func KeyByLoginIP(r *http.Request) string {
	return "ratelimit:login:" + clientIP(r)
}

// clientIP trusts the last X-Forwarded-For hop, which is the one appended
// by our own proxy.
func clientIP(r *http.Request) string {
	if xff := r.Header.Get("X-Forwarded-For"); xff != "" {
		hops := strings.Split(xff, ",")
		return strings.TrimSpace(hops[len(hops)-1])
	}

	if xri := r.Header.Get("X-Real-IP"); xri != "" {
		return xri
	}

	ip, _, err := net.SplitHostPort(r.RemoteAddr)
	if err != nil {
		return r.RemoteAddr
	}
	return ip
}

func setRateLimitHeaders(
	w http.ResponseWriter,
	res *redis_rate.Result,
	limit redis_rate.Limit,
) {
	h := w.Header()
	resetSecs := int(res.ResetAfter.Seconds())

	h.Set("X-RateLimit-Limit", strconv.Itoa(limit.Rate))
	h.Set("X-RateLimit-Remaining", strconv.Itoa(res.Remaining))
	h.Set("X-RateLimit-Reset", strconv.FormatInt(
		time.Now().Add(res.ResetAfter).Unix(), 10))
	h.Set("RateLimit-Policy",
		fmt.Sprintf("%d;w=%d", limit.Rate, int(limit.Period.Seconds())))
	h.Set("RateLimit", fmt.Sprintf("%d;t=%d", res.Remaining, resetSecs))
}

func writeRateLimitExceeded(w http.ResponseWriter, res *redis_rate.Result) {
	retryAfter := max(int(res.RetryAfter.Seconds()), 1)
	message := fmt.Sprintf(
		"Too many requests. Retry after %d seconds.",
		retryAfter,
	)

	w.Header().Set("Retry-After", strconv.Itoa(retryAfter))
	core.JSON(w, http.StatusTooManyRequests, core.ErrorResponse{
		Success: false,
		Error: core.ErrorBody{
			Code:    "RATE_LIMITED",
			Message: message,
		},
		Errors: []string{message},
	})
}

const (
	bucketSweepInterval = 5 * time.Minute
	bucketIdleTTL       = 10 * time.Minute
)

type bucket struct {
	limiter  *rate.Limiter
	lastSeen atomic.Int64
}

// localLimiter keeps one token bucket per key. Idle buckets are swept until
// stop is called.
type localLimiter struct {
	buckets  sync.Map
	done     chan struct{}
	stopped  chan struct{}
	stopOnce sync.Once
}

func newLocalLimiter() *localLimiter {
	l := &localLimiter{
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
	}
	go l.sweep(bucketSweepInterval)
	return l
}

func (l *localLimiter) sweep(interval time.Duration) {
	defer close(l.stopped)

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-l.done:
			return
		case <-ticker.C:
			l.evictIdle(time.Now().Add(-bucketIdleTTL))
		}
	}
}

func (l *localLimiter) evictIdle(cutoff time.Time) {
	l.buckets.Range(func(key, value any) bool {
		if b, ok := value.(*bucket); ok && b.lastSeen.Load() < cutoff.Unix() {
			l.buckets.Delete(key)
		}
		return true
	})
}

func (l *localLimiter) stop() {
	l.stopOnce.Do(func() { close(l.done) })
	<-l.stopped
}

func (l *localLimiter) allow(key string, limit redis_rate.Limit) *redis_rate.Result {
	perSecond := float64(limit.Rate) / limit.Period.Seconds()
	interval := time.Duration(float64(time.Second) / perSecond)

	value, _ := l.buckets.LoadOrStore(key, &bucket{
		limiter: rate.NewLimiter(rate.Limit(perSecond), limit.Burst),
	})
	b := value.(*bucket) //nolint:forcetypeassert // only *bucket is stored
	b.lastSeen.Store(time.Now().Unix())

	res := &redis_rate.Result{
		Limit:      limit,
		Remaining:  max(int(b.limiter.Tokens()), 0),
		RetryAfter: -1,
		ResetAfter: interval,
	}

	if b.limiter.Allow() {
		res.Allowed = 1
		res.Remaining = max(int(b.limiter.Tokens()), 0)
		return res
	}

	res.RetryAfter = interval
	return res
}

// Per builds a limit of requests per period with the given burst. A
// non-positive period means one minute.
func Per(requests, burst int, period time.Duration) redis_rate.Limit {
	if period <= 0 {
		period = time.Minute
	}
	return redis_rate.Limit{
		Rate:   requests,
		Burst:  burst,
		Period: period,
	}
}
