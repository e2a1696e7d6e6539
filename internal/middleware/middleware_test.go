// AngelaMos | 2026
// middleware_test.go

package middleware

import (
	"bytes"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/carterperez-dev/templates/admin-console/internal/config"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
}

func TestRequestIDGeneratedAndPropagated(t *testing.T) {
	var seen string
	h := RequestID(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		seen = GetRequestID(r.Context())
	}))

	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/", nil))
	require.NotEmpty(t, seen)
	assert.Equal(t, seen, rec.Header().Get(RequestIDHeader))

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	rec = httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	assert.Equal(t, "abc-123", seen)
}

func TestLoggerRecordsStatus(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewJSONHandler(&buf, nil))

	h := Logger(logger)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	}))
	h.ServeHTTP(
		httptest.NewRecorder(),
		httptest.NewRequest(http.MethodGet, "/admin/user/42", nil),
	)

	out := buf.String()
	assert.Contains(t, out, `"status":404`)
	assert.Contains(t, out, `"path":"/admin/user/42"`)
	assert.Contains(t, out, `"level":"WARN"`)
}

func TestSecurityHeaders(t *testing.T) {
	rec := httptest.NewRecorder()
	SecurityHeaders(true)(okHandler()).ServeHTTP(
		rec,
		httptest.NewRequest(http.MethodGet, "/", nil),
	)

	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.NotEmpty(t, rec.Header().Get("Strict-Transport-Security"))

	rec = httptest.NewRecorder()
	SecurityHeaders(false)(okHandler()).ServeHTTP(
		rec,
		httptest.NewRequest(http.MethodGet, "/", nil),
	)
	assert.Empty(t, rec.Header().Get("Strict-Transport-Security"))
}

func TestCORS(t *testing.T) {
	h := CORS(config.CORSConfig{
		AllowedOrigins:   []string{"http://localhost:5173"},
		AllowedMethods:   []string{"GET", "POST"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           300,
	})(okHandler())

	t.Run("preflight from allowed origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/admin/add-user", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		req.Header.Set("Access-Control-Request-Method", "POST")
		req.Header.Set("Access-Control-Request-Headers", "Authorization")
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		assert.Less(t, rec.Code, http.StatusMultipleChoices)
		assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t, "POST", rec.Header().Get("Access-Control-Allow-Methods"))
		assert.Equal(t, "Authorization", rec.Header().Get("Access-Control-Allow-Headers"))
		assert.Equal(t, "true", rec.Header().Get("Access-Control-Allow-Credentials"))
		assert.Equal(t, "300", rec.Header().Get("Access-Control-Max-Age"))
	})

	t.Run("preflight from unknown origin", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/admin/add-user", nil)
		req.Header.Set("Origin", "http://evil.example")
		req.Header.Set("Access-Control-Request-Method", "POST")
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Methods"))
	})

	t.Run("preflight with disallowed method", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodOptions, "/admin/delete-user/1", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		req.Header.Set("Access-Control-Request-Method", "DELETE")
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})

	t.Run("actual request exposes request id", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodGet, "/admin/users", nil)
		req.Header.Set("Origin", "http://localhost:5173")
		rec := httptest.NewRecorder()

		h.ServeHTTP(rec, req)

		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "http://localhost:5173", rec.Header().Get("Access-Control-Allow-Origin"))
		assert.Equal(t,
			http.CanonicalHeaderKey(RequestIDHeader),
			rec.Header().Get("Access-Control-Expose-Headers"),
		)
	})

	t.Run("same origin request passes through", func(t *testing.T) {
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/healthz", nil))
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Empty(t, rec.Header().Get("Access-Control-Allow-Origin"))
	})
}

func TestRateLimiterFallsBackToLocalLimiter(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 50 * time.Millisecond,
		MaxRetries:  -1,
	})
	t.Cleanup(func() { _ = rdb.Close() })

	rl := NewRateLimiter(rdb, RateLimitConfig{
		Limit:   Per(1, 1, time.Minute),
		KeyFunc: KeyByLoginIP,
	})
	t.Cleanup(rl.Close)
	h := rl.Handler(okHandler())

	send := func() *httptest.ResponseRecorder {
		req := httptest.NewRequest(http.MethodPost, "/auth/login", nil)
		req.RemoteAddr = "10.0.0.7:5555"
		rec := httptest.NewRecorder()
		h.ServeHTTP(rec, req)
		return rec
	}

	first := send()
	assert.Equal(t, http.StatusOK, first.Code)

	second := send()
	assert.Equal(t, http.StatusTooManyRequests, second.Code)
	assert.NotEmpty(t, second.Header().Get("Retry-After"))
	assert.Contains(t, second.Body.String(), "RATE_LIMITED")
}

func TestRateLimiterCloseStopsSweeper(t *testing.T) {
	rdb := redis.NewClient(&redis.Options{Addr: "127.0.0.1:1"})
	t.Cleanup(func() { _ = rdb.Close() })

	rl := NewRateLimiter(rdb, RateLimitConfig{Limit: Per(5, 5, time.Minute)})
	rl.Close()

	select {
	case <-rl.fallback.stopped:
	case <-time.After(time.Second):
		t.Fatal("bucket sweeper still running after Close")
	}

	assert.NotPanics(t, rl.Close)
}

func TestLocalLimiterEvictsIdleBuckets(t *testing.T) {
	l := newLocalLimiter()
	t.Cleanup(l.stop)

	l.allow("ratelimit:ip:10.0.0.1", Per(5, 5, time.Minute))
	l.allow("ratelimit:ip:10.0.0.2", Per(5, 5, time.Minute))

	value, ok := l.buckets.Load("ratelimit:ip:10.0.0.1")
	require.True(t, ok)
	value.(*bucket).lastSeen.Store(time.Now().Add(-time.Hour).Unix())

	l.evictIdle(time.Now().Add(-bucketIdleTTL))

	_, ok = l.buckets.Load("ratelimit:ip:10.0.0.1")
	assert.False(t, ok)
	_, ok = l.buckets.Load("ratelimit:ip:10.0.0.2")
	assert.True(t, ok)
}

func TestClientKeys(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.RemoteAddr = "192.168.1.4:1234"
	assert.Equal(t, "ratelimit:ip:192.168.1.4", KeyByIP(req))
	assert.Equal(t, "ratelimit:login:192.168.1.4", KeyByLoginIP(req))

	req.Header.Set("X-Forwarded-For", "1.1.1.1, 2.2.2.2")
	assert.Equal(t, "ratelimit:ip:2.2.2.2", KeyByIP(req))
}

func TestPerDefaultsPeriod(t *testing.T) {
	limit := Per(10, 5, 0)
	assert.Equal(t, time.Minute, limit.Period)
	assert.Equal(t, 10, limit.Rate)
	assert.Equal(t, 5, limit.Burst)
}
