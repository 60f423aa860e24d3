package ratelimit

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"

	"github.com/noah-isme/toko-storefront/internal/resilience"
)

func okHandler() http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) { w.WriteHeader(http.StatusOK) })
}

func reviewPost(remote string) *http.Request {
	req := httptest.NewRequest(http.MethodPost, "/reviews", nil)
	if remote != "" {
		req.RemoteAddr = remote
	}
	return req
}

func TestHandlerRejectsOverLimitWithRetryAfter(t *testing.T) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	now := time.Date(2024, 3, 1, 12, 0, 0, 0, time.UTC)
	var limited string
	h := Handler{
		Limiter:   Limiter{Client: client, Prefix: "ratelimit:", Now: func() time.Time { return now }},
		Config:    Config{Key: ByClientIP("reviews"), Window: time.Minute, Max: 1},
		OnLimited: func(key string) { limited = key },
	}
	mw := h.Middleware(okHandler())

	first := httptest.NewRecorder()
	mw.ServeHTTP(first, reviewPost("203.0.113.7:5555"))
	require.Equal(t, http.StatusOK, first.Code)
	require.Equal(t, "0", first.Header().Get("X-RateLimit-Remaining"))

	now = now.Add(20 * time.Second)
	second := httptest.NewRecorder()
	mw.ServeHTTP(second, reviewPost("203.0.113.7:5555"))
	require.Equal(t, http.StatusTooManyRequests, second.Code)
	require.Equal(t, "1", second.Header().Get("X-RateLimit-Limit"))
	require.Equal(t, "40", second.Header().Get("Retry-After"))
	require.Equal(t, "reviews:203.0.113.7", limited)
	require.Contains(t, second.Body.String(), "RATE_LIMITED")

	other := httptest.NewRecorder()
	mw.ServeHTTP(other, reviewPost("198.51.100.9:4444"))
	require.Equal(t, http.StatusOK, other.Code, "keys are per client")
}

func TestByClientIPUsesForwardedFor(t *testing.T) {
	req := reviewPost("")
	req.Header.Set("X-Forwarded-For", "198.51.100.2, 10.0.0.1")
	require.Equal(t, "reviews:198.51.100.2", ByClientIP("reviews")(req))
}

func TestHandlerFailsOpenOnLimiterError(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0", MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	var seen error
	h := Handler{
		Limiter: Limiter{Client: client},
		Config:  Config{Key: func(*http.Request) string { return "err" }, Window: time.Second, Max: 1},
		OnError: func(err error) { seen = err },
	}
	rr := httptest.NewRecorder()
	h.Middleware(okHandler()).ServeHTTP(rr, reviewPost(""))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Error(t, seen)
}

func TestHandlerSkipsLimiterWhenBreakerOpen(t *testing.T) {
	client := redis.NewClient(&redis.Options{Addr: "127.0.0.1:0", MaxRetries: -1})
	t.Cleanup(func() { _ = client.Close() })

	attempts := 0
	h := Handler{
		Limiter: Limiter{Client: client, Prefix: "ratelimit:"},
		Config:  Config{Key: ByClientIP("reviews"), Window: time.Second, Max: 1},
		OnError: func(error) { attempts++ },
		Breaker: resilience.NewBreaker(resilience.BreakerConfig{Target: "ratelimit-test", MinRequests: 1, OpenFor: time.Hour}),
	}
	mw := h.Middleware(okHandler())
	for range 3 {
		rr := httptest.NewRecorder()
		mw.ServeHTTP(rr, reviewPost(""))
		require.Equal(t, http.StatusOK, rr.Code)
	}
	require.Equal(t, 1, attempts, "limiter tried once before the breaker opened")
	require.Equal(t, resilience.Open, h.Breaker.State())
}

func TestHandlerWithoutKeyPassesThrough(t *testing.T) {
	rr := httptest.NewRecorder()
	Handler{}.Middleware(okHandler()).ServeHTTP(rr, reviewPost(""))
	require.Equal(t, http.StatusOK, rr.Code)
	require.Empty(t, rr.Header().Get("X-RateLimit-Limit"))
}
