package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTokenBucketLimiter_Burst(t *testing.T) {
	l := NewTokenBucketLimiter(1, 3, 0)

	for i := 0; i < 3; i++ {
		allowed, _ := l.Allow("k")
		assert.True(t, allowed, "request %d within burst", i)
	}
	allowed, info := l.Allow("k")
	assert.False(t, allowed)
	assert.Zero(t, info.Remaining)
	assert.Equal(t, 3, info.Limit)
}

func TestTokenBucketLimiter_Refill(t *testing.T) {
	l := NewTokenBucketLimiter(100, 1, 0)

	allowed, _ := l.Allow("k")
	require.True(t, allowed)
	allowed, _ = l.Allow("k")
	require.False(t, allowed)

	// 100 tokens/s refills a single-token bucket within 50ms.
	time.Sleep(50 * time.Millisecond)
	allowed, _ = l.Allow("k")
	assert.True(t, allowed)
}

func TestTokenBucketLimiter_KeysAreIndependent(t *testing.T) {
	l := NewTokenBucketLimiter(1, 1, 0)

	allowed, _ := l.Allow("a")
	require.True(t, allowed)
	allowed, _ = l.Allow("a")
	require.False(t, allowed)

	allowed, _ = l.Allow("b")
	assert.True(t, allowed)
	assert.Equal(t, 2, l.BucketCount())
}

func TestTokenBucketLimiter_Cleanup(t *testing.T) {
	l := NewTokenBucketLimiter(1000, 5, 10*time.Millisecond)
	defer l.Stop()

	l.Allow("k")
	require.Equal(t, 1, l.BucketCount())

	assert.Eventually(t, func() bool {
		return l.BucketCount() == 0
	}, time.Second, 10*time.Millisecond)
}

func newRateLimitRouter(limiter RateLimiter, cfg RateLimitConfig) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(RequestID())
	r.Use(RateLimit(limiter, cfg))
	r.GET("/x", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/health", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	return r
}

func TestRateLimit_ExceededReturns429(t *testing.T) {
	cfg := DefaultRateLimitConfig()
	limiter := NewTokenBucketLimiter(0.001, 2, 0)
	r := newRateLimitRouter(limiter, cfg)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
		require.Equal(t, http.StatusOK, w.Code)
		assert.Equal(t, "2", w.Header().Get("X-RateLimit-Limit"))
	}

	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "0", w.Header().Get("X-RateLimit-Remaining"))
	assert.NotEmpty(t, w.Header().Get("Retry-After"))
	assert.Contains(t, w.Body.String(), `"success":false`)
	assert.Contains(t, w.Body.String(), "rate limit exceeded")
}

func TestRateLimit_SkipPathsBypass(t *testing.T) {
	cfg := DefaultRateLimitConfig()
	limiter := NewTokenBucketLimiter(0.001, 1, 0)
	r := newRateLimitRouter(limiter, cfg)

	// Exhaust the bucket on a limited path.
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/x", nil))
	require.Equal(t, http.StatusOK, w.Code)

	// Probes stay reachable regardless.
	for i := 0; i < 5; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/health", nil))
		assert.Equal(t, http.StatusOK, w.Code)
	}
}

func TestRateLimit_PerClientBuckets(t *testing.T) {
	cfg := DefaultRateLimitConfig()
	limiter := NewTokenBucketLimiter(0.001, 1, 0)
	r := newRateLimitRouter(limiter, cfg)

	reqA := httptest.NewRequest(http.MethodGet, "/x", nil)
	reqA.Header.Set("X-Forwarded-For", "10.0.0.1")
	reqB := httptest.NewRequest(http.MethodGet, "/x", nil)
	reqB.Header.Set("X-Forwarded-For", "10.0.0.2")

	w := httptest.NewRecorder()
	r.ServeHTTP(w, reqA)
	require.Equal(t, http.StatusOK, w.Code)

	// A is out of tokens; B still has its own bucket.
	w = httptest.NewRecorder()
	reqA2 := httptest.NewRequest(http.MethodGet, "/x", nil)
	reqA2.Header.Set("X-Forwarded-For", "10.0.0.1")
	r.ServeHTTP(w, reqA2)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)

	w = httptest.NewRecorder()
	r.ServeHTTP(w, reqB)
	assert.Equal(t, http.StatusOK, w.Code)
}
