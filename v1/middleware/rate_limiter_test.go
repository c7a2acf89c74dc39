package middleware

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestRateLimiterAllowsUnderLimit(t *testing.T) {
	limiter := NewRateLimiter(3, time.Minute)

	for i := 0; i < 3; i++ {
		assert.True(t, limiter.IsAllowed("10.0.0.1"))
	}
	assert.False(t, limiter.IsAllowed("10.0.0.1"))
}

func TestRateLimiterTracksIPsSeparately(t *testing.T) {
	limiter := NewRateLimiter(1, time.Minute)

	assert.True(t, limiter.IsAllowed("10.0.0.1"))
	assert.False(t, limiter.IsAllowed("10.0.0.1"))
	assert.True(t, limiter.IsAllowed("10.0.0.2"))
}

func TestRateLimiterWindowExpiry(t *testing.T) {
	limiter := NewRateLimiter(1, 10*time.Millisecond)

	assert.True(t, limiter.IsAllowed("10.0.0.1"))
	assert.False(t, limiter.IsAllowed("10.0.0.1"))

	time.Sleep(15 * time.Millisecond)
	assert.True(t, limiter.IsAllowed("10.0.0.1"))
}

func TestRateLimiterSweepsIdleClients(t *testing.T) {
	limiter := NewRateLimiter(5, 10*time.Millisecond)

	for i := 0; i < 20; i++ {
		assert.True(t, limiter.IsAllowed(fmt.Sprintf("10.0.0.%d", i)))
	}

	// After the window passes, the next check sweeps out the idle clients
	time.Sleep(15 * time.Millisecond)
	assert.True(t, limiter.IsAllowed("10.0.1.1"))

	limiter.mutex.Lock()
	defer limiter.mutex.Unlock()
	assert.Len(t, limiter.requests, 1)
}

func TestRateLimitMiddlewareReturns429(t *testing.T) {
	handler := RateLimitMiddleware(1, time.Minute)(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	}))

	req := httptest.NewRequest(http.MethodPost, "/api/v1/auth/login", nil)
	req.RemoteAddr = "10.0.0.1:54321"

	rec := httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusOK, rec.Code)

	rec = httptest.NewRecorder()
	handler.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusTooManyRequests, rec.Code)
}
