package http

import (
	"context"
	"encoding/json"
	nethttp "net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/router-for-me/DynamicUIGenerator/internal/ratelimit"
)

type countingLimiter struct {
	mu     sync.Mutex
	limit  int
	counts map[string]int
	policy ratelimit.Policy
}

func newCountingLimiter(limit int) *countingLimiter {
	return &countingLimiter{
		limit:  limit,
		counts: make(map[string]int),
		policy: ratelimit.Policy{Requests: limit, Window: 60 * time.Second},
	}
}

func (l *countingLimiter) Allow(_ context.Context, key string) bool {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.counts[key] >= l.limit {
		return false
	}
	l.counts[key]++
	return true
}

func (l *countingLimiter) Policy() ratelimit.Policy { return l.policy }

func newTestEngine(limiter RateLimiter) *gin.Engine {
	gin.SetMode(gin.TestMode)
	engine := gin.New()
	engine.Use(RequestLogger())
	engine.GET("/limited", RateLimitMiddleware(limiter), func(c *gin.Context) {
		c.String(nethttp.StatusOK, "ok")
	})
	return engine
}

func TestRateLimitMiddleware_RejectsOverQuota(t *testing.T) {
	limiter := newCountingLimiter(2)
	engine := newTestEngine(limiter)

	for i := 0; i < 2; i++ {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(nethttp.MethodGet, "/limited", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		engine.ServeHTTP(w, req)
		if w.Code != nethttp.StatusOK {
			t.Fatalf("expected status=200 on call %d, got %d", i+1, w.Code)
		}
	}

	w := httptest.NewRecorder()
	req := httptest.NewRequest(nethttp.MethodGet, "/limited", nil)
	req.RemoteAddr = "10.0.0.1:5001"
	engine.ServeHTTP(w, req)
	if w.Code != nethttp.StatusTooManyRequests {
		t.Fatalf("expected status=429, got %d", w.Code)
	}
	if got := w.Header().Get("Retry-After"); got != "60" {
		t.Fatalf("expected Retry-After=60, got %q", got)
	}
	var body map[string]string
	if errDecode := json.Unmarshal(w.Body.Bytes(), &body); errDecode != nil {
		t.Fatalf("decode body: %v", errDecode)
	}
	if body["detail"] != "Rate limit exceeded. Maximum 2 requests per 60 seconds." {
		t.Fatalf("unexpected detail: %q", body["detail"])
	}
}

func TestRateLimitMiddleware_KeysByForwardedFor(t *testing.T) {
	limiter := newCountingLimiter(1)
	engine := newTestEngine(limiter)

	for _, forwarded := range []string{"203.0.113.5, 10.0.0.1", "203.0.113.6"} {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(nethttp.MethodGet, "/limited", nil)
		req.RemoteAddr = "10.0.0.1:5000"
		req.Header.Set("X-Forwarded-For", forwarded)
		engine.ServeHTTP(w, req)
		if w.Code != nethttp.StatusOK {
			t.Fatalf("expected distinct forwarded clients to pass, got %d for %q", w.Code, forwarded)
		}
	}
	if limiter.counts["203.0.113.5"] != 1 || limiter.counts["203.0.113.6"] != 1 {
		t.Fatalf("unexpected keys: %+v", limiter.counts)
	}
}

func TestRateLimitMiddleware_NilLimiterPasses(t *testing.T) {
	engine := newTestEngine(nil)
	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(nethttp.MethodGet, "/limited", nil))
	if w.Code != nethttp.StatusOK {
		t.Fatalf("expected status=200, got %d", w.Code)
	}
}

func TestRequestLogger_SetsRequestID(t *testing.T) {
	engine := newTestEngine(nil)

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(nethttp.MethodGet, "/limited", nil))
	if w.Header().Get(RequestIDHeader) == "" {
		t.Fatalf("expected generated request id")
	}

	w = httptest.NewRecorder()
	req := httptest.NewRequest(nethttp.MethodGet, "/limited", nil)
	req.Header.Set(RequestIDHeader, "abc-123")
	engine.ServeHTTP(w, req)
	if got := w.Header().Get(RequestIDHeader); got != "abc-123" {
		t.Fatalf("expected propagated request id, got %q", got)
	}
}
