package http

import (
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
)

func TestClientLimitersCap(t *testing.T) {
	pool := newClientLimiters(60, 3)

	for i := 0; i < 10; i++ {
		pool.get(fmt.Sprintf("10.0.0.%d", i))
	}
	if got := pool.size(); got > 3 {
		t.Errorf("pool size = %d, want at most 3", got)
	}

	// Known IPs keep their limiter across calls.
	a := pool.get("10.1.0.1")
	if b := pool.get("10.1.0.1"); a != b {
		t.Error("repeated get for the same IP returned a different limiter")
	}
}

func TestClientLimitersIdleEviction(t *testing.T) {
	pool := newClientLimiters(60, 2)
	pool.get("10.0.0.1")
	pool.get("10.0.0.2")

	// Backdate one entry past the idle window; the next insert at cap must
	// sweep it instead of an active one.
	pool.entries["10.0.0.1"].lastSeen = time.Now().Add(-2 * limiterIdleTTL)
	pool.get("10.0.0.3")

	if _, ok := pool.entries["10.0.0.1"]; ok {
		t.Error("idle entry survived eviction")
	}
	if _, ok := pool.entries["10.0.0.3"]; !ok {
		t.Error("new entry missing after eviction")
	}
	if got := pool.size(); got > 2 {
		t.Errorf("pool size = %d, want at most 2", got)
	}
}

func TestRateLimitMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)

	t.Run("rejects once the burst is spent", func(t *testing.T) {
		router := gin.New()
		router.Use(rateLimit(2, 16))
		router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

		codes := make([]int, 0, 3)
		for i := 0; i < 3; i++ {
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			req.RemoteAddr = "10.0.0.1:1234"
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			codes = append(codes, w.Code)
		}
		if codes[0] != http.StatusOK || codes[1] != http.StatusOK {
			t.Errorf("burst requests = %v, first two want 200", codes)
		}
		if codes[2] != http.StatusTooManyRequests {
			t.Errorf("codes[2] = %d, want 429", codes[2])
		}
	})

	t.Run("disabled when non-positive", func(t *testing.T) {
		router := gin.New()
		router.Use(rateLimit(0, 16))
		router.GET("/ping", func(c *gin.Context) { c.Status(http.StatusOK) })

		for i := 0; i < 5; i++ {
			req := httptest.NewRequest(http.MethodGet, "/ping", nil)
			req.RemoteAddr = "10.0.0.1:1234"
			w := httptest.NewRecorder()
			router.ServeHTTP(w, req)
			if w.Code != http.StatusOK {
				t.Fatalf("request %d status = %d, want 200", i, w.Code)
			}
		}
	})
}
