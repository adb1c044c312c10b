package middleware_test

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/chroniclehq/chronicle/internal/middleware"
)

func limitedRouter(t *testing.T, ratePerSec, burst int) *gin.Engine {
	t.Helper()
	ctx, cancel := context.WithCancel(context.Background())
	t.Cleanup(cancel)

	r := gin.New()
	r.Use(middleware.NewRateLimiter(ctx, ratePerSec, burst).Handler())
	r.GET("/ping", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"ok": true})
	})

	return r
}

func pingFrom(r *gin.Engine, addr string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.RemoteAddr = addr
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRateLimiterAllowsWithinBurst(t *testing.T) {
	r := limitedRouter(t, 1, 3)

	for i := 0; i < 3; i++ {
		if w := pingFrom(r, "10.0.0.1:1234"); w.Code != http.StatusOK {
			t.Fatalf("request %d: got %d, want 200", i+1, w.Code)
		}
	}
}

func TestRateLimiterRejectsBeyondBurst(t *testing.T) {
	r := limitedRouter(t, 1, 2)

	pingFrom(r, "10.0.0.2:1234")
	pingFrom(r, "10.0.0.2:1234")

	w := pingFrom(r, "10.0.0.2:1234")
	if w.Code != http.StatusTooManyRequests {
		t.Fatalf("got %d, want 429", w.Code)
	}
	if !strings.Contains(w.Body.String(), "rate_limited") {
		t.Errorf("body = %s, want rate_limited code", w.Body.String())
	}
}

func TestRateLimiterTracksIPsIndependently(t *testing.T) {
	r := limitedRouter(t, 1, 1)

	if w := pingFrom(r, "10.0.0.3:1234"); w.Code != http.StatusOK {
		t.Fatalf("first IP: got %d, want 200", w.Code)
	}
	if w := pingFrom(r, "10.0.0.3:1234"); w.Code != http.StatusTooManyRequests {
		t.Fatalf("first IP second request: got %d, want 429", w.Code)
	}

	// A different client starts with its own full bucket.
	if w := pingFrom(r, "10.0.0.4:1234"); w.Code != http.StatusOK {
		t.Fatalf("second IP: got %d, want 200", w.Code)
	}
}
