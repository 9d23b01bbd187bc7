package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
)

func TestRateLimiter_Allow(t *testing.T) {
	rl := NewRateLimiterWithConfig(10, 5) // 10 per minute, burst of 5
	defer rl.Stop()

	// First 5 requests should be allowed (burst)
	for i := 0; i < 5; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Errorf("Request %d should be allowed", i+1)
		}
	}

	// 6th request should be rate limited (exceeded burst)
	if rl.Allow("10.0.0.1") {
		t.Error("Request 6 should be rate limited")
	}
}

func TestRateLimiter_DifferentClients(t *testing.T) {
	rl := NewRateLimiterWithConfig(10, 3)
	defer rl.Stop()

	// Exhaust the first client's burst
	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.1") {
			t.Errorf("Client 1 request %d should be allowed", i+1)
		}
	}
	if rl.Allow("10.0.0.1") {
		t.Error("Client 1 should be rate limited")
	}

	// A different client still has its full burst
	for i := 0; i < 3; i++ {
		if !rl.Allow("10.0.0.2") {
			t.Errorf("Client 2 request %d should be allowed", i+1)
		}
	}
}

func TestRateLimitMiddleware_Returns429(t *testing.T) {
	e := echo.New()
	rl := NewRateLimiterWithConfig(1, 1)
	defer rl.Stop()

	handler := RateLimitMiddleware(rl)(func(c echo.Context) error {
		return c.NoContent(http.StatusOK)
	})

	newCtx := func() (echo.Context, *httptest.ResponseRecorder) {
		req := httptest.NewRequest(http.MethodGet, "/api/rates", nil)
		req.RemoteAddr = "192.0.2.1:1234"
		rec := httptest.NewRecorder()
		return e.NewContext(req, rec), rec
	}

	c, rec := newCtx()
	if err := handler(c); err != nil {
		t.Fatalf("Expected no error, got %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("Expected first request to pass, got %d", rec.Code)
	}

	c, rec = newCtx()
	if err := handler(c); err != nil {
		t.Fatalf("Expected JSON response, got error: %v", err)
	}
	if rec.Code != http.StatusTooManyRequests {
		t.Errorf("Expected status 429, got %d", rec.Code)
	}
}
