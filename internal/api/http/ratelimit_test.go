package http

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap/zaptest"
)

func TestIPRateLimiterBurstAndRefill(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := newIPRateLimiter(60, 2)
	l.now = func() time.Time { return now }

	if !l.allow("10.0.0.1") || !l.allow("10.0.0.1") {
		t.Fatal("burst should be allowed")
	}
	if l.allow("10.0.0.1") {
		t.Fatal("third request should be throttled")
	}
	if !l.allow("10.0.0.2") {
		t.Fatal("other clients have their own bucket")
	}

	now = now.Add(time.Second)
	if !l.allow("10.0.0.1") {
		t.Fatal("bucket should refill at one token per second")
	}
}

func TestIPRateLimiterSweepsIdleClients(t *testing.T) {
	now := time.Unix(1_700_000_000, 0)
	l := newIPRateLimiter(60, 1)
	l.now = func() time.Time { return now }

	l.allow("10.0.0.1")
	now = now.Add(limiterIdleTTL + 2*time.Minute)
	l.allow("10.0.0.2")

	if _, ok := l.buckets["10.0.0.1"]; ok {
		t.Fatal("idle bucket should be swept")
	}
}

func TestRateLimitRendersTooManyRequests(t *testing.T) {
	logger := zaptest.NewLogger(t)
	app := fiber.New(fiber.Config{ErrorHandler: ErrorHandler(logger)})
	RegisterMiddlewares(app, logger, nil, 0)
	app.Post("/login", RateLimit(60, 1), func(c *fiber.Ctx) error { return c.SendStatus(http.StatusNoContent) })

	codes := make([]int, 0, 2)
	for i := 0; i < 2; i++ {
		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/login", nil), -1)
		if err != nil {
			t.Fatalf("app test: %v", err)
		}
		codes = append(codes, resp.StatusCode)
	}
	if codes[0] != http.StatusNoContent || codes[1] != http.StatusTooManyRequests {
		t.Fatalf("unexpected status codes %v", codes)
	}
}
