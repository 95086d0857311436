package middleware

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	miniredis "github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

func loginApp(limiter fiber.Handler) *fiber.App {
	app := fiber.New()
	app.Post("/login", limiter, func(c *fiber.Ctx) error {
		return c.SendStatus(http.StatusOK)
	})
	return app
}

func postLogin(t *testing.T, app *fiber.App, username string) int {
	t.Helper()
	req := httptest.NewRequest(fiber.MethodPost, "/login", strings.NewReader(`{"username":"`+username+`"}`))
	req.Header.Set(fiber.HeaderContentType, fiber.MIMEApplicationJSON)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("app.Test: %v", err)
	}
	return resp.StatusCode
}

func TestLoginRateLimitWithoutCacheAllowsAll(t *testing.T) {
	app := loginApp(LoginRateLimit(nil, 2))
	for i := 0; i < 5; i++ {
		if status := postLogin(t, app, "jdoe"); status != http.StatusOK {
			t.Fatalf("attempt %d: expected 200 without cache, got %d", i+1, status)
		}
	}
}

func TestLoginRateLimitBlocksAfterMax(t *testing.T) {
	mr := miniredis.RunT(t)
	cache := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { cache.Close() })

	app := loginApp(LoginRateLimit(cache, 2))
	for i := 0; i < 2; i++ {
		if status := postLogin(t, app, "jdoe"); status != http.StatusOK {
			t.Fatalf("attempt %d: expected 200, got %d", i+1, status)
		}
	}
	if status := postLogin(t, app, "jdoe"); status != http.StatusTooManyRequests {
		t.Fatalf("expected 429 after limit, got %d", status)
	}

	// Other usernames have their own counter.
	if status := postLogin(t, app, "other"); status != http.StatusOK {
		t.Fatalf("expected 200 for different username, got %d", status)
	}
}
