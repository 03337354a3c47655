package serverutils

import (
	"fmt"
	"time"

	"github.com/gofiber/fiber/v2"
	gocache "github.com/patrickmn/go-cache"
)

// RateLimiter is a fixed-window per-user request counter.
type RateLimiter struct {
	counters *gocache.Cache
	limit    int
	window   time.Duration
}

func NewRateLimiter(limit int, window time.Duration) *RateLimiter {
	if window <= 0 {
		window = time.Second
	}
	return &RateLimiter{
		counters: gocache.New(window, 2*window),
		limit:    limit,
		window:   window,
	}
}

// Allow records a hit for the key and reports whether it is within the limit.
func (r *RateLimiter) Allow(key string) bool {
	windowKey := fmt.Sprintf("%s:%d", key, time.Now().UnixNano()/int64(r.window))

	// Add is atomic, so exactly one concurrent first request creates
	// the counter; the losers fall through to the increment.
	if err := r.counters.Add(windowKey, int64(1), r.window); err == nil {
		return r.limit >= 1
	}
	count, err := r.counters.IncrementInt64(windowKey, 1)
	if err != nil {
		// The counter expired between Add and Increment; a fresh window.
		r.counters.Set(windowKey, int64(1), r.window)
		return r.limit >= 1
	}
	return count <= int64(r.limit)
}

// Middleware rejects requests over the per-user limit with 429. Requests
// without an authenticated user fall back to the client IP.
func (r *RateLimiter) Middleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		key, _ := c.Locals("user_id").(string)
		if key == "" {
			key = c.IP()
		}
		if !r.Allow(key) {
			return c.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse(429, "Too many requests, please try again later"))
		}
		return c.Next()
	}
}
