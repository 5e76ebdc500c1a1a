package middleware

import (
	"context"
	"errors"
	"os"
	"strconv"
	"time"

	"moodmate/internal/models"
	"moodmate/internal/observability"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

// FailPolicy decides what happens to a request when Redis cannot count it.
type FailPolicy int

const (
	// FailOpen lets the request through.
	FailOpen FailPolicy = iota
	// FailClosed answers 503.
	FailClosed
)

var errNoRateLimitStore = errors.New("rate limit store is not configured")

// rateLimitBypassed reports whether APP_ENV turns limits off. Local and test
// runs share one IP and would trip every limit.
func rateLimitBypassed() bool {
	switch os.Getenv("APP_ENV") {
	case "", "development", "test":
		return true
	}
	return false
}

// CheckRateLimit counts one hit on resource for caller in a fixed window
// and reports whether caller is within limit, plus the hits remaining.
func CheckRateLimit(ctx context.Context, rdb *redis.Client, resource, caller string, limit int, window time.Duration) (bool, int, error) {
	if rateLimitBypassed() {
		return true, limit, nil
	}
	if rdb == nil {
		return false, 0, errNoRateLimitStore
	}

	key := "rl:" + resource + ":" + caller
	hits, err := rdb.Incr(ctx, key).Result()
	if err != nil {
		return false, 0, err
	}
	// The first hit opens the window.
	if hits == 1 {
		if err := rdb.Expire(ctx, key, window).Err(); err != nil {
			return false, 0, err
		}
	}
	return hits <= int64(limit), max(limit-int(hits), 0), nil
}

// RateLimit limits each caller to limit requests per window on the route,
// failing open. name labels the bucket; the route path is used without it.
func RateLimit(rdb *redis.Client, limit int, window time.Duration, name ...string) fiber.Handler {
	return RateLimitWithPolicy(rdb, limit, window, FailOpen, name...)
}

// RateLimitWithPolicy is RateLimit with an explicit FailPolicy. Callers are
// the signed-in user, or the remote IP for anonymous requests.
func RateLimitWithPolicy(rdb *redis.Client, limit int, window time.Duration, policy FailPolicy, name ...string) fiber.Handler {
	retryAfter := strconv.Itoa(int(window.Seconds()))

	return func(c *fiber.Ctx) error {
		caller := "ip:" + c.IP()
		if uid, ok := UserID(c); ok {
			caller = "user:" + uid.String()
		}
		resource := c.Path()
		if len(name) > 0 {
			resource = name[0]
		}

		allowed, remaining, err := CheckRateLimit(c.UserContext(), rdb, resource, caller, limit, window)
		if err != nil {
			if policy == FailOpen {
				return c.Next()
			}
			Logger.WarnContext(c.UserContext(), "rate limit store unavailable, failing closed",
				"resource", resource, "error", err.Error())
			return c.Status(fiber.StatusServiceUnavailable).JSON(models.ErrorResponse{
				Error: "Rate limiting is temporarily unavailable",
				Code:  models.CodeUpstreamUnavailable,
			})
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(limit))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(remaining))
		if allowed {
			return c.Next()
		}

		observability.RateLimited.WithLabelValues(resource).Inc()
		c.Set(fiber.HeaderRetryAfter, retryAfter)
		return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
			Error: "Too many requests, slow down",
			Code:  models.CodeRateLimited,
		})
	}
}
