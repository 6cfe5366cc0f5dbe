package serverutils

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/patrickmn/go-cache"
	"golang.org/x/time/rate"
)

// RateLimiter hands out one token bucket per caller. Idle buckets expire.
type RateLimiter struct {
	reqPerSec float64
	burst     int
	buckets   *cache.Cache
}

func NewRateLimiter(reqPerSec float64, burst int) *RateLimiter {
	if burst <= 0 {
		burst = 1
	}
	return &RateLimiter{
		reqPerSec: reqPerSec,
		burst:     burst,
		buckets:   cache.New(10*time.Minute, 10*time.Minute),
	}
}

// Allow reports whether key may make another request now.
func (rl *RateLimiter) Allow(key string) bool {
	if rl.reqPerSec <= 0 {
		return true
	}
	if x, found := rl.buckets.Get(key); found {
		rl.buckets.Set(key, x, cache.DefaultExpiration)
		return x.(*rate.Limiter).Allow()
	}
	limiter := rate.NewLimiter(rate.Limit(rl.reqPerSec), rl.burst)
	if err := rl.buckets.Add(key, limiter, cache.DefaultExpiration); err != nil {
		// Lost the race to another request for the same key.
		if x, found := rl.buckets.Get(key); found {
			return x.(*rate.Limiter).Allow()
		}
	}
	return limiter.Allow()
}

// RateLimitMiddleware limits each chat session, or each IP before a session exists.
func RateLimitMiddleware(rl *RateLimiter) fiber.Handler {
	return func(ctx *fiber.Ctx) error {
		key := ctx.IP()
		if sessionID, ok := ctx.Locals(LocalSessionID).(string); ok && sessionID != "" {
			key = sessionID
		}
		if !rl.Allow(key) {
			return ctx.Status(fiber.StatusTooManyRequests).JSON(ErrorResponse(fiber.StatusTooManyRequests, "Too many requests"))
		}
		return ctx.Next()
	}
}
