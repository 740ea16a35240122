package api

import (
	"math"
	"strconv"
	"strings"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
)

const (
	loginAttemptsLimit  = 8
	loginAttemptsWindow = 15 * time.Minute
)

// attemptLimiter counts failed credential checks per client inside a sliding
// window. Successful checks clear the client's history.
type attemptLimiter struct {
	mu       sync.Mutex
	limit    int
	window   time.Duration
	failures map[string][]time.Time
}

func newAttemptLimiter(limit int, window time.Duration) *attemptLimiter {
	return &attemptLimiter{
		limit:    limit,
		window:   window,
		failures: make(map[string][]time.Time),
	}
}

// retryAfter is zero while key may still try, otherwise the time until the
// oldest counted failure leaves the window.
func (limiter *attemptLimiter) retryAfter(key string, now time.Time) time.Duration {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	recent := limiter.pruneLocked(key, now)
	if len(recent) < limiter.limit {
		return 0
	}
	oldest := recent[len(recent)-limiter.limit]
	return oldest.Add(limiter.window).Sub(now)
}

func (limiter *attemptLimiter) recordFailure(key string, now time.Time) {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()

	limiter.failures[key] = append(limiter.pruneLocked(key, now), now)
}

func (limiter *attemptLimiter) reset(key string) {
	limiter.mu.Lock()
	defer limiter.mu.Unlock()
	delete(limiter.failures, key)
}

func (limiter *attemptLimiter) pruneLocked(key string, now time.Time) []time.Time {
	threshold := now.Add(-limiter.window)
	kept := limiter.failures[key][:0]
	for _, failedAt := range limiter.failures[key] {
		if failedAt.After(threshold) {
			kept = append(kept, failedAt)
		}
	}
	if len(kept) == 0 {
		delete(limiter.failures, key)
		return nil
	}
	limiter.failures[key] = kept
	return kept
}

// rejectThrottled answers 429 with a Retry-After header when the client has
// used up its attempts. It reports whether the request was rejected.
func (handler *Handler) rejectThrottled(c *fiber.Ctx, key string, now time.Time) (bool, error) {
	wait := handler.loginLimiter.retryAfter(key, now)
	if wait <= 0 {
		return false, nil
	}
	c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(math.Ceil(wait.Seconds()))))
	return true, apiError(c, fiber.StatusTooManyRequests, "too many login attempts")
}

func requestLimiterKey(c *fiber.Ctx) string {
	key := strings.TrimSpace(c.IP())
	if key == "" {
		return "unknown"
	}
	return key
}
