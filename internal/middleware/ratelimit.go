package middleware

import (
	"context"
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
)

var errNoLimitStore = errors.New("rate limit store unavailable")

// Limit is one named fixed-window bucket, e.g. sign-ins or generation requests.
type Limit struct {
	Name   string
	Max    int
	Window time.Duration
	// FailClosed answers 503 instead of letting the request through when Redis is down.
	FailClosed bool
}

// Decision is the result of counting one request against a Limit.
type Decision struct {
	Allowed   bool
	Remaining int
	ResetIn   time.Duration
}

// limitsBypassed reports whether APP_ENV turns rate limiting off.
func limitsBypassed() bool {
	switch os.Getenv("APP_ENV") {
	case "", "test", "development", "stress":
		return true
	}
	return false
}

// CheckRateLimit counts one request by id against l.
// Rate limiting is disabled when APP_ENV is unset, "test", "development" or "stress".
func CheckRateLimit(ctx context.Context, rdb *redis.Client, l Limit, id string) (Decision, error) {
	if limitsBypassed() {
		return Decision{Allowed: true, Remaining: l.Max}, nil
	}
	if rdb == nil {
		return Decision{}, errNoLimitStore
	}

	key := "rl:" + l.Name + ":" + id
	var (
		count *redis.IntCmd
		ttl   *redis.DurationCmd
	)
	if _, err := rdb.TxPipelined(ctx, func(p redis.Pipeliner) error {
		count = p.Incr(ctx, key)
		ttl = p.PTTL(ctx, key)
		return nil
	}); err != nil {
		return Decision{}, fmt.Errorf("count %s: %w", l.Name, err)
	}

	resetIn := ttl.Val()
	if count.Val() == 1 || resetIn < 0 {
		if err := rdb.PExpire(ctx, key, l.Window).Err(); err != nil {
			return Decision{}, fmt.Errorf("expire %s: %w", l.Name, err)
		}
		resetIn = l.Window
	}

	remaining := l.Max - int(count.Val())
	return Decision{
		Allowed:   remaining >= 0,
		Remaining: max(remaining, 0),
		ResetIn:   resetIn,
	}, nil
}

// RateLimit is Limiter with a fail-open bucket.
func RateLimit(rdb *redis.Client, limit int, window time.Duration, name string) fiber.Handler {
	return Limiter(rdb, Limit{Name: name, Max: limit, Window: window})
}

// Limiter enforces l per authenticated user, or per remote IP for anonymous
// callers, and reports the bucket state in X-RateLimit-* headers.
func Limiter(rdb *redis.Client, l Limit) fiber.Handler {
	return func(c *fiber.Ctx) error {
		id := "ip:" + c.IP()
		if uid, ok := c.Locals("userID").(uint); ok && uid != 0 {
			id = "user:" + strconv.FormatUint(uint64(uid), 10)
		}

		d, err := CheckRateLimit(c.UserContext(), rdb, l, id)
		if err != nil {
			if l.FailClosed {
				Logger.WarnContext(c.UserContext(), "rate limit unavailable, rejecting",
					"limit", l.Name, "error", err.Error())
				return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
					"error": "Service temporarily unavailable, please retry shortly.",
				})
			}
			return c.Next()
		}

		c.Set("X-RateLimit-Limit", strconv.Itoa(l.Max))
		c.Set("X-RateLimit-Remaining", strconv.Itoa(d.Remaining))
		if !d.Allowed {
			c.Set(fiber.HeaderRetryAfter, strconv.Itoa(int(d.ResetIn.Round(time.Second).Seconds())))
			return c.Status(fiber.StatusTooManyRequests).JSON(fiber.Map{
				"error": "Too many requests, please try again later.",
			})
		}
		return c.Next()
	}
}
