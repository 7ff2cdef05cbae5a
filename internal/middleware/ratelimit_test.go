package middleware

import (
	"context"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var signinLimit = Limit{Name: "signin", Max: 2, Window: time.Minute}

func newLimitRedis(t *testing.T) (*miniredis.Miniredis, *redis.Client) {
	t.Helper()
	mr := miniredis.RunT(t)
	rdb := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = rdb.Close() })
	return mr, rdb
}

func TestCheckRateLimit_EnvironmentBypass(t *testing.T) {
	for _, env := range []string{"", "test", "development", "stress"} {
		t.Run("env="+env, func(t *testing.T) {
			t.Setenv("APP_ENV", env)
			d, err := CheckRateLimit(context.Background(), nil, signinLimit, "ip:1")
			assert.NoError(t, err)
			assert.True(t, d.Allowed)
			assert.Equal(t, signinLimit.Max, d.Remaining)
		})
	}
}

func TestCheckRateLimit_NilRedisInProduction(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	d, err := CheckRateLimit(context.Background(), nil, signinLimit, "ip:1")
	assert.ErrorIs(t, err, errNoLimitStore)
	assert.False(t, d.Allowed)
}

func TestCheckRateLimit_FixedWindow(t *testing.T) {
	t.Setenv("APP_ENV", "production")
	mr, rdb := newLimitRedis(t)
	ctx := context.Background()

	d, err := CheckRateLimit(ctx, rdb, signinLimit, "ip:1")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 1, d.Remaining)
	assert.Equal(t, time.Minute, d.ResetIn)

	d, err = CheckRateLimit(ctx, rdb, signinLimit, "ip:1")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)

	d, err = CheckRateLimit(ctx, rdb, signinLimit, "ip:1")
	require.NoError(t, err)
	assert.False(t, d.Allowed)

	// Other callers have their own bucket.
	d, err = CheckRateLimit(ctx, rdb, signinLimit, "ip:2")
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	mr.FastForward(time.Minute + time.Second)
	d, err = CheckRateLimit(ctx, rdb, signinLimit, "ip:1")
	require.NoError(t, err)
	assert.True(t, d.Allowed)
}

func TestLimiter(t *testing.T) {
	ok := func(c *fiber.Ctx) error { return c.SendStatus(fiber.StatusOK) }

	t.Run("fails open without redis", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		app := fiber.New()
		app.Get("/feed", RateLimit(nil, 1, time.Minute, "feed"), ok)

		resp, err := app.Test(httptest.NewRequest(http.MethodGet, "/feed", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("fails closed without redis when configured", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		app := fiber.New()
		app.Post("/generate", Limiter(nil, Limit{Name: "generate", Max: 1, Window: time.Minute, FailClosed: true}), ok)

		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/generate", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusServiceUnavailable, resp.StatusCode)
		_ = resp.Body.Close()
	})

	t.Run("rejects over the limit with retry hint", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		_, rdb := newLimitRedis(t)
		app := fiber.New()
		app.Post("/signin", RateLimit(rdb, 1, time.Minute, "signin"), ok)

		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/signin", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusOK, resp.StatusCode)
		assert.Equal(t, "1", resp.Header.Get("X-RateLimit-Limit"))
		assert.Equal(t, "0", resp.Header.Get("X-RateLimit-Remaining"))
		_ = resp.Body.Close()

		resp, err = app.Test(httptest.NewRequest(http.MethodPost, "/signin", nil))
		require.NoError(t, err)
		assert.Equal(t, http.StatusTooManyRequests, resp.StatusCode)
		assert.Equal(t, "60", resp.Header.Get(fiber.HeaderRetryAfter))
		_ = resp.Body.Close()
	})

	t.Run("keys by authenticated user", func(t *testing.T) {
		t.Setenv("APP_ENV", "production")
		_, rdb := newLimitRedis(t)
		app := fiber.New()
		app.Post("/posts", func(c *fiber.Ctx) error {
			c.Locals("userID", uint(7))
			return c.Next()
		}, RateLimit(rdb, 1, time.Minute, "create_post"), ok)

		resp, err := app.Test(httptest.NewRequest(http.MethodPost, "/posts", nil))
		require.NoError(t, err)
		_ = resp.Body.Close()

		n, err := rdb.Get(context.Background(), "rl:create_post:user:7").Int()
		require.NoError(t, err)
		assert.Equal(t, 1, n)
	})
}
