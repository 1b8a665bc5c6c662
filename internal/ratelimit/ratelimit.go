// Package ratelimit is a fixed-window request counter kept in the shared
// store, so every instance of the app sees the same quota.
package ratelimit

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"

	"glowcart/internal/store"
)

// ErrLimited is returned once a client has used up its window.
var ErrLimited = errors.New("rate limit exceeded")

// Limiter counts hits per key in rl:<key> and expires the counter one window
// after the first hit.
type Limiter struct {
	kv     store.Store
	max    int64
	window time.Duration
}

func NewLimiter(kv store.Store, max int, window time.Duration) *Limiter {
	return &Limiter{kv: kv, max: int64(max), window: window}
}

// Allow records one hit for key. It returns ErrLimited when the hit is over
// quota, or a wrapped store error.
func (l *Limiter) Allow(ctx context.Context, key string) error {
	k := "rl:" + key
	n, err := l.kv.Incr(ctx, k)
	if err != nil {
		return fmt.Errorf("rate limit incr: %w", err)
	}
	if n == 1 {
		if err := l.kv.Expire(ctx, k, l.window); err != nil {
			return fmt.Errorf("rate limit expire: %w", err)
		}
	}
	if n > l.max {
		return ErrLimited
	}
	return nil
}

// Config mirrors the shape of fiber's limiter.Config.
type Config struct {
	// Next skips the limiter when it returns true.
	Next func(c *fiber.Ctx) bool

	Max        int
	Expiration time.Duration

	// KeyGenerator defaults to ClientKey.
	KeyGenerator func(c *fiber.Ctx) string

	// LimitReached handles an over-quota request. The default returns
	// ErrLimited so the app's error handler can answer.
	LimitReached fiber.Handler
}

// New returns middleware that enforces cfg against kv. Store failures are
// passed on as errors.
func New(kv store.Store, cfg Config) fiber.Handler {
	if cfg.Max <= 0 {
		cfg.Max = 10
	}
	if cfg.Expiration <= 0 {
		cfg.Expiration = time.Minute
	}
	if cfg.KeyGenerator == nil {
		cfg.KeyGenerator = ClientKey
	}
	if cfg.LimitReached == nil {
		cfg.LimitReached = func(*fiber.Ctx) error { return ErrLimited }
	}
	lim := NewLimiter(kv, cfg.Max, cfg.Expiration)

	return func(c *fiber.Ctx) error {
		if cfg.Next != nil && cfg.Next(c) {
			return c.Next()
		}
		err := lim.Allow(c.UserContext(), cfg.KeyGenerator(c))
		switch {
		case errors.Is(err, ErrLimited):
			return cfg.LimitReached(c)
		case err != nil:
			return err
		}
		return c.Next()
	}
}

// ClientKey identifies the caller: the first X-Forwarded-For entry, else the
// connection address, else "unknown".
func ClientKey(c *fiber.Ctx) string {
	if xff := c.Get(fiber.HeaderXForwardedFor); xff != "" {
		first, _, _ := strings.Cut(xff, ",")
		if first = strings.TrimSpace(first); first != "" {
			return first
		}
	}
	if ip := c.IP(); ip != "" {
		return ip
	}
	return "unknown"
}
