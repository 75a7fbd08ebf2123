// Package ratelimit throttles failed logins with fixed-window counters.
//
// A window opens on the first failure for a key and lasts Window. Once
// MaxAttempts failures are recorded inside it, Check refuses further
// attempts until the window expires. A successful login calls Reset.
//
// Counters live in a Store: the local key-value table by default, or Redis
// when several machines should share one budget.
package ratelimit

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/sakif/password-analyzer/internal/apperror"
)

// Store keeps the counters.
type Store interface {
	// Incr adds one to key, opening a window of length window if none is
	// open, and returns the new count.
	Incr(ctx context.Context, key string, window time.Duration) (int, error)
	// Get returns the current count and the time left in the window; zero
	// values when no window is open.
	Get(ctx context.Context, key string) (int, time.Duration, error)
	Reset(ctx context.Context, key string) error
}

// Config holds rate limiter tuning parameters.
type Config struct {
	MaxAttempts int
	Window      time.Duration
}

// DefaultConfig allows 5 failures per 15 minutes.
func DefaultConfig() Config {
	return Config{MaxAttempts: 5, Window: 15 * time.Minute}
}

// Limiter enforces a per-identifier failure budget.
type Limiter struct {
	store  Store
	config Config
}

// New creates a Limiter over store.
func New(store Store, cfg Config) *Limiter {
	if cfg.MaxAttempts <= 0 {
		cfg.MaxAttempts = DefaultConfig().MaxAttempts
	}
	if cfg.Window <= 0 {
		cfg.Window = DefaultConfig().Window
	}
	return &Limiter{store: store, config: cfg}
}

// CheckLogin returns an error wrapping apperror.ErrRateLimited when the
// identifier has used up its budget.
func (l *Limiter) CheckLogin(ctx context.Context, identifier string) error {
	count, left, err := l.store.Get(ctx, loginKey(identifier))
	if err != nil {
		return fmt.Errorf("ratelimit: reading counter: %w", err)
	}
	if count >= l.config.MaxAttempts {
		return apperror.RateLimited(fmt.Sprintf(
			"Too many failed login attempts. Try again in %s.", roundUp(left)))
	}
	return nil
}

// FailLogin records a failed attempt and returns the attempts left in the
// window.
func (l *Limiter) FailLogin(ctx context.Context, identifier string) (int, error) {
	count, err := l.store.Incr(ctx, loginKey(identifier), l.config.Window)
	if err != nil {
		return 0, fmt.Errorf("ratelimit: incrementing counter: %w", err)
	}
	return max(l.config.MaxAttempts-count, 0), nil
}

// ResetLogin clears the identifier's counter.
func (l *Limiter) ResetLogin(ctx context.Context, identifier string) error {
	if err := l.store.Reset(ctx, loginKey(identifier)); err != nil {
		return fmt.Errorf("ratelimit: resetting counter: %w", err)
	}
	return nil
}

func loginKey(identifier string) string {
	return "login:" + strings.ToLower(strings.TrimSpace(identifier))
}

// roundUp renders d to whole seconds, never "0s".
func roundUp(d time.Duration) time.Duration {
	if d <= time.Second {
		return time.Second
	}
	return d.Round(time.Second)
}
