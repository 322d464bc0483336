// Package ratelimited wraps an oracle with a client-side token bucket.
package ratelimited

import (
	"context"
	"errors"
	"sync"
	"time"

	"golang.org/x/time/rate"

	"github.com/custodia-labs/reqsync/internal/core/domain"
	"github.com/custodia-labs/reqsync/internal/core/ports/driven"
)

// Ensure Oracle implements the interface.
var _ driven.Oracle = (*Oracle)(nil)

// DefaultCooldown pauses all callers after the provider reports a rate limit.
const DefaultCooldown = 10 * time.Second

// Config holds rate limiting configuration.
type Config struct {
	// RequestsPerSecond is the sustained rate.
	RequestsPerSecond float64

	// BurstSize is the maximum burst (default: 1).
	BurstSize int

	// Cooldown is applied after a rate limit error (default: 10s).
	Cooldown time.Duration
}

// Oracle throttles calls to the wrapped oracle.
type Oracle struct {
	next     driven.Oracle
	limiter  *rate.Limiter
	cooldown time.Duration

	mu      sync.Mutex
	retryAt time.Time
}

// Wrap returns next throttled to cfg. A non-positive rate returns next unchanged.
func Wrap(next driven.Oracle, cfg Config) driven.Oracle {
	if cfg.RequestsPerSecond <= 0 {
		return next
	}
	return New(next, cfg)
}

// New creates a rate limited oracle.
func New(next driven.Oracle, cfg Config) *Oracle {
	if cfg.BurstSize <= 0 {
		cfg.BurstSize = 1
	}
	if cfg.Cooldown <= 0 {
		cfg.Cooldown = DefaultCooldown
	}
	return &Oracle{
		next:     next,
		limiter:  rate.NewLimiter(rate.Limit(cfg.RequestsPerSecond), cfg.BurstSize),
		cooldown: cfg.Cooldown,
	}
}

// Generate waits for a token and any cooldown, then calls the wrapped oracle.
func (o *Oracle) Generate(ctx context.Context, prompt string, params driven.GenerateParams) (string, error) {
	if err := o.wait(ctx); err != nil {
		return "", err
	}

	out, err := o.next.Generate(ctx, prompt, params)
	if errors.Is(err, domain.ErrRateLimited) {
		o.mu.Lock()
		o.retryAt = time.Now().Add(o.cooldown)
		o.mu.Unlock()
	}
	return out, err
}

func (o *Oracle) wait(ctx context.Context) error {
	o.mu.Lock()
	retryAt := o.retryAt
	o.mu.Unlock()

	if d := time.Until(retryAt); d > 0 {
		timer := time.NewTimer(d)
		defer timer.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-timer.C:
		}
	}
	return o.limiter.Wait(ctx)
}

// Name returns the wrapped oracle's name.
func (o *Oracle) Name() string {
	return o.next.Name()
}

// Ping forwards to the wrapped oracle when it supports it.
func (o *Oracle) Ping(ctx context.Context) error {
	if p, ok := o.next.(interface{ Ping(context.Context) error }); ok {
		return p.Ping(ctx)
	}
	return nil
}

// Close closes the wrapped oracle.
func (o *Oracle) Close() error {
	return o.next.Close()
}
