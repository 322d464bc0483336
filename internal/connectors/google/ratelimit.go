package google

import (
	"context"
	"sync"
	"time"

	"golang.org/x/time/rate"
)

// Drive allows 10 requests per second per user; reqsync stays below it.
const (
	driveRequestsPerSecond = 8
	driveBurst             = 10

	// DefaultBackoff is used after a 429 that carried no Retry-After.
	DefaultBackoff = time.Minute
)

// Limiter paces API calls with a token bucket and holds every caller back
// after Google answered 429.
type Limiter struct {
	bucket *rate.Limiter
	now    func() time.Time

	mu        sync.Mutex
	holdUntil time.Time
}

// NewDriveLimiter returns a Limiter tuned for the Drive API.
func NewDriveLimiter() *Limiter {
	return NewLimiter(rate.Limit(driveRequestsPerSecond), driveBurst)
}

// NewLimiter returns a Limiter allowing r requests per second with burst b.
func NewLimiter(r rate.Limit, b int) *Limiter {
	return &Limiter{bucket: rate.NewLimiter(r, b), now: time.Now}
}

// Wait blocks until the backoff has passed and a token is available.
func (l *Limiter) Wait(ctx context.Context) error {
	l.mu.Lock()
	hold := l.holdUntil.Sub(l.now())
	l.mu.Unlock()

	if hold > 0 {
		t := time.NewTimer(hold)
		defer t.Stop()
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-t.C:
		}
	}
	return l.bucket.Wait(ctx)
}

// Observe inspects the result of an API call and starts a backoff when
// it was rate limited. It returns err unchanged.
func (l *Limiter) Observe(err error) error {
	if err == nil || !IsRateLimited(err) {
		return err
	}
	d := RetryAfter(err)
	if d <= 0 {
		d = DefaultBackoff
	}

	l.mu.Lock()
	if until := l.now().Add(d); until.After(l.holdUntil) {
		l.holdUntil = until
	}
	l.mu.Unlock()
	return err
}

// HoldUntil returns the end of the current backoff, if any.
func (l *Limiter) HoldUntil() time.Time {
	l.mu.Lock()
	defer l.mu.Unlock()
	return l.holdUntil
}
