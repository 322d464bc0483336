package services

import (
	"context"
	"errors"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/custodia-labs/reqsync/internal/core/domain"
	"github.com/custodia-labs/reqsync/internal/logger"
)

// DefaultMaxDelay caps a single backoff wait.
const DefaultMaxDelay = 2 * time.Minute

var retryHintPattern = regexp.MustCompile(`(?i)retry in (\d+(?:\.\d+)?)`)

// RetryPolicy retries rate-limited oracle calls with exponential backoff.
// Other failures are returned immediately.
type RetryPolicy struct {
	// MaxAttempts caps the number of calls, including the first one.
	MaxAttempts int

	// Base is the first backoff delay; later delays double.
	Base time.Duration

	// MaxDelay caps a single wait.
	MaxDelay time.Duration

	// Sleep waits between attempts. Nil uses a context-aware timer.
	Sleep func(ctx context.Context, d time.Duration) error
}

// NewRetryPolicy creates a policy from run settings.
func NewRetryPolicy(maxAttempts int, base time.Duration) RetryPolicy {
	return RetryPolicy{MaxAttempts: maxAttempts, Base: base, MaxDelay: DefaultMaxDelay}
}

// Do calls fn until it succeeds, fails with a non-rate-limit error, or the
// attempt cap is reached. It returns the number of attempts made.
func (p RetryPolicy) Do(ctx context.Context, fn func(context.Context) (string, error)) (string, int, error) {
	attempts := max(1, p.MaxAttempts)

	var lastErr error
	for attempt := 0; attempt < attempts; attempt++ {
		out, err := fn(ctx)
		if err == nil {
			return out, attempt + 1, nil
		}
		lastErr = err

		if !IsRateLimitError(err) {
			return "", attempt + 1, err
		}
		if attempt == attempts-1 {
			break
		}

		wait := p.delay(attempt, err)
		logger.Warn("rate limit hit, waiting %s before attempt %d/%d", wait, attempt+2, attempts)
		if err := p.sleep(ctx, wait); err != nil {
			return "", attempt + 1, err
		}
	}
	return "", attempts, lastErr
}

// delay honours a "retry in Ns" hint plus one second, otherwise doubles Base.
func (p RetryPolicy) delay(attempt int, err error) time.Duration {
	var d time.Duration
	if m := retryHintPattern.FindStringSubmatch(err.Error()); m != nil {
		if secs, perr := strconv.ParseFloat(m[1], 64); perr == nil {
			d = time.Duration((secs + 1) * float64(time.Second))
		}
	}
	if d == 0 {
		d = p.Base << attempt
	}
	if p.MaxDelay > 0 && d > p.MaxDelay {
		d = p.MaxDelay
	}
	return d
}

func (p RetryPolicy) sleep(ctx context.Context, d time.Duration) error {
	if p.Sleep != nil {
		return p.Sleep(ctx, d)
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}

// IsRateLimitError reports whether err signals rate limiting or exhausted quota.
// Adapters should wrap domain.ErrRateLimited; the text checks catch providers
// that only report it in the message.
func IsRateLimitError(err error) bool {
	if err == nil {
		return false
	}
	if errors.Is(err, domain.ErrRateLimited) {
		return true
	}
	msg := strings.ToLower(err.Error())
	return strings.Contains(msg, "429") ||
		strings.Contains(msg, "quota") ||
		strings.Contains(msg, "rate limit")
}
