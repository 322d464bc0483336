package google

import (
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"strings"
	"time"

	"google.golang.org/api/googleapi"

	"github.com/custodia-labs/reqsync/internal/core/domain"
)

// Sentinels for the Google API failures reqsync reacts to.
var (
	ErrUnauthorized = errors.New("google: credentials rejected")
	ErrForbidden    = errors.New("google: access denied (share the file with the credentials' account)")
	ErrNotFound     = fmt.Errorf("google: %w", domain.ErrNotFound)
	ErrRateLimited  = fmt.Errorf("google: %w", domain.ErrRateLimited)
)

var sentinels = map[int]error{
	http.StatusUnauthorized:    ErrUnauthorized,
	http.StatusForbidden:       ErrForbidden,
	http.StatusNotFound:        ErrNotFound,
	http.StatusTooManyRequests: ErrRateLimited,
}

// APIError is a classified googleapi.Error. It matches both its sentinel
// and the original error with errors.Is and errors.As.
type APIError struct {
	Kind       error
	Code       int
	RetryAfter time.Duration
	Err        *googleapi.Error
}

func (e *APIError) Error() string {
	if msg := strings.TrimSpace(e.Err.Message); msg != "" {
		return fmt.Sprintf("%v: %s", e.Kind, msg)
	}
	return e.Kind.Error()
}

func (e *APIError) Unwrap() []error { return []error{e.Kind, e.Err} }

// WrapError classifies err when it is a googleapi.Error with a status
// reqsync handles. Anything else is returned as is.
func WrapError(err error) error {
	var gerr *googleapi.Error
	if !errors.As(err, &gerr) {
		return err
	}
	kind, ok := sentinels[gerr.Code]
	if !ok {
		return err
	}
	return &APIError{Kind: kind, Code: gerr.Code, RetryAfter: retryAfter(gerr.Header), Err: gerr}
}

// IsRateLimited reports whether err is a 429 from Google.
func IsRateLimited(err error) bool {
	if errors.Is(err, ErrRateLimited) {
		return true
	}
	var gerr *googleapi.Error
	return errors.As(err, &gerr) && gerr.Code == http.StatusTooManyRequests
}

// RetryAfter returns the delay Google asked for, or zero.
func RetryAfter(err error) time.Duration {
	var apiErr *APIError
	if errors.As(err, &apiErr) {
		return apiErr.RetryAfter
	}
	var gerr *googleapi.Error
	if errors.As(err, &gerr) {
		return retryAfter(gerr.Header)
	}
	return 0
}

// retryAfter reads a Retry-After header given in seconds.
func retryAfter(h http.Header) time.Duration {
	secs, err := strconv.Atoi(strings.TrimSpace(h.Get("Retry-After")))
	if err != nil || secs <= 0 {
		return 0
	}
	return time.Duration(secs) * time.Second
}
