// Package httpjson is the JSON-over-HTTP client shared by oracles that
// talk to their provider without an SDK.
package httpjson

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strings"
	"time"

	"github.com/custodia-labs/reqsync/internal/core/domain"
)

// maxBody caps how much of a response is read.
const maxBody = 16 << 20

// Client sends JSON requests to one provider.
type Client struct {
	// Provider prefixes every error, e.g. "ollama".
	Provider string
	BaseURL  string
	HTTP     *http.Client

	// Header is added to every request.
	Header http.Header

	// Throttled lists statuses besides 429 that mean "try again later".
	Throttled []int

	// ErrorMessage pulls a readable message out of an error body.
	// The raw body is used when it is nil or returns "".
	ErrorMessage func(body []byte) string
}

// New returns a Client with a timeout-bound http.Client.
func New(provider, baseURL string, timeout time.Duration) *Client {
	return &Client{
		Provider: provider,
		BaseURL:  strings.TrimRight(baseURL, "/"),
		HTTP:     &http.Client{Timeout: timeout},
		Header:   make(http.Header),
	}
}

// StatusError is a non-2xx reply. Throttling replies unwrap to
// domain.ErrRateLimited.
type StatusError struct {
	Provider   string
	Code       int
	Message    string
	RetryAfter string
	throttled  bool
}

func (e *StatusError) Error() string {
	msg := fmt.Sprintf("%s: status %d", e.Provider, e.Code)
	if e.Message != "" {
		msg += ": " + e.Message
	}
	if e.RetryAfter != "" {
		msg += " (retry in " + e.RetryAfter + "s)"
	}
	return msg
}

func (e *StatusError) Unwrap() error {
	if e.throttled {
		return domain.ErrRateLimited
	}
	return nil
}

// Post sends in as JSON to path and decodes the reply into out.
func (c *Client) Post(ctx context.Context, path string, in, out any) error {
	return c.do(ctx, http.MethodPost, path, in, out)
}

// Get fetches path, decoding the reply into out unless out is nil.
func (c *Client) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

func (c *Client) do(ctx context.Context, method, path string, in, out any) error {
	body := io.Reader(http.NoBody)
	if in != nil {
		data, err := json.Marshal(in)
		if err != nil {
			return fmt.Errorf("%s: encode request: %w", c.Provider, err)
		}
		body = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.BaseURL+path, body)
	if err != nil {
		return fmt.Errorf("%s: build request: %w", c.Provider, err)
	}
	for k, v := range c.Header {
		req.Header[k] = v
	}
	if in != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.HTTP.Do(req)
	if err != nil {
		return fmt.Errorf("%s: %s %s: %w", c.Provider, method, path, err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(io.LimitReader(resp.Body, maxBody))
	if err != nil {
		return fmt.Errorf("%s: read response: %w", c.Provider, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return c.statusError(resp, raw)
	}
	if out == nil {
		return nil
	}
	if err := json.Unmarshal(raw, out); err != nil {
		return fmt.Errorf("%s: decode response: %w", c.Provider, err)
	}
	return nil
}

func (c *Client) statusError(resp *http.Response, raw []byte) *StatusError {
	msg := ""
	if c.ErrorMessage != nil {
		msg = c.ErrorMessage(raw)
	}
	if msg == "" {
		msg = strings.TrimSpace(string(raw))
	}
	throttled := resp.StatusCode == http.StatusTooManyRequests || slices.Contains(c.Throttled, resp.StatusCode)

	e := &StatusError{Provider: c.Provider, Code: resp.StatusCode, Message: msg, throttled: throttled}
	if throttled {
		e.RetryAfter = strings.TrimSpace(resp.Header.Get("Retry-After"))
	}
	return e
}
