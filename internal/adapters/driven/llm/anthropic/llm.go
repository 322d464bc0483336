// Package anthropic is the oracle adapter for the Anthropic Messages API.
package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"time"

	"github.com/custodia-labs/reqsync/internal/adapters/driven/llm/httpjson"
	"github.com/custodia-labs/reqsync/internal/core/ports/driven"
)

// Ensure Oracle implements the interface.
var _ driven.Oracle = (*Oracle)(nil)

const (
	DefaultBaseURL = "https://api.anthropic.com"
	DefaultModel   = "claude-3-5-sonnet-latest"
	DefaultTimeout = 300 * time.Second

	anthropicVersion = "2023-06-01"

	// The API rejects requests without max_tokens.
	defaultMaxTokens = 2000

	// statusOverloaded is returned when the API sheds load.
	statusOverloaded = 529
)

// Config holds configuration for the Anthropic oracle. Zero values fall
// back to the defaults above; APIKey is required.
type Config struct {
	APIKey  string
	BaseURL string
	Model   string
	Timeout time.Duration
}

// Oracle sends each prompt as a single user message.
type Oracle struct {
	api   *httpjson.Client
	model string
}

type messagesRequest struct {
	Model       string    `json:"model"`
	Messages    []message `json:"messages"`
	MaxTokens   int       `json:"max_tokens"`
	Temperature *float64  `json:"temperature,omitempty"`
}

type message struct {
	Role    string `json:"role"`
	Content string `json:"content"`
}

type contentBlock struct {
	Type string `json:"type"`
	Text string `json:"text"`
}

type messagesResponse struct {
	Content    []contentBlock `json:"content"`
	StopReason string         `json:"stop_reason"`
}

// New creates an Anthropic oracle.
func New(cfg Config) (*Oracle, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("anthropic: API key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	api := httpjson.New("anthropic", cfg.BaseURL, cfg.Timeout)
	api.Header.Set("x-api-key", cfg.APIKey)
	api.Header.Set("anthropic-version", anthropicVersion)
	api.Throttled = []int{statusOverloaded}
	api.ErrorMessage = errorMessage

	return &Oracle{api: api, model: cfg.Model}, nil
}

// Generate returns the concatenated text blocks of the reply.
func (o *Oracle) Generate(ctx context.Context, prompt string, params driven.GenerateParams) (string, error) {
	req := messagesRequest{
		Model:     o.model,
		Messages:  []message{{Role: "user", Content: prompt}},
		MaxTokens: params.MaxTokens,
	}
	if req.MaxTokens <= 0 {
		req.MaxTokens = defaultMaxTokens
	}
	if params.Temperature > 0 {
		req.Temperature = &params.Temperature
	}

	var resp messagesResponse
	if err := o.api.Post(ctx, "/v1/messages", req, &resp); err != nil {
		return "", err
	}

	var sb strings.Builder
	for _, b := range resp.Content {
		if b.Type == "text" {
			sb.WriteString(b.Text)
		}
	}
	if sb.Len() == 0 {
		return "", errors.New("anthropic: reply has no text")
	}
	return sb.String(), nil
}

// errorMessage reads {"error":{"message":...}} bodies.
func errorMessage(body []byte) string {
	var e struct {
		Error struct {
			Message string `json:"message"`
		} `json:"error"`
	}
	if json.Unmarshal(body, &e) != nil {
		return ""
	}
	return e.Error.Message
}

// Name returns the provider and model.
func (o *Oracle) Name() string {
	return "anthropic/" + o.model
}

// Ping lists models, which checks the key without spending tokens.
func (o *Oracle) Ping(ctx context.Context) error {
	return o.api.Get(ctx, "/v1/models", nil)
}

// Close is a no-op.
func (o *Oracle) Close() error {
	return nil
}
