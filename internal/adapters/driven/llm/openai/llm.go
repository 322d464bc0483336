// Package openai provides an oracle adapter for OpenAI and OpenAI-compatible
// chat completion APIs such as DeepSeek.
package openai

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"

	"github.com/custodia-labs/reqsync/internal/core/domain"
	"github.com/custodia-labs/reqsync/internal/core/ports/driven"
)

// Ensure Oracle implements the interface.
var _ driven.Oracle = (*Oracle)(nil)

// Default configuration values.
const (
	DefaultModel   = "gpt-4o-mini"
	DefaultTimeout = 300 * time.Second

	DeepSeekBaseURL = "https://api.deepseek.com/v1"
	DeepSeekModel   = "deepseek-chat"

	systemPrompt = "You are a QA expert who writes precise, structured test cases."
)

// Config holds configuration for the OpenAI oracle.
type Config struct {
	// APIKey is the API key (required).
	APIKey string

	// BaseURL overrides the API base URL, e.g. for DeepSeek.
	BaseURL string

	// Model is the chat model to use (default: gpt-4o-mini).
	Model string

	// Provider labels the oracle in Name(). Defaults to "openai".
	Provider string

	// Timeout is the request timeout (default: 300s).
	Timeout time.Duration
}

// Oracle generates text with the chat completions API.
type Oracle struct {
	client   *openai.Client
	model    string
	provider string
}

// New creates an OpenAI-compatible oracle.
func New(cfg Config) (*Oracle, error) {
	if cfg.APIKey == "" {
		return nil, fmt.Errorf("openai: API key is required")
	}
	if cfg.Model == "" {
		cfg.Model = DefaultModel
	}
	if cfg.Provider == "" {
		cfg.Provider = "openai"
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}

	clientCfg := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientCfg.BaseURL = cfg.BaseURL
	}
	clientCfg.HTTPClient = &http.Client{Timeout: cfg.Timeout}

	return &Oracle{
		client:   openai.NewClientWithConfig(clientCfg),
		model:    cfg.Model,
		provider: cfg.Provider,
	}, nil
}

// NewDeepSeek creates an oracle for DeepSeek's OpenAI-compatible API.
func NewDeepSeek(cfg Config) (*Oracle, error) {
	if cfg.BaseURL == "" {
		cfg.BaseURL = DeepSeekBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = DeepSeekModel
	}
	cfg.Provider = "deepseek"
	return New(cfg)
}

// Generate sends the prompt as a user message after a fixed system message.
func (o *Oracle) Generate(ctx context.Context, prompt string, params driven.GenerateParams) (string, error) {
	req := openai.ChatCompletionRequest{
		Model: o.model,
		Messages: []openai.ChatCompletionMessage{
			{Role: openai.ChatMessageRoleSystem, Content: systemPrompt},
			{Role: openai.ChatMessageRoleUser, Content: prompt},
		},
		MaxTokens:   params.MaxTokens,
		Temperature: float32(params.Temperature),
	}

	resp, err := o.client.CreateChatCompletion(ctx, req)
	if err != nil {
		return "", o.wrapError(err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("%s: no choices returned", o.provider)
	}
	return resp.Choices[0].Message.Content, nil
}

// wrapError maps HTTP 429 responses to domain.ErrRateLimited.
func (o *Oracle) wrapError(err error) error {
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) && apiErr.HTTPStatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%s: %s: %w", o.provider, apiErr.Message, domain.ErrRateLimited)
	}
	var reqErr *openai.RequestError
	if errors.As(err, &reqErr) && reqErr.HTTPStatusCode == http.StatusTooManyRequests {
		return fmt.Errorf("%s: %w: %w", o.provider, reqErr, domain.ErrRateLimited)
	}
	return fmt.Errorf("%s: chat completion: %w", o.provider, err)
}

// Name returns the provider and model.
func (o *Oracle) Name() string {
	return o.provider + "/" + o.model
}

// Ping lists models, validating the API key without running inference.
func (o *Oracle) Ping(ctx context.Context) error {
	if _, err := o.client.ListModels(ctx); err != nil {
		return fmt.Errorf("%s: ping failed: %w", o.provider, err)
	}
	return nil
}

// Close releases resources.
func (o *Oracle) Close() error {
	return nil
}
