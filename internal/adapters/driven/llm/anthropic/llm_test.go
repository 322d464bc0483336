package anthropic

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reqsync/internal/core/domain"
	"github.com/custodia-labs/reqsync/internal/core/ports/driven"
)

func TestNew_RequiresAPIKey(t *testing.T) {
	_, err := New(Config{})
	assert.Error(t, err)
}

func TestOracle_Generate(t *testing.T) {
	var got messagesRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/messages", r.URL.Path)
		assert.Equal(t, "sk-test", r.Header.Get("x-api-key"))
		assert.Equal(t, anthropicVersion, r.Header.Get("anthropic-version"))
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"Test Case ID: TC-001"},{"type":"text","text":"\nTitle: x"}]}`))
	}))
	defer srv.Close()

	o, err := New(Config{APIKey: "sk-test", BaseURL: srv.URL + "/"})
	require.NoError(t, err)

	out, err := o.Generate(context.Background(), "prompt", driven.GenerateParams{MaxTokens: 500, Temperature: 0.3})

	require.NoError(t, err)
	assert.Equal(t, "Test Case ID: TC-001\nTitle: x", out)
	assert.Equal(t, 500, got.MaxTokens)
	require.NotNil(t, got.Temperature)
	assert.InDelta(t, 0.3, *got.Temperature, 1e-9)
	assert.Equal(t, DefaultModel, got.Model)
	assert.Equal(t, "anthropic/"+DefaultModel, o.Name())
}

func TestOracle_Generate_DefaultMaxTokens(t *testing.T) {
	var got messagesRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		_, _ = w.Write([]byte(`{"content":[{"type":"text","text":"ok"}]}`))
	}))
	defer srv.Close()

	o, err := New(Config{APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = o.Generate(context.Background(), "p", driven.GenerateParams{})
	require.NoError(t, err)
	assert.Equal(t, defaultMaxTokens, got.MaxTokens)
	assert.Nil(t, got.Temperature)
}

func TestOracle_Generate_RateLimited(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.Header().Set("retry-after", "7")
		w.WriteHeader(http.StatusTooManyRequests)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"rate_limit_error","message":"slow down"}}`))
	}))
	defer srv.Close()

	o, err := New(Config{APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = o.Generate(context.Background(), "p", driven.GenerateParams{})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrRateLimited))
	assert.Contains(t, err.Error(), "retry in 7s")
}

func TestOracle_Generate_APIError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusBadRequest)
		_, _ = w.Write([]byte(`{"type":"error","error":{"type":"invalid_request_error","message":"bad model"}}`))
	}))
	defer srv.Close()

	o, err := New(Config{APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)

	_, err = o.Generate(context.Background(), "p", driven.GenerateParams{})

	require.Error(t, err)
	assert.False(t, errors.Is(err, domain.ErrRateLimited))
	assert.Contains(t, err.Error(), "bad model")
}

func TestOracle_Ping(t *testing.T) {
	var status atomic.Int32
	status.Store(http.StatusOK)
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/v1/models", r.URL.Path)
		w.WriteHeader(int(status.Load()))
	}))
	defer srv.Close()

	o, err := New(Config{APIKey: "k", BaseURL: srv.URL})
	require.NoError(t, err)

	assert.NoError(t, o.Ping(context.Background()))
	status.Store(http.StatusUnauthorized)
	assert.Error(t, o.Ping(context.Background()))
	assert.NoError(t, o.Close())
}
