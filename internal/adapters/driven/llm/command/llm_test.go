package command

import (
	"context"
	"errors"
	"runtime"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/reqsync/internal/core/domain"
	"github.com/custodia-labs/reqsync/internal/core/ports/driven"
)

func skipOnWindows(t *testing.T) {
	t.Helper()
	if runtime.GOOS == "windows" {
		t.Skip("requires a POSIX shell")
	}
}

func TestNew(t *testing.T) {
	_, err := New(Config{Command: ""})
	assert.Error(t, err)

	_, err = New(Config{Command: `llm "unterminated`})
	assert.Error(t, err)

	o, err := New(Config{Command: `llm -m "local model"`})
	require.NoError(t, err)
	assert.Equal(t, []string{"llm", "-m", "local model"}, o.argv)
	assert.Equal(t, "command/llm", o.Name())
	assert.Equal(t, DefaultTimeout, o.timeout)
}

func TestOracle_Generate_EchoesStdin(t *testing.T) {
	skipOnWindows(t)
	o, err := New(Config{Command: "cat"})
	require.NoError(t, err)

	out, err := o.Generate(context.Background(), "hello oracle", driven.GenerateParams{})

	require.NoError(t, err)
	assert.Equal(t, "hello oracle", out)
}

func TestOracle_Generate_PassesParams(t *testing.T) {
	skipOnWindows(t)
	o, err := New(Config{Command: `sh -c 'echo "$REQSYNC_MAX_TOKENS $REQSYNC_TEMPERATURE"'`})
	require.NoError(t, err)

	out, err := o.Generate(context.Background(), "", driven.GenerateParams{MaxTokens: 128, Temperature: 0.5})

	require.NoError(t, err)
	assert.Equal(t, "128 0.5\n", out)
}

func TestOracle_Generate_Failure(t *testing.T) {
	skipOnWindows(t)
	o, err := New(Config{Command: `sh -c 'echo boom >&2; exit 2'`})
	require.NoError(t, err)

	_, err = o.Generate(context.Background(), "x", driven.GenerateParams{})

	require.Error(t, err)
	assert.Contains(t, err.Error(), "boom")
	assert.False(t, errors.Is(err, domain.ErrRateLimited))
}

func TestOracle_Generate_RateLimitExitCode(t *testing.T) {
	skipOnWindows(t)
	o, err := New(Config{Command: `sh -c 'echo "quota, retry in 3s" >&2; exit 75'`})
	require.NoError(t, err)

	_, err = o.Generate(context.Background(), "x", driven.GenerateParams{})

	require.Error(t, err)
	assert.True(t, errors.Is(err, domain.ErrRateLimited))
	assert.Contains(t, err.Error(), "retry in 3s")
}

func TestOracle_Generate_EmptyOutput(t *testing.T) {
	skipOnWindows(t)
	o, err := New(Config{Command: "true"})
	require.NoError(t, err)

	_, err = o.Generate(context.Background(), "x", driven.GenerateParams{})
	assert.Error(t, err)
}

func TestOracle_Ping(t *testing.T) {
	skipOnWindows(t)
	o, err := New(Config{Command: "sh"})
	require.NoError(t, err)
	assert.NoError(t, o.Ping(context.Background()))

	missing, err := New(Config{Command: "reqsync-no-such-binary"})
	require.NoError(t, err)
	assert.Error(t, missing.Ping(context.Background()))
}
