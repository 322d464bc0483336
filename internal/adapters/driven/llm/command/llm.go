// Package command provides an oracle that runs a local program.
// The prompt is written to the program's stdin and its stdout is the reply.
package command

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os/exec"
	"strings"
	"time"

	"github.com/google/shlex"

	"github.com/custodia-labs/reqsync/internal/core/domain"
	"github.com/custodia-labs/reqsync/internal/core/ports/driven"
)

// Ensure Oracle implements the interface.
var _ driven.Oracle = (*Oracle)(nil)

// DefaultTimeout bounds a single invocation.
const DefaultTimeout = 300 * time.Second

// Exit code a wrapped program can use to signal a rate limit.
const exitRateLimited = 75 // EX_TEMPFAIL

// Config holds configuration for the command oracle.
type Config struct {
	// Command is the command line, split with POSIX shell rules. No shell is involved.
	Command string

	// Timeout bounds a single invocation (default: 300s).
	Timeout time.Duration
}

// Oracle runs a command per generation call.
type Oracle struct {
	argv    []string
	timeout time.Duration
}

// New creates a command oracle.
func New(cfg Config) (*Oracle, error) {
	argv, err := shlex.Split(cfg.Command)
	if err != nil {
		return nil, fmt.Errorf("command: split %q: %w", cfg.Command, err)
	}
	if len(argv) == 0 {
		return nil, fmt.Errorf("command: empty command line")
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	return &Oracle{argv: argv, timeout: cfg.Timeout}, nil
}

// Generate runs the command with the prompt on stdin.
// Generation parameters are exported as REQSYNC_MAX_TOKENS and REQSYNC_TEMPERATURE.
func (o *Oracle) Generate(ctx context.Context, prompt string, params driven.GenerateParams) (string, error) {
	ctx, cancel := context.WithTimeout(ctx, o.timeout)
	defer cancel()

	cmd := exec.CommandContext(ctx, o.argv[0], o.argv[1:]...) //nolint:gosec // G204: user-configured command
	cmd.Stdin = strings.NewReader(prompt)
	cmd.Env = append(cmd.Environ(),
		fmt.Sprintf("REQSYNC_MAX_TOKENS=%d", params.MaxTokens),
		fmt.Sprintf("REQSYNC_TEMPERATURE=%g", params.Temperature),
	)

	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		var exitErr *exec.ExitError
		if errors.As(err, &exitErr) && exitErr.ExitCode() == exitRateLimited {
			return "", fmt.Errorf("command: %s: %w", msg, domain.ErrRateLimited)
		}
		if msg != "" {
			return "", fmt.Errorf("command: %w: %s", err, msg)
		}
		return "", fmt.Errorf("command: %w", err)
	}

	out := stdout.String()
	if strings.TrimSpace(out) == "" {
		return "", fmt.Errorf("command: empty response")
	}
	return out, nil
}

// Name returns the program name.
func (o *Oracle) Name() string {
	return "command/" + o.argv[0]
}

// Ping checks that the program can be found.
func (o *Oracle) Ping(_ context.Context) error {
	if _, err := exec.LookPath(o.argv[0]); err != nil {
		return fmt.Errorf("command: %w", err)
	}
	return nil
}

// Close releases resources.
func (o *Oracle) Close() error {
	return nil
}
