package cli

import (
	"context"
	"fmt"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/reqsync/internal/core/domain"
	"github.com/custodia-labs/reqsync/internal/core/ports/driving"
	"github.com/custodia-labs/reqsync/internal/logger"
)

var watchCmd = &cobra.Command{
	Use:   "watch",
	Short: "Run whenever the requirements document changes",
	Long: `Runs a reconciliation now and again every time the requirements
document changes. Local files are watched for writes; other sources are
polled every --interval.

Stop with Ctrl+C.`,
	RunE: runWatch,
}

var (
	watchMode     string
	watchInterval time.Duration
	watchDebounce time.Duration
)

func init() {
	watchCmd.Flags().StringVarP(&watchMode, "mode", "m", "", "Update mode (new_only, full_sync, intelligent)")
	watchCmd.Flags().DurationVar(&watchInterval, "interval", 5*time.Minute, "Poll interval for sources that cannot be watched")
	watchCmd.Flags().DurationVar(&watchDebounce, "debounce", 500*time.Millisecond, "Wait for writes to settle before running")
	rootCmd.AddCommand(watchCmd)
}

func runWatch(cmd *cobra.Command, _ []string) error {
	if reconciler == nil {
		return errNotConfigured("requirements source", "reqsync settings set source.path <file>")
	}

	mode := domain.UpdateMode(watchMode)
	if mode != "" && !mode.IsValid() {
		return fmt.Errorf("mode %q: %w", watchMode, domain.ErrInvalidMode)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}

	triggers, stop, err := watchTriggers(ctx)
	if err != nil {
		return err
	}
	defer stop()

	runOnce := func() {
		report, err := reconciler.Run(ctx, driving.RunOptions{Mode: mode})
		if report != nil {
			renderReport(cmd.OutOrStdout(), report)
		}
		if err != nil {
			// Keep watching; the next change may fix it.
			logger.Error("run failed: %v", err)
		}
	}

	cmd.Println("Watching for changes. Press Ctrl+C to stop.")
	runOnce()
	for {
		select {
		case <-ctx.Done():
			return nil
		case _, ok := <-triggers:
			if !ok {
				return nil
			}
			cmd.Println()
			runOnce()
		}
	}
}

// watchTriggers returns file change notifications when the source can be
// watched, and a ticker otherwise.
func watchTriggers(ctx context.Context) (<-chan struct{}, func(), error) {
	if sourceWatcher != nil {
		ch, err := sourceWatcher.Watch(ctx, watchDebounce)
		if err != nil {
			return nil, nil, fmt.Errorf("watch source: %w", err)
		}
		return ch, func() {}, nil
	}

	if watchInterval <= 0 {
		return nil, nil, fmt.Errorf("interval must be positive, got %s", watchInterval)
	}
	out := make(chan struct{})
	ticker := time.NewTicker(watchInterval)
	go func() {
		defer close(out)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				select {
				case out <- struct{}{}:
				case <-ctx.Done():
					return
				}
			}
		}
	}()
	return out, ticker.Stop, nil
}

