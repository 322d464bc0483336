package cli

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/reqsync/internal/adapters/driving/tui/components/summary"
	"github.com/custodia-labs/reqsync/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/reqsync/internal/core/domain"
	"github.com/custodia-labs/reqsync/internal/core/ports/driving"
)

var runCmd = &cobra.Command{
	Use:   "run",
	Short: "Reconcile test records with the requirements document",
	Long: `Reads the requirements document, detects changed requirements and
generates or refreshes test records according to the update mode.

Update modes:
  new_only    - Records for added requirements only
  full_sync   - Records for added and modified requirements
  intelligent - Classify coverage of every requirement and fill the gaps

The mode defaults to the run.mode setting.`,
	RunE: runRun,
}

var (
	runMode   string
	runForce  bool
	runDryRun bool
)

func init() {
	runCmd.Flags().StringVarP(&runMode, "mode", "m", "", "Update mode (new_only, full_sync, intelligent)")
	runCmd.Flags().BoolVarP(&runForce, "force", "f", false, "Process the document even if it is unchanged")
	runCmd.Flags().BoolVar(&runDryRun, "dry-run", false, "Plan and generate without writing records or cache")
	rootCmd.AddCommand(runCmd)
}

func runRun(cmd *cobra.Command, _ []string) error {
	if reconciler == nil {
		return errNotConfigured("requirements source", "reqsync settings set source.path <file>")
	}

	mode := domain.UpdateMode(runMode)
	if mode != "" && !mode.IsValid() {
		return fmt.Errorf("mode %q: %w", runMode, domain.ErrInvalidMode)
	}

	report, err := reconciler.Run(cmd.Context(), driving.RunOptions{Mode: mode, Force: runForce, DryRun: runDryRun})
	if report != nil {
		renderReport(cmd.OutOrStdout(), report)
	}
	if err != nil {
		return fmt.Errorf("run failed: %w", err)
	}
	return nil
}

func renderReport(w io.Writer, report *domain.RunReport) {
	fmt.Fprint(w, summary.Render(styles.NewStylesFor(w, nil), report))
}
