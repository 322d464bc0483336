package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/reqsync/internal/core/domain"
)

var statusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show the most recent run",
	RunE:  runStatus,
}

func init() {
	rootCmd.AddCommand(statusCmd)
}

func runStatus(cmd *cobra.Command, _ []string) error {
	if reconciler == nil {
		return errNotConfigured("requirements source", "reqsync settings set source.path <file>")
	}

	report, err := reconciler.LastRun(cmd.Context())
	if errors.Is(err, domain.ErrNotFound) {
		cmd.Println("No runs recorded yet. Use 'reqsync run' to start one.")
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to get last run: %w", err)
	}

	cmd.Printf("Last run started %s\n\n", report.StartedAt.Local().Format("2006-01-02 15:04:05"))
	renderReport(cmd.OutOrStdout(), report)
	return nil
}
