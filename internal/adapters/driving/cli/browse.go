package cli

import (
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/reqsync/internal/adapters/driving/tui"
)

var browseCmd = &cobra.Command{
	Use:   "browse",
	Short: "Browse records and runs interactively",
	Long: `Opens a terminal interface to browse test records, filter them by
requirement and start reconciliation runs.`,
	Args: cobra.NoArgs,
	RunE: runBrowse,
}

// runTUI starts the program. Tests replace it to avoid taking over the terminal.
var runTUI = func(app *tui.App) error {
	return app.Run()
}

func init() {
	rootCmd.AddCommand(browseCmd)
}

func runBrowse(cmd *cobra.Command, _ []string) error {
	if recordService == nil {
		return errors.New("record service not configured")
	}

	app, err := tui.NewApp(&tui.Ports{Records: recordService, Reconciler: reconciler})
	if err != nil {
		return err
	}
	return runTUI(app.WithContext(cmd.Context()))
}
