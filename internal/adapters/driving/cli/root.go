// Package cli implements the reqsync command line.
package cli

import (
	"context"
	"errors"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/reqsync/internal/core/domain"
	"github.com/custodia-labs/reqsync/internal/core/ports/driven"
	"github.com/custodia-labs/reqsync/internal/core/ports/driving"
	"github.com/custodia-labs/reqsync/internal/logger"
)

// version is set at build time with -ldflags "-X ...cli.version=...".
var version = "dev"

// annotationStandalone marks commands that run without services.
const annotationStandalone = "reqsync/standalone"

// Watcher reports changes to the requirements document.
type Watcher interface {
	Watch(ctx context.Context, debounce time.Duration) (<-chan struct{}, error)
}

// Services holds the ports the commands drive.
// Reconciler, Watcher and Validator may be nil when not configured.
type Services struct {
	Settings   driving.SettingsService
	Reconciler driving.Reconciler
	Records    driving.RecordService
	Cache      driving.CacheService
	Validator  driven.OracleValidator
	Watcher    Watcher

	// Close releases stores opened by the bootstrap.
	Close func() error
}

// Bootstrap builds services once flags are parsed.
type Bootstrap func(ctx context.Context, configDir string) (*Services, error)

var (
	settingsService driving.SettingsService
	reconciler      driving.Reconciler
	recordService   driving.RecordService
	cacheService    driving.CacheService
	oracleValidator driven.OracleValidator
	sourceWatcher   Watcher

	bootstrap    Bootstrap
	closeHandler func() error
)

// Persistent flags.
var (
	verbose   bool
	configDir string
)

var rootCmd = &cobra.Command{
	Use:   "reqsync",
	Short: "Keep test records in step with a requirements document",
	Long: `reqsync reads a requirements document, detects what changed since the
last run and generates or refreshes structured test records for it.

Records are kept in a local store and can be exported to CSV.`,
	SilenceUsage:      true,
	PersistentPreRunE: prepare,
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "Print progress to stderr")
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "", "Configuration directory (default ~/.reqsync)")
}

// SetServices injects the services used by the commands.
func SetServices(s *Services) {
	settingsService = s.Settings
	reconciler = s.Reconciler
	recordService = s.Records
	cacheService = s.Cache
	oracleValidator = s.Validator
	sourceWatcher = s.Watcher
	closeHandler = s.Close
}

// SetBootstrap registers the function that builds services before a command runs.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetVersion sets the version printed by the version command.
func SetVersion(v string) {
	if v != "" {
		version = v
	}
}

// Execute runs the root command.
func Execute(ctx context.Context) error {
	defer func() {
		if closeHandler != nil {
			if err := closeHandler(); err != nil {
				logger.Warn("close: %v", err)
			}
		}
	}()
	return rootCmd.ExecuteContext(ctx)
}

func prepare(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if cmd.Annotations[annotationStandalone] != "" || bootstrap == nil {
		return nil
	}
	s, err := bootstrap(cmd.Context(), configDir)
	if err != nil {
		return err
	}
	SetServices(s)
	return nil
}

// errNotConfigured explains how to configure a missing service.
func errNotConfigured(what, hint string) error {
	return &domain.ConfigurationError{Reason: what + " not configured; run '" + hint + "'"}
}

var errSettingsUnavailable = errors.New("settings service not configured")
