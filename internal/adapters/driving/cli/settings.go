package cli

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/reqsync/internal/core/domain"
	"github.com/custodia-labs/reqsync/internal/core/services"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and change settings. Values are stored in config.toml in the
configuration directory. Environment variables named REQSYNC_<KEY>, with
dots replaced by underscores, override the file.`,
	RunE: runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set one setting",
	Long: `Set one setting by key. Run 'reqsync settings keys' for the list.
Leave out the value of oracle.api_key to be prompted without echo.`,
	Args: cobra.RangeArgs(1, 2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:         "keys",
	Short:       "List setting keys",
	Annotations: map[string]string{annotationStandalone: "true"},
	Run: func(cmd *cobra.Command, _ []string) {
		for _, k := range services.SettingKeys() {
			cmd.Println(k)
		}
	},
}

var settingsOracleCmd = &cobra.Command{
	Use:   "oracle",
	Short: "Configure the generation oracle interactively",
	RunE:  runSettingsOracle,
}

var settingsTestCmd = &cobra.Command{
	Use:   "test",
	Short: "Check that the oracle is reachable",
	RunE:  runSettingsTest,
}

// settingsInput is where interactive commands read from.
var settingsInput io.Reader = os.Stdin

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsOracleCmd)
	settingsCmd.AddCommand(settingsTestCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errSettingsUnavailable
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Run]")
	cmd.Printf("  Mode: %s\n", settings.Run.Mode.Description())
	cmd.Printf("  Batch size: %d\n", settings.Run.BatchSize)
	cmd.Printf("  Concurrency: %d\n", settings.Run.Concurrency)
	cmd.Printf("  Retries: %d (base delay %s)\n", settings.Run.MaxRetries, settings.Run.RetryBase)
	cmd.Println()

	cmd.Println("[Source]")
	switch {
	case settings.Source.DriveFileID != "":
		cmd.Printf("  Google Drive file: %s\n", settings.Source.DriveFileID)
	case settings.Source.Path != "":
		cmd.Printf("  Path: %s\n", settings.Source.Path)
	default:
		cmd.Println("  (not set)")
	}
	cmd.Println()

	cmd.Println("[Records]")
	cmd.Printf("  Template: %s\n", orDefault(settings.Records.TemplatePath, "built-in"))
	cmd.Printf("  CSV export: %s\n", orDefault(settings.Records.ExportCSV, "(disabled)"))
	cmd.Println()

	cmd.Println("[Cache]")
	cmd.Printf("  Backend: %s\n", settings.Cache.Backend)
	if settings.Cache.Backend == domain.CacheBackendGCS {
		cmd.Printf("  Object: gs://%s/%s\n", settings.Cache.GCSBucket, settings.Cache.GCSObject)
	}
	cmd.Println()

	o := settings.Oracle
	cmd.Println("[Oracle]")
	cmd.Printf("  Provider: %s\n", o.Provider.Description())
	if o.Provider == domain.AIProviderCommand {
		cmd.Printf("  Command: %s\n", o.Command)
	} else {
		cmd.Printf("  Model: %s\n", o.Model)
	}
	if o.BaseURL != "" {
		cmd.Printf("  Base URL: %s\n", o.BaseURL)
	}
	if o.Provider.RequiresAPIKey() {
		if o.APIKey != "" {
			cmd.Printf("  API Key: %s\n", maskAPIKey(o.APIKey))
		} else {
			cmd.Printf("  API Key: (not set)\n")
		}
	}
	status := "configured"
	if !o.IsConfigured() {
		status = "not configured"
	}
	cmd.Printf("  Status: %s\n", status)
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
		cmd.Println("Run 'reqsync settings set <key> <value>' to fix configuration issues.")
	} else {
		cmd.Println("Configuration is valid.")
	}

	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errSettingsUnavailable
	}

	key := args[0]
	var value string
	switch {
	case len(args) == 2:
		value = args[1]
	case key == "oracle.api_key":
		cmd.Print("Enter API key: ")
		value = readPassword()
		cmd.Println()
	default:
		return fmt.Errorf("missing value for %s", key)
	}

	if err := settingsService.Set(key, value); err != nil {
		return fmt.Errorf("failed to set %s: %w", key, err)
	}

	if key == "oracle.api_key" {
		value = maskAPIKey(value)
	}
	cmd.Printf("%s = %s\n", key, value)
	return nil
}

func runSettingsOracle(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errSettingsUnavailable
	}

	reader := bufio.NewReader(settingsInput)

	cmd.Println("Select Oracle Provider")
	providers := domain.AllAIProviders()
	for i, p := range providers {
		cmd.Printf("  %d. %s\n", i+1, p.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	idx := parseChoice(readLine(reader), len(providers), 1)
	selected := providers[idx-1]

	if err := settingsService.Set("oracle.provider", string(selected)); err != nil {
		return fmt.Errorf("failed to set provider: %w", err)
	}

	if selected == domain.AIProviderCommand {
		cmd.Print("Enter command (reads the prompt on stdin): ")
		command := readLine(reader)
		if command == "" {
			return errors.New("a command is required for this provider")
		}
		if err := settingsService.Set("oracle.command", command); err != nil {
			return fmt.Errorf("failed to set command: %w", err)
		}
	} else {
		defaultModel := domain.DefaultOracleModels()[selected]
		cmd.Printf("Enter model name [%s]: ", defaultModel)
		model := readLine(reader)
		if model == "" {
			model = defaultModel
		}
		if err := settingsService.Set("oracle.model", model); err != nil {
			return fmt.Errorf("failed to set model: %w", err)
		}
	}

	if selected.RequiresAPIKey() {
		cmd.Print("Enter API key: ")
		apiKey := readSecret(reader)
		cmd.Println()
		if apiKey == "" {
			return errors.New("API key is required for this provider")
		}
		if err := settingsService.Set("oracle.api_key", apiKey); err != nil {
			return fmt.Errorf("failed to set API key: %w", err)
		}
	}

	cmd.Printf("Oracle provider configured: %s\n", selected.Description())
	if oracleValidator == nil {
		return nil
	}
	return validateOracle(cmd)
}

func runSettingsTest(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errSettingsUnavailable
	}
	if oracleValidator == nil {
		return errors.New("oracle validator not configured")
	}
	return validateOracle(cmd)
}

func validateOracle(cmd *cobra.Command) error {
	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	ctx, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()

	cmd.Print("Validating configuration... ")
	if err := oracleValidator.ValidateOracle(ctx, &settings.Oracle); err != nil {
		cmd.Printf("FAILED: %v\n", err)
		return fmt.Errorf("oracle configuration validation failed: %w", err)
	}
	cmd.Println("OK")
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readSecret reads without echo from a terminal, and a plain line otherwise.
func readSecret(reader *bufio.Reader) string {
	if f, ok := settingsInput.(*os.File); ok && term.IsTerminal(int(f.Fd())) {
		if secret, err := term.ReadPassword(int(f.Fd())); err == nil {
			return string(secret)
		}
	}
	return readLine(reader)
}

func readPassword() string {
	return readSecret(bufio.NewReader(settingsInput))
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func orDefault(s, def string) string {
	if s == "" {
		return def
	}
	return s
}
