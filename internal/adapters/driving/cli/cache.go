package cli

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
)

var cacheCmd = &cobra.Command{
	Use:   "cache",
	Short: "Inspect or reset the change cache",
	Long: `The change cache holds the requirements document seen by the last
successful run. Clearing it makes the next run treat every requirement as new.`,
}

var cacheShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show the cached document state",
	RunE:  runCacheShow,
}

var cacheClearCmd = &cobra.Command{
	Use:   "clear",
	Short: "Forget the cached document",
	RunE:  runCacheClear,
}

func init() {
	cacheCmd.AddCommand(cacheShowCmd)
	cacheCmd.AddCommand(cacheClearCmd)
	rootCmd.AddCommand(cacheCmd)
}

func runCacheShow(cmd *cobra.Command, _ []string) error {
	if cacheService == nil {
		return errors.New("cache service not configured")
	}

	state, err := cacheService.Info(cmd.Context())
	if err != nil {
		return fmt.Errorf("failed to read cache: %w", err)
	}
	if state.IsEmpty() {
		cmd.Println("Cache is empty. The next run treats every requirement as new.")
		return nil
	}

	cmd.Printf("Hash: %s\n", *state.PreviousHash)
	cmd.Printf("Size: %d bytes\n", len(*state.PreviousContent))
	if !state.UpdatedAt.IsZero() {
		cmd.Printf("Updated: %s\n", state.UpdatedAt.Local().Format("2006-01-02 15:04:05"))
	}
	return nil
}

func runCacheClear(cmd *cobra.Command, _ []string) error {
	if cacheService == nil {
		return errors.New("cache service not configured")
	}
	if err := cacheService.Clear(cmd.Context()); err != nil {
		return fmt.Errorf("failed to clear cache: %w", err)
	}
	cmd.Println("Cache cleared.")
	return nil
}
