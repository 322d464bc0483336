package file

import (
	"fmt"
	"os"
	"path/filepath"
)

// HomeEnv overrides the reqsync home directory.
const HomeEnv = "REQSYNC_HOME"

// HomeDir returns the directory holding config, prompts and local data.
// Defaults to ~/.reqsync.
func HomeDir() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("get home directory: %w", err)
	}
	return filepath.Join(home, ".reqsync"), nil
}
