// internal/config/defaults.go
package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/joho/godotenv"
)

// Paths holds the default locations resolved from the environment.
type Paths struct {
	ConfigPath string
	BaseDir    string
}

// DefaultPaths checks environment variables first:
//   - FOOD_TRACKER_CONFIG_PATH: config file (default ~/.config/food-tracker.toml)
//   - FOOD_TRACKER_HOME: data directory (default ~/.local/share/food-tracker)
func DefaultPaths() (Paths, error) {
	configPath := os.Getenv("FOOD_TRACKER_CONFIG_PATH")
	baseDir := os.Getenv("FOOD_TRACKER_HOME")
	if configPath != "" && baseDir != "" {
		return Paths{ConfigPath: configPath, BaseDir: baseDir}, nil
	}

	homeDir, err := os.UserHomeDir()
	if err != nil {
		return Paths{}, fmt.Errorf("cannot determine home directory: %w", err)
	}
	if configPath == "" {
		configPath = filepath.Join(homeDir, ".config", "food-tracker.toml")
	}
	if baseDir == "" {
		baseDir = filepath.Join(homeDir, ".local", "share", "food-tracker")
	}
	return Paths{ConfigPath: configPath, BaseDir: baseDir}, nil
}

// LoadDotEnv loads variables from the given .env files (".env" when none are
// named). Missing files are not an error; existing variables win.
func LoadDotEnv(files ...string) error {
	if len(files) == 0 {
		files = []string{".env"}
	}
	for _, f := range files {
		if err := godotenv.Load(f); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return fmt.Errorf("loading %s: %w", f, err)
		}
	}
	return nil
}
