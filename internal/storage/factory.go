// internal/storage/factory.go
package storage

import (
	"fmt"
	"os"
	"path/filepath"

	"food-tracker/internal/config"
)

const databaseFile = "food-tracker.db"

// NewStoreFromConfig creates the storage backend named by cfg.Type.
func NewStoreFromConfig(cfg config.DatabaseConfig) (*SQLiteStorage, error) {
	switch cfg.Type {
	case "sqlite":
		if cfg.DataDir == "" {
			return nil, fmt.Errorf("data_dir required for sqlite database")
		}
		if err := os.MkdirAll(cfg.DataDir, 0755); err != nil {
			return nil, fmt.Errorf("failed to create data directory: %w", err)
		}
		return NewSQLiteStorage(filepath.Join(cfg.DataDir, databaseFile))
	case "memory":
		return NewSQLiteStorage(":memory:")
	default:
		return nil, fmt.Errorf("unknown database type: %s", cfg.Type)
	}
}
