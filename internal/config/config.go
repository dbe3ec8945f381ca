// internal/config/config.go
package config

import (
	"errors"
	"fmt"
	"io"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"github.com/BurntSushi/toml"
)

// Config represents the main configuration for the tracker.
type Config struct {
	LogDir    string          `toml:"log_dir"`
	Server    ServerConfig    `toml:"server"`
	Database  DatabaseConfig  `toml:"database"`
	Nutrition NutritionConfig `toml:"nutrition"`
	Logging   LoggingConfig   `toml:"logging"`
}

type ServerConfig struct {
	Host string `toml:"host"`
	Port int    `toml:"port"`
}

// DatabaseConfig uses a tagged union pattern - the Type field determines
// which other fields are relevant.
type DatabaseConfig struct {
	Type    string `toml:"type"`               // "sqlite" or "memory"
	DataDir string `toml:"data_dir,omitempty"` // only used for type=sqlite
}

// NutritionConfig holds the lookup provider credential and limits.
type NutritionConfig struct {
	APIKey  string   `toml:"api_key"`
	BaseURL string   `toml:"base_url"`
	Timeout Duration `toml:"timeout"`
}

type LoggingConfig struct {
	Level string `toml:"level"` // debug, info, warn, error
}

// Duration decodes TOML strings such as "10s" into a time.Duration.
type Duration struct {
	time.Duration
}

func (d *Duration) UnmarshalText(text []byte) error {
	v, err := time.ParseDuration(string(text))
	if err != nil {
		return fmt.Errorf("invalid duration %q: %w", text, err)
	}
	d.Duration = v
	return nil
}

func (d Duration) MarshalText() ([]byte, error) {
	return []byte(d.Duration.String()), nil
}

const (
	DefaultHost           = "0.0.0.0"
	DefaultPort           = 8011
	DefaultNutritionURL   = "https://api.calorieninjas.com/v1/nutrition"
	DefaultLookupTimeout  = 10 * time.Second
	DefaultDatabaseType   = "sqlite"
	DefaultLoggingLevel   = "info"
	apiKeyEnv             = "CALORIENINJAS_API_KEY"
	defaultDataDirSubpath = "db"
)

// NewConfig creates a Config rooted at baseDir with default values.
func NewConfig(baseDir string) *Config {
	return &Config{
		LogDir: filepath.Join(baseDir, "log"),
		Server: ServerConfig{Host: DefaultHost, Port: DefaultPort},
		Database: DatabaseConfig{
			Type:    DefaultDatabaseType,
			DataDir: filepath.Join(baseDir, defaultDataDirSubpath),
		},
		Nutrition: NutritionConfig{
			BaseURL: DefaultNutritionURL,
			Timeout: Duration{DefaultLookupTimeout},
		},
		Logging: LoggingConfig{Level: DefaultLoggingLevel},
	}
}

// Manager handles reading and writing configuration.
type Manager struct{}

// Read decodes a Config from r, on top of the defaults for baseDir.
func (m *Manager) Read(r io.Reader, baseDir string) (*Config, error) {
	cfg := NewConfig(baseDir)
	if _, err := toml.NewDecoder(r).Decode(cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}
	return cfg, nil
}

// Write encodes a Config to w.
func (m *Manager) Write(w io.Writer, cfg *Config) error {
	if err := toml.NewEncoder(w).Encode(cfg); err != nil {
		return fmt.Errorf("failed to encode config: %w", err)
	}
	return nil
}

// ReadFromFile reads a Config from path.
func ReadFromFile(path, baseDir string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	cfg, err := m.Read(f, baseDir)
	if err != nil {
		return nil, fmt.Errorf("reading config from %s: %w", path, err)
	}
	return cfg, nil
}

// Load reads path if it exists and falls back to defaults otherwise. The
// environment is applied last.
func Load(path, baseDir string) (*Config, error) {
	cfg, err := ReadFromFile(path, baseDir)
	if errors.Is(err, fs.ErrNotExist) {
		cfg = NewConfig(baseDir)
	} else if err != nil {
		return nil, err
	}
	ApplyEnv(cfg)
	return cfg, nil
}

// ApplyEnv overrides credentials from the process environment.
func ApplyEnv(cfg *Config) {
	if key := os.Getenv(apiKeyEnv); key != "" {
		cfg.Nutrition.APIKey = key
	}
}

func writeToFile(path string, cfg *Config) error {
	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("failed to create config directory: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create config file: %w", err)
	}
	defer f.Close()

	m := &Manager{}
	if err := m.Write(f, cfg); err != nil {
		return fmt.Errorf("writing config to %s: %w", path, err)
	}
	return nil
}

// Init writes cfg to path, refusing to overwrite an existing file.
func Init(path string, cfg *Config) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	if err := writeToFile(path, cfg); err != nil {
		return fmt.Errorf("initializing config: %w", err)
	}
	return nil
}
