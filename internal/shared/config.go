package shared

import (
	_ "embed"
	"fmt"
	"os"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	PlexAPI     PlexAPIConfig     `toml:"plex_api"`
	Directories DirectoriesConfig `toml:"directories"`
	Matching    MatchingConfig    `toml:"matching"`
	Database    DatabaseConfig    `toml:"database"`
}

// PlexAPIConfig contains the Plex server address and access token.
type PlexAPIConfig struct {
	BaseURL string `toml:"base_url"`
	Token   string `toml:"token"`
}

// DirectoriesConfig contains filesystem locations used by the sync engine.
//
// CSV holds one backlog file per playlist (filename stem = playlist name).
// Music optionally points at the local music library root; when set,
// unmatched tracks are probed against local filenames for reporting.
type DirectoriesConfig struct {
	CSV   string `toml:"csv"`
	Music string `toml:"music"`
}

// MatchingConfig contains tunables for the track matcher and confirmation gate.
type MatchingConfig struct {
	Threshold   float64 `toml:"threshold"`
	ConfirmMode string  `toml:"confirm_mode"`
}

// DatabaseConfig contains database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// Confirmation modes accepted by MatchingConfig.ConfirmMode.
const (
	ConfirmPerTrack = "track"
	ConfirmPerBatch = "batch"
)

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: failed to read config file: %v", ErrMissingConfig, err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("%w: failed to parse config: %v", ErrInvalidConfig, err)
	}

	if err := config.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
}

// Validate checks option values that have a constrained domain.
func (c *Config) Validate() error {
	if c.Matching.Threshold < 0 || c.Matching.Threshold > 1 {
		return fmt.Errorf("%w: matching.threshold must be within [0, 1], got %v", ErrInvalidConfig, c.Matching.Threshold)
	}
	switch c.Matching.ConfirmMode {
	case "", ConfirmPerTrack, ConfirmPerBatch:
	default:
		return fmt.Errorf("%w: matching.confirm_mode must be %q or %q, got %q", ErrInvalidConfig, ConfirmPerTrack, ConfirmPerBatch, c.Matching.ConfirmMode)
	}
	return nil
}

// DefaultConfig returns a Config with sensible defaults loaded from the embedded example config.
func DefaultConfig() *Config {
	var config Config
	if err := toml.Unmarshal(exampleConf, &config); err != nil {
		panic(fmt.Sprintf("failed to parse embedded default config: %v", err))
	}
	return &config
}

// CreateConfigFile creates a config.toml file at the specified path using the embedded example config.
func CreateConfigFile(path string) error {
	// Check if file already exists
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s", path)
	}

	// Write the embedded example config to the file
	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
