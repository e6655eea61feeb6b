package shared

import (
	_ "embed"
	"fmt"
	"os"
	"time"

	"github.com/BurntSushi/toml"
)

//go:embed config.example.toml
var exampleConf []byte

// Config represents the application configuration loaded from a TOML file.
type Config struct {
	Server   ServerConfig   `toml:"server"`
	Database DatabaseConfig `toml:"database"`
	Tracker  TrackerConfig  `toml:"tracker"`
}

// ServerConfig contains settings for the catalog backend API.
type ServerConfig struct {
	BaseURL string `toml:"base_url"`
	Token   string `toml:"token"`
}

// DatabaseConfig contains local database connection settings.
type DatabaseConfig struct {
	Path         string `toml:"path"`
	MaxOpenConns int    `toml:"max_open_conns"`
	MaxIdleConns int    `toml:"max_idle_conns"`
}

// TrackerConfig contains timing and sizing knobs for the import job tracker.
// All durations are in milliseconds.
type TrackerConfig struct {
	HeartbeatMS  int `toml:"heartbeat_ms"`
	StalenessMS  int `toml:"staleness_ms"`
	PollMS       int `toml:"poll_ms"`
	MinPollGapMS int `toml:"min_poll_gap_ms"`
	LedgerCap    int `toml:"ledger_cap"`
	PageSize     int `toml:"page_size"`
}

// Heartbeat returns the lease renewal interval.
func (t TrackerConfig) Heartbeat() time.Duration {
	return time.Duration(t.HeartbeatMS) * time.Millisecond
}

// Staleness returns the age after which a poll lease may be reclaimed.
func (t TrackerConfig) Staleness() time.Duration {
	return time.Duration(t.StalenessMS) * time.Millisecond
}

// Poll returns the interval between poll ticks.
func (t TrackerConfig) Poll() time.Duration {
	return time.Duration(t.PollMS) * time.Millisecond
}

// MinPollGap returns the minimum gap between fetches across all processes.
func (t TrackerConfig) MinPollGap() time.Duration {
	return time.Duration(t.MinPollGapMS) * time.Millisecond
}

// Validate checks tracker timing invariants. The staleness threshold must
// exceed the heartbeat interval by a 2x safety margin so that ordinary
// scheduling jitter never looks like a dead leader.
func (t TrackerConfig) Validate() error {
	if t.HeartbeatMS <= 0 || t.StalenessMS <= 0 || t.PollMS <= 0 {
		return fmt.Errorf("%w: tracker intervals must be positive", ErrInvalidConfig)
	}
	if t.StalenessMS < 2*t.HeartbeatMS {
		return fmt.Errorf("%w: staleness_ms must be at least twice heartbeat_ms", ErrInvalidConfig)
	}
	if t.LedgerCap <= 0 {
		return fmt.Errorf("%w: ledger_cap must be positive", ErrInvalidConfig)
	}
	return nil
}

// LoadConfig reads and parses a TOML configuration file from the specified path.
func LoadConfig(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	var config Config
	if err := toml.Unmarshal(data, &config); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}

	if err := config.Tracker.Validate(); err != nil {
		return nil, err
	}

	return &config, nil
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
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("config file already exists at %s: %w", path, err)
	}

	if err := os.WriteFile(path, exampleConf, 0644); err != nil {
		return fmt.Errorf("failed to write config file: %w", err)
	}

	return nil
}
