package config

import (
	"fmt"
	"os"
	"time"

	"github.com/kelseyhightower/envconfig"
	"github.com/pelletier/go-toml/v2"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig
	Manifests ManifestConfig
	Assets    AssetConfig
	Events    EventsConfig
	Logging   LogConfig
	RateLimit RateLimitConfig
}

// ServerConfig holds HTTP server configuration.
type ServerConfig struct {
	Port string `envconfig:"PORT" default:"8080" toml:"port"`
	Host string `envconfig:"HOST" default:"0.0.0.0" toml:"host"`
	// MountPath prefixes every route; "/" mounts at the root.
	MountPath string `envconfig:"MOUNT_PATH" default:"/" toml:"mount_path"`
}

// ManifestConfig holds manifest store configuration.
type ManifestConfig struct {
	// Dir is the directory seeded into the manifest store at startup.
	Dir string `envconfig:"MANIFEST_DIR" default:"./manifests" toml:"dir"`
	// Patterns are doublestar globs matched relative to Dir.
	Patterns []string `envconfig:"MANIFEST_PATTERNS" default:"**/*.json,**/*.yaml,**/*.yml" toml:"patterns"`
	// Default is the manifest id served at /manifest.json.
	Default string `envconfig:"MANIFEST_DEFAULT" default:"default" toml:"default"`
}

// AssetConfig holds static asset catalog configuration.
type AssetConfig struct {
	// Roots are scanned in order; the first root to provide a path wins.
	Roots []string `envconfig:"ASSET_ROOTS" default:"./dist" toml:"roots"`
}

// EventsConfig holds event hub configuration.
type EventsConfig struct {
	Enabled bool   `envconfig:"EVENTS_ENABLED" default:"true" toml:"enabled"`
	Route   string `envconfig:"EVENTS_ROUTE" default:"/events" toml:"route"`
	// Channels restricts which topics fan out to clients; empty means all.
	Channels   []string      `envconfig:"EVENTS_CHANNELS" toml:"channels"`
	ReplayLast bool          `envconfig:"EVENTS_REPLAY_LAST" default:"true" toml:"replay_last"`
	Heartbeat  time.Duration `envconfig:"EVENTS_HEARTBEAT" default:"25s" toml:"heartbeat"`
}

// LogConfig holds logging configuration.
type LogConfig struct {
	Level       string `envconfig:"LOG_LEVEL" default:"info" toml:"level"`
	Development bool   `envconfig:"LOG_DEV" default:"false" toml:"development"`
}

// RateLimitConfig holds rate limiting configuration.
type RateLimitConfig struct {
	RequestsPerSecond int  `envconfig:"RATE_LIMIT_RPS" default:"100" toml:"requests_per_second"`
	Burst             int  `envconfig:"RATE_LIMIT_BURST" default:"200" toml:"burst"`
	Enabled           bool `envconfig:"RATE_LIMIT_ENABLED" default:"true" toml:"enabled"`
}

// Load loads configuration from environment variables. When path is non-empty
// the TOML file at path is applied on top, so file settings win over env.
func Load(path string) (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}
	if path != "" {
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		if err := toml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to parse config file: %w", err)
		}
	}
	return &cfg, nil
}

// LoadOrDefault loads configuration from environment or returns default.
func LoadOrDefault() *Config {
	cfg, err := Load("")
	if err != nil {
		return Default()
	}
	return cfg
}

// Default returns default configuration.
func Default() *Config {
	return &Config{
		Server: ServerConfig{
			Port:      "8080",
			Host:      "0.0.0.0",
			MountPath: "/",
		},
		Manifests: ManifestConfig{
			Dir:      "./manifests",
			Patterns: []string{"**/*.json", "**/*.yaml", "**/*.yml"},
			Default:  "default",
		},
		Assets: AssetConfig{
			Roots: []string{"./dist"},
		},
		Events: EventsConfig{
			Enabled:    true,
			Route:      "/events",
			ReplayLast: true,
			Heartbeat:  25 * time.Second,
		},
		Logging: LogConfig{
			Level:       "info",
			Development: false,
		},
		RateLimit: RateLimitConfig{
			RequestsPerSecond: 100,
			Burst:             200,
			Enabled:           true,
		},
	}
}
