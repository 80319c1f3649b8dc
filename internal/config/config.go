// Package config loads service configuration from TOML files with
// environment overlays and variable overrides.
package config

import (
	"fmt"
	"os"
	"time"

	gaconfig "github.com/JaimeStill/go-agents/pkg/config"
	"github.com/pelletier/go-toml/v2"

	"github.com/mwhitson/banter/internal/generator"
	"github.com/mwhitson/banter/internal/identity"
	"github.com/mwhitson/banter/internal/review"
	"github.com/mwhitson/banter/pkg/database"
	"github.com/mwhitson/banter/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvBanterEnv             = "BANTER_ENV"
	EnvBanterShutdownTimeout = "BANTER_SHUTDOWN_TIMEOUT"
	EnvBanterVersion         = "BANTER_VERSION"
)

var databaseEnv = &database.Env{
	Host:            "BANTER_DB_HOST",
	Port:            "BANTER_DB_PORT",
	Name:            "BANTER_DB_NAME",
	User:            "BANTER_DB_USER",
	Password:        "BANTER_DB_PASSWORD",
	SSLMode:         "BANTER_DB_SSL_MODE",
	MaxOpenConns:    "BANTER_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "BANTER_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "BANTER_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "BANTER_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	ContainerName:    "BANTER_STORAGE_CONTAINER_NAME",
	ConnectionString: "BANTER_STORAGE_CONNECTION_STRING",
	PublicBaseURL:    "BANTER_STORAGE_PUBLIC_BASE_URL",
	KeyPrefix:        "BANTER_STORAGE_KEY_PREFIX",
	UploadTTL:        "BANTER_STORAGE_UPLOAD_TTL",
}

var identityEnv = &identity.Env{
	Issuer:   "BANTER_IDENTITY_ISSUER",
	Audience: "BANTER_IDENTITY_AUDIENCE",
}

var reviewEnv = &review.Env{
	AutoAdvanceDelay: "BANTER_REVIEW_AUTO_ADVANCE_DELAY",
	QueueLimit:       "BANTER_REVIEW_QUEUE_LIMIT",
}

var generatorEnv = &generator.Env{
	CaptionCount: "BANTER_GENERATOR_CAPTION_COUNT",
	PerRequest:   "BANTER_GENERATOR_PER_REQUEST",
	Concurrency:  "BANTER_GENERATOR_CONCURRENCY",
	Prompt:       "BANTER_GENERATOR_PROMPT",
}

// Config is the root configuration for the banter service.
type Config struct {
	Server          ServerConfig          `toml:"server"`
	Database        database.Config       `toml:"database"`
	Storage         storage.Config        `toml:"storage"`
	Identity        identity.Config       `toml:"identity"`
	Review          review.Config         `toml:"review"`
	Generator       generator.Config      `toml:"generator"`
	Agent           gaconfig.AgentConfig  `toml:"agent"`
	API             APIConfig             `toml:"api"`
	ShutdownTimeout string                `toml:"shutdown_timeout"`
	Version         string                `toml:"version"`
}

// Env returns the BANTER_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvBanterEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ShutdownTimeout)
	return d
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	cfg := &Config{}

	if _, err := os.Stat(BaseConfigFile); err == nil {
		loaded, err := load(BaseConfigFile)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(); path != "" {
		overlay, err := load(path)
		if err != nil {
			return nil, fmt.Errorf("load overlay %s: %w", path, err)
		}
		cfg.Merge(overlay)
	}

	if err := cfg.finalize(); err != nil {
		return nil, fmt.Errorf("finalize config: %w", err)
	}

	return cfg, nil
}

// Merge overwrites non-zero fields from overlay across all sub-configs.
func (c *Config) Merge(overlay *Config) {
	if overlay.ShutdownTimeout != "" {
		c.ShutdownTimeout = overlay.ShutdownTimeout
	}
	if overlay.Version != "" {
		c.Version = overlay.Version
	}
	c.Server.Merge(&overlay.Server)
	c.Database.Merge(&overlay.Database)
	c.Storage.Merge(&overlay.Storage)
	c.Identity.Merge(&overlay.Identity)
	c.Review.Merge(&overlay.Review)
	c.Generator.Merge(&overlay.Generator)
	c.Agent.Merge(&overlay.Agent)
	c.API.Merge(&overlay.API)
}

func (c *Config) finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.Server.Finalize(); err != nil {
		return fmt.Errorf("server: %w", err)
	}
	if err := c.Database.Finalize(databaseEnv); err != nil {
		return fmt.Errorf("database: %w", err)
	}
	if err := c.Storage.Finalize(storageEnv); err != nil {
		return fmt.Errorf("storage: %w", err)
	}
	if err := c.Identity.Finalize(identityEnv); err != nil {
		return fmt.Errorf("identity: %w", err)
	}
	if err := c.Review.Finalize(reviewEnv); err != nil {
		return fmt.Errorf("review: %w", err)
	}
	if err := c.Generator.Finalize(generatorEnv); err != nil {
		return fmt.Errorf("generator: %w", err)
	}
	if err := FinalizeAgent(&c.Agent); err != nil {
		return fmt.Errorf("agent: %w", err)
	}
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	return nil
}

func (c *Config) loadDefaults() {
	if c.ShutdownTimeout == "" {
		c.ShutdownTimeout = "30s"
	}
	if c.Version == "" {
		c.Version = "0.1.0"
	}
}

func (c *Config) loadEnv() {
	if v := os.Getenv(EnvBanterShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvBanterVersion); v != "" {
		c.Version = v
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.ShutdownTimeout); err != nil {
		return fmt.Errorf("invalid shutdown_timeout: %w", err)
	}
	return nil
}

func load(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var cfg Config
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	return &cfg, nil
}

func overlayPath() string {
	if env := os.Getenv(EnvBanterEnv); env != "" {
		path := fmt.Sprintf(OverlayConfigPattern, env)
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
