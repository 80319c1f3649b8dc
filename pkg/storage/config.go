package storage

import (
	"fmt"
	"os"
	"time"
)

// Config holds Azure Blob Storage connection parameters and presign settings.
type Config struct {
	ContainerName    string `toml:"container_name"`
	ConnectionString string `toml:"connection_string"`
	PublicBaseURL    string `toml:"public_base_url"`
	KeyPrefix        string `toml:"key_prefix"`
	UploadTTL        string `toml:"upload_ttl"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	ContainerName    string
	ConnectionString string
	PublicBaseURL    string
	KeyPrefix        string
	UploadTTL        string
}

// UploadTTLDuration returns UploadTTL as a time.Duration.
func (c *Config) UploadTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.UploadTTL)
	return d
}

// Finalize applies defaults, environment variable overrides, and validation.
func (c *Config) Finalize(env *Env) error {
	c.loadDefaults()
	if env != nil {
		c.loadEnv(env)
	}
	return c.validate()
}

// Merge overwrites non-zero fields from overlay.
func (c *Config) Merge(overlay *Config) {
	if overlay.ContainerName != "" {
		c.ContainerName = overlay.ContainerName
	}
	if overlay.ConnectionString != "" {
		c.ConnectionString = overlay.ConnectionString
	}
	if overlay.PublicBaseURL != "" {
		c.PublicBaseURL = overlay.PublicBaseURL
	}
	if overlay.KeyPrefix != "" {
		c.KeyPrefix = overlay.KeyPrefix
	}
	if overlay.UploadTTL != "" {
		c.UploadTTL = overlay.UploadTTL
	}
}

func (c *Config) loadDefaults() {
	if c.ContainerName == "" {
		c.ContainerName = "images"
	}
	if c.KeyPrefix == "" {
		c.KeyPrefix = "images"
	}
	if c.UploadTTL == "" {
		c.UploadTTL = "15m"
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.ContainerName != "" {
		if v := os.Getenv(env.ContainerName); v != "" {
			c.ContainerName = v
		}
	}
	if env.ConnectionString != "" {
		if v := os.Getenv(env.ConnectionString); v != "" {
			c.ConnectionString = v
		}
	}
	if env.PublicBaseURL != "" {
		if v := os.Getenv(env.PublicBaseURL); v != "" {
			c.PublicBaseURL = v
		}
	}
	if env.KeyPrefix != "" {
		if v := os.Getenv(env.KeyPrefix); v != "" {
			c.KeyPrefix = v
		}
	}
	if env.UploadTTL != "" {
		if v := os.Getenv(env.UploadTTL); v != "" {
			c.UploadTTL = v
		}
	}
}

func (c *Config) validate() error {
	if c.ContainerName == "" {
		return fmt.Errorf("container_name required")
	}
	if c.ConnectionString == "" {
		return fmt.Errorf("connection_string required")
	}
	if _, err := time.ParseDuration(c.UploadTTL); err != nil {
		return fmt.Errorf("invalid upload_ttl: %w", err)
	}
	return nil
}
