package review

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

// Config tunes review session behavior.
type Config struct {
	AutoAdvanceDelay string `toml:"auto_advance_delay"`
	QueueLimit       int    `toml:"queue_limit"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	AutoAdvanceDelay string
	QueueLimit       string
}

// AutoAdvanceDuration returns AutoAdvanceDelay as a time.Duration.
func (c *Config) AutoAdvanceDuration() time.Duration {
	d, _ := time.ParseDuration(c.AutoAdvanceDelay)
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
	if overlay.AutoAdvanceDelay != "" {
		c.AutoAdvanceDelay = overlay.AutoAdvanceDelay
	}
	if overlay.QueueLimit > 0 {
		c.QueueLimit = overlay.QueueLimit
	}
}

func (c *Config) loadDefaults() {
	if c.AutoAdvanceDelay == "" {
		c.AutoAdvanceDelay = "800ms"
	}
	if c.QueueLimit <= 0 {
		c.QueueLimit = 50
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.AutoAdvanceDelay != "" {
		if v := os.Getenv(env.AutoAdvanceDelay); v != "" {
			c.AutoAdvanceDelay = v
		}
	}
	if env.QueueLimit != "" {
		if v := os.Getenv(env.QueueLimit); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				c.QueueLimit = n
			}
		}
	}
}

func (c *Config) validate() error {
	if _, err := time.ParseDuration(c.AutoAdvanceDelay); err != nil {
		return fmt.Errorf("invalid auto_advance_delay: %w", err)
	}
	if c.QueueLimit <= 0 {
		return fmt.Errorf("queue_limit must be positive")
	}
	return nil
}
