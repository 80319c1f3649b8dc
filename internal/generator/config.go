package generator

import (
	"fmt"
	"os"
	"strconv"
	"strings"
)

const defaultPrompt = `You are writing captions for a humor site. Study the image and write %d short, punchy captions for it. Respond with JSON only, in the shape {"captions": ["..."]}.`

// Config tunes caption generation.
type Config struct {
	CaptionCount int    `toml:"caption_count"`
	PerRequest   int    `toml:"per_request"`
	Concurrency  int    `toml:"concurrency"`
	Prompt       string `toml:"prompt"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	CaptionCount string
	PerRequest   string
	Concurrency  string
	Prompt       string
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
	if overlay.CaptionCount > 0 {
		c.CaptionCount = overlay.CaptionCount
	}
	if overlay.PerRequest > 0 {
		c.PerRequest = overlay.PerRequest
	}
	if overlay.Concurrency > 0 {
		c.Concurrency = overlay.Concurrency
	}
	if overlay.Prompt != "" {
		c.Prompt = overlay.Prompt
	}
}

func (c *Config) loadDefaults() {
	if c.CaptionCount <= 0 {
		c.CaptionCount = 5
	}
	if c.PerRequest <= 0 {
		c.PerRequest = 5
	}
	if c.Concurrency <= 0 {
		c.Concurrency = 2
	}
	if c.Prompt == "" {
		c.Prompt = defaultPrompt
	}
}

func (c *Config) loadEnv(env *Env) {
	setInt := func(envVar string, target *int) {
		if envVar == "" {
			return
		}
		if v := os.Getenv(envVar); v != "" {
			if n, err := strconv.Atoi(v); err == nil {
				*target = n
			}
		}
	}

	setInt(env.CaptionCount, &c.CaptionCount)
	setInt(env.PerRequest, &c.PerRequest)
	setInt(env.Concurrency, &c.Concurrency)

	if env.Prompt != "" {
		if v := os.Getenv(env.Prompt); v != "" {
			c.Prompt = v
		}
	}
}

func (c *Config) validate() error {
	if c.CaptionCount <= 0 {
		return fmt.Errorf("caption_count must be positive")
	}
	if !strings.Contains(c.Prompt, "%d") {
		return fmt.Errorf("prompt must contain a %%d caption count placeholder")
	}
	return nil
}
