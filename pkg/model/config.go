package model

import (
	"fmt"
	"os"
	"strconv"
)

// ProviderGemini selects the Google Gemini API.
const ProviderGemini = "gemini"

// Config holds model provider settings.
type Config struct {
	Provider    string   `toml:"provider"`
	APIKey      string   `toml:"api_key"`
	Name        string   `toml:"name"`
	Temperature *float32 `toml:"temperature"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Provider    string
	APIKey      string
	Name        string
	Temperature string
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
	if overlay.Provider != "" {
		c.Provider = overlay.Provider
	}
	if overlay.APIKey != "" {
		c.APIKey = overlay.APIKey
	}
	if overlay.Name != "" {
		c.Name = overlay.Name
	}
	if overlay.Temperature != nil {
		c.Temperature = overlay.Temperature
	}
}

func (c *Config) loadDefaults() {
	if c.Provider == "" {
		c.Provider = ProviderGemini
	}
	if c.Name == "" {
		c.Name = "gemini-1.5-flash"
	}
	if c.Temperature == nil {
		t := float32(0)
		c.Temperature = &t
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Provider != "" {
		if v := os.Getenv(env.Provider); v != "" {
			c.Provider = v
		}
	}
	if env.APIKey != "" {
		if v := os.Getenv(env.APIKey); v != "" {
			c.APIKey = v
		}
	}
	if env.Name != "" {
		if v := os.Getenv(env.Name); v != "" {
			c.Name = v
		}
	}
	if env.Temperature != "" {
		if v := os.Getenv(env.Temperature); v != "" {
			if f, err := strconv.ParseFloat(v, 32); err == nil {
				t := float32(f)
				c.Temperature = &t
			}
		}
	}
}

func (c *Config) validate() error {
	if c.Provider != ProviderGemini {
		return fmt.Errorf("unknown provider: %s", c.Provider)
	}
	if c.APIKey == "" {
		return fmt.Errorf("api_key required")
	}
	if *c.Temperature < 0 || *c.Temperature > 2 {
		return fmt.Errorf("temperature must be within [0, 2]")
	}
	return nil
}
