package auth

import (
	"fmt"
	"os"
)

// Verification modes.
const (
	ModeHMAC = "hmac"
	ModeJWKS = "jwks"
)

// Config holds bearer token verification settings.
// HMAC mode verifies HS256 tokens against Secret. JWKS mode verifies
// asymmetric tokens against the key set served at JWKSURL.
type Config struct {
	Mode     string `toml:"mode"`
	Secret   string `toml:"secret"`
	Issuer   string `toml:"issuer"`
	Audience string `toml:"audience"`
	JWKSURL  string `toml:"jwks_url"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Mode     string
	Secret   string
	Issuer   string
	Audience string
	JWKSURL  string
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
	if overlay.Mode != "" {
		c.Mode = overlay.Mode
	}
	if overlay.Secret != "" {
		c.Secret = overlay.Secret
	}
	if overlay.Issuer != "" {
		c.Issuer = overlay.Issuer
	}
	if overlay.Audience != "" {
		c.Audience = overlay.Audience
	}
	if overlay.JWKSURL != "" {
		c.JWKSURL = overlay.JWKSURL
	}
}

func (c *Config) loadDefaults() {
	if c.Mode == "" {
		c.Mode = ModeHMAC
	}
}

func (c *Config) loadEnv(env *Env) {
	if env.Mode != "" {
		if v := os.Getenv(env.Mode); v != "" {
			c.Mode = v
		}
	}
	if env.Secret != "" {
		if v := os.Getenv(env.Secret); v != "" {
			c.Secret = v
		}
	}
	if env.Issuer != "" {
		if v := os.Getenv(env.Issuer); v != "" {
			c.Issuer = v
		}
	}
	if env.Audience != "" {
		if v := os.Getenv(env.Audience); v != "" {
			c.Audience = v
		}
	}
	if env.JWKSURL != "" {
		if v := os.Getenv(env.JWKSURL); v != "" {
			c.JWKSURL = v
		}
	}
}

func (c *Config) validate() error {
	switch c.Mode {
	case ModeHMAC:
		if c.Secret == "" {
			return fmt.Errorf("secret required for hmac mode")
		}
	case ModeJWKS:
		if c.JWKSURL == "" {
			return fmt.Errorf("jwks_url required for jwks mode")
		}
		if c.Issuer == "" {
			return fmt.Errorf("issuer required for jwks mode")
		}
	default:
		return fmt.Errorf("unknown mode: %s", c.Mode)
	}
	return nil
}
