package workflow

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/JaimeStill/agrocheck/pkg/formatting"
	"github.com/JaimeStill/agrocheck/pkg/storage"
)

// Config holds pipeline tuning settings.
type Config struct {
	Concurrency     int    `toml:"concurrency"`
	MaxFilesPerType int    `toml:"max_files_per_type"`
	MaxTextChars    int    `toml:"max_text_chars"`
	MaxFetchSize    string `toml:"max_fetch_size"`
	DocumentURLTTL  string `toml:"document_url_ttl"`
	PhotoURLTTL     string `toml:"photo_url_ttl"`
	ModelTimeout    string `toml:"model_timeout"`
}

// Env maps config fields to environment variable names for override injection.
type Env struct {
	Concurrency     string
	MaxFilesPerType string
	MaxTextChars    string
	MaxFetchSize    string
	DocumentURLTTL  string
	PhotoURLTTL     string
	ModelTimeout    string
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
	if overlay.Concurrency != 0 {
		c.Concurrency = overlay.Concurrency
	}
	if overlay.MaxFilesPerType != 0 {
		c.MaxFilesPerType = overlay.MaxFilesPerType
	}
	if overlay.MaxTextChars != 0 {
		c.MaxTextChars = overlay.MaxTextChars
	}
	if overlay.MaxFetchSize != "" {
		c.MaxFetchSize = overlay.MaxFetchSize
	}
	if overlay.DocumentURLTTL != "" {
		c.DocumentURLTTL = overlay.DocumentURLTTL
	}
	if overlay.PhotoURLTTL != "" {
		c.PhotoURLTTL = overlay.PhotoURLTTL
	}
	if overlay.ModelTimeout != "" {
		c.ModelTimeout = overlay.ModelTimeout
	}
}

// DocumentURLTTLDuration returns DocumentURLTTL as a time.Duration.
func (c *Config) DocumentURLTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.DocumentURLTTL)
	return d
}

// PhotoURLTTLDuration returns PhotoURLTTL as a time.Duration.
func (c *Config) PhotoURLTTLDuration() time.Duration {
	d, _ := time.ParseDuration(c.PhotoURLTTL)
	return d
}

// ModelTimeoutDuration returns ModelTimeout as a time.Duration.
func (c *Config) ModelTimeoutDuration() time.Duration {
	d, _ := time.ParseDuration(c.ModelTimeout)
	return d
}

// MaxFetchBytes returns MaxFetchSize in bytes.
func (c *Config) MaxFetchBytes() int64 {
	n, err := formatting.ParseBytes(c.MaxFetchSize)
	if err != nil {
		return 20 * 1024 * 1024
	}
	return n
}

func (c *Config) loadDefaults() {
	if c.Concurrency <= 0 {
		c.Concurrency = 4
	}
	if c.MaxFilesPerType <= 0 {
		c.MaxFilesPerType = 1
	}
	if c.MaxTextChars <= 0 {
		c.MaxTextChars = 6000
	}
	if c.MaxFetchSize == "" {
		c.MaxFetchSize = "20MB"
	}
	if c.DocumentURLTTL == "" {
		c.DocumentURLTTL = "300s"
	}
	if c.PhotoURLTTL == "" {
		c.PhotoURLTTL = "60s"
	}
	if c.ModelTimeout == "" {
		c.ModelTimeout = "22s"
	}
}

func (c *Config) loadEnv(env *Env) {
	intEnv(env.Concurrency, &c.Concurrency)
	intEnv(env.MaxFilesPerType, &c.MaxFilesPerType)
	intEnv(env.MaxTextChars, &c.MaxTextChars)
	stringEnv(env.MaxFetchSize, &c.MaxFetchSize)
	stringEnv(env.DocumentURLTTL, &c.DocumentURLTTL)
	stringEnv(env.PhotoURLTTL, &c.PhotoURLTTL)
	stringEnv(env.ModelTimeout, &c.ModelTimeout)
}

func (c *Config) validate() error {
	if c.Concurrency < 1 {
		return fmt.Errorf("concurrency must be at least 1")
	}
	if _, err := formatting.ParseBytes(c.MaxFetchSize); err != nil {
		return fmt.Errorf("invalid max_fetch_size: %w", err)
	}
	for name, v := range map[string]string{
		"document_url_ttl": c.DocumentURLTTL,
		"photo_url_ttl":    c.PhotoURLTTL,
	} {
		d, err := time.ParseDuration(v)
		if err != nil {
			return fmt.Errorf("invalid %s: %w", name, err)
		}
		if err := storage.ValidateTTL(d); err != nil {
			return fmt.Errorf("%s: %w", name, err)
		}
	}
	d, err := time.ParseDuration(c.ModelTimeout)
	if err != nil {
		return fmt.Errorf("invalid model_timeout: %w", err)
	}
	if d <= 0 {
		return fmt.Errorf("model_timeout must be positive")
	}
	return nil
}

func stringEnv(name string, dst *string) {
	if name == "" {
		return
	}
	if v := os.Getenv(name); v != "" {
		*dst = v
	}
}

func intEnv(name string, dst *int) {
	if name == "" {
		return
	}
	if v := os.Getenv(name); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			*dst = n
		}
	}
}
