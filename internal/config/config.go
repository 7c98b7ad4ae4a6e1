package config

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/pelletier/go-toml/v2"

	"github.com/JaimeStill/agrocheck/internal/workflow"
	"github.com/JaimeStill/agrocheck/pkg/auth"
	"github.com/JaimeStill/agrocheck/pkg/cache"
	"github.com/JaimeStill/agrocheck/pkg/database"
	"github.com/JaimeStill/agrocheck/pkg/model"
	"github.com/JaimeStill/agrocheck/pkg/storage"
)

const (
	BaseConfigFile       = "config.toml"
	OverlayConfigPattern = "config.%s.toml"

	EnvAgroCheckEnv             = "AGROCHECK_ENV"
	EnvAgroCheckShutdownTimeout = "AGROCHECK_SHUTDOWN_TIMEOUT"
	EnvAgroCheckVersion         = "AGROCHECK_VERSION"
)

var databaseEnv = &database.Env{
	URL:             "AGROCHECK_DB_URL",
	Host:            "AGROCHECK_DB_HOST",
	Port:            "AGROCHECK_DB_PORT",
	Name:            "AGROCHECK_DB_NAME",
	User:            "AGROCHECK_DB_USER",
	Password:        "AGROCHECK_DB_PASSWORD",
	SSLMode:         "AGROCHECK_DB_SSL_MODE",
	MaxOpenConns:    "AGROCHECK_DB_MAX_OPEN_CONNS",
	MaxIdleConns:    "AGROCHECK_DB_MAX_IDLE_CONNS",
	ConnMaxLifetime: "AGROCHECK_DB_CONN_MAX_LIFETIME",
	ConnTimeout:     "AGROCHECK_DB_CONN_TIMEOUT",
}

var storageEnv = &storage.Env{
	Provider:         "AGROCHECK_STORAGE_PROVIDER",
	ContainerName:    "AGROCHECK_STORAGE_CONTAINER_NAME",
	ConnectionString: "AGROCHECK_STORAGE_CONNECTION_STRING",
	Endpoint:         "AGROCHECK_STORAGE_ENDPOINT",
	AccessKey:        "AGROCHECK_STORAGE_ACCESS_KEY",
	SecretKey:        "AGROCHECK_STORAGE_SECRET_KEY",
	Region:           "AGROCHECK_STORAGE_REGION",
	UseSSL:           "AGROCHECK_STORAGE_USE_SSL",
}

var authEnv = &auth.Env{
	Mode:     "AGROCHECK_AUTH_MODE",
	Secret:   "AGROCHECK_AUTH_SECRET",
	Issuer:   "AGROCHECK_AUTH_ISSUER",
	Audience: "AGROCHECK_AUTH_AUDIENCE",
	JWKSURL:  "AGROCHECK_AUTH_JWKS_URL",
}

var modelEnv = &model.Env{
	Provider:    "AGROCHECK_MODEL_PROVIDER",
	APIKey:      "AGROCHECK_MODEL_API_KEY",
	Name:        "AGROCHECK_MODEL_NAME",
	Temperature: "AGROCHECK_MODEL_TEMPERATURE",
}

var cacheEnv = &cache.Env{
	Address:  "AGROCHECK_CACHE_ADDRESS",
	Password: "AGROCHECK_CACHE_PASSWORD",
	DB:       "AGROCHECK_CACHE_DB",
	TTL:      "AGROCHECK_CACHE_TTL",
	Prefix:   "AGROCHECK_CACHE_PREFIX",
}

var pipelineEnv = &workflow.Env{
	Concurrency:     "AGROCHECK_PIPELINE_CONCURRENCY",
	MaxFilesPerType: "AGROCHECK_PIPELINE_MAX_FILES_PER_TYPE",
	MaxTextChars:    "AGROCHECK_PIPELINE_MAX_TEXT_CHARS",
	MaxFetchSize:    "AGROCHECK_PIPELINE_MAX_FETCH_SIZE",
	DocumentURLTTL:  "AGROCHECK_PIPELINE_DOCUMENT_URL_TTL",
	PhotoURLTTL:     "AGROCHECK_PIPELINE_PHOTO_URL_TTL",
	ModelTimeout:    "AGROCHECK_PIPELINE_MODEL_TIMEOUT",
}

// Config is the root configuration for the AgroCheck service.
type Config struct {
	Server          ServerConfig    `toml:"server"`
	Database        database.Config `toml:"database"`
	Storage         storage.Config  `toml:"storage"`
	API             APIConfig       `toml:"api"`
	Auth            auth.Config     `toml:"auth"`
	Model           model.Config    `toml:"model"`
	Cache           cache.Config    `toml:"cache"`
	Pipeline        workflow.Config `toml:"pipeline"`
	ShutdownTimeout string          `toml:"shutdown_timeout"`
	Version         string          `toml:"version"`
}

// Env returns the AGROCHECK_ENV value, defaulting to "local".
func (c *Config) Env() string {
	if env := os.Getenv(EnvAgroCheckEnv); env != "" {
		return env
	}
	return "local"
}

// ShutdownTimeoutDuration returns ShutdownTimeout as a time.Duration.
func (c *Config) ShutdownTimeoutDuration() time.Duration {
	return duration(c.ShutdownTimeout)
}

// Load reads the base config (if present), applies any environment overlay,
// and finalizes all values. If no config.toml exists, defaults and environment
// variables provide all configuration.
func Load() (*Config, error) {
	return LoadFrom(".")
}

// LoadFrom is Load with the config files resolved against dir.
func LoadFrom(dir string) (*Config, error) {
	cfg := &Config{}

	base := filepath.Join(dir, BaseConfigFile)
	if _, err := os.Stat(base); err == nil {
		loaded, err := load(base)
		if err != nil {
			return nil, err
		}
		cfg = loaded
	}

	if path := overlayPath(dir); path != "" {
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
	c.API.Merge(&overlay.API)
	c.Auth.Merge(&overlay.Auth)
	c.Model.Merge(&overlay.Model)
	c.Cache.Merge(&overlay.Cache)
	c.Pipeline.Merge(&overlay.Pipeline)
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
	if err := c.API.Finalize(); err != nil {
		return fmt.Errorf("api: %w", err)
	}
	if err := c.Auth.Finalize(authEnv); err != nil {
		return fmt.Errorf("auth: %w", err)
	}
	if err := c.Model.Finalize(modelEnv); err != nil {
		return fmt.Errorf("model: %w", err)
	}
	if err := c.Cache.Finalize(cacheEnv); err != nil {
		return fmt.Errorf("cache: %w", err)
	}
	if err := c.Pipeline.Finalize(pipelineEnv); err != nil {
		return fmt.Errorf("pipeline: %w", err)
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
	if v := os.Getenv(EnvAgroCheckShutdownTimeout); v != "" {
		c.ShutdownTimeout = v
	}
	if v := os.Getenv(EnvAgroCheckVersion); v != "" {
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

func overlayPath(dir string) string {
	if env := os.Getenv(EnvAgroCheckEnv); env != "" {
		path := filepath.Join(dir, fmt.Sprintf(OverlayConfigPattern, env))
		if _, err := os.Stat(path); err == nil {
			return path
		}
	}
	return ""
}
