package config

import (
	"fmt"
	"os"
	"strings"

	"github.com/JaimeStill/agrocheck/pkg/formatting"
	"github.com/JaimeStill/agrocheck/pkg/middleware"
	"github.com/JaimeStill/agrocheck/pkg/pagination"
)

const (
	EnvAPIBasePath      = "AGROCHECK_API_BASE_PATH"
	EnvAPIMaxUploadSize = "AGROCHECK_API_MAX_UPLOAD_SIZE"

	defaultMaxUploadSize = "50MB"
)

var corsEnv = &middleware.CORSEnv{
	Enabled:          "AGROCHECK_CORS_ENABLED",
	Origins:          "AGROCHECK_CORS_ORIGINS",
	AllowedMethods:   "AGROCHECK_CORS_ALLOWED_METHODS",
	AllowedHeaders:   "AGROCHECK_CORS_ALLOWED_HEADERS",
	AllowCredentials: "AGROCHECK_CORS_ALLOW_CREDENTIALS",
	MaxAge:           "AGROCHECK_CORS_MAX_AGE",
}

var paginationEnv = &pagination.ConfigEnv{
	DefaultPageSize: "AGROCHECK_PAGINATION_DEFAULT_PAGE_SIZE",
	MaxPageSize:     "AGROCHECK_PAGINATION_MAX_PAGE_SIZE",
}

// APIConfig holds the /api mount point, the upload ceiling shared by photo
// and document uploads, and the nested CORS and paging settings.
type APIConfig struct {
	BasePath      string                `toml:"base_path"`
	MaxUploadSize string                `toml:"max_upload_size"`
	CORS          middleware.CORSConfig `toml:"cors"`
	Pagination    pagination.Config     `toml:"pagination"`
}

// MaxUploadSizeBytes returns the parsed upload ceiling. Finalize rejects
// sizes that do not parse.
func (c *APIConfig) MaxUploadSizeBytes() int64 {
	size, err := formatting.ParseBytes(c.MaxUploadSize)
	if err != nil {
		size, _ = formatting.ParseBytes(defaultMaxUploadSize)
	}
	return size
}

func (c *APIConfig) Finalize() error {
	c.loadDefaults()
	c.loadEnv()

	if err := c.validate(); err != nil {
		return err
	}
	if err := c.CORS.Finalize(corsEnv); err != nil {
		return fmt.Errorf("cors: %w", err)
	}
	if err := c.Pagination.Finalize(paginationEnv); err != nil {
		return fmt.Errorf("pagination: %w", err)
	}
	return nil
}

func (c *APIConfig) Merge(overlay *APIConfig) {
	mergeString(&c.BasePath, overlay.BasePath)
	mergeString(&c.MaxUploadSize, overlay.MaxUploadSize)
	c.CORS.Merge(&overlay.CORS)
	c.Pagination.Merge(&overlay.Pagination)
}

func (c *APIConfig) loadDefaults() {
	if c.BasePath == "" {
		c.BasePath = "/api"
	}
	if c.MaxUploadSize == "" {
		c.MaxUploadSize = defaultMaxUploadSize
	}
}

func (c *APIConfig) loadEnv() {
	mergeString(&c.BasePath, os.Getenv(EnvAPIBasePath))
	mergeString(&c.MaxUploadSize, os.Getenv(EnvAPIMaxUploadSize))
}

func (c *APIConfig) validate() error {
	if len(c.BasePath) < 2 || !strings.HasPrefix(c.BasePath, "/") || strings.Count(c.BasePath, "/") != 1 {
		return fmt.Errorf("invalid base_path %q: want a single-level path such as /api", c.BasePath)
	}
	size, err := formatting.ParseBytes(c.MaxUploadSize)
	if err != nil {
		return fmt.Errorf("invalid max_upload_size: %w", err)
	}
	if size <= 0 {
		return fmt.Errorf("invalid max_upload_size: must be positive")
	}
	return nil
}

// mergeString replaces dst when src is set.
func mergeString(dst *string, src string) {
	if src != "" {
		*dst = src
	}
}
