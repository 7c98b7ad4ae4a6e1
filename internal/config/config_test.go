package config_test

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/JaimeStill/agrocheck/internal/config"
	"github.com/JaimeStill/agrocheck/pkg/auth"
	"github.com/JaimeStill/agrocheck/pkg/storage"
)

const baseConfig = `
shutdown_timeout = "30s"
version = "0.1.0"

[server]
host = "0.0.0.0"
port = 8080

[database]
name = "agrocheck"
user = "agrocheck"
password = "agrocheck"

[storage]
provider = "azure"
container_name = "agrocheck"
connection_string = "UseDevelopmentStorage=true"

[api]
base_path = "/api"
max_upload_size = "20MB"

[api.pagination]
default_page_size = 25
max_page_size = 50

[auth]
mode = "hmac"
secret = "super-secret-jwt-token-with-at-least-32-characters"

[model]
api_key = "test-key"

[cache]
address = "localhost:6379"
ttl = "5m"

[pipeline]
concurrency = 2
model_timeout = "15s"
`

const overlayConfig = `
[server]
port = 9090

[database]
host = "prodhost"

[pipeline]
concurrency = 8
`

// minimalConfig carries only the values without defaults.
const minimalConfig = `
[database]
name = "agrocheck"
user = "agrocheck"

[storage]
connection_string = "conn"

[auth]
secret = "secret"

[model]
api_key = "key"
`

func writeConfig(t *testing.T, dir, filename, content string) {
	t.Helper()
	if err := os.WriteFile(filepath.Join(dir, filename), []byte(content), 0644); err != nil {
		t.Fatalf("write %s: %v", filename, err)
	}
}

func TestLoad(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, baseConfig)

	cfg, err := config.LoadFrom(dir)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 8080 {
		t.Errorf("server port: got %d, want 8080", cfg.Server.Port)
	}
	if cfg.Database.Name != "agrocheck" {
		t.Errorf("database name: got %s", cfg.Database.Name)
	}
	if cfg.API.Pagination.DefaultPageSize != 25 {
		t.Errorf("default page size: got %d, want 25", cfg.API.Pagination.DefaultPageSize)
	}
	if cfg.API.MaxUploadSizeBytes() != 20*1024*1024 {
		t.Errorf("max upload size: got %d", cfg.API.MaxUploadSizeBytes())
	}
	if cfg.Auth.Mode != auth.ModeHMAC {
		t.Errorf("auth mode: got %s", cfg.Auth.Mode)
	}
	if !cfg.Cache.Enabled() || cfg.Cache.TTLDuration() != 5*time.Minute {
		t.Errorf("cache: got %+v", cfg.Cache)
	}
	if cfg.Pipeline.Concurrency != 2 {
		t.Errorf("pipeline concurrency: got %d, want 2", cfg.Pipeline.Concurrency)
	}
	if cfg.Pipeline.ModelTimeoutDuration() != 15*time.Second {
		t.Errorf("model timeout: got %s", cfg.Pipeline.ModelTimeoutDuration())
	}
}

func TestLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, minimalConfig)

	cfg, err := config.LoadFrom(dir)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.ShutdownTimeoutDuration() != 30*time.Second {
		t.Errorf("shutdown timeout: got %s", cfg.ShutdownTimeoutDuration())
	}
	if cfg.Storage.Provider != storage.ProviderAzure {
		t.Errorf("storage provider: got %s", cfg.Storage.Provider)
	}
	if cfg.API.BasePath != "/api" {
		t.Errorf("base path: got %s", cfg.API.BasePath)
	}
	if cfg.Model.Name == "" {
		t.Error("model name default missing")
	}
	if cfg.Cache.Enabled() {
		t.Error("cache should be disabled without an address")
	}
	if cfg.Pipeline.Concurrency != 4 {
		t.Errorf("pipeline concurrency: got %d, want 4", cfg.Pipeline.Concurrency)
	}
	if cfg.Pipeline.DocumentURLTTLDuration() != 300*time.Second {
		t.Errorf("document url ttl: got %s", cfg.Pipeline.DocumentURLTTLDuration())
	}
	if cfg.Pipeline.ModelTimeoutDuration() != 22*time.Second {
		t.Errorf("model timeout: got %s", cfg.Pipeline.ModelTimeoutDuration())
	}
}

func TestLoadOverlay(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, baseConfig)
	writeConfig(t, dir, "config.prod.toml", overlayConfig)
	t.Setenv(config.EnvAgroCheckEnv, "prod")

	cfg, err := config.LoadFrom(dir)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Env() != "prod" {
		t.Errorf("env: got %s", cfg.Env())
	}
	if cfg.Server.Port != 9090 {
		t.Errorf("server port: got %d, want 9090", cfg.Server.Port)
	}
	if cfg.Database.Host != "prodhost" {
		t.Errorf("database host: got %s", cfg.Database.Host)
	}
	if cfg.Database.Name != "agrocheck" {
		t.Errorf("database name should survive overlay: got %s", cfg.Database.Name)
	}
	if cfg.Pipeline.Concurrency != 8 {
		t.Errorf("pipeline concurrency: got %d, want 8", cfg.Pipeline.Concurrency)
	}
}

func TestLoadEnvOverrides(t *testing.T) {
	dir := t.TempDir()
	writeConfig(t, dir, config.BaseConfigFile, baseConfig)

	t.Setenv("AGROCHECK_SERVER_PORT", "7070")
	t.Setenv("AGROCHECK_DB_HOST", "envhost")
	t.Setenv("AGROCHECK_AUTH_SECRET", "from-env")
	t.Setenv("AGROCHECK_MODEL_NAME", "gemini-2.0-flash")
	t.Setenv("AGROCHECK_PIPELINE_MAX_FILES_PER_TYPE", "3")
	t.Setenv(config.EnvAgroCheckVersion, "2.0.0")

	cfg, err := config.LoadFrom(dir)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if cfg.Server.Port != 7070 {
		t.Errorf("server port: got %d, want 7070", cfg.Server.Port)
	}
	if cfg.Database.Host != "envhost" {
		t.Errorf("database host: got %s", cfg.Database.Host)
	}
	if cfg.Auth.Secret != "from-env" {
		t.Errorf("auth secret: got %s", cfg.Auth.Secret)
	}
	if cfg.Model.Name != "gemini-2.0-flash" {
		t.Errorf("model name: got %s", cfg.Model.Name)
	}
	if cfg.Pipeline.MaxFilesPerType != 3 {
		t.Errorf("max files per type: got %d", cfg.Pipeline.MaxFilesPerType)
	}
	if cfg.Version != "2.0.0" {
		t.Errorf("version: got %s", cfg.Version)
	}
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name    string
		content string
		env     map[string]string
		wantErr string
	}{
		{
			name:    "invalid toml",
			content: "[server\nport = ",
			wantErr: "parse config",
		},
		{
			name:    "missing auth secret",
			content: strings.Replace(minimalConfig, `secret = "secret"`, "", 1),
			wantErr: "auth",
		},
		{
			name:    "missing model key",
			content: strings.Replace(minimalConfig, `api_key = "key"`, "", 1),
			wantErr: "model",
		},
		{
			name:    "pipeline url ttl out of range",
			content: minimalConfig,
			env:     map[string]string{"AGROCHECK_PIPELINE_DOCUMENT_URL_TTL": "10m"},
			wantErr: "pipeline",
		},
		{
			name:    "nested base path",
			content: minimalConfig,
			env:     map[string]string{config.EnvAPIBasePath: "/api/v1"},
			wantErr: "base_path",
		},
		{
			name:    "unparseable upload size",
			content: minimalConfig,
			env:     map[string]string{config.EnvAPIMaxUploadSize: "lots"},
			wantErr: "max_upload_size",
		},
		{
			name:    "invalid shutdown timeout",
			content: minimalConfig,
			env:     map[string]string{config.EnvAgroCheckShutdownTimeout: "soon"},
			wantErr: "shutdown_timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			dir := t.TempDir()
			writeConfig(t, dir, config.BaseConfigFile, tt.content)
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := config.LoadFrom(dir)
			if err == nil {
				t.Fatal("expected error")
			}
			if !strings.Contains(err.Error(), tt.wantErr) {
				t.Errorf("error = %v, want it to mention %q", err, tt.wantErr)
			}
		})
	}
}

func TestServerConfig(t *testing.T) {
	cfg := config.ServerConfig{}
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}
	if cfg.Addr() != "0.0.0.0:8080" {
		t.Errorf("addr: got %s", cfg.Addr())
	}
	if cfg.ReadTimeoutDuration() != time.Minute {
		t.Errorf("read timeout: got %s", cfg.ReadTimeoutDuration())
	}

	if cfg.ReadHeaderTimeoutDuration() != 10*time.Second {
		t.Errorf("read header timeout: got %s", cfg.ReadHeaderTimeoutDuration())
	}
	if cfg.IdleTimeoutDuration() != 2*time.Minute {
		t.Errorf("idle timeout: got %s", cfg.IdleTimeoutDuration())
	}

	bad := config.ServerConfig{Port: 70000}
	if err := bad.Finalize(); err == nil {
		t.Error("expected invalid port error")
	}
}

func TestServerConfigTimeouts(t *testing.T) {
	t.Setenv(config.EnvServerIdleTimeout, "45s")

	cfg := config.ServerConfig{WriteTimeout: "3m"}
	cfg.Merge(&config.ServerConfig{ReadHeaderTimeout: "5s"})
	if err := cfg.Finalize(); err != nil {
		t.Fatalf("finalize: %v", err)
	}

	if cfg.WriteTimeoutDuration() != 3*time.Minute {
		t.Errorf("write timeout: got %s", cfg.WriteTimeoutDuration())
	}
	if cfg.ReadHeaderTimeoutDuration() != 5*time.Second {
		t.Errorf("read header timeout: got %s", cfg.ReadHeaderTimeoutDuration())
	}
	if cfg.IdleTimeoutDuration() != 45*time.Second {
		t.Errorf("idle timeout: got %s", cfg.IdleTimeoutDuration())
	}

	bad := config.ServerConfig{IdleTimeout: "forever"}
	err := bad.Finalize()
	if err == nil || !strings.Contains(err.Error(), "idle_timeout") {
		t.Errorf("error = %v, want idle_timeout failure", err)
	}
}
