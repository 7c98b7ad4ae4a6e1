package api_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/JaimeStill/agrocheck/internal/api"
	"github.com/JaimeStill/agrocheck/internal/config"
	"github.com/JaimeStill/agrocheck/internal/infrastructure"
	"github.com/JaimeStill/agrocheck/internal/workflow"
	"github.com/JaimeStill/agrocheck/pkg/auth"
	"github.com/JaimeStill/agrocheck/pkg/database"
	"github.com/JaimeStill/agrocheck/pkg/middleware"
	"github.com/JaimeStill/agrocheck/pkg/model"
	"github.com/JaimeStill/agrocheck/pkg/pagination"
	"github.com/JaimeStill/agrocheck/pkg/storage"
)

const (
	azuriteConnString = "DefaultEndpointsProtocol=http;AccountName=agrocheckstore;AccountKey=Eby8vdM02xNOcqFlqUwJPLlmEtlCDXJ1OUzFT50uSRZ6IFsuFq2UVErCz4I6tq/K1SZFPTOtr/KBHBeksoGMGw==;BlobEndpoint=http://127.0.0.1:10000/agrocheckstore;"
	testSecret        = "super-secret-jwt-token-with-at-least-32-characters"
)

var testUser = uuid.MustParse("7f6c9e1a-0000-4000-8000-000000000001")

func validConfig() *config.Config {
	return &config.Config{
		Server: config.ServerConfig{
			Host:         "0.0.0.0",
			Port:         8080,
			ReadTimeout:  "1m",
			WriteTimeout: "15m",
		},
		Database: database.Config{
			Host:            "localhost",
			Port:            5432,
			Name:            "agrocheck",
			User:            "agrocheck",
			Password:        "agrocheck",
			SSLMode:         "disable",
			MaxOpenConns:    25,
			MaxIdleConns:    5,
			ConnMaxLifetime: "15m",
			ConnTimeout:     "5s",
		},
		Storage: storage.Config{
			Provider:         storage.ProviderAzure,
			ContainerName:    "agrocheck",
			ConnectionString: azuriteConnString,
		},
		API: config.APIConfig{
			BasePath: "/api",
			CORS: middleware.CORSConfig{
				Enabled: false,
			},
			Pagination: pagination.Config{
				DefaultPageSize: 20,
				MaxPageSize:     100,
			},
		},
		Auth: auth.Config{
			Mode:   auth.ModeHMAC,
			Secret: testSecret,
		},
		Model: model.Config{
			Provider: model.ProviderGemini,
			APIKey:   "test-key",
			Name:     "gemini-1.5-flash",
		},
		Pipeline: workflow.Config{
			Concurrency:     4,
			MaxFilesPerType: 5,
		},
		ShutdownTimeout: "30s",
		Version:         "0.1.0",
	}
}

func setupInfra(t *testing.T) *infrastructure.Infrastructure {
	t.Helper()
	infra, err := infrastructure.New(validConfig())
	if err != nil {
		t.Fatalf("infrastructure.New() error = %v", err)
	}
	return infra
}

func signToken(t *testing.T, user uuid.UUID) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"sub":   user.String(),
		"email": "exportador@agro.pe",
		"exp":   time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}
	return signed
}

func TestNewModule(t *testing.T) {
	cfg := validConfig()
	infra := setupInfra(t)

	m, err := api.NewModule(cfg, infra)
	if err != nil {
		t.Fatalf("NewModule() error = %v", err)
	}

	if m.Prefix() != "/api" {
		t.Errorf("prefix: got %s, want /api", m.Prefix())
	}
}

func TestNewModuleRequiresInfrastructure(t *testing.T) {
	if _, err := api.NewModule(validConfig(), &infrastructure.Infrastructure{}); err == nil {
		t.Fatal("expected error for uninitialized infrastructure")
	}
}

func TestNewRuntimeScopesLogger(t *testing.T) {
	infra := setupInfra(t)
	before := infra.Logger

	runtime := api.NewRuntime(validConfig(), infra)
	if infra.Logger != before {
		t.Error("NewRuntime replaced the shared logger")
	}
	if runtime.Logger == before {
		t.Error("runtime logger is not scoped")
	}
}

func TestNewRuntime(t *testing.T) {
	cfg := validConfig()
	infra := setupInfra(t)

	runtime := api.NewRuntime(cfg, infra)

	if runtime.Pagination.DefaultPageSize != 20 {
		t.Errorf("pagination default page size: got %d, want 20", runtime.Pagination.DefaultPageSize)
	}
	if runtime.Pagination.MaxPageSize != 100 {
		t.Errorf("pagination max page size: got %d, want 100", runtime.Pagination.MaxPageSize)
	}
	if runtime.Pipeline.MaxFilesPerType != 5 {
		t.Errorf("pipeline max files per type: got %d, want 5", runtime.Pipeline.MaxFilesPerType)
	}
	if runtime.Logger == nil {
		t.Error("runtime logger is nil")
	}
	if runtime.Database == nil {
		t.Error("runtime database is nil")
	}
	if runtime.Storage == nil {
		t.Error("runtime storage is nil")
	}
	if runtime.Model == nil {
		t.Error("runtime model is nil")
	}
	if runtime.Verifier == nil {
		t.Error("runtime verifier is nil")
	}
	if runtime.Lifecycle == nil {
		t.Error("runtime lifecycle is nil")
	}
}

func TestNewDomain(t *testing.T) {
	cfg := validConfig()
	infra := setupInfra(t)
	runtime := api.NewRuntime(cfg, infra)

	domain := api.NewDomain(runtime)
	if domain == nil {
		t.Fatal("NewDomain() returned nil")
	}
	if domain.Validations == nil {
		t.Error("validations system is nil")
	}
	if domain.Certificates == nil {
		t.Error("certificates system is nil")
	}
}

func TestModuleRequiresToken(t *testing.T) {
	m, err := api.NewModule(validConfig(), setupInfra(t))
	if err != nil {
		t.Fatalf("NewModule() error = %v", err)
	}

	tests := []struct {
		name   string
		header string
	}{
		{"missing header", ""},
		{"wrong scheme", "Basic abc"},
		{"bad token", "Bearer not-a-jwt"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/api/lots", nil)
			if tt.header != "" {
				req.Header.Set("Authorization", tt.header)
			}
			rec := httptest.NewRecorder()

			m.Serve(rec, req)

			if rec.Code != http.StatusUnauthorized {
				t.Errorf("status: got %d, want %d", rec.Code, http.StatusUnauthorized)
			}
		})
	}
}

func TestStorageSignedURL(t *testing.T) {
	m, err := api.NewModule(validConfig(), setupInfra(t))
	if err != nil {
		t.Fatalf("NewModule() error = %v", err)
	}
	token := signToken(t, testUser)
	own := "documents/" + testUser.String() + "/lot/FACTURA/invoice.pdf"
	foreign := "documents/" + uuid.NewString() + "/lot/FACTURA/invoice.pdf"

	tests := []struct {
		name       string
		path       string
		wantStatus int
	}{
		{"owned key", "/api/storage/url/" + own, http.StatusOK},
		{"owned key with ttl", "/api/storage/url/" + own + "?ttl=300", http.StatusOK},
		{"foreign key", "/api/storage/url/" + foreign, http.StatusForbidden},
		{"short ttl", "/api/storage/url/" + own + "?ttl=10", http.StatusBadRequest},
		{"long ttl", "/api/storage/url/" + own + "?ttl=301", http.StatusBadRequest},
		{"malformed ttl", "/api/storage/url/" + own + "?ttl=soon", http.StatusBadRequest},
		{"foreign download", "/api/storage/download/" + foreign, http.StatusForbidden},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.path, nil)
			req.Header.Set("Authorization", "Bearer "+token)
			rec := httptest.NewRecorder()

			m.Serve(rec, req)

			if rec.Code != tt.wantStatus {
				t.Fatalf("status: got %d, want %d (body %s)", rec.Code, tt.wantStatus, rec.Body.String())
			}
			if tt.wantStatus != http.StatusOK {
				return
			}

			var body struct {
				OK  bool   `json:"ok"`
				Key string `json:"key"`
				URL string `json:"url"`
			}
			if err := json.NewDecoder(rec.Body).Decode(&body); err != nil {
				t.Fatalf("decode: %v", err)
			}
			if !body.OK || body.Key != own {
				t.Errorf("body: got %+v", body)
			}
			if !strings.Contains(body.URL, "sig=") {
				t.Errorf("url should carry a signature: %s", body.URL)
			}
		})
	}
}
