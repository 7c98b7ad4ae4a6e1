package workflow_test

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"

	"github.com/JaimeStill/agrocheck/internal/lots"
	"github.com/JaimeStill/agrocheck/internal/prompts"
	"github.com/JaimeStill/agrocheck/internal/workflow"
	"github.com/JaimeStill/agrocheck/pkg/model"
	"github.com/JaimeStill/agrocheck/pkg/storage"
)

var (
	testUser = uuid.MustParse("7f6c9e1a-0000-4000-8000-000000000001")
	testLot  = uuid.MustParse("7f6c9e1a-0000-4000-8000-0000000000aa")
)

type fakeModel struct {
	mu         sync.Mutex
	requests   []model.Request
	generateFn func(ctx context.Context, req model.Request) (*model.Response, error)
}

func (m *fakeModel) Generate(ctx context.Context, req model.Request) (*model.Response, error) {
	m.mu.Lock()
	m.requests = append(m.requests, req)
	m.mu.Unlock()
	return m.generateFn(ctx, req)
}

func (m *fakeModel) Close() error { return nil }

func (m *fakeModel) calls() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.requests)
}

func reply(content string) func(context.Context, model.Request) (*model.Response, error) {
	return func(context.Context, model.Request) (*model.Response, error) {
		return &model.Response{Content: content, Model: "fake", Usage: model.Usage{TotalTokens: 42}}, nil
	}
}

// fakeStorage signs keys as URLs on a test file server.
type fakeStorage struct {
	storage.System
	baseURL  string
	failSign map[string]bool
	ttls     []time.Duration
	mu       sync.Mutex
}

func (s *fakeStorage) SignedURL(_ context.Context, key string, ttl time.Duration) (string, error) {
	s.mu.Lock()
	s.ttls = append(s.ttls, ttl)
	s.mu.Unlock()
	if s.failSign[key] {
		return "", storage.ErrNotFound
	}
	return s.baseURL + "/" + key, nil
}

type fakePrompts struct {
	prompts.System
}

func (fakePrompts) Effective(_ context.Context, stage prompts.Stage) (*prompts.Effective, error) {
	return prompts.Default(stage)
}

type harness struct {
	rt      *workflow.Runtime
	model   *fakeModel
	storage *fakeStorage
	files   map[string][]byte
}

func newHarness(t *testing.T, cfg workflow.Config) *harness {
	t.Helper()

	h := &harness{
		model: &fakeModel{generateFn: reply(`{}`)},
		files: make(map[string][]byte),
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		data, ok := h.files[strings.TrimPrefix(r.URL.Path, "/")]
		if !ok {
			http.NotFound(w, r)
			return
		}
		w.Write(data)
	}))
	t.Cleanup(srv.Close)

	if err := cfg.Finalize(nil); err != nil {
		t.Fatalf("finalize config: %v", err)
	}

	h.storage = &fakeStorage{baseURL: srv.URL, failSign: map[string]bool{}}
	h.rt = &workflow.Runtime{
		Model:   h.model,
		Storage: h.storage,
		Prompts: fakePrompts{},
		HTTP:    srv.Client(),
		Config:  cfg,
		Logger:  slog.New(slog.NewTextHandler(io.Discard, nil)),
	}
	return h
}

func sampleLot() lots.Lot {
	variety := "Hass"
	return lots.Lot{
		ID:                 testLot,
		UserID:             testUser,
		Product:            "Palta",
		Variety:            &variety,
		LotCode:            "LOTE-001",
		DestinationCountry: "NL",
		Status:             lots.StatusPending,
	}
}

func TestMapHTTPStatus(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want int
	}{
		{"timeout", workflow.ErrModelTimeout, http.StatusGatewayTimeout},
		{"call", fmt.Errorf("validate: %w", workflow.ErrModelCall), http.StatusBadGateway},
		{"output", workflow.ErrModelOutput, http.StatusBadGateway},
		{"other", errors.New("boom"), http.StatusInternalServerError},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if got := workflow.MapHTTPStatus(tt.err); got != tt.want {
				t.Errorf("MapHTTPStatus() = %d, want %d", got, tt.want)
			}
		})
	}
}

func TestConfigFinalize(t *testing.T) {
	t.Run("defaults", func(t *testing.T) {
		var cfg workflow.Config
		if err := cfg.Finalize(nil); err != nil {
			t.Fatalf("Finalize() error: %v", err)
		}
		if cfg.Concurrency != 4 || cfg.MaxFilesPerType != 1 || cfg.MaxTextChars != 6000 {
			t.Errorf("defaults = %+v", cfg)
		}
		if cfg.DocumentURLTTLDuration() != 300*time.Second {
			t.Errorf("document ttl = %s, want 5m", cfg.DocumentURLTTLDuration())
		}
		if cfg.PhotoURLTTLDuration() != 60*time.Second {
			t.Errorf("photo ttl = %s, want 1m", cfg.PhotoURLTTLDuration())
		}
		if cfg.ModelTimeoutDuration() != 22*time.Second {
			t.Errorf("model timeout = %s, want 22s", cfg.ModelTimeoutDuration())
		}
	})

	t.Run("env overrides", func(t *testing.T) {
		t.Setenv("TEST_PIPELINE_CONCURRENCY", "8")
		t.Setenv("TEST_PIPELINE_MODEL_TIMEOUT", "30s")

		cfg := workflow.Config{}
		err := cfg.Finalize(&workflow.Env{
			Concurrency:  "TEST_PIPELINE_CONCURRENCY",
			ModelTimeout: "TEST_PIPELINE_MODEL_TIMEOUT",
		})
		if err != nil {
			t.Fatalf("Finalize() error: %v", err)
		}
		if cfg.Concurrency != 8 {
			t.Errorf("concurrency = %d, want 8", cfg.Concurrency)
		}
		if cfg.ModelTimeoutDuration() != 30*time.Second {
			t.Errorf("model timeout = %s, want 30s", cfg.ModelTimeoutDuration())
		}
	})

	invalid := []struct {
		name string
		cfg  workflow.Config
	}{
		{"ttl below window", workflow.Config{DocumentURLTTL: "10s"}},
		{"ttl above window", workflow.Config{PhotoURLTTL: "10m"}},
		{"bad duration", workflow.Config{ModelTimeout: "soon"}},
		{"bad fetch size", workflow.Config{MaxFetchSize: "lots"}},
	}

	for _, tt := range invalid {
		t.Run(tt.name, func(t *testing.T) {
			if err := tt.cfg.Finalize(nil); err == nil {
				t.Error("Finalize() should fail")
			}
		})
	}

	t.Run("merge keeps unset fields", func(t *testing.T) {
		base := workflow.Config{Concurrency: 2, ModelTimeout: "10s"}
		base.Merge(&workflow.Config{ModelTimeout: "15s"})
		if base.Concurrency != 2 || base.ModelTimeout != "15s" {
			t.Errorf("merged = %+v", base)
		}
	})
}

func TestDocumentSteps(t *testing.T) {
	steps := workflow.DocumentSteps()
	if len(steps) != 5 {
		t.Fatalf("steps = %d, want 5", len(steps))
	}
	for _, s := range steps {
		if s.Status != workflow.StepDone {
			t.Errorf("step %s status = %s", s.Step, s.Status)
		}
	}
}
