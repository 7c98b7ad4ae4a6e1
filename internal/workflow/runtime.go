package workflow

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"

	"github.com/JaimeStill/agrocheck/internal/prompts"
	"github.com/JaimeStill/agrocheck/pkg/model"
	"github.com/JaimeStill/agrocheck/pkg/storage"
)

// Runtime bundles the dependencies that pipeline runs require.
// It is constructed by higher-level composition code from Infrastructure and Domain systems.
type Runtime struct {
	Model   model.Client
	Storage storage.System
	Prompts prompts.System
	// HTTP fetches signed URLs. A nil client uses http.DefaultClient.
	HTTP   *http.Client
	Config Config
	Logger *slog.Logger
}

func (rt *Runtime) httpClient() *http.Client {
	if rt.HTTP != nil {
		return rt.HTTP
	}
	return http.DefaultClient
}

// systemPrompt joins the effective instructions for stage with its
// immutable specification.
func (rt *Runtime) systemPrompt(ctx context.Context, stage prompts.Stage) (string, error) {
	eff, err := rt.Prompts.Effective(ctx, stage)
	if err != nil {
		return "", fmt.Errorf("load instructions for %s: %w", stage, err)
	}

	if eff.Source == prompts.SourceOverride {
		rt.Logger.DebugContext(ctx, "using prompt override", "stage", stage, "prompt", eff.PromptName)
	}
	return eff.System(), nil
}

// generate makes the single bounded model call of a run.
func (rt *Runtime) generate(ctx context.Context, req model.Request) (*model.Response, error) {
	ctx, cancel := context.WithTimeout(ctx, rt.Config.ModelTimeoutDuration())
	defer cancel()

	resp, err := rt.Model.Generate(ctx, req)
	if err != nil {
		if errors.Is(err, context.DeadlineExceeded) || errors.Is(ctx.Err(), context.DeadlineExceeded) {
			return nil, fmt.Errorf("%w: %w", ErrModelTimeout, err)
		}
		return nil, fmt.Errorf("%w: %w", ErrModelCall, err)
	}
	return resp, nil
}
