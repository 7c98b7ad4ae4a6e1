package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/JaimeStill/agrocheck/internal/lots"
	"github.com/JaimeStill/agrocheck/internal/prompts"
	"github.com/JaimeStill/agrocheck/internal/validation"
	"github.com/JaimeStill/agrocheck/pkg/model"
)

// FallbackAnswer is returned when the model produces no text.
const FallbackAnswer = "No tengo respuesta en este momento."

// Answer replies to a free-text question about lot in plain text.
func (rt *Runtime) Answer(ctx context.Context, lot lots.Lot, reqs []validation.Requirement, message string) (string, error) {
	system, err := rt.systemPrompt(ctx, prompts.StageAssistant)
	if err != nil {
		return "", err
	}

	parts, err := ChatParts(lot, reqs, message)
	if err != nil {
		return "", err
	}

	resp, err := rt.generate(ctx, model.Request{System: system, Parts: parts})
	if err != nil {
		return "", fmt.Errorf("answer: %w", err)
	}

	if text := strings.TrimSpace(resp.Content); text != "" {
		return text, nil
	}
	return FallbackAnswer, nil
}
