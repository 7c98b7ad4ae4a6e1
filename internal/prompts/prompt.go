// Package prompts manages named instruction overrides for the model-backed
// pipeline stages. At most one prompt per stage is active; without one the
// stage runs on its built-in instructions.
package prompts

import (
	"strings"

	"github.com/google/uuid"
)

// Prompt represents a named instruction override for a pipeline stage.
type Prompt struct {
	ID           uuid.UUID `json:"id"`
	Name         string    `json:"name"`
	Stage        Stage     `json:"stage"`
	Instructions string    `json:"instructions"`
	Description  *string   `json:"description"`
	Active       bool      `json:"active"`
}

// CreateCommand carries the data needed to create a new prompt override.
type CreateCommand struct {
	Name         string  `json:"name"`
	Stage        Stage   `json:"stage"`
	Instructions string  `json:"instructions"`
	Description  *string `json:"description"`
}

// UpdateCommand carries the data needed to update an existing prompt override.
type UpdateCommand = CreateCommand

func (c *CreateCommand) validate() error {
	c.Name = strings.TrimSpace(c.Name)
	if c.Name == "" || strings.TrimSpace(c.Instructions) == "" {
		return ErrInvalid
	}
	if !c.Stage.Valid() {
		return ErrInvalidStage
	}
	return nil
}

// Source identifies where a stage's effective instructions come from.
type Source string

const (
	SourceOverride Source = "override"
	SourceDefault  Source = "default"
)

// Effective is the instruction set a stage currently runs with: the
// editable instructions plus the immutable output specification.
type Effective struct {
	Stage        Stage      `json:"stage"`
	Source       Source     `json:"source"`
	PromptID     *uuid.UUID `json:"prompt_id,omitempty"`
	PromptName   string     `json:"prompt_name,omitempty"`
	Instructions string     `json:"instructions"`
	Spec         string     `json:"spec"`
}

// System returns the composed system instruction sent to the model.
func (e *Effective) System() string {
	return Compose(e.Instructions, e.Spec)
}

// Default returns the built-in instruction set for stage.
func Default(stage Stage) (*Effective, error) {
	instructions, err := Instructions(stage)
	if err != nil {
		return nil, err
	}
	spec, err := Spec(stage)
	if err != nil {
		return nil, err
	}
	return &Effective{
		Stage:        stage,
		Source:       SourceDefault,
		Instructions: instructions,
		Spec:         spec,
	}, nil
}

func (p *Prompt) effective(spec string) *Effective {
	id := p.ID
	return &Effective{
		Stage:        p.Stage,
		Source:       SourceOverride,
		PromptID:     &id,
		PromptName:   p.Name,
		Instructions: p.Instructions,
		Spec:         spec,
	}
}
