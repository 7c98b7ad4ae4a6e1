// Package model provides a provider-neutral client for multi-modal,
// schema-constrained generation requests against a large language model.
package model

import (
	"context"
	"errors"
)

// ErrEmptyResponse indicates the provider returned no candidate content.
var ErrEmptyResponse = errors.New("empty model response")

// Type enumerates JSON schema value types understood by providers.
type Type string

// Schema value types.
const (
	TypeObject  Type = "object"
	TypeArray   Type = "array"
	TypeString  Type = "string"
	TypeNumber  Type = "number"
	TypeInteger Type = "integer"
	TypeBoolean Type = "boolean"
)

// Schema describes the structured output contract of a request.
type Schema struct {
	Type        Type
	Description string
	Nullable    bool
	Enum        []string
	Properties  map[string]*Schema
	Required    []string
	Items       *Schema
}

// Part is one element of the user message. A part carries either Text
// or inline Data tagged with its MIME type.
type Part struct {
	Text     string
	MIMEType string
	Data     []byte
}

// Text creates a text part.
func Text(s string) Part {
	return Part{Text: s}
}

// Inline creates an inline binary part.
func Inline(mimeType string, data []byte) Part {
	return Part{MIMEType: mimeType, Data: data}
}

// IsInline reports whether p carries binary data.
func (p Part) IsInline() bool {
	return len(p.Data) > 0
}

// Request is a single generation call: a system instruction, an ordered
// user message, and an optional output schema. A nil Schema requests free text.
type Request struct {
	System string
	Parts  []Part
	Schema *Schema
}

// Usage reports token consumption for a call.
type Usage struct {
	PromptTokens int32 `json:"prompt_tokens"`
	OutputTokens int32 `json:"output_tokens"`
	TotalTokens  int32 `json:"total_tokens"`
}

// Response is the concatenated text output of the first candidate.
type Response struct {
	Content string `json:"content"`
	Model   string `json:"model"`
	Usage   Usage  `json:"usage"`
}

// Client issues generation requests. Implementations make exactly one
// upstream attempt per call and honor ctx cancellation.
type Client interface {
	Generate(ctx context.Context, req Request) (*Response, error)
	Close() error
}
