package model

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

const jsonMIMEType = "application/json"

type gemini struct {
	client      *genai.Client
	name        string
	temperature float32
	logger      *slog.Logger
}

// New creates the client for the configured provider.
func New(ctx context.Context, cfg *Config, logger *slog.Logger) (Client, error) {
	if cfg.Provider != ProviderGemini {
		return nil, fmt.Errorf("unknown model provider: %s", cfg.Provider)
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(cfg.APIKey))
	if err != nil {
		return nil, fmt.Errorf("create genai client: %w", err)
	}

	var temperature float32
	if cfg.Temperature != nil {
		temperature = *cfg.Temperature
	}

	return &gemini{
		client:      client,
		name:        cfg.Name,
		temperature: temperature,
		logger:      logger.With("system", "model", "provider", cfg.Provider),
	}, nil
}

func (g *gemini) Generate(ctx context.Context, req Request) (*Response, error) {
	m := g.client.GenerativeModel(g.name)
	m.SetTemperature(g.temperature)

	if req.System != "" {
		m.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.System)},
		}
	}

	if req.Schema != nil {
		m.ResponseMIMEType = jsonMIMEType
		m.ResponseSchema = toGenaiSchema(req.Schema)
	}

	resp, err := m.GenerateContent(ctx, toGenaiParts(req.Parts)...)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}

	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, ErrEmptyResponse
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			sb.WriteString(string(txt))
		}
	}

	result := &Response{
		Content: sb.String(),
		Model:   g.name,
	}

	if u := resp.UsageMetadata; u != nil {
		result.Usage = Usage{
			PromptTokens: u.PromptTokenCount,
			OutputTokens: u.CandidatesTokenCount,
			TotalTokens:  u.TotalTokenCount,
		}
	}

	g.logger.DebugContext(ctx, "generation complete",
		"model", g.name,
		"prompt_tokens", result.Usage.PromptTokens,
		"output_tokens", result.Usage.OutputTokens,
	)

	return result, nil
}

func (g *gemini) Close() error {
	return g.client.Close()
}

func toGenaiParts(parts []Part) []genai.Part {
	out := make([]genai.Part, 0, len(parts))
	for _, p := range parts {
		if p.IsInline() {
			out = append(out, genai.Blob{MIMEType: p.MIMEType, Data: p.Data})
			continue
		}
		out = append(out, genai.Text(p.Text))
	}
	return out
}

func toGenaiSchema(s *Schema) *genai.Schema {
	if s == nil {
		return nil
	}

	out := &genai.Schema{
		Type:        toGenaiType(s.Type),
		Description: s.Description,
		Nullable:    s.Nullable,
		Enum:        s.Enum,
		Required:    s.Required,
		Items:       toGenaiSchema(s.Items),
	}

	if len(s.Properties) > 0 {
		out.Properties = make(map[string]*genai.Schema, len(s.Properties))
		for name, prop := range s.Properties {
			out.Properties[name] = toGenaiSchema(prop)
		}
	}

	return out
}

func toGenaiType(t Type) genai.Type {
	switch t {
	case TypeObject:
		return genai.TypeObject
	case TypeArray:
		return genai.TypeArray
	case TypeString:
		return genai.TypeString
	case TypeNumber:
		return genai.TypeNumber
	case TypeInteger:
		return genai.TypeInteger
	case TypeBoolean:
		return genai.TypeBoolean
	default:
		return genai.TypeUnspecified
	}
}
