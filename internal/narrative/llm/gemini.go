package llm

import (
	"context"
	"fmt"
	"strings"

	"google.golang.org/genai"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-2.5-flash-lite"

const maxOutputTokens = 1200

// Gemini generates text with the Gemini API.
type Gemini struct {
	client *genai.Client
	model  string
	schema *genai.Schema
}

// GeminiOption configures a Gemini generator.
type GeminiOption func(*Gemini)

// WithResponseSchema constrains the JSON the model may return.
func WithResponseSchema(s *genai.Schema) GeminiOption {
	return func(g *Gemini) {
		g.schema = s
	}
}

// NewGemini creates a Gemini client for apiKey.
func NewGemini(ctx context.Context, apiKey, model string, opts ...GeminiOption) (*Gemini, error) {
	apiKey = strings.TrimSpace(apiKey)
	if apiKey == "" {
		return nil, fmt.Errorf("gemini api key is required")
	}
	if model = strings.TrimSpace(model); model == "" {
		model = DefaultModel
	}
	client, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	g := &Gemini{client: client, model: model}
	for _, opt := range opts {
		opt(g)
	}
	return g, nil
}

// LinesSchema describes {"lines": [n strings]}.
func LinesSchema(n int) *genai.Schema {
	count := int64(n)
	return &genai.Schema{
		Type: genai.TypeObject,
		Properties: map[string]*genai.Schema{
			"lines": {
				Type:     genai.TypeArray,
				Items:    &genai.Schema{Type: genai.TypeString},
				MinItems: &count,
				MaxItems: &count,
			},
		},
		Required: []string{"lines"},
	}
}

// Generate sends the system prompt as a system instruction and the user
// payload as the only content.
func (g *Gemini) Generate(ctx context.Context, req Request) (Response, error) {
	cfg := &genai.GenerateContentConfig{
		Temperature:       genai.Ptr(req.Temperature),
		TopP:              genai.Ptr[float32](1),
		MaxOutputTokens:   maxOutputTokens,
		ResponseMIMEType:  "application/json",
		ResponseSchema:    g.schema,
		SystemInstruction: genai.NewContentFromText(req.System, genai.RoleUser),
	}
	contents := []*genai.Content{
		genai.NewContentFromText(req.User, genai.RoleUser),
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		return Response{}, fmt.Errorf("gemini generate: %w", err)
	}
	text := strings.TrimSpace(resp.Text())
	if text == "" {
		return Response{}, ErrEmpty
	}
	return Response{Text: text, Model: g.model}, nil
}
