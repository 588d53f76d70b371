// Package llm wraps the Gemini SDK behind two small interfaces: a text
// generator and an embedder. The rest of the pipeline depends only on
// these, so tests substitute fakes and the provider stays swappable.
package llm

import (
	"context"
	"fmt"

	"google.golang.org/genai"
)

// VectorDimension is the embedding size stored in pgvector. The Gemini
// embedding model outputs 3072 dimensions by default but supports
// truncation to 768 via OutputDimensionality; the database schema and
// every query vector must agree on this value.
const VectorDimension int32 = 768

// Turn is one conversation turn handed to the generator.
type Turn struct {
	Role string // "user" or "assistant"
	Text string
}

// GenerateRequest is the model-facing conversation: a style/system
// preamble, one context message, then the clamped turn window.
type GenerateRequest struct {
	System  string
	Context string
	Turns   []Turn
}

// Generator produces a text answer for a conversation.
type Generator interface {
	Generate(ctx context.Context, req GenerateRequest) (string, error)
	Name() string
}

// Embedder turns free text into a fixed-length vector.
type Embedder interface {
	Embed(ctx context.Context, text string) ([]float32, error)
}

// Client owns the Gemini connection and hands out model-bound generators
// and embedders.
type Client struct {
	genai *genai.Client
}

// NewClient connects to the Gemini API.
func NewClient(ctx context.Context, apiKey string) (*Client, error) {
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("creating gemini client: %w", err)
	}
	return &Client{genai: c}, nil
}

// Generator returns a Generator bound to the given model identifier.
func (c *Client) Generator(model string) Generator {
	return &geminiGenerator{client: c.genai, model: model}
}

// Embedder returns an Embedder bound to the given embedding model.
func (c *Client) Embedder(model string) Embedder {
	return &geminiEmbedder{client: c.genai, model: model}
}

type geminiGenerator struct {
	client *genai.Client
	model  string
}

func (g *geminiGenerator) Name() string { return g.model }

// Generate issues a single generation call. Quota failures are wrapped
// in *QuotaError so the orchestrator can apply its fallback policy.
func (g *geminiGenerator) Generate(ctx context.Context, req GenerateRequest) (string, error) {
	contents := make([]*genai.Content, 0, len(req.Turns)+1)
	if req.Context != "" {
		contents = append(contents, genai.NewContentFromText(req.Context, genai.RoleUser))
	}
	for _, turn := range req.Turns {
		contents = append(contents, genai.NewContentFromText(turn.Text, contentRole(turn.Role)))
	}

	cfg := &genai.GenerateContentConfig{}
	if req.System != "" {
		cfg.SystemInstruction = genai.NewContentFromText(req.System, genai.RoleUser)
	}

	resp, err := g.client.Models.GenerateContent(ctx, g.model, contents, cfg)
	if err != nil {
		if isQuotaSignal(err) {
			return "", &QuotaError{RetryAfter: retryHint(err), Err: err}
		}
		return "", fmt.Errorf("generate content (%s): %w", g.model, err)
	}
	return resp.Text(), nil
}

// contentRole maps a conversation role to the SDK role type. Anything
// that is not the assistant speaks as the user.
func contentRole(role string) genai.Role {
	if role == "assistant" {
		return genai.RoleModel
	}
	return genai.RoleUser
}

type geminiEmbedder struct {
	client *genai.Client
	model  string
}

func (e *geminiEmbedder) Embed(ctx context.Context, text string) ([]float32, error) {
	dim := VectorDimension
	resp, err := e.client.Models.EmbedContent(ctx, e.model,
		[]*genai.Content{genai.NewContentFromText(text, genai.RoleUser)},
		&genai.EmbedContentConfig{OutputDimensionality: &dim})
	if err != nil {
		return nil, fmt.Errorf("embed content (%s): %w", e.model, err)
	}
	if len(resp.Embeddings) == 0 || len(resp.Embeddings[0].Values) == 0 {
		return nil, fmt.Errorf("empty embedding response")
	}
	return resp.Embeddings[0].Values, nil
}
