package llm

import (
	"context"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/ports"
	"google.golang.org/genai"
)

const geminiDefault = "gemini-2.0-flash"

// Gemini implements ports.LLMProvider with the Google Gen AI SDK.
type Gemini struct {
	client *genai.Client
	model  string
}

// NewGemini wraps an existing client. An empty model uses the default.
func NewGemini(client *genai.Client, model string) *Gemini {
	return &Gemini{client: client, model: modelOr(model, geminiDefault)}
}

// NewGeminiFromConfig creates a client from cfg.APIKey or GEMINI_API_KEY.
func NewGeminiFromConfig(ctx context.Context, cfg Config) (*Gemini, error) {
	apiKey := cfg.APIKey
	if apiKey == "" {
		apiKey = os.Getenv("GEMINI_API_KEY")
	}
	if apiKey == "" {
		return nil, fmt.Errorf("gemini: API key is not set (llm.api_key or GEMINI_API_KEY)")
	}
	c, err := genai.NewClient(ctx, &genai.ClientConfig{
		APIKey:  apiKey,
		Backend: genai.BackendGeminiAPI,
	})
	if err != nil {
		return nil, fmt.Errorf("gemini client init: %w", err)
	}
	return NewGemini(c, cfg.Model), nil
}

// GenerateText sends prompt as a single user turn.
func (g *Gemini) GenerateText(ctx context.Context, prompt string, cfg ports.GenerateConfig) (*ports.Generation, error) {
	model := modelOr(cfg.Model, g.model)
	gc := &genai.GenerateContentConfig{}
	if cfg.Temperature > 0 {
		gc.Temperature = genai.Ptr(cfg.Temperature)
	}
	if cfg.MaxTokens > 0 {
		gc.MaxOutputTokens = int32(cfg.MaxTokens)
	}
	if cfg.JSON {
		gc.ResponseMIMEType = "application/json"
	}

	start := time.Now()
	resp, err := g.client.Models.GenerateContent(ctx, model, genai.Text(prompt), gc)
	if err != nil {
		return nil, fmt.Errorf("gemini generate: %w", err)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, fmt.Errorf("gemini: %w", ErrEmptyResponse)
	}

	var text strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		text.WriteString(part.Text)
	}
	if text.Len() == 0 {
		return nil, fmt.Errorf("gemini: %w", ErrEmptyResponse)
	}

	return &ports.Generation{
		Text: text.String(),
		Debug: domain.DebugInfo{
			Provider:  BackendGemini,
			Model:     model,
			Prompt:    prompt,
			Response:  text.String(),
			Duration:  time.Since(start),
			Timestamp: start,
		},
	}, nil
}
