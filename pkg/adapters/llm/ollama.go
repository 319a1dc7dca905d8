package llm

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"time"

	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/ports"
	"github.com/ollama/ollama/api"
)

const (
	ollamaDefault     = "phi4:latest"
	ollamaDefaultHost = "http://localhost:11434"
)

// Ollama implements ports.LLMProvider against an Ollama server.
type Ollama struct {
	client *api.Client
	model  string
}

// NewOllama wraps an existing client. An empty model uses the default.
func NewOllama(client *api.Client, model string) *Ollama {
	return &Ollama{client: client, model: modelOr(model, ollamaDefault)}
}

// NewOllamaFromConfig connects to cfg.OllamaHost, falling back to OLLAMA_HOST
// and then to the local default.
func NewOllamaFromConfig(cfg Config) (*Ollama, error) {
	if cfg.OllamaHost == "" {
		c, err := api.ClientFromEnvironment()
		if err == nil {
			return NewOllama(c, cfg.Model), nil
		}
		cfg.OllamaHost = ollamaDefaultHost
	}
	u, err := url.Parse(cfg.OllamaHost)
	if err != nil {
		return nil, fmt.Errorf("ollama: bad host %q: %w", cfg.OllamaHost, err)
	}
	return NewOllama(api.NewClient(u, http.DefaultClient), cfg.Model), nil
}

// GenerateText runs a non-streaming generation.
func (o *Ollama) GenerateText(ctx context.Context, prompt string, cfg ports.GenerateConfig) (*ports.Generation, error) {
	model := modelOr(cfg.Model, o.model)
	stream := false
	req := &api.GenerateRequest{
		Model:   model,
		Prompt:  prompt,
		Stream:  &stream,
		Options: map[string]any{},
	}
	if cfg.Temperature > 0 {
		req.Options["temperature"] = cfg.Temperature
	}
	if cfg.MaxTokens > 0 {
		req.Options["num_predict"] = cfg.MaxTokens
	}
	if cfg.JSON {
		req.Format = json.RawMessage(`"json"`)
	}

	start := time.Now()
	var out strings.Builder
	if err := o.client.Generate(ctx, req, func(gr api.GenerateResponse) error {
		out.WriteString(gr.Response)
		return nil
	}); err != nil {
		return nil, fmt.Errorf("ollama generate: %w", err)
	}
	if out.Len() == 0 {
		return nil, fmt.Errorf("ollama: %w", ErrEmptyResponse)
	}

	return &ports.Generation{
		Text: out.String(),
		Debug: domain.DebugInfo{
			Provider:  BackendOllama,
			Model:     model,
			Prompt:    prompt,
			Response:  out.String(),
			Duration:  time.Since(start),
			Timestamp: start,
		},
	}, nil
}
