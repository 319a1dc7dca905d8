// Package llm provides ports.LLMProvider implementations for Gemini and Ollama.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/aretw0/colloquy/pkg/ports"
)

// Backend names accepted by New.
const (
	BackendGemini = "gemini"
	BackendOllama = "ollama"
)

// ErrEmptyResponse is returned when the model answered with no text.
var ErrEmptyResponse = errors.New("empty response from model")

// Config selects and configures a backend.
type Config struct {
	Backend    string
	Model      string
	APIKey     string
	OllamaHost string
}

// New builds the provider named by cfg.Backend (default gemini).
func New(ctx context.Context, cfg Config) (ports.LLMProvider, error) {
	backend := strings.ToLower(strings.TrimSpace(cfg.Backend))
	if backend == "" {
		backend = BackendGemini
	}
	switch backend {
	case BackendGemini:
		return NewGeminiFromConfig(ctx, cfg)
	case BackendOllama:
		return NewOllamaFromConfig(cfg)
	default:
		return nil, fmt.Errorf("unsupported LLM backend: %s", cfg.Backend)
	}
}

func modelOr(requested, fallback string) string {
	if m := strings.TrimSpace(requested); m != "" {
		return m
	}
	return fallback
}
