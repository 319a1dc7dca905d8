package ports

import (
	"context"

	"github.com/aretw0/colloquy/pkg/domain"
)

// GenerateConfig tunes a single generation request.
type GenerateConfig struct {
	Model       string
	Temperature float32
	MaxTokens   int
	// JSON asks the provider to constrain the output to a JSON document when supported.
	JSON bool
}

// Generation is the provider answer together with its debug trace.
type Generation struct {
	Text  string
	Debug domain.DebugInfo
}

// LLMProvider defines how the engine talks to a language model.
// Errors propagate for primary actions and are absorbed by the monitor.
type LLMProvider interface {
	GenerateText(ctx context.Context, prompt string, cfg GenerateConfig) (*Generation, error)
}
