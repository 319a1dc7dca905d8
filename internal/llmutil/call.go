package llmutil

import (
	"context"
	"errors"
	"time"

	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/ports"
)

// ErrNoProvider is returned when a call is attempted without an LLM provider.
var ErrNoProvider = errors.New("no LLM provider configured")

// Purposes reported to OnLLMCall.
const (
	PurposeAction  = "action"
	PurposeMonitor = "monitor"
)

// Call performs one provider round-trip, fills the missing debug fields and
// reports the call to hooks.OnLLMCall.
func Call(ctx context.Context, llm ports.LLMProvider, cfg ports.GenerateConfig, hooks domain.LifecycleHooks, sessionID, purpose, prompt string) (*ports.Generation, error) {
	if llm == nil {
		return nil, ErrNoProvider
	}

	start := time.Now()
	gen, err := llm.GenerateText(ctx, prompt, cfg)
	elapsed := time.Since(start)

	if hooks.OnLLMCall != nil {
		hooks.OnLLMCall(ctx, &domain.LLMEvent{
			EventBase: domain.EventBase{
				Timestamp: start,
				Type:      domain.EventLLMCall,
				SessionID: sessionID,
			},
			Purpose:  purpose,
			Duration: elapsed,
			Failed:   err != nil,
		})
	}
	if err != nil {
		return nil, err
	}

	if gen.Debug.Prompt == "" {
		gen.Debug.Prompt = prompt
	}
	if gen.Debug.Response == "" {
		gen.Debug.Response = gen.Text
	}
	if gen.Debug.Duration == 0 {
		gen.Debug.Duration = elapsed
	}
	if gen.Debug.Timestamp.IsZero() {
		gen.Debug.Timestamp = start
	}
	if gen.Debug.Model == "" {
		gen.Debug.Model = cfg.Model
	}
	return gen, nil
}
