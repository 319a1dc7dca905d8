// Package dto holds the loosely-typed shapes exchanged with scripts and LLMs.
// Action configs use "mapstructure" tags so they decode straight from the
// script's config maps.
package dto

import (
	"fmt"

	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/mitchellh/mapstructure"
)

// OutputSpec names a variable an ai_ask action should extract.
type OutputSpec struct {
	Get    string `json:"get" mapstructure:"get"`
	Define string `json:"define,omitempty" mapstructure:"define"`
}

// AskConfig is the config block of an ai_ask action.
type AskConfig struct {
	Content   string       `json:"content" mapstructure:"content"`
	Output    []OutputSpec `json:"output,omitempty" mapstructure:"output"`
	MaxRounds int          `json:"max_rounds,omitempty" mapstructure:"max_rounds"`
	Exit      string       `json:"exit,omitempty" mapstructure:"exit"`
}

// SayConfig is the config block of an ai_say action.
type SayConfig struct {
	Content               string `json:"content" mapstructure:"content"`
	MaxRounds             int    `json:"max_rounds,omitempty" mapstructure:"max_rounds"`
	RequireAcknowledgment bool   `json:"require_acknowledgment,omitempty" mapstructure:"require_acknowledgment"`
}

// Reply is the JSON object actions ask the LLM for.
type Reply struct {
	Message            string         `json:"message"`
	ExtractedVariables map[string]any `json:"extracted_variables,omitempty"`
	ShouldExit         bool           `json:"should_exit"`
	ExitReason         string         `json:"exit_reason,omitempty"`
	ProgressSuggestion string         `json:"progress_suggestion,omitempty"`
	Metrics            map[string]any `json:"metrics,omitempty"`
}

// DecodeConfig decodes a script config map into out.
// Weak typing lets "3" or 3.0 fill an int field, as configs may come from JSON.
func DecodeConfig(config map[string]any, out any) error {
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		WeaklyTypedInput: true,
		Result:           out,
	})
	if err != nil {
		return err
	}
	if err := dec.Decode(config); err != nil {
		return fmt.Errorf("invalid action config: %w", err)
	}
	return nil
}

// DecodeMetrics normalizes the free-form metrics an LLM reports into ActionMetrics.
// Numbers and booleans become strings. A nil map yields nil.
func DecodeMetrics(raw map[string]any) (*domain.ActionMetrics, error) {
	if raw == nil {
		return nil, nil
	}
	var m domain.ActionMetrics
	if err := DecodeConfig(raw, &m); err != nil {
		return nil, err
	}
	return &m, nil
}
