// Package actions implements the executable steps of a script.
//
// An Action is a pure function of its type, config and round counters, so it can
// be rebuilt between turns from a domain.ActionStateSnapshot.
package actions

import (
	"context"
	"log/slog"
	"maps"
	"slices"

	"github.com/aretw0/colloquy/internal/prompt"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/ports"
)

// Built-in action types.
const (
	TypeAsk = "ai_ask"
	TypeSay = "ai_say"
)

// historyWindow is how many recent messages go into an action prompt.
const historyWindow = 10

// Action is a live, multi-round script step.
type Action interface {
	domain.LiveAction

	// Execute runs one round. input is nil when the user has not spoken yet.
	Execute(ctx context.Context, ac *Context, input *string) (*domain.ActionResult, error)

	// RestoreRounds sets the round counters of a rebuilt action.
	RestoreRounds(current, maxRounds int)

	// RestoreCollected sets the outputs a rebuilt action had already extracted.
	RestoreCollected(names []string)

	CurrentRound() int
	MaxRounds() int
}

// Context carries everything an action may read during a round.
type Context struct {
	SessionID      string
	Position       domain.Position
	ProjectID      string
	TemplateScheme string

	// Variables is the flattened view visible at Position.
	Variables map[string]any
	History   []domain.Message

	// MonitorFeedback is the feedback block queued by the previous round's analysis.
	MonitorFeedback string

	LLM       ports.LLMProvider
	Generate  ports.GenerateConfig
	Templates *prompt.Resolver
	Hooks     domain.LifecycleHooks
	Logger    *slog.Logger
}

// base holds what every action shares: identity, raw config, round counters
// and the outputs extracted so far.
type base struct {
	id        string
	typ       string
	config    map[string]any
	current   int
	maxRounds int
	collected []string
}

func (b *base) ActionID() string   { return b.id }
func (b *base) ActionType() string { return b.typ }
func (b *base) CurrentRound() int  { return b.current }
func (b *base) MaxRounds() int     { return b.maxRounds }

func (b *base) RestoreRounds(current, maxRounds int) {
	b.current = current
	if maxRounds > 0 {
		b.maxRounds = maxRounds
	}
}

func (b *base) RestoreCollected(names []string) {
	b.collected = slices.Clone(names)
}

// collect remembers the names of vars, keeping the list sorted and unique.
func (b *base) collect(vars map[string]any) {
	for name := range vars {
		if !slices.Contains(b.collected, name) {
			b.collected = append(b.collected, name)
		}
	}
	slices.Sort(b.collected)
}

func (b *base) Snapshot() domain.ActionStateSnapshot {
	return domain.ActionStateSnapshot{
		ActionID:     b.id,
		ActionType:   b.typ,
		Config:       maps.Clone(b.config),
		CurrentRound: b.current,
		MaxRounds:    b.maxRounds,
		Collected:    slices.Clone(b.collected),
	}
}
