package actions

import (
	"context"
	"fmt"

	"github.com/aretw0/colloquy/internal/dto"
	"github.com/aretw0/colloquy/pkg/domain"
)

// Say delivers content, optionally over several rounds until it lands.
type Say struct {
	base
	cfg dto.SayConfig
}

// NewSay builds an ai_say action.
func NewSay(id string, config map[string]any) (Action, error) {
	var cfg dto.SayConfig
	if err := dto.DecodeConfig(config, &cfg); err != nil {
		return nil, err
	}
	if cfg.MaxRounds <= 0 {
		cfg.MaxRounds = 1
	}
	return &Say{
		base: base{id: id, typ: TypeSay, config: config, maxRounds: cfg.MaxRounds},
		cfg:  cfg,
	}, nil
}

func (s *Say) Execute(ctx context.Context, ac *Context, input *string) (*domain.ActionResult, error) {
	s.current++

	vars := commonVars(ac, s.cfg.Content, s.current, s.maxRounds, input)
	vars["require_acknowledgment"] = s.cfg.RequireAcknowledgment

	r, err := converse(ctx, ac, TypeSay, vars)
	if err != nil {
		return nil, fmt.Errorf("ai_say %s: %w", s.id, err)
	}

	d := domain.ExitDecision{Round: s.current}
	switch {
	case s.maxRounds <= 1:
		d.ShouldExit = true
		d.Source = domain.ExitSourceSingle
		d.Reason = "single round message"
	case input != nil && r.reply.ShouldExit:
		d.ShouldExit = true
		d.Source = domain.ExitSourceLLM
		d.Reason = r.reply.ExitReason
	case s.current >= s.maxRounds:
		d.ShouldExit = true
		d.Source = domain.ExitSourceMaxRounds
		d.Reason = fmt.Sprintf("reached %d rounds", s.maxRounds)
	default:
		d.Source = domain.ExitSourceLLM
		d.Reason = r.reply.ExitReason
	}

	return s.result(r, d.ShouldExit, d), nil
}
