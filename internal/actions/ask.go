package actions

import (
	"context"
	"fmt"
	"slices"
	"strings"

	"github.com/aretw0/colloquy/internal/dto"
	"github.com/aretw0/colloquy/pkg/domain"
)

const defaultAskRounds = 3

// Ask asks the user for information until the answer qualifies.
type Ask struct {
	base
	cfg dto.AskConfig
}

// NewAsk builds an ai_ask action.
func NewAsk(id string, config map[string]any) (Action, error) {
	var cfg dto.AskConfig
	if err := dto.DecodeConfig(config, &cfg); err != nil {
		return nil, err
	}
	if cfg.MaxRounds <= 0 {
		cfg.MaxRounds = defaultAskRounds
	}
	return &Ask{
		base: base{id: id, typ: TypeAsk, config: config, maxRounds: cfg.MaxRounds},
		cfg:  cfg,
	}, nil
}

func (a *Ask) Execute(ctx context.Context, ac *Context, input *string) (*domain.ActionResult, error) {
	a.current++

	vars := commonVars(ac, a.cfg.Content, a.current, a.maxRounds, input)
	vars["outputs"] = a.describeOutputs()
	vars["exit_criteria"] = a.exitCriteria()

	r, err := converse(ctx, ac, TypeAsk, vars)
	if err != nil {
		return nil, fmt.Errorf("ai_ask %s: %w", a.id, err)
	}

	var extracted map[string]any
	if input != nil {
		extracted = a.filterOutputs(r.reply.ExtractedVariables)
		a.collect(extracted)
	}
	decision := a.decide(input, r.reply)

	res := a.result(r, decision.ShouldExit, decision)
	res.ExtractedVariables = extracted
	return res, nil
}

// decide applies the exit rules in order: no input, LLM verdict, outputs complete, round limit.
func (a *Ask) decide(input *string, reply dto.Reply) domain.ExitDecision {
	d := domain.ExitDecision{Round: a.current}
	switch {
	case input == nil:
		d.Reason = "awaiting user input"
	case reply.ShouldExit:
		d.ShouldExit = true
		d.Source = domain.ExitSourceLLM
		d.Reason = reply.ExitReason
	case a.outputsComplete():
		d.ShouldExit = true
		d.Source = domain.ExitSourceVariables
		d.Reason = "all outputs collected"
	case a.current >= a.maxRounds:
		d.ShouldExit = true
		d.Source = domain.ExitSourceMaxRounds
		d.Reason = fmt.Sprintf("reached %d rounds", a.maxRounds)
	default:
		d.Source = domain.ExitSourceLLM
		d.Reason = reply.ExitReason
	}
	return d
}

// outputsComplete reports whether this action has extracted every declared
// output. Values known before the action started do not count.
func (a *Ask) outputsComplete() bool {
	if len(a.cfg.Output) == 0 {
		return false
	}
	for _, o := range a.cfg.Output {
		if !slices.Contains(a.collected, o.Get) {
			return false
		}
	}
	return true
}

// filterOutputs keeps only declared outputs when the action declares any.
func (a *Ask) filterOutputs(vars map[string]any) map[string]any {
	if len(vars) == 0 {
		return nil
	}
	if len(a.cfg.Output) == 0 {
		return vars
	}
	out := make(map[string]any)
	for _, o := range a.cfg.Output {
		if present(vars, o.Get) {
			out[o.Get] = vars[o.Get]
		}
	}
	if len(out) == 0 {
		return nil
	}
	return out
}

func (a *Ask) describeOutputs() string {
	if len(a.cfg.Output) == 0 {
		return "(no specific variables)"
	}
	var b strings.Builder
	for i, o := range a.cfg.Output {
		if i > 0 {
			b.WriteByte('\n')
		}
		b.WriteString("- ")
		b.WriteString(o.Get)
		if o.Define != "" {
			b.WriteString(": ")
			b.WriteString(o.Define)
		}
	}
	return b.String()
}

func (a *Ask) exitCriteria() string {
	if a.cfg.Exit != "" {
		return a.cfg.Exit
	}
	return "The user has provided every piece of information listed above."
}

func present(vars map[string]any, name string) bool {
	v, ok := vars[name]
	if !ok || v == nil {
		return false
	}
	if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
		return false
	}
	return true
}
