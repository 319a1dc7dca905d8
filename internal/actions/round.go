package actions

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/aretw0/colloquy/internal/dto"
	"github.com/aretw0/colloquy/internal/llmutil"
	"github.com/aretw0/colloquy/internal/prompt"
	"github.com/aretw0/colloquy/pkg/domain"
)

// round is the outcome of one prompt/LLM exchange.
type round struct {
	reply   dto.Reply
	metrics *domain.ActionMetrics
	debug   domain.DebugInfo
}

// converse resolves the action template, renders it with vars and asks the LLM.
// A reply that is not JSON is used verbatim as the message.
func converse(ctx context.Context, ac *Context, actionType string, vars map[string]any) (*round, error) {
	tmpl, err := ac.Templates.Resolve(ctx, ac.ProjectID, ac.TemplateScheme, prompt.TemplateName(actionType, false))
	if err != nil {
		return nil, err
	}

	gen, err := llmutil.Call(ctx, ac.LLM, ac.Generate, ac.Hooks, ac.SessionID, llmutil.PurposeAction, prompt.Render(tmpl, vars))
	if err != nil {
		return nil, fmt.Errorf("llm call failed: %w", err)
	}

	out := &round{debug: gen.Debug}
	reply, _, err := llmutil.ParseJSON[dto.Reply](gen.Text)
	if err != nil {
		if ac.Logger != nil {
			ac.Logger.Warn("Action reply is not JSON, using raw text", "action_type", actionType, "error", err)
		}
		out.reply = dto.Reply{Message: llmutil.Trim(gen.Text)}
		return out, nil
	}
	out.reply = *reply

	if m, err := dto.DecodeMetrics(reply.Metrics); err != nil {
		if ac.Logger != nil {
			ac.Logger.Warn("Ignoring malformed metrics", "action_type", actionType, "error", err)
		}
	} else {
		out.metrics = m
	}
	return out, nil
}

// commonVars are the placeholders shared by every action template.
func commonVars(ac *Context, content string, current, maxRounds int, input *string) map[string]any {
	userInput := "(the user has not replied yet)"
	if input != nil {
		userInput = *input
	}
	return map[string]any{
		"content":          prompt.Render(content, ac.Variables),
		"history":          prompt.FormatHistory(ac.History, historyWindow),
		"variables":        prompt.FormatVariables(ac.Variables),
		"current_round":    current,
		"max_rounds":       maxRounds,
		"monitor_feedback": ac.MonitorFeedback,
		"user_input":       userInput,
	}
}

func (b *base) result(r *round, completed bool, decision domain.ExitDecision) *domain.ActionResult {
	debug := r.debug
	return &domain.ActionResult{
		Success:            true,
		Completed:          completed,
		AIMessage:          strings.TrimSpace(r.reply.Message),
		Metrics:            r.metrics,
		ProgressSuggestion: r.reply.ProgressSuggestion,
		ExitDecision:       &decision,
		DebugInfo:          &debug,
		Rounds: &domain.RoundRecord{
			CurrentRound: b.current,
			MaxRounds:    b.maxRounds,
			UpdatedAt:    time.Now(),
		},
	}
}
