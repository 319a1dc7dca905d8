package monitor

import (
	"fmt"
	"strings"

	"github.com/aretw0/colloquy/internal/actions"
	"github.com/aretw0/colloquy/internal/prompt"
	"github.com/aretw0/colloquy/pkg/domain"
)

// Handler prepares the monitor prompt of one action type.
type Handler interface {
	ActionType() string
	// Vars returns the template placeholders for req. prior holds up to
	// historyRounds earlier analyses of the same action, oldest first.
	Vars(req Request, prior []domain.MonitorRecord) map[string]any
}

// NormalizeMetrics renders free-text metrics as stable "name: value" lines.
// Missing values are reported as "unknown".
func NormalizeMetrics(m *domain.ActionMetrics) string {
	if m == nil {
		m = &domain.ActionMetrics{}
	}
	field := func(v string) string {
		v = strings.TrimSpace(v)
		if v == "" {
			return "unknown"
		}
		return strings.ToLower(v)
	}
	reasoning := strings.TrimSpace(m.Reasoning)
	if reasoning == "" {
		reasoning = "none given"
	}
	return fmt.Sprintf("user_engagement: %s\ninformation_completeness: %s\nemotional_intensity: %s\nunderstanding_level: %s\nreasoning: %s",
		field(m.UserEngagement),
		field(m.InformationCompleteness),
		field(m.EmotionalIntensity),
		field(m.UnderstandingLevel),
		reasoning,
	)
}

func formatPrior(prior []domain.MonitorRecord) string {
	if len(prior) == 0 {
		return "(first analysed round)"
	}
	var b strings.Builder
	for i, r := range prior {
		if i > 0 {
			b.WriteByte('\n')
		}
		fmt.Fprintf(&b, "round %d: intervention=%t level=%s %s",
			r.Round, r.Analysis.InterventionNeeded, r.Analysis.InterventionLevel, r.Analysis.FeedbackForAction)
	}
	return strings.TrimSpace(b.String())
}

func baseVars(req Request, prior []domain.MonitorRecord) map[string]any {
	vars := map[string]any{
		"content":       req.Content,
		"ai_message":    "",
		"metrics":       NormalizeMetrics(nil),
		"history":       formatPrior(prior),
		"current_round": req.Round,
		"max_rounds":    req.MaxRounds,
	}
	if req.Result != nil {
		vars["ai_message"] = req.Result.AIMessage
		vars["metrics"] = NormalizeMetrics(req.Result.Metrics)
	}
	return vars
}

type askHandler struct{}

func (askHandler) ActionType() string { return actions.TypeAsk }

func (askHandler) Vars(req Request, prior []domain.MonitorRecord) map[string]any {
	vars := baseVars(req, prior)
	extracted := "(nothing extracted this round)"
	if req.Result != nil && len(req.Result.ExtractedVariables) > 0 {
		extracted = prompt.FormatVariables(req.Result.ExtractedVariables)
	}
	vars["extracted_variables"] = extracted
	return vars
}

type sayHandler struct{}

func (sayHandler) ActionType() string { return actions.TypeSay }

func (sayHandler) Vars(req Request, prior []domain.MonitorRecord) map[string]any {
	return baseVars(req, prior)
}

// DefaultHandlers returns the handlers of the built-in action types.
func DefaultHandlers() []Handler {
	return []Handler{askHandler{}, sayHandler{}}
}
