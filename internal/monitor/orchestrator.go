// Package monitor runs the advisory analysis that follows every in-progress
// action turn and queues feedback for the action's next round.
package monitor

import (
	"context"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/aretw0/colloquy/internal/llmutil"
	"github.com/aretw0/colloquy/internal/logging"
	"github.com/aretw0/colloquy/internal/prompt"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/ports"
)

// historyRounds bounds how many earlier analyses feed the monitor prompt.
const historyRounds = 3

// Outcomes reported to OnMonitorAnalysis.
const (
	OutcomeIntervention = "intervention"
	OutcomeOK           = "ok"
	OutcomeFallback     = "fallback"
)

// Request describes the action turn to analyse.
type Request struct {
	ActionType string
	ActionID   string
	Result     *domain.ActionResult
	State      *domain.ExecutionState
	SessionID  string
	PhaseID    string
	TopicID    string
	Round      int
	MaxRounds  int
	// Content is the action's task, as configured in the script.
	Content string
}

// Orchestrator dispatches analyses to per-type handlers.
type Orchestrator struct {
	handlers  map[string]Handler
	llm       ports.LLMProvider
	generate  ports.GenerateConfig
	templates *prompt.Resolver
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
	now       func() time.Time
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// WithHooks sets the lifecycle hooks.
func WithHooks(h domain.LifecycleHooks) Option {
	return func(o *Orchestrator) { o.hooks = h }
}

// WithGenerateConfig sets the generation settings of monitor calls.
func WithGenerateConfig(cfg ports.GenerateConfig) Option {
	return func(o *Orchestrator) { o.generate = cfg }
}

// WithHandler registers (or replaces) a handler.
func WithHandler(h Handler) Option {
	return func(o *Orchestrator) { o.handlers[h.ActionType()] = h }
}

// New creates an orchestrator with the default handlers.
func New(llm ports.LLMProvider, templates *prompt.Resolver, opts ...Option) *Orchestrator {
	o := &Orchestrator{
		handlers:  make(map[string]Handler),
		llm:       llm,
		templates: templates,
		logger:    logging.NewNop(),
		now:       time.Now,
		generate:  ports.GenerateConfig{JSON: true},
	}
	for _, h := range DefaultHandlers() {
		o.handlers[h.ActionType()] = h
	}
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// Analyze evaluates one in-progress action turn and records the verdict in req.State.
// It returns nil for action types without a handler. It never fails: every
// problem yields the neutral analysis.
func (o *Orchestrator) Analyze(ctx context.Context, req Request) *domain.MonitorAnalysis {
	h, ok := o.handlers[req.ActionType]
	if !ok {
		return nil
	}

	analysis := o.analyze(ctx, h, req)

	outcome := OutcomeOK
	switch {
	case analysis.Metadata != nil && (analysis.Metadata.ParseError || analysis.Metadata.Error != ""):
		outcome = OutcomeFallback
	case analysis.InterventionNeeded:
		outcome = OutcomeIntervention
	}

	if req.State != nil {
		md := &req.State.Metadata
		md.MonitorFeedback = append(md.MonitorFeedback, domain.MonitorRecord{
			ActionID:   req.ActionID,
			ActionType: req.ActionType,
			PhaseID:    req.PhaseID,
			TopicID:    req.TopicID,
			Round:      req.Round,
			Analysis:   analysis,
			Timestamp:  o.now(),
		})
		if analysis.InterventionNeeded {
			md.LatestMonitorFeedback = RenderFeedback(analysis)
		}
	}

	if o.hooks.OnMonitorAnalysis != nil {
		o.hooks.OnMonitorAnalysis(ctx, &domain.MonitorEvent{
			EventBase: domain.EventBase{
				Timestamp: o.now(),
				Type:      domain.EventMonitorAnalysis,
				SessionID: req.SessionID,
			},
			ActionID:   req.ActionID,
			ActionType: req.ActionType,
			Outcome:    outcome,
		})
	}

	o.logger.Debug("Monitor analysis",
		"session_id", req.SessionID,
		"action_id", req.ActionID,
		"round", req.Round,
		"outcome", outcome,
	)
	return &analysis
}

func (o *Orchestrator) analyze(ctx context.Context, h Handler, req Request) domain.MonitorAnalysis {
	var projectID, scheme string
	if req.State != nil && req.State.Metadata.SessionConfig != nil {
		projectID = req.State.Metadata.SessionConfig.ProjectID
		scheme = req.State.Metadata.SessionConfig.TemplateScheme
	}

	name := prompt.TemplateName(req.ActionType, true)
	tmpl, err := o.templates.Resolve(ctx, projectID, scheme, name)
	if err != nil {
		return neutral("monitor template unavailable", &domain.MonitorMetadata{Error: err.Error(), Template: name})
	}

	text := prompt.Render(tmpl, h.Vars(req, o.prior(req)))
	gen, err := llmutil.Call(ctx, o.llm, o.generate, o.hooks, req.SessionID, llmutil.PurposeMonitor, text)
	if err != nil {
		o.logger.Warn("Monitor LLM call failed", "session_id", req.SessionID, "action_id", req.ActionID, "error", err)
		return neutral("monitor call failed", &domain.MonitorMetadata{Error: err.Error(), Template: name})
	}

	parsed, out, err := llmutil.ParseJSON[domain.MonitorAnalysis](gen.Text)
	if err != nil {
		o.logger.Warn("Monitor reply could not be parsed", "session_id", req.SessionID, "action_id", req.ActionID, "error", err)
		return neutral("monitor reply could not be parsed", &domain.MonitorMetadata{
			ParseError: true,
			RetryCount: out.Attempts,
			Error:      err.Error(),
			Template:   name,
		})
	}

	parsed.Metadata = &domain.MonitorMetadata{
		RetryCount:    out.Attempts,
		ParseStrategy: string(out.Strategy),
		Template:      name,
	}
	if parsed.InterventionLevel == "" {
		parsed.InterventionLevel = "none"
	}
	return *parsed
}

// prior returns the latest analyses of the same action, oldest first.
func (o *Orchestrator) prior(req Request) []domain.MonitorRecord {
	if req.State == nil {
		return nil
	}
	var out []domain.MonitorRecord
	for _, r := range req.State.Metadata.MonitorFeedback {
		if r.ActionID == req.ActionID {
			out = append(out, r)
		}
	}
	if len(out) > historyRounds {
		out = out[len(out)-historyRounds:]
	}
	return out
}

// ShouldTriggerOrchestration reports whether an analysis asks for a change in
// control flow. The monitor is advisory only, so it is always false.
func (o *Orchestrator) ShouldTriggerOrchestration(_ *domain.MonitorAnalysis) bool {
	return false
}

func neutral(reason string, md *domain.MonitorMetadata) domain.MonitorAnalysis {
	a := domain.NeutralAnalysis(reason)
	a.Metadata = md
	return a
}

// RenderFeedback formats an analysis as the block injected into the next action prompt.
func RenderFeedback(a domain.MonitorAnalysis) string {
	var b strings.Builder
	b.WriteString("## Guidance from the conversation monitor\n")
	line := func(label, v string) {
		if v = strings.TrimSpace(v); v != "" {
			fmt.Fprintf(&b, "- %s: %s\n", label, v)
		}
	}
	line("Level", a.InterventionLevel)
	line("Why", a.InterventionReason)
	line("Feedback", a.FeedbackForAction)
	line("Strategy", a.StrategySuggestion)
	line("Approach", a.ModifiedApproach)
	line("Example", a.ExampleSuggestion)
	return strings.TrimRight(b.String(), "\n")
}
