// Package executor runs one turn of a conversation script against a persisted
// execution state.
package executor

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/colloquy/internal/actions"
	"github.com/aretw0/colloquy/internal/compiler"
	"github.com/aretw0/colloquy/internal/dto"
	"github.com/aretw0/colloquy/internal/logging"
	"github.com/aretw0/colloquy/internal/monitor"
	"github.com/aretw0/colloquy/internal/prompt"
	"github.com/aretw0/colloquy/internal/statemanager"
	"github.com/aretw0/colloquy/internal/variables"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/ports"
)

// Executor is the stateless turn runner. Everything it needs between turns
// lives in the domain.ExecutionState passed in.
type Executor struct {
	registry  *actions.Registry
	loader    *compiler.Loader
	states    *statemanager.Manager
	templates *prompt.Resolver
	monitor   *monitor.Orchestrator
	handler   *ResultHandler
	llm       ports.LLMProvider
	generate  ports.GenerateConfig
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
	cacheTTL  time.Duration
	noMonitor bool
	now       func() time.Time
}

// Option configures an Executor.
type Option func(*Executor)

// WithLogger sets the logger.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Executor) {
		if logger != nil {
			e.logger = logger
		}
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Executor) {
		e.hooks = hooks
	}
}

// WithRegistry replaces the action registry.
func WithRegistry(r *actions.Registry) Option {
	return func(e *Executor) {
		if r != nil {
			e.registry = r
		}
	}
}

// WithGenerateConfig sets the generation settings of action calls.
func WithGenerateConfig(cfg ports.GenerateConfig) Option {
	return func(e *Executor) {
		e.generate = cfg
	}
}

// WithScriptCacheTTL expires parsed scripts after ttl of disuse.
func WithScriptCacheTTL(ttl time.Duration) Option {
	return func(e *Executor) {
		e.cacheTTL = ttl
	}
}

// WithoutMonitor disables the monitor analysis.
func WithoutMonitor() Option {
	return func(e *Executor) {
		e.noMonitor = true
	}
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(e *Executor) {
		e.now = now
	}
}

// New creates an executor. llm and templates may be nil for validation-only use.
func New(llm ports.LLMProvider, templates ports.TemplateProvider, opts ...Option) *Executor {
	e := &Executor{
		registry: actions.DefaultRegistry(),
		llm:      llm,
		generate: ports.GenerateConfig{JSON: true},
		logger:   logging.NewNop(),
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(e)
	}

	e.loader = compiler.NewLoader(e.registry.Has, e.cacheTTL)
	e.states = statemanager.New(e.registry, e.logger)
	e.templates = prompt.NewResolver(templates, e.logger)
	if !e.noMonitor {
		monitorCfg := e.generate
		monitorCfg.JSON = true
		e.monitor = monitor.New(llm, e.templates,
			monitor.WithLogger(e.logger),
			monitor.WithHooks(e.hooks),
			monitor.WithGenerateConfig(monitorCfg),
		)
	}
	e.handler = &ResultHandler{
		states:  e.states,
		monitor: e.monitor,
		hooks:   e.hooks,
		logger:  e.logger,
		now:     e.now,
	}
	return e
}

// TurnResult is the outcome of one external call.
type TurnResult struct {
	State *domain.ExecutionState
	// Result is nil when no action ran (completed session, exhausted script, failure before execution).
	Result *domain.ActionResult
	// VariableOps is the operation log of this turn only.
	VariableOps []variables.OpRecord
}

// LoadScript parses and validates source, using the cache.
func (e *Executor) LoadScript(source []byte) (*domain.Script, error) {
	return e.loader.Load(source)
}

// ExecuteSession runs one turn and returns the next state.
func (e *Executor) ExecuteSession(ctx context.Context, source []byte, sessionID string, state *domain.ExecutionState, input *string) (*domain.ExecutionState, error) {
	res, err := e.Turn(ctx, source, sessionID, state, input)
	if err != nil {
		return nil, err
	}
	return res.State, nil
}

// Turn runs one turn: at most one action round (one primary LLM call) plus the
// monitor analysis when the action stays in progress.
//
// Script errors return (nil, err) and leave state untouched. Action errors are
// reported through the returned state (Status error, Metadata.Error) with the
// position and variables of the input state. An action that reports
// Success=false keeps what its round produced (message, variables) but does
// not advance. The input state is never mutated.
func (e *Executor) Turn(ctx context.Context, source []byte, sessionID string, state *domain.ExecutionState, input *string) (*TurnResult, error) {
	script, err := e.loader.Load(source)
	if err != nil {
		return nil, err
	}

	if state == nil {
		state = domain.NewExecutionState(sessionID)
	}
	if state.Status == domain.StatusCompleted {
		return &TurnResult{State: state}, nil
	}

	if p := state.Position; p.PhaseIndex < 0 || p.TopicIndex < 0 || p.ActionIndex < 0 {
		return nil, fmt.Errorf("%w: negative position %d/%d/%d", domain.ErrScriptInvalid, p.PhaseIndex, p.TopicIndex, p.ActionIndex)
	}

	start := e.now()
	work := state.Clone()
	if work.SessionID == "" {
		work.SessionID = sessionID
	}
	logger := e.logger.With("session_id", work.SessionID)
	e.emitTurn(ctx, e.hooks.OnTurnStart, domain.EventTurnStart, work, 0)

	// A live action is rebuilt from its snapshot so a failed round cannot leak into state.
	work.CurrentAction = nil
	if state.CurrentAction != nil {
		snap := state.CurrentAction.Snapshot()
		work.Metadata.ActionState = &snap
	}

	variables.MigrateIfNeeded(work, e.now())
	e.states.SetupSessionMetadata(work, script)

	if work.Metadata.ActionState == nil && !seek(script, &work.Position) {
		work.Position.ClearIDs()
		work.Status = domain.StatusCompleted
		e.emitTurn(ctx, e.hooks.OnTurnEnd, domain.EventTurnEnd, work, e.now().Sub(start))
		return &TurnResult{State: work}, nil
	}
	e.states.RestorePositionIDs(work, script)
	pos := work.Position

	vars := variables.NewResolver(work.VariableStore, script, variables.WithLogger(logger), variables.WithClock(e.now))
	work.VariableStore = vars.Store()
	if check := vars.ValidateStoreStructure(); !check.Valid {
		logger.Warn("Repairing variable store", "errors", check.Errors)
		vars.RepairStoreStructure()
	}
	vars.SeedGlobals(script)

	if err := e.states.RestoreActionIfNeeded(work); err != nil {
		return e.fail(ctx, state, sessionID, pos.ActionID, err, start), nil
	}

	var action actions.Action
	if work.CurrentAction != nil {
		action = work.CurrentAction.(actions.Action)
	} else {
		cfg, ok := script.ActionAt(pos.PhaseIndex, pos.TopicIndex, pos.ActionIndex)
		if !ok {
			return nil, fmt.Errorf("%w: no action at %d/%d/%d", domain.ErrScriptInvalid, pos.PhaseIndex, pos.TopicIndex, pos.ActionIndex)
		}
		action, err = e.registry.Create(cfg.Type, cfg.ID, cfg.Config)
		if err != nil {
			return e.fail(ctx, state, sessionID, cfg.ID, err, start), nil
		}
	}

	if input != nil {
		work.ConversationHistory = append(work.ConversationHistory, domain.Message{
			Role:      domain.RoleUser,
			Content:   *input,
			ActionID:  action.ActionID(),
			Timestamp: e.now(),
		})
	}

	ac := &actions.Context{
		SessionID:       work.SessionID,
		Position:        pos,
		ProjectID:       script.ProjectID,
		TemplateScheme:  script.TemplateScheme,
		Variables:       vars.Flatten(pos),
		History:         work.ConversationHistory,
		MonitorFeedback: work.Metadata.LatestMonitorFeedback,
		LLM:             e.llm,
		Generate:        e.generate,
		Templates:       e.templates,
		Hooks:           e.hooks,
		Logger:          logger,
	}
	if sc := work.Metadata.SessionConfig; sc != nil {
		ac.ProjectID = sc.ProjectID
		ac.TemplateScheme = sc.TemplateScheme
	}

	logger.Debug("Executing action",
		"action_id", action.ActionID(),
		"action_type", action.ActionType(),
		"phase_id", pos.PhaseID,
		"topic_id", pos.TopicID,
		"round", action.CurrentRound()+1,
	)

	res, err := action.Execute(ctx, ac, input)
	if err != nil {
		return e.fail(ctx, state, sessionID, action.ActionID(), err, start), nil
	}

	switch {
	case !res.Success:
		logger.Error("Action reported failure", "action_id", action.ActionID(), "error", res.Error)
		e.handler.HandleFailed(work, action, res, vars)
	case res.Completed:
		e.handler.HandleCompleted(ctx, work, action, res, vars)
		e.handler.PrepareNext(work, script)
	default:
		e.handler.HandleIncomplete(ctx, work, action, res, vars, actionContent(action))
	}

	if work.Variables == nil {
		work.Variables = make(map[string]any)
	}
	for k, v := range vars.Flatten(pos) {
		work.Variables[k] = v
	}

	e.emitTurn(ctx, e.hooks.OnTurnEnd, domain.EventTurnEnd, work, e.now().Sub(start))
	return &TurnResult{State: work, Result: res, VariableOps: vars.Ops()}, nil
}

// fail returns a copy of the committed state marked as failed.
func (e *Executor) fail(ctx context.Context, committed *domain.ExecutionState, sessionID, actionID string, err error, start time.Time) *TurnResult {
	out := committed.Clone()
	if out.SessionID == "" {
		out.SessionID = sessionID
	}
	out.Status = domain.StatusError
	out.Metadata.Error = &domain.ExecutionError{
		Message:   err.Error(),
		ActionID:  actionID,
		Timestamp: e.now(),
	}
	e.logger.Error("Action execution failed", "session_id", out.SessionID, "action_id", actionID, "error", err)
	e.emitTurn(ctx, e.hooks.OnTurnEnd, domain.EventTurnEnd, out, e.now().Sub(start))
	return &TurnResult{State: out}
}

func (e *Executor) emitTurn(ctx context.Context, hook func(context.Context, *domain.TurnEvent), typ domain.EventType, state *domain.ExecutionState, d time.Duration) {
	if hook == nil {
		return
	}
	hook(ctx, &domain.TurnEvent{
		EventBase: domain.EventBase{
			Timestamp: e.now(),
			Type:      typ,
			SessionID: state.SessionID,
		},
		Position: state.Position,
		Status:   state.Status,
		Duration: d,
	})
}

// actionContent returns the configured task of an action for the monitor prompt.
func actionContent(a actions.Action) string {
	var cfg struct {
		Content string `mapstructure:"content"`
	}
	if err := dto.DecodeConfig(a.Snapshot().Config, &cfg); err != nil {
		return ""
	}
	return cfg.Content
}
