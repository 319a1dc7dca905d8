package colloquy

import (
	"context"
	"log/slog"
	"time"

	"github.com/aretw0/colloquy/internal/actions"
	"github.com/aretw0/colloquy/internal/executor"
	"github.com/aretw0/colloquy/internal/logging"
	"github.com/aretw0/colloquy/internal/prompt"
	"github.com/aretw0/colloquy/internal/variables"
	"github.com/aretw0/colloquy/pkg/adapters/memory"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/ports"
)

// Engine is the high-level entry point of the library.
// It is safe for concurrent use across sessions; turns of the same session
// must be serialized by the caller (see pkg/session).
type Engine struct {
	exec      *executor.Executor
	llm       ports.LLMProvider
	templates ports.TemplateProvider
	registry  *actions.Registry
	generate  *ports.GenerateConfig
	hooks     domain.LifecycleHooks
	logger    *slog.Logger
	cacheTTL  time.Duration
	noMonitor bool
}

// Option defines a functional option for configuring the Engine.
type Option func(*Engine)

// WithLLM sets the language model used by actions and the monitor.
func WithLLM(llm ports.LLMProvider) Option {
	return func(e *Engine) {
		e.llm = llm
	}
}

// WithTemplates sets the prompt template provider.
// Without it the embedded default templates are used.
func WithTemplates(t ports.TemplateProvider) Option {
	return func(e *Engine) {
		e.templates = t
	}
}

// WithLogger sets a custom structured logger for the engine.
func WithLogger(logger *slog.Logger) Option {
	return func(e *Engine) {
		e.logger = logger
	}
}

// WithLifecycleHooks registers observability hooks.
func WithLifecycleHooks(hooks domain.LifecycleHooks) Option {
	return func(e *Engine) {
		e.hooks = hooks
	}
}

// WithRegistry replaces the action registry, e.g. to add custom action types.
func WithRegistry(r *actions.Registry) Option {
	return func(e *Engine) {
		e.registry = r
	}
}

// WithGenerateConfig sets model, temperature and token limits for LLM calls.
func WithGenerateConfig(cfg ports.GenerateConfig) Option {
	return func(e *Engine) {
		e.generate = &cfg
	}
}

// WithScriptCacheTTL expires parsed scripts after ttl of disuse (default: never).
func WithScriptCacheTTL(ttl time.Duration) Option {
	return func(e *Engine) {
		e.cacheTTL = ttl
	}
}

// WithoutMonitor disables the monitor analysis after in-progress turns.
func WithoutMonitor() Option {
	return func(e *Engine) {
		e.noMonitor = true
	}
}

// New initializes an Engine.
func New(opts ...Option) *Engine {
	eng := &Engine{}
	for _, opt := range opts {
		opt(eng)
	}

	if eng.logger == nil {
		eng.logger = logging.NewNop()
	}
	if eng.templates == nil {
		defaults := memory.NewTemplates()
		prompt.SeedDefaults(defaults, "")
		eng.templates = defaults
	}

	execOpts := []executor.Option{
		executor.WithLogger(eng.logger),
		executor.WithLifecycleHooks(eng.hooks),
		executor.WithRegistry(eng.registry),
		executor.WithScriptCacheTTL(eng.cacheTTL),
	}
	if eng.generate != nil {
		execOpts = append(execOpts, executor.WithGenerateConfig(*eng.generate))
	}
	if eng.noMonitor {
		execOpts = append(execOpts, executor.WithoutMonitor())
	}
	eng.exec = executor.New(eng.llm, eng.templates, execOpts...)
	return eng
}

// VariableOp is one entry of a turn's variable operation log.
type VariableOp = variables.OpRecord

// TurnResult is the outcome of one external call.
type TurnResult struct {
	State *domain.ExecutionState
	// Result is nil when no action ran.
	Result      *domain.ActionResult
	VariableOps []VariableOp
}

// ExecuteSession runs one turn of the script for a session and returns the next state.
// state is nil on the first call; input is nil when the user has not spoken.
// Script errors are returned as errors; action failures as a state with Status error.
func (e *Engine) ExecuteSession(ctx context.Context, scriptSource []byte, sessionID string, state *domain.ExecutionState, input *string) (*domain.ExecutionState, error) {
	return e.exec.ExecuteSession(ctx, scriptSource, sessionID, state, input)
}

// Turn is ExecuteSession plus the action result and the variable operation log.
func (e *Engine) Turn(ctx context.Context, scriptSource []byte, sessionID string, state *domain.ExecutionState, input *string) (*TurnResult, error) {
	res, err := e.exec.Turn(ctx, scriptSource, sessionID, state, input)
	if err != nil {
		return nil, err
	}
	return &TurnResult{State: res.State, Result: res.Result, VariableOps: res.VariableOps}, nil
}

// Validate parses and validates a script without running it.
func (e *Engine) Validate(scriptSource []byte) (*domain.Script, error) {
	return e.exec.LoadScript(scriptSource)
}

// ActionTypes lists the action types the engine can run.
func (e *Engine) ActionTypes() []string {
	if e.registry != nil {
		return e.registry.Types()
	}
	return actions.DefaultRegistry().Types()
}
