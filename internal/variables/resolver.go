// Package variables resolves and stores script variables across the four
// scopes (global, session, phase, topic).
package variables

import (
	"log/slog"
	"sort"
	"time"

	"github.com/aretw0/colloquy/internal/logging"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/schema"
)

// Operation names recorded in the operation log.
const (
	OpSet  = "set"
	OpSkip = "skip"
)

// OpRecord is one entry of the in-memory operation log.
type OpRecord struct {
	ActionID     string
	Operation    string
	VariableName string
	Scope        domain.Scope
	Value        any
	Timestamp    time.Time
}

// Resolver reads and writes a VariableStore using the script's declarations.
// It is not safe for concurrent use; one resolver serves one turn.
type Resolver struct {
	store  *domain.VariableStore
	decls  map[string]domain.VariableDeclaration
	types  schema.Schema
	logger *slog.Logger
	now    func() time.Time
	ops    []OpRecord
}

// Option configures a Resolver.
type Option func(*Resolver)

// WithLogger sets the logger for state-integrity warnings.
func WithLogger(logger *slog.Logger) Option {
	return func(r *Resolver) {
		if logger != nil {
			r.logger = logger
		}
	}
}

// WithClock overrides the time source (tests).
func WithClock(now func() time.Time) Option {
	return func(r *Resolver) {
		r.now = now
	}
}

// NewResolver wraps store. script may be nil, in which case every variable is undeclared.
// A nil store is replaced by a fresh one.
func NewResolver(store *domain.VariableStore, script *domain.Script, opts ...Option) *Resolver {
	if store == nil {
		store = domain.NewVariableStore()
	}
	r := &Resolver{
		store:  store,
		decls:  map[string]domain.VariableDeclaration{},
		types:  schema.Schema{},
		logger: logging.NewNop(),
		now:    time.Now,
	}
	for _, opt := range opts {
		opt(r)
	}

	if script != nil {
		r.decls = script.ScopeDeclarations()
		declared := make(map[string]string, len(r.decls))
		for name, d := range r.decls {
			declared[name] = d.Type
		}
		types, err := schema.ParseDeclarations(declared)
		if err != nil {
			r.logger.Warn("Ignoring variable type declarations", "error", err)
		} else {
			r.types = types
		}
	}
	return r
}

// Store returns the underlying store.
func (r *Resolver) Store() *domain.VariableStore {
	return r.store
}

// Ops returns a copy of the operation log.
func (r *Resolver) Ops() []OpRecord {
	out := make([]OpRecord, len(r.ops))
	copy(out, r.ops)
	return out
}

// ResolveVariable returns the first value found scanning topic, phase, session
// and then global scope. It returns nil when the variable is not set anywhere.
func (r *Resolver) ResolveVariable(name string, pos domain.Position) *domain.VariableValue {
	if pos.TopicID != "" {
		if v, ok := r.store.Topic[pos.TopicID][name]; ok {
			return &v
		}
	}
	if pos.PhaseID != "" {
		if v, ok := r.store.Phase[pos.PhaseID][name]; ok {
			return &v
		}
	}
	if v, ok := r.store.Session[name]; ok {
		return &v
	}
	if v, ok := r.store.Global[name]; ok {
		return &v
	}
	return nil
}

// DetermineScope returns the declared scope of name. Undeclared variables live in topic scope.
func (r *Resolver) DetermineScope(name string) domain.Scope {
	if d, ok := r.decls[name]; ok && d.Scope != "" {
		return d.Scope
	}
	return domain.ScopeTopic
}

// SetVariable writes value into the given scope.
// Phase and topic writes need the matching id in pos; without it the write is
// logged and skipped. It reports whether the value was stored.
func (r *Resolver) SetVariable(name string, value any, scope domain.Scope, pos domain.Position, source string) bool {
	if err := r.types.Check(name, value); err != nil {
		r.logger.Warn("Variable does not match its declared type", "variable", name, "error", err)
	}

	typ := schema.Infer(value)
	if t, ok := r.types[name]; ok {
		typ = t.Name()
	}
	now := r.now()
	v := domain.VariableValue{
		Value:       value,
		Type:        typ,
		Source:      source,
		LastUpdated: now,
		Scope:       scope,
	}

	switch scope {
	case domain.ScopeGlobal:
		if r.store.Global == nil {
			r.store.Global = make(map[string]domain.VariableValue)
		}
		r.store.Global[name] = v
	case domain.ScopeSession:
		if r.store.Session == nil {
			r.store.Session = make(map[string]domain.VariableValue)
		}
		r.store.Session[name] = v
	case domain.ScopePhase:
		if pos.PhaseID == "" {
			r.skip(name, value, scope, pos, "missing phase id")
			return false
		}
		r.store.Phase = setNested(r.store.Phase, pos.PhaseID, name, v)
	case domain.ScopeTopic:
		if pos.TopicID == "" {
			r.skip(name, value, scope, pos, "missing topic id")
			return false
		}
		r.store.Topic = setNested(r.store.Topic, pos.TopicID, name, v)
	default:
		r.skip(name, value, scope, pos, "unknown scope")
		return false
	}

	r.ops = append(r.ops, OpRecord{
		ActionID:     pos.ActionID,
		Operation:    OpSet,
		VariableName: name,
		Scope:        scope,
		Value:        value,
		Timestamp:    now,
	})
	return true
}

// SetAll stores every entry of vars in its declared scope, in name order.
func (r *Resolver) SetAll(vars map[string]any, pos domain.Position, source string) {
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		r.SetVariable(name, vars[name], r.DetermineScope(name), pos, source)
	}
}

func (r *Resolver) skip(name string, value any, scope domain.Scope, pos domain.Position, reason string) {
	r.logger.Warn("Skipping variable write",
		"variable", name,
		"scope", scope,
		"reason", reason,
		"phase_id", pos.PhaseID,
		"topic_id", pos.TopicID,
		"action_id", pos.ActionID,
	)
	r.ops = append(r.ops, OpRecord{
		ActionID:     pos.ActionID,
		Operation:    OpSkip,
		VariableName: name,
		Scope:        scope,
		Value:        value,
		Timestamp:    r.now(),
	})
}

func setNested(m map[string]map[string]domain.VariableValue, id, name string, v domain.VariableValue) map[string]map[string]domain.VariableValue {
	if m == nil {
		m = make(map[string]map[string]domain.VariableValue)
	}
	inner := m[id]
	if inner == nil {
		inner = make(map[string]domain.VariableValue)
		m[id] = inner
	}
	inner[name] = v
	return m
}

// Flatten merges the values visible at pos into a single map.
// Narrower scopes override wider ones: global < session < phase < topic.
func (r *Resolver) Flatten(pos domain.Position) map[string]any {
	out := make(map[string]any)
	put := func(vars map[string]domain.VariableValue) {
		for k, v := range vars {
			out[k] = v.Value
		}
	}
	put(r.store.Global)
	put(r.store.Session)
	if pos.PhaseID != "" {
		put(r.store.Phase[pos.PhaseID])
	}
	if pos.TopicID != "" {
		put(r.store.Topic[pos.TopicID])
	}
	return out
}

// SeedGlobals writes the script's globals into global scope. Existing values are kept.
func (r *Resolver) SeedGlobals(script *domain.Script) {
	if script == nil {
		return
	}
	names := make([]string, 0, len(script.Globals))
	for name := range script.Globals {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		if _, exists := r.store.Global[name]; exists {
			continue
		}
		r.SetVariable(name, script.Globals[name], domain.ScopeGlobal, domain.Position{}, domain.SourceScript)
	}
}
