package domain

import (
	"fmt"
	"time"
)

// Scope determines the lifetime and visibility of a stored variable.
type Scope string

const (
	ScopeGlobal  Scope = "global"
	ScopeSession Scope = "session"
	ScopePhase   Scope = "phase"
	ScopeTopic   Scope = "topic"
)

// Scopes lists every scope from the widest to the narrowest.
var Scopes = []Scope{ScopeGlobal, ScopeSession, ScopePhase, ScopeTopic}

// ParseScope converts a declaration string into a Scope.
func ParseScope(s string) (Scope, error) {
	switch Scope(s) {
	case ScopeGlobal, ScopeSession, ScopePhase, ScopeTopic:
		return Scope(s), nil
	default:
		return "", fmt.Errorf("unsupported scope: %q", s)
	}
}

// Variable sources used by the engine itself.
const (
	SourceMigrated = "migrated"
	SourceScript   = "script"
)

// VariableValue is a stored variable with its provenance.
type VariableValue struct {
	Value       any       `json:"value"`
	Type        string    `json:"type"`
	Source      string    `json:"source"`
	LastUpdated time.Time `json:"last_updated"`
	Scope       Scope     `json:"scope"`
}

// VariableStore holds the four variable partitions.
// Phase and Topic are keyed by phase/topic ID.
type VariableStore struct {
	Global  map[string]VariableValue            `json:"global"`
	Session map[string]VariableValue            `json:"session"`
	Phase   map[string]map[string]VariableValue `json:"phase"`
	Topic   map[string]map[string]VariableValue `json:"topic"`
}

// NewVariableStore returns a store with every partition allocated.
func NewVariableStore() *VariableStore {
	return &VariableStore{
		Global:  make(map[string]VariableValue),
		Session: make(map[string]VariableValue),
		Phase:   make(map[string]map[string]VariableValue),
		Topic:   make(map[string]map[string]VariableValue),
	}
}

// Clone returns a deep copy of the partition maps. Values are copied by assignment.
func (s *VariableStore) Clone() *VariableStore {
	if s == nil {
		return nil
	}
	out := &VariableStore{
		Global:  copyValues(s.Global),
		Session: copyValues(s.Session),
	}
	if s.Phase != nil {
		out.Phase = make(map[string]map[string]VariableValue, len(s.Phase))
		for id, vars := range s.Phase {
			out.Phase[id] = copyValues(vars)
		}
	}
	if s.Topic != nil {
		out.Topic = make(map[string]map[string]VariableValue, len(s.Topic))
		for id, vars := range s.Topic {
			out.Topic[id] = copyValues(vars)
		}
	}
	return out
}

func copyValues(src map[string]VariableValue) map[string]VariableValue {
	if src == nil {
		return nil
	}
	dst := make(map[string]VariableValue, len(src))
	for k, v := range src {
		dst[k] = v
	}
	return dst
}
