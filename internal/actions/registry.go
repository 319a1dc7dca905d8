package actions

import (
	"fmt"
	"sort"
	"sync"

	"github.com/aretw0/colloquy/pkg/domain"
)

// Constructor builds an action from its script definition.
type Constructor func(id string, config map[string]any) (Action, error)

// Factory creates actions by type.
type Factory interface {
	Create(actionType, actionID string, config map[string]any) (Action, error)
}

// Registry maps action types to constructors.
type Registry struct {
	mu    sync.RWMutex
	ctors map[string]Constructor
}

// NewRegistry creates a new empty registry.
func NewRegistry() *Registry {
	return &Registry{
		ctors: make(map[string]Constructor),
	}
}

// DefaultRegistry returns a registry with the built-in ai_ask and ai_say actions.
func DefaultRegistry() *Registry {
	r := NewRegistry()
	r.Register(TypeAsk, NewAsk)
	r.Register(TypeSay, NewSay)
	return r
}

// Register adds a constructor. An existing type is overwritten.
func (r *Registry) Register(actionType string, ctor Constructor) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.ctors[actionType] = ctor
}

// Has reports whether actionType is registered.
func (r *Registry) Has(actionType string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.ctors[actionType]
	return ok
}

// Types returns the registered types in sorted order.
func (r *Registry) Types() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.ctors))
	for t := range r.ctors {
		out = append(out, t)
	}
	sort.Strings(out)
	return out
}

// Create builds an action. Unknown types return domain.ErrUnknownActionType.
func (r *Registry) Create(actionType, actionID string, config map[string]any) (Action, error) {
	r.mu.RLock()
	ctor, ok := r.ctors[actionType]
	r.mu.RUnlock()

	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrUnknownActionType, actionType)
	}
	a, err := ctor(actionID, config)
	if err != nil {
		return nil, fmt.Errorf("action %s (%s): %w", actionID, actionType, err)
	}
	return a, nil
}
