package variables

import (
	"time"

	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/schema"
)

// MigrateToVariableStore converts a flat variable map into a scoped store.
// Every entry lands in session scope with Source "migrated".
func MigrateToVariableStore(flat map[string]any, now time.Time) *domain.VariableStore {
	store := domain.NewVariableStore()
	for name, value := range flat {
		store.Session[name] = domain.VariableValue{
			Value:       value,
			Type:        schema.Infer(value),
			Source:      domain.SourceMigrated,
			LastUpdated: now,
			Scope:       domain.ScopeSession,
		}
	}
	return store
}

// MigrateIfNeeded creates the scoped store of a session that predates it.
// It does nothing when the store already exists and reports whether it migrated.
func MigrateIfNeeded(state *domain.ExecutionState, now time.Time) bool {
	if state == nil || state.VariableStore != nil {
		return false
	}
	state.VariableStore = MigrateToVariableStore(state.Variables, now)
	return true
}
