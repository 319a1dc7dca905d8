package variables

import (
	"fmt"
	"sort"

	"github.com/aretw0/colloquy/pkg/domain"
)

// ValidationResult describes the structural health of a store.
type ValidationResult struct {
	Valid  bool
	Errors []string
}

// ValidateStoreStructure checks that all four partitions exist and that the
// phase and topic partitions only hold allocated inner maps.
func (r *Resolver) ValidateStoreStructure() ValidationResult {
	var errs []string
	s := r.store

	if s.Global == nil {
		errs = append(errs, "Missing required scope: global")
	}
	if s.Session == nil {
		errs = append(errs, "Missing required scope: session")
	}
	if s.Phase == nil {
		errs = append(errs, "Missing required scope: phase")
	}
	if s.Topic == nil {
		errs = append(errs, "Missing required scope: topic")
	}

	for _, id := range sortedKeys(s.Phase) {
		if s.Phase[id] == nil {
			errs = append(errs, fmt.Sprintf("Invalid phase scope entry: %s", id))
		}
	}
	for _, id := range sortedKeys(s.Topic) {
		if s.Topic[id] == nil {
			errs = append(errs, fmt.Sprintf("Invalid topic scope entry: %s", id))
		}
	}

	return ValidationResult{Valid: len(errs) == 0, Errors: errs}
}

// RepairStoreStructure allocates missing partitions and empty inner maps so
// a store that fails ValidateStoreStructure becomes usable again. Existing
// values are kept.
func (r *Resolver) RepairStoreStructure() {
	s := r.store
	if s.Global == nil {
		s.Global = map[string]domain.VariableValue{}
	}
	if s.Session == nil {
		s.Session = map[string]domain.VariableValue{}
	}
	if s.Phase == nil {
		s.Phase = map[string]map[string]domain.VariableValue{}
	}
	if s.Topic == nil {
		s.Topic = map[string]map[string]domain.VariableValue{}
	}
	for id, vars := range s.Phase {
		if vars == nil {
			s.Phase[id] = map[string]domain.VariableValue{}
		}
	}
	for id, vars := range s.Topic {
		if vars == nil {
			s.Topic[id] = map[string]domain.VariableValue{}
		}
	}
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
