package compiler

import (
	"fmt"
	"strings"

	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/schema"
)

// ValidationError lists every structural problem found in a script.
type ValidationError struct {
	ScriptID string
	Problems []string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("script %q has %d problem(s):\n- %s", e.ScriptID, len(e.Problems), strings.Join(e.Problems, "\n- "))
}

// Unwrap lets callers match domain.ErrScriptInvalid.
func (e *ValidationError) Unwrap() error {
	return domain.ErrScriptInvalid
}

// KnownType reports whether an action type can be instantiated.
type KnownType func(actionType string) bool

// Validate checks the structure of a parsed script. known may be nil to skip
// the action-type check.
func Validate(s *domain.Script, known KnownType) error {
	var problems []string
	add := func(format string, args ...any) {
		problems = append(problems, fmt.Sprintf(format, args...))
	}

	if s.ID == "" {
		add("session_id is required")
	}
	if len(s.Phases) == 0 {
		add("script has no phases")
	}

	checkDecls := func(where string, decls []domain.VariableDeclaration) {
		for i, d := range decls {
			if d.Name == "" {
				add("%s: declaration %d has no var_name", where, i)
			}
			if d.Scope != "" {
				if _, err := domain.ParseScope(string(d.Scope)); err != nil {
					add("%s: variable %q: %v", where, d.Name, err)
				}
			}
			if _, err := schema.ParseType(d.Type); err != nil {
				add("%s: variable %q: %v", where, d.Name, err)
			}
		}
	}
	checkDecls("session", s.Declarations)

	phaseIDs := map[string]bool{}
	for pi, p := range s.Phases {
		where := fmt.Sprintf("phase[%d]", pi)
		if p.ID == "" {
			add("%s: phase_id is required", where)
		} else if phaseIDs[p.ID] {
			add("%s: duplicate phase_id %q", where, p.ID)
		}
		phaseIDs[p.ID] = true
		checkDecls(where, p.Declarations)

		topicIDs := map[string]bool{}
		for ti, t := range p.Topics {
			where := fmt.Sprintf("phase %q topic[%d]", p.ID, ti)
			if t.ID == "" {
				add("%s: topic_id is required", where)
			} else if topicIDs[t.ID] {
				add("%s: duplicate topic_id %q", where, t.ID)
			}
			topicIDs[t.ID] = true
			checkDecls(where, t.Declarations)

			actionIDs := map[string]bool{}
			for ai, a := range t.Actions {
				where := fmt.Sprintf("topic %q action[%d]", t.ID, ai)
				if a.ID == "" {
					add("%s: action_id is required", where)
				} else if actionIDs[a.ID] {
					add("%s: duplicate action_id %q", where, a.ID)
				}
				actionIDs[a.ID] = true

				if a.Type == "" {
					add("%s: action_type is required", where)
				} else if known != nil && !known(a.Type) {
					add("%s: unknown action_type %q", where, a.Type)
				}
				if n, ok := asNumber(a.Config["max_rounds"]); ok && n < 0 {
					add("%s: max_rounds must not be negative", where)
				}
			}
		}
	}

	if s.Globals != nil {
		declared := map[string]string{}
		for name, d := range s.ScopeDeclarations() {
			declared[name] = d.Type
		}
		if types, err := schema.ParseDeclarations(declared); err == nil {
			if err := types.Validate(s.Globals); err != nil {
				for _, m := range schema.Mismatches(err) {
					add("globals: %v", m)
				}
			}
		}
	}

	if len(problems) > 0 {
		return &ValidationError{ScriptID: s.ID, Problems: problems}
	}
	return nil
}

func asNumber(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int64:
		return float64(n), true
	case float64:
		return n, true
	default:
		return 0, false
	}
}
