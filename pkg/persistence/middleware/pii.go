package middleware

import (
	"context"
	"fmt"
	"regexp"
	"sort"
	"strings"

	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/ports"
)

// Mask replaces the value of every masked variable.
const Mask = "***"

type piiMiddleware struct {
	next     ports.StateStore
	patterns []*regexp.Regexp
}

// NewPIIMiddleware creates a middleware that masks variables whose name matches
// any of the patterns before they reach the store. The caller's state is not modified.
// Masking is one way: a masked session resumes with Mask as the value.
//
// Values of masked variables are also replaced wherever they occur in persisted
// text (conversation history, last message, monitor feedback, audit records),
// and the prompt and response of the last LLM exchange are dropped since they
// carry every variable in rendered form.
func NewPIIMiddleware(patternStrings []string) (Middleware, error) {
	patterns := make([]*regexp.Regexp, len(patternStrings))
	for i, p := range patternStrings {
		re, err := regexp.Compile(p)
		if err != nil {
			return nil, fmt.Errorf("invalid pii pattern %q: %w", p, err)
		}
		patterns[i] = re
	}
	return func(next ports.StateStore) ports.StateStore {
		return &piiMiddleware{next: next, patterns: patterns}
	}, nil
}

func (m *piiMiddleware) Save(ctx context.Context, sessionID string, state *domain.ExecutionState) error {
	cloned := state.Clone()
	secrets := make(map[string]struct{})
	maskMap(cloned.Variables, m.patterns, secrets)

	if vs := cloned.VariableStore; vs != nil {
		maskValues(vs.Global, m.patterns, secrets)
		maskValues(vs.Session, m.patterns, secrets)
		for _, vars := range vs.Phase {
			maskValues(vars, m.patterns, secrets)
		}
		for _, vars := range vs.Topic {
			maskValues(vars, m.patterns, secrets)
		}
	}

	if dbg := cloned.Metadata.LastDebugInfo; dbg != nil {
		redacted := *dbg
		redacted.Prompt, redacted.Response = "", ""
		cloned.Metadata.LastDebugInfo = &redacted
	}
	scrubText(cloned, secrets)
	return m.next.Save(ctx, sessionID, cloned)
}

func (m *piiMiddleware) Load(ctx context.Context, sessionID string) (*domain.ExecutionState, error) {
	return m.next.Load(ctx, sessionID)
}

func (m *piiMiddleware) Delete(ctx context.Context, sessionID string) error {
	return m.next.Delete(ctx, sessionID)
}

func (m *piiMiddleware) List(ctx context.Context) ([]string, error) {
	return m.next.List(ctx)
}

func matches(key string, patterns []*regexp.Regexp) bool {
	for _, p := range patterns {
		if p.MatchString(key) {
			return true
		}
	}
	return false
}

// maskMap masks in place, recursing into nested maps, and collects the masked
// values into secrets. Nested maps are copied first since Clone shares leaf
// values with the caller.
func maskMap(m map[string]any, patterns []*regexp.Regexp, secrets map[string]struct{}) {
	for k, v := range m {
		if matches(k, patterns) {
			collect(v, secrets)
			m[k] = Mask
			continue
		}
		if sub, ok := v.(map[string]any); ok {
			sub = copyMap(sub)
			maskMap(sub, patterns, secrets)
			m[k] = sub
		}
	}
}

func maskValues(m map[string]domain.VariableValue, patterns []*regexp.Regexp, secrets map[string]struct{}) {
	for k, v := range m {
		if matches(k, patterns) {
			collect(v.Value, secrets)
			v.Value = Mask
		} else if sub, ok := v.Value.(map[string]any); ok {
			sub = copyMap(sub)
			maskMap(sub, patterns, secrets)
			v.Value = sub
		} else {
			continue
		}
		m[k] = v
	}
}

// collect records the textual forms of a masked value.
func collect(v any, secrets map[string]struct{}) {
	switch val := v.(type) {
	case nil:
	case map[string]any:
		for _, sub := range val {
			collect(sub, secrets)
		}
	case []any:
		for _, sub := range val {
			collect(sub, secrets)
		}
	default:
		if s := strings.TrimSpace(fmt.Sprint(val)); s != "" && s != Mask {
			secrets[s] = struct{}{}
		}
	}
}

// scrubText replaces masked values in every persisted free-text field.
func scrubText(state *domain.ExecutionState, secrets map[string]struct{}) {
	if len(secrets) == 0 {
		return
	}
	// Longest first so a value containing another is replaced whole.
	values := make([]string, 0, len(secrets))
	for s := range secrets {
		values = append(values, s)
	}
	sort.Slice(values, func(i, j int) bool {
		if len(values[i]) != len(values[j]) {
			return len(values[i]) > len(values[j])
		}
		return values[i] < values[j]
	})
	pairs := make([]string, 0, 2*len(values))
	for _, s := range values {
		pairs = append(pairs, s, Mask)
	}
	r := strings.NewReplacer(pairs...)

	for i := range state.ConversationHistory {
		state.ConversationHistory[i].Content = r.Replace(state.ConversationHistory[i].Content)
	}
	state.LastAIMessage = r.Replace(state.LastAIMessage)

	md := &state.Metadata
	md.LatestMonitorFeedback = r.Replace(md.LatestMonitorFeedback)
	if md.Error != nil {
		e := *md.Error
		e.Message = r.Replace(e.Message)
		md.Error = &e
	}
	for i := range md.ExitDecisions {
		md.ExitDecisions[i].Decision.Reason = r.Replace(md.ExitDecisions[i].Decision.Reason)
	}
	for id, recs := range md.ActionMetrics {
		for i := range recs {
			recs[i].Metrics.Reasoning = r.Replace(recs[i].Metrics.Reasoning)
		}
		md.ActionMetrics[id] = recs
	}
	for i := range md.MonitorFeedback {
		a := &md.MonitorFeedback[i].Analysis
		a.InterventionReason = r.Replace(a.InterventionReason)
		a.StrategySuggestion = r.Replace(a.StrategySuggestion)
		a.FeedbackForAction = r.Replace(a.FeedbackForAction)
		a.ModifiedApproach = r.Replace(a.ModifiedApproach)
		a.ExampleSuggestion = r.Replace(a.ExampleSuggestion)
	}
}

func copyMap(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[k] = v
	}
	return out
}
