package domain

// Clone creates a copy of the state that can be mutated without affecting the source.
// Containers are copied; leaf values (variable values, config entries) are shared.
func (s *ExecutionState) Clone() *ExecutionState {
	if s == nil {
		return nil
	}
	next := *s

	if s.Variables != nil {
		next.Variables = make(map[string]any, len(s.Variables))
		for k, v := range s.Variables {
			next.Variables[k] = v
		}
	}
	next.VariableStore = s.VariableStore.Clone()
	next.ConversationHistory = append([]Message(nil), s.ConversationHistory...)
	next.Metadata = s.Metadata.clone()
	return &next
}

func (m Metadata) clone() Metadata {
	out := m
	if m.ActionState != nil {
		snap := *m.ActionState
		if m.ActionState.Config != nil {
			snap.Config = make(map[string]any, len(m.ActionState.Config))
			for k, v := range m.ActionState.Config {
				snap.Config[k] = v
			}
		}
		if m.ActionState.Collected != nil {
			snap.Collected = append([]string(nil), m.ActionState.Collected...)
		}
		out.ActionState = &snap
	}
	if m.ActionMetrics != nil {
		out.ActionMetrics = make(map[string][]MetricsRecord, len(m.ActionMetrics))
		for id, recs := range m.ActionMetrics {
			out.ActionMetrics[id] = append([]MetricsRecord(nil), recs...)
		}
	}
	if m.ActionRounds != nil {
		out.ActionRounds = make(map[string]RoundRecord, len(m.ActionRounds))
		for id, r := range m.ActionRounds {
			out.ActionRounds[id] = r
		}
	}
	out.ExitDecisions = append([]ExitDecisionRecord(nil), m.ExitDecisions...)
	out.MonitorFeedback = append([]MonitorRecord(nil), m.MonitorFeedback...)
	if m.SessionConfig != nil {
		cfg := *m.SessionConfig
		out.SessionConfig = &cfg
	}
	if m.LastDebugInfo != nil {
		dbg := *m.LastDebugInfo
		out.LastDebugInfo = &dbg
	}
	if m.Error != nil {
		e := *m.Error
		out.Error = &e
	}
	return out
}
