package domain

import "time"

// Metadata holds per-concern bookkeeping of a session.
// Every field is optional; nil/empty means the concern has not produced data yet.
type Metadata struct {
	// ActionState is the snapshot of the live action. Nil when no action is mid-execution.
	ActionState *ActionStateSnapshot `json:"action_state,omitempty"`

	// ActionMetrics is the metrics history, keyed by action ID, oldest first.
	ActionMetrics map[string][]MetricsRecord `json:"action_metrics,omitempty"`

	// ActionRounds records the round counters reported by each action.
	ActionRounds map[string]RoundRecord `json:"action_rounds,omitempty"`

	// ExitDecisions is an append-only audit log of exit decisions.
	ExitDecisions []ExitDecisionRecord `json:"exit_decisions,omitempty"`

	// MonitorFeedback is every analysis produced by the monitor.
	MonitorFeedback []MonitorRecord `json:"monitor_feedback,omitempty"`

	// LatestMonitorFeedback is the rendered feedback block for the next turn's prompt.
	LatestMonitorFeedback string `json:"latest_monitor_feedback,omitempty"`

	// SessionConfig is written once, on the first turn of the session.
	SessionConfig *SessionConfig `json:"session_config,omitempty"`

	LastDebugInfo *DebugInfo      `json:"last_debug_info,omitempty"`
	Error         *ExecutionError `json:"error,omitempty"`
}

// SessionConfig is the write-once configuration of a session.
type SessionConfig struct {
	ScriptID       string    `json:"script_id"`
	ProjectID      string    `json:"project_id,omitempty"`
	TemplateScheme string    `json:"template_scheme,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
}

// MetricsRecord is one round of metrics reported by an action.
type MetricsRecord struct {
	Round     int           `json:"round"`
	Metrics   ActionMetrics `json:"metrics"`
	Timestamp time.Time     `json:"timestamp"`
}

// RoundRecord tracks how far a multi-turn action has progressed.
type RoundRecord struct {
	CurrentRound int       `json:"current_round"`
	MaxRounds    int       `json:"max_rounds"`
	UpdatedAt    time.Time `json:"updated_at"`
}

// ExitDecisionRecord is an entry of the exit decision audit log.
type ExitDecisionRecord struct {
	ActionID  string       `json:"action_id"`
	Decision  ExitDecision `json:"decision"`
	Timestamp time.Time    `json:"timestamp"`
}

// MonitorRecord stores one analysis alongside its origin.
type MonitorRecord struct {
	ActionID   string          `json:"action_id"`
	ActionType string          `json:"action_type"`
	PhaseID    string          `json:"phase_id,omitempty"`
	TopicID    string          `json:"topic_id,omitempty"`
	Round      int             `json:"round"`
	Analysis   MonitorAnalysis `json:"analysis"`
	Timestamp  time.Time       `json:"timestamp"`
}

// ExecutionError describes the failure of the last turn.
type ExecutionError struct {
	Message   string    `json:"message"`
	ActionID  string    `json:"action_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}

// DebugInfo captures a single LLM exchange.
type DebugInfo struct {
	Provider  string        `json:"provider,omitempty"`
	Model     string        `json:"model,omitempty"`
	Prompt    string        `json:"prompt,omitempty"`
	Response  string        `json:"response,omitempty"`
	Duration  time.Duration `json:"duration,omitempty"`
	Timestamp time.Time     `json:"timestamp"`
}
