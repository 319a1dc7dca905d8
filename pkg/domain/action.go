package domain

// ActionStateSnapshot is the serializable projection of a live action.
// Reconstructing an action from it must reproduce identical behaviour.
type ActionStateSnapshot struct {
	ActionID     string         `json:"action_id"`
	ActionType   string         `json:"action_type"`
	Config       map[string]any `json:"config,omitempty"`
	CurrentRound int            `json:"current_round"`
	MaxRounds    int            `json:"max_rounds"`
	// Collected names the outputs this action has extracted so far.
	Collected []string `json:"collected,omitempty"`
}

// ActionResult is the outcome of one action turn.
// Completed=false means the action needs another turn.
type ActionResult struct {
	Success            bool           `json:"success"`
	Completed          bool           `json:"completed"`
	AIMessage          string         `json:"ai_message,omitempty"`
	ExtractedVariables map[string]any `json:"extracted_variables,omitempty"`
	Metrics            *ActionMetrics `json:"metrics,omitempty"`
	ProgressSuggestion string         `json:"progress_suggestion,omitempty"`
	ExitDecision       *ExitDecision  `json:"exit_decision,omitempty"`
	DebugInfo          *DebugInfo     `json:"debug_info,omitempty"`
	Rounds             *RoundRecord   `json:"rounds,omitempty"`
	Error              string         `json:"error,omitempty"`
}

// ActionMetrics are free-text signals reported by the LLM about the user.
// They are strings on purpose: values come from model output, not from an enum.
type ActionMetrics struct {
	UserEngagement          string `json:"user_engagement,omitempty" mapstructure:"user_engagement"`
	InformationCompleteness string `json:"information_completeness,omitempty" mapstructure:"information_completeness"`
	EmotionalIntensity      string `json:"emotional_intensity,omitempty" mapstructure:"emotional_intensity"`
	UnderstandingLevel      string `json:"understanding_level,omitempty" mapstructure:"understanding_level"`
	Reasoning               string `json:"reasoning,omitempty" mapstructure:"reasoning"`
}

// ExitSource tells who decided that an action may finish.
type ExitSource string

const (
	ExitSourceLLM       ExitSource = "llm"
	ExitSourceMaxRounds ExitSource = "max_rounds"
	ExitSourceVariables ExitSource = "variables_complete"
	ExitSourceSingle    ExitSource = "single_round"
)

// ExitDecision records whether an action decided to finish on a given round.
type ExitDecision struct {
	ShouldExit bool       `json:"should_exit"`
	Reason     string     `json:"reason,omitempty"`
	Source     ExitSource `json:"source,omitempty"`
	Round      int        `json:"round"`
}
