package domain

// MonitorAnalysis is the advisory verdict of the monitor on one action turn.
// JSON names follow the format the monitor prompts ask the model for.
type MonitorAnalysis struct {
	InterventionNeeded  bool             `json:"intervention_needed"`
	InterventionReason  string           `json:"intervention_reason"`
	InterventionLevel   string           `json:"intervention_level"`
	StrategySuggestion  string           `json:"strategy_suggestion"`
	FeedbackForAction   string           `json:"feedback_for_action"`
	ModifiedApproach    string           `json:"modified_approach,omitempty"`
	ExampleSuggestion   string           `json:"example_suggestion,omitempty"`
	OrchestrationNeeded bool             `json:"orchestration_needed"`
	Metadata            *MonitorMetadata `json:"metadata,omitempty"`
}

// MonitorMetadata describes how an analysis was obtained.
type MonitorMetadata struct {
	ParseError    bool   `json:"parseError"`
	RetryCount    int    `json:"retryCount"`
	ParseStrategy string `json:"parseStrategy,omitempty"`
	Error         string `json:"error,omitempty"`
	Template      string `json:"template,omitempty"`
}

// NeutralAnalysis is the safe "no intervention" verdict.
func NeutralAnalysis(reason string) MonitorAnalysis {
	return MonitorAnalysis{
		InterventionNeeded: false,
		InterventionReason: reason,
		InterventionLevel:  "none",
	}
}
