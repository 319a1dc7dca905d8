package domain

import (
	"context"
	"time"
)

// EventType defines the category of the event.
type EventType string

const (
	EventTurnStart       EventType = "turn_start"
	EventTurnEnd         EventType = "turn_end"
	EventActionComplete  EventType = "action_complete"
	EventMonitorAnalysis EventType = "monitor_analysis"
	EventLLMCall         EventType = "llm_call"
)

// EventBase contains common fields for all events.
type EventBase struct {
	Timestamp time.Time `json:"timestamp"`
	Type      EventType `json:"type"`
	SessionID string    `json:"session_id"`
}

// TurnEvent marks the start or the end of an external call.
type TurnEvent struct {
	EventBase
	Position Position        `json:"position"`
	Status   ExecutionStatus `json:"status"`
	Duration time.Duration   `json:"duration,omitempty"`
}

// ActionEvent reports a finished action.
type ActionEvent struct {
	EventBase
	ActionID   string `json:"action_id"`
	ActionType string `json:"action_type"`
	Rounds     int    `json:"rounds"`
	Success    bool   `json:"success"`
}

// MonitorEvent reports the outcome of one monitor analysis.
type MonitorEvent struct {
	EventBase
	ActionID   string `json:"action_id"`
	ActionType string `json:"action_type"`
	Outcome    string `json:"outcome"`
}

// LLMEvent reports a provider round-trip.
type LLMEvent struct {
	EventBase
	Purpose  string        `json:"purpose"` // "action" or "monitor"
	Duration time.Duration `json:"duration"`
	Failed   bool          `json:"failed,omitempty"`
}

// LifecycleHooks defines callbacks for engine observability. Any field may be nil.
type LifecycleHooks struct {
	OnTurnStart       func(context.Context, *TurnEvent)
	OnTurnEnd         func(context.Context, *TurnEvent)
	OnActionComplete  func(context.Context, *ActionEvent)
	OnMonitorAnalysis func(context.Context, *MonitorEvent)
	OnLLMCall         func(context.Context, *LLMEvent)
}

// Merge combines two hook sets; both callbacks run when both are set.
func (h LifecycleHooks) Merge(other LifecycleHooks) LifecycleHooks {
	return LifecycleHooks{
		OnTurnStart:       chain(h.OnTurnStart, other.OnTurnStart),
		OnTurnEnd:         chain(h.OnTurnEnd, other.OnTurnEnd),
		OnActionComplete:  chain(h.OnActionComplete, other.OnActionComplete),
		OnMonitorAnalysis: chain(h.OnMonitorAnalysis, other.OnMonitorAnalysis),
		OnLLMCall:         chain(h.OnLLMCall, other.OnLLMCall),
	}
}

func chain[E any](a, b func(context.Context, E)) func(context.Context, E) {
	switch {
	case a == nil:
		return b
	case b == nil:
		return a
	}
	return func(ctx context.Context, e E) {
		a(ctx, e)
		b(ctx, e)
	}
}
