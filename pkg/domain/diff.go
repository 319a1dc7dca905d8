package domain

import (
	"reflect"
)

// StateDiff represents the changes between two states.
// It is designed to be serialized to JSON for partial updates on the client.
type StateDiff struct {
	// SessionID is always present to identify the target.
	SessionID string `json:"session_id"`

	Status   *ExecutionStatus `json:"status,omitempty"`
	Position *Position        `json:"position,omitempty"`

	// Variables contains only changed, added or deleted keys of the flat view.
	// For deletions, the key is present with a nil value.
	Variables map[string]any `json:"variables,omitempty"`

	// Messages contains the conversation entries appended since the old state.
	Messages []Message `json:"messages,omitempty"`
}

// Diff calculates the difference between oldState and newState.
// If oldState is nil, it returns a diff representing the entire newState (initial load).
func Diff(oldState, newState *ExecutionState) *StateDiff {
	if newState == nil {
		return nil
	}

	diff := &StateDiff{
		SessionID: newState.SessionID,
	}

	if oldState == nil || oldState.Status != newState.Status {
		status := newState.Status
		diff.Status = &status
	}
	if oldState == nil || oldState.Position != newState.Position {
		pos := newState.Position
		diff.Position = &pos
	}

	diff.Variables = diffVariables(oldState, newState)
	diff.Messages = diffMessages(oldState, newState)

	if diff.IsEmpty() {
		return nil
	}
	return diff
}

func diffVariables(old *ExecutionState, new *ExecutionState) map[string]any {
	delta := make(map[string]any)

	if old == nil {
		for k, v := range new.Variables {
			delta[k] = v
		}
	} else {
		for k, newVal := range new.Variables {
			oldVal, exists := old.Variables[k]
			if !exists || !reflect.DeepEqual(oldVal, newVal) {
				delta[k] = newVal
			}
		}
		for k := range old.Variables {
			if _, exists := new.Variables[k]; !exists {
				delta[k] = nil
			}
		}
	}

	if len(delta) == 0 {
		return nil
	}
	return delta
}

// diffMessages assumes the history is append-only.
func diffMessages(old *ExecutionState, new *ExecutionState) []Message {
	if old == nil {
		if len(new.ConversationHistory) == 0 {
			return nil
		}
		return new.ConversationHistory
	}
	if len(new.ConversationHistory) > len(old.ConversationHistory) {
		return new.ConversationHistory[len(old.ConversationHistory):]
	}
	return nil
}

// IsEmpty checks if the diff contains any actionable changes.
func (d *StateDiff) IsEmpty() bool {
	return d.Status == nil &&
		d.Position == nil &&
		len(d.Variables) == 0 &&
		len(d.Messages) == 0
}
