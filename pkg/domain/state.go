package domain

import "time"

// ExecutionStatus defines the current mode of a session.
type ExecutionStatus string

const (
	StatusRunning      ExecutionStatus = "running"       // Ready to execute the action at Position
	StatusWaitingInput ExecutionStatus = "waiting_input" // An action is mid-execution and needs the user
	StatusCompleted    ExecutionStatus = "completed"     // All phases exhausted
	StatusError        ExecutionStatus = "error"         // Last turn failed, see Metadata.Error
)

// Position locates the current action inside the script.
// Indices are the source of truth; the IDs are recomputed from the script on every resume.
type Position struct {
	PhaseIndex  int    `json:"phase_index"`
	TopicIndex  int    `json:"topic_index"`
	ActionIndex int    `json:"action_index"`
	PhaseID     string `json:"phase_id,omitempty"`
	TopicID     string `json:"topic_id,omitempty"`
	ActionID    string `json:"action_id,omitempty"`
}

// ClearIDs drops the resolved identifiers, keeping the indices.
func (p *Position) ClearIDs() {
	p.PhaseID = ""
	p.TopicID = ""
	p.ActionID = ""
}

// LiveAction is the in-memory handle of an action that is mid-execution.
// It is never persisted; Metadata.ActionState carries its serializable projection.
type LiveAction interface {
	ActionID() string
	ActionType() string
	Snapshot() ActionStateSnapshot
}

// ExecutionState represents the snapshot of a session between two turns.
type ExecutionState struct {
	SessionID string          `json:"session_id"`
	Status    ExecutionStatus `json:"status"`
	Position  Position        `json:"position"`

	// CurrentAction is transient. It is rebuilt from Metadata.ActionState on resume.
	CurrentAction LiveAction `json:"-"`

	// Variables is the flat legacy view of the scoped store.
	Variables map[string]any `json:"variables"`

	// VariableStore is nil for sessions created before scoped variables existed.
	VariableStore *VariableStore `json:"variable_store,omitempty"`

	ConversationHistory []Message `json:"conversation_history"`
	Metadata            Metadata  `json:"metadata"`
	LastAIMessage       string    `json:"last_ai_message,omitempty"`
}

// NewExecutionState creates a clean state positioned at the first action of the script.
func NewExecutionState(sessionID string) *ExecutionState {
	return &ExecutionState{
		SessionID:           sessionID,
		Status:              StatusRunning,
		Variables:           make(map[string]any),
		VariableStore:       NewVariableStore(),
		ConversationHistory: []Message{},
	}
}

// Role identifies the author of a conversation message.
type Role string

const (
	RoleUser      Role = "user"
	RoleAssistant Role = "assistant"
	RoleSystem    Role = "system"
)

// Message is one entry of the conversation history.
type Message struct {
	Role      Role      `json:"role"`
	Content   string    `json:"content"`
	ActionID  string    `json:"action_id,omitempty"`
	Timestamp time.Time `json:"timestamp"`
}
