// Package statemanager rebuilds live actions and session bookkeeping from a
// persisted domain.ExecutionState.
package statemanager

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/aretw0/colloquy/internal/actions"
	"github.com/aretw0/colloquy/internal/logging"
	"github.com/aretw0/colloquy/pkg/domain"
)

// Manager converts between live actions and their snapshots.
type Manager struct {
	factory actions.Factory
	logger  *slog.Logger
	now     func() time.Time
}

// New creates a manager that rebuilds actions through factory.
func New(factory actions.Factory, logger *slog.Logger) *Manager {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Manager{factory: factory, logger: logger, now: time.Now}
}

// Serialize projects a live action into its snapshot.
func (m *Manager) Serialize(a actions.Action) *domain.ActionStateSnapshot {
	if a == nil {
		return nil
	}
	snap := a.Snapshot()
	return &snap
}

// Deserialize builds a new action from snap with its round counters and
// collected outputs restored.
func (m *Manager) Deserialize(snap *domain.ActionStateSnapshot) (actions.Action, error) {
	if snap == nil {
		return nil, fmt.Errorf("no action snapshot")
	}
	a, err := m.factory.Create(snap.ActionType, snap.ActionID, snap.Config)
	if err != nil {
		return nil, fmt.Errorf("failed to restore action %s: %w", snap.ActionID, err)
	}
	a.RestoreRounds(snap.CurrentRound, snap.MaxRounds)
	a.RestoreCollected(snap.Collected)
	return a, nil
}

// RestoreActionIfNeeded rebuilds state.CurrentAction from Metadata.ActionState.
// It does nothing when an action is already live or no snapshot exists.
func (m *Manager) RestoreActionIfNeeded(state *domain.ExecutionState) error {
	if state.CurrentAction != nil || state.Metadata.ActionState == nil {
		return nil
	}
	a, err := m.Deserialize(state.Metadata.ActionState)
	if err != nil {
		return err
	}
	state.CurrentAction = a
	m.logger.Debug("Restored action from snapshot",
		"session_id", state.SessionID,
		"action_id", a.ActionID(),
		"action_type", a.ActionType(),
		"round", a.CurrentRound(),
	)
	return nil
}

// RestorePositionIDs recomputes the position ids from its indices.
// Indices outside the script clear the matching ids.
func (m *Manager) RestorePositionIDs(state *domain.ExecutionState, script *domain.Script) {
	pos := &state.Position
	pos.ClearIDs()

	if pos.PhaseIndex < 0 || pos.PhaseIndex >= len(script.Phases) {
		return
	}
	phase := script.Phases[pos.PhaseIndex]
	pos.PhaseID = phase.ID

	if pos.TopicIndex < 0 || pos.TopicIndex >= len(phase.Topics) {
		return
	}
	topic := phase.Topics[pos.TopicIndex]
	pos.TopicID = topic.ID

	if pos.ActionIndex < 0 || pos.ActionIndex >= len(topic.Actions) {
		return
	}
	pos.ActionID = topic.Actions[pos.ActionIndex].ID
}

// SetupSessionMetadata records the session configuration on the first turn only.
func (m *Manager) SetupSessionMetadata(state *domain.ExecutionState, script *domain.Script) {
	if state.Metadata.SessionConfig != nil {
		return
	}
	state.Metadata.SessionConfig = &domain.SessionConfig{
		ScriptID:       script.ID,
		ProjectID:      script.ProjectID,
		TemplateScheme: script.TemplateScheme,
		CreatedAt:      m.now(),
	}
}
