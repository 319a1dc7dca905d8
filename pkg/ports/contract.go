package ports

import (
	"context"
	"testing"
	"time"

	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// RunStateStoreContract runs a suite of tests to verify that a StateStore implementation
// adheres to the defined interface contract.
func RunStateStoreContract(t *testing.T, store StateStore) {
	ctx := context.Background()
	sessionID := "contract-test-session-" + time.Now().Format("20060102150405")

	t.Run("Save and Load", func(t *testing.T) {
		state := domain.NewExecutionState(sessionID)
		state.Status = domain.StatusWaitingInput
		state.Position = domain.Position{PhaseIndex: 1, TopicIndex: 0, ActionIndex: 2}
		state.Variables["foo"] = "bar"
		state.VariableStore.Session["foo"] = domain.VariableValue{Value: "bar", Scope: domain.ScopeSession}
		state.Metadata.ActionState = &domain.ActionStateSnapshot{
			ActionID: "a1", ActionType: "ai_ask", CurrentRound: 2, MaxRounds: 3,
		}
		state.ConversationHistory = append(state.ConversationHistory, domain.Message{Role: domain.RoleUser, Content: "hi"})

		err := store.Save(ctx, sessionID, state)
		require.NoError(t, err, "Save should not return error")

		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err, "Load should not return error")
		assert.Equal(t, state.Status, loaded.Status)
		assert.Equal(t, state.Position, loaded.Position)
		assert.Equal(t, "bar", loaded.Variables["foo"])
		require.NotNil(t, loaded.VariableStore)
		assert.Equal(t, "bar", loaded.VariableStore.Session["foo"].Value)
		require.NotNil(t, loaded.Metadata.ActionState)
		assert.Equal(t, 2, loaded.Metadata.ActionState.CurrentRound)
		require.Len(t, loaded.ConversationHistory, 1)
		assert.Equal(t, "hi", loaded.ConversationHistory[0].Content)
	})

	t.Run("Load returns a copy", func(t *testing.T) {
		loaded, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		loaded.Variables["foo"] = "mutated"

		again, err := store.Load(ctx, sessionID)
		require.NoError(t, err)
		assert.Equal(t, "bar", again.Variables["foo"])
	})

	t.Run("Load Non-Existent", func(t *testing.T) {
		_, err := store.Load(ctx, "non-existent-"+sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound)
	})

	t.Run("Delete", func(t *testing.T) {
		err := store.Save(ctx, sessionID, domain.NewExecutionState(sessionID))
		require.NoError(t, err)

		err = store.Delete(ctx, sessionID)
		require.NoError(t, err, "Delete should not return error")

		_, err = store.Load(ctx, sessionID)
		assert.ErrorIs(t, err, domain.ErrSessionNotFound, "Load after Delete should return ErrSessionNotFound")
	})

	t.Run("List", func(t *testing.T) {
		id1 := sessionID + "-1"
		id2 := sessionID + "-2"
		_ = store.Save(ctx, id1, domain.NewExecutionState(id1))
		_ = store.Save(ctx, id2, domain.NewExecutionState(id2))

		defer func() {
			_ = store.Delete(ctx, id1)
			_ = store.Delete(ctx, id2)
		}()

		sessions, err := store.List(ctx)
		require.NoError(t, err)
		assert.Contains(t, sessions, id1)
		assert.Contains(t, sessions, id2)
	})
}
