package statemanager

import (
	"testing"

	"github.com/aretw0/colloquy/internal/actions"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func script() *domain.Script {
	return &domain.Script{
		ID:             "s",
		ProjectID:      "proj",
		TemplateScheme: "gentle",
		Phases: []domain.Phase{
			{ID: "p1", Topics: []domain.Topic{
				{ID: "t1", Actions: []domain.ActionConfig{{ID: "a1", Type: actions.TypeAsk}, {ID: "a2", Type: actions.TypeSay}}},
			}},
		},
	}
}

func TestRestoreActionIfNeeded_EveryType(t *testing.T) {
	reg := actions.DefaultRegistry()
	m := New(reg, nil)

	for _, typ := range reg.Types() {
		t.Run(typ, func(t *testing.T) {
			state := domain.NewExecutionState("s1")
			state.Metadata.ActionState = &domain.ActionStateSnapshot{
				ActionID:     "a1",
				ActionType:   typ,
				Config:       map[string]any{"content": "c", "max_rounds": 5},
				CurrentRound: 2,
				MaxRounds:    5,
			}

			require.NoError(t, m.RestoreActionIfNeeded(state))
			require.NotNil(t, state.CurrentAction)
			assert.Equal(t, "a1", state.CurrentAction.ActionID())

			a := state.CurrentAction.(actions.Action)
			assert.Equal(t, 2, a.CurrentRound())
			assert.Equal(t, *state.Metadata.ActionState, *m.Serialize(a))
		})
	}
}

func TestRestoreActionIfNeeded_NoOps(t *testing.T) {
	m := New(actions.DefaultRegistry(), nil)

	state := domain.NewExecutionState("s1")
	require.NoError(t, m.RestoreActionIfNeeded(state))
	assert.Nil(t, state.CurrentAction)

	live, err := actions.NewSay("live", nil)
	require.NoError(t, err)
	state.CurrentAction = live
	state.Metadata.ActionState = &domain.ActionStateSnapshot{ActionID: "other", ActionType: actions.TypeAsk}
	require.NoError(t, m.RestoreActionIfNeeded(state))
	assert.Equal(t, "live", state.CurrentAction.ActionID())
}

func TestRestoreActionIfNeeded_UnknownType(t *testing.T) {
	m := New(actions.DefaultRegistry(), nil)
	state := domain.NewExecutionState("s1")
	state.Metadata.ActionState = &domain.ActionStateSnapshot{ActionID: "a1", ActionType: "gone"}

	err := m.RestoreActionIfNeeded(state)
	assert.ErrorIs(t, err, domain.ErrUnknownActionType)
}

func TestRestorePositionIDs(t *testing.T) {
	m := New(actions.DefaultRegistry(), nil)

	state := domain.NewExecutionState("s1")
	state.Position = domain.Position{ActionIndex: 1, PhaseID: "stale"}
	m.RestorePositionIDs(state, script())
	assert.Equal(t, domain.Position{ActionIndex: 1, PhaseID: "p1", TopicID: "t1", ActionID: "a2"}, state.Position)

	state.Position = domain.Position{PhaseIndex: 3}
	m.RestorePositionIDs(state, script())
	assert.Equal(t, domain.Position{PhaseIndex: 3}, state.Position)
}

func TestSetupSessionMetadata_WriteOnce(t *testing.T) {
	m := New(actions.DefaultRegistry(), nil)
	state := domain.NewExecutionState("s1")

	m.SetupSessionMetadata(state, script())
	require.NotNil(t, state.Metadata.SessionConfig)
	first := *state.Metadata.SessionConfig
	assert.Equal(t, "gentle", first.TemplateScheme)
	assert.Equal(t, "proj", first.ProjectID)

	other := script()
	other.TemplateScheme = "changed"
	m.SetupSessionMetadata(state, other)
	assert.Equal(t, first, *state.Metadata.SessionConfig)
}
