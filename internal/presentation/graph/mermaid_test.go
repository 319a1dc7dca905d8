package graph_test

import (
	"strings"
	"testing"

	"github.com/aretw0/colloquy/internal/presentation/graph"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func script() *domain.Script {
	return &domain.Script{
		ID: "onboarding",
		Phases: []domain.Phase{
			{ID: "intro", Name: "Welcome \"phase\"", Topics: []domain.Topic{
				{ID: "name", Actions: []domain.ActionConfig{
					{ID: "greet", Type: "ai_say"},
					{ID: "ask-name", Type: "ai_ask", Config: map[string]any{"max_rounds": 3}},
				}},
			}},
			{ID: "goals", Topics: []domain.Topic{
				{ID: "main", Actions: []domain.ActionConfig{
					{ID: "ask_goal", Type: "ai_ask"},
					{ID: "custom", Type: "ai_sing"},
				}},
			}},
		},
	}
}

func TestGenerateMermaid(t *testing.T) {
	out := graph.GenerateMermaid(script(), nil)

	for _, want := range []string{
		"graph TD\n",
		`start(("start"))`,
		`subgraph phase_intro["Welcome 'phase'"]`,
		`subgraph topic_goals_main["main"]`,
		`intro__name__greet["greet"]`,
		`intro__name__ask_name[/"ask-name <br/> ↻ 3"/]`,
		`goals__main__custom[["custom"]]`,
		"start --> intro__name__greet",
		"intro__name__greet --> intro__name__ask_name",
		"intro__name__ask_name --> goals__main__ask_goal",
		"goals__main__custom --> done",
	} {
		assert.Contains(t, out, want)
	}
	assert.NotContains(t, out, "classDef")
}

func TestGenerateMermaid_Overlay(t *testing.T) {
	s := script()
	state := domain.NewExecutionState("s1")
	state.Status = domain.StatusWaitingInput
	state.Position = domain.Position{PhaseIndex: 1, TopicIndex: 0, ActionIndex: 0}

	out := graph.GenerateMermaid(s, graph.OverlayFromState(s, state))
	assert.Contains(t, out, "class intro__name__greet visited;")
	assert.Contains(t, out, "class intro__name__ask_name visited;")
	assert.Contains(t, out, "class goals__main__ask_goal current;")
	assert.NotContains(t, out, "class goals__main__custom")

	state.Status = domain.StatusCompleted
	o := graph.OverlayFromState(s, state)
	assert.Len(t, o.VisitedActions, 4)
	assert.Empty(t, o.CurrentAction)
}

func TestOverlayFromState_NilState(t *testing.T) {
	o := graph.OverlayFromState(script(), nil)
	assert.Empty(t, o.VisitedActions)
	assert.Equal(t, 0, strings.Count(graph.GenerateMermaid(script(), o), "class "))
}
