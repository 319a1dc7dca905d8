package variables

import (
	"bytes"
	"log/slog"
	"testing"
	"time"

	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)

func testScript() *domain.Script {
	return &domain.Script{
		ID:           "s",
		Declarations: []domain.VariableDeclaration{{Name: "user_name", Type: "string"}},
		Phases: []domain.Phase{{
			ID:           "p1",
			Declarations: []domain.VariableDeclaration{{Name: "goal"}},
			Topics: []domain.Topic{{
				ID:           "t1",
				Declarations: []domain.VariableDeclaration{{Name: "age", Scope: domain.ScopeSession, Type: "int"}},
				Actions:      []domain.ActionConfig{{ID: "a1", Type: "ai_ask"}},
			}},
		}},
	}
}

func newTestResolver(store *domain.VariableStore, opts ...Option) *Resolver {
	opts = append([]Option{WithClock(func() time.Time { return fixedNow })}, opts...)
	return NewResolver(store, testScript(), opts...)
}

var pos = domain.Position{PhaseID: "p1", TopicID: "t1", ActionID: "a1"}

func TestResolveVariable_Precedence(t *testing.T) {
	r := newTestResolver(nil)
	r.SetVariable("x", "global", domain.ScopeGlobal, pos, "test")
	r.SetVariable("x", "session", domain.ScopeSession, pos, "test")

	got := r.ResolveVariable("x", pos)
	require.NotNil(t, got)
	assert.Equal(t, "session", got.Value)

	r.SetVariable("x", "phase", domain.ScopePhase, pos, "test")
	assert.Equal(t, "phase", r.ResolveVariable("x", pos).Value)

	r.SetVariable("x", "topic", domain.ScopeTopic, pos, "test")
	assert.Equal(t, "topic", r.ResolveVariable("x", pos).Value)

	// Another topic in the same phase does not see the topic value.
	other := domain.Position{PhaseID: "p1", TopicID: "t2"}
	assert.Equal(t, "phase", r.ResolveVariable("x", other).Value)

	assert.Nil(t, r.ResolveVariable("missing", pos))
}

func TestResolveVariable_TopicWinsOverSession(t *testing.T) {
	r := newTestResolver(nil)
	r.SetVariable("mood", "calm", domain.ScopeSession, pos, "test")
	r.SetVariable("mood", "anxious", domain.ScopeTopic, pos, "test")

	got := r.ResolveVariable("mood", pos)
	require.NotNil(t, got)
	assert.Equal(t, "anxious", got.Value)
	assert.Equal(t, domain.ScopeTopic, got.Scope)
}

func TestDetermineScope(t *testing.T) {
	r := newTestResolver(nil)

	tests := []struct {
		name string
		want domain.Scope
	}{
		{"user_name", domain.ScopeSession},
		{"goal", domain.ScopePhase},
		{"age", domain.ScopeSession},
		{"undeclared", domain.ScopeTopic},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, r.DetermineScope(tt.name))
		})
	}
}

func TestSetVariable_SkipsWithoutIDs(t *testing.T) {
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, nil))
	r := newTestResolver(nil, WithLogger(logger))

	ok := r.SetVariable("x", 1, domain.ScopeTopic, domain.Position{PhaseID: "p1"}, "test")
	assert.False(t, ok)
	ok = r.SetVariable("y", 1, domain.ScopePhase, domain.Position{}, "test")
	assert.False(t, ok)

	assert.Empty(t, r.Store().Topic)
	assert.Empty(t, r.Store().Phase)
	assert.Contains(t, buf.String(), "Skipping variable write")

	ops := r.Ops()
	require.Len(t, ops, 2)
	assert.Equal(t, OpSkip, ops[0].Operation)
}

func TestSetVariable_RecordsMetadataAndOps(t *testing.T) {
	r := newTestResolver(nil)

	require.True(t, r.SetVariable("age", float64(30), domain.ScopeSession, pos, "ai_ask"))

	v := r.Store().Session["age"]
	assert.Equal(t, "int", v.Type)
	assert.Equal(t, "ai_ask", v.Source)
	assert.Equal(t, fixedNow, v.LastUpdated)

	ops := r.Ops()
	require.Len(t, ops, 1)
	assert.Equal(t, OpRecord{
		ActionID:     "a1",
		Operation:    OpSet,
		VariableName: "age",
		Scope:        domain.ScopeSession,
		Value:        float64(30),
		Timestamp:    fixedNow,
	}, ops[0])
}

func TestSetVariable_TypeMismatchIsLoggedNotRejected(t *testing.T) {
	var buf bytes.Buffer
	r := newTestResolver(nil, WithLogger(slog.New(slog.NewTextHandler(&buf, nil))))

	assert.True(t, r.SetVariable("age", "thirty", domain.ScopeSession, pos, "test"))
	assert.Equal(t, "thirty", r.Store().Session["age"].Value)
	assert.Contains(t, buf.String(), "declared type")
}

func TestSetVariable_AllocatesMissingPartitions(t *testing.T) {
	r := newTestResolver(&domain.VariableStore{})
	r.SetVariable("a", 1, domain.ScopeGlobal, pos, "test")
	r.SetVariable("b", 1, domain.ScopeTopic, pos, "test")
	assert.Contains(t, r.Store().Global, "a")
	assert.Contains(t, r.Store().Topic["t1"], "b")
}

func TestSetAll_UsesDeclaredScopes(t *testing.T) {
	r := newTestResolver(nil)
	r.SetAll(map[string]any{"user_name": "Ana", "mood": "ok", "goal": "sleep"}, pos, "ai_ask")

	assert.Contains(t, r.Store().Session, "user_name")
	assert.Contains(t, r.Store().Phase["p1"], "goal")
	assert.Contains(t, r.Store().Topic["t1"], "mood")
}

func TestFlatten(t *testing.T) {
	r := newTestResolver(nil)
	r.SetVariable("a", "g", domain.ScopeGlobal, pos, "test")
	r.SetVariable("a", "s", domain.ScopeSession, pos, "test")
	r.SetVariable("b", "t", domain.ScopeTopic, pos, "test")
	r.SetVariable("c", "other", domain.ScopeTopic, domain.Position{TopicID: "t9"}, "test")

	assert.Equal(t, map[string]any{"a": "s", "b": "t"}, r.Flatten(pos))
}

func TestSeedGlobals_KeepsExisting(t *testing.T) {
	script := testScript()
	script.Globals = map[string]any{"counselor": "Ana", "tone": "warm"}

	r := newTestResolver(nil)
	r.SetVariable("tone", "dry", domain.ScopeGlobal, pos, "test")
	r.SeedGlobals(script)

	assert.Equal(t, "Ana", r.Store().Global["counselor"].Value)
	assert.Equal(t, domain.SourceScript, r.Store().Global["counselor"].Source)
	assert.Equal(t, "dry", r.Store().Global["tone"].Value)
}
