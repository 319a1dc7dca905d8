package compiler

import (
	"errors"
	"testing"

	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const validScript = `
session:
  session_id: intro
  session_name: Intake
  template_scheme: gentle
  globals: {counselor_name: Ana}
  declare:
    - {var_name: user_name, scope: session, type: string}
  phases:
    - phase_id: p1
      topics:
        - topic_id: t1
          declare: [{var_name: mood}]
          actions:
            - action_id: a1
              action_type: ai_ask
              config:
                content: Ask the name
                output: [{get: user_name}]
                max_rounds: 3
            - action_id: a2
              action_type: ai_say
              config: {content: Thanks}
`

func known(t string) bool { return t == "ai_ask" || t == "ai_say" }

func TestParse(t *testing.T) {
	s, err := NewParser().Parse([]byte(validScript))
	require.NoError(t, err)

	assert.Equal(t, "intro", s.ID)
	assert.Equal(t, "gentle", s.TemplateScheme)
	assert.Equal(t, "Ana", s.Globals["counselor_name"])
	require.Len(t, s.Phases, 1)
	require.Len(t, s.Phases[0].Topics[0].Actions, 2)

	a := s.Phases[0].Topics[0].Actions[0]
	assert.Equal(t, "ai_ask", a.Type)
	assert.Equal(t, 3, a.Config["max_rounds"])
	assert.Equal(t, domain.ScopeSession, s.Declarations[0].Scope)
}

func TestParse_JSON(t *testing.T) {
	s, err := NewParser().Parse([]byte(`{"session":{"session_id":"j","phases":[{"phase_id":"p","topics":[]}]}}`))
	require.NoError(t, err)
	assert.Equal(t, "j", s.ID)
}

func TestParse_Errors(t *testing.T) {
	_, err := NewParser().Parse([]byte("phases: []"))
	assert.ErrorIs(t, err, domain.ErrScriptInvalid)

	_, err = NewParser().Parse([]byte("session: [unterminated"))
	assert.ErrorIs(t, err, domain.ErrScriptInvalid)
}

func TestValidate(t *testing.T) {
	base := func() *domain.Script {
		s, err := NewParser().Parse([]byte(validScript))
		require.NoError(t, err)
		return s
	}

	t.Run("Valid", func(t *testing.T) {
		assert.NoError(t, Validate(base(), known))
	})

	tests := []struct {
		name   string
		mutate func(s *domain.Script)
		want   string
	}{
		{"No phases", func(s *domain.Script) { s.Phases = nil }, "script has no phases"},
		{"Duplicate action", func(s *domain.Script) {
			s.Phases[0].Topics[0].Actions[1].ID = "a1"
		}, `duplicate action_id "a1"`},
		{"Unknown type", func(s *domain.Script) {
			s.Phases[0].Topics[0].Actions[1].Type = "ai_sing"
		}, `unknown action_type "ai_sing"`},
		{"Bad scope", func(s *domain.Script) {
			s.Declarations[0].Scope = "galaxy"
		}, "unsupported scope"},
		{"Bad type", func(s *domain.Script) {
			s.Declarations[0].Type = "uuid"
		}, "unsupported type"},
		{"Negative rounds", func(s *domain.Script) {
			s.Phases[0].Topics[0].Actions[0].Config["max_rounds"] = -1
		}, "max_rounds must not be negative"},
		{"Global type mismatch", func(s *domain.Script) {
			s.Globals["user_name"] = 12
		}, `variable "user_name"`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			s := base()
			tt.mutate(s)

			err := Validate(s, known)
			require.Error(t, err)
			assert.True(t, errors.Is(err, domain.ErrScriptInvalid))

			var verr *ValidationError
			require.ErrorAs(t, err, &verr)
			assert.Contains(t, joinProblems(verr.Problems), tt.want)
		})
	}
}

func joinProblems(ps []string) string {
	out := ""
	for _, p := range ps {
		out += p + "\n"
	}
	return out
}

func TestLoader_Caches(t *testing.T) {
	l := NewLoader(known, 0)

	s1, err := l.Load([]byte(validScript))
	require.NoError(t, err)
	s2, err := l.Load([]byte(validScript))
	require.NoError(t, err)

	assert.Same(t, s1, s2)
	assert.Equal(t, 1, l.Cached())

	_, err = l.Load([]byte("session: {session_id: x}"))
	assert.ErrorIs(t, err, domain.ErrScriptInvalid)
	assert.Equal(t, 1, l.Cached())
}
