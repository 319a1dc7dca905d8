package executor

import (
	"testing"

	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/stretchr/testify/assert"
)

func TestSeek(t *testing.T) {
	script := &domain.Script{Phases: []domain.Phase{
		{ID: "p0", Topics: []domain.Topic{{ID: "t0"}}},
		{ID: "p1"},
		{ID: "p2", Topics: []domain.Topic{{ID: "t0"}, {ID: "t1", Actions: []domain.ActionConfig{{ID: "a"}, {ID: "b"}}}}},
	}}

	tests := []struct {
		name  string
		start domain.Position
		want  domain.Position
		found bool
	}{
		{"Skips empty containers", domain.Position{}, domain.Position{PhaseIndex: 2, TopicIndex: 1}, true},
		{"Stays on an existing action", domain.Position{PhaseIndex: 2, TopicIndex: 1, ActionIndex: 1}, domain.Position{PhaseIndex: 2, TopicIndex: 1, ActionIndex: 1}, true},
		{"Exhausted", domain.Position{PhaseIndex: 2, TopicIndex: 1, ActionIndex: 2}, domain.Position{PhaseIndex: 3}, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			pos := tt.start
			assert.Equal(t, tt.found, seek(script, &pos))
			assert.Equal(t, tt.want, pos)
		})
	}
}
