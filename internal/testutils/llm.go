package testutils

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/aretw0/colloquy/pkg/ports"
)

// ErrScriptExhausted is returned when ScriptedLLM has no reply left.
var ErrScriptExhausted = errors.New("scripted llm: no replies left")

// ScriptedLLM is a ports.LLMProvider returning canned replies in order.
// Replies whose prompt contains a routed marker are served from that route instead,
// which lets a test feed action and monitor calls independently.
type ScriptedLLM struct {
	mu      sync.Mutex
	replies []string
	routes  map[string][]string
	errs    []error
	Prompts []string
}

// NewScriptedLLM creates a provider answering with replies, in order.
func NewScriptedLLM(replies ...string) *ScriptedLLM {
	return &ScriptedLLM{replies: replies, routes: map[string][]string{}}
}

// Route serves replies to prompts containing marker.
func (s *ScriptedLLM) Route(marker string, replies ...string) *ScriptedLLM {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.routes[marker] = append(s.routes[marker], replies...)
	return s
}

// FailNext makes the next call return err.
func (s *ScriptedLLM) FailNext(err error) *ScriptedLLM {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.errs = append(s.errs, err)
	return s
}

// Calls returns how many prompts were received.
func (s *ScriptedLLM) Calls() int {
	s.mu.Lock()
	defer s.mu.Unlock()
	return len(s.Prompts)
}

func (s *ScriptedLLM) GenerateText(_ context.Context, prompt string, cfg ports.GenerateConfig) (*ports.Generation, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.Prompts = append(s.Prompts, prompt)

	if len(s.errs) > 0 {
		err := s.errs[0]
		s.errs = s.errs[1:]
		return nil, err
	}

	for marker, queue := range s.routes {
		if len(queue) > 0 && strings.Contains(prompt, marker) {
			s.routes[marker] = queue[1:]
			return generation(queue[0], cfg), nil
		}
	}

	if len(s.replies) == 0 {
		return nil, ErrScriptExhausted
	}
	reply := s.replies[0]
	s.replies = s.replies[1:]
	return generation(reply, cfg), nil
}

func generation(text string, cfg ports.GenerateConfig) *ports.Generation {
	g := &ports.Generation{Text: text}
	g.Debug.Provider = "scripted"
	g.Debug.Model = cfg.Model
	return g
}
