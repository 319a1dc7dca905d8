package colloquy

import (
	"bufio"
	"context"
	"errors"
	"fmt"
	"io"
	"strings"

	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/ports"
)

// Runner drives a session interactively over an io.Reader/io.Writer pair.
// This allows for easy testing and integration with different frontends (CLI, TUI, etc).
type Runner struct {
	Input    io.Reader
	Output   io.Writer
	Headless bool
	Renderer ContentRenderer

	// Store, when set, persists the state after every turn and reloads it
	// before the next, exactly like a stateless host would.
	Store ports.StateStore
}

// ContentRenderer is a function that transforms the content before outputting it.
// This allows for TUI rendering (markdown to ANSI) without coupling the core package.
type ContentRenderer func(string) (string, error)

// NewRunner creates a Runner. Input and Output must be set before Run.
func NewRunner() *Runner {
	return &Runner{}
}

// Run executes turns until the session completes, the input ends or the user
// types "exit"/"quit". A session that completes an action moves on to the next
// one without waiting for input.
func (r *Runner) Run(ctx context.Context, engine *Engine, script []byte, sessionID string) (*domain.ExecutionState, error) {
	if r.Input == nil {
		return nil, fmt.Errorf("input reader must be set (use os.Stdin)")
	}
	if r.Output == nil {
		return nil, fmt.Errorf("output writer must be set (use os.Stdout)")
	}
	lineReader := bufio.NewReader(r.Input)

	state, err := r.load(ctx, sessionID)
	if err != nil {
		return nil, err
	}

	if !r.Headless {
		fmt.Fprintln(r.Output, "--- colloquy ---")
	}

	var input *string
	if state != nil && state.Status == domain.StatusCompleted {
		return state, nil
	}
	if state != nil && state.Status != domain.StatusRunning {
		// Resuming a session that was waiting for the user.
		if state.LastAIMessage != "" {
			r.print(state.LastAIMessage)
		}
		if input, err = r.read(lineReader); input == nil || err != nil {
			return state, err
		}
	}

	for {
		seen := 0
		if state != nil {
			seen = len(state.ConversationHistory)
		}

		next, err := engine.ExecuteSession(ctx, script, sessionID, state, input)
		if err != nil {
			return state, err
		}
		state, err = r.persist(ctx, sessionID, next)
		if err != nil {
			return next, err
		}

		for _, m := range state.ConversationHistory[min(seen, len(state.ConversationHistory)):] {
			if m.Role == domain.RoleAssistant {
				r.print(m.Content)
			}
		}

		switch state.Status {
		case domain.StatusCompleted:
			if !r.Headless {
				fmt.Fprintln(r.Output, "--- end of conversation ---")
			}
			return state, nil
		case domain.StatusRunning:
			input = nil
			continue
		case domain.StatusError:
			if state.Metadata.Error != nil {
				fmt.Fprintf(r.Output, "error: %s\n", state.Metadata.Error.Message)
			}
		}

		input, err = r.read(lineReader)
		if input == nil || err != nil {
			return state, err
		}
	}
}

// read returns nil on EOF or an exit command. Input rejected by SanitizeInput
// is reported and the user is prompted again.
func (r *Runner) read(lineReader *bufio.Reader) (*string, error) {
	for {
		if !r.Headless {
			fmt.Fprint(r.Output, "> ")
		}
		text, err := lineReader.ReadString('\n')
		if err != nil {
			if !errors.Is(err, io.EOF) {
				return nil, fmt.Errorf("input error: %w", err)
			}
			if strings.TrimSpace(text) == "" {
				return nil, nil
			}
		}
		text = strings.TrimSpace(text)
		if text == "exit" || text == "quit" {
			if !r.Headless {
				fmt.Fprintln(r.Output, "Bye!")
			}
			return nil, nil
		}
		clean, serr := SanitizeInput(text)
		if serr != nil {
			fmt.Fprintf(r.Output, "error: %s\n", serr)
			if err != nil {
				return nil, nil
			}
			continue
		}
		return &clean, nil
	}
}

func (r *Runner) print(msg string) {
	output := msg
	if r.Renderer != nil {
		if rendered, err := r.Renderer(msg); err == nil {
			output = rendered
		}
	}
	fmt.Fprintln(r.Output, strings.TrimSpace(output))
}

func (r *Runner) load(ctx context.Context, sessionID string) (*domain.ExecutionState, error) {
	if r.Store == nil {
		return nil, nil
	}
	state, err := r.Store.Load(ctx, sessionID)
	if errors.Is(err, domain.ErrSessionNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load session %s: %w", sessionID, err)
	}
	return state, nil
}

// persist saves state and reads it back so the next turn starts from the stored form.
func (r *Runner) persist(ctx context.Context, sessionID string, state *domain.ExecutionState) (*domain.ExecutionState, error) {
	if r.Store == nil {
		return state, nil
	}
	if err := r.Store.Save(ctx, sessionID, state); err != nil {
		return nil, fmt.Errorf("failed to save session %s: %w", sessionID, err)
	}
	return r.Store.Load(ctx, sessionID)
}
