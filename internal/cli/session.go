package cli

import (
	"context"
	"fmt"
	"io"
	"os"

	"github.com/aretw0/colloquy"
	"github.com/aretw0/colloquy/internal/presentation/tui"
	"github.com/aretw0/colloquy/pkg/domain"
	"golang.org/x/term"
)

// RunOptions configure an interactive session.
type RunOptions struct {
	ScriptPath string
	SessionID  string
	Headless   bool
	Input      io.Reader
	Output     io.Writer
}

// RunSession drives one session of a script until it completes or the input ends.
func RunSession(ctx context.Context, c *Components, opts RunOptions) (*domain.ExecutionState, error) {
	script, err := os.ReadFile(opts.ScriptPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read script: %w", err)
	}
	if _, err := c.Engine.Validate(script); err != nil {
		return nil, err
	}

	r := colloquy.NewRunner()
	r.Input = opts.Input
	r.Output = opts.Output
	r.Headless = opts.Headless
	r.Store = c.Store
	if r.Input == nil {
		r.Input = os.Stdin
	}
	if r.Output == nil {
		r.Output = os.Stdout
	}

	interactive := !opts.Headless && isTerminal(r.Output)
	if interactive {
		tui.PrintBanner(r.Output, colloquy.Version)
		r.Renderer = tui.NewRenderer(0)
	}

	final, err := r.Run(ctx, c.Engine, script, opts.SessionID)
	if final != nil {
		c.Logger.Info("Session stopped", "session_id", opts.SessionID, "status", final.Status)
	}
	return final, err
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
