package ports

import (
	"context"

	"github.com/aretw0/colloquy/pkg/domain"
)

// StateStore defines the interface for persisting execution state between turns.
// The engine never calls it; hosts (session manager, HTTP and MCP adapters) do.
type StateStore interface {
	// Save persists the state for a given session ID.
	Save(ctx context.Context, sessionID string, state *domain.ExecutionState) error

	// Load retrieves the state for a given session ID.
	// Returns domain.ErrSessionNotFound if the session does not exist.
	Load(ctx context.Context, sessionID string) (*domain.ExecutionState, error)

	// Delete removes the state for a given session ID.
	Delete(ctx context.Context, sessionID string) error

	// List returns the IDs of all stored sessions.
	List(ctx context.Context) ([]string, error)
}
