package ports

import "context"

// TemplateProvider resolves prompt templates.
// Paths follow the convention _system/config/{default|custom/<scheme>}/<actionType>[_monitor]_v1.md.
type TemplateProvider interface {
	// GetTemplate returns the template content.
	// Returns domain.ErrTemplateNotFound if the path does not exist for the project.
	GetTemplate(ctx context.Context, projectID, path string) (string, error)

	// HasTemplate reports whether the path exists for the project.
	HasTemplate(ctx context.Context, projectID, path string) bool
}
