// Package prompt resolves and renders the markdown prompt templates used by
// actions and monitors.
package prompt

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/aretw0/colloquy/internal/logging"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/ports"
)

// Resolver looks templates up in two tiers: the scheme's custom copy, then the default.
// Each tier is looked up in the script's project first and then in the root
// project (empty id), which holds the shared defaults.
type Resolver struct {
	provider ports.TemplateProvider
	logger   *slog.Logger
}

// NewResolver creates a resolver over provider.
func NewResolver(provider ports.TemplateProvider, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = logging.NewNop()
	}
	return &Resolver{provider: provider, logger: logger}
}

// Resolve returns the content of the named template.
// A missing custom template is normal; a missing default is an initialization bug
// and returns domain.ErrDefaultTemplateMissing.
func (r *Resolver) Resolve(ctx context.Context, projectID, scheme, name string) (string, error) {
	if r == nil || r.provider == nil {
		return "", fmt.Errorf("%w: %s (no template provider)", domain.ErrDefaultTemplateMissing, name)
	}

	if scheme != "" {
		custom := CustomPath(scheme, name)
		if pid, ok := r.locate(ctx, projectID, custom); ok {
			content, err := r.provider.GetTemplate(ctx, pid, custom)
			if err == nil {
				return content, nil
			}
			r.logger.Warn("Failed to read custom template, using default", "path", custom, "error", err)
		} else {
			r.logger.Debug("No custom template", "path", custom)
		}
	}

	def := DefaultPath(name)
	pid, _ := r.locate(ctx, projectID, def)
	content, err := r.provider.GetTemplate(ctx, pid, def)
	if err != nil {
		r.logger.Error("Default template missing; project was not initialized",
			"path", def,
			"project_id", projectID,
			"error", err,
		)
		return "", fmt.Errorf("%w: %s: %v", domain.ErrDefaultTemplateMissing, def, err)
	}
	return content, nil
}

// locate returns the project holding path: projectID itself, else the root project.
// When neither has it, projectID is returned with false.
func (r *Resolver) locate(ctx context.Context, projectID, path string) (string, bool) {
	if r.provider.HasTemplate(ctx, projectID, path) {
		return projectID, true
	}
	if projectID != "" && r.provider.HasTemplate(ctx, "", path) {
		return "", true
	}
	return projectID, false
}
