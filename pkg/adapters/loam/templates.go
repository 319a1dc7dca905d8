// Package loam serves prompt templates from a markdown project directory
// through the Loam document engine.
package loam

import (
	"context"
	"fmt"
	"path"
	"path/filepath"
	"strings"

	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/ports"
	"github.com/aretw0/loam"
	"github.com/aretw0/loam/pkg/core"
)

// Templates implements ports.TemplateProvider over a Loam repository.
//
// A template for project "acme" at "_system/config/default/ai_ask_v1.md" is the
// document "acme/_system/config/default/ai_ask_v1"; with an empty project id the
// repository root is the project.
type Templates struct {
	repo     core.Repository
	fallback ports.TemplateProvider
}

// Option configures Templates.
type Option func(*Templates)

// WithFallback consults p when a template is missing from the repository.
func WithFallback(p ports.TemplateProvider) Option {
	return func(t *Templates) {
		t.fallback = p
	}
}

// New wraps an initialized Loam repository.
func New(repo core.Repository, opts ...Option) *Templates {
	t := &Templates{repo: repo}
	for _, opt := range opts {
		opt(t)
	}
	return t
}

// Open initializes a read-only Loam repository at dir.
func Open(dir string, opts ...Option) (*Templates, error) {
	absPath, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("invalid path: %w", err)
	}
	// ReadOnly keeps Loam from sandboxing the directory in dev mode.
	repo, err := loam.Init(absPath, loam.WithReadOnly(true))
	if err != nil {
		return nil, fmt.Errorf("failed to initialize loam: %w", err)
	}
	return New(repo, opts...), nil
}

// GetTemplate returns the body of the template document.
func (t *Templates) GetTemplate(ctx context.Context, projectID, p string) (string, error) {
	doc, err := t.repo.Get(ctx, docID(projectID, p))
	if err == nil && strings.TrimSpace(doc.Content) != "" {
		return doc.Content, nil
	}
	if t.fallback != nil {
		return t.fallback.GetTemplate(ctx, projectID, p)
	}
	if err == nil {
		return "", fmt.Errorf("%w: %s/%s is empty", domain.ErrTemplateNotFound, projectID, p)
	}
	return "", fmt.Errorf("%w: %s/%s: %w", domain.ErrTemplateNotFound, projectID, p, err)
}

// HasTemplate reports whether the template exists in the repository or the fallback.
func (t *Templates) HasTemplate(ctx context.Context, projectID, p string) bool {
	if doc, err := t.repo.Get(ctx, docID(projectID, p)); err == nil && strings.TrimSpace(doc.Content) != "" {
		return true
	}
	return t.fallback != nil && t.fallback.HasTemplate(ctx, projectID, p)
}

func docID(projectID, p string) string {
	id := strings.TrimSuffix(p, path.Ext(p))
	if projectID == "" {
		return id
	}
	return path.Join(projectID, id)
}
