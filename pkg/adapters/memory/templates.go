package memory

import (
	"context"
	"fmt"
	"sync"

	"github.com/aretw0/colloquy/pkg/domain"
)

// Templates implements ports.TemplateProvider over an in-memory map keyed by project and path.
type Templates struct {
	mu   sync.RWMutex
	data map[string]map[string]string
}

// NewTemplates creates an empty provider.
func NewTemplates() *Templates {
	return &Templates{data: make(map[string]map[string]string)}
}

// SetTemplate stores content at path for projectID.
func (t *Templates) SetTemplate(projectID, path, content string) {
	t.mu.Lock()
	defer t.mu.Unlock()
	if t.data[projectID] == nil {
		t.data[projectID] = make(map[string]string)
	}
	t.data[projectID][path] = content
}

// GetTemplate returns the content at path, or domain.ErrTemplateNotFound.
func (t *Templates) GetTemplate(_ context.Context, projectID, path string) (string, error) {
	t.mu.RLock()
	defer t.mu.RUnlock()
	content, ok := t.data[projectID][path]
	if !ok {
		return "", fmt.Errorf("%w: %s/%s", domain.ErrTemplateNotFound, projectID, path)
	}
	return content, nil
}

// HasTemplate reports whether path exists for projectID.
func (t *Templates) HasTemplate(_ context.Context, projectID, path string) bool {
	t.mu.RLock()
	defer t.mu.RUnlock()
	_, ok := t.data[projectID][path]
	return ok
}
