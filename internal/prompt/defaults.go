package prompt

import (
	"embed"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
)

//go:embed defaults/*.md
var defaultFS embed.FS

// Defaults returns the embedded default templates keyed by their project path.
func Defaults() map[string]string {
	out := make(map[string]string)
	entries, _ := fs.ReadDir(defaultFS, "defaults")
	for _, e := range entries {
		b, err := fs.ReadFile(defaultFS, "defaults/"+e.Name())
		if err != nil {
			continue
		}
		out[DefaultPath(e.Name())] = string(b)
	}
	return out
}

// TemplateWriter accepts templates for a project.
type TemplateWriter interface {
	SetTemplate(projectID, path, content string)
}

// SeedDefaults loads the embedded defaults into w for projectID.
func SeedDefaults(w TemplateWriter, projectID string) {
	for p, content := range Defaults() {
		w.SetTemplate(projectID, p, content)
	}
}

// WriteDefaults writes the embedded defaults under dir, keeping existing files
// unless overwrite is set. It returns the written paths.
func WriteDefaults(dir string, overwrite bool) ([]string, error) {
	defaults := Defaults()
	paths := make([]string, 0, len(defaults))
	for p := range defaults {
		paths = append(paths, p)
	}
	sort.Strings(paths)

	var written []string
	for _, p := range paths {
		target := filepath.Join(dir, filepath.FromSlash(p))
		if !overwrite {
			if _, err := os.Stat(target); err == nil {
				continue
			}
		}
		if err := os.MkdirAll(filepath.Dir(target), 0o755); err != nil {
			return written, fmt.Errorf("failed to create %s: %w", filepath.Dir(target), err)
		}
		if err := os.WriteFile(target, []byte(defaults[p]), 0o644); err != nil {
			return written, fmt.Errorf("failed to write %s: %w", target, err)
		}
		written = append(written, target)
	}
	return written, nil
}
