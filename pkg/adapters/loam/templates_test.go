package loam_test

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/colloquy/internal/prompt"
	"github.com/aretw0/colloquy/pkg/adapters/loam"
	"github.com/aretw0/colloquy/pkg/adapters/memory"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, path, content string) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
}

func TestTemplates_ProjectLayout(t *testing.T) {
	dir := t.TempDir()
	_, err := prompt.WriteDefaults(filepath.Join(dir, "acme"), false)
	require.NoError(t, err)
	writeFile(t, filepath.Join(dir, "acme", "_system", "config", "custom", "friendly", "ai_ask_v1.md"), "Be friendly. {{content}}\n")

	tpl, err := loam.Open(dir)
	require.NoError(t, err)
	ctx := context.Background()

	custom := prompt.CustomPath("friendly", prompt.TemplateName("ai_ask", false))
	assert.True(t, tpl.HasTemplate(ctx, "acme", custom))
	got, err := tpl.GetTemplate(ctx, "acme", custom)
	require.NoError(t, err)
	assert.Contains(t, got, "Be friendly.")

	def := prompt.DefaultPath(prompt.TemplateName("ai_say", true))
	got, err = tpl.GetTemplate(ctx, "acme", def)
	require.NoError(t, err)
	assert.Contains(t, got, "You supervise")

	assert.False(t, tpl.HasTemplate(ctx, "other", def))
	_, err = tpl.GetTemplate(ctx, "other", def)
	assert.ErrorIs(t, err, domain.ErrTemplateNotFound)
}

func TestTemplates_RootProjectAndResolver(t *testing.T) {
	dir := t.TempDir()
	writeFile(t, filepath.Join(dir, "_system", "config", "default", "ai_say_v1.md"), "Say: {{content}}\n")

	tpl, err := loam.Open(dir)
	require.NoError(t, err)

	res := prompt.NewResolver(tpl, nil)
	got, err := res.Resolve(context.Background(), "", "", prompt.TemplateName("ai_say", false))
	require.NoError(t, err)
	assert.Contains(t, got, "Say: {{content}}")

	_, err = res.Resolve(context.Background(), "", "", prompt.TemplateName("ai_ask", false))
	assert.ErrorIs(t, err, domain.ErrDefaultTemplateMissing)
}

func TestTemplates_Fallback(t *testing.T) {
	defaults := memory.NewTemplates()
	prompt.SeedDefaults(defaults, "")

	tpl, err := loam.Open(t.TempDir(), loam.WithFallback(defaults))
	require.NoError(t, err)

	def := prompt.DefaultPath(prompt.TemplateName("ai_ask", false))
	assert.True(t, tpl.HasTemplate(context.Background(), "", def))
	got, err := tpl.GetTemplate(context.Background(), "", def)
	require.NoError(t, err)
	assert.Contains(t, got, "conversational agent")
}
