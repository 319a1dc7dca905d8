package prompt_test

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"

	"github.com/aretw0/colloquy/internal/prompt"
	"github.com/aretw0/colloquy/pkg/adapters/memory"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTemplatePaths(t *testing.T) {
	assert.Equal(t, "ai_ask_v1.md", prompt.TemplateName("ai_ask", false))
	assert.Equal(t, "ai_ask_monitor_v1.md", prompt.TemplateName("ai_ask", true))
	assert.Equal(t, "_system/config/default/ai_say_v1.md", prompt.DefaultPath("ai_say_v1.md"))
	assert.Equal(t, "_system/config/custom/gentle/ai_say_v1.md", prompt.CustomPath("gentle", "ai_say_v1.md"))
}

func TestResolve_TwoTiers(t *testing.T) {
	ctx := context.Background()
	tpl := memory.NewTemplates()
	tpl.SetTemplate("p", prompt.DefaultPath("ai_ask_v1.md"), "default")
	tpl.SetTemplate("p", prompt.CustomPath("gentle", "ai_ask_v1.md"), "custom")

	r := prompt.NewResolver(tpl, nil)

	got, err := r.Resolve(ctx, "p", "gentle", "ai_ask_v1.md")
	require.NoError(t, err)
	assert.Equal(t, "custom", got)

	got, err = r.Resolve(ctx, "p", "other", "ai_ask_v1.md")
	require.NoError(t, err)
	assert.Equal(t, "default", got)

	got, err = r.Resolve(ctx, "p", "", "ai_ask_v1.md")
	require.NoError(t, err)
	assert.Equal(t, "default", got)
}

func TestResolve_RootProjectFallback(t *testing.T) {
	ctx := context.Background()
	tpl := memory.NewTemplates()
	tpl.SetTemplate("", prompt.DefaultPath("ai_say_v1.md"), "shared default")
	tpl.SetTemplate("", prompt.CustomPath("gentle", "ai_say_v1.md"), "shared custom")
	tpl.SetTemplate("acme", prompt.CustomPath("gentle", "ai_say_v1.md"), "acme custom")

	r := prompt.NewResolver(tpl, nil)

	got, err := r.Resolve(ctx, "demo", "", "ai_say_v1.md")
	require.NoError(t, err)
	assert.Equal(t, "shared default", got)

	got, err = r.Resolve(ctx, "demo", "gentle", "ai_say_v1.md")
	require.NoError(t, err)
	assert.Equal(t, "shared custom", got)

	got, err = r.Resolve(ctx, "acme", "gentle", "ai_say_v1.md")
	require.NoError(t, err)
	assert.Equal(t, "acme custom", got, "the project's own copy wins")
}

func TestResolve_MissingDefault(t *testing.T) {
	var buf bytes.Buffer
	r := prompt.NewResolver(memory.NewTemplates(), slog.New(slog.NewTextHandler(&buf, nil)))

	_, err := r.Resolve(context.Background(), "p", "gentle", "ai_ask_monitor_v1.md")
	assert.ErrorIs(t, err, domain.ErrDefaultTemplateMissing)
	assert.Contains(t, buf.String(), "level=ERROR")
}

func TestRender(t *testing.T) {
	out := prompt.Render("Hi {{name}}, {{ age }} {{unknown}} {{list}}", map[string]any{
		"name": "Ana",
		"age":  31,
		"list": []string{"a", "b"},
	})
	assert.Equal(t, `Hi Ana, 31 {{unknown}} ["a","b"]`, out)
}

func TestFormatHistory(t *testing.T) {
	msgs := []domain.Message{
		{Role: domain.RoleAssistant, Content: "one"},
		{Role: domain.RoleUser, Content: "two"},
		{Role: domain.RoleAssistant, Content: "three"},
	}
	assert.Equal(t, "user: two\nassistant: three", prompt.FormatHistory(msgs, 2))
	assert.Equal(t, "(no messages yet)", prompt.FormatHistory(nil, 10))
}

func TestFormatVariables(t *testing.T) {
	assert.Equal(t, "a: 1\nb: x", prompt.FormatVariables(map[string]any{"b": "x", "a": 1}))
	assert.Equal(t, "(none)", prompt.FormatVariables(nil))
}

func TestSeedDefaults(t *testing.T) {
	tpl := memory.NewTemplates()
	prompt.SeedDefaults(tpl, "demo")

	for _, name := range []string{"ai_ask_v1.md", "ai_say_v1.md", "ai_ask_monitor_v1.md", "ai_say_monitor_v1.md"} {
		assert.True(t, tpl.HasTemplate(context.Background(), "demo", prompt.DefaultPath(name)), name)
	}
}

func TestWriteDefaults(t *testing.T) {
	dir := t.TempDir()
	existing := filepath.Join(dir, "_system", "config", "default", "ai_ask_v1.md")
	require.NoError(t, os.MkdirAll(filepath.Dir(existing), 0o755))
	require.NoError(t, os.WriteFile(existing, []byte("mine"), 0o644))

	written, err := prompt.WriteDefaults(dir, false)
	require.NoError(t, err)
	assert.Len(t, written, 3)

	b, err := os.ReadFile(existing)
	require.NoError(t, err)
	assert.Equal(t, "mine", string(b))

	written, err = prompt.WriteDefaults(dir, true)
	require.NoError(t, err)
	assert.Len(t, written, 4)
}
