package llm_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/aretw0/colloquy/pkg/adapters/llm"
	"github.com/aretw0/colloquy/pkg/ports"
	"github.com/ollama/ollama/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/genai"
)

func TestNew_UnknownBackend(t *testing.T) {
	_, err := llm.New(context.Background(), llm.Config{Backend: "gpt-local"})
	assert.ErrorContains(t, err, "unsupported LLM backend")
}

func TestNew_GeminiRequiresKey(t *testing.T) {
	t.Setenv("GEMINI_API_KEY", "")
	_, err := llm.New(context.Background(), llm.Config{})
	assert.ErrorContains(t, err, "API key")
}

func TestOllama_GenerateText(t *testing.T) {
	var got api.GenerateRequest
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&got))
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"model":"llama3","response":"{\"message\":\"hi\"}","done":true}` + "\n"))
	}))
	defer srv.Close()

	u, err := url.Parse(srv.URL)
	require.NoError(t, err)
	p := llm.NewOllama(api.NewClient(u, srv.Client()), "llama3")

	gen, err := p.GenerateText(context.Background(), "prompt", ports.GenerateConfig{Temperature: 0.2, MaxTokens: 64, JSON: true})
	require.NoError(t, err)
	assert.Equal(t, `{"message":"hi"}`, gen.Text)
	assert.Equal(t, "ollama", gen.Debug.Provider)
	assert.Equal(t, "llama3", gen.Debug.Model)

	assert.Equal(t, "llama3", got.Model)
	assert.Equal(t, "prompt", got.Prompt)
	assert.Equal(t, `"json"`, string(got.Format))
	assert.EqualValues(t, 64, got.Options["num_predict"])
}

func TestOllama_ServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"model not found"}`, http.StatusNotFound)
	}))
	defer srv.Close()

	u, _ := url.Parse(srv.URL)
	_, err := llm.NewOllama(api.NewClient(u, srv.Client()), "").GenerateText(context.Background(), "p", ports.GenerateConfig{})
	assert.ErrorContains(t, err, "ollama generate")
}

func TestGemini_GenerateText(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.True(t, strings.HasSuffix(r.URL.Path, "gemini-test:generateContent"), r.URL.Path)
		w.Header().Set("Content-Type", "application/json")
		_, _ = w.Write([]byte(`{"candidates":[{"content":{"role":"model","parts":[{"text":"Hello "},{"text":"there"}]}}]}`))
	}))
	defer srv.Close()

	client, err := genai.NewClient(context.Background(), &genai.ClientConfig{
		APIKey:      "test-key",
		Backend:     genai.BackendGeminiAPI,
		HTTPClient:  srv.Client(),
		HTTPOptions: genai.HTTPOptions{BaseURL: srv.URL + "/"},
	})
	require.NoError(t, err)

	gen, err := llm.NewGemini(client, "gemini-test").GenerateText(context.Background(), "hi", ports.GenerateConfig{})
	require.NoError(t, err)
	assert.Equal(t, "Hello there", gen.Text)
	assert.Equal(t, "gemini", gen.Debug.Provider)
}
