package http_test

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/aretw0/colloquy"
	"github.com/aretw0/colloquy/internal/testutils"
	colloquyhttp "github.com/aretw0/colloquy/pkg/adapters/http"
	"github.com/aretw0/colloquy/pkg/adapters/memory"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/session"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const script = `
session:
  session_id: greeting
  phases:
    - phase_id: intro
      topics:
        - topic_id: name
          actions:
            - action_id: ask_name
              action_type: ai_ask
              config:
                content: Ask for the user's name
                output: [{get: user_name}]
`

func newServer(t *testing.T, replies ...string) (*httptest.Server, *memory.Store) {
	t.Helper()
	eng := colloquy.New(colloquy.WithLLM(testutils.NewScriptedLLM(replies...)), colloquy.WithoutMonitor())
	store := memory.NewStore()
	h := colloquyhttp.NewHandler(eng, session.NewManager(store), []byte(script),
		colloquyhttp.WithMetricsHandler(promhttp.HandlerFor(prometheus.NewRegistry(), promhttp.HandlerOpts{})))
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv, store
}

func post(t *testing.T, url, body string) (*http.Response, colloquyhttp.TurnResponse) {
	t.Helper()
	resp, err := http.Post(url, "application/json", strings.NewReader(body))
	require.NoError(t, err)
	defer resp.Body.Close()
	var out colloquyhttp.TurnResponse
	if resp.StatusCode < 300 {
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&out))
	}
	return resp, out
}

func TestServer_TurnLifecycle(t *testing.T) {
	srv, _ := newServer(t,
		`{"message":"What's your name?"}`,
		`{"message":"Nice to meet you","extracted_variables":{"user_name":"Ana"}}`,
	)

	resp, first := post(t, srv.URL+"/sessions/s1/turns", `{}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, domain.StatusWaitingInput, first.State.Status)
	require.NotNil(t, first.Diff)
	require.Len(t, first.Diff.Messages, 1)

	resp, second := post(t, srv.URL+"/sessions/s1/turns", `{"input":"Ana"}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, domain.StatusCompleted, second.State.Status)
	assert.Equal(t, "Ana", second.Diff.Variables["user_name"])
	assert.Len(t, second.Diff.Messages, 2, "user input and the reply")

	get, err := http.Get(srv.URL + "/sessions/s1")
	require.NoError(t, err)
	defer get.Body.Close()
	assert.Equal(t, http.StatusOK, get.StatusCode)

	req, _ := http.NewRequest(http.MethodDelete, srv.URL+"/sessions/s1", nil)
	del, err := http.DefaultClient.Do(req)
	require.NoError(t, err)
	del.Body.Close()
	assert.Equal(t, http.StatusNoContent, del.StatusCode)

	missing, err := http.Get(srv.URL + "/sessions/s1")
	require.NoError(t, err)
	missing.Body.Close()
	assert.Equal(t, http.StatusNotFound, missing.StatusCode)
}

func TestServer_CreateSession(t *testing.T) {
	srv, store := newServer(t, `{"message":"Hi! Name?"}`)

	resp, out := post(t, srv.URL+"/sessions", "")
	assert.Equal(t, http.StatusCreated, resp.StatusCode)
	require.NotEmpty(t, out.State.SessionID)

	_, err := store.Load(t.Context(), out.State.SessionID)
	assert.NoError(t, err)
}

func TestServer_ActionErrorIsReportedInState(t *testing.T) {
	srv, _ := newServer(t) // no replies: the provider fails

	resp, out := post(t, srv.URL+"/sessions/s1/turns", `{}`)
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	assert.Equal(t, domain.StatusError, out.State.Status)
	require.NotNil(t, out.State.Metadata.Error)
}

func TestServer_BadRequestAndHealth(t *testing.T) {
	srv, _ := newServer(t)

	resp, _ := post(t, srv.URL+"/sessions/s1/turns", `{not json`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	t.Setenv(colloquy.EnvMaxInputSize, "4")
	resp, _ = post(t, srv.URL+"/sessions/s1/turns", `{"input":"far too long"}`)
	assert.Equal(t, http.StatusBadRequest, resp.StatusCode)

	for _, path := range []string{"/health", "/metrics", "/sessions"} {
		r, err := http.Get(srv.URL + path)
		require.NoError(t, err)
		r.Body.Close()
		assert.Equal(t, http.StatusOK, r.StatusCode, path)
	}
}
