// Package http exposes session turns over a JSON HTTP API.
package http

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/aretw0/colloquy"
	"github.com/aretw0/colloquy/internal/logging"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/session"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
)

// Engine runs one turn of a script. *colloquy.Engine satisfies it.
type Engine interface {
	ExecuteSession(ctx context.Context, script []byte, sessionID string, state *domain.ExecutionState, input *string) (*domain.ExecutionState, error)
}

// TurnRequest is the body of POST /sessions and POST /sessions/{id}/turns.
// A missing input means the user has not spoken.
type TurnRequest struct {
	Input *string `json:"input,omitempty"`
}

// TurnResponse carries the new state and what changed since the previous one.
type TurnResponse struct {
	State *domain.ExecutionState `json:"state"`
	Diff  *domain.StateDiff      `json:"diff,omitempty"`
}

type errorResponse struct {
	Error string `json:"error"`
}

// Server serves a single script to many sessions.
type Server struct {
	Engine   Engine
	Sessions *session.Manager
	Script   []byte
	Metrics  http.Handler
	Logger   *slog.Logger
}

// Option configures the handler.
type Option func(*Server)

// WithMetricsHandler mounts h at /metrics.
func WithMetricsHandler(h http.Handler) Option {
	return func(s *Server) {
		s.Metrics = h
	}
}

// WithLogger sets the request logger.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.Logger = logger
	}
}

// NewHandler creates the HTTP handler.
func NewHandler(engine Engine, sessions *session.Manager, script []byte, opts ...Option) http.Handler {
	s := &Server{
		Engine:   engine,
		Sessions: sessions,
		Script:   script,
		Logger:   logging.NewNop(),
	}
	for _, opt := range opts {
		opt(s)
	}

	r := chi.NewRouter()
	r.Use(middleware.RequestID)
	r.Use(middleware.Recoverer)
	r.Use(enableCORS)

	r.Get("/health", s.Health)
	if s.Metrics != nil {
		r.Handle("/metrics", s.Metrics)
	}
	r.Route("/sessions", func(r chi.Router) {
		r.Get("/", s.ListSessions)
		r.Post("/", s.CreateSession)
		r.Route("/{id}", func(r chi.Router) {
			r.Get("/", s.GetSession)
			r.Delete("/", s.DeleteSession)
			r.Post("/turns", s.PostTurn)
		})
	})
	return r
}

func enableCORS(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type")
		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}
		next.ServeHTTP(w, r)
	})
}

// Health handles GET /health.
func (s *Server) Health(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

// ListSessions handles GET /sessions.
func (s *Server) ListSessions(w http.ResponseWriter, r *http.Request) {
	ids, err := s.Sessions.List(r.Context())
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "List sessions failed", err)
		return
	}
	if ids == nil {
		ids = []string{}
	}
	writeJSON(w, http.StatusOK, map[string][]string{"sessions": ids})
}

// CreateSession handles POST /sessions: a new id and its first turn.
func (s *Server) CreateSession(w http.ResponseWriter, r *http.Request) {
	s.turn(w, r, uuid.NewString(), http.StatusCreated)
}

// PostTurn handles POST /sessions/{id}/turns.
func (s *Server) PostTurn(w http.ResponseWriter, r *http.Request) {
	s.turn(w, r, chi.URLParam(r, "id"), http.StatusOK)
}

func (s *Server) turn(w http.ResponseWriter, r *http.Request, sessionID string, status int) {
	var body TurnRequest
	if r.ContentLength != 0 {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil {
			s.fail(w, http.StatusBadRequest, "Invalid request body", err)
			return
		}
	}
	if body.Input != nil {
		clean, err := colloquy.SanitizeInput(*body.Input)
		if err != nil {
			s.fail(w, http.StatusBadRequest, "Invalid input", err)
			return
		}
		body.Input = &clean
	}

	prev, next, err := s.Sessions.Update(r.Context(), sessionID, func(ctx context.Context, prev *domain.ExecutionState) (*domain.ExecutionState, error) {
		return s.Engine.ExecuteSession(ctx, s.Script, sessionID, prev, body.Input)
	})
	if err != nil {
		code := http.StatusInternalServerError
		if errors.Is(err, domain.ErrScriptInvalid) {
			code = http.StatusUnprocessableEntity
		}
		s.fail(w, code, "Turn failed", err)
		return
	}

	if next.Status == domain.StatusError && next.Metadata.Error != nil {
		s.Logger.Warn("Turn ended in error state", "session_id", sessionID, "err", next.Metadata.Error.Message)
	}
	writeJSON(w, status, TurnResponse{State: next, Diff: domain.Diff(prev, next)})
}

// GetSession handles GET /sessions/{id}.
func (s *Server) GetSession(w http.ResponseWriter, r *http.Request) {
	state, err := s.Sessions.Load(r.Context(), chi.URLParam(r, "id"))
	if errors.Is(err, domain.ErrSessionNotFound) {
		s.fail(w, http.StatusNotFound, "Session not found", err)
		return
	}
	if err != nil {
		s.fail(w, http.StatusInternalServerError, "Load session failed", err)
		return
	}
	writeJSON(w, http.StatusOK, TurnResponse{State: state})
}

// DeleteSession handles DELETE /sessions/{id}.
func (s *Server) DeleteSession(w http.ResponseWriter, r *http.Request) {
	if err := s.Sessions.Delete(r.Context(), chi.URLParam(r, "id")); err != nil {
		s.fail(w, http.StatusInternalServerError, "Delete session failed", err)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *Server) fail(w http.ResponseWriter, code int, msg string, err error) {
	if code >= http.StatusInternalServerError {
		s.Logger.Error(msg, "err", err)
	} else {
		s.Logger.Warn(msg, "err", err)
	}
	writeJSON(w, code, errorResponse{Error: msg + ": " + err.Error()})
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}
