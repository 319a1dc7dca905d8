// Package mcp exposes session turns as Model Context Protocol tools so an
// MCP client (an IDE or another agent) can hold a scripted conversation.
package mcp

import (
	"context"
	"fmt"
	"log/slog"
	"strings"

	"github.com/aretw0/colloquy"
	"github.com/aretw0/colloquy/internal/logging"
	"github.com/aretw0/colloquy/pkg/domain"
	"github.com/aretw0/colloquy/pkg/session"
	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
)

// scriptURI names the resource holding the served script.
const scriptURI = "colloquy://script"

// Engine runs one turn of a script. *colloquy.Engine satisfies it.
type Engine interface {
	ExecuteSession(ctx context.Context, script []byte, sessionID string, state *domain.ExecutionState, input *string) (*domain.ExecutionState, error)
}

// SendMessageArgs are the arguments of the send_message tool.
type SendMessageArgs struct {
	SessionID string  `json:"session_id"`
	Message   *string `json:"message,omitempty"`
}

// GetSessionArgs are the arguments of the get_session tool.
type GetSessionArgs struct {
	SessionID string `json:"session_id"`
}

// TurnResponse is the structured result of both tools.
type TurnResponse struct {
	SessionID string                 `json:"session_id" jsonschema_description:"Session the state belongs to"`
	Status    domain.ExecutionStatus `json:"status" jsonschema_description:"running, waiting_input, completed or error"`
	Reply     string                 `json:"reply,omitempty" jsonschema_description:"Latest assistant message"`
	Error     string                 `json:"error,omitempty" jsonschema_description:"Action error of the last turn, if any"`
	Diff      *domain.StateDiff      `json:"diff,omitempty" jsonschema_description:"Changes since the previous state"`
}

// Server wraps the engine and exposes it as an MCP Server.
type Server struct {
	engine    Engine
	sessions  *session.Manager
	script    []byte
	logger    *slog.Logger
	mcpServer *server.MCPServer
}

// Option configures the Server.
type Option func(*Server)

// WithLogger sets the logger. Note that stdio transport owns stdout.
func WithLogger(logger *slog.Logger) Option {
	return func(s *Server) {
		s.logger = logger
	}
}

// NewServer creates a new MCP Server instance.
func NewServer(engine Engine, sessions *session.Manager, script []byte, opts ...Option) *Server {
	s := &Server{
		engine:    engine,
		sessions:  sessions,
		script:    script,
		logger:    logging.NewNop(),
		mcpServer: server.NewMCPServer("colloquy-mcp", strings.TrimSpace(colloquy.Version)),
	}
	for _, opt := range opts {
		opt(s)
	}
	s.registerTools()
	s.registerResources()
	return s
}

// ServeStdio starts the server on Stdin/Stdout.
func (s *Server) ServeStdio() error {
	return server.ServeStdio(s.mcpServer)
}

// MCPServer returns the underlying server, e.g. to serve it over another transport.
func (s *Server) MCPServer() *server.MCPServer {
	return s.mcpServer
}

func (s *Server) registerTools() {
	sendTool := mcp.NewTool("send_message",
		mcp.WithDescription("Run one conversation turn. Omit message to let the assistant speak first or continue."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Conversation session ID")),
		mcp.WithString("message", mcp.Description("User message (optional)")),
		mcp.WithOutputSchema[TurnResponse](),
	)
	s.mcpServer.AddTool(sendTool, mcp.NewStructuredToolHandler(s.SendMessage))

	getTool := mcp.NewTool("get_session",
		mcp.WithDescription("Return the current status and latest reply of a session."),
		mcp.WithString("session_id", mcp.Required(), mcp.Description("Conversation session ID")),
		mcp.WithOutputSchema[TurnResponse](),
	)
	s.mcpServer.AddTool(getTool, mcp.NewStructuredToolHandler(s.GetSession))
}

// SendMessage runs one turn for the session.
func (s *Server) SendMessage(ctx context.Context, _ mcp.CallToolRequest, args SendMessageArgs) (TurnResponse, error) {
	if args.SessionID == "" {
		return TurnResponse{}, fmt.Errorf("session_id is required")
	}
	if args.Message != nil {
		clean, err := colloquy.SanitizeInput(*args.Message)
		if err != nil {
			return TurnResponse{}, err
		}
		args.Message = &clean
	}
	prev, next, err := s.sessions.Update(ctx, args.SessionID, func(ctx context.Context, prev *domain.ExecutionState) (*domain.ExecutionState, error) {
		return s.engine.ExecuteSession(ctx, s.script, args.SessionID, prev, args.Message)
	})
	if err != nil {
		s.logger.Error("MCP send_message failed", "session_id", args.SessionID, "err", err)
		return TurnResponse{}, fmt.Errorf("turn failed: %w", err)
	}
	resp := toResponse(next)
	resp.Diff = domain.Diff(prev, next)
	return resp, nil
}

// GetSession reports the stored state of a session.
func (s *Server) GetSession(ctx context.Context, _ mcp.CallToolRequest, args GetSessionArgs) (TurnResponse, error) {
	state, err := s.sessions.Load(ctx, args.SessionID)
	if err != nil {
		return TurnResponse{}, fmt.Errorf("load session %q: %w", args.SessionID, err)
	}
	return toResponse(state), nil
}

func toResponse(state *domain.ExecutionState) TurnResponse {
	resp := TurnResponse{
		SessionID: state.SessionID,
		Status:    state.Status,
		Reply:     state.LastAIMessage,
	}
	if state.Status == domain.StatusError && state.Metadata.Error != nil {
		resp.Error = state.Metadata.Error.Message
	}
	return resp
}

func (s *Server) registerResources() {
	s.mcpServer.AddResource(mcp.NewResource(scriptURI, "Conversation Script",
		mcp.WithMIMEType("application/yaml"),
	), func(ctx context.Context, request mcp.ReadResourceRequest) ([]mcp.ResourceContents, error) {
		return []mcp.ResourceContents{
			mcp.TextResourceContents{
				URI:      scriptURI,
				MIMEType: "application/yaml",
				Text:     string(s.script),
			},
		}, nil
	})
}
