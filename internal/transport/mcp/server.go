// Package mcp exposes the retrieval engine over the Model Context
// Protocol. Tools run on a stdio transport, which is why every log in
// this program goes to stderr.
package mcp

import (
	"context"

	"github.com/modelcontextprotocol/go-sdk/mcp"
	"go.uber.org/zap"

	"github.com/pastlight/recollect/internal/domain/search/request"
	"github.com/pastlight/recollect/internal/domain/search/result"
	"github.com/pastlight/recollect/internal/logger"
	"github.com/pastlight/recollect/internal/version"
)

// Engine runs reflection searches.
type Engine interface {
	Search(ctx context.Context, req *request.Request) ([]result.Result, error)
	Degraded() bool
}

// Recorder persists reflections.
type Recorder interface {
	Store(ctx context.Context, content string, tags []string) (string, error)
}

// Server bridges MCP clients to the retrieval engine.
type Server struct {
	mcp      *mcp.Server
	engine   Engine
	recorder Recorder
	defaults request.Defaults
	logger   *zap.Logger
}

// NewServer creates the MCP server and registers its tools.
func NewServer(engine Engine, recorder Recorder, defaults request.Defaults, log *zap.Logger) *Server {
	s := &Server{
		engine:   engine,
		recorder: recorder,
		defaults: defaults,
		logger:   log,
	}

	s.mcp = mcp.NewServer(
		&mcp.Implementation{
			Name:    "recollect",
			Version: version.Version,
		},
		nil, // capabilities are inferred from registered tools
	)

	s.registerTools()
	return s
}

// registerTools registers all tools with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "reflect_on_past",
		Description: "Search past conversations by meaning. Finds earlier discussions, decisions, and stored reflections relevant to a topic, with recent memories ranked higher. Use before re-deriving something that may already have been worked out.",
	}, s.reflectHandler)

	mcp.AddTool(s.mcp, &mcp.Tool{
		Name:        "store_reflection",
		Description: "Save an insight, decision, or lesson learned so future sessions can retrieve it with reflect_on_past. Tag it to make it easier to find.",
	}, s.storeHandler)

	s.logger.Info("MCP tools registered", zap.Int("count", 2))
}

// Run serves the tools over stdio until the context is cancelled.
func (s *Server) Run(ctx context.Context) error {
	ctx = logger.ContextWithLogger(ctx, s.logger)
	s.logger.Info("MCP server listening on stdio")
	return s.mcp.Run(ctx, &mcp.StdioTransport{})
}
