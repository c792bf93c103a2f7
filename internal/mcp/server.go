package mcp

import (
	"context"
	"fmt"

	"github.com/mark3labs/mcp-go/server"
	"go.uber.org/zap"

	"github.com/lidayx/lumina-engine/internal/engine"
)

const (
	// ServerName is the MCP server name
	ServerName = "lumina-engine"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with the query engine
type Server struct {
	mcp    *server.MCPServer
	engine *engine.Engine
	log    *zap.Logger
}

// NewServer creates a new MCP server instance. The engine is constructed but
// not initialized; call Init before Serve so the first query does not pay the
// migration cost.
func NewServer(cfg engine.Config, log *zap.Logger) (*Server, error) {
	if log == nil {
		log = zap.NewNop()
	}
	eng, err := engine.NewEngine(cfg, log)
	if err != nil {
		return nil, fmt.Errorf("failed to create engine: %w", err)
	}

	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
	)

	s := &Server{
		mcp:    mcpServer,
		engine: eng,
		log:    log,
	}
	s.registerTools()
	return s, nil
}

// Init opens the database and loads the alias table. A failure here is not
// fatal to serving: the engine degrades reads to empty results and retries
// initialization on the next request.
func (s *Server) Init(ctx context.Context) error {
	return s.engine.Init(ctx)
}

// Serve starts the MCP server on stdio and blocks until shutdown
func (s *Server) Serve(ctx context.Context) error {
	defer func() {
		if err := s.engine.Close(); err != nil {
			s.log.Warn("engine close failed", zap.Error(err))
		}
	}()
	return server.ServeStdio(s.mcp)
}

// Close drains pending debounced writes and closes the engine. Safe to call
// more than once.
func (s *Server) Close() error {
	return s.engine.Close()
}

// registerTools registers all MCP tools
func (s *Server) registerTools() {
	s.mcp.AddTool(queryTool(), s.handleQuery)
	s.mcp.AddTool(recordLaunchTool(), s.handleRecordLaunch)
	s.mcp.AddTool(indexItemsTool(), s.handleIndexItems)
	s.mcp.AddTool(pruneItemsTool(), s.handlePruneItems)
	s.mcp.AddTool(getStatsTool(), s.handleGetStats)
	s.mcp.AddTool(addAliasTool(), s.handleAddAlias)
	s.mcp.AddTool(removeAliasTool(), s.handleRemoveAlias)
	s.mcp.AddTool(updateAliasTool(), s.handleUpdateAlias)
	s.mcp.AddTool(listAliasesTool(), s.handleListAliases)
}
