package mcp

import (
	"context"
	"fmt"
	"os"
	"path/filepath"

	"github.com/charmbracelet/log"
	"github.com/mark3labs/mcp-go/server"

	"github.com/dshills/codechunk-mcp/internal/config"
	"github.com/dshills/codechunk-mcp/internal/indexer"
	"github.com/dshills/codechunk-mcp/internal/parser"
	"github.com/dshills/codechunk-mcp/internal/segmenter"
	"github.com/dshills/codechunk-mcp/internal/store"
)

const (
	// ServerName is the MCP server name
	ServerName = "codechunk-mcp"
	// ServerVersion is the current server version
	ServerVersion = "1.0.0"
)

// Server wraps the MCP server with application dependencies.
type Server struct {
	mcp       *server.MCPServer
	cfg       *config.Config
	segmenter *segmenter.Segmenter
	indexer   *indexer.Indexer
	store     store.Store
	indexLock indexer.IndexLock
	logger    *log.Logger
}

// NewServer creates a new MCP server instance.
func NewServer(cfg *config.Config, logger *log.Logger) (*Server, error) {
	dbPath := cfg.DBPath
	if dir := filepath.Dir(dbPath); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("failed to create database directory: %w", err)
		}
	}

	st, err := store.New(dbPath)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize store: %w", err)
	}

	seg := segmenter.New(cfg.Segmentation(), parser.NewTreeSitter(), logger)
	idx := indexer.New(seg, st, logger)

	mcpServer := server.NewMCPServer(
		ServerName,
		ServerVersion,
	)

	s := &Server{
		mcp:       mcpServer,
		cfg:       cfg,
		segmenter: seg,
		indexer:   idx,
		store:     st,
		logger:    logger.With("component", "mcp"),
	}

	s.registerTools()
	return s, nil
}

// Serve starts the MCP server on stdio and blocks until shutdown.
func (s *Server) Serve(ctx context.Context) error {
	defer func() { _ = s.store.Close() }()
	return server.ServeStdio(s.mcp)
}

// registerTools registers all MCP tools.
func (s *Server) registerTools() {
	s.mcp.AddTool(chunkTextTool(), s.handleChunkText)
	s.mcp.AddTool(chunkFileTool(), s.handleChunkFile)
	s.mcp.AddTool(indexDirectoryTool(), s.handleIndexDirectory)
	s.mcp.AddTool(searchChunksTool(), s.handleSearchChunks)
	s.mcp.AddTool(getStatusTool(), s.handleGetStatus)
}
