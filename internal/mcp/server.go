// Package mcp exposes the module-import recognizer and quick open as MCP tools over stdio.
package mcp

import (
	"context"
	"fmt"
	"sync"

	"github.com/google/jsonschema-go/jsonschema"
	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/cppm/internal/config"
	"github.com/standardbeagle/cppm/internal/debug"
	"github.com/standardbeagle/cppm/internal/modindex"
	"github.com/standardbeagle/cppm/internal/version"
	"github.com/standardbeagle/cppm/internal/watch"
	"github.com/standardbeagle/cppm/internal/workspace"
)

const serverName = "cppm-mcp-server"

// Server owns the indexes behind the tools. The watcher, when enabled, keeps them
// current while the server runs.
type Server struct {
	cfg       *config.Config
	workspace *workspace.Index
	modules   *modindex.Index
	server    *mcp.Server

	mu      sync.Mutex // guards watcher; handlers read it while Shutdown clears it
	watcher *watch.Watcher
}

// NewServer indexes the configured root and registers the tools.
func NewServer(ctx context.Context, cfg *config.Config) (*Server, error) {
	ws := workspace.New(cfg)
	if err := ws.Scan(ctx); err != nil {
		return nil, fmt.Errorf("failed to index workspace: %w", err)
	}
	mods := modindex.New(ws.Root())
	if err := mods.Scan(ctx, ws.Paths()); err != nil {
		// unreadable files are dropped from the module index; keep serving
		debug.LogMCP("module scan reported: %v\n", err)
	}

	s := &Server{
		cfg:       cfg,
		workspace: ws,
		modules:   mods,
	}
	s.server = mcp.NewServer(&mcp.Implementation{
		Name:    serverName,
		Version: version.Version,
	}, nil)
	s.registerTools()

	debug.LogMCP("indexed %d files, %d module declarations\n", ws.Len(), len(mods.Declarations()))
	return s, nil
}

func (s *Server) registerTools() {
	s.server.AddTool(&mcp.Tool{
		Name:        "module_at_cursor",
		Description: "Recognize the C++ `import`/`export import` statement at a line (possibly spanning several lines) and return the module name and quick-open search text.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"file": {
					Type:        "string",
					Description: "Source file, absolute or relative to the project root",
				},
				"line": {
					Type:        "integer",
					Description: "1-based cursor line",
				},
			},
			Required: []string{"file", "line"},
		},
	}, s.handleModuleAtCursor)

	s.server.AddTool(&mcp.Tool{
		Name:        "quick_open",
		Description: "Find the files for the module imported at file:line, or for a search text such as \"/app/net/http\". Files declaring the module rank first.",
		InputSchema: &jsonschema.Schema{
			Type: "object",
			Properties: map[string]*jsonschema.Schema{
				"file": {
					Type:        "string",
					Description: "Source file, absolute or relative to the project root",
				},
				"line": {
					Type:        "integer",
					Description: "1-based cursor line",
				},
				"search_text": {
					Type:        "string",
					Description: "Search text to use instead of file and line",
				},
				"max": {
					Type:        "integer",
					Description: "Maximum results (default from config)",
				},
			},
		},
	}, s.handleQuickOpen)

	s.server.AddTool(&mcp.Tool{
		Name:        "info",
		Description: "Server version, project root, index sizes and the active search settings.",
		InputSchema: &jsonschema.Schema{
			Type:       "object",
			Properties: map[string]*jsonschema.Schema{},
		},
	}, s.handleInfo)
}

// Start serves over stdio until ctx is cancelled or the client disconnects.
func (s *Server) Start(ctx context.Context) error {
	if s.cfg.Watch.Enabled {
		if err := s.startWatcher(ctx); err != nil {
			return err
		}
	}

	debug.LogMCP("starting MCP server with stdio transport\n")
	return s.server.Run(ctx, &mcp.StdioTransport{})
}

func (s *Server) startWatcher(ctx context.Context) error {
	w, err := watch.New(s.cfg, s.workspace, s.modules)
	if err != nil {
		return err
	}
	if err := w.Start(ctx); err != nil {
		_ = w.Stop()
		return err
	}

	s.mu.Lock()
	s.watcher = w
	s.mu.Unlock()
	return nil
}

// activeWatcher returns the running watcher, or nil.
func (s *Server) activeWatcher() *watch.Watcher {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.watcher
}

// Shutdown stops the watcher.
func (s *Server) Shutdown() error {
	s.mu.Lock()
	w := s.watcher
	s.watcher = nil
	s.mu.Unlock()

	if w == nil {
		return nil
	}
	return w.Stop()
}
