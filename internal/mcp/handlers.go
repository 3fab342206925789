package mcp

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/standardbeagle/cppm/internal/document"
	"github.com/standardbeagle/cppm/internal/quickopen"
	"github.com/standardbeagle/cppm/internal/version"
	"github.com/standardbeagle/cppm/internal/workspace"
	"github.com/standardbeagle/cppm/pkg/pathutil"
)

// CursorParams locates a cursor: a file and a 1-based line.
type CursorParams struct {
	File string `json:"file"`
	Line int    `json:"line"`
}

type QuickOpenParams struct {
	CursorParams
	SearchText string `json:"search_text,omitempty"`
	Max        int    `json:"max,omitempty"`
}

// ModuleResponse is the module_at_cursor result. Lines are 1-based; they are zero
// when Applied is false.
type ModuleResponse struct {
	Applied    bool   `json:"applied"`
	Module     string `json:"module,omitempty"`
	Exported   bool   `json:"exported,omitempty"`
	SearchText string `json:"search_text,omitempty"`
	StartLine  int    `json:"start_line,omitempty"`
	EndLine    int    `json:"end_line,omitempty"`
}

type QuickOpenResponse struct {
	Applied    bool              `json:"applied"`
	SearchText string            `json:"search_text,omitempty"`
	Matches    []quickopen.Match `json:"matches"`
}

type InfoResponse struct {
	Name            string   `json:"name"`
	Version         string   `json:"version"`
	BuildID         string   `json:"build_id"`
	Command         string   `json:"command"`
	Root            string   `json:"root"`
	Files           int      `json:"files"`
	Declarations    int      `json:"declarations"`
	MaxLines        int      `json:"max_lines"`
	IgnoredPrefixes []string `json:"ignored_prefixes"`
	Separator       string   `json:"separator"`
	Watching        bool     `json:"watching"`
	WatchEvents     int64    `json:"watch_events,omitempty"`
	WatchErrors     int64    `json:"watch_errors,omitempty"`
}

func (s *Server) handleModuleAtCursor(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var p CursorParams
	if err := json.Unmarshal(req.Params.Arguments, &p); err != nil {
		return createErrorResponse("module_at_cursor", fmt.Errorf("invalid parameters: %w", err))
	}

	out, err := s.resolve(ctx, p, nil)
	if err != nil {
		return createErrorResponse("module_at_cursor", err)
	}
	if !out.Applied {
		return createJSONResponse(ModuleResponse{})
	}
	return createJSONResponse(ModuleResponse{
		Applied:    true,
		Module:     out.Statement.Name,
		Exported:   out.Statement.Exported,
		SearchText: out.SearchText,
		StartLine:  out.Statement.Start + 1,
		EndLine:    out.Statement.End + 1,
	})
}

func (s *Server) handleQuickOpen(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	var p QuickOpenParams
	if err := json.Unmarshal(req.Params.Arguments, &p); err != nil {
		return createErrorResponse("quick_open", fmt.Errorf("invalid parameters: %w", err))
	}

	opts := workspace.OptionsFromConfig(s.cfg)
	if p.Max > 0 {
		opts.MaxResults = p.Max
	}
	clip := quickopen.NewMemoryClipboard()
	picker := quickopen.NewPicker(s.workspace, s.modules, clip, opts)

	if p.SearchText != "" {
		return createJSONResponse(QuickOpenResponse{
			Applied:    true,
			SearchText: p.SearchText,
			Matches:    nonNil(picker.Search(p.SearchText)),
		})
	}

	out, err := s.resolve(ctx, p.CursorParams, &runTarget{clipboard: clip, commands: picker})
	if err != nil {
		return createErrorResponse("quick_open", err)
	}
	return createJSONResponse(QuickOpenResponse{
		Applied:    out.Applied,
		SearchText: out.SearchText,
		Matches:    nonNil(picker.Matches()),
	})
}

func (s *Server) handleInfo(ctx context.Context, req *mcp.CallToolRequest) (*mcp.CallToolResult, error) {
	info := InfoResponse{
		Name:            serverName,
		Version:         version.Version,
		BuildID:         version.BuildID(),
		Command:         quickopen.CommandID,
		Root:            s.workspace.Root(),
		Files:           s.workspace.Len(),
		Declarations:    len(s.modules.Declarations()),
		MaxLines:        s.cfg.Extract.MaxLines,
		IgnoredPrefixes: s.cfg.Search.IgnoredPrefixes,
		Separator:       s.cfg.Search.Separator,
	}
	if w := s.activeWatcher(); w != nil {
		stats := w.Stats()
		info.Watching = stats.IsActive
		info.WatchEvents = stats.EventsProcessed
		info.WatchErrors = stats.ErrorCount
	}
	return createJSONResponse(info)
}

type runTarget struct {
	clipboard quickopen.Clipboard
	commands  quickopen.Commands
}

// resolve loads the file and runs the recognizer. With a nil target the search text
// goes to a throwaway clipboard and nothing is triggered.
func (s *Server) resolve(ctx context.Context, p CursorParams, target *runTarget) (quickopen.Outcome, error) {
	if p.File == "" {
		return quickopen.Outcome{}, errors.New("file is required")
	}
	if p.Line < 1 {
		return quickopen.Outcome{}, fmt.Errorf("line must be 1 or greater, got %d", p.Line)
	}

	doc, err := document.Load(pathutil.ToAbsolute(p.File, s.workspace.Root()))
	if err != nil {
		return quickopen.Outcome{}, err
	}

	if target == nil {
		target = &runTarget{clipboard: quickopen.NewMemoryClipboard()}
	}
	runner := quickopen.NewRunner(s.cfg, target.clipboard, target.commands)
	return runner.Run(ctx, doc, p.Line-1)
}

func nonNil(matches []quickopen.Match) []quickopen.Match {
	if matches == nil {
		return []quickopen.Match{}
	}
	return matches
}
