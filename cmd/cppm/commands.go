package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"
	"time"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/cppm/internal/config"
	"github.com/standardbeagle/cppm/internal/debug"
	"github.com/standardbeagle/cppm/internal/document"
	cppmerrors "github.com/standardbeagle/cppm/internal/errors"
	"github.com/standardbeagle/cppm/internal/mcp"
	"github.com/standardbeagle/cppm/internal/modindex"
	"github.com/standardbeagle/cppm/internal/quickopen"
	"github.com/standardbeagle/cppm/internal/workspace"
	"github.com/standardbeagle/cppm/pkg/pathutil"
)

// openResult is the --json output of open.
type openResult struct {
	Applied    bool              `json:"applied"`
	Module     string            `json:"module,omitempty"`
	SearchText string            `json:"search_text,omitempty"`
	StartLine  int               `json:"start_line,omitempty"`
	EndLine    int               `json:"end_line,omitempty"`
	Matches    []quickopen.Match `json:"matches"`
}

// cursorArgs reads FILE and the 1-based LINE. A relative FILE that does not exist
// from the working directory is resolved against the project root.
func cursorArgs(c *cli.Context, root string) (string, int, error) {
	if c.NArg() != 2 {
		return "", 0, cli.Exit(fmt.Sprintf("usage: cppm %s FILE LINE", c.Command.Name), 2)
	}
	file := c.Args().Get(0)
	line, err := strconv.Atoi(c.Args().Get(1))
	if err != nil {
		return "", 0, cli.Exit(fmt.Sprintf("invalid line %q: must be an integer", c.Args().Get(1)), 2)
	}

	if !filepath.IsAbs(file) {
		if _, err := os.Stat(file); err != nil {
			file = pathutil.ToAbsolute(file, root)
		}
	}
	return file, line, nil
}

// buildIndexes scans the workspace and its module declarations.
func buildIndexes(ctx context.Context, cfg *config.Config) (*workspace.Index, *modindex.Index, error) {
	ws := workspace.New(cfg)
	if err := ws.Scan(ctx); err != nil {
		return nil, nil, err
	}
	mods := modindex.New(ws.Root())
	if err := mods.Scan(ctx, ws.Paths()); err != nil {
		debug.LogIndex("module scan reported: %v\n", err)
	}
	return ws, mods, nil
}

func openCommand(c *cli.Context) error {
	ctx := c.Context
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	file, line, err := cursorArgs(c, cfg.Project.Root)
	if err != nil {
		return err
	}

	doc, err := document.Load(file)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	ws, mods, err := buildIndexes(ctx, cfg)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	asJSON := c.Bool("json")
	var clipboard quickopen.Clipboard
	switch {
	case c.String("clipboard-file") != "":
		clipboard = quickopen.NewFileClipboard(c.String("clipboard-file"))
	case asJSON:
		clipboard = quickopen.NewMemoryClipboard()
	default:
		clipboard = quickopen.NewWriterClipboard(c.App.Writer)
	}

	picker := quickopen.NewPicker(ws, mods, clipboard, workspace.OptionsFromConfig(cfg))
	out, err := quickopen.NewRunner(cfg, clipboard, picker).Run(ctx, doc, line-1)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	if asJSON {
		result := openResult{Applied: out.Applied, Matches: displayMatches(picker.Matches(), ws.Root(), c.Bool("absolute"))}
		if out.Applied {
			result.Module = out.Statement.Name
			result.SearchText = out.SearchText
			result.StartLine = out.Statement.Start + 1
			result.EndLine = out.Statement.End + 1
		}
		return writeJSON(c.App.Writer, result)
	}
	if !out.Applied {
		return nil
	}
	printMatches(c.App.Writer, picker.Matches(), ws.Root(), c.Bool("absolute"))
	return nil
}

func nameCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	file, line, err := cursorArgs(c, cfg.Project.Root)
	if err != nil {
		return err
	}
	doc, err := document.Load(file)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	runner := quickopen.NewRunner(cfg, quickopen.NewMemoryClipboard(), nil)
	out, ok := runner.Resolve(doc, line-1)

	if c.Bool("json") {
		result := openResult{Applied: ok, Matches: []quickopen.Match{}}
		if ok {
			result.Module = out.Statement.Name
			result.SearchText = out.SearchText
			result.StartLine = out.Statement.Start + 1
			result.EndLine = out.Statement.End + 1
		}
		return writeJSON(c.App.Writer, result)
	}
	if ok {
		fmt.Fprintln(c.App.Writer, out.Statement.Name)
	}
	return nil
}

func searchCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return cli.Exit("usage: cppm search TEXT", 2)
	}
	text := c.Args().First()
	if strings.TrimSpace(text) == "" {
		return cli.Exit(cppmerrors.NewSearchError(text, errors.New("search text is empty")).Error(), 2)
	}
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	ws, mods, err := buildIndexes(c.Context, cfg)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	opts := workspace.OptionsFromConfig(cfg)
	if n := c.Int("max"); n > 0 {
		opts.MaxResults = n
	}
	picker := quickopen.NewPicker(ws, mods, quickopen.NewMemoryClipboard(), opts)
	matches := displayMatches(picker.Search(text), ws.Root(), c.Bool("absolute"))

	if c.Bool("json") {
		return writeJSON(c.App.Writer, matches)
	}
	printMatches(c.App.Writer, matches, "", false)
	return nil
}

func modulesCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	_, mods, err := buildIndexes(c.Context, cfg)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}

	// With NAME, print only the files declaring exactly that module.
	if name := c.Args().First(); name != "" {
		files := mods.Lookup(name)
		if c.Bool("json") {
			if files == nil {
				files = []string{}
			}
			return writeJSON(c.App.Writer, files)
		}
		for _, f := range files {
			fmt.Fprintln(c.App.Writer, f)
		}
		return nil
	}

	decls := mods.Declarations()
	if c.Bool("json") {
		if decls == nil {
			decls = []modindex.Declaration{}
		}
		return writeJSON(c.App.Writer, decls)
	}
	for _, d := range decls {
		kind := "module"
		if d.Exported {
			kind = "export module"
		}
		if d.Partition() {
			kind += " partition"
		}
		fmt.Fprintf(c.App.Writer, "%s %s\t%s:%d\n", kind, d.Module, d.Path, d.Line)
	}
	return nil
}

func mcpCommand(c *cli.Context) error {
	// stdio carries the protocol; keep diagnostics off it
	debug.SetMCPMode(true)

	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return debug.Fatal("failed to load config: %v\n", err)
	}

	ctx, cancel := context.WithCancel(c.Context)
	defer cancel()

	server, err := mcp.NewServer(ctx, cfg)
	if err != nil {
		return debug.Fatal("failed to create MCP server: %v\n", err)
	}
	defer server.Shutdown()

	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, syscall.SIGINT, syscall.SIGTERM)
	defer signal.Stop(sigChan)

	errChan := make(chan error, 1)
	go func() {
		errChan <- server.Start(ctx)
	}()

	select {
	case err := <-errChan:
		if err != nil {
			return debug.Fatal("MCP server error: %v\n", err)
		}
		return nil
	case sig := <-sigChan:
		debug.LogMCP("received signal %v, shutting down\n", sig)
		cancel()

		shutdownTimer := time.NewTimer(2 * time.Second)
		defer shutdownTimer.Stop()
		select {
		case err := <-errChan:
			return err
		case <-shutdownTimer.C:
			debug.LogMCP("graceful shutdown timeout, closing stdin\n")
			os.Stdin.Close()
			return nil
		}
	}
}

func displayMatches(matches []quickopen.Match, root string, absolute bool) []quickopen.Match {
	out := make([]quickopen.Match, len(matches))
	copy(out, matches)
	if absolute {
		for i := range out {
			out[i].Path = pathutil.ToAbsolute(out[i].Path, root)
		}
	}
	return out
}

func printMatches(w io.Writer, matches []quickopen.Match, root string, absolute bool) {
	for _, m := range displayMatches(matches, root, absolute) {
		fmt.Fprintln(w, m.Path)
	}
}

func writeJSON(w io.Writer, v interface{}) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
