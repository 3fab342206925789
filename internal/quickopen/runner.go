// Package quickopen turns the import statement under the cursor into a quick-open
// search: the search text goes to a clipboard sink, then the picker is opened and
// the text pasted into it.
package quickopen

import (
	"context"
	"fmt"

	"github.com/standardbeagle/cppm/internal/config"
	"github.com/standardbeagle/cppm/internal/debug"
	"github.com/standardbeagle/cppm/internal/modimport"
	"github.com/standardbeagle/cppm/internal/searchtext"
)

// CommandID names the editor command this runner implements.
const CommandID = "cppm.copyModuleNameForQuickOpen"

// Outcome describes one invocation. Applied is false for the silent no-op, in which
// case nothing was written and nothing triggered.
type Outcome struct {
	Applied    bool                `json:"applied"`
	Statement  modimport.Statement `json:"statement"`
	SearchText string              `json:"search_text"`
	Triggered  bool                `json:"triggered"` // Open and Paste both succeeded
}

// Runner wires extraction, transformation, the clipboard write and the trigger.
type Runner struct {
	Extractor   *modimport.Extractor
	Transformer *searchtext.Transformer
	Clipboard   Clipboard
	Commands    Commands // nil skips the trigger
}

// NewRunner builds a runner from the extract and search sections of cfg.
func NewRunner(cfg *config.Config, clipboard Clipboard, commands Commands) *Runner {
	return &Runner{
		Extractor:   modimport.NewExtractor(cfg.Extract.MaxLines),
		Transformer: searchtext.New(cfg.Search.IgnoredPrefixes, cfg.Search.Separator),
		Clipboard:   clipboard,
		Commands:    commands,
	}
}

// Resolve extracts the statement at cursor and computes its search text without
// writing or triggering anything.
func (r *Runner) Resolve(doc modimport.Document, cursor int) (Outcome, bool) {
	stmt, ok := r.Extractor.Extract(doc, cursor)
	if !ok {
		return Outcome{}, false
	}
	return Outcome{
		Applied:    true,
		Statement:  stmt,
		SearchText: r.Transformer.Transform(stmt.Name),
	}, true
}

// Run performs the full command. The error is reserved for a failed clipboard write;
// trigger failures are logged and reflected only in Outcome.Triggered.
func (r *Runner) Run(ctx context.Context, doc modimport.Document, cursor int) (Outcome, error) {
	out, ok := r.Resolve(doc, cursor)
	if !ok {
		return Outcome{}, nil
	}

	if err := r.Clipboard.WriteText(ctx, out.SearchText); err != nil {
		return Outcome{}, fmt.Errorf("failed to write search text: %w", err)
	}

	if r.Commands == nil {
		return out, nil
	}
	if err := r.Commands.Open(ctx); err != nil {
		debug.LogSearch("quick open failed: %v\n", err)
		return out, nil
	}
	if err := r.Commands.Paste(ctx); err != nil {
		debug.LogSearch("paste into quick open failed: %v\n", err)
		return out, nil
	}
	out.Triggered = true
	return out, nil
}
