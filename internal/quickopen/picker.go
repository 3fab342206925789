package quickopen

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/standardbeagle/cppm/internal/config"
	"github.com/standardbeagle/cppm/internal/debug"
	"github.com/standardbeagle/cppm/internal/modindex"
	"github.com/standardbeagle/cppm/internal/workspace"
)

// declarationBonus exceeds the best possible path score, so declaring files rank first.
const declarationBonus = 3.0

// ErrNotOpen is returned by Paste before Open.
var ErrNotOpen = errors.New("quick open is not open")

// Commands triggers the quick-open facility: Open shows it, Paste fills it from the clipboard.
type Commands interface {
	Open(ctx context.Context) error
	Paste(ctx context.Context) error
}

// Match is a ranked quick-open result.
type Match struct {
	Path     string  `json:"path"`
	Score    float64 `json:"score"`
	InOrder  bool    `json:"in_order"`
	Declares bool    `json:"declares,omitempty"` // file declares a module matching the search
}

// Picker is the in-process quick open. It searches the workspace index and ranks files
// declaring the searched module first.
type Picker struct {
	workspace *workspace.Index
	modules   *modindex.Index // may be nil
	clipboard Clipboard
	options   workspace.SearchOptions

	mu      sync.Mutex
	open    bool
	query   string
	matches []Match
}

func NewPicker(ws *workspace.Index, modules *modindex.Index, clipboard Clipboard, opts workspace.SearchOptions) *Picker {
	return &Picker{
		workspace: ws,
		modules:   modules,
		clipboard: clipboard,
		options:   opts,
	}
}

// Open starts a fresh session, clearing the previous query and results.
func (p *Picker) Open(ctx context.Context) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	p.mu.Lock()
	defer p.mu.Unlock()
	p.open = true
	p.query = ""
	p.matches = nil
	return nil
}

// Paste reads the clipboard into the query and runs the search.
func (p *Picker) Paste(ctx context.Context) error {
	p.mu.Lock()
	open := p.open
	p.mu.Unlock()
	if !open {
		return ErrNotOpen
	}

	text, err := p.clipboard.ReadText(ctx)
	if err != nil {
		return err
	}
	matches := p.Search(text)

	p.mu.Lock()
	p.query = text
	p.matches = matches
	p.mu.Unlock()
	return nil
}

// Search ranks files for a search text without touching the session.
func (p *Picker) Search(query string) []Match {
	opts := p.options
	if opts.MaxResults <= 0 {
		opts.MaxResults = config.DefaultMaxResults
	}

	found := p.workspace.Search(query, opts)
	matches := make([]Match, 0, len(found))
	byPath := make(map[string]int, len(found))
	for _, m := range found {
		byPath[m.Path] = len(matches)
		matches = append(matches, Match{Path: m.Path, Score: m.Score, InOrder: m.InOrder})
	}

	if p.modules != nil {
		for _, path := range p.modules.MatchTokens(workspace.Tokens(query, opts.Separator)) {
			if !p.workspace.Contains(path) {
				continue
			}
			if i, ok := byPath[path]; ok {
				matches[i].Score += declarationBonus
				matches[i].Declares = true
				continue
			}
			byPath[path] = len(matches)
			matches = append(matches, Match{Path: path, Score: declarationBonus, Declares: true})
		}
	}

	sortMatches(matches)
	if len(matches) > opts.MaxResults {
		matches = matches[:opts.MaxResults]
	}
	debug.LogSearch("quick open %q: %d results\n", query, len(matches))
	return matches
}

// Query returns the text pasted into the current session.
func (p *Picker) Query() string {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.query
}

// Matches returns the results of the current session.
func (p *Picker) Matches() []Match {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Match(nil), p.matches...)
}

func sortMatches(matches []Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Path < matches[j].Path
	})
}
