package modimport

import "github.com/standardbeagle/cppm/internal/debug"

// Statement is one recognized import statement.
type Statement struct {
	Start    int      // first line, 0-based
	End      int      // terminated line, 0-based
	Lines    []string // comment-stripped lines Start..End
	Name     string   // module name, e.g. "std.core" or "app.net.http"
	Exported bool     // statement was "export import ..."
}

// Extractor runs the backward scan, forward collection and name building for a cursor.
// The zero value uses DefaultMaxLines.
type Extractor struct {
	MaxLines int
}

// NewExtractor returns an Extractor bounded to maxLines lines per statement;
// values below 1 fall back to DefaultMaxLines.
func NewExtractor(maxLines int) *Extractor {
	if maxLines < 1 {
		maxLines = DefaultMaxLines
	}
	return &Extractor{MaxLines: maxLines}
}

func (e *Extractor) maxLines() int {
	if e == nil || e.MaxLines < 1 {
		return DefaultMaxLines
	}
	return e.MaxLines
}

// Extract recognizes the import statement at cursor. ok is false when the cursor is not
// inside a statement that fits the line budget.
func (e *Extractor) Extract(doc Document, cursor int) (stmt Statement, ok bool) {
	if doc == nil {
		debug.LogExtract("no document\n")
		return Statement{}, false
	}
	limit := e.maxLines()

	start, ok := FindStart(doc, cursor, limit)
	if !ok {
		debug.LogExtract("line %d: no import statement start within %d lines\n", cursor, limit)
		return Statement{}, false
	}

	lines, ok := CollectLines(doc, start, limit)
	if !ok {
		debug.LogExtract("line %d: statement from line %d not terminated within %d lines\n", cursor, start, limit)
		return Statement{}, false
	}

	name, exported, ok := buildName(lines)
	if !ok {
		debug.LogExtract("line %d: start line lacks an import prefix: %q\n", cursor, lines[0])
		return Statement{}, false
	}

	return Statement{
		Start:    start,
		End:      start + len(lines) - 1,
		Lines:    lines,
		Name:     name,
		Exported: exported,
	}, true
}
