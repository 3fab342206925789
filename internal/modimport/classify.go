package modimport

import (
	"regexp"
	"strings"
	"unicode"
)

// Terminator ends an import statement.
const Terminator = ";"

// blank is the whitespace class of editor-side line matching: ASCII blanks plus
// vertical tab, Unicode space separators, line/paragraph separators and U+FEFF.
const blank = `[\s\v\p{Zs}\x{2028}\x{2029}\x{FEFF}]`

var (
	startLineRe        = regexp.MustCompile(`^(?:export` + blank + `+)?import` + blank + `+[A-Za-z0-9_.:]+;?` + blank + `*$`)
	continuationLineRe = regexp.MustCompile(`^` + blank + `+\.[A-Za-z0-9_.:]+;?` + blank + `*$`)
	terminatedLineRe   = regexp.MustCompile(`;` + blank + `*$`)
)

func isBlank(r rune) bool {
	return unicode.IsSpace(r) || r == '\uFEFF'
}

// trimBlank trims the same characters the line patterns treat as blank.
func trimBlank(s string) string {
	return strings.TrimFunc(s, isBlank)
}

// LineKind is a bit set describing how a stripped line takes part in an import statement.
type LineKind uint8

const (
	KindStart LineKind = 1 << iota
	KindContinuation
	KindTerminated
)

// IsStart reports whether a stripped line opens an import statement, e.g.
// "import a.b", "export import a.b:part;".
func IsStart(stripped string) bool {
	return startLineRe.MatchString(stripped)
}

// IsContinuation reports whether a stripped line continues a statement: indented,
// beginning with a dot, e.g. "    .sub.module;".
func IsContinuation(stripped string) bool {
	return continuationLineRe.MatchString(stripped)
}

// EndsWithTerminator reports whether a stripped line ends with ';' (trailing blanks ignored).
func EndsWithTerminator(stripped string) bool {
	return terminatedLineRe.MatchString(stripped)
}

// Classify strips comments from a raw line and returns its kind. A zero kind means the
// line cannot belong to an import statement.
func Classify(raw string) LineKind {
	stripped := StripComments(raw)
	var kind LineKind
	if IsStart(stripped) {
		kind |= KindStart
	}
	if IsContinuation(stripped) {
		kind |= KindContinuation
	}
	if EndsWithTerminator(stripped) {
		kind |= KindTerminated
	}
	return kind
}

func (k LineKind) Start() bool        { return k&KindStart != 0 }
func (k LineKind) Continuation() bool { return k&KindContinuation != 0 }
func (k LineKind) Terminated() bool   { return k&KindTerminated != 0 }

func (k LineKind) String() string {
	switch {
	case k.Start() && k.Terminated():
		return "start+terminated"
	case k.Start():
		return "start"
	case k.Continuation() && k.Terminated():
		return "continuation+terminated"
	case k.Continuation():
		return "continuation"
	case k.Terminated():
		return "terminated"
	default:
		return "other"
	}
}
