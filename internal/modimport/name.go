package modimport

import "strings"

const (
	exportImportPrefix = "export import "
	importPrefix       = "import "
)

// BuildName joins the collected lines of one statement into its module name.
// Continuation segments are always joined with '.', so "import a\n  .b:c;" and a
// partition introduced on its own line both read as dot-joined segments.
func BuildName(lines []string) (string, bool) {
	name, _, ok := buildName(lines)
	return name, ok
}

func buildName(lines []string) (name string, exported bool, ok bool) {
	if len(lines) == 0 {
		return "", false, false
	}

	first := trimBlank(lines[0])
	switch {
	case strings.HasPrefix(first, exportImportPrefix):
		first = first[len(exportImportPrefix):]
		exported = true
	case strings.HasPrefix(first, importPrefix):
		first = first[len(importPrefix):]
	default:
		return "", false, false
	}

	first = trimBlank(first)
	if len(lines) == 1 {
		return dropTerminator(first), exported, true
	}

	var b strings.Builder
	b.WriteString(first)
	last := len(lines) - 1
	for i := 1; i <= last; i++ {
		seg := trimBlank(lines[i])
		if seg != "" {
			seg = seg[1:] // leading '.'
		}
		if i == last {
			seg = dropTerminator(seg)
		}
		b.WriteByte('.')
		b.WriteString(seg)
	}
	return b.String(), exported, true
}

func dropTerminator(s string) string {
	if strings.HasSuffix(s, Terminator) {
		return trimBlank(strings.TrimSuffix(s, Terminator))
	}
	return s
}
