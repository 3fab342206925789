// Package searchtext turns a C++ module name into a quick-open search string.
package searchtext

import "strings"

// DefaultSeparator replaces module name delimiters and marks the first token as a folder hint.
const DefaultSeparator = "/"

// Transformer applies ignored-prefix elision and separator substitution.
type Transformer struct {
	IgnoredPrefixes []string
	Separator       string
}

// New returns a Transformer. An empty separator means DefaultSeparator.
func New(ignoredPrefixes []string, separator string) *Transformer {
	if separator == "" {
		separator = DefaultSeparator
	}
	return &Transformer{IgnoredPrefixes: ignoredPrefixes, Separator: separator}
}

// Transform elides at most one ignored prefix and rewrites name as a separator-joined
// path with a leading separator, e.g. "corp.app.net:http" -> "/app/net/http" for
// prefixes ["corp"].
func (t *Transformer) Transform(name string) string {
	sep := DefaultSeparator
	var prefixes []string
	if t != nil {
		prefixes = t.IgnoredPrefixes
		if t.Separator != "" {
			sep = t.Separator
		}
	}
	return Substitute(ElidePrefix(name, prefixes), sep)
}

// ElidePrefix removes "P." from the front of name for the first P in prefixes that
// matches. A prefix equal to the whole name, or followed by anything but '.', is kept.
func ElidePrefix(name string, prefixes []string) string {
	for _, prefix := range prefixes {
		if strings.HasPrefix(name, prefix+".") {
			return name[len(prefix)+1:]
		}
	}
	return name
}

// Substitute replaces every '.' and ':' with sep, trims surrounding whitespace and
// prepends sep.
func Substitute(name, sep string) string {
	replaced := strings.NewReplacer(".", sep, ":", sep).Replace(name)
	return sep + strings.TrimSpace(replaced)
}
