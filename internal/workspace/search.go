package workspace

import (
	"path"
	"sort"
	"strings"

	"github.com/hbollon/go-edlib"

	"github.com/standardbeagle/cppm/internal/config"
	"github.com/standardbeagle/cppm/internal/debug"
)

const (
	inOrderBonus   = 1.0
	baseNameBonus  = 0.5
	interfaceBonus = 0.25
)

// interfaceExtensions mark module interface units, which quick open prefers.
var interfaceExtensions = map[string]bool{
	".cppm": true,
	".ixx":  true,
	".mpp":  true,
}

// SearchOptions controls ranking and truncation. Zero values fall back to the
// config defaults.
type SearchOptions struct {
	Separator      string
	MaxResults     int
	FuzzyThreshold float64
	Algorithm      string
}

// OptionsFromConfig copies the search section of cfg.
func OptionsFromConfig(cfg *config.Config) SearchOptions {
	return SearchOptions{
		Separator:      cfg.Search.Separator,
		MaxResults:     cfg.Search.MaxResults,
		FuzzyThreshold: cfg.Search.FuzzyThreshold,
		Algorithm:      cfg.Search.Algorithm,
	}
}

func (o SearchOptions) withDefaults() SearchOptions {
	if o.Separator == "" {
		o.Separator = config.DefaultSeparator
	}
	if o.MaxResults <= 0 {
		o.MaxResults = config.DefaultMaxResults
	}
	if o.FuzzyThreshold <= 0 {
		o.FuzzyThreshold = config.DefaultFuzzyThreshold
	}
	if o.Algorithm == "" {
		o.Algorithm = config.DefaultAlgorithm
	}
	return o
}

// Match is one ranked quick-open candidate.
type Match struct {
	Path    string  `json:"path"`
	Score   float64 `json:"score"`
	InOrder bool    `json:"in_order"` // every token occurs in order in the path
}

// Tokens splits a search text on the separator, dropping the leading marker and
// empty segments. Tokens are lower-cased.
func Tokens(query, separator string) []string {
	if separator == "" {
		separator = config.DefaultSeparator
	}
	var tokens []string
	for _, part := range strings.Split(query, separator) {
		part = strings.ToLower(strings.TrimSpace(part))
		if part != "" {
			tokens = append(tokens, part)
		}
	}
	return tokens
}

// Search ranks the indexed paths against a search text the way an editor's quick open
// does: tokens found in order in the path win, close fuzzy matches of the path tail
// follow.
func (idx *Index) Search(query string, opts SearchOptions) []Match {
	opts = opts.withDefaults()
	tokens := Tokens(query, opts.Separator)
	if len(tokens) == 0 {
		return nil
	}
	joined := strings.Join(tokens, "/")
	last := tokens[len(tokens)-1]

	var matches []Match
	for _, p := range idx.Paths() {
		ext := path.Ext(p)
		key := strings.ToLower(strings.TrimSuffix(p, ext))

		inOrder := containsInOrder(key, tokens)
		sim := similarity(joined, tail(key, len(tokens)), opts.Algorithm)
		if !inOrder && sim < opts.FuzzyThreshold {
			continue
		}

		score := sim
		if inOrder {
			score += inOrderBonus
		}
		if path.Base(key) == last {
			score += baseNameBonus
		}
		if interfaceExtensions[strings.ToLower(ext)] {
			score += interfaceBonus
		}
		matches = append(matches, Match{Path: p, Score: score, InOrder: inOrder})
	}

	SortMatches(matches)
	if len(matches) > opts.MaxResults {
		matches = matches[:opts.MaxResults]
	}
	debug.LogSearch("query %q: %d matches\n", query, len(matches))
	return matches
}

// SortMatches orders by score, highest first, then by path.
func SortMatches(matches []Match) {
	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].Score != matches[j].Score {
			return matches[i].Score > matches[j].Score
		}
		return matches[i].Path < matches[j].Path
	})
}

func containsInOrder(s string, tokens []string) bool {
	pos := 0
	for _, tok := range tokens {
		i := strings.Index(s[pos:], tok)
		if i < 0 {
			return false
		}
		pos += i + len(tok)
	}
	return true
}

// tail returns the last n slash-separated components of p.
func tail(p string, n int) string {
	parts := strings.Split(p, "/")
	if len(parts) > n {
		parts = parts[len(parts)-n:]
	}
	return strings.Join(parts, "/")
}

func similarity(a, b, algorithm string) float64 {
	if a == b {
		return 1.0
	}
	if a == "" || b == "" {
		return 0.0
	}

	algo := edlib.JaroWinkler
	switch algorithm {
	case "levenshtein":
		algo = edlib.Levenshtein
	case "lcs":
		algo = edlib.Lcs
	}

	score, err := edlib.StringsSimilarity(a, b, algo)
	if err != nil {
		return 0.0
	}
	return float64(score)
}
