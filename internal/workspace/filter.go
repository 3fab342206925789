package workspace

import (
	"path"
	"strings"

	"github.com/bmatcuk/doublestar/v4"

	"github.com/standardbeagle/cppm/internal/config"
)

// Filter decides which root-relative, slash-separated paths belong in the index.
type Filter struct {
	include    []string
	exclude    []string
	extensions map[string]bool
}

// NewFilter compiles the include/exclude globs and extension list of cfg.
func NewFilter(cfg *config.Config) *Filter {
	f := &Filter{
		include:    append([]string(nil), cfg.Include...),
		exclude:    append([]string(nil), cfg.Exclude...),
		extensions: make(map[string]bool, len(cfg.Search.Extensions)),
	}
	exts := cfg.Search.Extensions
	if len(exts) == 0 {
		exts = config.DefaultExtensions
	}
	for _, ext := range exts {
		if !strings.HasPrefix(ext, ".") {
			ext = "." + ext
		}
		f.extensions[strings.ToLower(ext)] = true
	}
	return f
}

// Accept reports whether the file at rel should be indexed.
func (f *Filter) Accept(rel string) bool {
	if rel == "" || rel == "." || strings.HasPrefix(rel, "../") {
		return false
	}
	if hasHiddenComponent(rel) {
		return false
	}
	if !f.extensions[strings.ToLower(path.Ext(rel))] {
		return false
	}
	if f.shouldExclude(rel) {
		return false
	}
	return f.shouldInclude(rel)
}

// SkipDir reports whether the walk should not descend into the directory at rel.
func (f *Filter) SkipDir(rel string) bool {
	if rel == "." || rel == "" {
		return false
	}
	if strings.HasPrefix(path.Base(rel), ".") {
		return true
	}
	return f.shouldExclude(rel) || f.shouldExclude(rel+"/")
}

func (f *Filter) shouldExclude(rel string) bool {
	for _, pattern := range f.exclude {
		matched, err := doublestar.Match(pattern, rel)
		if err != nil {
			// bad pattern, skip it
			continue
		}
		if matched {
			return true
		}
	}
	return false
}

func (f *Filter) shouldInclude(rel string) bool {
	if len(f.include) == 0 {
		return true
	}
	for _, pattern := range f.include {
		matched, err := doublestar.Match(pattern, rel)
		if err != nil {
			continue
		}
		if matched {
			return true
		}
	}
	return false
}

func hasHiddenComponent(rel string) bool {
	for _, part := range strings.Split(rel, "/") {
		if strings.HasPrefix(part, ".") && part != "." && part != ".." {
			return true
		}
	}
	return false
}
