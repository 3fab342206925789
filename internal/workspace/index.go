// Package workspace keeps the set of C++ source files under a project root and
// answers quick-open searches against it.
package workspace

import (
	"context"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"sync"

	"github.com/standardbeagle/cppm/internal/config"
	"github.com/standardbeagle/cppm/internal/debug"
	cppmerrors "github.com/standardbeagle/cppm/internal/errors"
)

// Index is a concurrent-safe set of root-relative, slash-separated file paths.
type Index struct {
	root   string
	filter *Filter

	mu    sync.RWMutex
	paths map[string]struct{}
}

func New(cfg *config.Config) *Index {
	root, err := filepath.Abs(cfg.Project.Root)
	if err != nil {
		root = filepath.Clean(cfg.Project.Root)
	}
	return &Index{
		root:   root,
		filter: NewFilter(cfg),
		paths:  make(map[string]struct{}),
	}
}

func (idx *Index) Root() string {
	return idx.root
}

// Filter returns the include/exclude rules the index applies.
func (idx *Index) Filter() *Filter {
	return idx.filter
}

// Scan walks the root and adds every accepted file. Unreadable entries are logged and
// skipped; only cancellation or an unreadable root aborts the walk.
func (idx *Index) Scan(ctx context.Context) error {
	if _, err := os.Stat(idx.root); err != nil {
		return cppmerrors.NewFileError("scan", idx.root, err)
	}

	visitedDirs := make(map[string]bool)
	found := 0

	err := filepath.Walk(idx.root, func(path string, info os.FileInfo, walkErr error) error {
		select {
		case <-ctx.Done():
			return ctx.Err()
		default:
		}

		if walkErr != nil {
			debug.LogIndex("scanner error for %s: %v\n", path, walkErr)
			return nil
		}

		rel, err := idx.Rel(path)
		if err != nil {
			return nil
		}

		if info.IsDir() {
			realPath, err := filepath.EvalSymlinks(path)
			if err != nil {
				return filepath.SkipDir
			}
			if visitedDirs[realPath] {
				return filepath.SkipDir
			}
			visitedDirs[realPath] = true

			if path != idx.root && idx.filter.SkipDir(rel) {
				return filepath.SkipDir
			}
			return nil
		}

		if idx.filter.Accept(rel) {
			idx.mu.Lock()
			idx.paths[rel] = struct{}{}
			idx.mu.Unlock()
			found++
		}
		return nil
	})
	if err != nil {
		return err
	}

	debug.LogIndex("indexed %d files under %s\n", found, idx.root)
	return nil
}

// Rel converts an absolute or root-relative path into the index's slash form.
func (idx *Index) Rel(path string) (string, error) {
	if !filepath.IsAbs(path) {
		return filepath.ToSlash(filepath.Clean(path)), nil
	}
	rel, err := filepath.Rel(idx.root, path)
	if err != nil {
		return "", err
	}
	return filepath.ToSlash(rel), nil
}

// Abs converts an index path back to an absolute filesystem path.
func (idx *Index) Abs(rel string) string {
	return filepath.Join(idx.root, filepath.FromSlash(rel))
}

// Add indexes path when the filter accepts it and reports whether it did.
func (idx *Index) Add(path string) bool {
	rel, err := idx.Rel(path)
	if err != nil || !idx.filter.Accept(rel) {
		return false
	}
	idx.mu.Lock()
	idx.paths[rel] = struct{}{}
	idx.mu.Unlock()
	return true
}

// Remove drops path, or every indexed file below it when path is a directory, and
// returns the removed entries.
func (idx *Index) Remove(path string) []string {
	rel, err := idx.Rel(path)
	if err != nil {
		return nil
	}

	idx.mu.Lock()
	defer idx.mu.Unlock()

	var removed []string
	if _, ok := idx.paths[rel]; ok {
		delete(idx.paths, rel)
		removed = append(removed, rel)
	}
	prefix := rel + "/"
	for p := range idx.paths {
		if strings.HasPrefix(p, prefix) {
			delete(idx.paths, p)
			removed = append(removed, p)
		}
	}
	sort.Strings(removed)
	return removed
}

func (idx *Index) Contains(path string) bool {
	rel, err := idx.Rel(path)
	if err != nil {
		return false
	}
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	_, ok := idx.paths[rel]
	return ok
}

// Paths returns the indexed paths in lexical order.
func (idx *Index) Paths() []string {
	idx.mu.RLock()
	out := make([]string, 0, len(idx.paths))
	for p := range idx.paths {
		out = append(out, p)
	}
	idx.mu.RUnlock()

	sort.Strings(out)
	return out
}

func (idx *Index) Len() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.paths)
}
