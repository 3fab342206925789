package modindex

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"runtime"
	"sort"
	"sync"

	"github.com/cespare/xxhash/v2"
	"golang.org/x/sync/errgroup"

	"github.com/standardbeagle/cppm/internal/debug"
	"github.com/standardbeagle/cppm/internal/document"
	cppmerrors "github.com/standardbeagle/cppm/internal/errors"
	"github.com/standardbeagle/cppm/internal/security"
)

type fileEntry struct {
	hash  uint64
	decls []Declaration
}

// Index maps module names to the files declaring them. Paths are root-relative and
// slash-separated, matching the workspace index.
type Index struct {
	root      string
	validator *security.FileValidator

	mu     sync.RWMutex
	files  map[string]fileEntry
	byName map[string][]string
}

func New(root string) *Index {
	return &Index{
		root:      root,
		validator: security.NewFileValidator(security.DefaultThresholdKB),
		files:     make(map[string]fileEntry),
		byName:    make(map[string][]string),
	}
}

// Scan parses every path with bounded parallelism. Files whose content hash is
// unchanged since the last scan are skipped. Unreadable files are dropped from the
// index and reported together in a MultiError; cancellation returns ctx.Err().
func (idx *Index) Scan(ctx context.Context, paths []string) error {
	numWorkers := runtime.NumCPU()
	if numWorkers > len(paths) {
		numWorkers = len(paths)
	}
	if numWorkers == 0 {
		return nil
	}

	errs := make([]error, len(paths))
	g, ctx := errgroup.WithContext(ctx)
	g.SetLimit(numWorkers)
	for i, rel := range paths {
		g.Go(func() error {
			if err := ctx.Err(); err != nil {
				return err
			}
			if _, err := idx.Update(rel); err != nil {
				errs[i] = cppmerrors.NewIndexError("scan", err).WithFile(rel).WithRecoverable(true)
			}
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return err
	}

	return cppmerrors.NewMultiError(errs).ErrOrNil()
}

// Update rescans one file and reports whether its declarations changed. A file that
// can no longer be read is removed before the error is returned.
func (idx *Index) Update(rel string) (bool, error) {
	abs := filepath.Join(idx.root, filepath.FromSlash(rel))
	if err := idx.validator.ValidateLargeFile(abs); errors.Is(err, security.ErrRejected) {
		debug.LogIndex("skipping %s: %v\n", rel, err)
		idx.Remove(rel)
		return false, nil
	}
	content, err := os.ReadFile(abs)
	if err != nil {
		idx.Remove(rel)
		return false, cppmerrors.NewFileError("read", abs, err)
	}

	hash := xxhash.Sum64(content)
	idx.mu.RLock()
	prev, seen := idx.files[rel]
	idx.mu.RUnlock()
	if seen && prev.hash == hash {
		return false, nil
	}

	decls := ParseDeclarations(rel, document.New(abs, content))

	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.removeLocked(rel)
	idx.files[rel] = fileEntry{hash: hash, decls: decls}
	for _, d := range decls {
		idx.byName[d.Module] = insertSorted(idx.byName[d.Module], rel)
	}
	if len(decls) > 0 {
		debug.LogIndex("%s declares %d module(s)\n", rel, len(decls))
	}
	return !seen || !sameDeclarations(prev.decls, decls), nil
}

// Remove forgets rel.
func (idx *Index) Remove(rel string) {
	idx.mu.Lock()
	defer idx.mu.Unlock()
	idx.removeLocked(rel)
}

func (idx *Index) removeLocked(rel string) {
	entry, ok := idx.files[rel]
	if !ok {
		return
	}
	delete(idx.files, rel)
	for _, d := range entry.decls {
		files := idx.byName[d.Module]
		for i, f := range files {
			if f == rel {
				files = append(files[:i:i], files[i+1:]...)
				break
			}
		}
		if len(files) == 0 {
			delete(idx.byName, d.Module)
		} else {
			idx.byName[d.Module] = files
		}
	}
}

// Lookup returns the files declaring module name, sorted.
func (idx *Index) Lookup(name string) []string {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return append([]string(nil), idx.byName[name]...)
}

// MatchTokens returns the files declaring a module whose trailing name segments equal
// tokens (case-insensitive). Search texts lose their ignored prefix, so "/net/http"
// finds the file declaring "corp.net.http".
func (idx *Index) MatchTokens(tokens []string) []string {
	if len(tokens) == 0 {
		return nil
	}
	idx.mu.RLock()
	defer idx.mu.RUnlock()

	seen := make(map[string]bool)
	var out []string
	for name, files := range idx.byName {
		if !hasSuffixSegments(Segments(name), tokens) {
			continue
		}
		for _, f := range files {
			if !seen[f] {
				seen[f] = true
				out = append(out, f)
			}
		}
	}
	sort.Strings(out)
	return out
}

// Declarations lists every known declaration ordered by module name then path.
func (idx *Index) Declarations() []Declaration {
	idx.mu.RLock()
	var out []Declaration
	for _, entry := range idx.files {
		out = append(out, entry.decls...)
	}
	idx.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].Module != out[j].Module {
			return out[i].Module < out[j].Module
		}
		if out[i].Path != out[j].Path {
			return out[i].Path < out[j].Path
		}
		return out[i].Line < out[j].Line
	})
	return out
}

// Files returns how many files are tracked, with or without declarations.
func (idx *Index) Files() int {
	idx.mu.RLock()
	defer idx.mu.RUnlock()
	return len(idx.files)
}

func hasSuffixSegments(segments, tokens []string) bool {
	if len(tokens) > len(segments) {
		return false
	}
	offset := len(segments) - len(tokens)
	for i, tok := range tokens {
		if segments[offset+i] != tok {
			return false
		}
	}
	return true
}

func insertSorted(files []string, rel string) []string {
	i := sort.SearchStrings(files, rel)
	if i < len(files) && files[i] == rel {
		return files
	}
	files = append(files, "")
	copy(files[i+1:], files[i:])
	files[i] = rel
	return files
}

func sameDeclarations(a, b []Declaration) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}
