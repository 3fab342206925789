package workspace

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/cppm/internal/config"
)

func writeFiles(t *testing.T, root string, files ...string) {
	t.Helper()
	for _, f := range files {
		path := filepath.Join(root, filepath.FromSlash(f))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte("// "+f+"\n"), 0644))
	}
}

func newScannedIndex(t *testing.T) *Index {
	t.Helper()
	root := t.TempDir()
	writeFiles(t, root,
		"src/app/net/http.cppm",
		"src/app/net/http_impl.cpp",
		"src/app/net/socket.cppm",
		"src/other/httpd.cpp",
		"build/gen/app_net_http.cpp",
		".cache/stale.cppm",
		"README.md",
	)
	idx := New(config.Default(root))
	require.NoError(t, idx.Scan(context.Background()))
	return idx
}

func TestScan_FiltersAndExcludes(t *testing.T) {
	idx := newScannedIndex(t)
	assert.Equal(t, []string{
		"src/app/net/http.cppm",
		"src/app/net/http_impl.cpp",
		"src/app/net/socket.cppm",
		"src/other/httpd.cpp",
	}, idx.Paths())
	assert.Equal(t, 4, idx.Len())
}

func TestScan_IncludePatterns(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "modules/core.ixx", "tests/core_test.cpp")
	cfg := config.Default(root)
	cfg.Include = []string{"modules/**"}

	idx := New(cfg)
	require.NoError(t, idx.Scan(context.Background()))
	assert.Equal(t, []string{"modules/core.ixx"}, idx.Paths())
}

func TestScan_MissingRoot(t *testing.T) {
	idx := New(config.Default(filepath.Join(t.TempDir(), "missing")))
	assert.Error(t, idx.Scan(context.Background()))
}

func TestScan_Cancelled(t *testing.T) {
	root := t.TempDir()
	writeFiles(t, root, "a.cppm")
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	idx := New(config.Default(root))
	assert.ErrorIs(t, idx.Scan(ctx), context.Canceled)
}

func TestIndex_AddRemove(t *testing.T) {
	idx := newScannedIndex(t)

	assert.True(t, idx.Add("src/lib/mod.ixx"))
	assert.True(t, idx.Add(idx.Abs("src/lib/impl.cc")))
	assert.False(t, idx.Add(".hidden/a.cpp"))
	assert.False(t, idx.Add("notes.txt"))
	assert.False(t, idx.Add("build/out.cpp"))
	assert.True(t, idx.Contains("src/lib/mod.ixx"))

	removed := idx.Remove(idx.Abs("src/app"))
	assert.Equal(t, []string{
		"src/app/net/http.cppm",
		"src/app/net/http_impl.cpp",
		"src/app/net/socket.cppm",
	}, removed)
	assert.Equal(t, []string{"src/other/httpd.cpp"}, idx.Remove("src/other/httpd.cpp"))
	assert.Nil(t, idx.Remove("src/nothing.cpp"))
	assert.Equal(t, []string{"src/lib/impl.cc", "src/lib/mod.ixx"}, idx.Paths())
}

func TestIndex_ConcurrentAccess(t *testing.T) {
	idx := newScannedIndex(t)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			idx.Add(fmt.Sprintf("src/gen/mod%d.cppm", i))
			_ = idx.Search("/app/net/http", SearchOptions{})
			_ = idx.Len()
		}(i)
	}
	wg.Wait()

	assert.Equal(t, 12, idx.Len())
}
