package mcp

import (
	"context"
	"encoding/json"
	"os"
	"path/filepath"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/cppm/internal/config"
	"github.com/standardbeagle/cppm/internal/version"
)

const mainSource = `module;
#include <cstdio>
export module app.main;
import std;
import corp.net
    .http; // transport
int main() {}
`

func newTestServer(t *testing.T) *Server {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"src/main.cppm":             mainSource,
		"src/net/http.cppm":         "export module corp.net.http;\n",
		"src/net/http_impl.cpp":     "module corp.net.http;\n",
		"src/legacy/transport.cppm": "// no module here\n",
	}
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}

	cfg := config.Default(root)
	cfg.Search.IgnoredPrefixes = []string{"corp"}
	cfg.Watch.Enabled = false

	s, err := NewServer(context.Background(), cfg)
	require.NoError(t, err)
	return s
}

func decode[T any](t *testing.T, text string) T {
	t.Helper()
	var v T
	require.NoError(t, json.Unmarshal([]byte(text), &v))
	return v
}

func TestModuleAtCursor(t *testing.T) {
	s := newTestServer(t)

	tests := []struct {
		name     string
		line     int
		expected ModuleResponse
	}{
		{"single line", 4, ModuleResponse{Applied: true, Module: "std", SearchText: "/std", StartLine: 4, EndLine: 4}},
		{"continuation line", 6, ModuleResponse{Applied: true, Module: "corp.net.http", SearchText: "/net/http", StartLine: 5, EndLine: 6}},
		{"start of multi-line", 5, ModuleResponse{Applied: true, Module: "corp.net.http", SearchText: "/net/http", StartLine: 5, EndLine: 6}},
		{"module declaration is not an import", 3, ModuleResponse{}},
		{"past end of file", 100, ModuleResponse{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			text, isErr, err := s.CallTool("module_at_cursor", map[string]interface{}{
				"file": "src/main.cppm",
				"line": tt.line,
			})
			require.NoError(t, err)
			require.False(t, isErr, text)
			assert.Equal(t, tt.expected, decode[ModuleResponse](t, text))
		})
	}
}

func TestModuleAtCursor_Errors(t *testing.T) {
	s := newTestServer(t)

	for _, params := range []map[string]interface{}{
		{"line": 1},
		{"file": "src/main.cppm", "line": 0},
		{"file": "src/missing.cppm", "line": 1},
		{"file": 42},
	} {
		text, isErr, err := s.CallTool("module_at_cursor", params)
		require.NoError(t, err)
		assert.True(t, isErr, "params %v", params)
		assert.Contains(t, text, `"success":false`)
	}
}

func TestQuickOpen_FromCursor(t *testing.T) {
	s := newTestServer(t)

	text, isErr, err := s.CallTool("quick_open", map[string]interface{}{
		"file": filepath.Join(s.workspace.Root(), "src", "main.cppm"),
		"line": 6,
	})
	require.NoError(t, err)
	require.False(t, isErr, text)

	resp := decode[QuickOpenResponse](t, text)
	assert.True(t, resp.Applied)
	assert.Equal(t, "/net/http", resp.SearchText)
	require.GreaterOrEqual(t, len(resp.Matches), 2)
	assert.Equal(t, "src/net/http.cppm", resp.Matches[0].Path)
	assert.True(t, resp.Matches[0].Declares)
	assert.Equal(t, "src/net/http_impl.cpp", resp.Matches[1].Path)
}

func TestQuickOpen_SearchTextAndLimit(t *testing.T) {
	s := newTestServer(t)

	text, isErr, err := s.CallTool("quick_open", map[string]interface{}{
		"search_text": "/net/http",
		"max":         1,
	})
	require.NoError(t, err)
	require.False(t, isErr)

	resp := decode[QuickOpenResponse](t, text)
	require.Len(t, resp.Matches, 1)
	assert.Equal(t, "src/net/http.cppm", resp.Matches[0].Path)
}

func TestQuickOpen_NoOp(t *testing.T) {
	s := newTestServer(t)

	text, isErr, err := s.CallTool("quick_open", map[string]interface{}{
		"file": "src/main.cppm",
		"line": 7,
	})
	require.NoError(t, err)
	require.False(t, isErr)

	resp := decode[QuickOpenResponse](t, text)
	assert.False(t, resp.Applied)
	assert.Empty(t, resp.Matches)
	assert.NotNil(t, resp.Matches)
}

func TestInfo(t *testing.T) {
	s := newTestServer(t)

	text, isErr, err := s.CallTool("info", nil)
	require.NoError(t, err)
	require.False(t, isErr)

	info := decode[InfoResponse](t, text)
	assert.Equal(t, version.Version, info.Version)
	assert.Equal(t, "cppm.copyModuleNameForQuickOpen", info.Command)
	assert.Equal(t, 4, info.Files)
	assert.Equal(t, 3, info.Declarations)
	assert.Equal(t, []string{"corp"}, info.IgnoredPrefixes)
	assert.Equal(t, 5, info.MaxLines)
	assert.False(t, info.Watching)
	assert.NoError(t, s.Shutdown())
}

func TestInfo_ReportsWatcherUntilShutdown(t *testing.T) {
	s := newTestServer(t)
	s.cfg.Watch.Enabled = true
	require.NoError(t, s.startWatcher(context.Background()))

	text, isErr, err := s.CallTool("info", nil)
	require.NoError(t, err)
	require.False(t, isErr)
	assert.True(t, decode[InfoResponse](t, text).Watching)

	var wg sync.WaitGroup
	for i := 0; i < 4; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _, err := s.CallTool("info", nil)
			assert.NoError(t, err)
		}()
	}
	require.NoError(t, s.Shutdown())
	wg.Wait()

	text, _, err = s.CallTool("info", nil)
	require.NoError(t, err)
	assert.False(t, decode[InfoResponse](t, text).Watching)
	assert.NoError(t, s.Shutdown())
}

func TestCallTool_Unknown(t *testing.T) {
	s := newTestServer(t)
	_, _, err := s.CallTool("nope", nil)
	assert.Error(t, err)
}
