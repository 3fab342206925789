package quickopen

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/standardbeagle/cppm/internal/config"
	"github.com/standardbeagle/cppm/internal/document"
	"github.com/standardbeagle/cppm/internal/modindex"
	"github.com/standardbeagle/cppm/internal/modimport"
	"github.com/standardbeagle/cppm/internal/workspace"
)

type recordingCommands struct {
	calls    []string
	openErr  error
	pasteErr error
}

func (c *recordingCommands) Open(ctx context.Context) error {
	c.calls = append(c.calls, "open")
	return c.openErr
}

func (c *recordingCommands) Paste(ctx context.Context) error {
	c.calls = append(c.calls, "paste")
	return c.pasteErr
}

type failingClipboard struct{}

func (failingClipboard) WriteText(ctx context.Context, text string) error {
	return errors.New("clipboard unavailable")
}

func (failingClipboard) ReadText(ctx context.Context) (string, error) {
	return "", errors.New("clipboard unavailable")
}

func testConfig(prefixes ...string) *config.Config {
	cfg := config.Default("/proj")
	cfg.Search.IgnoredPrefixes = prefixes
	return cfg
}

var multiLine = modimport.Lines{
	"module;",
	"export import corp.app",
	"    .net",
	"    .http; // transport",
	"int x;",
}

func TestRunner_Applied(t *testing.T) {
	clip := NewMemoryClipboard()
	cmds := &recordingCommands{}
	r := NewRunner(testConfig("corp"), clip, cmds)

	out, err := r.Run(context.Background(), multiLine, 2)
	require.NoError(t, err)
	assert.True(t, out.Applied)
	assert.True(t, out.Triggered)
	assert.Equal(t, "corp.app.net.http", out.Statement.Name)
	assert.Equal(t, "/app/net/http", out.SearchText)

	text, err := clip.ReadText(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "/app/net/http", text)
	assert.Equal(t, 1, clip.Writes())
	assert.Equal(t, []string{"open", "paste"}, cmds.calls)
}

func TestRunner_NoOpWritesNothing(t *testing.T) {
	tests := []struct {
		name   string
		doc    modimport.Document
		cursor int
	}{
		{"blank line", modimport.Lines{"import a;", "", "import b;"}, 1},
		{"orphan continuation", modimport.Lines{"int x;", "    .net;"}, 1},
		{"unterminated", modimport.Lines{"import a", "    .b"}, 0},
		{"cursor out of range", modimport.Lines{"import a;"}, 3},
		{"nil document", nil, 0},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			clip := NewMemoryClipboard()
			cmds := &recordingCommands{}
			r := NewRunner(testConfig(), clip, cmds)

			out, err := r.Run(context.Background(), tt.doc, tt.cursor)
			require.NoError(t, err)
			assert.False(t, out.Applied)
			assert.Equal(t, 0, clip.Writes())
			assert.Empty(t, cmds.calls)
		})
	}
}

func TestRunner_TriggerFailuresAreNotReturned(t *testing.T) {
	clip := NewMemoryClipboard()
	cmds := &recordingCommands{openErr: errors.New("no quick open")}
	r := NewRunner(testConfig(), clip, cmds)

	out, err := r.Run(context.Background(), modimport.Lines{"import std;"}, 0)
	require.NoError(t, err)
	assert.True(t, out.Applied)
	assert.False(t, out.Triggered)
	assert.Equal(t, []string{"open"}, cmds.calls)
	assert.Equal(t, 1, clip.Writes())

	cmds = &recordingCommands{pasteErr: errors.New("paste failed")}
	r.Commands = cmds
	out, err = r.Run(context.Background(), modimport.Lines{"import std;"}, 0)
	require.NoError(t, err)
	assert.False(t, out.Triggered)
	assert.Equal(t, []string{"open", "paste"}, cmds.calls)
}

func TestRunner_ClipboardFailure(t *testing.T) {
	cmds := &recordingCommands{}
	r := NewRunner(testConfig(), failingClipboard{}, cmds)

	_, err := r.Run(context.Background(), modimport.Lines{"import std;"}, 0)
	assert.Error(t, err)
	assert.Empty(t, cmds.calls)
}

func TestRunner_NilCommands(t *testing.T) {
	clip := NewMemoryClipboard()
	r := NewRunner(testConfig(), clip, nil)

	out, err := r.Run(context.Background(), modimport.Lines{"export import std.core;"}, 0)
	require.NoError(t, err)
	assert.Equal(t, "/std/core", out.SearchText)
	assert.True(t, out.Statement.Exported)
	assert.False(t, out.Triggered)
}

func TestRunner_SeparatorFromConfig(t *testing.T) {
	cfg := testConfig()
	cfg.Search.Separator = " "
	r := NewRunner(cfg, NewMemoryClipboard(), nil)

	out, ok := r.Resolve(modimport.Lines{"import a.b:c;"}, 0)
	require.True(t, ok)
	assert.Equal(t, " a b c", out.SearchText)
}

func newPickerFixture(t *testing.T) (*Picker, *MemoryClipboard) {
	t.Helper()
	root := t.TempDir()
	files := map[string]string{
		"src/modules/transport.cppm": "export module corp.net.http;\n",
		"src/net/http.cpp":           "// plain source\n",
		"src/app/main.cpp":           "import corp.net.http;\n",
	}
	for rel, content := range files {
		path := filepath.Join(root, filepath.FromSlash(rel))
		require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
		require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	}

	cfg := config.Default(root)
	ws := workspace.New(cfg)
	require.NoError(t, ws.Scan(context.Background()))
	mods := modindex.New(ws.Root())
	require.NoError(t, mods.Scan(context.Background(), ws.Paths()))

	clip := NewMemoryClipboard()
	return NewPicker(ws, mods, clip, workspace.OptionsFromConfig(cfg)), clip
}

func TestPicker_DeclaringFileFirst(t *testing.T) {
	picker, clip := newPickerFixture(t)
	r := NewRunner(testConfig("corp"), clip, picker)

	doc := document.FromString("import corp.net.http;\n")
	out, err := r.Run(context.Background(), doc, 0)
	require.NoError(t, err)
	require.True(t, out.Triggered)

	assert.Equal(t, "/net/http", picker.Query())
	matches := picker.Matches()
	require.GreaterOrEqual(t, len(matches), 2)
	assert.Equal(t, "src/modules/transport.cppm", matches[0].Path)
	assert.True(t, matches[0].Declares)
	assert.Equal(t, "src/net/http.cpp", matches[1].Path)
	assert.False(t, matches[1].Declares)
}

func TestPicker_PasteRequiresOpen(t *testing.T) {
	picker, _ := newPickerFixture(t)
	assert.ErrorIs(t, picker.Paste(context.Background()), ErrNotOpen)
}

func TestPicker_OpenResetsSession(t *testing.T) {
	picker, clip := newPickerFixture(t)
	ctx := context.Background()

	require.NoError(t, clip.WriteText(ctx, "/net/http"))
	require.NoError(t, picker.Open(ctx))
	require.NoError(t, picker.Paste(ctx))
	require.NotEmpty(t, picker.Matches())

	require.NoError(t, picker.Open(ctx))
	assert.Empty(t, picker.Query())
	assert.Empty(t, picker.Matches())
}

func TestFileClipboard(t *testing.T) {
	ctx := context.Background()
	clip := NewFileClipboard(filepath.Join(t.TempDir(), "search.txt"))

	_, err := clip.ReadText(ctx)
	assert.Error(t, err)

	require.NoError(t, clip.WriteText(ctx, "/std/core"))
	text, err := clip.ReadText(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/std/core", text)

	bad := NewFileClipboard(filepath.Join(t.TempDir(), "missing", "search.txt"))
	assert.Error(t, bad.WriteText(ctx, "x"))
}

func TestWriterClipboard(t *testing.T) {
	ctx := context.Background()
	var buf bytes.Buffer
	clip := NewWriterClipboard(&buf)

	require.NoError(t, clip.WriteText(ctx, "/a/b"))
	assert.Equal(t, "/a/b\n", buf.String())
	text, err := clip.ReadText(ctx)
	require.NoError(t, err)
	assert.Equal(t, "/a/b", text)
}

func TestMemoryClipboard_CancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	clip := NewMemoryClipboard()
	assert.Error(t, clip.WriteText(ctx, "x"))
	assert.Equal(t, 0, clip.Writes())
}
