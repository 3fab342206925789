// Package document loads source files into line-addressable buffers for the
// import recognizer.
package document

import (
	"bytes"
	"os"

	cppmerrors "github.com/standardbeagle/cppm/internal/errors"
)

type span struct {
	start, end int
}

// Buffer is an immutable, 0-indexed line view of file content. It satisfies
// modimport.Document.
type Buffer struct {
	path  string
	data  []byte
	lines []span
}

// utf8BOM is dropped from the start of content, as editors do before showing a file.
var utf8BOM = []byte("\xEF\xBB\xBF")

// New indexes content once; Line slices the retained bytes on demand.
func New(path string, content []byte) *Buffer {
	content = bytes.TrimPrefix(content, utf8BOM)
	b := &Buffer{
		path:  path,
		data:  content,
		lines: make([]span, 0, CountLines(content)),
	}
	scanner := NewLineScanner(content)
	for scanner.Scan() {
		b.lines = append(b.lines, span{scanner.Offset(), scanner.EndOffset()})
	}
	return b
}

// FromString builds an unnamed buffer, mostly for tests and the MCP server.
func FromString(content string) *Buffer {
	return New("", []byte(content))
}

// Load reads path into a Buffer.
func Load(path string) (*Buffer, error) {
	content, err := os.ReadFile(path)
	if err != nil {
		return nil, cppmerrors.NewFileError("read", path, err)
	}
	return New(path, content), nil
}

func (b *Buffer) Path() string {
	return b.path
}

func (b *Buffer) LineCount() int {
	return len(b.lines)
}

// Line returns line i without its line terminator. It panics when i is out of range,
// like indexing a slice.
func (b *Buffer) Line(i int) string {
	s := b.lines[i]
	return string(b.data[s.start:s.end])
}

// Lines copies every line out of the buffer.
func (b *Buffer) Lines() []string {
	out := make([]string, len(b.lines))
	for i := range b.lines {
		out[i] = b.Line(i)
	}
	return out
}
