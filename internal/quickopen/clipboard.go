package quickopen

import (
	"context"
	"fmt"
	"io"
	"os"
	"sync"

	cppmerrors "github.com/standardbeagle/cppm/internal/errors"
)

// Clipboard is the sink that carries the search text to the quick-open facility.
type Clipboard interface {
	WriteText(ctx context.Context, text string) error
	ReadText(ctx context.Context) (string, error)
}

// MemoryClipboard keeps the text in memory and counts writes.
type MemoryClipboard struct {
	mu     sync.Mutex
	text   string
	writes int
}

func NewMemoryClipboard() *MemoryClipboard {
	return &MemoryClipboard{}
}

func (c *MemoryClipboard) WriteText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.text = text
	c.writes++
	return nil
}

func (c *MemoryClipboard) ReadText(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.text, nil
}

// Writes returns how many times WriteText succeeded.
func (c *MemoryClipboard) Writes() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.writes
}

// FileClipboard stores the text in a file so editor glue can pick it up.
type FileClipboard struct {
	Path string
}

func NewFileClipboard(path string) *FileClipboard {
	return &FileClipboard{Path: path}
}

func (c *FileClipboard) WriteText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	if err := os.WriteFile(c.Path, []byte(text), 0644); err != nil {
		return cppmerrors.NewFileError("write", c.Path, err)
	}
	return nil
}

func (c *FileClipboard) ReadText(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	content, err := os.ReadFile(c.Path)
	if err != nil {
		return "", cppmerrors.NewFileError("read", c.Path, err)
	}
	return string(content), nil
}

// WriterClipboard prints each written text on its own line and remembers the last one.
type WriterClipboard struct {
	mu   sync.Mutex
	w    io.Writer
	last string
}

func NewWriterClipboard(w io.Writer) *WriterClipboard {
	return &WriterClipboard{w: w}
}

func (c *WriterClipboard) WriteText(ctx context.Context, text string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if _, err := fmt.Fprintln(c.w, text); err != nil {
		return fmt.Errorf("failed to write search text: %w", err)
	}
	c.last = text
	return nil
}

func (c *WriterClipboard) ReadText(ctx context.Context) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.last, nil
}
