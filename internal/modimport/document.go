package modimport

// Document is a read-only, 0-indexed view of the lines of an open file.
type Document interface {
	LineCount() int
	Line(i int) string
}

// Lines adapts a slice of lines to Document.
type Lines []string

func (l Lines) LineCount() int    { return len(l) }
func (l Lines) Line(i int) string { return l[i] }
