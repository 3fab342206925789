package document

import "bytes"

// LineScanner iterates the lines of a byte buffer without allocating per line.
// Trailing "\n" and "\r\n" are stripped. Unlike bufio.Scanner it reports the
// empty line that follows a final newline, the way an editor shows it.
//
//	scanner := NewLineScanner(content)
//	for scanner.Scan() {
//	    line := scanner.Bytes()
//	}
type LineScanner struct {
	data    []byte
	start   int // start of current line
	end     int // end of current line, exclusive, before the newline
	pos     int // start of the next line
	lineNum int // 1-based
	done    bool
}

func NewLineScanner(data []byte) *LineScanner {
	return &LineScanner{data: data}
}

// Scan advances to the next line. It returns false when there are no more lines.
func (ls *LineScanner) Scan() bool {
	if ls.done {
		return false
	}
	if ls.pos > len(ls.data) {
		ls.done = true
		return false
	}

	ls.start = ls.pos
	ls.lineNum++

	idx := bytes.IndexByte(ls.data[ls.pos:], '\n')
	if idx < 0 {
		// last line, possibly empty after a trailing newline
		ls.end = len(ls.data)
		ls.pos = len(ls.data) + 1
	} else {
		ls.end = ls.pos + idx
		ls.pos = ls.end + 1
	}

	if ls.end > ls.start && ls.data[ls.end-1] == '\r' {
		ls.end--
	}
	return true
}

// Bytes returns the current line. The slice aliases the scanner's buffer.
func (ls *LineScanner) Bytes() []byte {
	return ls.data[ls.start:ls.end]
}

func (ls *LineScanner) Text() string {
	return string(ls.Bytes())
}

// LineNumber returns the current line number (1-based).
func (ls *LineScanner) LineNumber() int {
	return ls.lineNum
}

// Offset returns the byte offset of the current line start.
func (ls *LineScanner) Offset() int {
	return ls.start
}

// EndOffset returns the byte offset of the current line end (exclusive).
func (ls *LineScanner) EndOffset() int {
	return ls.end
}

// CountLines counts lines with editor semantics: every newline starts a new line,
// so empty content is one empty line and "a\n" is two lines.
func CountLines(data []byte) int {
	return bytes.Count(data, []byte{'\n'}) + 1
}
