package modimport

// DefaultMaxLines bounds how many physical lines a single import statement may span.
const DefaultMaxLines = 5

// FindStart returns the index of the line that opens the import statement containing
// cursor. The cursor line itself counts toward maxLines; the walk upward stops with
// ok == false on any line that is neither a start nor a continuation, at the top of
// the document, or once maxLines lines have been inspected.
func FindStart(doc Document, cursor, maxLines int) (start int, ok bool) {
	if cursor < 0 || cursor >= doc.LineCount() {
		return -1, false
	}

	kind := Classify(doc.Line(cursor))
	if kind.Start() {
		return cursor, true
	}
	if !kind.Continuation() {
		return -1, false
	}

	line, used := cursor, 1
	for line > 0 && used < maxLines {
		prev := line - 1
		kind := Classify(doc.Line(prev))
		if kind.Start() {
			return prev, true
		}
		if !kind.Continuation() {
			return -1, false
		}
		line = prev
		used++
	}
	return -1, false
}
