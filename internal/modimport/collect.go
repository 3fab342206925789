package modimport

// CollectLines gathers the comment-stripped lines of the statement opened at start,
// through the first line ending with the terminator. It fails when the document ends,
// when a non-continuation line interrupts the statement, or when maxLines lines have
// been collected without reaching the terminator.
func CollectLines(doc Document, start, maxLines int) ([]string, bool) {
	if start < 0 || start >= doc.LineCount() || maxLines < 1 {
		return nil, false
	}

	first := StripComments(doc.Line(start))
	lines := make([]string, 0, maxLines)
	lines = append(lines, first)

	if EndsWithTerminator(first) {
		return lines, true
	}

	for line := start + 1; len(lines) < maxLines; line++ {
		if line >= doc.LineCount() {
			return nil, false
		}

		stripped := StripComments(doc.Line(line))
		if !IsContinuation(stripped) {
			return nil, false
		}

		lines = append(lines, stripped)
		if EndsWithTerminator(stripped) {
			return lines, true
		}
	}
	return nil, false
}
