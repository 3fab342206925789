package modimport

import "regexp"

var (
	blockCommentRe = regexp.MustCompile(`/\*.*?\*/`)
	lineCommentRe  = regexp.MustCompile(`//.*`)
)

// StripComments removes every complete /* ... */ span and any trailing // comment
// from a single line. Unterminated block comments are left untouched.
func StripComments(line string) string {
	line = blockCommentRe.ReplaceAllString(line, "")
	return lineCommentRe.ReplaceAllString(line, "")
}
