// Package modimport recognizes C++ module import statements around a cursor line.
//
// The recognizer is line based and bounded: it classifies comment-stripped lines,
// walks upward from the cursor to the statement's first line, walks forward to the
// terminating semicolon, and rebuilds the dotted module name. Every step either
// yields a value or reports "not applicable" through a boolean; nothing here returns
// an error, because a cursor outside an import statement is the common case.
//
// Known limitation: block comments are stripped per line. A statement interrupted by
// a block comment that opens on one line and closes on a later one is not recognized.
package modimport
