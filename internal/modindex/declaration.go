// Package modindex records which files declare which C++ named modules.
package modindex

import (
	"regexp"
	"strings"

	"github.com/standardbeagle/cppm/internal/document"
	"github.com/standardbeagle/cppm/internal/modimport"
)

// declarationRe matches a whole-line module declaration after comment stripping.
// "module;" (global module fragment) and "module :private;" never match.
var declarationRe = regexp.MustCompile(`^\s*(export\s+)?module\s+([A-Za-z0-9_][A-Za-z0-9_.:]*)\s*;\s*$`)

// Declaration is one "export module NAME;" or "module NAME;" line.
type Declaration struct {
	Module   string `json:"module"`
	Path     string `json:"path"`
	Line     int    `json:"line"` // 1-based
	Exported bool   `json:"exported"`
}

// Partition reports whether the declaration names a module partition ("a.b:part").
func (d Declaration) Partition() bool {
	return strings.Contains(d.Module, ":")
}

// ParseDeclarations scans buf line by line for module declarations.
func ParseDeclarations(path string, buf *document.Buffer) []Declaration {
	var decls []Declaration
	for i := 0; i < buf.LineCount(); i++ {
		line := modimport.StripComments(buf.Line(i))
		m := declarationRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		decls = append(decls, Declaration{
			Module:   m[2],
			Path:     path,
			Line:     i + 1,
			Exported: m[1] != "",
		})
	}
	return decls
}

// Segments splits a module name on '.' and ':' and lower-cases the parts.
func Segments(name string) []string {
	fields := strings.FieldsFunc(name, func(r rune) bool { return r == '.' || r == ':' })
	for i, f := range fields {
		fields[i] = strings.ToLower(f)
	}
	return fields
}
