package modimport

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestStripComments(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"no comment", "import a.b;", "import a.b;"},
		{"line comment", "import a.b; // comment", "import a.b; "},
		{"block comment", "import /* x */a.b;", "import a.b;"},
		{"two block comments", "/*a*/import/*b*/ c;", "import c;"},
		{"block then line", "import a; /* x */ // y", "import a;  "},
		{"unterminated block kept", "import a; /* open", "import a; /* open"},
		{"line comment swallows block opener", "import a; // /* x */", "import a; "},
		{"only comment", "// nothing here", ""},
		{"empty", "", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, StripComments(tt.in))
		})
	}
}
