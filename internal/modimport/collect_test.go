package modimport

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestCollectLines_SingleLine(t *testing.T) {
	doc := Lines{"import a.b; // trailing"}
	lines, ok := CollectLines(doc, 0, DefaultMaxLines)
	require.True(t, ok)
	assert.Equal(t, []string{"import a.b; "}, lines)
}

func TestCollectLines_MultiLineStripsComments(t *testing.T) {
	doc := Lines{
		"import a /* first */",
		"  .b // second",
		"  .c; /* third */",
		"  .d;",
	}
	lines, ok := CollectLines(doc, 0, DefaultMaxLines)
	require.True(t, ok)
	assert.Equal(t, []string{"import a ", "  .b ", "  .c; "}, lines)
}

func TestCollectLines_Failures(t *testing.T) {
	tests := []struct {
		name string
		doc  Lines
	}{
		{"document ends before terminator", Lines{"import a", "  .b"}},
		{"interrupted by blank line", Lines{"import a", "", "  .b;"}},
		{"interrupted by code", Lines{"import a", "int x;"}},
		{"start line only, no terminator", Lines{"import a"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			lines, ok := CollectLines(tt.doc, 0, DefaultMaxLines)
			assert.False(t, ok)
			assert.Nil(t, lines)
		})
	}
}

func TestCollectLines_Budget(t *testing.T) {
	exact := Lines{"import a", "  .b", "  .c", "  .d", "  .e;"}
	lines, ok := CollectLines(exact, 0, 5)
	require.True(t, ok)
	assert.Len(t, lines, 5)

	over := Lines{"import a", "  .b", "  .c", "  .d", "  .e", "  .f;"}
	_, ok = CollectLines(over, 0, 5)
	assert.False(t, ok)
}

func TestCollectLines_BadStart(t *testing.T) {
	_, ok := CollectLines(Lines{"import a;"}, 3, DefaultMaxLines)
	assert.False(t, ok)
	_, ok = CollectLines(Lines{"import a;"}, 0, 0)
	assert.False(t, ok)
}
