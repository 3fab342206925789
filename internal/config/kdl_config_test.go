package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseKDL_Defaults(t *testing.T) {
	cfg, err := parseKDL("", Default("/proj"))
	require.NoError(t, err)
	require.NotNil(t, cfg)

	assert.Equal(t, 5, cfg.Extract.MaxLines)
	assert.Equal(t, "/", cfg.Search.Separator)
	assert.Empty(t, cfg.Search.IgnoredPrefixes)
	assert.Equal(t, DefaultMaxResults, cfg.Search.MaxResults)
	assert.Equal(t, DefaultAlgorithm, cfg.Search.Algorithm)
	assert.Contains(t, cfg.Search.Extensions, ".cppm")
	assert.True(t, cfg.Watch.Enabled)
}

func TestParseKDL_AllSections(t *testing.T) {
	kdlContent := `
project {
    root "src"
    name "engine"
    respect_gitignore false
}
extract {
    max_lines 8
}
search {
    ignore_prefix "corp" "corp.engine"
    separator " "
    max_results 5
    fuzzy_threshold 0.65
    algorithm "levenshtein"
    extensions ".cppm" ".ixx"
}
watch {
    enabled false
    debounce_ms 50
}
include "modules/**"
exclude "**/third_party/**"
`
	cfg, err := parseKDL(kdlContent, Default("/proj"))
	require.NoError(t, err)

	assert.Equal(t, "src", cfg.Project.Root)
	assert.Equal(t, "engine", cfg.Project.Name)
	assert.False(t, cfg.Project.RespectGitignore)
	assert.Equal(t, 8, cfg.Extract.MaxLines)
	assert.Equal(t, []string{"corp", "corp.engine"}, cfg.Search.IgnoredPrefixes)
	assert.Equal(t, " ", cfg.Search.Separator)
	assert.Equal(t, 5, cfg.Search.MaxResults)
	assert.InDelta(t, 0.65, cfg.Search.FuzzyThreshold, 1e-9)
	assert.Equal(t, "levenshtein", cfg.Search.Algorithm)
	assert.Equal(t, []string{".cppm", ".ixx"}, cfg.Search.Extensions)
	assert.False(t, cfg.Watch.Enabled)
	assert.Equal(t, 50, cfg.Watch.DebounceMs)
	assert.Equal(t, []string{"modules/**"}, cfg.Include)
	assert.Equal(t, []string{"**/third_party/**"}, cfg.Exclude)
}

func TestParseKDL_IgnorePrefixOrderAcrossNodes(t *testing.T) {
	kdlContent := `
search {
    ignore_prefix "b"
    ignore_prefix "a"
}
`
	cfg, err := parseKDL(kdlContent, Default("/proj"))
	require.NoError(t, err)
	assert.Equal(t, []string{"b", "a"}, cfg.Search.IgnoredPrefixes)
}

func TestParseKDL_ExcludeBlockForm(t *testing.T) {
	kdlContent := `
exclude {
    "**/gen/**"
    "**/*.pb.h"
}
`
	cfg, err := parseKDL(kdlContent, Default("/proj"))
	require.NoError(t, err)
	assert.Equal(t, []string{"**/gen/**", "**/*.pb.h"}, cfg.Exclude)
}

func TestParseKDL_Invalid(t *testing.T) {
	_, err := parseKDL(`search { max_results `, Default("/proj"))
	assert.Error(t, err)
}
