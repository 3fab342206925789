package config

import (
	"os"
	"path/filepath"

	"github.com/standardbeagle/cppm/internal/debug"
)

const (
	// KDLFileName is the primary project/global configuration file.
	KDLFileName = ".cppm.kdl"
	// TOMLFileName is read when a directory has no KDL file.
	TOMLFileName = ".cppm.toml"

	DefaultMaxLines       = 5
	DefaultSeparator      = "/"
	DefaultMaxResults     = 20
	DefaultFuzzyThreshold = 0.8
	DefaultAlgorithm      = "jaro-winkler"
	DefaultDebounceMs     = 200
)

type Config struct {
	Version int
	Project Project
	Extract Extract
	Search  Search
	Watch   Watch
	Include []string
	Exclude []string
}

type Project struct {
	Root             string
	Name             string
	RespectGitignore bool // add root .gitignore entries to Exclude
}

type Extract struct {
	MaxLines int // physical lines a single import statement may span
}

type Search struct {
	IgnoredPrefixes []string // module name prefixes dropped before searching, first match wins
	Separator       string   // replaces '.' and ':' in the search text
	MaxResults      int
	FuzzyThreshold  float64 // minimum similarity for paths that do not contain every token
	Algorithm       string  // "jaro-winkler", "levenshtein" or "lcs"
	Extensions      []string
}

type Watch struct {
	Enabled    bool
	DebounceMs int
}

// DefaultExtensions are the C++ source and module interface extensions indexed for quick open.
var DefaultExtensions = []string{".cppm", ".ixx", ".mpp", ".cxx", ".cpp", ".cc", ".hpp", ".hxx", ".h"}

// Default returns the built-in configuration rooted at root.
func Default(root string) *Config {
	return &Config{
		Version: 1,
		Project: Project{
			Root:             root,
			Name:             filepath.Base(root),
			RespectGitignore: true,
		},
		Extract: Extract{MaxLines: DefaultMaxLines},
		Search: Search{
			IgnoredPrefixes: []string{},
			Separator:       DefaultSeparator,
			MaxResults:      DefaultMaxResults,
			FuzzyThreshold:  DefaultFuzzyThreshold,
			Algorithm:       DefaultAlgorithm,
			Extensions:      append([]string(nil), DefaultExtensions...),
		},
		Watch: Watch{
			Enabled:    true,
			DebounceMs: DefaultDebounceMs,
		},
		Include: []string{},
		Exclude: []string{
			"**/.git/**",
			"**/.*/**",
			"**/node_modules/**",
			"**/build/**",
			"**/out/**",
			"**/cmake-build-*/**",
			"**/CMakeFiles/**",
		},
	}
}

// Load builds the configuration for rootDir ("" means the working directory):
// defaults, then ~/.cppm.kdl, then the project .cppm.kdl or .cppm.toml, then
// editor settings and .gitignore enrichment.
func Load(rootDir string) (*Config, error) {
	root, err := absRoot(rootDir)
	if err != nil {
		return nil, err
	}

	var base *Config
	if home, err := os.UserHomeDir(); err == nil && filepath.Clean(home) != root {
		globalCfg, err := LoadKDL(home, Default(root))
		if err != nil {
			debug.Log("CONFIG", "ignoring global config: %v\n", err)
		} else if globalCfg != nil {
			base = globalCfg
			base.Project.Root = root
		}
	}

	project, err := loadProject(root)
	if err != nil {
		return nil, err
	}

	var cfg *Config
	switch {
	case base != nil && project != nil:
		cfg = mergeConfigs(base, project)
	case project != nil:
		cfg = project
	case base != nil:
		cfg = base
	default:
		cfg = Default(root)
	}

	cfg.enrich()
	return cfg, nil
}

// LoadFile loads an explicit config file (.kdl or .toml) on top of the defaults for its directory.
func LoadFile(path string) (*Config, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return nil, err
	}
	content, err := os.ReadFile(abs)
	if err != nil {
		return nil, err
	}

	dir := filepath.Dir(abs)
	var cfg *Config
	if filepath.Ext(abs) == ".toml" {
		cfg, err = parseTOML(content, Default(dir))
	} else {
		cfg, err = parseKDL(string(content), Default(dir))
	}
	if err != nil {
		return nil, err
	}
	cfg.resolveRoot(dir)
	cfg.enrich()
	return cfg, nil
}

func loadProject(root string) (*Config, error) {
	cfg, err := LoadKDL(root, Default(root))
	if err != nil || cfg != nil {
		return cfg, err
	}
	return LoadTOML(root, Default(root))
}

func absRoot(rootDir string) (string, error) {
	if rootDir == "" {
		rootDir = "."
	}
	abs, err := filepath.Abs(rootDir)
	if err != nil {
		return "", err
	}
	return filepath.Clean(abs), nil
}

// resolveRoot makes Project.Root absolute relative to the directory holding the config file.
func (c *Config) resolveRoot(configDir string) {
	if c.Project.Root == "" {
		c.Project.Root = configDir
		return
	}
	if !filepath.IsAbs(c.Project.Root) {
		c.Project.Root = filepath.Join(configDir, c.Project.Root)
	}
	c.Project.Root = filepath.Clean(c.Project.Root)
}

// enrich fills ignored prefixes from editor settings and appends gitignore exclusions.
func (c *Config) enrich() {
	if len(c.Search.IgnoredPrefixes) == 0 {
		if prefixes, err := LoadEditorPrefixes(c.Project.Root); err != nil {
			debug.Log("CONFIG", "ignoring editor settings: %v\n", err)
		} else if len(prefixes) > 0 {
			c.Search.IgnoredPrefixes = prefixes
		}
	}

	if c.Project.RespectGitignore {
		gp := NewGitignoreParser()
		if err := gp.LoadGitignore(c.Project.Root); err != nil {
			debug.Log("CONFIG", "ignoring .gitignore: %v\n", err)
		}
		c.Exclude = DeduplicatePatterns(append(c.Exclude, gp.ExclusionPatterns()...))
	}
}

// mergeConfigs layers a project config over the global one. Exclusions are unioned;
// includes and ignored prefixes fall back to the global values when the project leaves
// them empty.
func mergeConfigs(base, project *Config) *Config {
	merged := *project

	merged.Exclude = DeduplicatePatterns(append(append([]string{}, base.Exclude...), project.Exclude...))

	if len(project.Include) == 0 && len(base.Include) > 0 {
		merged.Include = base.Include
	}
	if len(project.Search.IgnoredPrefixes) == 0 && len(base.Search.IgnoredPrefixes) > 0 {
		merged.Search.IgnoredPrefixes = base.Search.IgnoredPrefixes
	}
	return &merged
}

// DeduplicatePatterns removes duplicate patterns, keeping first occurrences in order.
func DeduplicatePatterns(patterns []string) []string {
	seen := make(map[string]bool, len(patterns))
	result := make([]string, 0, len(patterns))
	for _, pattern := range patterns {
		if !seen[pattern] {
			seen[pattern] = true
			result = append(result, pattern)
		}
	}
	return result
}
