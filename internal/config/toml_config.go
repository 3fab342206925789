package config

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/pelletier/go-toml/v2"
)

// tomlFile mirrors the KDL layout; pointer fields distinguish "unset" from zero values.
type tomlFile struct {
	Include []string `toml:"include"`
	Exclude []string `toml:"exclude"`
	Project struct {
		Root             *string `toml:"root"`
		Name             *string `toml:"name"`
		RespectGitignore *bool   `toml:"respect_gitignore"`
	} `toml:"project"`
	Extract struct {
		MaxLines *int `toml:"max_lines"`
	} `toml:"extract"`
	Search struct {
		IgnorePrefix   []string `toml:"ignore_prefix"`
		Separator      *string  `toml:"separator"`
		MaxResults     *int     `toml:"max_results"`
		FuzzyThreshold *float64 `toml:"fuzzy_threshold"`
		Algorithm      *string  `toml:"algorithm"`
		Extensions     []string `toml:"extensions"`
	} `toml:"search"`
	Watch struct {
		Enabled    *bool `toml:"enabled"`
		DebounceMs *int  `toml:"debounce_ms"`
	} `toml:"watch"`
}

// LoadTOML loads dir/.cppm.toml on top of defaults. It returns nil, nil when the file
// does not exist.
func LoadTOML(dir string, defaults *Config) (*Config, error) {
	tomlPath := filepath.Join(dir, TOMLFileName)
	content, err := os.ReadFile(tomlPath)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", TOMLFileName, err)
	}

	cfg, err := parseTOML(content, defaults)
	if err != nil {
		return nil, err
	}
	cfg.resolveRoot(dir)
	return cfg, nil
}

func parseTOML(content []byte, cfg *Config) (*Config, error) {
	if cfg == nil {
		cfg = Default("")
	}

	var f tomlFile
	if err := toml.Unmarshal(content, &f); err != nil {
		return nil, fmt.Errorf("failed to parse TOML config: %w", err)
	}

	if f.Project.Root != nil {
		cfg.Project.Root = *f.Project.Root
	}
	if f.Project.Name != nil {
		cfg.Project.Name = *f.Project.Name
	}
	if f.Project.RespectGitignore != nil {
		cfg.Project.RespectGitignore = *f.Project.RespectGitignore
	}
	if f.Extract.MaxLines != nil {
		cfg.Extract.MaxLines = *f.Extract.MaxLines
	}
	if len(f.Search.IgnorePrefix) > 0 {
		cfg.Search.IgnoredPrefixes = append(cfg.Search.IgnoredPrefixes, f.Search.IgnorePrefix...)
	}
	if f.Search.Separator != nil {
		cfg.Search.Separator = *f.Search.Separator
	}
	if f.Search.MaxResults != nil {
		cfg.Search.MaxResults = *f.Search.MaxResults
	}
	if f.Search.FuzzyThreshold != nil {
		cfg.Search.FuzzyThreshold = *f.Search.FuzzyThreshold
	}
	if f.Search.Algorithm != nil {
		cfg.Search.Algorithm = *f.Search.Algorithm
	}
	if len(f.Search.Extensions) > 0 {
		cfg.Search.Extensions = f.Search.Extensions
	}
	if f.Watch.Enabled != nil {
		cfg.Watch.Enabled = *f.Watch.Enabled
	}
	if f.Watch.DebounceMs != nil {
		cfg.Watch.DebounceMs = *f.Watch.DebounceMs
	}
	cfg.Include = append(cfg.Include, f.Include...)
	if f.Exclude != nil {
		cfg.Exclude = f.Exclude
	}

	return cfg, nil
}
