package config

import (
	"errors"
	"fmt"
	"strconv"
	"unicode/utf8"

	cppmerrors "github.com/standardbeagle/cppm/internal/errors"
)

var validAlgorithms = map[string]bool{
	"jaro-winkler": true,
	"levenshtein":  true,
	"lcs":          true,
}

// Validator validates configuration and fills unset values.
type Validator struct{}

func NewValidator() *Validator {
	return &Validator{}
}

// ValidateAndSetDefaults validates cfg and applies defaults for zero values.
func (v *Validator) ValidateAndSetDefaults(cfg *Config) error {
	v.setDefaults(cfg)

	if cfg.Project.Root == "" {
		return cppmerrors.NewConfigError("project.root", "", errors.New("project root cannot be empty"))
	}
	if cfg.Extract.MaxLines < 1 {
		return cppmerrors.NewConfigError("extract.max_lines", strconv.Itoa(cfg.Extract.MaxLines),
			fmt.Errorf("must be at least 1, got %d", cfg.Extract.MaxLines))
	}
	if err := v.validateSearchConfig(&cfg.Search); err != nil {
		return err
	}
	if cfg.Watch.DebounceMs < 0 {
		return cppmerrors.NewConfigError("watch.debounce_ms", strconv.Itoa(cfg.Watch.DebounceMs),
			errors.New("cannot be negative"))
	}
	return nil
}

func (v *Validator) validateSearchConfig(search *Search) error {
	if utf8.RuneCountInString(search.Separator) != 1 {
		return cppmerrors.NewConfigError("search.separator", search.Separator,
			errors.New("separator must be exactly one character"))
	}
	if search.MaxResults < 0 {
		return cppmerrors.NewConfigError("search.max_results", strconv.Itoa(search.MaxResults),
			errors.New("cannot be negative"))
	}
	if search.FuzzyThreshold < 0 || search.FuzzyThreshold > 1 {
		return cppmerrors.NewConfigError("search.fuzzy_threshold", strconv.FormatFloat(search.FuzzyThreshold, 'g', -1, 64),
			errors.New("must be between 0 and 1"))
	}
	if !validAlgorithms[search.Algorithm] {
		return cppmerrors.NewConfigError("search.algorithm", search.Algorithm,
			errors.New("must be one of jaro-winkler, levenshtein, lcs"))
	}
	return nil
}

func (v *Validator) setDefaults(cfg *Config) {
	if cfg.Search.Separator == "" {
		cfg.Search.Separator = DefaultSeparator
	}
	if cfg.Search.Algorithm == "" {
		cfg.Search.Algorithm = DefaultAlgorithm
	}
	if len(cfg.Search.Extensions) == 0 {
		cfg.Search.Extensions = append([]string(nil), DefaultExtensions...)
	}
	if cfg.Search.MaxResults == 0 {
		cfg.Search.MaxResults = DefaultMaxResults
	}
	if cfg.Search.IgnoredPrefixes == nil {
		cfg.Search.IgnoredPrefixes = []string{}
	}
}

// ValidateConfig is a convenience wrapper around Validator.
func ValidateConfig(cfg *Config) error {
	return NewValidator().ValidateAndSetDefaults(cfg)
}
