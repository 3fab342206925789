package main

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/cppm/internal/config"
)

const kdlTemplate = `// cppm configuration

project {
    name "my-project"
    respect_gitignore true         // Add .gitignore entries to exclude
}

extract {
    max_lines 5                    // Lines one import statement may span
}

search {
    ignore_prefix "mycompany"      // Dropped from module names, first match wins
    separator "/"                  // Replaces '.' and ':' in search text
    max_results 20
    fuzzy_threshold 0.8
    algorithm "jaro-winkler"       // "jaro-winkler", "levenshtein" or "lcs"
}

watch {
    enabled true                   // Keep indexes current in MCP mode
    debounce_ms 200
}

// Only index matching files (empty means every C++ source)
include {
    // "src/**"
}

// Replaces the default exclusions
exclude {
    "**/build/**"
    "**/third_party/**"
}
`

const tomlTemplate = `# cppm configuration

exclude = ["**/build/**", "**/third_party/**"]

[project]
name = "my-project"
respect_gitignore = true

[extract]
max_lines = 5

[search]
ignore_prefix = ["mycompany"]
separator = "/"
max_results = 20
fuzzy_threshold = 0.8
algorithm = "jaro-winkler"

[watch]
enabled = true
debounce_ms = 200
`

func configInitCommand(c *cli.Context) error {
	format := c.String("format")
	output := c.String("output")

	var content, fileName string
	switch format {
	case "kdl":
		content, fileName = kdlTemplate, config.KDLFileName
	case "toml":
		content, fileName = tomlTemplate, config.TOMLFileName
	default:
		return cli.Exit(fmt.Sprintf("unsupported format: %s", format), 2)
	}

	if output == "" {
		root := c.String("root")
		if root == "" {
			root = "."
		}
		output = filepath.Join(root, fileName)
	}

	if !c.Bool("force") {
		if _, err := os.Stat(output); err == nil {
			return cli.Exit(fmt.Sprintf("configuration file %s already exists (use --force to overwrite)", output), 1)
		}
	}

	if err := os.WriteFile(output, []byte(content), 0644); err != nil {
		return cli.Exit(fmt.Sprintf("failed to write config file: %v", err), 1)
	}

	fmt.Fprintf(c.App.Writer, "Configuration file created: %s\n", output)
	fmt.Fprintf(c.App.Writer, "Set search.ignore_prefix to the module prefixes your project drops from paths.\n")
	return nil
}

func configShowCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return cli.Exit(err.Error(), 1)
	}
	displayConfigTable(c.App.Writer, cfg)
	return nil
}

func configValidateCommand(c *cli.Context) error {
	cfg, err := loadConfigWithOverrides(c)
	if err != nil {
		return cli.Exit(fmt.Sprintf("Configuration validation failed: %v", err), 1)
	}

	var warnings []string
	if len(cfg.Search.IgnoredPrefixes) == 0 {
		warnings = append(warnings, "No ignored prefixes, search text keeps the full module name")
	}
	if cfg.Search.FuzzyThreshold >= 1 {
		warnings = append(warnings, "fuzzy_threshold is 1.0, only paths containing every token will match")
	}
	if cfg.Extract.MaxLines > 20 {
		warnings = append(warnings, "max_lines is very high (>20), unrelated lines may be joined into one statement")
	}

	w := c.App.Writer
	fmt.Fprintf(w, "Configuration is valid\n")
	fmt.Fprintf(w, "Root: %s\n", cfg.Project.Root)
	if len(warnings) > 0 {
		fmt.Fprintf(w, "\nWarnings:\n")
		for _, warning := range warnings {
			fmt.Fprintf(w, "  - %s\n", warning)
		}
	}
	return nil
}

func displayConfigTable(w io.Writer, cfg *config.Config) {
	fmt.Fprintf(w, "cppm Configuration\n")
	fmt.Fprintf(w, "==================\n\n")

	fmt.Fprintf(w, "Project Settings:\n")
	fmt.Fprintf(w, "  Name:              %s\n", cfg.Project.Name)
	fmt.Fprintf(w, "  Root:              %s\n", cfg.Project.Root)
	fmt.Fprintf(w, "  Respect .gitignore: %t\n", cfg.Project.RespectGitignore)
	fmt.Fprintf(w, "\n")

	fmt.Fprintf(w, "Extract Settings:\n")
	fmt.Fprintf(w, "  Max lines:         %d\n", cfg.Extract.MaxLines)
	fmt.Fprintf(w, "\n")

	fmt.Fprintf(w, "Search Settings:\n")
	fmt.Fprintf(w, "  Ignored prefixes:  %s\n", strings.Join(cfg.Search.IgnoredPrefixes, ", "))
	fmt.Fprintf(w, "  Separator:         %q\n", cfg.Search.Separator)
	fmt.Fprintf(w, "  Max results:       %d\n", cfg.Search.MaxResults)
	fmt.Fprintf(w, "  Fuzzy threshold:   %.2f\n", cfg.Search.FuzzyThreshold)
	fmt.Fprintf(w, "  Algorithm:         %s\n", cfg.Search.Algorithm)
	fmt.Fprintf(w, "  Extensions:        %s\n", strings.Join(cfg.Search.Extensions, " "))
	fmt.Fprintf(w, "\n")

	fmt.Fprintf(w, "Watch Settings:\n")
	fmt.Fprintf(w, "  Enabled:           %t\n", cfg.Watch.Enabled)
	fmt.Fprintf(w, "  Debounce:          %d ms\n", cfg.Watch.DebounceMs)
	fmt.Fprintf(w, "\n")

	fmt.Fprintf(w, "Include Patterns (%d):\n", len(cfg.Include))
	for _, pattern := range cfg.Include {
		fmt.Fprintf(w, "  %s\n", pattern)
	}
	fmt.Fprintf(w, "\n")

	fmt.Fprintf(w, "Exclude Patterns (%d):\n", len(cfg.Exclude))
	for _, pattern := range cfg.Exclude {
		fmt.Fprintf(w, "  %s\n", pattern)
	}
}
