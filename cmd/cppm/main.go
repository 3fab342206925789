package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/urfave/cli/v2"

	"github.com/standardbeagle/cppm/internal/config"
	"github.com/standardbeagle/cppm/internal/debug"
	"github.com/standardbeagle/cppm/internal/version"
)

func main() {
	if err := newApp().Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newApp() *cli.App {
	return &cli.App{
		Name:                   "cppm",
		Usage:                  "Turn the C++ module import under the cursor into a quick-open search",
		Version:                version.Version,
		UseShortOptionHandling: true,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "config",
				Aliases: []string{"c"},
				Usage:   "Config file path (.kdl or .toml); default is <root>/" + config.KDLFileName,
			},
			&cli.StringFlag{
				Name:    "root",
				Aliases: []string{"r"},
				Usage:   "Project root directory (overrides config)",
			},
			&cli.IntFlag{
				Name:  "max-lines",
				Usage: "Maximum physical lines one import statement may span",
			},
			&cli.StringSliceFlag{
				Name:  "ignore-prefix",
				Usage: "Module name prefix to drop before searching (repeatable, first match wins)",
			},
			&cli.StringFlag{
				Name:  "separator",
				Usage: "Character replacing '.' and ':' in the search text",
			},
			&cli.StringSliceFlag{
				Name:  "include",
				Usage: "Only index files matching glob patterns (e.g., --include 'src/**')",
			},
			&cli.StringSliceFlag{
				Name:  "exclude",
				Usage: "Exclude files matching glob patterns (e.g., --exclude '**/third_party/**')",
			},
			&cli.BoolFlag{
				Name:  "debug-log",
				Usage: "With CPPM_DEBUG=1, write diagnostics to a log file instead of stderr",
			},
		},
		Before: setupDebugOutput,
		After: func(c *cli.Context) error {
			return debug.CloseDebugLog()
		},
		Commands: []*cli.Command{
			{
				Name:      "open",
				Aliases:   []string{"o"},
				Usage:     "Copy the module imported at FILE:LINE as search text and run quick open",
				ArgsUsage: "FILE LINE",
				Flags: []cli.Flag{
					&cli.StringFlag{
						Name:  "clipboard-file",
						Usage: "Write the search text to this file instead of stdout",
					},
					&cli.BoolFlag{
						Name:    "json",
						Aliases: []string{"j"},
						Usage:   "Output as JSON",
					},
					&cli.BoolFlag{
						Name:  "absolute",
						Usage: "Print absolute paths",
					},
				},
				Action: openCommand,
			},
			{
				Name:      "name",
				Aliases:   []string{"n"},
				Usage:     "Print the module name imported at FILE:LINE",
				ArgsUsage: "FILE LINE",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "json",
						Aliases: []string{"j"},
						Usage:   "Output as JSON",
					},
				},
				Action: nameCommand,
			},
			{
				Name:      "search",
				Aliases:   []string{"s"},
				Usage:     "Run quick open on a search text such as /app/net/http",
				ArgsUsage: "TEXT",
				Flags: []cli.Flag{
					&cli.IntFlag{
						Name:    "max",
						Aliases: []string{"m"},
						Usage:   "Maximum results (default from config)",
					},
					&cli.BoolFlag{
						Name:    "json",
						Aliases: []string{"j"},
						Usage:   "Output as JSON",
					},
					&cli.BoolFlag{
						Name:  "absolute",
						Usage: "Print absolute paths",
					},
				},
				Action: searchCommand,
			},
			{
				Name:      "modules",
				Usage:     "List module declarations found in the workspace, or the files declaring NAME",
				ArgsUsage: "[NAME]",
				Flags: []cli.Flag{
					&cli.BoolFlag{
						Name:    "json",
						Aliases: []string{"j"},
						Usage:   "Output as JSON",
					},
				},
				Action: modulesCommand,
			},
			{
				Name:   "mcp",
				Usage:  "Start MCP (Model Context Protocol) server with stdio transport",
				Action: mcpCommand,
			},
			{
				Name:  "config",
				Usage: "Configuration management commands",
				Subcommands: []*cli.Command{
					{
						Name:    "init",
						Aliases: []string{"i"},
						Usage:   "Initialize configuration file (" + config.KDLFileName + ")",
						Flags: []cli.Flag{
							&cli.StringFlag{
								Name:    "format",
								Aliases: []string{"f"},
								Usage:   "Output format: kdl, toml",
								Value:   "kdl",
							},
							&cli.StringFlag{
								Name:    "output",
								Aliases: []string{"o"},
								Usage:   "Output file path (default: <root>/" + config.KDLFileName + ")",
							},
							&cli.BoolFlag{
								Name:  "force",
								Usage: "Overwrite existing configuration file",
							},
						},
						Action: configInitCommand,
					},
					{
						Name:    "show",
						Aliases: []string{"s"},
						Usage:   "Show current configuration values",
						Action:  configShowCommand,
					},
					{
						Name:    "validate",
						Aliases: []string{"v"},
						Usage:   "Validate configuration",
						Action:  configValidateCommand,
					},
				},
			},
		},
	}
}

func setupDebugOutput(c *cli.Context) error {
	if !debug.IsDebugEnabled() {
		return nil
	}
	if c.Bool("debug-log") {
		logPath, err := debug.InitDebugLogFile()
		if err != nil {
			return err
		}
		fmt.Fprintf(c.App.ErrWriter, "Debug log: %s\n", logPath)
		return nil
	}
	debug.SetDebugOutput(c.App.ErrWriter)
	return nil
}

// loadConfigWithOverrides loads configuration and applies CLI flag overrides.
func loadConfigWithOverrides(c *cli.Context) (*config.Config, error) {
	var (
		cfg *config.Config
		err error
	)
	if configPath := c.String("config"); configPath != "" {
		cfg, err = config.LoadFile(configPath)
	} else {
		cfg, err = config.Load(c.String("root"))
	}
	if err != nil {
		return nil, fmt.Errorf("failed to load config: %w", err)
	}

	if rootFlag := c.String("root"); rootFlag != "" {
		absRoot, err := filepath.Abs(rootFlag)
		if err != nil {
			return nil, fmt.Errorf("failed to resolve root path %q: %w", rootFlag, err)
		}
		cfg.Project.Root = absRoot
	}
	if c.IsSet("max-lines") {
		cfg.Extract.MaxLines = c.Int("max-lines")
	}
	if prefixes := c.StringSlice("ignore-prefix"); len(prefixes) > 0 {
		cfg.Search.IgnoredPrefixes = prefixes
	}
	if c.IsSet("separator") {
		cfg.Search.Separator = c.String("separator")
	}
	if includeFlags := c.StringSlice("include"); len(includeFlags) > 0 {
		cfg.Include = includeFlags
	}
	if excludeFlags := c.StringSlice("exclude"); len(excludeFlags) > 0 {
		cfg.Exclude = append(cfg.Exclude, excludeFlags...)
	}

	if err := config.ValidateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}
