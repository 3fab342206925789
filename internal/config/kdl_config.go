package config

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"strings"

	kdl "github.com/sblinch/kdl-go"
	"github.com/sblinch/kdl-go/document"
)

// LoadKDL loads dir/.cppm.kdl on top of defaults. It returns nil, nil when the file
// does not exist.
func LoadKDL(dir string, defaults *Config) (*Config, error) {
	kdlPath := filepath.Join(dir, KDLFileName)
	if _, err := os.Stat(kdlPath); os.IsNotExist(err) {
		return nil, nil
	}

	content, err := os.ReadFile(kdlPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", KDLFileName, err)
	}

	cfg, err := parseKDL(string(content), defaults)
	if err != nil {
		return nil, err
	}
	cfg.resolveRoot(dir)
	return cfg, nil
}

// parseKDL applies a KDL document to cfg:
//
//	project { root "."; name "app"; respect_gitignore true }
//	extract { max_lines 5 }
//	search {
//	    ignore_prefix "corp" "corp.app"
//	    separator "/"
//	    max_results 20
//	    fuzzy_threshold 0.8
//	    algorithm "jaro-winkler"
//	    extensions ".cppm" ".ixx"
//	}
//	watch { enabled true; debounce_ms 200 }
//	include "src/**"
//	exclude "**/build/**" "**/third_party/**"
func parseKDL(content string, cfg *Config) (*Config, error) {
	if cfg == nil {
		cfg = Default("")
	}

	doc, err := kdl.Parse(strings.NewReader(content))
	if err != nil {
		return nil, fmt.Errorf("failed to parse KDL config: %w", err)
	}

	for _, n := range doc.Nodes {
		switch nodeName(n) {
		case "project":
			for _, cn := range n.Children {
				assignSimpleString(cn, "root", func(v string) { cfg.Project.Root = v })
				assignSimpleString(cn, "name", func(v string) { cfg.Project.Name = v })
				if nodeName(cn) == "respect_gitignore" {
					if b, ok := firstBoolArg(cn); ok {
						cfg.Project.RespectGitignore = b
					}
				}
			}
		case "extract":
			for _, cn := range n.Children {
				if nodeName(cn) == "max_lines" {
					if v, ok := firstIntArg(cn); ok {
						cfg.Extract.MaxLines = v
					}
				}
			}
		case "search":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "ignore_prefix", "ignore_prefixes", "prefix_match_ignore":
					cfg.Search.IgnoredPrefixes = append(cfg.Search.IgnoredPrefixes, collectStringArgs(cn)...)
				case "separator":
					if s, ok := firstStringArg(cn); ok {
						cfg.Search.Separator = s
					}
				case "max_results":
					if v, ok := firstIntArg(cn); ok {
						cfg.Search.MaxResults = v
					}
				case "fuzzy_threshold":
					if v, ok := firstFloatArg(cn); ok {
						cfg.Search.FuzzyThreshold = v
					}
				case "algorithm":
					if s, ok := firstStringArg(cn); ok {
						cfg.Search.Algorithm = s
					}
				case "extensions":
					if exts := collectStringArgs(cn); len(exts) > 0 {
						cfg.Search.Extensions = exts
					}
				}
			}
		case "watch":
			for _, cn := range n.Children {
				switch nodeName(cn) {
				case "enabled":
					if b, ok := firstBoolArg(cn); ok {
						cfg.Watch.Enabled = b
					}
				case "debounce_ms":
					if v, ok := firstIntArg(cn); ok {
						cfg.Watch.DebounceMs = v
					}
				}
			}
		case "include":
			cfg.Include = append(cfg.Include, collectStringArgs(n)...)
		case "exclude":
			// An exclude node replaces the defaults.
			cfg.Exclude = collectStringArgs(n)
		}
	}

	return cfg, nil
}

func nodeName(n *document.Node) string {
	if n == nil || n.Name == nil {
		return ""
	}
	return n.Name.NodeNameString()
}

func firstIntArg(n *document.Node) (int, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case int64:
		return int(v), true
	case float64:
		return int(v), true
	default:
		return 0, false
	}
}

func firstStringArg(n *document.Node) (string, bool) {
	if len(n.Arguments) == 0 {
		return "", false
	}
	if s, ok := n.Arguments[0].Value.(string); ok {
		return s, true
	}
	return "", false
}

func firstBoolArg(n *document.Node) (bool, bool) {
	if len(n.Arguments) == 0 {
		return false, false
	}
	if b, ok := n.Arguments[0].Value.(bool); ok {
		return b, true
	}
	return false, false
}

func firstFloatArg(n *document.Node) (float64, bool) {
	if len(n.Arguments) == 0 {
		return 0, false
	}
	switch v := n.Arguments[0].Value.(type) {
	case float64:
		return v, true
	case int64:
		return float64(v), true
	default:
		log.Printf("WARNING: invalid float value for '%s' in KDL config, expected number but got %T", nodeName(n), n.Arguments[0].Value)
		return 0, false
	}
}

// collectStringArgs reads inline arguments (exclude "a" "b") or, for block form
// (exclude { "a"; "b" }), the child node names.
func collectStringArgs(n *document.Node) []string {
	if n == nil {
		return nil
	}
	out := make([]string, 0, len(n.Arguments))
	for _, a := range n.Arguments {
		if s, ok := a.Value.(string); ok {
			out = append(out, s)
		}
	}

	if len(out) == 0 && len(n.Children) > 0 {
		for _, child := range n.Children {
			if s, ok := firstStringArg(child); ok {
				out = append(out, s)
			} else if child.Name != nil {
				if s, ok := child.Name.Value.(string); ok {
					out = append(out, s)
				}
			}
		}
	}
	return out
}

func assignSimpleString(n *document.Node, target string, set func(string)) {
	if nodeName(n) == target {
		if s, ok := firstStringArg(n); ok {
			set(s)
		}
	}
}
