// Package pathutil converts between absolute paths and the root-relative, slash-separated
// paths shown to users.
//
// Indexes store root-relative paths; CLI arguments and MCP parameters may be either
// form. Output stays relative unless the caller asks for absolute paths.
package pathutil

import (
	"path/filepath"
	"strings"
)

// ToRelative converts an absolute path to a slash-separated path relative to rootDir.
// Falls back to the original path if conversion fails, the path is already relative,
// or it lies outside the root.
//
// Examples:
//   - ToRelative("/home/user/project/src/net.cppm", "/home/user/project") → "src/net.cppm"
//   - ToRelative("/other/location/a.cpp", "/home/user/project") → "/other/location/a.cpp"
//   - ToRelative("src/net.cppm", "/home/user/project") → "src/net.cppm"
func ToRelative(absPath, rootDir string) string {
	if absPath == "" || rootDir == "" {
		return absPath
	}
	if !filepath.IsAbs(absPath) {
		return absPath
	}

	absPath = filepath.Clean(absPath)
	rootDir = filepath.Clean(rootDir)

	relPath, err := filepath.Rel(rootDir, absPath)
	if err != nil {
		// e.g. different drives on Windows
		return absPath
	}
	if relPath == ".." || strings.HasPrefix(relPath, ".."+string(filepath.Separator)) {
		return absPath
	}
	return filepath.ToSlash(relPath)
}

// ToAbsolute resolves a root-relative (slash or OS separated) path against rootDir.
// Absolute paths are only cleaned.
func ToAbsolute(path, rootDir string) string {
	if path == "" {
		return rootDir
	}
	if filepath.IsAbs(path) {
		return filepath.Clean(path)
	}
	return filepath.Join(rootDir, filepath.FromSlash(path))
}

// ToAbsoluteAll resolves every path in paths, returning a new slice.
func ToAbsoluteAll(paths []string, rootDir string) []string {
	if len(paths) == 0 {
		return paths
	}
	out := make([]string, len(paths))
	for i, p := range paths {
		out[i] = ToAbsolute(p, rootDir)
	}
	return out
}
