package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/tailscale/hujson"
)

// EditorPrefixSetting is the VS Code setting holding the ignored module prefixes.
const EditorPrefixSetting = "cppm.prefixMatchIgnore"

// LoadEditorPrefixes reads cppm.prefixMatchIgnore from root/.vscode/settings.json.
// A missing file or setting yields nil.
func LoadEditorPrefixes(root string) ([]string, error) {
	path := filepath.Join(root, ".vscode", "settings.json")
	content, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read %s: %w", path, err)
	}
	return parseEditorPrefixes(content)
}

func parseEditorPrefixes(content []byte) ([]string, error) {
	// settings.json is JSON with comments and trailing commas
	clean, err := hujson.Standardize(content)
	if err != nil {
		return nil, fmt.Errorf("failed to parse editor settings: %w", err)
	}

	var settings map[string]json.RawMessage
	if err := json.Unmarshal(clean, &settings); err != nil {
		return nil, fmt.Errorf("failed to parse editor settings: %w", err)
	}

	raw, ok := settings[EditorPrefixSetting]
	if !ok {
		return nil, nil
	}
	var prefixes []string
	if err := json.Unmarshal(raw, &prefixes); err != nil {
		return nil, fmt.Errorf("%s must be an array of strings: %w", EditorPrefixSetting, err)
	}
	return prefixes, nil
}
