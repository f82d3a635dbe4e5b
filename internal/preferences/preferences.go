// Package preferences loads and saves the user-level preferences file:
// small UI/session settings that live outside the YAML config and are
// read once at startup, matching the original assistant's
// preferences.json.
package preferences

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
)

// Preferences holds user-level settings that aren't part of the
// operator-managed YAML config: UI theme, the preferred LLM backend
// (when the operator config leaves default_provider to the user), and
// session/UX toggles.
type Preferences struct {
	Theme               string `json:"theme"`
	PreferredBackend    string `json:"preferred_backend"`
	AutoSaveSessions    bool   `json:"auto_save_sessions"`
	ConfirmDeleteSession bool  `json:"confirm_delete_session"`
	ShowToolDetails     bool   `json:"show_tool_details"`
}

// Default returns the preference set a fresh install starts with.
func Default() Preferences {
	return Preferences{
		Theme:                "system",
		AutoSaveSessions:     true,
		ConfirmDeleteSession: true,
		ShowToolDetails:      true,
	}
}

// DefaultPath returns the preferences file location under the user's
// config directory: "<UserConfigDir>/deskaide/preferences.json".
func DefaultPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", fmt.Errorf("resolve user config dir: %w", err)
	}
	return filepath.Join(dir, "deskaide", "preferences.json"), nil
}

// Load reads preferences from path. A missing file is not an error —
// it returns Default() so a fresh install has sane settings without
// requiring an explicit first save.
func Load(path string) (Preferences, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return Default(), nil
		}
		return Preferences{}, fmt.Errorf("read preferences %s: %w", path, err)
	}

	prefs := Default()
	if err := json.Unmarshal(data, &prefs); err != nil {
		return Default(), nil
	}
	return prefs, nil
}

// Save writes preferences to path, creating its parent directory if
// needed.
func Save(path string, prefs Preferences) error {
	if strings.TrimSpace(path) == "" {
		return fmt.Errorf("preferences path is empty")
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("create preferences directory: %w", err)
	}
	data, err := json.MarshalIndent(prefs, "", "  ")
	if err != nil {
		return fmt.Errorf("encode preferences: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write preferences %s: %w", path, err)
	}
	return nil
}
