package doctor

import (
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/techtime/deskaide/internal/config"
	"gopkg.in/yaml.v3"
)

// MigrationReport records what ApplyConfigMigrations changed.
type MigrationReport struct {
	Applied     []string
	FromVersion int
	ToVersion   int
}

// LoadRawConfig reads a YAML config file into a mutable map, without
// the environment-variable expansion or strict field checking Load
// applies, so a migration can inspect and rewrite a file version
// newer code might otherwise refuse to parse.
func LoadRawConfig(path string) (map[string]any, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var raw map[string]any
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}
	return raw, nil
}

// WriteRawConfig writes a config map back to disk as YAML, preserving
// the original file's permission bits.
func WriteRawConfig(path string, raw map[string]any) error {
	data, err := yaml.Marshal(raw)
	if err != nil {
		return err
	}
	mode := os.FileMode(0o644)
	if info, err := os.Stat(path); err == nil {
		mode = info.Mode().Perm()
	}
	return os.WriteFile(path, data, mode)
}

// ApplyConfigMigrations stamps a config map with the current schema
// version, refusing to touch a file written by a newer build than
// this one. There are currently no structural migrations to apply;
// this exists so future schema changes have a place to land the way
// config.CurrentVersion expects.
func ApplyConfigMigrations(raw map[string]any) (MigrationReport, error) {
	report := MigrationReport{ToVersion: config.CurrentVersion}
	if raw == nil {
		return report, nil
	}

	version, err := parseConfigVersion(raw)
	if err != nil {
		return report, err
	}
	report.FromVersion = version
	if version > config.CurrentVersion {
		return report, &config.VersionError{Version: version, Current: config.CurrentVersion, Reason: "newer than this build"}
	}

	if version < config.CurrentVersion {
		raw["version"] = config.CurrentVersion
		report.Applied = append(report.Applied, fmt.Sprintf("set version to %d", config.CurrentVersion))
	}

	return report, nil
}

func parseConfigVersion(raw map[string]any) (int, error) {
	if raw == nil {
		return 0, nil
	}
	value, ok := raw["version"]
	if !ok || value == nil {
		return 0, nil
	}
	switch typed := value.(type) {
	case int:
		return typed, nil
	case int64:
		return int(typed), nil
	case int32:
		return int(typed), nil
	case float64:
		return int(typed), nil
	case float32:
		return int(typed), nil
	case string:
		trimmed := strings.TrimSpace(typed)
		if trimmed == "" {
			return 0, nil
		}
		parsed, err := strconv.Atoi(trimmed)
		if err != nil {
			return 0, fmt.Errorf("invalid config version %q", typed)
		}
		return parsed, nil
	default:
		return 0, fmt.Errorf("invalid config version type %T", value)
	}
}
