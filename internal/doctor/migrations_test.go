package doctor

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/techtime/deskaide/internal/config"
)

func TestLoadAndWriteRawConfigRoundTrips(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "deskaide.yaml")
	if err := os.WriteFile(path, []byte("llm:\n  default_provider: anthropic\n"), 0o644); err != nil {
		t.Fatalf("write config: %v", err)
	}

	raw, err := LoadRawConfig(path)
	if err != nil {
		t.Fatalf("LoadRawConfig() error = %v", err)
	}
	llm, ok := raw["llm"].(map[string]any)
	if !ok || llm["default_provider"] != "anthropic" {
		t.Fatalf("unexpected raw config: %#v", raw)
	}

	raw["version"] = 1
	if err := WriteRawConfig(path, raw); err != nil {
		t.Fatalf("WriteRawConfig() error = %v", err)
	}

	reloaded, err := LoadRawConfig(path)
	if err != nil {
		t.Fatalf("reload error = %v", err)
	}
	if reloaded["version"] != 1 {
		t.Fatalf("expected version to round-trip, got %#v", reloaded["version"])
	}
}

func TestApplyConfigMigrationsStampsMissingVersion(t *testing.T) {
	raw := map[string]any{}

	report, err := ApplyConfigMigrations(raw)
	if err != nil {
		t.Fatalf("ApplyConfigMigrations() error = %v", err)
	}
	if len(report.Applied) != 1 {
		t.Fatalf("expected 1 migration, got %d: %v", len(report.Applied), report.Applied)
	}
	if raw["version"] != config.CurrentVersion {
		t.Fatalf("expected version stamped to %d, got %v", config.CurrentVersion, raw["version"])
	}
}

func TestApplyConfigMigrationsNoopAtCurrentVersion(t *testing.T) {
	raw := map[string]any{"version": config.CurrentVersion}

	report, err := ApplyConfigMigrations(raw)
	if err != nil {
		t.Fatalf("ApplyConfigMigrations() error = %v", err)
	}
	if len(report.Applied) != 0 {
		t.Fatalf("expected no migrations at current version, got %v", report.Applied)
	}
}

func TestApplyConfigMigrationsRejectsNewerVersion(t *testing.T) {
	raw := map[string]any{"version": config.CurrentVersion + 1}

	_, err := ApplyConfigMigrations(raw)
	if err == nil {
		t.Fatal("expected an error for a config version newer than this build")
	}
	var versionErr *config.VersionError
	if !asVersionError(err, &versionErr) {
		t.Fatalf("expected a *config.VersionError, got %T: %v", err, err)
	}
}

func TestApplyConfigMigrationsParsesStringVersion(t *testing.T) {
	raw := map[string]any{"version": "0"}

	report, err := ApplyConfigMigrations(raw)
	if err != nil {
		t.Fatalf("ApplyConfigMigrations() error = %v", err)
	}
	if report.FromVersion != 0 {
		t.Fatalf("expected parsed version 0, got %d", report.FromVersion)
	}
}

func TestApplyConfigMigrationsNilRaw(t *testing.T) {
	report, err := ApplyConfigMigrations(nil)
	if err != nil {
		t.Fatalf("ApplyConfigMigrations(nil) error = %v", err)
	}
	if len(report.Applied) != 0 {
		t.Fatalf("expected no migrations for nil config")
	}
}

func asVersionError(err error, target **config.VersionError) bool {
	ve, ok := err.(*config.VersionError)
	if !ok {
		return false
	}
	*target = ve
	return true
}
