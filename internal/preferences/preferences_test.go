package preferences

import (
	"os"
	"path/filepath"
	"testing"
)

func TestLoadMissingFileReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.json")
	prefs, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if prefs != Default() {
		t.Fatalf("Load() = %+v, want %+v", prefs, Default())
	}
}

func TestSaveThenLoadRoundTrips(t *testing.T) {
	path := filepath.Join(t.TempDir(), "nested", "preferences.json")
	want := Default()
	want.Theme = "dark"
	want.PreferredBackend = "ollama"

	if err := Save(path, want); err != nil {
		t.Fatalf("Save() error = %v", err)
	}

	got, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if got != want {
		t.Fatalf("Load() = %+v, want %+v", got, want)
	}
}

func TestLoadCorruptFileReturnsDefaults(t *testing.T) {
	path := filepath.Join(t.TempDir(), "preferences.json")
	if err := Save(path, Default()); err != nil {
		t.Fatalf("Save() error = %v", err)
	}
	if err := os.WriteFile(path, []byte("{not json"), 0o644); err != nil {
		t.Fatalf("WriteFile() error = %v", err)
	}

	prefs, err := Load(path)
	if err != nil {
		t.Fatalf("Load() error = %v", err)
	}
	if prefs != Default() {
		t.Fatalf("Load() = %+v, want %+v", prefs, Default())
	}
}
