package doctor

import (
	"os"
	"path/filepath"
	"strconv"
	"testing"

	"github.com/techtime/deskaide/internal/config"
)

func TestRepairWorkspaceNilConfig(t *testing.T) {
	report, err := RepairWorkspace(nil)
	if err != nil {
		t.Fatalf("RepairWorkspace(nil) error = %v", err)
	}
	if len(report.Created) != 0 || len(report.OK) != 0 {
		t.Fatalf("expected empty report for nil config")
	}
}

func TestRepairWorkspaceCreatesMissingDirectories(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		Session: config.SessionConfig{DatabasePath: filepath.Join(dir, "db", "deskaide.db")},
		Sidecar: config.SidecarConfig{
			DataDir:    filepath.Join(dir, "sidecar"),
			ModelsPath: filepath.Join(dir, "models"),
		},
	}

	report, err := RepairWorkspace(cfg)
	if err != nil {
		t.Fatalf("RepairWorkspace() error = %v", err)
	}
	if len(report.Created) != 3 {
		t.Fatalf("expected 3 directories created, got %d (%v)", len(report.Created), report.Created)
	}
	for _, dir := range []string{filepath.Join(dir, "db"), filepath.Join(dir, "sidecar"), filepath.Join(dir, "models")} {
		if info, err := os.Stat(dir); err != nil || !info.IsDir() {
			t.Fatalf("expected directory %s to exist", dir)
		}
	}
}

func TestRepairWorkspaceReportsExistingDirectoriesAsOK(t *testing.T) {
	dir := t.TempDir()
	cfg := &config.Config{
		Sidecar: config.SidecarConfig{DataDir: dir},
	}

	report, err := RepairWorkspace(cfg)
	if err != nil {
		t.Fatalf("RepairWorkspace() error = %v", err)
	}
	if len(report.OK) != 1 || len(report.Created) != 0 {
		t.Fatalf("expected existing directory reported as OK, got %+v", report)
	}
}

func TestRepairWorkspaceRejectsFileInPlaceOfDirectory(t *testing.T) {
	dir := t.TempDir()
	blocked := filepath.Join(dir, "models")
	if err := os.WriteFile(blocked, []byte("x"), 0o644); err != nil {
		t.Fatalf("write blocker file: %v", err)
	}

	cfg := &config.Config{Sidecar: config.SidecarConfig{ModelsPath: blocked}}
	if _, err := RepairWorkspace(cfg); err == nil {
		t.Fatal("expected an error when a file occupies the target directory path")
	}
}

func TestRepairStalePIDRemovesFileForDeadProcess(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".ollama.pid")
	// PID 1 is typically alive but not owned by this test process;
	// use an implausibly large PID instead, which os.FindProcess
	// accepts on POSIX but Signal immediately rejects as not-found.
	if err := os.WriteFile(path, []byte(strconv.Itoa(999999)), 0o644); err != nil {
		t.Fatalf("write pid file: %v", err)
	}

	removed, err := RepairStalePID(dir, "ollama")
	if err != nil {
		t.Fatalf("RepairStalePID() error = %v", err)
	}
	if !removed {
		t.Fatal("expected stale pid file to be removed")
	}
	if _, err := os.Stat(path); !os.IsNotExist(err) {
		t.Fatal("expected pid file to be gone")
	}
}

func TestRepairStalePIDNoopWhenFileAbsent(t *testing.T) {
	dir := t.TempDir()
	removed, err := RepairStalePID(dir, "ollama")
	if err != nil {
		t.Fatalf("RepairStalePID() error = %v", err)
	}
	if removed {
		t.Fatal("expected no-op when pid file does not exist")
	}
}

func TestRepairStalePIDRemovesCorruptFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".ollama.pid")
	if err := os.WriteFile(path, []byte("not-a-pid"), 0o644); err != nil {
		t.Fatalf("write pid file: %v", err)
	}

	removed, err := RepairStalePID(dir, "ollama")
	if err != nil {
		t.Fatalf("RepairStalePID() error = %v", err)
	}
	if !removed {
		t.Fatal("expected corrupt pid file to be removed")
	}
}
