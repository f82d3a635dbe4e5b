package doctor

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"syscall"

	"github.com/techtime/deskaide/internal/config"
)

// WorkspaceReport records what RepairWorkspace created or found already
// in place, so `deskaide doctor` can print a short diff instead of
// silently succeeding.
type WorkspaceReport struct {
	Created []string
	OK      []string
}

// RepairWorkspace ensures the directories deskaide's persisted state
// depends on exist: the session database's parent directory, a log
// directory, and the sidecar's models and data directories. It never
// touches file contents, only creates missing directories.
func RepairWorkspace(cfg *config.Config) (WorkspaceReport, error) {
	var report WorkspaceReport
	if cfg == nil {
		return report, nil
	}

	dirs := map[string]string{
		"session database": dirOf(cfg.Session.DatabasePath),
		"sidecar data":      cfg.Sidecar.DataDir,
		"sidecar models":   cfg.Sidecar.ModelsPath,
	}

	for label, dir := range dirs {
		dir = strings.TrimSpace(dir)
		if dir == "" {
			continue
		}
		if err := ensureDir(dir, &report, label); err != nil {
			return report, fmt.Errorf("repair %s directory %q: %w", label, dir, err)
		}
	}

	return report, nil
}

func ensureDir(dir string, report *WorkspaceReport, label string) error {
	if info, err := os.Stat(dir); err == nil {
		if !info.IsDir() {
			return fmt.Errorf("%s exists and is not a directory", dir)
		}
		report.OK = append(report.OK, label)
		return nil
	} else if !os.IsNotExist(err) {
		return err
	}

	if err := os.MkdirAll(dir, 0o755); err != nil {
		return err
	}
	report.Created = append(report.Created, label)
	return nil
}

func dirOf(path string) string {
	path = strings.TrimSpace(path)
	if path == "" {
		return ""
	}
	return filepath.Dir(path)
}

// RepairStalePID removes a sidecar PID file left behind by a previous
// run whose process is no longer alive, so the next start attempt
// doesn't mistake a stale file for a live orphan. Returns true if a
// stale file was removed.
func RepairStalePID(dataDir, name string) (bool, error) {
	dataDir = strings.TrimSpace(dataDir)
	name = strings.TrimSpace(name)
	if dataDir == "" || name == "" {
		return false, nil
	}

	path := filepath.Join(dataDir, "."+name+".pid")
	data, err := os.ReadFile(path)
	if err != nil {
		if os.IsNotExist(err) {
			return false, nil
		}
		return false, err
	}

	raw := strings.TrimSpace(string(data))
	pid, err := strconv.Atoi(raw)
	if err != nil {
		return true, os.Remove(path)
	}

	proc, err := os.FindProcess(pid)
	if err != nil {
		return true, os.Remove(path)
	}
	if proc.Signal(syscall.Signal(0)) == nil {
		return false, nil
	}
	return true, os.Remove(path)
}
