package sidecar

import (
	"os"
	"os/exec"
	"path/filepath"
	"runtime"
)

// platformDir returns the bundled-resources subdirectory and binary
// name for the current OS/arch, matching the layout the installer
// stages binaries under.
func platformDir() (dir, binary string) {
	switch runtime.GOOS {
	case "darwin":
		arch := "x64"
		if runtime.GOARCH == "arm64" {
			arch = "arm64"
		}
		return "darwin-" + arch, "ollama"
	case "windows":
		return "win32-x64", "ollama.exe"
	default:
		return "linux-x64", "ollama"
	}
}

// locateBinary finds the sidecar binary: an explicit override, then a
// bundled copy under resourcesDir, then a system install on PATH.
func locateBinary(binaryPath, resourcesDir string) (string, error) {
	if binaryPath != "" {
		if fileExists(binaryPath) {
			return binaryPath, nil
		}
		return "", &NotFoundError{Candidates: []string{binaryPath}}
	}

	dir, binary := platformDir()
	candidates := []string{}

	if resourcesDir != "" {
		bundled := filepath.Join(resourcesDir, "ollama", dir, binary)
		candidates = append(candidates, bundled)
		if fileExists(bundled) {
			return bundled, nil
		}
	}

	if systemPath, err := exec.LookPath(binary); err == nil {
		return systemPath, nil
	}
	candidates = append(candidates, binary+" on PATH")

	return "", &NotFoundError{Candidates: candidates}
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	if err != nil {
		return false
	}
	return !info.IsDir()
}
