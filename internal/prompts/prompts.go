// Package prompts loads named system prompts for the agent loop from a
// bundled resource directory, caching each one in memory after its
// first read.
package prompts

import (
	"embed"
	"fmt"
	"io/fs"
	"strings"
	"sync"
)

//go:embed builtin/*.md
var builtinFS embed.FS

// AgentType names one of the bundled system prompts.
type AgentType string

const (
	Default     AgentType = "default"
	Triage      AgentType = "triage"
	Diagnostic  AgentType = "diagnostic"
	Remediation AgentType = "remediation"
	QuickCheck  AgentType = "quick_check"
)

// Loader reads named prompt texts from a filesystem (bundled by
// default) and caches each one after its first successful read, so a
// long-running process never re-reads disk for the same prompt twice.
type Loader struct {
	fsys fs.FS

	mu    sync.Mutex
	cache map[AgentType]string
}

// NewLoader creates a Loader over the bundled prompt files.
func NewLoader() *Loader {
	return &Loader{fsys: builtinFS, cache: make(map[AgentType]string)}
}

// NewLoaderFS creates a Loader over a caller-supplied filesystem, for
// deployments that want to override the bundled prompts with a
// directory on disk (os.DirFS) without recompiling.
func NewLoaderFS(fsys fs.FS) *Loader {
	return &Loader{fsys: fsys, cache: make(map[AgentType]string)}
}

// Load returns the prompt text for agentType, reading it from the
// backing filesystem once and serving every subsequent call from
// cache.
func (l *Loader) Load(agentType AgentType) (string, error) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if text, ok := l.cache[agentType]; ok {
		return text, nil
	}

	name := "builtin/" + string(agentType) + "_agent.md"
	data, err := fs.ReadFile(l.fsys, name)
	if err != nil {
		return "", fmt.Errorf("load prompt %q: %w", agentType, err)
	}

	text := string(data)
	l.cache[agentType] = text
	return text, nil
}

// MustLoad is Load without an error return, for startup paths that
// already trust the bundled prompt set to be complete — it panics if
// the prompt is missing, which only happens if a build has dropped a
// builtin/*.md file.
func (l *Loader) MustLoad(agentType AgentType) string {
	text, err := l.Load(agentType)
	if err != nil {
		panic(err)
	}
	return text
}

// ForContext picks the prompt best suited to a user's opening message,
// mirroring the keyword-based routing the original assistant used
// before handing a conversation to the diagnostic agent by default.
func ForContext(userMessage string) AgentType {
	lower := strings.ToLower(userMessage)
	switch {
	case containsAny(lower, "quick check", "health check", "is it working", "status"):
		return QuickCheck
	case containsAny(lower, "how to fix", "how do i fix", "fix it", "solve", "repair"):
		return Remediation
	default:
		return Diagnostic
	}
}

func containsAny(s string, substrs ...string) bool {
	for _, sub := range substrs {
		if strings.Contains(s, sub) {
			return true
		}
	}
	return false
}
