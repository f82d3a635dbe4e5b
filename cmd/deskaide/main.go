// Command deskaide is the CLI entry point for the deskaide diagnostics
// assistant: an agent runtime wired to a local network/system
// diagnostic tool set, a cloud/local LLM router, and a session
// analytics store.
//
// # Basic usage
//
// Start an interactive diagnostics session:
//
//	deskaide chat --config deskaide.yaml
//
// Manage the local sidecar model:
//
//	deskaide sidecar start
//	deskaide sidecar pull mistral:7b-instruct
//
// Inspect session analytics:
//
//	deskaide analytics summary
//
// # Environment variables
//
//   - LLM_BACKEND: overrides llm.default_provider
//   - OLLAMA_HOST, OLLAMA_MODELS: override the sidecar's host/port and model directory
//   - ANTHROPIC_API_KEY, OPENAI_API_KEY, XAI_API_KEY, GOOGLE_API_KEY: provider credentials
package main

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/spf13/cobra"
)

// Build information, populated by ldflags during build.
//
//	go build -ldflags "-X main.version=v1.0.0 -X main.commit=$(git rev-parse HEAD) -X main.date=$(date -u +%Y-%m-%dT%H:%M:%SZ)"
var (
	version = "dev"
	commit  = "none"
	date    = "unknown"
)

func main() {
	logger := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{
		Level: slog.LevelInfo,
	}))
	slog.SetDefault(logger)

	rootCmd := buildRootCmd()
	if err := rootCmd.Execute(); err != nil {
		slog.Error("command execution failed", "error", err)
		os.Exit(1)
	}
}

// buildRootCmd assembles the full command tree. Separated from main
// so tests can exercise it without a process boundary.
func buildRootCmd() *cobra.Command {
	rootCmd := &cobra.Command{
		Use:   "deskaide",
		Short: "deskaide - AI-assisted desktop network diagnostics",
		Long: `deskaide diagnoses and repairs common desktop network problems by
pairing an LLM with a fixed set of network/system diagnostic tools:
Wi-Fi status, gateway reachability, DNS, DHCP, adapter state, and
process/disk cleanup.

Cloud providers: Anthropic, OpenAI, xAI, Google. A local sidecar model
(Ollama-compatible) is always available as the terminal fallback.`,
		Version:      fmt.Sprintf("%s (commit: %s, built: %s)", version, commit, date),
		SilenceUsage: true,
	}

	rootCmd.AddCommand(
		buildChatCmd(),
		buildServeCmd(),
		buildSidecarCmd(),
		buildAnalyticsCmd(),
		buildDoctorCmd(),
	)

	return rootCmd
}
