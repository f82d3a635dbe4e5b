package main

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/techtime/deskaide/internal/config"
	"github.com/spf13/cobra"
)

// buildChatCmd creates the "chat" command: a REPL that drives the
// agent loop directly over stdin/stdout, for manual testing and demos
// without a collaborating UI.
func buildChatCmd() *cobra.Command {
	var configPath string

	cmd := &cobra.Command{
		Use:   "chat",
		Short: "Start an interactive diagnostics session",
		RunE: func(cmd *cobra.Command, args []string) error {
			logger := slog.Default()
			application, err := buildApp(configPath, logger)
			if err != nil {
				return err
			}
			defer application.Close()

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt, syscall.SIGTERM)
			defer stop()

			startConfigWatch(ctx, configPath, logger)

			return runChatLoop(ctx, application, cmd.OutOrStdout())
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "deskaide.yaml", "Path to YAML configuration file")
	return cmd
}

// runChatLoop reads lines from stdin until EOF or ctx is cancelled,
// feeding each one to the runtime and printing the streamed response.
func runChatLoop(ctx context.Context, application *app, out io.Writer) error {
	session, err := application.runtime.StartSession(ctx, "")
	if err != nil {
		return fmt.Errorf("start session: %w", err)
	}
	fmt.Fprintf(out, "Session %s started. Type your issue, or 'exit' to quit.\n", session.ID)

	reader := bufio.NewReader(os.Stdin)
	for {
		select {
		case <-ctx.Done():
			return nil
		default:
		}

		fmt.Fprint(out, "> ")
		line, err := reader.ReadString('\n')
		if err != nil {
			if err == io.EOF {
				return nil
			}
			return err
		}
		line = strings.TrimSpace(line)
		if line == "" {
			continue
		}
		if line == "exit" || line == "quit" {
			return nil
		}

		chunks, err := application.runtime.Run(ctx, session.ID, line)
		if err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
		for chunk := range chunks {
			switch {
			case chunk.Error != nil:
				fmt.Fprintf(out, "error: %v\n", chunk.Error)
			case chunk.Text != "":
				fmt.Fprint(out, chunk.Text)
			case chunk.ToolResult != nil:
				fmt.Fprintf(out, "\n[tool:%s] %s\n", chunk.ToolResult.ToolName, chunk.ToolResult.Content)
			case chunk.Done:
				fmt.Fprintf(out, "\n(confidence: %.2f)\n", chunk.Confidence)
			}
		}
	}
}

// startConfigWatch starts a best-effort config file watcher that
// reapplies the protected-name/path policy on reload; failures are
// logged, never fatal, since the chat session is useful without it.
func startConfigWatch(ctx context.Context, configPath string, logger *slog.Logger) {
	watcher := config.NewWatcher(configPath, logger)
	err := watcher.Start(ctx, func(cfg *config.Config) {
		applyProtectedPolicy(cfg)
		logger.Info("config reloaded", "path", configPath)
	})
	if err != nil {
		logger.Warn("config watcher not started", "error", err)
	}
}
