package main

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/techtime/deskaide/internal/config"
	"github.com/techtime/deskaide/internal/sidecar"
	"github.com/spf13/cobra"
)

// buildSidecarCmd creates the "sidecar" command group, driving the
// local LLM supervisor directly without going through the agent loop.
func buildSidecarCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "sidecar",
		Short: "Manage the local LLM sidecar process",
	}
	cmd.AddCommand(
		buildSidecarStartCmd(),
		buildSidecarStopCmd(),
		buildSidecarStatusCmd(),
		buildSidecarPullCmd(),
	)
	return cmd
}

func newSupervisor(configPath string) (*sidecar.Supervisor, *config.Config, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, nil, fmt.Errorf("load config: %w", err)
	}
	supervisor := sidecar.NewSupervisor(sidecar.Config{
		Host:         cfg.Sidecar.Host,
		Port:         cfg.Sidecar.Port,
		BinaryPath:   cfg.Sidecar.BinaryPath,
		ResourcesDir: cfg.Sidecar.ResourcesDir,
		ModelsPath:   cfg.Sidecar.ModelsPath,
		DataDir:      cfg.Sidecar.DataDir,
		BundledMode:  cfg.Sidecar.BundledMode,
		StartTimeout: cfg.Sidecar.StartTimeout,
		DefaultModel: cfg.Sidecar.DefaultModel,
	}, slog.Default())
	return supervisor, cfg, nil
}

func buildSidecarStartCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "start",
		Short: "Start (or adopt) the local sidecar process",
		RunE: func(cmd *cobra.Command, args []string) error {
			supervisor, _, err := newSupervisor(configPath)
			if err != nil {
				return err
			}
			if err := supervisor.Start(cmd.Context()); err != nil {
				return fmt.Errorf("start sidecar: %w", err)
			}
			fmt.Fprintf(cmd.OutOrStdout(), "Sidecar running at %s\n", supervisor.BaseURL())
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "deskaide.yaml", "Path to YAML configuration file")
	return cmd
}

func buildSidecarStopCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "stop",
		Short: "Stop the sidecar process, if this process owns it",
		RunE: func(cmd *cobra.Command, args []string) error {
			supervisor, _, err := newSupervisor(configPath)
			if err != nil {
				return err
			}
			if err := supervisor.Start(cmd.Context()); err != nil {
				return fmt.Errorf("probe sidecar: %w", err)
			}
			if err := supervisor.Stop(); err != nil {
				return fmt.Errorf("stop sidecar: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "Sidecar stopped")
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "deskaide.yaml", "Path to YAML configuration file")
	return cmd
}

func buildSidecarStatusCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Report whether the sidecar is reachable",
		RunE: func(cmd *cobra.Command, args []string) error {
			supervisor, _, err := newSupervisor(configPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			if supervisor.IsRunning() {
				fmt.Fprintf(out, "running at %s (owned: %t)\n", supervisor.BaseURL(), supervisor.Owns())
				return nil
			}
			fmt.Fprintf(out, "not running (expected at %s)\n", supervisor.BaseURL())
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "deskaide.yaml", "Path to YAML configuration file")
	return cmd
}

func buildSidecarPullCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "pull <model>",
		Short: "Pull a model into the sidecar's local model store",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			supervisor, _, err := newSupervisor(configPath)
			if err != nil {
				return err
			}
			out := cmd.OutOrStdout()
			lastPrinted := time.Time{}
			err = supervisor.PullModel(cmd.Context(), args[0], func(progress sidecar.PullProgress) {
				if time.Since(lastPrinted) < 500*time.Millisecond && progress.Total > 0 && progress.Completed < progress.Total {
					return
				}
				lastPrinted = time.Now()
				fmt.Fprintf(out, "%s: %d/%d\n", progress.Status, progress.Completed, progress.Total)
			})
			if err != nil {
				return fmt.Errorf("pull model: %w", err)
			}
			fmt.Fprintf(out, "Model %s ready\n", args[0])
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "deskaide.yaml", "Path to YAML configuration file")
	return cmd
}
