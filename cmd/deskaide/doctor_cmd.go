package main

import (
	"fmt"

	"github.com/techtime/deskaide/internal/config"
	"github.com/techtime/deskaide/internal/doctor"
	"github.com/spf13/cobra"
)

// buildDoctorCmd creates the "doctor" command: config migration,
// workspace directory repair, stale sidecar PID cleanup, and a
// permissions/bind-address security audit, all in one pass over the
// configured deployment.
func buildDoctorCmd() *cobra.Command {
	var configPath string
	var repair bool
	var audit bool

	cmd := &cobra.Command{
		Use:   "doctor",
		Short: "Diagnose and repair the deskaide deployment itself",
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()

			raw, err := doctor.LoadRawConfig(configPath)
			if err != nil {
				return fmt.Errorf("load config %s: %w", configPath, err)
			}

			report, err := doctor.ApplyConfigMigrations(raw)
			if err != nil {
				return fmt.Errorf("check config version: %w", err)
			}
			if len(report.Applied) == 0 {
				fmt.Fprintf(out, "config schema: up to date (version %d)\n", report.ToVersion)
			} else {
				fmt.Fprintf(out, "config schema: version %d -> %d\n", report.FromVersion, report.ToVersion)
				for _, change := range report.Applied {
					fmt.Fprintf(out, "  - %s\n", change)
				}
				if repair {
					backupPath, err := doctor.BackupConfig(configPath)
					if err != nil {
						return fmt.Errorf("back up config before migrating: %w", err)
					}
					if err := doctor.WriteRawConfig(configPath, raw); err != nil {
						return fmt.Errorf("write migrated config: %w", err)
					}
					fmt.Fprintf(out, "  migrated config written (backup: %s)\n", backupPath)
				} else {
					fmt.Fprintln(out, "  (pass --repair to write these changes)")
				}
			}

			cfg, err := config.Load(configPath)
			if err != nil {
				return fmt.Errorf("load config %s: %w", configPath, err)
			}

			if repair {
				workspaceReport, err := doctor.RepairWorkspace(cfg)
				if err != nil {
					return fmt.Errorf("repair workspace: %w", err)
				}
				for _, label := range workspaceReport.Created {
					fmt.Fprintf(out, "workspace: created %s directory\n", label)
				}
				for _, label := range workspaceReport.OK {
					fmt.Fprintf(out, "workspace: %s directory OK\n", label)
				}

				removed, err := doctor.RepairStalePID(cfg.Sidecar.DataDir, "sidecar")
				if err != nil {
					return fmt.Errorf("check stale sidecar PID: %w", err)
				}
				if removed {
					fmt.Fprintln(out, "workspace: removed stale sidecar PID file")
				}
			}

			if audit {
				result := doctor.AuditSecurity(cfg, configPath)
				if len(result.Findings) == 0 {
					fmt.Fprintln(out, "security audit: no findings")
				} else {
					fmt.Fprintln(out, "security audit:")
					for _, finding := range result.Findings {
						fmt.Fprintf(out, "  [%s] %s\n", finding.Severity, finding.Message)
					}
				}
			}

			return nil
		},
	}

	cmd.Flags().StringVarP(&configPath, "config", "c", "deskaide.yaml", "Path to YAML configuration file")
	cmd.Flags().BoolVar(&repair, "repair", false, "Write config migrations and create missing workspace directories")
	cmd.Flags().BoolVar(&audit, "audit", false, "Run the permissions/bind-address security audit")
	return cmd
}
