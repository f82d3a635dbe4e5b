package main

import (
	"fmt"

	"github.com/techtime/deskaide/internal/config"
	"github.com/techtime/deskaide/internal/sessions"
	"github.com/spf13/cobra"
)

// buildAnalyticsCmd creates the "analytics" command group. Every
// subcommand reads straight from the session store's aggregate
// queries; none of these numbers are computed or formatted ahead of
// time.
func buildAnalyticsCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analytics",
		Short: "Inspect session analytics",
	}
	cmd.AddCommand(
		buildAnalyticsSummaryCmd(),
		buildAnalyticsToolsCmd(),
		buildAnalyticsQualityCmd(),
		buildAnalyticsCostCmd(),
	)
	return cmd
}

func openAnalyticsStore(configPath string) (sessions.Store, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	return openStore(cfg)
}

func buildAnalyticsSummaryCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "summary",
		Short: "Show resolution outcomes and cost/time averages",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openAnalyticsStore(configPath)
			if err != nil {
				return err
			}
			defer store.Close()

			summary, err := store.GetSessionSummary(cmd.Context(), sessions.SummaryFilter{})
			if err != nil {
				return fmt.Errorf("get session summary: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Sessions:        %d (resolved %d, unresolved %d, abandoned %d, in progress %d)\n",
				summary.TotalSessions, summary.ResolvedCount, summary.UnresolvedCount, summary.AbandonedCount, summary.InProgressCount)
			fmt.Fprintf(out, "Avg tokens:      %.0f\n", summary.AvgTokensPerSession)
			fmt.Fprintf(out, "Avg messages:    %.1f\n", summary.AvgMessagesPerSession)
			fmt.Fprintf(out, "Avg resolution:  %.0fs\n", summary.AvgTimeToResolutionSeconds)
			fmt.Fprintf(out, "Total cost:      $%.4f\n", summary.TotalCostUSD)
			fmt.Fprintf(out, "Ollama sessions: %d, OpenAI sessions: %d, fallbacks: %d\n",
				summary.OllamaSessions, summary.OpenAISessions, summary.FallbackCount)
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "deskaide.yaml", "Path to YAML configuration file")
	return cmd
}

func buildAnalyticsToolsCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "tools",
		Short: "Show per-tool call counts and timing",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openAnalyticsStore(configPath)
			if err != nil {
				return err
			}
			defer store.Close()

			stats, err := store.GetToolStats(cmd.Context())
			if err != nil {
				return fmt.Errorf("get tool stats: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(stats) == 0 {
				fmt.Fprintln(out, "no tool calls recorded")
				return nil
			}
			for _, stat := range stats {
				fmt.Fprintf(out, "%-28s calls=%-5d ok=%-5d fail=%-5d avg=%.0fms loops=%d\n",
					stat.ToolName, stat.TotalCalls, stat.SuccessCount, stat.FailureCount, stat.AvgExecutionTimeMs, stat.LoopOccurrences)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "deskaide.yaml", "Path to YAML configuration file")
	return cmd
}

func buildAnalyticsQualityCmd() *cobra.Command {
	var configPath string
	cmd := &cobra.Command{
		Use:   "quality",
		Short: "Show resolution efficiency and drop-off metrics",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openAnalyticsStore(configPath)
			if err != nil {
				return err
			}
			defer store.Close()

			quality, err := store.GetQualityMetrics(cmd.Context())
			if err != nil {
				return fmt.Errorf("get quality metrics: %w", err)
			}
			out := cmd.OutOrStdout()
			fmt.Fprintf(out, "Avg messages to resolution: %.1f\n", quality.AvgMessagesToResolution)
			fmt.Fprintf(out, "Sessions with tool loops:   %d (%d loop occurrences total)\n",
				quality.SessionsWithLoops, quality.TotalLoopOccurrences)
			fmt.Fprintf(out, "Abandoned sessions:         %d\n", quality.AbandonedSessions)
			fmt.Fprintf(out, "Drop-off rate:              %.1f%%\n", quality.DropOffRate*100)
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "deskaide.yaml", "Path to YAML configuration file")
	return cmd
}

func buildAnalyticsCostCmd() *cobra.Command {
	var configPath string
	var bucket string
	cmd := &cobra.Command{
		Use:   "cost",
		Short: "Show cost, tokens, and session count bucketed by period",
		RunE: func(cmd *cobra.Command, args []string) error {
			store, err := openAnalyticsStore(configPath)
			if err != nil {
				return err
			}
			defer store.Close()

			costBucket := sessions.CostBucket(bucket)
			switch costBucket {
			case sessions.CostByDay, sessions.CostByWeek, sessions.CostByMonth:
			default:
				return fmt.Errorf("invalid --bucket %q: must be day, week, or month", bucket)
			}

			periods, err := store.GetCostByPeriod(cmd.Context(), costBucket)
			if err != nil {
				return fmt.Errorf("get cost by period: %w", err)
			}
			out := cmd.OutOrStdout()
			if len(periods) == 0 {
				fmt.Fprintln(out, "no cost data recorded")
				return nil
			}
			for _, period := range periods {
				fmt.Fprintf(out, "%-12s cost=$%-10.4f tokens=%-8d sessions=%d\n",
					period.Period, period.TotalCost, period.TotalTokens, period.SessionCount)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&configPath, "config", "c", "deskaide.yaml", "Path to YAML configuration file")
	cmd.Flags().StringVar(&bucket, "bucket", "day", "Bucketing granularity: day, week, or month")
	return cmd
}
