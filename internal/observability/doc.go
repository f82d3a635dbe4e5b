// Package observability provides logging, metrics, and event-timeline
// capabilities for deskaide: the three ambient concerns every other
// package leans on rather than rolling its own.
//
// # Overview
//
//  1. Logging - structured logs (slog) with sensitive-data redaction
//  2. Metrics - Prometheus counters/histograms for the agent loop, the
//     LLM router, and the tool registry
//  3. Events - an in-memory run timeline for the `deskaide analytics`
//     subcommand, with lightweight trace/span correlation IDs
//
// # Metrics
//
//	metrics := observability.NewMetrics()
//	start := time.Now()
//	// ... call a provider ...
//	metrics.RecordLLMRequest("anthropic", "claude-3-5-sonnet", "success",
//	    time.Since(start).Seconds(), promptTokens, completionTokens)
//
//	start = time.Now()
//	// ... run a tool ...
//	metrics.RecordToolExecution("ping_gateway", "success", time.Since(start).Seconds())
//
// # Logging
//
//	logger := observability.NewLogger(observability.LogConfig{
//	    Level:  "info",
//	    Format: "json",
//	})
//	ctx = observability.AddSessionID(ctx, sessionID)
//	logger.Info(ctx, "tool call completed", "tool", "flush_dns", "duration_ms", 42)
//	logger.Error(ctx, "provider request failed", "provider", "anthropic", "api_key", apiKey) // redacted
//
// # Events and spans
//
//	recorder := observability.NewEventRecorder(observability.NewMemoryEventStore(0), logger)
//	ctx = observability.AddRunID(ctx, runID)
//	ctx, span := observability.StartSpan(ctx, logger, "tool_loop.iteration")
//	defer span.End(nil)
//	recorder.RecordToolStart(ctx, "check_wifi_status", args)
//
//	timeline, _ := recorder.store.GetByRunID(runID) // via EventStore directly
//	fmt.Println(observability.FormatTimeline(observability.BuildTimeline(timeline)))
//
// Spans here are a local correlation mechanism, not a collector/exporter
// pipeline: they generate a trace_id/span_id pair and log start/end,
// which is all a single-process desktop agent needs to stitch a run's
// log lines and recorded events back together.
//
// # Security
//
// The logging component automatically redacts API keys (Anthropic,
// OpenAI, generic), passwords, JWTs, and bearer tokens from both log
// messages and structured fields.
package observability
