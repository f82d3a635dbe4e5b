package observability

import (
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// Metrics provides a centralized interface for collecting application
// metrics. Built on Prometheus, it tracks:
//   - LLM request performance, token usage, and estimated cost
//   - Tool execution counts and latencies
//   - Error rates by component and type
//   - Active chat session counts
//
// Usage:
//
//	metrics := observability.NewMetrics()
//	metrics.RecordLLMRequest("anthropic", "claude-3-5-sonnet", "success", 1.2, 100, 500)
type Metrics struct {
	// LLMRequestDuration measures LLM API call latency in seconds.
	// Labels: provider, model
	LLMRequestDuration *prometheus.HistogramVec

	// LLMRequestCounter counts LLM requests by provider and model.
	// Labels: provider, model, status (success|error)
	LLMRequestCounter *prometheus.CounterVec

	// LLMTokensUsed tracks token consumption.
	// Labels: provider, model, type (prompt|completion)
	LLMTokensUsed *prometheus.CounterVec

	// LLMCostUSD tracks estimated cost in USD.
	// Labels: provider, model
	LLMCostUSD *prometheus.CounterVec

	// ContextWindowUsed tracks context window utilization per request.
	// Labels: provider, model
	ContextWindowUsed *prometheus.HistogramVec

	// ToolExecutionCounter counts tool invocations.
	// Labels: tool_name, status (success|error)
	ToolExecutionCounter *prometheus.CounterVec

	// ToolExecutionDuration measures tool execution time in seconds.
	// Labels: tool_name
	ToolExecutionDuration *prometheus.HistogramVec

	// ErrorCounter tracks errors by component and type.
	// Labels: component (agent|router|tool|sidecar), error_type
	ErrorCounter *prometheus.CounterVec

	// ActiveSessions is a gauge tracking current active chat sessions.
	ActiveSessions prometheus.Gauge

	// SessionDuration measures session lifetime in seconds.
	SessionDuration prometheus.Histogram

	// RunAttempts counts tool-loop run attempts by status, including
	// provider-fallback retries.
	// Labels: status (success|retry|failed)
	RunAttempts *prometheus.CounterVec
}

// NewMetrics creates and registers all Prometheus metrics against the
// default registry. Call once at application startup; metrics surface
// at a `/metrics` endpoint if one is mounted.
func NewMetrics() *Metrics {
	return newMetricsWith(prometheus.DefaultRegisterer)
}

// newMetricsWith registers all metrics against reg instead of the
// default registerer, so tests can use an isolated
// prometheus.NewRegistry() without colliding across test runs.
func newMetricsWith(reg prometheus.Registerer) *Metrics {
	factory := promauto.With(reg)
	return &Metrics{
		LLMRequestDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "deskaide_llm_request_duration_seconds",
				Help:    "Duration of LLM API requests in seconds",
				Buckets: []float64{0.1, 0.5, 1, 2, 5, 10, 30, 60},
			},
			[]string{"provider", "model"},
		),

		LLMRequestCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "deskaide_llm_requests_total",
				Help: "Total number of LLM requests by provider, model, and status",
			},
			[]string{"provider", "model", "status"},
		),

		LLMTokensUsed: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "deskaide_llm_tokens_total",
				Help: "Total number of tokens used by provider, model, and type",
			},
			[]string{"provider", "model", "type"},
		),

		LLMCostUSD: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "deskaide_llm_cost_usd_total",
				Help: "Estimated LLM API cost in USD",
			},
			[]string{"provider", "model"},
		),

		ContextWindowUsed: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "deskaide_context_window_tokens",
				Help:    "Context window tokens used per request",
				Buckets: []float64{1000, 4000, 8000, 16000, 32000, 64000, 128000},
			},
			[]string{"provider", "model"},
		),

		ToolExecutionCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "deskaide_tool_executions_total",
				Help: "Total number of tool executions by tool name and status",
			},
			[]string{"tool_name", "status"},
		),

		ToolExecutionDuration: factory.NewHistogramVec(
			prometheus.HistogramOpts{
				Name:    "deskaide_tool_execution_duration_seconds",
				Help:    "Duration of tool executions in seconds",
				Buckets: []float64{0.01, 0.05, 0.1, 0.5, 1, 5, 10, 30, 60},
			},
			[]string{"tool_name"},
		),

		ErrorCounter: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "deskaide_errors_total",
				Help: "Total number of errors by component and error type",
			},
			[]string{"component", "error_type"},
		),

		ActiveSessions: factory.NewGauge(
			prometheus.GaugeOpts{
				Name: "deskaide_active_sessions",
				Help: "Current number of active chat sessions",
			},
		),

		SessionDuration: factory.NewHistogram(
			prometheus.HistogramOpts{
				Name:    "deskaide_session_duration_seconds",
				Help:    "Duration of chat sessions in seconds",
				Buckets: []float64{60, 300, 600, 1800, 3600, 7200, 14400, 28800},
			},
		),

		RunAttempts: factory.NewCounterVec(
			prometheus.CounterOpts{
				Name: "deskaide_run_attempts_total",
				Help: "Total number of tool-loop run attempts by status",
			},
			[]string{"status"},
		),
	}
}

// RecordLLMRequest records metrics for an LLM API request.
func (m *Metrics) RecordLLMRequest(provider, model, status string, durationSeconds float64, promptTokens, completionTokens int) {
	m.LLMRequestCounter.WithLabelValues(provider, model, status).Inc()
	m.LLMRequestDuration.WithLabelValues(provider, model).Observe(durationSeconds)
	if promptTokens > 0 {
		m.LLMTokensUsed.WithLabelValues(provider, model, "prompt").Add(float64(promptTokens))
	}
	if completionTokens > 0 {
		m.LLMTokensUsed.WithLabelValues(provider, model, "completion").Add(float64(completionTokens))
	}
}

// RecordToolExecution records metrics for a tool execution.
func (m *Metrics) RecordToolExecution(toolName, status string, durationSeconds float64) {
	m.ToolExecutionCounter.WithLabelValues(toolName, status).Inc()
	m.ToolExecutionDuration.WithLabelValues(toolName).Observe(durationSeconds)
}

// RecordError increments the error counter for a given component and error type.
func (m *Metrics) RecordError(component, errorType string) {
	m.ErrorCounter.WithLabelValues(component, errorType).Inc()
}

// SessionStarted increments the active sessions gauge.
func (m *Metrics) SessionStarted() {
	m.ActiveSessions.Inc()
}

// SessionEnded decrements the active sessions gauge and records session duration.
func (m *Metrics) SessionEnded(durationSeconds float64) {
	m.ActiveSessions.Dec()
	m.SessionDuration.Observe(durationSeconds)
}

// RecordLLMCost records estimated API cost.
func (m *Metrics) RecordLLMCost(provider, model string, costUSD float64) {
	m.LLMCostUSD.WithLabelValues(provider, model).Add(costUSD)
}

// RecordContextWindow records context window utilization.
func (m *Metrics) RecordContextWindow(provider, model string, tokensUsed int) {
	m.ContextWindowUsed.WithLabelValues(provider, model).Observe(float64(tokensUsed))
}

// RecordRunAttempt records a tool-loop run attempt.
func (m *Metrics) RecordRunAttempt(status string) {
	m.RunAttempts.WithLabelValues(status).Inc()
}
