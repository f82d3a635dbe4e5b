package agent

import (
	"log/slog"
	"time"
)

// RuntimeOptions configures tool execution and loop behavior for Run.
type RuntimeOptions struct {
	// MaxToolIterations bounds the number of tool-call turns a Run
	// will take before forcing a final, tool-free answer. Nominal
	// value is 7.
	MaxToolIterations int

	// ToolTimeout applies a default timeout to each tool call.
	ToolTimeout time.Duration

	// Logger receives runtime diagnostics.
	Logger *slog.Logger
}

// DefaultRuntimeOptions returns the baseline runtime options.
func DefaultRuntimeOptions() RuntimeOptions {
	return RuntimeOptions{
		MaxToolIterations: 7,
		ToolTimeout:       30 * time.Second,
		Logger:            slog.Default(),
	}
}

func mergeRuntimeOptions(base RuntimeOptions, override RuntimeOptions) RuntimeOptions {
	merged := base
	if override.MaxToolIterations > 0 {
		merged.MaxToolIterations = override.MaxToolIterations
	}
	if override.ToolTimeout > 0 {
		merged.ToolTimeout = override.ToolTimeout
	}
	if override.Logger != nil {
		merged.Logger = override.Logger
	}
	return merged
}
