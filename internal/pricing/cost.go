// Package pricing estimates USD cost for an LLM completion from its
// token counts, using a static per-model price table since none of
// the wired providers return cost in their response.
package pricing

import (
	"fmt"
	"math"
	"strings"
)

// ModelCost is per-million-token pricing for one model.
type ModelCost struct {
	InputPer1M  float64
	OutputPer1M float64
}

// DefaultCosts holds list pricing for the models deskaide's providers
// expose. The sidecar (local Ollama) has no entry: local inference is
// free and Estimate returns 0 for unknown provider/model pairs.
var DefaultCosts = map[string]map[string]ModelCost{
	"anthropic": {
		"claude-sonnet-4-20250514":  {InputPer1M: 3.0, OutputPer1M: 15.0},
		"claude-opus-4-20250514":    {InputPer1M: 15.0, OutputPer1M: 75.0},
		"claude-3-5-haiku-20241022": {InputPer1M: 1.0, OutputPer1M: 5.0},
	},
	"openai": {
		"gpt-4o":      {InputPer1M: 2.50, OutputPer1M: 10.0},
		"gpt-4o-mini": {InputPer1M: 0.15, OutputPer1M: 0.60},
		"o1":          {InputPer1M: 15.0, OutputPer1M: 60.0},
		"o1-mini":     {InputPer1M: 3.0, OutputPer1M: 12.0},
	},
	"google": {
		"gemini-1.5-pro":   {InputPer1M: 1.25, OutputPer1M: 5.0},
		"gemini-1.5-flash": {InputPer1M: 0.075, OutputPer1M: 0.30},
		"gemini-2.0-flash": {InputPer1M: 0.10, OutputPer1M: 0.40},
	},
	"xai": {
		"grok-2": {InputPer1M: 2.0, OutputPer1M: 10.0},
	},
}

// Resolve looks up pricing for a provider/model pair, falling back to
// a prefix match so a dated model string ("claude-sonnet-4-20250514")
// still matches a shorter alias and vice versa.
func Resolve(provider, model string) (ModelCost, bool) {
	provider = strings.ToLower(strings.TrimSpace(provider))
	model = strings.TrimSpace(model)
	if provider == "" || model == "" {
		return ModelCost{}, false
	}

	costs, ok := DefaultCosts[provider]
	if !ok {
		return ModelCost{}, false
	}
	if cost, ok := costs[model]; ok {
		return cost, true
	}
	for id, cost := range costs {
		if strings.HasPrefix(model, id) || strings.HasPrefix(id, model) {
			return cost, true
		}
	}
	return ModelCost{}, false
}

// Estimate returns the USD cost of a completion with the given
// input/output token counts, or 0 if the provider/model has no
// pricing entry (the sidecar, or a model list hasn't caught up with).
func Estimate(provider, model string, inputTokens, outputTokens int) float64 {
	cost, ok := Resolve(provider, model)
	if !ok {
		return 0
	}
	total := (float64(inputTokens)*cost.InputPer1M + float64(outputTokens)*cost.OutputPer1M) / 1_000_000
	if math.IsNaN(total) || math.IsInf(total, 0) {
		return 0
	}
	return total
}

// FormatUSD renders a cost the way `deskaide analytics cost` prints
// it: two decimal places above a cent, four below so small per-call
// costs aren't rounded away to "$0.00".
func FormatUSD(amount float64) string {
	if amount <= 0 || math.IsNaN(amount) || math.IsInf(amount, 0) {
		return "$0.00"
	}
	if amount >= 0.01 {
		return fmt.Sprintf("$%.2f", amount)
	}
	return fmt.Sprintf("$%.4f", amount)
}
