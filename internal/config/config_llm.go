package config

import "time"

// LLMConfig configures the cloud provider set, fallback order, and the
// router's connectivity/cooldown behavior.
type LLMConfig struct {
	// DefaultProvider is tried first when a request carries no routing hint.
	DefaultProvider string `yaml:"default_provider"`

	// Providers holds per-provider credentials and model defaults, keyed
	// by provider name ("anthropic", "openai", "xai", "google").
	Providers map[string]LLMProviderConfig `yaml:"providers"`

	// FallbackChain lists provider names to try, in order, after
	// DefaultProvider. The sidecar is always appended as the terminal
	// fallback regardless of this list.
	FallbackChain []string `yaml:"fallback_chain"`

	// ConnectivityURL is probed to decide whether cloud providers are
	// reachable at all. Empty disables the probe.
	ConnectivityURL string `yaml:"connectivity_url"`

	// ConnectivityTimeout bounds the probe request.
	ConnectivityTimeout time.Duration `yaml:"connectivity_timeout"`

	// FailureCooldown is how long a provider that just failed is skipped.
	FailureCooldown time.Duration `yaml:"failure_cooldown"`
}

// LLMProviderConfig configures a single cloud provider.
type LLMProviderConfig struct {
	APIKey       string `yaml:"api_key"`
	DefaultModel string `yaml:"default_model"`
	BaseURL      string `yaml:"base_url"`
}

func applyLLMDefaults(cfg *LLMConfig) {
	if cfg.DefaultProvider == "" {
		cfg.DefaultProvider = "anthropic"
	}
	if cfg.ConnectivityURL == "" {
		cfg.ConnectivityURL = "https://api.anthropic.com/"
	}
	if cfg.ConnectivityTimeout <= 0 {
		cfg.ConnectivityTimeout = 2 * time.Second
	}
	if cfg.FailureCooldown <= 0 {
		cfg.FailureCooldown = 30 * time.Second
	}
}
