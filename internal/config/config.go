// Package config loads and validates deskaide's YAML configuration:
// the LLM provider/fallback set, the sidecar supervisor's launch
// parameters, the session store's location, the tool set's iteration
// bound and protected-name policy, and the (currently unbound) server
// bind address.
package config

import (
	"fmt"
	"net"
	"net/url"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// Config is deskaide's top-level configuration.
type Config struct {
	LLM     LLMConfig     `yaml:"llm"`
	Sidecar SidecarConfig `yaml:"sidecar"`
	Session SessionConfig `yaml:"session"`
	Tools   ToolsConfig   `yaml:"tools"`
	Server  ServerConfig  `yaml:"server"`
}

// Load reads, parses, defaults, and validates the config file at path.
func Load(path string) (*Config, error) {
	raw, err := loadRaw(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	cfg, err := decodeRawConfig(raw)
	if err != nil {
		return nil, err
	}

	applyEnvOverrides(cfg)
	applyDefaults(cfg)

	if err := validateConfig(cfg); err != nil {
		return nil, err
	}
	return cfg, nil
}

// Default returns a Config with every section defaulted, for callers
// (tests, `deskaide chat` without a config file) that don't load one
// from disk.
func Default() *Config {
	cfg := &Config{}
	applyDefaults(cfg)
	return cfg
}

func applyDefaults(cfg *Config) {
	applyLLMDefaults(&cfg.LLM)
	applySidecarDefaults(&cfg.Sidecar)
	applySessionDefaults(&cfg.Session)
	applyToolsDefaults(&cfg.Tools)
	applyServerDefaults(&cfg.Server)
}

// applyEnvOverrides lays the recognized environment variables over
// the parsed config, taking precedence over the file but never
// clearing a value the file set when the variable is unset.
func applyEnvOverrides(cfg *Config) {
	if value := strings.TrimSpace(os.Getenv("LLM_BACKEND")); value != "" {
		cfg.LLM.DefaultProvider = value
	}
	if value := strings.TrimSpace(os.Getenv("OLLAMA_HOST")); value != "" {
		if host, port, ok := splitHostPort(value); ok {
			cfg.Sidecar.Host = host
			cfg.Sidecar.Port = port
		}
	}
	if value := strings.TrimSpace(os.Getenv("OLLAMA_MODELS")); value != "" {
		cfg.Sidecar.ModelsPath = value
	}

	for provider, envVar := range map[string]string{
		"openai":    "OPENAI_API_KEY",
		"anthropic": "ANTHROPIC_API_KEY",
		"xai":       "XAI_API_KEY",
		"google":    "GOOGLE_API_KEY",
	} {
		value := strings.TrimSpace(os.Getenv(envVar))
		if value == "" {
			continue
		}
		if cfg.LLM.Providers == nil {
			cfg.LLM.Providers = map[string]LLMProviderConfig{}
		}
		entry := cfg.LLM.Providers[provider]
		if entry.APIKey == "" {
			entry.APIKey = value
		}
		cfg.LLM.Providers[provider] = entry
	}
}

// splitHostPort accepts either a bare "host:port" pair or a full URL
// (the form Ollama's own docs show for OLLAMA_HOST) and extracts host
// and port from either.
func splitHostPort(value string) (string, int, bool) {
	candidate := value
	if u, err := url.Parse(value); err == nil && u.Host != "" {
		candidate = u.Host
	}
	host, portStr, err := net.SplitHostPort(candidate)
	if err != nil {
		return "", 0, false
	}
	port, err := strconv.Atoi(portStr)
	if err != nil {
		return "", 0, false
	}
	return host, port, true
}

// ConfigValidationError collects every validation issue found so a
// user fixes the file once instead of iterating error-by-error.
type ConfigValidationError struct {
	Issues []string
}

func (e *ConfigValidationError) Error() string {
	return "config validation failed:\n- " + strings.Join(e.Issues, "\n- ")
}

func validateConfig(cfg *Config) error {
	if cfg == nil {
		return nil
	}
	var issues []string

	if cfg.Tools.MaxIterations <= 0 {
		issues = append(issues, "tools.max_iterations must be > 0")
	}
	if cfg.Tools.Timeout < 0 {
		issues = append(issues, "tools.timeout must be >= 0")
	}
	if cfg.Sidecar.Port <= 0 || cfg.Sidecar.Port > 65535 {
		issues = append(issues, "sidecar.port must be between 1 and 65535")
	}
	if strings.TrimSpace(cfg.Session.DatabasePath) == "" && !cfg.Session.UseMemoryStore {
		issues = append(issues, "session.database_path is required unless session.use_memory_store is set")
	}

	defaultProvider := strings.ToLower(strings.TrimSpace(cfg.LLM.DefaultProvider))
	if defaultProvider != "" && defaultProvider != "sidecar" {
		if _, ok := cfg.LLM.Providers[defaultProvider]; !ok {
			issues = append(issues, fmt.Sprintf("llm.providers missing entry for default_provider %q", cfg.LLM.DefaultProvider))
		}
	}

	if len(issues) > 0 {
		return &ConfigValidationError{Issues: issues}
	}
	return nil
}

// MarshalYAML round-trips a Config back to bytes, used by the
// `deskaide analytics`/`deskaide sidecar` subcommands that print the
// effective config for diagnostics.
func MarshalYAML(cfg *Config) ([]byte, error) {
	return yaml.Marshal(cfg)
}
