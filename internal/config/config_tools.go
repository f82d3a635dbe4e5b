package config

import "time"

// ToolsConfig configures the diagnostic tool set: how long the agent
// loop will run before it is forced to answer, and the protected-name
// policy the mutating tools refuse to act against.
type ToolsConfig struct {
	// MaxIterations bounds the number of tool-call turns per user
	// message before the loop forces a final answer. Maps to
	// agent.RuntimeOptions.MaxToolIterations.
	MaxIterations int `yaml:"max_iterations"`

	// Timeout bounds each individual tool call.
	Timeout time.Duration `yaml:"timeout"`

	// ProtectedProcessNames lists process names the kill/reset tools
	// refuse to act against, merged with the built-in defaults.
	ProtectedProcessNames []string `yaml:"protected_process_names"`

	// ProtectedPathPrefixes lists filesystem roots the adapter/DHCP
	// tools refuse to act against, merged with the built-in defaults.
	ProtectedPathPrefixes []string `yaml:"protected_path_prefixes"`

	// PlatformOverrides lets a deployment override the shell command a
	// given tool runs on a given GOOS, keyed tool name -> GOOS -> command.
	PlatformOverrides map[string]map[string]string `yaml:"platform_overrides"`
}

func applyToolsDefaults(cfg *ToolsConfig) {
	if cfg.MaxIterations <= 0 {
		cfg.MaxIterations = 7
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 15 * time.Second
	}
}
