package config

import "time"

// SidecarConfig configures the local LLM sidecar supervisor.
type SidecarConfig struct {
	Host         string        `yaml:"host"`
	Port         int           `yaml:"port"`
	BinaryPath   string        `yaml:"binary_path"`
	ResourcesDir string        `yaml:"resources_dir"`
	ModelsPath   string        `yaml:"models_path"`
	DataDir      string        `yaml:"data_dir"`
	BundledMode  bool          `yaml:"bundled_mode"`
	StartTimeout time.Duration `yaml:"start_timeout"`
	DefaultModel string        `yaml:"default_model"`
}

func applySidecarDefaults(cfg *SidecarConfig) {
	if cfg.Host == "" {
		cfg.Host = "127.0.0.1"
	}
	if cfg.Port == 0 {
		cfg.Port = 11434
	}
	if cfg.StartTimeout == 0 {
		cfg.StartTimeout = 30 * time.Second
	}
	if cfg.DefaultModel == "" {
		cfg.DefaultModel = "mistral:7b-instruct"
	}
}
