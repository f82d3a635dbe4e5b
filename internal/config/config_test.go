package config

import (
	"os"
	"path/filepath"
	"testing"
)

func writeConfigFile(t *testing.T, contents string) string {
	t.Helper()
	dir := t.TempDir()
	path := filepath.Join(dir, "deskaide.yaml")
	if err := os.WriteFile(path, []byte(contents), 0o644); err != nil {
		t.Fatalf("write config file: %v", err)
	}
	return path
}

func TestDefaultAppliesAllSectionDefaults(t *testing.T) {
	cfg := Default()

	if cfg.LLM.DefaultProvider != "anthropic" {
		t.Errorf("LLM.DefaultProvider = %q, want anthropic", cfg.LLM.DefaultProvider)
	}
	if cfg.Sidecar.Port != 11434 {
		t.Errorf("Sidecar.Port = %d, want 11434", cfg.Sidecar.Port)
	}
	if cfg.Session.DatabasePath != "deskaide.db" {
		t.Errorf("Session.DatabasePath = %q, want deskaide.db", cfg.Session.DatabasePath)
	}
	if cfg.Tools.MaxIterations != 7 {
		t.Errorf("Tools.MaxIterations = %d, want 7", cfg.Tools.MaxIterations)
	}
	if cfg.Server.BindAddress != "127.0.0.1:8787" {
		t.Errorf("Server.BindAddress = %q, want 127.0.0.1:8787", cfg.Server.BindAddress)
	}
}

func TestLoadParsesFileAndFillsDefaults(t *testing.T) {
	path := writeConfigFile(t, `
llm:
  default_provider: openai
  providers:
    openai:
      api_key: sk-test
tools:
  max_iterations: 3
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if cfg.LLM.DefaultProvider != "openai" {
		t.Errorf("LLM.DefaultProvider = %q, want openai", cfg.LLM.DefaultProvider)
	}
	if cfg.Tools.MaxIterations != 3 {
		t.Errorf("Tools.MaxIterations = %d, want 3", cfg.Tools.MaxIterations)
	}
	if cfg.Tools.Timeout == 0 {
		t.Error("Tools.Timeout should have been defaulted")
	}
	if cfg.Sidecar.Port != 11434 {
		t.Errorf("Sidecar.Port = %d, want defaulted 11434", cfg.Sidecar.Port)
	}
}

func TestLoadRejectsUnknownFields(t *testing.T) {
	path := writeConfigFile(t, `
llm:
  made_up_field: true
`)

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for unknown field, got nil")
	}
}

func TestLoadRejectsMultiDocument(t *testing.T) {
	path := writeConfigFile(t, "llm:\n  default_provider: openai\n---\nllm:\n  default_provider: xai\n")

	if _, err := Load(path); err == nil {
		t.Fatal("expected error for multi-document config, got nil")
	}
}

func TestLoadExpandsEnvironmentReferences(t *testing.T) {
	os.Setenv("DESKAIDE_TEST_KEY", "sk-from-env")
	defer os.Unsetenv("DESKAIDE_TEST_KEY")

	path := writeConfigFile(t, `
llm:
  providers:
    anthropic:
      api_key: ${DESKAIDE_TEST_KEY}
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.LLM.Providers["anthropic"].APIKey; got != "sk-from-env" {
		t.Errorf("APIKey = %q, want sk-from-env", got)
	}
}

func TestApplyEnvOverridesSetsProviderKeyWithoutClobberingFile(t *testing.T) {
	os.Setenv("OPENAI_API_KEY", "sk-env-override")
	defer os.Unsetenv("OPENAI_API_KEY")

	path := writeConfigFile(t, `
llm:
  providers:
    openai:
      api_key: sk-from-file
`)

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("Load: %v", err)
	}
	if got := cfg.LLM.Providers["openai"].APIKey; got != "sk-from-file" {
		t.Errorf("file-provided key should win, got %q", got)
	}
}

func TestApplyEnvOverridesOllamaHostAcceptsURLAndHostPort(t *testing.T) {
	cases := []struct {
		value    string
		wantHost string
		wantPort int
	}{
		{"http://127.0.0.1:11500", "127.0.0.1", 11500},
		{"192.168.1.5:12000", "192.168.1.5", 12000},
	}

	for _, tc := range cases {
		os.Setenv("OLLAMA_HOST", tc.value)
		cfg := &Config{}
		applyEnvOverrides(cfg)
		applyDefaults(cfg)
		if cfg.Sidecar.Host != tc.wantHost || cfg.Sidecar.Port != tc.wantPort {
			t.Errorf("OLLAMA_HOST=%q: got host=%q port=%d, want host=%q port=%d",
				tc.value, cfg.Sidecar.Host, cfg.Sidecar.Port, tc.wantHost, tc.wantPort)
		}
	}
	os.Unsetenv("OLLAMA_HOST")
}

func TestValidateConfigCollectsMultipleIssues(t *testing.T) {
	cfg := &Config{
		Tools:   ToolsConfig{MaxIterations: 0, Timeout: -1},
		Sidecar: SidecarConfig{Port: 0},
		Session: SessionConfig{DatabasePath: ""},
	}

	err := validateConfig(cfg)
	if err == nil {
		t.Fatal("expected validation error, got nil")
	}
	valErr, ok := err.(*ConfigValidationError)
	if !ok {
		t.Fatalf("error type = %T, want *ConfigValidationError", err)
	}
	if len(valErr.Issues) < 3 {
		t.Errorf("expected at least 3 issues, got %d: %v", len(valErr.Issues), valErr.Issues)
	}
}

func TestValidateConfigRequiresDefaultProviderEntry(t *testing.T) {
	cfg := Default()
	cfg.LLM.DefaultProvider = "openai"
	cfg.LLM.Providers = nil

	if err := validateConfig(cfg); err == nil {
		t.Fatal("expected error for missing provider entry, got nil")
	}
}

func TestValidateConfigAllowsSidecarAsDefaultProviderWithoutEntry(t *testing.T) {
	cfg := Default()
	cfg.LLM.DefaultProvider = "sidecar"
	cfg.LLM.Providers = nil

	if err := validateConfig(cfg); err != nil {
		t.Errorf("sidecar default should not require a providers entry: %v", err)
	}
}

func TestValidateConfigAllowsUseMemoryStoreWithoutDatabasePath(t *testing.T) {
	cfg := Default()
	cfg.Session.DatabasePath = ""
	cfg.Session.UseMemoryStore = true

	if err := validateConfig(cfg); err != nil {
		t.Errorf("use_memory_store should waive database_path requirement: %v", err)
	}
}

func TestMarshalYAMLRoundTrips(t *testing.T) {
	cfg := Default()
	data, err := MarshalYAML(cfg)
	if err != nil {
		t.Fatalf("MarshalYAML: %v", err)
	}
	if len(data) == 0 {
		t.Fatal("expected non-empty YAML output")
	}
}
