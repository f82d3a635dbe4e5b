package main

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/techtime/deskaide/internal/agent"
	"github.com/techtime/deskaide/internal/agent/providers"
	"github.com/techtime/deskaide/internal/agent/routing"
	"github.com/techtime/deskaide/internal/config"
	"github.com/techtime/deskaide/internal/preferences"
	"github.com/techtime/deskaide/internal/prompts"
	"github.com/techtime/deskaide/internal/sessions"
	"github.com/techtime/deskaide/internal/sidecar"
	toolexec "github.com/techtime/deskaide/internal/tools/exec"
	"github.com/techtime/deskaide/internal/tools/system"
)

// app bundles the pieces a running command needs: the loaded config,
// the session store, the sidecar supervisor, and the runtime built on
// top of them. Subcommands close it once they're done.
type app struct {
	cfg       *config.Config
	store     sessions.Store
	sidecar   *sidecar.Supervisor
	runtime   *agent.Runtime
	logger    *slog.Logger
}

func (a *app) Close() error {
	if a.sidecar != nil && a.sidecar.Owns() {
		_ = a.sidecar.Stop()
	}
	if a.store != nil {
		return a.store.Close()
	}
	return nil
}

// buildApp loads configuration, opens the session store, constructs
// the LLM router from whichever providers have credentials, assembles
// the diagnostic tool registry, and wires it all into a Runtime.
func buildApp(configPath string, logger *slog.Logger) (*app, error) {
	cfg, err := config.Load(configPath)
	if err != nil {
		return nil, fmt.Errorf("load config: %w", err)
	}
	applyProtectedPolicy(cfg)
	applyPreferences(cfg, logger)

	store, err := openStore(cfg)
	if err != nil {
		return nil, err
	}

	supervisor := sidecar.NewSupervisor(sidecar.Config{
		Host:         cfg.Sidecar.Host,
		Port:         cfg.Sidecar.Port,
		BinaryPath:   cfg.Sidecar.BinaryPath,
		ResourcesDir: cfg.Sidecar.ResourcesDir,
		ModelsPath:   cfg.Sidecar.ModelsPath,
		DataDir:      cfg.Sidecar.DataDir,
		BundledMode:  cfg.Sidecar.BundledMode,
		StartTimeout: cfg.Sidecar.StartTimeout,
		DefaultModel: cfg.Sidecar.DefaultModel,
	}, logger)

	llmProviders, priority, err := buildProviders(cfg, supervisor, logger)
	if err != nil {
		_ = store.Close()
		return nil, err
	}

	router := routing.NewRouter(routing.Config{
		Priority:            priority,
		Sidecar:             "sidecar",
		ConnectivityURL:     cfg.LLM.ConnectivityURL,
		ConnectivityTimeout: cfg.LLM.ConnectivityTimeout,
		FailureCooldown:     cfg.LLM.FailureCooldown,
	}, llmProviders)

	registry := agent.NewToolRegistry()
	manager := toolexec.NewManager(".")
	for _, tool := range diagnosticTools(manager) {
		registry.Register(tool)
	}

	loader := prompts.NewLoader()
	systemPrompt, err := loader.Load(prompts.Diagnostic)
	if err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("load system prompt: %w", err)
	}

	runtime := agent.NewRuntime(router, registry, store, systemPrompt, agent.RuntimeOptions{
		MaxToolIterations: cfg.Tools.MaxIterations,
		ToolTimeout:       cfg.Tools.Timeout,
		Logger:            logger,
	})

	return &app{cfg: cfg, store: store, sidecar: supervisor, runtime: runtime, logger: logger}, nil
}

// applyProtectedPolicy extends the diagnostic tool set's protected
// name/path deny-list with the deployment's configured additions. Safe
// to call repeatedly (e.g. on every config reload): it only adds.
func applyProtectedPolicy(cfg *config.Config) {
	system.ConfigureProtectedPolicy(cfg.Tools.ProtectedProcessNames, cfg.Tools.ProtectedPathPrefixes)
}

// applyPreferences layers the user's saved preferences on top of the
// loaded config: a preferred backend only takes effect when the config
// itself doesn't already pin one, so an explicit deployment config
// always wins over a personal default.
func applyPreferences(cfg *config.Config, logger *slog.Logger) {
	path, err := preferences.DefaultPath()
	if err != nil {
		logger.Warn("preferences path unavailable, using defaults", "error", err)
		return
	}
	prefs, err := preferences.Load(path)
	if err != nil {
		logger.Warn("failed to load preferences, using defaults", "error", err)
		return
	}
	if cfg.LLM.DefaultProvider == "" && prefs.PreferredBackend != "" {
		cfg.LLM.DefaultProvider = prefs.PreferredBackend
	}
}

func openStore(cfg *config.Config) (sessions.Store, error) {
	if cfg.Session.UseMemoryStore {
		return sessions.NewMemoryStore(), nil
	}
	store, err := sessions.NewSQLiteStore(cfg.Session.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("open session store: %w", err)
	}
	return store, nil
}

// buildProviders constructs every cloud provider with a configured API
// key plus the sidecar's Ollama-compatible client, and returns the
// priority order buildProviders would have the router try: the
// configured default first, then the configured fallback chain, in
// order given.
func buildProviders(cfg *config.Config, supervisor *sidecar.Supervisor, logger *slog.Logger) (map[string]agent.LLMProvider, []string, error) {
	registered := map[string]agent.LLMProvider{}

	for name, providerCfg := range cfg.LLM.Providers {
		key := strings.TrimSpace(providerCfg.APIKey)
		if key == "" {
			continue
		}
		switch strings.ToLower(name) {
		case "anthropic":
			provider, err := providers.NewAnthropicProvider(providers.AnthropicConfig{
				APIKey:       key,
				BaseURL:      providerCfg.BaseURL,
				DefaultModel: providerCfg.DefaultModel,
			})
			if err != nil {
				return nil, nil, fmt.Errorf("construct anthropic provider: %w", err)
			}
			registered["anthropic"] = provider
		case "openai":
			registered["openai"] = providers.NewOpenAIProvider(key)
		case "xai":
			registered["xai"] = providers.NewXAIProvider(key, providerCfg.BaseURL)
		case "google":
			provider, err := providers.NewGoogleProvider(providers.GoogleConfig{
				APIKey:       key,
				DefaultModel: providerCfg.DefaultModel,
			})
			if err != nil {
				return nil, nil, fmt.Errorf("construct google provider: %w", err)
			}
			registered["google"] = provider
		default:
			logger.Warn("unrecognized llm provider in config, skipping", "provider", name)
		}
	}

	registered["sidecar"] = providers.NewOllamaProvider(providers.OllamaConfig{
		BaseURL:      supervisor.BaseURL(),
		DefaultModel: cfg.Sidecar.DefaultModel,
		Timeout:      2 * time.Minute,
	})

	priority := []string{}
	if cfg.LLM.DefaultProvider != "" && cfg.LLM.DefaultProvider != "sidecar" {
		priority = append(priority, cfg.LLM.DefaultProvider)
	}
	for _, name := range cfg.LLM.FallbackChain {
		if name != cfg.LLM.DefaultProvider && name != "sidecar" {
			priority = append(priority, name)
		}
	}

	return registered, priority, nil
}

// diagnosticTools builds the full set of network/system diagnostic
// tools over a shared command executor.
func diagnosticTools(manager *toolexec.Manager) []agent.Tool {
	return []agent.Tool{
		system.NewGatewayTool(manager),
		system.NewWifiStatusTool(manager),
		system.NewWifiToggleTool(manager),
		system.NewDNSFlushTool(manager),
		system.NewResolveHostnameTool(manager),
		system.NewDHCPRenewTool(manager),
		system.NewIPConfigTool(manager),
		system.NewAdapterListTool(manager),
		system.NewAdapterResetTool(manager),
		system.NewConnectivityTool(manager),
		system.NewKillProcessTool(manager),
		system.NewCleanTempFilesTool(manager),
	}
}
