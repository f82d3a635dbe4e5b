// Package routing implements the LLM router: a priority list of
// providers, a lightweight connectivity probe, and cooldown-based
// fallback marking. It does not classify prompt content — provider
// selection is purely priority + reachability, per this assistant's
// routing contract.
package routing

import (
	"context"
	"fmt"
	"net/http"
	"strings"
	"sync"
	"time"

	"github.com/techtime/deskaide/internal/agent"
)

// Config configures a Router.
type Config struct {
	// Priority lists provider names in preference order. The first
	// reachable, credentialed, non-cooling-down provider wins.
	Priority []string

	// Sidecar is the name of the local sidecar provider, always
	// appended as a terminal fallback even if absent from Priority.
	Sidecar string

	// ConnectivityURL is probed with a short-timeout GET to decide
	// whether cloud providers are reachable at all. Empty disables
	// the probe (cloud providers are always attempted).
	ConnectivityURL string

	// ConnectivityTimeout bounds the probe request. Default 2s.
	ConnectivityTimeout time.Duration

	// FailureCooldown is how long a provider that just failed is
	// skipped for. Default 30s.
	FailureCooldown time.Duration
}

// Decision is the outcome of selecting a provider for one request:
// which provider was chosen, whether that required falling back from
// the first (preferred) candidate, and why.
type Decision struct {
	Provider     agent.LLMProvider
	ProviderName string
	Fallback     bool
	FallbackFrom string
	Reason       string
}

// Router selects an LLM provider for each request by walking a
// priority list, skipping unreachable/uncredentialed/cooling-down
// providers, and always falling through to the local sidecar.
type Router struct {
	cfg       Config
	providers map[string]agent.LLMProvider
	client    *http.Client

	healthMu  sync.Mutex
	unhealthy map[string]time.Time

	onlineMu      sync.Mutex
	onlineCache   *bool
	onlineCheckAt time.Time
}

// NewRouter creates a Router over the given named providers.
func NewRouter(cfg Config, providers map[string]agent.LLMProvider) *Router {
	if cfg.ConnectivityTimeout <= 0 {
		cfg.ConnectivityTimeout = 2 * time.Second
	}
	if cfg.FailureCooldown <= 0 {
		cfg.FailureCooldown = 30 * time.Second
	}
	return &Router{
		cfg:       cfg,
		providers: providers,
		client:    &http.Client{Timeout: cfg.ConnectivityTimeout},
		unhealthy: make(map[string]time.Time),
	}
}

// Select picks the best available provider for req without invoking
// it, so the caller (the runtime) can time the call and record its
// own llm-call/fallback analytics events.
func (r *Router) Select(ctx context.Context, req *agent.CompletionRequest) (*Decision, error) {
	online := r.isOnline(ctx)
	order := r.candidateOrder(req)

	preferred := ""
	for i, name := range order {
		if i == 0 {
			preferred = name
		}
		provider := r.providers[name]
		if provider == nil {
			continue
		}
		if name != r.cfg.Sidecar && !online {
			continue
		}
		if !r.isHealthy(name) {
			continue
		}
		if len(req.Tools) > 0 && !provider.SupportsTools() {
			continue
		}
		decision := &Decision{Provider: provider, ProviderName: name}
		if name != preferred {
			decision.Fallback = true
			decision.FallbackFrom = preferred
			decision.Reason = fallbackReason(preferred, online)
		}
		return decision, nil
	}
	return nil, fmt.Errorf("routing: no provider available (online=%v)", online)
}

// MarkFailed records that a provider just failed a request, putting
// it in cooldown for FailureCooldown.
func (r *Router) MarkFailed(name string) {
	r.healthMu.Lock()
	r.unhealthy[normalizeID(name)] = time.Now().Add(r.cfg.FailureCooldown)
	r.healthMu.Unlock()
}

func (r *Router) isHealthy(name string) bool {
	r.healthMu.Lock()
	defer r.healthMu.Unlock()
	until, ok := r.unhealthy[normalizeID(name)]
	if !ok {
		return true
	}
	if time.Now().After(until) {
		delete(r.unhealthy, normalizeID(name))
		return true
	}
	return false
}

// candidateOrder returns Priority followed by the sidecar, deduplicated.
func (r *Router) candidateOrder(req *agent.CompletionRequest) []string {
	seen := make(map[string]bool)
	var order []string
	for _, name := range r.cfg.Priority {
		n := normalizeID(name)
		if n == "" || seen[n] {
			continue
		}
		seen[n] = true
		order = append(order, n)
	}
	sidecar := normalizeID(r.cfg.Sidecar)
	if sidecar != "" && !seen[sidecar] {
		order = append(order, sidecar)
	}
	return order
}

// isOnline performs a single short-timeout GET against
// ConnectivityURL, caching the result briefly to avoid probing on
// every request.
func (r *Router) isOnline(ctx context.Context) bool {
	if r.cfg.ConnectivityURL == "" {
		return true
	}
	r.onlineMu.Lock()
	if r.onlineCache != nil && time.Since(r.onlineCheckAt) < r.cfg.ConnectivityTimeout {
		cached := *r.onlineCache
		r.onlineMu.Unlock()
		return cached
	}
	r.onlineMu.Unlock()

	probeCtx, cancel := context.WithTimeout(ctx, r.cfg.ConnectivityTimeout)
	defer cancel()
	req, err := http.NewRequestWithContext(probeCtx, http.MethodGet, r.cfg.ConnectivityURL, nil)
	online := false
	if err == nil {
		resp, doErr := r.client.Do(req)
		if doErr == nil {
			resp.Body.Close()
			online = resp.StatusCode < 500
		}
	}

	r.onlineMu.Lock()
	r.onlineCache = &online
	r.onlineCheckAt = time.Now()
	r.onlineMu.Unlock()
	return online
}

// Close shuts down the router's HTTP client and any providers that
// need explicit teardown.
func (r *Router) Close() error {
	r.client.CloseIdleConnections()
	return nil
}

func fallbackReason(from string, online bool) string {
	if !online {
		return "offline"
	}
	if from == "" {
		return "unavailable"
	}
	return fmt.Sprintf("%s unavailable", from)
}

func normalizeID(value string) string {
	return strings.ToLower(strings.TrimSpace(value))
}
