// Package agent implements the diagnostics assistant's runtime: the
// provider-neutral LLM abstraction, the tool registry and dispatch
// path, and the bounded multi-turn tool loop that ties them to a
// session's message log.
package agent

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/techtime/deskaide/internal/agent/routing"
	"github.com/techtime/deskaide/internal/observability"
	"github.com/techtime/deskaide/internal/pricing"
	"github.com/techtime/deskaide/internal/sessions"
	"github.com/techtime/deskaide/pkg/models"
)

// toolCategory maps a tool name to the issue category it implies
// when it runs. Tools not listed leave the session's category
// unchanged — "unknown" persists until a category-determining tool
// has run.
var toolCategory = map[string]models.IssueCategory{
	"check_wifi_status":           models.CategoryWifi,
	"toggle_wifi":                 models.CategoryWifi,
	"flush_dns":                   models.CategoryDNS,
	"resolve_hostname":            models.CategoryDNS,
	"ping_gateway":                models.CategoryGateway,
	"check_internet_connectivity": models.CategoryConnectivity,
	"release_renew_dhcp":          models.CategoryIPConfig,
	"get_ip_config":               models.CategoryIPConfig,
	"list_network_adapters":       models.CategoryAdapter,
	"reset_adapter":               models.CategoryAdapter,
	"kill_process":                models.CategoryOther,
	"clean_temp_files":            models.CategoryOther,
}

// toolOSILayer maps a tool name to the OSI layer it probes or acts
// on. The session's osi_layer_resolved is the lowest layer touched by
// the resolution path — issues typically surface bottom-up.
var toolOSILayer = map[string]int{
	"check_wifi_status":           1,
	"toggle_wifi":                 1,
	"list_network_adapters":       1,
	"reset_adapter":               1,
	"ping_gateway":                3,
	"release_renew_dhcp":          3,
	"get_ip_config":               3,
	"check_internet_connectivity": 3,
	"flush_dns":                   7,
	"resolve_hostname":            7,
	"kill_process":                7,
	"clean_temp_files":            7,
}

// Runtime ties the tool registry, the session store, and an LLM
// router together into the bounded multi-turn tool loop.
type Runtime struct {
	router *routing.Router
	tools  *ToolRegistry
	store  sessions.Store
	opts   RuntimeOptions

	defaultSystem string

	sessionLocksMu sync.Mutex
	sessionLocks   map[string]*sessionLock
}

// NewRuntime creates a Runtime. defaultSystem is the system prompt
// appended once at session creation — the message log's first entry.
func NewRuntime(router *routing.Router, tools *ToolRegistry, store sessions.Store, defaultSystem string, opts RuntimeOptions) *Runtime {
	merged := mergeRuntimeOptions(DefaultRuntimeOptions(), opts)
	return &Runtime{
		router:        router,
		tools:         tools,
		store:         store,
		opts:          merged,
		defaultSystem: defaultSystem,
		sessionLocks:  make(map[string]*sessionLock),
	}
}

// RegisterTool installs a tool in the runtime's registry.
func (r *Runtime) RegisterTool(tool Tool) {
	r.tools.Register(tool)
}

// StartSession creates a new session whose message log begins with
// the default system prompt.
func (r *Runtime) StartSession(ctx context.Context, id string) (*models.Session, error) {
	if id == "" {
		id = uuid.NewString()
	}
	session := &models.Session{
		ID:        id,
		StartedAt: time.Now(),
		Outcome:   models.OutcomeInProgress,
	}
	if err := r.store.CreateSession(ctx, session); err != nil {
		return nil, fmt.Errorf("create session: %w", err)
	}
	if r.defaultSystem != "" {
		sysMsg := &models.Message{
			ID:        uuid.NewString(),
			SessionID: id,
			Role:      models.RoleSystem,
			Content:   r.defaultSystem,
			CreatedAt: time.Now(),
		}
		if err := r.store.AppendMessage(ctx, sysMsg); err != nil {
			return nil, fmt.Errorf("append system prompt: %w", err)
		}
	}
	return session, nil
}

// Run drives one user turn through the bounded tool loop and streams
// text/tool-result chunks back to the caller. The returned channel is
// closed once the turn completes (or the context is cancelled).
func (r *Runtime) Run(ctx context.Context, sessionID string, userContent string) (<-chan *ResponseChunk, error) {
	unlock := r.lockSession(sessionID)
	out := make(chan *ResponseChunk, 8)

	go func() {
		defer close(out)
		defer unlock()

		if err := r.run(ctx, sessionID, userContent, out); err != nil {
			out <- &ResponseChunk{Error: err}
		}
	}()

	return out, nil
}

func (r *Runtime) run(ctx context.Context, sessionID string, userContent string, out chan<- *ResponseChunk) error {
	ctx = observability.AddRunID(ctx, uuid.NewString())
	ctx = observability.AddSessionID(ctx, sessionID)

	session, err := r.store.GetSession(ctx, sessionID)
	if err != nil {
		return fmt.Errorf("get session: %w", err)
	}

	userMsg := &models.Message{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      models.RoleUser,
		Content:   userContent,
		CreatedAt: time.Now(),
	}
	if err := r.store.AppendMessage(ctx, userMsg); err != nil {
		return fmt.Errorf("append user message: %w", err)
	}
	session.MessageCount++
	session.UserMessageCount++

	toolDefs := r.tools.AsLLMTools()
	toolCalls := 0
	toolSuccesses := 0
	var resolutionPath []string
	var lastToolName string
	toolNameRepeat := 0

	max := r.opts.MaxToolIterations
	if max <= 0 {
		max = 7
	}

	var finalContent string
	exhausted := true

	for i := 0; i < max; i++ {
		choice := ToolChoice{Mode: ToolChoiceAuto}
		if i == 0 {
			choice = ToolChoice{Mode: ToolChoiceRequired}
		}

		messages, err := r.packMessages(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("pack messages: %w", err)
		}

		resp, err := r.complete(ctx, session, messages, toolDefs, choice, out)
		if err != nil {
			return fmt.Errorf("llm call: %w", err)
		}

		if len(resp.toolCalls) == 0 {
			finalContent = resp.text
			exhausted = false
			break
		}

		assistantMsg := &models.Message{
			ID:        uuid.NewString(),
			SessionID: sessionID,
			Role:      models.RoleAssistant,
			Content:   resp.text,
			ToolCalls: resp.toolCalls,
			CreatedAt: time.Now(),
		}
		if err := r.store.AppendMessage(ctx, assistantMsg); err != nil {
			return fmt.Errorf("append assistant message: %w", err)
		}
		session.MessageCount++
		session.ToolCallCount += len(resp.toolCalls)

		for _, call := range resp.toolCalls {
			if call.Name == lastToolName {
				toolNameRepeat++
			} else {
				toolNameRepeat = 0
				lastToolName = call.Name
			}

			result, event := r.tools.Execute(ctx, sessionID, call)
			event.IsRepeated = toolNameRepeat > 0
			event.ConsecutiveCount = toolNameRepeat + 1
			if err := r.store.AddToolEvent(ctx, event); err != nil {
				r.opts.Logger.Warn("failed to persist tool event", "error", err, "tool", call.Name, "run_id", observability.GetRunID(ctx))
			}

			toolCalls++
			if result.Success {
				toolSuccesses++
			}
			resolutionPath = append(resolutionPath, call.Name)

			if cat, ok := toolCategory[call.Name]; ok {
				session.IssueCategory = cat
			}
			if layer, ok := toolOSILayer[call.Name]; ok {
				if session.OSILayerResolved == nil || layer < *session.OSILayerResolved {
					l := layer
					session.OSILayerResolved = &l
				}
			}

			toolMsg := &models.Message{
				ID:         uuid.NewString(),
				SessionID:  sessionID,
				Role:       models.RoleTool,
				Content:    result.Content,
				ToolCallID: call.ID,
				ToolName:   call.Name,
				CreatedAt:  time.Now(),
			}
			if err := r.store.AppendMessage(ctx, toolMsg); err != nil {
				return fmt.Errorf("append tool result: %w", err)
			}
			session.MessageCount++

			out <- &ResponseChunk{ToolResult: result, ToolEvent: event}
		}
	}

	if exhausted {
		messages, err := r.packMessages(ctx, sessionID)
		if err != nil {
			return fmt.Errorf("pack messages: %w", err)
		}
		resp, err := r.complete(ctx, session, messages, toolDefs, ToolChoice{Mode: ToolChoiceNone}, out)
		if err != nil {
			return fmt.Errorf("final llm call: %w", err)
		}
		finalContent = resp.text
	}

	finalMsg := &models.Message{
		ID:        uuid.NewString(),
		SessionID: sessionID,
		Role:      models.RoleAssistant,
		Content:   finalContent,
		CreatedAt: time.Now(),
	}
	if err := r.store.AppendMessage(ctx, finalMsg); err != nil {
		return fmt.Errorf("append final message: %w", err)
	}
	session.MessageCount++

	confidence := 0.5
	if toolCalls > 0 {
		confidence += 0.4 * (float64(toolSuccesses) / float64(toolCalls))
	}

	if len(resolutionPath) > 0 {
		path := &models.ResolutionPath{
			SessionID:     sessionID,
			ToolSequence:  resolutionPath,
			WasSuccessful: toolSuccesses == toolCalls,
			RecordedAt:    time.Now(),
		}
		if err := r.store.AddResolutionPath(ctx, path); err != nil {
			r.opts.Logger.Warn("failed to persist resolution path", "error", err, "run_id", observability.GetRunID(ctx))
		}
	}

	if err := r.store.UpdateSession(ctx, session); err != nil {
		return fmt.Errorf("update session: %w", err)
	}

	out <- &ResponseChunk{Done: true, Confidence: confidence}
	return nil
}

type completionResult struct {
	text      string
	toolCalls []models.ToolCall
}

// complete invokes the router, streaming text chunks out as they
// arrive, and records the llm-call (and, on fallback, fallback)
// analytics events once the call finishes.
func (r *Runtime) complete(ctx context.Context, session *models.Session, messages []CompletionMessage, tools []Tool, choice ToolChoice, out chan<- *ResponseChunk) (*completionResult, error) {
	req := &CompletionRequest{
		System:     r.defaultSystem,
		Messages:   messages,
		Tools:      tools,
		MaxTokens:  4096,
		ToolChoice: choice,
	}

	decision, err := r.router.Select(ctx, req)
	if err != nil {
		return nil, err
	}

	if session.LLMBackend == "" {
		session.LLMBackend = decision.ProviderName
	}

	if decision.Fallback {
		session.HadFallback = true
		r.opts.Logger.Info("llm fallback",
			"session_id", session.ID, "run_id", observability.GetRunID(ctx),
			"from", decision.FallbackFrom, "to", decision.ProviderName, "reason", decision.Reason)
	}

	start := time.Now()
	stream, err := decision.Provider.Complete(ctx, req)
	if err != nil {
		r.router.MarkFailed(decision.ProviderName)
		return nil, err
	}

	var result completionResult
	var inputTokens, outputTokens int
	for chunk := range stream {
		if chunk.Error != nil {
			r.router.MarkFailed(decision.ProviderName)
			return nil, chunk.Error
		}
		if chunk.Text != "" {
			result.text += chunk.Text
			out <- &ResponseChunk{Text: chunk.Text}
		}
		if chunk.ToolCall != nil {
			result.toolCalls = append(result.toolCalls, *chunk.ToolCall)
		}
		if chunk.Done {
			inputTokens = chunk.InputTokens
			outputTokens = chunk.OutputTokens
		}
	}
	elapsed := time.Since(start)

	model := req.Model
	if model == "" {
		model = decision.Provider.DefaultModel()
	}
	cost := pricing.Estimate(decision.ProviderName, model, inputTokens, outputTokens)

	session.ModelName = model
	session.TotalPromptTokens += inputTokens
	session.TotalCompletionTokens += outputTokens
	session.TotalLLMTimeMs += elapsed.Milliseconds()
	session.EstimatedCostUSD += cost

	event := &models.Event{
		EventID:          uuid.NewString(),
		SessionID:        session.ID,
		EventType:        models.EventLLMCall,
		Timestamp:        start,
		DurationMs:       elapsed.Milliseconds(),
		PromptTokens:     inputTokens,
		CompletionTokens: outputTokens,
		Metadata: map[string]any{
			"provider":           decision.ProviderName,
			"model":              model,
			"estimated_cost_usd": cost,
		},
	}
	if err := r.store.AddEvent(ctx, event); err != nil {
		r.opts.Logger.Warn("failed to persist llm-call event", "error", err)
	}

	return &result, nil
}

// packMessages loads the session's full message log and converts it
// to the provider-neutral completion message shape.
func (r *Runtime) packMessages(ctx context.Context, sessionID string) ([]CompletionMessage, error) {
	history, err := r.store.GetMessages(ctx, sessionID)
	if err != nil {
		return nil, err
	}
	messages := make([]CompletionMessage, 0, len(history))
	for _, msg := range history {
		switch msg.Role {
		case models.RoleSystem:
			continue // carried separately as CompletionRequest.System
		case models.RoleTool:
			messages = append(messages, CompletionMessage{
				Role: string(models.RoleTool),
				ToolResults: []models.ToolResult{{
					ToolCallID: msg.ToolCallID,
					ToolName:   msg.ToolName,
					Content:    msg.Content,
					Success:    true,
				}},
			})
		default:
			messages = append(messages, CompletionMessage{
				Role:      string(msg.Role),
				Content:   msg.Content,
				ToolCalls: msg.ToolCalls,
			})
		}
	}
	return messages, nil
}

