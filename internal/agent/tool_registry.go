package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/techtime/deskaide/pkg/models"
)

// ToolRegistry maintains a name -> Tool map and dispatches tool calls
// on the LLM's behalf. Registration is not safe to race against
// lookups performed mid-loop, so both are guarded by the same mutex.
type ToolRegistry struct {
	mu    sync.RWMutex
	tools map[string]Tool
}

// NewToolRegistry creates a new empty tool registry ready for tool registration.
func NewToolRegistry() *ToolRegistry {
	return &ToolRegistry{
		tools: make(map[string]Tool),
	}
}

// Register adds a tool to the registry by its name.
// If a tool with the same name already exists, it is replaced.
func (r *ToolRegistry) Register(tool Tool) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.tools[tool.Name()] = tool
}

// Unregister removes a tool from the registry by name.
func (r *ToolRegistry) Unregister(name string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.tools, name)
}

// Get returns a tool by name and a boolean indicating if it was found.
func (r *ToolRegistry) Get(name string) (Tool, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tool, ok := r.tools[name]
	return tool, ok
}

// Definitions returns the provider-neutral definition of every
// registered tool. Per-provider serialization happens in toolconv.
func (r *ToolRegistry) Definitions() []models.ToolDefinition {
	r.mu.RLock()
	defer r.mu.RUnlock()
	defs := make([]models.ToolDefinition, 0, len(r.tools))
	for _, t := range r.tools {
		defs = append(defs, models.ToolDefinition{
			Name:        t.Name(),
			Description: t.Description(),
			Parameters:  schemaToParams(t.Schema()),
		})
	}
	return defs
}

// schemaToParams converts a tool's JSON Schema object ({"type":"object",
// "properties": {...}, "required": [...]}) into the ordered ParamSpec
// list toolconv serializes per-provider. Property iteration order is
// not preserved by encoding/json, so tools that care about parameter
// order should keep their schema small enough that it doesn't matter.
func schemaToParams(schema json.RawMessage) []models.ParamSpec {
	var raw struct {
		Properties map[string]struct {
			Type        string   `json:"type"`
			Description string   `json:"description"`
			Default     any      `json:"default"`
			Enum        []string `json:"enum"`
		} `json:"properties"`
		Required []string `json:"required"`
	}
	if err := json.Unmarshal(schema, &raw); err != nil {
		return nil
	}
	required := make(map[string]bool, len(raw.Required))
	for _, name := range raw.Required {
		required[name] = true
	}
	params := make([]models.ParamSpec, 0, len(raw.Properties))
	for name, prop := range raw.Properties {
		params = append(params, models.ParamSpec{
			Name:        name,
			Type:        models.ParamType(prop.Type),
			Description: prop.Description,
			Required:    required[name],
			Default:     prop.Default,
			Enum:        prop.Enum,
		})
	}
	return params
}

// AsLLMTools returns all registered tools as a slice for passing to LLM providers.
func (r *ToolRegistry) AsLLMTools() []Tool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	tools := make([]Tool, 0, len(r.tools))
	for _, t := range r.tools {
		tools = append(tools, t)
	}
	return tools
}

const resultSummaryMaxLen = 200

// Execute dispatches a single tool call: look up the callable, time
// and invoke it, coerce any thrown error into a failed result, and
// return both the tool result and the analytics event describing the
// dispatch. The returned ToolEvent never has a nil error even on
// success (ErrorMessage is simply empty) so the caller can persist it
// unconditionally.
func (r *ToolRegistry) Execute(ctx context.Context, sessionID string, call models.ToolCall) (*models.ToolResult, *models.ToolEvent) {
	r.mu.RLock()
	tool, ok := r.tools[call.Name]
	r.mu.RUnlock()

	if !ok {
		content := fmt.Sprintf("Error: Unknown tool '%s'", call.Name)
		return &models.ToolResult{
				ToolCallID: call.ID,
				ToolName:   call.Name,
				Content:    content,
				Success:    false,
			}, &models.ToolEvent{
				SessionID:       sessionID,
				Timestamp:       time.Now(),
				ToolName:        call.Name,
				ExecutionTimeMs: 0,
				Success:         false,
				ErrorMessage:    content,
			}
	}

	start := time.Now()
	raw, err := tool.Execute(ctx, call.Input)
	elapsed := time.Since(start)

	var args map[string]any
	_ = json.Unmarshal(call.Input, &args)

	result := &models.ToolResult{ToolCallID: call.ID, ToolName: call.Name}
	event := &models.ToolEvent{
		SessionID:       sessionID,
		Timestamp:       start,
		ToolName:        call.Name,
		ExecutionTimeMs: elapsed.Milliseconds(),
		Arguments:       args,
	}

	switch {
	case err != nil:
		msg := fmt.Sprintf("Error executing tool: %s", err.Error())
		result.Content = msg
		result.Success = false
		event.Success = false
		event.ErrorMessage = msg
	case raw != nil && raw.IsError:
		result.Content = raw.Content
		result.Success = false
		event.Success = false
		event.ErrorMessage = raw.Content
	case raw != nil:
		result.Content = raw.Content
		result.Success = true
		event.Success = true
	default:
		result.Content = ""
		result.Success = true
		event.Success = true
	}

	event.ResultSummary = truncate(result.Content, resultSummaryMaxLen)
	return result, event
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n]
}

type sessionLock struct {
	mu   sync.Mutex
	refs int
}

// lockSession serializes writes against a single session while
// allowing unrelated sessions to proceed concurrently. The returned
// func releases the lock and, once the last holder has left,
// reclaims the per-session bookkeeping entry.
func (r *Runtime) lockSession(sessionID string) func() {
	if strings.TrimSpace(sessionID) == "" {
		return func() {}
	}

	r.sessionLocksMu.Lock()
	lock := r.sessionLocks[sessionID]
	if lock == nil {
		lock = &sessionLock{}
		r.sessionLocks[sessionID] = lock
	}
	lock.refs++
	r.sessionLocksMu.Unlock()

	lock.mu.Lock()
	return func() {
		lock.mu.Unlock()
		r.sessionLocksMu.Lock()
		lock.refs--
		if lock.refs <= 0 {
			delete(r.sessionLocks, sessionID)
		}
		r.sessionLocksMu.Unlock()
	}
}
