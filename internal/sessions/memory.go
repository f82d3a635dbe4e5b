package sessions

import (
	"context"
	"errors"
	"sort"
	"sync"

	"github.com/techtime/deskaide/pkg/models"
)

// MemoryStore is an in-memory Store implementation for tests and
// ephemeral local runs. Aggregate queries are computed by scanning
// the in-memory slices rather than SQL, but follow the exact
// arithmetic the SQLite store's queries implement.
type MemoryStore struct {
	mu              sync.RWMutex
	sessions        map[string]*models.Session
	messages        map[string][]*models.Message
	events          map[string][]*models.Event
	toolEvents      map[string][]*models.ToolEvent
	feedback        map[string][]*models.Feedback
	resolutionPaths map[string][]*models.ResolutionPath
}

// NewMemoryStore creates a new in-memory session store.
func NewMemoryStore() *MemoryStore {
	return &MemoryStore{
		sessions:        map[string]*models.Session{},
		messages:        map[string][]*models.Message{},
		events:          map[string][]*models.Event{},
		toolEvents:      map[string][]*models.ToolEvent{},
		feedback:        map[string][]*models.Feedback{},
		resolutionPaths: map[string][]*models.ResolutionPath{},
	}
}

func (m *MemoryStore) CreateSession(ctx context.Context, session *models.Session) error {
	return m.UpdateSession(ctx, session)
}

func (m *MemoryStore) UpdateSession(ctx context.Context, session *models.Session) error {
	if session == nil {
		return errors.New("session is required")
	}
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *session
	m.sessions[session.ID] = &clone
	return nil
}

func (m *MemoryStore) GetSession(ctx context.Context, id string) (*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	sess, ok := m.sessions[id]
	if !ok {
		return nil, errors.New("session not found: " + id)
	}
	clone := *sess
	return &clone, nil
}

func (m *MemoryStore) ListSessions(ctx context.Context, opts SessionListOptions) ([]*models.Session, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var out []*models.Session
	for _, sess := range m.sessions {
		if opts.StartDate != nil && sess.StartedAt.Before(*opts.StartDate) {
			continue
		}
		if opts.EndDate != nil && sess.StartedAt.After(*opts.EndDate) {
			continue
		}
		if opts.Outcome != "" && sess.Outcome != opts.Outcome {
			continue
		}
		if opts.Category != "" && sess.IssueCategory != opts.Category {
			continue
		}
		clone := *sess
		out = append(out, &clone)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].StartedAt.After(out[j].StartedAt) })

	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}
	if opts.Offset >= len(out) {
		return nil, nil
	}
	end := opts.Offset + limit
	if end > len(out) {
		end = len(out)
	}
	return out[opts.Offset:end], nil
}

func (m *MemoryStore) AppendMessage(ctx context.Context, msg *models.Message) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *msg
	m.messages[msg.SessionID] = append(m.messages[msg.SessionID], &clone)
	return nil
}

func (m *MemoryStore) GetMessages(ctx context.Context, sessionID string) ([]*models.Message, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*models.Message{}, m.messages[sessionID]...), nil
}

func (m *MemoryStore) AddEvent(ctx context.Context, event *models.Event) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *event
	m.events[event.SessionID] = append(m.events[event.SessionID], &clone)
	return nil
}

func (m *MemoryStore) GetEvents(ctx context.Context, sessionID string) ([]*models.Event, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*models.Event{}, m.events[sessionID]...), nil
}

func (m *MemoryStore) AddToolEvent(ctx context.Context, event *models.ToolEvent) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *event
	m.toolEvents[event.SessionID] = append(m.toolEvents[event.SessionID], &clone)
	return nil
}

func (m *MemoryStore) GetToolEvents(ctx context.Context, sessionID string) ([]*models.ToolEvent, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*models.ToolEvent{}, m.toolEvents[sessionID]...), nil
}

func (m *MemoryStore) AddFeedback(ctx context.Context, feedback *models.Feedback) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *feedback
	m.feedback[feedback.SessionID] = append(m.feedback[feedback.SessionID], &clone)
	return nil
}

func (m *MemoryStore) GetFeedback(ctx context.Context, sessionID string) ([]*models.Feedback, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*models.Feedback{}, m.feedback[sessionID]...), nil
}

func (m *MemoryStore) AddResolutionPath(ctx context.Context, path *models.ResolutionPath) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	clone := *path
	m.resolutionPaths[path.SessionID] = append(m.resolutionPaths[path.SessionID], &clone)
	return nil
}

func (m *MemoryStore) GetResolutionPaths(ctx context.Context, sessionID string) ([]*models.ResolutionPath, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return append([]*models.ResolutionPath{}, m.resolutionPaths[sessionID]...), nil
}

func (m *MemoryStore) GetSessionSummary(ctx context.Context, opts SummaryFilter) (*models.SessionSummary, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var summary models.SessionSummary
	var tokenSum, messageSum, ttrSum float64
	var ttrCount int
	for _, sess := range m.sessions {
		if opts.StartDate != nil && sess.StartedAt.Before(*opts.StartDate) {
			continue
		}
		if opts.EndDate != nil && sess.StartedAt.After(*opts.EndDate) {
			continue
		}
		summary.TotalSessions++
		switch sess.Outcome {
		case models.OutcomeResolved:
			summary.ResolvedCount++
		case models.OutcomeUnresolved:
			summary.UnresolvedCount++
		case models.OutcomeAbandoned:
			summary.AbandonedCount++
		case models.OutcomeInProgress:
			summary.InProgressCount++
		}
		tokenSum += float64(sess.TotalPromptTokens + sess.TotalCompletionTokens)
		messageSum += float64(sess.MessageCount)
		summary.TotalCostUSD += sess.EstimatedCostUSD
		switch sess.LLMBackend {
		case "ollama":
			summary.OllamaSessions++
		case "openai":
			summary.OpenAISessions++
		}
		if sess.HadFallback {
			summary.FallbackCount++
		}
		if sess.Outcome == models.OutcomeResolved && sess.EndedAt != nil {
			ttrSum += sess.TimeToResolution().Seconds()
			ttrCount++
		}
	}
	if summary.TotalSessions > 0 {
		summary.AvgTokensPerSession = tokenSum / float64(summary.TotalSessions)
		summary.AvgMessagesPerSession = messageSum / float64(summary.TotalSessions)
	}
	if ttrCount > 0 {
		summary.AvgTimeToResolutionSeconds = ttrSum / float64(ttrCount)
	}
	return &summary, nil
}

func (m *MemoryStore) GetToolStats(ctx context.Context) ([]models.ToolStats, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	agg := map[string]*models.ToolStats{}
	for _, events := range m.toolEvents {
		for _, ev := range events {
			st, ok := agg[ev.ToolName]
			if !ok {
				st = &models.ToolStats{ToolName: ev.ToolName}
				agg[ev.ToolName] = st
			}
			st.TotalCalls++
			if ev.Success {
				st.SuccessCount++
			} else {
				st.FailureCount++
			}
			st.TotalExecutionTimeMs += ev.ExecutionTimeMs
			if ev.IsRepeated {
				st.LoopOccurrences++
			}
		}
	}
	out := make([]models.ToolStats, 0, len(agg))
	for _, st := range agg {
		if st.TotalCalls > 0 {
			st.AvgExecutionTimeMs = float64(st.TotalExecutionTimeMs) / float64(st.TotalCalls)
		}
		out = append(out, *st)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TotalCalls > out[j].TotalCalls })
	return out, nil
}

func (m *MemoryStore) GetQualityMetrics(ctx context.Context) (*models.QualityMetrics, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	var metrics models.QualityMetrics
	var resolvedMessages float64
	var resolvedCount int
	for _, sess := range m.sessions {
		if sess.Outcome == models.OutcomeResolved {
			resolvedMessages += float64(sess.UserMessageCount)
			resolvedCount++
		}
		if sess.Outcome == models.OutcomeAbandoned {
			metrics.AbandonedSessions++
		}
	}
	if resolvedCount > 0 {
		metrics.AvgMessagesToResolution = resolvedMessages / float64(resolvedCount)
	}
	if len(m.sessions) > 0 {
		metrics.DropOffRate = (float64(metrics.AbandonedSessions) / float64(len(m.sessions))) * 100
	}

	loopedSessions := map[string]bool{}
	for sessionID, events := range m.toolEvents {
		for _, ev := range events {
			if ev.IsRepeated {
				loopedSessions[sessionID] = true
				metrics.TotalLoopOccurrences++
			}
		}
	}
	metrics.SessionsWithLoops = len(loopedSessions)
	return &metrics, nil
}

func (m *MemoryStore) GetCommonResolutionPaths(ctx context.Context, limit int) ([]models.ResolutionPathCount, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	counts := map[string]int{}
	seqByKey := map[string][]string{}
	for _, paths := range m.resolutionPaths {
		for _, path := range paths {
			if !path.WasSuccessful {
				continue
			}
			key := joinSequence(path.ToolSequence)
			counts[key]++
			seqByKey[key] = path.ToolSequence
		}
	}
	type entry struct {
		seq   []string
		count int
	}
	entries := make([]entry, 0, len(counts))
	for key, count := range counts {
		entries = append(entries, entry{seq: seqByKey[key], count: count})
	}
	sort.Slice(entries, func(i, j int) bool { return entries[i].count > entries[j].count })

	if limit <= 0 {
		limit = 10
	}
	if limit > len(entries) {
		limit = len(entries)
	}
	out := make([]models.ResolutionPathCount, 0, limit)
	for _, e := range entries[:limit] {
		out = append(out, models.ResolutionPathCount{ToolSequence: e.seq, Count: e.count})
	}
	return out, nil
}

func (m *MemoryStore) GetIssueCategoryBreakdown(ctx context.Context) (map[models.IssueCategory]int, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make(map[models.IssueCategory]int)
	for _, sess := range m.sessions {
		out[sess.IssueCategory]++
	}
	return out, nil
}

func (m *MemoryStore) GetCostByPeriod(ctx context.Context, bucket CostBucket) ([]models.CostPeriod, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()

	layout := "2006-01-02"
	switch bucket {
	case CostByWeek:
		layout = "2006-W01"
	case CostByMonth:
		layout = "2006-01"
	}

	agg := map[string]*models.CostPeriod{}
	for _, sess := range m.sessions {
		if sess.LLMBackend != "openai" {
			continue
		}
		period := sess.StartedAt.Format(layout)
		cp, ok := agg[period]
		if !ok {
			cp = &models.CostPeriod{Period: period}
			agg[period] = cp
		}
		cp.TotalCost += sess.EstimatedCostUSD
		cp.TotalTokens += sess.TotalPromptTokens + sess.TotalCompletionTokens
		cp.SessionCount++
	}
	out := make([]models.CostPeriod, 0, len(agg))
	for _, cp := range agg {
		out = append(out, *cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Period < out[j].Period })
	return out, nil
}

func (m *MemoryStore) Close() error { return nil }

func joinSequence(seq []string) string {
	out := ""
	for i, s := range seq {
		if i > 0 {
			out += ">"
		}
		out += s
	}
	return out
}
