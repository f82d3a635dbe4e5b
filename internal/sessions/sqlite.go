package sessions

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"
	"time"

	_ "github.com/mattn/go-sqlite3"
	"github.com/techtime/deskaide/pkg/models"
)

// SQLiteStore is the embedded, file-backed session/analytics store.
// Schema and aggregate queries are a direct port of the original
// analytics store's SQLite schema; placeholders and the driver name
// are the only things that differ from the prepared-statement style
// this package used against Cockroach/Postgres.
type SQLiteStore struct {
	db *sql.DB
}

// NewSQLiteStore opens (creating if absent) the SQLite database at
// path and ensures its schema exists.
func NewSQLiteStore(path string) (*SQLiteStore, error) {
	db, err := sql.Open("sqlite3", path+"?_journal_mode=WAL&_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open sqlite store: %w", err)
	}
	db.SetMaxOpenConns(1) // sqlite3 driver is not safe for concurrent writers

	store := &SQLiteStore{db: db}
	if err := store.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("migrate sqlite store: %w", err)
	}
	return store, nil
}

func (s *SQLiteStore) migrate() error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS sessions (
			session_id TEXT PRIMARY KEY,
			started_at TEXT NOT NULL,
			ended_at TEXT,
			total_prompt_tokens INTEGER DEFAULT 0,
			total_completion_tokens INTEGER DEFAULT 0,
			outcome TEXT DEFAULT 'in_progress',
			feedback_score INTEGER,
			feedback_comment TEXT,
			issue_category TEXT DEFAULT 'unknown',
			osi_layer_resolved INTEGER,
			message_count INTEGER DEFAULT 0,
			user_message_count INTEGER DEFAULT 0,
			tool_call_count INTEGER DEFAULT 0,
			llm_backend TEXT,
			model_name TEXT,
			had_fallback INTEGER DEFAULT 0,
			estimated_cost_usd REAL DEFAULT 0.0,
			total_llm_time_ms INTEGER DEFAULT 0,
			total_tool_time_ms INTEGER DEFAULT 0,
			preview TEXT
		)`,
		`CREATE TABLE IF NOT EXISTS messages (
			id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			role TEXT NOT NULL,
			content TEXT,
			tool_calls TEXT,
			tool_call_id TEXT,
			tool_name TEXT,
			created_at TEXT NOT NULL,
			FOREIGN KEY (session_id) REFERENCES sessions(session_id)
		)`,
		`CREATE TABLE IF NOT EXISTS events (
			event_id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			event_type TEXT NOT NULL,
			timestamp TEXT NOT NULL,
			duration_ms INTEGER,
			prompt_tokens INTEGER DEFAULT 0,
			completion_tokens INTEGER DEFAULT 0,
			metadata TEXT,
			FOREIGN KEY (session_id) REFERENCES sessions(session_id)
		)`,
		`CREATE TABLE IF NOT EXISTS tool_events (
			event_id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			timestamp TEXT NOT NULL,
			tool_name TEXT NOT NULL,
			execution_time_ms INTEGER DEFAULT 0,
			success INTEGER DEFAULT 1,
			error_message TEXT,
			is_repeated INTEGER DEFAULT 0,
			consecutive_count INTEGER DEFAULT 1,
			arguments TEXT,
			result_summary TEXT,
			FOREIGN KEY (session_id) REFERENCES sessions(session_id)
		)`,
		`CREATE TABLE IF NOT EXISTS feedback (
			feedback_id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			score INTEGER NOT NULL,
			comment TEXT,
			timestamp TEXT NOT NULL,
			source TEXT DEFAULT 'user',
			FOREIGN KEY (session_id) REFERENCES sessions(session_id)
		)`,
		`CREATE TABLE IF NOT EXISTS resolution_paths (
			path_id TEXT PRIMARY KEY,
			session_id TEXT NOT NULL,
			tool_sequence TEXT NOT NULL,
			was_successful INTEGER DEFAULT 0,
			created_at TEXT NOT NULL,
			FOREIGN KEY (session_id) REFERENCES sessions(session_id)
		)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_started_at ON sessions(started_at)`,
		`CREATE INDEX IF NOT EXISTS idx_sessions_outcome ON sessions(outcome)`,
		`CREATE INDEX IF NOT EXISTS idx_messages_session_id ON messages(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_events_session_id ON events(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_tool_events_session_id ON tool_events(session_id)`,
		`CREATE INDEX IF NOT EXISTS idx_tool_events_tool_name ON tool_events(tool_name)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.Exec(stmt); err != nil {
			return fmt.Errorf("exec schema statement: %w", err)
		}
	}
	return nil
}

// Close closes the underlying database handle.
func (s *SQLiteStore) Close() error {
	return s.db.Close()
}

func nullTime(t *time.Time) any {
	if t == nil {
		return nil
	}
	return t.Format(time.RFC3339Nano)
}

func nullInt(p *int) any {
	if p == nil {
		return nil
	}
	return *p
}

// CreateSession inserts a new session row.
func (s *SQLiteStore) CreateSession(ctx context.Context, session *models.Session) error {
	return s.UpdateSession(ctx, session)
}

// UpdateSession upserts the full session row (INSERT OR REPLACE,
// matching the original analytics store's save_session semantics).
func (s *SQLiteStore) UpdateSession(ctx context.Context, session *models.Session) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO sessions (
			session_id, started_at, ended_at, total_prompt_tokens,
			total_completion_tokens, outcome, feedback_score, feedback_comment,
			issue_category, osi_layer_resolved, message_count, user_message_count,
			tool_call_count, llm_backend, model_name, had_fallback,
			estimated_cost_usd, total_llm_time_ms, total_tool_time_ms, preview
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		session.ID,
		session.StartedAt.Format(time.RFC3339Nano),
		nullTime(session.EndedAt),
		session.TotalPromptTokens,
		session.TotalCompletionTokens,
		string(session.Outcome),
		nullInt(session.FeedbackScore),
		session.FeedbackComment,
		string(session.IssueCategory),
		nullInt(session.OSILayerResolved),
		session.MessageCount,
		session.UserMessageCount,
		session.ToolCallCount,
		session.LLMBackend,
		session.ModelName,
		boolToInt(session.HadFallback),
		session.EstimatedCostUSD,
		session.TotalLLMTimeMs,
		session.TotalToolTimeMs,
		session.Preview,
	)
	return err
}

// GetSession fetches a single session by id.
func (s *SQLiteStore) GetSession(ctx context.Context, id string) (*models.Session, error) {
	row := s.db.QueryRowContext(ctx, `
		SELECT session_id, started_at, ended_at, total_prompt_tokens,
			total_completion_tokens, outcome, feedback_score, feedback_comment,
			issue_category, osi_layer_resolved, message_count, user_message_count,
			tool_call_count, llm_backend, model_name, had_fallback,
			estimated_cost_usd, total_llm_time_ms, total_tool_time_ms, preview
		FROM sessions WHERE session_id = ?`, id)
	return scanSession(row)
}

func scanSession(row *sql.Row) (*models.Session, error) {
	var (
		sess                                          models.Session
		startedAt                                     string
		endedAt                                       sql.NullString
		feedbackScore, osiLayer                        sql.NullInt64
		hadFallback                                   int
	)
	err := row.Scan(
		&sess.ID, &startedAt, &endedAt, &sess.TotalPromptTokens,
		&sess.TotalCompletionTokens, &sess.Outcome, &feedbackScore, &sess.FeedbackComment,
		&sess.IssueCategory, &osiLayer, &sess.MessageCount, &sess.UserMessageCount,
		&sess.ToolCallCount, &sess.LLMBackend, &sess.ModelName, &hadFallback,
		&sess.EstimatedCostUSD, &sess.TotalLLMTimeMs, &sess.TotalToolTimeMs, &sess.Preview,
	)
	if err != nil {
		return nil, err
	}
	sess.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)
	if endedAt.Valid {
		t, _ := time.Parse(time.RFC3339Nano, endedAt.String)
		sess.EndedAt = &t
	}
	if feedbackScore.Valid {
		v := int(feedbackScore.Int64)
		sess.FeedbackScore = &v
	}
	if osiLayer.Valid {
		v := int(osiLayer.Int64)
		sess.OSILayerResolved = &v
	}
	sess.HadFallback = hadFallback != 0
	return &sess, nil
}

// ListSessions lists sessions matching opts, most recently started first.
func (s *SQLiteStore) ListSessions(ctx context.Context, opts SessionListOptions) ([]*models.Session, error) {
	query := `SELECT session_id, started_at, ended_at, total_prompt_tokens,
		total_completion_tokens, outcome, feedback_score, feedback_comment,
		issue_category, osi_layer_resolved, message_count, user_message_count,
		tool_call_count, llm_backend, model_name, had_fallback,
		estimated_cost_usd, total_llm_time_ms, total_tool_time_ms, preview
		FROM sessions WHERE 1=1`
	var args []any
	if opts.StartDate != nil {
		query += " AND started_at >= ?"
		args = append(args, opts.StartDate.Format(time.RFC3339Nano))
	}
	if opts.EndDate != nil {
		query += " AND started_at <= ?"
		args = append(args, opts.EndDate.Format(time.RFC3339Nano))
	}
	if opts.Outcome != "" {
		query += " AND outcome = ?"
		args = append(args, string(opts.Outcome))
	}
	if opts.Category != "" {
		query += " AND issue_category = ?"
		args = append(args, string(opts.Category))
	}
	query += " ORDER BY started_at DESC"
	limit := opts.Limit
	if limit <= 0 {
		limit = 100
	}
	query += " LIMIT ? OFFSET ?"
	args = append(args, limit, opts.Offset)

	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Session
	for rows.Next() {
		var (
			sess                    models.Session
			startedAt               string
			endedAt                 sql.NullString
			feedbackScore, osiLayer sql.NullInt64
			hadFallback             int
		)
		if err := rows.Scan(
			&sess.ID, &startedAt, &endedAt, &sess.TotalPromptTokens,
			&sess.TotalCompletionTokens, &sess.Outcome, &feedbackScore, &sess.FeedbackComment,
			&sess.IssueCategory, &osiLayer, &sess.MessageCount, &sess.UserMessageCount,
			&sess.ToolCallCount, &sess.LLMBackend, &sess.ModelName, &hadFallback,
			&sess.EstimatedCostUSD, &sess.TotalLLMTimeMs, &sess.TotalToolTimeMs, &sess.Preview,
		); err != nil {
			return nil, err
		}
		sess.StartedAt, _ = time.Parse(time.RFC3339Nano, startedAt)
		if endedAt.Valid {
			t, _ := time.Parse(time.RFC3339Nano, endedAt.String)
			sess.EndedAt = &t
		}
		if feedbackScore.Valid {
			v := int(feedbackScore.Int64)
			sess.FeedbackScore = &v
		}
		if osiLayer.Valid {
			v := int(osiLayer.Int64)
			sess.OSILayerResolved = &v
		}
		sess.HadFallback = hadFallback != 0
		out = append(out, &sess)
	}
	return out, rows.Err()
}

// AppendMessage inserts one message into the session's log.
func (s *SQLiteStore) AppendMessage(ctx context.Context, msg *models.Message) error {
	toolCallsJSON, err := json.Marshal(msg.ToolCalls)
	if err != nil {
		return fmt.Errorf("marshal tool calls: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT INTO messages (id, session_id, role, content, tool_calls, tool_call_id, tool_name, created_at)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, msg.ID, msg.SessionID, string(msg.Role), msg.Content, string(toolCallsJSON),
		msg.ToolCallID, msg.ToolName, msg.CreatedAt.Format(time.RFC3339Nano))
	return err
}

// GetMessages returns a session's message log in insertion order.
func (s *SQLiteStore) GetMessages(ctx context.Context, sessionID string) ([]*models.Message, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT id, session_id, role, content, tool_calls, tool_call_id, tool_name, created_at
		FROM messages WHERE session_id = ? ORDER BY created_at ASC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Message
	for rows.Next() {
		var msg models.Message
		var toolCallsJSON, createdAt string
		if err := rows.Scan(&msg.ID, &msg.SessionID, &msg.Role, &msg.Content,
			&toolCallsJSON, &msg.ToolCallID, &msg.ToolName, &createdAt); err != nil {
			return nil, err
		}
		if toolCallsJSON != "" {
			_ = json.Unmarshal([]byte(toolCallsJSON), &msg.ToolCalls)
		}
		msg.CreatedAt, _ = time.Parse(time.RFC3339Nano, createdAt)
		out = append(out, &msg)
	}
	return out, rows.Err()
}

// AddEvent inserts one analytics event.
func (s *SQLiteStore) AddEvent(ctx context.Context, event *models.Event) error {
	metaJSON, err := json.Marshal(event.Metadata)
	if err != nil {
		return fmt.Errorf("marshal event metadata: %w", err)
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO events (event_id, session_id, event_type, timestamp, duration_ms, prompt_tokens, completion_tokens, metadata)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
	`, event.EventID, event.SessionID, string(event.EventType), event.Timestamp.Format(time.RFC3339Nano),
		event.DurationMs, event.PromptTokens, event.CompletionTokens, string(metaJSON))
	return err
}

// GetEvents returns a session's analytics events in chronological order.
func (s *SQLiteStore) GetEvents(ctx context.Context, sessionID string) ([]*models.Event, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT event_id, session_id, event_type, timestamp, duration_ms, prompt_tokens, completion_tokens, metadata
		FROM events WHERE session_id = ? ORDER BY timestamp ASC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Event
	for rows.Next() {
		var ev models.Event
		var ts, meta string
		if err := rows.Scan(&ev.EventID, &ev.SessionID, &ev.EventType, &ts, &ev.DurationMs,
			&ev.PromptTokens, &ev.CompletionTokens, &meta); err != nil {
			return nil, err
		}
		ev.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
		if meta != "" {
			_ = json.Unmarshal([]byte(meta), &ev.Metadata)
		}
		out = append(out, &ev)
	}
	return out, rows.Err()
}

// AddToolEvent inserts one tool-call analytics event.
func (s *SQLiteStore) AddToolEvent(ctx context.Context, event *models.ToolEvent) error {
	argsJSON, err := json.Marshal(event.Arguments)
	if err != nil {
		return fmt.Errorf("marshal tool event arguments: %w", err)
	}
	eventID := event.EventID
	if eventID == "" {
		eventID = fmt.Sprintf("%s-%d", event.SessionID, event.Timestamp.UnixNano())
	}
	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO tool_events (
			event_id, session_id, timestamp, tool_name, execution_time_ms,
			success, error_message, is_repeated, consecutive_count, arguments, result_summary
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`, eventID, event.SessionID, event.Timestamp.Format(time.RFC3339Nano), event.ToolName,
		event.ExecutionTimeMs, boolToInt(event.Success), event.ErrorMessage,
		boolToInt(event.IsRepeated), event.ConsecutiveCount, string(argsJSON), event.ResultSummary)
	return err
}

// GetToolEvents returns a session's tool-call events in chronological order.
func (s *SQLiteStore) GetToolEvents(ctx context.Context, sessionID string) ([]*models.ToolEvent, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT event_id, session_id, timestamp, tool_name, execution_time_ms, success,
			error_message, is_repeated, consecutive_count, arguments, result_summary
		FROM tool_events WHERE session_id = ? ORDER BY timestamp ASC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.ToolEvent
	for rows.Next() {
		var ev models.ToolEvent
		var ts, args string
		var success, repeated int
		if err := rows.Scan(&ev.EventID, &ev.SessionID, &ts, &ev.ToolName, &ev.ExecutionTimeMs,
			&success, &ev.ErrorMessage, &repeated, &ev.ConsecutiveCount, &args, &ev.ResultSummary); err != nil {
			return nil, err
		}
		ev.Timestamp, _ = time.Parse(time.RFC3339Nano, ts)
		ev.Success = success != 0
		ev.IsRepeated = repeated != 0
		if args != "" {
			_ = json.Unmarshal([]byte(args), &ev.Arguments)
		}
		out = append(out, &ev)
	}
	return out, rows.Err()
}

// AddFeedback inserts one feedback row.
func (s *SQLiteStore) AddFeedback(ctx context.Context, feedback *models.Feedback) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO feedback (feedback_id, session_id, score, comment, timestamp, source)
		VALUES (?, ?, ?, ?, ?, ?)
	`, feedback.FeedbackID, feedback.SessionID, feedback.Score, feedback.Comment,
		feedback.CreatedAt.Format(time.RFC3339Nano), string(feedback.Source))
	return err
}

// GetFeedback returns all feedback recorded for a session.
func (s *SQLiteStore) GetFeedback(ctx context.Context, sessionID string) ([]*models.Feedback, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT feedback_id, session_id, score, comment, timestamp, source
		FROM feedback WHERE session_id = ?`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.Feedback
	for rows.Next() {
		var fb models.Feedback
		var ts string
		if err := rows.Scan(&fb.FeedbackID, &fb.SessionID, &fb.Score, &fb.Comment, &ts, &fb.Source); err != nil {
			return nil, err
		}
		fb.CreatedAt, _ = time.Parse(time.RFC3339Nano, ts)
		out = append(out, &fb)
	}
	return out, rows.Err()
}

// AddResolutionPath inserts one resolution-path row.
func (s *SQLiteStore) AddResolutionPath(ctx context.Context, path *models.ResolutionPath) error {
	seqJSON, err := json.Marshal(path.ToolSequence)
	if err != nil {
		return fmt.Errorf("marshal tool sequence: %w", err)
	}
	pathID := fmt.Sprintf("%s-%d", path.SessionID, path.RecordedAt.UnixNano())
	_, err = s.db.ExecContext(ctx, `
		INSERT OR REPLACE INTO resolution_paths (path_id, session_id, tool_sequence, was_successful, created_at)
		VALUES (?, ?, ?, ?, ?)
	`, pathID, path.SessionID, string(seqJSON), boolToInt(path.WasSuccessful), path.RecordedAt.Format(time.RFC3339Nano))
	return err
}

// GetResolutionPaths returns resolution paths recorded for a session.
func (s *SQLiteStore) GetResolutionPaths(ctx context.Context, sessionID string) ([]*models.ResolutionPath, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT session_id, tool_sequence, was_successful, created_at
		FROM resolution_paths WHERE session_id = ? ORDER BY created_at DESC`, sessionID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []*models.ResolutionPath
	for rows.Next() {
		var path models.ResolutionPath
		var seq, ts string
		var successful int
		if err := rows.Scan(&path.SessionID, &seq, &successful, &ts); err != nil {
			return nil, err
		}
		_ = json.Unmarshal([]byte(seq), &path.ToolSequence)
		path.WasSuccessful = successful != 0
		path.RecordedAt, _ = time.Parse(time.RFC3339Nano, ts)
		out = append(out, &path)
	}
	return out, rows.Err()
}

// GetSessionSummary mirrors the original analytics store's
// get_session_summary: counts by outcome, token/message averages,
// total cost, per-backend session counts, fallback count, and average
// time-to-resolution for resolved sessions (computed via julianday).
func (s *SQLiteStore) GetSessionSummary(ctx context.Context, opts SummaryFilter) (*models.SessionSummary, error) {
	dateFilter := ""
	var args []any
	if opts.StartDate != nil {
		dateFilter += " AND started_at >= ?"
		args = append(args, opts.StartDate.Format(time.RFC3339Nano))
	}
	if opts.EndDate != nil {
		dateFilter += " AND started_at <= ?"
		args = append(args, opts.EndDate.Format(time.RFC3339Nano))
	}

	row := s.db.QueryRowContext(ctx, `
		SELECT
			COUNT(*),
			SUM(CASE WHEN outcome = 'resolved' THEN 1 ELSE 0 END),
			SUM(CASE WHEN outcome = 'unresolved' THEN 1 ELSE 0 END),
			SUM(CASE WHEN outcome = 'abandoned' THEN 1 ELSE 0 END),
			SUM(CASE WHEN outcome = 'in_progress' THEN 1 ELSE 0 END),
			AVG(total_prompt_tokens + total_completion_tokens),
			AVG(message_count),
			SUM(estimated_cost_usd),
			SUM(CASE WHEN llm_backend = 'ollama' THEN 1 ELSE 0 END),
			SUM(CASE WHEN llm_backend = 'openai' THEN 1 ELSE 0 END),
			SUM(had_fallback)
		FROM sessions WHERE 1=1`+dateFilter, args...)

	var summary models.SessionSummary
	var avgTokens, avgMessages, totalCost sql.NullFloat64
	if err := row.Scan(
		&summary.TotalSessions, &summary.ResolvedCount, &summary.UnresolvedCount,
		&summary.AbandonedCount, &summary.InProgressCount, &avgTokens, &avgMessages,
		&totalCost, &summary.OllamaSessions, &summary.OpenAISessions, &summary.FallbackCount,
	); err != nil {
		return nil, err
	}
	summary.AvgTokensPerSession = avgTokens.Float64
	summary.AvgMessagesPerSession = avgMessages.Float64
	summary.TotalCostUSD = totalCost.Float64

	ttrRow := s.db.QueryRowContext(ctx, `
		SELECT AVG((julianday(ended_at) - julianday(started_at)) * 86400)
		FROM sessions WHERE outcome = 'resolved' AND ended_at IS NOT NULL`+dateFilter, args...)
	var avgTTR sql.NullFloat64
	if err := ttrRow.Scan(&avgTTR); err != nil {
		return nil, err
	}
	summary.AvgTimeToResolutionSeconds = avgTTR.Float64
	return &summary, nil
}

// GetToolStats mirrors get_tool_stats.
func (s *SQLiteStore) GetToolStats(ctx context.Context) ([]models.ToolStats, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT tool_name, COUNT(*), SUM(CASE WHEN success = 1 THEN 1 ELSE 0 END),
			SUM(CASE WHEN success = 0 THEN 1 ELSE 0 END), AVG(execution_time_ms),
			SUM(execution_time_ms), SUM(CASE WHEN is_repeated = 1 THEN 1 ELSE 0 END)
		FROM tool_events GROUP BY tool_name ORDER BY COUNT(*) DESC`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ToolStats
	for rows.Next() {
		var st models.ToolStats
		var avgTime sql.NullFloat64
		if err := rows.Scan(&st.ToolName, &st.TotalCalls, &st.SuccessCount, &st.FailureCount,
			&avgTime, &st.TotalExecutionTimeMs, &st.LoopOccurrences); err != nil {
			return nil, err
		}
		st.AvgExecutionTimeMs = avgTime.Float64
		out = append(out, st)
	}
	return out, rows.Err()
}

// GetQualityMetrics mirrors get_quality_metrics.
func (s *SQLiteStore) GetQualityMetrics(ctx context.Context) (*models.QualityMetrics, error) {
	var metrics models.QualityMetrics

	var avgMessages sql.NullFloat64
	if err := s.db.QueryRowContext(ctx,
		`SELECT AVG(user_message_count) FROM sessions WHERE outcome = 'resolved'`,
	).Scan(&avgMessages); err != nil {
		return nil, err
	}
	metrics.AvgMessagesToResolution = avgMessages.Float64

	if err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(DISTINCT session_id), COUNT(*) FROM tool_events WHERE is_repeated = 1`,
	).Scan(&metrics.SessionsWithLoops, &metrics.TotalLoopOccurrences); err != nil {
		return nil, err
	}

	var total, abandoned int
	if err := s.db.QueryRowContext(ctx, `
		SELECT COUNT(*), SUM(CASE WHEN outcome = 'abandoned' THEN 1 ELSE 0 END) FROM sessions`,
	).Scan(&total, &abandoned); err != nil {
		return nil, err
	}
	metrics.AbandonedSessions = abandoned
	if total > 0 {
		metrics.DropOffRate = (float64(abandoned) / float64(total)) * 100
	}
	return &metrics, nil
}

// GetCommonResolutionPaths mirrors get_common_resolution_paths.
func (s *SQLiteStore) GetCommonResolutionPaths(ctx context.Context, limit int) ([]models.ResolutionPathCount, error) {
	if limit <= 0 {
		limit = 10
	}
	rows, err := s.db.QueryContext(ctx, `
		SELECT tool_sequence, COUNT(*) as cnt FROM resolution_paths
		WHERE was_successful = 1 GROUP BY tool_sequence ORDER BY cnt DESC LIMIT ?`, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.ResolutionPathCount
	for rows.Next() {
		var seqJSON string
		var count int
		if err := rows.Scan(&seqJSON, &count); err != nil {
			return nil, err
		}
		var seq []string
		_ = json.Unmarshal([]byte(seqJSON), &seq)
		out = append(out, models.ResolutionPathCount{ToolSequence: seq, Count: count})
	}
	return out, rows.Err()
}

// GetIssueCategoryBreakdown mirrors get_issue_category_breakdown.
func (s *SQLiteStore) GetIssueCategoryBreakdown(ctx context.Context) (map[models.IssueCategory]int, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT issue_category, COUNT(*) FROM sessions GROUP BY issue_category`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make(map[models.IssueCategory]int)
	for rows.Next() {
		var cat string
		var count int
		if err := rows.Scan(&cat, &count); err != nil {
			return nil, err
		}
		out[models.IssueCategory(cat)] = count
	}
	return out, rows.Err()
}

// GetCostByPeriod mirrors get_cost_by_period: OpenAI-backed sessions
// only, bucketed by strftime format per CostBucket.
func (s *SQLiteStore) GetCostByPeriod(ctx context.Context, bucket CostBucket) ([]models.CostPeriod, error) {
	format := "%Y-%m-%d"
	switch bucket {
	case CostByWeek:
		format = "%Y-%W"
	case CostByMonth:
		format = "%Y-%m"
	}

	query := fmt.Sprintf(`
		SELECT strftime('%s', started_at) as period,
			SUM(estimated_cost_usd), SUM(total_prompt_tokens + total_completion_tokens), COUNT(*)
		FROM sessions WHERE llm_backend = 'openai'
		GROUP BY strftime('%s', started_at) ORDER BY period`, format, format)

	rows, err := s.db.QueryContext(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []models.CostPeriod
	for rows.Next() {
		var cp models.CostPeriod
		var cost sql.NullFloat64
		if err := rows.Scan(&cp.Period, &cost, &cp.TotalTokens, &cp.SessionCount); err != nil {
			return nil, err
		}
		cp.TotalCost = cost.Float64
		out = append(out, cp)
	}
	return out, rows.Err()
}

func boolToInt(b bool) int {
	if b {
		return 1
	}
	return 0
}
