// Package sessions implements the session/message/analytics substrate:
// conversation persistence plus the aggregate queries the analytics
// CLI surfaces (session summaries, tool stats, quality metrics, cost
// by period, common resolution paths).
package sessions

import (
	"context"
	"time"

	"github.com/techtime/deskaide/pkg/models"
)

// Store is the interface for session, message, and analytics
// persistence. A single session is only ever mutated from within its
// own critical section — see Runtime.lockSession in package agent —
// so implementations need not serialize writes internally beyond what
// the underlying driver already guarantees.
type Store interface {
	CreateSession(ctx context.Context, session *models.Session) error
	GetSession(ctx context.Context, id string) (*models.Session, error)
	UpdateSession(ctx context.Context, session *models.Session) error
	ListSessions(ctx context.Context, opts SessionListOptions) ([]*models.Session, error)

	AppendMessage(ctx context.Context, msg *models.Message) error
	GetMessages(ctx context.Context, sessionID string) ([]*models.Message, error)

	AddEvent(ctx context.Context, event *models.Event) error
	GetEvents(ctx context.Context, sessionID string) ([]*models.Event, error)

	AddToolEvent(ctx context.Context, event *models.ToolEvent) error
	GetToolEvents(ctx context.Context, sessionID string) ([]*models.ToolEvent, error)

	AddFeedback(ctx context.Context, feedback *models.Feedback) error
	GetFeedback(ctx context.Context, sessionID string) ([]*models.Feedback, error)

	AddResolutionPath(ctx context.Context, path *models.ResolutionPath) error
	GetResolutionPaths(ctx context.Context, sessionID string) ([]*models.ResolutionPath, error)

	// GetSessionSummary aggregates outcome counts, token/time/cost
	// averages, and fallback counts across sessions matching opts.
	GetSessionSummary(ctx context.Context, opts SummaryFilter) (*models.SessionSummary, error)
	// GetToolStats aggregates per-tool call counts, success/failure,
	// execution time, and loop occurrences.
	GetToolStats(ctx context.Context) ([]models.ToolStats, error)
	// GetQualityMetrics aggregates resolution efficiency: average
	// messages to resolution, sessions with repeated-tool loops, and
	// the abandoned-session drop-off rate.
	GetQualityMetrics(ctx context.Context) (*models.QualityMetrics, error)
	// GetCommonResolutionPaths returns the most frequent tool
	// sequences, most common first.
	GetCommonResolutionPaths(ctx context.Context, limit int) ([]models.ResolutionPathCount, error)
	// GetIssueCategoryBreakdown counts sessions per issue category.
	GetIssueCategoryBreakdown(ctx context.Context) (map[models.IssueCategory]int, error)
	// GetCostByPeriod buckets cost/tokens/session-count by day, week,
	// or month.
	GetCostByPeriod(ctx context.Context, bucket CostBucket) ([]models.CostPeriod, error)

	Close() error
}

// CostBucket is the time-bucketing granularity for GetCostByPeriod.
type CostBucket string

const (
	CostByDay   CostBucket = "day"
	CostByWeek  CostBucket = "week"
	CostByMonth CostBucket = "month"
)

// SessionListOptions filters ListSessions.
type SessionListOptions struct {
	StartDate *time.Time
	EndDate   *time.Time
	Outcome   models.SessionOutcome
	Category  models.IssueCategory
	Limit     int
	Offset    int
}

// SummaryFilter narrows GetSessionSummary to a date range.
type SummaryFilter struct {
	StartDate *time.Time
	EndDate   *time.Time
}
