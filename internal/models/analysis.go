package models

import (
	"time"

	"github.com/google/uuid"
	"github.com/kjannette/tradedesk-backend/internal/analysis"
)

const (
	SourceStub      = "stub"
	SourceDeepSeek  = "deepseek"
	SourceScheduler = "scheduler"
)

// AnalysisRun is a completed analysis request together with its result.
type AnalysisRun struct {
	ID             uuid.UUID               `json:"id"`
	Source         string                  `json:"source"`
	Symbols        []string                `json:"symbols"`
	TimeRange      analysis.TimeRange      `json:"timeRange"`
	Summary        string                  `json:"summary"`
	Insights       []string                `json:"insights"`
	Recommendation analysis.Recommendation `json:"recommendation"`
	Confidence     float64                 `json:"confidence"`
	DurationMillis int64                   `json:"durationMs"`
	CreatedAt      time.Time               `json:"createdAt"`
}

func NewAnalysisRun(req analysis.Request, resp *analysis.Response, source string, started time.Time) *AnalysisRun {
	now := time.Now()
	return &AnalysisRun{
		ID:             uuid.New(),
		Source:         source,
		Symbols:        append([]string(nil), req.Symbols...),
		TimeRange:      req.TimeRange,
		Summary:        resp.Summary,
		Insights:       append([]string(nil), resp.Insights...),
		Recommendation: resp.Recommendation,
		Confidence:     resp.Confidence,
		DurationMillis: now.Sub(started).Milliseconds(),
		CreatedAt:      now,
	}
}

// Actionable reports whether the run recommends a position change with at
// least minConfidence.
func (r *AnalysisRun) Actionable(minConfidence float64) bool {
	return r.Recommendation != analysis.Hold && r.Confidence >= minConfidence
}
