package model

import "time"

// Telemetry is the per-run provider call accounting. Degraded runs still
// succeed; these counts make the degradation observable.
type Telemetry struct {
	Attempted int64 `json:"attempted"`
	Succeeded int64 `json:"succeeded"`
	Failed    int64 `json:"failed"`
	FellBack  int64 `json:"fell_back"`
}

// EntityInsight is the contextual per-entity rollup: how many comments
// mention the entity, their average sentiment, and the worst risk level
// attributed to it (zero when no finding exists).
type EntityInsight struct {
	Entity    string    `json:"entity"`
	Comments  int       `json:"comments"`
	Sentiment float64   `json:"sentiment"` // average, clamped to [-1,1]
	TopRisk   RiskLevel `json:"top_risk,omitempty"`
}

// AnalysisRecord is the aggregate result of one analysis run. It is
// assembled only after every sub-analysis completes, never published
// partially.
type AnalysisRecord struct {
	RunID      string    `json:"run_id"`
	Provider   string    `json:"provider"`
	File       FileInfo  `json:"file"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`

	CommentCount  int `json:"comment_count"`
	QuestionCount int `json:"question_count"`

	Findings          []RiskFinding    `json:"findings"`
	Progress          []ProgressMetric `json:"progress"`
	OverallCompletion float64          `json:"overall_completion"`

	SentimentAverage float64         `json:"sentiment_average"` // [-1,1]
	Entities         []EntityInsight `json:"entities,omitempty"`

	Issues          []string `json:"issues,omitempty"`
	Blockers        []string `json:"blockers,omitempty"`
	Recommendations []string `json:"recommendations,omitempty"`
	Summary         string   `json:"summary,omitempty"`

	Telemetry Telemetry `json:"telemetry"`
}

// CountByLevel tallies findings per risk level.
func (r *AnalysisRecord) CountByLevel() map[RiskLevel]int {
	counts := make(map[RiskLevel]int, 4)
	for _, f := range r.Findings {
		counts[f.Level]++
	}
	return counts
}

// HighRiskCount returns the number of findings at High or above.
func (r *AnalysisRecord) HighRiskCount() int {
	n := 0
	for _, f := range r.Findings {
		if f.Level >= RiskHigh {
			n++
		}
	}
	return n
}
