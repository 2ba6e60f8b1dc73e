package model

// ProgressStatus buckets a group's completion state.
type ProgressStatus string

const (
	StatusNotStarted ProgressStatus = "Not Started"
	StatusInProgress ProgressStatus = "In Progress"
	StatusCompleted  ProgressStatus = "Completed"
	StatusBlocked    ProgressStatus = "Blocked"
	StatusOnHold     ProgressStatus = "On Hold"
)

// ProgressMetric is the affirmative-answer ratio for one deliverable group.
// YesCount + NoCount always equals TotalQuestions.
type ProgressMetric struct {
	GroupKey       string         `json:"group_key"`
	YesCount       int            `json:"yes_count"`
	NoCount        int            `json:"no_count"`
	TotalQuestions int            `json:"total_questions"`
	Completion     float64        `json:"completion"` // percentage, 2 decimals
	Status         ProgressStatus `json:"status"`
}
