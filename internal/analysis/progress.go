package analysis

import (
	"math"
	"sort"

	"sheetlens/internal/model"
)

// BuildProgress groups questionnaire answers by deliverable and computes the
// affirmative ratio per group. Status is exact: Completed only at 100%,
// Not Started only at 0%.
func BuildProgress(questions []model.QuestionItem) []model.ProgressMetric {
	type tally struct {
		yes, total int
	}
	tallies := make(map[string]*tally)
	var order []string

	for _, q := range questions {
		key := q.GroupKey()
		t, ok := tallies[key]
		if !ok {
			t = &tally{}
			tallies[key] = t
			order = append(order, key)
		}
		t.total++
		if q.IsAffirmative() {
			t.yes++
		}
	}
	sort.Strings(order)

	metrics := make([]model.ProgressMetric, 0, len(order))
	for _, key := range order {
		t := tallies[key]
		completion := round2(float64(t.yes) / float64(t.total) * 100)
		metrics = append(metrics, model.ProgressMetric{
			GroupKey:       key,
			YesCount:       t.yes,
			NoCount:        t.total - t.yes,
			TotalQuestions: t.total,
			Completion:     completion,
			Status:         statusFor(completion),
		})
	}
	return metrics
}

// OverallCompletion is the unweighted mean of the per-group percentages.
func OverallCompletion(metrics []model.ProgressMetric) float64 {
	if len(metrics) == 0 {
		return 0
	}
	sum := 0.0
	for _, m := range metrics {
		sum += m.Completion
	}
	return round2(sum / float64(len(metrics)))
}

func statusFor(completion float64) model.ProgressStatus {
	switch {
	case completion == 100:
		return model.StatusCompleted
	case completion == 0:
		return model.StatusNotStarted
	default:
		return model.StatusInProgress
	}
}

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
