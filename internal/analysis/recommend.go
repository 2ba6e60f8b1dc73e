package analysis

import (
	"fmt"
	"strings"

	"sheetlens/internal/model"
)

// maxRecommendations caps the advice list; beyond this the list stops being
// actionable and starts being noise.
const maxRecommendations = 8

// BuildRecommendations derives actionable advice from the assembled record.
// Each rule contributes independently; duplicates are dropped and the list
// is capped.
func BuildRecommendations(rec *model.AnalysisRecord) []string {
	var recommendations []string

	// 1. Risk profile
	counts := rec.CountByLevel()
	if counts[model.RiskCritical] > 0 {
		recommendations = append(recommendations, fmt.Sprintf(
			"Address the %d critical finding(s) first: each one indicates work that cannot proceed as reported.",
			counts[model.RiskCritical]))
	}
	if counts[model.RiskHigh] > 0 {
		recommendations = append(recommendations, fmt.Sprintf(
			"Schedule corrective reviews for the %d high-risk finding(s) before the next reporting cycle.",
			counts[model.RiskHigh]))
	}
	if len(rec.Findings) == 0 && rec.CommentCount > 0 {
		recommendations = append(recommendations,
			"No elevated risks were detected; maintain the current review cadence.")
	}

	// 2. Blockers outrank issues
	if len(rec.Blockers) > 0 {
		recommendations = append(recommendations, fmt.Sprintf(
			"Resolve the %d reported blocker(s); starting with: %s",
			len(rec.Blockers), truncate(rec.Blockers[0], 120)))
	} else if len(rec.Issues) > 0 {
		recommendations = append(recommendations, fmt.Sprintf(
			"Investigate the most frequently raised issue: %s",
			truncate(rec.Issues[0], 120)))
	}

	// 3. Completion
	if len(rec.Progress) > 0 && rec.OverallCompletion < 50 {
		recommendations = append(recommendations, fmt.Sprintf(
			"Overall completion is %.2f%%; review deliverables marked Not Started for scheduling slippage.",
			rec.OverallCompletion))
	}

	// 4. Sentiment
	if rec.CommentCount > 0 && rec.SentimentAverage < -0.3 {
		recommendations = append(recommendations, fmt.Sprintf(
			"Commentary tone is notably negative (%.2f average); follow up with the reporting organizations directly.",
			rec.SentimentAverage))
	}

	// 5. Entities needing attention: most negative first, already sorted.
	for _, e := range rec.Entities {
		if e.TopRisk >= model.RiskHigh {
			recommendations = append(recommendations, fmt.Sprintf(
				"Prioritize outreach to %s: %s risk with %d related comment(s).",
				e.Entity, e.TopRisk, e.Comments))
			break
		}
	}

	return dedupe(recommendations, maxRecommendations)
}

func dedupe(items []string, limit int) []string {
	seen := make(map[string]bool, len(items))
	var unique []string
	for _, item := range items {
		key := strings.ToLower(strings.TrimSpace(item))
		if key == "" || seen[key] {
			continue
		}
		seen[key] = true
		unique = append(unique, item)
		if len(unique) == limit {
			break
		}
	}
	return unique
}

func truncate(s string, max int) string {
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
