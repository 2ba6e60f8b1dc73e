package lexicon

import (
	"strings"

	"sheetlens/internal/model"
)

// ClassifyRisk grades free text by tiered keyword matching. Tiers are
// evaluated Critical, High, Medium; the first tier with any matching term
// wins, so "blocked" outranks "budget overrun" in the same sentence.
// Text matching no tier is Low.
func ClassifyRisk(text string) model.RiskLevel {
	lower := strings.ToLower(text)

	for _, term := range criticalTerms {
		if strings.Contains(lower, term) {
			return model.RiskCritical
		}
	}
	for _, term := range highTerms {
		if strings.Contains(lower, term) {
			return model.RiskHigh
		}
	}
	for _, term := range mediumTerms {
		if strings.Contains(lower, term) {
			return model.RiskMedium
		}
	}
	return model.RiskLow
}
