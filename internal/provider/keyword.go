package provider

import (
	"context"
	"fmt"

	"sheetlens/internal/lexicon"
	"sheetlens/internal/model"
)

// KeywordProvider answers every operation from the lexicon with no network
// call. It is both a first-class provider (fast mode) and the deterministic
// fallback substituted when an AI call fails.
type KeywordProvider struct {
	scorer   *lexicon.Scorer
	maxTexts int
}

// NewKeywordProvider creates a keyword provider using the static vocabulary.
func NewKeywordProvider(config Config) *KeywordProvider {
	return &KeywordProvider{
		scorer:   lexicon.NewScorer(),
		maxTexts: config.MaxFilterTexts,
	}
}

// NewKeywordProviderWithScorer creates a keyword provider that scores with
// the given scorer, typically one carrying a learned vocabulary.
func NewKeywordProviderWithScorer(scorer *lexicon.Scorer, maxTexts int) *KeywordProvider {
	return &KeywordProvider{scorer: scorer, maxTexts: maxTexts}
}

// Name returns the provider name.
func (p *KeywordProvider) Name() string { return "keyword" }

// RequiresPacing reports that local classification needs no spacing.
func (p *KeywordProvider) RequiresPacing() bool { return false }

// IsAvailable always succeeds: there is nothing to reach.
func (p *KeywordProvider) IsAvailable(ctx context.Context) bool { return true }

// ClassifyRisk grades the comment with the tiered keyword classifier.
func (p *KeywordProvider) ClassifyRisk(ctx context.Context, text string) (model.RiskLevel, error) {
	return lexicon.ClassifyRisk(text), nil
}

// ScoreSentiment rates the comment with the vocabulary scorer.
func (p *KeywordProvider) ScoreSentiment(ctx context.Context, text string) (float64, error) {
	return p.scorer.Score(text), nil
}

func (p *KeywordProvider) ExtractIssues(texts []string) []string {
	return filterByMarkers(texts, issueMarkers, p.maxTexts)
}

func (p *KeywordProvider) ExtractBlockers(texts []string) []string {
	return filterByMarkers(texts, blockerMarkers, p.maxTexts)
}

// mitigationByLevel is the canned fallback advice per severity.
var mitigationByLevel = map[model.RiskLevel]string{
	model.RiskCritical: "Escalate immediately to the program lead, identify the blocking dependency, and agree an unblock plan with daily check-ins until resolved.",
	model.RiskHigh:     "Review scope, budget, and staffing for this item with stakeholders and put a corrective action plan with named owners and dates in place.",
	model.RiskMedium:   "Record the concern in the risk register, assign a follow-up owner, and revisit before the next reporting cycle.",
	model.RiskLow:      "No immediate action required; keep under routine review.",
}

// GenerateMitigation returns canned advice for the severity level.
func (p *KeywordProvider) GenerateMitigation(ctx context.Context, issue string, level model.RiskLevel) (string, error) {
	if m, ok := mitigationByLevel[level]; ok {
		return m, nil
	}
	return mitigationByLevel[model.RiskLow], nil
}

// GenerateSummary assembles a deterministic summary from the record counts.
func (p *KeywordProvider) GenerateSummary(ctx context.Context, rec *model.AnalysisRecord) (string, error) {
	if rec == nil {
		return "", &Error{Provider: "keyword", Op: "summary", Kind: KindParse, Err: fmt.Errorf("nil record")}
	}
	counts := rec.CountByLevel()
	tone := "neutral"
	switch {
	case rec.SentimentAverage > 0.2:
		tone = "positive"
	case rec.SentimentAverage < -0.2:
		tone = "negative"
	}
	return fmt.Sprintf(
		"Analyzed %d comments and %d questionnaire answers. Overall completion stands at %.2f%%. Risk classification produced %d findings (%d critical, %d high, %d medium). The overall tone of commentary is %s with an average sentiment of %.2f.",
		rec.CommentCount, rec.QuestionCount, rec.OverallCompletion,
		len(rec.Findings), counts[model.RiskCritical], counts[model.RiskHigh], counts[model.RiskMedium],
		tone, rec.SentimentAverage), nil
}
