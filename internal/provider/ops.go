package provider

import (
	"context"
	"errors"
	"strings"

	"sheetlens/internal/model"
)

// completeFunc issues one completion request against a backend and returns
// the reply text. Errors are already *Error values.
type completeFunc func(ctx context.Context, op, system, user string) (string, error)

// ops implements the analysis operations on top of a backend's single
// completion call. Each AI variant embeds it.
type ops struct {
	name     string
	maxTexts int
	complete completeFunc
}

func (o *ops) ClassifyRisk(ctx context.Context, text string) (model.RiskLevel, error) {
	// Blank comments carry no signal; skip the network round trip.
	if strings.TrimSpace(text) == "" {
		return model.RiskLow, nil
	}
	reply, err := o.complete(ctx, "risk", riskSystemPrompt, buildRiskPrompt(text))
	if err != nil {
		return 0, err
	}
	return parseRiskReply(reply), nil
}

func (o *ops) ScoreSentiment(ctx context.Context, text string) (float64, error) {
	if strings.TrimSpace(text) == "" {
		return 0, nil
	}
	reply, err := o.complete(ctx, "sentiment", sentimentSystemPrompt, buildSentimentPrompt(text))
	if err != nil {
		return 0, err
	}
	score, err := parseSentimentReply(reply)
	if err != nil {
		return 0, &Error{Provider: o.name, Op: "sentiment", Kind: KindParse, Err: err}
	}
	return score, nil
}

func (o *ops) ExtractIssues(texts []string) []string {
	return filterByMarkers(texts, issueMarkers, o.maxTexts)
}

func (o *ops) ExtractBlockers(texts []string) []string {
	return filterByMarkers(texts, blockerMarkers, o.maxTexts)
}

func (o *ops) GenerateMitigation(ctx context.Context, issue string, level model.RiskLevel) (string, error) {
	reply, err := o.complete(ctx, "mitigation", mitigationSystemPrompt, buildMitigationPrompt(issue, level))
	if err != nil {
		return "", err
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "", &Error{Provider: o.name, Op: "mitigation", Kind: KindParse, Err: errors.New("empty reply")}
	}
	return reply, nil
}

func (o *ops) GenerateSummary(ctx context.Context, rec *model.AnalysisRecord) (string, error) {
	if rec == nil {
		return "", &Error{Provider: o.name, Op: "summary", Kind: KindParse, Err: errors.New("nil record")}
	}
	reply, err := o.complete(ctx, "summary", summarySystemPrompt, buildSummaryPrompt(rec))
	if err != nil {
		return "", err
	}
	reply = strings.TrimSpace(reply)
	if reply == "" {
		return "", &Error{Provider: o.name, Op: "summary", Kind: KindParse, Err: errors.New("empty reply")}
	}
	return reply, nil
}
