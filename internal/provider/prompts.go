package provider

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"

	"sheetlens/internal/lexicon"
	"sheetlens/internal/model"
)

const (
	maxPromptChars        = 300
	maxFilterChars        = 200
	maxFilterResults      = 10
	defaultMaxFilterTexts = 20
	maxSummaryIssues      = 5
)

const (
	riskSystemPrompt       = "You are a risk analyst reviewing grant progress reports. Reply with exactly one word."
	sentimentSystemPrompt  = "You are a sentiment rater for progress reports. Reply with only a number."
	mitigationSystemPrompt = "You are a program manager writing concise, actionable risk mitigations."
	summarySystemPrompt    = "You are an analyst writing executive summaries of grant portfolio health."
)

func buildRiskPrompt(text string) string {
	return fmt.Sprintf(`Classify the risk level of this progress comment as exactly one of: Critical, High, Medium, or Low.

Comment: %s

Reply with only the risk level.`, truncate(text, maxPromptChars))
}

func buildSentimentPrompt(text string) string {
	return fmt.Sprintf(`Rate the sentiment of this progress comment on a scale from -1.0 (very negative) to 1.0 (very positive).

Comment: %s

Reply with only the number.`, truncate(text, maxPromptChars))
}

func buildMitigationPrompt(issue string, level model.RiskLevel) string {
	return fmt.Sprintf(`A grant progress report raised this %s risk:

%s

Suggest a mitigation in 2-3 actionable sentences.`, level, truncate(issue, maxPromptChars))
}

func buildSummaryPrompt(rec *model.AnalysisRecord) string {
	counts := rec.CountByLevel()
	var b strings.Builder
	fmt.Fprintf(&b, `Write a 3-4 sentence executive summary of this progress analysis.

Metrics:
- Comments analyzed: %d
- Questionnaire answers: %d
- Overall completion: %.2f%%
- Average sentiment: %.2f (scale -1 to 1)
- Risk findings: %d (%d critical, %d high, %d medium)
`,
		rec.CommentCount, rec.QuestionCount, rec.OverallCompletion,
		rec.SentimentAverage, len(rec.Findings),
		counts[model.RiskCritical], counts[model.RiskHigh], counts[model.RiskMedium])

	if len(rec.Issues) > 0 {
		b.WriteString("\nTop issues:\n")
		for i, issue := range rec.Issues {
			if i >= maxSummaryIssues {
				break
			}
			fmt.Fprintf(&b, "- %s\n", issue)
		}
	}

	b.WriteString("\nFocus on completion, risk posture, and overall tone. Do not invent details.")
	return b.String()
}

// parseRiskReply matches level labels by case-insensitive substring in
// severity order, so a verbose reply like "This looks High risk" still
// parses. Replies matching nothing default to Low.
func parseRiskReply(reply string) model.RiskLevel {
	lower := strings.ToLower(reply)
	switch {
	case strings.Contains(lower, "critical"):
		return model.RiskCritical
	case strings.Contains(lower, "high"):
		return model.RiskHigh
	case strings.Contains(lower, "medium"):
		return model.RiskMedium
	default:
		return model.RiskLow
	}
}

var numberPattern = regexp.MustCompile(`-?\d+(?:\.\d+)?`)

// parseSentimentReply extracts the numeric score from a reply and clamps it
// to [-1,1]. A reply with no number at all is an error, never a silent 0.
func parseSentimentReply(reply string) (float64, error) {
	trimmed := strings.TrimSpace(reply)
	if v, err := strconv.ParseFloat(trimmed, 64); err == nil {
		return lexicon.Clamp(v), nil
	}
	match := numberPattern.FindString(trimmed)
	if match == "" {
		return 0, fmt.Errorf("no numeric value in %q", truncate(reply, 40))
	}
	v, err := strconv.ParseFloat(match, 64)
	if err != nil {
		return 0, fmt.Errorf("parse %q: %w", match, err)
	}
	return lexicon.Clamp(v), nil
}

// Issue and blocker markers mirror the vocabulary program officers actually
// use in commentary fields.
var (
	issueMarkers = []string{
		"issue", "problem", "concern", "challenge", "difficult",
		"unable", "failed", "missing", "delay",
	}
	blockerMarkers = []string{
		"blocked", "blocker", "impediment", "obstacle", "cannot proceed",
		"stuck", "waiting on", "dependency",
	}
)

// filterByMarkers scans the first maxTexts texts for marker substrings,
// returning up to 10 deduplicated matches trimmed to 200 characters.
func filterByMarkers(texts, markers []string, maxTexts int) []string {
	if maxTexts <= 0 {
		maxTexts = defaultMaxFilterTexts
	}
	if len(texts) > maxTexts {
		texts = texts[:maxTexts]
	}

	seen := make(map[string]bool)
	var matches []string
	for _, text := range texts {
		lower := strings.ToLower(text)
		for _, marker := range markers {
			if !strings.Contains(lower, marker) {
				continue
			}
			match := truncate(strings.TrimSpace(text), maxFilterChars)
			if !seen[match] {
				seen[match] = true
				matches = append(matches, match)
			}
			break
		}
		if len(matches) >= maxFilterResults {
			break
		}
	}
	return matches
}

// truncate cuts a string to max runes.
func truncate(s string, max int) string {
	runes := []rune(s)
	if len(runes) <= max {
		return s
	}
	return string(runes[:max])
}
