package provider

import (
	"context"
	"strings"
	"testing"

	"sheetlens/internal/model"
)

func TestKeywordProvider_ClassifyRisk(t *testing.T) {
	tests := []struct {
		name string
		text string
		want model.RiskLevel
	}{
		{"critical term", "Work has stopped and we are blocked on funding", model.RiskCritical},
		{"high term", "The project is delayed and behind schedule", model.RiskHigh},
		{"medium term", "There is a concern about vendor capacity", model.RiskMedium},
		{"no signal", "Training sessions went ahead as planned this month", model.RiskLow},
	}

	p := NewKeywordProvider(Config{})
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			level, err := p.ClassifyRisk(context.Background(), tt.text)
			if err != nil {
				t.Fatalf("ClassifyRisk failed: %v", err)
			}
			if level != tt.want {
				t.Errorf("Expected %v, got %v", tt.want, level)
			}
		})
	}
}

func TestKeywordProvider_ScoreSentiment(t *testing.T) {
	p := NewKeywordProvider(Config{})

	positive, err := p.ScoreSentiment(context.Background(), "Good progress, the team successfully completed the milestone")
	if err != nil {
		t.Fatalf("ScoreSentiment failed: %v", err)
	}
	if positive <= 0 {
		t.Errorf("Expected positive score, got %v", positive)
	}

	negative, err := p.ScoreSentiment(context.Background(), "Serious problems, the work is delayed and blocked")
	if err != nil {
		t.Fatalf("ScoreSentiment failed: %v", err)
	}
	if negative >= 0 {
		t.Errorf("Expected negative score, got %v", negative)
	}

	if positive < -1 || positive > 1 || negative < -1 || negative > 1 {
		t.Errorf("Expected scores within [-1,1], got %v and %v", positive, negative)
	}
}

func TestKeywordProvider_ExtractIssues(t *testing.T) {
	p := NewKeywordProvider(Config{})

	texts := []string{
		"There is a problem with the vendor invoices",
		"Everything is going smoothly this quarter",
		"Permit delays continue to slow construction",
		"There is a problem with the vendor invoices", // duplicate
	}

	issues := p.ExtractIssues(texts)
	if len(issues) != 2 {
		t.Fatalf("Expected 2 issues, got %d: %v", len(issues), issues)
	}
	for _, issue := range issues {
		if strings.Contains(issue, "smoothly") {
			t.Errorf("Expected clean text to be excluded, got %q", issue)
		}
	}
}

func TestKeywordProvider_ExtractBlockers(t *testing.T) {
	p := NewKeywordProvider(Config{})

	texts := []string{
		"The grant is blocked pending a compliance review",
		"We are waiting on the county for the final permit",
		"All deliverables were completed on time",
	}

	blockers := p.ExtractBlockers(texts)
	if len(blockers) != 2 {
		t.Fatalf("Expected 2 blockers, got %d: %v", len(blockers), blockers)
	}
}

func TestKeywordProvider_ExtractIssues_RespectsTextCap(t *testing.T) {
	// Only the first text is sampled; the marker in the second is not seen.
	p := NewKeywordProvider(Config{MaxFilterTexts: 1})

	issues := p.ExtractIssues([]string{
		"A routine status update with nothing notable",
		"There is a problem with the vendor invoices",
	})
	if len(issues) != 0 {
		t.Errorf("Expected no issues within the sampled window, got %v", issues)
	}
}

func TestKeywordProvider_GenerateMitigation(t *testing.T) {
	p := NewKeywordProvider(Config{})

	critical, err := p.GenerateMitigation(context.Background(), "funding blocked", model.RiskCritical)
	if err != nil {
		t.Fatalf("GenerateMitigation failed: %v", err)
	}
	if !strings.Contains(critical, "Escalate") {
		t.Errorf("Expected escalation advice for critical, got %q", critical)
	}

	low, err := p.GenerateMitigation(context.Background(), "minor note", model.RiskLow)
	if err != nil {
		t.Fatalf("GenerateMitigation failed: %v", err)
	}
	if critical == low {
		t.Error("Expected severity-specific advice")
	}

	// Unknown levels get the routine-review advice rather than failing.
	unknown, err := p.GenerateMitigation(context.Background(), "odd", model.RiskLevel(0))
	if err != nil {
		t.Fatalf("GenerateMitigation failed: %v", err)
	}
	if unknown != low {
		t.Errorf("Expected low-level advice for unknown level, got %q", unknown)
	}
}

func TestKeywordProvider_GenerateSummary(t *testing.T) {
	p := NewKeywordProvider(Config{})

	rec := &model.AnalysisRecord{
		CommentCount:      4,
		QuestionCount:     10,
		OverallCompletion: 62.5,
		SentimentAverage:  -0.5,
		Findings: []model.RiskFinding{
			{Level: model.RiskCritical},
			{Level: model.RiskHigh},
		},
	}

	summary, err := p.GenerateSummary(context.Background(), rec)
	if err != nil {
		t.Fatalf("GenerateSummary failed: %v", err)
	}

	for _, want := range []string{
		"Analyzed 4 comments and 10 questionnaire answers",
		"62.50%",
		"2 findings",
		"1 critical",
		"1 high",
		"negative",
	} {
		if !strings.Contains(summary, want) {
			t.Errorf("Summary missing %q: %s", want, summary)
		}
	}
}

func TestKeywordProvider_GenerateSummary_NilRecord(t *testing.T) {
	p := NewKeywordProvider(Config{})

	if _, err := p.GenerateSummary(context.Background(), nil); err == nil {
		t.Fatal("Expected error for nil record, got nil")
	}
}

func TestKeywordProvider_IsAvailable(t *testing.T) {
	p := NewKeywordProvider(Config{})

	if !p.IsAvailable(context.Background()) {
		t.Error("Expected keyword provider to always be available")
	}
	if p.RequiresPacing() {
		t.Error("Expected keyword provider to need no pacing")
	}
}
