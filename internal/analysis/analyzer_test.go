package analysis

import (
	"context"
	"errors"
	"strings"
	"sync/atomic"
	"testing"

	"sheetlens/internal/lexicon"
	"sheetlens/internal/model"
	"sheetlens/internal/provider"
)

// stubProvider returns fixed results, or fails every AI-backed call when
// failAll is set. Filters stay empty; tests that need them use the real
// keyword provider.
type stubProvider struct {
	level   model.RiskLevel
	score   float64
	failAll bool

	riskCalls      atomic.Int64
	sentimentCalls atomic.Int64
}

func (s *stubProvider) Name() string         { return "stub" }
func (s *stubProvider) RequiresPacing() bool { return false }

func (s *stubProvider) IsAvailable(ctx context.Context) bool { return !s.failAll }

func (s *stubProvider) fail(op string) error {
	return &provider.Error{Provider: "stub", Op: op, Kind: provider.KindTransport, Err: errors.New("backend down")}
}

func (s *stubProvider) ClassifyRisk(ctx context.Context, text string) (model.RiskLevel, error) {
	s.riskCalls.Add(1)
	if s.failAll {
		return 0, s.fail("risk")
	}
	return s.level, nil
}

func (s *stubProvider) ScoreSentiment(ctx context.Context, text string) (float64, error) {
	s.sentimentCalls.Add(1)
	if s.failAll {
		return 0, s.fail("sentiment")
	}
	return s.score, nil
}

func (s *stubProvider) ExtractIssues(texts []string) []string   { return nil }
func (s *stubProvider) ExtractBlockers(texts []string) []string { return nil }

func (s *stubProvider) GenerateMitigation(ctx context.Context, issue string, level model.RiskLevel) (string, error) {
	if s.failAll {
		return "", s.fail("mitigation")
	}
	return "stub mitigation", nil
}

func (s *stubProvider) GenerateSummary(ctx context.Context, rec *model.AnalysisRecord) (string, error) {
	if s.failAll {
		return "", s.fail("summary")
	}
	return "stub summary", nil
}

func comment(text, org string, row int) model.CommentItem {
	context := map[string]string{}
	if org != "" {
		context["Organization Name"] = org
	}
	return model.CommentItem{
		Text:       text,
		Field:      "Status Comments",
		Sheet:      "Sheet1",
		Row:        row,
		RowContext: context,
	}
}

func question(answer, deliverable string, row int) model.QuestionItem {
	return model.QuestionItem{
		Answer:     answer,
		Field:      "Completed?",
		Row:        row,
		RowContext: map[string]string{"Deliverable": deliverable},
	}
}

func sampleExtraction() *model.Extraction {
	return &model.Extraction{
		File: model.FileInfo{Name: "grants.xlsx", Rows: 5},
		Comments: []model.CommentItem{
			comment("The grant is blocked due to budget overrun", "Acme Water", 1),
			comment("Construction has been delayed by permit review", "Acme Water", 2),
			comment("Team made good progress and the work is on track", "Beta Housing", 3),
		},
		Questions: []model.QuestionItem{
			question("yes", "Well drilling", 1),
			question("yes", "Well drilling", 2),
			question("no", "Well drilling", 3),
			question("yes", "Well drilling", 4),
			question("yes", "Foundation", 5),
		},
	}
}

func TestAnalyzer_Analyze_KeywordProvider(t *testing.T) {
	cfg := model.DefaultConfig()
	kw := provider.NewKeywordProvider(provider.FromModel(cfg))
	analyzer := New(cfg, kw, nil)

	record, err := analyzer.Analyze(context.Background(), sampleExtraction())
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if record.RunID == "" || record.Provider != "keyword" {
		t.Errorf("Unexpected run identity: %q %q", record.RunID, record.Provider)
	}
	if record.CommentCount != 3 || record.QuestionCount != 5 {
		t.Errorf("Unexpected counts: %d comments, %d questions", record.CommentCount, record.QuestionCount)
	}

	// Low-risk comments never become findings.
	if len(record.Findings) != 2 {
		t.Fatalf("Expected 2 findings, got %d: %+v", len(record.Findings), record.Findings)
	}
	for _, f := range record.Findings {
		if f.Level <= model.RiskLow {
			t.Errorf("Finding with non-elevated level stored: %+v", f)
		}
		if f.Mitigation == "" {
			t.Errorf("Finding missing mitigation: %+v", f)
		}
	}

	// Findings are ordered most severe first: "blocked" is critical-tier
	// even though "budget overrun" also matches a lower tier.
	if record.Findings[0].Level != model.RiskCritical {
		t.Errorf("Expected critical finding first, got %s", record.Findings[0].Level)
	}
	if record.Findings[1].Level != model.RiskHigh {
		t.Errorf("Expected high finding second, got %s", record.Findings[1].Level)
	}
	if record.Findings[0].Entity != "Acme Water" {
		t.Errorf("Unexpected attribution: %s", record.Findings[0].Entity)
	}

	// Progress: yes/yes/no/yes => 75.00 In Progress; single yes => Completed.
	if len(record.Progress) != 2 {
		t.Fatalf("Expected 2 progress groups, got %d", len(record.Progress))
	}
	for _, m := range record.Progress {
		if m.YesCount+m.NoCount != m.TotalQuestions {
			t.Errorf("Count invariant violated: %+v", m)
		}
		switch m.GroupKey {
		case "Well drilling":
			if m.YesCount != 3 || m.NoCount != 1 || m.Completion != 75.00 || m.Status != model.StatusInProgress {
				t.Errorf("Unexpected well drilling metric: %+v", m)
			}
		case "Foundation":
			if m.Completion != 100 || m.Status != model.StatusCompleted {
				t.Errorf("Unexpected foundation metric: %+v", m)
			}
		default:
			t.Errorf("Unexpected group: %s", m.GroupKey)
		}
	}
	if record.OverallCompletion != 87.5 {
		t.Errorf("Expected overall completion 87.5, got %v", record.OverallCompletion)
	}

	if record.SentimentAverage < -1 || record.SentimentAverage > 1 {
		t.Errorf("Sentiment average out of range: %v", record.SentimentAverage)
	}

	// Entities are sorted most negative first; Acme carries both findings.
	if len(record.Entities) != 2 {
		t.Fatalf("Expected 2 entities, got %d", len(record.Entities))
	}
	if record.Entities[0].Entity != "Acme Water" || record.Entities[0].TopRisk != model.RiskCritical {
		t.Errorf("Unexpected first entity: %+v", record.Entities[0])
	}
	if record.Entities[1].Entity != "Beta Housing" || record.Entities[1].TopRisk != 0 {
		t.Errorf("Unexpected second entity: %+v", record.Entities[1])
	}
	if record.Entities[0].Sentiment >= record.Entities[1].Sentiment {
		t.Errorf("Entities not sorted by sentiment: %+v", record.Entities)
	}

	// Marker filters pick up the blocked and delayed comments.
	if len(record.Blockers) != 1 || !strings.Contains(record.Blockers[0], "blocked") {
		t.Errorf("Unexpected blockers: %v", record.Blockers)
	}
	if len(record.Issues) == 0 {
		t.Errorf("Expected at least one issue, got none")
	}

	if len(record.Recommendations) == 0 {
		t.Error("Expected recommendations")
	}
	if !strings.Contains(record.Summary, "Analyzed 3 comments") {
		t.Errorf("Unexpected summary: %s", record.Summary)
	}

	// Keyword provider never fails, so every attempt succeeds.
	if record.Telemetry.Attempted == 0 || record.Telemetry.Attempted != record.Telemetry.Succeeded {
		t.Errorf("Unexpected telemetry: %+v", record.Telemetry)
	}
	if record.FinishedAt.Before(record.StartedAt) {
		t.Errorf("Finish precedes start: %+v", record)
	}
}

func TestAnalyzer_Analyze_FailingProviderMatchesHeuristics(t *testing.T) {
	cfg := model.DefaultConfig()
	stub := &stubProvider{failAll: true}
	analyzer := New(cfg, stub, nil)

	ext := sampleExtraction()
	record, err := analyzer.Analyze(context.Background(), ext)
	if err != nil {
		t.Fatalf("Analyze must not fail when the provider does: %v", err)
	}

	// Every finding equals what the keyword classifier would produce.
	var expected []model.RiskLevel
	for _, c := range ext.Comments {
		if level := lexicon.ClassifyRisk(c.Text); level > model.RiskLow {
			expected = append(expected, level)
		}
	}
	if len(record.Findings) != len(expected) {
		t.Fatalf("Expected %d findings, got %d", len(expected), len(record.Findings))
	}

	if record.Telemetry.Failed == 0 || record.Telemetry.Failed != record.Telemetry.FellBack {
		t.Errorf("Degradation not visible in telemetry: %+v", record.Telemetry)
	}
	if record.Telemetry.Succeeded != 0 {
		t.Errorf("Expected zero successes, got %+v", record.Telemetry)
	}

	// The summary falls back to the deterministic form.
	if !strings.Contains(record.Summary, "Analyzed 3 comments") {
		t.Errorf("Expected fallback summary, got: %s", record.Summary)
	}
}

func TestAnalyzer_Analyze_NoItems(t *testing.T) {
	analyzer := New(model.DefaultConfig(), &stubProvider{}, nil)

	if _, err := analyzer.Analyze(context.Background(), &model.Extraction{}); !errors.Is(err, model.ErrNoItems) {
		t.Errorf("Expected ErrNoItems, got %v", err)
	}
	if _, err := analyzer.Analyze(context.Background(), nil); !errors.Is(err, model.ErrNoItems) {
		t.Errorf("Expected ErrNoItems for nil extraction, got %v", err)
	}
}

func TestAnalyzer_Analyze_RiskCommentCap(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Analysis.MaxRiskComments = 1
	stub := &stubProvider{level: model.RiskHigh}
	analyzer := New(cfg, stub, nil)

	record, err := analyzer.Analyze(context.Background(), sampleExtraction())
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}

	if got := stub.riskCalls.Load(); got != 1 {
		t.Errorf("Expected 1 risk call under cap, got %d", got)
	}
	// Sentiment still covers every comment.
	if got := stub.sentimentCalls.Load(); got != 3 {
		t.Errorf("Expected 3 sentiment calls, got %d", got)
	}
	if len(record.Findings) != 1 {
		t.Errorf("Expected 1 finding, got %d", len(record.Findings))
	}
}

func TestAnalyzer_Analyze_FastSentimentSkipsProvider(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Analysis.FastSentiment = true
	stub := &stubProvider{level: model.RiskLow, score: 0.9}
	analyzer := New(cfg, stub, nil)

	record, err := analyzer.Analyze(context.Background(), sampleExtraction())
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if got := stub.sentimentCalls.Load(); got != 0 {
		t.Errorf("Expected no provider sentiment calls in fast mode, got %d", got)
	}
	// Scores come from the static vocabulary: two negative comments and one
	// positive one keep the average below the stub's fixed 0.9.
	if record.SentimentAverage >= 0.9 {
		t.Errorf("Fast sentiment did not use the local scorer: %v", record.SentimentAverage)
	}
}

func TestAnalyzer_Analyze_DynamicKeywords(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Analysis.DynamicKeywords = true
	cfg.Analysis.FastSentiment = true
	analyzer := New(cfg, provider.NewKeywordProvider(provider.FromModel(cfg)), nil)

	ext := &model.Extraction{
		Comments: []model.CommentItem{
			comment("Flooding delayed the site work and flooding remains a concern", "Acme Water", 1),
			comment("Flooding again this month, still waiting on drainage repairs", "Acme Water", 2),
			comment("No flooding reported and the schedule is back on track", "Beta Housing", 3),
		},
	}

	record, err := analyzer.Analyze(context.Background(), ext)
	if err != nil {
		t.Fatalf("Analyze failed: %v", err)
	}
	if record.SentimentAverage < -1 || record.SentimentAverage > 1 {
		t.Errorf("Sentiment average out of range: %v", record.SentimentAverage)
	}
}

func TestBuildProgress_SpecScenario(t *testing.T) {
	questions := []model.QuestionItem{
		question("yes", "Well drilling", 1),
		question("yes", "Well drilling", 2),
		question("no", "Well drilling", 3),
		question("yes", "Well drilling", 4),
	}

	metrics := BuildProgress(questions)
	if len(metrics) != 1 {
		t.Fatalf("Expected 1 metric, got %d", len(metrics))
	}
	m := metrics[0]
	if m.YesCount != 3 || m.NoCount != 1 || m.TotalQuestions != 4 {
		t.Errorf("Unexpected counts: %+v", m)
	}
	if m.Completion != 75.00 {
		t.Errorf("Expected completion 75.00, got %v", m.Completion)
	}
	if m.Status != model.StatusInProgress {
		t.Errorf("Expected In Progress, got %s", m.Status)
	}
}

func TestBuildProgress_StatusBoundaries(t *testing.T) {
	tests := []struct {
		name    string
		answers []string
		status  model.ProgressStatus
	}{
		{"all no", []string{"no", "no"}, model.StatusNotStarted},
		{"all yes", []string{"yes", "yes"}, model.StatusCompleted},
		{"one of three", []string{"yes", "no", "no"}, model.StatusInProgress},
	}

	for _, tt := range tests {
		var questions []model.QuestionItem
		for i, a := range tt.answers {
			questions = append(questions, question(a, "D", i+1))
		}
		metrics := BuildProgress(questions)
		if len(metrics) != 1 || metrics[0].Status != tt.status {
			t.Errorf("%s: expected %s, got %+v", tt.name, tt.status, metrics)
		}
	}
}

func TestBuildProgress_Rounding(t *testing.T) {
	questions := []model.QuestionItem{
		question("yes", "D", 1),
		question("no", "D", 2),
		question("no", "D", 3),
	}
	metrics := BuildProgress(questions)
	if metrics[0].Completion != 33.33 {
		t.Errorf("Expected 33.33, got %v", metrics[0].Completion)
	}
}

func TestBuildProgress_RowFallbackGrouping(t *testing.T) {
	questions := []model.QuestionItem{
		{Answer: "yes", Row: 7},
		{Answer: "no", Row: 9},
	}
	metrics := BuildProgress(questions)
	if len(metrics) != 2 {
		t.Fatalf("Expected per-row groups, got %d", len(metrics))
	}
	if metrics[0].GroupKey != "Row 7" || metrics[1].GroupKey != "Row 9" {
		t.Errorf("Unexpected group keys: %+v", metrics)
	}
}

func TestOverallCompletion(t *testing.T) {
	metrics := []model.ProgressMetric{
		{Completion: 75},
		{Completion: 100},
	}
	if got := OverallCompletion(metrics); got != 87.5 {
		t.Errorf("Expected 87.5, got %v", got)
	}
	if got := OverallCompletion(nil); got != 0 {
		t.Errorf("Expected 0 for no metrics, got %v", got)
	}
}

func TestBuildEntities_RowFallback(t *testing.T) {
	comments := []model.CommentItem{
		{Text: "anonymous comment", Row: 7},
	}
	insights := buildEntities(comments, []float64{-0.5}, nil)
	if len(insights) != 1 || insights[0].Entity != "Row 7" {
		t.Errorf("Unexpected insights: %+v", insights)
	}
	if insights[0].Sentiment != -0.5 || insights[0].Comments != 1 {
		t.Errorf("Unexpected rollup: %+v", insights[0])
	}
}

func TestBuildRecommendations(t *testing.T) {
	rec := &model.AnalysisRecord{
		CommentCount: 10,
		Findings: []model.RiskFinding{
			{Level: model.RiskCritical, Entity: "Acme Water"},
			{Level: model.RiskHigh, Entity: "Acme Water"},
		},
		Blockers:          []string{"Work is blocked on the vendor contract"},
		Progress:          []model.ProgressMetric{{Completion: 20}},
		OverallCompletion: 20,
		SentimentAverage:  -0.5,
		Entities: []model.EntityInsight{
			{Entity: "Acme Water", Comments: 4, Sentiment: -0.6, TopRisk: model.RiskCritical},
		},
	}

	recommendations := BuildRecommendations(rec)
	if len(recommendations) == 0 {
		t.Fatal("Expected recommendations")
	}
	if !strings.Contains(recommendations[0], "critical") {
		t.Errorf("Expected critical findings addressed first, got: %s", recommendations[0])
	}
	if len(recommendations) > maxRecommendations {
		t.Errorf("Recommendation cap exceeded: %d", len(recommendations))
	}

	joined := strings.Join(recommendations, "\n")
	for _, want := range []string{"blocker", "completion", "negative", "Acme Water"} {
		if !strings.Contains(joined, want) {
			t.Errorf("Expected a recommendation mentioning %q:\n%s", want, joined)
		}
	}
}

func TestBuildRecommendations_QuietRecord(t *testing.T) {
	rec := &model.AnalysisRecord{
		CommentCount:      5,
		OverallCompletion: 90,
		Progress:          []model.ProgressMetric{{Completion: 90}},
		SentimentAverage:  0.4,
	}
	recommendations := BuildRecommendations(rec)
	if len(recommendations) != 1 || !strings.Contains(recommendations[0], "No elevated risks") {
		t.Errorf("Unexpected recommendations for quiet record: %v", recommendations)
	}
}
