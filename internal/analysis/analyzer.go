// Package analysis assembles one complete record per workbook: risk findings
// with mitigations, progress metrics, sentiment, issues, blockers,
// recommendations, and the run summary. The record is built only after every
// pass completes; callers never observe a partial result.
package analysis

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/google/uuid"

	"sheetlens/internal/events"
	"sheetlens/internal/lexicon"
	"sheetlens/internal/model"
	"sheetlens/internal/orchestrator"
	"sheetlens/internal/provider"
)

// Analyzer runs the contextual analysis pipeline over extractions. One
// Analyzer may process many workbooks; the pacer it holds spaces provider
// calls across concurrent runs so batch mode cannot stack rate limits.
type Analyzer struct {
	config   model.Config
	provider provider.Provider
	pacer    *orchestrator.Pacer
	sink     events.Sink
}

// New creates an analyzer on top of an already-constructed provider.
func New(cfg model.Config, p provider.Provider, sink events.Sink) *Analyzer {
	return &Analyzer{
		config:   cfg,
		provider: p,
		pacer:    orchestrator.NewPacer(provider.PacingDelay(p, cfg.Provider.CallDelay)),
		sink:     events.OrNop(sink),
	}
}

// Analyze produces the analysis record for one extraction. Provider failures
// degrade individual results to the keyword heuristics; the only hard error
// is an extraction with nothing to analyze.
func (a *Analyzer) Analyze(ctx context.Context, ext *model.Extraction) (*model.AnalysisRecord, error) {
	if ext == nil || ext.ItemCount() == 0 {
		return nil, model.ErrNoItems
	}

	startedAt := time.Now().UTC()
	texts := commentTexts(ext.Comments)

	// 1. Build the fallback scorer, learning a per-dataset vocabulary
	// when enabled. The learned scorer also serves fast sentiment mode.
	scorer := lexicon.NewScorer()
	if a.config.Analysis.DynamicKeywords && len(texts) > 0 {
		vocab := lexicon.NewLearner(a.config.Analysis.MinTermFrequency).Learn(texts)
		if vocab.Size() > 0 {
			scorer = lexicon.NewDynamicScorer(vocab)
		}
		a.sink.StageCompleted("vocabulary", fmt.Sprintf("%d terms learned", vocab.Size()))
	}
	fallback := provider.NewKeywordProviderWithScorer(scorer, a.config.Analysis.MaxFilterTexts)
	orch := orchestrator.New(a.provider, fallback, a.pacer, a.sink)

	// 2. Risk classification over the sampled comments.
	riskComments := ext.Comments
	if limit := a.config.Analysis.MaxRiskComments; limit > 0 && len(riskComments) > limit {
		riskComments = riskComments[:limit]
	}
	findings := a.classifyFindings(ctx, orch, riskComments)

	// 3. Mitigation advice, one per finding.
	mitigations := orch.GenerateMitigations(ctx, findings, a.config.Analysis.MitigationWorkers)
	for i := range findings {
		findings[i].Mitigation = mitigations[i]
	}
	a.sink.StageCompleted("risk", fmt.Sprintf("%d findings from %d comments", len(findings), len(riskComments)))

	// 4. Sentiment over every comment, not just the risk sample.
	scores := a.scoreSentiments(ctx, orch, scorer, texts)
	a.sink.StageCompleted("sentiment", fmt.Sprintf("%d comments scored", len(scores)))

	// 5. Per-entity rollup, most negative first.
	entities := buildEntities(ext.Comments, scores, findings)

	// 6. Progress metrics from the questionnaire answers.
	progress := BuildProgress(ext.Questions)

	// 7. Issue and blocker extraction. These are local keyword filters on
	// every provider, so they bypass the orchestrator.
	issues := a.provider.ExtractIssues(texts)
	blockers := a.provider.ExtractBlockers(texts)

	record := &model.AnalysisRecord{
		RunID:             uuid.NewString(),
		Provider:          a.provider.Name(),
		File:              ext.File,
		StartedAt:         startedAt,
		CommentCount:      len(ext.Comments),
		QuestionCount:     len(ext.Questions),
		Findings:          findings,
		Progress:          progress,
		OverallCompletion: OverallCompletion(progress),
		SentimentAverage:  lexicon.Clamp(mean(scores)),
		Entities:          entities,
		Issues:            issues,
		Blockers:          blockers,
	}
	record.Recommendations = BuildRecommendations(record)

	// 8. Summary runs last so it can describe the assembled record.
	record.Summary = orch.GenerateSummary(ctx, record)
	record.Telemetry = orch.Telemetry()
	record.FinishedAt = time.Now().UTC()

	a.sink.StageCompleted("analysis", fmt.Sprintf("run %s finished", record.RunID))
	return record, nil
}

// classifyFindings grades the comments and keeps everything above Low.
// Low-risk comments are discarded here, at the classification boundary,
// so no finding with a Low level can ever reach a record.
func (a *Analyzer) classifyFindings(ctx context.Context, orch *orchestrator.Orchestrator, comments []model.CommentItem) []model.RiskFinding {
	levels := orch.ClassifyRisks(ctx, commentTexts(comments), a.config.Analysis.ClassifyWorkers)

	var findings []model.RiskFinding
	for i, level := range levels {
		if level <= model.RiskLow {
			continue
		}
		c := comments[i]
		findings = append(findings, model.RiskFinding{
			Level:       level,
			Description: c.Text,
			Entity:      c.AttributedEntity(),
			SourceField: c.Field,
			Sheet:       c.Sheet,
			Row:         c.Row,
		})
	}

	// Batch completion order is nondeterministic; the aggregate order is
	// imposed here instead.
	sort.SliceStable(findings, func(i, j int) bool {
		if findings[i].Level != findings[j].Level {
			return findings[i].Level > findings[j].Level
		}
		return findings[i].Row < findings[j].Row
	})
	return findings
}

// scoreSentiments rates all texts, locally in fast mode, through the
// orchestrator otherwise.
func (a *Analyzer) scoreSentiments(ctx context.Context, orch *orchestrator.Orchestrator, scorer *lexicon.Scorer, texts []string) []float64 {
	if a.config.Analysis.FastSentiment {
		scores := make([]float64, len(texts))
		for i, t := range texts {
			scores[i] = scorer.Score(t)
		}
		return scores
	}
	return orch.ScoreSentiments(ctx, texts, a.config.Analysis.ClassifyWorkers)
}

// buildEntities rolls comments up per attributed entity. Scores align with
// comments by index; findings contribute the worst risk level seen.
func buildEntities(comments []model.CommentItem, scores []float64, findings []model.RiskFinding) []model.EntityInsight {
	type rollup struct {
		count int
		sum   float64
	}
	rollups := make(map[string]*rollup)
	for i, c := range comments {
		entity := c.AttributedEntity()
		r, ok := rollups[entity]
		if !ok {
			r = &rollup{}
			rollups[entity] = r
		}
		r.count++
		if i < len(scores) {
			r.sum += scores[i]
		}
	}

	topRisk := make(map[string]model.RiskLevel)
	for _, f := range findings {
		if f.Level > topRisk[f.Entity] {
			topRisk[f.Entity] = f.Level
		}
	}

	insights := make([]model.EntityInsight, 0, len(rollups))
	for entity, r := range rollups {
		insights = append(insights, model.EntityInsight{
			Entity:    entity,
			Comments:  r.count,
			Sentiment: lexicon.Clamp(r.sum / float64(r.count)),
			TopRisk:   topRisk[entity],
		})
	}
	sort.SliceStable(insights, func(i, j int) bool {
		if insights[i].Sentiment != insights[j].Sentiment {
			return insights[i].Sentiment < insights[j].Sentiment
		}
		return insights[i].Entity < insights[j].Entity
	})
	return insights
}

func commentTexts(comments []model.CommentItem) []string {
	texts := make([]string, len(comments))
	for i, c := range comments {
		texts[i] = c.Text
	}
	return texts
}

func mean(values []float64) float64 {
	if len(values) == 0 {
		return 0
	}
	sum := 0.0
	for _, v := range values {
		sum += v
	}
	return sum / float64(len(values))
}
