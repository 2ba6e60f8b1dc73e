// Package fusion runs the contextual and semantic pipelines concurrently and
// merges their outputs into one integrated report. Either side may fail
// without aborting the fusion; the merge works with whatever survived and
// records what was missing.
package fusion

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"

	"sheetlens/internal/events"
	"sheetlens/internal/model"
)

// ErrNotConfigured marks a side that was never set up to run, as opposed to
// one that ran and failed.
var ErrNotConfigured = errors.New("not configured")

// ContextualSource produces the comment-classification analysis.
type ContextualSource interface {
	Analyze(ctx context.Context) (*model.AnalysisRecord, error)
}

// ContextualFunc adapts a function to ContextualSource.
type ContextualFunc func(ctx context.Context) (*model.AnalysisRecord, error)

// Analyze calls f.
func (f ContextualFunc) Analyze(ctx context.Context) (*model.AnalysisRecord, error) { return f(ctx) }

// SemanticSource produces the embedding-clustering analysis.
type SemanticSource interface {
	Analyze(ctx context.Context) (*model.SemanticResult, error)
}

// SemanticFunc adapts a function to SemanticSource.
type SemanticFunc func(ctx context.Context) (*model.SemanticResult, error)

// Analyze calls f.
func (f SemanticFunc) Analyze(ctx context.Context) (*model.SemanticResult, error) { return f(ctx) }

// Engine coordinates the two pipelines.
type Engine struct {
	sink events.Sink
}

// NewEngine creates a fusion engine.
func NewEngine(sink events.Sink) *Engine {
	return &Engine{sink: events.OrNop(sink)}
}

// Run invokes both sources concurrently, waits for both, and merges. A nil
// source counts as not configured. Run fails only when neither side
// produced anything.
func (e *Engine) Run(ctx context.Context, contextual ContextualSource, semantic SemanticSource) (*model.HybridResult, error) {
	var (
		record *model.AnalysisRecord
		ctxErr error
		sem    *model.SemanticResult
		semErr error
		wg     sync.WaitGroup
	)

	if contextual == nil {
		ctxErr = ErrNotConfigured
	} else {
		wg.Add(1)
		go func() {
			defer wg.Done()
			record, ctxErr = contextual.Analyze(ctx)
		}()
	}

	if semantic == nil {
		semErr = ErrNotConfigured
	} else {
		wg.Add(1)
		go func() {
			defer wg.Done()
			sem, semErr = semantic.Analyze(ctx)
		}()
	}
	wg.Wait()

	if ctxErr != nil {
		record = nil
		e.sink.ServiceDegraded("contextual", ctxErr)
	}
	if semErr != nil {
		sem = nil
		e.sink.ServiceDegraded("semantic", semErr)
	}
	if record == nil && sem == nil {
		return nil, fmt.Errorf("both pipelines failed: contextual: %v; semantic: %v", ctxErr, semErr)
	}

	integrated := Merge(record, sem)
	if ctxErr != nil {
		integrated.Notes = append(integrated.Notes, fmt.Sprintf("contextual analysis unavailable: %v", ctxErr))
	}
	if semErr != nil {
		integrated.Notes = append(integrated.Notes, fmt.Sprintf("semantic analysis unavailable: %v", semErr))
	}

	e.sink.StageCompleted("fusion", fmt.Sprintf("%d entities, %d themes", len(integrated.Entities), len(integrated.Themes)))
	return &model.HybridResult{Contextual: record, Semantic: sem, Integrated: integrated}, nil
}

// Merge builds the integrated report from whichever sides are present.
// Neither side's fields overwrite the other's: an entity known to both
// carries both field sets.
func Merge(record *model.AnalysisRecord, sem *model.SemanticResult) model.IntegratedReport {
	report := model.IntegratedReport{
		ContextualUsed: record != nil,
		SemanticUsed:   sem != nil,
	}

	contextual := make(map[string]model.EntityInsight)
	if record != nil {
		for _, e := range record.Entities {
			if name := strings.TrimSpace(e.Entity); name != "" {
				contextual[name] = e
			}
		}
	}
	semantic := make(map[string]model.OrganizationInsight)
	if sem != nil {
		for _, o := range sem.Organizations {
			if name := strings.TrimSpace(o.Organization); name != "" {
				semantic[name] = o
			}
		}
	}

	names := make([]string, 0, len(contextual)+len(semantic))
	seen := make(map[string]bool)
	for name := range contextual {
		seen[name] = true
		names = append(names, name)
	}
	for name := range semantic {
		if !seen[name] {
			names = append(names, name)
		}
	}
	sort.Strings(names)

	for _, name := range names {
		entity := model.IntegratedEntity{Name: name}

		if insight, ok := contextual[name]; ok {
			entity.HasContextual = true
			entity.ContextualSentiment = insight.Sentiment
			entity.ContextualComments = insight.Comments
			entity.ContextualRisk = insight.TopRisk
		}
		if insight, ok := semantic[name]; ok {
			entity.HasSemantic = true
			entity.SemanticCoherence = insight.Coherence
			entity.SemanticKeywords = insight.TopKeywords
			entity.SemanticComments = insight.Count
			if sem != nil {
				entity.MatchedTheme = bestTheme(insight.TopKeywords, sem.Themes)
			}
		}

		entity.RiskText = riskText(entity)
		report.Entities = append(report.Entities, entity)
	}

	// Most negative first; entities without contextual data sit at their
	// zero sentiment. Name breaks ties so output is stable.
	sort.SliceStable(report.Entities, func(i, j int) bool {
		if report.Entities[i].ContextualSentiment != report.Entities[j].ContextualSentiment {
			return report.Entities[i].ContextualSentiment < report.Entities[j].ContextualSentiment
		}
		return report.Entities[i].Name < report.Entities[j].Name
	})

	if sem != nil {
		for _, t := range sem.Themes {
			report.Themes = append(report.Themes, model.IntegratedTheme{
				Name:           t.Name,
				Count:          t.Count,
				Keywords:       t.Keywords,
				Representative: t.Representative,
			})
		}
		sort.SliceStable(report.Themes, func(i, j int) bool {
			return report.Themes[i].Count > report.Themes[j].Count
		})
	}

	return report
}

// bestTheme picks the theme whose keywords overlap the entity's the most.
// Strict comparison keeps the earliest theme on ties, and no overlap at all
// means no match.
func bestTheme(keywords []string, themes []model.SemanticTheme) string {
	set := make(map[string]bool, len(keywords))
	for _, k := range keywords {
		set[strings.ToLower(k)] = true
	}

	best := ""
	bestOverlap := 0
	for _, t := range themes {
		overlap := 0
		for _, k := range t.Keywords {
			if set[strings.ToLower(k)] {
				overlap++
			}
		}
		if overlap > bestOverlap {
			bestOverlap = overlap
			best = t.Name
		}
	}
	return best
}

// riskText concatenates the entity's risk signals. Each signal contributes
// only when its side has data; no signal at all reads as low risk.
func riskText(e model.IntegratedEntity) string {
	var parts []string

	if e.HasContextual && e.ContextualRisk > 0 {
		parts = append(parts, fmt.Sprintf("%s risk flagged in comments", e.ContextualRisk))
	}
	if e.HasContextual {
		switch {
		case e.ContextualSentiment < -0.3:
			parts = append(parts, fmt.Sprintf("low sentiment (%.2f)", e.ContextualSentiment))
		case e.ContextualSentiment < 0.1:
			parts = append(parts, fmt.Sprintf("moderate sentiment (%.2f)", e.ContextualSentiment))
		}
	}
	if e.HasSemantic {
		switch {
		case e.SemanticCoherence < 0.5:
			parts = append(parts, fmt.Sprintf("low coherence (%.2f)", e.SemanticCoherence))
		case e.SemanticCoherence < 0.7:
			parts = append(parts, fmt.Sprintf("moderate coherence (%.2f)", e.SemanticCoherence))
		}
	}

	if len(parts) == 0 {
		return "Low risk - no significant signals detected"
	}
	return strings.Join(parts, "; ")
}
