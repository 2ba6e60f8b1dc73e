// Package orchestrator runs provider operations over batches of items under
// a bounded worker pool. A failed call never aborts the batch: the item's
// result is substituted from the keyword heuristic and the run continues.
// The batch completes once every item has either succeeded or been
// substituted.
package orchestrator

import (
	"context"
	"sync"
	"sync/atomic"

	"sheetlens/internal/events"
	"sheetlens/internal/model"
	"sheetlens/internal/provider"
)

// Stats tallies provider calls for one run. Workers update it concurrently,
// so all fields are atomics; a snapshot is taken only after batches finish.
type Stats struct {
	attempted atomic.Int64
	succeeded atomic.Int64
	failed    atomic.Int64
	fellBack  atomic.Int64
}

func (s *Stats) add(attempted, succeeded, failed, fellBack int64) {
	s.attempted.Add(attempted)
	s.succeeded.Add(succeeded)
	s.failed.Add(failed)
	s.fellBack.Add(fellBack)
}

// Telemetry snapshots the counters into the record form.
func (s *Stats) Telemetry() model.Telemetry {
	return model.Telemetry{
		Attempted: s.attempted.Load(),
		Succeeded: s.succeeded.Load(),
		Failed:    s.failed.Load(),
		FellBack:  s.fellBack.Load(),
	}
}

// Orchestrator executes one analysis run's provider calls. Create a fresh
// instance per run: its stats are per-run state. The pacer may be shared
// across runs because spacing is a property of the provider instance.
type Orchestrator struct {
	provider provider.Provider
	fallback *provider.KeywordProvider
	pacer    *Pacer
	sink     events.Sink
	stats    Stats
}

// New creates an orchestrator for one run. The fallback answers any item
// whose provider call fails; it is required because substitution, not
// retry, is the failure policy.
func New(p provider.Provider, fallback *provider.KeywordProvider, pacer *Pacer, sink events.Sink) *Orchestrator {
	return &Orchestrator{
		provider: p,
		fallback: fallback,
		pacer:    pacer,
		sink:     events.OrNop(sink),
	}
}

// Telemetry returns the run's call accounting so far.
func (o *Orchestrator) Telemetry() model.Telemetry {
	return o.stats.Telemetry()
}

// ClassifyRisks grades every text, substituting the keyword classifier for
// failed calls. Results align with the input by index.
func (o *Orchestrator) ClassifyRisks(ctx context.Context, texts []string, workers int) []model.RiskLevel {
	results := make([]model.RiskLevel, len(texts))
	o.forEach(ctx, "risk", workers, len(texts),
		func(ctx context.Context, i int) error {
			level, err := o.provider.ClassifyRisk(ctx, texts[i])
			if err != nil {
				return err
			}
			results[i] = level
			return nil
		},
		func(i int) {
			results[i], _ = o.fallback.ClassifyRisk(context.Background(), texts[i])
		})
	return results
}

// ScoreSentiments rates every text in [-1,1], substituting the vocabulary
// scorer for failed calls.
func (o *Orchestrator) ScoreSentiments(ctx context.Context, texts []string, workers int) []float64 {
	results := make([]float64, len(texts))
	o.forEach(ctx, "sentiment", workers, len(texts),
		func(ctx context.Context, i int) error {
			score, err := o.provider.ScoreSentiment(ctx, texts[i])
			if err != nil {
				return err
			}
			results[i] = score
			return nil
		},
		func(i int) {
			results[i], _ = o.fallback.ScoreSentiment(context.Background(), texts[i])
		})
	return results
}

// GenerateMitigations writes one mitigation per finding. This pass runs
// only over findings that already exist, never over discarded Low items,
// and typically under a smaller worker cap: mitigation prompts are longer
// and more expensive than classification prompts.
func (o *Orchestrator) GenerateMitigations(ctx context.Context, findings []model.RiskFinding, workers int) []string {
	results := make([]string, len(findings))
	o.forEach(ctx, "mitigation", workers, len(findings),
		func(ctx context.Context, i int) error {
			m, err := o.provider.GenerateMitigation(ctx, findings[i].Description, findings[i].Level)
			if err != nil {
				return err
			}
			results[i] = m
			return nil
		},
		func(i int) {
			results[i], _ = o.fallback.GenerateMitigation(context.Background(), findings[i].Description, findings[i].Level)
		})
	return results
}

// GenerateSummary issues the single summary call, falling back to the
// deterministic summary when the provider fails. The call is still paced
// and counted like any other.
func (o *Orchestrator) GenerateSummary(ctx context.Context, rec *model.AnalysisRecord) string {
	o.stats.attempted.Add(1)

	if err := o.pacer.Wait(ctx); err == nil {
		if summary, err := o.provider.GenerateSummary(ctx, rec); err == nil {
			o.stats.succeeded.Add(1)
			return summary
		} else {
			o.stats.failed.Add(1)
			o.sink.CallFailed("summary", 0, err)
		}
	} else {
		o.stats.failed.Add(1)
		o.sink.CallFailed("summary", 0, err)
	}

	o.stats.fellBack.Add(1)
	o.sink.FellBack("summary", 0)
	summary, _ := o.fallback.GenerateSummary(context.Background(), rec)
	return summary
}

// forEach runs attempt for every index under a concurrency cap. Workers
// write into index-addressed slots, so no result collection needs a lock.
// When attempt fails, or the context dies before the item gets a slot,
// substitute fills the slot instead and the failure is tallied.
func (o *Orchestrator) forEach(ctx context.Context, op string, workers, n int, attempt func(ctx context.Context, i int) error, substitute func(i int)) {
	if n == 0 {
		return
	}
	if workers <= 0 {
		workers = 1
	}

	o.sink.BatchStarted(op, n)

	var attempted, succeeded, failed, fellBack atomic.Int64
	semaphore := make(chan struct{}, workers)
	var wg sync.WaitGroup

	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			attempted.Add(1)

			fail := func(err error) {
				failed.Add(1)
				o.sink.CallFailed(op, i, err)
				substitute(i)
				fellBack.Add(1)
				o.sink.FellBack(op, i)
			}

			// Checked separately: the select below picks at random
			// when the context is dead and a slot is free.
			if err := ctx.Err(); err != nil {
				fail(err)
				return
			}

			select {
			case semaphore <- struct{}{}:
			case <-ctx.Done():
				fail(ctx.Err())
				return
			}
			defer func() { <-semaphore }()

			if err := o.pacer.Wait(ctx); err != nil {
				fail(err)
				return
			}

			if err := attempt(ctx, i); err != nil {
				fail(err)
				return
			}
			succeeded.Add(1)
		}(i)
	}
	wg.Wait()

	o.stats.add(attempted.Load(), succeeded.Load(), failed.Load(), fellBack.Load())
	o.sink.BatchFinished(op, attempted.Load(), succeeded.Load(), failed.Load(), fellBack.Load())
}
