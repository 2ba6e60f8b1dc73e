package analysis

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"sheetlens/internal/model"
)

// WorkbookAnalyzer runs one workbook through the full pipeline. The CLI
// supplies an implementation that includes fusion; tests supply stubs.
type WorkbookAnalyzer interface {
	AnalyzeWorkbook(ctx context.Context, path string) (*model.HybridResult, error)
}

// WorkbookAnalyzerFunc adapts a function to the WorkbookAnalyzer interface.
type WorkbookAnalyzerFunc func(ctx context.Context, path string) (*model.HybridResult, error)

// AnalyzeWorkbook calls f.
func (f WorkbookAnalyzerFunc) AnalyzeWorkbook(ctx context.Context, path string) (*model.HybridResult, error) {
	return f(ctx, path)
}

// BatchResult is the outcome for one workbook in a batch.
type BatchResult struct {
	Path   string
	Result *model.HybridResult
	Err    error
}

// BatchProcessor analyzes multiple workbooks concurrently. Workbook-level
// concurrency is bounded separately from the per-run classification workers;
// provider pacing spans all of them when the analyzer shares a pacer.
type BatchProcessor struct {
	analyzer    WorkbookAnalyzer
	concurrency int
}

// NewBatchProcessor creates a batch processor running at most concurrency
// workbooks at once.
func NewBatchProcessor(analyzer WorkbookAnalyzer, concurrency int) *BatchProcessor {
	if concurrency <= 0 {
		concurrency = 1
	}
	return &BatchProcessor{analyzer: analyzer, concurrency: concurrency}
}

// Process analyzes every path. Results keep the input order; a workbook that
// fails occupies its slot with the error rather than aborting the batch.
func (b *BatchProcessor) Process(ctx context.Context, paths []string) []BatchResult {
	results := make([]BatchResult, len(paths))
	semaphore := make(chan struct{}, b.concurrency)
	var wg sync.WaitGroup

	for i, path := range paths {
		wg.Add(1)
		go func(i int, path string) {
			defer wg.Done()
			semaphore <- struct{}{}
			defer func() { <-semaphore }()

			result, err := b.analyzer.AnalyzeWorkbook(ctx, path)
			results[i] = BatchResult{Path: path, Result: result, Err: err}
		}(i, path)
	}
	wg.Wait()
	return results
}

// ProcessFile reads workbook paths from a list file and analyzes them.
func (b *BatchProcessor) ProcessFile(ctx context.Context, listPath string) ([]BatchResult, error) {
	paths, err := ReadPathsFromFile(listPath)
	if err != nil {
		return nil, fmt.Errorf("read paths: %w", err)
	}
	return b.Process(ctx, paths), nil
}

// ReadPathsFromFile reads workbook paths, one per line. Blank lines and
// lines starting with # are skipped; duplicates are dropped.
func ReadPathsFromFile(listPath string) ([]string, error) {
	file, err := os.Open(listPath)
	if err != nil {
		return nil, fmt.Errorf("open file: %w", err)
	}
	defer func() { _ = file.Close() }()

	var paths []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		if !seen[line] {
			seen[line] = true
			paths = append(paths, line)
		}
	}
	if err := scanner.Err(); err != nil {
		return nil, fmt.Errorf("scan file: %w", err)
	}
	return paths, nil
}
