package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"sheetlens/internal/analysis"
	"sheetlens/internal/events"
	"sheetlens/internal/report"
)

var (
	concurrency  int
	outputDir    string
	batchTimeout time.Duration
)

// batchCmd represents the batch command
var batchCmd = &cobra.Command{
	Use:   "batch <file>",
	Short: "Analyze multiple workbooks from a list in parallel",
	Long: `Batch processes multiple workbooks concurrently:
- Read workbook paths from an input file (one per line, # starts a comment)
- Analyze workbooks in parallel with a configurable worker count
- One workbook failing never aborts the others
- Generate individual JSON and Markdown reports per workbook

Example:
  sheetlens batch workbooks.txt
  sheetlens batch workbooks.txt --concurrency 4 --output-dir ./reports
  sheetlens batch workbooks.txt --provider ollama --no-semantic`,
	Args: cobra.ExactArgs(1),
	RunE: runBatch,
}

func init() {
	rootCmd.AddCommand(batchCmd)

	// Concurrency flags
	batchCmd.Flags().IntVar(&concurrency, "concurrency", runtime.NumCPU(), "number of concurrent workers")
	batchCmd.Flags().StringVar(&outputDir, "output-dir", "./sheetlens-reports", "output directory for reports")
	batchCmd.Flags().DurationVar(&batchTimeout, "timeout", 30*time.Minute, "total timeout for batch processing")

	// Shared analysis flags
	batchCmd.Flags().StringVar(&providerName, "provider", "", "AI provider (openai, anthropic, ollama, keyword)")
	batchCmd.Flags().StringVar(&providerModel, "model", "", "provider model name")
	batchCmd.Flags().DurationVar(&callDelay, "call-delay", 0, "minimum delay between provider calls")
	batchCmd.Flags().BoolVar(&fastSentiment, "fast-sentiment", false, "score sentiment locally without provider calls")
	batchCmd.Flags().BoolVar(&dynamicKeywords, "dynamic-keywords", false, "learn a per-dataset risk vocabulary before classifying")
	batchCmd.Flags().StringVar(&semanticURL, "semantic-url", "", "semantic service base URL (overrides config)")
	batchCmd.Flags().BoolVar(&noSemantic, "no-semantic", false, "skip the semantic analysis side")
	batchCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable response caching")
	batchCmd.Flags().StringVar(&dbPath, "db", "", "sqlite database for persisting runs (optional)")
}

func runBatch(cmd *cobra.Command, args []string) error {
	file := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), batchTimeout)
	defer cancel()

	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Sheetlens Batch Processing\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Input file:   %s\n", file)
	fmt.Fprintf(os.Stderr, "  Workers:      %d\n", concurrency)
	fmt.Fprintf(os.Stderr, "  Output dir:   %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "  Timeout:      %v\n", batchTimeout)

	cfg := loadConfig()
	applyAnalysisFlags(cmd, &cfg)
	if err := applyProviderEnv(&cfg); err != nil {
		return err
	}
	fmt.Fprintf(os.Stderr, "  Provider:     %s\n", cfg.Provider.Name)
	fmt.Fprintf(os.Stderr, "\n")

	// Create output directory
	if err := os.MkdirAll(outputDir, 0o755); err != nil {
		return fmt.Errorf("create output directory: %w", err)
	}

	analyze, err := newWorkbookAnalyzer(cfg, events.NewLogSink(nil))
	if err != nil {
		return err
	}
	processor := analysis.NewBatchProcessor(analyze, concurrency)

	fmt.Fprintf(os.Stderr, "⚙️  Processing workbooks with %d workers...\n\n", concurrency)
	results, err := processor.ProcessFile(ctx, file)
	if err != nil {
		return fmt.Errorf("process file: %w", err)
	}

	renderer := report.NewRenderer(nil)
	successCount := 0
	failureCount := 0

	for _, result := range results {
		if result.Err != nil {
			failureCount++
			fmt.Fprintf(os.Stderr, "✗ %s: %v\n", result.Path, result.Err)
			continue
		}
		successCount++

		// Generate output file names
		slug := slugify(result.Path)
		jsonPath := filepath.Join(outputDir, slug+".json")
		mdPath := filepath.Join(outputDir, slug+".md")

		if err := renderer.RenderJSON(result.Result, jsonPath); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write JSON: %v\n", result.Path, err)
			continue
		}
		if err := renderer.RenderMarkdown(result.Result, mdPath); err != nil {
			fmt.Fprintf(os.Stderr, "✗ %s: failed to write Markdown: %v\n", result.Path, err)
			continue
		}

		if cfg.Store.Path != "" {
			if err := persistRun(cfg.Store.Path, result.Path, result.Result); err != nil {
				fmt.Fprintf(os.Stderr, "  %s: run not persisted: %v\n", result.Path, err)
			}
		}

		if rec := result.Result.Contextual; rec != nil {
			fmt.Fprintf(os.Stderr, "✓ %s (%d findings, %.2f%% complete)\n",
				filepath.Base(result.Path), len(rec.Findings), rec.OverallCompletion)
		} else {
			fmt.Fprintf(os.Stderr, "✓ %s (semantic only)\n", filepath.Base(result.Path))
		}
	}

	// Summary
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "  Batch Complete\n")
	fmt.Fprintf(os.Stderr, "═══════════════════════════════════════════════════════════\n")
	fmt.Fprintf(os.Stderr, "\n")
	fmt.Fprintf(os.Stderr, "  Total:     %d workbooks\n", len(results))
	fmt.Fprintf(os.Stderr, "  Success:   %d\n", successCount)
	fmt.Fprintf(os.Stderr, "  Failures:  %d\n", failureCount)
	fmt.Fprintf(os.Stderr, "  Output:    %s\n", outputDir)
	fmt.Fprintf(os.Stderr, "\n")

	return nil
}

// slugify derives a report file stem from a workbook path.
func slugify(path string) string {
	name := filepath.Base(path)
	name = strings.TrimSuffix(name, filepath.Ext(name))

	var b strings.Builder
	for _, r := range name {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9', r == '-', r == '_':
			b.WriteRune(r)
		case r >= 'A' && r <= 'Z':
			b.WriteRune(r + ('a' - 'A'))
		default:
			b.WriteRune('_')
		}
	}

	s := b.String()
	if len(s) > 100 {
		s = s[:100]
	}
	if s == "" {
		s = "report"
	}
	return s
}
