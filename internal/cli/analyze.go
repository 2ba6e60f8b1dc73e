package cli

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"sheetlens/internal/analysis"
	"sheetlens/internal/cache"
	"sheetlens/internal/events"
	"sheetlens/internal/fusion"
	"sheetlens/internal/ingest"
	"sheetlens/internal/model"
	"sheetlens/internal/provider"
	"sheetlens/internal/report"
	"sheetlens/internal/semantic"
	"sheetlens/internal/store"
)

var (
	providerName    string
	providerModel   string
	outJSON         string
	outMD           string
	analyzeTimeout  time.Duration
	fastSentiment   bool
	dynamicKeywords bool
	semanticURL     string
	noSemantic      bool
	noCache         bool
	dbPath          string
	callDelay       time.Duration
	maxRiskComments int
)

// analyzeCmd represents the analyze command
var analyzeCmd = &cobra.Command{
	Use:   "analyze <workbook.xlsx>",
	Short: "Analyze a spreadsheet workbook and generate a report",
	Long: `Analyze extracts commentary and questionnaire answers from a workbook and:
- Classifies risk in free-text comments, with mitigations
- Scores sentiment and rolls it up per organization
- Computes per-deliverable progress from yes/no answers
- Surfaces issues, blockers, and recommendations
- Merges in semantic themes when the clustering service is reachable

Example:
  sheetlens analyze grants.xlsx
  sheetlens analyze grants.xlsx --provider openai --model gpt-4o-mini
  sheetlens analyze grants.xlsx --json report.json --md report.md
  sheetlens analyze grants.xlsx --no-semantic --fast-sentiment`,
	Args: cobra.ExactArgs(1),
	RunE: runAnalyze,
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	// Provider flags
	analyzeCmd.Flags().StringVar(&providerName, "provider", "", "AI provider (openai, anthropic, ollama, keyword)")
	analyzeCmd.Flags().StringVar(&providerModel, "model", "", "provider model name")
	analyzeCmd.Flags().DurationVar(&callDelay, "call-delay", 0, "minimum delay between provider calls")

	// Output flags
	analyzeCmd.Flags().StringVar(&outJSON, "json", "report.json", "output JSON path")
	analyzeCmd.Flags().StringVar(&outMD, "md", "", "output Markdown path (optional)")

	// Analysis flags
	analyzeCmd.Flags().DurationVar(&analyzeTimeout, "timeout", 5*time.Minute, "overall analysis timeout")
	analyzeCmd.Flags().BoolVar(&fastSentiment, "fast-sentiment", false, "score sentiment locally without provider calls")
	analyzeCmd.Flags().BoolVar(&dynamicKeywords, "dynamic-keywords", false, "learn a per-dataset risk vocabulary before classifying")
	analyzeCmd.Flags().IntVar(&maxRiskComments, "max-risk-comments", 0, "cap on comments sent for risk classification (0 = default)")

	// Semantic service flags
	analyzeCmd.Flags().StringVar(&semanticURL, "semantic-url", "", "semantic service base URL (overrides config)")
	analyzeCmd.Flags().BoolVar(&noSemantic, "no-semantic", false, "skip the semantic analysis side")

	// Storage flags
	analyzeCmd.Flags().BoolVar(&noCache, "no-cache", false, "disable response caching")
	analyzeCmd.Flags().StringVar(&dbPath, "db", "", "sqlite database for persisting runs (optional)")
}

func runAnalyze(cmd *cobra.Command, args []string) error {
	path := args[0]
	ctx, cancel := context.WithTimeout(context.Background(), analyzeTimeout)
	defer cancel()

	cfg := loadConfig()
	applyAnalysisFlags(cmd, &cfg)
	if err := applyProviderEnv(&cfg); err != nil {
		return err
	}

	if verbose {
		fmt.Fprintf(os.Stderr, "Analyzing: %s\n", path)
		fmt.Fprintf(os.Stderr, "Provider: %s\n", cfg.Provider.Name)
		fmt.Fprintf(os.Stderr, "Semantic: %v\n", cfg.Semantic.Enabled)
		fmt.Fprintf(os.Stderr, "Cache: %v\n", cfg.Cache.Enabled)
		fmt.Fprintln(os.Stderr)
	}

	analyze, err := newWorkbookAnalyzer(cfg, events.NewLogSink(nil))
	if err != nil {
		return err
	}

	result, err := analyze(ctx, path)
	if err != nil {
		return fmt.Errorf("analysis failed: %w", err)
	}

	if verbose && result.Contextual != nil {
		rec := result.Contextual
		fmt.Fprintf(os.Stderr, "✓ Extracted %d comments and %d questionnaire answers\n", rec.CommentCount, rec.QuestionCount)
		fmt.Fprintf(os.Stderr, "✓ Classified %d risk findings\n", len(rec.Findings))
		fmt.Fprintf(os.Stderr, "✓ Overall completion: %.2f%%\n", rec.OverallCompletion)
		fmt.Fprintln(os.Stderr)
	}

	if cfg.Store.Path != "" {
		if err := persistRun(cfg.Store.Path, path, result); err != nil {
			fmt.Fprintf(os.Stderr, "Warning: run not persisted: %v\n", err)
		} else if verbose {
			fmt.Fprintf(os.Stderr, "✓ Stored run in %s\n", cfg.Store.Path)
		}
	}

	return renderResult(cmd, result, cfg)
}

// applyAnalysisFlags layers explicit flags over the loaded configuration.
func applyAnalysisFlags(cmd *cobra.Command, cfg *model.Config) {
	if providerName != "" {
		cfg.Provider.Name = providerName
	}
	if providerModel != "" {
		cfg.Provider.Model = providerModel
	}
	if cmd.Flags().Changed("call-delay") {
		cfg.Provider.CallDelay = callDelay
	}
	if cmd.Flags().Changed("max-risk-comments") {
		cfg.Analysis.MaxRiskComments = maxRiskComments
	}
	if fastSentiment {
		cfg.Analysis.FastSentiment = true
	}
	if dynamicKeywords {
		cfg.Analysis.DynamicKeywords = true
	}
	if semanticURL != "" {
		cfg.Semantic.BaseURL = semanticURL
	}
	if noSemantic {
		cfg.Semantic.Enabled = false
	}
	if noCache {
		cfg.Cache.Enabled = false
	}
	if dbPath != "" {
		cfg.Store.Path = dbPath
	}
}

// applyProviderEnv resolves provider credentials from the environment.
func applyProviderEnv(cfg *model.Config) error {
	switch cfg.Provider.Name {
	case "openai":
		if cfg.Provider.APIKey == "" {
			cfg.Provider.APIKey = os.Getenv("OPENAI_API_KEY")
		}
		if cfg.Provider.APIKey == "" {
			return fmt.Errorf("OPENAI_API_KEY environment variable not set")
		}
	case "anthropic", "claude":
		if cfg.Provider.APIKey == "" {
			cfg.Provider.APIKey = os.Getenv("ANTHROPIC_API_KEY")
		}
		if cfg.Provider.APIKey == "" {
			return fmt.Errorf("ANTHROPIC_API_KEY environment variable not set")
		}
	case "ollama":
		// Ollama doesn't need an API key
		if baseURL := os.Getenv("OLLAMA_BASE_URL"); baseURL != "" && cfg.Provider.BaseURL == "" {
			cfg.Provider.BaseURL = baseURL
		}
	}
	return nil
}

// newWorkbookAnalyzer wires extraction, the contextual analyzer, and the
// semantic client into a single hybrid run per workbook. The returned
// function is safe for concurrent use by the batch processor.
func newWorkbookAnalyzer(cfg model.Config, sink events.Sink) (analysis.WorkbookAnalyzerFunc, error) {
	base, err := provider.New(provider.FromModel(cfg))
	if err != nil {
		return nil, err
	}

	var cacheStore cache.Cache
	prov := base
	if cfg.Cache.Enabled {
		cacheStore = newCacheStore(cfg)
		prov = provider.Cached(base, cacheStore, cfg.Cache.TTL)
	}

	extractor := ingest.NewExtractor()
	analyzer := analysis.New(cfg, prov, sink)
	engine := fusion.NewEngine(sink)

	var sem *semantic.Client
	if cfg.Semantic.Enabled {
		sem = semantic.NewClient(cfg.Semantic.BaseURL, cfg.Semantic.Timeout, cacheStore, cfg.Cache.TTL)
	}

	return func(ctx context.Context, path string) (*model.HybridResult, error) {
		ext, err := extractor.ExtractFile(path)
		if err != nil {
			return nil, err
		}

		contextual := fusion.ContextualFunc(func(ctx context.Context) (*model.AnalysisRecord, error) {
			return analyzer.Analyze(ctx, ext)
		})
		var semSource fusion.SemanticSource
		if sem != nil {
			semSource = fusion.SemanticFunc(func(ctx context.Context) (*model.SemanticResult, error) {
				return sem.Analyze(ctx, ext.Comments)
			})
		}
		return engine.Run(ctx, contextual, semSource)
	}, nil
}

// newCacheStore builds the response cache. With a directory configured the
// cache is layered so semantic replies survive across runs.
func newCacheStore(cfg model.Config) cache.Cache {
	if cfg.Cache.Dir != "" {
		return cache.NewLayeredCache(cfg.Cache.TTL, cfg.Cache.Dir, cfg.Cache.TTL)
	}
	return cache.NewMemoryCache(cfg.Cache.TTL, cfg.Cache.TTL)
}

// persistRun stores the result. Persistence failures never fail the run.
func persistRun(dbPath, workbook string, result *model.HybridResult) error {
	st, err := store.Open(dbPath)
	if err != nil {
		return err
	}
	defer func() { _ = st.Close() }()

	info := model.FileInfo{Name: filepath.Base(workbook)}
	runID := uuid.NewString()
	provName := ""
	if result.Contextual != nil {
		info = result.Contextual.File
		runID = result.Contextual.RunID
		provName = result.Contextual.Provider
	}

	fileID, err := st.SaveFile(info)
	if err != nil {
		return err
	}
	return st.SaveRun(fileID, runID, provName, result)
}

// renderResult writes the configured outputs and prints the console summary.
func renderResult(cmd *cobra.Command, result *model.HybridResult, cfg model.Config) error {
	jsonPath := outJSON
	if !cmd.Flags().Changed("json") && cfg.Output.JSON != "" {
		jsonPath = cfg.Output.JSON
	}
	mdPath := outMD
	if mdPath == "" {
		mdPath = cfg.Output.Markdown
	}

	renderer := report.NewRenderer(nil)
	if jsonPath != "" {
		if err := renderer.RenderJSON(result, jsonPath); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", jsonPath)
		}
	}
	if mdPath != "" {
		if err := renderer.RenderMarkdown(result, mdPath); err != nil {
			return fmt.Errorf("render failed: %w", err)
		}
		if verbose {
			fmt.Fprintf(os.Stderr, "✓ Wrote %s\n", mdPath)
		}
	}
	renderer.RenderSummary(result)
	return nil
}
