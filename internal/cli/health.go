package cli

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"sheetlens/internal/provider"
	"sheetlens/internal/semantic"
)

var healthTimeout time.Duration

// healthCmd represents the health command
var healthCmd = &cobra.Command{
	Use:   "health",
	Short: "Check provider and semantic service availability",
	Long: `Health probes the configured AI provider and the semantic clustering
service and reports whether each is reachable. The keyword provider is
always available; a degraded semantic service does not prevent analysis,
it only disables the semantic side.

Example:
  sheetlens health
  sheetlens health --provider ollama
  sheetlens health --semantic-url http://localhost:8000`,
	RunE: runHealth,
}

func init() {
	rootCmd.AddCommand(healthCmd)

	healthCmd.Flags().StringVar(&providerName, "provider", "", "AI provider (openai, anthropic, ollama, keyword)")
	healthCmd.Flags().StringVar(&providerModel, "model", "", "provider model name")
	healthCmd.Flags().StringVar(&semanticURL, "semantic-url", "", "semantic service base URL (overrides config)")
	healthCmd.Flags().BoolVar(&noSemantic, "no-semantic", false, "skip the semantic service check")
	healthCmd.Flags().DurationVar(&healthTimeout, "timeout", 15*time.Second, "timeout for the health probes")
}

func runHealth(cmd *cobra.Command, args []string) error {
	ctx, cancel := context.WithTimeout(context.Background(), healthTimeout)
	defer cancel()

	cfg := loadConfig()
	applyAnalysisFlags(cmd, &cfg)
	if err := applyProviderEnv(&cfg); err != nil {
		return err
	}

	healthy := true

	p, err := provider.New(provider.FromModel(cfg))
	if err != nil {
		return err
	}
	if p.IsAvailable(ctx) {
		fmt.Fprintf(os.Stderr, "✓ provider %s: available\n", p.Name())
	} else {
		healthy = false
		fmt.Fprintf(os.Stderr, "✗ provider %s: unavailable\n", p.Name())
	}

	if cfg.Semantic.Enabled {
		client := semantic.NewClient(cfg.Semantic.BaseURL, cfg.Semantic.Timeout, nil, 0)
		if err := client.Health(ctx); err != nil {
			healthy = false
			fmt.Fprintf(os.Stderr, "✗ semantic service %s: %v\n", cfg.Semantic.BaseURL, err)
		} else {
			fmt.Fprintf(os.Stderr, "✓ semantic service %s: healthy\n", cfg.Semantic.BaseURL)
		}
	} else {
		fmt.Fprintf(os.Stderr, "- semantic service: disabled\n")
	}

	if !healthy {
		return fmt.Errorf("one or more services are unavailable")
	}
	return nil
}
