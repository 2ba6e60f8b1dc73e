package model

import "time"

// Config carries every tunable the analysis core consumes. The CLI fills it
// from flags, environment, and the optional config file; library callers can
// start from DefaultConfig and override fields directly.
type Config struct {
	Provider ProviderConfig `mapstructure:"provider" yaml:"provider"`
	Analysis AnalysisConfig `mapstructure:"analysis" yaml:"analysis"`
	Semantic SemanticConfig `mapstructure:"semantic" yaml:"semantic"`
	Cache    CacheConfig    `mapstructure:"cache" yaml:"cache"`
	Store    StoreConfig    `mapstructure:"store" yaml:"store"`
	Output   OutputConfig   `mapstructure:"output" yaml:"output"`
}

// ProviderConfig selects and tunes the AI backend.
type ProviderConfig struct {
	Name      string        `mapstructure:"name" yaml:"name"` // openai, anthropic, ollama, keyword
	Model     string        `mapstructure:"model" yaml:"model,omitempty"`
	APIKey    string        `mapstructure:"api_key" yaml:"api_key,omitempty"`
	BaseURL   string        `mapstructure:"base_url" yaml:"base_url,omitempty"`
	CallDelay time.Duration `mapstructure:"call_delay" yaml:"call_delay"` // minimum spacing between AI calls
	Timeout   time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// AnalysisConfig bounds the orchestrated passes.
type AnalysisConfig struct {
	MaxRiskComments   int  `mapstructure:"max_risk_comments" yaml:"max_risk_comments"`
	MaxFilterTexts    int  `mapstructure:"max_filter_texts" yaml:"max_filter_texts"`
	ClassifyWorkers   int  `mapstructure:"classify_workers" yaml:"classify_workers"`
	MitigationWorkers int  `mapstructure:"mitigation_workers" yaml:"mitigation_workers"`
	FastSentiment     bool `mapstructure:"fast_sentiment" yaml:"fast_sentiment"`     // skip AI for sentiment
	DynamicKeywords   bool `mapstructure:"dynamic_keywords" yaml:"dynamic_keywords"` // learn per-dataset vocabulary
	MinTermFrequency  int  `mapstructure:"min_term_frequency" yaml:"min_term_frequency"`
}

// SemanticConfig locates the embedding-clustering service.
type SemanticConfig struct {
	Enabled bool          `mapstructure:"enabled" yaml:"enabled"`
	BaseURL string        `mapstructure:"base_url" yaml:"base_url"`
	Timeout time.Duration `mapstructure:"timeout" yaml:"timeout"`
}

// CacheConfig controls provider response memoization and, when Dir is set,
// on-disk caching of semantic service responses across runs.
type CacheConfig struct {
	Enabled bool          `mapstructure:"enabled" yaml:"enabled"`
	TTL     time.Duration `mapstructure:"ttl" yaml:"ttl"`
	Dir     string        `mapstructure:"dir" yaml:"dir,omitempty"`
}

// StoreConfig locates the sqlite database. An empty path disables persistence.
type StoreConfig struct {
	Path string `mapstructure:"path" yaml:"path,omitempty"`
}

// OutputConfig names optional report destinations.
type OutputConfig struct {
	JSON     string `mapstructure:"json" yaml:"json,omitempty"`
	Markdown string `mapstructure:"markdown" yaml:"markdown,omitempty"`
}

// DefaultConfig returns the settings used when nothing is configured.
// The keyword provider is the default so a bare install works offline.
func DefaultConfig() Config {
	return Config{
		Provider: ProviderConfig{
			Name:    "keyword",
			Timeout: 60 * time.Second,
		},
		Analysis: AnalysisConfig{
			MaxRiskComments:   50,
			MaxFilterTexts:    20,
			ClassifyWorkers:   5,
			MitigationWorkers: 3,
			MinTermFrequency:  2,
		},
		Semantic: SemanticConfig{
			Enabled: true,
			BaseURL: "http://localhost:8000",
			Timeout: 30 * time.Second,
		},
		Cache: CacheConfig{
			Enabled: true,
			TTL:     30 * time.Minute,
		},
	}
}
