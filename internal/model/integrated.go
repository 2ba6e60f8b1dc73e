package model

// IntegratedEntity merges the contextual and semantic views of one entity.
// When both sides know the entity, both field sets are retained side by side.
type IntegratedEntity struct {
	Name string `json:"name"`

	HasContextual       bool      `json:"has_contextual"`
	ContextualSentiment float64   `json:"contextual_sentiment,omitempty"`
	ContextualComments  int       `json:"contextual_comments,omitempty"`
	ContextualRisk      RiskLevel `json:"contextual_risk,omitempty"`

	HasSemantic       bool     `json:"has_semantic"`
	SemanticCoherence float64  `json:"semantic_coherence,omitempty"`
	SemanticKeywords  []string `json:"semantic_keywords,omitempty"`
	SemanticComments  int      `json:"semantic_comments,omitempty"`
	MatchedTheme      string   `json:"matched_theme,omitempty"`

	RiskText string `json:"risk"` // concatenated risk signals, never empty
}

// IntegratedTheme is a semantic theme carried into the fused report.
type IntegratedTheme struct {
	Name           string   `json:"name"`
	Count          int      `json:"count"`
	Keywords       []string `json:"keywords,omitempty"`
	Representative string   `json:"representative,omitempty"`
}

// IntegratedReport is the fused output: entities sorted most negative first,
// themes sorted by mention count descending.
type IntegratedReport struct {
	Entities       []IntegratedEntity `json:"entities"`
	Themes         []IntegratedTheme  `json:"themes"`
	ContextualUsed bool               `json:"contextual_used"`
	SemanticUsed   bool               `json:"semantic_used"`
	Notes          []string           `json:"notes,omitempty"` // degradation notes
}

// HybridResult pairs the two pipeline outputs with their integrated merge.
// A side that failed is nil; the integrated report is always present.
type HybridResult struct {
	Contextual *AnalysisRecord  `json:"contextual,omitempty"`
	Semantic   *SemanticResult  `json:"semantic,omitempty"`
	Integrated IntegratedReport `json:"integrated"`
}
