package model

// SemanticTheme is one comment cluster reported by the semantic service.
type SemanticTheme struct {
	ID             int      `json:"id"`
	Name           string   `json:"name"`
	Count          int      `json:"count"`
	Keywords       []string `json:"keywords,omitempty"`
	Representative string   `json:"representative,omitempty"`
	Samples        []string `json:"samples,omitempty"`
}

// OrganizationInsight is the semantic view of one organization's comments.
// Coherence measures how tightly the organization's comments cluster.
type OrganizationInsight struct {
	Organization string   `json:"organization"`
	Count        int      `json:"count"`
	Coherence    float64  `json:"coherence_score"`
	TopKeywords  []string `json:"top_keywords,omitempty"`
}

// SimilarPair links two comments the service found near-duplicates.
type SimilarPair struct {
	First      string  `json:"first"`
	Second     string  `json:"second"`
	Similarity float64 `json:"similarity"`
}

// SentimentDistribution describes how sentiment spreads across clusters.
type SentimentDistribution struct {
	Pattern  string  `json:"pattern,omitempty"`
	Variance float64 `json:"variance"`
}

// SemanticResult is the embedding service's full analysis payload, already
// computed remotely and consumed here as-is.
type SemanticResult struct {
	Themes        []SemanticTheme       `json:"themes,omitempty"`
	Organizations []OrganizationInsight `json:"organizations,omitempty"`
	SimilarPairs  []SimilarPair         `json:"similar_pairs,omitempty"`
	Sentiment     SentimentDistribution `json:"sentiment"`
	CommentCount  int                   `json:"comment_count"`
}
