// Package semantic consumes the embedding-clustering microservice. The
// service computes themes, per-organization coherence, and similar-comment
// pairs remotely; this client submits comments, maps the JSON envelope onto
// the model types, and reports any failure as ErrUnavailable so the fusion
// layer can treat the semantic side as absent rather than fatal.
package semantic

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"sort"
	"strings"
	"time"

	"sheetlens/internal/cache"
	"sheetlens/internal/model"
)

// ErrUnavailable covers every way the semantic service can fail: transport
// errors, non-2xx statuses, and malformed responses. Callers check it with
// errors.Is and degrade instead of aborting.
var ErrUnavailable = errors.New("semantic service unavailable")

// ErrNoInput reports that no comment carried an organization name, so there
// was nothing to submit.
var ErrNoInput = errors.New("no attributable comments to analyze")

const defaultTimeout = 30 * time.Second

// Client talks to the semantic analysis service over HTTP/JSON.
type Client struct {
	baseURL    string
	httpClient *http.Client
	store      cache.Cache // nil disables response caching
	cacheTTL   time.Duration
}

// NewClient creates a client for the service at baseURL. A non-nil store
// caches analyze responses so re-running the same workbook skips the
// clustering round trip; embeddings are deterministic for identical input.
func NewClient(baseURL string, timeout time.Duration, store cache.Cache, cacheTTL time.Duration) *Client {
	if timeout == 0 {
		timeout = defaultTimeout
	}
	return &Client{
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		httpClient: &http.Client{Timeout: timeout},
		store:      store,
		cacheTTL:   cacheTTL,
	}
}

type healthResponse struct {
	Status string `json:"status"`
}

// Health checks the service's liveness endpoint.
func (c *Client) Health(ctx context.Context) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/health", nil)
	if err != nil {
		return fmt.Errorf("%w: create request: %v", ErrUnavailable, err)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("%w: health returned status %d", ErrUnavailable, resp.StatusCode)
	}

	var health healthResponse
	if err := json.NewDecoder(resp.Body).Decode(&health); err != nil {
		return fmt.Errorf("%w: decode health: %v", ErrUnavailable, err)
	}
	if health.Status != "healthy" {
		return fmt.Errorf("%w: service reports status %q", ErrUnavailable, health.Status)
	}
	return nil
}

// Wire format of the analyze endpoint.
type analyzeRequest struct {
	Comments      []string `json:"comments"`
	Organizations []string `json:"organizations"`
}

type wireTheme struct {
	ID             int      `json:"theme_id"`
	Name           string   `json:"theme_name"`
	CommentCount   int      `json:"comment_count"`
	Keywords       []string `json:"keywords"`
	Representative string   `json:"representative_comment"`
	Samples        []string `json:"sample_comments"`
}

type wireOrgInsight struct {
	CommentCount int      `json:"comment_count"`
	Coherence    float64  `json:"coherence_score"`
	TopKeywords  []string `json:"top_keywords"`
}

type wirePair struct {
	Comment1   string  `json:"comment1"`
	Comment2   string  `json:"comment2"`
	Similarity float64 `json:"similarity"`
}

type wireDistribution struct {
	Pattern  string  `json:"pattern"`
	Variance float64 `json:"variance"`
}

type analyzeResponse struct {
	TotalComments int                       `json:"total_comments"`
	Themes        []wireTheme               `json:"themes"`
	Organizations map[string]wireOrgInsight `json:"organization_insights"`
	SimilarPairs  []wirePair                `json:"similar_comment_pairs"`
	Sentiment     wireDistribution          `json:"sentiment_distribution"`
	Error         string                    `json:"error"`
}

// Analyze submits the comments for clustering. Comments whose organization
// name is blank or whitespace are dropped before submission: the service
// attributes every theme and insight to an organization, so unattributable
// comments would only pollute the clusters.
func (c *Client) Analyze(ctx context.Context, comments []model.CommentItem) (*model.SemanticResult, error) {
	var texts, orgs []string
	for _, item := range comments {
		org := strings.TrimSpace(item.RowContext["Organization Name"])
		if org == "" {
			continue
		}
		texts = append(texts, item.Text)
		orgs = append(orgs, org)
	}
	if len(texts) == 0 {
		return nil, ErrNoInput
	}

	body, err := json.Marshal(analyzeRequest{Comments: texts, Organizations: orgs})
	if err != nil {
		return nil, fmt.Errorf("%w: marshal request: %v", ErrUnavailable, err)
	}

	key := cache.Key("semantic", "analyze", string(body))
	if c.store != nil {
		if data, ok := c.store.Get(key); ok {
			var cached model.SemanticResult
			if err := json.Unmarshal(data, &cached); err == nil {
				return &cached, nil
			}
		}
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/analyze", bytes.NewReader(body))
	if err != nil {
		return nil, fmt.Errorf("%w: create request: %v", ErrUnavailable, err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	defer func() { _ = resp.Body.Close() }()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("%w: read response: %v", ErrUnavailable, err)
	}

	if resp.StatusCode != http.StatusOK {
		var envelope analyzeResponse
		if err := json.Unmarshal(respBody, &envelope); err == nil && envelope.Error != "" {
			return nil, fmt.Errorf("%w: status %d: %s", ErrUnavailable, resp.StatusCode, envelope.Error)
		}
		return nil, fmt.Errorf("%w: status %d", ErrUnavailable, resp.StatusCode)
	}

	var envelope analyzeResponse
	if err := json.Unmarshal(respBody, &envelope); err != nil {
		return nil, fmt.Errorf("%w: decode response: %v", ErrUnavailable, err)
	}

	result := convert(&envelope)
	if c.store != nil {
		if data, err := json.Marshal(result); err == nil {
			_ = c.store.Set(key, data, c.cacheTTL)
		}
	}
	return result, nil
}

// convert maps the wire envelope onto the model types. The organizations
// map is flattened into a name-sorted slice so downstream output is stable.
func convert(envelope *analyzeResponse) *model.SemanticResult {
	result := &model.SemanticResult{
		CommentCount: envelope.TotalComments,
		Sentiment: model.SentimentDistribution{
			Pattern:  envelope.Sentiment.Pattern,
			Variance: envelope.Sentiment.Variance,
		},
	}

	for _, t := range envelope.Themes {
		result.Themes = append(result.Themes, model.SemanticTheme{
			ID:             t.ID,
			Name:           t.Name,
			Count:          t.CommentCount,
			Keywords:       t.Keywords,
			Representative: t.Representative,
			Samples:        t.Samples,
		})
	}

	names := make([]string, 0, len(envelope.Organizations))
	for name := range envelope.Organizations {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		insight := envelope.Organizations[name]
		result.Organizations = append(result.Organizations, model.OrganizationInsight{
			Organization: name,
			Count:        insight.CommentCount,
			Coherence:    insight.Coherence,
			TopKeywords:  insight.TopKeywords,
		})
	}

	for _, p := range envelope.SimilarPairs {
		result.SimilarPairs = append(result.SimilarPairs, model.SimilarPair{
			First:      p.Comment1,
			Second:     p.Comment2,
			Similarity: p.Similarity,
		})
	}
	return result
}
