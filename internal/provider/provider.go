// Package provider abstracts the AI backends used for risk classification,
// sentiment scoring, and text generation. Four variants exist: openai,
// anthropic, ollama, and the zero-network keyword variant that doubles as
// the deterministic fallback.
package provider

import (
	"context"
	"fmt"
	"net/http"
	"time"

	"sheetlens/internal/model"
)

// Provider is one pluggable AI backend. All variants expose the same
// operation set; each AI-backed operation issues exactly one outbound
// request per invocation.
type Provider interface {
	// Name returns the provider name.
	Name() string

	// ClassifyRisk grades one comment. Callers must not assume success.
	ClassifyRisk(ctx context.Context, text string) (model.RiskLevel, error)

	// ScoreSentiment rates one comment in [-1,1]. Unparseable replies
	// fail rather than silently scoring 0.
	ScoreSentiment(ctx context.Context, text string) (float64, error)

	// ExtractIssues and ExtractBlockers are pure keyword filters over the
	// sampled texts. No network call, never fail.
	ExtractIssues(texts []string) []string
	ExtractBlockers(texts []string) []string

	// GenerateMitigation writes a short actionable recommendation.
	GenerateMitigation(ctx context.Context, issue string, level model.RiskLevel) (string, error)

	// GenerateSummary writes an executive summary of the record.
	GenerateSummary(ctx context.Context, rec *model.AnalysisRecord) (string, error)

	// IsAvailable checks whether the provider is configured and reachable.
	IsAvailable(ctx context.Context) bool

	// RequiresPacing reports whether calls need mandatory inter-call spacing.
	RequiresPacing() bool
}

// ErrorKind partitions provider failures. Every kind triggers the same
// fallback path; the kind survives for telemetry and logs.
type ErrorKind string

const (
	KindTransport ErrorKind = "transport"
	KindAuth      ErrorKind = "auth"
	KindQuota     ErrorKind = "quota"
	KindParse     ErrorKind = "parse"
)

// Error is the failure surface shared by all AI-backed operations.
type Error struct {
	Provider string
	Op       string
	Kind     ErrorKind
	Err      error
}

func (e *Error) Error() string {
	if e.Err == nil {
		return fmt.Sprintf("%s %s: %s failure", e.Provider, e.Op, e.Kind)
	}
	return fmt.Sprintf("%s %s: %s failure: %v", e.Provider, e.Op, e.Kind, e.Err)
}

func (e *Error) Unwrap() error { return e.Err }

// kindForStatus maps an HTTP status to its error kind.
func kindForStatus(status int) ErrorKind {
	switch status {
	case http.StatusUnauthorized, http.StatusForbidden:
		return KindAuth
	case http.StatusTooManyRequests:
		return KindQuota
	default:
		return KindTransport
	}
}

// Config holds provider construction settings.
type Config struct {
	Name           string // openai, anthropic, ollama, keyword
	Model          string
	APIKey         string
	BaseURL        string
	Timeout        time.Duration
	CallDelay      time.Duration // configured inter-call spacing, 0 = provider default
	MaxFilterTexts int           // texts sampled by the issue/blocker filters
}

// FromModel maps the application config onto provider settings.
func FromModel(cfg model.Config) Config {
	return Config{
		Name:           cfg.Provider.Name,
		Model:          cfg.Provider.Model,
		APIKey:         cfg.Provider.APIKey,
		BaseURL:        cfg.Provider.BaseURL,
		Timeout:        cfg.Provider.Timeout,
		CallDelay:      cfg.Provider.CallDelay,
		MaxFilterTexts: cfg.Analysis.MaxFilterTexts,
	}
}

const (
	defaultTimeout = 60 * time.Second

	// DefaultCallDelay spaces calls for providers that require pacing when
	// no explicit delay is configured.
	DefaultCallDelay = 500 * time.Millisecond
)

// PacingDelay resolves the effective inter-call delay for a provider: an
// explicit configured delay wins, otherwise pacing providers get the
// default and everything else runs unspaced.
func PacingDelay(p Provider, configured time.Duration) time.Duration {
	if configured > 0 {
		return configured
	}
	if p.RequiresPacing() {
		return DefaultCallDelay
	}
	return 0
}
