package provider

import (
	"context"
	"strconv"
	"time"

	"sheetlens/internal/cache"
	"sheetlens/internal/model"
)

// CachedProvider memoizes classification and sentiment replies so duplicate
// comments within a run are not re-billed. Generation and filter operations
// pass through untouched, as do failures: only successes are cached.
type CachedProvider struct {
	Provider
	store cache.Cache
	ttl   time.Duration
}

// Cached wraps a provider with response memoization.
func Cached(p Provider, store cache.Cache, ttl time.Duration) *CachedProvider {
	return &CachedProvider{Provider: p, store: store, ttl: ttl}
}

func (c *CachedProvider) ClassifyRisk(ctx context.Context, text string) (model.RiskLevel, error) {
	key := cache.Key(c.Name(), "risk", text)
	if data, ok := c.store.Get(key); ok {
		return model.ParseRiskLevel(string(data)), nil
	}

	level, err := c.Provider.ClassifyRisk(ctx, text)
	if err != nil {
		return level, err
	}
	_ = c.store.Set(key, []byte(level.String()), c.ttl)
	return level, nil
}

func (c *CachedProvider) ScoreSentiment(ctx context.Context, text string) (float64, error) {
	key := cache.Key(c.Name(), "sentiment", text)
	if data, ok := c.store.Get(key); ok {
		if v, err := strconv.ParseFloat(string(data), 64); err == nil {
			return v, nil
		}
	}

	score, err := c.Provider.ScoreSentiment(ctx, text)
	if err != nil {
		return score, err
	}
	_ = c.store.Set(key, []byte(strconv.FormatFloat(score, 'f', -1, 64)), c.ttl)
	return score, nil
}
