package sitesearch

import (
	"go.uber.org/zap"

	"github.com/kailas-cloud/sitesearch/internal/domain/category"
	"github.com/kailas-cloud/sitesearch/internal/domain/search/options"
	"github.com/kailas-cloud/sitesearch/internal/domain/search/weights"
)

// Weights are the ranking tunables.
type Weights = weights.Weights

// DefaultWeights returns the stock tunables.
func DefaultWeights() Weights { return weights.Default() }

// Option configures an Engine.
type Option func(*engineConfig)

type engineConfig struct {
	weights weights.Weights
	logger  *zap.Logger
}

func newEngineConfig(opts []Option) engineConfig {
	cfg := engineConfig{weights: weights.Default(), logger: zap.NewNop()}
	for _, o := range opts {
		o(&cfg)
	}
	return cfg
}

// WithWeights overrides the ranking tunables.
func WithWeights(w Weights) Option {
	return func(c *engineConfig) {
		c.weights = w
	}
}

// WithLogger sets the logger. Default discards.
func WithLogger(l *zap.Logger) Option {
	return func(c *engineConfig) {
		if l != nil {
			c.logger = l
		}
	}
}

// SearchOption configures one Search call.
type SearchOption func(*options.Options)

// InCategories restricts results to the given tags. Unknown tags are ignored;
// if every tag is unknown the search matches nothing.
func InCategories(names ...string) SearchOption {
	return func(o *options.Options) {
		if len(names) == 0 {
			return
		}
		cats := make([]category.Category, 0, len(names))
		for _, n := range names {
			if c, err := category.Parse(n); err == nil {
				cats = append(cats, c)
			}
		}
		if len(cats) == 0 {
			// no document carries the empty tag
			cats = append(cats, category.Category(""))
		}
		o.Categories = cats
	}
}

// Limit caps the number of results. n <= 0 means 20.
func Limit(n int) SearchOption {
	return func(o *options.Options) { o.Limit = n }
}

// IncludeContent also scores the body text.
func IncludeContent() SearchOption {
	return func(o *options.Options) { o.IncludeContent = true }
}

// Fuzzy enables the misspelling fallback for documents without exact matches.
func Fuzzy() SearchOption {
	return func(o *options.Options) { o.FuzzyMatch = true }
}
