// Package weights holds the scoring tunables of the search engine.
//
// The defaults are empirically chosen; deployments can override every value
// through configuration and should validate changes against real query logs.
package weights

import (
	"fmt"

	"github.com/kailas-cloud/sitesearch/internal/domain"
)

// Weights are per-field match weights and matcher thresholds.
// Every field weight is multiplied by the document priority when applied.
type Weights struct {
	TitleExact       float64
	TitleToken       float64
	DescriptionExact float64
	DescriptionToken float64
	KeywordExact     float64
	KeywordToken     float64
	ContentExact     float64
	ContentToken     float64
	Fuzzy            float64

	// FuzzyThreshold is the similarity a fuzzy pair must strictly exceed.
	FuzzyThreshold float64
	// MinTokenLength drops query tokens shorter than this many runes.
	MinTokenLength int
	// FuzzyMinLength is the minimum rune length of both words in a fuzzy pair.
	FuzzyMinLength int
	// SuggestPrefixLength is how many leading query runes candidates must share.
	SuggestPrefixLength int
	// SuggestMinLength is the minimum rune length of a suggestion.
	SuggestMinLength int
}

// Default returns the stock tunables.
func Default() Weights {
	return Weights{
		TitleExact:          10,
		TitleToken:          5,
		DescriptionExact:    5,
		DescriptionToken:    2,
		KeywordExact:        8,
		KeywordToken:        3,
		ContentExact:        3,
		ContentToken:        1,
		Fuzzy:               1,
		FuzzyThreshold:      0.7,
		MinTokenLength:      3,
		FuzzyMinLength:      4,
		SuggestPrefixLength: 3,
		SuggestMinLength:    4,
	}
}

// Validate checks the tunables for correctness.
func (w Weights) Validate() error {
	fields := []struct {
		name string
		v    float64
	}{
		{"title_exact", w.TitleExact},
		{"title_token", w.TitleToken},
		{"description_exact", w.DescriptionExact},
		{"description_token", w.DescriptionToken},
		{"keyword_exact", w.KeywordExact},
		{"keyword_token", w.KeywordToken},
		{"content_exact", w.ContentExact},
		{"content_token", w.ContentToken},
		{"fuzzy", w.Fuzzy},
	}
	for _, f := range fields {
		if f.v < 0 {
			return fmt.Errorf("%w: weight %s must be non-negative, got %g", domain.ErrInvalidOptions, f.name, f.v)
		}
	}
	if w.FuzzyThreshold < 0 || w.FuzzyThreshold >= 1 {
		return fmt.Errorf("%w: fuzzy_threshold must be in [0, 1), got %g", domain.ErrInvalidOptions, w.FuzzyThreshold)
	}
	lengths := []struct {
		name string
		v    int
	}{
		{"min_token_length", w.MinTokenLength},
		{"fuzzy_min_length", w.FuzzyMinLength},
		{"suggest_prefix_length", w.SuggestPrefixLength},
		{"suggest_min_length", w.SuggestMinLength},
	}
	for _, l := range lengths {
		if l.v < 1 {
			return fmt.Errorf("%w: %s must be at least 1, got %d", domain.ErrInvalidOptions, l.name, l.v)
		}
	}
	return nil
}
