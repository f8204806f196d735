package options

import (
	"github.com/kailas-cloud/sitesearch/internal/domain/category"
)

// Search parameter limits.
const (
	// DefaultLimit is the result cap used when none is given.
	DefaultLimit = 20
	// MaxLimit bounds limits accepted from untrusted callers (HTTP, CLI).
	MaxLimit = 100
	// DefaultSuggestLimit is the suggestion cap used when none is given.
	DefaultSuggestLimit = 5
	// MaxQueryLength is the maximum accepted query length in bytes.
	MaxQueryLength = 1024
)

// Options is the per-call search configuration.
type Options struct {
	// Categories restricts results to these tags. Empty means all categories.
	Categories []category.Category
	// Limit caps the number of results. Values <= 0 mean DefaultLimit.
	Limit int
	// IncludeContent enables matching against the long content field.
	IncludeContent bool
	// FuzzyMatch enables the edit-distance fallback for documents scoring zero.
	FuzzyMatch bool
}

// Option mutates Options.
type Option func(*Options)

// New returns Options with defaults (limit 20, no content, no fuzzy) plus opts.
func New(opts ...Option) Options {
	o := Options{Limit: DefaultLimit}
	for _, fn := range opts {
		fn(&o)
	}
	return o.Normalized()
}

// WithCategories sets the category allow-list.
func WithCategories(cs ...category.Category) Option {
	return func(o *Options) {
		o.Categories = append([]category.Category(nil), cs...)
	}
}

// WithLimit sets the result cap.
func WithLimit(n int) Option {
	return func(o *Options) { o.Limit = n }
}

// WithContent toggles content matching.
func WithContent(enabled bool) Option {
	return func(o *Options) { o.IncludeContent = enabled }
}

// WithFuzzy toggles the fuzzy fallback.
func WithFuzzy(enabled bool) Option {
	return func(o *Options) { o.FuzzyMatch = enabled }
}

// Normalized returns a copy with the limit defaulted.
func (o Options) Normalized() Options {
	if o.Limit <= 0 {
		o.Limit = DefaultLimit
	}
	return o
}

// Allows reports whether documents of category c pass the allow-list.
func (o Options) Allows(c category.Category) bool {
	if len(o.Categories) == 0 {
		return true
	}
	for _, allowed := range o.Categories {
		if allowed == c {
			return true
		}
	}
	return false
}
