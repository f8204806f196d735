package sitesearch

// Hit is a typed search result.
type Hit[T any] struct {
	Item         T
	Score        float64
	MatchedTerms []string
}

// SearchBuilder is a fluent builder for search queries.
type SearchBuilder struct {
	engine *Engine
	query  string

	categories []string
	limit      int
	content    bool
	fuzzy      bool
}

// Category restricts results to the given tags (repeatable).
func (b *SearchBuilder) Category(names ...string) *SearchBuilder {
	b.categories = append(b.categories, names...)
	return b
}

// Limit sets the maximum number of results.
func (b *SearchBuilder) Limit(n int) *SearchBuilder {
	b.limit = n
	return b
}

// Content also scores the body text.
func (b *SearchBuilder) Content() *SearchBuilder {
	b.content = true
	return b
}

// Fuzzy enables the misspelling fallback.
func (b *SearchBuilder) Fuzzy() *SearchBuilder {
	b.fuzzy = true
	return b
}

// Options returns the builder state as SearchOptions.
func (b *SearchBuilder) Options() []SearchOption {
	opts := []SearchOption{Limit(b.limit)}
	if len(b.categories) > 0 {
		opts = append(opts, InCategories(b.categories...))
	}
	if b.content {
		opts = append(opts, IncludeContent())
	}
	if b.fuzzy {
		opts = append(opts, Fuzzy())
	}
	return opts
}

// Do executes the search.
func (b *SearchBuilder) Do() []Result {
	return b.engine.Search(b.query, b.Options()...)
}
