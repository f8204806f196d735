package sitesearch

import (
	"fmt"
	"sync/atomic"
)

// TypedIndex searches application structs directly.
// Fields are mapped by `sitesearch:"role"` tags; id, title and category are required.
type TypedIndex[T any] struct {
	engine *Engine
	meta   *schemaMeta
	items  atomic.Pointer[map[string]T]
}

// NewIndex parses T's tags once and indexes items.
func NewIndex[T any](items []T, opts ...Option) (*TypedIndex[T], error) {
	meta, err := parseSchema[T]()
	if err != nil {
		return nil, err
	}
	engine, err := New(nil, opts...)
	if err != nil {
		return nil, err
	}

	idx := &TypedIndex[T]{engine: engine, meta: meta}
	if err := idx.Rebuild(items); err != nil {
		return nil, err
	}
	return idx, nil
}

// Rebuild replaces every indexed item. On error the previous items stay.
func (idx *TypedIndex[T]) Rebuild(items []T) error {
	docs := make([]Document, len(items))
	byID := make(map[string]T, len(items))
	for i, item := range items {
		docs[i] = idx.meta.toDocument(item)
		byID[docs[i].ID] = item
	}
	if err := idx.engine.Rebuild(docs); err != nil {
		return fmt.Errorf("rebuild index: %w", err)
	}
	idx.items.Store(&byID)
	return nil
}

// Len returns the number of indexed items.
func (idx *TypedIndex[T]) Len() int {
	return len(*idx.items.Load())
}

// Get returns the item with the given ID.
func (idx *TypedIndex[T]) Get(id string) (T, bool) {
	item, ok := (*idx.items.Load())[id]
	return item, ok
}

// Search ranks items against query.
func (idx *TypedIndex[T]) Search(query string, opts ...SearchOption) []Hit[T] {
	items := *idx.items.Load()
	results := idx.engine.Search(query, opts...)

	hits := make([]Hit[T], 0, len(results))
	for _, r := range results {
		item, ok := items[r.ID]
		if !ok {
			// indexed between engine swap and items swap
			continue
		}
		hits = append(hits, Hit[T]{Item: item, Score: r.Score, MatchedTerms: r.MatchedTerms})
	}
	return hits
}

// Suggest returns completions for the prefix of query.
func (idx *TypedIndex[T]) Suggest(query string, limit int) []string {
	return idx.engine.Suggest(query, limit)
}

// Engine exposes the untyped engine behind the index.
func (idx *TypedIndex[T]) Engine() *Engine { return idx.engine }
