package sitesearch

import (
	"context"
	"fmt"

	"go.uber.org/zap"

	"github.com/kailas-cloud/sitesearch/internal/domain/corpus"
	"github.com/kailas-cloud/sitesearch/internal/domain/document"
	"github.com/kailas-cloud/sitesearch/internal/domain/search/options"
	"github.com/kailas-cloud/sitesearch/internal/repository/content/filesource"
	searchuc "github.com/kailas-cloud/sitesearch/internal/usecase/search"
)

// Engine is the embeddable site search entry point.
// It is safe for concurrent use; Rebuild swaps the corpus atomically.
type Engine struct {
	svc    *searchuc.Service
	logger *zap.Logger
}

// New validates docs, builds a corpus from them and returns a ready Engine.
// An empty docs slice yields an engine that matches nothing.
func New(docs []Document, opts ...Option) (*Engine, error) {
	cfg := newEngineConfig(opts)
	if err := cfg.weights.Validate(); err != nil {
		return nil, fmt.Errorf("sitesearch: %w", err)
	}

	e := &Engine{
		svc:    searchuc.New(cfg.weights, searchuc.WithLogger(cfg.logger)),
		logger: cfg.logger,
	}
	if err := e.Rebuild(docs); err != nil {
		return nil, err
	}
	return e, nil
}

// Open loads a YAML corpus file or directory and returns a ready Engine.
func Open(ctx context.Context, path string, opts ...Option) (*Engine, error) {
	cfg := newEngineConfig(opts)
	docs, err := filesource.New(path, cfg.logger).Load(ctx)
	if err != nil {
		return nil, fmt.Errorf("sitesearch: open %s: %w", path, err)
	}

	e, err := New(nil, opts...)
	if err != nil {
		return nil, err
	}
	if err := e.install(docs); err != nil {
		return nil, err
	}
	return e, nil
}

// Rebuild replaces the whole corpus. On error the previous corpus stays in place.
func (e *Engine) Rebuild(docs []Document) error {
	internal := make([]document.Document, len(docs))
	for i, d := range docs {
		doc, err := d.toInternal()
		if err != nil {
			return fmt.Errorf("sitesearch: document %d: %w", i, err)
		}
		internal[i] = doc
	}
	return e.install(internal)
}

func (e *Engine) install(docs []document.Document) error {
	c, err := corpus.Build(docs)
	if err != nil {
		return fmt.Errorf("sitesearch: %w", err)
	}
	e.svc.Replace(c)
	return nil
}

// Len returns the number of documents in the current corpus.
func (e *Engine) Len() int {
	c, _ := e.svc.Snapshot()
	return c.Len()
}

// Search ranks the corpus against query. Fuzzy matching is off unless requested.
func (e *Engine) Search(query string, opts ...SearchOption) []Result {
	o := options.New()
	for _, opt := range opts {
		opt(&o)
	}
	o = o.Normalized()

	hits := e.svc.Search(query, o)
	out := make([]Result, len(hits))
	for i := range hits {
		out[i] = fromInternalResult(&hits[i])
	}
	return out
}

// Suggest returns up to limit completions for the prefix of query.
// limit <= 0 means 5.
func (e *Engine) Suggest(query string, limit int) []string {
	return e.svc.Suggest(query, limit)
}

// ByCategory lists documents tagged category by descending priority.
// Unknown categories yield an empty list; limit <= 0 means 20.
func (e *Engine) ByCategory(category string, limit int) []Document {
	return fromInternalDocuments(e.svc.ByCategoryName(category, limit))
}

// Get returns a document by ID.
func (e *Engine) Get(id string) (Document, bool) {
	d, ok := e.svc.Get(id)
	if !ok {
		return Document{}, false
	}
	return fromInternalDocument(&d), true
}

// Highlight returns the byte ranges of text matching query.
func (e *Engine) Highlight(text, query string) []Span {
	spans := searchuc.Highlight(text, query, e.svc.Weights().MinTokenLength)
	out := make([]Span, len(spans))
	for i, s := range spans {
		out[i] = Span{Start: s.Start, End: s.End}
	}
	return out
}

// Query returns a fluent search builder.
func (e *Engine) Query(q string) *SearchBuilder {
	return &SearchBuilder{engine: e, query: q}
}
