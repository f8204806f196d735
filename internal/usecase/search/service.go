package search

import (
	"sync/atomic"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/sitesearch/internal/domain"
	"github.com/kailas-cloud/sitesearch/internal/domain/category"
	"github.com/kailas-cloud/sitesearch/internal/domain/corpus"
	"github.com/kailas-cloud/sitesearch/internal/domain/document"
	"github.com/kailas-cloud/sitesearch/internal/domain/search/options"
	"github.com/kailas-cloud/sitesearch/internal/domain/search/result"
	"github.com/kailas-cloud/sitesearch/internal/domain/search/weights"
)

// Service is the in-memory search engine over the current corpus snapshot.
// Queries are lock-free; Replace swaps the whole snapshot atomically, so an
// in-flight query always sees one consistent corpus.
type Service struct {
	weights  weights.Weights
	scorer   scorer
	snap     atomic.Pointer[snapshot]
	observer Observer
	logger   *zap.Logger
}

// Option configures a Service.
type Option func(*Service)

// WithObserver sets the measurement sink. Default discards.
func WithObserver(o Observer) Option {
	return func(s *Service) {
		if o != nil {
			s.observer = o
		}
	}
}

// WithLogger sets the logger. Default is zap.NewNop().
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates an engine with the given tunables and no corpus.
func New(w weights.Weights, opts ...Option) *Service {
	s := &Service{
		weights:  w,
		scorer:   scorer{w: w},
		observer: noopObserver{},
		logger:   zap.NewNop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Replace installs c as the current corpus.
func (s *Service) Replace(c *corpus.Corpus) {
	if c == nil {
		return
	}
	s.snap.Store(newSnapshot(c))
	s.logger.Info("Corpus installed",
		zap.Int("documents", c.Len()),
		zap.String("version", c.Version()),
	)
}

// Ready reports whether a corpus has been installed.
func (s *Service) Ready() bool { return s.snap.Load() != nil }

// Snapshot returns the current corpus.
func (s *Service) Snapshot() (*corpus.Corpus, bool) {
	p := s.snap.Load()
	if p == nil {
		return nil, false
	}
	return p.corpus, true
}

// Weights returns the engine tunables.
func (s *Service) Weights() weights.Weights { return s.weights }

// current returns the snapshot or panics: querying before the first
// Replace is a programming error, not a data condition.
func (s *Service) current() *snapshot {
	p := s.snap.Load()
	if p == nil {
		panic(domain.ErrNotInitialized)
	}
	return p
}

// Search scores every allowed document against query and returns the ranked,
// truncated hits. An empty or whitespace-only query yields no results.
func (s *Service) Search(rawQuery string, opts options.Options) []result.Result {
	snap := s.current()
	start := time.Now()
	opts = opts.Normalized()

	q := parseQuery(rawQuery, s.weights.MinTokenLength)
	if q.text == "" {
		s.observer.QueryCompleted(KindSearch, 0, time.Since(start))
		return []result.Result{}
	}

	hits := make([]scored, 0)
	fuzzyHits := 0
	for i := range snap.entries {
		e := &snap.entries[i]
		if !opts.Allows(e.doc.Category()) {
			continue
		}

		score, terms := s.scorer.score(e, q, opts)
		if score == 0 && opts.FuzzyMatch {
			var fuzzy float64
			fuzzy, terms = s.scorer.fuzzyScore(e, q)
			score = fuzzy * e.priority
			if score > 0 {
				fuzzyHits++
			}
		}
		if score > 0 {
			hits = append(hits, scored{e: e, score: score, terms: terms})
		}
	}

	results := rank(hits, opts.Limit)

	if fuzzyHits > 0 {
		s.observer.FuzzyFallback(fuzzyHits)
	}
	s.observer.QueryCompleted(KindSearch, len(results), time.Since(start))
	s.logger.Debug("Search completed",
		zap.String("query", q.text),
		zap.Int("matched", len(hits)),
		zap.Int("returned", len(results)),
		zap.Int("fuzzy_hits", fuzzyHits),
	)
	return results
}

// Suggest returns up to limit prefix completions for query.
// limit <= 0 means options.DefaultSuggestLimit.
func (s *Service) Suggest(rawQuery string, limit int) []string {
	snap := s.current()
	start := time.Now()
	if limit <= 0 {
		limit = options.DefaultSuggestLimit
	}
	out := s.suggest(snap, rawQuery, limit)
	s.observer.QueryCompleted(KindSuggest, len(out), time.Since(start))
	return out
}

// ByCategory lists documents of category c by descending priority.
// limit <= 0 means options.DefaultLimit.
func (s *Service) ByCategory(c category.Category, limit int) []document.Document {
	snap := s.current()
	start := time.Now()
	if limit <= 0 {
		limit = options.DefaultLimit
	}
	out := byCategory(snap, c, limit)
	s.observer.QueryCompleted(KindCategory, len(out), time.Since(start))
	return out
}

// ByCategoryName is ByCategory for a raw tag. Unknown tags yield an empty list.
func (s *Service) ByCategoryName(name string, limit int) []document.Document {
	c, err := category.Parse(name)
	if err != nil {
		s.current()
		return []document.Document{}
	}
	return s.ByCategory(c, limit)
}

// Get returns one document of the current corpus by ID.
func (s *Service) Get(id string) (document.Document, bool) {
	return s.current().corpus.Get(id)
}
