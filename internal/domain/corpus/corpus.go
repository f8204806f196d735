// Package corpus holds the immutable, ordered document collection the search
// engine reads from. A corpus is never mutated once built; content changes
// produce a new corpus that replaces the old one wholesale.
package corpus

import (
	"fmt"
	"iter"
	"time"

	"github.com/kailas-cloud/sitesearch/internal/domain"
	"github.com/kailas-cloud/sitesearch/internal/domain/category"
	"github.com/kailas-cloud/sitesearch/internal/domain/document"
)

// Corpus is an ordered, read-only set of documents with unique IDs.
type Corpus struct {
	docs    []document.Document
	byID    map[string]int
	version string
	builtAt time.Time
}

// BuildOption configures Build.
type BuildOption func(*buildConfig)

type buildConfig struct {
	version string
	now     func() time.Time
}

// WithVersion labels the corpus with a content version (informational).
func WithVersion(v string) BuildOption {
	return func(c *buildConfig) { c.version = v }
}

// WithClock overrides the build timestamp source.
func WithClock(now func() time.Time) BuildOption {
	return func(c *buildConfig) {
		if now != nil {
			c.now = now
		}
	}
}

// Build creates a corpus from docs, preserving their order.
// Returns ErrDuplicateID if two documents share an ID.
func Build(docs []document.Document, opts ...BuildOption) (*Corpus, error) {
	cfg := buildConfig{now: time.Now}
	for _, o := range opts {
		o(&cfg)
	}

	c := &Corpus{
		docs:    make([]document.Document, len(docs)),
		byID:    make(map[string]int, len(docs)),
		version: cfg.version,
		builtAt: cfg.now(),
	}
	for i := range docs {
		id := docs[i].ID()
		if prev, dup := c.byID[id]; dup {
			return nil, fmt.Errorf("%w: %q at positions %d and %d", domain.ErrDuplicateID, id, prev, i)
		}
		c.byID[id] = i
		c.docs[i] = docs[i]
	}
	return c, nil
}

// Len returns the number of documents.
func (c *Corpus) Len() int { return len(c.docs) }

// At returns the i-th document. Panics if i is out of range.
func (c *Corpus) At(i int) document.Document { return c.docs[i] }

// All iterates documents in corpus order.
func (c *Corpus) All() iter.Seq2[int, document.Document] {
	return func(yield func(int, document.Document) bool) {
		for i := range c.docs {
			if !yield(i, c.docs[i]) {
				return
			}
		}
	}
}

// Get returns the document with the given ID.
func (c *Corpus) Get(id string) (document.Document, bool) {
	i, ok := c.byID[id]
	if !ok {
		return document.Document{}, false
	}
	return c.docs[i], true
}

// Version returns the content version label.
func (c *Corpus) Version() string { return c.version }

// BuiltAt returns the build timestamp.
func (c *Corpus) BuiltAt() time.Time { return c.builtAt }

// CategoryCounts returns the number of documents per category.
func (c *Corpus) CategoryCounts() map[category.Category]int {
	counts := make(map[category.Category]int)
	for i := range c.docs {
		counts[c.docs[i].Category()]++
	}
	return counts
}
