package search

import (
	"iter"
	"strings"

	"github.com/kailas-cloud/sitesearch/internal/domain/corpus"
	"github.com/kailas-cloud/sitesearch/internal/domain/document"
	"github.com/kailas-cloud/sitesearch/internal/domain/search/options"
	"github.com/kailas-cloud/sitesearch/internal/domain/search/weights"
)

// entry is a document with its searchable fields pre-normalized.
type entry struct {
	doc         document.Document
	title       string
	description string
	content     string
	titleWords  []string
	titleLen    int
	priority    float64
}

// snapshot pairs a corpus with its normalized entries. Immutable once built.
type snapshot struct {
	corpus  *corpus.Corpus
	entries []entry
}

func newSnapshot(c *corpus.Corpus) *snapshot {
	entries := make([]entry, 0, c.Len())
	for _, d := range c.All() {
		title := Normalize(d.Title())
		entries = append(entries, entry{
			doc:         d,
			title:       title,
			description: Normalize(d.Description()),
			content:     Normalize(d.Content()),
			titleWords:  words(title),
			titleLen:    d.TitleLength(),
			priority:    float64(d.Priority()),
		})
	}
	return &snapshot{corpus: c, entries: entries}
}

// scorer computes weighted relevance of one entry against one query.
type scorer struct {
	w weights.Weights
}

// score returns the priority-weighted score and the matched terms.
// Fields are additive. Within a field the exact (whole query) tier and the
// per-token tier are exclusive, except that an exact hit never scores below
// what the token tier would have given.
func (s *scorer) score(e *entry, q query, opts options.Options) (float64, []string) {
	var total float64
	var terms []string

	contains := func(field string) func(string) bool {
		return func(needle string) bool { return strings.Contains(field, needle) }
	}

	total += tiered(contains(e.title), q, s.w.TitleExact, s.w.TitleToken, "title", &terms)
	total += tiered(contains(e.description), q, s.w.DescriptionExact, s.w.DescriptionToken, "description", &terms)
	total += tiered(anyKeywordContains(e.doc.AllKeywords()), q, s.w.KeywordExact, s.w.KeywordToken, "keyword", &terms)
	if opts.IncludeContent && e.content != "" {
		total += tiered(contains(e.content), q, s.w.ContentExact, s.w.ContentToken, "content", &terms)
	}

	return total * e.priority, terms
}

func anyKeywordContains(keywords iter.Seq[string]) func(string) bool {
	return func(needle string) bool {
		for k := range keywords {
			if strings.Contains(k, needle) {
				return true
			}
		}
		return false
	}
}

// tiered scores one field. label is recorded for an exact hit, label:token for token hits.
func tiered(
	contains func(string) bool, q query,
	exactWeight, tokenWeight float64, label string, terms *[]string,
) float64 {
	var tokenScore float64
	var hits []string
	for _, tok := range q.tokens {
		if contains(tok) {
			tokenScore += tokenWeight
			hits = append(hits, tok)
		}
	}

	if q.text != "" && contains(q.text) {
		*terms = append(*terms, label)
		return max(exactWeight, tokenScore)
	}

	for _, tok := range hits {
		*terms = append(*terms, label+":"+tok)
	}
	return tokenScore
}
