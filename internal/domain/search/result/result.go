package result

import "github.com/kailas-cloud/sitesearch/internal/domain/document"

// Result is a single scored search hit. It lives for one query only.
type Result struct {
	doc          document.Document
	score        float64
	matchedTerms []string
}

// New creates a search result.
func New(doc document.Document, score float64, matchedTerms []string) Result {
	return Result{doc: doc, score: score, matchedTerms: matchedTerms}
}

// Document returns the matched document.
func (r *Result) Document() document.Document { return r.doc }

// ID returns the document identifier.
func (r *Result) ID() string { return r.doc.ID() }

// Score returns the relevance rank key. It is not normalized.
func (r *Result) Score() float64 { return r.score }

// MatchedTerms lists which fields and terms contributed to the score.
func (r *Result) MatchedTerms() []string { return r.matchedTerms }
