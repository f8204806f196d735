package sitesearch

import (
	"time"

	"github.com/kailas-cloud/sitesearch/internal/domain"
	"github.com/kailas-cloud/sitesearch/internal/domain/category"
	"github.com/kailas-cloud/sitesearch/internal/domain/document"
	"github.com/kailas-cloud/sitesearch/internal/domain/search/result"
)

// Errors returned by New and Rebuild.
var (
	ErrInvalidDocument = domain.ErrInvalidDocument
	ErrDuplicateID     = domain.ErrDuplicateID
	ErrUnknownCategory = domain.ErrUnknownCategory
)

// Document is one searchable site record.
type Document struct {
	ID          string
	Title       string
	Description string
	Content     string
	Category    string // one of Categories()
	Subcategory string
	URL         string
	Keywords    []string
	Priority    int // 1-5, higher ranks first; 0 means 1
	LastUpdated time.Time
}

// Result is one ranked hit.
type Result struct {
	Document
	Score        float64
	MatchedTerms []string
}

// Span is a highlighted byte range [Start, End).
type Span struct {
	Start int
	End   int
}

// Categories lists the known category tags.
func Categories() []string {
	all := category.All()
	out := make([]string, len(all))
	for i, c := range all {
		out[i] = c.String()
	}
	return out
}

func (d Document) toInternal() (document.Document, error) {
	c, err := category.Parse(d.Category)
	if err != nil {
		return document.Document{}, err
	}
	if d.Priority == 0 {
		d.Priority = document.MinPriority
	}
	return document.New(document.Fields{
		ID:          d.ID,
		Title:       d.Title,
		Description: d.Description,
		Content:     d.Content,
		Category:    c,
		Subcategory: d.Subcategory,
		URL:         d.URL,
		Keywords:    d.Keywords,
		Priority:    d.Priority,
		LastUpdated: d.LastUpdated,
	})
}

func fromInternalDocument(d *document.Document) Document {
	return Document{
		ID:          d.ID(),
		Title:       d.Title(),
		Description: d.Description(),
		Content:     d.Content(),
		Category:    d.Category().String(),
		Subcategory: d.Subcategory(),
		URL:         d.URL(),
		Keywords:    d.Keywords(),
		Priority:    d.Priority(),
		LastUpdated: d.LastUpdated(),
	}
}

func fromInternalDocuments(docs []document.Document) []Document {
	out := make([]Document, len(docs))
	for i := range docs {
		out[i] = fromInternalDocument(&docs[i])
	}
	return out
}

func fromInternalResult(r *result.Result) Result {
	doc := r.Document()
	return Result{
		Document:     fromInternalDocument(&doc),
		Score:        r.Score(),
		MatchedTerms: r.MatchedTerms(),
	}
}
