package chi

import (
	"time"

	"github.com/kailas-cloud/sitesearch/internal/domain/document"
	"github.com/kailas-cloud/sitesearch/internal/domain/search/result"
	"github.com/kailas-cloud/sitesearch/internal/usecase/corpus"
	"github.com/kailas-cloud/sitesearch/internal/usecase/search"
)

// ErrorCode is a machine-readable error identifier.
type ErrorCode string

// Error codes returned in ErrorResponse.Code.
const (
	ErrorCodeBadRequest       ErrorCode = "bad_request"
	ErrorCodeValidationFailed ErrorCode = "validation_failed"
	ErrorCodeUnauthorized     ErrorCode = "unauthorized"
	ErrorCodeDocumentNotFound ErrorCode = "document_not_found"
	ErrorCodeCorpusNotReady   ErrorCode = "corpus_not_ready"
	ErrorCodeSourceFailed     ErrorCode = "source_failed"
	ErrorCodeInvalidCorpus    ErrorCode = "invalid_corpus"
	ErrorCodeInternalError    ErrorCode = "internal_error"
)

// ErrorResponse is the body of every non-2xx answer.
type ErrorResponse struct {
	Code    ErrorCode `json:"code"`
	Message string    `json:"message"`
}

// SearchResultItem is one ranked hit.
type SearchResultItem struct {
	ID              string        `json:"id"`
	Title           string        `json:"title"`
	Description     string        `json:"description,omitempty"`
	URL             string        `json:"url,omitempty"`
	Category        string        `json:"category"`
	Subcategory     string        `json:"subcategory,omitempty"`
	Priority        int           `json:"priority"`
	Score           float64       `json:"score"`
	MatchedTerms    []string      `json:"matched_terms"`
	TitleHighlights []search.Span `json:"title_highlights,omitempty"`
}

// SearchResponse is the body of GET /search.
type SearchResponse struct {
	Items       []SearchResultItem `json:"items"`
	Total       int                `json:"total"`
	Limit       int                `json:"limit"`
	Suggestions []string           `json:"suggestions,omitempty"`
}

// SuggestResponse is the body of GET /suggest.
type SuggestResponse struct {
	Items []string `json:"items"`
}

// CategoryCount is one row of GET /categories.
type CategoryCount struct {
	Category string `json:"category"`
	Count    int    `json:"count"`
}

// CategoryListResponse is the body of GET /categories.
type CategoryListResponse struct {
	Items []CategoryCount `json:"items"`
	Total int             `json:"total"`
}

// DocumentResponse is a full document.
type DocumentResponse struct {
	ID          string     `json:"id"`
	Title       string     `json:"title"`
	Description string     `json:"description,omitempty"`
	Content     string     `json:"content,omitempty"`
	Category    string     `json:"category"`
	Subcategory string     `json:"subcategory,omitempty"`
	URL         string     `json:"url,omitempty"`
	Keywords    []string   `json:"keywords"`
	Priority    int        `json:"priority"`
	LastUpdated *time.Time `json:"last_updated,omitempty"`
}

// DocumentListResponse is the body of GET /categories/{category}.
type DocumentListResponse struct {
	Items []DocumentResponse `json:"items"`
	Total int                `json:"total"`
}

// SourceStatsResponse is one source's share of a build.
type SourceStatsResponse struct {
	Name      string `json:"name"`
	Documents int    `json:"documents"`
}

// CorpusStatsResponse is the body of the /admin/corpus endpoints.
type CorpusStatsResponse struct {
	Documents  int                   `json:"documents"`
	Version    string                `json:"version"`
	BuiltAt    time.Time             `json:"built_at"`
	DurationMs float64               `json:"duration_ms"`
	Categories map[string]int        `json:"categories"`
	Sources    []SourceStatsResponse `json:"sources"`
}

// HealthResponse is the body of GET /health.
type HealthResponse struct {
	Status  string            `json:"status"`
	Version string            `json:"version"`
	Checks  map[string]string `json:"checks"`
}

func searchResultToResponse(r *result.Result, highlights []search.Span) SearchResultItem {
	doc := r.Document()
	terms := r.MatchedTerms()
	if terms == nil {
		terms = []string{}
	}
	return SearchResultItem{
		ID:              doc.ID(),
		Title:           doc.Title(),
		Description:     doc.Description(),
		URL:             doc.URL(),
		Category:        doc.Category().String(),
		Subcategory:     doc.Subcategory(),
		Priority:        doc.Priority(),
		Score:           r.Score(),
		MatchedTerms:    terms,
		TitleHighlights: highlights,
	}
}

func documentToResponse(doc *document.Document) DocumentResponse {
	resp := DocumentResponse{
		ID:          doc.ID(),
		Title:       doc.Title(),
		Description: doc.Description(),
		Content:     doc.Content(),
		Category:    doc.Category().String(),
		Subcategory: doc.Subcategory(),
		URL:         doc.URL(),
		Keywords:    doc.Keywords(),
		Priority:    doc.Priority(),
	}
	if resp.Keywords == nil {
		resp.Keywords = []string{}
	}
	if t := doc.LastUpdated(); !t.IsZero() {
		resp.LastUpdated = &t
	}
	return resp
}

func documentsToResponse(docs []document.Document) DocumentListResponse {
	items := make([]DocumentResponse, len(docs))
	for i := range docs {
		items[i] = documentToResponse(&docs[i])
	}
	return DocumentListResponse{Items: items, Total: len(items)}
}

func statsToResponse(s corpus.Stats) CorpusStatsResponse {
	cats := make(map[string]int, len(s.Categories))
	for c, n := range s.Categories {
		cats[c.String()] = n
	}
	sources := make([]SourceStatsResponse, len(s.Sources))
	for i, src := range s.Sources {
		sources[i] = SourceStatsResponse{Name: src.Name, Documents: src.Documents}
	}
	return CorpusStatsResponse{
		Documents:  s.Documents,
		Version:    s.Version,
		BuiltAt:    s.BuiltAt,
		DurationMs: float64(s.Duration.Microseconds()) / 1000,
		Categories: cats,
		Sources:    sources,
	}
}
