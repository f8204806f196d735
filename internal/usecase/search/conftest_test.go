package search

import (
	"sync"
	"testing"
	"time"

	"github.com/kailas-cloud/sitesearch/internal/domain/category"
	"github.com/kailas-cloud/sitesearch/internal/domain/corpus"
	"github.com/kailas-cloud/sitesearch/internal/domain/document"
	"github.com/kailas-cloud/sitesearch/internal/domain/search/result"
	"github.com/kailas-cloud/sitesearch/internal/domain/search/weights"
)

// --- Mocks ---

type mockObserver struct {
	mu        sync.Mutex
	queries   map[string]int
	results   map[string]int
	fuzzyDocs int
}

func newMockObserver() *mockObserver {
	return &mockObserver{queries: map[string]int{}, results: map[string]int{}}
}

func (m *mockObserver) QueryCompleted(kind string, results int, _ time.Duration) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.queries[kind]++
	m.results[kind] += results
}

func (m *mockObserver) FuzzyFallback(n int) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.fuzzyDocs += n
}

// --- Fixtures ---

func mustDoc(t *testing.T, f document.Fields) document.Document {
	t.Helper()
	if f.Category == "" {
		f.Category = category.Page
	}
	if f.Priority == 0 {
		f.Priority = 1
	}
	d, err := document.New(f)
	if err != nil {
		t.Fatalf("document.New(%s): %v", f.ID, err)
	}
	return d
}

func newEngine(t *testing.T, docs ...document.Document) *Service {
	t.Helper()
	c, err := corpus.Build(docs)
	if err != nil {
		t.Fatalf("corpus.Build: %v", err)
	}
	s := New(weights.Default())
	s.Replace(c)
	return s
}

// pensionDocs returns the two-document pension corpus.
func pensionDocs(t *testing.T) []document.Document {
	t.Helper()
	return []document.Document{
		mustDoc(t, document.Fields{
			ID: "a", Title: "Best Personal Pension Scheme", Category: category.Scheme,
			Priority: 5, Keywords: []string{"tier 3", "voluntary"},
		}),
		mustDoc(t, document.Fields{
			ID: "b", Title: "Personal Pension Scheme (Tier 3)", Category: category.Scheme,
			Priority: 4, Keywords: []string{"tier 3"},
		}),
	}
}

func ids(results []result.Result) []string {
	out := make([]string, len(results))
	for i := range results {
		out[i] = results[i].ID()
	}
	return out
}

func docIDs(docs []document.Document) []string {
	out := make([]string, len(docs))
	for i := range docs {
		out[i] = docs[i].ID()
	}
	return out
}
