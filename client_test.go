package sitesearch

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
)

func sampleDocs() []Document {
	return []Document{
		{
			ID:       "pension",
			Title:    "Pension scheme",
			Category: "scheme",
			Keywords: []string{"retirement"},
			Priority: 2,
		},
		{
			ID:          "withdrawal",
			Title:       "Early withdrawal",
			Description: "Withdraw part of your pension savings",
			Category:    "faq",
		},
		{
			ID:       "contact",
			Title:    "Contact us",
			Content:  "Call our pension helpline",
			Category: "contact",
		},
	}
}

func newTestEngine(t *testing.T) *Engine {
	t.Helper()
	e, err := New(sampleDocs())
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	return e
}

func ids(rs []Result) []string {
	out := make([]string, len(rs))
	for i, r := range rs {
		out[i] = r.ID
	}
	return out
}

func TestNew_Empty(t *testing.T) {
	e, err := New(nil)
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if e.Len() != 0 {
		t.Errorf("len = %d, want 0", e.Len())
	}
	if got := e.Search("pension"); len(got) != 0 {
		t.Errorf("results = %v, want none", ids(got))
	}
}

func TestNew_InvalidDocuments(t *testing.T) {
	tests := []struct {
		name string
		docs []Document
		want error
	}{
		{"missing title", []Document{{ID: "a", Category: "faq"}}, ErrInvalidDocument},
		{"unknown category", []Document{{ID: "a", Title: "A", Category: "nope"}}, ErrUnknownCategory},
		{"priority out of range", []Document{{ID: "a", Title: "A", Category: "faq", Priority: 9}}, ErrInvalidDocument},
		{"duplicate id", []Document{
			{ID: "a", Title: "A", Category: "faq"},
			{ID: "a", Title: "B", Category: "faq"},
		}, ErrDuplicateID},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := New(tt.docs)
			if !errors.Is(err, tt.want) {
				t.Errorf("err = %v, want %v", err, tt.want)
			}
		})
	}
}

func TestNew_InvalidWeights(t *testing.T) {
	w := DefaultWeights()
	w.TitleExact = -1
	if _, err := New(nil, WithWeights(w)); err == nil {
		t.Fatal("expected error for negative weight")
	}
}

func TestEngine_Search(t *testing.T) {
	e := newTestEngine(t)

	got := e.Search("pension")
	if len(got) != 2 {
		t.Fatalf("results = %v, want 2", ids(got))
	}
	if got[0].ID != "pension" {
		t.Errorf("first = %q, want pension", got[0].ID)
	}
	if got[0].Score <= got[1].Score {
		t.Errorf("scores not descending: %f, %f", got[0].Score, got[1].Score)
	}
	if got[0].Category != "scheme" || got[0].Priority != 2 {
		t.Errorf("document not converted: %+v", got[0].Document)
	}
}

func TestEngine_SearchOptions(t *testing.T) {
	e := newTestEngine(t)

	tests := []struct {
		name string
		q    string
		opts []SearchOption
		want []string
	}{
		{"content off by default", "helpline", nil, []string{}},
		{"content on", "helpline", []SearchOption{IncludeContent()}, []string{"contact"}},
		{"category filter", "pension", []SearchOption{InCategories("faq")}, []string{"withdrawal"}},
		{"unknown category ignored", "pension", []SearchOption{InCategories("FAQ", "nope")}, []string{"withdrawal"}},
		{"only unknown categories", "pension", []SearchOption{InCategories("nope")}, []string{}},
		{"limit", "pension", []SearchOption{Limit(1)}, []string{"pension"}},
		{"fuzzy off", "pensoin", nil, []string{}},
		{"fuzzy on", "pensoin", []SearchOption{Fuzzy()}, []string{"pension"}},
		{"blank query", "   ", nil, []string{}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := ids(e.Search(tt.q, tt.opts...))
			if len(got) != len(tt.want) {
				t.Fatalf("ids = %v, want %v", got, tt.want)
			}
			for i := range got {
				if got[i] != tt.want[i] {
					t.Errorf("ids = %v, want %v", got, tt.want)
					break
				}
			}
		})
	}
}

func TestEngine_Rebuild(t *testing.T) {
	e := newTestEngine(t)

	if err := e.Rebuild([]Document{{ID: "x", Title: "", Category: "faq"}}); err == nil {
		t.Fatal("expected error for invalid document")
	}
	if e.Len() != 3 {
		t.Errorf("failed rebuild replaced corpus: len = %d", e.Len())
	}

	if err := e.Rebuild([]Document{{ID: "x", Title: "Tax forms", Category: "form"}}); err != nil {
		t.Fatalf("Rebuild: %v", err)
	}
	if e.Len() != 1 {
		t.Errorf("len = %d, want 1", e.Len())
	}
	if got := ids(e.Search("pension")); len(got) != 0 {
		t.Errorf("old documents still searchable: %v", got)
	}
}

func TestEngine_Suggest(t *testing.T) {
	e := newTestEngine(t)
	got := e.Suggest("pen", 5)
	if len(got) == 0 || got[0] != "pension" {
		t.Errorf("suggestions = %v, want pension first", got)
	}
}

func TestEngine_ByCategory(t *testing.T) {
	e := newTestEngine(t)

	got := e.ByCategory("FAQ", 0)
	if len(got) != 1 || got[0].ID != "withdrawal" {
		t.Errorf("faq = %+v", got)
	}
	if got := e.ByCategory("nope", 0); len(got) != 0 {
		t.Errorf("unknown category = %+v, want empty", got)
	}
}

func TestEngine_Get(t *testing.T) {
	e := newTestEngine(t)

	doc, ok := e.Get("withdrawal")
	if !ok {
		t.Fatal("expected document")
	}
	if doc.Priority != 1 {
		t.Errorf("priority = %d, want default 1", doc.Priority)
	}
	if _, ok := e.Get("missing"); ok {
		t.Error("unexpected document for missing id")
	}
}

func TestEngine_Highlight(t *testing.T) {
	e := newTestEngine(t)
	got := e.Highlight("Pension scheme", "pension")
	if len(got) != 1 || got[0] != (Span{Start: 0, End: 7}) {
		t.Errorf("spans = %v", got)
	}
}

func TestEngine_QueryBuilder(t *testing.T) {
	e := newTestEngine(t)

	got := ids(e.Query("withdrawl").Fuzzy().Category("faq").Limit(5).Do())
	if len(got) != 1 || got[0] != "withdrawal" {
		t.Errorf("ids = %v, want [withdrawal]", got)
	}
	got = ids(e.Query("helpline").Content().Do())
	if len(got) != 1 || got[0] != "contact" {
		t.Errorf("ids = %v, want [contact]", got)
	}
}

func TestOpen(t *testing.T) {
	dir := t.TempDir()
	body := `documents:
  - id: faq-1
    title: How do I open an account
    category: faq
    priority: 3
`
	if err := os.WriteFile(filepath.Join(dir, "faq.yaml"), []byte(body), 0o600); err != nil {
		t.Fatal(err)
	}

	e, err := Open(context.Background(), dir)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	got := e.Search("account")
	if len(got) != 1 || got[0].ID != "faq-1" || got[0].Priority != 3 {
		t.Errorf("results = %+v", got)
	}
}

func TestOpen_MissingPath(t *testing.T) {
	if _, err := Open(context.Background(), filepath.Join(t.TempDir(), "missing")); err == nil {
		t.Fatal("expected error for missing path")
	}
}

func TestCategories(t *testing.T) {
	cats := Categories()
	found := false
	for _, c := range cats {
		if c == "scheme" {
			found = true
		}
	}
	if !found {
		t.Errorf("categories = %v, missing scheme", cats)
	}
}
