package search

import (
	"strings"
	"testing"

	"github.com/kailas-cloud/sitesearch/internal/domain/document"
	"github.com/kailas-cloud/sitesearch/internal/domain/search/options"
)

func TestLevenshtein(t *testing.T) {
	tests := []struct {
		a, b string
		want int
	}{
		{"", "", 0},
		{"", "abc", 3},
		{"abc", "", 3},
		{"pension", "pension", 0},
		{"kitten", "sitting", 3},
		{"flaw", "lawn", 2},
		{"persnal", "personal", 1},
		{"héllo", "hello", 1},
	}
	for _, tt := range tests {
		if got := levenshtein([]rune(tt.a), []rune(tt.b)); got != tt.want {
			t.Errorf("levenshtein(%q, %q) = %d, want %d", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestSimilarity(t *testing.T) {
	tests := []struct {
		a, b string
		want float64
	}{
		{"", "", 1},
		{"pension", "pension", 1},
		{"abcdefgh", "abcdefxy", 0.75},
		{"abcdefghij", "abcdefgxyz", 0.7},
		{"persnal", "personal", 0.875},
	}
	for _, tt := range tests {
		if got := Similarity(tt.a, tt.b); got != tt.want {
			t.Errorf("Similarity(%q, %q) = %v, want %v", tt.a, tt.b, got, tt.want)
		}
	}
}

func TestFuzzy_ThresholdIsStrict(t *testing.T) {
	svc := newEngine(t,
		mustDoc(t, document.Fields{ID: "boundary", Title: "abcdefghij"}),
	)
	got := svc.Search("abcdefgxyz", options.New(options.WithFuzzy(true)))
	if len(got) != 0 {
		t.Errorf("similarity exactly 0.7 must be excluded, got %v", ids(got))
	}
}

func TestFuzzy_AboveThresholdIncluded(t *testing.T) {
	svc := newEngine(t,
		mustDoc(t, document.Fields{ID: "near", Title: "abcdefgh", Priority: 3}),
	)
	got := svc.Search("abcdefxy", options.New(options.WithFuzzy(true)))
	if len(got) != 1 {
		t.Fatalf("expected 1 result, got %v", ids(got))
	}
	if got[0].Score() != 3 {
		t.Errorf("Score() = %v, want 3 (fuzzy weight 1 x priority 3)", got[0].Score())
	}
	if terms := got[0].MatchedTerms(); len(terms) != 1 || terms[0] != "fuzzy:abcdefxy~abcdefgh" {
		t.Errorf("MatchedTerms() = %v", terms)
	}
}

func TestFuzzy_DisabledByDefault(t *testing.T) {
	svc := newEngine(t, mustDoc(t, document.Fields{ID: "near", Title: "abcdefgh"}))
	if got := svc.Search("abcdefxy", options.New()); len(got) != 0 {
		t.Errorf("fuzzy must be opt-in, got %v", ids(got))
	}
}

func TestFuzzy_OnlyWhenScoreIsZero(t *testing.T) {
	// "pension" matches exactly, so "persnal" gets no fuzzy credit.
	docs := pensionDocs(t)
	svc := newEngine(t, docs...)

	got := svc.Search("persnal pension", options.New(options.WithFuzzy(true)))
	if len(got) != 2 {
		t.Fatalf("expected 2 results, got %v", ids(got))
	}
	if got[0].Score() != 25 {
		t.Errorf("doc a score = %v, want 25 (title token 5 x priority 5)", got[0].Score())
	}
	for _, term := range got[0].MatchedTerms() {
		if strings.HasPrefix(term, "fuzzy:") {
			t.Errorf("unexpected fuzzy term %q", term)
		}
	}
}

func TestFuzzy_ShortWordsIgnored(t *testing.T) {
	// Both sides must be longer than three runes.
	svc := newEngine(t, mustDoc(t, document.Fields{ID: "short", Title: "tax"}))
	if got := svc.Search("tux", options.New(options.WithFuzzy(true))); len(got) != 0 {
		t.Errorf("three-rune words must not fuzzy match, got %v", ids(got))
	}
}
