package result

import (
	"testing"

	"github.com/kailas-cloud/sitesearch/internal/domain/category"
	"github.com/kailas-cloud/sitesearch/internal/domain/document"
)

func TestNew(t *testing.T) {
	d := document.Reconstruct(document.Fields{
		ID: "faq-1", Title: "How do I join?", Category: category.FAQ, Priority: 3,
	})

	r := New(d, 15, []string{"title", "keyword:join"})

	if r.ID() != "faq-1" {
		t.Errorf("ID() = %q", r.ID())
	}
	if r.Score() != 15 {
		t.Errorf("Score() = %f", r.Score())
	}
	if got := r.Document(); got.Title() != "How do I join?" {
		t.Errorf("Document().Title() = %q", got.Title())
	}
	if len(r.MatchedTerms()) != 2 || r.MatchedTerms()[1] != "keyword:join" {
		t.Errorf("MatchedTerms() = %v", r.MatchedTerms())
	}
}
