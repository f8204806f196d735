package search

import (
	"sort"

	"github.com/kailas-cloud/sitesearch/internal/domain/search/result"
)

// scored is an entry with its score for one query.
type scored struct {
	e     *entry
	score float64
	terms []string
}

// rank orders hits by score desc, priority desc, title length asc and
// truncates to limit. The sort is stable: remaining ties keep corpus order.
func rank(hits []scored, limit int) []result.Result {
	sort.SliceStable(hits, func(i, j int) bool {
		return less(&hits[i], &hits[j])
	})

	if limit > 0 && len(hits) > limit {
		hits = hits[:limit]
	}

	out := make([]result.Result, len(hits))
	for i, h := range hits {
		out[i] = result.New(h.e.doc, h.score, h.terms)
	}
	return out
}

func less(a, b *scored) bool {
	if a.score != b.score {
		return a.score > b.score
	}
	if a.e.priority != b.e.priority {
		return a.e.priority > b.e.priority
	}
	return a.e.titleLen < b.e.titleLen
}
