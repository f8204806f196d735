package search

import (
	"sort"

	"github.com/kailas-cloud/sitesearch/internal/domain/category"
	"github.com/kailas-cloud/sitesearch/internal/domain/document"
)

// byCategory lists documents of one category by priority desc, corpus order on ties.
func byCategory(snap *snapshot, c category.Category, limit int) []document.Document {
	matches := make([]*entry, 0)
	for i := range snap.entries {
		if snap.entries[i].doc.Category() == c {
			matches = append(matches, &snap.entries[i])
		}
	}

	sort.SliceStable(matches, func(i, j int) bool {
		return matches[i].priority > matches[j].priority
	})

	if len(matches) > limit {
		matches = matches[:limit]
	}

	out := make([]document.Document, len(matches))
	for i, e := range matches {
		out[i] = e.doc
	}
	return out
}
