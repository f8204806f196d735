package search

import "time"

// Query kinds reported to the Observer.
const (
	KindSearch   = "search"
	KindSuggest  = "suggest"
	KindCategory = "category"
)

// Observer receives per-query measurements (metrics adapter).
type Observer interface {
	QueryCompleted(kind string, results int, duration time.Duration)
	FuzzyFallback(matchedDocuments int)
}

// noopObserver discards all measurements.
type noopObserver struct{}

var _ Observer = noopObserver{}

func (noopObserver) QueryCompleted(string, int, time.Duration) {}
func (noopObserver) FuzzyFallback(int)                         {}
