package metrics

import (
	"sync"
	"time"

	"github.com/prometheus/client_golang/prometheus"

	"github.com/kailas-cloud/sitesearch/internal/domain/category"
	"github.com/kailas-cloud/sitesearch/internal/usecase/corpus"
	"github.com/kailas-cloud/sitesearch/internal/usecase/search"
)

// Engine and corpus Prometheus metrics.
var (
	SearchQueriesTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_queries_total",
			Help:      "Total engine queries by kind and outcome",
		},
		[]string{"kind", "outcome"}, // outcome: "hit" / "empty"
	)

	SearchQueryDuration = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_query_duration_seconds",
			Help:      "Engine query duration in seconds",
			Buckets:   []float64{0.00001, 0.00005, 0.0001, 0.0005, 0.001, 0.005, 0.01, 0.05, 0.1},
		},
		[]string{"kind"},
	)

	SearchResults = prometheus.NewHistogramVec(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "search_results",
			Help:      "Number of results returned per query",
			Buckets:   []float64{0, 1, 2, 5, 10, 20, 50, 100},
		},
		[]string{"kind"},
	)

	SearchFuzzyMatchesTotal = prometheus.NewCounter(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "search_fuzzy_matches_total",
			Help:      "Documents matched only through the fuzzy fallback",
		},
	)

	CorpusDocuments = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "corpus_documents",
			Help:      "Documents in the installed corpus",
		},
	)

	CorpusCategoryDocuments = prometheus.NewGaugeVec(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "corpus_category_documents",
			Help:      "Documents per category in the installed corpus",
		},
		[]string{"category"},
	)

	CorpusRebuildsTotal = prometheus.NewCounterVec(
		prometheus.CounterOpts{
			Namespace: namespace,
			Name:      "corpus_rebuilds_total",
			Help:      "Corpus rebuilds by status",
		},
		[]string{"status"}, // "ok" / "error"
	)

	CorpusRebuildDuration = prometheus.NewHistogram(
		prometheus.HistogramOpts{
			Namespace: namespace,
			Name:      "corpus_rebuild_duration_seconds",
			Help:      "Corpus rebuild duration in seconds",
			Buckets:   []float64{0.01, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10, 30},
		},
	)

	CorpusLastRebuildTimestamp = prometheus.NewGauge(
		prometheus.GaugeOpts{
			Namespace: namespace,
			Name:      "corpus_last_rebuild_timestamp_seconds",
			Help:      "Unix time of the last successful rebuild",
		},
	)
)

var registerOnce sync.Once

// RegisterSearchMetrics registers engine and corpus metrics. Must be called once from main.
func RegisterSearchMetrics() {
	registerOnce.Do(func() {
		prometheus.MustRegister(SearchQueriesTotal)
		prometheus.MustRegister(SearchQueryDuration)
		prometheus.MustRegister(SearchResults)
		prometheus.MustRegister(SearchFuzzyMatchesTotal)
		prometheus.MustRegister(CorpusDocuments)
		prometheus.MustRegister(CorpusCategoryDocuments)
		prometheus.MustRegister(CorpusRebuildsTotal)
		prometheus.MustRegister(CorpusRebuildDuration)
		prometheus.MustRegister(CorpusLastRebuildTimestamp)
	})
}

// SearchObserver feeds engine measurements into Prometheus.
type SearchObserver struct{}

var _ search.Observer = SearchObserver{}

// QueryCompleted implements search.Observer.
func (SearchObserver) QueryCompleted(kind string, results int, d time.Duration) {
	outcome := "hit"
	if results == 0 {
		outcome = "empty"
	}
	SearchQueriesTotal.WithLabelValues(kind, outcome).Inc()
	SearchQueryDuration.WithLabelValues(kind).Observe(d.Seconds())
	SearchResults.WithLabelValues(kind).Observe(float64(results))
}

// FuzzyFallback implements search.Observer.
func (SearchObserver) FuzzyFallback(matched int) {
	SearchFuzzyMatchesTotal.Add(float64(matched))
}

// CorpusRecorder feeds rebuild outcomes into Prometheus.
type CorpusRecorder struct{}

var _ corpus.Recorder = CorpusRecorder{}

// RebuildCompleted implements corpus.Recorder.
func (CorpusRecorder) RebuildCompleted(s corpus.Stats) {
	CorpusRebuildsTotal.WithLabelValues("ok").Inc()
	CorpusRebuildDuration.Observe(s.Duration.Seconds())
	CorpusLastRebuildTimestamp.Set(float64(s.BuiltAt.Unix()))
	CorpusDocuments.Set(float64(s.Documents))
	for _, c := range category.All() {
		CorpusCategoryDocuments.WithLabelValues(c.String()).Set(float64(s.Categories[c]))
	}
}

// RebuildFailed implements corpus.Recorder.
func (CorpusRecorder) RebuildFailed(d time.Duration) {
	CorpusRebuildsTotal.WithLabelValues("error").Inc()
	CorpusRebuildDuration.Observe(d.Seconds())
}
