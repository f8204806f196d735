package corpus

import (
	"context"
	"time"

	domcorpus "github.com/kailas-cloud/sitesearch/internal/domain/corpus"
	"github.com/kailas-cloud/sitesearch/internal/domain/document"
)

// Source produces documents for the corpus.
type Source interface {
	Name() string
	Load(ctx context.Context) ([]document.Document, error)
}

// Versioned is implemented by sources that can report a cheap change marker
// without a full load.
type Versioned interface {
	Version(ctx context.Context) (string, error)
}

// Swapper installs a freshly built corpus (the search engine).
type Swapper interface {
	Replace(c *domcorpus.Corpus)
}

// Recorder receives rebuild outcomes (metrics adapter).
type Recorder interface {
	RebuildCompleted(stats Stats)
	RebuildFailed(duration time.Duration)
}

type noopRecorder struct{}

func (noopRecorder) RebuildCompleted(Stats)      {}
func (noopRecorder) RebuildFailed(time.Duration) {}
