package corpus

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"time"

	"github.com/panjf2000/ants/v2"
	"go.uber.org/zap"

	"github.com/kailas-cloud/sitesearch/internal/domain"
	"github.com/kailas-cloud/sitesearch/internal/domain/category"
	domcorpus "github.com/kailas-cloud/sitesearch/internal/domain/corpus"
	"github.com/kailas-cloud/sitesearch/internal/domain/document"
)

// SourceStats is the per-source share of a build.
type SourceStats struct {
	Name      string
	Documents int
}

// Stats describes one successful build.
type Stats struct {
	Documents  int
	Version    string
	BuiltAt    time.Time
	Duration   time.Duration
	Categories map[category.Category]int
	Sources    []SourceStats
}

// Service loads content sources into a corpus and swaps it into the engine.
type Service struct {
	sources  []Source
	swapper  Swapper
	pool     *ants.Pool
	logger   *zap.Logger
	recorder Recorder
	now      func() time.Time

	mu          sync.Mutex // serializes rebuilds
	lastVersion string
	last        atomic.Pointer[Stats]
}

// Option configures a Service.
type Option func(*Service) error

// WithPoolSize sets how many sources load concurrently.
// Default is runtime.NumCPU(), with a minimum of 1.
func WithPoolSize(size int) Option {
	return func(s *Service) error {
		if size < 1 {
			size = 1
		}
		if s.pool != nil {
			s.pool.Release()
		}
		pool, err := ants.NewPool(size)
		if err != nil {
			return fmt.Errorf("create loader pool: %w", err)
		}
		s.pool = pool
		return nil
	}
}

// WithLogger sets the logger. Default is zap.NewNop().
func WithLogger(l *zap.Logger) Option {
	return func(s *Service) error {
		if l != nil {
			s.logger = l
		}
		return nil
	}
}

// WithRecorder sets the rebuild metrics sink.
func WithRecorder(r Recorder) Option {
	return func(s *Service) error {
		if r != nil {
			s.recorder = r
		}
		return nil
	}
}

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Service) error {
		if now != nil {
			s.now = now
		}
		return nil
	}
}

// New creates a corpus service. Call Release when done.
func New(sources []Source, swapper Swapper, opts ...Option) (*Service, error) {
	if swapper == nil {
		return nil, errors.New("swapper is required")
	}

	pool, err := ants.NewPool(max(runtime.NumCPU(), 1))
	if err != nil {
		return nil, fmt.Errorf("create loader pool: %w", err)
	}

	s := &Service{
		sources:  sources,
		swapper:  swapper,
		pool:     pool,
		logger:   zap.NewNop(),
		recorder: noopRecorder{},
		now:      time.Now,
	}
	for _, opt := range opts {
		if err := opt(s); err != nil {
			s.Release()
			return nil, err
		}
	}
	return s, nil
}

// Release stops the loader pool.
func (s *Service) Release() {
	if s.pool != nil {
		s.pool.Release()
	}
}

// Current returns the stats of the last successful build.
func (s *Service) Current() (Stats, bool) {
	p := s.last.Load()
	if p == nil {
		return Stats{}, false
	}
	return *p, true
}

// Rebuild loads every source, builds a corpus and installs it. On any failure
// the previously installed corpus stays in place.
func (s *Service) Rebuild(ctx context.Context) (Stats, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	start := s.now()
	stats, err := s.rebuild(ctx, start)
	if err != nil {
		s.recorder.RebuildFailed(s.now().Sub(start))
		s.logger.Error("Corpus rebuild failed", zap.Error(err))
		return Stats{}, err
	}

	s.last.Store(&stats)
	s.recorder.RebuildCompleted(stats)
	s.logger.Info("Corpus rebuilt",
		zap.Int("documents", stats.Documents),
		zap.String("version", stats.Version),
		zap.Duration("duration", stats.Duration),
	)
	return stats, nil
}

func (s *Service) rebuild(ctx context.Context, start time.Time) (Stats, error) {
	// Versions are read before loading: a write racing the load triggers
	// the next refresh.
	version, _, err := s.Version(ctx)
	if err != nil {
		return Stats{}, err
	}

	loaded, err := s.loadAll(ctx)
	if err != nil {
		return Stats{}, err
	}

	var all []document.Document
	perSource := make([]SourceStats, len(s.sources))
	for i, docs := range loaded {
		perSource[i] = SourceStats{Name: s.sources[i].Name(), Documents: len(docs)}
		all = append(all, docs...)
	}

	c, err := domcorpus.Build(all, domcorpus.WithVersion(version), domcorpus.WithClock(s.now))
	if err != nil {
		return Stats{}, fmt.Errorf("build corpus: %w", err)
	}
	s.swapper.Replace(c)
	s.lastVersion = version

	return Stats{
		Documents:  c.Len(),
		Version:    c.Version(),
		BuiltAt:    c.BuiltAt(),
		Duration:   s.now().Sub(start),
		Categories: c.CategoryCounts(),
		Sources:    perSource,
	}, nil
}

// loadAll runs every source on the pool. Results keep source order.
func (s *Service) loadAll(ctx context.Context) ([][]document.Document, error) {
	results := make([][]document.Document, len(s.sources))
	errs := make([]error, len(s.sources))

	var wg sync.WaitGroup
	for i, src := range s.sources {
		wg.Add(1)
		submitErr := s.pool.Submit(func() {
			defer wg.Done()
			docs, err := src.Load(ctx)
			if err != nil {
				errs[i] = domain.NewSourceError(src.Name(), err)
				return
			}
			results[i] = docs
		})
		if submitErr != nil {
			wg.Done()
			errs[i] = domain.NewSourceError(src.Name(), submitErr)
		}
	}
	wg.Wait()

	if err := errors.Join(errs...); err != nil {
		return nil, err
	}
	return results, nil
}

// Version combines the versions of all sources. ok is false when any source
// cannot report one, in which case the refresher always rebuilds.
func (s *Service) Version(ctx context.Context) (string, bool, error) {
	ok := true
	parts := make([]string, len(s.sources))
	for i, src := range s.sources {
		v, isVersioned := src.(Versioned)
		if !isVersioned {
			ok = false
			parts[i] = src.Name() + "=*"
			continue
		}
		sv, err := v.Version(ctx)
		if err != nil {
			return "", false, domain.NewSourceError(src.Name(), fmt.Errorf("version: %w", err))
		}
		parts[i] = src.Name() + "=" + sv
		if len(s.sources) == 1 {
			return sv, ok, nil
		}
	}

	h := sha256.New()
	for _, p := range parts {
		h.Write([]byte(p))
		h.Write([]byte{'\n'})
	}
	return hex.EncodeToString(h.Sum(nil))[:16], ok, nil
}

// Run rebuilds on every tick when the content changed. It returns when ctx is
// done. A non-positive interval disables refreshing.
func (s *Service) Run(ctx context.Context, interval time.Duration) {
	if interval <= 0 {
		return
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			s.refresh(ctx)
		}
	}
}

func (s *Service) refresh(ctx context.Context) {
	v, ok, err := s.Version(ctx)
	if err != nil {
		s.logger.Warn("Corpus version check failed", zap.Error(err))
		return
	}
	if ok && s.unchanged(v) {
		return
	}
	s.logger.Debug("Corpus changed, rebuilding", zap.String("version", v))
	_, _ = s.Rebuild(ctx) // failure already logged and recorded
}

func (s *Service) unchanged(v string) bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.last.Load() != nil && s.lastVersion == v
}
