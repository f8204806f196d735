package corpus

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/kailas-cloud/sitesearch/internal/domain"
	"github.com/kailas-cloud/sitesearch/internal/domain/category"
	domcorpus "github.com/kailas-cloud/sitesearch/internal/domain/corpus"
	"github.com/kailas-cloud/sitesearch/internal/domain/document"
)

// --- Mocks ---

type mockSource struct {
	name   string
	loadFn func(ctx context.Context) ([]document.Document, error)
	loads  atomic.Int32
}

func (m *mockSource) Name() string { return m.name }

func (m *mockSource) Load(ctx context.Context) ([]document.Document, error) {
	m.loads.Add(1)
	if m.loadFn != nil {
		return m.loadFn(ctx)
	}
	return nil, nil
}

type mockVersionedSource struct {
	*mockSource
	mu      sync.Mutex
	version string
	err     error
}

func (m *mockVersionedSource) Version(_ context.Context) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.version, m.err
}

func (m *mockVersionedSource) setVersion(v string) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.version = v
}

type mockSwapper struct {
	mu       sync.Mutex
	replaced []*domcorpus.Corpus
}

func (m *mockSwapper) Replace(c *domcorpus.Corpus) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.replaced = append(m.replaced, c)
}

func (m *mockSwapper) count() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return len(m.replaced)
}

func (m *mockSwapper) latest() *domcorpus.Corpus {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.replaced[len(m.replaced)-1]
}

type mockRecorder struct {
	completed int
	failed    int
	last      Stats
}

func (m *mockRecorder) RebuildCompleted(s Stats)      { m.completed++; m.last = s }
func (m *mockRecorder) RebuildFailed(_ time.Duration) { m.failed++ }

func docs(t *testing.T, cat category.Category, ids ...string) []document.Document {
	t.Helper()
	out := make([]document.Document, len(ids))
	for i, id := range ids {
		d, err := document.New(document.Fields{ID: id, Title: "Title " + id, Category: cat, Priority: 3})
		if err != nil {
			t.Fatal(err)
		}
		out[i] = d
	}
	return out
}

func staticSource(name string, d []document.Document) *mockSource {
	return &mockSource{name: name, loadFn: func(context.Context) ([]document.Document, error) { return d, nil }}
}

func newTestService(t *testing.T, sources []Source, opts ...Option) (*Service, *mockSwapper) {
	t.Helper()
	sw := &mockSwapper{}
	svc, err := New(sources, sw, opts...)
	if err != nil {
		t.Fatalf("New: %v", err)
	}
	t.Cleanup(svc.Release)
	return svc, sw
}

// --- Tests ---

func TestNew_RequiresSwapper(t *testing.T) {
	if _, err := New(nil, nil); err == nil {
		t.Fatal("expected error")
	}
}

func TestRebuild_ConcatenatesInSourceOrder(t *testing.T) {
	slowDocs := docs(t, category.Scheme, "s1", "s2")
	slow := &mockSource{name: "slow", loadFn: func(context.Context) ([]document.Document, error) {
		time.Sleep(20 * time.Millisecond)
		return slowDocs, nil
	}}
	fast := staticSource("fast", docs(t, category.FAQ, "f1"))

	rec := &mockRecorder{}
	svc, sw := newTestService(t, []Source{slow, fast}, WithPoolSize(2), WithRecorder(rec))

	stats, err := svc.Rebuild(context.Background())
	if err != nil {
		t.Fatalf("unexpected error: %v", err)
	}
	if sw.count() != 1 {
		t.Fatalf("expected 1 swap, got %d", sw.count())
	}
	c := sw.latest()
	d0, d1, d2 := c.At(0), c.At(1), c.At(2)
	got := []string{d0.ID(), d1.ID(), d2.ID()}
	if got[0] != "s1" || got[1] != "s2" || got[2] != "f1" {
		t.Errorf("order = %v, want [s1 s2 f1]", got)
	}

	if stats.Documents != 3 || stats.Categories[category.Scheme] != 2 || stats.Categories[category.FAQ] != 1 {
		t.Errorf("unexpected stats: %+v", stats)
	}
	if len(stats.Sources) != 2 || stats.Sources[0].Name != "slow" || stats.Sources[0].Documents != 2 {
		t.Errorf("unexpected source stats: %+v", stats.Sources)
	}
	if rec.completed != 1 || rec.last.Documents != 3 {
		t.Errorf("recorder: completed=%d last=%+v", rec.completed, rec.last)
	}
}

func TestRebuild_SourceFailureKeepsPrevious(t *testing.T) {
	var fail atomic.Bool
	pages := docs(t, category.Page, "p1")
	flaky := &mockSource{name: "cms", loadFn: func(context.Context) ([]document.Document, error) {
		if fail.Load() {
			return nil, errors.New("connection refused")
		}
		return pages, nil
	}}
	rec := &mockRecorder{}
	svc, sw := newTestService(t, []Source{flaky, staticSource("file", nil)}, WithRecorder(rec))

	if _, err := svc.Rebuild(context.Background()); err != nil {
		t.Fatal(err)
	}

	fail.Store(true)
	_, err := svc.Rebuild(context.Background())
	if !errors.Is(err, domain.ErrSourceFailed) {
		t.Fatalf("expected ErrSourceFailed, got %v", err)
	}
	var srcErr *domain.SourceError
	if !errors.As(err, &srcErr) || srcErr.Source != "cms" {
		t.Errorf("expected SourceError for cms, got %v", err)
	}
	if sw.count() != 1 {
		t.Errorf("failed rebuild must not swap, got %d swaps", sw.count())
	}
	if st, ok := svc.Current(); !ok || st.Documents != 1 {
		t.Errorf("Current() = %+v, %v; want previous build", st, ok)
	}
	if rec.failed != 1 {
		t.Errorf("recorder failed = %d, want 1", rec.failed)
	}
}

func TestRebuild_DuplicateAcrossSources(t *testing.T) {
	svc, sw := newTestService(t, []Source{
		staticSource("a", docs(t, category.Page, "same")),
		staticSource("b", docs(t, category.Page, "same")),
	})
	_, err := svc.Rebuild(context.Background())
	if !errors.Is(err, domain.ErrDuplicateID) {
		t.Fatalf("expected ErrDuplicateID, got %v", err)
	}
	if sw.count() != 0 {
		t.Error("must not swap on duplicate")
	}
}

func TestRebuild_NoSources(t *testing.T) {
	svc, sw := newTestService(t, nil)
	stats, err := svc.Rebuild(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Documents != 0 || sw.count() != 1 {
		t.Errorf("empty build: stats=%+v swaps=%d", stats, sw.count())
	}
}

func TestRebuild_VersionedCorpus(t *testing.T) {
	vs := &mockVersionedSource{mockSource: staticSource("redis", docs(t, category.Page, "p1")), version: "7"}
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	svc, sw := newTestService(t, []Source{vs}, WithClock(func() time.Time { return fixed }))

	stats, err := svc.Rebuild(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if stats.Version != "7" || sw.latest().Version() != "7" {
		t.Errorf("version = %q, want 7", stats.Version)
	}
	if !stats.BuiltAt.Equal(fixed) {
		t.Errorf("BuiltAt = %v, want %v", stats.BuiltAt, fixed)
	}
}

func TestVersion(t *testing.T) {
	a := &mockVersionedSource{mockSource: &mockSource{name: "a"}, version: "1"}
	b := &mockVersionedSource{mockSource: &mockSource{name: "b"}, version: "2"}

	svc, _ := newTestService(t, []Source{a, b})
	v1, ok, err := svc.Version(context.Background())
	if err != nil || !ok {
		t.Fatalf("Version: %q %v %v", v1, ok, err)
	}
	again, _, _ := svc.Version(context.Background())
	if v1 != again {
		t.Error("combined version must be stable")
	}
	b.setVersion("3")
	if v2, _, _ := svc.Version(context.Background()); v2 == v1 {
		t.Error("combined version must change with a source version")
	}

	unversioned, _ := newTestService(t, []Source{a, &mockSource{name: "plain"}})
	if _, ok, _ := unversioned.Version(context.Background()); ok {
		t.Error("expected ok=false with an unversioned source")
	}

	b.err = errors.New("timeout")
	if _, _, err := svc.Version(context.Background()); !errors.Is(err, domain.ErrSourceFailed) {
		t.Errorf("expected ErrSourceFailed, got %v", err)
	}
}

func TestRefresh_RebuildsOnlyOnChange(t *testing.T) {
	vs := &mockVersionedSource{mockSource: staticSource("redis", docs(t, category.Page, "p1")), version: "1"}
	svc, sw := newTestService(t, []Source{vs})
	ctx := context.Background()

	svc.refresh(ctx) // no build yet
	if sw.count() != 1 {
		t.Fatalf("first refresh must build, swaps=%d", sw.count())
	}
	svc.refresh(ctx)
	if sw.count() != 1 {
		t.Errorf("unchanged version must not rebuild, swaps=%d", sw.count())
	}
	vs.setVersion("2")
	svc.refresh(ctx)
	if sw.count() != 2 {
		t.Errorf("changed version must rebuild, swaps=%d", sw.count())
	}
}

func TestRefresh_UnversionedAlwaysRebuilds(t *testing.T) {
	svc, sw := newTestService(t, []Source{staticSource("plain", docs(t, category.Page, "p1"))})
	svc.refresh(context.Background())
	svc.refresh(context.Background())
	if sw.count() != 2 {
		t.Errorf("swaps = %d, want 2", sw.count())
	}
}

func TestRun_StopsOnCancel(t *testing.T) {
	vs := &mockVersionedSource{mockSource: staticSource("redis", docs(t, category.Page, "p1")), version: "1"}
	svc, sw := newTestService(t, []Source{vs})

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		svc.Run(ctx, 5*time.Millisecond)
		close(done)
	}()

	deadline := time.After(2 * time.Second)
	for sw.count() == 0 {
		select {
		case <-deadline:
			t.Fatal("refresher never rebuilt")
		case <-time.After(5 * time.Millisecond):
		}
	}
	cancel()

	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestRun_DisabledInterval(t *testing.T) {
	svc, sw := newTestService(t, nil)
	svc.Run(context.Background(), 0)
	if sw.count() != 0 {
		t.Error("disabled refresher must not build")
	}
}

func TestRebuild_Serialized(t *testing.T) {
	var inFlight, maxInFlight atomic.Int32
	src := &mockSource{name: "slow", loadFn: func(context.Context) ([]document.Document, error) {
		n := inFlight.Add(1)
		for {
			m := maxInFlight.Load()
			if n <= m || maxInFlight.CompareAndSwap(m, n) {
				break
			}
		}
		time.Sleep(5 * time.Millisecond)
		inFlight.Add(-1)
		return nil, nil
	}}
	svc, sw := newTestService(t, []Source{src})

	var wg sync.WaitGroup
	for range 4 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, _ = svc.Rebuild(context.Background())
		}()
	}
	wg.Wait()

	if maxInFlight.Load() != 1 {
		t.Errorf("concurrent loads = %d, want 1", maxInFlight.Load())
	}
	if sw.count() != 4 {
		t.Errorf("swaps = %d, want 4", sw.count())
	}
}
