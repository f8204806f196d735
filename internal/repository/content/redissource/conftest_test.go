package redissource

import (
	"context"
	"testing"

	"github.com/kailas-cloud/sitesearch/internal/db"
)

// mockStore implements the consumer interface for tests.
type mockStore struct {
	scanFn         func(ctx context.Context, pattern string) ([]string, error)
	hgetAllMultiFn func(ctx context.Context, keys []string) ([]map[string]string, error)
	replaceFn      func(ctx context.Context, del []string, items []db.HashSetItem) error
	getFn          func(ctx context.Context, key string) ([]byte, error)
	incrByFn       func(ctx context.Context, key string, val int64) (int64, error)
}

func (m *mockStore) Scan(ctx context.Context, pattern string) ([]string, error) {
	if m.scanFn != nil {
		return m.scanFn(ctx, pattern)
	}
	return nil, nil
}

func (m *mockStore) HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error) {
	if m.hgetAllMultiFn != nil {
		return m.hgetAllMultiFn(ctx, keys)
	}
	return make([]map[string]string, len(keys)), nil
}

func (m *mockStore) ReplaceHashes(ctx context.Context, del []string, items []db.HashSetItem) error {
	if m.replaceFn != nil {
		return m.replaceFn(ctx, del, items)
	}
	return nil
}

func (m *mockStore) Get(ctx context.Context, key string) ([]byte, error) {
	if m.getFn != nil {
		return m.getFn(ctx, key)
	}
	return nil, db.ErrKeyNotFound
}

func (m *mockStore) IncrBy(ctx context.Context, key string, val int64) (int64, error) {
	if m.incrByFn != nil {
		return m.incrByFn(ctx, key, val)
	}
	return val, nil
}

func newTestSource(t *testing.T) (*Source, *mockStore) {
	t.Helper()
	ms := &mockStore{}
	return New(ms), ms
}

// hashes keyed by Redis key, as HGETALL would return them.
var testHashes = map[string]map[string]string{
	"sitesearch:doc:b": {
		"title": "Personal Pension Scheme (Tier 3)", "category": "scheme",
		"priority": "4", "keywords": "tier 3",
	},
	"sitesearch:doc:a": {
		"id": "a", "title": "Best Personal Pension Scheme", "category": "scheme",
		"priority": "5", "keywords": "tier 3, voluntary", "last_updated": "2024-01-15T08:00:00Z",
	},
}

func serveHashes(ms *mockStore, hashes map[string]map[string]string) {
	ms.scanFn = func(_ context.Context, _ string) ([]string, error) {
		keys := make([]string, 0, len(hashes))
		for k := range hashes {
			keys = append(keys, k)
		}
		return keys, nil
	}
	ms.hgetAllMultiFn = func(_ context.Context, keys []string) ([]map[string]string, error) {
		out := make([]map[string]string, len(keys))
		for i, k := range keys {
			out[i] = hashes[k]
		}
		return out, nil
	}
}
