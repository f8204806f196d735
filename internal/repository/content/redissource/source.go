// Package redissource loads documents stored as Redis hashes.
package redissource

import (
	"context"
	"errors"
	"fmt"
	"slices"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/kailas-cloud/sitesearch/internal/db"
	"github.com/kailas-cloud/sitesearch/internal/domain/document"
	"github.com/kailas-cloud/sitesearch/internal/repository/content"
)

// Defaults for key layout.
const (
	DefaultKeyPrefix  = "sitesearch:doc:"
	DefaultVersionKey = "sitesearch:version"
)

// Hash field names.
const (
	fieldID          = "id"
	fieldTitle       = "title"
	fieldDescription = "description"
	fieldContent     = "content"
	fieldCategory    = "category"
	fieldSubcategory = "subcategory"
	fieldURL         = "url"
	fieldKeywords    = "keywords"
	fieldPriority    = "priority"
	fieldLastUpdated = "last_updated"
)

// store is the consumer interface for the Redis source (ISP).
type store interface {
	Scan(ctx context.Context, pattern string) ([]string, error)
	HGetAllMulti(ctx context.Context, keys []string) ([]map[string]string, error)
	ReplaceHashes(ctx context.Context, del []string, items []db.HashSetItem) error
	Get(ctx context.Context, key string) ([]byte, error)
	IncrBy(ctx context.Context, key string, val int64) (int64, error)
}

// Source reads every hash under a key prefix.
type Source struct {
	store      store
	prefix     string
	versionKey string
	logger     *zap.Logger
}

// Option configures a Source.
type Option func(*Source)

// WithKeyPrefix overrides DefaultKeyPrefix.
func WithKeyPrefix(p string) Option {
	return func(s *Source) {
		if p != "" {
			s.prefix = p
		}
	}
}

// WithVersionKey overrides DefaultVersionKey.
func WithVersionKey(k string) Option {
	return func(s *Source) {
		if k != "" {
			s.versionKey = k
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l *zap.Logger) Option {
	return func(s *Source) {
		if l != nil {
			s.logger = l
		}
	}
}

// New creates a Redis content source.
func New(st store, opts ...Option) *Source {
	s := &Source{
		store:      st,
		prefix:     DefaultKeyPrefix,
		versionKey: DefaultVersionKey,
		logger:     zap.NewNop(),
	}
	for _, o := range opts {
		o(s)
	}
	return s
}

// Name identifies the source in logs and errors.
func (s *Source) Name() string { return "redis:" + s.prefix }

// Load scans the prefix and fetches all hashes in one round trip.
// Documents come back in key order.
func (s *Source) Load(ctx context.Context) ([]document.Document, error) {
	keys, err := s.store.Scan(ctx, s.prefix+"*")
	if err != nil {
		return nil, fmt.Errorf("scan %s: %w", s.prefix, err)
	}
	slices.Sort(keys)
	keys = slices.Compact(keys)

	hashes, err := s.store.HGetAllMulti(ctx, keys)
	if err != nil {
		return nil, fmt.Errorf("fetch documents: %w", err)
	}

	docs := make([]document.Document, 0, len(hashes))
	for i, h := range hashes {
		if len(h) == 0 {
			// deleted between SCAN and HGETALL
			continue
		}
		rec, err := s.parseHash(keys[i], h)
		if err != nil {
			return nil, err
		}
		d, err := rec.ToDocument(s.logger, keys[i])
		if err != nil {
			return nil, fmt.Errorf("key %s: %w", keys[i], err)
		}
		docs = append(docs, d)
	}

	s.logger.Debug("Redis source loaded",
		zap.String("prefix", s.prefix),
		zap.Int("documents", len(docs)),
	)
	return docs, nil
}

// Version returns the version counter. A missing counter reads as "0".
func (s *Source) Version(ctx context.Context) (string, error) {
	raw, err := s.store.Get(ctx, s.versionKey)
	if err != nil {
		if errors.Is(err, db.ErrKeyNotFound) {
			return "0", nil
		}
		return "", fmt.Errorf("get %s: %w", s.versionKey, err)
	}
	return string(raw), nil
}

// Save replaces the stored corpus with docs and bumps the version counter.
// Keys under the prefix that are not in docs are deleted in the same
// transaction that writes docs, so a concurrent Load never sees a mix.
func (s *Source) Save(ctx context.Context, docs []document.Document) (int64, error) {
	existing, err := s.store.Scan(ctx, s.prefix+"*")
	if err != nil {
		return 0, fmt.Errorf("scan %s: %w", s.prefix, err)
	}

	items := make([]db.HashSetItem, len(docs))
	keep := make(map[string]struct{}, len(docs))
	for i, d := range docs {
		key := s.docKey(d.ID())
		keep[key] = struct{}{}
		items[i] = db.HashSetItem{Key: key, Fields: buildHash(d)}
	}

	var stale []string
	for _, k := range existing {
		if _, ok := keep[k]; !ok {
			stale = append(stale, k)
		}
	}
	if err := s.store.ReplaceHashes(ctx, stale, items); err != nil {
		return 0, fmt.Errorf("store documents: %w", err)
	}

	v, err := s.store.IncrBy(ctx, s.versionKey, 1)
	if err != nil {
		return 0, fmt.Errorf("bump version: %w", err)
	}
	s.logger.Info("Redis corpus saved",
		zap.Int("documents", len(docs)),
		zap.Int("deleted", len(stale)),
		zap.Int64("version", v),
	)
	return v, nil
}

func (s *Source) docKey(id string) string {
	return s.prefix + id
}

func (s *Source) parseHash(key string, h map[string]string) (content.Record, error) {
	rec := content.Record{
		ID:          h[fieldID],
		Title:       h[fieldTitle],
		Description: h[fieldDescription],
		Content:     h[fieldContent],
		Category:    h[fieldCategory],
		Subcategory: h[fieldSubcategory],
		URL:         h[fieldURL],
		Keywords:    content.SplitKeywords(h[fieldKeywords]),
		LastUpdated: h[fieldLastUpdated],
	}
	if rec.ID == "" {
		rec.ID = strings.TrimPrefix(key, s.prefix)
	}
	if p := strings.TrimSpace(h[fieldPriority]); p != "" {
		n, err := strconv.Atoi(p)
		if err != nil {
			return content.Record{}, fmt.Errorf("key %s: priority %q: %w", key, p, err)
		}
		rec.Priority = n
	}
	return rec, nil
}

func buildHash(d document.Document) map[string]string {
	r := content.FromDocument(d)
	m := map[string]string{
		fieldID:       r.ID,
		fieldTitle:    r.Title,
		fieldCategory: r.Category,
		fieldPriority: strconv.Itoa(r.Priority),
	}
	optional := map[string]string{
		fieldDescription: r.Description,
		fieldContent:     r.Content,
		fieldSubcategory: r.Subcategory,
		fieldURL:         r.URL,
		fieldKeywords:    content.JoinKeywords(r.Keywords),
		fieldLastUpdated: r.LastUpdated,
	}
	for k, v := range optional {
		if v != "" {
			m[k] = v
		}
	}
	return m
}
