// Package filesource loads documents from YAML files on disk.
package filesource

import (
	"context"
	"crypto/sha256"
	"encoding/hex"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.uber.org/zap"
	"gopkg.in/yaml.v3"

	"github.com/kailas-cloud/sitesearch/internal/domain/document"
	"github.com/kailas-cloud/sitesearch/internal/repository/content"
)

// manifest is the on-disk shape of one corpus file.
type manifest struct {
	Documents []content.Record `yaml:"documents"`
}

// Source reads one YAML file, or every *.yaml / *.yml file of a directory in
// lexical order.
type Source struct {
	path   string
	logger *zap.Logger
}

// New creates a file source rooted at path.
func New(path string, logger *zap.Logger) *Source {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{path: path, logger: logger}
}

// Name identifies the source in logs and errors.
func (s *Source) Name() string { return "file:" + s.path }

// Load parses every file and converts its records to documents.
func (s *Source) Load(ctx context.Context) ([]document.Document, error) {
	files, err := s.files()
	if err != nil {
		return nil, err
	}

	var docs []document.Document
	for _, f := range files {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		parsed, err := s.loadFile(f)
		if err != nil {
			return nil, err
		}
		docs = append(docs, parsed...)
	}

	s.logger.Debug("File source loaded",
		zap.String("path", s.path),
		zap.Int("files", len(files)),
		zap.Int("documents", len(docs)),
	)
	return docs, nil
}

// Version digests the name, size and mtime of every file, so any edit,
// addition or removal changes it.
func (s *Source) Version(_ context.Context) (string, error) {
	files, err := s.files()
	if err != nil {
		return "", err
	}

	h := sha256.New()
	for _, f := range files {
		info, err := os.Stat(f)
		if err != nil {
			return "", fmt.Errorf("stat %s: %w", f, err)
		}
		fmt.Fprintf(h, "%s|%d|%d\n", f, info.Size(), info.ModTime().UnixNano())
	}
	return hex.EncodeToString(h.Sum(nil))[:16], nil
}

func (s *Source) files() ([]string, error) {
	info, err := os.Stat(s.path)
	if err != nil {
		return nil, fmt.Errorf("stat %s: %w", s.path, err)
	}
	if !info.IsDir() {
		return []string{s.path}, nil
	}

	entries, err := os.ReadDir(s.path)
	if err != nil {
		return nil, fmt.Errorf("read dir %s: %w", s.path, err)
	}
	var files []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		ext := strings.ToLower(filepath.Ext(e.Name()))
		if ext == ".yaml" || ext == ".yml" {
			files = append(files, filepath.Join(s.path, e.Name()))
		}
	}
	slices.Sort(files)
	return files, nil
}

func (s *Source) loadFile(path string) ([]document.Document, error) {
	data, err := os.ReadFile(path) //nolint:gosec // path comes from operator config
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var m manifest
	if err := yaml.Unmarshal(data, &m); err != nil {
		return nil, fmt.Errorf("parse %s: %w", path, err)
	}

	docs := make([]document.Document, 0, len(m.Documents))
	for i, rec := range m.Documents {
		d, err := rec.ToDocument(s.logger, path)
		if err != nil {
			return nil, fmt.Errorf("%s: document %d: %w", path, i, err)
		}
		docs = append(docs, d)
	}
	return docs, nil
}

// Write serializes docs into a single manifest file.
func Write(path string, docs []document.Document) error {
	m := manifest{Documents: make([]content.Record, len(docs))}
	for i, d := range docs {
		m.Documents[i] = content.FromDocument(d)
	}
	data, err := yaml.Marshal(&m)
	if err != nil {
		return fmt.Errorf("marshal manifest: %w", err)
	}
	if err := os.WriteFile(path, data, 0o600); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}
