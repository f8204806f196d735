// Package sqlsource loads documents from a relational CMS table via sqlx.
package sqlsource

import (
	"context"
	"fmt"
	"regexp"
	"strconv"

	"github.com/jmoiron/sqlx"
	_ "github.com/mattn/go-sqlite3" // sqlite3 driver
	"go.uber.org/zap"

	"github.com/kailas-cloud/sitesearch/internal/domain/document"
	"github.com/kailas-cloud/sitesearch/internal/repository/content"
)

// Defaults.
const (
	DefaultDriver = "sqlite3"
	DefaultTable  = "search_documents"
)

var identRe = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9_]*$`)

// row is one table row. Keywords are stored comma separated.
type row struct {
	ID          string `db:"id"`
	Title       string `db:"title"`
	Description string `db:"description"`
	Content     string `db:"content"`
	Category    string `db:"category"`
	Subcategory string `db:"subcategory"`
	URL         string `db:"url"`
	Keywords    string `db:"keywords"`
	Priority    int    `db:"priority"`
	LastUpdated string `db:"last_updated"`
	Position    int    `db:"position"`
	Revision    int64  `db:"revision"`
}

// Source reads every row of one table ordered by position, then id.
// Writers bump the revision column on change, which drives Version.
type Source struct {
	db     *sqlx.DB
	table  string
	logger *zap.Logger
}

// Open connects with driver and dsn and wraps the connection in a Source.
func Open(driver, dsn, table string, logger *zap.Logger) (*Source, error) {
	if driver == "" {
		driver = DefaultDriver
	}
	conn, err := sqlx.Connect(driver, dsn)
	if err != nil {
		return nil, fmt.Errorf("connect %s: %w", driver, err)
	}
	s, err := New(conn, table, logger)
	if err != nil {
		_ = conn.Close()
		return nil, err
	}
	return s, nil
}

// New wraps an open connection.
func New(conn *sqlx.DB, table string, logger *zap.Logger) (*Source, error) {
	if table == "" {
		table = DefaultTable
	}
	if !identRe.MatchString(table) {
		return nil, fmt.Errorf("invalid table name %q", table)
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Source{db: conn, table: table, logger: logger}, nil
}

// Close releases the connection.
func (s *Source) Close() error { return s.db.Close() }

// Name identifies the source in logs and errors.
func (s *Source) Name() string { return "sql:" + s.table }

// EnsureSchema creates the table when it does not exist.
func (s *Source) EnsureSchema(ctx context.Context) error {
	stmts := []string{
		`CREATE TABLE IF NOT EXISTS ` + s.table + ` (
			id           TEXT PRIMARY KEY,
			title        TEXT NOT NULL,
			description  TEXT NOT NULL DEFAULT '',
			content      TEXT NOT NULL DEFAULT '',
			category     TEXT NOT NULL DEFAULT 'other',
			subcategory  TEXT NOT NULL DEFAULT '',
			url          TEXT NOT NULL DEFAULT '',
			keywords     TEXT NOT NULL DEFAULT '',
			priority     INTEGER NOT NULL DEFAULT 1,
			last_updated TEXT NOT NULL DEFAULT '',
			position     INTEGER NOT NULL DEFAULT 0,
			revision     INTEGER NOT NULL DEFAULT 0
		)`,
		`CREATE INDEX IF NOT EXISTS idx_` + s.table + `_position ON ` + s.table + `(position, id)`,
	}
	for _, stmt := range stmts {
		if _, err := s.db.ExecContext(ctx, stmt); err != nil {
			return fmt.Errorf("ensure schema: %w", err)
		}
	}
	return nil
}

// Load reads all rows in position order.
func (s *Source) Load(ctx context.Context) ([]document.Document, error) {
	var rows []row
	query := `SELECT id, title,
		COALESCE(description, '') AS description, COALESCE(content, '') AS content,
		COALESCE(category, '') AS category, COALESCE(subcategory, '') AS subcategory,
		COALESCE(url, '') AS url, COALESCE(keywords, '') AS keywords,
		COALESCE(priority, 0) AS priority, COALESCE(last_updated, '') AS last_updated,
		position, revision
		FROM ` + s.table + ` ORDER BY position, id`
	if err := s.db.SelectContext(ctx, &rows, query); err != nil {
		return nil, fmt.Errorf("select %s: %w", s.table, err)
	}

	docs := make([]document.Document, 0, len(rows))
	for _, r := range rows {
		rec := content.Record{
			ID:          r.ID,
			Title:       r.Title,
			Description: r.Description,
			Content:     r.Content,
			Category:    r.Category,
			Subcategory: r.Subcategory,
			URL:         r.URL,
			Keywords:    content.SplitKeywords(r.Keywords),
			Priority:    r.Priority,
			LastUpdated: r.LastUpdated,
		}
		d, err := rec.ToDocument(s.logger, s.Name())
		if err != nil {
			return nil, fmt.Errorf("row %s: %w", r.ID, err)
		}
		docs = append(docs, d)
	}

	s.logger.Debug("SQL source loaded",
		zap.String("table", s.table),
		zap.Int("documents", len(docs)),
	)
	return docs, nil
}

// Version combines the row count with the highest revision.
func (s *Source) Version(ctx context.Context) (string, error) {
	var v struct {
		Count    int64 `db:"n"`
		Revision int64 `db:"rev"`
	}
	query := `SELECT COUNT(*) AS n, COALESCE(MAX(revision), 0) AS rev FROM ` + s.table
	if err := s.db.GetContext(ctx, &v, query); err != nil {
		return "", fmt.Errorf("version %s: %w", s.table, err)
	}
	return strconv.FormatInt(v.Count, 10) + "." + strconv.FormatInt(v.Revision, 10), nil
}

// Save replaces the table contents with docs in one transaction and returns
// the new revision.
func (s *Source) Save(ctx context.Context, docs []document.Document) (int64, error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var rev int64
	if err := tx.GetContext(ctx, &rev, `SELECT COALESCE(MAX(revision), 0) FROM `+s.table); err != nil {
		return 0, fmt.Errorf("read revision: %w", err)
	}
	rev++

	if _, err := tx.ExecContext(ctx, `DELETE FROM `+s.table); err != nil {
		return 0, fmt.Errorf("clear %s: %w", s.table, err)
	}

	insert := `INSERT INTO ` + s.table + ` (id, title, description, content, category, subcategory,
		url, keywords, priority, last_updated, position, revision)
		VALUES (:id, :title, :description, :content, :category, :subcategory,
		:url, :keywords, :priority, :last_updated, :position, :revision)`
	for i, d := range docs {
		r := content.FromDocument(d)
		if _, err := tx.NamedExecContext(ctx, insert, row{
			ID:          r.ID,
			Title:       r.Title,
			Description: r.Description,
			Content:     r.Content,
			Category:    r.Category,
			Subcategory: r.Subcategory,
			URL:         r.URL,
			Keywords:    content.JoinKeywords(r.Keywords),
			Priority:    r.Priority,
			LastUpdated: r.LastUpdated,
			Position:    i,
			Revision:    rev,
		}); err != nil {
			return 0, fmt.Errorf("insert %s: %w", r.ID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}
	s.logger.Info("SQL corpus saved",
		zap.String("table", s.table),
		zap.Int("documents", len(docs)),
		zap.Int64("revision", rev),
	)
	return rev, nil
}
