package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"
	"text/tabwriter"
	"time"

	"github.com/urfave/cli/v2"
	"go.uber.org/zap"

	dbRedis "github.com/kailas-cloud/sitesearch/internal/db/redis"
	"github.com/kailas-cloud/sitesearch/internal/domain/category"
	"github.com/kailas-cloud/sitesearch/internal/domain/corpus"
	"github.com/kailas-cloud/sitesearch/internal/domain/document"
	"github.com/kailas-cloud/sitesearch/internal/domain/search/options"
	"github.com/kailas-cloud/sitesearch/internal/domain/search/weights"
	logpkg "github.com/kailas-cloud/sitesearch/internal/logger"
	"github.com/kailas-cloud/sitesearch/internal/repository/content/filesource"
	"github.com/kailas-cloud/sitesearch/internal/repository/content/redissource"
	"github.com/kailas-cloud/sitesearch/internal/repository/content/sqlsource"
	searchuc "github.com/kailas-cloud/sitesearch/internal/usecase/search"
	"github.com/kailas-cloud/sitesearch/internal/version"
)

const loggerKey = "logger"

func main() {
	if err := newApp(os.Stdout).Run(os.Args); err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func corpusFlag() cli.Flag {
	return &cli.StringFlag{
		Name:     "corpus",
		Aliases:  []string{"c"},
		Usage:    "Path to a YAML corpus file or directory",
		EnvVars:  []string{"SITESEARCH_CONTENT"},
		Required: true,
	}
}

func limitFlag(def int) cli.Flag {
	return &cli.IntFlag{
		Name:    "limit",
		Aliases: []string{"n"},
		Usage:   "Maximum number of results",
		Value:   def,
	}
}

func newApp(out io.Writer) *cli.App {
	return &cli.App{
		Name:    "sitesearchctl",
		Usage:   "Query and manage a sitesearch corpus",
		Version: version.String(),
		Writer:  out,
		Flags: []cli.Flag{
			&cli.StringFlag{
				Name:    "log-level",
				Aliases: []string{"l"},
				Usage:   "Set logging level (debug, info, warn, error)",
				Value:   "warn",
			},
		},
		Before: setupLogger,
		Commands: []*cli.Command{
			{
				Name:      "search",
				Usage:     "Rank corpus documents against a query",
				ArgsUsage: "QUERY",
				Action:    searchCommand,
				Flags: []cli.Flag{
					corpusFlag(),
					limitFlag(options.DefaultLimit),
					&cli.StringSliceFlag{
						Name:  "category",
						Usage: "Restrict to a category (repeatable)",
					},
					&cli.BoolFlag{
						Name:  "content",
						Usage: "Score the body text too",
					},
					&cli.BoolFlag{
						Name:  "no-fuzzy",
						Usage: "Disable the fuzzy fallback",
					},
					&cli.BoolFlag{
						Name:  "json",
						Usage: "Print results as JSON",
					},
				},
			},
			{
				Name:      "suggest",
				Usage:     "Print autocompletion suggestions for a prefix",
				ArgsUsage: "QUERY",
				Action:    suggestCommand,
				Flags: []cli.Flag{
					corpusFlag(),
					limitFlag(options.DefaultSuggestLimit),
				},
			},
			{
				Name:      "category",
				Usage:     "List documents of one category by priority",
				ArgsUsage: "CATEGORY",
				Action:    categoryCommand,
				Flags: []cli.Flag{
					corpusFlag(),
					limitFlag(options.DefaultLimit),
				},
			},
			{
				Name:   "validate",
				Usage:  "Load the corpus and print per-category counts",
				Action: validateCommand,
				Flags:  []cli.Flag{corpusFlag()},
			},
			{
				Name:   "seed",
				Usage:  "Push the corpus into a Redis or SQLite content store",
				Action: seedCommand,
				Flags: []cli.Flag{
					corpusFlag(),
					&cli.StringSliceFlag{
						Name:  "redis-addr",
						Usage: "Redis address (repeatable)",
					},
					&cli.StringFlag{
						Name:    "redis-password",
						Usage:   "Redis password",
						EnvVars: []string{"REDIS_PASSWORD"},
					},
					&cli.StringFlag{
						Name:  "key-prefix",
						Usage: "Redis key prefix of document hashes",
						Value: redissource.DefaultKeyPrefix,
					},
					&cli.StringFlag{
						Name:  "version-key",
						Usage: "Redis key holding the content version",
						Value: redissource.DefaultVersionKey,
					},
					&cli.StringFlag{
						Name:  "sqlite",
						Usage: "Path to a SQLite database file",
					},
					&cli.StringFlag{
						Name:  "table",
						Usage: "SQL table name",
						Value: sqlsource.DefaultTable,
					},
					&cli.DurationFlag{
						Name:  "timeout",
						Usage: "Connection and write timeout",
						Value: 10 * time.Second,
					},
				},
			},
		},
	}
}

func setupLogger(c *cli.Context) error {
	logger, err := logpkg.NewLogger("cli", c.String("log-level"))
	if err != nil {
		return err
	}
	if c.App.Metadata == nil {
		c.App.Metadata = map[string]any{}
	}
	c.App.Metadata[loggerKey] = logger
	return nil
}

func loggerFrom(c *cli.Context) *zap.Logger {
	if l, ok := c.App.Metadata[loggerKey].(*zap.Logger); ok {
		return l
	}
	return zap.NewNop()
}

// loadCorpus reads the --corpus path into a built corpus.
func loadCorpus(c *cli.Context) (*corpus.Corpus, error) {
	src := filesource.New(c.String("corpus"), loggerFrom(c))
	ctx := c.Context
	if ctx == nil {
		ctx = context.Background()
	}

	docs, err := src.Load(ctx)
	if err != nil {
		return nil, err
	}
	v, err := src.Version(ctx)
	if err != nil {
		return nil, err
	}
	return corpus.Build(docs, corpus.WithVersion(v))
}

func loadEngine(c *cli.Context) (*searchuc.Service, error) {
	cp, err := loadCorpus(c)
	if err != nil {
		return nil, err
	}
	engine := searchuc.New(weights.Default(), searchuc.WithLogger(loggerFrom(c)))
	engine.Replace(cp)
	return engine, nil
}

func queryArg(c *cli.Context) (string, error) {
	if c.NArg() == 0 {
		return "", errors.New("query argument is required")
	}
	return strings.Join(c.Args().Slice(), " "), nil
}

func searchCommand(c *cli.Context) error {
	q, err := queryArg(c)
	if err != nil {
		return err
	}
	engine, err := loadEngine(c)
	if err != nil {
		return err
	}

	var cats []category.Category
	for _, raw := range c.StringSlice("category") {
		cat, err := category.Parse(raw)
		if err != nil {
			return err
		}
		cats = append(cats, cat)
	}

	results := engine.Search(q, options.New(
		options.WithCategories(cats...),
		options.WithLimit(c.Int("limit")),
		options.WithContent(c.Bool("content")),
		options.WithFuzzy(!c.Bool("no-fuzzy")),
	))

	if c.Bool("json") {
		type hit struct {
			ID           string   `json:"id"`
			Title        string   `json:"title"`
			URL          string   `json:"url"`
			Score        float64  `json:"score"`
			MatchedTerms []string `json:"matched_terms"`
		}
		hits := make([]hit, len(results))
		for i := range results {
			doc := results[i].Document()
			hits[i] = hit{doc.ID(), doc.Title(), doc.URL(), results[i].Score(), results[i].MatchedTerms()}
		}
		enc := json.NewEncoder(c.App.Writer)
		enc.SetIndent("", "  ")
		return enc.Encode(hits)
	}

	if len(results) == 0 {
		fmt.Fprintln(c.App.Writer, "no results")
		if s := engine.Suggest(q, options.DefaultSuggestLimit); len(s) > 0 {
			fmt.Fprintf(c.App.Writer, "did you mean: %s\n", strings.Join(s, ", "))
		}
		return nil
	}

	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "SCORE\tID\tTITLE\tMATCHED")
	for i := range results {
		doc := results[i].Document()
		fmt.Fprintf(tw, "%g\t%s\t%s\t%s\n",
			results[i].Score(), doc.ID(), doc.Title(), strings.Join(results[i].MatchedTerms(), ","))
	}
	return tw.Flush()
}

func suggestCommand(c *cli.Context) error {
	q, err := queryArg(c)
	if err != nil {
		return err
	}
	engine, err := loadEngine(c)
	if err != nil {
		return err
	}

	for _, s := range engine.Suggest(q, c.Int("limit")) {
		fmt.Fprintln(c.App.Writer, s)
	}
	return nil
}

func categoryCommand(c *cli.Context) error {
	if c.NArg() != 1 {
		return errors.New("exactly one category argument is required")
	}
	cat, err := category.Parse(c.Args().First())
	if err != nil {
		return err
	}
	engine, err := loadEngine(c)
	if err != nil {
		return err
	}

	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "PRIORITY\tID\tTITLE\tURL")
	for _, doc := range engine.ByCategory(cat, c.Int("limit")) {
		fmt.Fprintf(tw, "%d\t%s\t%s\t%s\n", doc.Priority(), doc.ID(), doc.Title(), doc.URL())
	}
	return tw.Flush()
}

func validateCommand(c *cli.Context) error {
	cp, err := loadCorpus(c)
	if err != nil {
		return err
	}

	counts := cp.CategoryCounts()
	tw := tabwriter.NewWriter(c.App.Writer, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "CATEGORY\tDOCUMENTS")
	for _, cat := range category.All() {
		if n := counts[cat]; n > 0 {
			fmt.Fprintf(tw, "%s\t%d\n", cat, n)
		}
	}
	if err := tw.Flush(); err != nil {
		return err
	}
	fmt.Fprintf(c.App.Writer, "ok: %d documents, version %s\n", cp.Len(), cp.Version())
	return nil
}

func seedCommand(c *cli.Context) error {
	addrs := c.StringSlice("redis-addr")
	sqlitePath := c.String("sqlite")
	if len(addrs) == 0 && sqlitePath == "" {
		return errors.New("at least one of --redis-addr or --sqlite is required")
	}

	cp, err := loadCorpus(c)
	if err != nil {
		return err
	}
	docs := make([]document.Document, 0, cp.Len())
	for _, d := range cp.All() {
		docs = append(docs, d)
	}

	base := c.Context
	if base == nil {
		base = context.Background()
	}
	ctx, cancel := context.WithTimeout(base, c.Duration("timeout"))
	defer cancel()
	logger := loggerFrom(c)

	if len(addrs) > 0 {
		store, err := dbRedis.NewStore(dbRedis.Config{Addrs: addrs, Password: c.String("redis-password")})
		if err != nil {
			return err
		}
		defer store.Close()
		if err := store.WaitForReady(ctx, c.Duration("timeout")); err != nil {
			return err
		}

		src := redissource.New(store,
			redissource.WithKeyPrefix(c.String("key-prefix")),
			redissource.WithVersionKey(c.String("version-key")),
			redissource.WithLogger(logger),
		)
		v, err := src.Save(ctx, docs)
		if err != nil {
			return fmt.Errorf("seed redis: %w", err)
		}
		fmt.Fprintf(c.App.Writer, "redis: %d documents, version %d\n", len(docs), v)
	}

	if sqlitePath != "" {
		src, err := sqlsource.Open("sqlite3", sqlitePath, c.String("table"), logger)
		if err != nil {
			return err
		}
		defer func() { _ = src.Close() }()
		if err := src.EnsureSchema(ctx); err != nil {
			return err
		}
		rev, err := src.Save(ctx, docs)
		if err != nil {
			return fmt.Errorf("seed sqlite: %w", err)
		}
		fmt.Fprintf(c.App.Writer, "sqlite: %d documents, revision %d\n", len(docs), rev)
	}
	return nil
}
