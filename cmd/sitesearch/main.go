package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	chiMiddleware "github.com/go-chi/chi/v5/middleware"
	"go.uber.org/zap"

	"github.com/kailas-cloud/sitesearch/internal/config"
	dbRedis "github.com/kailas-cloud/sitesearch/internal/db/redis"
	"github.com/kailas-cloud/sitesearch/internal/domain"
	logpkg "github.com/kailas-cloud/sitesearch/internal/logger"
	"github.com/kailas-cloud/sitesearch/internal/metrics"
	"github.com/kailas-cloud/sitesearch/internal/repository/content/filesource"
	"github.com/kailas-cloud/sitesearch/internal/repository/content/redissource"
	"github.com/kailas-cloud/sitesearch/internal/repository/content/sqlsource"
	chiTransport "github.com/kailas-cloud/sitesearch/internal/transport/chi"
	corpusuc "github.com/kailas-cloud/sitesearch/internal/usecase/corpus"
	healthuc "github.com/kailas-cloud/sitesearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/sitesearch/internal/usecase/search"
	"github.com/kailas-cloud/sitesearch/internal/version"
)

func main() {
	// Load configuration based on ENV
	env := config.GetEnv()

	cfg, err := config.Load(env)
	if err != nil {
		panic("failed to load config: " + err.Error())
	}

	logger, err := logpkg.NewLogger(env, cfg.Logging.Level)
	if err != nil {
		panic("failed to create logger: " + err.Error())
	}
	defer func() { _ = logger.Sync() }()

	logger.Info("Starting sitesearch API server",
		zap.String("version", version.Version),
		zap.String("commit", version.Commit),
		zap.String("env", env),
		zap.Int("http_port", cfg.HTTP.Port),
		zap.Int("sources", len(cfg.Sources)),
	)

	// Register search metrics explicitly (no init())
	metrics.RegisterSearchMetrics()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sources, err := buildSources(ctx, cfg.Sources, logger)
	defer sources.close()
	if err != nil {
		logger.Fatal("Failed to create content sources", zap.Error(err))
	}

	engine := searchuc.New(cfg.Search.Weights(),
		searchuc.WithObserver(metrics.SearchObserver{}),
		searchuc.WithLogger(logger),
	)

	corpusSvc, err := corpusuc.New(sources.list, engine,
		corpusuc.WithPoolSize(cfg.Loader.PoolSize),
		corpusuc.WithLogger(logger),
		corpusuc.WithRecorder(metrics.CorpusRecorder{}),
	)
	if err != nil {
		logger.Fatal("Failed to create corpus service", zap.Error(err))
	}
	defer corpusSvc.Release()

	// A failed first build keeps the API up in 503 until the refresher succeeds.
	if _, err := corpusSvc.Rebuild(ctx); err != nil {
		logger.Error("Initial corpus build failed", zap.Error(err))
	}

	// Pass nil interface (not typed nil pointer!) if no content store is configured.
	var pinger healthuc.StorePinger
	if sources.store != nil {
		pinger = sources.store
	}
	healthSvc := healthuc.New(engine, pinger)

	server := chiTransport.NewServer(engine, corpusSvc, healthSvc, chiTransport.Limits{
		DefaultLimit: cfg.Search.DefaultLimit,
		MaxLimit:     cfg.Search.MaxLimit,
		SuggestLimit: cfg.Search.SuggestLimit,
	}, logger)

	r := chi.NewRouter()
	r.Use(jsonRecoverer(logger))
	r.Use(chiMiddleware.RequestID)
	r.Use(wideEventMiddleware(logger))
	r.Use(metrics.Middleware())
	chiTransport.HandlerWithOptions(server, chiTransport.ChiServerOptions{
		BaseRouter:       r,
		AdminMiddlewares: []func(http.Handler) http.Handler{chiTransport.BearerAuthMiddleware(cfg.Auth.APIKeys)},
		ErrorHandlerFunc: chiTransport.ParamErrorHandler,
	})

	if cfg.Refresh.IntervalSec > 0 {
		go corpusSvc.Run(ctx, time.Duration(cfg.Refresh.IntervalSec)*time.Second)
	}

	addr := fmt.Sprintf(":%d", cfg.HTTP.Port)
	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  time.Duration(cfg.HTTP.ReadTimeoutSec) * time.Second,
		WriteTimeout: time.Duration(cfg.HTTP.WriteTimeoutSec) * time.Second,
	}

	go func() {
		logger.Info("Starting HTTP server", zap.String("addr", addr))
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			logger.Fatal("HTTP server error", zap.Error(err))
		}
	}()

	<-ctx.Done()
	logger.Info("Received shutdown signal")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), time.Duration(cfg.HTTP.ShutdownSec)*time.Second)
	defer cancel()

	if err := srv.Shutdown(shutdownCtx); err != nil {
		logger.Error("Error during shutdown", zap.Error(err))
	}

	logger.Info("Server stopped gracefully")
}

// contentSources holds the built sources and the resources they own.
type contentSources struct {
	list    []corpusuc.Source
	store   *dbRedis.Store // first redis store, pinged by health
	closers []func()
}

func (c *contentSources) close() {
	for i := len(c.closers) - 1; i >= 0; i-- {
		c.closers[i]()
	}
}

// buildSources creates content sources in configuration order.
func buildSources(ctx context.Context, cfgs []config.SourceConfig, logger *zap.Logger) (*contentSources, error) {
	out := &contentSources{}
	for i, sc := range cfgs {
		switch sc.Type {
		case config.SourceFile:
			out.list = append(out.list, filesource.New(sc.Path, logger))

		case config.SourceRedis:
			store, err := dbRedis.NewStore(dbRedis.Config{
				Addrs:    sc.Addrs,
				Username: sc.Username,
				Password: sc.Password,
				DB:       sc.DB,
			})
			if err != nil {
				return out, fmt.Errorf("sources[%d]: %w", i, err)
			}
			out.closers = append(out.closers, store.Close)
			if err := store.WaitForReady(ctx, time.Duration(sc.ReadinessTimeout)*time.Second); err != nil {
				return out, fmt.Errorf("sources[%d]: %w", i, err)
			}
			if out.store == nil {
				out.store = store
			}
			out.list = append(out.list, redissource.New(store,
				redissource.WithKeyPrefix(sc.KeyPrefix),
				redissource.WithVersionKey(sc.VersionKey),
				redissource.WithLogger(logger),
			))
			logger.Info("Connected to content store", zap.Strings("addrs", sc.Addrs))

		case config.SourceSQL:
			src, err := sqlsource.Open(sc.Driver, sc.DSN, sc.Table, logger)
			if err != nil {
				return out, fmt.Errorf("sources[%d]: %w", i, err)
			}
			out.closers = append(out.closers, func() { _ = src.Close() })
			out.list = append(out.list, src)

		default:
			return out, fmt.Errorf("sources[%d]: %w: %q", i, domain.ErrUnknownSource, sc.Type)
		}
	}
	return out, nil
}

// jsonRecoverer is a recovery middleware that returns JSON instead of a plain text stacktrace.
func jsonRecoverer(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rvr := recover(); rvr != nil {
					logger.Error("panic recovered",
						zap.Any("panic", rvr),
						zap.Stack("stacktrace"),
					)
					w.Header().Set("Content-Type", "application/json")
					w.WriteHeader(http.StatusInternalServerError)
					_ = json.NewEncoder(w).Encode(chiTransport.ErrorResponse{
						Code:    chiTransport.ErrorCodeInternalError,
						Message: "internal error",
					})
				}
			}()
			next.ServeHTTP(w, r)
		})
	}
}

// wideEventMiddleware emits a canonical log line per request and propagates X-Request-ID.
func wideEventMiddleware(logger *zap.Logger) func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			// chi.middleware.RequestID already placed request_id in context
			requestID := chiMiddleware.GetReqID(r.Context())

			if requestID != "" {
				w.Header().Set("X-Request-ID", requestID)
			}

			// Per-request logger with request_id
			reqLogger := logger.With(zap.String("request_id", requestID))
			ctx := logpkg.ContextWithLogger(r.Context(), reqLogger)

			ww := chiMiddleware.NewWrapResponseWriter(w, r.ProtoMajor)
			next.ServeHTTP(ww, r.WithContext(ctx))

			// Canonical log line, one per request
			reqLogger.Info("http_request",
				zap.String("method", r.Method),
				zap.String("path", r.URL.Path),
				zap.String("query", r.URL.Query().Get("q")),
				zap.Int("status", ww.Status()),
				zap.Duration("latency", time.Since(start)),
				zap.String("ip", r.RemoteAddr),
				zap.String("user_agent", r.UserAgent()),
				zap.Int("response_bytes", ww.BytesWritten()),
			)
		})
	}
}
