package chi

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"github.com/kailas-cloud/sitesearch/internal/domain"
	"github.com/kailas-cloud/sitesearch/internal/domain/category"
	"github.com/kailas-cloud/sitesearch/internal/domain/search/options"
	logpkg "github.com/kailas-cloud/sitesearch/internal/logger"
	corpusuc "github.com/kailas-cloud/sitesearch/internal/usecase/corpus"
	healthuc "github.com/kailas-cloud/sitesearch/internal/usecase/health"
	searchuc "github.com/kailas-cloud/sitesearch/internal/usecase/search"
	"github.com/kailas-cloud/sitesearch/internal/version"
)

// errorHandler tries to handle a domain error. Returns true if handled.
type errorHandler func(w http.ResponseWriter, err error, msg string) bool

// CorpusManager rebuilds and describes the installed corpus.
type CorpusManager interface {
	Rebuild(ctx context.Context) (corpusuc.Stats, error)
	Current() (corpusuc.Stats, bool)
}

// Limits bound the sizes accepted from clients.
type Limits struct {
	DefaultLimit int
	MaxLimit     int
	SuggestLimit int
}

func (l Limits) withDefaults() Limits {
	if l.DefaultLimit <= 0 {
		l.DefaultLimit = options.DefaultLimit
	}
	if l.MaxLimit <= 0 {
		l.MaxLimit = options.MaxLimit
	}
	if l.SuggestLimit <= 0 {
		l.SuggestLimit = options.DefaultSuggestLimit
	}
	return l
}

// Server implements ServerInterface over the search engine.
type Server struct {
	engine        *searchuc.Service
	corpus        CorpusManager
	health        *healthuc.Service
	limits        Limits
	logger        *zap.Logger
	errorHandlers []errorHandler
}

var _ ServerInterface = (*Server)(nil)

// NewServer creates an HTTP API server.
func NewServer(
	engine *searchuc.Service,
	corpus CorpusManager,
	health *healthuc.Service,
	limits Limits,
	logger *zap.Logger,
) *Server {
	if logger == nil {
		logger = zap.NewNop()
	}
	s := &Server{
		engine: engine,
		corpus: corpus,
		health: health,
		limits: limits.withDefaults(),
		logger: logger,
	}
	s.errorHandlers = []errorHandler{
		sentinelHandler(domain.ErrNotInitialized, http.StatusServiceUnavailable, ErrorCodeCorpusNotReady),
		sentinelHandler(domain.ErrNotFound, http.StatusNotFound, ErrorCodeDocumentNotFound),
		sentinelHandler(domain.ErrSourceFailed, http.StatusBadGateway, ErrorCodeSourceFailed),
		sentinelHandler(domain.ErrDuplicateID, http.StatusUnprocessableEntity, ErrorCodeInvalidCorpus),
		sentinelHandler(domain.ErrInvalidDocument, http.StatusUnprocessableEntity, ErrorCodeInvalidCorpus),
		sentinelHandler(domain.ErrInvalidOptions, http.StatusBadRequest, ErrorCodeValidationFailed),
	}
	return s
}

// Search handles GET /search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request, params SearchParams) {
	if !s.ready(w) {
		return
	}

	q, ok := bindQuery(w, params.Q)
	if !ok {
		return
	}
	limit, ok := s.bindLimit(w, params.Limit, s.limits.DefaultLimit)
	if !ok {
		return
	}

	var cats []category.Category
	requested := 0
	if params.Category != nil {
		for _, raw := range *params.Category {
			requested++
			if c, err := category.Parse(raw); err == nil {
				cats = append(cats, c)
			}
		}
	}

	resp := SearchResponse{Items: []SearchResultItem{}, Limit: limit}

	// a filter made only of unknown categories matches nothing
	if requested == 0 || len(cats) > 0 {
		opts := options.New(
			options.WithCategories(cats...),
			options.WithLimit(limit),
			options.WithContent(params.Content != nil && *params.Content),
			options.WithFuzzy(params.Fuzzy == nil || *params.Fuzzy),
		)

		minLen := s.engine.Weights().MinTokenLength
		results := s.engine.Search(q, opts)
		resp.Items = make([]SearchResultItem, len(results))
		for i := range results {
			doc := results[i].Document()
			resp.Items[i] = searchResultToResponse(&results[i], searchuc.Highlight(doc.Title(), q, minLen))
		}
	}
	resp.Total = len(resp.Items)

	if resp.Total == 0 && searchuc.Normalize(q) != "" {
		resp.Suggestions = s.engine.Suggest(q, s.limits.SuggestLimit)
	}

	logpkg.FromContext(r.Context()).Debug("search",
		zap.String("query", q),
		zap.Int("results", resp.Total),
	)
	writeJSON(w, http.StatusOK, resp)
}

// Suggest handles GET /suggest.
func (s *Server) Suggest(w http.ResponseWriter, _ *http.Request, params SuggestParams) {
	if !s.ready(w) {
		return
	}

	q, ok := bindQuery(w, params.Q)
	if !ok {
		return
	}
	limit, ok := s.bindLimit(w, params.Limit, s.limits.SuggestLimit)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, SuggestResponse{Items: s.engine.Suggest(q, limit)})
}

// ListCategories handles GET /categories.
func (s *Server) ListCategories(w http.ResponseWriter, _ *http.Request) {
	snap, ok := s.engine.Snapshot()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, ErrorCodeCorpusNotReady, domain.ErrNotInitialized.Error())
		return
	}

	counts := snap.CategoryCounts()
	all := category.All()
	items := make([]CategoryCount, 0, len(all))
	for _, c := range all {
		items = append(items, CategoryCount{Category: c.String(), Count: counts[c]})
	}

	writeJSON(w, http.StatusOK, CategoryListResponse{Items: items, Total: snap.Len()})
}

// ListByCategory handles GET /categories/{category}.
func (s *Server) ListByCategory(
	w http.ResponseWriter,
	_ *http.Request,
	category string,
	params ListByCategoryParams,
) {
	if !s.ready(w) {
		return
	}

	limit, ok := s.bindLimit(w, params.Limit, s.limits.DefaultLimit)
	if !ok {
		return
	}

	writeJSON(w, http.StatusOK, documentsToResponse(s.engine.ByCategoryName(category, limit)))
}

// GetDocument handles GET /documents/{id}.
func (s *Server) GetDocument(w http.ResponseWriter, _ *http.Request, id string) {
	if !s.ready(w) {
		return
	}

	doc, ok := s.engine.Get(id)
	if !ok {
		s.handleDomainError(w, fmt.Errorf("document %q: %w", id, domain.ErrNotFound))
		return
	}

	writeJSON(w, http.StatusOK, documentToResponse(&doc))
}

// RebuildCorpus handles POST /admin/corpus/rebuild.
func (s *Server) RebuildCorpus(w http.ResponseWriter, r *http.Request) {
	stats, err := s.corpus.Rebuild(r.Context())
	if err != nil {
		s.handleDomainError(w, err)
		return
	}

	logpkg.FromContext(r.Context()).Info("Corpus rebuilt via admin API",
		zap.Int("documents", stats.Documents),
		zap.String("version", stats.Version),
	)
	writeJSON(w, http.StatusOK, statsToResponse(stats))
}

// GetCorpus handles GET /admin/corpus.
func (s *Server) GetCorpus(w http.ResponseWriter, _ *http.Request) {
	stats, ok := s.corpus.Current()
	if !ok {
		writeError(w, http.StatusServiceUnavailable, ErrorCodeCorpusNotReady, domain.ErrNotInitialized.Error())
		return
	}

	writeJSON(w, http.StatusOK, statsToResponse(stats))
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	// degraded still serves the last good corpus
	httpStatus := http.StatusOK
	if report.Status == healthuc.Unhealthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:  string(report.Status),
		Version: version.Version,
		Checks:  checks,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// ready writes 503 and returns false while no corpus is installed.
func (s *Server) ready(w http.ResponseWriter) bool {
	if s.engine.Ready() {
		return true
	}
	s.handleDomainError(w, domain.ErrNotInitialized)
	return false
}

func (s *Server) bindLimit(w http.ResponseWriter, p *int, def int) (int, bool) {
	if p == nil {
		return def, true
	}
	if *p < 1 || *p > s.limits.MaxLimit {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed,
			fmt.Sprintf("limit must be between 1 and %d", s.limits.MaxLimit))
		return 0, false
	}
	return *p, true
}

// bindQuery rejects queries longer than options.MaxQueryLength bytes.
func bindQuery(w http.ResponseWriter, p *string) (string, bool) {
	q := deref(p)
	if len(q) > options.MaxQueryLength {
		writeError(w, http.StatusBadRequest, ErrorCodeValidationFailed,
			fmt.Sprintf("q must be at most %d bytes", options.MaxQueryLength))
		return "", false
	}
	return q, true
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

func writeError(w http.ResponseWriter, status int, code ErrorCode, message string) {
	writeJSON(w, status, ErrorResponse{
		Code:    code,
		Message: message,
	})
}

// ParamErrorHandler answers parameter binding failures with 400.
func ParamErrorHandler(w http.ResponseWriter, _ *http.Request, err error) {
	var pe *InvalidParamFormatError
	if errors.As(err, &pe) {
		writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "invalid parameter "+pe.ParamName)
		return
	}
	writeError(w, http.StatusBadRequest, ErrorCodeBadRequest, "invalid request")
}

// safeDomainMessage returns a sentinel error message for the client without exposing internals.
func safeDomainMessage(err error) string {
	sentinels := []error{
		domain.ErrNotInitialized,
		domain.ErrNotFound,
		domain.ErrSourceFailed,
		domain.ErrDuplicateID,
		domain.ErrInvalidDocument,
		domain.ErrInvalidOptions,
	}
	for _, s := range sentinels {
		if errors.Is(err, s) {
			return s.Error()
		}
	}
	return "internal error"
}

// sentinelHandler returns an errorHandler that matches a single sentinel error.
func sentinelHandler(sentinel error, status int, code ErrorCode) errorHandler {
	return func(w http.ResponseWriter, err error, msg string) bool {
		if !errors.Is(err, sentinel) {
			return false
		}
		writeError(w, status, code, msg)
		return true
	}
}

func (s *Server) handleDomainError(w http.ResponseWriter, err error) {
	s.logger.Warn("domain error", zap.Error(err))
	msg := safeDomainMessage(err)
	for _, h := range s.errorHandlers {
		if h(w, err, msg) {
			return
		}
	}
	s.logger.Error("internal error", zap.Error(err))
	writeError(w, http.StatusInternalServerError, ErrorCodeInternalError, "internal error")
}

func deref(p *string) string {
	if p == nil {
		return ""
	}
	return *p
}
