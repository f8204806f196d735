package chi

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// SearchParams are the query parameters of GET /search.
type SearchParams struct {
	Q        *string   `form:"q,omitempty"`
	Limit    *int      `form:"limit,omitempty"`
	Category *[]string `form:"category,omitempty"`
	Content  *bool     `form:"content,omitempty"`
	Fuzzy    *bool     `form:"fuzzy,omitempty"`
}

// SuggestParams are the query parameters of GET /suggest.
type SuggestParams struct {
	Q     *string `form:"q,omitempty"`
	Limit *int    `form:"limit,omitempty"`
}

// ListByCategoryParams are the query parameters of GET /categories/{category}.
type ListByCategoryParams struct {
	Limit *int `form:"limit,omitempty"`
}

// ServerInterface is the set of HTTP operations.
type ServerInterface interface {
	// GET /search
	Search(w http.ResponseWriter, r *http.Request, params SearchParams)
	// GET /suggest
	Suggest(w http.ResponseWriter, r *http.Request, params SuggestParams)
	// GET /categories
	ListCategories(w http.ResponseWriter, r *http.Request)
	// GET /categories/{category}
	ListByCategory(w http.ResponseWriter, r *http.Request, category string, params ListByCategoryParams)
	// GET /documents/{id}
	GetDocument(w http.ResponseWriter, r *http.Request, id string)
	// POST /admin/corpus/rebuild
	RebuildCorpus(w http.ResponseWriter, r *http.Request)
	// GET /admin/corpus
	GetCorpus(w http.ResponseWriter, r *http.Request)
	// GET /health
	HealthCheck(w http.ResponseWriter, r *http.Request)
	// GET /metrics
	Metrics(w http.ResponseWriter, r *http.Request)
}

// InvalidParamFormatError reports a parameter that failed to bind.
type InvalidParamFormatError struct {
	ParamName string
	Err       error
}

func (e *InvalidParamFormatError) Error() string {
	return fmt.Sprintf("invalid format for parameter %s: %s", e.ParamName, e.Err.Error())
}

func (e *InvalidParamFormatError) Unwrap() error { return e.Err }

// ChiServerOptions configures HandlerWithOptions.
type ChiServerOptions struct {
	BaseRouter chi.Router
	// AdminMiddlewares wrap the /admin routes only.
	AdminMiddlewares []func(http.Handler) http.Handler
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// serverInterfaceWrapper binds request parameters before calling the handler.
type serverInterfaceWrapper struct {
	handler          ServerInterface
	errorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

func (siw *serverInterfaceWrapper) search(w http.ResponseWriter, r *http.Request) {
	var params SearchParams
	q := r.URL.Query()

	if err := runtime.BindQueryParameter("form", true, false, "q", q, &params.Q); err != nil {
		siw.errorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "q", Err: err})
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", q, &params.Limit); err != nil {
		siw.errorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "limit", Err: err})
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "category", q, &params.Category); err != nil {
		siw.errorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "category", Err: err})
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "content", q, &params.Content); err != nil {
		siw.errorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "content", Err: err})
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "fuzzy", q, &params.Fuzzy); err != nil {
		siw.errorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "fuzzy", Err: err})
		return
	}

	siw.handler.Search(w, r, params)
}

func (siw *serverInterfaceWrapper) suggest(w http.ResponseWriter, r *http.Request) {
	var params SuggestParams
	q := r.URL.Query()

	if err := runtime.BindQueryParameter("form", true, false, "q", q, &params.Q); err != nil {
		siw.errorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "q", Err: err})
		return
	}
	if err := runtime.BindQueryParameter("form", true, false, "limit", q, &params.Limit); err != nil {
		siw.errorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "limit", Err: err})
		return
	}

	siw.handler.Suggest(w, r, params)
}

func (siw *serverInterfaceWrapper) listByCategory(w http.ResponseWriter, r *http.Request) {
	var category string
	err := runtime.BindStyledParameterWithOptions("simple", "category", chi.URLParam(r, "category"), &category,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.errorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "category", Err: err})
		return
	}

	var params ListByCategoryParams
	if err := runtime.BindQueryParameter("form", true, false, "limit", r.URL.Query(), &params.Limit); err != nil {
		siw.errorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "limit", Err: err})
		return
	}

	siw.handler.ListByCategory(w, r, category, params)
}

func (siw *serverInterfaceWrapper) getDocument(w http.ResponseWriter, r *http.Request) {
	var id string
	err := runtime.BindStyledParameterWithOptions("simple", "id", chi.URLParam(r, "id"), &id,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.errorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "id", Err: err})
		return
	}

	siw.handler.GetDocument(w, r, id)
}

// HandlerWithOptions mounts every operation of si on the base router.
func HandlerWithOptions(si ServerInterface, options ChiServerOptions) http.Handler {
	r := options.BaseRouter
	if r == nil {
		r = chi.NewRouter()
	}
	if options.ErrorHandlerFunc == nil {
		options.ErrorHandlerFunc = func(w http.ResponseWriter, _ *http.Request, err error) {
			http.Error(w, err.Error(), http.StatusBadRequest)
		}
	}
	wrapper := &serverInterfaceWrapper{
		handler:          si,
		errorHandlerFunc: options.ErrorHandlerFunc,
	}

	r.Get("/search", wrapper.search)
	r.Get("/suggest", wrapper.suggest)
	r.Get("/categories", si.ListCategories)
	r.Get("/categories/{category}", wrapper.listByCategory)
	r.Get("/documents/{id}", wrapper.getDocument)
	r.Get("/health", si.HealthCheck)
	r.Get("/metrics", si.Metrics)
	r.Route("/admin", func(ar chi.Router) {
		ar.Use(options.AdminMiddlewares...)
		ar.Post("/corpus/rebuild", si.RebuildCorpus)
		ar.Get("/corpus", si.GetCorpus)
	})

	return r
}
