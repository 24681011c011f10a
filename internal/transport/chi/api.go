package chi

import (
	"fmt"
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/oapi-codegen/runtime"
)

// SearchParams are the query parameters of the search endpoint.
type SearchParams struct {
	Size *int `form:"size,omitempty" json:"size,omitempty"`
}

// WriteParams are the query parameters of document write endpoints.
type WriteParams struct {
	// Refresh persists the index snapshot before responding.
	Refresh *bool `form:"refresh,omitempty" json:"refresh,omitempty"`
}

// ServerInterface lists every HTTP operation.
type ServerInterface interface {
	// GET /
	Root(w http.ResponseWriter, r *http.Request)
	// GET /health
	HealthCheck(w http.ResponseWriter, r *http.Request)
	// GET /metrics
	Metrics(w http.ResponseWriter, r *http.Request)
	// POST /_bulk
	Bulk(w http.ResponseWriter, r *http.Request)
	// GET /_alias/{alias}
	FindAlias(w http.ResponseWriter, r *http.Request, alias string)

	// GET|POST /{index}/_count
	Count(w http.ResponseWriter, r *http.Request, index string)
	// GET|POST /{index}/_search
	Search(w http.ResponseWriter, r *http.Request, index string, params SearchParams)
	// POST /{index}/_refresh
	Refresh(w http.ResponseWriter, r *http.Request, index string)

	// GET /{index}/_alias/{alias}
	GetAlias(w http.ResponseWriter, r *http.Request, index, alias string)
	// PUT /{index}/_alias/{alias}
	PutAlias(w http.ResponseWriter, r *http.Request, index, alias string)
	// DELETE /{index}/_alias/{alias}
	DeleteAlias(w http.ResponseWriter, r *http.Request, index, alias string)

	// GET /{index}/_mapping/{mapping}
	GetMapping(w http.ResponseWriter, r *http.Request, index, mapping string)
	// PUT /{index}/_mapping/{mapping}
	PutMapping(w http.ResponseWriter, r *http.Request, index, mapping string)
	// DELETE /{index}/_mapping/{mapping}
	DeleteMapping(w http.ResponseWriter, r *http.Request, index, mapping string)

	// GET /{index}
	GetIndex(w http.ResponseWriter, r *http.Request, index string)
	// PUT /{index}
	CreateIndex(w http.ResponseWriter, r *http.Request, index string)
	// DELETE /{index}
	DeleteIndex(w http.ResponseWriter, r *http.Request, index string)

	// POST /{index}/{mapping}
	CreateDocument(w http.ResponseWriter, r *http.Request, index, mapping string, params WriteParams)
	// GET /{index}/{mapping}/{doc}
	GetDocument(w http.ResponseWriter, r *http.Request, index, mapping, doc string)
	// PUT /{index}/{mapping}/{doc}
	PutDocument(w http.ResponseWriter, r *http.Request, index, mapping, doc string, params WriteParams)
	// DELETE /{index}/{mapping}/{doc}
	DeleteDocument(w http.ResponseWriter, r *http.Request, index, mapping, doc string, params WriteParams)
}

// InvalidParamFormatError reports a path or query parameter that failed to bind.
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
	BaseRouter       chi.Router
	Middlewares      []func(http.Handler) http.Handler
	ErrorHandlerFunc func(w http.ResponseWriter, r *http.Request, err error)
}

// ServerInterfaceWrapper binds request parameters and dispatches to the handler.
type ServerInterfaceWrapper struct {
	Handler            ServerInterface
	HandlerMiddlewares []func(http.Handler) http.Handler
	ErrorHandlerFunc   func(w http.ResponseWriter, r *http.Request, err error)
}

func (siw *ServerInterfaceWrapper) serve(w http.ResponseWriter, r *http.Request, h http.HandlerFunc) {
	var handler http.Handler = h
	for _, middleware := range siw.HandlerMiddlewares {
		handler = middleware(handler)
	}
	handler.ServeHTTP(w, r)
}

func (siw *ServerInterfaceWrapper) pathParam(w http.ResponseWriter, r *http.Request, name string, dest *string) bool {
	err := runtime.BindStyledParameterWithOptions("simple", name, chi.URLParam(r, name), dest,
		runtime.BindStyledParameterOptions{ParamLocation: runtime.ParamLocationPath, Explode: false, Required: true})
	if err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: name, Err: err})
		return false
	}
	return true
}

func (siw *ServerInterfaceWrapper) writeParams(w http.ResponseWriter, r *http.Request) (WriteParams, bool) {
	var params WriteParams
	if err := runtime.BindQueryParameter("form", true, false, "refresh", r.URL.Query(), &params.Refresh); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "refresh", Err: err})
		return params, false
	}
	return params, true
}

// Root operation middleware
func (siw *ServerInterfaceWrapper) Root(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.Root)
}

// HealthCheck operation middleware
func (siw *ServerInterfaceWrapper) HealthCheck(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.HealthCheck)
}

// Metrics operation middleware
func (siw *ServerInterfaceWrapper) Metrics(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.Metrics)
}

// Bulk operation middleware
func (siw *ServerInterfaceWrapper) Bulk(w http.ResponseWriter, r *http.Request) {
	siw.serve(w, r, siw.Handler.Bulk)
}

// FindAlias operation middleware
func (siw *ServerInterfaceWrapper) FindAlias(w http.ResponseWriter, r *http.Request) {
	var alias string
	if !siw.pathParam(w, r, "alias", &alias) {
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.FindAlias(w, r, alias)
	})
}

func (siw *ServerInterfaceWrapper) withIndex(fn func(w http.ResponseWriter, r *http.Request, index string)) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var index string
		if !siw.pathParam(w, r, "index", &index) {
			return
		}
		siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
			fn(w, r, index)
		})
	}
}

func (siw *ServerInterfaceWrapper) withIndexAnd(
	name string, fn func(w http.ResponseWriter, r *http.Request, index, second string),
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var index, second string
		if !siw.pathParam(w, r, "index", &index) || !siw.pathParam(w, r, name, &second) {
			return
		}
		siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
			fn(w, r, index, second)
		})
	}
}

// Search operation middleware
func (siw *ServerInterfaceWrapper) Search(w http.ResponseWriter, r *http.Request) {
	var index string
	if !siw.pathParam(w, r, "index", &index) {
		return
	}
	var params SearchParams
	if err := runtime.BindQueryParameter("form", true, false, "size", r.URL.Query(), &params.Size); err != nil {
		siw.ErrorHandlerFunc(w, r, &InvalidParamFormatError{ParamName: "size", Err: err})
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.Search(w, r, index, params)
	})
}

// CreateDocument operation middleware
func (siw *ServerInterfaceWrapper) CreateDocument(w http.ResponseWriter, r *http.Request) {
	var index, mapping string
	if !siw.pathParam(w, r, "index", &index) || !siw.pathParam(w, r, "mapping", &mapping) {
		return
	}
	params, ok := siw.writeParams(w, r)
	if !ok {
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.CreateDocument(w, r, index, mapping, params)
	})
}

// GetDocument operation middleware
func (siw *ServerInterfaceWrapper) GetDocument(w http.ResponseWriter, r *http.Request) {
	var index, mapping, doc string
	if !siw.pathParam(w, r, "index", &index) || !siw.pathParam(w, r, "mapping", &mapping) ||
		!siw.pathParam(w, r, "doc", &doc) {
		return
	}
	siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
		siw.Handler.GetDocument(w, r, index, mapping, doc)
	})
}

func (siw *ServerInterfaceWrapper) documentWrite(
	fn func(w http.ResponseWriter, r *http.Request, index, mapping, doc string, params WriteParams),
) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var index, mapping, doc string
		if !siw.pathParam(w, r, "index", &index) || !siw.pathParam(w, r, "mapping", &mapping) ||
			!siw.pathParam(w, r, "doc", &doc) {
			return
		}
		params, ok := siw.writeParams(w, r)
		if !ok {
			return
		}
		siw.serve(w, r, func(w http.ResponseWriter, r *http.Request) {
			fn(w, r, index, mapping, doc, params)
		})
	}
}

// Handler creates http.Handler with routing matching the HTTP API.
func Handler(si ServerInterface) http.Handler {
	return HandlerWithOptions(si, ChiServerOptions{})
}

// HandlerWithOptions creates http.Handler with additional options.
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
	wrapper := ServerInterfaceWrapper{
		Handler:            si,
		HandlerMiddlewares: options.Middlewares,
		ErrorHandlerFunc:   options.ErrorHandlerFunc,
	}

	r.Group(func(r chi.Router) {
		r.Get("/", wrapper.Root)
		r.Get("/health", wrapper.HealthCheck)
		r.Get("/metrics", wrapper.Metrics)
		r.Post("/_bulk", wrapper.Bulk)
		r.Get("/_alias/{alias}", wrapper.FindAlias)

		r.Get("/{index}/_count", wrapper.withIndex(si.Count))
		r.Post("/{index}/_count", wrapper.withIndex(si.Count))
		r.Get("/{index}/_search", wrapper.Search)
		r.Post("/{index}/_search", wrapper.Search)
		r.Post("/{index}/_refresh", wrapper.withIndex(si.Refresh))

		r.Get("/{index}/_alias/{alias}", wrapper.withIndexAnd("alias", si.GetAlias))
		r.Put("/{index}/_alias/{alias}", wrapper.withIndexAnd("alias", si.PutAlias))
		r.Delete("/{index}/_alias/{alias}", wrapper.withIndexAnd("alias", si.DeleteAlias))

		r.Get("/{index}/_mapping/{mapping}", wrapper.withIndexAnd("mapping", si.GetMapping))
		r.Put("/{index}/_mapping/{mapping}", wrapper.withIndexAnd("mapping", si.PutMapping))
		r.Delete("/{index}/_mapping/{mapping}", wrapper.withIndexAnd("mapping", si.DeleteMapping))

		r.Get("/{index}", wrapper.withIndex(si.GetIndex))
		r.Put("/{index}", wrapper.withIndex(si.CreateIndex))
		r.Delete("/{index}", wrapper.withIndex(si.DeleteIndex))

		r.Post("/{index}/{mapping}", wrapper.CreateDocument)
		r.Get("/{index}/{mapping}/{doc}", wrapper.GetDocument)
		r.Put("/{index}/{mapping}/{doc}", wrapper.documentWrite(si.PutDocument))
		r.Delete("/{index}/{mapping}/{doc}", wrapper.documentWrite(si.DeleteDocument))
	})

	return r
}
