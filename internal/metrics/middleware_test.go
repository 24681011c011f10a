package metrics

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus/testutil"
)

// textdexRoutes mirrors the patterns the HTTP API mounts.
var textdexRoutes = []struct {
	method  string
	pattern string
}{
	{"GET", "/"},
	{"GET", "/health"},
	{"POST", "/_bulk"},
	{"GET", "/_alias/{alias}"},
	{"POST", "/{index}/_count"},
	{"POST", "/{index}/_search"},
	{"POST", "/{index}/_refresh"},
	{"PUT", "/{index}/_alias/{alias}"},
	{"PUT", "/{index}/_mapping/{mapping}"},
	{"PUT", "/{index}"},
	{"POST", "/{index}/{mapping}"},
	{"GET", "/{index}/{mapping}/{doc}"},
}

func newTestRouter(m *httpMetrics) http.Handler {
	r := chi.NewRouter()
	r.Use(m.middleware())
	for _, rt := range textdexRoutes {
		r.Method(rt.method, rt.pattern, http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			if r.URL.Query().Get("fail") != "" {
				w.WriteHeader(http.StatusNotFound)
				return
			}
			_, _ = w.Write([]byte("{}"))
		}))
	}
	return r
}

func serve(h http.Handler, method, target string) {
	h.ServeHTTP(httptest.NewRecorder(), httptest.NewRequest(method, target, http.NoBody))
}

func TestMiddleware_LabelsByRoutePattern(t *testing.T) {
	tests := []struct {
		method, target string
		path, op       string
	}{
		{"GET", "/", "/", OpHTTPAdmin},
		{"GET", "/health", "/health", OpHTTPAdmin},
		{"POST", "/_bulk", "/_bulk", OpHTTPBulk},
		{"GET", "/_alias/news", "/_alias/{alias}", OpHTTPAlias},
		{"POST", "/articles/_count", "/{index}/_count", OpHTTPCount},
		{"POST", "/articles/_search", "/{index}/_search", OpHTTPSearch},
		{"POST", "/articles/_refresh", "/{index}/_refresh", OpHTTPRefresh},
		{"PUT", "/articles/_alias/news", "/{index}/_alias/{alias}", OpHTTPAlias},
		{"PUT", "/articles/_mapping/article", "/{index}/_mapping/{mapping}", OpHTTPMapping},
		{"PUT", "/articles", "/{index}", OpHTTPIndex},
		{"POST", "/articles/article", "/{index}/{mapping}", OpHTTPDocument},
		{"GET", "/articles/article/1", "/{index}/{mapping}/{doc}", OpHTTPDocument},
	}

	m := newHTTPMetrics()
	h := newTestRouter(m)
	for _, tt := range tests {
		t.Run(tt.target, func(t *testing.T) {
			serve(h, tt.method, tt.target)
			got := testutil.ToFloat64(m.total.WithLabelValues(tt.method, tt.path, tt.op, "200"))
			if got != 1 {
				t.Errorf("requests_total{%s %s %s} = %v, want 1", tt.method, tt.path, tt.op, got)
			}
		})
	}
	if n := testutil.CollectAndCount(m.duration); n != len(tests) {
		t.Errorf("duration series = %d, want %d", n, len(tests))
	}
}

func TestMiddleware_IndexNamesDoNotAddSeries(t *testing.T) {
	m := newHTTPMetrics()
	h := newTestRouter(m)

	for _, index := range []string{"articles", "logs-2024.01", "users", "a", "b"} {
		serve(h, "POST", "/"+index+"/_search")
		serve(h, "GET", "/"+index+"/doc/"+index+"-1")
	}

	if n := testutil.CollectAndCount(m.total); n != 2 {
		t.Errorf("series = %d, want 2 (one per route)", n)
	}
	if got := testutil.ToFloat64(m.total.WithLabelValues("POST", "/{index}/_search", OpHTTPSearch, "200")); got != 5 {
		t.Errorf("search requests = %v, want 5", got)
	}
}

func TestMiddleware_StatusAndUnmatched(t *testing.T) {
	m := newHTTPMetrics()
	h := newTestRouter(m)

	serve(h, "GET", "/articles/article/1?fail=1")
	serve(h, "GET", "/a/b/c/d")
	serve(h, "GET", "/x/y/z/w")

	if got := testutil.ToFloat64(m.total.WithLabelValues("GET", "/{index}/{mapping}/{doc}", OpHTTPDocument, "404")); got != 1 {
		t.Errorf("document 404s = %v, want 1", got)
	}
	if got := testutil.ToFloat64(m.total.WithLabelValues("GET", OpHTTPUnknown, OpHTTPUnknown, "404")); got != 2 {
		t.Errorf("unmatched requests = %v, want 2 in one series", got)
	}
}

func TestOperationOf(t *testing.T) {
	tests := []struct {
		path string
		want string
	}{
		{"unknown", OpHTTPUnknown},
		{"/metrics", OpHTTPAdmin},
		{"/{index}/_search", OpHTTPSearch},
		{"/_alias/{alias}", OpHTTPAlias},
		{"/{index}", OpHTTPIndex},
		{"/{index}/{mapping}/{doc}", OpHTTPDocument},
		{"/other/route", OpHTTPUnknown},
	}
	for _, tt := range tests {
		if got := operationOf(tt.path); got != tt.want {
			t.Errorf("operationOf(%q) = %q, want %q", tt.path, got, tt.want)
		}
	}
}

func TestMiddleware_DefaultCollectorsRegistered(t *testing.T) {
	r := chi.NewRouter()
	r.Use(Middleware())
	r.Get("/{index}/_count", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusOK)
	})
	serve(r, "GET", "/articles/_count")

	if got := testutil.ToFloat64(defaultHTTP.total.WithLabelValues("GET", "/{index}/_count", OpHTTPCount, "200")); got < 1 {
		t.Errorf("default requests_total = %v, want >= 1", got)
	}
}
