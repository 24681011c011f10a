package metrics

import (
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/prometheus/client_golang/prometheus"
)

// HTTP operations, derived from the matched route.
const (
	OpHTTPSearch   = "search"
	OpHTTPCount    = "count"
	OpHTTPBulk     = "bulk"
	OpHTTPRefresh  = "refresh"
	OpHTTPAlias    = "alias"
	OpHTTPMapping  = "mapping"
	OpHTTPIndex    = "index"
	OpHTTPDocument = "document"
	OpHTTPAdmin    = "admin"
	OpHTTPUnknown  = "unknown"
)

var httpLabels = []string{"method", "path", "operation", "status"}

type httpMetrics struct {
	duration *prometheus.HistogramVec
	total    *prometheus.CounterVec
}

func newHTTPMetrics() *httpMetrics {
	return &httpMetrics{
		duration: prometheus.NewHistogramVec(
			prometheus.HistogramOpts{
				Namespace: "textdex",
				Name:      "http_request_duration_seconds",
				Help:      "HTTP request duration in seconds",
				Buckets:   []float64{0.001, 0.005, 0.01, 0.025, 0.05, 0.1, 0.25, 0.5, 1, 2.5, 5, 10},
			},
			httpLabels,
		),
		total: prometheus.NewCounterVec(
			prometheus.CounterOpts{
				Namespace: "textdex",
				Name:      "http_requests_total",
				Help:      "Total number of HTTP requests",
			},
			httpLabels,
		),
	}
}

var defaultHTTP = newHTTPMetrics()

func init() {
	prometheus.MustRegister(defaultHTTP.duration)
	prometheus.MustRegister(defaultHTTP.total)
}

// Middleware records HTTP request duration and count. The path label is the
// chi route pattern, so index, type and document names never become label
// values; unmatched requests share the "unknown" path.
func Middleware() func(next http.Handler) http.Handler {
	return defaultHTTP.middleware()
}

func (m *httpMetrics) middleware() func(next http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			start := time.Now()

			ww := &statusWriter{ResponseWriter: w, status: http.StatusOK}
			next.ServeHTTP(ww, r)

			var pattern string
			if rctx := chi.RouteContext(r.Context()); rctx != nil {
				pattern = rctx.RoutePattern()
			}
			path := normalizePath(pattern)
			labels := []string{r.Method, path, operationOf(path), strconv.Itoa(ww.status)}

			m.duration.WithLabelValues(labels...).Observe(time.Since(start).Seconds())
			m.total.WithLabelValues(labels...).Inc()
		})
	}
}

func normalizePath(pattern string) string {
	if pattern == "" {
		return OpHTTPUnknown
	}
	return pattern
}

// endpointOps maps the underscore endpoints to their operation.
var endpointOps = map[string]string{
	"_search":  OpHTTPSearch,
	"_count":   OpHTTPCount,
	"_bulk":    OpHTTPBulk,
	"_refresh": OpHTTPRefresh,
	"_alias":   OpHTTPAlias,
	"_mapping": OpHTTPMapping,
}

// operationOf classifies a route pattern: the first underscore endpoint
// wins, then /{index} and its document routes.
func operationOf(path string) string {
	switch path {
	case OpHTTPUnknown:
		return OpHTTPUnknown
	case "/", "/health", "/metrics":
		return OpHTTPAdmin
	}
	segs := strings.Split(strings.Trim(path, "/"), "/")
	for _, s := range segs {
		if op, ok := endpointOps[s]; ok {
			return op
		}
	}
	if segs[0] == "{index}" {
		if len(segs) == 1 {
			return OpHTTPIndex
		}
		return OpHTTPDocument
	}
	return OpHTTPUnknown
}

// statusWriter captures the response status code.
type statusWriter struct {
	http.ResponseWriter
	status      int
	wroteHeader bool
}

func (w *statusWriter) WriteHeader(status int) {
	if !w.wroteHeader {
		w.status = status
		w.wroteHeader = true
	}
	w.ResponseWriter.WriteHeader(status)
}

func (w *statusWriter) Write(b []byte) (int, error) {
	if !w.wroteHeader {
		w.wroteHeader = true
	}
	return w.ResponseWriter.Write(b) //nolint:wrapcheck // delegating to underlying ResponseWriter
}
