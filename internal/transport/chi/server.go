package chi

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/kailas-cloud/textdex/internal/domain"
	dombatch "github.com/kailas-cloud/textdex/internal/domain/batch"
	dommapping "github.com/kailas-cloud/textdex/internal/domain/mapping"
	"github.com/kailas-cloud/textdex/internal/domain/search/request"
	bulkuc "github.com/kailas-cloud/textdex/internal/usecase/bulk"
	documentuc "github.com/kailas-cloud/textdex/internal/usecase/document"
	healthuc "github.com/kailas-cloud/textdex/internal/usecase/health"
	indexuc "github.com/kailas-cloud/textdex/internal/usecase/index"
	mappinguc "github.com/kailas-cloud/textdex/internal/usecase/mapping"
	searchuc "github.com/kailas-cloud/textdex/internal/usecase/search"
	"github.com/kailas-cloud/textdex/internal/version"
)

// DefaultMaxBodyBytes caps request bodies.
const DefaultMaxBodyBytes = 64 << 20

// Server implements ServerInterface on top of the usecase services.
type Server struct {
	indices      *indexuc.Service
	mappings     *mappinguc.Service
	documents    *documentuc.Service
	bulk         *bulkuc.Service
	search       *searchuc.Service
	health       *healthuc.Service
	maxBodyBytes int64
}

var _ ServerInterface = (*Server)(nil)

// NewServer creates an HTTP API server.
func NewServer(
	indices *indexuc.Service,
	mappings *mappinguc.Service,
	documents *documentuc.Service,
	bulk *bulkuc.Service,
	search *searchuc.Service,
	health *healthuc.Service,
) *Server {
	return &Server{
		indices:      indices,
		mappings:     mappings,
		documents:    documents,
		bulk:         bulk,
		search:       search,
		health:       health,
		maxBodyBytes: DefaultMaxBodyBytes,
	}
}

// WithMaxBodyBytes configures the request body limit.
func (s *Server) WithMaxBodyBytes(n int64) *Server {
	if n > 0 {
		s.maxBodyBytes = n
	}
	return s
}

// Root handles GET /.
func (s *Server) Root(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, RootResponse{
		Name: "textdex",
		Version: VersionInfo{
			Number:    version.Version,
			BuildHash: version.Commit,
			BuildDate: version.Date,
		},
	})
}

// HealthCheck handles GET /health.
func (s *Server) HealthCheck(w http.ResponseWriter, r *http.Request) {
	report := s.health.Check(r.Context())

	checks := make(map[string]string, len(report.Checks))
	for k, v := range report.Checks {
		checks[k] = string(v)
	}

	httpStatus := http.StatusOK
	if report.Status != healthuc.Healthy {
		httpStatus = http.StatusServiceUnavailable
	}

	writeJSON(w, httpStatus, HealthResponse{
		Status:  string(report.Status),
		Checks:  checks,
		Indices: report.Indices,
	})
}

// Metrics handles GET /metrics.
func (s *Server) Metrics(w http.ResponseWriter, r *http.Request) {
	promhttp.Handler().ServeHTTP(w, r)
}

// CreateIndex handles PUT /{index}.
func (s *Server) CreateIndex(w http.ResponseWriter, r *http.Request, index string) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	if _, err := s.indices.Create(r.Context(), index, body); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ack)
}

// GetIndex handles GET /{index}.
func (s *Server) GetIndex(w http.ResponseWriter, r *http.Request, index string) {
	ix, err := s.indices.Get(r.Context(), index)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]IndexInfo{ix.Name(): indexInfo(ix)})
}

// DeleteIndex handles DELETE /{index}.
func (s *Server) DeleteIndex(w http.ResponseWriter, r *http.Request, index string) {
	if err := s.indices.Delete(r.Context(), index); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ack)
}

// Refresh handles POST /{index}/_refresh.
func (s *Server) Refresh(w http.ResponseWriter, r *http.Request, index string) {
	if err := s.indices.Refresh(r.Context(), index); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, RefreshResponse{Shards: oneShard})
}

// PutMapping handles PUT /{index}/_mapping/{mapping}.
func (s *Server) PutMapping(w http.ResponseWriter, r *http.Request, index, mapping string) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	if _, err := s.mappings.Put(r.Context(), index, mapping, body); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ack)
}

// GetMapping handles GET /{index}/_mapping/{mapping}.
func (s *Server) GetMapping(w http.ResponseWriter, r *http.Request, index, mapping string) {
	m, err := s.mappings.Get(r.Context(), index, mapping)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]MappingInfo{
		index: {Mappings: map[string]*dommapping.Mapping{m.TypeName(): m}},
	})
}

// DeleteMapping handles DELETE /{index}/_mapping/{mapping}.
func (s *Server) DeleteMapping(w http.ResponseWriter, r *http.Request, index, mapping string) {
	if _, err := s.mappings.Delete(r.Context(), index, mapping); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ack)
}

// PutAlias handles PUT /{index}/_alias/{alias}.
func (s *Server) PutAlias(w http.ResponseWriter, r *http.Request, index, alias string) {
	if err := s.indices.PutAlias(r.Context(), index, alias); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ack)
}

// GetAlias handles GET /{index}/_alias/{alias}.
func (s *Server) GetAlias(w http.ResponseWriter, r *http.Request, index, alias string) {
	if err := s.indices.GetAlias(r.Context(), index, alias); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]AliasInfo{index: {Aliases: aliasSet(alias)}})
}

// DeleteAlias handles DELETE /{index}/_alias/{alias}.
func (s *Server) DeleteAlias(w http.ResponseWriter, r *http.Request, index, alias string) {
	if err := s.indices.DeleteAlias(r.Context(), index, alias); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, ack)
}

// FindAlias handles GET /_alias/{alias}.
func (s *Server) FindAlias(w http.ResponseWriter, r *http.Request, alias string) {
	ixs, err := s.indices.FindAlias(r.Context(), alias)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	resp := make(map[string]AliasInfo, len(ixs))
	for _, ix := range ixs {
		resp[ix.Name()] = AliasInfo{Aliases: aliasSet(alias)}
	}
	writeJSON(w, http.StatusOK, resp)
}

// PutDocument handles PUT /{index}/{mapping}/{doc}.
func (s *Server) PutDocument(w http.ResponseWriter, r *http.Request, index, mapping, doc string, params WriteParams) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	created, err := s.documents.Put(r.Context(), index, mapping, doc, body)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if !s.refreshIfAsked(w, r, index, params) {
		return
	}

	status := http.StatusOK
	if created {
		status = http.StatusCreated
	}
	writeJSON(w, status, WriteResponse{Index: index, Type: mapping, ID: doc, Created: &created})
}

// CreateDocument handles POST /{index}/{mapping}.
func (s *Server) CreateDocument(w http.ResponseWriter, r *http.Request, index, mapping string, params WriteParams) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	id, err := s.documents.Create(r.Context(), index, mapping, body)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if !s.refreshIfAsked(w, r, index, params) {
		return
	}

	created := true
	w.Header().Set("Location", fmt.Sprintf("/%s/%s/%s", index, mapping, id))
	writeJSON(w, http.StatusCreated, WriteResponse{Index: index, Type: mapping, ID: id, Created: &created})
}

// GetDocument handles GET /{index}/{mapping}/{doc}.
// A missing document answers 404 with found=false; a missing index or type is an error.
func (s *Server) GetDocument(w http.ResponseWriter, r *http.Request, index, mapping, doc string) {
	d, err := s.documents.Get(r.Context(), index, mapping, doc)
	if errors.Is(err, domain.ErrDocumentNotFound) {
		writeJSON(w, http.StatusNotFound, GetResponse{Index: index, Type: mapping, ID: doc})
		return
	}
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, GetResponse{
		Index:  index,
		Type:   d.Type(),
		ID:     d.ID(),
		Found:  true,
		Source: d.Source(),
	})
}

// DeleteDocument handles DELETE /{index}/{mapping}/{doc}.
func (s *Server) DeleteDocument(w http.ResponseWriter, r *http.Request, index, mapping, doc string, params WriteParams) {
	if err := s.documents.Delete(r.Context(), index, mapping, doc); err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	if !s.refreshIfAsked(w, r, index, params) {
		return
	}
	found := true
	writeJSON(w, http.StatusOK, WriteResponse{Index: index, Type: mapping, ID: doc, Found: &found})
}

// Bulk handles POST /_bulk.
func (s *Server) Bulk(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	results, err := s.bulk.Execute(r.Context(), body)
	if results == nil && err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	// a non-nil err here is a persistence failure after the items were applied

	items := make([]map[string]BulkItemResult, len(results))
	for i, res := range results {
		items[i] = bulkItem(res)
	}
	writeJSON(w, http.StatusOK, BulkResponse{
		Took:   time.Since(start).Milliseconds(),
		Errors: err != nil || dombatch.HasErrors(results),
		Items:  items,
	})
}

// Count handles GET|POST /{index}/_count.
func (s *Server) Count(w http.ResponseWriter, r *http.Request, index string) {
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}
	count, err := s.search.Count(r.Context(), index, body)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, CountResponse{Count: count, Shards: oneShard})
}

// Search handles GET|POST /{index}/_search.
func (s *Server) Search(w http.ResponseWriter, r *http.Request, index string, params SearchParams) {
	start := time.Now()
	body, ok := s.readBody(w, r)
	if !ok {
		return
	}

	req, err := request.New(body, params.Size)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}
	page, err := s.search.Search(r.Context(), index, req)
	if err != nil {
		s.handleDomainError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, SearchResponse{
		Took:   time.Since(start).Milliseconds(),
		Shards: oneShard,
		Hits:   searchHits(page),
	})
}

func (s *Server) refreshIfAsked(w http.ResponseWriter, r *http.Request, index string, params WriteParams) bool {
	if params.Refresh == nil || !*params.Refresh {
		return true
	}
	if err := s.indices.Refresh(r.Context(), index); err != nil {
		s.handleDomainError(w, r, err)
		return false
	}
	return true
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) (json.RawMessage, bool) {
	body, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBodyBytes))
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			writeError(w, http.StatusRequestEntityTooLarge, ErrTypeIllegalArg,
				fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
			return nil, false
		}
		writeError(w, http.StatusBadRequest, ErrTypeParse, "read request body: "+err.Error())
		return nil, false
	}
	return body, true
}
