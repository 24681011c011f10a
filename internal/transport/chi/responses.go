package chi

import (
	"encoding/json"
	"net/http"

	dombatch "github.com/kailas-cloud/textdex/internal/domain/batch"
	domindex "github.com/kailas-cloud/textdex/internal/domain/index"
	dommapping "github.com/kailas-cloud/textdex/internal/domain/mapping"
	"github.com/kailas-cloud/textdex/internal/domain/search/result"
)

// AckResponse acknowledges a metadata change.
type AckResponse struct {
	Acknowledged bool `json:"acknowledged"`
}

var ack = AckResponse{Acknowledged: true}

// ShardsInfo mirrors the shard summary of Elasticsearch responses. An index is a single shard.
type ShardsInfo struct {
	Total      int `json:"total"`
	Successful int `json:"successful"`
	Failed     int `json:"failed"`
}

var oneShard = ShardsInfo{Total: 1, Successful: 1}

// RootResponse is returned by GET /.
type RootResponse struct {
	Name    string      `json:"name"`
	Version VersionInfo `json:"version"`
}

// VersionInfo carries build metadata.
type VersionInfo struct {
	Number    string `json:"number"`
	BuildHash string `json:"build_hash"`
	BuildDate string `json:"build_date"`
}

// HealthResponse is returned by GET /health.
type HealthResponse struct {
	Status  string            `json:"status"`
	Checks  map[string]string `json:"checks"`
	Indices int               `json:"indices"`
}

// IndexInfo describes one index in GET /{index}.
type IndexInfo struct {
	Settings json.RawMessage                `json:"settings"`
	Mappings map[string]*dommapping.Mapping `json:"mappings"`
	Aliases  map[string]struct{}            `json:"aliases"`
}

func indexInfo(ix *domindex.Index) IndexInfo {
	settings := ix.Settings()
	if len(settings) == 0 {
		settings = json.RawMessage(`{}`)
	}
	info := IndexInfo{
		Settings: settings,
		Mappings: make(map[string]*dommapping.Mapping),
		Aliases:  aliasSet(ix.Aliases()...),
	}
	for _, m := range ix.Mappings() {
		info.Mappings[m.TypeName()] = m
	}
	return info
}

// MappingInfo is returned by GET /{index}/_mapping/{mapping}, keyed by index name.
type MappingInfo struct {
	Mappings map[string]*dommapping.Mapping `json:"mappings"`
}

// AliasInfo lists the aliases of one index, keyed by index name.
type AliasInfo struct {
	Aliases map[string]struct{} `json:"aliases"`
}

func aliasSet(aliases ...string) map[string]struct{} {
	out := make(map[string]struct{}, len(aliases))
	for _, a := range aliases {
		out[a] = struct{}{}
	}
	return out
}

// WriteResponse is returned by document writes.
type WriteResponse struct {
	Index   string `json:"_index"`
	Type    string `json:"_type"`
	ID      string `json:"_id"`
	Created *bool  `json:"created,omitempty"`
	Found   *bool  `json:"found,omitempty"`
}

// GetResponse is returned by GET /{index}/{mapping}/{doc}.
type GetResponse struct {
	Index  string          `json:"_index"`
	Type   string          `json:"_type"`
	ID     string          `json:"_id"`
	Found  bool            `json:"found"`
	Source json.RawMessage `json:"_source,omitempty"`
}

// CountResponse is returned by _count.
type CountResponse struct {
	Count  int        `json:"count"`
	Shards ShardsInfo `json:"_shards"`
}

// RefreshResponse is returned by _refresh.
type RefreshResponse struct {
	Shards ShardsInfo `json:"_shards"`
}

// SearchResponse is returned by _search.
type SearchResponse struct {
	Took     int64      `json:"took"`
	TimedOut bool       `json:"timed_out"`
	Shards   ShardsInfo `json:"_shards"`
	Hits     SearchHits `json:"hits"`
}

// SearchHits is the hits section of a search response.
type SearchHits struct {
	Total    int         `json:"total"`
	MaxScore *float64    `json:"max_score"`
	Hits     []SearchHit `json:"hits"`
}

// SearchHit is one ranked document.
type SearchHit struct {
	Index  string          `json:"_index"`
	Type   string          `json:"_type"`
	ID     string          `json:"_id"`
	Score  float64         `json:"_score"`
	Source json.RawMessage `json:"_source"`
}

func searchHits(page result.Page) SearchHits {
	hits := SearchHits{Total: page.Total, Hits: make([]SearchHit, len(page.Hits))}
	for i, h := range page.Hits {
		hits.Hits[i] = SearchHit{Index: h.Index(), Type: h.Type(), ID: h.ID(), Score: h.Score(), Source: h.Source()}
	}
	if len(page.Hits) > 0 {
		best := page.MaxScore()
		hits.MaxScore = &best
	}
	return hits
}

// BulkResponse is returned by _bulk.
type BulkResponse struct {
	Took   int64                       `json:"took"`
	Errors bool                        `json:"errors"`
	Items  []map[string]BulkItemResult `json:"items"`
}

// BulkItemResult is the outcome of one bulk operation, keyed by its action.
type BulkItemResult struct {
	Index  string      `json:"_index"`
	Type   string      `json:"_type"`
	ID     string      `json:"_id"`
	Status int         `json:"status"`
	Result string      `json:"result,omitempty"`
	Error  *ErrorCause `json:"error,omitempty"`
}

func bulkItem(r dombatch.Result) map[string]BulkItemResult {
	t := r.Target()
	item := BulkItemResult{Index: t.Index, Type: t.Type, ID: t.ID}
	if err := r.Err(); err != nil {
		status, cause := errorCause(err)
		item.Status = status
		item.Error = &cause
	} else {
		item.Result = string(r.Outcome())
		item.Status = http.StatusOK
		if r.Outcome() == dombatch.OutcomeCreated {
			item.Status = http.StatusCreated
		}
	}
	return map[string]BulkItemResult{string(r.Action()): item}
}
