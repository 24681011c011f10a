package textdex

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/kailas-cloud/textdex/internal/domain/search/request"
)

// SearchOption tunes a single search.
type SearchOption func(*searchConfig)

type searchConfig struct {
	size *int
}

// WithSize limits the number of returned hits; it wins over a "size"
// member of the body. Default: 10.
func WithSize(n int) SearchOption {
	return func(c *searchConfig) {
		c.size = &n
	}
}

// Count returns the number of documents matching body across target, an
// index, alias, comma-separated list or _all. An empty body counts everything.
func (c *Client) Count(ctx context.Context, target string, body json.RawMessage) (_ int, err error) {
	start := time.Now()
	defer func() { c.obs.observe("count", target, start, err) }()

	n, err := c.searchSvc.Count(ctx, target, body)
	if err != nil {
		return 0, fmt.Errorf("count: %w", err)
	}
	return n, nil
}

// Search ranks the documents matching body across target by score.
func (c *Client) Search(
	ctx context.Context, target string, body json.RawMessage, opts ...SearchOption,
) (_ SearchResult, err error) {
	start := time.Now()
	defer func() { c.obs.observe("search", target, start, err) }()

	cfg := &searchConfig{}
	for _, o := range opts {
		o(cfg)
	}
	req, err := request.New(body, cfg.size)
	if err != nil {
		return SearchResult{}, fmt.Errorf("search: %w", err)
	}

	page, err := c.searchSvc.Search(ctx, target, req)
	if err != nil {
		return SearchResult{}, fmt.Errorf("search: %w", err)
	}
	c.obs.observeHits(page.Total)

	res := SearchResult{Total: page.Total, Hits: make([]Hit, len(page.Hits))}
	for i, h := range page.Hits {
		res.Hits[i] = Hit{Index: h.Index(), Type: h.Type(), ID: h.ID(), Score: h.Score(), Source: h.Source()}
	}
	if len(page.Hits) > 0 {
		res.MaxScore = page.MaxScore()
	}
	return res, nil
}
