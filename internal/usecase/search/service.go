package search

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.uber.org/zap"

	domindex "github.com/kailas-cloud/textdex/internal/domain/index"
	"github.com/kailas-cloud/textdex/internal/domain/query/parser"
	"github.com/kailas-cloud/textdex/internal/domain/search/request"
	"github.com/kailas-cloud/textdex/internal/domain/search/result"
	"github.com/kailas-cloud/textdex/internal/logger"
	"github.com/kailas-cloud/textdex/internal/metrics"
)

// Service counts and ranks documents across an index or every index behind an alias.
type Service struct {
	resolver Resolver
}

// New creates a search service.
func New(resolver Resolver) *Service {
	return &Service{resolver: resolver}
}

// Count returns the number of documents matching the query in body.
// An empty body, or one without "query", counts every document.
func (s *Service) Count(ctx context.Context, target string, body []byte) (total int, err error) {
	defer observe(metrics.OpCount, time.Now(), &err)

	ixs, err := s.resolver.Resolve(target)
	if err != nil {
		return 0, fmt.Errorf("resolve %s: %w", target, err)
	}
	for _, ix := range ixs {
		q, err := parser.ParseRequest(body, ix)
		if err != nil {
			return 0, err
		}
		total += len(ix.Evaluate(q))
	}

	logger.FromContext(ctx).Debug("count executed",
		zap.String("target", target),
		zap.Int("indices", len(ixs)),
		zap.Int("total", total),
	)
	return total, nil
}

type ranked struct {
	index *domindex.Index
	order int
	match domindex.Match
}

// Search ranks every matching document by score, best first. Equal scores
// keep resolution order across indices and insertion order within one.
// Total is the full match count regardless of the requested size.
func (s *Service) Search(ctx context.Context, target string, req request.Request) (page result.Page, err error) {
	defer observe(metrics.OpSearch, time.Now(), &err)

	ixs, err := s.resolver.Resolve(target)
	if err != nil {
		return result.Page{}, fmt.Errorf("resolve %s: %w", target, err)
	}

	var all []ranked
	for i, ix := range ixs {
		q, err := parser.ParseRequest(req.Body(), ix)
		if err != nil {
			return result.Page{}, err
		}
		for _, m := range ix.Evaluate(q) {
			all = append(all, ranked{index: ix, order: i, match: m})
		}
	}

	sort.SliceStable(all, func(i, j int) bool {
		a, b := all[i], all[j]
		if a.match.Score != b.match.Score {
			return a.match.Score > b.match.Score
		}
		if a.order != b.order {
			return a.order < b.order
		}
		return a.match.Seq < b.match.Seq
	})

	page.Total = len(all)
	n := min(req.Size(), len(all))
	page.Hits = make([]result.Hit, 0, n)
	for _, r := range all[:n] {
		doc := r.match.Doc
		page.Hits = append(page.Hits, result.New(r.index.Name(), doc.Type(), doc.ID(), r.match.Score, doc.Source()))
	}

	logger.FromContext(ctx).Debug("search executed",
		zap.String("target", target),
		zap.Int("indices", len(ixs)),
		zap.Int("total", page.Total),
		zap.Int("returned", len(page.Hits)),
	)
	return page, nil
}

func observe(op string, start time.Time, err *error) {
	status := "ok"
	if *err != nil {
		status = "error"
	}
	metrics.SearchQueryDuration.WithLabelValues(op).Observe(time.Since(start).Seconds())
	metrics.SearchQueriesTotal.WithLabelValues(op, status).Inc()
}
