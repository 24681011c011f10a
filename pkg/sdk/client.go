package textdex

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"go.uber.org/zap"

	"github.com/kailas-cloud/textdex/internal/db"
	"github.com/kailas-cloud/textdex/internal/db/memory"
	dbRedis "github.com/kailas-cloud/textdex/internal/db/redis"
	dbSQLite "github.com/kailas-cloud/textdex/internal/db/sqlite"
	dombatch "github.com/kailas-cloud/textdex/internal/domain/batch"
	domdoc "github.com/kailas-cloud/textdex/internal/domain/document"
	domindex "github.com/kailas-cloud/textdex/internal/domain/index"
	dommapping "github.com/kailas-cloud/textdex/internal/domain/mapping"
	"github.com/kailas-cloud/textdex/internal/domain/search/request"
	"github.com/kailas-cloud/textdex/internal/domain/search/result"
	"github.com/kailas-cloud/textdex/internal/repository/registry"
	bulkuc "github.com/kailas-cloud/textdex/internal/usecase/bulk"
	documentuc "github.com/kailas-cloud/textdex/internal/usecase/document"
	healthuc "github.com/kailas-cloud/textdex/internal/usecase/health"
	indexuc "github.com/kailas-cloud/textdex/internal/usecase/index"
	mappinguc "github.com/kailas-cloud/textdex/internal/usecase/mapping"
	searchuc "github.com/kailas-cloud/textdex/internal/usecase/search"
)

const (
	defaultReadinessTimeout = 10 * time.Second
	defaultKeyPrefix        = "textdex:"
)

// Internal interfaces, swapped for mocks in tests.
type indexUseCase interface {
	Create(ctx context.Context, name string, body json.RawMessage) (*domindex.Index, error)
	Get(ctx context.Context, name string) (*domindex.Index, error)
	Delete(ctx context.Context, name string) error
	Refresh(ctx context.Context, name string) error
	PutAlias(ctx context.Context, name, alias string) error
	DeleteAlias(ctx context.Context, name, alias string) error
	FindAlias(ctx context.Context, alias string) ([]*domindex.Index, error)
}

type mappingUseCase interface {
	Put(ctx context.Context, indexName, typeName string, raw json.RawMessage) (*dommapping.Mapping, error)
	Get(ctx context.Context, indexName, typeName string) (*dommapping.Mapping, error)
	Delete(ctx context.Context, indexName, typeName string) (int, error)
}

type documentUseCase interface {
	Put(ctx context.Context, indexName, typeName, id string, body json.RawMessage) (bool, error)
	Create(ctx context.Context, indexName, typeName string, body json.RawMessage) (string, error)
	Get(ctx context.Context, indexName, typeName, id string) (*domdoc.Document, error)
	Delete(ctx context.Context, indexName, typeName, id string) error
}

type bulkUseCase interface {
	Execute(ctx context.Context, body []byte) ([]dombatch.Result, error)
}

type searchUseCase interface {
	Count(ctx context.Context, target string, body []byte) (int, error)
	Search(ctx context.Context, target string, req request.Request) (result.Page, error)
}

type healthUseCase interface {
	Check(ctx context.Context) healthuc.Report
}

type flusher interface {
	FlushAll(ctx context.Context) error
}

// Client is the embedded textdex engine.
type Client struct {
	store     db.Store
	flusher   flusher
	indexSvc  indexUseCase
	mapSvc    mappingUseCase
	docSvc    documentUseCase
	bulkSvc   bulkUseCase
	searchSvc searchUseCase
	healthSvc healthUseCase
	obs       *observer
}

// New opens the configured store, loads every persisted index and returns
// a ready Client. The provided context bounds the readiness check and the load.
func New(ctx context.Context, opts ...Option) (*Client, error) {
	cfg := &clientConfig{driver: driverMemory, keyPrefix: defaultKeyPrefix}
	for _, o := range opts {
		o.apply(cfg)
	}

	obs, err := newObserver(cfg.logger, cfg.metricsReg)
	if err != nil {
		return nil, err
	}

	store, err := createStore(cfg)
	if err != nil {
		return nil, err
	}
	if err := store.WaitForReady(ctx, defaultReadinessTimeout); err != nil {
		store.Close()
		return nil, fmt.Errorf("textdex: storage not ready: %w", err)
	}

	c, err := wireClient(ctx, store, cfg, obs)
	if err != nil {
		store.Close()
		return nil, err
	}
	return c, nil
}

func createStore(cfg *clientConfig) (db.Store, error) {
	switch cfg.driver {
	case driverMemory:
		return memory.NewStore(), nil
	case driverSQLite:
		if cfg.dir == "" {
			return nil, errors.New("textdex: sqlite directory required")
		}
		s, err := dbSQLite.NewStore(cfg.dir)
		if err != nil {
			return nil, fmt.Errorf("textdex: create sqlite store: %w", err)
		}
		return s, nil
	case driverRedis:
		if len(cfg.addrs) == 0 || cfg.addrs[0] == "" {
			return nil, errors.New("textdex: redis address required")
		}
		s, err := dbRedis.NewStore(dbRedis.Config{
			Addrs:     cfg.addrs,
			Password:  cfg.password,
			KeyPrefix: cfg.keyPrefix,
		})
		if err != nil {
			return nil, fmt.Errorf("textdex: create redis store: %w", err)
		}
		return s, nil
	default:
		return nil, fmt.Errorf("textdex: unknown driver %q", cfg.driver)
	}
}

func wireClient(ctx context.Context, store db.Store, cfg *clientConfig, obs *observer) (*Client, error) {
	// the registry logs through zap; SDK callers see slog output from the observer only
	reg := registry.New(store, domindex.Options{
		DefaultAnalyzer:   cfg.defaultAnalyzer,
		LenientConversion: cfg.lenientConversion,
	}, zap.NewNop())
	if _, err := reg.Load(ctx); err != nil {
		return nil, fmt.Errorf("textdex: load indices: %w", err)
	}

	bulkSvc := bulkuc.New(reg)
	if cfg.maxBulkItems > 0 {
		bulkSvc = bulkSvc.WithMaxItems(cfg.maxBulkItems)
	}

	return &Client{
		store:     store,
		flusher:   reg,
		indexSvc:  indexuc.New(reg).WithFlushOnWrite(cfg.flushOnWrite),
		mapSvc:    mappinguc.New(reg, reg).WithFlushOnWrite(cfg.flushOnWrite),
		docSvc:    documentuc.New(reg, reg).WithFlushOnWrite(cfg.flushOnWrite),
		bulkSvc:   bulkSvc,
		searchSvc: searchuc.New(reg),
		healthSvc: healthuc.New(store, reg),
		obs:       obs,
	}, nil
}

// Close persists every index and releases the store.
func (c *Client) Close() error {
	if c.store == nil {
		return nil
	}
	var err error
	if c.flusher != nil {
		start := time.Now()
		err = c.flusher.FlushAll(context.Background())
		c.obs.observe("close", "", start, err)
	}
	c.store.Close()
	if err != nil {
		return fmt.Errorf("textdex: persist indices: %w", err)
	}
	return nil
}

// Ping checks storage connectivity.
func (c *Client) Ping(ctx context.Context) (err error) {
	start := time.Now()
	defer func() { c.obs.observe("ping", "", start, err) }()

	if err = c.store.Ping(ctx); err != nil {
		return fmt.Errorf("ping: %w", err)
	}
	return nil
}

// Indices returns the index and alias management service.
func (c *Client) Indices() *IndexService {
	return &IndexService{svc: c.indexSvc, obs: c.obs}
}

// Mappings returns the mapping service of one index.
func (c *Client) Mappings(index string) *MappingService {
	return &MappingService{index: index, svc: c.mapSvc, obs: c.obs}
}

// Documents returns the document service for one type of one index.
func (c *Client) Documents(index, docType string) *DocumentService {
	return &DocumentService{index: index, docType: docType, svc: c.docSvc, obs: c.obs}
}
