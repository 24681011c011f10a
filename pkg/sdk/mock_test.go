package textdex

import (
	"context"
	"encoding/json"

	dombatch "github.com/kailas-cloud/textdex/internal/domain/batch"
	domdoc "github.com/kailas-cloud/textdex/internal/domain/document"
	domindex "github.com/kailas-cloud/textdex/internal/domain/index"
	dommapping "github.com/kailas-cloud/textdex/internal/domain/mapping"
	"github.com/kailas-cloud/textdex/internal/domain/search/request"
	"github.com/kailas-cloud/textdex/internal/domain/search/result"
)

// --- indexUseCase mock ---

type mockIndexUC struct {
	createFn    func(ctx context.Context, name string, body json.RawMessage) (*domindex.Index, error)
	getFn       func(ctx context.Context, name string) (*domindex.Index, error)
	deleteFn    func(ctx context.Context, name string) error
	refreshFn   func(ctx context.Context, name string) error
	putAliasFn  func(ctx context.Context, name, alias string) error
	delAliasFn  func(ctx context.Context, name, alias string) error
	findAliasFn func(ctx context.Context, alias string) ([]*domindex.Index, error)
}

func (m *mockIndexUC) Create(ctx context.Context, name string, body json.RawMessage) (*domindex.Index, error) {
	return m.createFn(ctx, name, body)
}

func (m *mockIndexUC) Get(ctx context.Context, name string) (*domindex.Index, error) {
	return m.getFn(ctx, name)
}

func (m *mockIndexUC) Delete(ctx context.Context, name string) error {
	return m.deleteFn(ctx, name)
}

func (m *mockIndexUC) Refresh(ctx context.Context, name string) error {
	return m.refreshFn(ctx, name)
}

func (m *mockIndexUC) PutAlias(ctx context.Context, name, alias string) error {
	return m.putAliasFn(ctx, name, alias)
}

func (m *mockIndexUC) DeleteAlias(ctx context.Context, name, alias string) error {
	return m.delAliasFn(ctx, name, alias)
}

func (m *mockIndexUC) FindAlias(ctx context.Context, alias string) ([]*domindex.Index, error) {
	return m.findAliasFn(ctx, alias)
}

// --- mappingUseCase mock ---

type mockMappingUC struct {
	putFn    func(ctx context.Context, indexName, typeName string, raw json.RawMessage) (*dommapping.Mapping, error)
	getFn    func(ctx context.Context, indexName, typeName string) (*dommapping.Mapping, error)
	deleteFn func(ctx context.Context, indexName, typeName string) (int, error)
}

func (m *mockMappingUC) Put(
	ctx context.Context, indexName, typeName string, raw json.RawMessage,
) (*dommapping.Mapping, error) {
	return m.putFn(ctx, indexName, typeName, raw)
}

func (m *mockMappingUC) Get(ctx context.Context, indexName, typeName string) (*dommapping.Mapping, error) {
	return m.getFn(ctx, indexName, typeName)
}

func (m *mockMappingUC) Delete(ctx context.Context, indexName, typeName string) (int, error) {
	return m.deleteFn(ctx, indexName, typeName)
}

// --- documentUseCase mock ---

type mockDocumentUC struct {
	putFn    func(ctx context.Context, indexName, typeName, id string, body json.RawMessage) (bool, error)
	createFn func(ctx context.Context, indexName, typeName string, body json.RawMessage) (string, error)
	getFn    func(ctx context.Context, indexName, typeName, id string) (*domdoc.Document, error)
	deleteFn func(ctx context.Context, indexName, typeName, id string) error
}

func (m *mockDocumentUC) Put(
	ctx context.Context, indexName, typeName, id string, body json.RawMessage,
) (bool, error) {
	return m.putFn(ctx, indexName, typeName, id, body)
}

func (m *mockDocumentUC) Create(
	ctx context.Context, indexName, typeName string, body json.RawMessage,
) (string, error) {
	return m.createFn(ctx, indexName, typeName, body)
}

func (m *mockDocumentUC) Get(ctx context.Context, indexName, typeName, id string) (*domdoc.Document, error) {
	return m.getFn(ctx, indexName, typeName, id)
}

func (m *mockDocumentUC) Delete(ctx context.Context, indexName, typeName, id string) error {
	return m.deleteFn(ctx, indexName, typeName, id)
}

// --- bulkUseCase mock ---

type mockBulkUC struct {
	executeFn func(ctx context.Context, body []byte) ([]dombatch.Result, error)
}

func (m *mockBulkUC) Execute(ctx context.Context, body []byte) ([]dombatch.Result, error) {
	return m.executeFn(ctx, body)
}

// --- searchUseCase mock ---

type mockSearchUC struct {
	countFn  func(ctx context.Context, target string, body []byte) (int, error)
	searchFn func(ctx context.Context, target string, req request.Request) (result.Page, error)
}

func (m *mockSearchUC) Count(ctx context.Context, target string, body []byte) (int, error) {
	return m.countFn(ctx, target, body)
}

func (m *mockSearchUC) Search(ctx context.Context, target string, req request.Request) (result.Page, error) {
	return m.searchFn(ctx, target, req)
}

// --- flusher mock ---

type mockFlusher struct {
	calls int
	err   error
}

func (m *mockFlusher) FlushAll(context.Context) error {
	m.calls++
	return m.err
}
