package index

import (
	"context"

	domindex "github.com/kailas-cloud/textdex/internal/domain/index"
)

// Registry creates, finds and persists indices.
type Registry interface {
	Create(name string, settings []byte) (*domindex.Index, error)
	Get(name string) (*domindex.Index, error)
	Delete(ctx context.Context, name string) error
	Flush(ctx context.Context, name string) error
	AddAlias(name, alias string) error
	FindAlias(alias string) ([]*domindex.Index, error)
}
