package bulk

import (
	"context"

	domindex "github.com/kailas-cloud/textdex/internal/domain/index"
)

// Registry finds and persists indices.
type Registry interface {
	Get(name string) (*domindex.Index, error)
	Flush(ctx context.Context, name string) error
}
