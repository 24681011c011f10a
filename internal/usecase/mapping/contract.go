package mapping

import (
	"context"

	domindex "github.com/kailas-cloud/textdex/internal/domain/index"
)

// IndexReader finds indices by exact name.
type IndexReader interface {
	Get(name string) (*domindex.Index, error)
}

// Flusher persists an index.
type Flusher interface {
	Flush(ctx context.Context, name string) error
}
