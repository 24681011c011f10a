package search

import domindex "github.com/kailas-cloud/textdex/internal/domain/index"

// Resolver maps an index or alias name to the indices it covers, in a stable order.
type Resolver interface {
	Resolve(name string) ([]*domindex.Index, error)
}
