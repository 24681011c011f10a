package health

import "context"

// DBPinger checks snapshot storage availability.
type DBPinger interface {
	Ping(ctx context.Context) error
}

// IndexCounter reports how many indices are loaded.
type IndexCounter interface {
	Len() int
}
