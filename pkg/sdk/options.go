package textdex

import (
	"log/slog"

	"github.com/prometheus/client_golang/prometheus"
)

// Option configures the Client.
type Option interface {
	apply(*clientConfig)
}

// optionFunc adapts a function to the Option interface.
type optionFunc func(*clientConfig)

func (f optionFunc) apply(c *clientConfig) { f(c) }

// Storage drivers.
const (
	driverMemory = "memory"
	driverSQLite = "sqlite"
	driverRedis  = "redis"
)

type clientConfig struct {
	driver    string
	dir       string
	addrs     []string
	password  string
	keyPrefix string

	defaultAnalyzer   string
	lenientConversion bool
	flushOnWrite      bool
	maxBulkItems      int

	logger     *slog.Logger
	metricsReg prometheus.Registerer
}

// WithMemory keeps indices in process memory only (default).
func WithMemory() Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverMemory
	})
}

// WithSQLite persists index snapshots as sqlite files under dir.
func WithSQLite(dir string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverSQLite
		c.dir = dir
	})
}

// WithRedis persists index snapshots in a Redis instance.
func WithRedis(addr, password string) Option {
	return optionFunc(func(c *clientConfig) {
		c.driver = driverRedis
		c.addrs = []string{addr}
		c.password = password
	})
}

// WithKeyPrefix sets the Redis key prefix. Default: "textdex:".
func WithKeyPrefix(prefix string) Option {
	return optionFunc(func(c *clientConfig) {
		c.keyPrefix = prefix
	})
}

// WithDefaultAnalyzer sets the analyzer used for text fields without an
// explicit analyzer and for _all. Default: "standard".
func WithDefaultAnalyzer(name string) Option {
	return optionFunc(func(c *clientConfig) {
		c.defaultAnalyzer = name
	})
}

// WithLenientConversion stores array and object fields as null instead of
// rejecting the document.
func WithLenientConversion() Option {
	return optionFunc(func(c *clientConfig) {
		c.lenientConversion = true
	})
}

// WithFlushOnWrite persists an index after every write instead of on
// Refresh and Close.
func WithFlushOnWrite() Option {
	return optionFunc(func(c *clientConfig) {
		c.flushOnWrite = true
	})
}

// WithMaxBulkItems caps the number of operations in one Bulk call.
// Default: 10000.
func WithMaxBulkItems(n int) Option {
	return optionFunc(func(c *clientConfig) {
		c.maxBulkItems = n
	})
}

// WithLogger enables structured logging for SDK operations.
// Pass nil to disable (default). Uses standard library slog.
func WithLogger(l *slog.Logger) Option {
	return optionFunc(func(c *clientConfig) {
		c.logger = l
	})
}

// WithPrometheus registers SDK metrics (operation counts and durations)
// on the given registerer. Pass nil to disable (default).
func WithPrometheus(reg prometheus.Registerer) Option {
	return optionFunc(func(c *clientConfig) {
		c.metricsReg = reg
	})
}
