// internal/resolver/config.go
package resolver

import "time"

type Config struct {
	// QueryTimeout bounds each storage read. On expiry the request fails
	// fast as storage-unavailable; no retry inside the core.
	QueryTimeout time.Duration

	// MatchThreshold gates product-name resolution for the sales-order
	// path. Strict by default (90) because matches feed a SQL IN clause.
	MatchThreshold int

	DefaultLimit int
	MaxLimit     int
}

func DefaultConfig() *Config {
	return &Config{
		QueryTimeout:   10 * time.Second,
		MatchThreshold: 90,
		DefaultLimit:   10,
		MaxLimit:       100,
	}
}
