// internal/catalog/config.go
package catalog

import "time"

type Config struct {
	// MatchThreshold for the free-text fuzzy fallback. Looser than the
	// sales-order threshold because this runs only after the structured
	// search found nothing.
	MatchThreshold int
	QueryTimeout   time.Duration
	CacheTTL       time.Duration
	MaxResults     int
}

func DefaultConfig() *Config {
	return &Config{
		MatchThreshold: 70,
		QueryTimeout:   10 * time.Second,
		CacheTTL:       time.Minute,
		MaxResults:     25,
	}
}
