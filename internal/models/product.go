// internal/models/product.go
package models

import "github.com/shopspring/decimal"

// ProductRecord is one catalog entry returned by the product-search path.
type ProductRecord struct {
	ID        int64           `json:"id"`
	Name      string          `json:"name"`
	Color     string          `json:"color,omitempty"`
	Spec      string          `json:"spec,omitempty"`
	UnitPrice decimal.Decimal `json:"unitPrice"`
	Stock     int             `json:"stock"`
}

// MatchCandidate is a scored pairing of an input fragment with a catalog name.
type MatchCandidate struct {
	Fragment  string `json:"fragment"`
	Candidate string `json:"candidate"`
	Score     int    `json:"score"` // 0-100
}
