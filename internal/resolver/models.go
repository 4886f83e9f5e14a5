// internal/resolver/models.go
package resolver

import (
	"time"

	"store-assistant/internal/models"
)

// Filter is the typed, validated form of the entity set the NLU service
// extracted from one question. Every field is optional; absent entities stay
// at their zero value (pointers nil) and contribute no predicate. The viewer
// identity is deliberately NOT part of the filter: it comes from the
// authenticated session and can never be set by extracted entities.
type Filter struct {
	Status       string
	Date         *time.Time
	Total        *float64
	CompanyName  string
	BuyerArea    string
	OrderOption  string
	OrderID      *int64
	ProductName  string
	ProductCount *int

	// ProductQuantity is extracted and normalized but contributes no
	// predicate yet. TODO: decide with product owners whether this should
	// filter at line-item level; until then it stays inert.
	ProductQuantity *int

	SortOrder string // "asc" or "desc"
	Limit     int
}

// Predicates is the deterministic output of the predicate builder: WHERE
// fragments in fixed field order, their positional $n arguments, and an
// optional post-aggregation HAVING fragment.
type Predicates struct {
	Where  []string
	Args   []interface{}
	Having string
}

// OrderResult is the uniform response shape for the sales-order path. Err is
// set instead of (never alongside) partial data.
type OrderResult struct {
	Message string               `json:"message,omitempty"`
	Orders  []models.OrderRecord `json:"orders"`
	Err     string               `json:"error,omitempty"`
}

// ProductResult is the uniform response shape for the product-search path.
type ProductResult struct {
	Message  string                 `json:"message,omitempty"`
	Products []models.ProductRecord `json:"products"`
	Err      string                 `json:"error,omitempty"`
}

// ChatResult is returned when the question is neither an order query nor a
// product search.
type ChatResult struct {
	Message string `json:"message"`
	Err     string `json:"error,omitempty"`
}

// Resolution is the routed answer to one question: exactly one of Order,
// Product or Chat is set, matching Category.
type Resolution struct {
	Category string         `json:"category"`
	Order    *OrderResult   `json:"order,omitempty"`
	Product  *ProductResult `json:"product,omitempty"`
	Chat     *ChatResult    `json:"chat,omitempty"`
}
