// internal/resolver/predicate_test.go
package resolver

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestBuildPredicates_ViewerOnlyFilter(t *testing.T) {
	p := BuildPredicates(Filter{}, nil, "alice")

	require.Len(t, p.Where, 1)
	assert.Equal(t, "s.username = $1", p.Where[0])
	assert.Equal(t, []interface{}{"alice"}, p.Args)
	assert.Empty(t, p.Having)
}

func TestBuildPredicates_ViewerAlwaysLast(t *testing.T) {
	total := 100.2
	f := Filter{
		Status:      "void",
		Total:       &total,
		CompanyName: "Acme",
	}

	p := BuildPredicates(f, []string{"hammer"}, "alice")

	assert.Equal(t, "s.username = $6", p.Where[len(p.Where)-1])
	assert.Equal(t, "alice", p.Args[len(p.Args)-1])
}

func TestBuildPredicates_StatusTotalScenario(t *testing.T) {
	total := 100.2
	f := Filter{Status: "void", Total: &total, SortOrder: "asc", Limit: 5}

	p := BuildPredicates(f, nil, "alice")

	require.Equal(t, []string{
		"o.status = $1",
		"o.final_total BETWEEN $2 AND $3",
		"s.username = $4",
	}, p.Where)
	require.Len(t, p.Args, 4)
	assert.Equal(t, "void", p.Args[0])
	assert.InDelta(t, 99.7, p.Args[1].(float64), 1e-9)
	assert.InDelta(t, 100.7, p.Args[2].(float64), 1e-9)
	assert.Equal(t, "alice", p.Args[3])
}

func TestBuildPredicates_FixedFieldOrder(t *testing.T) {
	date := time.Date(2026, 3, 15, 0, 0, 0, 0, time.UTC)
	total := 50.0
	orderID := int64(9)
	count := 2
	f := Filter{
		Status:       "complete",
		Date:         &date,
		Total:        &total,
		CompanyName:  "Acme",
		BuyerArea:    "North",
		OrderOption:  "pickup",
		OrderID:      &orderID,
		ProductCount: &count,
	}

	p := BuildPredicates(f, []string{"hammer", "nails"}, "bob")

	require.Equal(t, []string{
		"o.status = $1",
		"o.created_at::date = $2",
		"o.final_total BETWEEN $3 AND $4",
		"o.company_name ILIKE '%' || $5 || '%'",
		"o.buyer_area ILIKE '%' || $6 || '%'",
		"o.order_option ILIKE '%' || $7 || '%'",
		"o.id = $8",
		"i.product_name IN ($9,$10)",
		"s.username = $11",
	}, p.Where)
	assert.Equal(t, "COUNT(i.id) = $12", p.Having)
	require.Len(t, p.Args, 12)
	assert.Equal(t, "2026-03-15", p.Args[1])
	assert.Equal(t, "hammer", p.Args[8])
	assert.Equal(t, "nails", p.Args[9])
	assert.Equal(t, "bob", p.Args[10])
	assert.Equal(t, 2, p.Args[11])
}

func TestBuildPredicates_EmptyProductNamesOmitPredicate(t *testing.T) {
	f := Filter{ProductName: "hamr"} // fragment did not resolve

	p := BuildPredicates(f, nil, "alice")

	for _, w := range p.Where {
		assert.NotContains(t, w, "i.product_name")
	}
}

func TestBuildPredicates_Deterministic(t *testing.T) {
	total := 25.0
	f := Filter{Status: "pending", Total: &total, BuyerArea: "East"}

	first := BuildPredicates(f, []string{"drill"}, "carol")
	second := BuildPredicates(f, []string{"drill"}, "carol")

	assert.Equal(t, first, second)
}
