// internal/resolver/aggregator_test.go
package resolver

import (
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleRow() orderRow {
	return orderRow{
		id:          1,
		createdAt:   time.Date(2026, 2, 1, 9, 30, 0, 0, time.UTC),
		status:      "complete",
		companyName: "Acme",
		finalTotal:  "130.00",
		orderOption: "pickup",
		buyerArea:   "North",
		salesperson: "alice",
		itemNames:   "hammer\x1fnails\x1fdrill",
		quantities:  "1\x1f3\x1f2",
		unitPrices:  "100.00\x1f10.00\x1f0.00",
		lineTotals:  "100.00\x1f30.00\x1f0.00",
	}
}

func TestAggregate_ThreeItemRoundTrip(t *testing.T) {
	orders, err := aggregate([]orderRow{sampleRow()})

	require.NoError(t, err)
	require.Len(t, orders, 1)

	order := orders[0]
	assert.Equal(t, int64(1), order.ID)
	assert.Equal(t, "alice", order.Salesperson)
	require.Len(t, order.Items, 3)

	assert.Equal(t, "hammer", order.Items[0].ProductName)
	assert.Equal(t, 1, order.Items[0].Quantity)
	assert.True(t, order.Items[0].UnitPrice.Equal(decimal.RequireFromString("100.00")))

	assert.Equal(t, "nails", order.Items[1].ProductName)
	assert.Equal(t, 3, order.Items[1].Quantity)
	assert.True(t, order.Items[1].LineTotal.Equal(decimal.RequireFromString("30.00")))

	assert.True(t, order.FinalTotal.Equal(decimal.RequireFromString("130.00")))
}

func TestAggregate_LengthMismatchFailsWholeRequest(t *testing.T) {
	row := sampleRow()
	row.quantities = "1\x1f3" // one entry short

	_, err := aggregate([]orderRow{row})

	require.Error(t, err)
	assert.ErrorIs(t, err, ErrAggregationMismatch)
}

func TestAggregate_BadQuantity(t *testing.T) {
	row := sampleRow()
	row.quantities = "1\x1fthree\x1f2"

	_, err := aggregate([]orderRow{row})

	assert.ErrorIs(t, err, ErrAggregationMismatch)
}

func TestAggregate_NegativeQuantity(t *testing.T) {
	row := sampleRow()
	row.quantities = "1\x1f-3\x1f2"

	_, err := aggregate([]orderRow{row})

	assert.ErrorIs(t, err, ErrAggregationMismatch)
}

func TestAggregate_BadCurrency(t *testing.T) {
	row := sampleRow()
	row.unitPrices = "100.00\x1ften\x1f0.00"

	_, err := aggregate([]orderRow{row})

	assert.ErrorIs(t, err, ErrAggregationMismatch)
}

func TestAggregate_CurrencyRoundedToTwoDecimals(t *testing.T) {
	row := sampleRow()
	row.itemNames = "hammer"
	row.quantities = "1"
	row.unitPrices = "99.999"
	row.lineTotals = "99.999"
	row.finalTotal = "99.999"

	orders, err := aggregate([]orderRow{row})

	require.NoError(t, err)
	assert.Equal(t, "100", orders[0].Items[0].UnitPrice.String())
	assert.Equal(t, "100", orders[0].FinalTotal.String())
}

func TestAggregate_StoredLineTotalPreserved(t *testing.T) {
	row := sampleRow()
	row.itemNames = "hammer"
	row.quantities = "2"
	row.unitPrices = "10.00"
	row.lineTotals = "25.00" // disagrees with 2 * 10.00, passed through as stored

	orders, err := aggregate([]orderRow{row})

	require.NoError(t, err)
	assert.True(t, orders[0].Items[0].LineTotal.Equal(decimal.RequireFromString("25.00")))
}

func TestAggregate_DuplicateOrderIDsCollapsed(t *testing.T) {
	orders, err := aggregate([]orderRow{sampleRow(), sampleRow()})

	require.NoError(t, err)
	assert.Len(t, orders, 1)
}

func TestAggregate_RowOrderPreserved(t *testing.T) {
	first := sampleRow()
	second := sampleRow()
	second.id = 2
	third := sampleRow()
	third.id = 3

	orders, err := aggregate([]orderRow{third, first, second})

	require.NoError(t, err)
	require.Len(t, orders, 3)
	assert.Equal(t, int64(3), orders[0].ID)
	assert.Equal(t, int64(1), orders[1].ID)
	assert.Equal(t, int64(2), orders[2].ID)
}

func TestAggregate_EmptyInput(t *testing.T) {
	orders, err := aggregate(nil)

	require.NoError(t, err)
	assert.Empty(t, orders)
}
