// internal/resolver/aggregator.go
package resolver

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"

	"store-assistant/internal/models"
)

// aggregate folds grouped rows into one OrderRecord per order id. The four
// delimiter-joined item columns are split and zipped positionally; unequal
// lengths mean the join or grouping upstream is inconsistent and the whole
// request fails rather than silently truncating. Row order is preserved:
// the storage layer already sorted.
func aggregate(rows []orderRow) ([]models.OrderRecord, error) {
	out := make([]models.OrderRecord, 0, len(rows))
	seen := make(map[int64]bool, len(rows))

	for _, r := range rows {
		if seen[r.id] {
			continue
		}
		seen[r.id] = true

		names := strings.Split(r.itemNames, itemSep)
		quantities := strings.Split(r.quantities, itemSep)
		unitPrices := strings.Split(r.unitPrices, itemSep)
		lineTotals := strings.Split(r.lineTotals, itemSep)

		if len(quantities) != len(names) || len(unitPrices) != len(names) || len(lineTotals) != len(names) {
			return nil, fmt.Errorf("%w: order %d item columns split to %d/%d/%d/%d entries",
				ErrAggregationMismatch, r.id, len(names), len(quantities), len(unitPrices), len(lineTotals))
		}

		items := make([]models.LineItem, len(names))
		for i := range names {
			qty, err := strconv.Atoi(strings.TrimSpace(quantities[i]))
			if err != nil || qty < 0 {
				return nil, fmt.Errorf("%w: order %d item %d has quantity %q",
					ErrAggregationMismatch, r.id, i, quantities[i])
			}
			unitPrice, err := parseCurrency(unitPrices[i])
			if err != nil {
				return nil, fmt.Errorf("%w: order %d item %d has unit price %q",
					ErrAggregationMismatch, r.id, i, unitPrices[i])
			}
			lineTotal, err := parseCurrency(lineTotals[i])
			if err != nil {
				return nil, fmt.Errorf("%w: order %d item %d has line total %q",
					ErrAggregationMismatch, r.id, i, lineTotals[i])
			}
			// lineTotal is passed through as stored, even when it
			// disagrees with qty * unitPrice
			items[i] = models.LineItem{
				ProductName: names[i],
				Quantity:    qty,
				UnitPrice:   unitPrice,
				LineTotal:   lineTotal,
			}
		}

		finalTotal, err := parseCurrency(r.finalTotal)
		if err != nil {
			return nil, fmt.Errorf("%w: order %d has final total %q",
				ErrAggregationMismatch, r.id, r.finalTotal)
		}

		out = append(out, models.OrderRecord{
			ID:          r.id,
			CreatedAt:   r.createdAt,
			Status:      models.OrderStatus(r.status),
			CompanyName: r.companyName,
			FinalTotal:  finalTotal,
			OrderOption: r.orderOption,
			BuyerArea:   r.buyerArea,
			Salesperson: r.salesperson,
			Items:       items,
		})
	}

	return out, nil
}

// parseCurrency converts a storage-reported numeric string to a 2-decimal
// currency value without passing through float.
func parseCurrency(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, err
	}
	return d.Round(2), nil
}
