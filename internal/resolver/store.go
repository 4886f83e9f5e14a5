// internal/resolver/store.go
package resolver

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"store-assistant/internal/common/logger"
)

var (
	ErrStorageUnavailable  = errors.New("STORAGE_UNAVAILABLE")
	ErrMalformedQuery      = errors.New("MALFORMED_QUERY")
	ErrAggregationMismatch = errors.New("AGGREGATION_MISMATCH")
)

// itemSep joins the per-item columns inside one grouped row. ASCII unit
// separator: it cannot occur in product names, quantities or prices.
const itemSep = "\x1f"

var placeholderPattern = regexp.MustCompile(`\$\d+`)

// Store issues the parameterized reads for the sales-order path. It owns no
// write path and no transaction handling; each call is one bounded read.
type Store struct {
	db      *sql.DB
	timeout time.Duration
	logger  logger.Logger
}

func NewStore(db *sql.DB, timeout time.Duration, log logger.Logger) *Store {
	return &Store{db: db, timeout: timeout, logger: log}
}

// orderRow is one grouped row: order columns plus the four delimiter-joined
// item columns, positionally aligned by item id.
type orderRow struct {
	id          int64
	createdAt   time.Time
	status      string
	companyName string
	finalTotal  string
	orderOption string
	buyerArea   string
	salesperson string
	itemNames   string
	quantities  string
	unitPrices  string
	lineTotals  string
}

// FetchOrders runs the grouped order query. sortOrder must already be
// normalized to asc/desc; it and the limit are the only non-parameter pieces
// and neither ever carries user text.
func (s *Store) FetchOrders(ctx context.Context, p Predicates, sortOrder string, limit int) ([]orderRow, error) {
	if err := checkBindings(p); err != nil {
		return nil, err
	}

	direction := "DESC"
	if sortOrder == "asc" {
		direction = "ASC"
	}

	var b strings.Builder
	b.WriteString(`SELECT o.id, o.created_at, o.status, o.company_name, o.final_total,
	       o.order_option, o.buyer_area, s.username,
	       string_agg(i.product_name, '` + itemSep + `' ORDER BY i.id) AS item_names,
	       string_agg(i.quantity::text, '` + itemSep + `' ORDER BY i.id) AS quantities,
	       string_agg(i.unit_price::text, '` + itemSep + `' ORDER BY i.id) AS unit_prices,
	       string_agg(i.line_total::text, '` + itemSep + `' ORDER BY i.id) AS line_totals
	FROM sales_orders o
	JOIN order_items i ON i.order_id = o.id
	JOIN salespeople s ON s.id = o.salesperson_id
	WHERE `)
	b.WriteString(strings.Join(p.Where, " AND "))
	b.WriteString(`
	GROUP BY o.id, o.created_at, o.status, o.company_name, o.final_total, o.order_option, o.buyer_area, s.username`)
	if p.Having != "" {
		b.WriteString("\n\tHAVING ")
		b.WriteString(p.Having)
	}
	args := append(append([]interface{}{}, p.Args...), limit)
	b.WriteString(fmt.Sprintf("\n\tORDER BY o.created_at %s\n\tLIMIT $%d", direction, len(args)))

	queryCtx, cancel := context.WithTimeout(ctx, s.timeout)
	defer cancel()

	rows, err := s.db.QueryContext(queryCtx, b.String(), args...)
	if err != nil {
		return nil, s.storageErr("orders", err)
	}
	defer rows.Close()

	var out []orderRow
	for rows.Next() {
		var r orderRow
		if err := rows.Scan(
			&r.id, &r.createdAt, &r.status, &r.companyName, &r.finalTotal,
			&r.orderOption, &r.buyerArea, &r.salesperson,
			&r.itemNames, &r.quantities, &r.unitPrices, &r.lineTotals,
		); err != nil {
			return nil, s.storageErr("orders", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		return nil, s.storageErr("orders", err)
	}

	return out, nil
}

// checkBindings verifies the predicate/parameter contract before anything
// reaches the driver. A mismatch is a programming error in the builder, not
// a user-facing condition.
func checkBindings(p Predicates) error {
	text := strings.Join(p.Where, " ")
	if p.Having != "" {
		text += " " + p.Having
	}
	want := len(placeholderPattern.FindAllString(text, -1))
	if want != len(p.Args) {
		return fmt.Errorf("%w: %d placeholders, %d arguments", ErrMalformedQuery, want, len(p.Args))
	}
	return nil
}

func (s *Store) storageErr(queryKind string, err error) error {
	s.logger.Error("storage read failed", map[string]interface{}{
		"queryKind": queryKind,
		"error":     err.Error(),
	})
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %s query timed out", ErrStorageUnavailable, queryKind)
	}
	return fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
}
