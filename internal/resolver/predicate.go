// internal/resolver/predicate.go
package resolver

import (
	"fmt"
	"strings"
)

// totalWindow is the tolerance applied to an extracted total: people rarely
// quote an order amount to the cent, so the predicate is a closed interval
// of +/- half a currency unit around the spoken value.
const totalWindow = 0.5

// BuildPredicates maps a normalized filter to parameterized WHERE fragments
// plus an optional HAVING fragment. Fields are evaluated in a fixed order so
// the emitted SQL text and the $n argument sequence are identical for
// identical inputs. User text only ever travels through the argument list.
//
// productNames is the fuzzy-resolved set of concrete catalog names. When it
// is empty the product predicate is omitted entirely: a failed resolution
// must not force an empty result.
//
// The viewer predicate is appended last and is never optional; it scopes
// every query to the requesting salesperson.
func BuildPredicates(f Filter, productNames []string, viewer string) Predicates {
	var p Predicates

	next := func() int { return len(p.Args) + 1 }

	if f.Status != "" {
		p.Where = append(p.Where, fmt.Sprintf("o.status = $%d", next()))
		p.Args = append(p.Args, f.Status)
	}

	if f.Date != nil {
		p.Where = append(p.Where, fmt.Sprintf("o.created_at::date = $%d", next()))
		p.Args = append(p.Args, f.Date.Format("2006-01-02"))
	}

	if f.Total != nil {
		p.Where = append(p.Where, fmt.Sprintf("o.final_total BETWEEN $%d AND $%d", next(), next()+1))
		p.Args = append(p.Args, *f.Total-totalWindow, *f.Total+totalWindow)
	}

	if f.CompanyName != "" {
		p.Where = append(p.Where, fmt.Sprintf("o.company_name ILIKE '%%' || $%d || '%%'", next()))
		p.Args = append(p.Args, f.CompanyName)
	}

	if f.BuyerArea != "" {
		p.Where = append(p.Where, fmt.Sprintf("o.buyer_area ILIKE '%%' || $%d || '%%'", next()))
		p.Args = append(p.Args, f.BuyerArea)
	}

	if f.OrderOption != "" {
		p.Where = append(p.Where, fmt.Sprintf("o.order_option ILIKE '%%' || $%d || '%%'", next()))
		p.Args = append(p.Args, f.OrderOption)
	}

	if f.OrderID != nil {
		p.Where = append(p.Where, fmt.Sprintf("o.id = $%d", next()))
		p.Args = append(p.Args, *f.OrderID)
	}

	if len(productNames) > 0 {
		placeholders := make([]string, len(productNames))
		for i, name := range productNames {
			placeholders[i] = fmt.Sprintf("$%d", next())
			p.Args = append(p.Args, name)
		}
		p.Where = append(p.Where, fmt.Sprintf("i.product_name IN (%s)", strings.Join(placeholders, ",")))
	}

	// viewer scoping comes last, always
	p.Where = append(p.Where, fmt.Sprintf("s.username = $%d", next()))
	p.Args = append(p.Args, viewer)

	if f.ProductCount != nil {
		p.Having = fmt.Sprintf("COUNT(i.id) = $%d", next())
		p.Args = append(p.Args, *f.ProductCount)
	}

	return p
}
