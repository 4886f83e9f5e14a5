// internal/resolver/service.go
package resolver

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"store-assistant/internal/common/logger"
	"store-assistant/internal/common/metrics"
	"store-assistant/internal/fuzzy"
	"store-assistant/internal/models"
	"store-assistant/internal/nlu"
)

// Understander is the boundary to the external text-understanding service.
// Implementations never surface a raw fault: the second return value is
// false and the payload is the zero value instead.
type Understander interface {
	ExtractOrderEntities(ctx context.Context, question string) (map[string]interface{}, bool)
	ExtractProductAttributes(ctx context.Context, question string) (nlu.ProductAttributes, bool)
	Classify(ctx context.Context, question string) (nlu.Classification, bool)
}

// ProductNameSource supplies the distinct catalog product-name universe used
// for fuzzy resolution.
type ProductNameSource interface {
	ProductNames(ctx context.Context) ([]string, error)
}

// ProductSearcher answers product questions against the catalog.
type ProductSearcher interface {
	Search(ctx context.Context, attrs nlu.ProductAttributes, limit int) ([]models.ProductRecord, error)
}

// Guidance messages for empty result sets. Each steers the user toward the
// complementary category instead of leaving a dead end.
const (
	msgNoOrders   = "No matching sales orders were found. If you were asking about a product, try a product search instead."
	msgNoProducts = "No matching products were found. If you were asking about a past sales order, try an order query instead."
	msgChatFallback = "I can help with sales orders and catalog products. Try asking about an order or a product."
)

// Service orchestrates one question end to end: entity extraction,
// normalization, predicate building, the grouped read and aggregation. Every
// request produces exactly one uniform result; internal faults are logged
// and mapped, never re-raised to the transport layer.
type Service struct {
	config     *Config
	normalizer *Normalizer
	store      *Store
	nlu        Understander
	names      ProductNameSource
	products   ProductSearcher
	logger     logger.Logger
}

func NewService(cfg *Config, store *Store, understander Understander, names ProductNameSource, products ProductSearcher, log logger.Logger) *Service {
	return &Service{
		config:     cfg,
		normalizer: NewNormalizer(cfg, log),
		store:      store,
		nlu:        understander,
		names:      names,
		products:   products,
		logger:     log.WithFields(map[string]interface{}{"component": "resolver"}),
	}
}

// Resolve classifies the question and dispatches to the matching path. When
// classification itself degrades, the sales-order path is assumed: it is the
// primary use of the assistant and its empty-result guidance redirects the
// user if the guess was wrong.
func (s *Service) Resolve(ctx context.Context, question, viewer string) Resolution {
	cls, ok := s.nlu.Classify(ctx, question)
	if !ok {
		cls = nlu.Classification{Category: nlu.CategorySalesOrder}
	}

	switch cls.Category {
	case nlu.CategoryProduct:
		result := s.ResolveProductSearch(ctx, question)
		return Resolution{Category: nlu.CategoryProduct, Product: &result}
	case nlu.CategoryGeneral:
		message := strings.TrimSpace(cls.Response)
		if message == "" {
			message = msgChatFallback
		}
		return Resolution{Category: nlu.CategoryGeneral, Chat: &ChatResult{Message: message}}
	default:
		result := s.ResolveSalesOrderQuery(ctx, question, viewer)
		return Resolution{Category: nlu.CategorySalesOrder, Order: &result}
	}
}

// ResolveSalesOrderQuery answers a free-text question about the viewer's own
// sales orders. The viewer identity comes from the authenticated session and
// is mandatory: without it no query runs at all.
func (s *Service) ResolveSalesOrderQuery(ctx context.Context, question, viewer string) (result OrderResult) {
	start := time.Now()
	defer func() {
		metrics.QueryDuration.WithLabelValues("sales_order").Observe(time.Since(start).Seconds())
		if r := recover(); r != nil {
			s.logger.Error("panic while resolving order query", map[string]interface{}{
				"panic": fmt.Sprintf("%v", r),
			})
			result = orderError("an internal error occurred while answering the question")
		}
		outcome := "ok"
		if result.Err != "" {
			outcome = "error"
		}
		metrics.QueriesResolved.WithLabelValues("sales_order", outcome).Inc()
	}()

	if strings.TrimSpace(viewer) == "" {
		return orderError("a viewer identity is required to query sales orders")
	}

	// A degraded extraction yields an empty entity set; the question then
	// resolves to the viewer's recent orders under the default sort/limit.
	entities, ok := s.nlu.ExtractOrderEntities(ctx, question)
	if !ok {
		entities = map[string]interface{}{}
	}
	filter := s.normalizer.Normalize(entities)

	productNames, err := s.resolveProductNames(ctx, filter.ProductName)
	if err != nil {
		return orderError(messageFor(err))
	}

	preds := BuildPredicates(filter, productNames, viewer)
	rows, err := s.store.FetchOrders(ctx, preds, filter.SortOrder, filter.Limit)
	if err != nil {
		return orderError(messageFor(err))
	}

	orders, err := aggregate(rows)
	if err != nil {
		s.logger.Error("order aggregation failed", map[string]interface{}{
			"error": err.Error(),
		})
		return orderError(messageFor(err))
	}

	if len(orders) == 0 {
		return OrderResult{Message: msgNoOrders, Orders: []models.OrderRecord{}}
	}
	return OrderResult{
		Message: fmt.Sprintf("Found %d matching sales order(s).", len(orders)),
		Orders:  orders,
	}
}

// ResolveProductSearch answers a free-text question about catalog products.
// Product search is not scoped per viewer: the catalog is shared.
func (s *Service) ResolveProductSearch(ctx context.Context, question string) (result ProductResult) {
	start := time.Now()
	defer func() {
		metrics.QueryDuration.WithLabelValues("product").Observe(time.Since(start).Seconds())
		if r := recover(); r != nil {
			s.logger.Error("panic while resolving product search", map[string]interface{}{
				"panic": fmt.Sprintf("%v", r),
			})
			result = productError("an internal error occurred while answering the question")
		}
		outcome := "ok"
		if result.Err != "" {
			outcome = "error"
		}
		metrics.QueriesResolved.WithLabelValues("product", outcome).Inc()
	}()

	attrs, ok := s.nlu.ExtractProductAttributes(ctx, question)
	if !ok {
		// degrade to the raw question as the product term
		attrs = nlu.ProductAttributes{Product: strings.TrimSpace(question)}
	}

	products, err := s.products.Search(ctx, attrs, 0)
	if err != nil {
		s.logger.Error("product search failed", map[string]interface{}{
			"error": err.Error(),
		})
		return productError(messageFor(err))
	}

	if len(products) == 0 {
		return ProductResult{Message: msgNoProducts, Products: []models.ProductRecord{}}
	}
	return ProductResult{
		Message:  fmt.Sprintf("Found %d matching product(s).", len(products)),
		Products: products,
	}
}

// resolveProductNames maps a fuzzy product fragment onto concrete catalog
// names. An unresolvable fragment yields no names and therefore no product
// predicate; the query still runs on the remaining filters.
func (s *Service) resolveProductNames(ctx context.Context, fragment string) ([]string, error) {
	if fragment == "" {
		return nil, nil
	}

	universe, err := s.names.ProductNames(ctx)
	if err != nil {
		s.logger.Error("product name universe unavailable", map[string]interface{}{
			"error": err.Error(),
		})
		return nil, fmt.Errorf("%w: %v", ErrStorageUnavailable, err)
	}

	matches := fuzzy.Match(fragment, universe, s.config.MatchThreshold, -1)
	if len(matches) == 0 {
		metrics.FuzzyMatches.WithLabelValues("sales_order", "miss").Inc()
		s.logger.Info("product fragment did not resolve", map[string]interface{}{
			"fragment": fragment,
		})
		return nil, nil
	}
	metrics.FuzzyMatches.WithLabelValues("sales_order", "hit").Inc()
	return fuzzy.Names(matches), nil
}

func orderError(message string) OrderResult {
	return OrderResult{Orders: []models.OrderRecord{}, Err: message}
}

func productError(message string) ProductResult {
	return ProductResult{Products: []models.ProductRecord{}, Err: message}
}

// messageFor maps internal fault classes onto the user-facing wording.
func messageFor(err error) string {
	switch {
	case errors.Is(err, ErrAggregationMismatch):
		return "order line items came back inconsistent; please retry the question"
	case errors.Is(err, ErrMalformedQuery):
		return "the question could not be turned into a safe query"
	default:
		return "the store database is unavailable right now; please try again later"
	}
}
