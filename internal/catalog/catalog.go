// internal/catalog/catalog.go
package catalog

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"

	"store-assistant/internal/common/logger"
	"store-assistant/internal/common/metrics"
	"store-assistant/internal/fuzzy"
	"store-assistant/internal/models"
	"store-assistant/internal/nlu"
)

var ErrCatalogUnavailable = errors.New("STORAGE_UNAVAILABLE")

const namesCacheKey = "catalog:product-names"

// Service answers product questions against the catalog and supplies the
// distinct product-name universe used for fuzzy resolution. The universe is
// a read-only snapshot cached in Redis with a short TTL; cross-request
// staleness is fine and a cache failure degrades to a direct read.
type Service struct {
	config *Config
	db     *sql.DB
	cache  *redis.Client
	logger logger.Logger
}

func NewService(cfg *Config, db *sql.DB, cache *redis.Client, log logger.Logger) *Service {
	return &Service{
		config: cfg,
		db:     db,
		cache:  cache,
		logger: log.WithFields(map[string]interface{}{"component": "catalog"}),
	}
}

// ProductNames returns every distinct catalog product name in a stable
// order. Serves as the candidate pool for both fuzzy-matching paths.
func (s *Service) ProductNames(ctx context.Context) ([]string, error) {
	if s.cache != nil {
		if val, err := s.cache.Get(ctx, namesCacheKey).Result(); err == nil {
			var names []string
			if err := json.Unmarshal([]byte(val), &names); err == nil {
				return names, nil
			}
		}
	}

	queryCtx, cancel := context.WithTimeout(ctx, s.config.QueryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(queryCtx, `SELECT DISTINCT name FROM products ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	defer rows.Close()

	var names []string
	for rows.Next() {
		var name string
		if err := rows.Scan(&name); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
		}
		names = append(names, name)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	if s.cache != nil {
		if data, err := json.Marshal(names); err == nil {
			if err := s.cache.Set(ctx, namesCacheKey, data, s.config.CacheTTL).Err(); err != nil {
				s.logger.Warn("failed to cache product names", map[string]interface{}{
					"error": err.Error(),
				})
			}
		}
	}

	return names, nil
}

// Search resolves a product question. Structured ILIKE search first; when
// that yields nothing, a fuzzy pass over the name universe as last resort.
func (s *Service) Search(ctx context.Context, attrs nlu.ProductAttributes, limit int) ([]models.ProductRecord, error) {
	if limit <= 0 || limit > s.config.MaxResults {
		limit = s.config.MaxResults
	}

	term := strings.TrimSpace(attrs.Product)
	if term == "" {
		return []models.ProductRecord{}, nil
	}

	products, err := s.structuredSearch(ctx, attrs, limit)
	if err != nil {
		return nil, err
	}
	if len(products) > 0 {
		return products, nil
	}

	// last resort: approximate match over the full name universe
	names, err := s.ProductNames(ctx)
	if err != nil {
		return nil, err
	}
	matches := fuzzy.Match(term, names, s.config.MatchThreshold, limit)
	if len(matches) == 0 {
		metrics.FuzzyMatches.WithLabelValues("product", "miss").Inc()
		return []models.ProductRecord{}, nil
	}
	metrics.FuzzyMatches.WithLabelValues("product", "hit").Inc()

	return s.productsByNames(ctx, fuzzy.Names(matches), limit)
}

func (s *Service) structuredSearch(ctx context.Context, attrs nlu.ProductAttributes, limit int) ([]models.ProductRecord, error) {
	where := []string{"name ILIKE '%' || $1 || '%'"}
	args := []interface{}{strings.TrimSpace(attrs.Product)}

	if color := strings.TrimSpace(attrs.Color); color != "" {
		where = append(where, fmt.Sprintf("color ILIKE '%%' || $%d || '%%'", len(args)+1))
		args = append(args, color)
	}
	for _, attr := range attrs.OtherAttributes {
		if attr = strings.TrimSpace(attr); attr != "" {
			where = append(where, fmt.Sprintf("spec ILIKE '%%' || $%d || '%%'", len(args)+1))
			args = append(args, attr)
		}
	}

	query := fmt.Sprintf(`SELECT id, name, color, spec, unit_price, stock
	FROM products
	WHERE %s
	ORDER BY name
	LIMIT $%d`, strings.Join(where, " AND "), len(args)+1)
	args = append(args, limit)

	return s.queryProducts(ctx, query, args...)
}

func (s *Service) productsByNames(ctx context.Context, names []string, limit int) ([]models.ProductRecord, error) {
	placeholders := make([]string, len(names))
	args := make([]interface{}, len(names))
	for i, name := range names {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
		args[i] = name
	}

	query := fmt.Sprintf(`SELECT id, name, color, spec, unit_price, stock
	FROM products
	WHERE name IN (%s)
	ORDER BY name
	LIMIT $%d`, strings.Join(placeholders, ","), len(args)+1)
	args = append(args, limit)

	return s.queryProducts(ctx, query, args...)
}

func (s *Service) queryProducts(ctx context.Context, query string, args ...interface{}) ([]models.ProductRecord, error) {
	queryCtx, cancel := context.WithTimeout(ctx, s.config.QueryTimeout)
	defer cancel()

	rows, err := s.db.QueryContext(queryCtx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}
	defer rows.Close()

	var out []models.ProductRecord
	for rows.Next() {
		var p models.ProductRecord
		var priceText string
		if err := rows.Scan(&p.ID, &p.Name, &p.Color, &p.Spec, &priceText, &p.Stock); err != nil {
			return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
		}
		price, err := parsePrice(priceText)
		if err != nil {
			return nil, fmt.Errorf("%w: product %d has unit price %q", ErrCatalogUnavailable, p.ID, priceText)
		}
		p.UnitPrice = price
		out = append(out, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrCatalogUnavailable, err)
	}

	if out == nil {
		out = []models.ProductRecord{}
	}
	return out, nil
}

// parsePrice converts a storage-reported numeric string to a 2-decimal
// currency value without passing through float.
func parsePrice(s string) (decimal.Decimal, error) {
	d, err := decimal.NewFromString(strings.TrimSpace(s))
	if err != nil {
		return decimal.Decimal{}, err
	}
	return d.Round(2), nil
}
