// internal/resolver/normalizer.go
package resolver

import (
	"encoding/json"
	"strconv"
	"strings"
	"time"

	"store-assistant/internal/common/logger"
	"store-assistant/internal/common/metrics"
	"store-assistant/internal/models"
)

var dateLayouts = []string{"2006-01-02", "02/01/2006"}

// Normalizer coerces the raw, untrusted entity mapping produced by the NLU
// service into a typed Filter. Policy is log-and-continue: a single entity
// that fails coercion is dropped, the rest of the filter survives.
type Normalizer struct {
	config *Config
	logger logger.Logger
}

func NewNormalizer(config *Config, log logger.Logger) *Normalizer {
	return &Normalizer{config: config, logger: log}
}

func (n *Normalizer) Normalize(raw map[string]interface{}) Filter {
	f := Filter{
		SortOrder: "desc",
		Limit:     n.config.DefaultLimit,
	}

	for key, value := range raw {
		switch key {
		case "status":
			s, ok := asString(value)
			if !ok {
				n.drop(key, value)
				continue
			}
			s = strings.ToLower(strings.TrimSpace(s))
			if !models.ValidStatus(s) {
				n.drop(key, value)
				continue
			}
			f.Status = s

		case "date":
			s, ok := asString(value)
			if !ok {
				n.drop(key, value)
				continue
			}
			parsed, ok := parseDate(s)
			if !ok {
				n.drop(key, value)
				continue
			}
			f.Date = &parsed

		case "total":
			v, ok := asFloat(value)
			if !ok || v < 0 {
				n.drop(key, value)
				continue
			}
			f.Total = &v

		case "company_name":
			f.CompanyName = n.substring(key, value)

		case "buyer_area_name":
			f.BuyerArea = n.substring(key, value)

		case "order_option":
			f.OrderOption = n.substring(key, value)

		case "order_id":
			v, ok := asInt(value)
			if !ok || v <= 0 {
				n.drop(key, value)
				continue
			}
			id := int64(v)
			f.OrderID = &id

		case "product_name":
			f.ProductName = n.substring(key, value)

		case "product_count":
			v, ok := asInt(value)
			if !ok || v < 0 {
				n.drop(key, value)
				continue
			}
			f.ProductCount = &v

		case "product_quantity":
			v, ok := asInt(value)
			if !ok || v < 0 {
				n.drop(key, value)
				continue
			}
			f.ProductQuantity = &v

		case "sort_order":
			s, ok := asString(value)
			if !ok {
				n.drop(key, value)
				continue
			}
			switch strings.ToLower(strings.TrimSpace(s)) {
			case "asc":
				f.SortOrder = "asc"
			case "desc":
				f.SortOrder = "desc"
			default:
				n.drop(key, value)
			}

		case "limit":
			v, ok := asInt(value)
			if !ok {
				n.drop(key, value)
				continue
			}
			if v <= 0 {
				// zero or negative falls back to the default, not an error
				continue
			}
			if v > n.config.MaxLimit {
				v = n.config.MaxLimit
			}
			f.Limit = v

		default:
			// unknown keys are expected as the NLU schema evolves
			n.logger.Debug("ignoring unknown entity", map[string]interface{}{
				"entity": key,
			})
		}
	}

	return f
}

// substring normalizes a case-insensitive substring entity, dropping
// non-string or blank values.
func (n *Normalizer) substring(key string, value interface{}) string {
	s, ok := asString(value)
	if !ok {
		n.drop(key, value)
		return ""
	}
	return strings.TrimSpace(s)
}

func (n *Normalizer) drop(key string, value interface{}) {
	metrics.EntitiesDropped.WithLabelValues(key).Inc()
	n.logger.Warn("dropping entity that failed validation", map[string]interface{}{
		"entity": key,
		"value":  value,
	})
}

func asString(v interface{}) (string, bool) {
	s, ok := v.(string)
	if !ok || strings.TrimSpace(s) == "" {
		return "", false
	}
	return s, true
}

func asFloat(v interface{}) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case int:
		return float64(t), true
	case json.Number:
		f, err := t.Float64()
		return f, err == nil
	case string:
		f, err := strconv.ParseFloat(strings.TrimSpace(t), 64)
		return f, err == nil
	}
	return 0, false
}

func asInt(v interface{}) (int, bool) {
	switch t := v.(type) {
	case int:
		return t, true
	case float64:
		// JSON numbers arrive as float64; only whole values are integers
		if t != float64(int(t)) {
			return 0, false
		}
		return int(t), true
	case json.Number:
		i, err := t.Int64()
		return int(i), err == nil
	case string:
		i, err := strconv.Atoi(strings.TrimSpace(t))
		return i, err == nil
	}
	return 0, false
}

func parseDate(s string) (time.Time, bool) {
	s = strings.TrimSpace(s)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}
