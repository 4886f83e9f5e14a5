// internal/nlu/client.go
package nlu

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/xeipuuv/gojsonschema"

	"store-assistant/internal/common/config"
	"store-assistant/internal/common/logger"
	"store-assistant/internal/common/metrics"
)

var (
	ErrNLUFailed  = errors.New("NLU_UNAVAILABLE")
	ErrNLUTimeout = errors.New("NLU_TIMEOUT")
)

// Client talks to the external text-understanding service. Every public
// method follows the same two-outcome contract: (payload, true) when the
// service produced a usable structured document, or (zero value, false) for
// any transport, decode or schema failure. A raw fault never escapes: the
// caller proceeds with defaults instead.
type Client struct {
	config *config.NLUConfig
	client *http.Client
	logger logger.Logger
}

func NewClient(cfg *config.NLUConfig, log logger.Logger) *Client {
	return &Client{
		config: cfg,
		client: &http.Client{
			Timeout: config.GetDuration(cfg.Timeout),
		},
		logger: log.WithFields(map[string]interface{}{"component": "nlu"}),
	}
}

// ExtractOrderEntities asks the service to pull sales-order filter entities
// out of a free-text question.
func (c *Client) ExtractOrderEntities(ctx context.Context, question string) (map[string]interface{}, bool) {
	body, err := c.post(ctx, "/api/ai/extract-entities", question)
	if err != nil {
		return c.fallback(err), false
	}

	entities, err := decodeValidated[map[string]interface{}](body, orderEntitySchema)
	if err != nil {
		return c.fallback(err), false
	}
	return entities, true
}

// ExtractProductAttributes asks the service to decompose a product question
// into product term, color and free attributes.
func (c *Client) ExtractProductAttributes(ctx context.Context, question string) (ProductAttributes, bool) {
	body, err := c.post(ctx, "/api/ai/extract-product", question)
	if err != nil {
		c.fallback(err)
		return ProductAttributes{}, false
	}

	attrs, err := decodeValidated[ProductAttributes](body, productAttributeSchema)
	if err != nil {
		c.fallback(err)
		return ProductAttributes{}, false
	}
	return attrs, true
}

// Classify routes a question into sales-order, product or general chat.
func (c *Client) Classify(ctx context.Context, question string) (Classification, bool) {
	body, err := c.post(ctx, "/api/ai/classify", question)
	if err != nil {
		c.fallback(err)
		return Classification{}, false
	}

	cls, err := decodeValidated[Classification](body, classificationSchema)
	if err != nil {
		c.fallback(err)
		return Classification{}, false
	}
	return cls, true
}

// post sends the question with retry and backoff. The request body carries
// the raw question only; the extraction schema lives server-side per route.
func (c *Client) post(ctx context.Context, path, question string) ([]byte, error) {
	payload, _ := json.Marshal(map[string]interface{}{"query": question})

	var lastErr error
	for attempt := 0; attempt <= c.config.MaxRetries; attempt++ {
		if attempt > 0 {
			backoff := time.Duration(100*(1<<(attempt-1))) * time.Millisecond
			select {
			case <-time.After(backoff):
			case <-ctx.Done():
				return nil, ErrNLUTimeout
			}
		}

		req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.config.BaseURL+path, bytes.NewReader(payload))
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrNLUFailed, err)
		}
		req.Header.Set("Content-Type", "application/json")
		if c.config.APIKey != "" {
			req.Header.Set("Authorization", "Bearer "+c.config.APIKey)
		}

		resp, err := c.client.Do(req)
		if ctx.Err() != nil || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
			return nil, ErrNLUTimeout
		}
		if err != nil {
			lastErr = err
			continue
		}

		body, err := io.ReadAll(resp.Body)
		resp.Body.Close()
		if err != nil {
			lastErr = err
			continue
		}
		if resp.StatusCode != http.StatusOK {
			lastErr = fmt.Errorf("status %d", resp.StatusCode)
			continue
		}
		return body, nil
	}

	return nil, fmt.Errorf("%w: %v", ErrNLUFailed, lastErr)
}

// fallback records the degradation and returns an empty entity set.
func (c *Client) fallback(err error) map[string]interface{} {
	metrics.NLUFallbacks.Inc()
	c.logger.Warn("nlu call degraded to fallback", map[string]interface{}{
		"error": err.Error(),
	})
	return map[string]interface{}{}
}

// decodeValidated validates body against schema, then unmarshals it.
func decodeValidated[T any](body []byte, schema string) (T, error) {
	var zero T

	result, err := gojsonschema.Validate(
		gojsonschema.NewStringLoader(schema),
		gojsonschema.NewBytesLoader(body),
	)
	if err != nil {
		return zero, fmt.Errorf("schema validation: %w", err)
	}
	if !result.Valid() {
		return zero, fmt.Errorf("schema validation: %v", result.Errors())
	}

	var out T
	if err := json.Unmarshal(body, &out); err != nil {
		return zero, fmt.Errorf("decode: %w", err)
	}
	return out, nil
}
