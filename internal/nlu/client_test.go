// internal/nlu/client_test.go
package nlu

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"store-assistant/internal/common/config"
	"store-assistant/internal/common/logger"
)

func newTestClient(t *testing.T, baseURL string) *Client {
	return NewClient(&config.NLUConfig{
		BaseURL:    baseURL,
		APIKey:     "test-key",
		Timeout:    2000,
		MaxRetries: 2,
	}, logger.NewTestLogger(t))
}

func jsonHandler(t *testing.T, wantPath, body string) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, wantPath, r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(body))
	}
}

func TestExtractOrderEntities_Success(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(t, "/api/ai/extract-entities",
		`{"status": "void", "total": 100.2, "limit": 5}`))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	entities, ok := client.ExtractOrderEntities(context.Background(), "void orders around 100")

	require.True(t, ok)
	assert.Equal(t, "void", entities["status"])
	assert.Equal(t, 100.2, entities["total"])
}

func TestExtractOrderEntities_SchemaViolationFallsBack(t *testing.T) {
	// total as a bool violates the entity schema
	srv := httptest.NewServer(jsonHandler(t, "/api/ai/extract-entities",
		`{"total": true}`))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	entities, ok := client.ExtractOrderEntities(context.Background(), "orders")

	assert.False(t, ok)
	assert.Empty(t, entities)
}

func TestExtractOrderEntities_MalformedBodyFallsBack(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(t, "/api/ai/extract-entities", `not json`))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	_, ok := client.ExtractOrderEntities(context.Background(), "orders")

	assert.False(t, ok)
}

func TestExtractOrderEntities_UnknownKeysTolerated(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(t, "/api/ai/extract-entities",
		`{"status": "pending", "mood": "urgent"}`))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	entities, ok := client.ExtractOrderEntities(context.Background(), "orders")

	require.True(t, ok)
	assert.Equal(t, "pending", entities["status"])
	assert.Equal(t, "urgent", entities["mood"])
}

func TestExtractProductAttributes_Success(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(t, "/api/ai/extract-product",
		`{"product": "hammer", "color": "blue", "other_attributes": ["rubber grip"]}`))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	attrs, ok := client.ExtractProductAttributes(context.Background(), "blue hammer with rubber grip")

	require.True(t, ok)
	assert.Equal(t, "hammer", attrs.Product)
	assert.Equal(t, "blue", attrs.Color)
	assert.Equal(t, []string{"rubber grip"}, attrs.OtherAttributes)
}

func TestExtractProductAttributes_MissingProductFallsBack(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(t, "/api/ai/extract-product",
		`{"color": "blue"}`))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	attrs, ok := client.ExtractProductAttributes(context.Background(), "something blue")

	assert.False(t, ok)
	assert.Empty(t, attrs.Product)
}

func TestClassify_Success(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(t, "/api/ai/classify",
		`{"intent": "greeting", "category": "general", "response": "Hello!"}`))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	cls, ok := client.Classify(context.Background(), "hi")

	require.True(t, ok)
	assert.Equal(t, CategoryGeneral, cls.Category)
	assert.Equal(t, "Hello!", cls.Response)
}

func TestPost_RetriesServerErrors(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if atomic.AddInt32(&calls, 1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.Write([]byte(`{"status": "pending"}`))
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	entities, ok := client.ExtractOrderEntities(context.Background(), "orders")

	require.True(t, ok)
	assert.Equal(t, "pending", entities["status"])
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestPost_ExhaustedRetriesFallBack(t *testing.T) {
	var calls int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		atomic.AddInt32(&calls, 1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	client := newTestClient(t, srv.URL)
	entities, ok := client.ExtractOrderEntities(context.Background(), "orders")

	assert.False(t, ok)
	assert.Empty(t, entities)
	// initial attempt plus MaxRetries
	assert.Equal(t, int32(3), atomic.LoadInt32(&calls))
}

func TestPost_ServiceDownFallsBack(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close() // nothing listening

	client := newTestClient(t, srv.URL)
	_, ok := client.ExtractOrderEntities(context.Background(), "orders")

	assert.False(t, ok)
}

func TestPost_ContextCancelled(t *testing.T) {
	srv := httptest.NewServer(jsonHandler(t, "/api/ai/extract-entities", `{}`))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	client := newTestClient(t, srv.URL)
	_, ok := client.ExtractOrderEntities(ctx, "orders")

	assert.False(t, ok)
}
