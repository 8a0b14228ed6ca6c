package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indogap/indogap/internal/config"
	"github.com/indogap/indogap/pkg/errors"
)

func testConfig(baseURL string) config.OpenAIConfig {
	return config.OpenAIConfig{
		APIKey:     "test-key",
		BaseURL:    baseURL,
		Model:      "small",
		Timeout:    5 * time.Second,
		MaxRetries: 3,
		BatchSize:  100,
	}
}

func embeddingHandler(t *testing.T, vectors map[string][]float64) http.HandlerFunc {
	t.Helper()
	return func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/embeddings", r.URL.Path)
		assert.Equal(t, "Bearer test-key", r.Header.Get("Authorization"))

		var req embeddingRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))

		var resp embeddingResponse
		for i, text := range req.Input {
			vec, ok := vectors[text]
			require.True(t, ok, "unexpected input %q", text)
			resp.Data = append(resp.Data, struct {
				Index     int       `json:"index"`
				Embedding []float64 `json:"embedding"`
			}{Index: i, Embedding: vec})
		}
		resp.Usage.TotalTokens = 7 * len(req.Input)
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}
}

func TestNewClientValidation(t *testing.T) {
	_, err := NewClient(config.OpenAIConfig{}, Deps{})
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeInvalidParam))
}

func TestNewClientDefaults(t *testing.T) {
	c, err := NewClient(config.OpenAIConfig{APIKey: "k"}, Deps{})
	require.NoError(t, err)
	assert.Equal(t, "text-embedding-3-small", c.ModelName())
	assert.Equal(t, 1536, c.Dimensions())

	c, err = NewClient(config.OpenAIConfig{APIKey: "k", Model: "large"}, Deps{})
	require.NoError(t, err)
	assert.Equal(t, "text-embedding-3-large", c.ModelName())
	assert.Equal(t, 3072, c.Dimensions())

	// Unknown aliases fall back to small.
	c, err = NewClient(config.OpenAIConfig{APIKey: "k", Model: "bogus"}, Deps{})
	require.NoError(t, err)
	assert.Equal(t, "text-embedding-3-small", c.ModelName())

	// Explicit dimensions win over the model default.
	c, err = NewClient(config.OpenAIConfig{APIKey: "k", Dimensions: 256}, Deps{})
	require.NoError(t, err)
	assert.Equal(t, 256, c.Dimensions())
}

func TestEmbedNormalizes(t *testing.T) {
	srv := httptest.NewServer(embeddingHandler(t, map[string][]float64{
		"upi payments": {3, 4},
	}))
	defer srv.Close()

	c, err := NewClient(testConfig(srv.URL), Deps{})
	require.NoError(t, err)

	vec, err := c.Embed(context.Background(), "upi payments")
	require.NoError(t, err)
	assert.InDelta(t, 0.6, vec[0], 1e-9)
	assert.InDelta(t, 0.8, vec[1], 1e-9)
}

func TestEmbedEmptyText(t *testing.T) {
	c, err := NewClient(testConfig("http://unused"), Deps{})
	require.NoError(t, err)

	_, err = c.Embed(context.Background(), "")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeEmptyInput))
}

func TestEmbedBatchSplitsAndOrders(t *testing.T) {
	var requests atomic.Int32
	inner := embeddingHandler(t, map[string][]float64{
		"a": {1, 0}, "b": {0, 1}, "c": {1, 1}, "d": {2, 0}, "e": {0, 3},
	})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		requests.Add(1)
		inner(w, r)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.BatchSize = 2
	c, err := NewClient(cfg, Deps{})
	require.NoError(t, err)

	vecs, err := c.EmbedBatch(context.Background(), []string{"a", "b", "c", "d", "e"})
	require.NoError(t, err)
	require.Len(t, vecs, 5)
	assert.Equal(t, int32(3), requests.Load())

	// Order follows the input, each vector L2-normalized.
	assert.InDelta(t, 1.0, vecs[0][0], 1e-9)
	assert.InDelta(t, 1.0, vecs[1][1], 1e-9)
	assert.InDelta(t, 1.0, vecs[3][0], 1e-9)
	assert.InDelta(t, 1.0, vecs[4][1], 1e-9)
}

func TestEmbedRetriesServerErrors(t *testing.T) {
	var attempts atomic.Int32
	success := embeddingHandler(t, map[string][]float64{"x": {1, 0}})
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if attempts.Add(1) < 3 {
			http.Error(w, `{"error":{"message":"overloaded"}}`, http.StatusInternalServerError)
			return
		}
		success(w, r)
	}))
	defer srv.Close()

	c, err := NewClient(testConfig(srv.URL), Deps{})
	require.NoError(t, err)

	vec, err := c.Embed(context.Background(), "x")
	require.NoError(t, err)
	assert.Equal(t, int32(3), attempts.Load())
	assert.InDelta(t, 1.0, vec[0], 1e-9)
}

func TestEmbedExhaustsRetries(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		http.Error(w, "busy", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.MaxRetries = 2
	c, err := NewClient(cfg, Deps{})
	require.NoError(t, err)

	_, err = c.Embed(context.Background(), "x")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeEmbeddingFailed))
	assert.Equal(t, int32(2), attempts.Load())
}

func TestEmbedDoesNotRetryClientErrors(t *testing.T) {
	var attempts atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		attempts.Add(1)
		http.Error(w, `{"error":{"message":"invalid model"}}`, http.StatusBadRequest)
	}))
	defer srv.Close()

	c, err := NewClient(testConfig(srv.URL), Deps{})
	require.NoError(t, err)

	_, err = c.Embed(context.Background(), "x")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid model")
	assert.Equal(t, int32(1), attempts.Load())
}

func TestAdaOmitsDimensions(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var raw map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&raw))
		assert.NotContains(t, raw, "dimensions")

		var resp embeddingResponse
		resp.Data = append(resp.Data, struct {
			Index     int       `json:"index"`
			Embedding []float64 `json:"embedding"`
		}{Index: 0, Embedding: []float64{1}})
		require.NoError(t, json.NewEncoder(w).Encode(resp))
	}))
	defer srv.Close()

	cfg := testConfig(srv.URL)
	cfg.Model = "ada"
	c, err := NewClient(cfg, Deps{})
	require.NoError(t, err)

	_, err = c.Embed(context.Background(), "x")
	require.NoError(t, err)
}

func TestEmbedBatchEmptyInput(t *testing.T) {
	c, err := NewClient(testConfig("http://unused"), Deps{})
	require.NoError(t, err)

	vecs, err := c.EmbedBatch(context.Background(), nil)
	require.NoError(t, err)
	assert.Nil(t, vecs)
}
