// Package openai implements the embedding provider backed by the OpenAI
// embeddings API.
package openai

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"math"
	"net/http"
	"time"

	"github.com/indogap/indogap/internal/config"
	"github.com/indogap/indogap/internal/infrastructure/monitoring/logging"
	"github.com/indogap/indogap/internal/infrastructure/monitoring/prometheus"
	"github.com/indogap/indogap/pkg/errors"
)

const providerLabel = "openai"

// maxInputRunes caps the text sent per embedding request.  Longer inputs are
// truncated rather than rejected.
const maxInputRunes = 8191

// retryBaseDelay is the initial backoff between retry attempts.
const retryBaseDelay = 500 * time.Millisecond

// modelInfo describes one embedding model alias.
type modelInfo struct {
	name       string
	dimensions int
}

// models maps the short aliases accepted in configuration to concrete API
// model names.
var models = map[string]modelInfo{
	"small": {name: "text-embedding-3-small", dimensions: 1536},
	"large": {name: "text-embedding-3-large", dimensions: 3072},
	"ada":   {name: "text-embedding-ada-002", dimensions: 1536},
}

// Deps carries the client's collaborators.  Both default when nil.
type Deps struct {
	Logger  logging.Logger
	Metrics *prometheus.AnalysisMetrics
}

// Client calls the OpenAI embeddings endpoint.  It satisfies the similarity
// engine's EmbeddingProvider port.
type Client struct {
	cfg        config.OpenAIConfig
	model      modelInfo
	dimensions int
	httpClient *http.Client
	logger     logging.Logger
	metrics    *prometheus.AnalysisMetrics
}

// NewClient validates the configuration and constructs the client.  Model
// aliases are "small", "large", and "ada"; an unknown alias falls back to
// "small" the way the configuration default does.
func NewClient(cfg config.OpenAIConfig, deps Deps) (*Client, error) {
	if cfg.APIKey == "" {
		return nil, errors.InvalidParam("openai api key is required")
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = config.DefaultOpenAIBaseURL
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = config.DefaultOpenAITimeout
	}
	if cfg.MaxRetries <= 0 {
		cfg.MaxRetries = config.DefaultMaxRetries
	}
	if cfg.BatchSize <= 0 {
		cfg.BatchSize = config.DefaultBatchSize
	}

	model, ok := models[cfg.Model]
	if !ok {
		model = models[config.DefaultEmbeddingModel]
	}
	dimensions := cfg.Dimensions
	if dimensions <= 0 {
		dimensions = model.dimensions
	}

	c := &Client{
		cfg:        cfg,
		model:      model,
		dimensions: dimensions,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     deps.Logger,
		metrics:    deps.Metrics,
	}
	if c.logger == nil {
		c.logger = logging.NewNopLogger()
	}
	if c.metrics == nil {
		c.metrics = prometheus.NewNopAnalysisMetrics()
	}
	return c, nil
}

// ModelName returns the concrete API model in use.
func (c *Client) ModelName() string { return c.model.name }

// Dimensions returns the vector width the client requests.
func (c *Client) Dimensions() int { return c.dimensions }

// Embed produces the L2-normalized embedding for one text.
func (c *Client) Embed(ctx context.Context, text string) ([]float64, error) {
	vecs, err := c.EmbedBatch(ctx, []string{text})
	if err != nil {
		return nil, err
	}
	return vecs[0], nil
}

// EmbedBatch produces L2-normalized embeddings for every text, splitting the
// input into configured batch sizes.  Output order matches input order.
func (c *Client) EmbedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	if len(texts) == 0 {
		return nil, nil
	}
	for i, t := range texts {
		if t == "" {
			return nil, errors.Newf(errors.ErrCodeEmptyInput, "empty text at index %d", i)
		}
	}

	out := make([][]float64, 0, len(texts))
	for start := 0; start < len(texts); start += c.cfg.BatchSize {
		end := start + c.cfg.BatchSize
		if end > len(texts) {
			end = len(texts)
		}
		vecs, err := c.embedBatch(ctx, texts[start:end])
		if err != nil {
			return nil, err
		}
		out = append(out, vecs...)
	}
	return out, nil
}

type embeddingRequest struct {
	Model      string   `json:"model"`
	Input      []string `json:"input"`
	Dimensions int      `json:"dimensions,omitempty"`
}

type embeddingResponse struct {
	Data []struct {
		Index     int       `json:"index"`
		Embedding []float64 `json:"embedding"`
	} `json:"data"`
	Usage struct {
		TotalTokens int `json:"total_tokens"`
	} `json:"usage"`
}

type apiError struct {
	Error struct {
		Message string `json:"message"`
		Type    string `json:"type"`
	} `json:"error"`
}

func (c *Client) embedBatch(ctx context.Context, texts []string) ([][]float64, error) {
	input := make([]string, len(texts))
	for i, t := range texts {
		input[i] = truncateRunes(t, maxInputRunes)
	}
	body, err := json.Marshal(embeddingRequest{
		Model:      c.model.name,
		Input:      input,
		Dimensions: c.requestDimensions(),
	})
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeEmbeddingFailed, "encode embedding request")
	}

	start := time.Now()
	resp, err := c.doWithRetry(ctx, body)
	c.metrics.ProviderDuration.WithLabelValues(providerLabel).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.ProviderRequestsTotal.WithLabelValues(providerLabel, "error").Inc()
		return nil, err
	}
	c.metrics.ProviderRequestsTotal.WithLabelValues(providerLabel, "ok").Inc()

	if len(resp.Data) != len(texts) {
		return nil, errors.Newf(errors.ErrCodeEmbeddingFailed,
			"embedding response has %d vectors for %d inputs", len(resp.Data), len(texts))
	}

	// The API documents index-ordered data; honor the index field anyway.
	out := make([][]float64, len(texts))
	for _, item := range resp.Data {
		if item.Index < 0 || item.Index >= len(out) {
			return nil, errors.Newf(errors.ErrCodeEmbeddingFailed, "embedding index %d out of range", item.Index)
		}
		out[item.Index] = normalize(item.Embedding)
	}

	c.logger.Debug("embeddings generated",
		logging.String("model", c.model.name),
		logging.Int("count", len(texts)),
		logging.Int("total_tokens", resp.Usage.TotalTokens))
	return out, nil
}

// requestDimensions returns the dimensions parameter to send.  The legacy
// ada model rejects the parameter, so it is omitted there.
func (c *Client) requestDimensions() int {
	if c.model.name == models["ada"].name {
		return 0
	}
	return c.dimensions
}

func (c *Client) doWithRetry(ctx context.Context, body []byte) (*embeddingResponse, error) {
	var lastErr error
	for attempt := 0; attempt < c.cfg.MaxRetries; attempt++ {
		if attempt > 0 {
			delay := retryBaseDelay * time.Duration(1<<(attempt-1))
			select {
			case <-ctx.Done():
				return nil, errors.Wrap(ctx.Err(), errors.ErrCodeProviderTimeout, "embedding request canceled")
			case <-time.After(delay):
			}
			c.logger.Warn("retrying embedding request",
				logging.Int("attempt", attempt+1),
				logging.Err(lastErr))
		}

		resp, retryable, err := c.doOnce(ctx, body)
		if err == nil {
			return resp, nil
		}
		lastErr = err
		if !retryable {
			return nil, err
		}
	}
	return nil, lastErr
}

// doOnce performs one request.  The second return reports whether the
// failure is worth retrying: transport errors, 429, and 5xx are; everything
// else is terminal.
func (c *Client) doOnce(ctx context.Context, body []byte) (*embeddingResponse, bool, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/embeddings", bytes.NewReader(body))
	if err != nil {
		return nil, false, errors.Wrap(err, errors.ErrCodeEmbeddingFailed, "build embedding request")
	}
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Authorization", "Bearer "+c.cfg.APIKey)

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, errors.Wrap(err, errors.ErrCodeEmbeddingFailed, "embedding request failed")
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, true, errors.Wrap(err, errors.ErrCodeEmbeddingFailed, "read embedding response")
	}

	if httpResp.StatusCode != http.StatusOK {
		retryable := httpResp.StatusCode == http.StatusTooManyRequests || httpResp.StatusCode >= 500
		msg := fmt.Sprintf("embedding request returned HTTP %d", httpResp.StatusCode)
		var ae apiError
		if json.Unmarshal(data, &ae) == nil && ae.Error.Message != "" {
			msg = fmt.Sprintf("%s: %s", msg, ae.Error.Message)
		}
		return nil, retryable, errors.New(errors.ErrCodeEmbeddingFailed, msg)
	}

	var resp embeddingResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return nil, false, errors.Wrap(err, errors.ErrCodeEmbeddingFailed, "decode embedding response")
	}
	return &resp, false, nil
}

func truncateRunes(s string, limit int) string {
	runes := []rune(s)
	if len(runes) <= limit {
		return s
	}
	return string(runes[:limit])
}

// normalize L2-normalizes the vector in place.  Zero vectors pass through
// unchanged.
func normalize(vec []float64) []float64 {
	var sum float64
	for _, v := range vec {
		sum += v * v
	}
	if sum == 0 {
		return vec
	}
	norm := math.Sqrt(sum)
	for i := range vec {
		vec[i] /= norm
	}
	return vec
}
