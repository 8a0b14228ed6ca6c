// Package ollama implements the reasoning provider backed by a local Ollama
// server's /api/generate endpoint.
package ollama

import (
	"bytes"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/indogap/indogap/internal/config"
	"github.com/indogap/indogap/internal/infrastructure/monitoring/logging"
	"github.com/indogap/indogap/internal/infrastructure/monitoring/prometheus"
	"github.com/indogap/indogap/pkg/errors"
)

const providerLabel = "ollama"

// Deps carries the client's collaborators.  Both default when nil.
type Deps struct {
	Logger  logging.Logger
	Metrics *prometheus.AnalysisMetrics
}

// Client calls a local Ollama server.  It satisfies the scorer's
// ReasoningProvider port.
type Client struct {
	cfg        config.OllamaConfig
	httpClient *http.Client
	logger     logging.Logger
	metrics    *prometheus.AnalysisMetrics
}

// NewClient applies configuration defaults and constructs the client.
func NewClient(cfg config.OllamaConfig, deps Deps) *Client {
	if cfg.BaseURL == "" {
		cfg.BaseURL = config.DefaultOllamaBaseURL
	}
	if cfg.Model == "" {
		cfg.Model = config.DefaultOllamaModel
	}
	if cfg.Temperature == 0 {
		cfg.Temperature = config.DefaultOllamaTemperature
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = config.DefaultOllamaTimeout
	}

	c := &Client{
		cfg:        cfg,
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
	return c
}

// Model returns the configured model name.
func (c *Client) Model() string { return c.cfg.Model }

type generateRequest struct {
	Model   string          `json:"model"`
	Prompt  string          `json:"prompt"`
	System  string          `json:"system,omitempty"`
	Stream  bool            `json:"stream"`
	Options generateOptions `json:"options"`
}

type generateOptions struct {
	Temperature float64 `json:"temperature"`
}

type generateResponse struct {
	Response  string `json:"response"`
	EvalCount int    `json:"eval_count"`
	Done      bool   `json:"done"`
}

type tagsResponse struct {
	Models []struct {
		Name string `json:"name"`
	} `json:"models"`
}

// Complete generates one non-streaming answer for the prompt.  The returned
// text is whitespace-trimmed.
func (c *Client) Complete(ctx context.Context, systemPrompt, userPrompt string) (string, error) {
	if userPrompt == "" {
		return "", errors.New(errors.ErrCodeEmptyInput, "empty prompt")
	}

	body, err := json.Marshal(generateRequest{
		Model:   c.cfg.Model,
		Prompt:  userPrompt,
		System:  systemPrompt,
		Stream:  false,
		Options: generateOptions{Temperature: c.cfg.Temperature},
	})
	if err != nil {
		return "", errors.Wrap(err, errors.ErrCodeCompletionFailed, "encode generate request")
	}

	start := time.Now()
	text, evalCount, err := c.generate(ctx, body)
	c.metrics.ProviderDuration.WithLabelValues(providerLabel).Observe(time.Since(start).Seconds())
	if err != nil {
		c.metrics.ProviderRequestsTotal.WithLabelValues(providerLabel, "error").Inc()
		return "", err
	}
	c.metrics.ProviderRequestsTotal.WithLabelValues(providerLabel, "ok").Inc()

	c.logger.Debug("completion generated",
		logging.String("model", c.cfg.Model),
		logging.Int("eval_count", evalCount),
		logging.Duration("elapsed", time.Since(start)))
	return text, nil
}

func (c *Client) generate(ctx context.Context, body []byte) (string, int, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		c.cfg.BaseURL+"/api/generate", bytes.NewReader(body))
	if err != nil {
		return "", 0, errors.Wrap(err, errors.ErrCodeCompletionFailed, "build generate request")
	}
	req.Header.Set("Content-Type", "application/json")

	httpResp, err := c.httpClient.Do(req)
	if err != nil {
		return "", 0, errors.Wrap(err, errors.ErrCodeCompletionFailed, "generate request failed")
	}
	defer httpResp.Body.Close()

	data, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return "", 0, errors.Wrap(err, errors.ErrCodeCompletionFailed, "read generate response")
	}
	if httpResp.StatusCode != http.StatusOK {
		return "", 0, errors.Newf(errors.ErrCodeCompletionFailed,
			"generate request returned HTTP %d: %s", httpResp.StatusCode, strings.TrimSpace(string(data)))
	}

	var resp generateResponse
	if err := json.Unmarshal(data, &resp); err != nil {
		return "", 0, errors.Wrap(err, errors.ErrCodeCompletionFailed, "decode generate response")
	}
	return strings.TrimSpace(resp.Response), resp.EvalCount, nil
}

// Available reports whether the Ollama server answers on /api/tags.
func (c *Client) Available(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/api/tags", nil)
	if err != nil {
		return false
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

// ListModels returns the model names the server has pulled.
func (c *Client) ListModels(ctx context.Context) ([]string, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.cfg.BaseURL+"/api/tags", nil)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCompletionFailed, "build tags request")
	}
	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCompletionFailed, "tags request failed")
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, errors.Newf(errors.ErrCodeCompletionFailed, "tags request returned HTTP %d", resp.StatusCode)
	}
	var tags tagsResponse
	if err := json.NewDecoder(resp.Body).Decode(&tags); err != nil {
		return nil, errors.Wrap(err, errors.ErrCodeCompletionFailed, "decode tags response")
	}

	names := make([]string, 0, len(tags.Models))
	for _, m := range tags.Models {
		names = append(names, m.Name)
	}
	return names, nil
}
