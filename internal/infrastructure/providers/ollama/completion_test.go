package ollama

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/indogap/indogap/internal/config"
	"github.com/indogap/indogap/pkg/errors"
)

func testConfig(baseURL string) config.OllamaConfig {
	return config.OllamaConfig{
		BaseURL:     baseURL,
		Model:       "llama3",
		Temperature: 0.3,
		Timeout:     5 * time.Second,
	}
}

func TestNewClientDefaults(t *testing.T) {
	c := NewClient(config.OllamaConfig{}, Deps{})
	assert.Equal(t, config.DefaultOllamaModel, c.Model())
	assert.Equal(t, config.DefaultOllamaBaseURL, c.cfg.BaseURL)
	assert.Equal(t, config.DefaultOllamaTemperature, c.cfg.Temperature)
}

func TestComplete(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/generate", r.URL.Path)
		assert.Equal(t, http.MethodPost, r.Method)

		var req generateRequest
		require.NoError(t, json.NewDecoder(r.Body).Decode(&req))
		assert.Equal(t, "llama3", req.Model)
		assert.Equal(t, "You are an evaluator.", req.System)
		assert.Equal(t, "Rate this concept.", req.Prompt)
		assert.False(t, req.Stream)
		assert.InDelta(t, 0.3, req.Options.Temperature, 1e-9)

		require.NoError(t, json.NewEncoder(w).Encode(generateResponse{
			Response:  "  8 - strong alignment with local demand.\n",
			EvalCount: 42,
			Done:      true,
		}))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), Deps{})
	text, err := c.Complete(context.Background(), "You are an evaluator.", "Rate this concept.")
	require.NoError(t, err)
	assert.Equal(t, "8 - strong alignment with local demand.", text)
}

func TestCompleteEmptyPrompt(t *testing.T) {
	c := NewClient(testConfig("http://unused"), Deps{})
	_, err := c.Complete(context.Background(), "system", "")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeEmptyInput))
}

func TestCompleteServerError(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "model not found", http.StatusNotFound)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), Deps{})
	_, err := c.Complete(context.Background(), "", "prompt")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeCompletionFailed))
	assert.Contains(t, err.Error(), "model not found")
}

func TestCompleteUnreachableServer(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {}))
	srv.Close()

	c := NewClient(testConfig(srv.URL), Deps{})
	_, err := c.Complete(context.Background(), "", "prompt")
	require.Error(t, err)
	assert.True(t, errors.IsCode(err, errors.ErrCodeCompletionFailed))
}

func TestAvailable(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, "/api/tags", r.URL.Path)
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), Deps{})
	assert.True(t, c.Available(context.Background()))

	srv.Close()
	assert.False(t, c.Available(context.Background()))
}

func TestListModels(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.NoError(t, json.NewEncoder(w).Encode(map[string]interface{}{
			"models": []map[string]string{
				{"name": "llama3:8b"},
				{"name": "mistral:7b"},
			},
		}))
	}))
	defer srv.Close()

	c := NewClient(testConfig(srv.URL), Deps{})
	models, err := c.ListModels(context.Background())
	require.NoError(t, err)
	assert.Equal(t, []string{"llama3:8b", "mistral:7b"}, models)
}
