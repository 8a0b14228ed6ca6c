// Package config defines all configuration structures for the indogap
// analysis engine.  No I/O or parsing logic lives here — only plain data
// types and validation.
package config

import (
	"fmt"
	"math"
	"time"

	"github.com/indogap/indogap/internal/infrastructure/monitoring/logging"
)

// ─────────────────────────────────────────────────────────────────────────────
// Sub-configuration structs
// ─────────────────────────────────────────────────────────────────────────────

// AppConfig holds application-level settings.
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Environment string `mapstructure:"environment"` // "development" | "production" | "test"
}

// TextConfig holds text normalization tunables.
type TextConfig struct {
	UseStemming   bool `mapstructure:"use_stemming"`
	UseBigrams    bool `mapstructure:"use_bigrams"`
	MinWordLength int  `mapstructure:"min_word_length"`
	MaxWordLength int  `mapstructure:"max_word_length"`
}

// SimilarityConfig holds similarity engine tunables.
type SimilarityConfig struct {
	// Sub-score weights.  Must sum to 1.0.
	DescriptionWeight float64 `mapstructure:"description_weight"`
	CategoryWeight    float64 `mapstructure:"category_weight"`
	KeywordWeight     float64 `mapstructure:"keyword_weight"`

	// UseEmbeddings switches description similarity from TF-IDF to the
	// configured embedding provider.  Per-call provider failures still fall
	// back to TF-IDF.
	UseEmbeddings bool `mapstructure:"use_embeddings"`

	// MatchThreshold is the default minimum similarity for FindAllMatches.
	MatchThreshold float64 `mapstructure:"match_threshold"`

	// EmbeddingConcurrency bounds concurrent embedding requests when the
	// candidate matrix is rebuilt.
	EmbeddingConcurrency int `mapstructure:"embedding_concurrency"`
}

// ScoringConfig holds dimension scorer tunables.
type ScoringConfig struct {
	// Weights maps dimension name → aggregation weight.  Must sum to 1.0;
	// validation failure rejects engine construction.
	Weights map[string]float64 `mapstructure:"weights"`

	// UseDelegate enables the externally-delegated scoring path when a
	// reasoning provider is configured.
	UseDelegate bool `mapstructure:"use_delegate"`
}

// OpenAIConfig holds embedding provider connection parameters.
type OpenAIConfig struct {
	APIKey     string        `mapstructure:"api_key"`
	BaseURL    string        `mapstructure:"base_url"`
	Model      string        `mapstructure:"model"` // "small" | "large" | "ada"
	Dimensions int           `mapstructure:"dimensions"`
	Timeout    time.Duration `mapstructure:"timeout"`
	MaxRetries int           `mapstructure:"max_retries"`
	BatchSize  int           `mapstructure:"batch_size"`
}

// OllamaConfig holds reasoning provider connection parameters.
type OllamaConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	Model       string        `mapstructure:"model"`
	Temperature float64       `mapstructure:"temperature"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

// ProvidersConfig groups all external provider settings.
type ProvidersConfig struct {
	OpenAI OpenAIConfig `mapstructure:"openai"`
	Ollama OllamaConfig `mapstructure:"ollama"`
}

// MetricsConfig holds Prometheus exposition settings.
type MetricsConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Namespace string `mapstructure:"namespace"`
	Addr      string `mapstructure:"addr"`
}

// ─────────────────────────────────────────────────────────────────────────────
// Top-level Config
// ─────────────────────────────────────────────────────────────────────────────

// Config is the root configuration object for the engine.
type Config struct {
	App        AppConfig         `mapstructure:"app"`
	Log        logging.LogConfig `mapstructure:"log"`
	Text       TextConfig        `mapstructure:"text"`
	Similarity SimilarityConfig  `mapstructure:"similarity"`
	Scoring    ScoringConfig     `mapstructure:"scoring"`
	Providers  ProvidersConfig   `mapstructure:"providers"`
	Metrics    MetricsConfig     `mapstructure:"metrics"`
}

// weightTolerance is the floating tolerance applied to weight-sum checks.
const weightTolerance = 1e-9

// Validate checks cross-field consistency.  It is called by the loader after
// defaults are applied; a validation error here must abort startup — a
// silently-wrong aggregate weight is far more harmful than refusing to start.
func (c *Config) Validate() error {
	simSum := c.Similarity.DescriptionWeight + c.Similarity.CategoryWeight + c.Similarity.KeywordWeight
	if math.Abs(simSum-1.0) > weightTolerance {
		return fmt.Errorf("similarity weights must sum to 1.0, got %.6f", simSum)
	}
	if c.Similarity.MatchThreshold < 0 || c.Similarity.MatchThreshold > 1 {
		return fmt.Errorf("similarity.match_threshold must be in [0,1], got %.4f", c.Similarity.MatchThreshold)
	}
	if c.Similarity.EmbeddingConcurrency < 1 {
		return fmt.Errorf("similarity.embedding_concurrency must be >= 1, got %d", c.Similarity.EmbeddingConcurrency)
	}

	var scoringSum float64
	for name, w := range c.Scoring.Weights {
		if w <= 0 || w > 1 {
			return fmt.Errorf("scoring weight for %q must be in (0,1], got %.4f", name, w)
		}
		scoringSum += w
	}
	if math.Abs(scoringSum-1.0) > weightTolerance {
		return fmt.Errorf("scoring weights must sum to 1.0, got %.6f", scoringSum)
	}

	if c.Text.MinWordLength < 1 {
		return fmt.Errorf("text.min_word_length must be >= 1, got %d", c.Text.MinWordLength)
	}
	if c.Text.MaxWordLength < c.Text.MinWordLength {
		return fmt.Errorf("text.max_word_length must be >= min_word_length")
	}

	return nil
}
