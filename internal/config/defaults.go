package config

import "time"

// ─────────────────────────────────────────────────────────────────────────────
// Default value constants
// ─────────────────────────────────────────────────────────────────────────────

const (
	DefaultAppName     = "indogap"
	DefaultEnvironment = "development"

	DefaultLogLevel  = "info"
	DefaultLogFormat = "json"

	DefaultMinWordLength = 2
	DefaultMaxWordLength = 50

	DefaultDescriptionWeight = 0.6
	DefaultCategoryWeight    = 0.3
	DefaultKeywordWeight     = 0.1

	DefaultMatchThreshold       = 0.3
	DefaultEmbeddingConcurrency = 4

	DefaultOpenAIBaseURL  = "https://api.openai.com/v1"
	DefaultEmbeddingModel = "small"
	DefaultOpenAITimeout  = 60 * time.Second
	DefaultMaxRetries     = 3
	DefaultBatchSize      = 100

	DefaultOllamaBaseURL     = "http://localhost:11434"
	DefaultOllamaModel       = "llama3"
	DefaultOllamaTemperature = 0.3
	DefaultOllamaTimeout     = 120 * time.Second

	DefaultMetricsNamespace = "indogap"
	DefaultMetricsAddr      = ":9090"
)

// DefaultScoringWeights returns the default aggregation weight per dimension.
// Six dimensions carry 0.15 and monopoly_potential carries 0.10, summing to
// exactly 1.0.
func DefaultScoringWeights() map[string]float64 {
	return map[string]float64{
		"cultural_fit":          0.15,
		"logistics":             0.15,
		"payment_readiness":     0.15,
		"timing":                0.15,
		"monopoly_potential":    0.10,
		"regulatory_risk":       0.15,
		"execution_feasibility": 0.15,
	}
}

// ApplyDefaults fills every zero-value field in cfg with the engine default.
// Fields that have already been set by the caller (non-zero values) are left
// unchanged so that explicit configuration always wins.  It must be called
// after unmarshalling raw config data and before Validate().
func ApplyDefaults(cfg *Config) {
	if cfg == nil {
		return
	}

	// ── App ───────────────────────────────────────────────────────────────────
	if cfg.App.Name == "" {
		cfg.App.Name = DefaultAppName
	}
	if cfg.App.Environment == "" {
		cfg.App.Environment = DefaultEnvironment
	}

	// ── Log ───────────────────────────────────────────────────────────────────
	if cfg.Log.Level == "" {
		cfg.Log.Level = DefaultLogLevel
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = DefaultLogFormat
	}

	// ── Text ──────────────────────────────────────────────────────────────────
	if cfg.Text.MinWordLength == 0 {
		cfg.Text.MinWordLength = DefaultMinWordLength
		// Stemming and bigrams default on only when the whole section was
		// left unset; an explicit min_word_length opts out of that coupling.
		cfg.Text.UseStemming = true
		cfg.Text.UseBigrams = true
	}
	if cfg.Text.MaxWordLength == 0 {
		cfg.Text.MaxWordLength = DefaultMaxWordLength
	}

	// ── Similarity ────────────────────────────────────────────────────────────
	if cfg.Similarity.DescriptionWeight == 0 && cfg.Similarity.CategoryWeight == 0 && cfg.Similarity.KeywordWeight == 0 {
		cfg.Similarity.DescriptionWeight = DefaultDescriptionWeight
		cfg.Similarity.CategoryWeight = DefaultCategoryWeight
		cfg.Similarity.KeywordWeight = DefaultKeywordWeight
	}
	if cfg.Similarity.MatchThreshold == 0 {
		cfg.Similarity.MatchThreshold = DefaultMatchThreshold
	}
	if cfg.Similarity.EmbeddingConcurrency == 0 {
		cfg.Similarity.EmbeddingConcurrency = DefaultEmbeddingConcurrency
	}

	// ── Scoring ───────────────────────────────────────────────────────────────
	if len(cfg.Scoring.Weights) == 0 {
		cfg.Scoring.Weights = DefaultScoringWeights()
	}

	// ── Providers ─────────────────────────────────────────────────────────────
	if cfg.Providers.OpenAI.BaseURL == "" {
		cfg.Providers.OpenAI.BaseURL = DefaultOpenAIBaseURL
	}
	if cfg.Providers.OpenAI.Model == "" {
		cfg.Providers.OpenAI.Model = DefaultEmbeddingModel
	}
	if cfg.Providers.OpenAI.Timeout == 0 {
		cfg.Providers.OpenAI.Timeout = DefaultOpenAITimeout
	}
	if cfg.Providers.OpenAI.MaxRetries == 0 {
		cfg.Providers.OpenAI.MaxRetries = DefaultMaxRetries
	}
	if cfg.Providers.OpenAI.BatchSize == 0 {
		cfg.Providers.OpenAI.BatchSize = DefaultBatchSize
	}
	if cfg.Providers.Ollama.BaseURL == "" {
		cfg.Providers.Ollama.BaseURL = DefaultOllamaBaseURL
	}
	if cfg.Providers.Ollama.Model == "" {
		cfg.Providers.Ollama.Model = DefaultOllamaModel
	}
	if cfg.Providers.Ollama.Temperature == 0 {
		cfg.Providers.Ollama.Temperature = DefaultOllamaTemperature
	}
	if cfg.Providers.Ollama.Timeout == 0 {
		cfg.Providers.Ollama.Timeout = DefaultOllamaTimeout
	}

	// ── Metrics ───────────────────────────────────────────────────────────────
	if cfg.Metrics.Namespace == "" {
		cfg.Metrics.Namespace = DefaultMetricsNamespace
	}
	if cfg.Metrics.Addr == "" {
		cfg.Metrics.Addr = DefaultMetricsAddr
	}
}
