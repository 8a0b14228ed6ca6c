// Package config provides configuration loading, defaults, and validation for
// the indogap analysis engine.
package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// envPrefix is the environment variable prefix used by all engine settings.
const envPrefix = "INDOGAP"

// newViper builds a pre-configured Viper instance with the engine's standard
// settings: YAML file type, INDOGAP_ env prefix, automatic env binding, and a
// key replacer that maps "." → "_" so that nested keys like
// "providers.openai.api_key" resolve to "INDOGAP_PROVIDERS_OPENAI_API_KEY".
func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yaml")
	v.SetEnvPrefix(envPrefix)
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	bindEnvKeys(v)
	return v
}

// envKeys enumerates the settings that may be supplied purely via environment
// variables.  Viper's Unmarshal only sees env-backed keys that are explicitly
// bound, so every key addressable through INDOGAP_* must be listed here.
var envKeys = []string{
	"app.name", "app.environment",
	"log.level", "log.format",
	"text.use_stemming", "text.use_bigrams", "text.min_word_length", "text.max_word_length",
	"similarity.description_weight", "similarity.category_weight", "similarity.keyword_weight",
	"similarity.use_embeddings", "similarity.match_threshold", "similarity.embedding_concurrency",
	"scoring.use_delegate",
	"providers.openai.api_key", "providers.openai.base_url", "providers.openai.model",
	"providers.openai.dimensions", "providers.openai.timeout", "providers.openai.max_retries",
	"providers.openai.batch_size",
	"providers.ollama.base_url", "providers.ollama.model", "providers.ollama.temperature",
	"providers.ollama.timeout",
	"metrics.enabled", "metrics.namespace", "metrics.addr",
}

func bindEnvKeys(v *viper.Viper) {
	for _, key := range envKeys {
		_ = v.BindEnv(key)
	}
}

// Load reads the YAML file at configPath, merges any INDOGAP_* environment
// variable overrides, applies defaults for unset fields, and validates the
// result.  It returns a fully-populated *Config or a descriptive error.
func Load(configPath string) (*Config, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("config: failed to read config file %q: %w", configPath, err)
	}

	return unmarshalAndFinalize(v)
}

// LoadFromEnv builds a Config entirely from INDOGAP_* environment variables,
// with no config file required.  This is the preferred loading strategy for
// containerised deployments.
func LoadFromEnv() (*Config, error) {
	v := newViper()
	return unmarshalAndFinalize(v)
}

// Default returns a Config populated purely with defaults.  Useful for
// library callers and tests that do not load a file.
func Default() *Config {
	cfg := &Config{}
	ApplyDefaults(cfg)
	return cfg
}

// unmarshalAndFinalize unmarshals viper state into a Config struct, applies
// defaults, and validates the result.
func unmarshalAndFinalize(v *viper.Viper) (*Config, error) {
	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, fmt.Errorf("config: failed to unmarshal configuration: %w", err)
	}

	ApplyDefaults(cfg)

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("config: validation failed: %w", err)
	}

	return cfg, nil
}
