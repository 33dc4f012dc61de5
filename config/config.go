package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all configuration for the application
type Config struct {
	Server ServerConfig
	Search SearchConfig
	LLM    LLMConfig
	Cache  CacheConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	Environment    string   `mapstructure:"environment"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// SearchConfig holds product-search backend configuration. The API key is
// shared by all RapidAPI-hosted backends.
type SearchConfig struct {
	APIKey         string        `mapstructure:"api_key"`
	RequestTimeout time.Duration `mapstructure:"request_timeout"`
	MaxProducts    int           `mapstructure:"max_products"`
}

// LLMConfig holds the completion service configuration. BaseURL points at an
// OpenAI-compatible endpoint; models are assigned per pipeline stage.
type LLMConfig struct {
	APIKey              string `mapstructure:"api_key"`
	BaseURL             string `mapstructure:"base_url"`
	ResearchModel       string `mapstructure:"research_model"`
	AnalysisModel       string `mapstructure:"analysis_model"`
	RecommendationModel string `mapstructure:"recommendation_model"`
	PurchaseModel       string `mapstructure:"purchase_model"`
}

// CacheConfig holds cache-related configuration
type CacheConfig struct {
	TTL time.Duration `mapstructure:"ttl"`
}

// Load loads configuration from environment variables and config files
func Load() (*Config, error) {
	v := viper.New()

	// Set config name and paths
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/cartscout/")

	// Environment variable settings
	v.SetEnvPrefix("CARTSCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Set default values
	setDefaults(v)

	// Read config file (optional - will use env vars if file doesn't exist)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found; using environment variables and defaults
	}

	var config Config
	if err := v.Unmarshal(&config); err != nil {
		return nil, fmt.Errorf("unable to decode config: %w", err)
	}

	// Validate configuration
	if err := validate(&config); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return &config, nil
}

// setDefaults sets default configuration values
func setDefaults(v *viper.Viper) {
	// Server defaults
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.environment", "development")
	v.SetDefault("server.allowed_origins", []string{"http://localhost:3000"})

	// Search defaults. The key has an empty default so the env override is
	// picked up during Unmarshal; a missing key is reported at request time
	// as a configuration error, not at startup.
	v.SetDefault("search.api_key", "")
	v.SetDefault("search.request_timeout", "15s")
	v.SetDefault("search.max_products", 8)

	// LLM defaults: Groq's OpenAI-compatible endpoint, heavier model on the
	// research/recommendation stages.
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("llm.research_model", "llama-3.3-70b-versatile")
	v.SetDefault("llm.analysis_model", "llama-3.1-8b-instant")
	v.SetDefault("llm.recommendation_model", "llama-3.3-70b-versatile")
	v.SetDefault("llm.purchase_model", "llama-3.1-8b-instant")

	// Cache defaults
	v.SetDefault("cache.ttl", "1h")
}

// validate validates the configuration
func validate(config *Config) error {
	if config.LLM.APIKey == "" {
		return fmt.Errorf("LLM API key is required (set CARTSCOUT_LLM_API_KEY)")
	}

	if config.Search.MaxProducts <= 0 {
		return fmt.Errorf("search max_products must be positive, got: %d", config.Search.MaxProducts)
	}

	if config.Search.RequestTimeout <= 0 {
		return fmt.Errorf("search request_timeout must be positive, got: %s", config.Search.RequestTimeout)
	}

	return nil
}
