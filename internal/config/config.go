package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// PricingInfo holds cost details per token for a specific model.
type PricingInfo struct {
	InputPerToken  float64 `mapstructure:"input_per_token"`
	OutputPerToken float64 `mapstructure:"output_per_token"`
}

type Config struct {
	LLM struct {
		Provider        string `mapstructure:"provider"` // "openai", "anthropic", "gemini", "openrouter", "ollama", "lmstudio"
		Model           string `mapstructure:"model"`
		OpenAIAPIKey    string `mapstructure:"openai_api_key"`
		AnthropicAPIKey string `mapstructure:"anthropic_api_key"`
		GoogleAPIKey    string `mapstructure:"google_api_key"`
		BaseURL         string `mapstructure:"base_url"` // custom endpoint override (OpenAI-compatible servers)

		Temperature    float32       `mapstructure:"temperature"`
		RequestTimeout time.Duration `mapstructure:"request_timeout"`
		MaxTokens      int           `mapstructure:"max_tokens"`

		// DisableTools forces the plain-completion path even when the
		// provider supports function calling.
		DisableTools bool `mapstructure:"disable_tools"`

		RequestsPerMinute int    `mapstructure:"requests_per_minute"` // 0 disables client-side pacing
		BreakerThreshold  uint32 `mapstructure:"breaker_threshold"`   // consecutive failures before the breaker opens, 0 disables
	} `mapstructure:"llm"`

	Tagging struct {
		MaxTags          int      `mapstructure:"max_tags"`
		MaxDocumentChars int      `mapstructure:"max_document_chars"` // rune budget before truncation
		PromptTemplate   string   `mapstructure:"prompt_template"`    // path to system prompt override
		StaticTags       []string `mapstructure:"static_tags"`        // catalog fallback when no store is configured
		AutoApply        bool     `mapstructure:"auto_apply"`         // apply suggested tags on add
	} `mapstructure:"tagging"`

	Database struct {
		Primary struct {
			Path string `mapstructure:"path"` // SQLite database file
		} `mapstructure:"primary"`
		Vector struct {
			DSN string `mapstructure:"dsn"` // Postgres DSN for the tag embedding index
		} `mapstructure:"vector"`
	} `mapstructure:"database"`

	Index struct {
		Enabled             bool    `mapstructure:"enabled"`
		EmbeddingModel      string  `mapstructure:"embedding_model"`
		Dimension           int     `mapstructure:"dimension"`
		SimilarityThreshold float64 `mapstructure:"similarity_threshold"` // cosine distance below which tags are merged
	} `mapstructure:"index"`

	Redis struct {
		Address  string `mapstructure:"address"`
		Password string `mapstructure:"password"`
		DB       int    `mapstructure:"db"`
	} `mapstructure:"redis"`

	Worker struct {
		Concurrency int            `mapstructure:"concurrency"`
		Queues      map[string]int `mapstructure:"queues"`
	} `mapstructure:"worker"`

	Batch struct {
		Parallelism int `mapstructure:"parallelism"` // bounded concurrency for inline batch tagging
	} `mapstructure:"batch"`

	// Pricing: map[provider][model] = struct{input_per_token, output_per_token}
	Pricing map[string]map[string]PricingInfo `mapstructure:"pricing"`
}

func LoadConfig() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".") // Look for config.yaml in the current directory
	if home, err := os.UserHomeDir(); err == nil {
		viper.AddConfigPath(filepath.Join(home, ".config", "tagsmith"))
	}

	setDefaults()

	// --- Environment Variable Binding ---
	viper.SetEnvPrefix("TAGSMITH")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	// Bind the conventional vendor variables directly so users don't need the
	// TAGSMITH_ prefix for API keys.
	viper.BindEnv("llm.openai_api_key", "OPENAI_API_KEY")
	viper.BindEnv("llm.anthropic_api_key", "ANTHROPIC_API_KEY")
	viper.BindEnv("llm.google_api_key", "GEMINI_API_KEY")
	// --- End Environment Variable Binding ---

	if err := viper.ReadInConfig(); err != nil {
		// It's okay if the config file doesn't exist; defaults and env vars carry.
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}

func setDefaults() {
	viper.SetDefault("llm.provider", "openai")
	viper.SetDefault("llm.model", "gpt-4o-mini")
	viper.SetDefault("llm.temperature", 0.0)
	viper.SetDefault("llm.request_timeout", "10s")
	viper.SetDefault("llm.requests_per_minute", 60)
	viper.SetDefault("llm.breaker_threshold", 5)

	viper.SetDefault("tagging.max_tags", 5)
	viper.SetDefault("tagging.max_document_chars", 16000)

	viper.SetDefault("database.primary.path", "tagsmith.db")

	viper.SetDefault("index.embedding_model", "text-embedding-3-small")
	viper.SetDefault("index.dimension", 1536)
	viper.SetDefault("index.similarity_threshold", 0.2)

	viper.SetDefault("redis.address", "localhost:6379")
	viper.SetDefault("worker.concurrency", 5)
	viper.SetDefault("worker.queues", map[string]int{"tagging": 6, "index": 3})

	viper.SetDefault("batch.parallelism", 4)
}
