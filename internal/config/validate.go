package config

import (
	"errors"
	"fmt"
)

/*
Configuration validation covering every section that can take a bad value:
- LLM provider selection and credentials
- Tagging limits
- Database paths/DSNs for enabled features
- Redis and worker settings
- Pricing (if present)
*/

var knownProviders = map[string]bool{
	"openai":     true,
	"anthropic":  true,
	"gemini":     true,
	"openrouter": true,
	"ollama":     true,
	"lmstudio":   true,
}

func (c *Config) Validate() error {
	// LLM config
	if c.LLM.Provider == "" {
		return errors.New("llm.provider is required")
	}
	if !knownProviders[c.LLM.Provider] {
		return fmt.Errorf("llm.provider '%s' is not supported", c.LLM.Provider)
	}
	if c.LLM.Model == "" {
		return errors.New("llm.model is required")
	}
	if c.LLM.Temperature < 0 || c.LLM.Temperature > 2 {
		return fmt.Errorf("llm.temperature (%v) must be between 0 and 2", c.LLM.Temperature)
	}
	if c.LLM.RequestTimeout <= 0 {
		return errors.New("llm.request_timeout must be positive")
	}
	if c.LLM.RequestsPerMinute < 0 {
		return errors.New("llm.requests_per_minute must not be negative")
	}

	// Credentials: the remote vendors need a key; local OpenAI-compatible
	// servers usually don't.
	switch c.LLM.Provider {
	case "openai", "openrouter":
		if c.LLM.OpenAIAPIKey == "" {
			return errors.New("llm.openai_api_key is required for provider " + c.LLM.Provider)
		}
	case "anthropic":
		if c.LLM.AnthropicAPIKey == "" {
			return errors.New("llm.anthropic_api_key is required for provider anthropic")
		}
	case "gemini":
		if c.LLM.GoogleAPIKey == "" {
			return errors.New("llm.google_api_key is required for provider gemini")
		}
	}
	if c.LLM.Provider == "openrouter" && c.LLM.BaseURL == "" {
		return errors.New("llm.base_url is required for provider openrouter")
	}

	// Tagging config
	if c.Tagging.MaxTags <= 0 {
		return errors.New("tagging.max_tags must be a positive integer")
	}
	if c.Tagging.MaxDocumentChars <= 0 {
		return errors.New("tagging.max_document_chars must be a positive integer")
	}

	// Database config
	if c.Database.Primary.Path == "" {
		return errors.New("database.primary.path is required")
	}
	if c.Index.Enabled {
		if c.Database.Vector.DSN == "" {
			return errors.New("database.vector.dsn is required when index.enabled is true")
		}
		if c.Index.Dimension <= 0 {
			return errors.New("index.dimension must be a positive integer")
		}
		if c.Index.SimilarityThreshold <= 0 {
			return errors.New("index.similarity_threshold must be positive")
		}
	}

	// Redis / worker config
	if c.Redis.Address == "" {
		return errors.New("redis.address is required")
	}
	if c.Worker.Concurrency <= 0 {
		return errors.New("worker.concurrency must be a positive integer")
	}
	if len(c.Worker.Queues) == 0 {
		return errors.New("worker.queues must define at least one queue")
	}
	for name, priority := range c.Worker.Queues {
		if name == "" {
			return errors.New("worker.queues contains an empty queue name")
		}
		if priority <= 0 {
			return fmt.Errorf("worker.queues priority for queue '%s' must be positive", name)
		}
	}

	if c.Batch.Parallelism <= 0 {
		return errors.New("batch.parallelism must be a positive integer")
	}

	// Pricing config (optional, but if present, must be valid)
	for provider, models := range c.Pricing {
		if provider == "" {
			return errors.New("pricing contains an empty provider name")
		}
		for model, price := range models {
			if model == "" {
				return fmt.Errorf("pricing for provider '%s' contains an empty model name", provider)
			}
			if price.InputPerToken < 0 || price.OutputPerToken < 0 {
				return fmt.Errorf("pricing for provider '%s', model '%s' has negative token cost", provider, model)
			}
		}
	}

	return nil
}
