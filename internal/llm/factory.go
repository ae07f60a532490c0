package llm

import (
	"context"
	"fmt"

	log "github.com/sirupsen/logrus"

	"tagsmith/internal/config"
)

// Endpoint defaults for the local OpenAI-compatible families.
const (
	defaultOllamaBaseURL   = "http://localhost:11434/v1"
	defaultLMStudioBaseURL = "http://localhost:1234/v1"
)

// NewCompleter builds the configured provider client wrapped in the pacing
// and breaker guard. The returned Completer may also implement io.Closer.
func NewCompleter(cfg *config.Config) (Completer, error) {
	llmCfg := cfg.LLM

	var inner Completer
	switch llmCfg.Provider {
	case "openai", "openrouter", "ollama", "lmstudio":
		baseURL := llmCfg.BaseURL
		if baseURL == "" {
			switch llmCfg.Provider {
			case "ollama":
				baseURL = defaultOllamaBaseURL
			case "lmstudio":
				baseURL = defaultLMStudioBaseURL
			}
		}
		// The hosted families advertise function calling; the local servers
		// stay on the plain completion path.
		supportsTools := llmCfg.Provider == "openai" || llmCfg.Provider == "openrouter"
		inner = NewOpenAIClient(OpenAIOptions{
			Provider:      llmCfg.Provider,
			APIKey:        llmCfg.OpenAIAPIKey,
			BaseURL:       baseURL,
			Model:         llmCfg.Model,
			Temperature:   llmCfg.Temperature,
			Timeout:       llmCfg.RequestTimeout,
			SupportsTools: supportsTools && !llmCfg.DisableTools,
		})

	case "anthropic":
		client := NewAnthropicClient(AnthropicOptions{
			APIKey:      llmCfg.AnthropicAPIKey,
			Model:       llmCfg.Model,
			Temperature: llmCfg.Temperature,
			Timeout:     llmCfg.RequestTimeout,
		})
		if llmCfg.DisableTools {
			inner = withoutTools{client}
		} else {
			inner = client
		}

	case "gemini":
		client, err := NewGeminiClient(context.Background(), GeminiOptions{
			APIKey:      llmCfg.GoogleAPIKey,
			Model:       llmCfg.Model,
			Temperature: llmCfg.Temperature,
			Timeout:     llmCfg.RequestTimeout,
		})
		if err != nil {
			return nil, err
		}
		inner = client

	default:
		return nil, fmt.Errorf("unknown llm provider: %s", llmCfg.Provider)
	}

	log.Infof("LLM provider initialized: %s (model %s, tool calls: %v)",
		inner.Provider(), inner.Model(), inner.SupportsToolCalls())

	return NewGuard(inner, llmCfg.RequestsPerMinute, llmCfg.BreakerThreshold), nil
}

// withoutTools masks tool support on a provider that has it, forcing the
// plain completion path.
type withoutTools struct {
	Completer
}

func (withoutTools) SupportsToolCalls() bool { return false }
