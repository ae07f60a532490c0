package llm

import (
	"context"
	"errors"
	"math"
	"net/http"
	"time"

	"github.com/sashabaranov/go-openai"
)

// DefaultRequestTimeout bounds a single completion call end to end.
const DefaultRequestTimeout = 10 * time.Second

// OpenAIClient talks to the OpenAI chat completion API. The same client
// serves OpenAI-compatible servers (OpenRouter, Ollama, LM Studio) through
// a custom base URL.
type OpenAIClient struct {
	client         *openai.Client
	provider       string
	model          string
	temperature    float32
	customEndpoint bool
	supportsTools  bool
}

// OpenAIOptions holds construction options for an OpenAIClient.
type OpenAIOptions struct {
	Provider      string // provider family name, "openai" when empty
	APIKey        string // may be empty for local compatible servers
	BaseURL       string // custom endpoint override
	Model         string
	Temperature   float32
	Timeout       time.Duration
	SupportsTools bool
}

func NewOpenAIClient(opts OpenAIOptions) *OpenAIClient {
	cfg := openai.DefaultConfig(opts.APIKey)
	if opts.BaseURL != "" {
		cfg.BaseURL = opts.BaseURL
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	cfg.HTTPClient = &http.Client{Timeout: timeout}

	provider := opts.Provider
	if provider == "" {
		provider = "openai"
	}

	return &OpenAIClient{
		client:         openai.NewClientWithConfig(cfg),
		provider:       provider,
		model:          opts.Model,
		temperature:    opts.Temperature,
		customEndpoint: opts.BaseURL != "",
		supportsTools:  opts.SupportsTools,
	}
}

func (c *OpenAIClient) Provider() string        { return c.provider }
func (c *OpenAIClient) Model() string           { return c.model }
func (c *OpenAIClient) SupportsToolCalls() bool { return c.supportsTools }

func (c *OpenAIClient) Complete(ctx context.Context, req Request) (*Completion, error) {
	resp, err := c.client.CreateChatCompletion(ctx, c.buildRequest(req))
	if err != nil {
		return nil, Classify(err, c.customEndpoint)
	}
	if len(resp.Choices) == 0 {
		return nil, Classify(errors.New("no completion choices returned"), c.customEndpoint)
	}

	return &Completion{
		Content: resp.Choices[0].Message.Content,
		Usage: Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
	}, nil
}

func (c *OpenAIClient) CompleteWithTool(ctx context.Context, req Request, tool Tool) (*Completion, error) {
	chatReq := c.buildRequest(req)
	chatReq.Tools = []openai.Tool{
		{
			Type: openai.ToolTypeFunction,
			Function: &openai.FunctionDefinition{
				Name:        tool.Name,
				Description: tool.Description,
				Parameters:  tool.Parameters,
			},
		},
	}
	// Force the model to call the one declared function instead of replying
	// in free text.
	chatReq.ToolChoice = openai.ToolChoice{
		Type:     openai.ToolTypeFunction,
		Function: openai.ToolFunction{Name: tool.Name},
	}

	resp, err := c.client.CreateChatCompletion(ctx, chatReq)
	if err != nil {
		return nil, Classify(err, c.customEndpoint)
	}
	if len(resp.Choices) == 0 {
		return nil, Classify(errors.New("no completion choices returned"), c.customEndpoint)
	}

	msg := resp.Choices[0].Message
	out := &Completion{
		Content: msg.Content,
		Usage: Usage{
			InputTokens:  resp.Usage.PromptTokens,
			OutputTokens: resp.Usage.CompletionTokens,
		},
	}
	for _, tc := range msg.ToolCalls {
		out.ToolCalls = append(out.ToolCalls, ToolCall{
			Name:      tc.Function.Name,
			Arguments: tc.Function.Arguments,
		})
	}
	return out, nil
}

func (c *OpenAIClient) buildRequest(req Request) openai.ChatCompletionRequest {
	messages := make([]openai.ChatCompletionMessage, 0, len(req.Messages))
	for _, m := range req.Messages {
		role := openai.ChatMessageRoleUser
		if m.Role == RoleSystem {
			role = openai.ChatMessageRoleSystem
		}
		messages = append(messages, openai.ChatCompletionMessage{
			Role:    role,
			Content: m.Content,
		})
	}

	// go-openai omits a zero temperature from the request body, letting the
	// API default to 1.0. The smallest positive float survives serialization
	// and is indistinguishable from 0 in effect.
	temperature := c.temperature
	if temperature == 0 {
		temperature = math.SmallestNonzeroFloat32
	}

	chatReq := openai.ChatCompletionRequest{
		Model:       c.model,
		Messages:    messages,
		Temperature: temperature,
	}
	if req.MaxTokens > 0 {
		chatReq.MaxTokens = req.MaxTokens
	}
	return chatReq
}

var _ Completer = (*OpenAIClient)(nil)
