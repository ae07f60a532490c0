package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// GeminiClient talks to the Google Gemini API. It serves the plain
// completion path only; forced tool invocation is not wired for this
// provider, so SupportsToolCalls reports false.
type GeminiClient struct {
	client      *genai.Client
	model       string
	temperature float32
	timeout     time.Duration
}

// GeminiOptions holds construction options for a GeminiClient.
type GeminiOptions struct {
	APIKey      string
	Model       string
	Temperature float32
	Timeout     time.Duration
}

func NewGeminiClient(ctx context.Context, opts GeminiOptions) (*GeminiClient, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(opts.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &GeminiClient{
		client:      client,
		model:       opts.Model,
		temperature: opts.Temperature,
		timeout:     timeout,
	}, nil
}

func (c *GeminiClient) Provider() string        { return "gemini" }
func (c *GeminiClient) Model() string           { return c.model }
func (c *GeminiClient) SupportsToolCalls() bool { return false }

func (c *GeminiClient) Complete(ctx context.Context, req Request) (*Completion, error) {
	// The genai transport has no per-request timeout knob, so the budget is
	// enforced through the context.
	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	model := c.client.GenerativeModel(c.model)
	model.SetTemperature(c.temperature)
	if req.MaxTokens > 0 {
		model.SetMaxOutputTokens(int32(req.MaxTokens))
	}

	var userParts []genai.Part
	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(m.Content)}}
		default:
			userParts = append(userParts, genai.Text(m.Content))
		}
	}
	if len(userParts) == 0 {
		return nil, Classify(errors.New("no user content in request"), false)
	}

	resp, err := model.GenerateContent(ctx, userParts...)
	if err != nil {
		return nil, Classify(err, false)
	}
	if len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return nil, Classify(errors.New("no completion candidates returned"), false)
	}

	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			sb.WriteString(string(text))
		}
	}

	out := &Completion{Content: sb.String()}
	if resp.UsageMetadata != nil {
		out.Usage = Usage{
			InputTokens:  int(resp.UsageMetadata.PromptTokenCount),
			OutputTokens: int(resp.UsageMetadata.CandidatesTokenCount),
		}
	}
	return out, nil
}

func (c *GeminiClient) CompleteWithTool(ctx context.Context, req Request, tool Tool) (*Completion, error) {
	return nil, errors.New("llm: gemini client does not support forced tool invocation")
}

// Close releases the underlying gRPC resources.
func (c *GeminiClient) Close() error {
	if c.client != nil {
		return c.client.Close()
	}
	return nil
}

var _ Completer = (*GeminiClient)(nil)
