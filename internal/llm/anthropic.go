package llm

import (
	"context"
	"encoding/json"
	"net/http"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// anthropicDefaultMaxTokens is used when the caller doesn't cap output;
// the Messages API requires an explicit limit.
const anthropicDefaultMaxTokens = 1024

// AnthropicClient talks to the Anthropic Messages API.
type AnthropicClient struct {
	client      anthropic.Client
	model       string
	temperature float32
}

// AnthropicOptions holds construction options for an AnthropicClient.
type AnthropicOptions struct {
	APIKey      string
	Model       string
	Temperature float32
	Timeout     time.Duration
}

func NewAnthropicClient(opts AnthropicOptions) *AnthropicClient {
	timeout := opts.Timeout
	if timeout <= 0 {
		timeout = DefaultRequestTimeout
	}
	return &AnthropicClient{
		client: anthropic.NewClient(
			option.WithAPIKey(opts.APIKey),
			option.WithHTTPClient(&http.Client{Timeout: timeout}),
		),
		model:       opts.Model,
		temperature: opts.Temperature,
	}
}

func (c *AnthropicClient) Provider() string        { return "anthropic" }
func (c *AnthropicClient) Model() string           { return c.model }
func (c *AnthropicClient) SupportsToolCalls() bool { return true }

func (c *AnthropicClient) Complete(ctx context.Context, req Request) (*Completion, error) {
	resp, err := c.client.Messages.New(ctx, c.buildParams(req))
	if err != nil {
		return nil, Classify(err, false)
	}
	return convertAnthropicMessage(resp), nil
}

func (c *AnthropicClient) CompleteWithTool(ctx context.Context, req Request, tool Tool) (*Completion, error) {
	params := c.buildParams(req)

	var schema anthropic.ToolInputSchemaParam
	if tool.Parameters != nil {
		if err := json.Unmarshal(tool.Parameters, &schema); err != nil {
			return nil, Classify(err, false)
		}
	}
	params.Tools = []anthropic.ToolUnionParam{
		{
			OfTool: &anthropic.ToolParam{
				Name:        tool.Name,
				Description: anthropic.String(tool.Description),
				InputSchema: schema,
			},
		},
	}
	params.ToolChoice = anthropic.ToolChoiceUnionParam{
		OfTool: &anthropic.ToolChoiceToolParam{Name: tool.Name},
	}

	resp, err := c.client.Messages.New(ctx, params)
	if err != nil {
		return nil, Classify(err, false)
	}
	return convertAnthropicMessage(resp), nil
}

func (c *AnthropicClient) buildParams(req Request) anthropic.MessageNewParams {
	maxTokens := req.MaxTokens
	if maxTokens <= 0 {
		maxTokens = anthropicDefaultMaxTokens
	}

	params := anthropic.MessageNewParams{
		Model:       anthropic.Model(c.model),
		MaxTokens:   int64(maxTokens),
		Temperature: anthropic.Float(float64(c.temperature)),
	}

	// The Messages API carries the system prompt in a dedicated field.
	var msgs []anthropic.MessageParam
	for _, m := range req.Messages {
		switch m.Role {
		case RoleSystem:
			params.System = append(params.System, anthropic.TextBlockParam{Text: m.Content})
		default:
			msgs = append(msgs, anthropic.NewUserMessage(anthropic.NewTextBlock(m.Content)))
		}
	}
	params.Messages = msgs
	return params
}

func convertAnthropicMessage(resp *anthropic.Message) *Completion {
	out := &Completion{
		Usage: Usage{
			InputTokens:  int(resp.Usage.InputTokens),
			OutputTokens: int(resp.Usage.OutputTokens),
		},
	}
	for _, block := range resp.Content {
		switch b := block.AsAny().(type) {
		case anthropic.TextBlock:
			out.Content += b.Text
		case anthropic.ToolUseBlock:
			args, err := json.Marshal(b.Input)
			if err != nil {
				continue
			}
			out.ToolCalls = append(out.ToolCalls, ToolCall{
				Name:      b.Name,
				Arguments: string(args),
			})
		}
	}
	return out
}

var _ Completer = (*AnthropicClient)(nil)
