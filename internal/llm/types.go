package llm

import (
	"context"
	"encoding/json"
)

// Message roles understood by every provider.
const (
	RoleSystem = "system"
	RoleUser   = "user"
)

type Message struct {
	Role    string
	Content string
}

// Request is a single completion request. Model, temperature and timeout are
// bound to the client at construction; only the conversation varies per call.
type Request struct {
	Messages  []Message
	MaxTokens int
}

// Tool declares one function the model is forced to invoke.
// Parameters is the JSON schema of the arguments object.
type Tool struct {
	Name        string
	Description string
	Parameters  json.RawMessage
}

// ToolCall is the model's invocation of a declared tool.
type ToolCall struct {
	Name      string
	Arguments string // raw JSON object
}

type Usage struct {
	InputTokens  int
	OutputTokens int
}

// Completion is the provider-neutral result of a completion request.
type Completion struct {
	Content   string
	ToolCalls []ToolCall
	Usage     Usage
}

// Completer is the minimal surface the tagging core needs from a provider.
// Implementations classify their own failures, so every non-nil error
// returned here is a *ProviderError.
type Completer interface {
	// Complete sends the request and returns the model's free-text reply.
	Complete(ctx context.Context, req Request) (*Completion, error)
	// CompleteWithTool sends the request forcing the model to invoke tool.
	CompleteWithTool(ctx context.Context, req Request, tool Tool) (*Completion, error)
	// SupportsToolCalls reports whether this client may be asked to force
	// tool invocation.
	SupportsToolCalls() bool
	Provider() string
	Model() string
}
