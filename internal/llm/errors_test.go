package llm

import (
	"errors"
	"fmt"
	"net/url"
	"testing"

	"github.com/sashabaranov/go-openai"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestClassifySubstringTable(t *testing.T) {
	tests := []struct {
		name           string
		message        string
		customEndpoint bool
		wantKind       ErrorKind
	}{
		{
			name:     "incorrect api key",
			message:  "Incorrect API key provided: sk-abc***123. You can find your API key at https://platform.openai.com.",
			wantKind: ErrKindInvalidCredentials,
		},
		{
			name:     "missing api key",
			message:  "No API key provided. You can set your API key in code or in the settings.",
			wantKind: ErrKindInvalidCredentials,
		},
		{
			name:     "rate limited",
			message:  "Rate limit reached for requests",
			wantKind: ErrKindRateLimited,
		},
		{
			name:     "quota exhausted",
			message:  "You exceeded your current quota, please check your plan and billing details.",
			wantKind: ErrKindQuotaExhausted,
		},
		{
			name:     "server fault",
			message:  "The server had an error while processing your request. Sorry about that!",
			wantKind: ErrKindServerFault,
		},
		{
			name:     "engine overloaded",
			message:  "That engine is currently overloaded. Please try again later.",
			wantKind: ErrKindServerFault,
		},
		{
			name:     "input too large",
			message:  "This model's maximum context length is 8192 tokens. Please reduce the length of the messages.",
			wantKind: ErrKindInputTooLarge,
		},
		{
			name:     "bad endpoint url",
			message:  "Invalid URL (POST /v2/chat/completions)",
			wantKind: ErrKindBadEndpoint,
		},
		{
			name:           "unreachable custom endpoint",
			message:        "Connection error.",
			customEndpoint: true,
			wantKind:       ErrKindUnreachable,
		},
		{
			name:     "unmatched falls through to generic",
			message:  "Some unrelated vendor text",
			wantKind: ErrKindGeneric,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(errors.New(tt.message), tt.customEndpoint)
			require.NotNil(t, got)
			assert.Equal(t, tt.wantKind, got.Kind)
		})
	}
}

func TestClassifyUserMessages(t *testing.T) {
	rateLimited := Classify(errors.New("Rate limit reached for requests"), false)
	require.NotNil(t, rateLimited)
	assert.Contains(t, rateLimited.Message, "pace your requests")

	generic := Classify(errors.New("Some unrelated vendor text"), false)
	require.NotNil(t, generic)
	assert.Equal(t, msgGeneric, generic.Message)
}

func TestClassifyFirstMatchWins(t *testing.T) {
	// A message matching two rules classifies as the earlier one.
	err := errors.New("Incorrect API key provided and also Rate limit reached")
	got := Classify(err, false)
	require.NotNil(t, got)
	assert.Equal(t, ErrKindInvalidCredentials, got.Kind)
}

func TestClassifyConnectionErrorNeedsCustomEndpoint(t *testing.T) {
	// Without a base URL override the connection rule does not participate.
	got := Classify(errors.New("Connection error."), false)
	require.NotNil(t, got)
	assert.Equal(t, ErrKindGeneric, got.Kind)
	assert.Equal(t, msgGeneric, got.Message)
}

func TestClassifyWrapsCause(t *testing.T) {
	cause := errors.New("Rate limit reached for requests")
	got := Classify(cause, false)
	require.NotNil(t, got)
	assert.ErrorIs(t, got, cause)

	var pe *ProviderError
	require.ErrorAs(t, error(got), &pe)
	assert.Equal(t, ErrKindRateLimited, pe.Kind)
}

func TestClassifyPassesThroughClassified(t *testing.T) {
	original := &ProviderError{Kind: ErrKindQuotaExhausted, Message: msgQuotaExhausted, Err: errors.New("quota")}
	wrapped := fmt.Errorf("tagging call failed: %w", original)

	got := Classify(wrapped, false)
	assert.Same(t, original, got)
}

func TestClassifyAPIErrorStatusFallback(t *testing.T) {
	tests := []struct {
		name     string
		apiErr   *openai.APIError
		wantKind ErrorKind
	}{
		{
			name:     "401 with drifted wording",
			apiErr:   &openai.APIError{HTTPStatusCode: 401, Message: "authentication token rejected"},
			wantKind: ErrKindInvalidCredentials,
		},
		{
			name:     "429 plain",
			apiErr:   &openai.APIError{HTTPStatusCode: 429, Message: "slow down"},
			wantKind: ErrKindRateLimited,
		},
		{
			name:     "429 insufficient quota",
			apiErr:   &openai.APIError{HTTPStatusCode: 429, Code: "insufficient_quota", Message: "billing hard limit"},
			wantKind: ErrKindQuotaExhausted,
		},
		{
			name:     "503 drifted wording",
			apiErr:   &openai.APIError{HTTPStatusCode: 503, Message: "upstream unavailable"},
			wantKind: ErrKindServerFault,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Classify(tt.apiErr, false)
			require.NotNil(t, got)
			assert.Equal(t, tt.wantKind, got.Kind)
		})
	}
}

func TestClassifyAPIErrorTableStillWins(t *testing.T) {
	// A recognizable message beats the status code, whatever it says.
	apiErr := &openai.APIError{
		HTTPStatusCode: 401,
		Message:        "You exceeded your current quota, please check your plan and billing details.",
	}
	got := Classify(apiErr, false)
	require.NotNil(t, got)
	assert.Equal(t, ErrKindQuotaExhausted, got.Kind)
}

func TestClassifyTransportError(t *testing.T) {
	dialErr := &url.Error{
		Op:  "Post",
		URL: "http://localhost:11434/v1/chat/completions",
		Err: errors.New("dial tcp 127.0.0.1:11434: connect: connection refused"),
	}

	withCustom := Classify(dialErr, true)
	require.NotNil(t, withCustom)
	assert.Equal(t, ErrKindUnreachable, withCustom.Kind)

	withoutCustom := Classify(dialErr, false)
	require.NotNil(t, withoutCustom)
	assert.Equal(t, ErrKindGeneric, withoutCustom.Kind)
}

func TestClassifyNil(t *testing.T) {
	assert.Nil(t, Classify(nil, false))
}
