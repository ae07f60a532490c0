package llm

import (
	"errors"
	"net/url"
	"strings"

	"github.com/sashabaranov/go-openai"
)

// ErrorKind labels a failed remote call with a stable category.
type ErrorKind string

const (
	ErrKindInvalidCredentials ErrorKind = "invalid_credentials"
	ErrKindRateLimited        ErrorKind = "rate_limited"
	ErrKindQuotaExhausted     ErrorKind = "quota_exhausted"
	ErrKindServerFault        ErrorKind = "server_fault"
	ErrKindInputTooLarge      ErrorKind = "input_too_large"
	ErrKindBadEndpoint        ErrorKind = "bad_endpoint"
	ErrKindUnreachable        ErrorKind = "endpoint_unreachable"
	ErrKindGeneric            ErrorKind = "generic"
)

// ProviderError wraps a failed remote call with its kind and a message fit
// to show users. The underlying vendor error stays reachable via Unwrap.
type ProviderError struct {
	Kind    ErrorKind
	Message string
	Err     error
}

func (e *ProviderError) Error() string { return e.Message }
func (e *ProviderError) Unwrap() error { return e.Err }

// User-facing messages per kind.
const (
	msgInvalidCredentials = "Invalid API key. Please check your API key and try again."
	msgRateLimited        = "Rate limit reached. Please pace your requests and try again in a moment."
	msgQuotaExhausted     = "You have exceeded your current quota. You may be out of credits or have reached your spend cap; please check your plan and billing details."
	msgServerFault        = "The model provider had an error while processing your request. Please retry after a brief wait."
	msgInputTooLarge      = "The document is too long for the selected model. Please reduce its length and try again."
	msgBadEndpoint        = "The model endpoint URL is invalid. Please check the custom base URL in your configuration."
	msgUnreachable        = "Could not connect to the model endpoint. Please check the custom base URL in your configuration and make sure the server is running."
	msgGeneric            = "An error occurred while generating tags. Please try again."
)

// classifyRule maps a vendor message substring onto an error kind.
// The slice below is ordered: the first matching rule wins.
type classifyRule struct {
	substring      string
	kind           ErrorKind
	message        string
	customEndpoint bool // rule participates only when a custom base URL is configured
}

var classifyRules = []classifyRule{
	{substring: "Incorrect API key", kind: ErrKindInvalidCredentials, message: msgInvalidCredentials},
	{substring: "No API key provided", kind: ErrKindInvalidCredentials, message: msgInvalidCredentials},
	{substring: "Rate limit reached", kind: ErrKindRateLimited, message: msgRateLimited},
	{substring: "exceeded your current quota", kind: ErrKindQuotaExhausted, message: msgQuotaExhausted},
	{substring: "server had an error", kind: ErrKindServerFault, message: msgServerFault},
	{substring: "engine is currently overloaded", kind: ErrKindServerFault, message: msgServerFault},
	{substring: "reduce the length", kind: ErrKindInputTooLarge, message: msgInputTooLarge},
	{substring: "Invalid URL", kind: ErrKindBadEndpoint, message: msgBadEndpoint},
	{substring: "Connection error", kind: ErrKindUnreachable, message: msgUnreachable, customEndpoint: true},
}

// Classify maps an opaque error from a remote call onto a ProviderError.
// Matching runs the substring table first because vendor messages are the
// one signal every SDK exposes; when the table misses, structured fields
// (HTTP status on API errors, transport errors against custom endpoints)
// are consulted before falling through to the generic kind.
//
// customEndpoint reports whether the client was built with a base URL
// override; connection failures are only attributed to the endpoint
// configuration in that case.
func Classify(err error, customEndpoint bool) *ProviderError {
	if err == nil {
		return nil
	}

	// Already classified errors pass through untouched.
	var pe *ProviderError
	if errors.As(err, &pe) {
		return pe
	}

	msg := err.Error()
	for _, rule := range classifyRules {
		if rule.customEndpoint && !customEndpoint {
			continue
		}
		if strings.Contains(msg, rule.substring) {
			return &ProviderError{Kind: rule.kind, Message: rule.message, Err: err}
		}
	}

	// Vendor wording drifts. When the SDK surfaces a structured API error,
	// fall back to its HTTP status before giving up.
	var apiErr *openai.APIError
	if errors.As(err, &apiErr) {
		switch {
		case apiErr.HTTPStatusCode == 401 || apiErr.HTTPStatusCode == 403:
			return &ProviderError{Kind: ErrKindInvalidCredentials, Message: msgInvalidCredentials, Err: err}
		case apiErr.HTTPStatusCode == 429:
			if code, ok := apiErr.Code.(string); ok && code == "insufficient_quota" {
				return &ProviderError{Kind: ErrKindQuotaExhausted, Message: msgQuotaExhausted, Err: err}
			}
			return &ProviderError{Kind: ErrKindRateLimited, Message: msgRateLimited, Err: err}
		case apiErr.HTTPStatusCode >= 500:
			return &ProviderError{Kind: ErrKindServerFault, Message: msgServerFault, Err: err}
		}
	}

	// Transport-level failures against a custom endpoint point at the
	// endpoint configuration, not the vendor. Timeouts stay generic.
	var urlErr *url.Error
	if customEndpoint && errors.As(err, &urlErr) && !urlErr.Timeout() {
		return &ProviderError{Kind: ErrKindUnreachable, Message: msgUnreachable, Err: err}
	}

	return &ProviderError{Kind: ErrKindGeneric, Message: msgGeneric, Err: err}
}
