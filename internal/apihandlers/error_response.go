package apihandlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"tagsmith/internal/llm"
)

// APIError defines the standard error response body.
// Example: { "error": { "code": "bad_request", "message": "Invalid ID" } }
type APIError struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error APIError `json:"error"`
}

// JSONError sends a structured error response.
func JSONError(ctx *gin.Context, status int, code, msg string) {
	ctx.JSON(status, errorResponse{Error: APIError{Code: code, Message: msg}})
}

// Convenience wrappers
func BadRequest(ctx *gin.Context, msg string) {
	JSONError(ctx, http.StatusBadRequest, "bad_request", msg)
}

func NotFound(ctx *gin.Context, msg string) {
	JSONError(ctx, http.StatusNotFound, "not_found", msg)
}

func Internal(ctx *gin.Context, msg string) {
	JSONError(ctx, http.StatusInternalServerError, "internal_error", msg)
}

func Conflict(ctx *gin.Context, msg string) {
	JSONError(ctx, http.StatusConflict, "conflict", msg)
}

// ProviderFailure maps a classified tagging failure onto an HTTP status,
// passing the user-facing message through.
func ProviderFailure(ctx *gin.Context, pe *llm.ProviderError) {
	JSONError(ctx, statusForKind(pe.Kind), string(pe.Kind), pe.Message)
}

func statusForKind(kind llm.ErrorKind) int {
	switch kind {
	case llm.ErrKindInvalidCredentials:
		return http.StatusUnauthorized
	case llm.ErrKindRateLimited:
		return http.StatusTooManyRequests
	case llm.ErrKindQuotaExhausted:
		return http.StatusPaymentRequired
	case llm.ErrKindServerFault, llm.ErrKindUnreachable:
		return http.StatusBadGateway
	case llm.ErrKindInputTooLarge:
		return http.StatusRequestEntityTooLarge
	case llm.ErrKindBadEndpoint:
		return http.StatusBadGateway
	default:
		return http.StatusInternalServerError
	}
}
