// Package core provides shared plumbing for the GreenRoute tools: structured
// tool errors, retrying outbound HTTP, polyline decoding and input validation.
package core

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"

	"github.com/mark3labs/mcp-go/mcp"
)

// ErrorCode identifies a class of tool failure
type ErrorCode string

const (
	// Input errors
	ErrInvalidInput     ErrorCode = "INVALID_INPUT"
	ErrMissingParameter ErrorCode = "MISSING_PARAMETER"
	ErrInvalidParameter ErrorCode = "INVALID_PARAMETER"

	// Domain errors
	ErrNoMatch       ErrorCode = "NO_MATCH"
	ErrNotApplicable ErrorCode = "NOT_APPLICABLE"

	// Service errors
	ErrServiceUnavailable ErrorCode = "SERVICE_UNAVAILABLE"
	ErrServiceTimeout     ErrorCode = "SERVICE_TIMEOUT"
	ErrRateLimit          ErrorCode = "RATE_LIMIT"
	ErrNetworkError       ErrorCode = "NETWORK_ERROR"

	// Data errors
	ErrParseError    ErrorCode = "PARSE_ERROR"
	ErrInternalError ErrorCode = "INTERNAL_ERROR"
)

// ToolError is the JSON error body returned to tool callers
type ToolError struct {
	Code        string   `json:"code"`
	Message     string   `json:"message"`
	Query       string   `json:"query,omitempty"`
	Suggestions []string `json:"suggestions,omitempty"`
	Guidance    string   `json:"guidance,omitempty"`
}

func (e *ToolError) Error() string {
	if e.Guidance != "" {
		return fmt.Sprintf("%s: %s. %s", e.Code, e.Message, e.Guidance)
	}
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

// NewError creates a ToolError
func NewError(code ErrorCode, message string) *ToolError {
	return &ToolError{
		Code:    string(code),
		Message: message,
	}
}

// WithQuery records the input that failed
func (e *ToolError) WithQuery(query string) *ToolError {
	e.Query = query
	return e
}

// WithGuidance adds a hint on how to recover
func (e *ToolError) WithGuidance(guidance string) *ToolError {
	e.Guidance = guidance
	return e
}

// WithSuggestions appends candidate values the caller could use instead
func (e *ToolError) WithSuggestions(suggestions ...string) *ToolError {
	e.Suggestions = append(e.Suggestions, suggestions...)
	return e
}

// ToMCPResult converts the error to an MCP tool error result
func (e *ToolError) ToMCPResult() *mcp.CallToolResult {
	body, err := json.Marshal(e)
	if err != nil {
		return mcp.NewToolResultError(fmt.Sprintf("ERROR: %s - %s", e.Code, e.Message))
	}
	return mcp.NewToolResultError(string(body))
}

// AsToolError returns err as a ToolError, wrapping unknown errors as internal
func AsToolError(err error) *ToolError {
	var te *ToolError
	if errors.As(err, &te) {
		return te
	}
	return NewError(ErrInternalError, err.Error())
}

// ServiceError maps an upstream HTTP status to a ToolError
func ServiceError(service string, statusCode int, message string) *ToolError {
	var code ErrorCode
	var guidance string

	switch statusCode {
	case http.StatusTooManyRequests:
		code = ErrRateLimit
		guidance = "The service is rate-limited. Try again in a few moments."
	case http.StatusRequestTimeout, http.StatusGatewayTimeout:
		code = ErrServiceTimeout
		guidance = "The request timed out. Try a shorter trip or try again later."
	case http.StatusBadRequest:
		code = ErrInvalidInput
		guidance = "The upstream service rejected the request. Check the place names and try again."
	default:
		code = ErrServiceUnavailable
		guidance = "The service is temporarily unavailable. Try again later."
	}

	return NewError(code, fmt.Sprintf("%s service error: %s", service, message)).
		WithGuidance(guidance)
}

// NewValidationError creates an input error with standard guidance
func NewValidationError(code ErrorCode, message string) *ToolError {
	return NewError(code, message).
		WithGuidance("Correct the parameters and try again.")
}
