package anthropicadapter

import "fmt"

// Error kinds surfaced to HTTP clients in the Anthropic error envelope
// (§7 "Taxonomy").
const (
	KindInvalidRequest = "invalid_request_error"
	KindAuthentication = "authentication_error"
	KindPermission     = "permission_error"
	KindRateLimit      = "rate_limit_error"
	KindAPI            = "api_error"
	KindOverloaded     = "overloaded_error"
)

// InvalidRequestError is a validation failure (§4.1, §7). Param names the
// first offending path, e.g. "messages.0.content".
type InvalidRequestError struct {
	Message string
	Param   string
}

func (e *InvalidRequestError) Error() string { return e.Message }

// UpstreamUnavailableError wraps an upstream connection failure or 5xx
// response (§7).
type UpstreamUnavailableError struct {
	Message    string
	StatusCode int
	Cause      error
}

func (e *UpstreamUnavailableError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *UpstreamUnavailableError) Unwrap() error { return e.Cause }

// MalformedUpstreamError means the upstream returned non-JSON or
// shape-mismatched JSON on the non-streaming path (§7).
type MalformedUpstreamError struct {
	Message string
	Cause   error
}

func (e *MalformedUpstreamError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("%s: %v", e.Message, e.Cause)
	}
	return e.Message
}

func (e *MalformedUpstreamError) Unwrap() error { return e.Cause }

// MalformedToolArgumentsError means a tool call's arguments string in the
// upstream reply could not be parsed as JSON (§4.3, §7).
type MalformedToolArgumentsError struct {
	ToolCallID string
	ToolName   string
	Cause      error
}

func (e *MalformedToolArgumentsError) Error() string {
	return fmt.Sprintf("tool call %s (%s): malformed arguments: %v", e.ToolCallID, e.ToolName, e.Cause)
}

func (e *MalformedToolArgumentsError) Unwrap() error { return e.Cause }

// ClientGoneError marks a downstream write failure during streaming (§7).
// It carries no message because no error envelope is ever sent for it: the
// connection is already broken.
type ClientGoneError struct {
	Cause error
}

func (e *ClientGoneError) Error() string { return "client gone" }

func (e *ClientGoneError) Unwrap() error { return e.Cause }
