package anthropic

// ErrorResponse is the Anthropic error envelope returned to HTTP clients
// (§6 "Error envelope").
type ErrorResponse struct {
	Type string      `json:"type"`
	Err  ErrorDetail `json:"error"`
}

// ErrorDetail names the error kind, a human-readable message, and optionally
// the offending request path.
type ErrorDetail struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Param   string `json:"param,omitempty"`
}

// Error kind taxonomy (§6).
const (
	ErrorKindInvalidRequest = "invalid_request_error"
	ErrorKindAuthentication = "authentication_error"
	ErrorKindPermission     = "permission_error"
	ErrorKindNotFound       = "not_found_error"
	ErrorKindRateLimit      = "rate_limit_error"
	ErrorKindAPI            = "api_error"
	ErrorKindOverloaded     = "overloaded_error"
)

// NewErrorResponse builds the standard {"type":"error","error":{...}} envelope.
func NewErrorResponse(kind, message, param string) ErrorResponse {
	return ErrorResponse{
		Type: "error",
		Err: ErrorDetail{
			Type:    kind,
			Message: message,
			Param:   param,
		},
	}
}

func (e ErrorResponse) Error() string {
	return e.Err.Message
}
