package openaiupstream

import (
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/wrenhollow/anthropic-bridge/internal/anthropicadapter"
	"github.com/wrenhollow/anthropic-bridge/internal/schema/openaicompat"
)

// classifyUpstreamResponse inspects a non-2xx upstream HTTP response and
// returns the gateway-taxonomy error for it (§7 "Taxonomy", "Policy":
// "Upstream error responses are forwarded with their original body and
// status when the status is 4xx ... 5xx is re-wrapped in the Anthropic
// envelope").
func classifyUpstreamResponse(statusCode int, body []byte) error {
	if statusCode >= 500 {
		return &anthropicadapter.UpstreamUnavailableError{
			Message:    fmt.Sprintf("upstream returned status %d", statusCode),
			StatusCode: statusCode,
		}
	}

	message := fmt.Sprintf("upstream returned status %d with non-JSON body", statusCode)
	var errResp openaicompat.ErrorResponse
	if err := json.Unmarshal(body, &errResp); err == nil {
		message = errResp.Err.Message
	}

	// 4xx: the upstream's own error body reaches the client verbatim, JSON or
	// not; the caller (the proxy collaborator) is responsible for forwarding
	// the original status and body. This error carries the parsed message
	// only for logging.
	return &upstream4xxError{statusCode: statusCode, body: body, message: message}
}

// upstream4xxError marks a 4xx upstream response whose body should be
// forwarded to the client verbatim (§7 Policy).
type upstream4xxError struct {
	statusCode int
	body       []byte
	message    string
}

func (e *upstream4xxError) Error() string {
	return fmt.Sprintf("upstream %d: %s", e.statusCode, e.message)
}

func (e *upstream4xxError) StatusCode() int { return e.statusCode }
func (e *upstream4xxError) Body() []byte    { return e.body }

// readUpstreamErrorBody drains and returns the body of a non-2xx upstream
// response, bounded defensively since the body is not expected to be large.
func readUpstreamErrorBody(resp *http.Response) ([]byte, error) {
	defer resp.Body.Close()
	return io.ReadAll(io.LimitReader(resp.Body, 1<<20))
}
