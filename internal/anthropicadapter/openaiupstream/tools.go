package openaiupstream

import (
	"fmt"

	"github.com/google/uuid"
)

// synthesizeToolUseID generates an Anthropic-style tool_use block id when the
// upstream tool call carried none (§4.5.3 step 4: "id ?? synthesize(\"toolu_<k>\")").
func synthesizeToolUseID(k int) string {
	return fmt.Sprintf("toolu_%d", k)
}

// newRequestID generates a fallback Anthropic message id used when the
// upstream's first streamed chunk never supplies one.
func newRequestID() string {
	return "msg_" + uuid.New().String()
}
