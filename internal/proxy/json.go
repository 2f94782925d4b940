package proxy

import (
	"context"
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"

	"github.com/wrenhollow/anthropic-bridge/internal/anthropicadapter"
)

// anthropicError is the Anthropic API's error envelope (§6 "Error envelope").
type anthropicError struct {
	Type  string          `json:"type"`
	Error anthropicDetail `json:"error"`
}

type anthropicDetail struct {
	Type    string `json:"type"`
	Message string `json:"message"`
	Param   string `json:"param,omitempty"`
}

// upstreamForwardableError is satisfied by a 4xx upstream failure that
// should reach the client with its original status and body intact (§7
// "Policy").
type upstreamForwardableError interface {
	error
	StatusCode() int
	Body() []byte
}

// writeJSON writes a JSON response with the given status code.
func writeJSON(ctx context.Context, w http.ResponseWriter, data any, status int) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(data); err != nil {
		slog.ErrorContext(ctx, "failed to encode JSON response", "error", err)
	}
}

// writeAnthropicError classifies err per spec.md §7's taxonomy and writes the
// Anthropic error envelope with the matching HTTP status, or forwards a 4xx
// upstream body verbatim.
func writeAnthropicError(ctx context.Context, w http.ResponseWriter, err error) {
	var forwardable upstreamForwardableError
	if errors.As(err, &forwardable) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(forwardable.StatusCode())
		if _, writeErr := w.Write(forwardable.Body()); writeErr != nil {
			slog.ErrorContext(ctx, "failed to forward upstream error body", "error", writeErr)
		}
		return
	}

	kind, status := classifyError(err)
	writeJSON(ctx, w, anthropicError{
		Type:  "error",
		Error: anthropicDetail{Type: kind, Message: err.Error(), Param: errorParam(err)},
	}, status)
}

// classifyError maps a core error onto the Anthropic error kind and HTTP
// status that represents it (§7 "Taxonomy").
func classifyError(err error) (kind string, status int) {
	var tooLarge *requestTooLargeError
	if errors.As(err, &tooLarge) {
		return anthropicadapter.KindInvalidRequest, http.StatusRequestEntityTooLarge
	}

	var invalidReq *anthropicadapter.InvalidRequestError
	if errors.As(err, &invalidReq) {
		return anthropicadapter.KindInvalidRequest, http.StatusBadRequest
	}

	var upstreamUnavailable *anthropicadapter.UpstreamUnavailableError
	if errors.As(err, &upstreamUnavailable) {
		return anthropicadapter.KindAPI, http.StatusBadGateway
	}

	var malformedUpstream *anthropicadapter.MalformedUpstreamError
	if errors.As(err, &malformedUpstream) {
		return anthropicadapter.KindAPI, http.StatusBadGateway
	}

	var malformedTool *anthropicadapter.MalformedToolArgumentsError
	if errors.As(err, &malformedTool) {
		return anthropicadapter.KindAPI, http.StatusBadGateway
	}

	return anthropicadapter.KindAPI, http.StatusInternalServerError
}

func errorParam(err error) string {
	var invalidReq *anthropicadapter.InvalidRequestError
	if errors.As(err, &invalidReq) {
		return invalidReq.Param
	}
	return ""
}
