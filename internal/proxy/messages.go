package proxy

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"net/http"

	"github.com/wrenhollow/anthropic-bridge/internal/anthropicadapter/openaiupstream"
	"github.com/wrenhollow/anthropic-bridge/internal/debugdump"
	"github.com/wrenhollow/anthropic-bridge/internal/observability/middleware"
	"github.com/wrenhollow/anthropic-bridge/internal/schema/anthropic"
)

// messagesHandler serves POST /v1/messages: decode, validate, translate,
// forward, translate back. It carries no protocol-translation logic of its
// own (§4.8) — everything here is wiring around the core.
type messagesHandler struct {
	proxy *Proxy
}

var _ http.Handler = (*messagesHandler)(nil)

func (h *messagesHandler) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	ctx := withInboundCredential(r.Context(), r)

	body, err := readAll(r)
	if err != nil {
		var maxBytesErr *http.MaxBytesError
		if errors.As(err, &maxBytesErr) {
			slog.WarnContext(ctx, "request exceeds size limit", "limit_bytes", maxBytesErr.Limit)
			writeAnthropicError(ctx, w, &requestTooLargeError{limit: maxBytesErr.Limit})
			return
		}
		slog.ErrorContext(ctx, "failed to read request body", "error", err)
		writeAnthropicError(ctx, w, err)
		return
	}

	req, err := openaiupstream.Validate(body)
	if err != nil {
		slog.WarnContext(ctx, "request validation failed", "error", err)
		writeAnthropicError(ctx, w, err)
		return
	}

	requestID, _ := r.Context().Value(middleware.RequestIDContextKey{}).(string)
	dump, err := debugdump.New(h.proxy.dumpDir, requestID)
	if err != nil {
		slog.ErrorContext(ctx, "failed to open debug dump sink", "error", err)
	}
	defer func() {
		if cerr := dump.Close(); cerr != nil {
			slog.ErrorContext(ctx, "failed to close debug dump sink", "error", cerr)
		}
	}()

	dump.Dump(ctx, "anthropic_request", req)

	if req.Stream != nil && *req.Stream {
		h.streamResponse(ctx, w, *req, dump)
	} else {
		h.writeResponse(ctx, w, *req, dump)
	}
}

func (h *messagesHandler) writeResponse(ctx context.Context, w http.ResponseWriter, req anthropic.Request, dump *debugdump.Sink) {
	if ctx.Err() != nil {
		return
	}

	resp, err := h.proxy.adapter.ProcessRequest(ctx, req, h.proxy.transport, dump)
	if err != nil {
		slog.ErrorContext(ctx, "request failed", "error", err)
		writeAnthropicError(ctx, w, err)
		return
	}

	dump.Dump(ctx, "anthropic_response", resp)

	writeJSON(ctx, w, resp, http.StatusOK)
}

func (h *messagesHandler) streamResponse(ctx context.Context, w http.ResponseWriter, req anthropic.Request, dump *debugdump.Sink) {
	if ctx.Err() != nil {
		return
	}

	stream, err := h.proxy.adapter.ProcessStreamingRequest(ctx, req, h.proxy.transport, dump)
	if err != nil {
		slog.ErrorContext(ctx, "streaming request failed", "error", err)
		writeAnthropicError(ctx, w, err)
		return
	}

	sse, err := NewSSEWriter(w)
	if err != nil {
		slog.ErrorContext(ctx, "SSE not supported", "error", err)
		writeAnthropicError(ctx, w, err)
		return
	}

	// TransduceStream (§4.5.5) always converts a framer failure into a
	// terminal finalize() sequence yielded with a nil error, so the stream
	// here never carries one; there is no undefined "error" SSE frame to
	// emit mid-stream.
	for event, _ := range stream {
		if ctx.Err() != nil {
			slog.DebugContext(ctx, "client disconnected during stream")
			return
		}

		dump.Dump(ctx, "anthropic_event", event)

		if writeErr := sse.WriteEvent(event.Type); writeErr != nil {
			slog.DebugContext(ctx, "client gone while writing SSE event", "error", writeErr)
			return
		}
		if writeErr := sse.WriteData(event); writeErr != nil {
			slog.DebugContext(ctx, "client gone while writing SSE data", "error", writeErr)
			return
		}
	}
}

// requestTooLargeError represents a request body that exceeded the
// configured size limit.
type requestTooLargeError struct {
	limit int64
}

func (e *requestTooLargeError) Error() string {
	return http.StatusText(http.StatusRequestEntityTooLarge)
}

func readAll(r *http.Request) ([]byte, error) {
	defer r.Body.Close()
	return io.ReadAll(r.Body)
}
