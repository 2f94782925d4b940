package proxy

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
)

// SSEWriter writes Server-Sent Events frames to an http.ResponseWriter,
// flushing after every write so the client observes each event as it is
// produced rather than buffered until the handler returns.
type SSEWriter struct {
	w       http.ResponseWriter
	flusher http.Flusher
}

// NewSSEWriter prepares w for event-stream output and writes the response
// headers. It fails if w does not support flushing, since buffered output
// would defeat the purpose of streaming.
func NewSSEWriter(w http.ResponseWriter) (*SSEWriter, error) {
	flusher, ok := w.(http.Flusher)
	if !ok {
		return nil, errors.New("response writer does not support flushing")
	}

	w.Header().Set("Content-Type", "text/event-stream")
	w.Header().Set("Cache-Control", "no-cache")
	w.Header().Set("Connection", "keep-alive")
	w.WriteHeader(http.StatusOK)
	flusher.Flush()

	return &SSEWriter{w: w, flusher: flusher}, nil
}

// WriteEvent writes an SSE "event:" line naming the event type. Anthropic's
// streaming protocol names every event this way, one per content_block/
// message lifecycle transition.
func (s *SSEWriter) WriteEvent(eventType string) error {
	if _, err := fmt.Fprintf(s.w, "event: %s\n", eventType); err != nil {
		return fmt.Errorf("write event line: %w", err)
	}
	return nil
}

// WriteData JSON-encodes v and writes it as an SSE "data:" line terminated
// by a blank line, then flushes.
func (s *SSEWriter) WriteData(v any) error {
	encoded, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode SSE payload: %w", err)
	}
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", encoded); err != nil {
		return fmt.Errorf("write data line: %w", err)
	}
	s.flusher.Flush()
	return nil
}

// WriteRaw writes s verbatim as an SSE "data:" line, for payloads that are
// already framed (or aren't JSON, such as a literal [DONE] marker).
func (s *SSEWriter) WriteRaw(data string) error {
	if _, err := fmt.Fprintf(s.w, "data: %s\n\n", data); err != nil {
		return fmt.Errorf("write raw data line: %w", err)
	}
	s.flusher.Flush()
	return nil
}
