// Package debugdump writes a JSONL trace of every payload that passes
// through the gateway to disk, for replaying a captured request with
// cmd/gatewayctl convert. It never participates in request handling itself:
// a write failure is logged and otherwise ignored.
package debugdump

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Sink writes one JSON object per line to a file named after the request ID
// it was constructed for, under a configured directory. Each line carries a
// "kind" discriminator ("anthropic_request", "openai_request",
// "openai_response", "openai_chunk", "anthropic_response",
// "anthropic_event") so a single file
// holds the full lifecycle of one request.
type Sink struct {
	dir       string
	requestID string

	mu   sync.Mutex
	file *os.File
}

// New opens (creating if necessary) the dump file for requestID under dir.
// Returns nil, nil if dir is empty, so callers can treat a disabled dump
// sink identically to a configured one via the nil-safe methods below.
func New(dir, requestID string) (*Sink, error) {
	if dir == "" {
		return nil, nil
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, fmt.Errorf("debugdump: creating %s: %w", dir, err)
	}

	path := filepath.Join(dir, requestID+".jsonl")
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o600)
	if err != nil {
		return nil, fmt.Errorf("debugdump: opening %s: %w", path, err)
	}

	return &Sink{dir: dir, requestID: requestID, file: f}, nil
}

type record struct {
	Kind      string    `json:"kind"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
	Payload   any       `json:"payload"`
}

// Dump writes one JSONL record. A nil Sink is a valid no-op receiver, so
// callers do not need to branch on whether dumping is enabled.
func (s *Sink) Dump(ctx context.Context, kind string, payload any) {
	if s == nil {
		return
	}

	line, err := json.Marshal(record{
		Kind:      kind,
		Timestamp: time.Now(),
		RequestID: s.requestID,
		Payload:   payload,
	})
	if err != nil {
		slog.ErrorContext(ctx, "debugdump: marshal failed", "kind", kind, "error", err)
		return
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	if _, err := s.file.Write(append(line, '\n')); err != nil {
		slog.ErrorContext(ctx, "debugdump: write failed", "kind", kind, "error", err)
	}
}

// Close releases the underlying file handle. A nil Sink is a valid no-op
// receiver.
func (s *Sink) Close() error {
	if s == nil {
		return nil
	}
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.file.Close()
}
