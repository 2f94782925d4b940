package openaiupstream

import (
	"bufio"
	"encoding/json"
	"io"
	"log/slog"
	"strings"

	"github.com/wrenhollow/anthropic-bridge/internal/schema/openaicompat"
)

// frame is one decoded record produced by the framer: either a parsed
// OpenAI chunk or the terminal [DONE] marker.
type frame struct {
	chunk *openaicompat.Chunk
	done  bool
}

// framer is the SSE line framer (§4.4): it consumes an unbounded byte
// stream and produces a lazy sequence of decoded frames. It is robust to
// arbitrary chunk boundaries (§8 invariant 7) because it reads whole lines
// from a buffered reader rather than assuming frame-aligned reads.
type framer struct {
	scanner *bufio.Scanner
	logger  *slog.Logger
}

func newFramer(r io.Reader, logger *slog.Logger) *framer {
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 0, 64*1024), 1024*1024)
	if logger == nil {
		logger = slog.Default()
	}
	return &framer{scanner: scanner, logger: logger}
}

// next returns the next decoded frame, or (nil, false, nil) at end of
// stream, or (nil, false, err) on a read error. Lines that fail JSON
// parsing are logged and skipped rather than aborting the stream
// (§4.4 step 3).
func (f *framer) next() (*frame, bool, error) {
	for f.scanner.Scan() {
		line := strings.TrimRight(f.scanner.Text(), "\r")
		payload, ok := strings.CutPrefix(line, "data: ")
		if !ok {
			// Comments, event-type headers, blank lines: ignored (§4.4).
			continue
		}
		if payload == "[DONE]" {
			return &frame{done: true}, true, nil
		}
		var chunk openaicompat.Chunk
		if err := json.Unmarshal([]byte(payload), &chunk); err != nil {
			f.logger.Warn("openaiupstream: dropping malformed SSE chunk", "error", err)
			continue
		}
		return &frame{chunk: &chunk}, true, nil
	}
	if err := f.scanner.Err(); err != nil {
		return nil, false, err
	}
	return nil, false, nil
}
