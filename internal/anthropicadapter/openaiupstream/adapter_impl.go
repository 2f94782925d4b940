package openaiupstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"iter"
	"log/slog"
	"net/http"
	"time"

	"github.com/wrenhollow/anthropic-bridge/internal/anthropicadapter"
	"github.com/wrenhollow/anthropic-bridge/internal/schema/anthropic"
	"github.com/wrenhollow/anthropic-bridge/internal/schema/openaicompat"
)

// Adapter implements anthropicadapter.MessagesAdapter against an
// OpenAI-compatible Chat Completions upstream.
type Adapter struct {
	baseURL        string
	upstreamModel  string
	logger         *slog.Logger
	requestTimeout time.Duration
}

// New constructs an Adapter. baseURL is the upstream's base URL (the
// gateway appends /v1/chat/completions); upstreamModel is the
// externally-configured model name substituted for whatever model the
// client requested (§4.2 step 5). requestTimeout bounds a single
// non-streaming round trip; zero (and any non-positive value) falls back to
// withRequestTimeout's default. It is never applied to the streaming path,
// which is expected to stay open for as long as the upstream keeps sending
// chunks.
func New(baseURL, upstreamModel string, logger *slog.Logger, requestTimeout time.Duration) *Adapter {
	if logger == nil {
		logger = slog.Default()
	}
	return &Adapter{baseURL: baseURL, upstreamModel: upstreamModel, logger: logger, requestTimeout: withRequestTimeout(requestTimeout)}
}

var _ anthropicadapter.MessagesAdapter = (*Adapter)(nil)

// ProcessRequest implements anthropicadapter.Adapter.
func (a *Adapter) ProcessRequest(ctx context.Context, req anthropic.Request, transport http.RoundTripper, dump anthropicadapter.DumpSink) (*anthropic.Response, error) {
	if dump == nil {
		dump = anthropicadapter.NoopDumpSink{}
	}
	outReq, err := TransformRequest(req, a.upstreamModel)
	if err != nil {
		return nil, err
	}
	streaming := false
	outReq.Stream = &streaming

	dump.Dump(ctx, "openai_request", outReq)

	ctx, cancel := context.WithTimeout(ctx, a.requestTimeout)
	defer cancel()

	httpResp, err := a.call(ctx, outReq, transport, RequestNeedsPromptCachingHeader(req))
	if err != nil {
		return nil, err
	}
	defer httpResp.Body.Close()

	if httpResp.StatusCode >= 400 {
		body, readErr := readUpstreamErrorBody(httpResp)
		if readErr != nil {
			return nil, &anthropicadapter.UpstreamUnavailableError{Message: "failed to read upstream error body", Cause: readErr}
		}
		return nil, classifyUpstreamResponse(httpResp.StatusCode, body)
	}

	body, err := io.ReadAll(httpResp.Body)
	if err != nil {
		return nil, &anthropicadapter.UpstreamUnavailableError{Message: "failed to read upstream response body", Cause: err}
	}

	var resp openaicompat.Response
	if err := json.Unmarshal(body, &resp); err != nil {
		return nil, &anthropicadapter.MalformedUpstreamError{Message: "upstream response is not valid JSON", Cause: err}
	}

	dump.Dump(ctx, "openai_response", resp)

	return TransformResponse(resp)
}

// ProcessStreamingRequest implements anthropicadapter.Adapter. Unlike
// ProcessRequest, it does not bound ctx with a.requestTimeout: an SSE stream
// is expected to stay open for as long as the upstream keeps sending chunks,
// not for one fixed round-trip budget.
func (a *Adapter) ProcessStreamingRequest(ctx context.Context, req anthropic.Request, transport http.RoundTripper, dump anthropicadapter.DumpSink) (iter.Seq2[*anthropic.Event, error], error) {
	if dump == nil {
		dump = anthropicadapter.NoopDumpSink{}
	}
	outReq, err := TransformRequest(req, a.upstreamModel)
	if err != nil {
		return nil, err
	}
	streaming := true
	outReq.Stream = &streaming

	dump.Dump(ctx, "openai_request", outReq)

	httpResp, err := a.call(ctx, outReq, transport, RequestNeedsPromptCachingHeader(req))
	if err != nil {
		return nil, err
	}

	if httpResp.StatusCode >= 400 {
		body, readErr := readUpstreamErrorBody(httpResp)
		if readErr != nil {
			return nil, &anthropicadapter.UpstreamUnavailableError{Message: "failed to read upstream error body", Cause: readErr}
		}
		return nil, classifyUpstreamResponse(httpResp.StatusCode, body)
	}

	requestID := newRequestID()
	return TransduceStream(httpResp.Body, requestID, a.logger, dump), nil
}

// TransduceStream frames an OpenAI-compatible SSE body and transduces it
// into Anthropic SSE events (§4.5/§4.6), independent of how the body was
// obtained. cmd/gatewayctl's offline convert command uses this directly
// against a file on disk; Adapter.ProcessStreamingRequest uses it against a
// live upstream response body. Every raw chunk is recorded to dump before
// it is fed to the transducer, so a captured trace can be replayed without
// re-contacting the upstream.
func TransduceStream(body io.ReadCloser, requestID string, logger *slog.Logger, dump anthropicadapter.DumpSink) iter.Seq2[*anthropic.Event, error] {
	if logger == nil {
		logger = slog.Default()
	}
	if dump == nil {
		dump = anthropicadapter.NoopDumpSink{}
	}
	return func(yield func(*anthropic.Event, error) bool) {
		defer body.Close()

		f := newFramer(body, logger)
		t := newTransducer(requestID)

		for {
			fr, ok, err := f.next()
			if err != nil {
				// §4.5.5: a connection error after started must still
				// produce a valid finalization sequence, ending with end_turn.
				t.sawToolCall = false
				for _, ev := range t.finalize() {
					if !yield(&ev, nil) {
						return
					}
				}
				return
			}
			if !ok {
				for _, ev := range t.finalize() {
					if !yield(&ev, nil) {
						return
					}
				}
				return
			}

			if fr.done {
				for _, ev := range t.finalize() {
					if !yield(&ev, nil) {
						return
					}
				}
				return
			}

			dump.Dump(context.Background(), "openai_chunk", fr.chunk)

			for _, ev := range t.feed(fr.chunk) {
				if !yield(&ev, nil) {
					return
				}
			}

			if fr.chunk.Choices != nil && len(fr.chunk.Choices) > 0 && fr.chunk.Choices[0].FinishReason != nil {
				for _, ev := range t.finalize() {
					if !yield(&ev, nil) {
						return
					}
				}
				return
			}
		}
	}
}

func (a *Adapter) call(ctx context.Context, outReq openaicompat.Request, transport http.RoundTripper, needsCacheHeader bool) (*http.Response, error) {
	client, err := newClient(transport)
	if err != nil {
		return nil, &anthropicadapter.UpstreamUnavailableError{Message: "failed to build upstream client", Cause: err}
	}

	encoded, err := json.Marshal(outReq)
	if err != nil {
		return nil, fmt.Errorf("encode upstream request: %w", err)
	}

	httpReq, err := http.NewRequestWithContext(ctx, http.MethodPost, upstreamURL(a.baseURL), bytes.NewReader(encoded))
	if err != nil {
		return nil, fmt.Errorf("build upstream request: %w", err)
	}
	httpReq.Header.Set("Content-Type", "application/json")
	if needsCacheHeader {
		httpReq.Header.Set(promptCachingBetaHeaderName, promptCachingBetaHeaderValue)
	}

	resp, err := client.Do(httpReq)
	if err != nil {
		return nil, &anthropicadapter.UpstreamUnavailableError{Message: "upstream request failed", Cause: err}
	}
	return resp, nil
}
