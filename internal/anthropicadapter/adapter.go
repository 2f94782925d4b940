// Package anthropicadapter defines the contract for translating Anthropic
// Messages API requests into calls against an upstream chat-completions
// provider and translating the replies back into Anthropic's wire shape.
package anthropicadapter

import (
	"context"
	"iter"
	"net/http"

	"github.com/wrenhollow/anthropic-bridge/internal/schema/anthropic"
)

// DumpSink receives one labeled payload at a time for offline replay and
// debugging (§4.11). It is satisfied by *internal/debugdump.Sink; adapters
// depend only on this method set so the translation core never imports the
// debug dump package directly. A nil *debugdump.Sink boxed in this interface
// is still safe to call — Dump is a nil-receiver no-op.
type DumpSink interface {
	Dump(ctx context.Context, kind string, payload any)
}

// NoopDumpSink discards every payload. Callers that have no configured
// debug dump directory pass this instead of a nil interface value, so
// adapters can call Dump unconditionally.
type NoopDumpSink struct{}

func (NoopDumpSink) Dump(context.Context, string, any) {}

// Adapter defines the contract for transforming an Anthropic Messages API
// request into provider API calls and translating the reply back.
//
// Type parameters allow the interface to express transformation contracts
// for different upstream request/response/chunk shapes while maintaining
// compile-time type safety.
//
// Type parameters:
//   - TUpstreamRequest:  provider-specific outbound request structure
//   - TUpstreamResponse: provider-specific non-streaming response structure
//   - TUpstreamChunk:    provider-specific streaming chunk structure
type Adapter[TUpstreamRequest, TUpstreamResponse, TUpstreamChunk any] interface {
	// ProcessRequest transforms the already-validated Anthropic request, calls
	// the upstream provider, and returns an Anthropic-shaped response.
	// Implementations should remain stateless. dump records the outgoing
	// upstream request and the raw upstream response for offline replay.
	ProcessRequest(ctx context.Context, req anthropic.Request, transport http.RoundTripper, dump DumpSink) (*anthropic.Response, error)

	// ProcessStreamingRequest transforms the already-validated Anthropic
	// request, calls the upstream provider's streaming API, and returns an
	// iterator of Anthropic SSE events. Implementations should remain
	// stateless. dump records the outgoing upstream request and every raw
	// upstream chunk for offline replay.
	ProcessStreamingRequest(ctx context.Context, req anthropic.Request, transport http.RoundTripper, dump DumpSink) (iter.Seq2[*anthropic.Event, error], error)
}

// Type aliases for the Messages endpoint (§2, §4).
// MessagesAdapter is the concrete adapter interface this gateway implements.
type (
	MessagesRequest  = anthropic.Request
	MessagesResponse = anthropic.Response
	MessagesEvent    = anthropic.Event

	MessagesAdapter = Adapter[MessagesRequest, MessagesResponse, MessagesEvent]
)
