// Package openaiupstream implements the protocol translation engine that
// calls an OpenAI-compatible Chat Completions upstream on behalf of
// Anthropic Messages API clients.
//
// The package holds:
//
//   - Request transformation: Anthropic message structures, tool
//     definitions, and multi-modal content mapped into the flat OpenAI
//     schema (request.go, content.go, tools.go).
//
//   - Non-streaming response transformation: the first OpenAI choice mapped
//     back into an Anthropic content sequence and stop_reason (response.go,
//     usage.go).
//
//   - The SSE line framer: a byte-to-line-to-chunk reassembler tolerant of
//     arbitrary chunk boundaries (framer.go).
//
//   - The streaming transducer: the stateful chunk-to-event translator that
//     is the core of this system (transducer.go).
//
//   - Validation of inbound Anthropic requests (validator.go) and mapping of
//     upstream failures onto this gateway's error taxonomy (errors.go).
//
// # Adapters
//
// MessagesAdapter: Anthropic Messages → OpenAI Chat Completions
package openaiupstream
