// Package openaicompat holds hand-written Go types for the OpenAI Chat
// Completions wire shapes this gateway speaks on its upstream-facing side:
// the outbound request (§3.2), the inbound non-streaming response (§3.4),
// and the inbound SSE chunk (§3.4).
//
// These types are hand-written rather than generated from an OpenAI OpenAPI
// document, and they are not built on an OpenAI client SDK, for reasons that
// mirror the Anthropic-side schema package's own rationale:
//
//  1. WE ARE THE CLIENT HERE, NOT THE SERVER: this is the one direction
//     where a vendor client SDK would otherwise fit — we do call an
//     OpenAI-compatible endpoint. But "OpenAI-compatible" upstreams vary
//     enough in which optional fields they accept (reasoning_effort,
//     extra tool-choice shapes, provider-specific usage fields) that a
//     single official SDK's strict param types would reject variations a
//     reverse proxy needs to tolerate and forward, or reinterpret as
//     extensions outside any official schema.
//  2. SYMMETRIC OPTIONALITY: the same struct shape is both marshaled
//     (building the outbound request) and unmarshaled (decoding the
//     response/chunk). Plain pointer-optional fields round-trip through
//     encoding/json predictably in both directions; that symmetry is the
//     deciding factor, independent of which side initiates the call.
//  3. NO RAW JSON IN THE CORE: tool-call deltas build up across chunks into
//     an explicit, named accumulator type (see the streaming transducer),
//     never a generic map/interface{} tree.
package openaicompat
