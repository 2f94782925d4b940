// Package anthropic holds hand-written Go types for the Anthropic Messages API
// wire shapes this gateway speaks on its client-facing side: the inbound
// request (§3.1), the outbound non-streaming response (§3.3), and the
// outbound SSE event union (§3.3).
//
// These are NOT built on top of github.com/anthropics/anthropic-sdk-go's
// request/response types, for the same class of reason the upstream-facing
// schema isn't built on an OpenAI client SDK (see schema/openaicompat):
//
//  1. DECODE, NOT ENCODE: the SDK's param types are designed to encode
//     outbound calls to Anthropic's API. We are the server receiving those
//     calls; we need to decode arbitrary, sometimes malformed, client JSON.
//     Plain pointer-optional struct fields decode predictably with
//     encoding/json; the SDK's param.Opt[T] wrappers do not make that easier.
//  2. ASYMMETRIC DIRECTION: the SDK's response types are populated by
//     decoding real Anthropic API responses. We need to construct such a
//     response ourselves and marshal it out — the opposite operation the
//     SDK optimizes for.
//  3. NO RAW JSON IN THE CORE: per the design goal of exhaustive matching
//     over closed sum types, content blocks here are structs with an
//     explicit Type discriminator and named optional fields, not
//     interface{} trees.
//
// The SDK is still part of this repository: cmd/gatewayctl's convert
// --verify path decodes this package's output using the SDK's own response
// types, which is exactly the scenario the SDK is built for.
package anthropic
