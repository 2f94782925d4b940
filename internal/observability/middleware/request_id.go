package middleware

import (
	"context"
	"log/slog"
	"net/http"

	"github.com/google/uuid"
)

// RequestIDContextKey is the context key debugdump and the proxy handlers
// use to recover the request ID assigned to an inbound call.
type RequestIDContextKey struct{}

// requestIDHeader is the header gatewayctl's debug-dump tooling and clients
// correlate against; it mirrors the one Anthropic's own SDKs send back.
const requestIDHeader = "X-Request-ID"

func requestIDFrom(r *http.Request) string {
	if id := r.Header.Get(requestIDHeader); id != "" {
		return id
	}
	if id, ok := r.Context().Value(RequestIDContextKey{}).(string); ok && id != "" {
		return id
	}
	return uuid.New().String()
}

// RequestIDGeneration assigns every inbound request a stable ID — taken
// from the client's own header if it sent one, generated otherwise — and
// stores it in the request context for everything downstream: debug dump
// file naming, structured log correlation, and the response header.
func RequestIDGeneration(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		ctx := context.WithValue(r.Context(), RequestIDContextKey{}, requestIDFrom(r))
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// RequestIDPropagation echoes the assigned request ID back on the response
// and attaches it to the request's log attributes.
func RequestIDPropagation(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if requestID, ok := r.Context().Value(RequestIDContextKey{}).(string); ok && requestID != "" {
			w.Header().Set(requestIDHeader, requestID)
			SetLogAttrs(r.Context(), slog.String("request_id", requestID))
		}
		next.ServeHTTP(w, r)
	})
}
