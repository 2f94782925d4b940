// Package proxy implements the HTTP shell around the core Anthropic Messages
// → OpenAI Chat Completions translation engine: routing, middleware, and
// wiring the decoded request through validate → request transform → upstream
// fetch → response transform/transducer, then writing the result back.
package proxy

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/wrenhollow/anthropic-bridge/internal/anthropicadapter/openaiupstream"
	"github.com/wrenhollow/anthropic-bridge/internal/observability/middleware"
)

// defaultMaxBodyBytes bounds the size of an inbound request body. Requests
// larger than this are rejected before JSON decoding begins.
const defaultMaxBodyBytes = 10 << 20 // 10 MiB

// ReadinessChecker reports whether the application is ready to serve traffic.
type ReadinessChecker interface {
	IsReady() bool
}

// Proxy serves the Anthropic Messages API surface and forwards translated
// requests to an OpenAI-compatible upstream.
type Proxy struct {
	mux     *http.ServeMux
	handler http.Handler
	server  *http.Server

	adapter        *openaiupstream.Adapter
	transport      http.RoundTripper
	logger         *slog.Logger
	maxBodyBytes   int64
	dumpDir        string
	health         ReadinessChecker
	requestTimeout time.Duration
}

// Option configures a Proxy at construction time.
type Option func(*Proxy)

// WithTransport overrides the http.RoundTripper used to reach the upstream.
// Defaults to http.DefaultTransport. Tests use this to inject a mock.
func WithTransport(t http.RoundTripper) Option {
	return func(p *Proxy) { p.transport = t }
}

// WithLogger overrides the logger used for request handling. Defaults to
// slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(p *Proxy) { p.logger = l }
}

// WithMaxBodyBytes overrides the inbound request body size limit.
func WithMaxBodyBytes(n int64) Option {
	return func(p *Proxy) { p.maxBodyBytes = n }
}

// WithDebugDump enables per-request JSONL dumping under dir (see
// internal/debugdump). An empty dir (the default) disables dumping.
func WithDebugDump(dir string) Option {
	return func(p *Proxy) { p.dumpDir = dir }
}

// WithRequestTimeout bounds a single non-streaming upstream round trip. It
// has no effect on streaming requests, which stay open for as long as the
// upstream keeps sending chunks. Non-positive values fall back to
// openaiupstream's own default.
func WithRequestTimeout(d time.Duration) Option {
	return func(p *Proxy) { p.requestTimeout = d }
}

// New constructs a Proxy that forwards to the OpenAI-compatible upstream at
// baseURL, always substituting upstreamModel for whatever model name the
// client requested.
func New(baseURL, upstreamModel string, health ReadinessChecker, opts ...Option) (*Proxy, error) {
	if baseURL == "" {
		return nil, errors.New("proxy: baseURL must not be empty")
	}
	if health == nil {
		return nil, errors.New("proxy: health checker must not be nil")
	}

	p := &Proxy{
		transport:    http.DefaultTransport,
		logger:       slog.Default(),
		maxBodyBytes: defaultMaxBodyBytes,
		health:       health,
	}
	for _, opt := range opts {
		opt(p)
	}

	p.adapter = openaiupstream.New(baseURL, upstreamModel, p.logger, p.requestTimeout)
	p.mux = http.NewServeMux()
	p.routes()

	return p, nil
}

func (p *Proxy) routes() {
	messages := &messagesHandler{proxy: p}

	handler := chain(p.mux,
		Recovery,
		middleware.RequestIDGeneration,
		middleware.TraceContextExtraction,
		middleware.Logging(p.logger),
		middleware.RequestIDPropagation,
		RequestSizeLimit(p.maxBodyBytes),
	)

	p.mux.Handle("POST /v1/messages", messages)
	p.mux.Handle("GET /v1/models", modelsHandler())
	p.mux.Handle("GET /livez", livenessHandler())
	p.mux.Handle("GET /readyz", readinessHandler(p.health))

	p.handler = handler
}

// ServeHTTP implements http.Handler, allowing a Proxy to be used directly
// with httptest.NewServer or a custom *http.Server.
func (p *Proxy) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	p.handler.ServeHTTP(w, r)
}

// Start begins listening on addr and returns a channel that receives at most
// one error if the server stops unexpectedly. A nil error on Shutdown does
// not appear on this channel.
func (p *Proxy) Start(ctx context.Context, addr string) (<-chan error, error) {
	p.server = &http.Server{
		Addr:    addr,
		Handler: p,
	}

	errCh := make(chan error, 1)
	go func() {
		if err := p.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- fmt.Errorf("listen and serve: %w", err)
			return
		}
		errCh <- nil
	}()

	return errCh, nil
}

// Shutdown gracefully stops the server, waiting for in-flight requests to
// complete or ctx to expire, whichever comes first.
func (p *Proxy) Shutdown(ctx context.Context) error {
	if p.server == nil {
		return nil
	}
	return p.server.Shutdown(ctx)
}
