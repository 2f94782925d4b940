package observability

import (
	"context"
	"fmt"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/contrib/processors/minsev"
	otellog "go.opentelemetry.io/otel/log"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// Instrument sets the global slog default logger: a human-readable stdout
// handler always runs, enriched with trace correlation attributes. When
// otelExporter names a real exporter ("otlp-grpc", "otlp-http", or
// "stdout"), log records are additionally fanned out through an OTel
// LoggerProvider via the otelslog bridge. "none" or "" disables the OTel
// side entirely.
//
// The returned shutdown func flushes and closes the OTel pipeline (a no-op
// when none was configured) and should run during application shutdown.
func Instrument(level slog.Level, logFormat, otelExporter, otelEndpoint string) (func(context.Context) error, error) {
	stdoutHandler, err := newStdoutHandler(level, logFormat)
	if err != nil {
		return nil, err
	}
	handler := slog.Handler(newTraceContextHandler(stdoutHandler))

	shutdown := func(context.Context) error { return nil }

	if exporter := strings.ToLower(otelExporter); exporter != "" && exporter != "none" {
		provider, err := newOtelLoggerProvider(context.Background(), exporter, otelEndpoint, level)
		if err != nil {
			return nil, fmt.Errorf("observability: building OTel log pipeline: %w", err)
		}
		otelHandler := otelslog.NewHandler("anthropic-bridge", otelslog.WithLoggerProvider(provider))
		handler = newFanoutHandler(handler, otelHandler)
		shutdown = provider.Shutdown
	}

	slog.SetDefault(slog.New(handler))
	return shutdown, nil
}

// newStdoutHandler creates a handler for human-readable logs.
func newStdoutHandler(level slog.Level, logFormat string) (slog.Handler, error) {
	opts := &slog.HandlerOptions{
		Level: level,
	}

	var handler slog.Handler
	switch strings.ToLower(logFormat) {
	case "json":
		handler = slog.NewJSONHandler(os.Stdout, opts)
	case "text":
		handler = slog.NewTextHandler(os.Stdout, opts)
	default:
		return nil, fmt.Errorf("unsupported log format %q (expected: json, text)", logFormat)
	}

	return handler, nil
}

// newOtelLoggerProvider builds an OTel LoggerProvider whose processor drops
// records below level before they ever reach the exporter.
func newOtelLoggerProvider(ctx context.Context, exporter, endpoint string, level slog.Level) (*sdklog.LoggerProvider, error) {
	exp, err := newLogExporter(ctx, exporter, endpoint)
	if err != nil {
		return nil, err
	}

	sev := minsev.SeverityVar{}
	sev.Set(minsev.Severity(levelToSeverity(level)))

	processor := minsev.NewLogProcessor(sdklog.NewBatchProcessor(exp), &sev)
	return sdklog.NewLoggerProvider(sdklog.WithProcessor(processor)), nil
}

func newLogExporter(ctx context.Context, exporter, endpoint string) (sdklog.Exporter, error) {
	switch exporter {
	case "otlp-grpc":
		opts := []otlploggrpc.Option{}
		if endpoint != "" {
			opts = append(opts, otlploggrpc.WithEndpoint(endpoint))
		}
		return otlploggrpc.New(ctx, opts...)
	case "otlp-http":
		opts := []otlploghttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlploghttp.WithEndpoint(endpoint))
		}
		return otlploghttp.New(ctx, opts...)
	case "stdout":
		return stdoutlog.New()
	default:
		return nil, fmt.Errorf("unsupported otel exporter %q (expected: none, stdout, otlp-grpc, otlp-http)", exporter)
	}
}

func levelToSeverity(level slog.Level) otellog.Severity {
	switch {
	case level <= slog.LevelDebug:
		return otellog.SeverityDebug
	case level <= slog.LevelInfo:
		return otellog.SeverityInfo
	case level <= slog.LevelWarn:
		return otellog.SeverityWarn
	default:
		return otellog.SeverityError
	}
}
