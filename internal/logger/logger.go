// Package logger wraps log/slog with optional OpenTelemetry spans so that
// every engine stage can be timed and correlated by trace ID.
package logger

import (
	"context"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/seenimoa/neuroquant/internal/config"
)

const serviceName = "neuroquant"

var (
	mu             sync.RWMutex
	globalLogger   = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelInfo}))
	tracingEnabled bool
	tracer         trace.Tracer
	tracerProvider *sdktrace.TracerProvider
)

// Init initializes the global logger and tracer from the logging config.
// Logs go to stderr so that machine-readable command output stays on stdout.
func Init(cfg config.LoggingConfig, version string) error {
	return InitWithWriter(cfg, version, os.Stderr)
}

// InitWithWriter is Init with an explicit destination for log records and spans.
func InitWithWriter(cfg config.LoggingConfig, version string, w io.Writer) error {
	opts := &slog.HandlerOptions{Level: ParseLevel(cfg.Level)}

	var handler slog.Handler
	if strings.EqualFold(cfg.Format, "json") {
		handler = slog.NewJSONHandler(w, opts)
	} else {
		handler = slog.NewTextHandler(w, opts)
	}

	l := slog.New(handler)

	mu.Lock()
	globalLogger = l
	tracingEnabled = false
	mu.Unlock()
	slog.SetDefault(l)

	if !cfg.Tracing {
		return nil
	}
	if err := initTracer(version, w); err != nil {
		l.Warn("failed to initialize OpenTelemetry tracer, tracing disabled", "error", err)
		return nil
	}
	return nil
}

func initTracer(version string, w io.Writer) error {
	exporter, err := stdouttrace.New(stdouttrace.WithWriter(w))
	if err != nil {
		return err
	}

	res, err := resource.New(
		context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(serviceName),
			semconv.ServiceVersion(version),
		),
	)
	if err != nil {
		return err
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)

	mu.Lock()
	tracerProvider = tp
	tracer = tp.Tracer(serviceName)
	tracingEnabled = true
	mu.Unlock()
	return nil
}

// Shutdown flushes pending spans.
func Shutdown(ctx context.Context) error {
	mu.RLock()
	tp := tracerProvider
	mu.RUnlock()
	if tp != nil {
		return tp.Shutdown(ctx)
	}
	return nil
}

// ParseLevel converts a level name to slog.Level, defaulting to info.
func ParseLevel(level string) slog.Level {
	switch strings.ToLower(level) {
	case "debug":
		return slog.LevelDebug
	case "warn", "warning":
		return slog.LevelWarn
	case "error":
		return slog.LevelError
	default:
		return slog.LevelInfo
	}
}

// L returns the process logger.
func L() *slog.Logger {
	mu.RLock()
	defer mu.RUnlock()
	return globalLogger
}

// StartSpan starts a new span, or returns the current one when tracing is off.
func StartSpan(ctx context.Context, name string, attrs ...attribute.KeyValue) (context.Context, trace.Span) {
	mu.RLock()
	enabled, t := tracingEnabled, tracer
	mu.RUnlock()
	if !enabled || t == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return t.Start(ctx, name, trace.WithAttributes(attrs...))
}

func traceAttrs(ctx context.Context) []any {
	sc := trace.SpanFromContext(ctx).SpanContext()
	if !sc.IsValid() {
		return nil
	}
	return []any{"trace_id", sc.TraceID().String(), "span_id", sc.SpanID().String()}
}

func log(ctx context.Context, level slog.Level, msg string, args ...any) {
	if ta := traceAttrs(ctx); ta != nil {
		args = append(ta, args...)
	}
	L().Log(ctx, level, msg, args...)
}

// Debug logs a debug message.
func Debug(ctx context.Context, msg string, args ...any) { log(ctx, slog.LevelDebug, msg, args...) }

// Info logs an info message.
func Info(ctx context.Context, msg string, args ...any) { log(ctx, slog.LevelInfo, msg, args...) }

// Warn logs a warning message.
func Warn(ctx context.Context, msg string, args ...any) { log(ctx, slog.LevelWarn, msg, args...) }

// Error logs an error message.
func Error(ctx context.Context, msg string, args ...any) { log(ctx, slog.LevelError, msg, args...) }

// ErrorWithErr logs err and records it on the active span.
func ErrorWithErr(ctx context.Context, msg string, err error, args ...any) {
	span := trace.SpanFromContext(ctx)
	if span.SpanContext().IsValid() {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
	}
	log(ctx, slog.LevelError, msg, append([]any{"error", err}, args...)...)
}

// Operation times one engine stage inside its own span.
type Operation struct {
	ctx   context.Context
	span  trace.Span
	name  string
	start time.Time
}

// StartOperation opens a span named after the stage and starts its timer.
func StartOperation(ctx context.Context, name string, attrs ...attribute.KeyValue) *Operation {
	ctx, span := StartSpan(ctx, name, attrs...)
	return &Operation{ctx: ctx, span: span, name: name, start: time.Now()}
}

// Context returns the context carrying the operation span.
func (o *Operation) Context() context.Context { return o.ctx }

// End closes the span and logs the stage duration at debug level.
func (o *Operation) End(args ...any) {
	d := time.Since(o.start)
	o.span.SetAttributes(attribute.Int64("duration_ms", d.Milliseconds()))
	o.span.SetStatus(codes.Ok, "")
	o.span.End()
	Debug(o.ctx, "operation completed", append([]any{"operation", o.name, "duration", d}, args...)...)
}

// EndWithError closes the span with an error status and logs it.
func (o *Operation) EndWithError(err error, args ...any) {
	d := time.Since(o.start)
	o.span.SetAttributes(attribute.Int64("duration_ms", d.Milliseconds()))
	o.span.RecordError(err)
	o.span.SetStatus(codes.Error, err.Error())
	o.span.End()
	log(o.ctx, slog.LevelError, "operation failed", append([]any{"operation", o.name, "duration", d, "error", err}, args...)...)
}
