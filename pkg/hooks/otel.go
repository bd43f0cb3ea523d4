package hooks

import (
	"context"
	"strings"
	"sync"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/osintment/osintment/pkg/defaults"
)

// Compile-time interface check.
var _ Hook = (*OTelHook)(nil)

// OTelHook exports pipeline telemetry to an OpenTelemetry collector.
// Each scan gets a root span; status transitions, result fetches, and
// report generations become span events. With an empty endpoint the
// hook is a no-op, so it can be wired unconditionally.
type OTelHook struct {
	opts           OTelOptions
	tracerProvider *sdktrace.TracerProvider
	tracer         trace.Tracer
	enabled        bool

	mu     sync.Mutex
	spans  map[string]trace.Span
	closed bool
}

// OTelOptions configures the OpenTelemetry hook.
type OTelOptions struct {
	// Endpoint is the OTLP/gRPC endpoint (e.g. "localhost:4317").
	// Empty disables the hook entirely.
	Endpoint string

	// ServiceName for traces (default: defaults.ToolName).
	ServiceName string

	// Insecure skips TLS on the exporter connection.
	Insecure bool

	// Headers are attached to every export request.
	Headers map[string]string

	// ShutdownTimeout bounds Close (default: 5s).
	ShutdownTimeout time.Duration

	// ConnectionTimeout bounds exporter setup (default: 10s).
	ConnectionTimeout time.Duration
}

// NewOTelHook creates the hook. Connection failures surface here, not
// during scan processing.
func NewOTelHook(ctx context.Context, opts OTelOptions) (*OTelHook, error) {
	if opts.Endpoint == "" {
		return &OTelHook{spans: map[string]trace.Span{}}, nil
	}

	if opts.ServiceName == "" {
		opts.ServiceName = defaults.ToolName
	}
	if opts.ShutdownTimeout == 0 {
		opts.ShutdownTimeout = 5 * time.Second
	}
	if opts.ConnectionTimeout == 0 {
		opts.ConnectionTimeout = 10 * time.Second
	}

	grpcOpts := []grpc.DialOption{}
	if opts.Insecure {
		grpcOpts = append(grpcOpts, grpc.WithTransportCredentials(insecure.NewCredentials()))
	}

	exporterOpts := []otlptracegrpc.Option{
		otlptracegrpc.WithEndpoint(opts.Endpoint),
		otlptracegrpc.WithDialOption(grpcOpts...),
	}
	if opts.Insecure {
		exporterOpts = append(exporterOpts, otlptracegrpc.WithInsecure())
	}
	if len(opts.Headers) > 0 {
		exporterOpts = append(exporterOpts, otlptracegrpc.WithHeaders(opts.Headers))
	}

	setupCtx, cancel := context.WithTimeout(ctx, opts.ConnectionTimeout)
	defer cancel()

	exporter, err := otlptracegrpc.New(setupCtx, exporterOpts...)
	if err != nil {
		return nil, err
	}

	// Avoid merging with resource.Default to prevent schema conflicts.
	res := resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(opts.ServiceName),
		semconv.ServiceVersion(defaults.Version),
		attribute.String("service.component", "pipeline"),
	)

	tracerProvider := sdktrace.NewTracerProvider(
		sdktrace.WithBatcher(exporter),
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.AlwaysSample()),
	)
	otel.SetTracerProvider(tracerProvider)

	return &OTelHook{
		opts:           opts,
		tracerProvider: tracerProvider,
		tracer:         tracerProvider.Tracer(defaults.ToolName + "/pipeline"),
		enabled:        true,
		spans:          map[string]trace.Span{},
	}, nil
}

// Enabled reports whether an exporter was configured.
func (h *OTelHook) Enabled() bool { return h.enabled }

func (h *OTelHook) ScanStarted(ctx context.Context, scanID, target string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.enabled || h.closed {
		return
	}

	_, span := h.tracer.Start(ctx, "osint.scan",
		trace.WithSpanKind(trace.SpanKindClient),
		trace.WithAttributes(
			attribute.String("scan_id", scanID),
			attribute.String("target", target),
		),
	)
	span.AddEvent("scan_started", trace.WithAttributes(
		attribute.String("target", target),
	))
	h.spans[scanID] = span
}

func (h *OTelHook) ScanTransition(ctx context.Context, scanID, status string) {
	h.mu.Lock()
	defer h.mu.Unlock()

	span, ok := h.spans[scanID]
	if !ok {
		return
	}
	span.AddEvent("status_transition", trace.WithAttributes(
		attribute.String("status", status),
	))
}

func (h *OTelHook) ScanCompleted(ctx context.Context, scanID, status string, elapsed time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()

	span, ok := h.spans[scanID]
	if !ok {
		return
	}
	delete(h.spans, scanID)

	span.SetAttributes(
		attribute.String("final_status", status),
		attribute.Float64("duration_seconds", elapsed.Seconds()),
	)
	if !strings.Contains(status, "FINISHED") {
		span.SetStatus(codes.Error, status)
	}
	span.End()
}

func (h *OTelHook) FindingsFetched(ctx context.Context, scanID string, count int) {
	h.mu.Lock()
	defer h.mu.Unlock()

	span, ok := h.spans[scanID]
	if !ok || count == 0 {
		return
	}
	span.AddEvent("findings_fetched", trace.WithAttributes(
		attribute.Int("count", count),
	))
}

func (h *OTelHook) ReportGenerated(ctx context.Context, format string, elapsed time.Duration) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.enabled || h.closed {
		return
	}

	_, span := h.tracer.Start(ctx, "osint.report",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(
			attribute.String("format", format),
			attribute.Float64("render_seconds", elapsed.Seconds()),
		),
	)
	span.End()
}

func (h *OTelHook) ReportFailed(ctx context.Context, format string) {
	h.mu.Lock()
	defer h.mu.Unlock()
	if !h.enabled || h.closed {
		return
	}

	_, span := h.tracer.Start(ctx, "osint.report",
		trace.WithSpanKind(trace.SpanKindInternal),
		trace.WithAttributes(attribute.String("format", format)),
	)
	span.SetStatus(codes.Error, "report generation failed")
	span.End()
}

// Close ends any open spans and flushes the exporter.
func (h *OTelHook) Close(ctx context.Context) error {
	h.mu.Lock()
	if h.closed || !h.enabled {
		h.closed = true
		h.mu.Unlock()
		return nil
	}
	h.closed = true
	for id, span := range h.spans {
		span.End()
		delete(h.spans, id)
	}
	h.mu.Unlock()

	shutdownCtx, cancel := context.WithTimeout(ctx, h.opts.ShutdownTimeout)
	defer cancel()
	return h.tracerProvider.Shutdown(shutdownCtx)
}
