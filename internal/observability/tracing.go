package observability

import (
	"context"
	"fmt"
	"io"
	"os"
	"slices"
	"strconv"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/stdout/stdouttrace"
	"go.opentelemetry.io/otel/propagation"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"

	"github.com/signalsfoundry/ephemref/internal/logging"
)

// TracerName is the instrumentation scope of dataset spans.
const TracerName = "github.com/signalsfoundry/ephemref"

// Exporter names accepted by TracingConfig.
const (
	ExporterNone   = "none"
	ExporterStdout = "stdout"
	ExporterOTLP   = "otlp"
)

// Exporters lists the accepted exporter names, for flag enums.
var Exporters = []string{ExporterNone, ExporterStdout, ExporterOTLP}

const defaultOTLPEndpoint = "localhost:4317"

// TracingConfig selects where build spans go. The zero value disables
// tracing.
type TracingConfig struct {
	Exporter       string // one of Exporters; empty means none
	ServiceName    string
	ServiceVersion string
	Endpoint       string // OTLP/gRPC collector, host:port
	SampleRatio    float64
	Writer         io.Writer // stdout exporter sink; defaults to stderr
}

// Enabled reports whether spans will be exported.
func (c TracingConfig) Enabled() bool {
	e := strings.ToLower(c.Exporter)
	return e != "" && e != ExporterNone
}

// Validate checks the exporter name and the sample ratio.
func (c TracingConfig) Validate() error {
	if c.Exporter != "" && !slices.Contains(Exporters, strings.ToLower(c.Exporter)) {
		return fmt.Errorf("unsupported tracing exporter %q (want one of %s)", c.Exporter, strings.Join(Exporters, ", "))
	}
	if c.SampleRatio < 0 || c.SampleRatio > 1 {
		return fmt.Errorf("tracing sample ratio %v outside [0, 1]", c.SampleRatio)
	}
	return nil
}

// TracingConfigFromEnv reads EPHEMREF_TRACING_EXPORTER,
// EPHEMREF_TRACING_SERVICE_NAME, EPHEMREF_TRACING_SAMPLE_RATIO and
// EPHEMREF_OTLP_ENDPOINT. An unparsable or out-of-range ratio samples
// everything.
func TracingConfigFromEnv() TracingConfig {
	cfg := TracingConfig{
		Exporter:    strings.ToLower(os.Getenv("EPHEMREF_TRACING_EXPORTER")),
		ServiceName: os.Getenv("EPHEMREF_TRACING_SERVICE_NAME"),
		Endpoint:    os.Getenv("EPHEMREF_OTLP_ENDPOINT"),
		SampleRatio: 1,
	}
	if cfg.Exporter == "" {
		cfg.Exporter = ExporterNone
	}
	if cfg.ServiceName == "" {
		cfg.ServiceName = "ephemref"
	}
	if raw := os.Getenv("EPHEMREF_TRACING_SAMPLE_RATIO"); raw != "" {
		if r, err := strconv.ParseFloat(raw, 64); err == nil && r >= 0 && r <= 1 {
			cfg.SampleRatio = r
		}
	}
	return cfg
}

// InitTracing installs the global tracer provider described by cfg and
// returns a shutdown function that flushes pending spans. With tracing
// disabled a noop provider is installed.
func InitTracing(ctx context.Context, cfg TracingConfig, log logging.Logger) (func(context.Context) error, error) {
	if log == nil {
		log = logging.Noop()
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	if !cfg.Enabled() {
		otel.SetTracerProvider(noop.NewTracerProvider())
		log.Debug(ctx, "tracing disabled")
		return func(context.Context) error { return nil }, nil
	}

	exp, err := newExporter(ctx, cfg)
	if err != nil {
		return nil, err
	}

	attrs := []attribute.KeyValue{
		attribute.String("service.name", cfg.ServiceName),
		attribute.String("service.namespace", "ephemref"),
	}
	if cfg.ServiceVersion != "" {
		attrs = append(attrs, attribute.String("service.version", cfg.ServiceVersion))
	}
	res, err := resource.New(ctx, resource.WithAttributes(attrs...))
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithSampler(samplerFor(cfg.SampleRatio)),
		sdktrace.WithBatcher(exp),
		sdktrace.WithResource(res),
	)
	otel.SetTracerProvider(tp)
	otel.SetTextMapPropagator(propagation.TraceContext{})

	log.Info(ctx, "tracing enabled",
		logging.String("exporter", strings.ToLower(cfg.Exporter)),
		logging.String("service_name", cfg.ServiceName),
		logging.Float("sample_ratio", cfg.SampleRatio),
	)
	return tp.Shutdown, nil
}

// samplerFor keeps whole builds together: a sampled build span samples all
// of its entry spans.
func samplerFor(ratio float64) sdktrace.Sampler {
	switch {
	case ratio >= 1:
		return sdktrace.AlwaysSample()
	case ratio <= 0:
		return sdktrace.NeverSample()
	default:
		return sdktrace.ParentBased(sdktrace.TraceIDRatioBased(ratio))
	}
}

func newExporter(ctx context.Context, cfg TracingConfig) (sdktrace.SpanExporter, error) {
	switch strings.ToLower(cfg.Exporter) {
	case ExporterStdout:
		w := cfg.Writer
		if w == nil {
			w = os.Stderr
		}
		return stdouttrace.New(
			stdouttrace.WithWriter(w),
			stdouttrace.WithPrettyPrint(),
			stdouttrace.WithoutTimestamps(),
		)
	case ExporterOTLP:
		endpoint := cfg.Endpoint
		if endpoint == "" {
			endpoint = defaultOTLPEndpoint
		}
		client := otlptracegrpc.NewClient(
			otlptracegrpc.WithEndpoint(endpoint),
			otlptracegrpc.WithDialOption(grpc.WithTransportCredentials(insecure.NewCredentials())),
		)
		return otlptrace.New(ctx, client)
	default:
		return nil, fmt.Errorf("unsupported tracing exporter %q", cfg.Exporter)
	}
}

// ShutdownWithTimeout flushes spans, giving up after five seconds. Errors are
// logged, not returned: a build's output is already written by then.
func ShutdownWithTimeout(ctx context.Context, shutdown func(context.Context) error, log logging.Logger) {
	if shutdown == nil {
		return
	}
	if log == nil {
		log = logging.Noop()
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := shutdown(ctx); err != nil {
		log.Warn(ctx, "tracing shutdown failed", logging.Err(err))
	}
}
