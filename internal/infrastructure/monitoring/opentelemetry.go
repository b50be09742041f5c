package monitoring

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/collectors"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	otelprom "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.20.0"
	"go.opentelemetry.io/otel/trace"
	"go.opentelemetry.io/otel/trace/noop"
	"go.uber.org/zap"
)

const instrumentationName = "github.com/recipewiz/backend"

// OpenTelemetryConfig holds OpenTelemetry configuration
type OpenTelemetryConfig struct {
	ServiceName    string
	ServiceVersion string
	Environment    string

	// Tracing configuration
	TracingEnabled    bool
	OTLPTraceEndpoint string
	SamplingRate      float64
}

// OpenTelemetryProvider owns the tracer and meter providers and the
// Prometheus registry every metric in the process is exported through
type OpenTelemetryProvider struct {
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	registry       *prometheus.Registry
	tracer         trace.Tracer
	meter          metric.Meter
	logger         *zap.Logger
	config         OpenTelemetryConfig
}

// NewOpenTelemetryProvider creates a new OpenTelemetry provider. Metrics
// are always collected; tracing is only exported when enabled and an
// endpoint is configured.
func NewOpenTelemetryProvider(config OpenTelemetryConfig, logger *zap.Logger) (*OpenTelemetryProvider, error) {
	provider := &OpenTelemetryProvider{
		registry: prometheus.NewRegistry(),
		logger:   logger,
		config:   config,
	}

	provider.registry.MustRegister(
		collectors.NewGoCollector(),
		collectors.NewProcessCollector(collectors.ProcessCollectorOpts{}),
	)

	res, err := provider.createResource()
	if err != nil {
		return nil, fmt.Errorf("failed to create resource: %w", err)
	}

	if config.TracingEnabled && config.OTLPTraceEndpoint != "" {
		if err := provider.initializeTracing(res); err != nil {
			return nil, fmt.Errorf("failed to initialize tracing: %w", err)
		}
	} else {
		provider.tracer = noop.NewTracerProvider().Tracer(instrumentationName)
	}

	if err := provider.initializeMetrics(res); err != nil {
		return nil, fmt.Errorf("failed to initialize metrics: %w", err)
	}

	logger.Info("OpenTelemetry provider initialized",
		zap.String("service", config.ServiceName),
		zap.Bool("tracing", provider.tracerProvider != nil),
	)

	return provider, nil
}

func (o *OpenTelemetryProvider) createResource() (*resource.Resource, error) {
	return resource.New(context.Background(),
		resource.WithAttributes(
			semconv.ServiceName(o.config.ServiceName),
			semconv.ServiceVersion(o.config.ServiceVersion),
			semconv.DeploymentEnvironment(o.config.Environment),
		),
	)
}

func (o *OpenTelemetryProvider) initializeTracing(res *resource.Resource) error {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	exporter, err := otlptracehttp.New(ctx,
		otlptracehttp.WithEndpoint(o.config.OTLPTraceEndpoint),
		otlptracehttp.WithInsecure(),
	)
	if err != nil {
		return fmt.Errorf("failed to create OTLP exporter: %w", err)
	}

	sampling := o.config.SamplingRate
	if sampling <= 0 || sampling > 1 {
		sampling = 1
	}

	o.tracerProvider = sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithBatcher(exporter, sdktrace.WithBatchTimeout(5*time.Second)),
		sdktrace.WithSampler(sdktrace.ParentBased(sdktrace.TraceIDRatioBased(sampling))),
	)

	otel.SetTracerProvider(o.tracerProvider)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	o.tracer = o.tracerProvider.Tracer(instrumentationName, trace.WithSchemaURL(semconv.SchemaURL))

	o.logger.Info("Tracing initialized",
		zap.String("endpoint", o.config.OTLPTraceEndpoint),
		zap.Float64("sampling_rate", sampling),
	)
	return nil
}

func (o *OpenTelemetryProvider) initializeMetrics(res *resource.Resource) error {
	exporter, err := otelprom.New(
		otelprom.WithRegisterer(o.registry),
		otelprom.WithoutUnits(),
	)
	if err != nil {
		return fmt.Errorf("failed to create Prometheus exporter: %w", err)
	}

	o.meterProvider = sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(o.meterProvider)

	o.meter = o.meterProvider.Meter(instrumentationName, metric.WithSchemaURL(semconv.SchemaURL))
	return nil
}

// Registry returns the Prometheus registry backing /metrics
func (o *OpenTelemetryProvider) Registry() *prometheus.Registry {
	return o.registry
}

// Meter returns the application meter
func (o *OpenTelemetryProvider) Meter() metric.Meter {
	return o.meter
}

// Tracer returns the application tracer. It is a no-op tracer when
// tracing is disabled.
func (o *OpenTelemetryProvider) Tracer() trace.Tracer {
	return o.tracer
}

// StartSpan starts a new span
func (o *OpenTelemetryProvider) StartSpan(ctx context.Context, name string, opts ...trace.SpanStartOption) (context.Context, trace.Span) {
	return o.tracer.Start(ctx, name, opts...)
}

// CreateCounter creates a new counter metric
func (o *OpenTelemetryProvider) CreateCounter(name, description, unit string) (metric.Int64Counter, error) {
	if o.meter == nil {
		return nil, fmt.Errorf("meter not initialized")
	}

	return o.meter.Int64Counter(name,
		metric.WithDescription(description),
		metric.WithUnit(unit),
	)
}

// CreateHistogram creates a new histogram metric
func (o *OpenTelemetryProvider) CreateHistogram(name, description, unit string) (metric.Float64Histogram, error) {
	if o.meter == nil {
		return nil, fmt.Errorf("meter not initialized")
	}

	return o.meter.Float64Histogram(name,
		metric.WithDescription(description),
		metric.WithUnit(unit),
	)
}

// Shutdown flushes and stops both providers
func (o *OpenTelemetryProvider) Shutdown(ctx context.Context) error {
	var errs []error

	if o.tracerProvider != nil {
		if err := o.tracerProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("tracer provider shutdown: %w", err))
		}
	}

	if o.meterProvider != nil {
		if err := o.meterProvider.Shutdown(ctx); err != nil {
			errs = append(errs, fmt.Errorf("meter provider shutdown: %w", err))
		}
	}

	return errors.Join(errs...)
}
