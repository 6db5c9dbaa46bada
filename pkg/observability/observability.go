// Package observability provides OpenTelemetry tracing and metrics for the
// governance engine: decision rate and denials, evaluation durations, and
// the distribution of trust scores being written.
package observability

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/propagation"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.26.0"
	"go.opentelemetry.io/otel/trace"
)

// Config configures the OpenTelemetry providers.
type Config struct {
	ServiceName    string
	ServiceVersion string
	Environment    string
	OTLPEndpoint   string // e.g. "localhost:4317"
	SampleRate     float64
	BatchTimeout   time.Duration
	Enabled        bool
	Insecure       bool
}

// DefaultConfig returns development defaults.
func DefaultConfig() *Config {
	return &Config{
		ServiceName:    "aegis-governance",
		ServiceVersion: "1.0.0",
		Environment:    "development",
		OTLPEndpoint:   "localhost:4317",
		SampleRate:     1.0,
		BatchTimeout:   5 * time.Second,
		Enabled:        true,
	}
}

// Provider manages the trace and metric providers plus the engine's
// instruments. A nil Provider is valid and records nothing, so wiring
// telemetry stays optional.
type Provider struct {
	config         *Config
	tracerProvider *sdktrace.TracerProvider
	meterProvider  *sdkmetric.MeterProvider
	tracer         trace.Tracer
	meter          metric.Meter
	logger         *slog.Logger

	decisionCounter metric.Int64Counter
	denialCounter   metric.Int64Counter
	durationHist    metric.Float64Histogram
	trustScoreHist  metric.Float64Histogram
}

// New creates a provider and registers the engine instruments. Returns
// (nil, nil) when telemetry is disabled.
func New(ctx context.Context, config *Config, logger *slog.Logger) (*Provider, error) {
	if config == nil {
		config = DefaultConfig()
	}
	if logger == nil {
		logger = slog.Default()
	}
	if !config.Enabled {
		return nil, nil
	}

	res, err := resource.Merge(resource.Default(), resource.NewWithAttributes(
		semconv.SchemaURL,
		semconv.ServiceName(config.ServiceName),
		semconv.ServiceVersion(config.ServiceVersion),
		semconv.DeploymentEnvironment(config.Environment),
	))
	if err != nil {
		return nil, fmt.Errorf("create resource: %w", err)
	}

	traceOpts := []otlptracegrpc.Option{otlptracegrpc.WithEndpoint(config.OTLPEndpoint)}
	metricOpts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithEndpoint(config.OTLPEndpoint)}
	if config.Insecure {
		traceOpts = append(traceOpts, otlptracegrpc.WithInsecure())
		metricOpts = append(metricOpts, otlpmetricgrpc.WithInsecure())
	}

	traceExporter, err := otlptracegrpc.New(ctx, traceOpts...)
	if err != nil {
		return nil, fmt.Errorf("create trace exporter: %w", err)
	}
	metricExporter, err := otlpmetricgrpc.New(ctx, metricOpts...)
	if err != nil {
		return nil, fmt.Errorf("create metric exporter: %w", err)
	}

	tp := sdktrace.NewTracerProvider(
		sdktrace.WithResource(res),
		sdktrace.WithSampler(sdktrace.TraceIDRatioBased(config.SampleRate)),
		sdktrace.WithBatcher(traceExporter, sdktrace.WithBatchTimeout(config.BatchTimeout)),
	)
	mp := sdkmetric.NewMeterProvider(
		sdkmetric.WithResource(res),
		sdkmetric.WithReader(sdkmetric.NewPeriodicReader(metricExporter)),
	)

	otel.SetTracerProvider(tp)
	otel.SetMeterProvider(mp)
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{}, propagation.Baggage{},
	))

	p := &Provider{
		config:         config,
		tracerProvider: tp,
		meterProvider:  mp,
		tracer:         tp.Tracer(config.ServiceName),
		meter:          mp.Meter(config.ServiceName),
		logger:         logger,
	}
	if err := p.initInstruments(); err != nil {
		return nil, err
	}
	return p, nil
}

func (p *Provider) initInstruments() error {
	var err error
	p.decisionCounter, err = p.meter.Int64Counter("aegis.gate.decisions",
		metric.WithDescription("Permission gate decisions by outcome and risk tier"))
	if err != nil {
		return fmt.Errorf("create decision counter: %w", err)
	}
	p.denialCounter, err = p.meter.Int64Counter("aegis.gate.denials",
		metric.WithDescription("Permission gate denials by source"))
	if err != nil {
		return fmt.Errorf("create denial counter: %w", err)
	}
	p.durationHist, err = p.meter.Float64Histogram("aegis.evaluation.duration",
		metric.WithDescription("Evaluation duration by operation"), metric.WithUnit("ms"))
	if err != nil {
		return fmt.Errorf("create duration histogram: %w", err)
	}
	p.trustScoreHist, err = p.meter.Float64Histogram("aegis.trust.score",
		metric.WithDescription("Distribution of trust scores written"))
	if err != nil {
		return fmt.Errorf("create trust score histogram: %w", err)
	}
	return nil
}

// StartSpan begins a span; no-op on a nil provider.
func (p *Provider) StartSpan(ctx context.Context, name string) (context.Context, trace.Span) {
	if p == nil {
		return ctx, trace.SpanFromContext(ctx)
	}
	return p.tracer.Start(ctx, name)
}

// RecordDecision counts one gate decision.
func (p *Provider) RecordDecision(ctx context.Context, granted bool, source, riskLevel string) {
	if p == nil {
		return
	}
	p.decisionCounter.Add(ctx, 1, metric.WithAttributes(
		attribute.Bool("granted", granted),
		attribute.String("source", source),
		attribute.String("risk_level", riskLevel),
	))
	if !granted {
		p.denialCounter.Add(ctx, 1, metric.WithAttributes(attribute.String("source", source)))
	}
}

// RecordEvaluation records the duration of one engine operation.
func (p *Provider) RecordEvaluation(ctx context.Context, operation string, d time.Duration, err error) {
	if p == nil {
		return
	}
	p.durationHist.Record(ctx, float64(d.Milliseconds()), metric.WithAttributes(
		attribute.String("operation", operation),
		attribute.Bool("error", err != nil),
	))
}

// RecordTrustScore records a trust score write.
func (p *Provider) RecordTrustScore(ctx context.Context, score float64) {
	if p == nil {
		return
	}
	p.trustScoreHist.Record(ctx, score)
}

// Shutdown flushes and stops the providers.
func (p *Provider) Shutdown(ctx context.Context) error {
	if p == nil {
		return nil
	}
	var firstErr error
	if err := p.tracerProvider.Shutdown(ctx); err != nil {
		firstErr = err
	}
	if err := p.meterProvider.Shutdown(ctx); err != nil && firstErr == nil {
		firstErr = err
	}
	return firstErr
}
