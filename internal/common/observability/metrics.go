package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Observability records request-level instruments through the OpenTelemetry
// meter API, exported on the default Prometheus registry.
type Observability struct {
	meterProvider   *metric.MeterProvider
	requestCounter  otelmetric.Int64Counter
	requestDuration otelmetric.Float64Histogram
	llmDuration     otelmetric.Float64Histogram
}

func New(serviceName string) (*Observability, error) {
	exporter, err := prometheus.New()
	if err != nil {
		return nil, err
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	return newWithProvider(provider, serviceName)
}

func newWithProvider(provider *metric.MeterProvider, serviceName string) (*Observability, error) {
	meter := provider.Meter(serviceName)

	requestCounter, err := meter.Int64Counter(
		"chat.requests",
		otelmetric.WithDescription("Number of chat requests processed"),
	)
	if err != nil {
		return nil, err
	}

	requestDuration, err := meter.Float64Histogram(
		"chat.duration",
		otelmetric.WithDescription("End-to-end chat request duration"),
		otelmetric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	llmDuration, err := meter.Float64Histogram(
		"llm.duration",
		otelmetric.WithDescription("Language model generation duration"),
		otelmetric.WithUnit("ms"),
	)
	if err != nil {
		return nil, err
	}

	return &Observability{
		meterProvider:   provider,
		requestCounter:  requestCounter,
		requestDuration: requestDuration,
		llmDuration:     llmDuration,
	}, nil
}

// RecordRequest counts one chat request and its latency.
func (o *Observability) RecordRequest(ctx context.Context, intent, status string, duration time.Duration) {
	if o == nil {
		return
	}
	attrs := otelmetric.WithAttributes(
		attribute.String("intent", intent),
		attribute.String("status", status),
	)
	o.requestCounter.Add(ctx, 1, attrs)
	o.requestDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
}

// RecordGeneration records one language model call.
func (o *Observability) RecordGeneration(ctx context.Context, duration time.Duration, ok bool) {
	if o == nil {
		return
	}
	o.llmDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
		attribute.Bool("ok", ok),
	))
}

func (o *Observability) Shutdown(ctx context.Context) error {
	if o == nil || o.meterProvider == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	return o.meterProvider.Shutdown(ctx)
}
