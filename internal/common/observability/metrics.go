// internal/common/observability/metrics.go
package observability

import (
	"context"
	"time"

	promclient "github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/otlptranslator"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"

	"travelease/internal/common/logger"
)

// Observability records pipeline runs through an OpenTelemetry meter
// exported to Prometheus.
type Observability struct {
	meterProvider    *metric.MeterProvider
	meter            otelmetric.Meter
	pipelineRuns     otelmetric.Int64Counter
	pipelineDuration otelmetric.Float64Histogram
	oracleLatency    otelmetric.Float64Histogram
}

// New registers the exporter with the default Prometheus registerer and
// installs the provider globally.
func New(serviceName string, log logger.Logger) *Observability {
	return NewWithRegisterer(serviceName, promclient.DefaultRegisterer, log)
}

// NewWithRegisterer exports to reg. Dotted instrument names are escaped to
// underscores with unit and _total suffixes, so "pipeline.runs" is scraped as
// pipeline_runs_total. On exporter failure it logs and returns a recorder
// whose methods do nothing.
func NewWithRegisterer(serviceName string, reg promclient.Registerer, log logger.Logger) *Observability {
	exporter, err := prometheus.New(
		prometheus.WithRegisterer(reg),
		prometheus.WithTranslationStrategy(otlptranslator.UnderscoreEscapingWithSuffixes),
	)
	if err != nil {
		log.Error("Failed to create Prometheus exporter", map[string]interface{}{"error": err})
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	pipelineRuns, _ := meter.Int64Counter(
		"pipeline.runs",
		otelmetric.WithDescription("Planner pipeline runs by stage and status"),
	)

	pipelineDuration, _ := meter.Float64Histogram(
		"pipeline.duration",
		otelmetric.WithDescription("Planner pipeline stage duration"),
		otelmetric.WithUnit("ms"),
	)

	oracleLatency, _ := meter.Float64Histogram(
		"oracle.latency",
		otelmetric.WithDescription("Oracle round-trip latency"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider:    provider,
		meter:            meter,
		pipelineRuns:     pipelineRuns,
		pipelineDuration: pipelineDuration,
		oracleLatency:    oracleLatency,
	}
}

// RecordPipelineRun counts one run of stage ("plan", "itinerary", ...) and
// records how long it took.
func (o *Observability) RecordPipelineRun(ctx context.Context, stage, status string, duration time.Duration) {
	if o == nil {
		return
	}
	attrs := otelmetric.WithAttributes(
		attribute.String("stage", stage),
		attribute.String("status", status),
	)
	if o.pipelineRuns != nil {
		o.pipelineRuns.Add(ctx, 1, attrs)
	}
	if o.pipelineDuration != nil {
		o.pipelineDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	}
}

func (o *Observability) RecordOracleLatency(ctx context.Context, operation string, duration time.Duration) {
	if o == nil || o.oracleLatency == nil {
		return
	}
	o.oracleLatency.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
		attribute.String("operation", operation),
	))
}

func (o *Observability) Shutdown() {
	if o == nil || o.meterProvider == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = o.meterProvider.Shutdown(ctx)
}
