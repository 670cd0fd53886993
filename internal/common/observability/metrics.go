package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"

	"gematria-workers/internal/common/logger"
)

// Observability records OpenTelemetry instruments exported through the
// default Prometheus registry. A zero value is usable and records nothing.
type Observability struct {
	meterProvider    *metric.MeterProvider
	jobCounter       otelmetric.Int64Counter
	jobDuration      otelmetric.Float64Histogram
	analysisCounter  otelmetric.Int64Counter
	analysisDuration otelmetric.Float64Histogram
}

func New(serviceName string, log logger.Logger) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		log.Warn("failed to create prometheus exporter", map[string]interface{}{"error": err.Error()})
		return &Observability{}
	}

	provider := metric.NewMeterProvider(metric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	jobCounter, _ := meter.Int64Counter(
		"jobs.processed",
		otelmetric.WithDescription("Number of jobs processed"),
	)
	jobDuration, _ := meter.Float64Histogram(
		"jobs.duration",
		otelmetric.WithDescription("Job processing duration"),
		otelmetric.WithUnit("ms"),
	)
	analysisCounter, _ := meter.Int64Counter(
		"gematria.analyses",
		otelmetric.WithDescription("Number of analyses run"),
	)
	analysisDuration, _ := meter.Float64Histogram(
		"gematria.analysis.duration",
		otelmetric.WithDescription("Time spent tokenizing and matching"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider:    provider,
		jobCounter:       jobCounter,
		jobDuration:      jobDuration,
		analysisCounter:  analysisCounter,
		analysisDuration: analysisDuration,
	}
}

func (o *Observability) RecordJobProcessed(ctx context.Context, taskType, status string) {
	if o == nil || o.jobCounter == nil {
		return
	}
	o.jobCounter.Add(ctx, 1, otelmetric.WithAttributes(
		attribute.String("task_type", taskType),
		attribute.String("status", status),
	))
}

func (o *Observability) RecordJobDuration(ctx context.Context, taskType string, duration time.Duration, status string) {
	if o == nil || o.jobDuration == nil {
		return
	}
	o.jobDuration.Record(ctx, float64(duration.Milliseconds()), otelmetric.WithAttributes(
		attribute.String("task_type", taskType),
		attribute.String("status", status),
	))
}

// RecordAnalysis counts one analysis and its duration, tagged with the
// numeral systems used.
func (o *Observability) RecordAnalysis(ctx context.Context, origin string, systems []string, duration time.Duration, err error) {
	if o == nil || o.analysisCounter == nil {
		return
	}
	outcome := "success"
	if err != nil {
		outcome = "error"
	}
	attrs := otelmetric.WithAttributes(
		attribute.String("origin", origin),
		attribute.String("outcome", outcome),
		attribute.StringSlice("systems", systems),
	)
	o.analysisCounter.Add(ctx, 1, attrs)
	o.analysisDuration.Record(ctx, float64(duration.Microseconds())/1000, attrs)
}

func (o *Observability) Shutdown(ctx context.Context) error {
	if o == nil || o.meterProvider == nil {
		return nil
	}
	return o.meterProvider.Shutdown(ctx)
}
