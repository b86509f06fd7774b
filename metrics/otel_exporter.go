package metrics

import (
	"context"
	"fmt"
	"net/http"

	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

// OTelExporter provides OpenTelemetry metrics export following OTel standards
type OTelExporter struct {
	meterProvider *sdkmetric.MeterProvider
	collector     Collector

	// OTel meters and instruments
	meter            metric.Meter
	queueLengthGauge metric.Int64ObservableGauge
	failedCountGauge metric.Int64ObservableGauge
}

// NewOTelExporter creates a new OpenTelemetry metrics exporter with Prometheus format
func NewOTelExporter(collector Collector) (*OTelExporter, error) {
	// Create Prometheus exporter
	exporter, err := prometheus.New()
	if err != nil {
		return nil, fmt.Errorf("creating prometheus exporter: %w", err)
	}

	// Create meter provider
	meterProvider := sdkmetric.NewMeterProvider(
		sdkmetric.WithReader(exporter),
	)
	otel.SetMeterProvider(meterProvider)

	// Create meter with service info
	meter := meterProvider.Meter(
		"leadgate",
		metric.WithInstrumentationVersion("1.0.0"),
	)

	oe := &OTelExporter{
		meterProvider: meterProvider,
		collector:     collector,
		meter:         meter,
	}

	// Register metrics instruments
	if err := oe.registerInstruments(); err != nil {
		return nil, fmt.Errorf("registering instruments: %w", err)
	}

	return oe, nil
}

// registerInstruments creates and registers all OpenTelemetry metric instruments
func (oe *OTelExporter) registerInstruments() error {
	var err error

	// Queue length gauge (per provider)
	oe.queueLengthGauge, err = oe.meter.Int64ObservableGauge(
		"lead.queue.length",
		metric.WithDescription("Number of pending lead jobs in the queue per provider"),
		metric.WithUnit("{leads}"),
		metric.WithInt64Callback(oe.observeQueueLengths),
	)
	if err != nil {
		return fmt.Errorf("creating queue length gauge: %w", err)
	}

	// Failed webhook count gauge (per status)
	oe.failedCountGauge, err = oe.meter.Int64ObservableGauge(
		"lead.failed.count",
		metric.WithDescription("Number of failed webhook records by status"),
		metric.WithUnit("{webhooks}"),
		metric.WithInt64Callback(oe.observeFailedCounts),
	)
	if err != nil {
		return fmt.Errorf("creating failed count gauge: %w", err)
	}

	return nil
}

// observeQueueLengths is a callback that reports queue lengths
func (oe *OTelExporter) observeQueueLengths(ctx context.Context, observer metric.Int64Observer) error {
	queueLengths, err := oe.collector.GetQueueLengths(ctx)
	if err != nil {
		return err
	}

	for providerName, length := range queueLengths {
		observer.Observe(length, metric.WithAttributes(
			attribute.String("lead.provider", providerName),
		))
	}

	return nil
}

// observeFailedCounts is a callback that reports failed webhook counts by status
func (oe *OTelExporter) observeFailedCounts(ctx context.Context, observer metric.Int64Observer) error {
	failedCounts, err := oe.collector.GetFailedCounts(ctx)
	if err != nil {
		return err
	}

	for status, count := range failedCounts {
		observer.Observe(count, metric.WithAttributes(
			attribute.String("webhook.status", status),
		))
	}

	return nil
}

// ServeHTTP serves Prometheus-formatted metrics on the given HTTP handler
func (oe *OTelExporter) ServeHTTP() http.Handler {
	return promhttp.Handler()
}

// Shutdown gracefully shuts down the meter provider
func (oe *OTelExporter) Shutdown(ctx context.Context) error {
	if oe.meterProvider != nil {
		return oe.meterProvider.Shutdown(ctx)
	}
	return nil
}
