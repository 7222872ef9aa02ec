// Package telemetry provides OpenTelemetry metrics for the coordination
// runtime.
package telemetry

import (
	"context"
	"sync"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	"github.com/felixgeelhaar/v2x-go/domain/event"
	"github.com/felixgeelhaar/v2x-go/domain/safety"
	"github.com/felixgeelhaar/v2x-go/domain/vehicle"
)

// MetricsProvider provides access to metrics instruments.
type MetricsProvider struct {
	meter metric.Meter

	// Counters
	verdicts    metric.Int64Counter
	blockages   metric.Int64Counter
	laneChanges metric.Int64Counter
	stops       metric.Int64Counter
	slowdowns   metric.Int64Counter
	replans     metric.Int64Counter
	errors      metric.Int64Counter

	// Histograms
	payloadSize metric.Int64Histogram

	// Gauges (using UpDownCounter for OpenTelemetry)
	activeVehicles metric.Int64UpDownCounter

	initOnce sync.Once
	initErr  error
}

// MetricsConfig configures the metrics provider.
type MetricsConfig struct {
	// MeterName is the name of the meter (default: "github.com/felixgeelhaar/v2x-go").
	MeterName string
	// MeterVersion is the version of the meter.
	MeterVersion string
}

// DefaultMetricsConfig returns a default metrics configuration.
func DefaultMetricsConfig() MetricsConfig {
	return MetricsConfig{
		MeterName:    "github.com/felixgeelhaar/v2x-go",
		MeterVersion: "1.0.0",
	}
}

// NewMetricsProvider creates a new metrics provider.
func NewMetricsProvider(config MetricsConfig) *MetricsProvider {
	if config.MeterName == "" {
		config = DefaultMetricsConfig()
	}

	provider := otel.GetMeterProvider()
	meter := provider.Meter(
		config.MeterName,
		metric.WithInstrumentationVersion(config.MeterVersion),
	)

	mp := &MetricsProvider{
		meter: meter,
	}

	mp.initOnce.Do(func() {
		mp.initErr = mp.initInstruments()
	})

	return mp
}

// initInstruments initializes all metric instruments.
func (mp *MetricsProvider) initInstruments() error {
	var err error

	mp.verdicts, err = mp.meter.Int64Counter(
		"v2x.verdicts",
		metric.WithDescription("Number of arbitration verdicts issued"),
		metric.WithUnit("{verdict}"),
	)
	if err != nil {
		return err
	}

	mp.blockages, err = mp.meter.Int64Counter(
		"v2x.blockages",
		metric.WithDescription("Number of injected blockage events"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return err
	}

	mp.laneChanges, err = mp.meter.Int64Counter(
		"v2x.lane_changes",
		metric.WithDescription("Number of lane-change requests"),
		metric.WithUnit("{request}"),
	)
	if err != nil {
		return err
	}

	mp.stops, err = mp.meter.Int64Counter(
		"v2x.stops",
		metric.WithDescription("Number of commanded full stops"),
		metric.WithUnit("{stop}"),
	)
	if err != nil {
		return err
	}

	mp.slowdowns, err = mp.meter.Int64Counter(
		"v2x.slowdowns",
		metric.WithDescription("Number of car-following decelerations"),
		metric.WithUnit("{slowdown}"),
	)
	if err != nil {
		return err
	}

	mp.replans, err = mp.meter.Int64Counter(
		"v2x.replans",
		metric.WithDescription("Number of route replans"),
		metric.WithUnit("{replan}"),
	)
	if err != nil {
		return err
	}

	mp.errors, err = mp.meter.Int64Counter(
		"v2x.errors",
		metric.WithDescription("Number of recovered command failures"),
		metric.WithUnit("{error}"),
	)
	if err != nil {
		return err
	}

	mp.payloadSize, err = mp.meter.Int64Histogram(
		"v2x.payload.size",
		metric.WithDescription("Broadcast payload sizes"),
		metric.WithUnit("By"),
	)
	if err != nil {
		return err
	}

	mp.activeVehicles, err = mp.meter.Int64UpDownCounter(
		"v2x.vehicles.active",
		metric.WithDescription("Number of observed vehicles"),
		metric.WithUnit("{vehicle}"),
	)
	if err != nil {
		return err
	}

	return nil
}

// Error returns any initialization error.
func (mp *MetricsProvider) Error() error {
	return mp.initErr
}

// RecordVerdict records one arbitration verdict.
func (mp *MetricsProvider) RecordVerdict(ctx context.Context, v vehicle.Verdict) {
	mp.verdicts.Add(ctx, 1, metric.WithAttributes(
		attribute.String("verdict", string(v)),
	))
}

// RecordBlockage records an injected blockage event.
func (mp *MetricsProvider) RecordBlockage(ctx context.Context, kind event.BlockageKind) {
	mp.blockages.Add(ctx, 1, metric.WithAttributes(
		attribute.String("kind", string(kind)),
	))
}

// RecordPayloadSize records one broadcast payload measurement.
func (mp *MetricsProvider) RecordPayloadSize(ctx context.Context, bytes int) {
	mp.payloadSize.Record(ctx, int64(bytes))
}

// RecordOutcome records the counters matching one controller pass.
func (mp *MetricsProvider) RecordOutcome(ctx context.Context, out safety.Outcome) {
	switch out.Action {
	case safety.ActionStop:
		mp.stops.Add(ctx, 1)
	case safety.ActionSlow:
		mp.slowdowns.Add(ctx, 1)
	case safety.ActionLaneChange:
		mp.laneChanges.Add(ctx, 1, metric.WithAttributes(
			attribute.Bool("accepted", out.Err == nil),
		))
	case safety.ActionReplan:
		mp.replans.Add(ctx, 1)
	}

	if out.Err != nil {
		mp.errors.Add(ctx, 1, metric.WithAttributes(
			attribute.String("action", string(out.Action)),
		))
	}
}

// VehicleObserved increments the active-vehicle gauge.
func (mp *MetricsProvider) VehicleObserved(ctx context.Context) {
	mp.activeVehicles.Add(ctx, 1)
}

// VehicleGone decrements the active-vehicle gauge.
func (mp *MetricsProvider) VehicleGone(ctx context.Context) {
	mp.activeVehicles.Add(ctx, -1)
}
