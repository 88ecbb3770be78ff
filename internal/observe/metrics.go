// SPDX-License-Identifier: MIT

// Package observe provides the metrics recorded by the capture pipeline.
//
// Instruments are created through the OpenTelemetry Metrics API. Production
// wiring installs a Prometheus exporter via [InitProvider] so the values can
// be scraped from /metrics; tests build [NewMetrics] on a provider with a
// ManualReader.
package observe

import (
	"context"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// meterName is the instrumentation scope for every wavescope metric.
const meterName = "wavescope"

// DropCounter reports how many values a distribution slot overwrote before
// they were read.
type DropCounter = interface {
	Dropped() uint64
}

// Metrics holds the pipeline's instruments. All fields are safe for
// concurrent use.
type Metrics struct {
	meter metric.Meter

	// FramesCaptured counts frames read from the device and analyzed.
	FramesCaptured metric.Int64Counter

	// TransientFaults counts recoverable device read errors.
	TransientFaults metric.Int64Counter

	// AnalysisDuration tracks the time spent turning one frame into a
	// descriptor.
	AnalysisDuration metric.Float64Histogram

	// FramesDropped is observed from the distribution slots. Use
	// [Metrics.ObserveDrops] to attach them.
	FramesDropped metric.Int64ObservableCounter
}

// analysisBuckets are histogram boundaries in seconds. A 2048-sample frame
// at 44.1 kHz leaves about 46 ms per cycle.
var analysisBuckets = []float64{
	0.00005, 0.0001, 0.00025, 0.0005, 0.001, 0.0025, 0.005, 0.01, 0.025, 0.05,
}

// NewMetrics creates the instruments on the given provider.
func NewMetrics(mp metric.MeterProvider) (*Metrics, error) {
	m := mp.Meter(meterName)
	met := &Metrics{meter: m}
	var err error

	if met.FramesCaptured, err = m.Int64Counter("wavescope.frames.captured",
		metric.WithDescription("Frames read from the input device and analyzed."),
	); err != nil {
		return nil, err
	}
	if met.TransientFaults, err = m.Int64Counter("wavescope.device.transient_faults",
		metric.WithDescription("Recoverable device read errors, such as input overflow."),
	); err != nil {
		return nil, err
	}
	if met.AnalysisDuration, err = m.Float64Histogram("wavescope.analysis.duration",
		metric.WithDescription("Time to analyze one frame."),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(analysisBuckets...),
	); err != nil {
		return nil, err
	}
	if met.FramesDropped, err = m.Int64ObservableCounter("wavescope.frames.dropped",
		metric.WithDescription("Published values overwritten before a consumer read them, by channel."),
	); err != nil {
		return nil, err
	}

	return met, nil
}

// ObserveDrops reports the drop count of each named slot on every
// collection. Unregister the returned registration on shutdown.
func (m *Metrics) ObserveDrops(counters map[string]DropCounter) (metric.Registration, error) {
	attrs := make(map[string]metric.ObserveOption, len(counters))
	for name := range counters {
		attrs[name] = metric.WithAttributes(attribute.String("channel", name))
	}

	return m.meter.RegisterCallback(func(_ context.Context, o metric.Observer) error {
		for name, c := range counters {
			o.ObserveInt64(m.FramesDropped, int64(c.Dropped()), attrs[name])
		}
		return nil
	}, m.FramesDropped)
}

// RecordFrame records one analyzed frame and how long the analysis took.
func (m *Metrics) RecordFrame(ctx context.Context, elapsed time.Duration) {
	m.FramesCaptured.Add(ctx, 1)
	m.AnalysisDuration.Record(ctx, elapsed.Seconds())
}

// RecordTransientFault counts one recoverable device error.
func (m *Metrics) RecordTransientFault(ctx context.Context) {
	m.TransientFaults.Add(ctx, 1)
}
