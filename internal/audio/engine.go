// SPDX-License-Identifier: MIT
/*
Package audio implements the real-time capture loop:
- Blocking frame reads from a Device (PortAudio, WAV replay or tone)
- Per-frame normalization and analysis into a Descriptor
- Non-blocking hand-off of every frame to a Publisher

Thread Safety:
- An Engine and its Device are driven by a single goroutine (Run)
- Pre-allocates frame buffers to avoid GC in the hot path
- Publishers receive a buffer they must copy before returning
*/
package audio

import (
	"context"
	"errors"
	"fmt"
	"sync/atomic"
	"time"

	"wavescope/internal/analysis"
	applog "wavescope/internal/log"
	"wavescope/internal/observe"
)

// Engine reads frames from a device, analyzes them and publishes the
// results until its context is cancelled or the device fails.
type Engine struct {
	device    Device
	publisher Publisher
	metrics   *observe.Metrics // optional
	analyzer  *analysis.Analyzer

	// Reused every cycle.
	raw        []int16
	rawFloat   []float64
	normalized []float64

	frames    atomic.Uint64
	transient atomic.Uint64
}

// NewEngine creates an engine for frames of frameSize samples at
// sampleRate Hz. metrics may be nil.
func NewEngine(frameSize int, sampleRate float64, device Device, publisher Publisher, metrics *observe.Metrics) (*Engine, error) {
	if device == nil {
		return nil, errors.New("engine requires a device")
	}
	if publisher == nil {
		return nil, errors.New("engine requires a publisher")
	}
	analyzer, err := analysis.NewAnalyzer(frameSize, sampleRate)
	if err != nil {
		return nil, fmt.Errorf("failed to create analyzer: %w", err)
	}

	return &Engine{
		device:     device,
		publisher:  publisher,
		metrics:    metrics,
		analyzer:   analyzer,
		raw:        make([]int16, frameSize),
		rawFloat:   make([]float64, frameSize),
		normalized: make([]float64, frameSize),
	}, nil
}

// Run opens the device and processes frames until ctx is done, in which
// case it returns nil. Transient read errors are counted and the read is
// retried. Any other failure is returned wrapped in ErrDeviceOpen or
// ErrDeviceFault. The device is closed on every return path, including
// a failed Open.
func (e *Engine) Run(ctx context.Context) error {
	defer func() {
		if cerr := e.device.Close(); cerr != nil {
			applog.Warnf("Engine: failed to close input device: %v", cerr)
		}
		applog.Debugf("Engine: stopped after %d frames (%d transient errors)", e.frames.Load(), e.transient.Load())
	}()

	if err := e.device.Open(); err != nil {
		return fmt.Errorf("%w: %w", ErrDeviceOpen, err)
	}

	for {
		if ctx.Err() != nil {
			return nil
		}

		if err := e.device.Read(e.raw); err != nil {
			if errors.Is(err, ErrTransient) {
				e.transient.Add(1)
				if e.metrics != nil {
					e.metrics.RecordTransientFault(ctx)
				}
				applog.Debugf("Engine: transient read error, retrying: %v", err)
				continue
			}
			if ctx.Err() != nil {
				return nil
			}
			return fmt.Errorf("%w: %w", ErrDeviceFault, err)
		}

		e.processFrame(ctx)
	}
}

// processFrame analyzes the frame in e.raw and publishes it.
// Performance Critical (Hot Path): no allocations besides the publisher's
// copy.
func (e *Engine) processFrame(ctx context.Context) {
	start := time.Now()

	for i, s := range e.raw {
		e.rawFloat[i] = float64(s)
	}
	copy(e.normalized, e.rawFloat)
	analysis.Normalize(e.normalized)

	d := e.analyzer.Analyze(e.rawFloat, e.normalized)
	e.frames.Add(1)
	if e.metrics != nil {
		e.metrics.RecordFrame(ctx, time.Since(start))
	}

	e.publisher.Publish(e.normalized, d)
}

// Frames returns how many frames have been analyzed and published.
func (e *Engine) Frames() uint64 { return e.frames.Load() }

// TransientErrors returns how many reads failed transiently.
func (e *Engine) TransientErrors() uint64 { return e.transient.Load() }
