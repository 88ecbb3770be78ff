// SPDX-License-Identifier: MIT
package tui

import (
	"context"

	"golang.org/x/sync/errgroup"

	"wavescope/internal/analysis"
	"wavescope/internal/distribution"
	applog "wavescope/internal/log"
	"wavescope/internal/transport"
)

// RunHeadless is the display for non-interactive runs. Stats go to t at
// the stats cadence; each waveform frame is transformed and its spectral
// peak logged at debug level. It returns when ctx is done.
func RunHeadless(ctx context.Context, opts Options, channels *distribution.Channels, t transport.Transport) error {
	spectrum, err := analysis.NewSpectrum(opts.FrameSize, opts.SampleRate, opts.Window, opts.SpectrumMaxHz)
	if err != nil {
		return err
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		distribution.Poll(ctx, opts.StatsInterval, channels.Stats, func(d analysis.Descriptor) {
			if err := t.Send(d); err != nil {
				applog.Warnf("Headless: failed to report stats: %v", err)
			}
		})
		return nil
	})
	g.Go(func() error {
		distribution.Poll(ctx, opts.WaveformInterval, channels.Waveform, func(wf distribution.WaveformFrame) {
			var peakHz, peak float64
			for _, s := range spectrum.Compute(wf.Samples) {
				if s.Magnitude > peak {
					peak, peakHz = s.Magnitude, s.FrequencyHz
				}
			}
			applog.Debugf("Headless: frame %d spectrum peak %.1f Hz", wf.Sequence, peakHz)
		})
		return nil
	})
	return g.Wait()
}
