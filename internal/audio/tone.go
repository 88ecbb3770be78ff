// SPDX-License-Identifier: MIT
package audio

import (
	"fmt"

	"wavescope/pkg/synth"
)

// DefaultToneAmplitude is the synthetic tone level as a fraction of full
// scale (about -9 dB).
const DefaultToneAmplitude = 0.5

// ToneDevice produces a continuous sine wave in place of a microphone.
type ToneDevice struct {
	osc   synth.Oscillator
	pacer *pacer
}

// NewToneDevice returns a tone source at frequency Hz. When realtime is
// set, reads are paced to frameSize/sampleRate seconds each.
func NewToneDevice(frequency, amplitude, sampleRate float64, frameSize int, realtime bool) *ToneDevice {
	return &ToneDevice{
		osc: synth.Oscillator{
			SampleRate: sampleRate,
			Frequency:  frequency,
			Amplitude:  amplitude,
		},
		pacer: newPacer(frameSize, sampleRate, realtime),
	}
}

func (d *ToneDevice) Open() error {
	if d.osc.SampleRate <= 0 {
		return fmt.Errorf("invalid sample rate %g", d.osc.SampleRate)
	}
	if d.osc.Frequency <= 0 || d.osc.Frequency >= d.osc.SampleRate/2 {
		return fmt.Errorf("tone frequency %g Hz outside (0, %g)", d.osc.Frequency, d.osc.SampleRate/2)
	}
	d.osc.Reset()
	d.pacer.reset()
	return nil
}

func (d *ToneDevice) Read(buf []int16) error {
	d.pacer.wait()
	d.osc.Fill(buf)
	return nil
}

func (d *ToneDevice) Close() error { return nil }
