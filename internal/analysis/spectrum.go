// SPDX-License-Identifier: MIT
package analysis

import (
	"fmt"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

// SpectrumSample pairs a bin frequency with its magnitude relative to the
// frame's strongest bin.
type SpectrumSample struct {
	FrequencyHz float64
	Magnitude   float64
}

// Spectrum recomputes a display spectrum from a published frame. It is
// independent from the Analyzer's detection transform so the display can
// use a different window and run on the consumer's goroutine.
type Spectrum struct {
	frameSize  int
	sampleRate float64
	maxHz      float64

	fft     *fourier.FFT
	window  []float64
	input   []float64
	coeffs  []complex128
	samples []SpectrumSample
}

// NewSpectrum creates a display spectrum for frames of frameSize samples.
// Bins at or above maxHz are not reported; maxHz <= 0 selects a quarter of
// the sample rate, which covers the musically interesting range.
func NewSpectrum(frameSize int, sampleRate float64, windowType WindowFunc, maxHz float64) (*Spectrum, error) {
	if frameSize <= 0 {
		return nil, fmt.Errorf("frame size must be positive, got %d", frameSize)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %f", sampleRate)
	}
	if maxHz <= 0 || maxHz > sampleRate/2 {
		maxHz = sampleRate / 4
	}

	return &Spectrum{
		frameSize:  frameSize,
		sampleRate: sampleRate,
		maxHz:      maxHz,
		fft:        fourier.NewFFT(frameSize),
		window:     windowCoefficients(frameSize, windowType),
		input:      make([]float64, frameSize),
		coeffs:     make([]complex128, frameSize/2+1),
		samples:    make([]SpectrumSample, 0, frameSize/2),
	}, nil
}

// MaxFrequency returns the exclusive upper bound of reported bins in Hz.
func (s *Spectrum) MaxFrequency() float64 { return s.maxHz }

// Compute windows and transforms the frame and returns the positive bins
// below the display limit with magnitudes scaled to [0, 1]. The returned
// slice is reused by the next call.
func (s *Spectrum) Compute(frame []float64) []SpectrumSample {
	for i := range s.frameSize {
		if i < len(frame) {
			s.input[i] = frame[i] * s.window[i]
		} else {
			s.input[i] = 0
		}
	}
	s.fft.Coefficients(s.coeffs, s.input)

	s.samples = s.samples[:0]
	limit := (s.frameSize + 1) / 2
	var peak float64
	for k := 1; k < limit; k++ {
		freq := float64(k) * s.sampleRate / float64(s.frameSize)
		if freq >= s.maxHz {
			break
		}
		mag := cmplx.Abs(s.coeffs[k])
		if mag > peak {
			peak = mag
		}
		s.samples = append(s.samples, SpectrumSample{FrequencyHz: freq, Magnitude: mag})
	}

	if peak > 0 {
		for i := range s.samples {
			s.samples[i].Magnitude /= peak
		}
	}
	return s.samples
}

// Bars folds a spectrum into n display columns, each holding the largest
// magnitude among the bins it covers.
func Bars(samples []SpectrumSample, n int) []float64 {
	if n <= 0 {
		return nil
	}
	bars := make([]float64, n)
	if len(samples) == 0 {
		return bars
	}
	for i, s := range samples {
		col := i * n / len(samples)
		if s.Magnitude > bars[col] {
			bars[col] = s.Magnitude
		}
	}
	return bars
}
