// SPDX-License-Identifier: MIT

/*
Package analysis turns one captured audio frame into its signal
descriptors: dominant frequency, RMS amplitude and level in dB. It also
provides the normalized magnitude spectrum used by the waveform display.

Everything here is free of I/O. An Analyzer or Spectrum owns
pre-allocated FFT buffers and must not be shared between goroutines;
each consumer builds its own.
*/
package analysis

import (
	"fmt"
	"math"
	"math/cmplx"

	"gonum.org/v1/gonum/dsp/fourier"
)

const (
	// FloorDb is the lowest level ever reported. Silence maps to it exactly.
	FloorDb = -60.0

	// ReferencePeak16 is the full-scale reference of signed 16-bit audio.
	ReferencePeak16 = 32768.0
)

// Descriptor is the per-frame analysis result. It is always produced and
// published as a whole value.
type Descriptor struct {
	FrequencyHz float64 `json:"frequency_hz"`
	Amplitude   float64 `json:"amplitude"`
	LevelDb     float64 `json:"level_db"`
}

// Silent is the descriptor of an all-zero frame.
var Silent = Descriptor{FrequencyHz: 0, Amplitude: 0, LevelDb: FloorDb}

// Analyzer computes Descriptors for frames of a fixed size.
type Analyzer struct {
	frameSize     int
	sampleRate    float64
	referencePeak float64

	fft    *fourier.FFT
	window []float64    // Hann coefficients
	input  []float64    // windowed frame
	coeffs []complex128 // N/2+1 FFT bins
	mags   []float64    // |coeffs|
}

// NewAnalyzer creates an analyzer for frames of frameSize samples captured
// at sampleRate Hz. Levels are referenced to 16-bit full scale.
func NewAnalyzer(frameSize int, sampleRate float64) (*Analyzer, error) {
	if frameSize <= 0 {
		return nil, fmt.Errorf("frame size must be positive, got %d", frameSize)
	}
	if sampleRate <= 0 {
		return nil, fmt.Errorf("sample rate must be positive, got %f", sampleRate)
	}

	return &Analyzer{
		frameSize:     frameSize,
		sampleRate:    sampleRate,
		referencePeak: ReferencePeak16,
		fft:           fourier.NewFFT(frameSize),
		window:        windowCoefficients(frameSize, Hann),
		input:         make([]float64, frameSize),
		coeffs:        make([]complex128, frameSize/2+1),
		mags:          make([]float64, frameSize/2+1),
	}, nil
}

// BinFrequency returns the frequency in Hz of FFT bin k.
func (a *Analyzer) BinFrequency(k int) float64 {
	return float64(k) * a.sampleRate / float64(a.frameSize)
}

// Analyze derives the descriptor of one capture cycle. Frequency and
// amplitude are measured on the peak-normalized frame; the level is
// measured on the raw 16-bit-scale frame so it reflects absolute loudness.
func (a *Analyzer) Analyze(raw, normalized []float64) Descriptor {
	return Descriptor{
		FrequencyHz: a.DominantFrequency(normalized),
		Amplitude:   RMS(normalized),
		LevelDb:     LevelDb(raw, a.referencePeak),
	}
}

// DominantFrequency returns the frequency of the strongest positive
// frequency bin of the Hann-windowed frame. Bins strictly between 0 and
// sampleRate/2 are eligible, the lowest bin wins a tie, and a frame with
// no spectral energy (or no eligible bin) yields 0.
//
// Frames shorter than the configured size are zero-padded; longer ones
// are truncated.
func (a *Analyzer) DominantFrequency(frame []float64) float64 {
	n := a.frameSize
	for i := range n {
		if i < len(frame) {
			a.input[i] = frame[i] * a.window[i]
		} else {
			a.input[i] = 0
		}
	}

	a.fft.Coefficients(a.coeffs, a.input)
	for k, c := range a.coeffs {
		a.mags[k] = cmplx.Abs(c)
	}

	// Positive bins are 1..ceil(N/2)-1; for even N the N/2 bin is the
	// Nyquist bin, which counts as negative frequency.
	bin := strongestBin(a.mags, (n+1)/2)
	if bin == 0 {
		return 0
	}
	return a.BinFrequency(bin)
}

// strongestBin scans mags[1:limit] left to right and returns the index of
// the first maximum, or 0 when every eligible bin is zero.
func strongestBin(mags []float64, limit int) int {
	if limit > len(mags) {
		limit = len(mags)
	}
	best, bestBin := 0.0, 0
	for k := 1; k < limit; k++ {
		if mags[k] > best {
			best, bestBin = mags[k], k
		}
	}
	return bestBin
}

// RMS returns sqrt(mean(x^2)) over the frame. An empty frame has RMS 0.
func RMS(frame []float64) float64 {
	if len(frame) == 0 {
		return 0
	}
	var sum float64
	for _, x := range frame {
		sum += x * x
	}
	return math.Sqrt(sum / float64(len(frame)))
}

// LevelDb returns the frame's RMS level in dB relative to referencePeak,
// clamped to [FloorDb, 0]. A silent frame returns exactly FloorDb.
func LevelDb(frame []float64, referencePeak float64) float64 {
	return levelFromRMS(RMS(frame), referencePeak)
}

func levelFromRMS(rms, referencePeak float64) float64 {
	if rms <= 0 || referencePeak <= 0 {
		return FloorDb
	}
	db := 20 * math.Log10(rms/referencePeak)
	if db < FloorDb {
		return FloorDb
	}
	if db > 0 {
		return 0
	}
	return db
}

// Normalize scales the frame in place so its largest absolute sample is 1
// and returns the peak found. A frame whose peak is 0 is left unchanged.
func Normalize(frame []float64) float64 {
	var peak float64
	for _, x := range frame {
		if x < 0 {
			x = -x
		}
		if x > peak {
			peak = x
		}
	}
	if peak > 0 {
		for i := range frame {
			frame[i] /= peak
		}
	}
	return peak
}
