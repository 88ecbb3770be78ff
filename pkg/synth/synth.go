// SPDX-License-Identifier: MIT

// Package synth generates deterministic 16-bit test signals. The tone
// input device streams them in place of a microphone and the analysis
// tests use them as known-answer inputs.
package synth

import "math"

// FullScale is the largest positive 16-bit sample value.
const FullScale = math.MaxInt16

// Oscillator is a phase-continuous sine generator. Consecutive calls to
// Fill produce one uninterrupted waveform.
type Oscillator struct {
	SampleRate float64
	Frequency  float64
	Amplitude  float64 // fraction of full scale, 0..1
	phase      float64
}

// Fill writes the next len(dst) samples of the tone into dst.
func (o *Oscillator) Fill(dst []int16) {
	step := 2 * math.Pi * o.Frequency / o.SampleRate
	for i := range dst {
		dst[i] = quantize(math.Sin(o.phase) * o.Amplitude)
		o.phase += step
		if o.phase >= 2*math.Pi {
			o.phase -= 2 * math.Pi
		}
	}
}

// Reset rewinds the oscillator to phase zero.
func (o *Oscillator) Reset() {
	o.phase = 0
}

// Sine returns size samples of a sine wave starting at phase zero.
// amplitude is a fraction of full scale.
func Sine(size int, sampleRate, frequency, amplitude float64) []int16 {
	buffer := make([]int16, size)
	for i := range buffer {
		t := float64(i) / sampleRate
		buffer[i] = quantize(math.Sin(2*math.Pi*frequency*t) * amplitude)
	}
	return buffer
}

// Chord returns a 440 Hz fundamental with its second and third harmonics
// at decreasing levels, scaled to 90% of full scale.
func Chord(size int, sampleRate float64) []int16 {
	buffer := make([]int16, size)
	for i := range buffer {
		t := float64(i) / sampleRate
		signal := math.Sin(2*math.Pi*440*t)*0.5 +
			math.Sin(2*math.Pi*880*t)*0.3 +
			math.Sin(2*math.Pi*1320*t)*0.2
		buffer[i] = quantize(signal * 0.9)
	}
	return buffer
}

func quantize(v float64) int16 {
	s := math.Round(v * FullScale)
	if s > FullScale {
		return FullScale
	}
	if s < -FullScale {
		return -FullScale
	}
	return int16(s)
}
