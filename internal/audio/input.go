// SPDX-License-Identifier: MIT
package audio

import "wavescope/internal/config"

// NewDevice selects the input described by cfg: a WAV file replay when
// InputFile is set, a synthetic tone when ToneHz is set, and the PortAudio
// device InputDevice otherwise.
func NewDevice(cfg config.AudioConfig) Device {
	switch {
	case cfg.InputFile != "":
		return NewWAVDevice(cfg.InputFile, cfg.SampleRate, cfg.FrameSize, cfg.Loop, true)
	case cfg.ToneHz > 0:
		return NewToneDevice(cfg.ToneHz, DefaultToneAmplitude, cfg.SampleRate, cfg.FrameSize, true)
	default:
		return NewPortAudioDevice(cfg.InputDevice, cfg.SampleRate, cfg.FrameSize, cfg.LowLatency)
	}
}

// NeedsPortAudio reports whether the input selected by cfg is a host device.
func NeedsPortAudio(cfg config.AudioConfig) bool {
	return cfg.InputFile == "" && cfg.ToneHz <= 0
}
