// SPDX-License-Identifier: MIT
package config

import "time"

// Core configuration constants that define the boundaries and defaults
// for the capture pipeline.
const (
	DefaultDeviceID         = MinDeviceID            // System default input device
	DefaultSampleRate       = 44100                  // CD-quality audio
	DefaultFrameSize        = 2048                   // ~46 ms per frame at 44.1 kHz
	DefaultFFTWindow        = "Hann"                 // Display spectrum window
	DefaultStatsInterval    = 100 * time.Millisecond // 10 Hz stats readout
	DefaultWaveformInterval = 50 * time.Millisecond  // ~20 fps waveform
	DefaultServerAddr       = "127.0.0.1:8080"
	DefaultFeedInterval     = 50 * time.Millisecond
	DefaultLogLevel         = "info"

	// Hardware and processing limits
	MinDeviceID   = -1     // -1 represents system default device
	MinSampleRate = 8000   // Minimum usable sample rate (Hz)
	MaxSampleRate = 192000 // Maximum supported sample rate (Hz)
	MaxFrameSize  = 16384  // Largest analysis frame (power of 2)
)

// Config represents the application configuration, loaded from YAML and
// then overridden by environment variables and command line flags.
type Config struct {
	Debug    bool          `yaml:"debug"`     // Enable debug logging.
	LogLevel string        `yaml:"log_level"` // "debug", "info", "warn", "error".
	LogFile  string        `yaml:"log_file"`  // Log destination while the terminal UI owns the screen.
	Audio    AudioConfig   `yaml:"audio"`
	Display  DisplayConfig `yaml:"display"`
	Server   ServerConfig  `yaml:"server"`
}

// AudioConfig holds settings related to audio input and analysis.
type AudioConfig struct {
	InputDevice int     `yaml:"input_device"` // PortAudio device index (-1 for default).
	SampleRate  float64 `yaml:"sample_rate"`  // Fixed sample rate in Hz; never negotiated.
	FrameSize   int     `yaml:"frame_size"`   // Samples per analyzed frame, a power of two.
	LowLatency  bool    `yaml:"low_latency"`  // Request low latency settings from PortAudio.
	FFTWindow   string  `yaml:"fft_window"`   // Window for the display spectrum.

	// Alternative inputs. At most one may be set.
	InputFile string  `yaml:"input_file"` // Mono 16-bit WAV replayed in real time.
	Loop      bool    `yaml:"loop"`       // Restart InputFile at end of file.
	ToneHz    float64 `yaml:"tone_hz"`    // Synthetic sine input.
}

// DisplayConfig holds consumer refresh settings.
type DisplayConfig struct {
	StatsInterval    time.Duration `yaml:"stats_interval"`
	WaveformInterval time.Duration `yaml:"waveform_interval"`
	SpectrumMaxHz    float64       `yaml:"spectrum_max_hz"` // 0 selects a quarter of the sample rate.
	Headless         bool          `yaml:"headless"`        // Log stats instead of drawing the terminal UI.
}

// ServerConfig holds settings for the descriptor feed and metrics server.
type ServerConfig struct {
	Enabled      bool          `yaml:"enabled"`
	Addr         string        `yaml:"addr"`
	FeedInterval time.Duration `yaml:"feed_interval"`
}

// NewConfig returns a Config populated with built-in defaults.
func NewConfig() *Config {
	return &Config{
		LogLevel: DefaultLogLevel,
		Audio: AudioConfig{
			InputDevice: DefaultDeviceID,
			SampleRate:  DefaultSampleRate,
			FrameSize:   DefaultFrameSize,
			FFTWindow:   DefaultFFTWindow,
		},
		Display: DisplayConfig{
			StatsInterval:    DefaultStatsInterval,
			WaveformInterval: DefaultWaveformInterval,
		},
		Server: ServerConfig{
			Addr:         DefaultServerAddr,
			FeedInterval: DefaultFeedInterval,
		},
	}
}
