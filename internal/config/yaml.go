// SPDX-License-Identifier: MIT
package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"wavescope/internal/analysis"
	applog "wavescope/internal/log"
	"wavescope/pkg/bitint"
)

// DefaultPath is searched in the working directory when no path is given.
const DefaultPath = "config.yaml"

// LoadConfig loads configuration from the YAML file at path, applies
// environment overrides and validates the result.
func LoadConfig(path string) (*Config, error) {
	cfg, err := ReadConfig(path)
	if err != nil {
		return nil, err
	}
	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// ReadConfig loads configuration from the YAML file at path and applies
// environment overrides without validating, so callers can lay further
// overrides (command line flags) on top first. If path is empty,
// DefaultPath is used when it exists and built-in defaults otherwise.
func ReadConfig(path string) (*Config, error) {
	cfg := NewConfig()

	if path == "" {
		if _, err := os.Stat(DefaultPath); err != nil {
			cfg.applyEnvOverrides()
			return cfg, nil
		}
		path = DefaultPath
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config file: %w", err)
	}

	cfg.applyEnvOverrides()
	return cfg, nil
}

// Validate checks the configuration for values the pipeline cannot run
// with. All problems are reported together.
func (c *Config) Validate() error {
	var errs []error

	if c.Audio.InputDevice < MinDeviceID {
		errs = append(errs, fmt.Errorf("audio.input_device must be >= %d, got %d", MinDeviceID, c.Audio.InputDevice))
	}
	if c.Audio.SampleRate < MinSampleRate || c.Audio.SampleRate > MaxSampleRate {
		errs = append(errs, fmt.Errorf("audio.sample_rate must be within [%d, %d], got %g", MinSampleRate, MaxSampleRate, c.Audio.SampleRate))
	}
	switch {
	case c.Audio.FrameSize <= 0 || c.Audio.FrameSize > MaxFrameSize:
		errs = append(errs, fmt.Errorf("audio.frame_size must be within [1, %d], got %d", MaxFrameSize, c.Audio.FrameSize))
	case !bitint.IsPowerOfTwo(c.Audio.FrameSize):
		errs = append(errs, fmt.Errorf("audio.frame_size must be a power of two, got %d (try %d)",
			c.Audio.FrameSize, bitint.NextPowerOfTwo(c.Audio.FrameSize)))
	}
	if _, err := analysis.ParseWindowFunc(c.Audio.FFTWindow); err != nil {
		errs = append(errs, fmt.Errorf("audio.fft_window: %w", err))
	}
	if c.Audio.InputFile != "" && c.Audio.ToneHz != 0 {
		errs = append(errs, errors.New("audio.input_file and audio.tone_hz are mutually exclusive"))
	}
	if c.Audio.ToneHz < 0 || (c.Audio.ToneHz > 0 && c.Audio.ToneHz >= c.Audio.SampleRate/2) {
		errs = append(errs, fmt.Errorf("audio.tone_hz must be below the Nyquist frequency %g, got %g", c.Audio.SampleRate/2, c.Audio.ToneHz))
	}

	if c.Display.StatsInterval <= 0 {
		errs = append(errs, fmt.Errorf("display.stats_interval must be positive, got %s", c.Display.StatsInterval))
	}
	if c.Display.WaveformInterval <= 0 {
		errs = append(errs, fmt.Errorf("display.waveform_interval must be positive, got %s", c.Display.WaveformInterval))
	}
	if c.Display.SpectrumMaxHz < 0 {
		errs = append(errs, fmt.Errorf("display.spectrum_max_hz must not be negative, got %g", c.Display.SpectrumMaxHz))
	}

	if c.Server.Enabled {
		if c.Server.Addr == "" {
			errs = append(errs, errors.New("server.addr must be set when the server is enabled"))
		} else if !strings.Contains(c.Server.Addr, ":") {
			errs = append(errs, fmt.Errorf("server.addr %q appears invalid (missing port?)", c.Server.Addr))
		}
		if c.Server.FeedInterval <= 0 {
			errs = append(errs, fmt.Errorf("server.feed_interval must be positive, got %s", c.Server.FeedInterval))
		}
	}

	return errors.Join(errs...)
}

// applyEnvOverrides applies ENV_* variables on top of the loaded file.
// Values that fail to parse are ignored with a warning.
func (c *Config) applyEnvOverrides() {
	// ENV_DEBUG
	if val, ok := os.LookupEnv("ENV_DEBUG"); ok {
		if b, err := strconv.ParseBool(val); err == nil {
			c.Debug = b
			applog.Debugf("configuration: overriding debug from env: %v", b)
		} else {
			applog.Warnf("configuration: ignoring ENV_DEBUG=%q: %v", val, err)
		}
	}
	// ENV_LOG_LEVEL
	if val, ok := os.LookupEnv("ENV_LOG_LEVEL"); ok {
		c.LogLevel = val
		applog.Debugf("configuration: overriding log_level from env: %s", val)
	}

	// ENV_AUDIO_{...}

	// ENV_AUDIO_DEVICE
	if val, ok := os.LookupEnv("ENV_AUDIO_DEVICE"); ok {
		if id, err := strconv.Atoi(val); err == nil {
			c.Audio.InputDevice = id
			applog.Debugf("configuration: overriding audio.input_device from env: %d", id)
		} else {
			applog.Warnf("configuration: ignoring ENV_AUDIO_DEVICE=%q: %v", val, err)
		}
	}

	// ENV_SERVER_{...}

	// ENV_SERVER_ENABLED
	if val, ok := os.LookupEnv("ENV_SERVER_ENABLED"); ok {
		if b, err := strconv.ParseBool(val); err == nil {
			c.Server.Enabled = b
			applog.Debugf("configuration: overriding server.enabled from env: %v", b)
		} else {
			applog.Warnf("configuration: ignoring ENV_SERVER_ENABLED=%q: %v", val, err)
		}
	}
	// ENV_SERVER_ADDR
	if val, ok := os.LookupEnv("ENV_SERVER_ADDR"); ok {
		c.Server.Addr = val
		applog.Debugf("configuration: overriding server.addr from env: %s", val)
	}
	// ENV_SERVER_FEED_INTERVAL
	if val, ok := os.LookupEnv("ENV_SERVER_FEED_INTERVAL"); ok {
		if d, err := time.ParseDuration(val); err == nil {
			c.Server.FeedInterval = d
			applog.Debugf("configuration: overriding server.feed_interval from env: %s", d)
		} else {
			applog.Warnf("configuration: ignoring ENV_SERVER_FEED_INTERVAL=%q: %v", val, err)
		}
	}
}
