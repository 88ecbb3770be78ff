// SPDX-License-Identifier: MIT
package cmd

import (
	"bytes"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wavescope/internal/config"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o644))
	return path
}

func TestParseArgsDefaults(t *testing.T) {
	t.Chdir(t.TempDir())

	opts, err := ParseArgs(nil, &bytes.Buffer{})
	require.NoError(t, err)
	require.NotNil(t, opts)

	assert.Equal(t, CommandRun, opts.Command)
	assert.False(t, opts.PickDevice)
	assert.Equal(t, config.NewConfig(), opts.Config)
}

func TestParseArgsFlagsOverrideFile(t *testing.T) {
	path := writeConfig(t, `
audio:
  input_device: 3
  sample_rate: 48000
  tone_hz: 1000
display:
  stats_interval: 250ms
`)

	opts, err := ParseArgs([]string{"-C", path, "-d", "5", "--input", "song.wav", "--loop", "--headless"}, &bytes.Buffer{})
	require.NoError(t, err)

	cfg := opts.Config
	assert.Equal(t, 5, cfg.Audio.InputDevice)
	assert.Equal(t, 48000.0, cfg.Audio.SampleRate, "untouched flags keep file values")
	assert.Equal(t, "song.wav", cfg.Audio.InputFile)
	assert.Zero(t, cfg.Audio.ToneHz, "command line input replaces the file's tone")
	assert.True(t, cfg.Audio.Loop)
	assert.True(t, cfg.Display.Headless)
	assert.Equal(t, 250*time.Millisecond, cfg.Display.StatsInterval)
}

func TestParseArgsFlagCorrectsInvalidFileValue(t *testing.T) {
	path := writeConfig(t, `
audio:
  frame_size: 1000
`)

	opts, err := ParseArgs([]string{"-C", path, "--frame-size", "1024"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, 1024, opts.Config.Audio.FrameSize)

	_, err = ParseArgs([]string{"-C", path}, &bytes.Buffer{})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "try 1024")
}

func TestParseArgsListen(t *testing.T) {
	t.Chdir(t.TempDir())

	opts, err := ParseArgs([]string{"--listen"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.True(t, opts.Config.Server.Enabled)
	assert.Equal(t, config.DefaultServerAddr, opts.Config.Server.Addr)

	opts, err = ParseArgs([]string{"--listen=:9000"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.True(t, opts.Config.Server.Enabled)
	assert.Equal(t, ":9000", opts.Config.Server.Addr)
}

func TestParseArgsVerboseEnablesDebug(t *testing.T) {
	t.Chdir(t.TempDir())

	opts, err := ParseArgs([]string{"-v", "--pick"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.True(t, opts.PickDevice)
	assert.True(t, opts.Config.Debug)
}

func TestParseArgsListCommand(t *testing.T) {
	t.Chdir(t.TempDir())

	opts, err := ParseArgs([]string{"list"}, &bytes.Buffer{})
	require.NoError(t, err)
	assert.Equal(t, CommandList, opts.Command)
}

func TestParseArgsInvalidValues(t *testing.T) {
	t.Chdir(t.TempDir())

	tests := []struct {
		name string
		args []string
	}{
		{"Frame size not a power of two", []string{"-n", "1000"}},
		{"Tone above Nyquist", []string{"-t", "30000"}},
		{"Both tone and file", []string{"-t", "440", "-i", "a.wav"}},
		{"Unknown window", []string{"-w", "kaiser"}},
		{"Unknown flag", []string{"--record"}},
		{"Positional argument", []string{"extra"}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts, err := ParseArgs(tt.args, &bytes.Buffer{})
			assert.Error(t, err)
			assert.Nil(t, opts)
		})
	}
}

func TestParseArgsHelpAndVersion(t *testing.T) {
	for _, arg := range []string{"--help", "--version"} {
		t.Run(arg, func(t *testing.T) {
			var out bytes.Buffer
			opts, err := ParseArgs([]string{arg}, &out)
			require.NoError(t, err)
			assert.Nil(t, opts)
			assert.NotEmpty(t, out.String())
		})
	}
}
