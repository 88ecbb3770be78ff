// SPDX-License-Identifier: MIT
package cmd

import (
	"fmt"
	"io"

	"github.com/spf13/cobra"

	"wavescope/internal/config"
	"wavescope/pkg/build"
)

const (
	// CommandRun starts the analyzer.
	CommandRun = "run"
	// CommandList prints the host input devices.
	CommandList = "list"
)

// Options is the outcome of parsing the command line: the effective
// configuration (file, environment, then flags) and the command to run.
type Options struct {
	Command    string
	Config     *config.Config
	PickDevice bool
}

type flagValues struct {
	configPath string
	device     int
	sampleRate float64
	frameSize  int
	lowLatency bool
	window     string
	input      string
	loop       bool
	tone       float64
	headless   bool
	listen     string
	logFile    string
	pick       bool
	verbose    bool
}

// ParseArgs parses args (without the program name). It returns nil
// options and no error when cobra handled the invocation itself, as for
// --help and --version.
func ParseArgs(args []string, out io.Writer) (*Options, error) {
	buildInfo := build.GetBuildFlags()
	var (
		flags   flagValues
		options *Options
	)

	rootCmd := &cobra.Command{
		Use:           buildInfo.Name,
		Short:         buildInfo.Description,
		Version:       buildInfo.Version,
		Args:          cobra.NoArgs,
		SilenceErrors: true,
		SilenceUsage:  true,
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd:   true,
			DisableDescriptions: true,
			DisableNoDescFlag:   true,
			HiddenDefaultCmd:    true,
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, &flags)
			if err != nil {
				return err
			}
			options = &Options{
				Command:    CommandRun,
				Config:     cfg,
				PickDevice: flags.pick,
			}
			return nil
		},
	}

	// Display help message
	rootCmd.SetHelpCommand(&cobra.Command{Hidden: true})
	rootCmd.SetOut(out)
	rootCmd.SetErr(out)

	listCmd := &cobra.Command{
		Use:   CommandList,
		Short: "List available audio input devices",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cmd, &flags)
			if err != nil {
				return err
			}
			options = &Options{Command: CommandList, Config: cfg}
			return nil
		},
	}
	rootCmd.AddCommand(listCmd)

	pf := rootCmd.PersistentFlags()
	pf.StringVarP(&flags.configPath, "config", "C", "",
		"Path to the YAML configuration file (default "+config.DefaultPath+" when present)")
	pf.BoolVarP(&flags.verbose, "verbose", "v", false,
		"Show verbose output")

	// Audio input
	f := rootCmd.Flags()
	f.IntVarP(&flags.device, "device", "d", config.DefaultDeviceID,
		"Specify input device ID. Use 'list' command to see available devices.")
	f.Float64VarP(&flags.sampleRate, "sample-rate", "s", config.DefaultSampleRate,
		"Sample rate, measured in Hertz (Hz)")
	f.IntVarP(&flags.frameSize, "frame-size", "n", config.DefaultFrameSize,
		"Samples per analysis frame (power of two)")
	f.BoolVarP(&flags.lowLatency, "low-latency", "l", false,
		"Use low latency mode for real-time processing")
	f.StringVarP(&flags.window, "window", "w", config.DefaultFFTWindow,
		"Display spectrum window (Hann, Hamming, Blackman, BlackmanNuttall, BartlettHann, Lanczos, Nuttall)")
	f.StringVarP(&flags.input, "input", "i", "",
		"Replay a mono 16-bit WAV file instead of capturing")
	f.BoolVar(&flags.loop, "loop", false,
		"Restart the WAV file when it ends")
	f.Float64VarP(&flags.tone, "tone", "t", 0,
		"Analyze a synthetic sine tone of this frequency in Hz")
	f.BoolVarP(&flags.pick, "pick", "p", false,
		"Choose the input device interactively before starting")

	// Outputs
	f.BoolVar(&flags.headless, "headless", false,
		"Log stats instead of drawing the terminal UI")
	f.StringVarP(&flags.listen, "listen", "L", "",
		"Serve the stats feed, health and metrics on this address")
	f.Lookup("listen").NoOptDefVal = config.DefaultServerAddr
	f.StringVar(&flags.logFile, "log-file", "",
		"Write logs to this file while the terminal UI is active")

	rootCmd.SetArgs(args)
	if err := rootCmd.Execute(); err != nil {
		return nil, err
	}
	return options, nil
}

// loadConfig reads the configuration file and lays explicitly set flags
// over it. Flags left at their defaults never mask file or environment
// values. Validation runs once, on the merged result, so a flag can
// correct a bad file value.
func loadConfig(cmd *cobra.Command, flags *flagValues) (*config.Config, error) {
	cfg, err := config.ReadConfig(flags.configPath)
	if err != nil {
		return nil, err
	}

	changed := cmd.Flags().Changed
	if changed("device") {
		cfg.Audio.InputDevice = flags.device
	}
	if changed("sample-rate") {
		cfg.Audio.SampleRate = flags.sampleRate
	}
	if changed("frame-size") {
		cfg.Audio.FrameSize = flags.frameSize
	}
	if changed("low-latency") {
		cfg.Audio.LowLatency = flags.lowLatency
	}
	if changed("window") {
		cfg.Audio.FFTWindow = flags.window
	}
	// An input chosen on the command line replaces one from the file.
	if changed("input") {
		cfg.Audio.InputFile = flags.input
		if !changed("tone") {
			cfg.Audio.ToneHz = 0
		}
	}
	if changed("tone") {
		cfg.Audio.ToneHz = flags.tone
		if !changed("input") {
			cfg.Audio.InputFile = ""
		}
	}
	if changed("loop") {
		cfg.Audio.Loop = flags.loop
	}
	if changed("headless") {
		cfg.Display.Headless = flags.headless
	}
	if changed("listen") {
		cfg.Server.Enabled = true
		cfg.Server.Addr = flags.listen
	}
	if changed("log-file") {
		cfg.LogFile = flags.logFile
	}
	if flags.verbose {
		cfg.Debug = true
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}
