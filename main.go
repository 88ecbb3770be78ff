// SPDX-License-Identifier: MIT
package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"sync"
	"syscall"
	"time"

	"github.com/mattn/go-isatty"
	"golang.org/x/sync/errgroup"

	"wavescope/cmd"
	"wavescope/internal/analysis"
	"wavescope/internal/audio"
	"wavescope/internal/config"
	"wavescope/internal/distribution"
	applog "wavescope/internal/log"
	"wavescope/internal/observe"
	"wavescope/internal/transport"
	"wavescope/internal/tui"
	"wavescope/pkg/build"
)

// Sentinels that end the run group without being failures.
var (
	errQuit       = errors.New("user quit")
	errInputEnded = errors.New("input ended")
)

const shutdownTimeout = 2 * time.Second

// main is the entry point for the analyzer. The program flow is:
//
// 1. Startup: build information, command line and configuration, logging,
// PortAudio when a host device is involved.
//
// 2. Run: the capture engine publishes every analyzed frame to the
// distribution slots, while the terminal UI (or the headless logger) and
// the optional network feed poll them at their own rates.
//
// 3. Shutdown: SIGINT, SIGTERM or quitting the UI cancels the shared
// context; every goroutine returns and the device is closed.
func main() {
	os.Exit(realMain())
}

func realMain() int {
	if err := build.Initialize(); err != nil {
		applog.Fatalf("%v", err)
	}

	opts, err := cmd.ParseArgs(os.Args[1:], os.Stdout)
	if err != nil {
		applog.Errorf("%v", err)
		return 2
	}
	if opts == nil {
		return 0
	}
	cfg := opts.Config

	headless := cfg.Display.Headless || !isatty.IsTerminal(os.Stdout.Fd())
	closeLog, err := configureLogging(cfg, headless || opts.Command == cmd.CommandList)
	if err != nil {
		applog.Errorf("%v", err)
		return 1
	}
	defer closeLog()

	if opts.Command == cmd.CommandList {
		if err := listDevices(); err != nil {
			applog.Errorf("%v", err)
			return 1
		}
		return 0
	}

	if audio.NeedsPortAudio(cfg.Audio) || opts.PickDevice {
		if err := audio.Initialize(); err != nil {
			applog.Errorf("%v", err)
			return 1
		}
		defer audio.Terminate()
	}

	if opts.PickDevice {
		id, err := tui.PickDevice()
		if err != nil {
			if errors.Is(err, tui.ErrNoSelection) {
				return 0
			}
			closeLog()
			applog.Errorf("Device selection failed: %v", err)
			return 1
		}
		cfg.Audio.InputDevice = id
	}

	if err := run(cfg, headless); err != nil {
		// Back on stderr so the failure is visible once the UI is gone.
		closeLog()
		applog.Errorf("%v", err)
		return 1
	}
	return 0
}

// configureLogging applies the configured level and, while the terminal
// UI owns the screen, sends log output to the log file or discards it.
// The returned function restores stderr and closes the log file; it is
// safe to call more than once.
func configureLogging(cfg *config.Config, toStderr bool) (func(), error) {
	level, ok := applog.ParseLevel(cfg.LogLevel)
	if !ok {
		applog.Warnf("Unknown log level %q, using info", cfg.LogLevel)
	}
	if cfg.Debug {
		level = applog.LevelDebug
	}
	applog.SetLevel(level)

	if toStderr {
		return func() {}, nil
	}
	if cfg.LogFile == "" {
		applog.SetOutput(io.Discard)
		return sync.OnceFunc(func() { applog.SetOutput(os.Stderr) }), nil
	}

	f, err := os.OpenFile(cfg.LogFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file: %w", err)
	}
	applog.SetOutput(f)
	return sync.OnceFunc(func() {
		applog.SetOutput(os.Stderr)
		_ = f.Close()
	}), nil
}

func listDevices() error {
	if err := audio.Initialize(); err != nil {
		return err
	}
	defer audio.Terminate()
	return audio.ListDevices(os.Stdout)
}

// run wires the pipeline and blocks until it stops.
func run(cfg *config.Config, headless bool) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	buildInfo := build.GetBuildFlags()
	provider, err := observe.InitProvider(ctx, observe.ProviderConfig{
		ServiceName:    buildInfo.Name,
		ServiceVersion: buildInfo.Version,
	})
	if err != nil {
		return err
	}
	defer func() {
		shutdownCtx, cancel := context.WithTimeout(context.Background(), shutdownTimeout)
		defer cancel()
		if err := provider.Shutdown(shutdownCtx); err != nil {
			applog.Warnf("Metrics shutdown: %v", err)
		}
	}()

	metrics, err := observe.NewMetrics(provider.MeterProvider())
	if err != nil {
		return err
	}

	channels := distribution.NewChannels(cfg.Server.Enabled)
	registration, err := metrics.ObserveDrops(channels.Counters())
	if err != nil {
		return err
	}
	defer func() { _ = registration.Unregister() }()

	device := audio.NewDevice(cfg.Audio)
	engine, err := audio.NewEngine(cfg.Audio.FrameSize, cfg.Audio.SampleRate, device, channels, metrics)
	if err != nil {
		return err
	}

	window, err := analysis.ParseWindowFunc(cfg.Audio.FFTWindow)
	if err != nil {
		return err
	}
	displayOpts := tui.Options{
		Title:            buildInfo.Name,
		Source:           describeSource(cfg.Audio),
		StatsInterval:    cfg.Display.StatsInterval,
		WaveformInterval: cfg.Display.WaveformInterval,
		FrameSize:        cfg.Audio.FrameSize,
		SampleRate:       cfg.Audio.SampleRate,
		Window:           window,
		SpectrumMaxHz:    cfg.Display.SpectrumMaxHz,
	}

	g, gctx := errgroup.WithContext(ctx)

	if cfg.Server.Enabled {
		ws := transport.NewWebSocketTransport(cfg.Server.Addr, provider.Handler())
		if err := ws.Start(); err != nil {
			return err
		}
		defer func() {
			if err := ws.Close(); err != nil {
				applog.Warnf("Feed server shutdown: %v", err)
			}
		}()
		applog.Infof("Serving stats feed on ws://%s/ws (metrics on /metrics)", ws.Addr())

		g.Go(func() error {
			transport.Forward(gctx, cfg.Server.FeedInterval, channels.Feed, ws)
			return nil
		})
	}

	g.Go(func() error {
		err := engine.Run(gctx)
		if errors.Is(err, io.EOF) {
			applog.Infof("End of input file %s", cfg.Audio.InputFile)
			if headless {
				return errInputEnded
			}
			// The terminal UI keeps the last frame on screen until the user quits.
			return nil
		}
		return err
	})

	if headless {
		applog.Infof("Capturing from %s at %.0f Hz; press Ctrl+C to stop", displayOpts.Source, cfg.Audio.SampleRate)
		g.Go(func() error {
			lt := transport.NewLoggingTransport()
			defer lt.Close()
			return tui.RunHeadless(gctx, displayOpts, channels, lt)
		})
	} else {
		g.Go(func() error {
			if err := tui.RunLive(gctx, displayOpts, channels); err != nil {
				return err
			}
			return errQuit
		})
	}

	err = g.Wait()
	applog.Infof("Stopped after %d frames (%d transient input errors)", engine.Frames(), engine.TransientErrors())
	if errors.Is(err, errQuit) || errors.Is(err, errInputEnded) {
		return nil
	}
	return err
}

func describeSource(cfg config.AudioConfig) string {
	switch {
	case cfg.InputFile != "":
		if cfg.Loop {
			return fmt.Sprintf("file %s (looping)", cfg.InputFile)
		}
		return "file " + cfg.InputFile
	case cfg.ToneHz > 0:
		return fmt.Sprintf("tone %.1f Hz", cfg.ToneHz)
	case cfg.InputDevice == audio.DefaultDeviceID:
		return "default input device"
	default:
		return fmt.Sprintf("input device %d", cfg.InputDevice)
	}
}
