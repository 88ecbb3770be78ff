// SPDX-License-Identifier: MIT
package audio

import (
	"errors"
	"fmt"

	"github.com/gordonklaus/portaudio"
)

// PortAudioDevice captures mono 16-bit frames from a host input device
// using PortAudio's blocking read API. PortAudio must be initialized
// before Open.
type PortAudioDevice struct {
	deviceID   int
	sampleRate float64
	frameSize  int
	lowLatency bool

	stream *portaudio.Stream
	buffer []int16 // bound to the stream at open
}

// NewPortAudioDevice prepares a device; nothing is opened until Open.
func NewPortAudioDevice(deviceID int, sampleRate float64, frameSize int, lowLatency bool) *PortAudioDevice {
	return &PortAudioDevice{
		deviceID:   deviceID,
		sampleRate: sampleRate,
		frameSize:  frameSize,
		lowLatency: lowLatency,
	}
}

// Open opens and starts a one-channel input stream with exactly frameSize
// frames per buffer at the fixed sample rate.
func (d *PortAudioDevice) Open() error {
	info, err := InputDevice(d.deviceID)
	if err != nil {
		return err
	}

	latency := info.DefaultHighInputLatency
	if d.lowLatency {
		latency = info.DefaultLowInputLatency
	}

	d.buffer = make([]int16, d.frameSize)
	stream, err := portaudio.OpenStream(portaudio.StreamParameters{
		Input: portaudio.StreamDeviceParameters{
			Device:   info,
			Channels: 1,
			Latency:  latency,
		},
		SampleRate:      d.sampleRate,
		FramesPerBuffer: d.frameSize,
	}, d.buffer)
	if err != nil {
		return fmt.Errorf("failed to open stream on %q: %w", info.Name, err)
	}

	if err := stream.Start(); err != nil {
		stream.Close()
		return fmt.Errorf("failed to start stream on %q: %w", info.Name, err)
	}
	d.stream = stream
	return nil
}

// Read blocks until the next frame is captured. An input overflow means
// samples were lost upstream; the buffer still holds a full frame, so it
// is reported as transient and the caller may simply read again.
func (d *PortAudioDevice) Read(buf []int16) error {
	if d.stream == nil {
		return errors.New("stream not open")
	}
	if err := d.stream.Read(); err != nil {
		if errors.Is(err, portaudio.InputOverflowed) {
			return fmt.Errorf("%w: %v", ErrTransient, err)
		}
		return err
	}
	copy(buf, d.buffer)
	return nil
}

// Close stops and releases the stream. It is safe to call when Open failed.
func (d *PortAudioDevice) Close() error {
	if d.stream == nil {
		return nil
	}
	stream := d.stream
	d.stream = nil

	stopErr := stream.Stop()
	closeErr := stream.Close()
	return errors.Join(stopErr, closeErr)
}
