// SPDX-License-Identifier: MIT
package audio

import (
	"errors"
	"time"

	"wavescope/internal/analysis"
)

// Error taxonomy of the capture loop. Devices wrap ErrTransient for
// conditions the loop retries; the engine wraps everything else in
// ErrDeviceOpen or ErrDeviceFault and stops.
var (
	ErrTransient   = errors.New("transient input error")
	ErrDeviceOpen  = errors.New("failed to open input device")
	ErrDeviceFault = errors.New("input device fault")
)

// Device is a blocking source of mono 16-bit frames.
//
// Read fills buf completely and blocks until the samples are available.
// Open and Close are each called once by the owning Engine; Read is only
// called between them and only from the Engine's goroutine.
type Device interface {
	Open() error
	Read(buf []int16) error
	Close() error
}

// Publisher receives every analyzed frame. Publish must not block and must
// not retain frame, which the caller reuses for the next cycle.
type Publisher interface {
	Publish(frame []float64, d analysis.Descriptor)
}

// DeviceInfo describes a host audio device.
type DeviceInfo struct {
	ID                int
	Name              string
	MaxInputChannels  int
	MaxOutputChannels int
	DefaultSampleRate float64
	LowInputLatency   time.Duration
	HighInputLatency  time.Duration
	IsDefaultInput    bool
}

// HostDevices returns all devices known to PortAudio. PortAudio must be
// initialized.
func HostDevices() ([]DeviceInfo, error) {
	paDeviceInfos, err := paDevicesFunc()
	if err != nil {
		return nil, err
	}

	var defaultName string
	if def, err := paDefaultInputFunc(); err == nil && def != nil {
		defaultName = def.Name
	}

	devices := make([]DeviceInfo, len(paDeviceInfos))
	for i, info := range paDeviceInfos {
		devices[i] = DeviceInfo{
			ID:                i,
			Name:              info.Name,
			MaxInputChannels:  info.MaxInputChannels,
			MaxOutputChannels: info.MaxOutputChannels,
			DefaultSampleRate: info.DefaultSampleRate,
			LowInputLatency:   info.DefaultLowInputLatency,
			HighInputLatency:  info.DefaultHighInputLatency,
			IsDefaultInput:    info.Name == defaultName && info.MaxInputChannels > 0,
		}
	}
	return devices, nil
}
