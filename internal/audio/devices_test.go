// SPDX-License-Identifier: MIT
package audio

import (
	"bytes"
	"fmt"
	"strings"
	"testing"
	"time"

	"github.com/gordonklaus/portaudio"
)

var mockHost = []*portaudio.DeviceInfo{
	{Name: "Speakers", MaxOutputChannels: 2, DefaultSampleRate: 48000},
	{
		Name: "Built-in Microphone", MaxInputChannels: 1, DefaultSampleRate: 44100,
		DefaultLowInputLatency: 3 * time.Millisecond, DefaultHighInputLatency: 12 * time.Millisecond,
	},
	{Name: "USB Interface", MaxInputChannels: 2, MaxOutputChannels: 2, DefaultSampleRate: 96000},
}

// mockPortAudio replaces device enumeration for the duration of the test.
func mockPortAudio(t *testing.T, devices []*portaudio.DeviceInfo, devErr, defErr error) {
	t.Helper()
	origDevices, origDefault := paDevicesFunc, paDefaultInputFunc
	t.Cleanup(func() {
		paDevicesFunc, paDefaultInputFunc = origDevices, origDefault
	})

	paDevicesFunc = func() ([]*portaudio.DeviceInfo, error) {
		return devices, devErr
	}
	paDefaultInputFunc = func() (*portaudio.DeviceInfo, error) {
		if defErr != nil {
			return nil, defErr
		}
		return devices[1], nil
	}
}

func TestHostDevices(t *testing.T) {
	mockPortAudio(t, mockHost, nil, nil)

	devices, err := HostDevices()
	if err != nil {
		t.Fatalf("HostDevices error: %v", err)
	}
	if len(devices) != len(mockHost) {
		t.Fatalf("got %d devices, want %d", len(devices), len(mockHost))
	}
	for i, d := range devices {
		if d.ID != i {
			t.Errorf("Device ID mismatch: got %d, want %d", d.ID, i)
		}
		if d.Name != mockHost[i].Name {
			t.Errorf("Device %d name = %q, want %q", i, d.Name, mockHost[i].Name)
		}
		if want := i == 1; d.IsDefaultInput != want {
			t.Errorf("Device %d IsDefaultInput = %v, want %v", i, d.IsDefaultInput, want)
		}
	}
	if devices[1].LowInputLatency != 3*time.Millisecond {
		t.Errorf("LowInputLatency = %s, want 3ms", devices[1].LowInputLatency)
	}
}

func TestHostDevices_paDevicesError(t *testing.T) {
	mockPortAudio(t, nil, fmt.Errorf("mock error"), nil)

	_, err := HostDevices()
	if err == nil || !strings.Contains(err.Error(), "mock error") {
		t.Errorf("expected mock error, got %v", err)
	}
}

func TestInputDevice(t *testing.T) {
	mockPortAudio(t, mockHost, nil, nil)

	t.Run("Default device", func(t *testing.T) {
		dev, err := InputDevice(DefaultDeviceID)
		if err != nil {
			t.Fatalf("InputDevice(-1) error: %v", err)
		}
		if dev.Name != "Built-in Microphone" {
			t.Errorf("default device = %q", dev.Name)
		}
	})

	t.Run("Valid input device", func(t *testing.T) {
		dev, err := InputDevice(2)
		if err != nil {
			t.Fatalf("InputDevice(2) error: %v", err)
		}
		if dev.Name != "USB Interface" {
			t.Errorf("device = %q", dev.Name)
		}
	})

	tests := []struct {
		name   string
		id     int
		substr string
	}{
		{"Negative ID", -2, "invalid device ID"},
		{"Too high ID", len(mockHost) + 10, "invalid device ID"},
		{"Non-input device", 0, "no input channels"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := InputDevice(tt.id)
			if err == nil {
				t.Errorf("Expected error for ID %d", tt.id)
			} else if !strings.Contains(err.Error(), tt.substr) {
				t.Errorf("Error = %q, want substring %q", err.Error(), tt.substr)
			}
		})
	}
}

func TestInputDevice_paDevicesError(t *testing.T) {
	mockPortAudio(t, nil, fmt.Errorf("mock error"), nil)

	_, err := InputDevice(0)
	if err == nil || !strings.Contains(err.Error(), "mock error") {
		t.Errorf("expected mock error, got %v", err)
	}
}

func TestInputDevice_paDefaultInputDeviceError(t *testing.T) {
	mockPortAudio(t, mockHost, nil, fmt.Errorf("mock default input error"))

	_, err := InputDevice(DefaultDeviceID)
	if err == nil || !strings.Contains(err.Error(), "mock default input error") {
		t.Errorf("expected mock error, got %v", err)
	}
}

func TestListDevices(t *testing.T) {
	mockPortAudio(t, mockHost, nil, nil)

	var buf bytes.Buffer
	if err := ListDevices(&buf); err != nil {
		t.Fatalf("ListDevices error: %v", err)
	}
	out := buf.String()

	if strings.Contains(out, "Speakers") {
		t.Errorf("output-only device listed:\n%s", out)
	}
	if !strings.Contains(out, "*[1] Built-in Microphone") {
		t.Errorf("default input not marked:\n%s", out)
	}
	if !strings.Contains(out, " [2] USB Interface") {
		t.Errorf("second input missing:\n%s", out)
	}
	if !strings.Contains(out, "Latency: Low=3.00ms, High=12.00ms") {
		t.Errorf("latency missing:\n%s", out)
	}
}

func TestListDevices_NoInputs(t *testing.T) {
	mockPortAudio(t, mockHost[:1], nil, fmt.Errorf("no default"))

	var buf bytes.Buffer
	if err := ListDevices(&buf); err != nil {
		t.Fatalf("ListDevices error: %v", err)
	}
	if !strings.Contains(buf.String(), "No input devices found.") {
		t.Errorf("unexpected output:\n%s", buf.String())
	}
}

func TestErrorInitialize(t *testing.T) {
	orig := paInitialize
	defer func() { paInitialize = orig }()

	paInitialize = func() error { return nil }
	if err := Initialize(); err != nil {
		t.Errorf("expected nil, got %v", err)
	}

	paInitialize = func() error { return fmt.Errorf("mock init error") }
	if err := Initialize(); err == nil || !strings.Contains(err.Error(), "mock init error") {
		t.Errorf("expected mock init error, got %v", err)
	}
}

func TestErrorTerminate(t *testing.T) {
	orig := paTerminate
	defer func() { paTerminate = orig }()

	paTerminate = func() error { return nil }
	if err := Terminate(); err != nil {
		t.Errorf("expected nil, got %v", err)
	}

	paTerminate = func() error { return fmt.Errorf("mock term error") }
	if err := Terminate(); err == nil || !strings.Contains(err.Error(), "mock term error") {
		t.Errorf("expected mock term error, got %v", err)
	}
}

func TestPortAudioDeviceReadBeforeOpen(t *testing.T) {
	d := NewPortAudioDevice(DefaultDeviceID, 44100, 2048, false)
	if err := d.Read(make([]int16, 2048)); err == nil {
		t.Error("expected error reading an unopened stream")
	}
	if err := d.Close(); err != nil {
		t.Errorf("Close on unopened device: %v", err)
	}
}

func TestPortAudioDeviceOpenUnknownDevice(t *testing.T) {
	mockPortAudio(t, mockHost, nil, nil)

	d := NewPortAudioDevice(0, 44100, 2048, false)
	if err := d.Open(); err == nil || !strings.Contains(err.Error(), "no input channels") {
		t.Errorf("expected input channel error, got %v", err)
	}
}
