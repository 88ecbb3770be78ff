// SPDX-License-Identifier: MIT
package tui

import (
	"errors"
	"fmt"
	"strings"

	"github.com/charmbracelet/bubbles/key"
	"github.com/charmbracelet/bubbles/viewport"
	tea "github.com/charmbracelet/bubbletea"

	"wavescope/internal/audio"
)

// ErrNoSelection is returned by PickDevice when the user leaves without
// choosing a device.
var ErrNoSelection = errors.New("no input device selected")

// DevicePickerModel represents the Bubble Tea model for choosing an input
// device before capture starts.
type DevicePickerModel struct {
	devices       []audio.DeviceInfo
	selectedIndex int
	chosen        bool
	viewport      viewport.Model
	ready         bool
}

var pickerKeys = struct {
	Up, Down, Choose, Quit key.Binding
}{
	Up:     key.NewBinding(key.WithKeys("up", "k")),
	Down:   key.NewBinding(key.WithKeys("down", "j")),
	Choose: key.NewBinding(key.WithKeys("enter")),
	Quit:   key.NewBinding(key.WithKeys("q", "ctrl+c", "esc")),
}

// NewDevicePickerModel creates a picker over the input-capable devices,
// with the system default preselected.
func NewDevicePickerModel(devices []audio.DeviceInfo) DevicePickerModel {
	m := DevicePickerModel{}
	for _, d := range devices {
		if d.MaxInputChannels > 0 {
			m.devices = append(m.devices, d)
		}
	}
	for i, d := range m.devices {
		if d.IsDefaultInput {
			m.selectedIndex = i
			break
		}
	}
	return m
}

// Init initializes the Bubble Tea model
func (m DevicePickerModel) Init() tea.Cmd {
	return nil
}

func (m DevicePickerModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		if !m.ready {
			m.viewport = viewport.New(msg.Width, msg.Height-4)
			m.ready = true
		} else {
			m.viewport.Width = msg.Width
			m.viewport.Height = msg.Height - 4
		}
		m.viewport.SetContent(m.renderDevices())

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, pickerKeys.Quit):
			return m, tea.Quit

		case key.Matches(msg, pickerKeys.Up):
			if m.selectedIndex > 0 {
				m.selectedIndex--
			}
		case key.Matches(msg, pickerKeys.Down):
			if m.selectedIndex < len(m.devices)-1 {
				m.selectedIndex++
			}
		case key.Matches(msg, pickerKeys.Choose):
			if len(m.devices) > 0 {
				m.chosen = true
				return m, tea.Quit
			}
		}
		if m.ready {
			m.viewport.SetContent(m.renderDevices())
		}
	}

	m.viewport, cmd = m.viewport.Update(msg)
	return m, cmd
}

// View renders the UI
func (m DevicePickerModel) View() string {
	if !m.ready {
		return "Initializing..."
	}
	title := titleStyle.Render("Choose Input Device")
	help := infoStyle.Render("↑/↓: Navigate • Enter: Capture • q: Quit")
	return fmt.Sprintf("%s\n\n%s\n\n%s", title, m.viewport.View(), help)
}

// renderDevices formats the device list
func (m DevicePickerModel) renderDevices() string {
	if len(m.devices) == 0 {
		return errorStyle.Render("No input devices found.")
	}

	var sb strings.Builder
	for i, device := range m.devices {
		marker := " "
		if device.IsDefaultInput {
			marker = "*"
		}
		deviceInfo := fmt.Sprintf("%s[%d] %s\n", marker, device.ID, device.Name)
		deviceInfo += fmt.Sprintf("    Input channels: %d, Default sample rate: %.0f Hz\n",
			device.MaxInputChannels, device.DefaultSampleRate)

		if i == m.selectedIndex {
			deviceInfo = highlightStyle.Render(deviceInfo)
		}
		sb.WriteString(deviceInfo)
		sb.WriteString("\n")
	}
	return sb.String()
}

// Selected returns the chosen device, if the user made a choice.
func (m DevicePickerModel) Selected() (audio.DeviceInfo, bool) {
	if !m.chosen || len(m.devices) == 0 {
		return audio.DeviceInfo{}, false
	}
	return m.devices[m.selectedIndex], true
}

// PickDevice runs the picker full screen and returns the chosen device
// ID. PortAudio must be initialized.
func PickDevice() (int, error) {
	devices, err := audio.HostDevices()
	if err != nil {
		return 0, fmt.Errorf("failed to enumerate devices: %w", err)
	}

	final, err := tea.NewProgram(NewDevicePickerModel(devices), tea.WithAltScreen()).Run()
	if err != nil {
		return 0, err
	}
	if d, ok := final.(DevicePickerModel).Selected(); ok {
		return d.ID, nil
	}
	return 0, ErrNoSelection
}
