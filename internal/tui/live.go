// SPDX-License-Identifier: MIT
package tui

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"wavescope/internal/analysis"
	"wavescope/internal/distribution"
)

const (
	defaultWidth   = 80
	waveformHeight = 9
	spectrumHeight = 8
)

// Options configures the live display.
type Options struct {
	Title            string
	Source           string // Input description shown under the title.
	StatsInterval    time.Duration
	WaveformInterval time.Duration
	FrameSize        int
	SampleRate       float64
	Window           analysis.WindowFunc
	SpectrumMaxHz    float64
}

type keyMap struct {
	Quit key.Binding
}

var keys = keyMap{
	Quit: key.NewBinding(key.WithKeys("q", "ctrl+c", "esc"), key.WithHelp("q", "quit")),
}

// statsMsg carries the result of one stats poll.
type statsMsg struct {
	descriptor analysis.Descriptor
	fresh      bool
}

// waveformMsg carries the result of one waveform poll, with the spectrum
// already folded into display bars.
type waveformMsg struct {
	frame  distribution.WaveformFrame
	bars   []float64
	peakHz float64
	fresh  bool
}

// LiveModel is the Bubble Tea model of the running analyzer: a stats
// panel refreshed from the Stats slot and a waveform and spectrum view
// refreshed from the Waveform slot, each on its own tick.
type LiveModel struct {
	opts     Options
	stats    *distribution.Slot[analysis.Descriptor]
	waveform *distribution.Slot[distribution.WaveformFrame]
	spectrum *analysis.Spectrum // only touched by the waveform tick command

	width int

	descriptor analysis.Descriptor
	frame      distribution.WaveformFrame
	bars       []float64
	peakHz     float64
	statsSeen  bool
}

// NewLiveModel creates the live display model reading from the given
// slots.
func NewLiveModel(opts Options, stats *distribution.Slot[analysis.Descriptor], waveform *distribution.Slot[distribution.WaveformFrame]) (LiveModel, error) {
	spectrum, err := analysis.NewSpectrum(opts.FrameSize, opts.SampleRate, opts.Window, opts.SpectrumMaxHz)
	if err != nil {
		return LiveModel{}, err
	}
	if opts.StatsInterval <= 0 {
		opts.StatsInterval = 100 * time.Millisecond
	}
	if opts.WaveformInterval <= 0 {
		opts.WaveformInterval = distribution.DefaultPollInterval
	}
	if opts.Title == "" {
		opts.Title = "Real-Time Audio Analyzer"
	}

	return LiveModel{
		opts:       opts,
		stats:      stats,
		waveform:   waveform,
		spectrum:   spectrum,
		width:      defaultWidth,
		descriptor: analysis.Silent,
	}, nil
}

// Init starts both refresh loops.
func (m LiveModel) Init() tea.Cmd {
	return tea.Batch(m.pollStats(), m.pollWaveform())
}

func (m LiveModel) pollStats() tea.Cmd {
	slot := m.stats
	return tea.Tick(m.opts.StatsInterval, func(time.Time) tea.Msg {
		d, ok := slot.Consume()
		return statsMsg{descriptor: d, fresh: ok}
	})
}

// pollWaveform consumes the latest frame and computes its spectrum inside
// the command, so the transform runs off the UI goroutine. The next poll
// is only scheduled after this one is handled, so the Spectrum is never
// used concurrently.
func (m LiveModel) pollWaveform() tea.Cmd {
	slot, spectrum, cols := m.waveform, m.spectrum, m.plotWidth()
	return tea.Tick(m.opts.WaveformInterval, func(time.Time) tea.Msg {
		wf, ok := slot.Consume()
		if !ok {
			return waveformMsg{}
		}
		samples := spectrum.Compute(wf.Samples)
		var peakHz, peak float64
		for _, s := range samples {
			if s.Magnitude > peak {
				peak, peakHz = s.Magnitude, s.FrequencyHz
			}
		}
		return waveformMsg{
			frame:  wf,
			bars:   analysis.Bars(samples, cols),
			peakHz: peakHz,
			fresh:  true,
		}
	})
}

// Update handles key presses, resizes and poll results.
func (m LiveModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.KeyMsg:
		if key.Matches(msg, keys.Quit) {
			return m, tea.Quit
		}

	case tea.WindowSizeMsg:
		m.width = msg.Width

	case statsMsg:
		if msg.fresh {
			m.descriptor = msg.descriptor
			m.statsSeen = true
		}
		return m, m.pollStats()

	case waveformMsg:
		if msg.fresh {
			m.frame = msg.frame
			m.bars = msg.bars
			m.peakHz = msg.peakHz
		}
		return m, m.pollWaveform()
	}
	return m, nil
}

// plotWidth is the usable width inside a bordered section.
func (m LiveModel) plotWidth() int {
	return max(m.width-4, 10)
}

// View renders the UI
func (m LiveModel) View() string {
	var sb strings.Builder

	sb.WriteString(titleStyle.Render(m.opts.Title))
	if m.opts.Source != "" {
		sb.WriteString("  " + infoStyle.Render(m.opts.Source))
	}
	sb.WriteString("\n\n")
	sb.WriteString(m.renderStats())
	sb.WriteString("\n")
	sb.WriteString(m.renderWaveform())
	sb.WriteString("\n")
	sb.WriteString(m.renderSpectrum())
	sb.WriteString("\n")
	sb.WriteString(infoStyle.Render(fmt.Sprintf("frame #%d • %s: %s",
		m.frame.Sequence, keys.Quit.Help().Key, keys.Quit.Help().Desc)))
	return sb.String()
}

func (m LiveModel) renderStats() string {
	d := m.descriptor
	row := func(label, value string) string {
		return labelStyle.Render(fmt.Sprintf("%-11s", label)) + "  " + valueStyle.Render(value)
	}

	body := strings.Join([]string{
		row("Frequency:", fmt.Sprintf("%.1f Hz", d.FrequencyHz)),
		row("Amplitude:", fmt.Sprintf("%.4f", d.Amplitude)),
		row("Level:", fmt.Sprintf("%.1f dB", d.LevelDb)),
		row("Visual:", levelBar(d.LevelDb)),
	}, "\n")
	if !m.statsSeen {
		body += "\n" + highlightStyle.Render("waiting for audio...")
	}

	color := borderPalette[paletteIndex(d.FrequencyHz, len(borderPalette))]
	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(color).
		Padding(1, 2).
		Render(body)
}

func (m LiveModel) renderWaveform() string {
	idx := paletteIndex(m.frame.Descriptor.FrequencyHz, len(tracePalette))
	trace := lipgloss.NewStyle().Foreground(tracePalette[idx])

	rows := waveformRows(m.frame.Samples, m.plotWidth(), waveformHeight)
	return sectionStyle.Width(m.plotWidth() + 2).Render(
		highlightStyle.Render("Waveform") + "\n" + trace.Render(strings.Join(rows, "\n")))
}

func (m LiveModel) renderSpectrum() string {
	idx := (paletteIndex(m.frame.Descriptor.FrequencyHz, len(tracePalette)) + 3) % len(tracePalette)
	trace := lipgloss.NewStyle().Foreground(tracePalette[idx])

	header := fmt.Sprintf("Spectrum 0-%.0f Hz", m.spectrum.MaxFrequency())
	if m.peakHz > 0 {
		header += fmt.Sprintf(" • peak %.1f Hz", m.peakHz)
	}
	bars := m.bars
	if len(bars) == 0 {
		bars = make([]float64, m.plotWidth())
	}
	rows := barRows(bars, spectrumHeight)
	return sectionStyle.Width(m.plotWidth() + 2).Render(
		highlightStyle.Render(header) + "\n" + trace.Render(strings.Join(rows, "\n")))
}

// RunLive runs the live display until the user quits or ctx is done.
// Either way it returns nil; other program failures are returned.
func RunLive(ctx context.Context, opts Options, channels *distribution.Channels) error {
	model, err := NewLiveModel(opts, channels.Stats, channels.Waveform)
	if err != nil {
		return err
	}

	p := tea.NewProgram(model, tea.WithAltScreen(), tea.WithContext(ctx))
	if _, err := p.Run(); err != nil {
		if errors.Is(err, tea.ErrProgramKilled) && ctx.Err() != nil {
			return nil
		}
		return fmt.Errorf("terminal UI failed: %w", err)
	}
	return nil
}
