// SPDX-License-Identifier: MIT
package tui

import "github.com/charmbracelet/lipgloss"

var (
	titleStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5")).
			Background(lipgloss.Color("#25A065")).
			Padding(0, 1).
			Bold(true)

	infoStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#FFFDF5"))

	highlightStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#25A065")).
			Bold(true)

	labelStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("6")).
			Bold(true)

	valueStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("5")).
			Bold(true)

	errorStyle = lipgloss.NewStyle().
			Foreground(lipgloss.Color("#BF616A")).
			Bold(true)

	sectionStyle = lipgloss.NewStyle().
			Border(lipgloss.NormalBorder()).
			BorderForeground(lipgloss.Color("#333333")).
			Padding(0, 1)
)

// borderPalette colors the stats panel: red, yellow, green, cyan, blue,
// magenta.
var borderPalette = []lipgloss.Color{"1", "3", "2", "6", "4", "5"}

// tracePalette colors the waveform trace; the spectrum uses the entry
// three places further on.
var tracePalette = []lipgloss.Color{"#FF00FF", "#00FFFF", "#FFFF00", "#FF0080", "#00FF80", "#8000FF"}

// paletteIndex maps a frequency onto one of n palette slots, stepping
// every 100 Hz.
func paletteIndex(freq float64, n int) int {
	if freq < 0 || n <= 0 {
		return 0
	}
	return int(freq/100) % n
}
