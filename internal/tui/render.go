// SPDX-License-Identifier: MIT
package tui

import (
	"math"
	"strings"

	"wavescope/internal/analysis"
)

const levelBarCells = 20

// levelPercent maps a level in [FloorDb, 0] dB onto [0, 100].
func levelPercent(levelDb float64) float64 {
	pct := (levelDb - analysis.FloorDb) * 100 / -analysis.FloorDb
	return math.Max(0, math.Min(100, pct))
}

// levelBar renders the level as a 20-cell meter, one cell per 5%.
func levelBar(levelDb float64) string {
	filled := int(levelPercent(levelDb) / 5)
	return strings.Repeat("█", filled) + strings.Repeat("░", levelBarCells-filled)
}

// waveformRows plots samples in [-1, 1] as a width x height dot grid,
// decimating by taking the sample of largest magnitude in each column.
func waveformRows(samples []float64, width, height int) []string {
	if width <= 0 || height <= 0 {
		return nil
	}
	grid := make([][]rune, height)
	for r := range grid {
		grid[r] = []rune(strings.Repeat(" ", width))
	}

	mid := (height - 1) / 2
	for c := range width {
		lo := c * len(samples) / width
		hi := (c + 1) * len(samples) / width
		if hi <= lo {
			if len(samples) == 0 {
				grid[mid][c] = '─'
				continue
			}
			hi = lo + 1
		}
		var v float64
		for _, s := range samples[lo:min(hi, len(samples))] {
			if math.Abs(s) > math.Abs(v) {
				v = s
			}
		}
		v = math.Max(-1, math.Min(1, v))
		row := int(math.Round((1 - v) / 2 * float64(height-1)))
		grid[row][c] = '•'
	}

	rows := make([]string, height)
	for r := range grid {
		rows[r] = string(grid[r])
	}
	return rows
}

var eighths = []rune(" ▁▂▃▄▅▆▇█")

// barRows draws one vertical bar per value in [0, 1], height rows tall,
// with eighth-cell resolution on the top cell.
func barRows(bars []float64, height int) []string {
	if height <= 0 {
		return nil
	}
	rows := make([]string, height)
	var sb strings.Builder
	for r := range height {
		sb.Reset()
		// Row 0 is the top of the plot.
		floor := float64(height-1-r) / float64(height)
		for _, b := range bars {
			b = math.Max(0, math.Min(1, b))
			fill := (b - floor) * float64(height) * 8
			switch {
			case fill >= 8:
				sb.WriteRune(eighths[8])
			case fill <= 0:
				sb.WriteRune(eighths[0])
			default:
				sb.WriteRune(eighths[int(fill)])
			}
		}
		rows[r] = sb.String()
	}
	return rows
}
