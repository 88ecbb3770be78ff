// SPDX-License-Identifier: MIT
package tui

import (
	"strings"
	"testing"
	"unicode/utf8"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLevelBar(t *testing.T) {
	tests := []struct {
		level  float64
		filled int
	}{
		{-60, 0},
		{-75, 0},
		{-30, 10},
		{-3, 19},
		{0, 20},
		{6, 20},
		{-57.1, 0},
		{-56.9, 1},
	}
	for _, tt := range tests {
		bar := levelBar(tt.level)
		assert.Equal(t, levelBarCells, utf8.RuneCountInString(bar), "level %v", tt.level)
		assert.Equal(t, tt.filled, strings.Count(bar, "█"), "level %v", tt.level)
	}
}

func TestPaletteIndex(t *testing.T) {
	tests := []struct {
		freq float64
		want int
	}{
		{0, 0},
		{99.9, 0},
		{100, 1},
		{440, 4},
		{599, 5},
		{600, 0},
		{1000, 4},
		{-5, 0},
	}
	for _, tt := range tests {
		assert.Equal(t, tt.want, paletteIndex(tt.freq, 6), "freq %v", tt.freq)
	}
}

func TestWaveformRows(t *testing.T) {
	samples := []float64{1, 1, 0, 0, -1, -1}
	rows := waveformRows(samples, 3, 5)
	require.Len(t, rows, 5)
	assert.Equal(t, "•  ", rows[0])
	assert.Equal(t, " • ", rows[2])
	assert.Equal(t, "  •", rows[4])

	// Each column keeps the sample of largest magnitude.
	rows = waveformRows([]float64{0.1, -1}, 1, 3)
	assert.Equal(t, []string{" ", " ", "•"}, rows)

	// More columns than samples repeats samples instead of leaving gaps.
	rows = waveformRows([]float64{1}, 4, 3)
	assert.Equal(t, "••••", rows[0])

	rows = waveformRows(nil, 4, 3)
	assert.Equal(t, "────", rows[1])

	assert.Nil(t, waveformRows(samples, 0, 3))
}

func TestBarRows(t *testing.T) {
	rows := barRows([]float64{0, 0.5, 1}, 2)
	require.Len(t, rows, 2)
	assert.Equal(t, "  █", rows[0])
	assert.Equal(t, " ██", rows[1])

	// A quarter of a two-row plot is half of the bottom cell.
	rows = barRows([]float64{0.25}, 2)
	assert.Equal(t, []string{" ", "▄"}, rows)

	assert.Nil(t, barRows([]float64{1}, 0))
}
