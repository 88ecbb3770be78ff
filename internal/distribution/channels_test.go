// SPDX-License-Identifier: MIT
package distribution

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wavescope/internal/analysis"
)

func TestChannelsPublishFansOut(t *testing.T) {
	c := NewChannels(true)
	fixed := time.Date(2025, 1, 2, 3, 4, 5, 0, time.UTC)
	c.now = func() time.Time { return fixed }

	frame := []float64{0.5, -1, 0.25}
	d := analysis.Descriptor{FrequencyHz: 440, Amplitude: 0.7, LevelDb: -3}
	c.Publish(frame, d)

	// The publisher reuses its buffer; consumers must not see that.
	frame[0] = 99

	stats, ok := c.Stats.Consume()
	require.True(t, ok)
	assert.Equal(t, d, stats)

	feed, ok := c.Feed.Consume()
	require.True(t, ok)
	assert.Equal(t, d, feed)

	wf, ok := c.Waveform.Consume()
	require.True(t, ok)
	assert.Equal(t, []float64{0.5, -1, 0.25}, wf.Samples)
	assert.Equal(t, d, wf.Descriptor)
	assert.Equal(t, uint64(1), wf.Sequence)
	assert.Equal(t, fixed, wf.CapturedAt)
}

func TestChannelsSequenceAndDrops(t *testing.T) {
	c := NewChannels(false)
	assert.Nil(t, c.Feed)

	for i := range 5 {
		c.Publish([]float64{float64(i)}, analysis.Silent)
	}

	wf, ok := c.Waveform.Consume()
	require.True(t, ok)
	assert.Equal(t, uint64(5), wf.Sequence)
	assert.Equal(t, []float64{4}, wf.Samples)

	counters := c.Counters()
	assert.Len(t, counters, 2)
	assert.Equal(t, uint64(4), counters[WaveformChannel].Dropped())
	assert.Equal(t, uint64(4), counters[StatsChannel].Dropped())
}
