// SPDX-License-Identifier: MIT
package distribution

import (
	"sync/atomic"
	"time"

	"wavescope/internal/analysis"
)

// Channel names, used as metric attributes and log fields.
const (
	StatsChannel    = "stats"
	WaveformChannel = "waveform"
	FeedChannel     = "feed"
)

// WaveformFrame is one capture cycle as seen by the waveform consumer:
// the normalized samples and the descriptor computed from them.
type WaveformFrame struct {
	Sequence   uint64
	CapturedAt time.Time
	Samples    []float64 // private copy, owned by the receiver
	Descriptor analysis.Descriptor
}

// Channels fans each analyzed frame out to one slot per consumer.
// It satisfies audio.Publisher.
type Channels struct {
	Stats    *Slot[analysis.Descriptor]
	Waveform *Slot[WaveformFrame]
	Feed     *Slot[analysis.Descriptor] // nil unless a network feed is enabled

	sequence atomic.Uint64
	now      func() time.Time
}

// NewChannels creates the stats and waveform slots, plus the feed slot
// when withFeed is set.
func NewChannels(withFeed bool) *Channels {
	c := &Channels{
		Stats:    NewSlot[analysis.Descriptor](),
		Waveform: NewSlot[WaveformFrame](),
		now:      time.Now,
	}
	if withFeed {
		c.Feed = NewSlot[analysis.Descriptor]()
	}
	return c
}

// Publish hands the frame and its descriptor to every slot. The frame is
// copied, so the caller may reuse its buffer for the next cycle.
func (c *Channels) Publish(frame []float64, d analysis.Descriptor) {
	samples := make([]float64, len(frame))
	copy(samples, frame)

	c.Waveform.Publish(WaveformFrame{
		Sequence:   c.sequence.Add(1),
		CapturedAt: c.now(),
		Samples:    samples,
		Descriptor: d,
	})
	c.Stats.Publish(d)
	if c.Feed != nil {
		c.Feed.Publish(d)
	}
}

// Counters lists the drop counter of every active slot by channel name.
func (c *Channels) Counters() map[string]interface{ Dropped() uint64 } {
	counters := map[string]interface{ Dropped() uint64 }{
		StatsChannel:    c.Stats,
		WaveformChannel: c.Waveform,
	}
	if c.Feed != nil {
		counters[FeedChannel] = c.Feed
	}
	return counters
}
