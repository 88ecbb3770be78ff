// SPDX-License-Identifier: MIT

// Package transport delivers descriptors to observers outside the process
// pipeline: the log in headless mode and websocket clients when the feed
// server is enabled. Only descriptors are ever sent, never samples.
package transport

import (
	"context"
	"time"

	"wavescope/internal/analysis"
	"wavescope/internal/distribution"
	applog "wavescope/internal/log"
)

// Transport defines a generic interface for sending descriptors.
// Implementations must be safe for concurrent use and must not block
// the caller on slow receivers.
type Transport interface {
	Send(data any) error
	Close() error
}

// Message is the wire form of one descriptor on the feed.
type Message struct {
	Seq         uint64  `json:"seq"`
	FrequencyHz float64 `json:"frequency_hz"`
	Amplitude   float64 `json:"amplitude"`
	LevelDb     float64 `json:"level_db"`
}

// NewMessage stamps a descriptor with its feed sequence number.
func NewMessage(seq uint64, d analysis.Descriptor) Message {
	return Message{
		Seq:         seq,
		FrequencyHz: d.FrequencyHz,
		Amplitude:   d.Amplitude,
		LevelDb:     d.LevelDb,
	}
}

// Forward polls slot every interval and sends each new descriptor through
// t as a Message until ctx is done. Send errors are logged and skipped.
func Forward(ctx context.Context, interval time.Duration, slot *distribution.Slot[analysis.Descriptor], t Transport) {
	var seq uint64
	distribution.Poll(ctx, interval, slot, func(d analysis.Descriptor) {
		seq++
		if err := t.Send(NewMessage(seq, d)); err != nil {
			applog.Debugf("Transport: send failed for message %d: %v", seq, err)
		}
	})
}
