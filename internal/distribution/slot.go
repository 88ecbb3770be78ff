// SPDX-License-Identifier: MIT

/*
Package distribution hands analysis results from the capture loop to
independently paced consumers.

Each consumer reads from its own Slot: a single-value mailbox where a
publish replaces whatever is there and a consume empties it. Neither
side ever waits for the other. A consumer that falls behind simply sees
the most recent value and the overwritten ones are counted as dropped.

Thread Safety:
  - Publish and Consume are lock-free pointer swaps
  - Published values are never mutated after the swap, so a reader can
    never observe a partially written value
*/
package distribution

import "sync/atomic"

// Slot is a single-slot, overwrite-on-full channel holding at most one
// unread value. The zero value is an empty, ready-to-use slot.
type Slot[T any] struct {
	value     atomic.Pointer[T]
	published atomic.Uint64
	dropped   atomic.Uint64
}

// NewSlot returns an empty slot.
func NewSlot[T any]() *Slot[T] {
	return &Slot[T]{}
}

// Publish stores v, replacing any unread value. It never blocks.
func (s *Slot[T]) Publish(v T) {
	s.published.Add(1)
	if prev := s.value.Swap(&v); prev != nil {
		s.dropped.Add(1)
	}
}

// Consume takes the unread value if there is one. The second result is
// false when nothing new was published since the last Consume.
func (s *Slot[T]) Consume() (T, bool) {
	p := s.value.Swap(nil)
	if p == nil {
		var zero T
		return zero, false
	}
	return *p, true
}

// Published returns how many values have been published.
func (s *Slot[T]) Published() uint64 {
	return s.published.Load()
}

// Dropped returns how many published values were overwritten before any
// consumer took them.
func (s *Slot[T]) Dropped() uint64 {
	return s.dropped.Load()
}
