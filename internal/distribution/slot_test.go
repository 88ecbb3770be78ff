// SPDX-License-Identifier: MIT
package distribution

import (
	"context"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSlotKeepsOnlyLatest(t *testing.T) {
	s := NewSlot[int]()

	_, ok := s.Consume()
	assert.False(t, ok, "new slot should be empty")

	s.Publish(1)
	s.Publish(2)

	v, ok := s.Consume()
	require.True(t, ok)
	assert.Equal(t, 2, v)

	_, ok = s.Consume()
	assert.False(t, ok, "slot should be empty after consume")

	assert.Equal(t, uint64(2), s.Published())
	assert.Equal(t, uint64(1), s.Dropped())
}

func TestSlotZeroValueIsUsable(t *testing.T) {
	var s Slot[string]
	s.Publish("a")
	v, ok := s.Consume()
	require.True(t, ok)
	assert.Equal(t, "a", v)
}

func TestSlotConsumeAfterEachPublishDropsNothing(t *testing.T) {
	s := NewSlot[int]()
	for i := range 10 {
		s.Publish(i)
		v, ok := s.Consume()
		require.True(t, ok)
		assert.Equal(t, i, v)
	}
	assert.Equal(t, uint64(0), s.Dropped())
}

// pair is published with both fields equal; seeing them differ would mean
// a reader observed a half-written value.
type pair struct {
	a, b uint64
	tail [8]uint64
}

func TestSlotConcurrentNoTornValues(t *testing.T) {
	s := NewSlot[pair]()
	const publishes = 20000

	var wg sync.WaitGroup
	var done atomic.Bool
	var seen atomic.Uint64

	wg.Add(1)
	go func() {
		defer wg.Done()
		for i := uint64(1); i <= publishes; i++ {
			p := pair{a: i, b: i}
			for j := range p.tail {
				p.tail[j] = i
			}
			s.Publish(p)
		}
		done.Store(true)
	}()

	for range 3 {
		wg.Add(1)
		go func() {
			defer wg.Done()
			for !done.Load() {
				p, ok := s.Consume()
				if !ok {
					continue
				}
				seen.Add(1)
				if p.a != p.b {
					t.Errorf("torn value: a=%d b=%d", p.a, p.b)
					return
				}
				for _, x := range p.tail {
					if x != p.a {
						t.Errorf("torn tail: %d != %d", x, p.a)
						return
					}
				}
			}
		}()
	}

	finished := make(chan struct{})
	go func() {
		wg.Wait()
		close(finished)
	}()
	select {
	case <-finished:
	case <-time.After(10 * time.Second):
		t.Fatal("publisher and consumers did not finish")
	}

	assert.Equal(t, uint64(publishes), s.Published())
	// Every publish was either consumed, overwritten, or is still pending.
	_, pending := s.Consume()
	total := seen.Load() + s.Dropped()
	if pending {
		total++
	}
	assert.Equal(t, uint64(publishes), total)
}

func TestSlotPublisherNeverBlocksOnAbsentConsumer(t *testing.T) {
	s := NewSlot[[]float64]()
	frame := make([]float64, 2048)

	done := make(chan struct{})
	go func() {
		for range 1000 {
			s.Publish(frame)
		}
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(5 * time.Second):
		t.Fatal("Publish blocked with no consumer")
	}
	assert.Equal(t, uint64(999), s.Dropped())
}

func TestPollDeliversLatestAndStops(t *testing.T) {
	s := NewSlot[int]()
	ctx, cancel := context.WithCancel(context.Background())

	got := make(chan int, 16)
	stopped := make(chan struct{})
	go func() {
		Poll(ctx, 5*time.Millisecond, s, func(v int) { got <- v })
		close(stopped)
	}()

	s.Publish(1)
	s.Publish(2)
	select {
	case v := <-got:
		assert.Equal(t, 2, v)
	case <-time.After(2 * time.Second):
		t.Fatal("Poll did not deliver")
	}

	// Nothing new: the handler is not called again.
	select {
	case v := <-got:
		t.Fatalf("unexpected delivery %d", v)
	case <-time.After(30 * time.Millisecond):
	}

	cancel()
	select {
	case <-stopped:
	case <-time.After(2 * time.Second):
		t.Fatal("Poll did not return after cancel")
	}
}

func TestPollDefaultsInvalidInterval(t *testing.T) {
	s := NewSlot[int]()
	s.Publish(7)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	got := make(chan int, 1)
	go Poll(ctx, 0, s, func(v int) {
		select {
		case got <- v:
		default:
		}
	})

	select {
	case v := <-got:
		assert.Equal(t, 7, v)
	case <-ctx.Done():
		t.Fatal("Poll with zero interval never ticked")
	}
}
