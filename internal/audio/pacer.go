// SPDX-License-Identifier: MIT
package audio

import "time"

// pacer releases one frame per period of wall clock time, the way a sound
// card delivers buffers. A zero period disables pacing.
type pacer struct {
	period time.Duration
	next   time.Time

	now   func() time.Time
	sleep func(time.Duration)
}

func newPacer(frameSize int, sampleRate float64, realtime bool) *pacer {
	p := &pacer{now: time.Now, sleep: time.Sleep}
	if realtime && sampleRate > 0 {
		p.period = time.Duration(float64(frameSize) / sampleRate * float64(time.Second))
	}
	return p
}

// wait blocks until the current frame's slot has elapsed. After a stall
// longer than one period the schedule restarts from now instead of
// bursting to catch up.
func (p *pacer) wait() {
	if p.period <= 0 {
		return
	}
	now := p.now()
	if p.next.IsZero() || now.Sub(p.next) > p.period {
		p.next = now
	}
	p.next = p.next.Add(p.period)
	if d := p.next.Sub(now); d > 0 {
		p.sleep(d)
	}
}

func (p *pacer) reset() {
	p.next = time.Time{}
}
