// SPDX-License-Identifier: MIT
package distribution

import (
	"context"
	"time"

	applog "wavescope/internal/log"
)

// DefaultPollInterval is used when a consumer is configured without a
// positive refresh interval (~20 Hz).
const DefaultPollInterval = 50 * time.Millisecond

// Poll runs a consumer at a fixed cadence until ctx is done. On each tick
// it takes the slot's unread value, if any, and passes it to handle; a
// tick with nothing new is skipped so the consumer keeps its last state.
// handle runs on Poll's goroutine and never blocks the publisher.
func Poll[T any](ctx context.Context, interval time.Duration, slot *Slot[T], handle func(T)) {
	if interval <= 0 {
		applog.Warnf("Poll: invalid interval %s, defaulting to %s", interval, DefaultPollInterval)
		interval = DefaultPollInterval
	}

	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if v, ok := slot.Consume(); ok {
				handle(v)
			}
		}
	}
}
