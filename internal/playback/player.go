// Package playback paces a recorded simulation for live presentation.
// The simulation itself runs to completion instantly; playback replays the
// recorded ticks on a wall-clock cadence so a viewer can watch the run
// unfold.
package playback

import (
	"context"
	"fmt"
	"time"
)

// Player replays recorded ticks at a fixed interval.
type Player struct {
	// Interval is the wall-clock delay between ticks.
	Interval time.Duration
}

// New constructs a Player. Interval must be positive.
func New(interval time.Duration) (*Player, error) {
	if interval <= 0 {
		return nil, fmt.Errorf("playback interval must be positive, got %s", interval)
	}
	return &Player{Interval: interval}, nil
}

// Play invokes fn for ticks 0 through n-1, waiting the interval between
// calls. Tick 0 plays immediately. Cancellation is honored only at tick
// boundaries: the tick in flight completes, then Play returns ctx.Err().
func (p *Player) Play(ctx context.Context, n int, fn func(tick int) error) error {
	if n <= 0 {
		return nil
	}

	ticker := time.NewTicker(p.Interval)
	defer ticker.Stop()

	for tick := 0; tick < n; tick++ {
		if err := fn(tick); err != nil {
			return fmt.Errorf("playback tick %d: %w", tick, err)
		}
		if tick == n-1 {
			break
		}

		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
		}
	}

	return nil
}
