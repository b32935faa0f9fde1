package sequence

import (
	"context"
	"time"

	"github.com/jonboulle/clockwork"
)

// ClockWaiter waits on a clockwork clock.
type ClockWaiter struct {
	Clock clockwork.Clock
}

// RealWaiter sleeps in real time.
func RealWaiter() ClockWaiter {
	return ClockWaiter{Clock: clockwork.NewRealClock()}
}

func (w ClockWaiter) Wait(ctx context.Context, d time.Duration) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	select {
	case <-w.Clock.After(d):
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}
