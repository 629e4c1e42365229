package utils

import (
	"context"
	"time"
)

// SleepFunc pauses for d or until ctx is done. Components take one so tests
// can observe pauses without waiting for them.
type SleepFunc func(ctx context.Context, d time.Duration) error

// SleepWithContext blocks for d, returning early with ctx.Err() on cancellation
func SleepWithContext(ctx context.Context, d time.Duration) error {
	if d <= 0 {
		return ctx.Err()
	}
	timer := time.NewTimer(d)
	defer timer.Stop()
	select {
	case <-ctx.Done():
		return ctx.Err()
	case <-timer.C:
		return nil
	}
}
