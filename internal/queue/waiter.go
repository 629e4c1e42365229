package queue

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dl-alexandre/gxlib/internal/logging"
	"github.com/dl-alexandre/gxlib/internal/utils"
)

// Waiter polls a StatusChecker until the queue drains
type Waiter struct {
	checker  StatusChecker
	interval time.Duration
	timeout  time.Duration
	sleep    utils.SleepFunc
	logger   logging.Logger
}

// WaiterOption configures a Waiter
type WaiterOption func(*Waiter)

// WithTimeout bounds the total wait. Zero waits forever.
func WithTimeout(d time.Duration) WaiterOption {
	return func(w *Waiter) { w.timeout = d }
}

// WithSleep replaces the pause between polls
func WithSleep(sleep utils.SleepFunc) WaiterOption {
	return func(w *Waiter) {
		if sleep != nil {
			w.sleep = sleep
		}
	}
}

// WithLogger sets the logger
func WithLogger(logger logging.Logger) WaiterOption {
	return func(w *Waiter) {
		if logger != nil {
			w.logger = logger
		}
	}
}

// NewWaiter creates a waiter that polls checker every interval
func NewWaiter(checker StatusChecker, interval time.Duration, opts ...WaiterOption) *Waiter {
	w := &Waiter{
		checker:  checker,
		interval: interval,
		sleep:    utils.SleepWithContext,
		logger:   logging.NewNoOpLogger(),
	}
	for _, opt := range opts {
		opt(w)
	}
	return w
}

// Wait blocks until the checker reports nothing pending or ErrQueueEmpty.
// Any other checker error ends the wait and is returned.
func (w *Waiter) Wait(ctx context.Context) error {
	parent := ctx
	if w.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, w.timeout)
		defer cancel()
	}

	for poll := 1; ; poll++ {
		pending, err := w.checker.Pending(ctx)
		switch {
		case errors.Is(err, ErrQueueEmpty):
			w.logger.Debug("Queue reported empty", logging.F("poll", poll))
			return nil
		case err != nil:
			return w.wrap(parent, ctx, err)
		case pending == 0:
			w.logger.Debug("Queue has no output", logging.F("poll", poll))
			return nil
		}

		w.logger.Info("Waiting for queued jobs",
			logging.F("lines", pending),
			logging.F("poll", poll),
		)
		if err := w.sleep(ctx, w.interval); err != nil {
			return w.wrap(parent, ctx, err)
		}
	}
}

// wrap turns expiry of the wait's own deadline into a TIMEOUT error while
// passing caller cancellation through untouched.
func (w *Waiter) wrap(parent, ctx context.Context, err error) error {
	if parent.Err() == nil && errors.Is(ctx.Err(), context.DeadlineExceeded) {
		return utils.WrapAppError(utils.NewCLIError(utils.ErrCodeTimeout,
			fmt.Sprintf("queue did not drain within %s", w.timeout)).
			WithContext("timeout", w.timeout.String()).
			Build(), err)
	}
	return err
}
