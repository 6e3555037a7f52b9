package notifiers

import (
	"context"
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/cenkalti/backoff/v4"
)

// Fanout dispatches events to all configured notifiers.
type Fanout struct {
	notifiers   []Notifier
	maxAttempts int
	baseBackoff time.Duration
	maxBackoff  time.Duration
}

// FanoutOption tunes delivery of a Fanout.
type FanoutOption func(*Fanout)

// WithRetry retries each notifier up to attempts times in total, backing off
// exponentially from base.
func WithRetry(attempts int, base time.Duration) FanoutOption {
	return func(f *Fanout) {
		if attempts > 0 {
			f.maxAttempts = attempts
		}
		if base > 0 {
			f.baseBackoff = base
			f.maxBackoff = 16 * base
		}
	}
}

// NewFanout builds a dispatcher that fans out events across notifiers.
// Each notifier gets a single attempt unless WithRetry is given.
func NewFanout(ns []Notifier, opts ...FanoutOption) *Fanout {
	cp := make([]Notifier, 0, len(ns))
	for _, n := range ns {
		if n == nil {
			continue
		}
		cp = append(cp, n)
	}
	f := &Fanout{
		notifiers:   cp,
		maxAttempts: 1,
		baseBackoff: 100 * time.Millisecond,
		maxBackoff:  2 * time.Second,
	}
	for _, opt := range opts {
		opt(f)
	}
	return f
}

// Notify forwards the event to every registered notifier.
// It returns the number of notifiers that successfully handled the event.
func (f *Fanout) Notify(ctx context.Context, evt CommandEvent) (int, error) {
	if f == nil || len(f.notifiers) == 0 {
		return 0, nil
	}

	var errs []error
	successful := 0
	for _, n := range f.notifiers {
		if err := ctx.Err(); err != nil {
			errs = append(errs, err)
			break
		}
		if err := f.deliver(ctx, n, evt); err != nil {
			errs = append(errs, fmt.Errorf("%s notifier[%s]: %w", n.Type(), n.ID(), err))
			continue
		}
		successful++
	}
	return successful, errors.Join(errs...)
}

func (f *Fanout) deliver(ctx context.Context, n Notifier, evt CommandEvent) error {
	if f.maxAttempts <= 1 {
		return n.Notify(ctx, evt)
	}
	exp := backoff.NewExponentialBackOff()
	exp.InitialInterval = f.baseBackoff
	exp.Multiplier = 2
	exp.MaxInterval = f.maxBackoff
	exp.Reset()

	policy := backoff.WithContext(backoff.WithMaxRetries(exp, uint64(f.maxAttempts-1)), ctx)
	return backoff.Retry(func() error { return n.Notify(ctx, evt) }, policy)
}

// Close releases notifiers that hold connections.
func (f *Fanout) Close() error {
	if f == nil {
		return nil
	}
	var errs []error
	for _, n := range f.notifiers {
		if c, ok := n.(io.Closer); ok {
			if err := c.Close(); err != nil {
				errs = append(errs, fmt.Errorf("close notifier[%s]: %w", n.ID(), err))
			}
		}
	}
	return errors.Join(errs...)
}

// Size returns the number of active notifiers.
func (f *Fanout) Size() int {
	if f == nil {
		return 0
	}
	return len(f.notifiers)
}
