package timer

import (
	"context"
	"time"
)

// Timeout runs fn to completion, but returns an ElapsedError wrapping
// ErrElapsed if dur elapses before fn returns. fn is not canceled when the
// deadline elapses: it keeps running in its own goroutine, and its result
// (if it later arrives) is discarded.
//
// Timeout is a supplemental combinator built on top of Delay/NewDelay; it
// is not part of the upstream crate this package is modeled on, which
// expresses the same idea via Future combinators rather than a function
// taking a thunk.
func Timeout[T any](ctx context.Context, dur time.Duration, fn func(context.Context) (T, error)) (T, error) {
	return TimeoutHandle(ctx, dur, DefaultTimerHandle(), fn)
}

type timeoutResult[T any] struct {
	v   T
	err error
}

// TimeoutHandle is Timeout, bound to an explicit TimerHandle rather than the
// lazily-spawned, process-wide default.
func TimeoutHandle[T any](ctx context.Context, dur time.Duration, h TimerHandle, fn func(context.Context) (T, error)) (T, error) {
	d := NewDelayHandle(time.Now().Add(dur), h)

	done := make(chan timeoutResult[T], 1)
	go func() {
		v, err := fn(ctx)
		done <- timeoutResult[T]{v, err}
	}()

	waited := make(chan error, 1)
	go func() {
		waited <- d.Wait(ctx)
	}()

	select {
	case r := <-done:
		return r.v, r.err
	case err := <-waited:
		if err != nil {
			// The delay's own driver is gone, or ctx was canceled: either
			// way this is not a timeout, so fall through to fn's actual
			// outcome instead of reporting one.
			select {
			case r := <-done:
				return r.v, r.err
			case <-ctx.Done():
				var zero T
				return zero, ctx.Err()
			}
		}
		var zero T
		return zero, &ElapsedError{}
	}
}
