package timer

import (
	"errors"
)

// ErrDriverGone is returned by Delay.Wait, Delay.Reset and Delay.ResetAt
// once a delay's driver has been closed, was already closed when the delay
// was constructed, or the inbox was sealed between construction and first
// use. It is a terminal condition: once observed for a given *Delay, every
// subsequent call returns it again.
var ErrDriverGone = errors.New("timer: driver is gone")

// ErrAlreadySet is returned by TimerHandle.SetAsGlobalFallback when a
// fallback driver has already been installed by a previous, successful
// call (first writer wins).
var ErrAlreadySet = errors.New("timer: global fallback driver already set")

// ErrElapsed indicates that a Timeout's delay fired before the wrapped
// operation completed.
var ErrElapsed = errors.New("timer: deadline elapsed")

// ErrAlreadyRunning is returned by Timer.Run when called on a Timer that is
// already being driven by a previous, still-active Run call.
var ErrAlreadyRunning = errors.New("timer: already running")

// ElapsedError wraps ErrElapsed. It carries no other detail about the
// timeout, such as its configured duration.
type ElapsedError struct {
	// Cause is nil (as set by Timeout) or ErrElapsed; Error and Unwrap
	// treat nil as ErrElapsed, so a zero-value ElapsedError still has a
	// sensible Error() string.
	Cause error
}

// Error implements the error interface.
func (e *ElapsedError) Error() string {
	if e.Cause == nil {
		return ErrElapsed.Error()
	}
	return e.Cause.Error()
}

// Unwrap returns ErrElapsed (or the configured Cause) for use with
// [errors.Is] and [errors.As].
func (e *ElapsedError) Unwrap() error {
	if e.Cause == nil {
		return ErrElapsed
	}
	return e.Cause
}

// Is reports whether target is ErrElapsed, so that
// errors.Is(err, ErrElapsed) works regardless of wrapping depth.
func (e *ElapsedError) Is(target error) bool {
	return target == ErrElapsed
}
