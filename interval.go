package timer

import (
	"context"
	"time"
)

// Interval repeats a notification at a fixed period, self-correcting for
// drift: each tick is scheduled relative to when the previous one was due
// to fire, not relative to when it actually fired, so a slow consumer does
// not push later ticks later still. If more than one period has elapsed
// since the last tick (the consumer fell behind by a whole period or more),
// the missed ticks are coalesced into a single catch-up tick rather than
// delivered in a burst.
//
// Interval is a supplemental combinator layered on top of Delay; the
// upstream crate this package is modeled on expresses the same idea as a
// Stream rather than a pull-based Next method.
type Interval struct {
	delay  *Delay
	period time.Duration
}

// NewInterval creates an Interval whose first tick fires after period
// elapses, and every subsequent tick fires one period after the previous
// one was due, bound to the lazily-spawned, process-wide default Timer.
func NewInterval(period time.Duration) *Interval {
	return NewIntervalHandle(time.Now().Add(period), period, DefaultTimerHandle())
}

// NewIntervalAt creates an Interval whose first tick fires at the instant
// first, and every subsequent tick fires one period after the previous one
// was due, bound to the lazily-spawned, process-wide default Timer.
func NewIntervalAt(first time.Time, period time.Duration) *Interval {
	return NewIntervalHandle(first, period, DefaultTimerHandle())
}

// NewIntervalHandle is NewIntervalAt, bound to an explicit TimerHandle
// rather than the lazily-spawned, process-wide default.
func NewIntervalHandle(first time.Time, period time.Duration, h TimerHandle) *Interval {
	return &Interval{
		delay:  NewDelayHandle(first, h),
		period: period,
	}
}

// Next blocks until the next tick is due, returning true, or until ctx is
// done or the Interval's driver is closed, in which case it returns false.
// Once Next has returned false because the driver is gone it will keep
// doing so; a false caused by ctx is not sticky, and a later call with a
// live ctx waits for the next tick again.
func (iv *Interval) Next(ctx context.Context) bool {
	due := iv.delay.FiresAt()
	if err := iv.delay.Wait(ctx); err != nil {
		return false
	}
	if err := iv.delay.ResetAt(nextTick(due, time.Now(), iv.period)); err != nil {
		return false
	}
	return true
}

// nextTick computes the instant after prev at which a period-spaced tick is
// next due, skipping over any whole periods that have already elapsed
// between prev and now so a consumer that fell behind catches up with a
// single tick rather than a burst.
func nextTick(prev, now time.Time, period time.Duration) time.Time {
	next := prev.Add(period)
	if next.After(now) {
		return next
	}
	elapsed := now.Sub(prev)
	missed := int64(elapsed/period) + 1
	return prev.Add(period * time.Duration(missed))
}
