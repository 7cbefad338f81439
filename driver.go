package timer

import (
	"context"
	"sync/atomic"
	"time"
	"weak"
)

// Timer is the driver of a binary min-heap of pending delays. It must be
// driven by exactly one goroutine at a time, either via Run or by repeated
// calls to Drive/AdvanceTo; any number of goroutines may concurrently create,
// reset, and drop Delay values against it via its Handle.
type Timer struct {
	inner *driverInner
}

// driverInner is the part of Timer reached through a weak.Pointer from
// every record it owns, so those records never keep a Timer alive past its
// last strong reference.
type driverInner struct {
	logger Logger
	clock  func() time.Time

	heap  timerHeap
	inbox inbox

	wakeCh  chanNotifier
	running atomic.Bool
	closed  atomic.Bool
}

// New constructs a Timer. It does not start driving itself: call Run (in its
// own goroutine) or repeatedly call Drive/AdvanceTo.
func New(opts ...TimerOption) *Timer {
	cfg, err := resolveTimerOptions(opts)
	if err != nil {
		// Every current TimerOption is infallible; resolveTimerOptions only
		// returns an error for options this package does not yet define.
		cfg = &timerOptions{logger: NewNoOpLogger(), clock: time.Now}
	}
	return &Timer{
		inner: &driverInner{
			logger: cfg.logger,
			clock:  cfg.clock,
			wakeCh: newChanNotifier(),
		},
	}
}

// TimerHandle is a lightweight, copyable, non-owning reference to a Timer,
// used to construct Delay values without extending the Timer's lifetime.
// Once the Timer it refers to has been garbage collected, every operation
// through a stale TimerHandle returns ErrDriverGone.
type TimerHandle struct {
	drv weak.Pointer[driverInner]
}

// Handle returns a TimerHandle referring to t.
func (t *Timer) Handle() TimerHandle {
	return TimerHandle{drv: weak.Make(t.inner)}
}

// newRecord allocates a scheduledTimer bound to h's driver, or returns
// ErrDriverGone if that driver no longer exists.
func (h TimerHandle) newRecord(fireAt time.Time) (*scheduledTimer, error) {
	drv := h.drv.Value()
	if drv == nil || drv.closed.Load() {
		return nil, ErrDriverGone
	}
	return newScheduledTimer(drv, fireAt), nil
}

// wake signals the driver's park loop (used by Run), if one is waiting.
func (d *driverInner) wake() {
	d.wakeCh.Wake()
}

// drainInbox applies every pending request queued since the last drain to
// the heap: removing the record from wherever it currently sits, then
// either leaving it removed (cancel request) or re-inserting it at its new
// fireAt (reset request).
func (d *driverInner) drainInbox() {
	chain := d.inbox.take()
	for chain != nil {
		var rec *scheduledTimer
		rec, chain = pop(chain)

		d.heap.remove(rec)

		_, remove := rec.commit()
		if remove {
			continue
		}
		if rec.state.load().invalidated() {
			continue
		}
		d.heap.push(rec)
	}
}

// advanceTo drains the inbox, then fires every record due at or before now.
// A record whose state no longer matches the generation it was scheduled
// under (reset or invalidated since) is silently dropped rather than fired.
func (d *driverInner) advanceTo(now time.Time) {
	d.drainInbox()
	for {
		rec, ok := d.heap.popDue(now)
		if !ok {
			return
		}
		gen := rec.generation
		if rec.state.tryFire(gen) {
			logDebug(d.logger, "record", "timer fired", gen, nil)
			rec.notifier.wake()
		} else {
			logWarn(d.logger, "record", "stale fire discarded", gen)
		}
	}
}

// nextEvent drains the inbox, then reports the earliest fireAt currently
// held in the heap, if any.
func (d *driverInner) nextEvent() (time.Time, bool) {
	d.drainInbox()
	return d.heap.peek()
}

// AdvanceTo fires every delay due at or before now. It is the synchronous
// building block Run and Drive are both expressed in terms of, exposed
// directly for callers that drive their own clock (tests, simulations).
func (t *Timer) AdvanceTo(now time.Time) {
	t.inner.advanceTo(now)
}

// Drive performs one non-blocking pass: it drains the inbox and fires
// everything due according to the Timer's configured clock (time.Now,
// unless overridden with WithClock). Safe to call from any single goroutine
// that owns driving this Timer.
func (t *Timer) Drive() {
	t.inner.advanceTo(t.inner.clock())
}

// NextEvent reports the earliest instant at which this Timer has scheduled
// work, if any, after draining any requests queued since the last drain.
func (t *Timer) NextEvent() (time.Time, bool) {
	return t.inner.nextEvent()
}

// Run drives the Timer until ctx is done or Close is called, parking
// between events rather than busy-polling. Only one Run may be active on a
// given Timer at a time; a concurrent call returns ErrAlreadyRunning.
func (t *Timer) Run(ctx context.Context) error {
	d := t.inner
	if !d.running.CompareAndSwap(false, true) {
		return ErrAlreadyRunning
	}
	defer d.running.Store(false)

	logInfo(d.logger, "driver", "driver started")
	defer logInfo(d.logger, "driver", "driver stopped")

	for {
		d.advanceTo(d.clock())

		if d.closed.Load() {
			return nil
		}

		var wait <-chan time.Time
		var deadline *time.Timer
		if when, ok := d.nextEvent(); ok {
			delay := when.Sub(d.clock())
			if delay <= 0 {
				continue // already due; loop back around without parking
			}
			deadline = time.NewTimer(delay)
			wait = deadline.C
		}

		select {
		case <-ctx.Done():
			if deadline != nil {
				deadline.Stop()
			}
			return ctx.Err()
		case <-d.wakeCh:
		case <-wait:
		}
		if deadline != nil {
			deadline.Stop()
		}

		if d.closed.Load() {
			d.advanceTo(d.clock())
			return nil
		}
	}
}

// Close seals the Timer's inbox and invalidates every record it currently
// owns, whether in the heap or awaiting a pending inbox request. Every
// Delay bound to this Timer subsequently observes ErrDriverGone from
// Reset/ResetAt, and from Wait unless it had already fired (Wait then keeps
// returning nil) or had been removed with Cancel (such a Delay is in neither
// structure, so Close does not invalidate or wake it). Close is idempotent
// and safe to call concurrently with Run/Drive/AdvanceTo.
func (t *Timer) Close() error {
	d := t.inner
	if !d.closed.CompareAndSwap(false, true) {
		return nil
	}

	// takeAndSeal and inbox.push share one CAS loop (see inbox.go), so this
	// single pass already sees every record that was, or ever will be,
	// enqueued: a push racing takeAndSeal either lands in the chain taken
	// here or fails and invalidates itself in enqueueSelf. No second pass
	// is needed.
	chain := d.inbox.takeAndSeal()
	for chain != nil {
		var rec *scheduledTimer
		rec, chain = pop(chain)
		rec.state.tryInvalidate()
		rec.notifier.wake()
	}
	for d.heap.Len() > 0 {
		rec := d.heap[0]
		d.heap.remove(rec)
		rec.state.tryInvalidate()
		rec.notifier.wake()
	}

	logInfo(d.logger, "driver", "inbox sealed, driver closed")
	d.wake()
	return nil
}
