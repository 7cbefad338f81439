package timer

import (
	"sync"
	"sync/atomic"
	"time"
	"weak"
)

// scheduledTimer is the record shared between exactly one Delay and exactly
// one driver. It is the only thing the inbox and the heap ever hold: a
// Delay never touches the heap directly, and the driver never touches a
// Delay directly.
//
// Fields fall into three groups: the inbox's intrusive list linkage
// (inboxNext, enqueued), the driver-owned heap bookkeeping (heapSlot,
// fireAt, the committed scheduling state), and the cross-goroutine request
// surface (mu-guarded request fields, state, notifier) through which a
// Delay asks the driver to do something without ever touching the heap.
type scheduledTimer struct { // betteralign:ignore
	// inbox linkage; owned by the inbox, never touched elsewhere.
	inboxNext atomic.Pointer[scheduledTimer]
	enqueued  atomic.Bool

	// heap bookkeeping; owned by the driver goroutine exclusively.
	heapSlot int
	fireAt   time.Time

	// request surface; mu guards requestFireAt/requestRemove/
	// requestGen, which the driver reads exactly once per inbox
	// delivery and mirrors into fireAt, generation, and the heap.
	mu            sync.Mutex
	requestFireAt time.Time
	requestRemove bool
	requestGen    uint64

	// generation captures, for whichever fireAt the heap currently holds,
	// the generation AdvanceTo must see intact in state for the fire to be
	// honored rather than discarded as stale.
	generation uint64

	state    recordStateWord
	notifier notifierRegister
	driver   weak.Pointer[driverInner]
}

// newScheduledTimer allocates a record bound to drv, with heapSlot set to
// the sentinel meaning "not currently in any heap".
func newScheduledTimer(drv *driverInner, fireAt time.Time) *scheduledTimer {
	rec := &scheduledTimer{
		heapSlot: noHeapSlot,
		fireAt:   fireAt,
	}
	rec.requestFireAt = fireAt
	if drv != nil {
		rec.driver = weak.Make(drv)
	}
	return rec
}

// requestReset asks the driver to (re)schedule rec to fire at when,
// bumping its generation so any fire already in flight for a prior
// generation is discarded as stale. Returns false if the record's driver
// has been closed, in which case the request is not queued.
func (rec *scheduledTimer) requestReset(when time.Time) (generation uint64, ok bool) {
	state, bumped := rec.state.tryBumpGeneration()
	if !bumped {
		return 0, false
	}
	rec.mu.Lock()
	rec.requestFireAt = when
	rec.requestRemove = false
	rec.requestGen = state.generation()
	rec.mu.Unlock()
	rec.enqueueSelf()
	if rec.state.load().invalidated() {
		return 0, false
	}
	return state.generation(), true
}

// requestCancel asks the driver to remove rec from its heap, without
// invalidating it: a cancelled record may still be reset later.
func (rec *scheduledTimer) requestCancel() {
	rec.mu.Lock()
	rec.requestRemove = true
	rec.mu.Unlock()
	rec.enqueueSelf()
}

// enqueueSelf pushes rec onto its driver's inbox. If the driver is gone
// (garbage collected) or its inbox has already been sealed by Close, rec
// invalidates itself directly instead: inbox.push's own CAS loop is the
// single linearization point shared with Close's takeAndSeal, so a push
// that loses that race is told so right there, at the moment it happens,
// rather than relying on a separately-read flag that could go stale between
// being checked and being acted on.
func (rec *scheduledTimer) enqueueSelf() {
	drv := rec.driver.Value()
	if drv == nil || !drv.inbox.push(rec) {
		rec.state.tryInvalidate()
		rec.notifier.wake()
		return
	}
	drv.wake()
}

// commit applies the most recently requested fireAt/remove pair to rec's
// heap-facing fields; the request fields themselves are left as they are
// until the next requestReset/requestCancel. Called by the driver exactly
// once per inbox delivery, never concurrently with another commit of the
// same record.
func (rec *scheduledTimer) commit() (fireAt time.Time, remove bool) {
	rec.mu.Lock()
	defer rec.mu.Unlock()
	rec.fireAt = rec.requestFireAt
	rec.generation = rec.requestGen
	return rec.requestFireAt, rec.requestRemove
}
