package timer

import "sync/atomic"

// recordState is the decoded form of a scheduledTimer's atomic state word.
//
// Layout: bit 0 is the fired flag, bit 1 is the invalidated flag, and every
// bit from 2 up is the generation counter. The generation is bumped by
// every successful Reset/ResetAt, and a fire is only honored by AdvanceTo
// if the heap entry's captured generation still matches: a reset always
// wins a race against a stale fire for the generation it superseded.
type recordState uint64

const (
	stateFired       recordState = 1 << 0
	stateInvalidated recordState = 1 << 1
	stateGenShift                = 2
)

func packRecordState(generation uint64, fired, invalidated bool) recordState {
	s := recordState(generation << stateGenShift)
	if fired {
		s |= stateFired
	}
	if invalidated {
		s |= stateInvalidated
	}
	return s
}

func (s recordState) fired() bool       { return s&stateFired != 0 }
func (s recordState) invalidated() bool { return s&stateInvalidated != 0 }
func (s recordState) generation() uint64 {
	return uint64(s >> stateGenShift)
}

// recordStateWord is a lock-free, cache-line-padded holder of a
// recordState. Every live scheduled-timer record carries exactly one of
// these; it carries the fired, invalidated and generation status shared
// between the delay that owns the record and the driver goroutine that
// fires it.
type recordStateWord struct { // betteralign:ignore
	_ [sizeOfCacheLine]byte
	v atomic.Uint64
	_ [sizeOfCacheLine - sizeOfAtomicUint64]byte
}

func (w *recordStateWord) load() recordState {
	return recordState(w.v.Load())
}

// tryBumpGeneration performs the CAS loop described in spec.md §4.3: clear
// the fired and invalidated bits and increment the generation, unless the
// record is already invalidated (driver gone), in which case it aborts
// without modifying the word.
func (w *recordStateWord) tryBumpGeneration() (newState recordState, ok bool) {
	for {
		cur := recordState(w.v.Load())
		if cur.invalidated() {
			return cur, false
		}
		next := packRecordState(cur.generation()+1, false, false)
		if w.v.CompareAndSwap(uint64(cur), uint64(next)) {
			return next, true
		}
	}
}

// tryInvalidate sets the invalidated bit, idempotently. Used during driver
// shutdown to push every live record into its terminal "driver gone" state.
func (w *recordStateWord) tryInvalidate() {
	for {
		cur := recordState(w.v.Load())
		if cur.invalidated() {
			return
		}
		next := cur | stateInvalidated
		if w.v.CompareAndSwap(uint64(cur), uint64(next)) {
			return
		}
	}
}

// tryFire sets the fired bit for the given generation, but only if the word
// still holds exactly that generation with both the fired and invalidated
// bits clear. A mismatch means the record was reset (new generation) or
// invalidated since the heap entry was scheduled, and the fire is dropped
// silently per spec.md §4.4.
func (w *recordStateWord) tryFire(generation uint64) bool {
	expect := packRecordState(generation, false, false)
	next := expect | stateFired
	return w.v.CompareAndSwap(uint64(expect), uint64(next))
}
