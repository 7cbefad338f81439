package timer

import "sync/atomic"

// sealed is a sentinel stored in inbox.head to mark the inbox as
// permanently closed. It is distinguished from every real *scheduledTimer
// by pointer identity alone: no code ever schedules this record or reads
// its fields.
var sealed = &scheduledTimer{}

// inbox is a lock-free, intrusive, atomic singly-linked list of
// *scheduledTimer, used as the single point of contact between any number
// of delays and the one driver goroutine that owns them.
//
// Every record carries its own next pointer and enqueued flag (the "node"
// is embedded directly in scheduledTimer rather than allocated separately),
// so push is allocation-free: it is the only operation any goroutine other
// than the driver's ever performs, and it is safe to call concurrently from
// any number of goroutines. take, takeAndSeal, and pop are for the driver's
// exclusive use.
type inbox struct {
	head atomic.Pointer[scheduledTimer]
}

// push adds rec to the inbox and reports true, unless the inbox has been
// sealed by takeAndSeal, in which case rec is left off the list and push
// reports false. push and takeAndSeal contend on the same head pointer, so
// the CAS loop below is their single shared linearization point: a push
// that loses the race against a concurrent seal always observes it, right
// there, instead of succeeding into a list takeAndSeal has already taken
// and will never look at again. A record is never represented twice in the
// list at once, so a delay that calls Reset faster than the driver drains
// is coalesced to its most recent request rather than queued twice.
func (b *inbox) push(rec *scheduledTimer) bool {
	if rec.enqueued.Swap(true) {
		return true
	}
	for {
		head := b.head.Load()
		if head == sealed {
			rec.enqueued.Store(false)
			return false
		}
		rec.inboxNext.Store(head)
		if b.head.CompareAndSwap(head, rec) {
			return true
		}
	}
}

// take atomically empties the inbox for a normal, non-final drain,
// returning the chain of records pushed since the last take/takeAndSeal.
// If the inbox has already been sealed, take leaves the seal intact and
// returns nil rather than clobbering it with a bare Swap(nil).
func (b *inbox) take() *scheduledTimer {
	for {
		head := b.head.Load()
		if head == sealed {
			return nil
		}
		if b.head.CompareAndSwap(head, nil) {
			return head
		}
	}
}

// takeAndSeal atomically empties the inbox and permanently marks it closed:
// every push call racing this one, or arriving after it, fails and reports
// false instead of enqueuing. It is idempotent: a second call observes the
// seal already in place and returns nil.
func (b *inbox) takeAndSeal() *scheduledTimer {
	head := b.head.Swap(sealed)
	if head == sealed {
		return nil
	}
	return head
}

// pop walks the chain returned by take/takeAndSeal one record at a time,
// clearing each record's enqueued flag as it is removed so a subsequent
// push (e.g. from the same record's next Reset) is accepted rather than
// dropped.
func pop(chain *scheduledTimer) (rec, rest *scheduledTimer) {
	if chain == nil {
		return nil, nil
	}
	rest = chain.inboxNext.Load()
	chain.inboxNext.Store(nil)
	chain.enqueued.Store(false)
	return chain, rest
}
