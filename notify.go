package timer

import "sync/atomic"

// Notifier is anything that can be woken up once a delay becomes ready, or
// once the driver has work to do. A *Delay's Wait installs one per call; the
// default driver's park loop installs one of its own.
type Notifier interface {
	Wake()
}

// notifierRegister is a single-slot, atomically replaceable holder of a
// Notifier. Only the most recently registered Notifier is retained: a
// second Register silently drops whoever was there before, matching the
// "last Wait call wins" semantics a single-waiter primitive implies.
type notifierRegister struct {
	slot atomic.Pointer[Notifier]
}

// register installs n as the current notifier, replacing whatever was
// there.
func (r *notifierRegister) register(n Notifier) {
	if n == nil {
		r.slot.Store(nil)
		return
	}
	r.slot.Store(&n)
}

// wake invokes the currently registered notifier's Wake, if any, leaving
// the slot populated: a single registration may be woken more than once,
// and it is the Notifier's own responsibility to ignore redundant wakes.
func (r *notifierRegister) wake() {
	if p := r.slot.Load(); p != nil {
		(*p).Wake()
	}
}

// clear removes the currently registered notifier, if it is still n. Used by
// Delay.Wait to avoid waking a notifier that belongs to a call that has
// since returned.
func (r *notifierRegister) clear(n Notifier) {
	p := r.slot.Load()
	if p == nil {
		return
	}
	if *p == n {
		r.slot.CompareAndSwap(p, nil)
	}
}

// chanNotifier is a Notifier backed by a buffered signal channel, the form
// used both by Delay.Wait (one per call, local to the waiting goroutine)
// and by the default driver's park loop.
type chanNotifier chan struct{}

func newChanNotifier() chanNotifier {
	return make(chanNotifier, 1)
}

// Wake implements Notifier. It never blocks: the channel is buffered by
// one, and a redundant wake on an already-signaled channel is simply
// dropped.
func (c chanNotifier) Wake() {
	select {
	case c <- struct{}{}:
	default:
	}
}
