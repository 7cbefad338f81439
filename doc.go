// Package timer provides one-shot deferred wake-ups ("delays") for
// cooperatively scheduled goroutines.
//
// # Architecture
//
// A [Delay] becomes ready at or after a specified instant. Every live delay
// is backed by a record shared with exactly one [Timer]: the driver that
// owns a binary min-heap of pending deadlines ([Timer.AdvanceTo] pops and
// fires everything due) and a lock-free inbox that delays use to push
// schedule/reschedule/remove requests without ever blocking on the driver.
//
// Five pieces do the work, in dependency order:
//
//   - an intrusive atomic inbox (many delays -> one driver, at-most-once
//     enqueue per record, sealed on driver shutdown)
//   - an indexed binary min-heap (stable slot handles survive sifts, so an
//     arbitrary entry can be removed in O(log n))
//   - a scheduled-timer record (fire-at instant, atomic generation/fired/
//     invalidated state word, single-slot notifier register, non-owning
//     reference back to the driver)
//   - the driver itself (drains the inbox, maintains the heap, fires due
//     timers)
//   - [Delay] and the lazily-spawned default driver goroutine
//
// # Usage
//
//	d := timer.NewDelay(100 * time.Millisecond)
//	if err := d.Wait(context.Background()); err != nil {
//	    // ErrDriverGone: the fallback driver has been closed.
//	}
//
// Embedders that want to own the driver loop themselves (rather than rely
// on the lazily-spawned default) construct one directly:
//
//	t := timer.New()
//	defer t.Close()
//	go t.Run(context.Background())
//	d := timer.NewDelayHandle(time.Now().Add(time.Second), t.Handle())
//
// # Thread Safety
//
// [Timer] is driven by exactly one goroutine at a time (either the one
// running [Timer.Run], or one calling [Timer.Drive]/[Timer.AdvanceTo]
// directly); any number of goroutines may concurrently create, reset, and
// drop [Delay] values against it. A single [Delay] is not itself safe for
// concurrent Wait/Reset/ResetAt calls from multiple goroutines, matching
// the upstream Rust crate this package is modeled on.
//
// # Error Types
//
//   - [ErrDriverGone]: the driver backing a delay has been closed.
//   - [ErrAlreadySet]: a global fallback driver is already installed.
//   - [ErrElapsed] / [ElapsedError]: returned by the [Timeout] combinator.
package timer
