package timer

import (
	"context"
	"runtime"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// defaultDriverHandle holds the lazily-spawned, process-wide fallback Timer used
// by NewDelay and NewDelayAt. Construction is coordinated through a
// singleflight.Group: the first caller to observe defaultDriverHandle unset
// spawns the driver and its background goroutine; every concurrent caller
// joins that same call rather than racing to spawn their own, and all of
// them observe the same *Timer once it resolves.
var (
	defaultDriverGroup  singleflight.Group
	defaultDriverHandle atomic.Pointer[Timer]
)

// defaultTimer returns the process-wide fallback Timer, spawning its
// background goroutine on first use. Every subsequent call, concurrent or
// not, observes the same *Timer: losers of the spawn race join the winner
// via singleflight rather than racing to construct their own, and a loser
// of a race against a concurrent SetAsGlobalFallback call reloads and
// returns the winner's Timer instead of the one it built.
func defaultTimer() *Timer {
	if t := defaultDriverHandle.Load(); t != nil {
		return t
	}
	v, _, _ := defaultDriverGroup.Do("default", func() (any, error) {
		if t := defaultDriverHandle.Load(); t != nil {
			return t, nil
		}
		t := New()
		if !defaultDriverHandle.CompareAndSwap(nil, t) {
			return defaultDriverHandle.Load(), nil
		}
		go runDefaultDriver(t)
		return t, nil
	})
	return v.(*Timer)
}

// runDefaultDriver is the background goroutine backing the lazily-spawned
// default Timer. It pins itself to its OS thread for the lifetime of the
// process: the default driver is expected to live as long as the program,
// and thread affinity keeps its park/wake latency consistent rather than
// subject to the Go scheduler moving it between Ms under load.
func runDefaultDriver(t *Timer) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()

	// The default driver runs for the lifetime of the process; it is never
	// explicitly closed; context.Background() is the only sensible ctx for
	// a goroutine with no owner to cancel it.
	_ = t.Run(context.Background())
}

// DefaultTimerHandle returns a TimerHandle bound to the process-wide
// fallback Timer, spawning it on first use.
func DefaultTimerHandle() TimerHandle {
	return defaultTimer().Handle()
}

// SetAsGlobalFallback installs h's Timer as the process-wide fallback used
// by NewDelay/NewDelayAt, in place of the lazily-spawned default. It must be
// called before the first use of NewDelay/NewDelayAt/DefaultTimerHandle;
// once either the lazily-spawned default or a prior SetAsGlobalFallback call
// has won, every subsequent call returns ErrAlreadySet and has no effect.
//
// This is for embedders who want every package-level Delay in a process to
// share one Timer they themselves drive (e.g. in a deterministic test
// harness), rather than the lazily-spawned, self-driving default.
func SetAsGlobalFallback(h TimerHandle) error {
	drv := h.drv.Value()
	if drv == nil {
		return ErrDriverGone
	}
	if !defaultDriverHandle.CompareAndSwap(nil, &Timer{inner: drv}) {
		return ErrAlreadySet
	}
	return nil
}
