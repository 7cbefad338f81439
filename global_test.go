package timer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetDefaultDriverForTest isolates a test's use of the process-wide
// default Timer singleton, restoring whatever was installed (or not)
// before the test ran once it completes. The singleton is otherwise shared
// mutable global state, and these tests need to observe it from empty.
func resetDefaultDriverForTest(t *testing.T) {
	t.Helper()
	prev := defaultDriverHandle.Load()
	defaultDriverHandle.Store(nil)
	t.Cleanup(func() {
		defaultDriverHandle.Store(prev)
	})
}

func TestDefaultTimer_SameInstanceAcrossCalls(t *testing.T) {
	resetDefaultDriverForTest(t)

	h1 := DefaultTimerHandle()
	h2 := DefaultTimerHandle()
	assert.Same(t, h1.drv.Value(), h2.drv.Value())
}

func TestSetAsGlobalFallback_FirstWriterWins(t *testing.T) {
	resetDefaultDriverForTest(t)

	tm := New()
	require.NoError(t, SetAsGlobalFallback(tm.Handle()))

	other := New()
	assert.ErrorIs(t, SetAsGlobalFallback(other.Handle()), ErrAlreadySet)

	assert.Same(t, tm.inner, DefaultTimerHandle().drv.Value())
}

func TestSetAsGlobalFallback_DrivenManually(t *testing.T) {
	resetDefaultDriverForTest(t)

	tm := New()
	require.NoError(t, SetAsGlobalFallback(tm.Handle()))

	base := time.Now()
	d := NewDelay(time.Second)

	// The installed fallback is never self-driving: callers who install
	// their own Timer via SetAsGlobalFallback own advancing it.
	tm.AdvanceTo(base.Add(2 * time.Second))
	assert.True(t, d.Done())
}

func TestDefaultTimer_SpawnsBackgroundRun(t *testing.T) {
	resetDefaultDriverForTest(t)

	d := NewDelay(20 * time.Millisecond)
	require.NoError(t, d.Wait(context.Background()))
}
