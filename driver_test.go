package timer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimer_AdvanceTo_FiresDueDelays(t *testing.T) {
	tm := New()
	base := time.Now()

	d := NewDelayHandle(base.Add(time.Second), tm.Handle())
	assert.False(t, d.Done())

	tm.AdvanceTo(base.Add(500 * time.Millisecond))
	assert.False(t, d.Done())

	tm.AdvanceTo(base.Add(2 * time.Second))
	assert.True(t, d.Done())
}

func TestTimer_AdvanceTo_OrdersMultipleDelays(t *testing.T) {
	tm := New()
	base := time.Now()

	early := NewDelayHandle(base.Add(time.Second), tm.Handle())
	late := NewDelayHandle(base.Add(3*time.Second), tm.Handle())

	tm.AdvanceTo(base.Add(2 * time.Second))
	assert.True(t, early.Done())
	assert.False(t, late.Done())

	tm.AdvanceTo(base.Add(4 * time.Second))
	assert.True(t, late.Done())
}

func TestTimer_ResetAt_DiscardsStaleFire(t *testing.T) {
	tm := New()
	base := time.Now()

	d := NewDelayHandle(base.Add(time.Second), tm.Handle())

	require.NoError(t, d.ResetAt(base.Add(5*time.Second)))

	// The original deadline has passed, but the reset bumped the
	// generation, so advancing past only the original deadline must not
	// fire it.
	tm.AdvanceTo(base.Add(2 * time.Second))
	assert.False(t, d.Done())

	tm.AdvanceTo(base.Add(6 * time.Second))
	assert.True(t, d.Done())
}

func TestTimer_NextEvent(t *testing.T) {
	tm := New()
	base := time.Now()

	_, ok := tm.NextEvent()
	assert.False(t, ok)

	NewDelayHandle(base.Add(2*time.Second), tm.Handle())
	NewDelayHandle(base.Add(time.Second), tm.Handle())

	when, ok := tm.NextEvent()
	require.True(t, ok)
	assert.Equal(t, base.Add(time.Second), when)
}

func TestTimer_Close_InvalidatesPendingDelays(t *testing.T) {
	tm := New()
	d := NewDelayHandle(time.Now().Add(time.Hour), tm.Handle())

	require.NoError(t, tm.Close())

	err := d.Wait(context.Background())
	assert.ErrorIs(t, err, ErrDriverGone)

	// Idempotent.
	assert.NoError(t, tm.Close())
}

func TestTimer_Close_RejectsNewDelays(t *testing.T) {
	tm := New()
	require.NoError(t, tm.Close())

	d := NewDelayHandle(time.Now().Add(time.Second), tm.Handle())
	err := d.Wait(context.Background())
	assert.ErrorIs(t, err, ErrDriverGone)
}

func TestTimer_Run_FiresOnSchedule(t *testing.T) {
	tm := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- tm.Run(ctx) }()

	d := NewDelayHandle(time.Now().Add(20*time.Millisecond), tm.Handle())
	require.NoError(t, d.Wait(context.Background()))

	cancel()
	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}

func TestTimer_Run_Reentrant(t *testing.T) {
	tm := New()
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	done := make(chan error, 1)
	go func() { done <- tm.Run(ctx) }()

	// Give the first Run a moment to install itself.
	require.Eventually(t, func() bool {
		return tm.inner.running.Load()
	}, time.Second, time.Millisecond)

	assert.ErrorIs(t, tm.Run(context.Background()), ErrAlreadyRunning)

	cancel()
	<-done
}

func TestTimer_Drive_UsesConfiguredClock(t *testing.T) {
	now := time.Now()
	clock := func() time.Time { return now }
	tm := New(WithClock(clock))

	d := NewDelayHandle(now.Add(time.Second), tm.Handle())
	tm.Drive()
	assert.False(t, d.Done())

	now = now.Add(2 * time.Second)
	tm.Drive()
	assert.True(t, d.Done())
}
