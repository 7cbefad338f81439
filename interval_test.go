package timer

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInterval_NextFiresRepeatedly(t *testing.T) {
	tm := New()
	base := time.Now()
	iv := NewIntervalHandle(base.Add(time.Second), time.Second, tm.Handle())

	tm.AdvanceTo(base.Add(time.Second))
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.True(t, iv.Next(ctx))

	// The next tick should be due one period after the first, not one
	// period after "now".
	when, ok := tm.NextEvent()
	require.True(t, ok)
	assert.Equal(t, base.Add(2*time.Second), when)

	tm.AdvanceTo(base.Add(2 * time.Second))
	require.True(t, iv.Next(ctx))
}

func TestInterval_NextFalseOnContextDone(t *testing.T) {
	tm := New()
	iv := NewIntervalHandle(time.Now().Add(time.Hour), time.Second, tm.Handle())

	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	assert.False(t, iv.Next(ctx))
}

func TestNextTick_CatchesUpAfterFallingBehind(t *testing.T) {
	base := time.Now()
	period := 10 * time.Millisecond

	// Falling behind by several periods should skip straight past the
	// missed ticks rather than bursting them all out at once.
	now := base.Add(35 * time.Millisecond)
	next := nextTick(base, now, period)
	assert.True(t, next.After(now))
	assert.Equal(t, base.Add(40*time.Millisecond), next)
}

func TestNextTick_NormalCase(t *testing.T) {
	base := time.Now()
	period := 100 * time.Millisecond
	now := base.Add(10 * time.Millisecond)

	next := nextTick(base, now, period)
	assert.Equal(t, base.Add(period), next)
}
