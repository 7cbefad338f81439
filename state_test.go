package timer

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestRecordStateWord_TryBumpGeneration(t *testing.T) {
	var w recordStateWord

	s1, ok := w.tryBumpGeneration()
	assert.True(t, ok)
	assert.Equal(t, uint64(1), s1.generation())
	assert.False(t, s1.fired())
	assert.False(t, s1.invalidated())

	s2, ok := w.tryBumpGeneration()
	assert.True(t, ok)
	assert.Equal(t, uint64(2), s2.generation())
}

func TestRecordStateWord_TryFire(t *testing.T) {
	var w recordStateWord

	s, _ := w.tryBumpGeneration()
	gen := s.generation()

	assert.True(t, w.tryFire(gen))
	assert.True(t, w.load().fired())

	// A second fire of the same generation fails: the fired bit is already
	// set, so the CAS no longer matches the expected "unfired" word.
	assert.False(t, w.tryFire(gen))
}

func TestRecordStateWord_TryFire_StaleGeneration(t *testing.T) {
	var w recordStateWord

	s1, _ := w.tryBumpGeneration()
	staleGen := s1.generation()

	// Simulate a reset racing ahead of a stale fire.
	_, _ = w.tryBumpGeneration()

	assert.False(t, w.tryFire(staleGen))
	assert.False(t, w.load().fired())
}

func TestRecordStateWord_TryInvalidate(t *testing.T) {
	var w recordStateWord

	w.tryInvalidate()
	assert.True(t, w.load().invalidated())

	// Idempotent.
	w.tryInvalidate()
	assert.True(t, w.load().invalidated())

	// Once invalidated, generation bumps are refused.
	_, ok := w.tryBumpGeneration()
	assert.False(t, ok)
}

func TestPackRecordState_RoundTrip(t *testing.T) {
	s := packRecordState(42, true, false)
	assert.Equal(t, uint64(42), s.generation())
	assert.True(t, s.fired())
	assert.False(t, s.invalidated())

	s = packRecordState(7, false, true)
	assert.Equal(t, uint64(7), s.generation())
	assert.False(t, s.fired())
	assert.True(t, s.invalidated())
}
