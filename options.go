// Copyright 2025 Joseph Cumines
//
// Permission to use, copy, modify, and distribute this software for any
// purpose with or without fee is hereby granted, provided that this copyright
// notice appears in all copies.

package timer

import "time"

// timerOptions holds configuration for New.
type timerOptions struct {
	logger Logger
	clock  func() time.Time
}

// --- Timer Options ---

// TimerOption configures a Timer instance.
type TimerOption interface {
	applyTimer(*timerOptions) error
}

// timerOptionImpl implements TimerOption.
type timerOptionImpl struct {
	applyTimerFunc func(*timerOptions) error
}

func (o *timerOptionImpl) applyTimer(opts *timerOptions) error {
	return o.applyTimerFunc(opts)
}

// WithLogger sets the structured logger a Timer uses for its own
// lifecycle and diagnostic events (driver start/shutdown, stale fires,
// inbox seal). The default is the logger installed with SetStructuredLogger
// at the time New is called, or a no-op logger if none is installed.
func WithLogger(logger Logger) TimerOption {
	return &timerOptionImpl{func(opts *timerOptions) error {
		opts.logger = logger
		return nil
	}}
}

// WithClock overrides the function a Timer's default-driven loop uses to
// read the current instant, for deterministic tests. It has no effect on
// AdvanceTo, which always trusts its caller-supplied "now" argument.
//
// The clock is assumed to be monotonic; AdvanceTo does not attempt to
// detect or compensate for clock jumps (spec.md §9).
func WithClock(now func() time.Time) TimerOption {
	return &timerOptionImpl{func(opts *timerOptions) error {
		if now != nil {
			opts.clock = now
		}
		return nil
	}}
}

// resolveTimerOptions applies TimerOption instances to timerOptions.
func resolveTimerOptions(opts []TimerOption) (*timerOptions, error) {
	cfg := &timerOptions{
		logger: getGlobalLogger(),
		clock:  time.Now,
	}
	for _, opt := range opts {
		if opt == nil {
			continue // Skip nil options gracefully
		}
		if err := opt.applyTimer(cfg); err != nil {
			return nil, err
		}
	}
	return cfg, nil
}
