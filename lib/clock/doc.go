// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package clock provides an injectable time abstraction so that the
// tick-driven simulator core can be tested without real sleeps.
//
// Production code accepts a Clock parameter instead of calling
// time.Now, time.After, time.NewTicker, or time.Sleep directly. In
// production, Real() provides standard library behavior. In tests,
// Fake() provides a deterministic clock that advances only when
// Advance is called.
//
// # Wiring Pattern
//
// The simulation runner owns a Clock and derives its tick cadence
// from it:
//
//	runner := sim.NewRunner(machine, clock.Real(), tickInterval, logger)
//
// In tests:
//
//	c := clock.Fake(time.Date(2026, 1, 1, 0, 0, 0, 0, time.UTC))
//	runner := sim.NewRunner(machine, c, tickInterval, logger)
//	// ... start the runner goroutine ...
//	c.WaitForTimers(1)                // runner's ticker registered
//	c.Advance(10 * tickInterval)      // fire exactly ten ticks
//
// When a goroutine calls Sleep, After, or NewTicker on a FakeClock it
// registers a pending waiter. WaitForTimers blocks until a given
// number of waiters are registered, eliminating the race between
// timer registration and time advancement.
package clock
