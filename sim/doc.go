// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package sim is a software model of the TT07 conway-term design: a
// Conway's Game of Life simulator on a toroidal board, driven and
// observed entirely through a one-byte serial channel.
//
// The original design is silicon with a single memory port, no stack,
// and no bulk operations, so the whole simulation is expressed as an
// explicit control process advanced one atomic step per tick. This
// model preserves that shape. [Machine.Tick] performs exactly one
// indivisible step of exactly one active sub-machine; anything that
// would block — waiting for a received byte, waiting for the transmit
// latch to drain — is expressed as remaining in the same state across
// ticks. There are no goroutines, no blocking calls, and no allocation
// inside the tick path.
//
// The machine cycles through six phases. After reset it sits in boot,
// transmitting nothing, until the first byte arrives on the channel;
// that byte (any value) triggers a board randomization and the one-time
// boot banner. From idle, the dispatcher interprets command bytes:
// '0' reseeds the board, '1' steps one generation (or stops autoplay),
// and space toggles autoplay, which then steps the board at a fixed
// cadence measured in idle ticks. A generation is three phases in
// sequence — update computes the next board one neighbor sample per
// tick (nine ticks per cell against the single memory port), commit
// copies it back one cell per tick, render serializes the board one
// byte per handshake round trip — and every path returns to idle
// through render.
//
// [Runner] drives Tick from an injected clock at a configurable
// cadence; tests call Tick directly and the cycle counts are exact.
package sim
