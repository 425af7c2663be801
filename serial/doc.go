// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package serial models the simulator's byte channel: a bidirectional
// one-byte-at-a-time transport with explicit readiness signaling in
// both directions, mirroring the UART of the original silicon.
//
// Each direction is a single-byte latch. [RxPort] carries bytes from
// the outside world into the machine: the pump side blocks in Deliver
// while the latch is full (there is no buffering beyond one byte), and
// the machine side polls with Pending and consumes with Take, both
// non-blocking so they can run inside a tick. [TxPort] carries bytes
// out: the machine side asserts a byte with Offer, which succeeds only
// when the latch is empty (the ready/valid handshake collapsed to tick
// granularity), and the pump side drains with Next.
//
// [Pump] bridges a port pair to any io.ReadWriter — a TCP connection,
// a pseudo-terminal, or stdio — one byte per operation.
//
// The machine-side methods are what the simulator's contract with the
// channel requires: it never treats a receive as consumed unless a
// byte is actually pending, and never advances a transmission until
// the previous byte has been accepted.
package serial
