// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package server exposes the simulator's byte channel over TCP, in
// the role the UART pins play on the original silicon.
//
// One interactive client is served at a time — the design is a
// single serial link, and multi-client access is explicitly out of
// scope. A second concurrent connection receives a short notice and
// is closed. While no client is attached the simulator keeps ticking:
// the [Server] continuously drains the transmit port into an
// [observe.RingBuffer] so the machine never wedges on a full latch,
// and a client attaching mid-run is sent the retained history first,
// then the live stream.
//
// Received bytes flow the other way unfiltered; the machine's
// dispatcher decides what is a command and what is a no-op.
package server
