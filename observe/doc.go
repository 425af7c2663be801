// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// Package observe provides observation plumbing for the simulator's
// transmit stream.
//
// [RingBuffer] retains the raw bytes the render engine transmitted,
// escape sequences included, with monotonic offset tracking. The
// server tees every outbound byte into it so that a client attaching
// mid-run can be sent the retained history first — typically the boot
// banner and the most recent frames — followed by the live stream.
//
// [FrameSplitter] reassembles that byte stream into rendered frames.
// The render engine emits a fixed grammar: an optional one-time
// banner, then for each frame a four-byte cursor-home sequence
// followed by height rows of width cells terminated by CR LF. The
// splitter is incremental and indifferent to how the stream is
// fragmented across reads; the TUI viewer and the end-to-end tests
// are its consumers.
package observe
