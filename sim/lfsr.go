// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sim

// BitSource produces one bit per call. The randomize engine consumes
// exactly one bit per tick; implementations must never block.
type BitSource interface {
	Bit() uint8
}

// LFSR is a 16-bit Fibonacci linear-feedback shift register with taps
// at bits 16, 14, 13, and 11 (maximal length, period 65535), the kind
// of random bit source the original silicon carries. Deterministic
// for a given seed, which is what the tests want.
type LFSR struct {
	state uint16
}

// NewLFSR creates an LFSR from the given seed. The all-zero state is
// the one fixed point of the register, so a zero seed is replaced
// with a fixed nonzero value.
func NewLFSR(seed uint16) *LFSR {
	if seed == 0 {
		seed = 0xACE1
	}
	return &LFSR{state: seed}
}

// Bit shifts the register once and returns the new bit.
func (l *LFSR) Bit() uint8 {
	bit := (l.state ^ l.state>>2 ^ l.state>>3 ^ l.state>>5) & 1
	l.state = l.state>>1 | bit<<15
	return uint8(bit)
}
