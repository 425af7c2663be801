// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sim

import "testing"

func TestLFSRDeterministic(t *testing.T) {
	t.Parallel()
	a, b := NewLFSR(0xBEEF), NewLFSR(0xBEEF)
	for i := 0; i < 1000; i++ {
		if a.Bit() != b.Bit() {
			t.Fatalf("streams diverged at bit %d", i)
		}
	}
}

func TestLFSRZeroSeedSubstituted(t *testing.T) {
	t.Parallel()
	l := NewLFSR(0)
	ones := 0
	for i := 0; i < 64; i++ {
		ones += int(l.Bit())
	}
	if ones == 0 {
		t.Fatal("zero-seeded LFSR is stuck at zero")
	}
}

func TestLFSRBitBalance(t *testing.T) {
	t.Parallel()
	l := NewLFSR(1)
	ones := 0
	const n = 65535 // full period of a maximal 16-bit LFSR
	for i := 0; i < n; i++ {
		ones += int(l.Bit())
	}
	// A maximal-length LFSR emits 32768 ones and 32767 zeros per period.
	if ones < n/2-100 || ones > n/2+100 {
		t.Fatalf("ones per period = %d, want about %d", ones, n/2)
	}
}
