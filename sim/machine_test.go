// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sim

import (
	"bytes"
	"testing"

	"github.com/ccattuto/tt07-conway-term/serial"
)

const testStepTicks = 50

type testRig struct {
	machine *Machine
	rx      *serial.RxPort
	tx      *serial.TxPort
}

func newTestRig(t *testing.T) *testRig {
	t.Helper()
	board, err := NewBoard(8, 8)
	if err != nil {
		t.Fatalf("NewBoard: %v", err)
	}
	rx := serial.NewRxPort()
	tx := serial.NewTxPort()
	machine := NewMachine(MachineConfig{
		Board:     board,
		Bits:      NewLFSR(0x1234),
		RX:        rx,
		TX:        tx,
		StepTicks: testStepTicks,
	})
	return &testRig{machine: machine, rx: rx, tx: tx}
}

// tick advances one tick and drains at most one transmitted byte,
// acting as an always-ready byte channel.
func (r *testRig) tick() (byte, bool) {
	r.machine.Tick()
	return r.tx.TryNext()
}

// runUntilIdle ticks until the machine returns to the idle phase,
// collecting everything transmitted along the way.
func (r *testRig) runUntilIdle(t *testing.T) []byte {
	t.Helper()
	var out []byte
	for i := 0; i < 100000; i++ {
		b, sent := r.tick()
		if sent {
			out = append(out, b)
		}
		if r.machine.Phase() == PhaseIdle {
			return out
		}
	}
	t.Fatal("machine did not return to idle")
	return nil
}

// command delivers a byte and runs the machine back to idle.
func (r *testRig) command(t *testing.T, b byte) []byte {
	t.Helper()
	if !r.rx.TryDeliver(b) {
		t.Fatalf("receive latch full delivering %q", b)
	}
	return r.runUntilIdle(t)
}

// frameLength is home sequence + HEIGHT rows of WIDTH cells + CR LF.
const frameLength = 4 + 8*(8+2)

func TestBootTransmitsNothingUntilFirstByte(t *testing.T) {
	t.Parallel()
	rig := newTestRig(t)

	for i := 0; i < 500; i++ {
		if b, sent := rig.tick(); sent {
			t.Fatalf("tick %d: transmitted %q before any byte was received", i, b)
		}
	}
	if got := rig.machine.Phase(); got != PhaseBoot {
		t.Fatalf("phase = %v, want boot", got)
	}
}

func TestFirstByteTriggersBannerThenReseed(t *testing.T) {
	t.Parallel()
	rig := newTestRig(t)

	// Any byte wakes the machine; the original testbench sends CR.
	out := rig.command(t, '\r')
	if string(out) != DefaultBanner {
		t.Fatalf("boot output = %q, want the banner", out)
	}

	// The board was seeded even though only the banner was rendered.
	alive := 0
	for _, cell := range rig.machine.Board().Cells() {
		alive += int(cell)
	}
	if alive == 0 {
		t.Error("board entirely dead after boot randomize; LFSR seed should light some cells")
	}
}

func TestBannerTransmittedExactlyOnce(t *testing.T) {
	t.Parallel()
	rig := newTestRig(t)
	rig.command(t, '\r')

	// Reseeds and steps must never replay the banner.
	for _, cmd := range []byte{'0', '1', '0', '1', '1'} {
		out := rig.command(t, cmd)
		if bytes.Contains(out, []byte("Hello!")) {
			t.Fatalf("command %q output contains the banner", cmd)
		}
	}
}

func TestFrameFormat(t *testing.T) {
	t.Parallel()
	rig := newTestRig(t)
	rig.command(t, '\r')

	frame := rig.command(t, '0')
	if len(frame) != frameLength {
		t.Fatalf("frame length = %d, want %d", len(frame), frameLength)
	}
	if !bytes.Equal(frame[:4], []byte{27, '[', ';', 'H'}) {
		t.Fatalf("frame prefix = %v, want cursor home", frame[:4])
	}
	body := frame[4:]
	for row := 0; row < 8; row++ {
		line := body[row*10 : row*10+10]
		for col, b := range line[:8] {
			if b != 'O' && b != ' ' {
				t.Fatalf("row %d col %d: byte %q, want 'O' or ' '", row, col, b)
			}
		}
		if line[8] != '\r' || line[9] != '\n' {
			t.Fatalf("row %d terminator = %v, want CR LF", row, line[8:])
		}
	}
}

func TestFrameMatchesBoard(t *testing.T) {
	t.Parallel()
	rig := newTestRig(t)
	rig.command(t, '\r')
	frame := rig.command(t, '0')

	cells := rig.machine.Board().Cells()
	body := frame[4:]
	for row := 0; row < 8; row++ {
		for col := 0; col < 8; col++ {
			want := byte(' ')
			if cells[row*8+col] == 1 {
				want = 'O'
			}
			if got := body[row*10+col]; got != want {
				t.Fatalf("cell (%d,%d) rendered %q, want %q", col, row, got, want)
			}
		}
	}
}

func TestStepAdvancesOneGeneration(t *testing.T) {
	t.Parallel()
	rig := newTestRig(t)
	rig.command(t, '\r')
	rig.command(t, '0')

	before := rig.machine.Board().Cells()
	want := referenceStep(before, 8, 8)

	frame := rig.command(t, '1')
	if len(frame) != frameLength {
		t.Fatalf("step frame length = %d, want %d", len(frame), frameLength)
	}
	if rig.machine.Generation() != 1 {
		t.Errorf("generation = %d, want 1", rig.machine.Generation())
	}

	got := rig.machine.Board().Cells()
	for i := range want {
		if got[i] != want[i] {
			t.Fatalf("cell %d = %d, want %d after one step", i, got[i], want[i])
		}
	}
}

func TestUnknownBytesAreIgnored(t *testing.T) {
	t.Parallel()
	rig := newTestRig(t)
	rig.command(t, '\r')

	for _, b := range []byte{'x', 'A', 2, 0xFF, '\n'} {
		out := rig.command(t, b)
		if len(out) != 0 {
			t.Fatalf("byte %q produced output %q, want none", b, out)
		}
		if rig.machine.Running() {
			t.Fatalf("byte %q started autoplay", b)
		}
	}
}

func TestToggleAutoplay(t *testing.T) {
	t.Parallel()
	rig := newTestRig(t)
	rig.command(t, '\r')

	rig.command(t, ' ')
	if !rig.machine.Running() {
		t.Fatal("space did not start autoplay")
	}
	rig.command(t, ' ')
	if rig.machine.Running() {
		t.Fatal("second space did not stop autoplay")
	}
}

func TestAutoplayStepsAtFixedCadence(t *testing.T) {
	t.Parallel()
	rig := newTestRig(t)
	rig.command(t, '\r')
	rig.command(t, ' ')

	// With no further input, a generation completes within the step
	// interval plus one full update+commit+render pass.
	budget := testStepTicks + 64*9 + 64 + frameLength + 10
	var out []byte
	for i := 0; i < budget; i++ {
		if b, sent := rig.tick(); sent {
			out = append(out, b)
		}
	}
	if rig.machine.Generation() != 1 {
		t.Fatalf("generation = %d after one autoplay interval, want 1", rig.machine.Generation())
	}
	if len(out) != frameLength {
		t.Fatalf("autoplay output length = %d, want one frame (%d)", len(out), frameLength)
	}

	// The cadence repeats: a second interval yields a second frame.
	for i := 0; i < budget; i++ {
		rig.tick()
	}
	if rig.machine.Generation() != 2 {
		t.Fatalf("generation = %d after two autoplay intervals, want 2", rig.machine.Generation())
	}
}

func TestStepWhileRunningStopsWithoutStepping(t *testing.T) {
	t.Parallel()
	rig := newTestRig(t)
	rig.command(t, '\r')
	rig.command(t, ' ')

	out := rig.command(t, '1')
	if rig.machine.Running() {
		t.Fatal("'1' did not stop autoplay")
	}
	if len(out) != 0 {
		t.Fatalf("'1' while running produced output %q, want none", out)
	}
	if rig.machine.Generation() != 0 {
		t.Fatalf("'1' while running stepped the board (generation %d)", rig.machine.Generation())
	}

	// Autoplay is fully stopped: nothing happens without input.
	for i := 0; i < 10*testStepTicks; i++ {
		if b, sent := rig.tick(); sent {
			t.Fatalf("output %q after autoplay stop", b)
		}
	}
}

func TestCommandsDeferredWhileBusy(t *testing.T) {
	t.Parallel()
	rig := newTestRig(t)
	rig.command(t, '\r')

	// Start a generation, then latch a toggle mid-update. The byte
	// must not be observed until the machine returns to idle.
	if !rig.rx.TryDeliver('1') {
		t.Fatal("latch full")
	}
	rig.machine.Tick() // consume '1', enter update
	if got := rig.machine.Phase(); got != PhaseUpdate {
		t.Fatalf("phase = %v, want update", got)
	}
	if !rig.rx.TryDeliver(' ') {
		t.Fatal("latch full")
	}

	for i := 0; i < 200; i++ {
		rig.tick()
		if rig.machine.Running() {
			t.Fatalf("tick %d: toggle observed while phase %v", i, rig.machine.Phase())
		}
	}

	rig.runUntilIdle(t)
	rig.machine.Tick() // one idle tick to dispatch the latched toggle
	if !rig.machine.Running() {
		t.Fatal("latched toggle not dispatched after return to idle")
	}
}

func TestReseedDeterministicForSeed(t *testing.T) {
	t.Parallel()
	a, b := newTestRig(t), newTestRig(t)
	a.command(t, '\r')
	b.command(t, '\r')
	frameA := a.command(t, '0')
	frameB := b.command(t, '0')
	if !bytes.Equal(frameA, frameB) {
		t.Fatal("identical seeds produced different first frames")
	}
}

func TestRenderIdempotentOnUnchangedBoard(t *testing.T) {
	t.Parallel()
	board, _ := NewBoard(8, 8)
	cells := make([]uint8, board.Size())
	cells[9], cells[10], cells[17] = 1, 1, 1
	if err := board.SetCells(cells); err != nil {
		t.Fatal(err)
	}

	tx := serial.NewTxPort()
	render := renderState{banner: []byte(DefaultBanner), bannerSent: true}

	renderOnce := func() []byte {
		var out []byte
		render.begin()
		for i := 0; !render.done; i++ {
			render.step(board, tx)
			if b, ok := tx.TryNext(); ok {
				out = append(out, b)
			}
			if i > 10000 {
				t.Fatal("render did not complete")
			}
		}
		return out
	}

	first := renderOnce()
	second := renderOnce()
	if !bytes.Equal(first, second) {
		t.Fatal("two renders of an unchanged board differ")
	}
	if len(first) != frameLength {
		t.Fatalf("frame length = %d, want %d", len(first), frameLength)
	}
}

func TestRenderHoldsByteWhileChannelBusy(t *testing.T) {
	t.Parallel()
	rig := newTestRig(t)

	// Wake the machine but never drain the transmit latch: the render
	// engine must stall on the second byte, not drop or overwrite.
	if !rig.rx.TryDeliver('\r') {
		t.Fatal("latch full")
	}
	for i := 0; i < 1000; i++ {
		rig.machine.Tick()
	}
	if got := rig.machine.Phase(); got != PhaseRender {
		t.Fatalf("phase = %v, want render (stalled on busy channel)", got)
	}

	// Drain one byte at a time; the full banner arrives in order.
	var out []byte
	for i := 0; i < 100000 && rig.machine.Phase() == PhaseRender; i++ {
		if b, ok := rig.tx.TryNext(); ok {
			out = append(out, b)
		}
		rig.machine.Tick()
	}
	if b, ok := rig.tx.TryNext(); ok {
		out = append(out, b)
	}
	if string(out) != DefaultBanner {
		t.Fatalf("stalled render produced %q, want the banner", out)
	}
}

func TestNoBannerMachineSkipsStraightToIdle(t *testing.T) {
	t.Parallel()
	board, _ := NewBoard(8, 8)
	rx, tx := serial.NewRxPort(), serial.NewTxPort()
	machine := NewMachine(MachineConfig{
		Board: board, Bits: NewLFSR(1), RX: rx, TX: tx,
		StepTicks: testStepTicks, NoBanner: true,
	})
	rig := &testRig{machine: machine, rx: rx, tx: tx}

	out := rig.command(t, '\r')
	if len(out) != 0 {
		t.Fatalf("boot output = %q, want none with the banner suppressed", out)
	}

	// The next frame is a normal one: banner suppression only skips
	// the banner, not the home sequence bookkeeping.
	frame := rig.command(t, '0')
	if len(frame) != frameLength {
		t.Fatalf("frame length = %d, want %d", len(frame), frameLength)
	}
}

func TestInvalidPhaseRecoversToIdle(t *testing.T) {
	t.Parallel()
	rig := newTestRig(t)
	rig.command(t, '\r')

	rig.machine.mu.Lock()
	rig.machine.phase = Phase(0xEE)
	rig.machine.mu.Unlock()

	rig.machine.Tick()
	if got := rig.machine.Phase(); got != PhaseIdle {
		t.Fatalf("phase = %v after invalid state, want idle", got)
	}
}
