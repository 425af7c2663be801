// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sim

import "github.com/ccattuto/tt07-conway-term/serial"

// The four sub-machines. Each owns an explicit progress cursor that
// survives across ticks and a done flag the orchestrator observes;
// the cursor is the only state distinguishing "in progress" from
// "finished". begin resets a sub-machine on phase entry, step performs
// one tick of work.

// randomizeState fills the current buffer with random bits, one cell
// per tick. Completion is raised one tick after the last cell is
// written, matching the silicon's extra cycle.
type randomizeState struct {
	cursor int
	done   bool
}

func (s *randomizeState) begin() {
	s.cursor = 0
	s.done = false
}

func (s *randomizeState) step(board *Board, bits BitSource) {
	if s.cursor >= board.Size() {
		s.cursor = 0
		s.done = true
		return
	}
	board.current[s.cursor] = bits.Bit()
	s.cursor++
}

// updateState computes next from current one neighbor sample per
// tick: eight sample ticks then a finalize tick per cell, nine ticks
// per cell in total. The single-memory-port budget of the original
// design: exactly one cell read per tick, and next is never read.
type updateState struct {
	cursor int
	slot   int
	count  int
	done   bool
}

func (s *updateState) begin() {
	s.cursor = 0
	s.slot = 0
	s.count = 0
	s.done = false
}

func (s *updateState) step(board *Board) {
	if s.slot < 8 {
		s.count += int(board.current[board.neighborIndex(s.cursor, s.slot)])
		s.slot++
		return
	}
	if s.slot > 8 {
		// Unreachable cursor value; resolve to the nearest safe state.
		s.slot = 0
		s.count = 0
		return
	}

	// Finalize tick: evaluate the rule for this cell.
	alive := board.current[s.cursor] == 1
	if (alive && s.count == 2) || s.count == 3 {
		board.next[s.cursor] = 1
	} else {
		board.next[s.cursor] = 0
	}
	s.slot = 0
	s.count = 0
	if s.cursor == board.Size()-1 {
		s.cursor = 0
		s.done = true
		return
	}
	s.cursor++
}

// commitState copies next into current, one cell per tick. Completion
// is raised on the tick of the last copy.
type commitState struct {
	cursor int
	done   bool
}

func (s *commitState) begin() {
	s.cursor = 0
	s.done = false
}

func (s *commitState) step(board *Board) {
	board.current[s.cursor] = board.next[s.cursor]
	if s.cursor == board.Size()-1 {
		s.cursor = 0
		s.done = true
		return
	}
	s.cursor++
}

// Render output constants, fixed by the original design.
var (
	// homeSequence repositions the terminal cursor before each frame.
	homeSequence = []byte{27, '[', ';', 'H'}
	// rowTerminator ends each board row.
	rowTerminator = []byte{'\r', '\n'}
)

const (
	aliveByte = 'O'
	deadByte  = ' '
)

// DefaultBanner is the boot banner of the original silicon,
// transmitted verbatim exactly once per process lifetime: terminal
// reset, bright green, then the usage text.
const DefaultBanner = "\x1bc\x1b[92mHello!\r\nspace: start/stop\r\n0: randomize\r\n1: step\r\n"

// renderStage selects which byte sequence the render engine is
// currently transmitting.
type renderStage uint8

const (
	stageBanner renderStage = iota
	stageHome
	stageCells
	stageEOL
)

// renderState serializes the current buffer into the transmit latch,
// one byte per handshake round trip. The very first activation sends
// the banner and nothing else; every later activation sends the
// cursor-home sequence, then each row's cells followed by CR LF.
//
// bannerSent persists across activations for the process lifetime;
// it is the only record that the banner went out.
type renderState struct {
	banner     []byte
	bannerSent bool

	stage renderStage
	index int
	row   int
	col   int
	done  bool
}

func (s *renderState) begin() {
	s.index = 0
	s.row = 0
	s.col = 0
	s.done = false
	if s.bannerSent {
		s.stage = stageHome
	} else {
		s.stage = stageBanner
	}
}

func (s *renderState) step(board *Board, tx *serial.TxPort) {
	// An empty banner still counts as the one banner transmission.
	if s.stage == stageBanner && s.index >= len(s.banner) {
		s.bannerSent = true
		s.done = true
		return
	}

	if !tx.Offer(s.currentByte(board)) {
		// Channel busy: hold the byte stable and retry next tick.
		return
	}
	s.advance(board)
}

// currentByte returns the byte the engine is asserting this tick.
func (s *renderState) currentByte(board *Board) byte {
	switch s.stage {
	case stageBanner:
		return s.banner[s.index]
	case stageHome:
		return homeSequence[s.index]
	case stageCells:
		if board.current[s.row*board.Width()+s.col] == 1 {
			return aliveByte
		}
		return deadByte
	default: // stageEOL
		return rowTerminator[s.index]
	}
}

// advance moves the cursors past an accepted byte.
func (s *renderState) advance(board *Board) {
	switch s.stage {
	case stageBanner:
		s.index++
		if s.index == len(s.banner) {
			s.bannerSent = true
			s.done = true
		}
	case stageHome:
		s.index++
		if s.index == len(homeSequence) {
			s.stage = stageCells
			s.index = 0
			s.col = 0
		}
	case stageCells:
		s.col++
		if s.col == board.Width() {
			s.stage = stageEOL
			s.index = 0
		}
	default: // stageEOL
		s.index++
		if s.index == len(rowTerminator) {
			s.row++
			s.col = 0
			if s.row == board.Height() {
				s.done = true
				return
			}
			s.stage = stageCells
		}
	}
}
