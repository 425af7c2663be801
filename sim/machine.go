// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sim

import (
	"sync"

	"github.com/ccattuto/tt07-conway-term/serial"
)

// Phase is the orchestrator's top-level state.
type Phase uint8

const (
	// PhaseBoot waits for the first received byte. The machine
	// transmits nothing and accepts no commands until then.
	PhaseBoot Phase = iota
	// PhaseIdle runs the command dispatcher and the autoplay timer.
	PhaseIdle
	// PhaseRandomize seeds the board from the bit source.
	PhaseRandomize
	// PhaseUpdate computes the next generation into the scratch buffer.
	PhaseUpdate
	// PhaseCommit copies the scratch buffer over the current board.
	PhaseCommit
	// PhaseRender serializes the board (or the boot banner) to the
	// transmit port.
	PhaseRender
)

// String returns the phase name for logging.
func (p Phase) String() string {
	switch p {
	case PhaseBoot:
		return "boot"
	case PhaseIdle:
		return "idle"
	case PhaseRandomize:
		return "randomize"
	case PhaseUpdate:
		return "update"
	case PhaseCommit:
		return "commit"
	case PhaseRender:
		return "render"
	default:
		return "invalid"
	}
}

// Command bytes recognized by the dispatcher. All other byte values
// are no-ops.
const (
	// CmdRandomize reseeds the board.
	CmdRandomize = '0'
	// CmdStep advances one generation, or stops autoplay if running.
	CmdStep = '1'
	// CmdToggle toggles autoplay.
	CmdToggle = ' '
)

// MachineConfig assembles a Machine's collaborators and constants.
type MachineConfig struct {
	// Board is the cell store. Required.
	Board *Board

	// Bits is the random bit source for the randomize engine.
	// Required.
	Bits BitSource

	// RX and TX are the machine's ends of the byte channel. Required.
	RX *serial.RxPort
	TX *serial.TxPort

	// StepTicks is the autoplay cadence in idle ticks. Values below
	// one are raised to one.
	StepTicks int

	// Banner overrides the boot banner. Empty means DefaultBanner;
	// set NoBanner to suppress the banner entirely.
	Banner   string
	NoBanner bool
}

// Machine is the top-level state machine of the simulator. One call
// to Tick performs one indivisible step of the active phase.
//
// Tick must be called from a single goroutine (the runner). The mutex
// exists so that status accessors — Phase, Running, Generation — can
// be read from other goroutines, such as a TUI, without racing the
// tick loop; it is never contended within a tick.
type Machine struct {
	mu sync.Mutex

	board *Board
	bits  BitSource
	rx    *serial.RxPort
	tx    *serial.TxPort

	phase      Phase
	running    bool
	idleTicks  int
	stepTicks  int
	generation uint64

	randomize randomizeState
	update    updateState
	commit    commitState
	render    renderState
}

// NewMachine creates a machine in the boot phase with the board
// untouched, all cursors zeroed, and autoplay off.
func NewMachine(cfg MachineConfig) *Machine {
	banner := cfg.Banner
	if banner == "" {
		banner = DefaultBanner
	}
	if cfg.NoBanner {
		banner = ""
	}
	stepTicks := cfg.StepTicks
	if stepTicks < 1 {
		stepTicks = 1
	}
	return &Machine{
		board:     cfg.Board,
		bits:      cfg.Bits,
		rx:        cfg.RX,
		tx:        cfg.TX,
		phase:     PhaseBoot,
		stepTicks: stepTicks,
		render:    renderState{banner: []byte(banner)},
	}
}

// Tick advances the machine by one step of the active phase. Exactly
// one sub-machine makes progress; transitions out of a working phase
// are gated on that sub-machine's completion flag, which is cleared
// as the phase is left.
func (m *Machine) Tick() {
	m.mu.Lock()
	defer m.mu.Unlock()

	switch m.phase {
	case PhaseBoot:
		// Any first byte wakes the machine and seeds the board.
		if _, ok := m.rx.Take(); ok {
			m.enterRandomize()
		}

	case PhaseIdle:
		m.dispatch()

	case PhaseRandomize:
		m.randomize.step(m.board, m.bits)
		if m.randomize.done {
			m.randomize.done = false
			m.enterRender()
		}

	case PhaseUpdate:
		m.update.step(m.board)
		if m.update.done {
			m.update.done = false
			m.commit.begin()
			m.phase = PhaseCommit
		}

	case PhaseCommit:
		m.commit.step(m.board)
		if m.commit.done {
			m.commit.done = false
			m.generation++
			m.enterRender()
		}

	case PhaseRender:
		m.render.step(m.board, m.tx)
		if m.render.done {
			m.render.done = false
			m.phase = PhaseIdle
		}

	default:
		// Unreachable phase value; resolve to the nearest safe state.
		m.phase = PhaseIdle
	}
}

// dispatch handles one idle tick: at most one received command byte,
// else one autoplay timer step. The timer only advances on idle ticks
// with no byte pending, so the true autoplay period is the step
// interval plus the time spent inside update, commit, and render.
func (m *Machine) dispatch() {
	if b, ok := m.rx.Take(); ok {
		switch b {
		case CmdRandomize:
			m.enterRandomize()
		case CmdStep:
			if m.running {
				m.running = false
				m.idleTicks = 0
			} else {
				m.enterUpdate()
			}
		case CmdToggle:
			m.running = !m.running
			m.idleTicks = 0
		}
		return
	}

	if m.running {
		m.idleTicks++
		if m.idleTicks >= m.stepTicks {
			m.idleTicks = 0
			m.enterUpdate()
		}
	}
}

func (m *Machine) enterRandomize() {
	m.randomize.begin()
	m.phase = PhaseRandomize
}

func (m *Machine) enterUpdate() {
	m.update.begin()
	m.phase = PhaseUpdate
}

func (m *Machine) enterRender() {
	m.render.begin()
	m.phase = PhaseRender
}

// Phase returns the orchestrator's current phase.
func (m *Machine) Phase() Phase {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.phase
}

// Running reports whether autoplay is on.
func (m *Machine) Running() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.running
}

// Generation returns the number of completed update+commit cycles.
func (m *Machine) Generation() uint64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.generation
}

// Board returns the machine's cell store. Reading it is only safe
// while the machine is not being ticked.
func (m *Machine) Board() *Board { return m.board }
