// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package lifeui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/ccattuto/tt07-conway-term/observe"
	"github.com/ccattuto/tt07-conway-term/serial"
	"github.com/ccattuto/tt07-conway-term/sim"
)

// frameEventMsg wraps a FrameEvent for delivery through the bubbletea
// message loop.
type frameEventMsg FrameEvent

// streamClosedMsg is sent when the frame stream ends (the simulator's
// context was cancelled).
type streamClosedMsg struct{}

// seedPollMsg drives the startup nudge: the machine boots with a dead
// board, so the model keeps offering a randomize command until the
// first frame arrives.
type seedPollMsg struct{}

// seedPollInterval is how often the startup nudge retries. The
// receive latch holds one byte, so a single retry is almost always
// enough.
const seedPollInterval = 100 * time.Millisecond

// Model is the bubbletea model for the board viewer.
type Model struct {
	keys  KeyMap
	theme Theme

	machine      *sim.Machine
	rx           *serial.RxPort
	events       <-chan FrameEvent
	tickInterval time.Duration

	latest     observe.Frame
	haveFrame  bool
	banner     string
	generation uint64
	running    bool

	termWidth  int
	termHeight int
}

// NewModel creates a viewer for an in-process machine ticking every
// tickInterval. Keystrokes are delivered to rx; decoded frames are
// read from events (see [Stream]).
func NewModel(machine *sim.Machine, rx *serial.RxPort, events <-chan FrameEvent, tickInterval time.Duration) Model {
	return Model{
		keys:         DefaultKeyMap,
		theme:        DefaultTheme,
		machine:      machine,
		rx:           rx,
		events:       events,
		tickInterval: tickInterval,
	}
}

// Init wakes the simulator and starts listening for frames.
func (m Model) Init() tea.Cmd {
	// The first byte only wakes the machine and prints the banner; the
	// poll then requests a board.
	m.rx.TryDeliver('\r')
	return tea.Batch(m.waitFrame(), seedPoll())
}

func (m Model) waitFrame() tea.Cmd {
	return func() tea.Msg {
		event, ok := <-m.events
		if !ok {
			return streamClosedMsg{}
		}
		return frameEventMsg(event)
	}
}

func seedPoll() tea.Cmd {
	return tea.Tick(seedPollInterval, func(time.Time) tea.Msg {
		return seedPollMsg{}
	})
}

// Update handles messages.
func (m Model) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		m.termWidth = msg.Width
		m.termHeight = msg.Height
		return m, nil

	case frameEventMsg:
		m.latest = msg.Frame
		m.haveFrame = true
		m.banner = msg.Banner
		m.generation = m.machine.Generation()
		m.running = m.machine.Running()
		return m, m.waitFrame()

	case seedPollMsg:
		if m.haveFrame {
			return m, nil
		}
		m.rx.TryDeliver(sim.CmdRandomize)
		return m, seedPoll()

	case streamClosedMsg:
		return m, tea.Quit

	case tea.KeyMsg:
		switch {
		case key.Matches(msg, m.keys.Quit):
			return m, tea.Quit
		case key.Matches(msg, m.keys.Reseed):
			m.rx.TryDeliver(sim.CmdRandomize)
		case key.Matches(msg, m.keys.Step):
			m.rx.TryDeliver(sim.CmdStep)
		case key.Matches(msg, m.keys.Toggle):
			m.rx.TryDeliver(sim.CmdToggle)
		}
		return m, nil
	}
	return m, nil
}

// View renders the board panel, status bar, and key help.
func (m Model) View() string {
	var sections []string

	header := lipgloss.NewStyle().
		Bold(true).
		Foreground(m.theme.HeaderForeground).
		Render("conway-term")
	sections = append(sections, header)

	if m.haveFrame {
		sections = append(sections, m.viewBoard(), m.viewStatus())
	} else {
		waiting := strings.TrimSpace(m.banner)
		if waiting == "" {
			waiting = "waiting for the simulator..."
		}
		sections = append(sections, lipgloss.NewStyle().
			Foreground(m.theme.HelpText).
			Render(waiting))
	}

	sections = append(sections, m.viewHelp())
	return lipgloss.JoinVertical(lipgloss.Left, sections...) + "\n"
}

// viewBoard renders the cell grid inside a border. Cells are doubled
// horizontally so the torus looks square in a terminal font.
func (m Model) viewBoard() string {
	alive := lipgloss.NewStyle().Foreground(m.theme.AliveCell).Render("██")
	dead := lipgloss.NewStyle().Foreground(m.theme.DeadCell).Render("··")

	var grid strings.Builder
	for y := 0; y < m.latest.Height; y++ {
		if y > 0 {
			grid.WriteByte('\n')
		}
		for x := 0; x < m.latest.Width; x++ {
			if m.latest.Alive(x, y) {
				grid.WriteString(alive)
			} else {
				grid.WriteString(dead)
			}
		}
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(m.theme.BorderColor).
		Padding(0, 1).
		Render(grid.String())
}

// viewStatus renders the run badge, generation counter, and
// population.
func (m Model) viewStatus() string {
	badgeStyle := lipgloss.NewStyle().
		Foreground(m.theme.BadgeForeground).
		Padding(0, 1)
	var badge string
	if m.running {
		badge = badgeStyle.Background(m.theme.RunningBackground).Render("RUNNING")
	} else {
		badge = badgeStyle.Background(m.theme.PausedBackground).Render("PAUSED")
	}

	info := lipgloss.NewStyle().
		Foreground(m.theme.HeaderForeground).
		Render(fmt.Sprintf(" gen %d · pop %d · %dx%d torus · tick %s",
			m.generation, m.latest.Population(), m.latest.Width, m.latest.Height, m.tickInterval))

	return badge + info
}

// viewHelp renders one line of key hints from the key map.
func (m Model) viewHelp() string {
	bindings := []key.Binding{m.keys.Reseed, m.keys.Step, m.keys.Toggle, m.keys.Quit}
	parts := make([]string, 0, len(bindings))
	for _, binding := range bindings {
		help := binding.Help()
		parts = append(parts, help.Key+" "+help.Desc)
	}
	return lipgloss.NewStyle().
		Foreground(m.theme.HelpText).
		Render(strings.Join(parts, " · "))
}
