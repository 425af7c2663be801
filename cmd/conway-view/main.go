// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// conway-view runs the simulator in-process and renders it as a
// full-screen terminal UI. No daemon is involved: the TUI sits on the
// machine's serial ports directly, so what it shows is exactly the
// byte stream a hardware terminal would receive.
package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"
	"github.com/muesli/termenv"
	"github.com/spf13/pflag"

	"github.com/ccattuto/tt07-conway-term/lib/clock"
	"github.com/ccattuto/tt07-conway-term/lib/config"
	"github.com/ccattuto/tt07-conway-term/lib/lifeui"
	"github.com/ccattuto/tt07-conway-term/lib/version"
	"github.com/ccattuto/tt07-conway-term/serial"
	"github.com/ccattuto/tt07-conway-term/sim"
)

func main() {
	if err := run(); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		os.Exit(1)
	}
}

func run() error {
	var configPath string
	var seed uint16
	var noColor bool

	flagSet := pflag.NewFlagSet("conway-view", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to YAML config (default: $"+config.EnvVar+")")
	flagSet.Uint16Var(&seed, "seed", 0, "LFSR seed for the random bit source (0 = derive from clock)")
	flagSet.BoolVar(&noColor, "no-color", false, "render without colors")
	flagSet.BoolP("help", "h", false, "show help")

	if len(os.Args) > 1 && os.Args[1] == "--version" {
		version.Print("conway-view")
		return nil
	}

	if err := flagSet.Parse(os.Args[1:]); err != nil {
		if err == pflag.ErrHelp {
			printHelp(flagSet)
			return nil
		}
		return err
	}
	if help, _ := flagSet.GetBool("help"); help {
		printHelp(flagSet)
		return nil
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if seed != 0 {
		cfg.Seed = seed
	}

	if noColor {
		lipgloss.DefaultRenderer().SetColorProfile(termenv.Ascii)
	}

	board, err := sim.NewBoard(cfg.Board.Width, cfg.Board.Height)
	if err != nil {
		return err
	}

	clk := clock.Real()
	lfsrSeed := cfg.Seed
	if lfsrSeed == 0 {
		lfsrSeed = uint16(clk.Now().UnixNano())
	}

	rx := serial.NewRxPort()
	tx := serial.NewTxPort()
	machine := sim.NewMachine(sim.MachineConfig{
		Board:     board,
		Bits:      sim.NewLFSR(lfsrSeed),
		RX:        rx,
		TX:        tx,
		StepTicks: cfg.StepTicks(),
		Banner:    cfg.Banner,
		NoBanner:  cfg.NoBanner,
	})

	// The TUI owns the terminal; route simulator logs nowhere.
	logger := slog.New(slog.DiscardHandler)
	runner := sim.NewRunner(machine, clk, cfg.Timing.TickInterval.Std(), logger)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	runnerDone := make(chan struct{})
	go func() {
		defer close(runnerDone)
		runner.Run(ctx)
	}()

	events := lifeui.Stream(ctx, tx, cfg.Board.Width, cfg.Board.Height)
	model := lifeui.NewModel(machine, rx, events, cfg.Timing.TickInterval.Std())
	program := tea.NewProgram(model, tea.WithAltScreen())
	_, err = program.Run()

	cancel()
	<-runnerDone
	return err
}

func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `conway-view — terminal UI for the Game of Life simulator.

Runs the machine in-process and decodes its transmit stream into a
rendered board. Keys map directly to protocol bytes: '0' randomizes,
'1' steps, space toggles autoplay, 'q' quits.

Usage:
    conway-view [flags]

Flags:
%s`, flagSet.FlagUsages())
}
