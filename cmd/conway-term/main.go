// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

// conway-term is a software model of the TT07 conway-term ASIC: a
// Conway's Game of Life simulator on a toroidal board, driven and
// observed through a one-byte serial channel.
//
// The daemon ticks the simulator at a fixed cadence and exposes its
// byte channel over TCP (default) or on stdin/stdout with --stdio.
// Connect with conway-attach, or any raw TCP terminal: send any byte
// to wake the machine, then '0' to reseed, '1' to step, and space to
// toggle autoplay.
package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/pflag"

	"github.com/ccattuto/tt07-conway-term/lib/clock"
	"github.com/ccattuto/tt07-conway-term/lib/config"
	"github.com/ccattuto/tt07-conway-term/lib/version"
	"github.com/ccattuto/tt07-conway-term/observe"
	"github.com/ccattuto/tt07-conway-term/serial"
	"github.com/ccattuto/tt07-conway-term/server"
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
	var listen string
	var stdio bool
	var seed uint16
	var logLevel string

	flagSet := pflag.NewFlagSet("conway-term", pflag.ContinueOnError)
	flagSet.StringVar(&configPath, "config", "", "path to YAML config (default: $"+config.EnvVar+")")
	flagSet.StringVar(&listen, "listen", "", "override the TCP listen address")
	flagSet.BoolVar(&stdio, "stdio", false, "serve the byte channel on stdin/stdout instead of TCP")
	flagSet.Uint16Var(&seed, "seed", 0, "LFSR seed for the random bit source (0 = derive from clock)")
	flagSet.StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	flagSet.BoolP("help", "h", false, "show help")

	// Handle --version before flag parsing to match the other binaries.
	if len(os.Args) > 1 && os.Args[1] == "--version" {
		version.Print("conway-term")
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
	if args := flagSet.Args(); len(args) > 0 {
		return fmt.Errorf("unexpected argument: %s", args[0])
	}

	cfg, err := loadConfig(configPath)
	if err != nil {
		return err
	}
	if listen != "" {
		cfg.Serial.Listen = listen
	}
	if stdio {
		cfg.Serial.Stdio = true
	}
	if seed != 0 {
		cfg.Seed = seed
	}
	if err := cfg.Validate(); err != nil {
		return err
	}

	level, err := parseLevel(logLevel)
	if err != nil {
		return err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	return serve(ctx, cfg, logger)
}

// serve assembles the simulator and runs it until ctx is cancelled.
func serve(ctx context.Context, cfg config.Config, logger *slog.Logger) error {
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
	runner := sim.NewRunner(machine, clk, cfg.Timing.TickInterval.Std(), logger)

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()

	errs := make(chan error, 2)
	go func() { errs <- runner.Run(ctx) }()

	if cfg.Serial.Stdio {
		go func() {
			err := serial.Pump(ctx, rx, tx, stdioReadWriter{})
			if err == io.EOF || ctx.Err() != nil {
				err = nil
			}
			errs <- err
		}()
	} else {
		srv := server.New(rx, tx, observe.NewRingBuffer(observe.DefaultRingBufferSize), logger)
		if err := srv.Listen(cfg.Serial.Listen); err != nil {
			return err
		}
		go func() { errs <- srv.Serve(ctx) }()
	}

	// First exit wins; cancel the rest and wait for it.
	err = <-errs
	cancel()
	<-errs
	return err
}

// loadConfig resolves the --config flag against the environment
// fallback.
func loadConfig(path string) (config.Config, error) {
	if path != "" {
		return config.LoadFile(path)
	}
	return config.Load()
}

func parseLevel(name string) (slog.Level, error) {
	var level slog.Level
	if err := level.UnmarshalText([]byte(name)); err != nil {
		return 0, fmt.Errorf("invalid log level %q", name)
	}
	return level, nil
}

// stdioReadWriter joins stdin and stdout into the io.ReadWriter the
// pump expects.
type stdioReadWriter struct{}

func (stdioReadWriter) Read(p []byte) (int, error)  { return os.Stdin.Read(p) }
func (stdioReadWriter) Write(p []byte) (int, error) { return os.Stdout.Write(p) }

func printHelp(flagSet *pflag.FlagSet) {
	fmt.Fprintf(os.Stderr, `conway-term — Game of Life over a serial byte channel.

A software model of the TT07 conway-term design. The simulator wakes
on the first received byte, prints its banner once, and then accepts
single-byte commands:

    0       randomize the board
    1       step one generation (stops autoplay if running)
    space   toggle autoplay

Usage:
    conway-term [flags]

Flags:
%s`, flagSet.FlagUsages())
}
