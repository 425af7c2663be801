// Copyright 2026 The Bureau Authors
// SPDX-License-Identifier: Apache-2.0

package sim

import (
	"context"
	"log/slog"
	"time"

	"github.com/ccattuto/tt07-conway-term/lib/clock"
)

// Runner drives a Machine from a clock, one Tick per clock tick. It
// is the only place wall time enters the simulator; the core measures
// everything in ticks.
type Runner struct {
	machine  *Machine
	clk      clock.Clock
	interval time.Duration
	logger   *slog.Logger
}

// NewRunner creates a runner ticking machine every interval. A nil
// logger disables logging.
func NewRunner(machine *Machine, clk clock.Clock, interval time.Duration, logger *slog.Logger) *Runner {
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Runner{
		machine:  machine,
		clk:      clk,
		interval: interval,
		logger:   logger,
	}
}

// Run ticks the machine until ctx is cancelled, then returns nil.
// Phase transitions are logged at debug level; the per-tick path
// itself never logs.
func (r *Runner) Run(ctx context.Context) error {
	board := r.machine.Board()
	r.logger.Info("simulator running",
		"board", slog.GroupValue(
			slog.Int("width", board.Width()),
			slog.Int("height", board.Height())),
		"tick_interval", r.interval)

	ticker := r.clk.NewTicker(r.interval)
	defer ticker.Stop()

	lastPhase := r.machine.Phase()
	for {
		select {
		case <-ctx.Done():
			r.logger.Info("simulator stopped", "generation", r.machine.Generation())
			return nil
		case <-ticker.C:
			r.machine.Tick()
			if phase := r.machine.Phase(); phase != lastPhase {
				r.logger.Debug("phase transition", "from", lastPhase, "to", phase)
				lastPhase = phase
			}
		}
	}
}
